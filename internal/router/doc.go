// Package router implements route registration and request dispatch for
// the routing engine.
//
// Routes are declared as (method, path pattern, handler) triples and
// registered once, during single-threaded startup. Registration parses
// each pattern into segments, composes the route's middleware around its
// handler exactly once, and inserts the resulting cached route into a
// segment trie keyed by method and path segments. For every GET route
// whose pattern contains only literal segments a companion HEAD route is
// synthesized that answers 200 with an empty body without invoking the
// GET handler; an explicitly declared HEAD route always wins over
// synthesis.
//
// After registration the trie is read-only: dispatch performs lock-free
// lookups and the only per-request mutable state is the parameter map
// owned by that request. HEAD requests without a HEAD route fall back to
// the GET chain as-is, which is the correct behavior for parameterized
// paths where no synthetic HEAD variant exists.
package router
