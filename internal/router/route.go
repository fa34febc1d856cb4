package router

import (
	"strings"
)

// SegmentKind classifies one segment of a route pattern.
type SegmentKind int

// Segment kinds.
const (
	// SegmentLiteral matches its value exactly.
	SegmentLiteral SegmentKind = iota

	// SegmentParam matches any single path segment and binds it to a
	// named parameter. Written as ":name".
	SegmentParam

	// SegmentCatchAll matches all remaining path segments. Written as
	// "*" or "*name"; the remainder binds to the given name, defaulting
	// to "wildcard".
	SegmentCatchAll
)

// DefaultCatchAllParam is the binding name used for unnamed catch-all
// segments.
const DefaultCatchAllParam = "wildcard"

// Segment is one parsed element of a route pattern.
type Segment struct {
	Kind  SegmentKind
	Value string
}

// Route is an immutable route declaration: method, path pattern, and the
// handler plus middleware that will serve it. Routes are consumed by a
// Router at registration time and never mutated afterwards.
type Route struct {
	Method     string
	Path       string
	Handler    Responder
	Middleware []Middleware
}

// NewRoute creates a route declaration.
func NewRoute(method, path string, handler Responder, middleware ...Middleware) Route {
	return Route{
		Method:     strings.ToUpper(method),
		Path:       path,
		Handler:    handler,
		Middleware: middleware,
	}
}

// ParsePattern parses a route path pattern into segments. Empty literal
// segments (doubled or trailing slashes) are dropped, so "/users//:id/"
// and "/users/:id" parse identically; the original path string stays on
// the Route for reporting.
func ParsePattern(path string) []Segment {
	parts := splitPath(path)
	segments := make([]Segment, 0, len(parts))

	for _, part := range parts {
		switch {
		case strings.HasPrefix(part, ":"):
			segments = append(segments, Segment{Kind: SegmentParam, Value: part[1:]})
		case strings.HasPrefix(part, "*"):
			name := part[1:]
			if name == "" {
				name = DefaultCatchAllParam
			}
			segments = append(segments, Segment{Kind: SegmentCatchAll, Value: name})
		default:
			segments = append(segments, Segment{Kind: SegmentLiteral, Value: part})
		}
	}

	return segments
}

// allLiteral reports whether every segment of a pattern is a literal.
// Only such patterns are eligible for HEAD synthesis: they involve no
// parameter extraction, so an empty 200 can stand in for the GET
// response without ambiguity.
func allLiteral(segments []Segment) bool {
	for _, seg := range segments {
		if seg.Kind != SegmentLiteral {
			return false
		}
	}
	return true
}

// splitPath splits a request path or pattern into its non-empty
// segments. "/", "" and "//" all yield zero segments.
func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}

	parts := strings.Split(trimmed, "/")
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
