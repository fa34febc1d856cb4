// Package middleware provides responder middleware for the routing
// engine: panic recovery, access logging, request IDs, error-to-response
// conversion, CORS, rate limiting, and circuit breaking.
//
// Every middleware wraps a downstream router.Responder and returns a new
// one. Chains are composed once at route registration; middleware must
// therefore be safe for concurrent use and keep per-request state on the
// request or its context.
package middleware
