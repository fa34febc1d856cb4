package router

import (
	"encoding/json"
	"net/http"
)

// Request is the routing engine's view of one inbound HTTP request. A
// Request is owned exclusively by the task dispatching it: the parameter
// map and matched-route reference are never shared across concurrent
// requests.
type Request struct {
	Method     string
	Path       string
	Header     http.Header
	Body       []byte
	RemoteAddr string

	params map[string]string
	route  *CachedRoute
}

// NewRequest creates a request for the given method and path.
func NewRequest(method, path string) *Request {
	return &Request{
		Method: method,
		Path:   path,
		Header: make(http.Header),
	}
}

// Param returns the value bound to a named path parameter, or the empty
// string when the parameter is not bound.
func (r *Request) Param(name string) string {
	return r.params[name]
}

// Params returns all path parameter bindings for this request. The
// returned map is the request's own; callers must not retain it beyond
// the request's lifetime.
func (r *Request) Params() map[string]string {
	return r.params
}

// setParam binds a path parameter, allocating the map lazily.
func (r *Request) setParam(name, value string) {
	if r.params == nil {
		r.params = make(map[string]string, 4)
	}
	r.params[name] = value
}

// Route returns the matched cached route, or nil when dispatch has not
// resolved one (yet, or at all).
func (r *Request) Route() *CachedRoute {
	return r.route
}

// Response is a structured HTTP response produced by a Responder.
// Serialization back to wire bytes is the transport's concern.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// NewResponse creates an empty response with the given status.
func NewResponse(status int) *Response {
	return &Response{
		Status: status,
		Header: make(http.Header),
	}
}

// TextResponse creates a plain-text response.
func TextResponse(status int, body string) *Response {
	resp := NewResponse(status)
	resp.Header.Set("Content-Type", "text/plain; charset=utf-8")
	resp.Body = []byte(body)
	return resp
}

// JSONResponse creates a JSON response by marshaling v.
func JSONResponse(status int, v any) (*Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	resp := NewResponse(status)
	resp.Header.Set("Content-Type", "application/json")
	resp.Body = body
	return resp, nil
}
