package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/avello/routeway/internal/router"
)

// CORSConfig holds CORS middleware configuration.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSConfig returns a permissive default configuration.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodHead,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization", RequestIDHeader},
		MaxAge:         86400,
	}
}

// CORS returns a middleware that applies the given CORS policy,
// answering preflight OPTIONS requests without invoking downstream.
func CORS(cfg CORSConfig) router.Middleware {
	allowedMethods := strings.Join(cfg.AllowedMethods, ", ")
	allowedHeaders := strings.Join(cfg.AllowedHeaders, ", ")

	return router.MiddlewareFunc(func(next router.Responder) router.Responder {
		return router.ResponderFunc(func(ctx context.Context, req *router.Request) (*router.Response, error) {
			origin := req.Header.Get("Origin")
			if origin == "" {
				return next.Respond(ctx, req)
			}

			allowed := allowOrigin(cfg.AllowedOrigins, origin)

			if req.Method == http.MethodOptions {
				resp := router.NewResponse(http.StatusNoContent)
				if allowed != "" {
					applyCORSHeaders(resp, allowed, cfg)
					resp.Header.Set("Access-Control-Allow-Methods", allowedMethods)
					resp.Header.Set("Access-Control-Allow-Headers", allowedHeaders)
				}
				return resp, nil
			}

			resp, err := next.Respond(ctx, req)
			if resp != nil && allowed != "" {
				applyCORSHeaders(resp, allowed, cfg)
			}
			return resp, err
		})
	})
}

// allowOrigin returns the Access-Control-Allow-Origin value for the
// request origin, or empty if the origin is not allowed.
func allowOrigin(allowedOrigins []string, origin string) string {
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			return "*"
		}
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

func applyCORSHeaders(resp *router.Response, origin string, cfg CORSConfig) {
	resp.Header.Set("Access-Control-Allow-Origin", origin)
	if cfg.AllowCredentials {
		resp.Header.Set("Access-Control-Allow-Credentials", "true")
	}
	if origin != "*" {
		resp.Header.Add("Vary", "Origin")
	}
}
