package config

import (
	"fmt"
	"strings"

	"github.com/avello/routeway/internal/util"
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validator collects configuration validation errors.
type Validator struct {
	errors []*util.ConfigError
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates a configuration, returning an error describing
// every problem found.
func Validate(config *Config) error {
	return NewValidator().Validate(config)
}

// Validate checks the configuration and returns an aggregate error when
// anything is invalid.
func (v *Validator) Validate(config *Config) error {
	v.errors = v.errors[:0]

	if config == nil {
		return util.NewConfigError("", "configuration is nil")
	}

	v.validateServer(&config.Server)
	v.validateMiddleware(&config.Middleware)
	v.validateObservability(&config.Observability)

	switch len(v.errors) {
	case 0:
		return nil
	case 1:
		return v.errors[0]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:", len(v.errors))
	for _, err := range v.errors {
		sb.WriteString("\n  ")
		sb.WriteString(err.Error())
	}
	return util.NewConfigError("", sb.String())
}

func (v *Validator) addError(field, message string) {
	v.errors = append(v.errors, util.NewConfigError(field, message))
}

func (v *Validator) validateServer(cfg *ServerConfig) {
	if cfg.Address == "" {
		v.addError("server.address", "address is required")
	}
	if cfg.ReadTimeout < 0 {
		v.addError("server.readTimeout", "must not be negative")
	}
	if cfg.WriteTimeout < 0 {
		v.addError("server.writeTimeout", "must not be negative")
	}
	if cfg.IdleTimeout < 0 {
		v.addError("server.idleTimeout", "must not be negative")
	}
	if cfg.ShutdownTimeout < 0 {
		v.addError("server.shutdownTimeout", "must not be negative")
	}
	if cfg.MaxHeaderBytes < 0 {
		v.addError("server.maxHeaderBytes", "must not be negative")
	}
}

func (v *Validator) validateMiddleware(cfg *MiddlewareConfig) {
	if rl := cfg.RateLimit; rl != nil && rl.Enabled {
		if rl.Rate <= 0 {
			v.addError("middleware.rateLimit.rate", "must be positive when enabled")
		}
		if rl.Burst < 0 {
			v.addError("middleware.rateLimit.burst", "must not be negative")
		}
	}

	if cb := cfg.CircuitBreaker; cb != nil && cb.Enabled {
		if cb.Threshold == 0 {
			v.addError("middleware.circuitBreaker.threshold", "must be positive when enabled")
		}
		if cb.Timeout < 0 {
			v.addError("middleware.circuitBreaker.timeout", "must not be negative")
		}
	}

	if cors := cfg.CORS; cors != nil && cors.Enabled {
		if len(cors.AllowOrigins) == 0 {
			v.addError("middleware.cors.allowOrigins", "at least one origin is required when enabled")
		}
	}
}

func (v *Validator) validateObservability(cfg *ObservabilityConfig) {
	if level := cfg.Logging.Level; level != "" && !validLogLevels[level] {
		v.addError("observability.logging.level",
			fmt.Sprintf("unknown level %q (debug, info, warn, error)", level))
	}
	if format := cfg.Logging.Format; format != "" && !validLogFormats[format] {
		v.addError("observability.logging.format",
			fmt.Sprintf("unknown format %q (json, console)", format))
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Address == "" {
		v.addError("observability.metrics.address", "address is required when metrics are enabled")
	}
	if path := cfg.Metrics.Path; path != "" && !strings.HasPrefix(path, "/") {
		v.addError("observability.metrics.path", "must start with /")
	}

	if rate := cfg.Tracing.SamplingRate; rate < 0 || rate > 1 {
		v.addError("observability.tracing.samplingRate", "must be between 0 and 1")
	}
	if cfg.Tracing.Enabled && cfg.Tracing.ServiceName == "" {
		v.addError("observability.tracing.serviceName", "service name is required when tracing is enabled")
	}
}
