package config

import "time"

// Config is the root configuration for the routing engine.
type Config struct {
	Server        ServerConfig        `yaml:"server" json:"server"`
	Routing       RoutingConfig       `yaml:"routing" json:"routing"`
	Middleware    MiddlewareConfig    `yaml:"middleware" json:"middleware"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Address         string   `yaml:"address" json:"address"`
	ReadTimeout     Duration `yaml:"readTimeout,omitempty" json:"readTimeout,omitempty"`
	WriteTimeout    Duration `yaml:"writeTimeout,omitempty" json:"writeTimeout,omitempty"`
	IdleTimeout     Duration `yaml:"idleTimeout,omitempty" json:"idleTimeout,omitempty"`
	ShutdownTimeout Duration `yaml:"shutdownTimeout,omitempty" json:"shutdownTimeout,omitempty"`
	MaxHeaderBytes  int      `yaml:"maxHeaderBytes,omitempty" json:"maxHeaderBytes,omitempty"`
}

// RoutingConfig holds matcher behavior settings. The route table itself
// is declared in code, not configuration.
type RoutingConfig struct {
	CaseInsensitive bool `yaml:"caseInsensitive" json:"caseInsensitive"`
}

// MiddlewareConfig enables and tunes the built-in middleware suite.
type MiddlewareConfig struct {
	CORS           *CORSConfig           `yaml:"cors,omitempty" json:"cors,omitempty"`
	RateLimit      *RateLimitConfig      `yaml:"rateLimit,omitempty" json:"rateLimit,omitempty"`
	CircuitBreaker *CircuitBreakerConfig `yaml:"circuitBreaker,omitempty" json:"circuitBreaker,omitempty"`
}

// CORSConfig holds cross-origin resource sharing settings.
type CORSConfig struct {
	Enabled          bool     `yaml:"enabled" json:"enabled"`
	AllowOrigins     []string `yaml:"allowOrigins,omitempty" json:"allowOrigins,omitempty"`
	AllowMethods     []string `yaml:"allowMethods,omitempty" json:"allowMethods,omitempty"`
	AllowHeaders     []string `yaml:"allowHeaders,omitempty" json:"allowHeaders,omitempty"`
	AllowCredentials bool     `yaml:"allowCredentials,omitempty" json:"allowCredentials,omitempty"`
	MaxAge           Duration `yaml:"maxAge,omitempty" json:"maxAge,omitempty"`
}

// RateLimitConfig holds token bucket rate limiter settings.
type RateLimitConfig struct {
	Enabled   bool     `yaml:"enabled" json:"enabled"`
	Rate      int      `yaml:"rate,omitempty" json:"rate,omitempty"`
	Burst     int      `yaml:"burst,omitempty" json:"burst,omitempty"`
	PerClient bool     `yaml:"perClient,omitempty" json:"perClient,omitempty"`
	ClientTTL Duration `yaml:"clientTTL,omitempty" json:"clientTTL,omitempty"`
}

// CircuitBreakerConfig holds circuit breaker settings.
type CircuitBreakerConfig struct {
	Enabled   bool     `yaml:"enabled" json:"enabled"`
	Threshold uint32   `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	Timeout   Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// ObservabilityConfig groups logging, metrics and tracing settings.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
	Tracing TracingConfig `yaml:"tracing" json:"tracing"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty" json:"level,omitempty"`
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
	Output string `yaml:"output,omitempty" json:"output,omitempty"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace,omitempty" json:"namespace,omitempty"`
	Path      string `yaml:"path,omitempty" json:"path,omitempty"`
	Address   string `yaml:"address,omitempty" json:"address,omitempty"`
}

// TracingConfig holds OpenTelemetry tracing settings.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	ServiceName  string  `yaml:"serviceName,omitempty" json:"serviceName,omitempty"`
	OTLPEndpoint string  `yaml:"otlpEndpoint,omitempty" json:"otlpEndpoint,omitempty"`
	SamplingRate float64 `yaml:"samplingRate,omitempty" json:"samplingRate,omitempty"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			IdleTimeout:     Duration(120 * time.Second),
			ShutdownTimeout: Duration(30 * time.Second),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  "info",
				Format: "json",
				Output: "stdout",
			},
			Metrics: MetricsConfig{
				Enabled:   true,
				Namespace: "http",
				Path:      "/metrics",
				Address:   ":9090",
			},
			Tracing: TracingConfig{
				ServiceName:  "routeway",
				SamplingRate: 1.0,
			},
		},
	}
}

// applyDefaults fills zero-valued fields from DefaultConfig.
func (c *Config) applyDefaults() {
	def := DefaultConfig()

	if c.Server.Address == "" {
		c.Server.Address = def.Server.Address
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = def.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = def.Server.WriteTimeout
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = def.Server.IdleTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = def.Server.ShutdownTimeout
	}

	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = def.Observability.Logging.Level
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = def.Observability.Logging.Format
	}
	if c.Observability.Logging.Output == "" {
		c.Observability.Logging.Output = def.Observability.Logging.Output
	}

	if c.Observability.Metrics.Namespace == "" {
		c.Observability.Metrics.Namespace = def.Observability.Metrics.Namespace
	}
	if c.Observability.Metrics.Path == "" {
		c.Observability.Metrics.Path = def.Observability.Metrics.Path
	}
	if c.Observability.Metrics.Address == "" {
		c.Observability.Metrics.Address = def.Observability.Metrics.Address
	}

	if c.Observability.Tracing.ServiceName == "" {
		c.Observability.Tracing.ServiceName = def.Observability.Tracing.ServiceName
	}
}
