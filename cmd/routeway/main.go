// Package main is the entry point for the routeway HTTP routing engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/avello/routeway/internal/config"
	"github.com/avello/routeway/internal/middleware"
	"github.com/avello/routeway/internal/observability"
	"github.com/avello/routeway/internal/router"
	"github.com/avello/routeway/internal/server"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	showVersion bool
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		printVersion()
		return
	}

	logger := initLogger(flags)
	defer func() { _ = logger.Sync() }()

	cfg := loadConfig(flags.configPath, logger)
	app := initApplication(cfg, logger)

	run(app, logger)
}

// parseFlags parses command line flags with environment fallbacks.
func parseFlags() cliFlags {
	configPath := flag.String("config", getEnvOrDefault("ROUTEWAY_CONFIG_PATH", "configs/routeway.yaml"),
		"Path to configuration file")
	logLevel := flag.String("log-level", getEnvOrDefault("ROUTEWAY_LOG_LEVEL", "info"),
		"Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", getEnvOrDefault("ROUTEWAY_LOG_FORMAT", "json"),
		"Log format (json, console)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	return cliFlags{
		configPath:  *configPath,
		logLevel:    *logLevel,
		logFormat:   *logFormat,
		showVersion: *showVersion,
	}
}

// printVersion prints version information.
func printVersion() {
	fmt.Printf("routeway version %s\n", version)
	fmt.Printf("  Build time: %s\n", buildTime)
	fmt.Printf("  Git commit: %s\n", gitCommit)
}

// initLogger initializes the logger.
func initLogger(flags cliFlags) observability.Logger {
	logger, err := observability.NewLogger(observability.LogConfig{
		Level:  flags.logLevel,
		Format: flags.logFormat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	observability.SetGlobalLogger(logger)
	return logger
}

// loadConfig loads and validates the configuration. A missing file is
// not fatal: the engine runs on defaults.
func loadConfig(configPath string, logger observability.Logger) *config.Config {
	logger.Info("starting routeway",
		observability.String("version", version),
		observability.String("config", configPath),
	)

	if _, err := os.Stat(configPath); err != nil {
		logger.Warn("config file not found, using defaults",
			observability.String("path", configPath),
		)
		return config.DefaultConfig()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", observability.Error(err))
	}

	return cfg
}

// application holds all application components.
type application struct {
	server  *server.Server
	metrics *observability.Metrics
	tracer  *observability.Tracer
	config  *config.Config
}

// initApplication wires the router, middleware and server from the
// configuration.
func initApplication(cfg *config.Config, logger observability.Logger) *application {
	var recorder observability.Recorder = observability.NopRecorder{}
	var metrics *observability.Metrics
	if cfg.Observability.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Observability.Metrics.Namespace)
		recorder = metrics
	}

	tracer := initTracer(cfg, logger)

	r := router.New(
		routerOptions(cfg, recorder, logger,
			globalMiddleware(cfg, logger, tracer)...)...,
	)

	if err := r.Register(builtinRoutes()...); err != nil {
		logger.Fatal("failed to register routes", observability.Error(err))
	}

	serverOpts := []server.Option{server.WithLogger(logger)}
	if metrics != nil {
		serverOpts = append(serverOpts,
			server.WithMetricsListener(cfg.Observability.Metrics, metrics))
	}

	return &application{
		server:  server.New(cfg.Server, r, serverOpts...),
		metrics: metrics,
		tracer:  tracer,
		config:  cfg,
	}
}

// routerOptions assembles router construction options.
func routerOptions(
	cfg *config.Config,
	recorder observability.Recorder,
	logger observability.Logger,
	chain ...router.Middleware,
) []router.Option {
	opts := []router.Option{
		router.WithMetrics(recorder),
		router.WithLogger(logger),
		router.WithMiddleware(chain...),
	}
	if cfg.Routing.CaseInsensitive {
		opts = append(opts, router.WithCaseInsensitive())
	}
	return opts
}

// globalMiddleware builds the global middleware chain, outermost first.
func globalMiddleware(
	cfg *config.Config,
	logger observability.Logger,
	tracer *observability.Tracer,
) []router.Middleware {
	chain := []router.Middleware{
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logging(logger),
	}

	if cfg.Observability.Tracing.Enabled {
		chain = append(chain, middleware.Tracing(tracer))
	}

	if cors := cfg.Middleware.CORS; cors != nil && cors.Enabled {
		chain = append(chain, middleware.CORS(middleware.CORSConfig{
			AllowedOrigins:   cors.AllowOrigins,
			AllowedMethods:   cors.AllowMethods,
			AllowedHeaders:   cors.AllowHeaders,
			AllowCredentials: cors.AllowCredentials,
			MaxAge:           int(cors.MaxAge.Duration().Seconds()),
		}))
	}

	// ErrorHandler wraps the rate limiter and breaker so their
	// rejections reach clients as JSON error bodies, not as the
	// transport's plain status pages.
	chain = append(chain, middleware.ErrorHandler(logger))

	if rl := cfg.Middleware.RateLimit; rl != nil && rl.Enabled {
		limiter := middleware.NewRateLimiter(rl.Rate, rl.Burst, rl.PerClient,
			middleware.WithRateLimiterLogger(logger))
		chain = append(chain, limiter.Middleware())
	}

	if cb := cfg.Middleware.CircuitBreaker; cb != nil && cb.Enabled {
		breaker := middleware.NewCircuitBreaker("routeway", cb.Threshold,
			cb.Timeout.Duration(),
			middleware.WithCircuitBreakerLogger(logger))
		chain = append(chain, breaker.Middleware())
	}

	return chain
}

// builtinRoutes returns the routes the binary serves out of the box.
func builtinRoutes() []router.Route {
	info := router.ResponderFunc(func(ctx context.Context, req *router.Request) (*router.Response, error) {
		return router.JSONResponse(http.StatusOK, map[string]string{
			"service": "routeway",
			"version": version,
		})
	})

	return []router.Route{
		router.NewRoute(http.MethodGet, "/", info),
		router.NewRoute(http.MethodGet, "/version", info),
	}
}

// initTracer initializes the tracer.
func initTracer(cfg *config.Config, logger observability.Logger) *observability.Tracer {
	tracer, err := observability.NewTracer(observability.TracerConfig{
		ServiceName:  cfg.Observability.Tracing.ServiceName,
		Enabled:      cfg.Observability.Tracing.Enabled,
		SamplingRate: cfg.Observability.Tracing.SamplingRate,
		OTLPEndpoint: cfg.Observability.Tracing.OTLPEndpoint,
	})
	if err != nil {
		logger.Fatal("failed to initialize tracer", observability.Error(err))
	}

	return tracer
}

// run starts the server and blocks until a shutdown signal arrives.
func run(app *application, logger observability.Logger) {
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.server.Start(context.Background())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", observability.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Fatal("server failed", observability.Error(err))
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		app.config.Server.ShutdownTimeout.Duration())
	defer cancel()

	if err := app.server.Stop(shutdownCtx); err != nil {
		logger.Error("failed to stop server gracefully", observability.Error(err))
	}

	if err := app.tracer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown tracer", observability.Error(err))
	}

	logger.Info("routeway stopped")
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
