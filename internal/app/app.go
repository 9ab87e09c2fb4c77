package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"trendpulse/internal/config"
	"trendpulse/internal/dataprocessing"
	apierrors "trendpulse/internal/errors"
	"trendpulse/internal/infrastructure"
	customMiddleware "trendpulse/internal/middleware"
	"trendpulse/internal/services"
	handlers "trendpulse/internal/transport/http"
	ws "trendpulse/internal/websocket"
	"trendpulse/pkg/contracts"
	"trendpulse/pkg/contracts/domain"
)

// AppName is the human readable application name
const AppName = "TrendPulse"

// compressionLevel is the gzip level of JSON and CSV responses
const compressionLevel = 5

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	ErrorHandler  *apierrors.ErrorHandler
	Services      *ServiceContainer

	listener net.Listener
	serveErr chan error
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Cache     *services.DatasetCache
	Data      *services.DataService
	Health    *services.HealthService
	WebSocket *ws.Hub
}

// Option configures NewApplication.
type Option func(*Application)

// WithLogger uses logger instead of the one built from the logging config.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Application) { a.Logger = logger }
}

// NewApplication wires every component from cfg. Nothing is started.
func NewApplication(cfg *config.Config, opts ...Option) (*Application, error) {
	a := &Application{
		Config:   cfg,
		serveErr: make(chan error, 1),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.Logger == nil {
		logger, err := infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		a.Logger = logger
	}

	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	a.Paths = paths

	providers, err := infrastructure.InitializeOTel(otelConfig(cfg.Telemetry), a.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	a.OTelProviders = providers

	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	a.Metrics = metrics

	if err := a.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	a.ErrorHandler = handlers.NewErrorHandler(a.Logger, cfg.Logging.Development)

	if err := a.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}
	a.createServer()

	return a, nil
}

func otelConfig(t config.TelemetryConfig) *infrastructure.OTelConfig {
	cfg := infrastructure.DefaultOTelConfig()
	if t.Environment != "" {
		cfg.Environment = t.Environment
	}
	cfg.EnableTracing = t.EnableTracing
	cfg.EnableMetrics = t.EnableMetrics
	if t.TraceExporter != "" {
		cfg.TraceExporter = t.TraceExporter
	}
	if t.MetricExporter != "" {
		cfg.MetricExporter = t.MetricExporter
	}
	if t.SampleRatio > 0 {
		cfg.SampleRatio = t.SampleRatio
	}
	return cfg
}

func (a *Application) initializeServices() error {
	wsMetrics, err := ws.NewOTelMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create websocket metrics: %w", err)
	}
	hub := ws.NewHub(a.Logger,
		ws.WithMetrics(wsMetrics),
		ws.WithTimings(ws.Timings{
			PongWait:   a.Config.WebSocket.PongWait,
			PingPeriod: a.Config.WebSocket.PingPeriod,
		}),
	)

	loader := dataprocessing.NewLoader(dataprocessing.Directories{
		Trend: a.Paths.TrendDir,
		Blog:  a.Paths.BlogDir,
		News:  a.Paths.NewsDir,
	}, a.Logger,
		dataprocessing.WithMetrics(a.Metrics),
		dataprocessing.WithTracer(a.OTelProviders.Tracer),
	)
	cache := services.NewDatasetCache(loader, a.Metrics, a.Logger)

	a.Services = &ServiceContainer{
		Cache:     cache,
		Data:      services.NewDataService(cache, a.Config.Dashboard, hub, a.Logger),
		WebSocket: hub,
		Health: services.NewHealthService(contracts.Version, a.Paths, cache, a.Logger,
			services.WithBuildInfo(contracts.BuildTime, contracts.GitCommit),
			services.WithClientCounter(hub),
		),
	}
	return nil
}

func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		return err
	}
	r.Use(otelMiddleware.Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
			Logger:         a.Logger,
		}))
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).Handle("/ws", ws.NewHandler(
		a.Services.WebSocket,
		ws.HandlerConfig{
			ReadBufferSize:  a.Config.WebSocket.ReadBufferSize,
			WriteBufferSize: a.Config.WebSocket.WriteBufferSize,
			AllowedOrigins:  a.Config.Security.AllowedOrigins,
		},
		a.Logger,
	))

	metricsHandler := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP)
	metricsHandler.AddSource("dataset_cache", func() interface{} { return a.Services.Cache.Stats() })
	metricsHandler.AddSource("websocket", func() interface{} { return a.Services.WebSocket.Stats() })
	r.Mount("/metrics", metricsHandler.Routes())

	a.setupAPIRoutes(r)

	a.Router = r
	return nil
}

func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		r.Use(customMiddleware.Compress(compressionLevel))
		r.Use(render.SetContentType(render.ContentTypeJSON))

		handlers.NewHealthHandler(a.Services.Health, a.Logger).Register(r)

		dataHandler := handlers.NewDataHandler(
			a.Services.Data,
			customMiddleware.NewValidator(a.Logger),
			a.Logger,
			a.ErrorHandler,
		)
		r.Mount("/data", dataHandler.Routes(
			customMiddleware.APIKeyAuth(a.Logger, a.Config.Security.APIKeys),
			customMiddleware.AuditLog(a.Logger),
		))
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Addr returns the address the server listens on once started.
func (a *Application) Addr() string {
	if a.listener == nil {
		return a.Server.Addr
	}
	return a.listener.Addr().String()
}

// Start binds the listener, starts the hub and serves in the background.
// The dataset is loaded eagerly so the first request does not pay for it.
func (a *Application) Start(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("address", a.Server.Addr),
		slog.String("data_dir", a.Paths.DataDir))

	if err := a.Paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to ensure directories: %w", err)
	}
	a.performStartupCheck(ctx)

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln

	a.Services.WebSocket.Start()

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			a.serveErr <- err
		}
	}()

	go a.warmCache(ctx)

	a.Logger.InfoContext(ctx, "application started", slog.String("address", a.Addr()))
	return nil
}

func (a *Application) warmCache(ctx context.Context) {
	ctx = infrastructure.EnsureTraceID(ctx)
	logger := infrastructure.WithComponent(a.Logger, "warmup")

	ds, err := a.Services.Cache.Get(ctx)
	if err != nil {
		infrastructure.WithError(logger, err).WarnContext(ctx, "initial dataset load failed")
		return
	}
	logger.InfoContext(ctx, "initial dataset loaded",
		slog.String("fingerprint", ds.Fingerprint),
		slog.Int("files", len(ds.Files)))
}

// performStartupCheck warns about missing input directories. A missing
// directory only yields an empty table, so nothing here is fatal.
func (a *Application) performStartupCheck(ctx context.Context) {
	for _, c := range domain.Categories() {
		dir := a.Paths.CategoryDir(c)
		if !config.FileExists(dir) {
			a.Logger.WarnContext(ctx, "input directory not found",
				slog.String("category", c.String()),
				slog.String("path", dir))
		}
	}
}

// Stop shuts the server down gracefully and releases background resources.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}

	a.Services.WebSocket.Stop()

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "application shutdown complete")
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, fmt.Errorf("close log file: %w", err))
	}
	return errors.Join(errs...)
}

// Run starts the application and blocks until ctx is cancelled, SIGINT or
// SIGTERM arrives, or the server fails.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "received shutdown signal")
	case runErr = <-a.serveErr:
	}

	if err := a.Stop(ctx); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}
