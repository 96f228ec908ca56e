package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"debtlens/internal/config"
	"debtlens/internal/dataset"
	"debtlens/internal/errors"
	"debtlens/internal/infrastructure"
	customMiddleware "debtlens/internal/middleware"
	"debtlens/internal/services"
	handlers "debtlens/internal/transport/http"
	"debtlens/internal/watcher"
	ws "debtlens/internal/websocket"
	"debtlens/pkg/contracts"
	"debtlens/pkg/contracts/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

const (
	AppName = "DebtLens - Lebanon External Debt Explorer"

	// systemMetricsInterval is how often runtime gauges are sampled.
	systemMetricsInterval = 30 * time.Second
)

// Version and BuildTime come from the contracts package so the binaries and
// the version endpoint all report the same release.
var (
	Version   = contracts.Version
	BuildTime = contracts.BuildTime
)

// Application is the composition root. It owns the configuration, the
// dataset store, the HTTP server and every background worker, and knows
// how to start and stop them in the right order.
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Store         *dataset.Store
	WebSocketHub  *ws.Hub
	DataService   *services.DataService
	HealthService *services.HealthService
	Watcher       *watcher.FileWatcher
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics

	otelMW        *customMiddleware.OTelMiddleware
	systemMetrics *infrastructure.SystemMetricsCollector
	fanout        *refreshFanout
}

// refreshFanout forwards dataset refresh events to the WebSocket hub and,
// when a reload switched the active file, re-targets the file watcher so
// subsequent on-disk edits keep invalidating the cache.
type refreshFanout struct {
	hub    *ws.Hub
	logger *slog.Logger

	mu      sync.Mutex
	watcher *watcher.FileWatcher
}

func (f *refreshFanout) setWatcher(w *watcher.FileWatcher) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watcher = w
}

// BroadcastDataRefreshed implements services.RefreshNotifier.
func (f *refreshFanout) BroadcastDataRefreshed(ctx context.Context, event domain.RefreshEvent) {
	f.hub.BroadcastDataRefreshed(ctx, event)

	f.mu.Lock()
	w := f.watcher
	f.mu.Unlock()

	if w == nil || event.Reason != domain.RefreshReasonReload {
		return
	}
	if w.Path() == event.Path {
		return
	}
	if err := w.Update(event.Path); err != nil {
		f.logger.WarnContext(ctx, "Failed to re-target file watcher",
			slog.String("path", event.Path),
			slog.String("error", err.Error()))
	}
}

// NewApplication creates a new application instance with dependency injection
func NewApplication(configFile string) (*Application, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.String("data_file", cfg.Data.Path))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	// The OTel middleware owns the business metrics instruments; services and
	// the hub record against the same set instead of registering duplicates.
	otelMW, err := customMiddleware.NewOTelMiddleware(otelProviders)
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry middleware: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       otelMW.Metrics(),
		otelMW:        otelMW,
	}

	if otelProviders.Meter != nil {
		collector, err := infrastructure.NewSystemMetricsCollector(otelProviders.Meter, systemMetricsInterval)
		if err != nil {
			logger.Warn("System metrics collection disabled", slog.String("error", err.Error()))
		} else {
			app.systemMetrics = collector
		}
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	loader := dataset.NewLoader(a.Config.Data.YearCandidates, a.Config.Data.DebtCandidates, a.Logger)
	a.Store = dataset.NewStore(loader, a.Logger)

	hub := ws.NewHub(a.Config.WebSocket, a.Logger, a.Metrics)
	hub.Start()
	a.WebSocketHub = hub

	a.fanout = &refreshFanout{hub: hub, logger: a.Logger}

	a.DataService = services.NewDataServiceWithLogger(a.Config, a.Store, a.fanout, a.Metrics, a.Logger)
	a.HealthService = services.NewHealthService(Version, BuildTime, a.DataService, a.Logger)

	if a.Config.Data.Watch {
		fw, err := watcher.New(a.Config.Data.Path, a.Config.Data.WatchDebounce, a.onDataFileChange, a.Logger)
		if err != nil {
			a.Logger.Warn("File watching disabled",
				slog.String("path", a.Config.Data.Path),
				slog.String("error", err.Error()))
		} else {
			a.Watcher = fw
		}
	}

	return nil
}

// onDataFileChange reloads the active dataset after the watcher reports a
// change. Failures are logged and the previous snapshot stays served.
func (a *Application) onDataFileChange(ctx context.Context, path string) {
	resp, err := a.DataService.Reload(ctx, path, domain.RefreshReasonWatch)
	if err != nil {
		a.Logger.ErrorContext(ctx, "Reload after file change failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return
	}
	a.Logger.InfoContext(ctx, "Dataset reloaded after file change",
		slog.String("path", path),
		slog.Int("rows", resp.Rows))
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Minimal middleware first; these don't wrap the ResponseWriter, so the
	// WebSocket upgrade still sees the raw connection.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).HandleFunc("/ws", a.handleWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(a.otelMW.Handler)
		r.Use(customMiddleware.BusinessMetricsMiddleware(a.Metrics))
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.DefaultSecureHeaders().Handler)
		r.Use(customMiddleware.Compress(5))

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.corsConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	// Prometheus scrape endpoint stays outside the middleware group so
	// scrapes don't show up in request metrics.
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	// Unmatched routes render the same problem envelope as everything else.
	respondError := customMiddleware.NewErrorResponder(a.Logger)
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, fmt.Errorf("%w: %s", customMiddleware.ErrNotFound, req.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		problem := customMiddleware.ProblemFromStatus(http.StatusMethodNotAllowed,
			fmt.Sprintf("%s is not allowed on %s", req.Method, req.URL.Path),
			infrastructure.GetTraceID(req.Context()))
		problem.Render(w, req)
	})

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := errors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		// Panics inside API handlers render the RFC 7807 envelope; the group
		// recoverer above stays as the backstop for the middleware chain.
		r.Use(errors.RecoveryMiddleware(errorHandler))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		presentationHandler := handlers.NewPresentationHandler(a.Logger)
		r.Get("/presentation", presentationHandler.Get)

		seriesHandler := handlers.NewSeriesHandler(a.DataService, a.Logger, errorHandler)
		r.Mount("/series", seriesHandler.Routes())
	})
}

// corsConfig builds the CORS policy from the security configuration.
// Content-Disposition is exposed so browser clients can read the filename
// of CSV exports.
func (a *Application) corsConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start launches the background workers and warms the dataset cache. The
// HTTP listener itself is started by Run; keeping it out of Start lets
// tests exercise startup without binding a port.
func (a *Application) Start(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("data_file", a.Config.Data.Path))

	if a.systemMetrics != nil {
		go a.systemMetrics.Start(ctx)
	}

	if a.Watcher != nil {
		if err := a.Watcher.Start(ctx); err != nil {
			a.Logger.WarnContext(ctx, "File watching disabled",
				slog.String("path", a.Config.Data.Path),
				slog.String("error", err.Error()))
			a.Watcher = nil
		} else {
			a.fanout.setWatcher(a.Watcher)
		}
	}

	// Warm the cache so the first request doesn't pay the parse cost. A
	// missing or malformed file is not fatal here; readiness reports it and
	// every request surfaces the load error until the file appears.
	if err := a.DataService.Ping(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Dataset not loadable at startup",
			slog.String("path", a.Config.Data.Path),
			slog.String("error", err.Error()))
	} else {
		a.Logger.InfoContext(ctx, "Dataset cache warmed",
			slog.String("path", a.DataService.ActivePath()))
	}

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	err := a.Server.Shutdown(shutdownCtx)

	if a.Watcher != nil {
		a.Watcher.Stop()
	}
	a.WebSocketHub.Stop()
	if a.systemMetrics != nil {
		a.systemMetrics.Stop()
	}

	if a.OTelProviders != nil {
		if otelErr := a.OTelProviders.Shutdown(shutdownCtx); otelErr != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry",
				slog.String("error", otelErr.Error()))
		}
	}

	if err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run starts the application and blocks until an interrupt, SIGTERM or a
// listener failure, then shuts everything down gracefully.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// If the listener exits for any reason, begin shutdown; otherwise a
		// server stopped out-of-band would leave Run waiting on a signal.
		defer stop()

		a.Logger.Info("HTTP server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		// Shutdown deadlines come from the configuration, not the cancelled
		// signal context.
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// handleWebSocket handles WebSocket connections
func (a *Application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	reqID := r.Header.Get("X-Request-ID")
	if reqID == "" {
		reqID = fmt.Sprintf("ws-%d", time.Now().UnixNano())
	}

	ctx := infrastructure.WithTraceID(r.Context(), reqID)
	a.Logger.InfoContext(ctx, "WebSocket upgrade request",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("origin", r.Header.Get("Origin")))

	upgrader := websocket.Upgrader{
		ReadBufferSize:  a.Config.WebSocket.ReadBufferSize,
		WriteBufferSize: a.Config.WebSocket.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// No Origin header means a non-browser client; let it through.
			if origin == "" {
				return true
			}
			for _, allowed := range a.Config.Security.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			a.Logger.WarnContext(ctx, "WebSocket origin rejected",
				slog.String("origin", origin),
				slog.Any("allowed_origins", a.Config.Security.AllowedOrigins))
			return false
		},
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			a.Logger.ErrorContext(ctx, "WebSocket upgrade error",
				slog.Int("status", status),
				slog.String("reason", reason.Error()))
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrader.Error already logged and responded.
		return
	}

	a.Logger.InfoContext(ctx, "WebSocket client connected",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("request_id", reqID))

	ws.ServeWS(a.WebSocketHub, conn, reqID, a.Logger)
}
