// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/lumnam/lumnam-linebot-go/internal/buildinfo"
	"github.com/lumnam/lumnam-linebot-go/internal/config"
	"github.com/lumnam/lumnam-linebot-go/internal/ctxutil"
	"github.com/lumnam/lumnam-linebot-go/internal/geo"
	"github.com/lumnam/lumnam-linebot-go/internal/interaction"
	"github.com/lumnam/lumnam-linebot-go/internal/logger"
	"github.com/lumnam/lumnam-linebot-go/internal/metrics"
	"github.com/lumnam/lumnam-linebot-go/internal/r2client"
	"github.com/lumnam/lumnam-linebot-go/internal/ratelimit"
	"github.com/lumnam/lumnam-linebot-go/internal/reply"
	"github.com/lumnam/lumnam-linebot-go/internal/resolver"
	"github.com/lumnam/lumnam-linebot-go/internal/sentry"
	"github.com/lumnam/lumnam-linebot-go/internal/snapshot"
	"github.com/lumnam/lumnam-linebot-go/internal/storage"
	"github.com/lumnam/lumnam-linebot-go/internal/thaitext"
	"github.com/lumnam/lumnam-linebot-go/internal/webhook"
)

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg          *config.Config
	logger       *logger.Logger
	db           *storage.DB
	metrics      *metrics.Metrics
	registry     *prometheus.Registry
	recorder     *interaction.Recorder
	fulfillment  *webhook.Handler
	lineHandler  *webhook.LineHandler    // nil without a LINE channel
	sessions     *webhook.SessionStore   // nil without a LINE channel
	userLimiter  *ratelimit.KeyedLimiter // nil without a LINE channel
	replyLimiter *ratelimit.Limiter      // nil without a LINE channel
	server       *http.Server
	wg           sync.WaitGroup // background jobs
}

// Initialize creates and initializes a new application with all dependencies.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})

	log = log.WithField("service", "lumnam-linebot-go").WithField("version", buildinfo.Release())
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Repositories log through slog.*Context; the default handler adds
	// request_id, session_id and user_id from the context.
	slog.SetDefault(log.Logger)

	log.Info("Initializing application...")
	if cfg.BetterStackToken != "" {
		log.WithField("endpoint", cfg.BetterStackEndpoint).Info("Better Stack logging enabled")
	}

	if err := sentry.Initialize(sentry.Config{
		Token:       cfg.SentryToken,
		Host:        cfg.SentryHost,
		Environment: cfg.Environment,
		Release:     buildinfo.Release(),
		SampleRate:  cfg.SentrySampleRate,
	}); err != nil {
		log.WithError(err).Warn("Sentry initialization failed")
	} else if sentry.IsEnabled() {
		log.WithField("host", cfg.SentryHost).Info("Sentry error tracking enabled")
	}

	if cfg.HasR2() {
		installSnapshot(ctx, cfg, log)
	}

	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	geocoder := geo.NewGeocoder(cfg.GeocoderURL, cfg.GeocoderUserAgent(), cfg.GeocodeTimeout, geo.WithMetrics(m))
	if cfg.ContactEmail == "" {
		log.Warn("CONTACT_EMAIL not set; geocoder requests carry no contact address")
	}

	prober := reply.NewProber(nil, cfg.ImageProbeTimeout, m)
	images := reply.NewImages(cfg.PublicBaseURL, cfg.FallbackImageURL, prober, reply.ProbePolicy{
		Detail: cfg.ImageProbeDetail,
		Lists:  cfg.ImageProbeLists,
	})
	renderer := reply.NewRenderer(images)

	segmenter, err := thaitext.NewSegmenter(cfg.ThaiDictPath)
	if err != nil {
		log.WithError(err).WithField("path", cfg.ThaiDictPath).
			Warn("Thai dictionary not loaded; name search will not split words")
	}

	engine := resolver.New(db, geocoder, renderer,
		resolver.WithMetrics(m),
		resolver.WithSegmenter(segmenter),
	)

	recorder := interaction.NewRecorder(db, m, interaction.Options{
		QueueSize:    cfg.InteractionQueueSize,
		WriteTimeout: config.InteractionFlush,
	})

	app := &Application{
		cfg:         cfg,
		logger:      log,
		db:          db,
		metrics:     m,
		registry:    registry,
		recorder:    recorder,
		fulfillment: webhook.NewHandler(engine, recorder, log.WithModule("webhook"), config.FulfillmentProcessing),
	}

	if cfg.HasLineChannel() {
		app.sessions = webhook.NewSessionStore()
		app.userLimiter = ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
			Name:          "user",
			Burst:         config.UserRateBurst,
			RefillRate:    config.UserRateRefill,
			CleanupPeriod: config.RateLimiterCleanupInterval,
			Metrics:       m,
		})
		app.replyLimiter = ratelimit.New(config.ReplyRatePerSecond, config.ReplyRatePerSecond)

		app.lineHandler, err = webhook.NewLineHandler(webhook.LineConfig{
			ChannelSecret: cfg.LineChannelSecret,
			ChannelToken:  cfg.LineChannelToken,
			Engine:        engine,
			Recorder:      recorder,
			Sessions:      app.sessions,
			UserLimiter:   app.userLimiter,
			ReplyLimiter:  app.replyLimiter,
			Metrics:       m,
			Logger:        log.WithModule("line"),
			EventTimeout:  config.LineEventProcessing,
		})
		if err != nil {
			app.userLimiter.Stop()
			_ = db.Close()
			return nil, fmt.Errorf("line handler: %w", err)
		}
		log.Info("LINE callback enabled")
	}

	gin.SetMode(gin.ReleaseMode)
	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.router(),
		ReadHeaderTimeout: config.HTTPRead,
		ReadTimeout:       config.HTTPRead,
		WriteTimeout:      config.HTTPWrite,
		IdleTimeout:       config.HTTPIdle,
	}

	log.Info("Initialization complete")
	return app, nil
}

// installSnapshot replaces the local catalogue with the published snapshot.
// Failures keep whatever database is already on disk.
func installSnapshot(ctx context.Context, cfg *config.Config, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(ctx, config.SnapshotDownload)
	defer cancel()

	client, err := r2client.New(ctx, r2client.Config{
		Endpoint:    cfg.R2Endpoint,
		AccessKeyID: cfg.R2AccessKeyID,
		SecretKey:   cfg.R2SecretAccessKey,
		BucketName:  cfg.R2BucketName,
	})
	if err != nil {
		log.WithError(err).Warn("R2 client unavailable; using local catalogue")
		return
	}

	start := time.Now()
	etag, updated, err := snapshot.New(client, cfg.R2SnapshotKey).Install(ctx, cfg.SQLitePath())
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		log.WithField("key", cfg.R2SnapshotKey).Warn("No catalogue snapshot published; using local catalogue")
	case err != nil:
		log.WithError(err).Error("Catalogue snapshot install failed; using local catalogue")
	default:
		log.WithField("etag", etag).
			WithField("updated", updated).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			Info("Catalogue snapshot ready")
	}
}

func (a *Application) router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(a.logger))

	router.GET("/livez", a.livenessCheck)
	router.HEAD("/livez", a.livenessCheck)
	router.GET("/readyz", a.readinessCheck)
	router.HEAD("/readyz", a.readinessCheck)

	router.POST("/webhook", a.fulfillment.HandleFulfillment)
	router.POST("/log", a.fulfillment.HandleLog)
	if a.lineHandler != nil {
		router.POST("/callback", a.lineHandler.Handle)
	}

	router.GET("/metrics",
		metricsAuthMiddleware(a.cfg.MetricsPassword != "", a.cfg.MetricsUsername, a.cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
	return router
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (a *Application) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), config.ReadinessCheckTimeout)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		a.logger.WithError(err).Warn("Readiness check failed: database unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "database unavailable",
		})
		return
	}

	catalogue, interactions, err := a.catalogueStats(ctx)
	if err != nil {
		a.logger.WithError(err).Warn("Readiness check failed: catalogue unreadable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "catalogue unreadable",
		})
		return
	}
	if catalogue["attraction"] == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "not ready",
			"reason":    "catalogue empty",
			"catalogue": catalogue,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "ready",
		"database":     "connected",
		"catalogue":    catalogue,
		"interactions": interactions,
		"features":     a.features(),
	})
}

// catalogueStats counts catalogue rows and logged interactions concurrently.
func (a *Application) catalogueStats(ctx context.Context) (map[string]int, int, error) {
	var (
		catalogue    map[string]int
		interactions int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		catalogue, err = a.db.CountCatalogue(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		interactions, err = a.db.CountInteractions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return catalogue, interactions, nil
}

func (a *Application) features() map[string]bool {
	return map[string]bool{
		"line_callback":  a.lineHandler != nil,
		"image_probe":    a.cfg.ImageProbeDetail || a.cfg.ImageProbeLists,
		"snapshot":       a.cfg.HasR2(),
		"error_tracking": sentry.IsEnabled(),
	}
}

// Run starts the HTTP server and background jobs, then blocks until
// SIGINT/SIGTERM. Background jobs are stopped before resources are closed.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.startBackgroundJobs(ctx)
	a.startHTTPServer()

	sig := a.waitForShutdownSignal()
	a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")

	cancel()

	a.logger.Info("Waiting for background jobs to finish...")
	start := time.Now()
	a.wg.Wait()
	a.logger.WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("All background jobs completed")

	return a.shutdown()
}

func (a *Application) startBackgroundJobs(ctx context.Context) {
	a.wg.Go(func() {
		a.updateCatalogueMetrics(ctx)
	})
	if a.sessions != nil {
		a.wg.Go(func() {
			a.sweepSessions(ctx)
		})
	}
}

func (a *Application) startHTTPServer() {
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.WithError(err).Error("HTTP server error")
		}
	}()
}

func (a *Application) waitForShutdownSignal() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return <-quit
}

// shutdown stops accepting requests, waits for in-flight work, then closes
// resources. Queued interaction logs are written before the database closes.
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	if a.lineHandler != nil {
		a.logger.Info("Waiting for LINE events to complete...")
		if err := a.lineHandler.Shutdown(shutdownCtx); err != nil {
			a.logger.WithError(err).Warn("LINE handler shutdown timeout")
		}
	}

	flushCtx, flushCancel := context.WithTimeout(shutdownCtx, config.InteractionFlush)
	if err := a.recorder.Shutdown(flushCtx); err != nil {
		a.logger.WithError(err).Warn("Interaction log queue not drained")
	}
	flushCancel()
	if dropped := a.recorder.Dropped(); dropped > 0 {
		a.logger.WithField("dropped", dropped).Warn("Interaction logs dropped during run")
	}

	a.logger.Info("Closing resources...")
	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).WithField("component", "database").Error("Component close error")
	}
	if a.userLimiter != nil {
		a.userLimiter.Stop()
	}

	sentry.Flush(config.SentryFlush)

	if err := a.logger.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Warn("Logger shutdown timed out")
	}

	a.logger.Info("Shutdown complete")
	return nil
}

// updateCatalogueMetrics records catalogue table sizes at startup and then
// periodically.
func (a *Application) updateCatalogueMetrics(ctx context.Context) {
	a.logger.Debug("Catalogue metrics job started")
	defer a.logger.Debug("Catalogue metrics job stopped")

	a.recordCatalogueMetrics(ctx)

	ticker := time.NewTicker(config.MetricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.recordCatalogueMetrics(ctx)
		}
	}
}

func (a *Application) recordCatalogueMetrics(ctx context.Context) {
	if a.metrics == nil {
		return
	}
	counts, err := a.db.CountCatalogue(ctx)
	if err != nil {
		if ctx.Err() == nil {
			a.logger.WithError(err).Warn("Failed to count catalogue rows")
		}
		return
	}
	for table, n := range counts {
		a.metrics.SetCatalogueSize(table, n)
	}
}

// sweepSessions drops expired LINE chat contexts.
func (a *Application) sweepSessions(ctx context.Context) {
	ticker := time.NewTicker(config.SessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.sessions.Sweep()
			a.logger.WithField("sessions", a.sessions.Len()).Debug("LINE sessions swept")
		}
	}
}

// securityHeadersMiddleware adds security headers to responses.
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'")
		c.Next()
	}
}

// requestID returns the caller's request or correlation ID, or a new one.
func requestID(c *gin.Context) string {
	for _, h := range []string{"X-Request-Id", "X-Correlation-Id"} {
		if id := c.GetHeader(h); id != "" {
			return id
		}
	}
	return uuid.NewString()
}

// loggingMiddleware tags the request with an ID and logs it with a
// status-based level: 5xx=Error, 4xx=Warn (404=Debug), else Debug.
func loggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		id := requestID(c)
		c.Header("X-Request-Id", id)
		c.Request = c.Request.WithContext(ctxutil.WithRequestID(c.Request.Context(), id))

		c.Next()

		status := c.Writer.Status()
		entry := log.WithRequestID(id).
			WithField("http_method", method).
			WithField("http_path", path).
			WithField("http_status", status).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			WithField("client_ip", c.ClientIP())

		switch {
		case status >= 500:
			entry.Error("HTTP request failed")
		case status == http.StatusNotFound:
			entry.Debug("HTTP request not found")
		case status >= 400:
			entry.Warn("HTTP request rejected")
		default:
			entry.Debug("HTTP request completed")
		}
	}
}
