package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fahimkhan-git/seher-ai-chat/cmd/mainconfig"
	"github.com/fahimkhan-git/seher-ai-chat/internal/api/router"
	"github.com/fahimkhan-git/seher-ai-chat/internal/app/bootstrap"
	"github.com/fahimkhan-git/seher-ai-chat/internal/assistant"
	appconfig "github.com/fahimkhan-git/seher-ai-chat/internal/config"
	"github.com/fahimkhan-git/seher-ai-chat/internal/conversation"
	"github.com/fahimkhan-git/seher-ai-chat/internal/crm"
	"github.com/fahimkhan-git/seher-ai-chat/internal/dashboard"
	"github.com/fahimkhan-git/seher-ai-chat/internal/events"
	httpmiddleware "github.com/fahimkhan-git/seher-ai-chat/internal/http/middleware"
	"github.com/fahimkhan-git/seher-ai-chat/internal/leads"
	"github.com/fahimkhan-git/seher-ai-chat/internal/observability/metrics"
	"github.com/fahimkhan-git/seher-ai-chat/internal/submission"
	"github.com/fahimkhan-git/seher-ai-chat/internal/webchat"
	"github.com/fahimkhan-git/seher-ai-chat/internal/widget"
	"github.com/fahimkhan-git/seher-ai-chat/internal/widgetconfig"
	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Default().Warn("failed to read .env", "error", err)
	}
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting seher chat API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	metricsHandler, widgetMetrics := setupMetrics()
	aws := loadAWSClients(ctx, cfg, logger)

	a, err := newApp(ctx, cfg, logger, widgetMetrics, aws)
	if err != nil {
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}
	a.metricsHandler = metricsHandler
	defer a.close()

	go a.limiter.Run(ctx.Done(), time.Minute)
	go a.manager.Run(ctx.Done(), cfg.SessionSweepPeriod, cfg.SessionIdleTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	a.drain()
	logger.Info("server stopped")
}

func setupMetrics() (http.Handler, *metrics.WidgetMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewWidgetMetrics(reg)
}

// loadAWSClients returns empty clients when the SDK config cannot be loaded;
// every AWS-backed feature is optional.
func loadAWSClients(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) mainconfig.AWSClients {
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Warn("aws config unavailable; archive, SES and Bedrock disabled", "error", err)
		return mainconfig.AWSClients{}
	}
	return mainconfig.NewAWSClients(awsCfg, cfg)
}

// app holds the wired services so shutdown can drain them in order.
type app struct {
	cfg    *appconfig.Config
	logger *logging.Logger

	chat         *assistant.Handler
	leads        *leads.Service
	events       *events.Service
	widgetConfig widgetconfig.Store
	pipeline     *submission.Pipeline
	manager      *webchat.Manager
	hub          *dashboard.Hub
	limiter      *httpmiddleware.RateLimiter

	metricsHandler http.Handler
	closers        []func()
}

func newApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, mx *metrics.WidgetMetrics, aws mainconfig.AWSClients) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	pool, err := bootstrap.BuildPostgresPool(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if pool != nil {
		a.closers = append(a.closers, pool.Close)
	}
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
	}

	a.widgetConfig, err = bootstrap.BuildWidgetConfigStore(cfg, pool, redisClient, logger)
	if err != nil {
		return nil, err
	}

	var eventOpts []events.Option
	var leadOpts []leads.Option
	if pub := bootstrap.BuildEventPublisher(cfg, logger); pub != nil {
		a.closers = append(a.closers, func() { _ = pub.Close() })
		eventOpts = append(eventOpts, events.WithPublisher(pub))
		leadOpts = append(leadOpts, leads.WithPublisher(pub))
	}
	eventOpts = append(eventOpts, events.WithMetrics(mx))

	var eventStore events.Store
	var leadRepo interface {
		leads.Repository
		leads.SessionRepository
	}
	if pool != nil {
		eventStore = events.NewPostgresStore(pool)
		leadRepo = leads.NewPostgresRepository(pool)
	} else {
		eventStore = events.NewMemoryStore()
		leadRepo = leads.NewInMemoryRepository()
	}
	a.events = events.NewService(eventStore, logger, eventOpts...)

	allowOrigin := httpmiddleware.OriginChecker(cfg.AllowedOrigins)
	a.hub = dashboard.NewHub(allowOrigin, logger)

	sender, provider := bootstrap.BuildEmailSender(cfg, aws.SES, logger)
	logger.Info("lead email provider selected", "provider", provider)
	if notifier := bootstrap.BuildNotifier(cfg, sender, logger); notifier != nil {
		leadOpts = append(leadOpts, leads.WithNotifier(notifier))
	}
	if archiver := bootstrap.BuildArchiver(cfg, aws.S3, aws.Bedrock, logger); archiver != nil {
		leadOpts = append(leadOpts, leads.WithArchiver(archiver))
	}
	leadOpts = append(leadOpts,
		leads.WithSessions(leadRepo),
		leads.WithEventRecorder(a.events),
		leads.WithBroadcaster(a.hub),
	)
	a.leads = leads.NewService(leadRepo, logger, leadOpts...)

	llm, model := bootstrap.BuildLLMClient(ctx, cfg, aws.Bedrock, logger)
	assistantSvc := assistant.NewService(llm, model, logger,
		assistant.WithPropertySource(widgetconfig.PropertySource{Store: a.widgetConfig}),
		assistant.WithMetrics(mx),
	)
	a.chat = assistant.NewHandler(assistantSvc, logger)

	var recorder submission.LeadRecorder = a.leads
	if cfg.LocalAPIBaseURL != "" {
		recorder = submission.NewLocalClient(cfg.LocalAPIBaseURL, 0)
	}
	a.pipeline = submission.NewPipeline(
		crm.NewClient(cfg.CRMBaseURL, crm.WithHTTPClient(&http.Client{Timeout: cfg.CRMTimeout})),
		logger,
		submission.WithIPResolver(crm.NewIPLookup(cfg.IPLookupURL, cfg.IPLookupTimeout)),
		submission.WithRecorder(recorder),
		submission.WithMetrics(mx),
	)

	managerOpts := []webchat.ManagerOption{
		webchat.WithConfigSource(a.widgetConfig),
		webchat.WithEventSink(a.events),
		webchat.WithLocator(crm.NewLocator(cfg.GeoLookupURL, cfg.IPLookupTimeout)),
		webchat.WithMetrics(mx),
		webchat.WithLogger(logger),
		webchat.WithSessionTuning(cfg.ContextWindow, cfg.AITimeout),
	}
	if redisClient != nil {
		managerOpts = append(managerOpts, webchat.WithTranscriptStore(conversation.NewTranscriptStore(redisClient)))
	}
	a.manager = webchat.NewManager(widget.NewRegistry(mx), assistantSvc, a.pipeline, managerOpts...)

	a.limiter = httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	return a, nil
}

func (a *app) handler() http.Handler {
	return router.New(&router.Config{
		Logger:              a.logger,
		ChatHandler:         a.chat,
		LeadsHandler:        leads.NewHandler(a.leads, a.logger),
		EventsHandler:       events.NewHandler(a.events, a.logger),
		WidgetConfigHandler: widgetconfig.NewHandler(a.widgetConfig, a.logger),
		WidgetHandler:       webchat.NewHandler(a.manager, httpmiddleware.OriginChecker(a.cfg.AllowedOrigins), a.logger),
		DashboardFeed:       a.hub,
		MetricsHandler:      a.metricsHandler,
		RateLimiter:         a.limiter,
		CORSAllowedOrigins:  a.cfg.AllowedOrigins,
		APIKey:              a.cfg.WidgetConfigAPIKey,
		AdminAuthSecret:     a.cfg.AdminJWTSecret,
	})
}

// drain waits for background work started by requests.
func (a *app) drain() {
	a.manager.Wait()
	a.pipeline.Wait()
	a.leads.Wait()
	a.events.Wait()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
