package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alert-strategist/internal/bot"
	"alert-strategist/internal/cache"
	"alert-strategist/internal/catalog"
	"alert-strategist/internal/config"
	"alert-strategist/internal/db"
	"alert-strategist/internal/dispatch"
	"alert-strategist/internal/engine"
	"alert-strategist/internal/handler"
	"alert-strategist/internal/job"
	"alert-strategist/internal/metrics"
	"alert-strategist/internal/notify"
	"alert-strategist/internal/repository"
	"alert-strategist/internal/service"
	"alert-strategist/pkg/logger"
	"alert-strategist/pkg/tracing"

	_ "alert-strategist/docs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initPostgresFunc       = db.InitPostgres
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	newKafkaPublisherFunc  = notify.NewKafkaPublisher
	startCatalogJobFunc    = func(j *job.CatalogRefreshJob, ctx context.Context) { go j.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Alert Strategist API
// @version         1.0
// @description     Evaluates indicator alerts against weighted rule-tree strategies and records BUY/SELL actions.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
func main() {
	_ = loadEnvFunc()

	cfg := loadConfigFunc()

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		logger.L().Fatal("invalid logger configuration", logger.Error(err))
	}
	logger.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx, tracing.Config{
		Enabled:  cfg.TracingEnabled,
		Endpoint: cfg.OTLPEndpoint,
	})
	if err != nil {
		log.Fatal("failed to initialize tracer", logger.Error(err))
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error("error shutting down tracer provider", logger.Error(err))
		}
	}()

	// Init Postgres and Redis
	pool, err := initPostgresFunc(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", logger.Error(err))
	}
	if pool != nil {
		defer pool.Close()
	}
	rdb, err := initRedisFunc(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", logger.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := metrics.New(reg)

	alertRepo := repository.NewAlertRepository(pool, tracer)
	strategyRepo := repository.NewStrategyRepository(pool, tracer)
	actionRepo := repository.NewActionRepository(pool, tracer)
	catalogRepo := repository.NewCatalogRepository(pool, tracer)

	// Indicator catalog, refreshed in the background
	cat := catalog.New(catalogRepo)
	refreshJob := job.NewCatalogRefreshJob(tracer, cat, cfg.CatalogRefreshSecs, rec, log)
	startCatalogJobFunc(refreshJob, ctx)

	// Notification channels
	notifier := notify.NewMulti(rec)
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := newKafkaPublisherFunc(notify.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaActionsTopic,
		})
		if err != nil {
			log.Fatal("failed to create kafka publisher", logger.Error(err))
		}
		defer publisher.Close()
		notifier.Add(publisher)
	}

	dispatcher := dispatch.New(actionRepo, notifier, rec, log, cfg.NotifyTimeout())

	engineOpts := []engine.Option{engine.WithMetrics(rec), engine.WithLogger(log)}
	if rdb != nil {
		engineOpts = append(engineOpts, engine.WithLocker(engine.ChainLocker{
			engine.NewKeyedLocker(),
			engine.NewRedisLocker(rdb, cfg.LockTTL()),
		}))
	}
	eng := engine.New(tracer, alertRepo, strategyRepo, dispatcher, cat, engine.Config{
		EvalTimeout:  cfg.EvalTimeout(),
		StoreTimeout: cfg.StoreTimeout(),
		Concurrency:  cfg.EvalConcurrency,
	}, engineOpts...)

	var scoreCache service.RedisClient
	if rdb != nil {
		scoreCache = rdb
	}
	scoreService := service.NewScoreService(tracer, eng, scoreCache, cfg.ScoreCacheTTL(), log)
	strategyService := service.NewStrategyService(tracer, strategyRepo, cat)
	catalogService := service.NewCatalogService(tracer, catalogRepo, cat, log)

	// Start Telegram bot
	tg, err := startTelegramBotFunc(bot.Config{
		Token:  cfg.TelegramBotToken,
		ChatID: cfg.TelegramChatID,
	}, scoreService, actionRepo, log)
	if err != nil {
		log.Error("telegram bot disabled", logger.Error(err))
	}
	if tg != nil {
		defer tg.Stop()
		notifier.Add(tg)
	}
	if notifier.Len() == 0 {
		notifier.Add(notify.NewLogNotifier(log))
	}
	log.Info("action notifiers configured", logger.String("notifiers", notifier.Name()))

	// Create handlers and routes
	h := newHandlerFunc(tracer, eng, strategyService, alertRepo, actionRepo)
	h.SetScoreReader(scoreService)
	h.SetWeightManager(catalogService)
	h.SetMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	h.SetAPIKey(cfg.APIKey)

	r := newRouterFunc()
	r.Use(otelgin.Middleware(tracing.DefaultServiceName))
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", logger.Error(err))
		}
	}()
	log.Info("HTTP server listening", logger.String("addr", cfg.HTTPAddr))

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Info("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", logger.Error(err))
	}

	// drain evaluations and notifications started by accepted webhooks
	eng.Wait()

	log.Info("Server exiting")
}
