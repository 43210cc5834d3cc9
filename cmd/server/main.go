package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"machsafe/internal/alerts/aggregator"
	alertsMetrics "machsafe/internal/alerts/metrics"
	"machsafe/internal/alerts/sources"
	alertsPostgres "machsafe/internal/alerts/store/postgres"
	auditMetrics "machsafe/internal/audit/metrics"
	"machsafe/internal/audit/query"
	"machsafe/internal/audit/recorder"
	"machsafe/internal/audit/sink"
	auditPostgres "machsafe/internal/audit/store/postgres"
	"machsafe/internal/identity"
	"machsafe/internal/jwttoken"
	"machsafe/internal/notification/cache"
	notifMetrics "machsafe/internal/notification/metrics"
	notifService "machsafe/internal/notification/service"
	notifPostgres "machsafe/internal/notification/store/postgres"
	"machsafe/internal/platform/config"
	"machsafe/internal/platform/httpserver"
	"machsafe/internal/platform/logger"
	"machsafe/internal/platform/redis"
	httptransport "machsafe/internal/transport/http"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		log.Error("open postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Error("ping postgres", "error", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	kafkaSink, err := sink.NewKafka(cfg.Kafka, log)
	if err != nil {
		log.Error("connect kafka", "error", err)
		os.Exit(1)
	}

	resolver := identity.NewContextResolver()
	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "machsafe", "machsafe-api")

	alertsStore := alertsPostgres.New(db)
	alerts, err := aggregator.New(resolver, []sources.Source{
		sources.NewExpiringReports(alertsStore),
		sources.NewPendingActions(alertsStore),
		sources.NewExpiringTrainings(alertsStore),
		sources.NewCriticalRisks(alertsStore),
	},
		aggregator.WithLogger(log),
		aggregator.WithMetrics(alertsMetrics.New()),
	)
	if err != nil {
		log.Error("build aggregator", "error", err)
		os.Exit(1)
	}

	auditStore := auditPostgres.New(db)
	recorderOpts := []recorder.Option{
		recorder.WithLogger(log),
		recorder.WithMetrics(auditMetrics.New()),
		recorder.WithBufferSize(cfg.Audit.BufferSize),
		recorder.WithDrainInterval(cfg.Audit.DrainInterval),
	}
	if kafkaSink != nil {
		recorderOpts = append(recorderOpts, recorder.WithSink(kafkaSink))
	}
	rec, err := recorder.New(auditStore, resolver, recorderOpts...)
	if err != nil {
		log.Error("build audit recorder", "error", err)
		os.Exit(1)
	}

	auditQuery, err := query.New(auditStore, resolver, query.WithLogger(log))
	if err != nil {
		log.Error("build audit query service", "error", err)
		os.Exit(1)
	}

	notifications, err := notifService.New(notifPostgres.New(db), resolver,
		notifService.WithLogger(log),
		notifService.WithMetrics(notifMetrics.New()),
		notifService.WithUnreadCache(cache.NewUnreadCounter(redisClient)),
	)
	if err != nil {
		log.Error("build notification service", "error", err)
		os.Exit(1)
	}

	health := []httptransport.HealthCheck{
		{Name: "postgres", Check: func(ctx context.Context) error { return db.PingContext(ctx) }},
	}
	if redisClient != nil {
		health = append(health, httptransport.HealthCheck{Name: "redis", Check: redisClient.Health})
	}

	handler := httptransport.NewHandler(alerts, auditQuery, rec, notifications, jwtService, log, health...)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler))

	recorderCtx, stopRecorder := context.WithCancel(context.Background())
	recorderDone := make(chan struct{})
	go func() {
		defer close(recorderDone)
		rec.Run(recorderCtx)
	}()

	go func() {
		log.Info("starting machsafe", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	// stop the recorder after the server so in-flight requests can still enqueue
	stopRecorder()
	select {
	case <-recorderDone:
	case <-ctx.Done():
		log.Warn("recorder did not drain in time", "dropped", rec.Dropped())
	}

	if kafkaSink != nil {
		if err := kafkaSink.Close(ctx); err != nil {
			log.Warn("kafka sink close failed", "error", err)
		}
	}
}
