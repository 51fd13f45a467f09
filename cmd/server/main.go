// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
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

	"ponto/internal/audit"
	checkinhandler "ponto/internal/checkin/handler"
	checkinmetrics "ponto/internal/checkin/metrics"
	checkinservice "ponto/internal/checkin/service"
	checkinstore "ponto/internal/checkin/store"
	"ponto/internal/compliance"
	compliancehandler "ponto/internal/compliance/handler"
	geofencehandler "ponto/internal/geofence/handler"
	geofenceservice "ponto/internal/geofence/service"
	geofencestore "ponto/internal/geofence/store"
	httpapi "ponto/internal/http"
	jwttoken "ponto/internal/jwt_token"
	"ponto/internal/platform/config"
	"ponto/internal/platform/httpserver"
	"ponto/internal/platform/logger"
	"ponto/internal/platform/metrics"
	"ponto/internal/platform/postgres"
	platformredis "ponto/internal/platform/redis"
	proofstore "ponto/internal/proof/store"
	"ponto/internal/ratelimit"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	db, err := postgres.Open(cfg.Postgres)
	if err != nil {
		log.Error("postgres setup failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis setup failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Storage: PostgreSQL when configured, in-memory otherwise.
	var (
		events    checkinstore.EventStore
		sessions  checkinstore.SessionStore
		attempts  checkinstore.AttemptStore
		objects   proofstore.ObjectStore
		geofences geofencestore.ConfigStore
	)
	if db != nil {
		events = checkinstore.NewPostgresEvents(db)
		sessions = checkinstore.NewPostgresSessions(db)
		attempts = checkinstore.NewPostgresAttempts(db)
		objects = proofstore.NewPostgres(db, cfg.Proofs.BaseURL)
		geofences = geofencestore.NewPostgres(db)
	} else {
		log.Warn("no POSTGRES_DSN configured, using in-memory stores")
		events = checkinstore.NewInMemoryEvents()
		sessions = checkinstore.NewInMemorySessions()
		attempts = checkinstore.NewInMemoryAttempts()
		objects = proofstore.NewInMemory(cfg.Proofs.BaseURL)
		geofences = geofencestore.NewInMemory()
	}
	if redisClient != nil {
		geofences = geofencestore.NewCached(geofences, redisClient.Client)
	}

	// Audit trail, optionally forwarded to Kafka.
	auditOpts := []audit.PublisherOption{audit.WithLogger(log)}
	kafkaSink, err := audit.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
	if err != nil {
		log.Error("kafka setup failed", "error", err)
		os.Exit(1)
	}
	if kafkaSink != nil {
		defer kafkaSink.Close()
		auditOpts = append(auditOpts, audit.WithSink(kafkaSink))
	}
	auditPublisher := audit.NewPublisher(audit.NewInMemoryStore(), auditOpts...)

	geofenceSvc, err := geofenceservice.New(geofences,
		geofenceservice.WithLogger(log),
		geofenceservice.WithAuditPublisher(auditPublisher),
	)
	if err != nil {
		log.Error("geofence service setup failed", "error", err)
		os.Exit(1)
	}

	recorder, err := checkinservice.NewRecorder(events, sessions, attempts, objects, geofenceSvc,
		checkinservice.WithLogger(log),
		checkinservice.WithAuditPublisher(auditPublisher),
		checkinservice.WithMetrics(checkinmetrics.New()),
	)
	if err != nil {
		log.Error("recorder setup failed", "error", err)
		os.Exit(1)
	}

	complianceSvc, err := compliance.New(events, compliance.WithLogger(log))
	if err != nil {
		log.Error("compliance service setup failed", "error", err)
		os.Exit(1)
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)

	router := httpapi.NewRouter(httpapi.Deps{
		Checkins:       checkinhandler.New(recorder, log),
		Compliance:     compliancehandler.New(complianceSvc, log),
		Geofence:       geofencehandler.New(geofenceSvc, log),
		TokenValidator: jwttoken.NewJWTServiceAdapter(jwtService),
		Logger:         log,
		HealthCheck:    healthCheck(db, redisClient),
		HTTPMetrics:    metrics.NewHTTP(),
		SubmitLimiter:  ratelimit.NewSlidingWindow(cfg.RateLimit.Limit, cfg.RateLimit.Window),
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting ponto", "addr", cfg.Addr, "postgres", db != nil, "redis", redisClient != nil)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func healthCheck(db *sql.DB, redisClient *platformredis.Client) func() error {
	return func() error {
		if db != nil {
			if err := db.Ping(); err != nil {
				return err
			}
		}
		if redisClient != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := redisClient.Health(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}
