package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carepath/internal/auth"
	authhandler "carepath/internal/auth/handler"
	authservice "carepath/internal/auth/service"
	jwttoken "carepath/internal/jwt_token"
	"carepath/internal/patient"
	"carepath/internal/platform/config"
	"carepath/internal/platform/httpserver"
	"carepath/internal/platform/logger"
	"carepath/internal/platform/postgres"
	platformredis "carepath/internal/platform/redis"
	"carepath/internal/recommendation"
	"carepath/internal/recommendation/cache"
	"carepath/internal/recommendation/events"
	evalhandler "carepath/internal/recommendation/handler"
	evalmetrics "carepath/internal/recommendation/metrics"
	evalservice "carepath/internal/recommendation/service"
	httptransport "carepath/internal/transport/http"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "carepath", "carepath-api")
	jwtValidator := jwttoken.NewMiddlewareAdapter(jwtService)

	users := auth.NewInMemoryUserStore()
	if err := authservice.SeedUser(ctx, users, cfg.SeedUsername, cfg.SeedPassword, cfg.SeedPasswordHash); err != nil {
		log.Error("seeding credentials failed", "error", err)
		os.Exit(1)
	}
	authSvc := authservice.New(users, jwtService, cfg.TokenTTL, log)

	patients := patient.NewPostgresStore(db)
	recs := recommendation.NewPostgresStore(db)
	resultCache := cache.NewRedisCache(redisClient.Client)
	publisher := events.NewRedisPublisher(redisClient.Client, cfg.EventChannel)

	evalSvc := evalservice.New(patients, recs, resultCache, publisher, log,
		evalservice.WithMetrics(evalmetrics.New()),
		evalservice.WithCacheTTL(cfg.ResultCacheTTL),
	)

	router := httptransport.NewRouter(log,
		map[string]httptransport.HealthChecker{
			"postgres": db.PingContext,
			"redis":    redisClient.Health,
		},
		authhandler.New(authSvc, log),
		evalhandler.New(evalSvc, log, jwtValidator),
	)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting carepath", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
