// Command server runs the lost-document registry API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	convhandler "idreclaim/internal/conversation/handler"
	convservice "idreclaim/internal/conversation/service"
	convstore "idreclaim/internal/conversation/store"
	"idreclaim/internal/fraud"
	"idreclaim/internal/match"
	notifhandler "idreclaim/internal/notification/handler"
	notifservice "idreclaim/internal/notification/service"
	notifstore "idreclaim/internal/notification/store"
	"idreclaim/internal/platform/config"
	"idreclaim/internal/platform/httpserver"
	"idreclaim/internal/platform/logger"
	"idreclaim/internal/platform/middleware"
	"idreclaim/internal/platform/postgres"
	platformredis "idreclaim/internal/platform/redis"
	"idreclaim/internal/realtime"
	reporthandler "idreclaim/internal/report/handler"
	reportservice "idreclaim/internal/report/service"
	reportstore "idreclaim/internal/report/store"
	"idreclaim/internal/support"
	"idreclaim/internal/token"
	"idreclaim/internal/transport/shared"
	vaulthandler "idreclaim/internal/vault/handler"
	vaultservice "idreclaim/internal/vault/service"
	vaultstore "idreclaim/internal/vault/store"
)

func main() {
	if err := run(); err != nil {
		logger.New().Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.FromEnv()
	log := logger.New()

	// Storage: PostgreSQL when configured, in-memory otherwise.
	var (
		lostStore   reportservice.LostStore
		foundStore  reportservice.FoundStore
		matchLost   match.LostStore
		matchFound  match.FoundStore
		notifStore  notifservice.Store
		convStore   convservice.Store
		vaultsStore vaultservice.Store
		fraudStore  fraud.Store
		ticketStore support.Store
	)
	if cfg.PostgresDSN != "" {
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		lost := reportstore.NewPostgresLostStore(db)
		found := reportstore.NewPostgresFoundStore(db)
		lostStore, foundStore = lost, found
		matchLost, matchFound = lost, found
		notifStore = notifstore.NewPostgresStore(db)
		convStore = convstore.NewPostgresStore(db)
		vaultsStore = vaultstore.NewPostgresStore(db)
		fraudStore = fraud.NewPostgresStore(db)
		ticketStore = support.NewPostgresStore(db)
		log.Info("storage configured", "backend", "postgres")
	} else {
		lost := reportstore.NewInMemoryLostStore()
		found := reportstore.NewInMemoryFoundStore()
		lostStore, foundStore = lost, found
		matchLost, matchFound = lost, found
		notifStore = notifstore.NewInMemoryStore()
		convStore = convstore.NewInMemoryStore()
		vaultsStore = vaultstore.NewInMemoryStore()
		fraudStore = fraud.NewInMemoryStore()
		ticketStore = support.NewInMemoryStore()
		log.Warn("DATABASE_URL not set, using in-memory storage")
	}

	// Realtime: Redis when configured, no-op otherwise.
	var publisher realtime.Publisher = realtime.NoopPublisher{}
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		publisher = realtime.NewRedisPublisher(redisClient.Client)
		log.Info("realtime configured", "backend", "redis")
	} else {
		log.Warn("REDIS_URL not set, realtime delivery disabled")
	}

	jwtService := token.NewJWTService(cfg.JWTSigningKey)

	notifications := notifservice.New(notifStore, publisher, log)
	engine := match.NewEngine(matchLost, matchFound, notifications, publisher, log,
		match.WithThreshold(cfg.Matching.Threshold),
		match.WithWeights(match.Weights{
			Identifier:   cfg.Matching.IdentifierWeight,
			NameExact:    cfg.Matching.NameExactWeight,
			NamePartial:  cfg.Matching.NamePartialWeight,
			DateOfBirth:  cfg.Matching.DateOfBirthWeight,
			DateOfIssue:  cfg.Matching.DateOfIssueWeight,
			PlaceOfBirth: cfg.Matching.PlaceOfBirthWeight,
		}),
	)
	vaults := vaultservice.New(vaultsStore, notifications, log)
	reports := reportservice.New(lostStore, foundStore, engine, vaults, log)
	conversations := convservice.New(convStore, publisher, log)
	fraudService := fraud.NewService(fraudStore, log)
	supportService := support.NewService(ticketStore, log)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))

	r.Get("/healthz", healthHandler(redisClient))
	r.Handle("/metrics", promhttp.Handler())

	reporthandler.New(reports, jwtService, log).Register(r)
	notifhandler.New(notifications, jwtService, log).Register(r)
	convhandler.New(conversations, jwtService, log).Register(r)
	vaulthandler.New(vaults, jwtService, log).Register(r)
	fraud.NewHandler(fraudService, jwtService, cfg.AdminToken, log).Register(r)
	support.NewHandler(supportService, cfg.AdminToken, log).Register(r)

	server := httpserver.New(cfg.Addr, r)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func healthHandler(redisClient *platformredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				status["redis"] = "unhealthy"
				shared.WriteJSON(w, http.StatusServiceUnavailable, status)
				return
			}
			status["redis"] = "ok"
		}
		shared.WriteJSON(w, http.StatusOK, status)
	}
}
