package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/lib/pq"

	guesthandler "guestlist/internal/guest/handler"
	guestmetrics "guestlist/internal/guest/metrics"
	"guestlist/internal/guest/service"
	gueststore "guestlist/internal/guest/store"
	"guestlist/internal/platform/config"
	"guestlist/internal/platform/httpserver"
	"guestlist/internal/platform/logger"
	platformredis "guestlist/internal/platform/redis"
	httptransport "guestlist/internal/transport/http"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the guest service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	guests, cleanup, err := buildStore(ctx, cfg, log)
	if err != nil {
		log.Error("store initialization failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	if cfg.SeedFile != "" {
		if err := seedGuests(ctx, guests, cfg.SeedFile, log); err != nil {
			log.Error("guest list seeding failed", "error", err)
			os.Exit(1)
		}
	}

	svc := service.New(guests,
		service.WithLogger(log),
		service.WithMetrics(guestmetrics.New()),
	)
	router := httptransport.NewRouter(guesthandler.New(svc, log), cfg.AdminToken, log)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting guestlist server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// buildStore selects the backend from what is configured: Postgres, then
// Redis, then in-memory.
func buildStore(ctx context.Context, cfg config.Server, log *slog.Logger) (service.GuestStore, func(), error) {
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		st := gueststore.NewPostgres(db)
		if err := st.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Info("using postgres guest store")
		return st, func() { db.Close() }, nil
	}

	if cfg.Redis.URL != "" {
		client, err := platformredis.New(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using redis guest store")
		return gueststore.NewRedis(client.Client), func() { client.Close() }, nil
	}

	log.Info("using in-memory guest store")
	return gueststore.NewInMemory(), func() {}, nil
}

func seedGuests(ctx context.Context, guests gueststore.Seeder, path string, log *slog.Logger) error {
	entries, err := gueststore.LoadSeedFile(path)
	if err != nil {
		return err
	}
	created, err := gueststore.Seed(ctx, guests, entries, time.Now())
	if err != nil {
		return err
	}
	log.Info("guest list seeded", "entries", len(entries), "created", created)
	return nil
}
