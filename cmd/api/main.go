package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"sweetshop/internal/config"
	"sweetshop/internal/db"
	"sweetshop/internal/httpserver"
	"sweetshop/internal/logging"
	"sweetshop/internal/migrate"
	sweetrepo "sweetshop/internal/repository/sweet"
	userrepo "sweetshop/internal/repository/user"
	"sweetshop/internal/seed"
	authsvc "sweetshop/internal/service/auth"
	sweetsvc "sweetshop/internal/service/sweet"
)

func main() {
	logger := logging.New("api")
	if err := config.LoadDotEnv(); err != nil {
		logger.Fatalf("load .env: %v", err)
	}
	cfg := config.FromEnv()

	ctx := context.Background()

	var (
		sweets sweetrepo.Repository
		users  userrepo.Repository
		ready  httpserver.Pinger
	)
	switch cfg.Store {
	case config.StorePostgres:
		dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
		if err != nil {
			logger.Fatalf("connect to db: %v", err)
		}
		defer dbpool.Close()
		if err := migrate.Apply(ctx, dbpool); err != nil {
			logger.Fatalf("apply migrations: %v", err)
		}
		sweets = sweetrepo.NewPostgres(dbpool, logger)
		users = userrepo.NewPostgres(dbpool, logger)
		ready = dbpool
	case config.StoreMemory:
		logger.Warn("using in-memory store, data is lost on exit")
		sweets = sweetrepo.NewMemory()
		users = userrepo.NewMemory()
	default:
		logger.Fatalf("unknown STORE %q (want %s or %s)", cfg.Store, config.StoreMemory, config.StorePostgres)
	}

	sweetService := sweetsvc.New(sweets, logger)
	authService := authsvc.New(users, cfg.JWTSecret, cfg.TokenTTL, authsvc.WithLogger(logger))

	if cfg.SeedDemo {
		if err := seed.Apply(ctx, sweetService, authService, logger); err != nil {
			logger.Fatalf("seed demo data: %v", err)
		}
	}

	srv := httpserver.New(cfg.HTTPAddr, logger, ready, httpserver.Deps{
		Auth:        authService,
		Sweets:      sweetService,
		CORSOrigins: cfg.CORSOrigins,
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Infof("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Errorf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	} else {
		logger.Info("server stopped")
	}
}
