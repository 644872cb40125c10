package main

import (
	"context"

	"sweetshop/internal/config"
	"sweetshop/internal/db"
	"sweetshop/internal/logging"
	"sweetshop/internal/migrate"
	sweetrepo "sweetshop/internal/repository/sweet"
	userrepo "sweetshop/internal/repository/user"
	"sweetshop/internal/seed"
	authsvc "sweetshop/internal/service/auth"
	sweetsvc "sweetshop/internal/service/sweet"
)

func main() {
	logger := logging.New("seed")
	if err := config.LoadDotEnv(); err != nil {
		logger.Fatalf("load .env: %v", err)
	}
	cfg := config.FromEnv()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	sweets := sweetsvc.New(sweetrepo.NewPostgres(pool, logger), logger)
	auth := authsvc.New(userrepo.NewPostgres(pool, logger), cfg.JWTSecret, cfg.TokenTTL, authsvc.WithLogger(logger))
	if err := seed.Apply(ctx, sweets, auth, logger); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Info("seed applied")
}
