package main

import (
	"context"
	"flag"

	"sweetshop/internal/config"
	"sweetshop/internal/db"
	"sweetshop/internal/logging"
	"sweetshop/internal/migrate"
)

func main() {
	reset := flag.Bool("reset", false, "Roll every migration back before applying (drops all data)")
	flag.Parse()

	logger := logging.New("migrate")
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

	apply := migrate.Apply
	if *reset {
		apply = migrate.Reset
	}
	if err := apply(ctx, pool); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	logger.Info("migrations applied")
}
