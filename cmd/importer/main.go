package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"sweetshop/internal/config"
	"sweetshop/internal/db"
	"sweetshop/internal/importer"
	"sweetshop/internal/logging"
	sweetrepo "sweetshop/internal/repository/sweet"
	sweetsvc "sweetshop/internal/service/sweet"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to a CSV with name,category,price,quantity,description columns")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger := logging.New("importer")
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

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatalf("open file: %v", err)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, sweetsvc.New(sweetrepo.NewPostgres(pool, logger), logger))

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatalf("import failed: %v", err)
	}

	fmt.Printf("Imported %d sweets in %s\n", count, time.Since(start).Truncate(time.Millisecond))
}
