package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/flexprice/donorsync/internal/config"
	"github.com/flexprice/donorsync/internal/logger"
	"github.com/flexprice/donorsync/internal/postgres"
	postgresRepo "github.com/flexprice/donorsync/internal/repository/postgres"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command line flags
	dryRun := flag.Bool("dry-run", false, "Print migration SQL without executing it")
	flag.Parse()

	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	migrations, err := postgresRepo.Migrations()
	if err != nil {
		logger.Fatalw("Failed to read embedded migrations", "error", err)
	}

	if *dryRun {
		logger.Info("Dry run mode - printing migration SQL without executing")
		for _, m := range migrations {
			fmt.Printf("-- %s\n%s\n", m.Name, m.SQL)
		}
		return
	}

	logger.Infow("Connecting to database", "host", cfg.Postgres.Host)
	db, err := postgres.NewDB(cfg, logger, nil)
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Running database migrations...")
	err = db.WithTx(ctx, func(ctx context.Context) error {
		for _, m := range migrations {
			logger.Infow("applying migration", "name", m.Name)
			if _, err := db.GetQuerier(ctx).ExecContext(ctx, m.SQL); err != nil {
				return fmt.Errorf("%s: %w", m.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		logger.Fatalw("Failed to apply migrations", "error", err)
	}

	logger.Info("Migration completed successfully")
}
