package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gravadigital/wisha-api/internal/config"
	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/storage/migrations"
	"github.com/gravadigital/wisha-api/internal/storage/postgres"
)

func main() {
	cfg := config.Load()

	logger.Initialize(cfg.LogLevel)
	log := logger.Migration()

	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	status := flag.Bool("status", false, "List pending migrations and exit")
	flag.Parse()

	log.Info("Starting migration process", "rollback", *rollback, "status", *status)

	db, err := postgres.Connect(cfg)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer postgres.Close(db)

	switch {
	case *status:
		pending, err := migrations.Pending(db)
		if err != nil {
			log.Error("Failed to read migration status", "error", err)
			os.Exit(1)
		}
		if len(pending) == 0 {
			fmt.Println("Database is up to date")
		}
		for _, m := range pending {
			fmt.Printf("pending  %s  %s\n", m.ID, m.Name)
		}
		printInspection(postgres.NewInspector(db))
		return
	case *rollback:
		log.Info("Rolling back migrations...")
		if err := migrations.RollbackMigration(db); err != nil {
			log.Error("Migration rollback failed", "error", err)
			os.Exit(1)
		}
		log.Info("Migration rollback completed successfully")
	default:
		log.Info("Running migrations...")
		if err := migrations.RunMigrations(db); err != nil {
			log.Error("Migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("Migrations completed successfully")
	}

	fmt.Println("Migration process completed!")
}

// printInspection reports table sizes and missing indexes; failures only warn
func printInspection(inspector *postgres.Inspector) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	log := logger.Migration()

	stats, err := inspector.TableStats(ctx)
	if err != nil {
		log.Warn("Table statistics unavailable", "error", err)
	}
	for _, s := range stats {
		fmt.Printf("table    %-16s rows=%-8d size=%s indexes=%s\n", s.TableName, s.LiveRows, s.TableSize, s.IndexSize)
	}

	hints, err := inspector.MissingIndexes(ctx)
	if err != nil {
		log.Warn("Index check failed", "error", err)
		return
	}
	for _, h := range hints {
		fmt.Printf("missing  %s  -- %s\n", h.Suggestion, h.Reason)
	}
}
