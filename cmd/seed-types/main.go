package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/munitransit/permits-backend/internal/types"
	"github.com/munitransit/permits-backend/pkg/config"
	"github.com/munitransit/permits-backend/pkg/db"
	"github.com/munitransit/permits-backend/pkg/logger"
)

// Seeds the default permit catalog. Safe to run repeatedly; existing codes
// are left untouched.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed-types"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed-types",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	result, err := types.EnsureCatalog(ctx, types.NewRepository(dbClient.DB()), types.DefaultCatalog)
	if err != nil {
		logg.Error(ctx, "failed to seed catalog", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"created":  result.Created,
		"existing": result.Existing,
	})
	logg.Info(ctx, "catalog seeding complete")
}
