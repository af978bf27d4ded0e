package main

import (
	"context"
	"fmt"

	"github.com/quotana/quotana/internal/config"
	"github.com/quotana/quotana/internal/dataset"
	"github.com/quotana/quotana/internal/features"
	"github.com/quotana/quotana/internal/model"
	"github.com/quotana/quotana/internal/service"
	"github.com/quotana/quotana/internal/storage"
)

// initStorage loads the configuration, opens the database and runs
// migrations. Every command that touches persistence starts here.
func initStorage(ctx context.Context) (service.Storage, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	store, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, cfg, nil
}

// loadHistory reads both purchase extracts and joins them.
func loadHistory(cfg *config.Config) (*dataset.History, error) {
	return dataset.NewLoader(cfg.Data).Load()
}

// buildCohort engineers the per-supplier feature rows from history.
func buildCohort(history *dataset.History) []model.SupplierFeatures {
	return features.Build(history.Headers, history.Records)
}
