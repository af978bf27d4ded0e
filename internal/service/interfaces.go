// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/quotana/quotana/internal/model"
)

// Storage defines the contract for the persistence layer.
type Storage interface {
	// Classification result store (append-only per training run).
	SaveClassifiedSuppliers(ctx context.Context, suppliers []model.ClassifiedSupplier) error
	LatestClassifiedSuppliers(ctx context.Context) ([]model.ClassifiedSupplier, error)

	// Budget persistence.
	SaveBudget(ctx context.Context, budget *model.Budget) error
	ListBudgets(ctx context.Context, ids []int64) ([]model.Budget, error)

	// Registry cache.
	GetRegistryEntry(ctx context.Context, taxID string) (*model.RegistryEntry, error)
	SaveRegistryEntry(ctx context.Context, entry *model.RegistryEntry) error

	// Wizard session log.
	InsertRun(ctx context.Context, userQuery string) (int64, error)
	UpdateRunStatus(ctx context.Context, runID int64, status string) error

	Migrate(ctx context.Context) error
	Close() error
}

// RegistryClient resolves supplier registry data by tax identifier.
type RegistryClient interface {
	Lookup(ctx context.Context, taxID string) (*model.RegistryEntry, error)
}

// Mailer dispatches quotation requests to suppliers.
type Mailer interface {
	SendQuotation(ctx context.Context, budget model.Budget) model.SendResult
}

// SupplierClassifier is the trained-model stage of the pipeline.
type SupplierClassifier interface {
	Train(ctx context.Context, cohort []model.SupplierFeatures) (*TrainReport, error)
	Classify(ctx context.Context, cohort []model.SupplierFeatures) ([]model.ClassifiedSupplier, error)
}

// TrainReport summarizes a training run. The holdout error is informational
// only; training persists the model regardless.
type TrainReport struct {
	ExecutedAt  time.Time
	HoldoutMAE  float64
	CohortSize  int
	Distributed map[string]int
}
