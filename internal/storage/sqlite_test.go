package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/quotana/quotana/internal/common"
	"github.com/quotana/quotana/internal/model"
)

// createTestStorage creates a migrated store on a temp database.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func testSupplier(name string, rating int, executedAt time.Time) model.ClassifiedSupplier {
	return model.ClassifiedSupplier{
		Features: model.SupplierFeatures{
			SupplierName: name,
			AvgLeadTime:  7,
			Recurrence:   3,
			TotalSpent:   1500,
		},
		Score:          0.5,
		Rating:         rating,
		Classification: model.RatingLabel(rating),
		ExecutedAt:     executedAt,
	}
}

func TestSQLiteStorage_Migrate_Idempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	// A second migration run must be a no-op.
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Second migration failed: %v", err)
	}
}

func TestSQLiteStorage_LatestClassifiedSuppliers(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := store.LatestClassifiedSuppliers(ctx); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound on empty store, got %v", err)
	}

	older := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	firstRun := []model.ClassifiedSupplier{
		testSupplier("ACME LTDA", 5, older),
		testSupplier("BETA SA", 2, older),
	}
	if err := store.SaveClassifiedSuppliers(ctx, firstRun); err != nil {
		t.Fatalf("Failed to save first run: %v", err)
	}

	secondRun := []model.ClassifiedSupplier{
		testSupplier("ACME LTDA", 4, newer),
		testSupplier("GAMMA ME", 3, newer),
	}
	if err := store.SaveClassifiedSuppliers(ctx, secondRun); err != nil {
		t.Fatalf("Failed to save second run: %v", err)
	}

	latest, err := store.LatestClassifiedSuppliers(ctx)
	if err != nil {
		t.Fatalf("Failed to query latest: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("Expected 2 suppliers from latest run, got %d", len(latest))
	}
	for _, s := range latest {
		if !s.ExecutedAt.Equal(newer) {
			t.Errorf("Supplier %s has timestamp %v, want %v",
				s.Features.SupplierName, s.ExecutedAt, newer)
		}
	}
	// Ordered by supplier name.
	if latest[0].Features.SupplierName != "ACME LTDA" || latest[1].Features.SupplierName != "GAMMA ME" {
		t.Errorf("Unexpected order: %s, %s",
			latest[0].Features.SupplierName, latest[1].Features.SupplierName)
	}
	if latest[0].Rating != 4 {
		t.Errorf("Expected the second run's rating 4, got %d", latest[0].Rating)
	}
}

func TestSQLiteStorage_SaveClassifiedSuppliers_Validation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		name      string
		suppliers []model.ClassifiedSupplier
	}{
		{name: "nil slice", suppliers: nil},
		{name: "empty slice", suppliers: []model.ClassifiedSupplier{}},
		{
			name: "label mismatch",
			suppliers: []model.ClassifiedSupplier{{
				Features:       model.SupplierFeatures{SupplierName: "X", Recurrence: 1},
				Rating:         5,
				Classification: model.LabelBad,
				ExecutedAt:     time.Now(),
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.SaveClassifiedSuppliers(ctx, tt.suppliers); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestSQLiteStorage_Budgets(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	first := &model.Budget{
		SupplierName: "ACME LTDA",
		TaxID:        "00000000000191",
		Phone:        "62999990000",
		TotalValue:   150,
		Items: []model.BudgetItem{
			{ProductCode: "P1", BasePrice: 100, Recurrence: 4},
			{ProductCode: "P2", BasePrice: 50, Recurrence: 1},
		},
	}
	if err := store.SaveBudget(ctx, first); err != nil {
		t.Fatalf("Failed to save budget: %v", err)
	}
	if first.ID == 0 {
		t.Fatal("Expected budget ID to be set after save")
	}

	second := &model.Budget{
		SupplierName: "BETA SA",
		TotalValue:   30,
		Items:        []model.BudgetItem{{ProductCode: "P3", BasePrice: 30, Recurrence: 2}},
	}
	if err := store.SaveBudget(ctx, second); err != nil {
		t.Fatalf("Failed to save second budget: %v", err)
	}

	all, err := store.ListBudgets(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to list budgets: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 budgets, got %d", len(all))
	}

	filtered, err := store.ListBudgets(ctx, []int64{first.ID})
	if err != nil {
		t.Fatalf("Failed to list filtered budgets: %v", err)
	}
	if len(filtered) != 1 {
		t.Fatalf("Expected 1 budget, got %d", len(filtered))
	}
	got := filtered[0]
	if got.SupplierName != "ACME LTDA" || got.TaxID != "00000000000191" || got.Phone != "62999990000" {
		t.Errorf("Budget header mismatch: %+v", got)
	}
	if len(got.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(got.Items))
	}
	if got.Items[0].ProductCode != "P1" || got.Items[0].BasePrice != 100 || got.Items[0].Recurrence != 4 {
		t.Errorf("Item mismatch: %+v", got.Items[0])
	}
}

func TestSQLiteStorage_SaveBudget_RejectsInconsistentTotal(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	budget := &model.Budget{
		SupplierName: "ACME LTDA",
		TotalValue:   999,
		Items:        []model.BudgetItem{{ProductCode: "P1", BasePrice: 100}},
	}
	if err := store.SaveBudget(context.Background(), budget); err == nil {
		t.Error("Expected total mismatch to fail validation")
	}
}

func TestSQLiteStorage_RegistryCache(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := store.GetRegistryEntry(ctx, "00000000000191"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for uncached entry, got %v", err)
	}

	entry := &model.RegistryEntry{
		TaxID:        "00000000000191",
		LegalName:    "ACME LTDA",
		Municipality: "GOIANIA",
		Region:       "GO",
		Phone2:       "6233330000",
	}
	if err := store.SaveRegistryEntry(ctx, entry); err != nil {
		t.Fatalf("Failed to save registry entry: %v", err)
	}

	got, err := store.GetRegistryEntry(ctx, "00000000000191")
	if err != nil {
		t.Fatalf("Failed to get registry entry: %v", err)
	}
	if got.LegalName != "ACME LTDA" || got.Region != "GO" {
		t.Errorf("Entry mismatch: %+v", got)
	}
	if got.ResolvePhone() != "6233330000" {
		t.Errorf("Expected phone_2 fallback, got %q", got.ResolvePhone())
	}

	// Upsert overwrites.
	entry.Phone1 = "6211110000"
	if err := store.SaveRegistryEntry(ctx, entry); err != nil {
		t.Fatalf("Failed to upsert registry entry: %v", err)
	}
	got, err = store.GetRegistryEntry(ctx, "00000000000191")
	if err != nil {
		t.Fatalf("Failed to re-get registry entry: %v", err)
	}
	if got.ResolvePhone() != "6211110000" {
		t.Errorf("Expected updated phone_1, got %q", got.ResolvePhone())
	}
}

func TestSQLiteStorage_Runs(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	id, err := store.InsertRun(ctx, "quero cotar produtos")
	if err != nil {
		t.Fatalf("Failed to insert run: %v", err)
	}
	if id == 0 {
		t.Fatal("Expected non-zero run ID")
	}

	if err := store.UpdateRunStatus(ctx, id, "completed"); err != nil {
		t.Fatalf("Failed to update run status: %v", err)
	}

	if err := store.UpdateRunStatus(ctx, id+99, "completed"); err == nil {
		t.Error("Expected error updating missing run")
	}
}
