// Package budget turns confirmed product-to-supplier decisions into
// per-supplier order summaries and persists them.
package budget

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/quotana/quotana/internal/model"
	"github.com/quotana/quotana/internal/service"
)

// Aggregator groups decisions by supplier and persists confirmed budgets.
type Aggregator struct {
	store    service.Storage
	registry service.RegistryClient
}

// NewAggregator wires the aggregator with its persistence and registry
// collaborators.
func NewAggregator(store service.Storage, registry service.RegistryClient) *Aggregator {
	return &Aggregator{store: store, registry: registry}
}

// Summarize inverts the decisions map into one budget per supplier, sorted
// by supplier name. Totals are sums of base prices; quantity is not part
// of this model. No item is dropped or duplicated: the line-item count
// across all summaries equals the number of assignments submitted.
func Summarize(decisions model.Decisions) []model.Budget {
	grouped := make(map[string]*model.Budget)

	// Deterministic item order: sort product codes first.
	codes := make([]string, 0, len(decisions))
	for code := range decisions {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		for _, assignment := range decisions[code] {
			if assignment.SupplierName == "" {
				continue
			}
			b, ok := grouped[assignment.SupplierName]
			if !ok {
				b = &model.Budget{SupplierName: assignment.SupplierName}
				grouped[assignment.SupplierName] = b
			}
			if b.TaxID == "" {
				b.TaxID = assignment.TaxID
			}
			b.Items = append(b.Items, model.BudgetItem{
				ProductCode: code,
				BasePrice:   assignment.BasePrice,
				Recurrence:  assignment.Recurrence,
			})
			b.TotalValue += assignment.BasePrice
		}
	}

	suppliers := make([]string, 0, len(grouped))
	for name := range grouped {
		suppliers = append(suppliers, name)
	}
	sort.Strings(suppliers)

	budgets := make([]model.Budget, 0, len(suppliers))
	for _, name := range suppliers {
		budgets = append(budgets, *grouped[name])
	}
	return budgets
}

// Confirm resolves contact phones and persists each budget atomically.
// A persistence failure for one budget propagates immediately; a registry
// failure only costs the phone field.
func (a *Aggregator) Confirm(ctx context.Context, budgets []model.Budget) ([]model.Budget, error) {
	persisted := make([]model.Budget, 0, len(budgets))
	for _, b := range budgets {
		if b.TaxID != "" && a.registry != nil {
			entry, err := a.registry.Lookup(ctx, b.TaxID)
			if err != nil {
				slog.Warn("registry lookup failed, budget saved without phone",
					"supplier", b.SupplierName, "error", err)
			} else {
				b.Phone = entry.ResolvePhone()
			}
		}

		if err := a.store.SaveBudget(ctx, &b); err != nil {
			return persisted, fmt.Errorf("failed to persist budget for %s: %w", b.SupplierName, err)
		}
		persisted = append(persisted, b)
	}

	slog.Info("budgets confirmed", "count", len(persisted))
	return persisted, nil
}
