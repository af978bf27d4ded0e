package model

import (
	"fmt"
	"time"
)

// Assignment is one confirmed product-to-supplier decision. A product can
// legitimately be split across several suppliers, so the decisions map
// carries a list of assignments per product code.
type Assignment struct {
	SupplierName string
	TaxID        string
	BasePrice    float64
	Recurrence   int
}

// Decisions maps product code to the chosen supplier assignments.
type Decisions map[string][]Assignment

// AssignmentCount returns the total number of (product, supplier) pairs.
func (d Decisions) AssignmentCount() int {
	n := 0
	for _, as := range d {
		n += len(as)
	}
	return n
}

// BudgetItem is one product line within a per-supplier budget.
type BudgetItem struct {
	ProductCode string
	BasePrice   float64
	Recurrence  int
}

// Budget aggregates all assignments for one supplier. Total is the sum of
// base prices; quantity is not part of this model.
type Budget struct {
	CreatedAt    time.Time
	SupplierName string
	TaxID        string
	Phone        string
	Items        []BudgetItem
	TotalValue   float64
	ID           int64
}

// Validate checks the aggregation invariants before persistence.
func (b *Budget) Validate() error {
	if b.SupplierName == "" {
		return fmt.Errorf("budget supplier name is required")
	}
	if len(b.Items) == 0 {
		return fmt.Errorf("budget must have at least one item")
	}
	var total float64
	for i, item := range b.Items {
		if item.ProductCode == "" {
			return fmt.Errorf("budget item %d missing product code", i)
		}
		total += item.BasePrice
	}
	if diff := total - b.TotalValue; diff > 1e-9 || diff < -1e-9 {
		return fmt.Errorf("budget total %.2f does not match item sum %.2f", b.TotalValue, total)
	}
	return nil
}
