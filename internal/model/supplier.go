package model

import (
	"fmt"
	"time"
)

// Classification labels assigned from a 1-5 rating.
const (
	LabelBad     = "Ruim / Não recomendado"
	LabelAverage = "Médio"
	LabelGood    = "Bom"
	LabelGreat   = "Ótimo / Recomendado"

	// LabelUnclassified marks suppliers with no classifier record.
	LabelUnclassified = "N/A"
)

// RatingLabel maps an integer rating in [1,5] to its classification label.
func RatingLabel(rating int) string {
	switch {
	case rating <= 2:
		return LabelBad
	case rating == 3:
		return LabelAverage
	case rating == 4:
		return LabelGood
	default:
		return LabelGreat
	}
}

// SupplierFeatures is one row of engineered behavioral metrics per supplier,
// aggregated from purchase headers and line items.
type SupplierFeatures struct {
	SupplierName       string
	AvgLeadTime        float64
	StdLeadTime        float64
	Recurrence         int
	TotalSpent         float64
	TotalProductsValue float64
	TotalDiscount      float64
	DiscountRate       float64
	AvgItemPrice       float64
}

// Vector returns the feature values in the fixed order the classifier trains on.
func (f SupplierFeatures) Vector() []float64 {
	return []float64{
		f.AvgLeadTime,
		f.StdLeadTime,
		float64(f.Recurrence),
		f.TotalSpent,
		f.DiscountRate,
		f.AvgItemPrice,
	}
}

// Validate checks the aggregation invariants.
func (f *SupplierFeatures) Validate() error {
	if f.SupplierName == "" {
		return fmt.Errorf("supplier name is required")
	}
	if f.Recurrence < 1 {
		return fmt.Errorf("recurrence must be at least 1, got %d", f.Recurrence)
	}
	return nil
}

// ClassifiedSupplier is a supplier feature row with the composite score,
// rating and label produced by a classifier run. Rows accumulate across
// retrainings keyed by (supplier name, execution timestamp).
type ClassifiedSupplier struct {
	ExecutedAt     time.Time
	Classification string
	Features       SupplierFeatures
	Score          float64
	Rating         int
}

// Validate checks that the rating and label are consistent.
func (c *ClassifiedSupplier) Validate() error {
	if err := c.Features.Validate(); err != nil {
		return err
	}
	if c.Rating < 1 || c.Rating > 5 {
		return fmt.Errorf("rating must be in [1,5], got %d", c.Rating)
	}
	if c.Classification != RatingLabel(c.Rating) {
		return fmt.Errorf("classification %q does not match rating %d", c.Classification, c.Rating)
	}
	if c.ExecutedAt.IsZero() {
		return fmt.Errorf("execution timestamp is required")
	}
	return nil
}
