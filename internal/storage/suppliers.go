package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/quotana/quotana/internal/common"
	"github.com/quotana/quotana/internal/model"
)

// SaveClassifiedSuppliers appends one classifier run's cohort to the
// result store. Rows are never updated; history accumulates keyed by
// (supplier name, execution timestamp).
func (s *SQLiteStorage) SaveClassifiedSuppliers(ctx context.Context, suppliers []model.ClassifiedSupplier) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateClassifiedSuppliers(suppliers); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO classified_suppliers (
			supplier_name, avg_lead_time, std_lead_time, recurrence,
			total_spent, total_products_value, total_discount,
			discount_rate, avg_item_price,
			score, rating, classification, executed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range suppliers {
		c := &suppliers[i]
		f := c.Features
		if _, err := stmt.ExecContext(ctx,
			f.SupplierName, f.AvgLeadTime, f.StdLeadTime, f.Recurrence,
			f.TotalSpent, f.TotalProductsValue, f.TotalDiscount,
			f.DiscountRate, f.AvgItemPrice,
			c.Score, c.Rating, c.Classification, c.ExecutedAt.UTC(),
		); err != nil {
			return fmt.Errorf("failed to save classified supplier %s: %w", f.SupplierName, err)
		}
	}

	return tx.Commit()
}

// LatestClassifiedSuppliers returns every row of the most recent run, i.e.
// all rows sharing the maximum stored execution timestamp. No run at all
// yields common.ErrNotFound, which is distinct from an empty-but-valid
// cohort.
func (s *SQLiteStorage) LatestClassifiedSuppliers(ctx context.Context) ([]model.ClassifiedSupplier, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	// The max timestamp is resolved inside the query rather than scanned
	// out first: MAX(executed_at) loses the DATETIME decltype through the
	// sqlite driver and comes back as a bare string.
	query, args, err := builder.
		Select("supplier_name", "avg_lead_time", "std_lead_time", "recurrence",
			"total_spent", "total_products_value", "total_discount",
			"discount_rate", "avg_item_price",
			"score", "rating", "classification", "executed_at").
		From("classified_suppliers").
		Where("executed_at = (SELECT MAX(executed_at) FROM classified_suppliers)").
		OrderBy("supplier_name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query classified suppliers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var suppliers []model.ClassifiedSupplier
	for rows.Next() {
		var c model.ClassifiedSupplier
		var executedAt time.Time
		if err := rows.Scan(
			&c.Features.SupplierName,
			&c.Features.AvgLeadTime,
			&c.Features.StdLeadTime,
			&c.Features.Recurrence,
			&c.Features.TotalSpent,
			&c.Features.TotalProductsValue,
			&c.Features.TotalDiscount,
			&c.Features.DiscountRate,
			&c.Features.AvgItemPrice,
			&c.Score,
			&c.Rating,
			&c.Classification,
			&executedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan classified supplier: %w", err)
		}
		c.ExecutedAt = executedAt
		suppliers = append(suppliers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read classified suppliers: %w", err)
	}
	if len(suppliers) == 0 {
		return nil, fmt.Errorf("%w: no classified supplier run", common.ErrNotFound)
	}

	return suppliers, nil
}
