package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/quotana/quotana/internal/model"
)

// SaveBudget persists the budget header and all of its items in one
// transaction and writes the generated ID back into the budget.
func (s *SQLiteStorage) SaveBudget(ctx context.Context, budget *model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBudget(budget); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO budgets (supplier_name, supplier_tax_id, supplier_phone, total_value)
		VALUES (?, ?, ?, ?)
	`, budget.SupplierName, budget.TaxID, budget.Phone, budget.TotalValue)
	if err != nil {
		return fmt.Errorf("failed to insert budget: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read budget id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO budget_items (budget_id, product_code, base_price, recurrence)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare item insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, item := range budget.Items {
		if _, err := stmt.ExecContext(ctx,
			id, item.ProductCode, item.BasePrice, item.Recurrence); err != nil {
			return fmt.Errorf("failed to insert budget item %s: %w", item.ProductCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit budget: %w", err)
	}

	budget.ID = id
	return nil
}

// ListBudgets loads budgets with their items. A nil or empty ids slice
// returns every stored budget, newest first.
func (s *SQLiteStorage) ListBudgets(ctx context.Context, ids []int64) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	q := builder.
		Select("id", "supplier_name", "supplier_tax_id", "supplier_phone",
			"total_value", "created_at").
		From("budgets").
		OrderBy("created_at DESC", "id DESC")
	if len(ids) > 0 {
		q = q.Where(sq.Eq{"id": ids})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var budgets []model.Budget
	for rows.Next() {
		var b model.Budget
		var createdAt time.Time
		if err := rows.Scan(&b.ID, &b.SupplierName, &b.TaxID, &b.Phone,
			&b.TotalValue, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		b.CreatedAt = createdAt
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range budgets {
		items, err := s.budgetItems(ctx, budgets[i].ID)
		if err != nil {
			return nil, err
		}
		budgets[i].Items = items
	}

	return budgets, nil
}

func (s *SQLiteStorage) budgetItems(ctx context.Context, budgetID int64) ([]model.BudgetItem, error) {
	query, args, err := builder.
		Select("product_code", "base_price", "recurrence").
		From("budget_items").
		Where(sq.Eq{"budget_id": budgetID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.BudgetItem
	for rows.Next() {
		var item model.BudgetItem
		if err := rows.Scan(&item.ProductCode, &item.BasePrice, &item.Recurrence); err != nil {
			return nil, fmt.Errorf("failed to scan budget item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}
