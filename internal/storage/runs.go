package storage

import (
	"context"
	"fmt"
)

// InsertRun records the start of a wizard session and returns its ID.
func (s *SQLiteStorage) InsertRun(ctx context.Context, userQuery string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (user_query, status) VALUES (?, 'started')`, userQuery)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}
	return id, nil
}

// UpdateRunStatus updates the status of a wizard session.
func (s *SQLiteStorage) UpdateRunStatus(ctx context.Context, runID int64, status string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(status, "status"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ? WHERE id = ?`, status, runID)
	if err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %d not found", runID)
	}
	return nil
}
