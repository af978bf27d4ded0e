package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/quotana/quotana/internal/common"
	"github.com/quotana/quotana/internal/model"
)

// GetRegistryEntry returns the cached registry record for a tax identifier,
// or common.ErrNotFound when it has never been fetched.
func (s *SQLiteStorage) GetRegistryEntry(ctx context.Context, taxID string) (*model.RegistryEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(taxID, "taxID"); err != nil {
		return nil, err
	}

	var entry model.RegistryEntry
	var updatedAt time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT tax_id, legal_name, municipality, region, phone_1, phone_2, fax, updated_at
		FROM registry_cache
		WHERE tax_id = ?
	`, taxID).Scan(&entry.TaxID, &entry.LegalName, &entry.Municipality,
		&entry.Region, &entry.Phone1, &entry.Phone2, &entry.Fax, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: registry entry %s", common.ErrNotFound, taxID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query registry cache: %w", err)
	}

	entry.UpdatedAt = updatedAt
	return &entry, nil
}

// SaveRegistryEntry upserts a registry record into the cache.
func (s *SQLiteStorage) SaveRegistryEntry(ctx context.Context, entry *model.RegistryEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("%w: entry", ErrNilParameter)
	}
	if err := validateString(entry.TaxID, "entry.TaxID"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO registry_cache (tax_id, legal_name, municipality, region, phone_1, phone_2, fax, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(tax_id) DO UPDATE SET
			legal_name = excluded.legal_name,
			municipality = excluded.municipality,
			region = excluded.region,
			phone_1 = excluded.phone_1,
			phone_2 = excluded.phone_2,
			fax = excluded.fax,
			updated_at = CURRENT_TIMESTAMP
	`, entry.TaxID, entry.LegalName, entry.Municipality, entry.Region,
		entry.Phone1, entry.Phone2, entry.Fax)
	if err != nil {
		return fmt.Errorf("failed to save registry entry: %w", err)
	}

	return nil
}
