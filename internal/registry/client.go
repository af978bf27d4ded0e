// Package registry resolves supplier contact data from the national
// company registry, with a persistent cache in front of the HTTP API.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/quotana/quotana/internal/common"
	"github.com/quotana/quotana/internal/config"
	"github.com/quotana/quotana/internal/model"
	"github.com/quotana/quotana/internal/service"
)

const taxIDLength = 14

// Client looks up registry entries over HTTP, caching every successful
// response in storage. Cached entries never expire; registry data for the
// fields of interest changes rarely enough that staleness is acceptable.
type Client struct {
	store      service.Storage
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a registry client backed by the given cache store.
func NewClient(cfg config.RegistryConfig, store service.Storage) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		store:      store,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NormalizeTaxID strips non-digit characters and left-pads with zeros to
// the canonical 14-digit form. Inputs longer than 14 digits are returned
// as their digits; the registry will reject them.
func NormalizeTaxID(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) >= taxIDLength {
		return digits
	}
	return strings.Repeat("0", taxIDLength-len(digits)) + digits
}

// Lookup resolves a tax identifier to a registry entry, cache first. A
// cache miss triggers an HTTP fetch whose result is cached before being
// returned. Transport errors are retried; HTTP error statuses are not.
func (c *Client) Lookup(ctx context.Context, taxID string) (*model.RegistryEntry, error) {
	normalized := NormalizeTaxID(taxID)

	if c.store != nil {
		entry, err := c.store.GetRegistryEntry(ctx, normalized)
		if err == nil {
			slog.Debug("registry cache hit", "tax_id", normalized)
			return entry, nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
	}

	entry, err := c.fetch(ctx, normalized)
	if err != nil {
		return nil, err
	}

	if c.store != nil {
		if err := c.store.SaveRegistryEntry(ctx, entry); err != nil {
			common.LogError(err, "failed to cache registry entry", common.Fields{
				"tax_id": normalized,
			})
		}
	}

	return entry, nil
}

func (c *Client) fetch(ctx context.Context, taxID string) (*model.RegistryEntry, error) {
	url := c.baseURL + "/" + taxID

	var entry *model.RegistryEntry
	err := common.WithRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to build registry request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &common.RetryableError{
				Err:       fmt.Errorf("registry request failed: %w", err),
				Retryable: true,
			}
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: registry entry %s", common.ErrNotFound, taxID)
		}
		if resp.StatusCode != http.StatusOK {
			retryable := resp.StatusCode >= 500
			return &common.RetryableError{
				Err:       fmt.Errorf("registry returned status %d for %s", resp.StatusCode, taxID),
				Retryable: retryable,
			}
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return &common.RetryableError{
				Err:       fmt.Errorf("failed to read registry response: %w", err),
				Retryable: true,
			}
		}

		var decoded model.RegistryEntry
		if err := json.Unmarshal(body, &decoded); err != nil {
			return fmt.Errorf("failed to decode registry response: %w", err)
		}
		decoded.TaxID = taxID
		decoded.UpdatedAt = time.Now().UTC()
		entry = &decoded
		return nil
	}, common.RetryOptions{MaxAttempts: 3, InitialDelay: 500 * time.Millisecond})
	if err != nil {
		return nil, err
	}

	common.LogInfo("registry entry fetched", common.Fields{
		"tax_id":     taxID,
		"legal_name": entry.LegalName,
		"region":     entry.Region,
	})
	return entry, nil
}
