package registry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/quotana/quotana/internal/common"
	"github.com/quotana/quotana/internal/config"
	"github.com/quotana/quotana/internal/service"
	"github.com/quotana/quotana/internal/storage"
)

func TestNormalizeTaxID(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "00.000.000/0001-91", want: "00000000000191"},
		{raw: "191", want: "00000000000191"},
		{raw: "00000000000191", want: "00000000000191"},
		{raw: "", want: "00000000000000"},
		{raw: "123456789012345", want: "123456789012345"},
	}
	for _, tt := range tests {
		if got := NormalizeTaxID(tt.raw); got != tt.want {
			t.Errorf("NormalizeTaxID(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func newTestStore(t *testing.T) service.Storage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return store
}

func TestClient_LookupFetchesAndCaches(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Path != "/00000000000191" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"razao_social": "ACME LTDA",
			"municipio": "GOIANIA",
			"uf": "GO",
			"ddd_telefone_1": "",
			"ddd_telefone_2": "6299990000",
			"ddd_fax": "6233330000"
		}`))
	}))
	defer server.Close()

	store := newTestStore(t)
	client := NewClient(config.RegistryConfig{BaseURL: server.URL, TimeoutSeconds: 5}, store)
	ctx := context.Background()

	// Formatted input normalizes to the canonical 14 digits.
	entry, err := client.Lookup(ctx, "00.000.000/0001-91")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if entry.LegalName != "ACME LTDA" || entry.Region != "GO" {
		t.Errorf("Entry mismatch: %+v", entry)
	}
	if entry.ResolvePhone() != "6299990000" {
		t.Errorf("Expected phone_2 priority over fax, got %q", entry.ResolvePhone())
	}

	// Second lookup hits the cache, not the server.
	if _, err := client.Lookup(ctx, "191"); err != nil {
		t.Fatalf("Cached lookup failed: %v", err)
	}
	if requests != 1 {
		t.Errorf("Server hit %d times, want 1", requests)
	}
}

func TestClient_LookupNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(config.RegistryConfig{BaseURL: server.URL, TimeoutSeconds: 5}, newTestStore(t))

	_, err := client.Lookup(context.Background(), "00000000000191")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestClient_LookupServerErrorRetriesThenFails(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(config.RegistryConfig{BaseURL: server.URL, TimeoutSeconds: 5}, newTestStore(t))

	if _, err := client.Lookup(context.Background(), "00000000000191"); err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if requests != 3 {
		t.Errorf("Server hit %d times, want 3 attempts", requests)
	}
}

func TestClient_LookupBadRequestDoesNotRetry(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(config.RegistryConfig{BaseURL: server.URL, TimeoutSeconds: 5}, newTestStore(t))

	if _, err := client.Lookup(context.Background(), "123456789012345"); err == nil {
		t.Fatal("Expected error on bad request")
	}
	if requests != 1 {
		t.Errorf("Server hit %d times, want 1 (4xx is not retryable)", requests)
	}
}
