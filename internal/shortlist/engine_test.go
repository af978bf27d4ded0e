package shortlist

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/quotana/quotana/internal/common"
	"github.com/quotana/quotana/internal/model"
)

func record(supplier, product, description string, price float64) model.PurchaseRecord {
	return model.PurchaseRecord{
		SupplierName: supplier,
		ProductCode:  product,
		Description:  description,
		UnitValue:    price,
	}
}

func TestSuggest_EmptySelection(t *testing.T) {
	_, err := Suggest(nil, nil)
	if !errors.Is(err, common.ErrNoSuppliers) {
		t.Errorf("Expected ErrNoSuppliers, got %v", err)
	}
}

func TestSuggest_UnknownSupplier(t *testing.T) {
	records := []model.PurchaseRecord{record("ACME", "P1", "Parafuso", 2)}

	candidates, err := Suggest(records, []string{"GHOST"})
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if candidates != nil {
		t.Errorf("Expected nil candidates for unknown supplier, got %v", candidates)
	}
}

func TestSuggest_UniversalAndRecurrent(t *testing.T) {
	records := []model.PurchaseRecord{
		record("ACME", "P1", "Parafuso", 2),
		record("BETA", "P1", "Parafuso", 3),
		record("ACME", "P2", "Porca", 1),
		record("ACME", "P2", "Porca inox", 1.5),
		record("BETA", "P3", "Arruela", 0.5),
	}

	candidates, err := Suggest(records, []string{"ACME", "BETA"})
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}

	byPair := make(map[string]model.ProductCandidate)
	for _, c := range candidates {
		byPair[c.SupplierName+"/"+c.ProductCode] = c
	}

	// P1 is sold by both suppliers.
	if c, ok := byPair["ACME/P1"]; !ok || !strings.Contains(c.Justification, model.ReasonUniversal) {
		t.Errorf("ACME/P1: expected universal justification, got %+v", c)
	}
	if _, ok := byPair["BETA/P1"]; !ok {
		t.Error("BETA/P1 missing from candidates")
	}

	// P2 recurs at ACME; the last occurrence wins for description and price.
	c, ok := byPair["ACME/P2"]
	if !ok || !strings.Contains(c.Justification, model.ReasonRecurrent) {
		t.Errorf("ACME/P2: expected recurrent justification, got %+v", c)
	}
	if c.Description != "Porca inox" || c.LastPrice != 1.5 {
		t.Errorf("ACME/P2: expected last-seen description/price, got %+v", c)
	}

	// P3 matched no rule and must not appear while other rules fired.
	if _, ok := byPair["BETA/P3"]; ok {
		t.Error("P3 must not be in the candidate set")
	}
}

func TestSuggest_SingleSupplierUniversalIsVacuous(t *testing.T) {
	records := []model.PurchaseRecord{
		record("ACME", "P1", "Parafuso", 2),
		record("ACME", "P2", "Porca", 1),
	}

	candidates, err := Suggest(records, []string{"ACME"})
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("Expected both products with one supplier selected, got %d", len(candidates))
	}
	for _, c := range candidates {
		if !strings.Contains(c.Justification, model.ReasonUniversal) {
			t.Errorf("%s: expected universal justification, got %q", c.ProductCode, c.Justification)
		}
	}
}

func TestSuggest_NormalizesSelection(t *testing.T) {
	records := []model.PurchaseRecord{record("ACME", "P1", "Parafuso", 2)}

	candidates, err := Suggest(records, []string{"  ACME  "})
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("Expected whitespace-padded selection to match, got %d candidates", len(candidates))
	}
}

func TestSuggest_VolumeFallback(t *testing.T) {
	// Two suppliers with disjoint single-occurrence products: neither the
	// universal nor the recurrent rule can fire.
	var records []model.PurchaseRecord
	for i := 0; i < 25; i++ {
		supplier := "ACME"
		if i%2 == 1 {
			supplier = "BETA"
		}
		records = append(records, record(supplier, fmt.Sprintf("P%02d", i), "Item", 1))
	}

	candidates, err := Suggest(records, []string{"ACME", "BETA"})
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}

	codes := Codes(candidates)
	if len(codes) != 20 {
		t.Fatalf("Fallback must cap at 20 products, got %d", len(codes))
	}
	// All counts tie at one, so first-seen order decides.
	for i, code := range codes {
		want := fmt.Sprintf("P%02d", i)
		if code != want {
			t.Errorf("Fallback order at %d: got %s, want %s", i, code, want)
			break
		}
	}
	for _, c := range candidates {
		if c.Justification != model.ReasonAvailable {
			t.Errorf("%s: fallback candidates carry the availability reason, got %q",
				c.ProductCode, c.Justification)
		}
	}
}

func TestSuggest_CandidatesSortedBySupplierThenProduct(t *testing.T) {
	records := []model.PurchaseRecord{
		record("BETA", "P2", "b", 1),
		record("ACME", "P2", "a", 1),
		record("BETA", "P1", "c", 1),
		record("ACME", "P1", "d", 1),
	}

	candidates, err := Suggest(records, []string{"ACME", "BETA"})
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	for i := 1; i < len(candidates); i++ {
		prev, cur := candidates[i-1], candidates[i]
		if prev.SupplierName > cur.SupplierName ||
			(prev.SupplierName == cur.SupplierName && prev.ProductCode > cur.ProductCode) {
			t.Errorf("Candidates out of order at %d: %+v before %+v", i, prev, cur)
		}
	}
}
