// Package shortlist derives candidate products for a user-selected set of
// suppliers from the joined purchase history.
package shortlist

import (
	"sort"
	"strings"

	"github.com/quotana/quotana/internal/common"
	"github.com/quotana/quotana/internal/dataset"
	"github.com/quotana/quotana/internal/model"
)

// fallbackSize is how many products the volume fallback proposes when the
// strict rules match nothing.
const fallbackSize = 20

type pairKey struct {
	supplier string
	product  string
}

// Suggest returns the product candidates for the selected suppliers.
//
// Strict rules, not mutually exclusive:
//   - universal: the product was sold by every selected supplier;
//   - recurrent: some (supplier, product) pair occurs more than once.
//
// If neither rule matches anything, the fallback proposes the top products
// by raw occurrence across the filtered history, ties kept in first-seen
// order. Every returned code was observed at least once in the selected
// suppliers' history; nothing is fabricated.
//
// With a single selected supplier the universal rule is vacuous: every
// product that supplier ever bought counts as "sold by all". That
// degenerate behavior is inherited from the scoring design and preserved.
func Suggest(records []model.PurchaseRecord, selectedSuppliers []string) ([]model.ProductCandidate, error) {
	if len(selectedSuppliers) == 0 {
		return nil, common.ErrNoSuppliers
	}
	selected := dataset.NormalizeSupplierNames(selectedSuppliers)

	selectedSet := make(map[string]bool, len(selected))
	for _, s := range selected {
		selectedSet[s] = true
	}

	var filtered []model.PurchaseRecord
	for _, r := range records {
		if selectedSet[r.SupplierName] {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		return nil, nil
	}

	// Distinct selected suppliers per product.
	suppliersPerProduct := make(map[string]map[string]bool)
	// Line occurrences per (supplier, product).
	pairCounts := make(map[pairKey]int)
	// Raw occurrences per product plus first-seen order for the fallback.
	productCounts := make(map[string]int)
	var productOrder []string

	for _, r := range filtered {
		if suppliersPerProduct[r.ProductCode] == nil {
			suppliersPerProduct[r.ProductCode] = make(map[string]bool)
		}
		suppliersPerProduct[r.ProductCode][r.SupplierName] = true
		pairCounts[pairKey{r.SupplierName, r.ProductCode}]++
		if productCounts[r.ProductCode] == 0 {
			productOrder = append(productOrder, r.ProductCode)
		}
		productCounts[r.ProductCode]++
	}

	universal := make(map[string]bool)
	for code, sellers := range suppliersPerProduct {
		if len(sellers) == len(selected) {
			universal[code] = true
		}
	}

	recurrent := make(map[string]bool)
	for key, count := range pairCounts {
		if count > 1 {
			recurrent[key.product] = true
		}
	}

	chosen := make(map[string]bool, len(universal)+len(recurrent))
	for code := range universal {
		chosen[code] = true
	}
	for code := range recurrent {
		chosen[code] = true
	}

	if len(chosen) == 0 {
		for _, code := range topByVolume(productCounts, productOrder, fallbackSize) {
			chosen[code] = true
		}
	}

	return expand(filtered, chosen, universal, recurrent), nil
}

// topByVolume returns up to n product codes by descending occurrence count,
// breaking ties by first-seen order.
func topByVolume(counts map[string]int, order []string, n int) []string {
	codes := make([]string, len(order))
	copy(codes, order)
	sort.SliceStable(codes, func(i, j int) bool {
		return counts[codes[i]] > counts[codes[j]]
	})
	if len(codes) > n {
		codes = codes[:n]
	}
	return codes
}

// expand builds the presentation rows: one candidate per (supplier,
// product) grouping with the most recent known description and price, and
// a justification assembled from the rules that matched.
func expand(filtered []model.PurchaseRecord, chosen, universal, recurrent map[string]bool) []model.ProductCandidate {
	type lastSeen struct {
		description string
		price       float64
	}
	latest := make(map[pairKey]lastSeen)
	var keys []pairKey
	for _, r := range filtered {
		if !chosen[r.ProductCode] {
			continue
		}
		key := pairKey{r.SupplierName, r.ProductCode}
		if _, ok := latest[key]; !ok {
			keys = append(keys, key)
		}
		latest[key] = lastSeen{description: r.Description, price: r.UnitValue}
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].supplier != keys[j].supplier {
			return keys[i].supplier < keys[j].supplier
		}
		return keys[i].product < keys[j].product
	})

	candidates := make([]model.ProductCandidate, 0, len(keys))
	for _, key := range keys {
		var reasons []string
		if universal[key.product] {
			reasons = append(reasons, model.ReasonUniversal)
		}
		if recurrent[key.product] {
			reasons = append(reasons, model.ReasonRecurrent)
		}
		if len(reasons) == 0 {
			reasons = append(reasons, model.ReasonAvailable)
		}

		seen := latest[key]
		candidates = append(candidates, model.ProductCandidate{
			SupplierName:  key.supplier,
			ProductCode:   key.product,
			Description:   seen.description,
			LastPrice:     seen.price,
			Justification: strings.Join(reasons, " | "),
		})
	}
	return candidates
}

// Codes returns the distinct product codes in a candidate list, preserving
// first appearance order.
func Codes(candidates []model.ProductCandidate) []string {
	seen := make(map[string]bool)
	var codes []string
	for _, c := range candidates {
		if !seen[c.ProductCode] {
			seen[c.ProductCode] = true
			codes = append(codes, c.ProductCode)
		}
	}
	return codes
}
