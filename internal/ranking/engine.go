// Package ranking ranks suppliers per selected product by classifier
// rating, mean price and local purchase recurrence.
package ranking

import (
	"sort"

	"github.com/quotana/quotana/internal/model"
)

// topN is how many suppliers are returned per product.
const topN = 3

// Rank produces the top-3 supplier ranking for each selected product code.
// The latest classified cohort may be nil or partial; suppliers without a
// classifier record rank with the neutral rating 1 and the "N/A" label
// rather than being excluded. Products with no purchase history at all are
// silently skipped: an empty result is a valid outcome, not an error.
func Rank(records []model.PurchaseRecord, productCodes []string, cohort []model.ClassifiedSupplier) []model.ProductRanking {
	type classified struct {
		label  string
		rating int
	}
	byName := make(map[string]classified, len(cohort))
	for _, c := range cohort {
		byName[c.Features.SupplierName] = classified{rating: c.Rating, label: c.Classification}
	}

	var rankings []model.ProductRanking
	for _, code := range productCodes {
		type local struct {
			priceSum float64
			count    int
		}
		locals := make(map[string]*local)
		var supplierOrder []string
		description := ""

		for _, r := range records {
			if r.ProductCode != code {
				continue
			}
			l, ok := locals[r.SupplierName]
			if !ok {
				l = &local{}
				locals[r.SupplierName] = l
				supplierOrder = append(supplierOrder, r.SupplierName)
			}
			l.priceSum += r.UnitValue
			l.count++
			description = r.Description
		}
		if len(locals) == 0 {
			continue
		}

		entries := make([]model.SupplierRankingEntry, 0, len(locals))
		for _, name := range supplierOrder {
			l := locals[name]
			entry := model.SupplierRankingEntry{
				SupplierName:   name,
				MeanPrice:      l.priceSum / float64(l.count),
				LocalCount:     l.count,
				Rating:         1,
				Classification: model.LabelUnclassified,
			}
			if c, ok := byName[name]; ok {
				entry.Rating = c.rating
				entry.Classification = c.label
			}
			entries = append(entries, entry)
		}

		// Strict lexicographic tie-break order, not a weighted blend.
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].Rating != entries[j].Rating {
				return entries[i].Rating > entries[j].Rating
			}
			if entries[i].MeanPrice != entries[j].MeanPrice {
				return entries[i].MeanPrice < entries[j].MeanPrice
			}
			return entries[i].LocalCount > entries[j].LocalCount
		})
		if len(entries) > topN {
			entries = entries[:topN]
		}

		rankings = append(rankings, model.ProductRanking{
			ProductCode: code,
			Description: description,
			Suppliers:   entries,
		})
	}
	return rankings
}
