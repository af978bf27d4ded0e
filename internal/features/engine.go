// Package features aggregates purchase history into one behavioral metric
// row per supplier. The output cohort feeds the classifier.
package features

import (
	"math"
	"sort"

	"github.com/quotana/quotana/internal/model"
)

// epsilon guards the discount-rate division against zero product totals.
const epsilon = 1e-6

// Build produces one SupplierFeatures row per distinct supplier name in the
// headers, sorted by supplier name. Suppliers with a single purchase get a
// zero lead-time deviation instead of being dropped. Pure function.
func Build(headers []model.PurchaseHeader, records []model.PurchaseRecord) []model.SupplierFeatures {
	type acc struct {
		leadTimes     []float64
		invoiceTotal  float64
		productsTotal float64
		discountTotal float64
		priceSum      float64
		priceCount    int
		purchases     int
	}

	accs := make(map[string]*acc)
	for _, h := range headers {
		a, ok := accs[h.SupplierName]
		if !ok {
			a = &acc{}
			accs[h.SupplierName] = a
		}
		a.leadTimes = append(a.leadTimes, h.LeadTimeDays)
		a.purchases++
		a.invoiceTotal += h.InvoiceTotal
		a.productsTotal += h.ProductsTotal
		a.discountTotal += h.DiscountTotal
	}

	for _, r := range records {
		a, ok := accs[r.SupplierName]
		if !ok {
			continue
		}
		a.priceSum += r.UnitValue
		a.priceCount++
	}

	names := make([]string, 0, len(accs))
	for name := range accs {
		names = append(names, name)
	}
	sort.Strings(names)

	cohort := make([]model.SupplierFeatures, 0, len(names))
	for _, name := range names {
		a := accs[name]
		row := model.SupplierFeatures{
			SupplierName:       name,
			AvgLeadTime:        mean(a.leadTimes),
			StdLeadTime:        sampleStd(a.leadTimes),
			Recurrence:         a.purchases,
			TotalSpent:         a.invoiceTotal,
			TotalProductsValue: a.productsTotal,
			TotalDiscount:      a.discountTotal,
			DiscountRate:       a.discountTotal / (a.productsTotal + epsilon),
		}
		if a.priceCount > 0 {
			row.AvgItemPrice = a.priceSum / float64(a.priceCount)
		}
		cohort = append(cohort, row)
	}
	return cohort
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStd is the n-1 standard deviation; 0 for fewer than two samples.
func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
