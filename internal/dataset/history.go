package dataset

import (
	"log/slog"
	"strings"
	"time"

	"github.com/quotana/quotana/internal/model"
)

// History is the loaded purchase dataset: both extracts plus the join of
// line items against their headers on the purchase identifier.
type History struct {
	Headers []model.PurchaseHeader
	Items   []model.PurchaseLineItem
	Records []model.PurchaseRecord
}

// NewHistory joins line items with headers. Items whose purchase identifier
// has no header row carry no supplier and would never survive a supplier
// filter, so they are dropped at the boundary.
func NewHistory(headers []model.PurchaseHeader, items []model.PurchaseLineItem) *History {
	byPurchase := make(map[string]*model.PurchaseHeader, len(headers))
	for i := range headers {
		byPurchase[headers[i].PurchaseID] = &headers[i]
	}

	records := make([]model.PurchaseRecord, 0, len(items))
	orphans := 0
	for _, item := range items {
		header, ok := byPurchase[item.PurchaseID]
		if !ok {
			orphans++
			continue
		}
		records = append(records, model.PurchaseRecord{
			PurchaseID:   item.PurchaseID,
			SupplierName: header.SupplierName,
			Date:         header.Date,
			ProductCode:  item.ProductCode,
			Description:  item.Description,
			Brand:        item.Brand,
			Group:        item.Group,
			UnitValue:    item.UnitValue,
		})
	}
	if orphans > 0 {
		slog.Debug("dropped line items without matching header", "count", orphans)
	}

	return &History{Headers: headers, Items: items, Records: records}
}

// ProductHistory returns the purchase records for one product code,
// optionally bounded by date.
func (h *History) ProductHistory(productCode string, from, to *time.Time) []model.PurchaseRecord {
	var out []model.PurchaseRecord
	for _, r := range h.Records {
		if r.ProductCode != productCode {
			continue
		}
		if from != nil && r.Date.Before(*from) {
			continue
		}
		if to != nil && r.Date.After(*to) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SupplierHistory returns the header rows whose supplier name contains the
// given fragment, case-insensitively.
func (h *History) SupplierHistory(fragment string) []model.PurchaseHeader {
	needle := strings.ToLower(NormalizeSupplierName(fragment))
	var out []model.PurchaseHeader
	for _, header := range h.Headers {
		if strings.Contains(strings.ToLower(header.SupplierName), needle) {
			out = append(out, header)
		}
	}
	return out
}
