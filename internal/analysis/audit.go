package analysis

import (
	"strings"

	"github.com/quotana/quotana/internal/model"
)

// Audit flags raised on budget line items.
const (
	FlagPriceOutOfRange = "PRECO_FORA_PADRAO"
	FlagOK              = "OK"
)

// AuditedItem is a budget line item with its audit verdict.
type AuditedItem struct {
	ProductCode string
	Flags       string
	BasePrice   float64
	AutoApprove bool
}

// AuditBudgetItems runs the IQR price check over the items of a budget and
// returns a per-line verdict. Lines with no flags auto-approve.
func AuditBudgetItems(items []model.BudgetItem) []AuditedItem {
	prices := make([]float64, len(items))
	for i, item := range items {
		prices[i] = item.BasePrice
	}
	anomalous := DetectAnomalies(prices)

	out := make([]AuditedItem, 0, len(items))
	for _, item := range items {
		var flags []string
		if anomalous[item.BasePrice] {
			flags = append(flags, FlagPriceOutOfRange)
		}

		verdict := FlagOK
		if len(flags) > 0 {
			verdict = strings.Join(flags, ", ")
		}
		out = append(out, AuditedItem{
			ProductCode: item.ProductCode,
			BasePrice:   item.BasePrice,
			Flags:       verdict,
			AutoApprove: len(flags) == 0,
		})
	}
	return out
}
