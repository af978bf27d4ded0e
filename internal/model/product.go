package model

// Shortlist justification vocabulary. Multiple matches are pipe-joined.
const (
	ReasonUniversal = "Presente em todos os fornecedores"
	ReasonRecurrent = "Histórico recorrente"
	ReasonAvailable = "Disponível neste fornecedor"
)

// ProductCandidate is a (product, supplier) pair surfaced by the shortlist
// engine, carrying the last known description and price for presentation.
type ProductCandidate struct {
	SupplierName  string
	ProductCode   string
	Description   string
	Justification string
	LastPrice     float64
}

// SupplierRankingEntry is one of the top suppliers ranked for a product.
// Suppliers absent from the latest classified cohort keep the neutral
// rating 1 and the "N/A" label rather than being excluded. Rankings carry
// no tax identifier; the purchase extracts only name suppliers, so tax IDs
// enter the pipeline through the decisions file.
type SupplierRankingEntry struct {
	SupplierName   string
	Classification string
	MeanPrice      float64
	LocalCount     int
	Rating         int
}

// ProductRanking holds the top-3 ranked suppliers for a single product.
type ProductRanking struct {
	ProductCode string
	Description string
	Suppliers   []SupplierRankingEntry
}
