package model

import (
	"strings"
	"time"
)

// RegistryEntry holds the fields of interest from the national company
// registry, cached keyed by the normalized 14-digit tax identifier.
type RegistryEntry struct {
	UpdatedAt    time.Time
	TaxID        string
	LegalName    string `json:"razao_social"`
	Municipality string `json:"municipio"`
	Region       string `json:"uf"`
	Phone1       string `json:"ddd_telefone_1"`
	Phone2       string `json:"ddd_telefone_2"`
	Fax          string `json:"ddd_fax"`
}

// ResolvePhone picks the contact phone in priority order: primary phone,
// secondary phone, fax. First non-blank wins; empty string if none.
func (e *RegistryEntry) ResolvePhone() string {
	for _, candidate := range []string{e.Phone1, e.Phone2, e.Fax} {
		if s := strings.TrimSpace(candidate); s != "" {
			return s
		}
	}
	return ""
}

// SendResult reports the outcome of one quotation email dispatch. Transport
// failures are captured here, never raised into the pipeline.
type SendResult struct {
	SentAt       time.Time
	SupplierName string
	Recipient    string
	Message      string
	Error        string
	Success      bool
}
