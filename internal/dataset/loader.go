// Package dataset loads the purchase history extracts and exposes the
// joined, name-normalized rows every pipeline stage consumes.
package dataset

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/quotana/quotana/internal/common"
	"github.com/quotana/quotana/internal/config"
	"github.com/quotana/quotana/internal/model"
)

// Column names as they appear in the ERP extracts.
const (
	colPurchaseID    = "CODIGO_COMPRA"
	colSupplierName  = "RAZAO_FORNECEDOR"
	colLeadTimeDays  = "PRAZO_ENTREGA_DIAS"
	colInvoiceTotal  = "TOTAL_NOTAFISCAL"
	colProductsTotal = "TOTAL_PRODUTOS"
	colDiscountTotal = "TOTAL_DESCONTO"
	colPurchaseDate  = "DATA_COMPRA"
	colProductCode   = "CODIGO_PRODUTO"
	colDescription   = "PRODUTO"
	colUnitValue     = "VALOR_UNITARIO"
	colBrand         = "MARCA"
	colGroup         = "GRUPO"
)

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"01-02-06",
}

// NormalizeSupplierName is the single canonicalization applied to supplier
// names. Every grouping key and set-membership filter in the pipeline goes
// through it; callers never trim ad hoc. Case and punctuation variants are
// a known data-quality gap and are deliberately left alone.
func NormalizeSupplierName(name string) string {
	return strings.TrimSpace(name)
}

// NormalizeSupplierNames normalizes a user-provided selection in place
// order, returning a new slice.
func NormalizeSupplierNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, NormalizeSupplierName(n))
	}
	return out
}

// Loader reads the header and line-item extracts configured for a run.
type Loader struct {
	cfg config.DataConfig
}

// NewLoader creates a loader for the configured extract paths.
func NewLoader(cfg config.DataConfig) *Loader {
	return &Loader{cfg: cfg}
}

// LoadHeaders reads the purchase header extract.
func (l *Loader) LoadHeaders() ([]model.PurchaseHeader, error) {
	table, err := readTable(l.cfg.HeadersPath)
	if err != nil {
		return nil, err
	}

	headers := make([]model.PurchaseHeader, 0, len(table.rows))
	for _, row := range table.rows {
		h := model.PurchaseHeader{
			PurchaseID:    table.cell(row, colPurchaseID),
			SupplierName:  NormalizeSupplierName(table.cell(row, colSupplierName)),
			LeadTimeDays:  table.float(row, colLeadTimeDays),
			InvoiceTotal:  table.float(row, colInvoiceTotal),
			ProductsTotal: table.float(row, colProductsTotal),
			DiscountTotal: table.float(row, colDiscountTotal),
			Date:          table.date(row, colPurchaseDate),
		}
		if h.PurchaseID == "" {
			continue
		}
		headers = append(headers, h)
	}
	return headers, nil
}

// LoadItems reads the purchase line-item extract.
func (l *Loader) LoadItems() ([]model.PurchaseLineItem, error) {
	table, err := readTable(l.cfg.ItemsPath)
	if err != nil {
		return nil, err
	}

	items := make([]model.PurchaseLineItem, 0, len(table.rows))
	for _, row := range table.rows {
		item := model.PurchaseLineItem{
			PurchaseID:  table.cell(row, colPurchaseID),
			ProductCode: table.cell(row, colProductCode),
			Description: table.cell(row, colDescription),
			UnitValue:   table.float(row, colUnitValue),
			Brand:       table.cell(row, colBrand),
			Group:       table.cell(row, colGroup),
		}
		if item.PurchaseID == "" || item.ProductCode == "" {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// Load reads both extracts and joins them.
func (l *Loader) Load() (*History, error) {
	headers, err := l.LoadHeaders()
	if err != nil {
		return nil, err
	}
	items, err := l.LoadItems()
	if err != nil {
		return nil, err
	}
	return NewHistory(headers, items), nil
}

// table is a parsed extract with a header-name index.
type table struct {
	index map[string]int
	rows  [][]string
}

func (t *table) cell(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *table) float(row []string, col string) float64 {
	raw := t.cell(row, col)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0
	}
	return v
}

func (t *table) date(row []string, col string) time.Time {
	raw := t.cell(row, col)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, raw); err == nil {
			return d
		}
	}
	return time.Time{}
}

func readTable(path string) (*table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, common.NewUserError(
			fmt.Sprintf("arquivo não encontrado: %s", path),
			common.ErrExtractMissing)
	}

	var records [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		records, err = readXLSX(path)
	case ".csv":
		records, err = readCSV(path)
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrUnknownExtension, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read extract %s: %w", path, err)
	}
	if len(records) == 0 {
		return &table{index: map[string]int{}}, nil
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.TrimSpace(name)] = i
	}
	return &table{index: index, rows: records[1:]}, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("failed to close workbook", "path", path, "error", cerr)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}
