package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quotana/quotana/internal/common"
	"github.com/quotana/quotana/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o640); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func testLoader(t *testing.T, headersCSV, itemsCSV string) *Loader {
	t.Helper()
	dir := t.TempDir()
	return NewLoader(config.DataConfig{
		HeadersPath: writeFile(t, dir, "headers.csv", headersCSV),
		ItemsPath:   writeFile(t, dir, "items.csv", itemsCSV),
	})
}

const headersCSV = `CODIGO_COMPRA,RAZAO_FORNECEDOR,PRAZO_ENTREGA_DIAS,TOTAL_NOTAFISCAL,TOTAL_PRODUTOS,TOTAL_DESCONTO,DATA_COMPRA
C1,  ACME LTDA  ,5,110,100,10,2025-03-01
C2,BETA SA,12,"55,5",50,0,15/04/2025
,MISSING ID,1,1,1,0,2025-01-01
`

const itemsCSV = `CODIGO_COMPRA,CODIGO_PRODUTO,PRODUTO,VALOR_UNITARIO,MARCA,GRUPO
C1,P1,Parafuso,"2,5",MarcaX,Fixacao
C1,P2,Porca,1,MarcaY,Fixacao
C9,P3,Orfao,9,MarcaZ,Outros
C2,,Sem codigo,3,MarcaW,Outros
`

func TestLoader_Load(t *testing.T) {
	history, err := testLoader(t, headersCSV, itemsCSV).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(history.Headers) != 2 {
		t.Fatalf("Expected 2 headers (row without purchase id dropped), got %d", len(history.Headers))
	}

	acme := history.Headers[0]
	if acme.SupplierName != "ACME LTDA" {
		t.Errorf("Supplier name must be trimmed, got %q", acme.SupplierName)
	}
	if acme.LeadTimeDays != 5 || acme.InvoiceTotal != 110 || acme.DiscountTotal != 10 {
		t.Errorf("Header numbers mismatch: %+v", acme)
	}
	if !acme.Date.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date = %v, want 2025-03-01", acme.Date)
	}

	beta := history.Headers[1]
	if beta.InvoiceTotal != 55.5 {
		t.Errorf("Comma decimal must parse, got %v", beta.InvoiceTotal)
	}
	if !beta.Date.Equal(time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Brazilian date layout must parse, got %v", beta.Date)
	}

	// Items: the row without a product code is dropped at load; the orphan
	// C9 row survives loading but is dropped by the join.
	if len(history.Items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(history.Items))
	}
	if len(history.Records) != 2 {
		t.Fatalf("Expected 2 joined records, got %d", len(history.Records))
	}
	r := history.Records[0]
	if r.SupplierName != "ACME LTDA" || r.ProductCode != "P1" || r.UnitValue != 2.5 {
		t.Errorf("Joined record mismatch: %+v", r)
	}
}

func TestLoader_MissingFile(t *testing.T) {
	loader := NewLoader(config.DataConfig{
		HeadersPath: filepath.Join(t.TempDir(), "nope.csv"),
		ItemsPath:   filepath.Join(t.TempDir(), "nope.csv"),
	})

	_, err := loader.Load()
	if !errors.Is(err, common.ErrExtractMissing) {
		t.Fatalf("Expected ErrExtractMissing, got %v", err)
	}
	var userErr *common.UserError
	if !errors.As(err, &userErr) {
		t.Error("Missing extract must surface as a user-visible error naming the path")
	}
}

func TestLoader_UnknownExtension(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader(config.DataConfig{
		HeadersPath: writeFile(t, dir, "headers.txt", "x"),
		ItemsPath:   writeFile(t, dir, "items.txt", "x"),
	})

	_, err := loader.Load()
	if !errors.Is(err, common.ErrUnknownExtension) {
		t.Errorf("Expected ErrUnknownExtension, got %v", err)
	}
}

func TestNormalizeSupplierName(t *testing.T) {
	if got := NormalizeSupplierName("  ACME LTDA \t"); got != "ACME LTDA" {
		t.Errorf("NormalizeSupplierName = %q", got)
	}
	// Case and punctuation variants stay distinct.
	if NormalizeSupplierName("acme ltda") == NormalizeSupplierName("ACME LTDA") {
		t.Error("Case variants must not be unified")
	}
}

func TestHistory_ProductAndSupplierQueries(t *testing.T) {
	history, err := testLoader(t, headersCSV, itemsCSV).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	records := history.ProductHistory("P1", &from, &to)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record for P1 in window, got %d", len(records))
	}
	if records := history.ProductHistory("P1", &to, nil); len(records) != 0 {
		t.Errorf("Expected no records after window, got %d", len(records))
	}

	if headers := history.SupplierHistory("acme"); len(headers) != 1 {
		t.Errorf("Case-insensitive fragment must match, got %d headers", len(headers))
	}
	if headers := history.SupplierHistory("GHOST"); len(headers) != 0 {
		t.Errorf("Expected no headers, got %d", len(headers))
	}
}
