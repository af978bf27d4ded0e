package features

import (
	"math"
	"testing"
	"time"

	"github.com/quotana/quotana/internal/model"
)

func header(id, supplier string, lead, invoice, products, discount float64) model.PurchaseHeader {
	return model.PurchaseHeader{
		PurchaseID:    id,
		SupplierName:  supplier,
		LeadTimeDays:  lead,
		InvoiceTotal:  invoice,
		ProductsTotal: products,
		DiscountTotal: discount,
		Date:          time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestBuild(t *testing.T) {
	headers := []model.PurchaseHeader{
		header("C1", "ACME LTDA", 5, 110, 100, 10),
		header("C2", "ACME LTDA", 9, 220, 200, 30),
		header("C3", "BETA SA", 20, 55, 50, 0),
	}
	records := []model.PurchaseRecord{
		{PurchaseID: "C1", SupplierName: "ACME LTDA", ProductCode: "P1", UnitValue: 10},
		{PurchaseID: "C2", SupplierName: "ACME LTDA", ProductCode: "P2", UnitValue: 30},
		{PurchaseID: "C3", SupplierName: "BETA SA", ProductCode: "P1", UnitValue: 12},
	}

	cohort := Build(headers, records)
	if len(cohort) != 2 {
		t.Fatalf("Expected 2 suppliers, got %d", len(cohort))
	}

	acme := cohort[0]
	if acme.SupplierName != "ACME LTDA" {
		t.Fatalf("Expected sorted output with ACME first, got %s", acme.SupplierName)
	}
	if acme.AvgLeadTime != 7 {
		t.Errorf("AvgLeadTime = %v, want 7", acme.AvgLeadTime)
	}
	// Sample deviation of {5, 9}.
	if math.Abs(acme.StdLeadTime-math.Sqrt(8)) > 1e-9 {
		t.Errorf("StdLeadTime = %v, want %v", acme.StdLeadTime, math.Sqrt(8))
	}
	if acme.Recurrence != 2 {
		t.Errorf("Recurrence = %d, want 2", acme.Recurrence)
	}
	if acme.TotalSpent != 330 {
		t.Errorf("TotalSpent = %v, want 330", acme.TotalSpent)
	}
	wantRate := 40.0 / (300.0 + 1e-6)
	if math.Abs(acme.DiscountRate-wantRate) > 1e-12 {
		t.Errorf("DiscountRate = %v, want %v", acme.DiscountRate, wantRate)
	}
	if acme.AvgItemPrice != 20 {
		t.Errorf("AvgItemPrice = %v, want 20", acme.AvgItemPrice)
	}

	beta := cohort[1]
	if beta.StdLeadTime != 0 {
		t.Errorf("Single-purchase supplier must have zero deviation, got %v", beta.StdLeadTime)
	}
	if beta.Recurrence != 1 {
		t.Errorf("Recurrence = %d, want 1", beta.Recurrence)
	}
}

func TestBuild_IgnoresRecordsWithoutHeader(t *testing.T) {
	headers := []model.PurchaseHeader{header("C1", "ACME LTDA", 5, 100, 100, 0)}
	records := []model.PurchaseRecord{
		{PurchaseID: "C9", SupplierName: "GHOST SA", ProductCode: "P1", UnitValue: 99},
	}

	cohort := Build(headers, records)
	if len(cohort) != 1 {
		t.Fatalf("Expected 1 supplier, got %d", len(cohort))
	}
	if cohort[0].AvgItemPrice != 0 {
		t.Errorf("Supplier without line items must have zero item price, got %v", cohort[0].AvgItemPrice)
	}
}

func TestBuild_Empty(t *testing.T) {
	if got := Build(nil, nil); len(got) != 0 {
		t.Errorf("Expected empty cohort, got %d rows", len(got))
	}
}
