// Package model defines the core domain models used throughout the application.
package model

import "time"

// PurchaseHeader is one purchase order row from the header extract.
// Immutable once loaded; the supplier name is whitespace-normalized by
// the dataset loader before any consumer sees it.
type PurchaseHeader struct {
	Date          time.Time
	PurchaseID    string
	SupplierName  string
	LeadTimeDays  float64
	InvoiceTotal  float64
	ProductsTotal float64
	DiscountTotal float64
}

// PurchaseLineItem is one product line within a purchase order.
type PurchaseLineItem struct {
	PurchaseID  string
	ProductCode string
	Description string
	Brand       string
	Group       string
	UnitValue   float64
}

// PurchaseRecord is a line item joined with its header's supplier and date.
// This is the working row for the shortlist and ranking engines.
type PurchaseRecord struct {
	Date         time.Time
	PurchaseID   string
	SupplierName string
	ProductCode  string
	Description  string
	Brand        string
	Group        string
	UnitValue    float64
}
