package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de factura.
const (
	InvoiceDraft  = "draft"
	InvoiceIssued = "issued"
	InvoicePaid   = "paid"
	InvoiceVoid   = "void"
)

// Invoice cabecera de una factura.
type Invoice struct {
	ID             string
	CompanyID      string
	CustomerID     string
	ServiceOrderID string // opcional
	Number         string // FV-000001
	Date           time.Time
	DueDate        *time.Time
	NetTotal       decimal.Decimal
	TaxTotal       decimal.Decimal
	GrandTotal     decimal.Decimal
	Status         string
	Notes          string
	IssuedAt       *time.Time
	PaidAt         *time.Time
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CanMoveTo informa si la factura puede pasar al estado to.
func (i *Invoice) CanMoveTo(to string) bool {
	switch to {
	case InvoiceIssued:
		return i.Status == InvoiceDraft
	case InvoicePaid:
		return i.Status == InvoiceIssued
	case InvoiceVoid:
		return i.Status == InvoiceDraft || i.Status == InvoiceIssued
	}
	return false
}

// InvoiceDetail línea de factura. ProductID es opcional (mano de obra, desplazamiento).
type InvoiceDetail struct {
	ID          string
	InvoiceID   string
	ProductID   string
	WarehouseID string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal // porcentaje 0-100
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
}

// InvoiceFilter criterios de búsqueda de facturas.
type InvoiceFilter struct {
	CompanyID  string
	CustomerID string
	Status     string
	Limit      int
	Offset     int
}
