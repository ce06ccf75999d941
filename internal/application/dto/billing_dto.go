package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItemRequest línea de oferta o factura. ProductID opcional (mano de obra, desplazamiento).
// TaxRate nil toma el del producto; sin producto se usa 0.
type LineItemRequest struct {
	ProductID   string           `json:"product_id,omitempty"`
	WarehouseID string           `json:"warehouse_id,omitempty"`
	Description string           `json:"description"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
}

// OfferOptionRequest opción de una oferta.
type OfferOptionRequest struct {
	Name  string            `json:"name" validate:"required"`
	Items []LineItemRequest `json:"items"`
}

// CreateOfferRequest body de POST /api/offers.
type CreateOfferRequest struct {
	CustomerID string               `json:"customer_id" validate:"required,uuid"`
	Title      string               `json:"title" validate:"required"`
	ValidUntil *time.Time           `json:"valid_until,omitempty"`
	Notes      string               `json:"notes"`
	Options    []OfferOptionRequest `json:"options"`
}

// AcceptOfferRequest opción elegida por el cliente.
type AcceptOfferRequest struct {
	OptionID string `json:"option_id" validate:"required,uuid"`
}

// OfferItemResponse línea de opción.
type OfferItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
}

// OfferOptionResponse opción con totales.
type OfferOptionResponse struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	NetTotal   decimal.Decimal     `json:"net_total"`
	TaxTotal   decimal.Decimal     `json:"tax_total"`
	GrandTotal decimal.Decimal     `json:"grand_total"`
	Items      []OfferItemResponse `json:"items"`
}

// OfferResponse oferta completa.
type OfferResponse struct {
	ID               string                `json:"id"`
	Number           string                `json:"number"`
	CustomerID       string                `json:"customer_id"`
	Title            string                `json:"title"`
	Status           string                `json:"status"`
	ValidUntil       *time.Time            `json:"valid_until,omitempty"`
	Notes            string                `json:"notes"`
	SelectedOptionID string                `json:"selected_option_id,omitempty"`
	ServiceOrderID   string                `json:"service_order_id,omitempty"`
	SentAt           *time.Time            `json:"sent_at,omitempty"`
	DecidedAt        *time.Time            `json:"decided_at,omitempty"`
	Options          []OfferOptionResponse `json:"options"`
	CreatedAt        time.Time             `json:"created_at"`
}

// OfferListResponse lista paginada de ofertas (sin opciones).
type OfferListResponse struct {
	Items []OfferResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// CreateInvoiceRequest body de POST /api/invoices.
type CreateInvoiceRequest struct {
	CustomerID     string            `json:"customer_id" validate:"required,uuid"`
	ServiceOrderID string            `json:"service_order_id,omitempty"`
	DueDate        *time.Time        `json:"due_date,omitempty"`
	Notes          string            `json:"notes"`
	Items          []LineItemRequest `json:"items"`
}

// InvoiceDetailResponse línea de detalle.
type InvoiceDetailResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id,omitempty"`
	WarehouseID string          `json:"warehouse_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
}

// InvoiceResponse factura con detalle.
type InvoiceResponse struct {
	ID             string                  `json:"id"`
	Number         string                  `json:"number"`
	CustomerID     string                  `json:"customer_id"`
	CustomerName   string                  `json:"customer_name,omitempty"`
	ServiceOrderID string                  `json:"service_order_id,omitempty"`
	Date           time.Time               `json:"date"`
	DueDate        *time.Time              `json:"due_date,omitempty"`
	NetTotal       decimal.Decimal         `json:"net_total"`
	TaxTotal       decimal.Decimal         `json:"tax_total"`
	GrandTotal     decimal.Decimal         `json:"grand_total"`
	Status         string                  `json:"status"`
	Notes          string                  `json:"notes"`
	IssuedAt       *time.Time              `json:"issued_at,omitempty"`
	PaidAt         *time.Time              `json:"paid_at,omitempty"`
	Details        []InvoiceDetailResponse `json:"details,omitempty"`
}

// InvoiceListResponse lista paginada de facturas.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// CreateLinkRequest alta de enlace público.
type CreateLinkRequest struct {
	ResourceType string     `json:"resource_type" validate:"required,oneof=offer invoice service_order"`
	ResourceID   string     `json:"resource_id" validate:"required,uuid"`
	Password     string     `json:"password,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	MaxViews     int        `json:"max_views"`
}

// LinkResponse enlace dinámico (sin hash de contraseña).
type LinkResponse struct {
	ID           string     `json:"id"`
	Token        string     `json:"token"`
	URL          string     `json:"url"`
	ResourceType string     `json:"resource_type"`
	ResourceID   string     `json:"resource_id"`
	Protected    bool       `json:"protected"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	MaxViews     int        `json:"max_views"`
	Views        int        `json:"views"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ResolvedLinkResponse documento expuesto por un enlace público. Solo uno de los campos va relleno.
type ResolvedLinkResponse struct {
	ResourceType string                `json:"resource_type"`
	Offer        *OfferResponse        `json:"offer,omitempty"`
	Invoice      *InvoiceResponse      `json:"invoice,omitempty"`
	ServiceOrder *ServiceOrderResponse `json:"service_order,omitempty"`
}
