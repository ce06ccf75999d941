package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de oferta.
const (
	OfferDraft    = "draft"
	OfferSent     = "sent"
	OfferAccepted = "accepted"
	OfferRejected = "rejected"
	OfferExpired  = "expired"
)

// Offer presupuesto presentado a un cliente con una o varias opciones.
type Offer struct {
	ID               string
	CompanyID        string
	Number           string // OF-000001
	CustomerID       string
	Title            string
	Status           string
	ValidUntil       *time.Time
	Notes            string
	SelectedOptionID string
	ServiceOrderID   string // orden generada al convertir
	CreatedBy        string
	SentAt           *time.Time
	DecidedAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Options          []*OfferOption
}

// Expired informa si la validez de la oferta ya pasó en la fecha dada.
func (o *Offer) Expired(at time.Time) bool {
	return o.ValidUntil != nil && at.After(*o.ValidUntil)
}

// Option devuelve la opción con el id dado o nil.
func (o *Offer) Option(id string) *OfferOption {
	for _, opt := range o.Options {
		if opt.ID == id {
			return opt
		}
	}
	return nil
}

// OfferOption alternativa de la oferta (p.ej. "Split 3,5 kW" frente a "Multi-split 2x1").
type OfferOption struct {
	ID         string
	OfferID    string
	Name       string
	Position   int
	NetTotal   decimal.Decimal
	TaxTotal   decimal.Decimal
	GrandTotal decimal.Decimal
	Items      []*OfferItem
}

// OfferItem línea de una opción.
type OfferItem struct {
	ID          string
	OptionID    string
	ProductID   string // opcional
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	Position    int
}

// Recalculate recalcula importes de cada línea y los totales de la opción.
func (opt *OfferOption) Recalculate() {
	opt.NetTotal, opt.TaxTotal = decimal.Zero, decimal.Zero
	for _, it := range opt.Items {
		it.Subtotal, it.TaxAmount = LineAmounts(it.Quantity, it.UnitPrice, it.TaxRate)
		opt.NetTotal = opt.NetTotal.Add(it.Subtotal)
		opt.TaxTotal = opt.TaxTotal.Add(it.TaxAmount)
	}
	opt.GrandTotal = opt.NetTotal.Add(opt.TaxTotal)
}

// OfferFilter criterios de búsqueda de ofertas.
type OfferFilter struct {
	CompanyID  string
	CustomerID string
	Status     string
	Limit      int
	Offset     int
}
