// Package billing ofertas, facturas y enlaces públicos para compartirlas.
package billing

import (
	"context"

	"github.com/jhoicas/climatiza-api/internal/application/inventory"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
)

// TxRunner transacciones de facturación y de ofertas.
type TxRunner interface {
	RunBilling(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error) error
	RunOffer(ctx context.Context, fn func(
		offerRepo repository.OfferRepository,
		orderRepo repository.ServiceOrderRepository,
	) error) error
}

// StockDeducter salida de inventario con los repositorios de la transacción del llamador.
// Si devuelve error (p.ej. ErrInsufficientStock) la transacción completa se revierte.
type StockDeducter interface {
	RegisterOUTInTx(ctx context.Context, movRepo repository.InventoryMovementRepository, stockRepo repository.StockRepository, line inventory.OutLine) error
}

// InvoicePDFData todo lo necesario para pintar una factura.
type InvoicePDFData struct {
	Invoice  *entity.Invoice
	Company  *entity.Company
	Customer *entity.Customer
	Details  []*entity.InvoiceDetail
	ShareURL string // vacío = sin QR
}

// OfferPDFData todo lo necesario para pintar una oferta con sus opciones.
type OfferPDFData struct {
	Offer    *entity.Offer
	Company  *entity.Company
	Customer *entity.Customer
	ShareURL string
}

// PDFGenerator puerto de salida para la representación PDF de documentos.
type PDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, data InvoicePDFData) ([]byte, error)
	GenerateOfferPDF(ctx context.Context, data OfferPDFData) ([]byte, error)
}

// ShareURLResolver devuelve la URL pública vigente de un documento, o "" si no la hay.
type ShareURLResolver interface {
	ShareURL(ctx context.Context, companyID, resourceType, resourceID string) string
}
