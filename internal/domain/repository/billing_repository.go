package repository

import (
	"context"

	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

// OfferRepository puerto de persistencia para ofertas con opciones y líneas.
type OfferRepository interface {
	NextNumber(ctx context.Context, companyID string) (int64, error)
	Create(ctx context.Context, offer *entity.Offer) error
	CreateOption(ctx context.Context, option *entity.OfferOption) error
	CreateItem(ctx context.Context, item *entity.OfferItem) error
	// GetByID carga la oferta con sus opciones y líneas.
	GetByID(ctx context.Context, id string) (*entity.Offer, error)
	// GetForUpdate igual que GetByID pero bloquea la cabecera hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Offer, error)
	List(ctx context.Context, f entity.OfferFilter) ([]*entity.Offer, int, error)
	// UpdateStatus persiste estado, opción elegida, orden generada y fechas.
	UpdateStatus(ctx context.Context, offer *entity.Offer) error
}

// InvoiceRepository puerto de persistencia para Invoice y detalles.
type InvoiceRepository interface {
	NextNumber(ctx context.Context, companyID string) (int64, error)
	Create(ctx context.Context, invoice *entity.Invoice) error
	CreateDetail(ctx context.Context, detail *entity.InvoiceDetail) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetDetailsByInvoiceID(ctx context.Context, invoiceID string) ([]*entity.InvoiceDetail, error)
	List(ctx context.Context, f entity.InvoiceFilter) ([]*entity.Invoice, int, error)
	UpdateStatus(ctx context.Context, invoice *entity.Invoice) error
}

// LinkRepository puerto de persistencia para enlaces dinámicos.
type LinkRepository interface {
	Create(ctx context.Context, link *entity.DynamicLink) error
	GetByToken(ctx context.Context, token string) (*entity.DynamicLink, error)
	GetByID(ctx context.Context, id string) (*entity.DynamicLink, error)
	ListByResource(ctx context.Context, companyID, resourceType, resourceID string) ([]*entity.DynamicLink, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.DynamicLink, error)
	Revoke(ctx context.Context, id string) error
	// IncrementViews suma una visita solo si el enlace sigue utilizable (sin revocar,
	// sin caducar y por debajo de max_views). Devuelve false si no se pudo consumir.
	IncrementViews(ctx context.Context, id string) (bool, error)
}
