package entity

import (
	"time"

	"github.com/jhoicas/climatiza-api/internal/domain"
)

// Tipos de recurso compartible por enlace.
const (
	LinkOffer        = "offer"
	LinkInvoice      = "invoice"
	LinkServiceOrder = "service_order"
)

// ValidLinkResource informa si t es un recurso compartible.
func ValidLinkResource(t string) bool {
	return t == LinkOffer || t == LinkInvoice || t == LinkServiceOrder
}

// DynamicLink enlace público con token para compartir un documento con el cliente.
type DynamicLink struct {
	ID           string
	CompanyID    string
	Token        string
	ResourceType string
	ResourceID   string
	PasswordHash string // bcrypt; vacío = sin contraseña
	ExpiresAt    *time.Time
	MaxViews     int // 0 = ilimitado
	Views        int
	RevokedAt    *time.Time
	CreatedBy    string
	CreatedAt    time.Time
}

// Protected informa si el enlace exige contraseña.
func (l *DynamicLink) Protected() bool {
	return l.PasswordHash != ""
}

// CheckUsable valida revocado, caducado y agotado (en ese orden).
// La contraseña se valida aparte.
func (l *DynamicLink) CheckUsable(at time.Time) error {
	if l.RevokedAt != nil {
		return domain.ErrLinkRevoked
	}
	if l.ExpiresAt != nil && !at.Before(*l.ExpiresAt) {
		return domain.ErrLinkExpired
	}
	if l.MaxViews > 0 && l.Views >= l.MaxViews {
		return domain.ErrLinkExhausted
	}
	return nil
}
