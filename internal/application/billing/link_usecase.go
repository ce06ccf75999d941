package billing

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/application/service"
	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
)

// tokenBytes entropía del token público (256 bits).
const tokenBytes = 32

// PublicLinkPath prefijo de la ruta pública que resuelve los enlaces.
const PublicLinkPath = "/api/public/links/"

// LinkConfig parámetros de los enlaces públicos.
type LinkConfig struct {
	PublicBaseURL string
	DefaultTTL    time.Duration // 0 = sin caducidad por defecto
}

// LinkUseCase enlaces con token para compartir ofertas, facturas y órdenes.
type LinkUseCase struct {
	repo        repository.LinkRepository
	offerRepo   repository.OfferRepository
	invoiceRepo repository.InvoiceRepository
	orderRepo   repository.ServiceOrderRepository
	cfg         LinkConfig
	now         func() time.Time
}

var _ ShareURLResolver = (*LinkUseCase)(nil)

// NewLinkUseCase construye el caso de uso.
func NewLinkUseCase(repo repository.LinkRepository, offerRepo repository.OfferRepository, invoiceRepo repository.InvoiceRepository, orderRepo repository.ServiceOrderRepository, cfg LinkConfig) *LinkUseCase {
	return &LinkUseCase{repo: repo, offerRepo: offerRepo, invoiceRepo: invoiceRepo, orderRepo: orderRepo, cfg: cfg, now: time.Now}
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generar token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// URL pública de un token.
func (uc *LinkUseCase) URL(token string) string {
	return uc.cfg.PublicBaseURL + PublicLinkPath + token
}

// resourceCompany devuelve la empresa dueña del recurso, o "" si no existe.
func (uc *LinkUseCase) resourceCompany(ctx context.Context, resourceType, id string) (string, error) {
	switch resourceType {
	case entity.LinkOffer:
		o, err := uc.offerRepo.GetByID(ctx, id)
		if err != nil || o == nil {
			return "", err
		}
		return o.CompanyID, nil
	case entity.LinkInvoice:
		inv, err := uc.invoiceRepo.GetByID(ctx, id)
		if err != nil || inv == nil {
			return "", err
		}
		return inv.CompanyID, nil
	case entity.LinkServiceOrder:
		o, err := uc.orderRepo.GetByID(ctx, id)
		if err != nil || o == nil {
			return "", err
		}
		return o.CompanyID, nil
	}
	return "", nil
}

// Create genera un enlace para un documento de la empresa.
func (uc *LinkUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateLinkRequest) (*dto.LinkResponse, error) {
	if !entity.ValidLinkResource(in.ResourceType) || in.MaxViews < 0 {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	if in.ExpiresAt != nil && !in.ExpiresAt.After(now) {
		return nil, errors.Join(domain.ErrInvalidInput, errors.New("la caducidad debe ser futura"))
	}
	owner, err := uc.resourceCompany(ctx, in.ResourceType, in.ResourceID)
	if err != nil {
		return nil, err
	}
	if owner != companyID {
		return nil, domain.ErrNotFound
	}
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	l := &entity.DynamicLink{
		ID: uuid.New().String(), CompanyID: companyID, Token: token,
		ResourceType: in.ResourceType, ResourceID: in.ResourceID,
		ExpiresAt: in.ExpiresAt, MaxViews: in.MaxViews, CreatedBy: userID, CreatedAt: now,
	}
	if l.ExpiresAt == nil && uc.cfg.DefaultTTL > 0 {
		exp := now.Add(uc.cfg.DefaultTTL)
		l.ExpiresAt = &exp
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash de contraseña: %w", err)
		}
		l.PasswordHash = string(hash)
	}
	if err := uc.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	return uc.toResponse(l), nil
}

// List enlaces de la empresa; con resourceType y resourceID, solo los de ese documento.
func (uc *LinkUseCase) List(ctx context.Context, companyID, resourceType, resourceID string, page dto.PageRequest) ([]dto.LinkResponse, error) {
	var (
		list []*entity.DynamicLink
		err  error
	)
	if resourceType != "" && resourceID != "" {
		list, err = uc.repo.ListByResource(ctx, companyID, resourceType, resourceID)
	} else {
		page.DefaultPage()
		list, err = uc.repo.ListByCompany(ctx, companyID, page.Limit, page.Offset)
	}
	if err != nil {
		return nil, err
	}
	out := make([]dto.LinkResponse, 0, len(list))
	for _, l := range list {
		out = append(out, *uc.toResponse(l))
	}
	return out, nil
}

// Revoke invalida un enlace. Revocar dos veces no es error.
func (uc *LinkUseCase) Revoke(ctx context.Context, companyID, id string) error {
	l, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if l == nil || l.CompanyID != companyID {
		return domain.ErrNotFound
	}
	return uc.repo.Revoke(ctx, id)
}

// Resolve valida el enlace (revocado, caducado, agotado, contraseña), consume una visita
// y devuelve el documento. El consumo es atómico: dos visitas concurrentes no superan max_views.
func (uc *LinkUseCase) Resolve(ctx context.Context, token, password string) (*dto.ResolvedLinkResponse, error) {
	l, err := uc.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.ErrNotFound
	}
	if err := l.CheckUsable(uc.now()); err != nil {
		return nil, err
	}
	if l.Protected() {
		if password == "" || bcrypt.CompareHashAndPassword([]byte(l.PasswordHash), []byte(password)) != nil {
			return nil, domain.ErrLinkPassword
		}
	}
	ok, err := uc.repo.IncrementViews(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrLinkExhausted
	}

	out := &dto.ResolvedLinkResponse{ResourceType: l.ResourceType}
	switch l.ResourceType {
	case entity.LinkOffer:
		o, err := uc.offerRepo.GetByID(ctx, l.ResourceID)
		if err != nil {
			return nil, err
		}
		if o == nil {
			return nil, domain.ErrNotFound
		}
		out.Offer = ToOfferResponse(o)
	case entity.LinkInvoice:
		inv, err := uc.invoiceRepo.GetByID(ctx, l.ResourceID)
		if err != nil {
			return nil, err
		}
		if inv == nil {
			return nil, domain.ErrNotFound
		}
		details, err := uc.invoiceRepo.GetDetailsByInvoiceID(ctx, inv.ID)
		if err != nil {
			return nil, err
		}
		out.Invoice = ToInvoiceResponse(inv, details)
	case entity.LinkServiceOrder:
		o, err := uc.orderRepo.GetByID(ctx, l.ResourceID)
		if err != nil {
			return nil, err
		}
		if o == nil {
			return nil, domain.ErrNotFound
		}
		out.ServiceOrder = service.ToOrderResponse(o)
	}
	return out, nil
}

// ShareURL URL del primer enlace utilizable y sin contraseña del documento, o "".
func (uc *LinkUseCase) ShareURL(ctx context.Context, companyID, resourceType, resourceID string) string {
	list, err := uc.repo.ListByResource(ctx, companyID, resourceType, resourceID)
	if err != nil {
		return ""
	}
	now := uc.now()
	for _, l := range list {
		if !l.Protected() && l.CheckUsable(now) == nil {
			return uc.URL(l.Token)
		}
	}
	return ""
}

func (uc *LinkUseCase) toResponse(l *entity.DynamicLink) *dto.LinkResponse {
	return &dto.LinkResponse{
		ID: l.ID, Token: l.Token, URL: uc.URL(l.Token), ResourceType: l.ResourceType, ResourceID: l.ResourceID,
		Protected: l.Protected(), ExpiresAt: l.ExpiresAt, MaxViews: l.MaxViews, Views: l.Views,
		RevokedAt: l.RevokedAt, CreatedAt: l.CreatedAt,
	}
}
