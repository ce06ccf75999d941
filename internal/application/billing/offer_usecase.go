package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/application/ports"
	"github.com/jhoicas/climatiza-api/internal/application/service"
	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
	"github.com/jhoicas/climatiza-api/pkg/logger"
)

// DefaultOfferValidity validez aplicada cuando la oferta no trae fecha límite.
const DefaultOfferValidity = 30 * 24 * time.Hour

// OfferNumber formatea el número visible de una oferta.
func OfferNumber(n int64) string { return fmt.Sprintf("OF-%06d", n) }

// OfferUseCase presupuestos con varias opciones y su ciclo de vida.
type OfferUseCase struct {
	tx           TxRunner
	offerRepo    repository.OfferRepository
	customerRepo repository.CustomerRepository
	companyRepo  repository.CompanyRepository
	productRepo  repository.ProductRepository
	pdf          PDFGenerator
	links        ShareURLResolver
	events       ports.EventPublisher
	log          *logger.Logger
	now          func() time.Time
}

// OfferDeps dependencias del caso de uso de ofertas.
type OfferDeps struct {
	Tx        TxRunner
	Offers    repository.OfferRepository
	Customers repository.CustomerRepository
	Companies repository.CompanyRepository
	Products  repository.ProductRepository
	PDF       PDFGenerator
	Links     ShareURLResolver     // opcional
	Events    ports.EventPublisher // nil = NopPublisher
	Log       *logger.Logger
}

// NewOfferUseCase construye el caso de uso.
func NewOfferUseCase(d OfferDeps) *OfferUseCase {
	if d.Events == nil {
		d.Events = ports.NopPublisher{}
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return &OfferUseCase{
		tx: d.Tx, offerRepo: d.Offers, customerRepo: d.Customers, companyRepo: d.Companies,
		productRepo: d.Products, pdf: d.PDF, links: d.Links, events: d.Events,
		log: d.Log.Component("offers"), now: time.Now,
	}
}

func (uc *OfferUseCase) publish(ctx context.Context, o *entity.Offer) {
	ev := entity.NewEvent(entity.EventOfferStatus, o.CompanyID, "offer", o.ID, map[string]string{"number": o.Number, "status": o.Status})
	if err := uc.events.Publish(ctx, ev); err != nil {
		uc.log.Warn().Err(err).Str("offer_id", o.ID).Msg("no se pudo publicar el evento")
	}
}

// Create guarda cabecera, opciones y líneas en una sola transacción. Los totales se calculan aquí.
func (uc *OfferUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateOfferRequest) (*dto.OfferResponse, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || len(in.Options) == 0 {
		return nil, errors.Join(domain.ErrInvalidInput, errors.New("la oferta necesita título y al menos una opción"))
	}
	c, err := uc.customerRepo.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	now := uc.now()
	if in.ValidUntil != nil && !in.ValidUntil.After(now) {
		return nil, errors.Join(domain.ErrInvalidInput, errors.New("la validez debe ser futura"))
	}

	offer := &entity.Offer{
		ID: uuid.New().String(), CompanyID: companyID, CustomerID: c.ID, Title: in.Title,
		Status: entity.OfferDraft, ValidUntil: in.ValidUntil, Notes: in.Notes,
		CreatedBy: userID, CreatedAt: now, UpdatedAt: now,
	}
	if offer.ValidUntil == nil {
		v := now.Add(DefaultOfferValidity)
		offer.ValidUntil = &v
	}
	for pos, optIn := range in.Options {
		name := strings.TrimSpace(optIn.Name)
		if name == "" {
			return nil, errors.Join(domain.ErrInvalidInput, fmt.Errorf("opción %d sin nombre", pos+1))
		}
		lines, err := resolveLines(ctx, uc.productRepo, companyID, optIn.Items)
		if err != nil {
			return nil, err
		}
		opt := &entity.OfferOption{ID: uuid.New().String(), OfferID: offer.ID, Name: name, Position: pos}
		for i, l := range lines {
			opt.Items = append(opt.Items, &entity.OfferItem{
				ID: uuid.New().String(), OptionID: opt.ID, ProductID: l.productID(), Description: l.Description,
				Quantity: l.Quantity, UnitPrice: l.UnitPrice, TaxRate: l.TaxRate, Position: i,
			})
		}
		opt.Recalculate()
		offer.Options = append(offer.Options, opt)
	}

	err = uc.tx.RunOffer(ctx, func(offerRepo repository.OfferRepository, _ repository.ServiceOrderRepository) error {
		n, err := offerRepo.NextNumber(ctx, companyID)
		if err != nil {
			return err
		}
		offer.Number = OfferNumber(n)
		if err := offerRepo.Create(ctx, offer); err != nil {
			return err
		}
		for _, opt := range offer.Options {
			if err := offerRepo.CreateOption(ctx, opt); err != nil {
				return err
			}
			for _, it := range opt.Items {
				if err := offerRepo.CreateItem(ctx, it); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToOfferResponse(offer), nil
}

func (uc *OfferUseCase) load(ctx context.Context, repo repository.OfferRepository, companyID, id string) (*entity.Offer, error) {
	o, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil || o.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// Get devuelve la oferta completa.
func (uc *OfferUseCase) Get(ctx context.Context, companyID, id string) (*dto.OfferResponse, error) {
	o, err := uc.load(ctx, uc.offerRepo, companyID, id)
	if err != nil {
		return nil, err
	}
	return ToOfferResponse(o), nil
}

// List ofertas sin opciones.
func (uc *OfferUseCase) List(ctx context.Context, companyID string, f entity.OfferFilter) (*dto.OfferListResponse, error) {
	page := dto.PageRequest{Limit: f.Limit, Offset: f.Offset}
	page.DefaultPage()
	f.CompanyID, f.Limit, f.Offset = companyID, page.Limit, page.Offset
	list, total, err := uc.offerRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := &dto.OfferListResponse{
		Items: make([]dto.OfferResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, o := range list {
		r := ToOfferResponse(o)
		r.Options = nil
		out.Items = append(out.Items, *r)
	}
	return out, nil
}

// decide aplica fn sobre la oferta bloqueada (FOR UPDATE) y persiste el cambio en la misma
// transacción, de modo que dos decisiones concurrentes se serializan. Si fn devuelve persist=true
// junto a un error, el cambio se guarda y el error se devuelve tras el commit.
func (uc *OfferUseCase) decide(ctx context.Context, companyID, id string, fn func(o *entity.Offer, now time.Time) (bool, error)) (*dto.OfferResponse, error) {
	var (
		offer  *entity.Offer
		result error
	)
	err := uc.tx.RunOffer(ctx, func(offerRepo repository.OfferRepository, _ repository.ServiceOrderRepository) error {
		o, err := uc.lock(ctx, offerRepo, companyID, id)
		if err != nil {
			return err
		}
		now := uc.now()
		persist, ferr := fn(o, now)
		if !persist {
			return ferr
		}
		o.UpdatedAt = now
		if err := offerRepo.UpdateStatus(ctx, o); err != nil {
			return err
		}
		offer, result = o, ferr
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, offer)
	if result != nil {
		return nil, result
	}
	return ToOfferResponse(offer), nil
}

func (uc *OfferUseCase) lock(ctx context.Context, repo repository.OfferRepository, companyID, id string) (*entity.Offer, error) {
	o, err := repo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil || o.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// Send marca la oferta como enviada al cliente.
func (uc *OfferUseCase) Send(ctx context.Context, companyID, id string) (*dto.OfferResponse, error) {
	return uc.decide(ctx, companyID, id, func(o *entity.Offer, now time.Time) (bool, error) {
		if o.Status != entity.OfferDraft {
			return false, errors.Join(domain.ErrInvalidTransition, fmt.Errorf("no se puede enviar una oferta %s", o.Status))
		}
		o.Status, o.SentAt = entity.OfferSent, &now
		return true, nil
	})
}

// Accept registra la opción elegida. Una oferta caducada pasa a "expired" y se rechaza la aceptación.
func (uc *OfferUseCase) Accept(ctx context.Context, companyID, id, optionID string) (*dto.OfferResponse, error) {
	return uc.decide(ctx, companyID, id, func(o *entity.Offer, now time.Time) (bool, error) {
		if o.Status != entity.OfferSent {
			return false, errors.Join(domain.ErrInvalidTransition, fmt.Errorf("no se puede aceptar una oferta %s", o.Status))
		}
		if o.Expired(now) {
			o.Status, o.DecidedAt = entity.OfferExpired, &now
			return true, errors.Join(domain.ErrConflict, errors.New("la oferta ha caducado"))
		}
		if o.Option(optionID) == nil {
			return false, errors.Join(domain.ErrInvalidInput, errors.New("la opción no pertenece a la oferta"))
		}
		o.Status, o.SelectedOptionID, o.DecidedAt = entity.OfferAccepted, optionID, &now
		return true, nil
	})
}

// Reject registra el rechazo del cliente.
func (uc *OfferUseCase) Reject(ctx context.Context, companyID, id string) (*dto.OfferResponse, error) {
	return uc.decide(ctx, companyID, id, func(o *entity.Offer, now time.Time) (bool, error) {
		if o.Status != entity.OfferSent && o.Status != entity.OfferDraft {
			return false, errors.Join(domain.ErrInvalidTransition, fmt.Errorf("no se puede rechazar una oferta %s", o.Status))
		}
		o.Status, o.DecidedAt = entity.OfferRejected, &now
		return true, nil
	})
}

// Convert genera la orden de instalación de una oferta aceptada. Solo una vez por oferta:
// la cabecera queda bloqueada hasta el commit, así una segunda llamada concurrente ve service_order_id.
func (uc *OfferUseCase) Convert(ctx context.Context, companyID, userID, id string) (*dto.ServiceOrderResponse, error) {
	var order *entity.ServiceOrder
	err := uc.tx.RunOffer(ctx, func(offerRepo repository.OfferRepository, orderRepo repository.ServiceOrderRepository) error {
		o, err := uc.lock(ctx, offerRepo, companyID, id)
		if err != nil {
			return err
		}
		if o.Status != entity.OfferAccepted {
			return errors.Join(domain.ErrInvalidTransition, errors.New("solo se convierten ofertas aceptadas"))
		}
		if o.ServiceOrderID != "" {
			return errors.Join(domain.ErrConflict, errors.New("la oferta ya tiene orden de instalación"))
		}
		opt := o.Option(o.SelectedOptionID)
		now := uc.now()
		desc := o.Title
		if opt != nil {
			desc = opt.Name
			for _, it := range opt.Items {
				desc += "\n- " + it.Quantity.String() + " × " + it.Description
			}
		}
		n, err := orderRepo.NextNumber(ctx, companyID)
		if err != nil {
			return err
		}
		order = &entity.ServiceOrder{
			ID: uuid.New().String(), CompanyID: companyID, Number: service.OrderNumber(n), CustomerID: o.CustomerID,
			Type: entity.OrderInstallation, Status: entity.OrderStatusNew, Priority: entity.PriorityNormal,
			Title: o.Title, Description: desc, Notes: "Generada desde la oferta " + o.Number,
			CreatedBy: userID, CreatedAt: now, UpdatedAt: now,
		}
		if err := orderRepo.Create(ctx, order); err != nil {
			return err
		}
		o.ServiceOrderID, o.UpdatedAt = order.ID, now
		return offerRepo.UpdateStatus(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	return service.ToOrderResponse(order), nil
}

// PDF genera el PDF de la oferta con QR al enlace público vigente, si existe.
func (uc *OfferUseCase) PDF(ctx context.Context, companyID, id string) ([]byte, string, error) {
	o, err := uc.load(ctx, uc.offerRepo, companyID, id)
	if err != nil {
		return nil, "", err
	}
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener empresa: %w", err)
	}
	customer, err := uc.customerRepo.GetByID(ctx, o.CustomerID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener cliente: %w", err)
	}
	if company == nil || customer == nil {
		return nil, "", domain.ErrNotFound
	}
	data := OfferPDFData{Offer: o, Company: company, Customer: customer}
	if uc.links != nil {
		data.ShareURL = uc.links.ShareURL(ctx, companyID, entity.LinkOffer, o.ID)
	}
	b, err := uc.pdf.GenerateOfferPDF(ctx, data)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generar oferta: %w", err)
	}
	return b, o.Number + ".pdf", nil
}

// ToOfferResponse convierte la oferta con opciones y líneas.
func ToOfferResponse(o *entity.Offer) *dto.OfferResponse {
	out := &dto.OfferResponse{
		ID: o.ID, Number: o.Number, CustomerID: o.CustomerID, Title: o.Title, Status: o.Status,
		ValidUntil: o.ValidUntil, Notes: o.Notes, SelectedOptionID: o.SelectedOptionID,
		ServiceOrderID: o.ServiceOrderID, SentAt: o.SentAt, DecidedAt: o.DecidedAt, CreatedAt: o.CreatedAt,
		Options: make([]dto.OfferOptionResponse, 0, len(o.Options)),
	}
	for _, opt := range o.Options {
		or := dto.OfferOptionResponse{
			ID: opt.ID, Name: opt.Name, NetTotal: opt.NetTotal, TaxTotal: opt.TaxTotal, GrandTotal: opt.GrandTotal,
			Items: make([]dto.OfferItemResponse, 0, len(opt.Items)),
		}
		for _, it := range opt.Items {
			or.Items = append(or.Items, dto.OfferItemResponse{
				ID: it.ID, ProductID: it.ProductID, Description: it.Description, Quantity: it.Quantity,
				UnitPrice: it.UnitPrice, TaxRate: it.TaxRate, Subtotal: it.Subtotal, TaxAmount: it.TaxAmount,
			})
		}
		out.Options = append(out.Options, or)
	}
	return out
}
