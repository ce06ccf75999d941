// Package crm casos de uso de clientes y equipos instalados.
package crm

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/application/ports"
	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
	"github.com/jhoicas/climatiza-api/pkg/logger"
)

// CustomerUseCase alta, consulta y mantenimiento de clientes.
type CustomerUseCase struct {
	repo     repository.CustomerRepository
	geocoder ports.Geocoder // opcional
	log      *logger.Logger
}

// NewCustomerUseCase construye el caso de uso. geocoder puede ser nil.
func NewCustomerUseCase(repo repository.CustomerRepository, geocoder ports.Geocoder, log *logger.Logger) *CustomerUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &CustomerUseCase{repo: repo, geocoder: geocoder, log: log.Component("crm")}
}

// validateCustomer normaliza y valida la entrada. Mensaje legible para la importación por filas.
func validateCustomer(in *dto.CreateCustomerRequest) error {
	in.Name = strings.TrimSpace(in.Name)
	in.TaxID = strings.ToUpper(strings.TrimSpace(in.TaxID))
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" {
		return errors.New("el nombre es obligatorio")
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			return errors.New("email inválido")
		}
	}
	if in.Type == "" {
		in.Type = entity.CustomerResidential
	}
	if in.Type != entity.CustomerResidential && in.Type != entity.CustomerCommercial {
		return errors.New("tipo de cliente inválido")
	}
	return nil
}

// Create crea el cliente. El CIF/NIF, si viene, es único por empresa.
func (uc *CustomerUseCase) Create(ctx context.Context, companyID string, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if err := validateCustomer(&in); err != nil {
		return nil, errors.Join(domain.ErrInvalidInput, err)
	}
	if in.TaxID != "" {
		existing, err := uc.repo.GetByCompanyAndTaxID(ctx, companyID, in.TaxID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, domain.ErrDuplicate
		}
	}
	now := time.Now()
	c := &entity.Customer{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		Name:       in.Name,
		TaxID:      in.TaxID,
		Email:      in.Email,
		Phone:      in.Phone,
		Type:       in.Type,
		Address:    in.Address,
		City:       in.City,
		PostalCode: in.PostalCode,
		Notes:      in.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	uc.geocode(ctx, c)
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return ToCustomerResponse(c), nil
}

// geocode rellena lat/lng si hay dirección. Los fallos solo se registran.
func (uc *CustomerUseCase) geocode(ctx context.Context, c *entity.Customer) {
	if uc.geocoder == nil || strings.TrimSpace(c.Address) == "" {
		return
	}
	res, err := uc.geocoder.Geocode(ctx, c.FullAddress())
	if err != nil {
		uc.log.Warn().Err(err).Str("customer_id", c.ID).Msg("geocodificación fallida")
		return
	}
	if res == nil {
		uc.log.Debug().Str("customer_id", c.ID).Msg("dirección sin resultados de geocodificación")
		return
	}
	lat, lng := res.Lat, res.Lng
	c.Latitude, c.Longitude = &lat, &lng
}

func (uc *CustomerUseCase) load(ctx context.Context, companyID, id string) (*entity.Customer, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || c.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// GetByID obtiene un cliente de la empresa.
func (uc *CustomerUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.CustomerResponse, error) {
	c, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return ToCustomerResponse(c), nil
}

// Update aplica los campos presentes; si cambia la dirección se vuelve a geocodificar.
func (uc *CustomerUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	c, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	oldAddress := c.FullAddress()

	next := dto.CreateCustomerRequest{
		Name: c.Name, TaxID: c.TaxID, Email: c.Email, Phone: c.Phone, Type: c.Type,
		Address: c.Address, City: c.City, PostalCode: c.PostalCode, Notes: c.Notes,
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&next.Name, in.Name)
	set(&next.TaxID, in.TaxID)
	set(&next.Email, in.Email)
	set(&next.Phone, in.Phone)
	set(&next.Type, in.Type)
	set(&next.Address, in.Address)
	set(&next.City, in.City)
	set(&next.PostalCode, in.PostalCode)
	set(&next.Notes, in.Notes)
	if err := validateCustomer(&next); err != nil {
		return nil, errors.Join(domain.ErrInvalidInput, err)
	}
	if next.TaxID != "" && next.TaxID != c.TaxID {
		other, err := uc.repo.GetByCompanyAndTaxID(ctx, companyID, next.TaxID)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != c.ID {
			return nil, domain.ErrDuplicate
		}
	}

	c.Name, c.TaxID, c.Email, c.Phone, c.Type = next.Name, next.TaxID, next.Email, next.Phone, next.Type
	c.Address, c.City, c.PostalCode, c.Notes = next.Address, next.City, next.PostalCode, next.Notes
	if c.FullAddress() != oldAddress {
		c.Latitude, c.Longitude = nil, nil
		uc.geocode(ctx, c)
	}
	c.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return ToCustomerResponse(c), nil
}

// Delete elimina el cliente. Sus equipos se borran en cascada.
func (uc *CustomerUseCase) Delete(ctx context.Context, companyID, id string) error {
	if _, err := uc.load(ctx, companyID, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

// List busca clientes con filtro y devuelve el total.
func (uc *CustomerUseCase) List(ctx context.Context, companyID string, f entity.CustomerFilter) (*dto.CustomerListResponse, error) {
	page := dto.PageRequest{Limit: f.Limit, Offset: f.Offset}
	page.DefaultPage()
	f.CompanyID, f.Limit, f.Offset = companyID, page.Limit, page.Offset
	list, total, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *ToCustomerResponse(c))
	}
	return &dto.CustomerListResponse{Items: items, Page: dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Total: total}}, nil
}

// ToCustomerResponse convierte la entidad en DTO.
func ToCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:         c.ID,
		CompanyID:  c.CompanyID,
		Name:       c.Name,
		TaxID:      c.TaxID,
		Email:      c.Email,
		Phone:      c.Phone,
		Type:       c.Type,
		Address:    c.Address,
		City:       c.City,
		PostalCode: c.PostalCode,
		Latitude:   c.Latitude,
		Longitude:  c.Longitude,
		Notes:      c.Notes,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}
