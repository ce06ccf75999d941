package crm

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
)

// DeviceUseCase equipos instalados en clientes y su plan de mantenimiento.
type DeviceUseCase struct {
	repo         repository.DeviceRepository
	customerRepo repository.CustomerRepository
	now          func() time.Time
}

// NewDeviceUseCase construye el caso de uso.
func NewDeviceUseCase(repo repository.DeviceRepository, customerRepo repository.CustomerRepository) *DeviceUseCase {
	return &DeviceUseCase{repo: repo, customerRepo: customerRepo, now: time.Now}
}

func (uc *DeviceUseCase) checkCustomer(ctx context.Context, companyID, customerID string) error {
	c, err := uc.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return err
	}
	if c == nil || c.CompanyID != companyID {
		return domain.ErrNotFound
	}
	return nil
}

func (uc *DeviceUseCase) load(ctx context.Context, companyID, id string) (*entity.Device, error) {
	d, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil || d.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return d, nil
}

func applyDevice(d *entity.Device, in dto.DeviceRequest) error {
	if !entity.ValidDeviceKind(in.Kind) || in.RefrigerantKg.IsNegative() {
		return domain.ErrInvalidInput
	}
	d.Kind, d.Brand, d.Model, d.SerialNumber = in.Kind, in.Brand, in.Model, in.SerialNumber
	d.Refrigerant, d.RefrigerantKg = in.Refrigerant, in.RefrigerantKg
	d.InstalledAt, d.WarrantyUntil, d.LastServiceAt = in.InstalledAt, in.WarrantyUntil, in.LastServiceAt
	d.Notes = in.Notes
	d.ScheduleNextService()
	return nil
}

// Create registra un equipo del cliente y calcula su próximo mantenimiento.
func (uc *DeviceUseCase) Create(ctx context.Context, companyID, customerID string, in dto.DeviceRequest) (*dto.DeviceResponse, error) {
	if err := uc.checkCustomer(ctx, companyID, customerID); err != nil {
		return nil, err
	}
	now := uc.now()
	d := &entity.Device{ID: uuid.New().String(), CompanyID: companyID, CustomerID: customerID, CreatedAt: now, UpdatedAt: now}
	if err := applyDevice(d, in); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return uc.toResponse(d), nil
}

// GetByID obtiene un equipo de la empresa.
func (uc *DeviceUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.DeviceResponse, error) {
	d, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(d), nil
}

// Update reemplaza los datos del equipo.
func (uc *DeviceUseCase) Update(ctx context.Context, companyID, id string, in dto.DeviceRequest) (*dto.DeviceResponse, error) {
	d, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := applyDevice(d, in); err != nil {
		return nil, err
	}
	d.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return uc.toResponse(d), nil
}

// Delete elimina un equipo.
func (uc *DeviceUseCase) Delete(ctx context.Context, companyID, id string) error {
	if _, err := uc.load(ctx, companyID, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

// ListByCustomer equipos de un cliente.
func (uc *DeviceUseCase) ListByCustomer(ctx context.Context, companyID, customerID string) ([]dto.DeviceResponse, error) {
	if err := uc.checkCustomer(ctx, companyID, customerID); err != nil {
		return nil, err
	}
	list, err := uc.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return uc.toResponses(list), nil
}

// ListDue equipos con mantenimiento vencido o que vence antes de before.
func (uc *DeviceUseCase) ListDue(ctx context.Context, companyID string, before time.Time, limit int) ([]dto.DeviceResponse, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	list, err := uc.repo.ListDueBefore(ctx, companyID, before, limit)
	if err != nil {
		return nil, err
	}
	return uc.toResponses(list), nil
}

func (uc *DeviceUseCase) toResponses(list []*entity.Device) []dto.DeviceResponse {
	out := make([]dto.DeviceResponse, 0, len(list))
	for _, d := range list {
		out = append(out, *uc.toResponse(d))
	}
	return out
}

func (uc *DeviceUseCase) toResponse(d *entity.Device) *dto.DeviceResponse {
	return &dto.DeviceResponse{
		ID:            d.ID,
		CustomerID:    d.CustomerID,
		Kind:          d.Kind,
		Brand:         d.Brand,
		Model:         d.Model,
		SerialNumber:  d.SerialNumber,
		Refrigerant:   d.Refrigerant,
		RefrigerantKg: d.RefrigerantKg,
		InstalledAt:   d.InstalledAt,
		WarrantyUntil: d.WarrantyUntil,
		UnderWarranty: d.UnderWarranty(uc.now()),
		LastServiceAt: d.LastServiceAt,
		NextServiceAt: d.NextServiceAt,
		Notes:         d.Notes,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}
