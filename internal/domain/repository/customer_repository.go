package repository

import (
	"context"
	"time"

	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

// CustomerRepository puerto de persistencia para Customer.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	GetByCompanyAndTaxID(ctx context.Context, companyID, taxID string) (*entity.Customer, error)
	// List devuelve la página pedida y el total de coincidencias del filtro.
	List(ctx context.Context, f entity.CustomerFilter) ([]*entity.Customer, int, error)
	Update(ctx context.Context, customer *entity.Customer) error
	Delete(ctx context.Context, id string) error
}

// DeviceRepository puerto de persistencia para equipos instalados.
type DeviceRepository interface {
	Create(ctx context.Context, device *entity.Device) error
	GetByID(ctx context.Context, id string) (*entity.Device, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*entity.Device, error)
	// ListDueBefore equipos de la empresa cuyo próximo servicio vence antes de la fecha.
	ListDueBefore(ctx context.Context, companyID string, before time.Time, limit int) ([]*entity.Device, error)
	Update(ctx context.Context, device *entity.Device) error
	Delete(ctx context.Context, id string) error
}
