package repository

import (
	"context"
	"time"

	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

// VehicleRepository puerto de persistencia para la flota.
type VehicleRepository interface {
	Create(ctx context.Context, v *entity.Vehicle) error
	GetByID(ctx context.Context, id string) (*entity.Vehicle, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.Vehicle, error)
	Update(ctx context.Context, v *entity.Vehicle) error
	UpdatePosition(ctx context.Context, id string, lat, lng float64, at time.Time) error
}

// CalendarRepository puerto de persistencia para eventos de agenda.
type CalendarRepository interface {
	Create(ctx context.Context, ev *entity.CalendarEvent) error
	GetByID(ctx context.Context, id string) (*entity.CalendarEvent, error)
	Delete(ctx context.Context, id string) error
	// ListRange eventos que intersectan [from, to).
	ListRange(ctx context.Context, companyID string, from, to time.Time, technicianID string) ([]*entity.CalendarEvent, error)
	// UpsertExternal inserta o actualiza por (company_id, external_id).
	UpsertExternal(ctx context.Context, ev *entity.CalendarEvent) error
}
