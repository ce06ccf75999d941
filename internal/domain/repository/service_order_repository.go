package repository

import (
	"context"
	"time"

	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

// ServiceOrderRepository puerto de persistencia para órdenes de servicio.
type ServiceOrderRepository interface {
	// NextNumber reserva el siguiente consecutivo de la empresa (usar dentro de tx).
	NextNumber(ctx context.Context, companyID string) (int64, error)
	Create(ctx context.Context, order *entity.ServiceOrder) error
	GetByID(ctx context.Context, id string) (*entity.ServiceOrder, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.ServiceOrder, error)
	List(ctx context.Context, f entity.ServiceOrderFilter) ([]*entity.ServiceOrder, int, error)
	Update(ctx context.Context, order *entity.ServiceOrder) error
	// LockTechnician serializa hasta el fin de la transacción las reservas del técnico.
	LockTechnician(ctx context.Context, technicianID string) error
	// FindOverlapping órdenes no canceladas del técnico que se solapan con [start, end),
	// excluyendo excludeID.
	FindOverlapping(ctx context.Context, technicianID string, start, end time.Time, excludeID string) ([]*entity.ServiceOrder, error)

	AddPart(ctx context.Context, part *entity.ServiceOrderPart) error
	ListParts(ctx context.Context, orderID string) ([]*entity.ServiceOrderPart, error)
}

// TicketRepository puerto de persistencia para tickets.
type TicketRepository interface {
	Create(ctx context.Context, ticket *entity.Ticket) error
	GetByID(ctx context.Context, id string) (*entity.Ticket, error)
	List(ctx context.Context, f entity.TicketFilter) ([]*entity.Ticket, error)
	Update(ctx context.Context, ticket *entity.Ticket) error
	// Move coloca el ticket en (status, position) desplazando al resto; deja las columnas numeradas 0..n-1.
	Move(ctx context.Context, id, status string, position int) error
	// NextPosition devuelve la posición al final de la columna.
	NextPosition(ctx context.Context, companyID, status string) (int, error)
}
