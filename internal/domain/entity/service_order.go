package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de orden de servicio.
const (
	OrderInstallation = "installation"
	OrderRepair       = "repair"
	OrderInspection   = "inspection"
	OrderMaintenance  = "maintenance"
)

// Estados de la orden de servicio.
const (
	OrderStatusNew        = "new"
	OrderStatusScheduled  = "scheduled"
	OrderStatusInProgress = "in_progress"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// Prioridades compartidas por órdenes y tickets.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// ValidOrderType informa si t es un tipo de orden conocido.
func ValidOrderType(t string) bool {
	switch t {
	case OrderInstallation, OrderRepair, OrderInspection, OrderMaintenance:
		return true
	}
	return false
}

// ValidPriority informa si p es una prioridad conocida.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// orderTransitions estados destino permitidos desde cada estado.
var orderTransitions = map[string][]string{
	OrderStatusNew:        {OrderStatusScheduled, OrderStatusCancelled},
	OrderStatusScheduled:  {OrderStatusInProgress, OrderStatusNew, OrderStatusCancelled},
	OrderStatusInProgress: {OrderStatusCompleted, OrderStatusCancelled},
}

// CanTransition informa si una orden puede pasar de from a to.
func CanTransition(from, to string) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ServiceOrder representa una orden de trabajo en casa del cliente.
type ServiceOrder struct {
	ID             string
	CompanyID      string
	Number         string // SO-000001
	CustomerID     string
	DeviceID       string // opcional
	Type           string
	Status         string
	Priority       string
	Title          string
	Description    string
	TechnicianID   string // opcional
	VehicleID      string // opcional
	ScheduledStart *time.Time
	ScheduledEnd   *time.Time
	CompletedAt    *time.Time
	LaborHours     decimal.Decimal
	Notes          string
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Closed informa si la orden ya no admite cambios operativos.
func (o *ServiceOrder) Closed() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled
}

// UpdatesDeviceHistory informa si completar la orden cuenta como servicio del equipo.
func (o *ServiceOrder) UpdatesDeviceHistory() bool {
	return o.DeviceID != "" && o.Type != OrderInstallation
}

// ServiceOrderPart repuesto o material consumido en una orden.
type ServiceOrderPart struct {
	ID             string
	ServiceOrderID string
	ProductID      string
	WarehouseID    string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	CreatedAt      time.Time
}

// ServiceOrderFilter criterios de búsqueda de órdenes.
type ServiceOrderFilter struct {
	CompanyID    string
	Status       string
	TechnicianID string
	CustomerID   string
	From         *time.Time // scheduled_start >= From
	To           *time.Time // scheduled_start < To
	EndAfter     *time.Time // scheduled_end > EndAfter (órdenes aún en curso)
	Limit        int
	Offset       int
}

// Overlaps informa si los intervalos [aStart, aEnd) y [bStart, bEnd) se solapan.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
