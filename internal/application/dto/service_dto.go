package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateServiceOrderRequest body de POST /api/service-orders.
type CreateServiceOrderRequest struct {
	CustomerID     string     `json:"customer_id" validate:"required,uuid"`
	DeviceID       string     `json:"device_id,omitempty"`
	Type           string     `json:"type" validate:"required"`
	Priority       string     `json:"priority"`
	Title          string     `json:"title" validate:"required"`
	Description    string     `json:"description"`
	TechnicianID   string     `json:"technician_id,omitempty"`
	VehicleID      string     `json:"vehicle_id,omitempty"`
	ScheduledStart *time.Time `json:"scheduled_start,omitempty"`
	ScheduledEnd   *time.Time `json:"scheduled_end,omitempty"`
	Notes          string     `json:"notes"`
}

// UpdateServiceOrderRequest campos editables de una orden abierta.
type UpdateServiceOrderRequest struct {
	Priority    *string          `json:"priority"`
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	VehicleID   *string          `json:"vehicle_id"`
	LaborHours  *decimal.Decimal `json:"labor_hours"`
	Notes       *string          `json:"notes"`
}

// ChangeStatusRequest body de PATCH /api/service-orders/{id}/status.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ScheduleRequest asignación de técnico y franja.
type ScheduleRequest struct {
	TechnicianID string    `json:"technician_id" validate:"required,uuid"`
	VehicleID    string    `json:"vehicle_id,omitempty"`
	Start        time.Time `json:"start" validate:"required"`
	End          time.Time `json:"end" validate:"required"`
}

// AddPartRequest consumo de un repuesto en la orden.
type AddPartRequest struct {
	ProductID   string           `json:"product_id" validate:"required,uuid"`
	WarehouseID string           `json:"warehouse_id" validate:"required,uuid"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
}

// ServiceOrderPartResponse línea de repuesto.
type ServiceOrderPartResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ServiceOrderResponse salida de una orden de servicio.
type ServiceOrderResponse struct {
	ID             string                     `json:"id"`
	Number         string                     `json:"number"`
	CustomerID     string                     `json:"customer_id"`
	DeviceID       string                     `json:"device_id,omitempty"`
	Type           string                     `json:"type"`
	Status         string                     `json:"status"`
	Priority       string                     `json:"priority"`
	Title          string                     `json:"title"`
	Description    string                     `json:"description"`
	TechnicianID   string                     `json:"technician_id,omitempty"`
	VehicleID      string                     `json:"vehicle_id,omitempty"`
	ScheduledStart *time.Time                 `json:"scheduled_start,omitempty"`
	ScheduledEnd   *time.Time                 `json:"scheduled_end,omitempty"`
	CompletedAt    *time.Time                 `json:"completed_at,omitempty"`
	LaborHours     decimal.Decimal            `json:"labor_hours"`
	Notes          string                     `json:"notes"`
	Parts          []ServiceOrderPartResponse `json:"parts,omitempty"`
	CreatedAt      time.Time                  `json:"created_at"`
	UpdatedAt      time.Time                  `json:"updated_at"`
}

// ServiceOrderListResponse lista paginada de órdenes.
type ServiceOrderListResponse struct {
	Items []ServiceOrderResponse `json:"items"`
	Page  PageResponse           `json:"page"`
}

// CreateTicketRequest body de POST /api/tickets. Category y Priority vacíos se sugieren.
type CreateTicketRequest struct {
	Title          string `json:"title" validate:"required"`
	Description    string `json:"description"`
	Priority       string `json:"priority"`
	Category       string `json:"category"`
	CustomerID     string `json:"customer_id,omitempty"`
	ServiceOrderID string `json:"service_order_id,omitempty"`
	AssigneeID     string `json:"assignee_id,omitempty"`
}

// UpdateTicketRequest campos editables de un ticket.
type UpdateTicketRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Category    *string `json:"category"`
	AssigneeID  *string `json:"assignee_id"`
}

// MoveTicketRequest movimiento en el tablero.
type MoveTicketRequest struct {
	Status   string `json:"status" validate:"required"`
	Position int    `json:"position"`
}

// TicketResponse salida de un ticket.
type TicketResponse struct {
	ID             string    `json:"id"`
	CustomerID     string    `json:"customer_id,omitempty"`
	ServiceOrderID string    `json:"service_order_id,omitempty"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
	Priority       string    `json:"priority"`
	Category       string    `json:"category"`
	AssigneeID     string    `json:"assignee_id,omitempty"`
	Position       int       `json:"position"`
	Suggestions    []string  `json:"suggestions,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BoardColumn columna del kanban con sus tickets ordenados por posición.
type BoardColumn struct {
	Status  string           `json:"status"`
	Tickets []TicketResponse `json:"tickets"`
}

// BoardResponse tablero completo.
type BoardResponse struct {
	Columns []BoardColumn `json:"columns"`
}
