package dto

import "time"

// CreateCalendarEventRequest alta de un evento local.
type CreateCalendarEventRequest struct {
	Title        string    `json:"title" validate:"required"`
	Description  string    `json:"description"`
	Start        time.Time `json:"start" validate:"required"`
	End          time.Time `json:"end" validate:"required"`
	AllDay       bool      `json:"all_day"`
	Kind         string    `json:"kind" validate:"omitempty,oneof=meeting absence"`
	TechnicianID string    `json:"technician_id,omitempty"`
}

// CalendarEventResponse evento de agenda (propio, externo u orden programada).
type CalendarEventResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	AllDay         bool      `json:"all_day"`
	Kind           string    `json:"kind"`
	TechnicianID   string    `json:"technician_id,omitempty"`
	ServiceOrderID string    `json:"service_order_id,omitempty"`
	Source         string    `json:"source"`
	ExternalID     string    `json:"external_id,omitempty"`
}

// CalendarSyncResult resumen de la federación con el calendario externo.
type CalendarSyncResult struct {
	Fetched  int `json:"fetched"`
	Upserted int `json:"upserted"`
}
