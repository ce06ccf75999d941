package entity

import "time"

// Tipos de evento de calendario.
const (
	EventServiceOrder = "service_order"
	EventMeeting      = "meeting"
	EventAbsence      = "absence"
	EventExternal     = "external"
)

// Origen del evento.
const (
	EventSourceLocal    = "local"
	EventSourceExternal = "external"
)

// CalendarEvent evento de agenda (propio o federado desde un calendario externo).
type CalendarEvent struct {
	ID             string
	CompanyID      string
	Title          string
	Description    string
	Start          time.Time
	End            time.Time
	AllDay         bool
	Kind           string
	TechnicianID   string
	ServiceOrderID string
	Source         string
	ExternalID     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
