package entity

import "time"

// Columnas del tablero kanban de tickets.
const (
	TicketOpen       = "open"
	TicketInProgress = "in_progress"
	TicketWaiting    = "waiting"
	TicketResolved   = "resolved"
	TicketClosed     = "closed"
)

// TicketColumns orden de las columnas del tablero.
var TicketColumns = []string{TicketOpen, TicketInProgress, TicketWaiting, TicketResolved, TicketClosed}

// ValidTicketStatus informa si s es una columna del tablero.
func ValidTicketStatus(s string) bool {
	for _, c := range TicketColumns {
		if c == s {
			return true
		}
	}
	return false
}

// Ticket representa una incidencia o solicitud de soporte.
type Ticket struct {
	ID             string
	CompanyID      string
	CustomerID     string // opcional
	ServiceOrderID string // opcional
	Title          string
	Description    string
	Status         string
	Priority       string
	Category       string
	AssigneeID     string
	Position       int // orden dentro de la columna (0 = arriba)
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TicketFilter criterios de búsqueda de tickets.
type TicketFilter struct {
	CompanyID  string
	Status     string
	AssigneeID string
	CustomerID string
	Limit      int
	Offset     int
}
