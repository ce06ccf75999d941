package entity

import (
	"encoding/json"
	"time"
)

// Tipos de evento en tiempo real.
const (
	EventOrderCreated  = "service_order.created"
	EventOrderStatus   = "service_order.status_changed"
	EventOrderSchedule = "service_order.scheduled"
	EventTicketCreated = "ticket.created"
	EventTicketUpdated = "ticket.updated"
	EventTicketMoved   = "ticket.moved"
	EventVehicleMoved  = "vehicle.position"
	EventOfferStatus   = "offer.status_changed"
)

// Event notificación de cambio emitida a los suscriptores de una empresa.
type Event struct {
	Type      string          `json:"type"`
	CompanyID string          `json:"company_id"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entity_id"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	At        time.Time       `json:"at"`
}

// NewEvent construye un evento serializando payload a JSON.
func NewEvent(typ, companyID, entityName, entityID string, payload any) Event {
	ev := Event{Type: typ, CompanyID: companyID, Entity: entityName, EntityID: entityID, At: time.Now().UTC()}
	if payload != nil {
		if b, err := json.Marshal(payload); err == nil {
			ev.Payload = b
		}
	}
	return ev
}
