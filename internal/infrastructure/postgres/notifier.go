package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/climatiza-api/internal/application/ports"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

// EventsChannel canal NOTIFY compartido por todas las instancias de la API.
const EventsChannel = "crm_events"

// maxNotifyPayload límite práctico del payload de NOTIFY (8000 bytes en PostgreSQL).
const maxNotifyPayload = 7900

var _ ports.EventPublisher = (*Notifier)(nil)

// Notifier publica eventos con pg_notify para que cualquier instancia los reparta.
type Notifier struct {
	q Querier
}

// NewNotifier construye el publicador.
func NewNotifier(q Querier) *Notifier {
	return &Notifier{q: q}
}

// Publish serializa el evento y lo envía al canal. Si no cabe, se envía sin payload:
// el cliente puede recargar la entidad por su id.
func (n *Notifier) Publish(ctx context.Context, ev entity.Event) error {
	body, err := encodeNotification(ev)
	if err != nil {
		return err
	}
	if _, err := n.q.Exec(ctx, `SELECT pg_notify($1, $2)`, EventsChannel, string(body)); err != nil {
		return fmt.Errorf("pg_notify %s: %w", ev.Type, err)
	}
	return nil
}

func encodeNotification(ev entity.Event) ([]byte, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	if len(body) <= maxNotifyPayload {
		return body, nil
	}
	ev.Payload = nil
	return json.Marshal(ev)
}
