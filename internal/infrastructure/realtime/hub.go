// Package realtime reparte eventos de cambio a los suscriptores de cada empresa.
package realtime

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/jhoicas/climatiza-api/internal/application/ports"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

var _ ports.EventPublisher = (*Hub)(nil)

// DefaultBuffer eventos pendientes por suscriptor antes de empezar a descartar.
const DefaultBuffer = 64

// Subscription canal de eventos de una empresa.
type Subscription struct {
	id        uint64
	companyID string
	ch        chan entity.Event
}

// Events canal de lectura. Se cierra al desuscribir o al cerrar el Hub.
func (s *Subscription) Events() <-chan entity.Event { return s.ch }

// Hub mantiene los suscriptores por empresa. Broadcast nunca bloquea:
// si el buffer de un suscriptor está lleno el evento se descarta para él.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[uint64]*Subscription
	buffer int
	closed bool

	seq     atomic.Uint64
	dropped atomic.Uint64
}

// NewHub construye el hub. buffer <= 0 usa DefaultBuffer.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{subs: make(map[string]map[uint64]*Subscription), buffer: buffer}
}

// Subscribe registra un suscriptor para la empresa.
// Si el hub ya está cerrado devuelve una suscripción con el canal cerrado.
func (h *Hub) Subscribe(companyID string) *Subscription {
	sub := &Subscription{id: h.seq.Add(1), companyID: companyID, ch: make(chan entity.Event, h.buffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		return sub
	}
	if h.subs[companyID] == nil {
		h.subs[companyID] = make(map[uint64]*Subscription)
	}
	h.subs[companyID][sub.id] = sub
	return sub
}

// Unsubscribe elimina el suscriptor y cierra su canal. Es idempotente.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	byCompany := h.subs[sub.companyID]
	if _, ok := byCompany[sub.id]; !ok {
		return
	}
	delete(byCompany, sub.id)
	if len(byCompany) == 0 {
		delete(h.subs, sub.companyID)
	}
	close(sub.ch)
}

// Broadcast entrega ev a los suscriptores de ev.CompanyID.
func (h *Hub) Broadcast(ev entity.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs[ev.CompanyID] {
		select {
		case sub.ch <- ev:
		default:
			h.dropped.Add(1)
		}
	}
}

// Publish implementa ports.EventPublisher en modo de un solo proceso.
func (h *Hub) Publish(_ context.Context, ev entity.Event) error {
	h.Broadcast(ev)
	return nil
}

// Subscribers número de suscriptores activos de la empresa.
func (h *Hub) Subscribers(companyID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[companyID])
}

// Dropped eventos descartados por suscriptores lentos desde el arranque.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

// Close cierra todos los canales. Los Subscribe posteriores reciben un canal cerrado.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for companyID, byCompany := range h.subs {
		for _, sub := range byCompany {
			close(sub.ch)
		}
		delete(h.subs, companyID)
	}
}
