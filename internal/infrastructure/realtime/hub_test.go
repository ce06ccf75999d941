package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestHub_EntregaSoloALaEmpresa(t *testing.T) {
	h := NewHub(4)
	defer h.Close()

	a := h.Subscribe("c1")
	b := h.Subscribe("c2")

	require.NoError(t, h.Publish(context.Background(), entity.NewEvent(entity.EventTicketMoved, "c1", "ticket", "t1", nil)))

	select {
	case ev := <-a.Events():
		assert.Equal(t, "t1", ev.EntityID)
		assert.Equal(t, entity.EventTicketMoved, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("el suscriptor de c1 no recibió el evento")
	}
	select {
	case ev := <-b.Events():
		t.Fatalf("c2 no debería recibir eventos de c1: %+v", ev)
	default:
	}
}

func TestHub_SuscriptorLentoNoBloquea(t *testing.T) {
	h := NewHub(2)
	defer h.Close()
	sub := h.Subscribe("c1")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			h.Broadcast(entity.Event{Type: entity.EventOrderStatus, CompanyID: "c1"})
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast bloqueó con un suscriptor lento")
	}

	assert.Len(t, sub.Events(), 2)
	assert.Equal(t, uint64(8), h.Dropped())
}

func TestHub_UnsubscribeCierraCanal(t *testing.T) {
	h := NewHub(1)
	defer h.Close()
	sub := h.Subscribe("c1")
	require.Equal(t, 1, h.Subscribers("c1"))

	h.Unsubscribe(sub)
	h.Unsubscribe(sub)

	_, open := <-sub.Events()
	assert.False(t, open)
	assert.Equal(t, 0, h.Subscribers("c1"))
}

func TestHub_CloseTerminaLectores(t *testing.T) {
	h := NewHub(1)
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		sub := h.Subscribe("c1")
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range sub.Events() {
			}
		}()
	}
	h.Close()
	wg.Wait()

	late := h.Subscribe("c1")
	_, open := <-late.Events()
	assert.False(t, open)
}
