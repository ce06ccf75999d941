package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

func TestCanTransition_FlujoNormal(t *testing.T) {
	assert.True(t, entity.CanTransition(entity.OrderStatusNew, entity.OrderStatusScheduled))
	assert.True(t, entity.CanTransition(entity.OrderStatusScheduled, entity.OrderStatusInProgress))
	assert.True(t, entity.CanTransition(entity.OrderStatusInProgress, entity.OrderStatusCompleted))
	assert.True(t, entity.CanTransition(entity.OrderStatusScheduled, entity.OrderStatusNew), "desprogramar")
}

func TestCanTransition_Cancelacion(t *testing.T) {
	for _, from := range []string{entity.OrderStatusNew, entity.OrderStatusScheduled, entity.OrderStatusInProgress} {
		assert.True(t, entity.CanTransition(from, entity.OrderStatusCancelled), from)
	}
	assert.False(t, entity.CanTransition(entity.OrderStatusCompleted, entity.OrderStatusCancelled))
}

func TestCanTransition_Prohibidas(t *testing.T) {
	cases := [][2]string{
		{entity.OrderStatusNew, entity.OrderStatusCompleted},
		{entity.OrderStatusNew, entity.OrderStatusInProgress},
		{entity.OrderStatusCompleted, entity.OrderStatusNew},
		{entity.OrderStatusCancelled, entity.OrderStatusScheduled},
		{entity.OrderStatusInProgress, entity.OrderStatusScheduled},
		{"desconocido", entity.OrderStatusNew},
	}
	for _, c := range cases {
		assert.False(t, entity.CanTransition(c[0], c[1]), "%s -> %s", c[0], c[1])
	}
}

func TestOverlaps(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	h := func(n int) time.Time { return base.Add(time.Duration(n) * time.Hour) }

	assert.True(t, entity.Overlaps(h(0), h(2), h(1), h(3)))
	assert.True(t, entity.Overlaps(h(0), h(4), h(1), h(2)), "contenido")
	assert.False(t, entity.Overlaps(h(0), h(2), h(2), h(3)), "contiguos no se solapan")
	assert.False(t, entity.Overlaps(h(3), h(4), h(0), h(1)))
}

func TestServiceOrder_UpdatesDeviceHistory(t *testing.T) {
	o := &entity.ServiceOrder{Type: entity.OrderMaintenance, DeviceID: "d1"}
	assert.True(t, o.UpdatesDeviceHistory())

	o.Type = entity.OrderInstallation
	assert.False(t, o.UpdatesDeviceHistory(), "la instalación no cuenta como servicio")

	o = &entity.ServiceOrder{Type: entity.OrderRepair}
	assert.False(t, o.UpdatesDeviceHistory(), "sin equipo asociado")
}
