package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

func TestVehicle_Alerts(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	inspection := now.AddDate(0, 0, 10)
	insurance := now.AddDate(0, 0, -2)
	v := &entity.Vehicle{ID: "v1", Plate: "1234-KLM", Status: entity.VehicleActive,
		InspectionDue: &inspection, InsuranceDue: &insurance}

	alerts := v.Alerts(now, 30*24*time.Hour)
	require.Len(t, alerts, 2)
	assert.Equal(t, entity.AlertInspection, alerts[0].Kind)
	assert.False(t, alerts[0].Overdue)
	assert.Equal(t, entity.AlertInsurance, alerts[1].Kind)
	assert.True(t, alerts[1].Overdue)

	assert.Len(t, v.Alerts(now, 5*24*time.Hour), 1, "la ITV queda fuera de una ventana de 5 días")
}

func TestVehicle_Alerts_Retirado(t *testing.T) {
	due := time.Now()
	v := &entity.Vehicle{Status: entity.VehicleRetired, InspectionDue: &due}
	assert.Empty(t, v.Alerts(time.Now(), time.Hour))
}
