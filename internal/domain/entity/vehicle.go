package entity

import "time"

// Estados de vehículo.
const (
	VehicleActive      = "active"
	VehicleMaintenance = "maintenance"
	VehicleRetired     = "retired"
)

// Vehicle representa una furgoneta o vehículo de la flota técnica.
type Vehicle struct {
	ID            string
	CompanyID     string
	Plate         string
	Make          string
	Model         string
	Year          int
	VIN           string
	TechnicianID  string // técnico asignado (opcional)
	WarehouseID   string // stock de la furgoneta (opcional)
	OdometerKm    int
	InspectionDue *time.Time
	InsuranceDue  *time.Time
	Status        string
	LastLat       *float64
	LastLng       *float64
	LastSeenAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Tipos de alerta de flota.
const (
	AlertInspection = "inspection"
	AlertInsurance  = "insurance"
)

// FleetAlert vencimiento documental próximo o pasado.
type FleetAlert struct {
	VehicleID string
	Plate     string
	Kind      string
	DueDate   time.Time
	Overdue   bool
}

// Alerts devuelve los vencimientos del vehículo dentro de la ventana [now, now+window].
// Los ya vencidos se incluyen siempre. Los vehículos retirados no generan alertas.
func (v *Vehicle) Alerts(now time.Time, window time.Duration) []FleetAlert {
	if v.Status == VehicleRetired {
		return nil
	}
	limit := now.Add(window)
	var out []FleetAlert
	check := func(kind string, due *time.Time) {
		if due == nil || due.After(limit) {
			return
		}
		out = append(out, FleetAlert{
			VehicleID: v.ID,
			Plate:     v.Plate,
			Kind:      kind,
			DueDate:   *due,
			Overdue:   due.Before(now),
		})
	}
	check(AlertInspection, v.InspectionDue)
	check(AlertInsurance, v.InsuranceDue)
	return out
}
