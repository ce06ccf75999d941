package dto

import "time"

// VehicleRequest alta o edición de un vehículo.
type VehicleRequest struct {
	Plate         string     `json:"plate" validate:"required"`
	Make          string     `json:"make"`
	Model         string     `json:"model"`
	Year          int        `json:"year"`
	VIN           string     `json:"vin"`
	TechnicianID  string     `json:"technician_id,omitempty"`
	WarehouseID   string     `json:"warehouse_id,omitempty"`
	OdometerKm    int        `json:"odometer_km"`
	InspectionDue *time.Time `json:"inspection_due,omitempty"`
	InsuranceDue  *time.Time `json:"insurance_due,omitempty"`
	Status        string     `json:"status" validate:"omitempty,oneof=active maintenance retired"`
}

// VehicleResponse salida de un vehículo.
type VehicleResponse struct {
	ID            string     `json:"id"`
	Plate         string     `json:"plate"`
	Make          string     `json:"make"`
	Model         string     `json:"model"`
	Year          int        `json:"year"`
	VIN           string     `json:"vin"`
	TechnicianID  string     `json:"technician_id,omitempty"`
	WarehouseID   string     `json:"warehouse_id,omitempty"`
	OdometerKm    int        `json:"odometer_km"`
	InspectionDue *time.Time `json:"inspection_due,omitempty"`
	InsuranceDue  *time.Time `json:"insurance_due,omitempty"`
	Status        string     `json:"status"`
	LastLat       *float64   `json:"last_lat,omitempty"`
	LastLng       *float64   `json:"last_lng,omitempty"`
	LastSeenAt    *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// PositionRequest posición GPS reportada por la furgoneta.
type PositionRequest struct {
	Lat float64    `json:"lat"`
	Lng float64    `json:"lng"`
	At  *time.Time `json:"at,omitempty"`
}

// FleetAlertResponse vencimiento documental.
type FleetAlertResponse struct {
	VehicleID string    `json:"vehicle_id"`
	Plate     string    `json:"plate"`
	Kind      string    `json:"kind"`
	DueDate   time.Time `json:"due_date"`
	Overdue   bool      `json:"overdue"`
}
