package entity

import "time"

// Tipos de bodega.
const (
	WarehouseMain    = "main"
	WarehouseVehicle = "vehicle"
)

// Warehouse representa un almacén: la nave central o el stock de una furgoneta.
type Warehouse struct {
	ID        string
	CompanyID string
	Name      string
	Type      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
