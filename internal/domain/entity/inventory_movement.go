package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeIN         = "IN"
	MovementTypeOUT        = "OUT"
	MovementTypeADJUSTMENT = "ADJUSTMENT"
	MovementTypeTRANSFER   = "TRANSFER"
)

// InventoryMovement movimiento de inventario (entrada, salida, ajuste o traslado).
// TransactionID agrupa los movimientos de una misma operación: traslado, factura u orden de servicio.
type InventoryMovement struct {
	ID            string
	CompanyID     string
	TransactionID string
	ProductID     string
	WarehouseID   string
	Type          string
	Quantity      decimal.Decimal // positivo entrada, negativo salida
	UnitCost      decimal.Decimal
	TotalCost     decimal.Decimal
	Reference     string // p.ej. "SO-000012" o "FV-000003"
	Date          time.Time
	CreatedAt     time.Time
	CreatedBy     string
}
