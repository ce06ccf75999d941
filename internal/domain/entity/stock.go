package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock existencias actuales de un producto en una bodega.
type Stock struct {
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal
	UpdatedAt   time.Time
}

// StockLevel fila de consulta de existencias con datos del producto.
type StockLevel struct {
	ProductID    string
	SKU          string
	ProductName  string
	WarehouseID  string
	Quantity     decimal.Decimal
	ReorderPoint decimal.Decimal
	UpdatedAt    time.Time
}
