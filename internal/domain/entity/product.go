package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Categorías de artículo del catálogo.
const (
	ProductPart        = "part"
	ProductRefrigerant = "refrigerant"
	ProductEquipment   = "equipment"
	ProductConsumable  = "consumable"
	ProductLabor       = "labor"
)

// ValidProductCategory informa si c es una categoría conocida.
func ValidProductCategory(c string) bool {
	switch c {
	case ProductPart, ProductRefrigerant, ProductEquipment, ProductConsumable, ProductLabor:
		return true
	}
	return false
}

// Product representa un artículo del catálogo (repuesto, gas, equipo, consumible).
// Cost es promedio ponderado calculado desde movimientos; el stock vive por bodega en Stock.
type Product struct {
	ID           string
	CompanyID    string
	SKU          string // único por empresa
	Name         string
	Description  string
	Category     string
	Brand        string
	Price        decimal.Decimal // precio de venta sin IVA
	Cost         decimal.Decimal // costo promedio ponderado (inicia en 0)
	TaxRate      decimal.Decimal // porcentaje 0-100
	Unit         string          // ud, kg, m, h
	ReorderPoint decimal.Decimal
	Attributes   json.RawMessage
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Stockable informa si el artículo lleva control de existencias.
func (p *Product) Stockable() bool {
	return p.Category != ProductLabor
}
