package repository

import (
	"context"

	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ReplenishmentItem resultado crudo para un producto bajo punto de reorden.
type ReplenishmentItem struct {
	ProductID    string
	SKU          string
	ProductName  string
	CurrentStock decimal.Decimal
	ReorderPoint decimal.Decimal
	UnitCost     decimal.Decimal
	Price        decimal.Decimal
}

// StockRepository puerto para consultar/actualizar existencias por bodega+producto.
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE); si no existe devuelve stock cero.
	GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error)
	// TotalForUpdate bloquea el producto y devuelve su stock sumado en todas las bodegas.
	TotalForUpdate(ctx context.Context, productID string) (decimal.Decimal, error)
	Upsert(ctx context.Context, stock *entity.Stock) error
	ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.StockLevel, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockLevel, error)
	// BelowReorderPoint productos cuyo stock (en la bodega o global si warehouseID es vacío)
	// es inferior al punto de reorden, mayor déficit primero.
	BelowReorderPoint(ctx context.Context, companyID, warehouseID string) ([]ReplenishmentItem, error)
}

// InventoryMovementRepository puerto de persistencia para movimientos de inventario.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.InventoryMovement, error)
	ListByTransaction(ctx context.Context, transactionID string) ([]*entity.InventoryMovement, error)
}
