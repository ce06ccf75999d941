package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

func (r *StockRepo) get(ctx context.Context, query, productID, warehouseID string) (*entity.Stock, error) {
	var s entity.Stock
	err := r.q.QueryRow(ctx, query, productID, warehouseID).Scan(&s.ProductID, &s.WarehouseID, &s.Quantity, &s.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return &entity.Stock{ProductID: productID, WarehouseID: warehouseID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// Get obtiene el stock actual de un producto en una bodega (cero si no hay fila).
func (r *StockRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	return r.get(ctx, `
		SELECT product_id, warehouse_id, quantity, updated_at
		FROM stock WHERE product_id = $1 AND warehouse_id = $2`, productID, warehouseID)
}

// GetForUpdate obtiene el stock y bloquea la fila (SELECT FOR UPDATE).
// Si la fila no existe no hay nada que bloquear; el Upsert posterior la crea.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	return r.get(ctx, `
		SELECT product_id, warehouse_id, quantity, updated_at
		FROM stock WHERE product_id = $1 AND warehouse_id = $2
		FOR UPDATE`, productID, warehouseID)
}

// TotalForUpdate bloquea la fila del producto y suma su stock en todas las bodegas.
// El costo promedio es de la empresa, no de la bodega: dos entradas concurrentes en bodegas
// distintas se serializan sobre el producto.
func (r *StockRepo) TotalForUpdate(ctx context.Context, productID string) (decimal.Decimal, error) {
	if _, err := r.q.Exec(ctx, `SELECT 1 FROM products WHERE id = $1 FOR UPDATE`, productID); err != nil {
		return decimal.Zero, fmt.Errorf("lock product: %w", err)
	}
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0) FROM stock WHERE product_id = $1`, productID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("total stock: %w", err)
	}
	return total, nil
}

// Upsert inserta o actualiza la cantidad en stock.
func (r *StockRepo) Upsert(ctx context.Context, s *entity.Stock) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock (product_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`,
		s.ProductID, s.WarehouseID, s.Quantity)
	if err != nil {
		return mapWriteErr("upsert stock", err)
	}
	return nil
}

const stockLevelSelect = `
	SELECT s.product_id, p.sku, p.name, s.warehouse_id, s.quantity, p.reorder_point, s.updated_at
	FROM stock s JOIN products p ON p.id = s.product_id`

func (r *StockRepo) levels(ctx context.Context, query string, args ...any) ([]*entity.StockLevel, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockLevel
	for rows.Next() {
		var l entity.StockLevel
		if err := rows.Scan(&l.ProductID, &l.SKU, &l.ProductName, &l.WarehouseID, &l.Quantity, &l.ReorderPoint, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// ListByWarehouse existencias de una bodega.
func (r *StockRepo) ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.StockLevel, error) {
	return r.levels(ctx, stockLevelSelect+` WHERE s.warehouse_id = $1 ORDER BY p.name LIMIT $2 OFFSET $3`,
		warehouseID, limit, offset)
}

// ListByProduct existencias de un producto en todas las bodegas.
func (r *StockRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockLevel, error) {
	return r.levels(ctx, stockLevelSelect+` WHERE s.product_id = $1 ORDER BY s.warehouse_id`, productID)
}

// BelowReorderPoint productos bajo punto de reorden. Con warehouseID vacío suma todas las bodegas.
func (r *StockRepo) BelowReorderPoint(ctx context.Context, companyID, warehouseID string) ([]repository.ReplenishmentItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT p.id, p.sku, p.name, COALESCE(sum(s.quantity), 0) AS current_stock,
		       p.reorder_point, p.cost, p.price
		FROM products p
		LEFT JOIN stock s ON s.product_id = p.id AND ($2 = '' OR s.warehouse_id::text = $2)
		WHERE p.company_id = $1 AND p.reorder_point > 0 AND p.category <> 'labor'
		GROUP BY p.id
		HAVING COALESCE(sum(s.quantity), 0) < p.reorder_point
		ORDER BY p.reorder_point - COALESCE(sum(s.quantity), 0) DESC`, companyID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("below reorder point: %w", err)
	}
	defer rows.Close()
	var out []repository.ReplenishmentItem
	for rows.Next() {
		var it repository.ReplenishmentItem
		if err := rows.Scan(&it.ProductID, &it.SKU, &it.ProductName, &it.CurrentStock, &it.ReorderPoint, &it.UnitCost, &it.Price); err != nil {
			return nil, fmt.Errorf("scan replenishment item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
