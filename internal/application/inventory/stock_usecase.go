package inventory

import (
	"context"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
)

// StockUseCase consultas de existencias y movimientos.
type StockUseCase struct {
	stockRepo     repository.StockRepository
	movRepo       repository.InventoryMovementRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(
	stockRepo repository.StockRepository,
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
) *StockUseCase {
	return &StockUseCase{stockRepo: stockRepo, movRepo: movRepo, productRepo: productRepo, warehouseRepo: warehouseRepo}
}

// ByWarehouse existencias de una bodega de la empresa.
func (uc *StockUseCase) ByWarehouse(ctx context.Context, companyID, warehouseID string, page dto.PageRequest) ([]dto.StockLevelResponse, error) {
	wh, err := uc.warehouseRepo.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil || wh.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	page.DefaultPage()
	levels, err := uc.stockRepo.ListByWarehouse(ctx, warehouseID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return toStockLevels(levels), nil
}

// ByProduct existencias de un artículo en todas las bodegas.
func (uc *StockUseCase) ByProduct(ctx context.Context, companyID, productID string) ([]dto.StockLevelResponse, error) {
	if err := uc.checkProduct(ctx, companyID, productID); err != nil {
		return nil, err
	}
	levels, err := uc.stockRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return toStockLevels(levels), nil
}

// Movements historial de movimientos de un artículo, más reciente primero.
func (uc *StockUseCase) Movements(ctx context.Context, companyID, productID string, page dto.PageRequest) ([]dto.MovementResponse, error) {
	if err := uc.checkProduct(ctx, companyID, productID); err != nil {
		return nil, err
	}
	page.DefaultPage()
	movs, err := uc.movRepo.ListByProduct(ctx, productID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, toMovementResponse(m))
	}
	return out, nil
}

func (uc *StockUseCase) checkProduct(ctx context.Context, companyID, productID string) error {
	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if p == nil || p.CompanyID != companyID {
		return domain.ErrNotFound
	}
	return nil
}

func toStockLevels(levels []*entity.StockLevel) []dto.StockLevelResponse {
	out := make([]dto.StockLevelResponse, 0, len(levels))
	for _, l := range levels {
		out = append(out, dto.StockLevelResponse{
			ProductID:    l.ProductID,
			SKU:          l.SKU,
			ProductName:  l.ProductName,
			WarehouseID:  l.WarehouseID,
			Quantity:     l.Quantity,
			ReorderPoint: l.ReorderPoint,
			BelowReorder: l.ReorderPoint.IsPositive() && l.Quantity.LessThan(l.ReorderPoint),
			UpdatedAt:    l.UpdatedAt,
		})
	}
	return out
}

func toMovementResponse(m *entity.InventoryMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		ProductID:     m.ProductID,
		WarehouseID:   m.WarehouseID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		UnitCost:      m.UnitCost,
		TotalCost:     m.TotalCost,
		Reference:     m.Reference,
		Date:          m.Date,
	}
}
