package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/domain/inventory"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
)

// RegisterMovementUseCase registra movimientos de inventario de forma transaccional
// (IN, OUT, ADJUSTMENT, TRANSFER) con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback.
type RegisterMovementUseCase struct {
	txRunner      TxRunner
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	now           func() time.Time
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{
		txRunner:      txRunner,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		now:           time.Now,
	}
}

// MovementInputDTO entrada para registrar un movimiento de inventario.
// Para IN/OUT/ADJUSTMENT: ProductID, WarehouseID, Type, Quantity; UnitCost obligatorio en IN.
// Para TRANSFER: ProductID, FromWarehouseID, ToWarehouseID, Type=TRANSFER, Quantity.
type MovementInputDTO struct {
	CompanyID       string
	UserID          string
	ProductID       string
	WarehouseID     string
	FromWarehouseID string
	ToWarehouseID   string
	Type            string
	Quantity        decimal.Decimal
	UnitCost        *decimal.Decimal
	Reference       string
}

// RegisterMovementFromRequest adapta el request HTTP al caso de uso.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, companyID, userID string, in dto.RegisterMovementRequest) (string, error) {
	return uc.RegisterMovement(ctx, MovementInputDTO{
		CompanyID:       companyID,
		UserID:          userID,
		ProductID:       in.ProductID,
		WarehouseID:     in.WarehouseID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Type:            in.Type,
		Quantity:        in.Quantity,
		UnitCost:        in.UnitCost,
		Reference:       in.Reference,
	})
}

// RegisterMovement valida la entrada, abre la transacción y aplica la lógica según el tipo.
// Devuelve el transaction_id que agrupa los movimientos creados.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInputDTO) (string, error) {
	switch input.Type {
	case entity.MovementTypeIN, entity.MovementTypeOUT, entity.MovementTypeADJUSTMENT:
		if input.ProductID == "" || input.WarehouseID == "" || input.Quantity.IsZero() {
			return "", domain.ErrInvalidInput
		}
		if input.Type == entity.MovementTypeIN && (input.UnitCost == nil || input.UnitCost.IsNegative()) {
			return "", domain.ErrInvalidInput
		}
		if input.Type != entity.MovementTypeADJUSTMENT && input.Quantity.IsNegative() {
			return "", domain.ErrInvalidInput
		}
	case entity.MovementTypeTRANSFER:
		if input.ProductID == "" || input.FromWarehouseID == "" || input.ToWarehouseID == "" {
			return "", domain.ErrInvalidInput
		}
		if input.FromWarehouseID == input.ToWarehouseID || !input.Quantity.IsPositive() {
			return "", domain.ErrInvalidInput
		}
	default:
		return "", domain.ErrInvalidInput
	}

	product, err := uc.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return "", err
	}
	if product == nil || product.CompanyID != input.CompanyID {
		return "", domain.ErrNotFound
	}
	if !product.Stockable() {
		return "", domain.ErrInvalidInput
	}

	warehouses := []string{input.WarehouseID}
	if input.Type == entity.MovementTypeTRANSFER {
		warehouses = []string{input.FromWarehouseID, input.ToWarehouseID}
	}
	for _, id := range warehouses {
		wh, err := uc.warehouseRepo.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		if wh == nil || wh.CompanyID != input.CompanyID {
			return "", domain.ErrNotFound
		}
	}

	now := uc.now()
	txID := uuid.New().String()

	err = uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		switch input.Type {
		case entity.MovementTypeIN:
			return doIN(ctx, movRepo, stockRepo, productRepo, product, input, now, txID)
		case entity.MovementTypeOUT:
			return uc.RegisterOUTInTx(ctx, movRepo, stockRepo, outLine(product, input, now, txID))
		case entity.MovementTypeADJUSTMENT:
			return doADJUSTMENT(ctx, uc, movRepo, stockRepo, productRepo, product, input, now, txID)
		case entity.MovementTypeTRANSFER:
			return doTRANSFER(ctx, movRepo, stockRepo, product, input, now, txID)
		}
		return domain.ErrInvalidInput
	})
	if err != nil {
		return "", err
	}
	return txID, nil
}

func outLine(product *entity.Product, input MovementInputDTO, now time.Time, txID string) OutLine {
	return OutLine{
		CompanyID:     input.CompanyID,
		Product:       product,
		WarehouseID:   input.WarehouseID,
		UserID:        input.UserID,
		Quantity:      input.Quantity,
		Reference:     input.Reference,
		TransactionID: txID,
		At:            now,
	}
}

// RegisterOUTInTx ejecuta una salida usando los repositorios de la transacción del llamador.
// La usan órdenes de servicio (consumo de repuestos) y facturas.
func (uc *RegisterMovementUseCase) RegisterOUTInTx(
	ctx context.Context,
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
	line OutLine,
) error {
	if !line.Quantity.IsPositive() {
		return domain.ErrInvalidInput
	}
	stock, err := stockRepo.GetForUpdate(ctx, line.Product.ID, line.WarehouseID)
	if err != nil {
		return err
	}
	if stock.Quantity.LessThan(line.Quantity) {
		return domain.ErrInsufficientStock
	}
	stock.Quantity = stock.Quantity.Sub(line.Quantity)
	stock.UpdatedAt = line.At
	if err := stockRepo.Upsert(ctx, stock); err != nil {
		return err
	}
	unitCost := line.Product.Cost
	return movRepo.Create(ctx, &entity.InventoryMovement{
		ID:            uuid.New().String(),
		CompanyID:     line.CompanyID,
		TransactionID: line.TransactionID,
		ProductID:     line.Product.ID,
		WarehouseID:   line.WarehouseID,
		Type:          entity.MovementTypeOUT,
		Quantity:      line.Quantity.Neg(),
		UnitCost:      unitCost,
		TotalCost:     line.Quantity.Neg().Mul(unitCost),
		Reference:     line.Reference,
		Date:          line.At,
		CreatedAt:     line.At,
		CreatedBy:     line.UserID,
	})
}

// doIN bloquea la fila, recalcula el costo promedio ponderado y suma stock.
// El promedio usa el stock total del producto en todas las bodegas (products.cost es único).
func doIN(
	ctx context.Context,
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	product *entity.Product,
	input MovementInputDTO,
	now time.Time, txID string,
) error {
	total, err := stockRepo.TotalForUpdate(ctx, input.ProductID)
	if err != nil {
		return err
	}
	// Releer el costo con el producto ya bloqueado.
	locked, err := productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return err
	}
	if locked != nil {
		product.Cost = locked.Cost
	}
	stock, err := stockRepo.GetForUpdate(ctx, input.ProductID, input.WarehouseID)
	if err != nil {
		return err
	}
	unitCost := *input.UnitCost
	newCost := inventory.CostCalculator(total, product.Cost, input.Quantity, unitCost)
	if err := productRepo.UpdateCost(ctx, input.ProductID, newCost); err != nil {
		return err
	}
	product.Cost = newCost

	stock.Quantity = stock.Quantity.Add(input.Quantity)
	stock.UpdatedAt = now
	if err := stockRepo.Upsert(ctx, stock); err != nil {
		return err
	}
	return movRepo.Create(ctx, &entity.InventoryMovement{
		ID:            uuid.New().String(),
		CompanyID:     input.CompanyID,
		TransactionID: txID,
		ProductID:     input.ProductID,
		WarehouseID:   input.WarehouseID,
		Type:          entity.MovementTypeIN,
		Quantity:      input.Quantity,
		UnitCost:      unitCost,
		TotalCost:     input.Quantity.Mul(unitCost),
		Reference:     input.Reference,
		Date:          now,
		CreatedAt:     now,
		CreatedBy:     input.UserID,
	})
}

// doADJUSTMENT: positivo como IN (costo 0 si no se indica), negativo como OUT.
func doADJUSTMENT(
	ctx context.Context,
	uc *RegisterMovementUseCase,
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	product *entity.Product,
	input MovementInputDTO,
	now time.Time, txID string,
) error {
	if input.Quantity.IsPositive() {
		if input.UnitCost == nil {
			cost := product.Cost
			input.UnitCost = &cost
		}
		return doIN(ctx, movRepo, stockRepo, productRepo, product, input, now, txID)
	}
	input.Quantity = input.Quantity.Neg()
	return uc.RegisterOUTInTx(ctx, movRepo, stockRepo, outLine(product, input, now, txID))
}

// doTRANSFER resta de la bodega origen y suma en la destino; dos registros con el mismo transaction_id.
func doTRANSFER(
	ctx context.Context,
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
	product *entity.Product,
	input MovementInputDTO,
	now time.Time, txID string,
) error {
	origin, err := stockRepo.GetForUpdate(ctx, input.ProductID, input.FromWarehouseID)
	if err != nil {
		return err
	}
	if origin.Quantity.LessThan(input.Quantity) {
		return domain.ErrInsufficientStock
	}
	dest, err := stockRepo.GetForUpdate(ctx, input.ProductID, input.ToWarehouseID)
	if err != nil {
		return err
	}
	origin.Quantity = origin.Quantity.Sub(input.Quantity)
	dest.Quantity = dest.Quantity.Add(input.Quantity)
	origin.UpdatedAt, dest.UpdatedAt = now, now
	if err := stockRepo.Upsert(ctx, origin); err != nil {
		return err
	}
	if err := stockRepo.Upsert(ctx, dest); err != nil {
		return err
	}

	unitCost := product.Cost
	for _, leg := range []struct {
		warehouse string
		qty       decimal.Decimal
	}{
		{input.FromWarehouseID, input.Quantity.Neg()},
		{input.ToWarehouseID, input.Quantity},
	} {
		err := movRepo.Create(ctx, &entity.InventoryMovement{
			ID:            uuid.New().String(),
			CompanyID:     input.CompanyID,
			TransactionID: txID,
			ProductID:     input.ProductID,
			WarehouseID:   leg.warehouse,
			Type:          entity.MovementTypeTRANSFER,
			Quantity:      leg.qty,
			UnitCost:      unitCost,
			TotalCost:     leg.qty.Mul(unitCost),
			Reference:     input.Reference,
			Date:          now,
			CreatedAt:     now,
			CreatedBy:     input.UserID,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
