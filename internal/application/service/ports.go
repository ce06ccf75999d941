// Package service casos de uso de órdenes de servicio y tickets.
package service

import (
	"context"

	"github.com/jhoicas/climatiza-api/internal/application/inventory"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
)

// TxRunner ejecuta la lógica de órdenes dentro de una transacción.
type TxRunner interface {
	RunServiceOrder(ctx context.Context, fn func(
		orderRepo repository.ServiceOrderRepository,
		deviceRepo repository.DeviceRepository,
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// StockDeducter descuenta stock dentro de una transacción abierta.
// Lo implementa inventory.RegisterMovementUseCase.
type StockDeducter interface {
	RegisterOUTInTx(ctx context.Context, movRepo repository.InventoryMovementRepository, stockRepo repository.StockRepository, line inventory.OutLine) error
}
