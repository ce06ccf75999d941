package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
)

// TxRunner abre la transacción del motor de inventario con los repositorios atados a ella.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// OutLine salida de stock que otro flujo (orden de servicio, factura) ejecuta dentro de su propia tx
// mediante RegisterOUTInTx. Product ya viene cargado y validado contra la empresa.
type OutLine struct {
	CompanyID     string
	Product       *entity.Product
	WarehouseID   string
	UserID        string
	Quantity      decimal.Decimal
	Reference     string // número de la orden o factura
	TransactionID string
	At            time.Time
}
