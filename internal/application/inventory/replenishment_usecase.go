package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
)

var (
	idealFactor = decimal.NewFromFloat(1.5)
	hundred     = decimal.NewFromInt(100)
)

// ReplenishmentUseCase genera la lista de reposición de repuestos y gas.
// Combina el stock bajo mínimo con el historial de márgenes para priorizar.
type ReplenishmentUseCase struct {
	stockRepo  repository.StockRepository
	reportRepo repository.ReportRepository
	now        func() time.Time
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(stockRepo repository.StockRepository, reportRepo repository.ReportRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{stockRepo: stockRepo, reportRepo: reportRepo, now: time.Now}
}

// GenerateReplenishmentList devuelve los productos bajo punto de reorden con la cantidad
// sugerida (ideal = 1.5 × punto de reorden) ordenados por margen, volumen y déficit.
// warehouseID vacío considera el stock global de la empresa.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, companyID, warehouseID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	rawItems, err := uc.stockRepo.BelowReorderPoint(ctx, companyID, warehouseID)
	if err != nil {
		return nil, err
	}
	if len(rawItems) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	end := uc.now()
	start := end.AddDate(0, 0, -90)
	margins, err := uc.reportRepo.GetSKUMargins(ctx, companyID, start, end, 500)
	if err != nil {
		// sin historial se estima el margen con precio y costo
		log.Warn().Err(err).Str("company_id", companyID).Msg("reposición: márgenes no disponibles")
	}
	marginByID := make(map[string]repository.SKUMarginResult, len(margins))
	for _, m := range margins {
		marginByID[m.ProductID] = m
	}

	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(rawItems))
	for _, item := range rawItems {
		ideal := item.ReorderPoint.Mul(idealFactor)
		qty := ideal.Sub(item.CurrentStock)
		if qty.IsNegative() {
			qty = decimal.Zero
		}

		var marginPct, unitsSold decimal.Decimal
		if m, ok := marginByID[item.ProductID]; ok {
			unitsSold = m.UnitsSold
			if m.GrossRevenue.IsPositive() {
				marginPct = m.GrossProfit.Div(m.GrossRevenue).Mul(hundred).Round(2)
			}
		} else if item.Price.IsPositive() {
			marginPct = item.Price.Sub(item.UnitCost).Div(item.Price).Mul(hundred).Round(2)
		}

		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:           item.ProductID,
			SKU:                 item.SKU,
			ProductName:         item.ProductName,
			CurrentStock:        item.CurrentStock,
			ReorderPoint:        item.ReorderPoint,
			IdealStock:          ideal,
			SuggestedOrderQty:   qty,
			UnitCost:            item.UnitCost,
			EstimatedOrderCost:  qty.Mul(item.UnitCost),
			GrossMarginPct:      marginPct,
			UnitsSoldLast90Days: unitsSold,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if !a.GrossMarginPct.Equal(b.GrossMarginPct) {
			return a.GrossMarginPct.GreaterThan(b.GrossMarginPct)
		}
		if !a.UnitsSoldLast90Days.Equal(b.UnitsSoldLast90Days) {
			return a.UnitsSoldLast90Days.GreaterThan(b.UnitsSoldLast90Days)
		}
		return a.ReorderPoint.Sub(a.CurrentStock).GreaterThan(b.ReorderPoint.Sub(b.CurrentStock))
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
