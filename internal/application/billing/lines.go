package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
)

// line línea validada con precio e impuesto ya resueltos.
type line struct {
	Product     *entity.Product // nil = concepto libre
	WarehouseID string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
}

// resolveLines valida las líneas de entrada. Sin precio ni IVA explícitos se toman del producto.
func resolveLines(ctx context.Context, products repository.ProductRepository, companyID string, items []dto.LineItemRequest) ([]line, error) {
	if len(items) == 0 {
		return nil, errors.Join(domain.ErrInvalidInput, errors.New("se necesita al menos una línea"))
	}
	out := make([]line, 0, len(items))
	for i, it := range items {
		if !it.Quantity.IsPositive() {
			return nil, errors.Join(domain.ErrInvalidInput, fmt.Errorf("línea %d: cantidad no válida", i+1))
		}
		l := line{WarehouseID: it.WarehouseID, Description: strings.TrimSpace(it.Description), Quantity: it.Quantity}
		if it.ProductID != "" {
			p, err := products.GetByID(ctx, it.ProductID)
			if err != nil {
				return nil, err
			}
			if p == nil || p.CompanyID != companyID {
				return nil, errors.Join(domain.ErrInvalidInput, fmt.Errorf("línea %d: producto desconocido", i+1))
			}
			l.Product, l.UnitPrice, l.TaxRate = p, p.Price, p.TaxRate
			if l.Description == "" {
				l.Description = p.Name
			}
		} else if it.WarehouseID != "" {
			return nil, errors.Join(domain.ErrInvalidInput, fmt.Errorf("línea %d: almacén sin producto", i+1))
		}
		if it.UnitPrice != nil {
			l.UnitPrice = *it.UnitPrice
		}
		if it.TaxRate != nil {
			l.TaxRate = *it.TaxRate
		}
		if l.Description == "" {
			return nil, errors.Join(domain.ErrInvalidInput, fmt.Errorf("línea %d: falta la descripción", i+1))
		}
		if l.UnitPrice.IsNegative() || !entity.ValidTaxRate(l.TaxRate) {
			return nil, errors.Join(domain.ErrInvalidInput, fmt.Errorf("línea %d: precio o IVA no válidos", i+1))
		}
		out = append(out, l)
	}
	return out, nil
}

func (l line) productID() string {
	if l.Product == nil {
		return ""
	}
	return l.Product.ID
}
