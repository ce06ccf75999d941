package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/climatiza-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCostCalculator_PromedioPonderado(t *testing.T) {
	// 10 ud a 20 + 30 ud a 24 = 920 / 40 = 23
	got := inventory.CostCalculator(d("10"), d("20"), d("30"), d("24"))
	assert.True(t, d("23").Equal(got), got.String())
}

func TestCostCalculator_SinStockPrevio(t *testing.T) {
	got := inventory.CostCalculator(decimal.Zero, d("99"), d("5"), d("12.5"))
	assert.True(t, d("12.5").Equal(got), got.String())
}

func TestCostCalculator_Redondeo(t *testing.T) {
	// (1*10 + 2*11) / 3 = 10.6666...
	got := inventory.CostCalculator(d("1"), d("10"), d("2"), d("11"))
	assert.True(t, d("10.6667").Equal(got), got.String())
}
