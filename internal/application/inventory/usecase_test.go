package inventory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/testutil"
)

const company = "c1"

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func newFixture() (*testutil.Store, *RegisterMovementUseCase) {
	st := testutil.NewStore()
	st.Products["p1"] = &entity.Product{ID: "p1", CompanyID: company, SKU: "R32-5KG", Name: "Botella R32", Category: entity.ProductRefrigerant, Cost: dec("0"), Price: dec("90"), ReorderPoint: dec("4")}
	st.Products["mo"] = &entity.Product{ID: "mo", CompanyID: company, SKU: "MO", Name: "Mano de obra", Category: entity.ProductLabor}
	st.Warehouses["w1"] = &entity.Warehouse{ID: "w1", CompanyID: company, Type: entity.WarehouseMain}
	st.Warehouses["van"] = &entity.Warehouse{ID: "van", CompanyID: company, Type: entity.WarehouseVehicle}
	st.Warehouses["otra"] = &entity.Warehouse{ID: "otra", CompanyID: "c2"}
	uc := NewRegisterMovementUseCase(testutil.TxRunner{Store: st}, testutil.ProductRepo{Store: st}, testutil.WarehouseRepo{Store: st})
	return st, uc
}

func TestRegisterMovement_EntradaRecalculaCostoPromedio(t *testing.T) {
	st, uc := newFixture()
	ctx := context.Background()

	_, err := uc.RegisterMovement(ctx, MovementInputDTO{CompanyID: company, ProductID: "p1", WarehouseID: "w1", Type: entity.MovementTypeIN, Quantity: dec("10"), UnitCost: decPtr("50")})
	require.NoError(t, err)
	_, err = uc.RegisterMovement(ctx, MovementInputDTO{CompanyID: company, ProductID: "p1", WarehouseID: "w1", Type: entity.MovementTypeIN, Quantity: dec("10"), UnitCost: decPtr("70")})
	require.NoError(t, err)

	assert.True(t, st.StockOf("p1", "w1").Equal(dec("20")))
	assert.True(t, st.Products["p1"].Cost.Equal(dec("60")), st.Products["p1"].Cost.String())
	assert.Len(t, st.Movements, 2)
	assert.Equal(t, company, st.Movements[0].CompanyID)
}

// Reponer una furgoneta vacía no debe resetear el costo de la empresa al de la entrada.
func TestRegisterMovement_CostoPromedioConStockEnVariasBodegas(t *testing.T) {
	st, uc := newFixture()
	ctx := context.Background()

	_, err := uc.RegisterMovement(ctx, MovementInputDTO{CompanyID: company, ProductID: "p1", WarehouseID: "w1", Type: entity.MovementTypeIN, Quantity: dec("100"), UnitCost: decPtr("10")})
	require.NoError(t, err)
	_, err = uc.RegisterMovement(ctx, MovementInputDTO{CompanyID: company, ProductID: "p1", WarehouseID: "van", Type: entity.MovementTypeIN, Quantity: dec("10"), UnitCost: decPtr("20")})
	require.NoError(t, err)

	// (100*10 + 10*20) / 110
	assert.True(t, st.Products["p1"].Cost.Equal(dec("10.9091")), st.Products["p1"].Cost.String())
	assert.True(t, st.StockOf("p1", "van").Equal(dec("10")))
}

func TestRegisterMovement_SalidaSinStock(t *testing.T) {
	st, uc := newFixture()
	st.SetStock("p1", "w1", dec("1"))

	_, err := uc.RegisterMovement(context.Background(), MovementInputDTO{CompanyID: company, ProductID: "p1", WarehouseID: "w1", Type: entity.MovementTypeOUT, Quantity: dec("2")})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, st.StockOf("p1", "w1").Equal(dec("1")))
}

func TestRegisterMovement_TrasladoAFurgoneta(t *testing.T) {
	st, uc := newFixture()
	st.SetStock("p1", "w1", dec("5"))

	txID, err := uc.RegisterMovement(context.Background(), MovementInputDTO{
		CompanyID: company, ProductID: "p1", FromWarehouseID: "w1", ToWarehouseID: "van",
		Type: entity.MovementTypeTRANSFER, Quantity: dec("2"), Reference: "carga semanal",
	})
	require.NoError(t, err)

	assert.True(t, st.StockOf("p1", "w1").Equal(dec("3")))
	assert.True(t, st.StockOf("p1", "van").Equal(dec("2")))
	movs, _ := testutil.MovementRepo{Store: st}.ListByTransaction(context.Background(), txID)
	require.Len(t, movs, 2)
	assert.True(t, movs[0].Quantity.Add(movs[1].Quantity).IsZero())
}

func TestRegisterMovement_AjusteNegativo(t *testing.T) {
	st, uc := newFixture()
	st.SetStock("p1", "w1", dec("5"))

	_, err := uc.RegisterMovement(context.Background(), MovementInputDTO{CompanyID: company, ProductID: "p1", WarehouseID: "w1", Type: entity.MovementTypeADJUSTMENT, Quantity: dec("-2")})
	require.NoError(t, err)
	assert.True(t, st.StockOf("p1", "w1").Equal(dec("3")))
}

func TestRegisterMovement_Validaciones(t *testing.T) {
	_, uc := newFixture()
	ctx := context.Background()
	cases := []struct {
		name string
		in   MovementInputDTO
		want error
	}{
		{"tipo desconocido", MovementInputDTO{CompanyID: company, ProductID: "p1", WarehouseID: "w1", Type: "LOAN", Quantity: dec("1")}, domain.ErrInvalidInput},
		{"entrada sin costo", MovementInputDTO{CompanyID: company, ProductID: "p1", WarehouseID: "w1", Type: entity.MovementTypeIN, Quantity: dec("1")}, domain.ErrInvalidInput},
		{"traslado a la misma bodega", MovementInputDTO{CompanyID: company, ProductID: "p1", FromWarehouseID: "w1", ToWarehouseID: "w1", Type: entity.MovementTypeTRANSFER, Quantity: dec("1")}, domain.ErrInvalidInput},
		{"bodega de otra empresa", MovementInputDTO{CompanyID: company, ProductID: "p1", WarehouseID: "otra", Type: entity.MovementTypeOUT, Quantity: dec("1")}, domain.ErrNotFound},
		{"producto de otra empresa", MovementInputDTO{CompanyID: "c2", ProductID: "p1", WarehouseID: "otra", Type: entity.MovementTypeOUT, Quantity: dec("1")}, domain.ErrNotFound},
		{"mano de obra sin stock", MovementInputDTO{CompanyID: company, ProductID: "mo", WarehouseID: "w1", Type: entity.MovementTypeOUT, Quantity: dec("1")}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.RegisterMovement(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestReplenishment_IdealYPrioridad(t *testing.T) {
	st, _ := newFixture()
	st.Products["p2"] = &entity.Product{ID: "p2", CompanyID: company, SKU: "CAP-35", Name: "Condensador 35uF", Category: entity.ProductPart, Cost: dec("4"), Price: dec("12"), ReorderPoint: dec("10")}
	st.Products["p1"].Cost = dec("60")
	st.SetStock("p1", "w1", dec("1"))
	st.SetStock("p2", "w1", dec("2"))

	uc := NewReplenishmentUseCase(testutil.StockRepo{Store: st}, testutil.ReportStub{})
	out, err := uc.GenerateReplenishmentList(context.Background(), company, "")
	require.NoError(t, err)
	require.Len(t, out, 2)

	// CAP-35: margen (12-4)/12 = 66.67 % frente a R32: (90-60)/90 = 33.33 %
	assert.Equal(t, "CAP-35", out[0].SKU)
	assert.Equal(t, 1, out[0].Priority)
	assert.True(t, out[0].IdealStock.Equal(dec("15")))
	assert.True(t, out[0].SuggestedOrderQty.Equal(dec("13")))
	assert.True(t, out[1].SuggestedOrderQty.Equal(dec("5")))
}

func TestProductUseCase_SKUDuplicadoEIVA(t *testing.T) {
	st, _ := newFixture()
	uc := NewProductUseCase(testutil.ProductRepo{Store: st})
	ctx := context.Background()

	_, err := uc.Create(ctx, company, dto.CreateProductRequest{SKU: "R32-5KG", Name: "Otra botella"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(ctx, company, dto.CreateProductRequest{SKU: "X", Name: "X", TaxRate: dec("121")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	p, err := uc.Create(ctx, company, dto.CreateProductRequest{SKU: "FIL-01", Name: "Filtro", TaxRate: dec("21")})
	require.NoError(t, err)
	assert.Equal(t, entity.ProductPart, p.Category)
	assert.Equal(t, "ud", p.Unit)

	_, err = uc.GetByID(ctx, "c2", p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
