//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/climatiza-api/internal/application/billing"
	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/application/inventory"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

// ghostProducts devuelve un producto que no existe en la base, así la FK de offer_items falla.
type ghostProducts struct {
	*ProductRepo
	companyID string
}

func (g ghostProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return &entity.Product{ID: id, CompanyID: g.companyID, Name: "Fantasma", Price: decimal.NewFromInt(10), TaxRate: decimal.NewFromInt(21)}, nil
}

func seedCustomer(t *testing.T, ctx context.Context, pool *pgxpool.Pool, companyID string) *entity.Customer {
	t.Helper()
	now := time.Now()
	c := &entity.Customer{ID: uuid.NewString(), CompanyID: companyID, Name: "Comunidad Olmos 4", Type: entity.CustomerCommercial, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, NewCustomerRepository(pool).Create(ctx, c))
	return c
}

func countRows(t *testing.T, ctx context.Context, pool *pgxpool.Pool, table string) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(ctx, "SELECT count(*) FROM "+table).Scan(&n))
	return n
}

func TestIntegration_OfertaFallidaNoDejaRestos(t *testing.T) {
	ctx := context.Background()
	pool := setupPostgres(t, ctx)
	company, user := seedCompany(t, ctx, pool)
	customer := seedCustomer(t, ctx, pool, company.ID)

	uc := billing.NewOfferUseCase(billing.OfferDeps{
		Tx:        NewTxRunner(pool),
		Offers:    NewOfferRepository(pool),
		Customers: NewCustomerRepository(pool),
		Companies: NewCompanyRepository(pool),
		Products:  ghostProducts{ProductRepo: NewProductRepository(pool), companyID: company.ID},
	})
	_, err := uc.Create(ctx, company.ID, user.ID, dto.CreateOfferRequest{
		CustomerID: customer.ID,
		Title:      "Split 3x1 salón",
		Options: []dto.OfferOptionRequest{{
			Name: "Básica",
			Items: []dto.LineItemRequest{
				{Description: "Instalación", Quantity: decimal.NewFromInt(1), UnitPrice: ptrDec(decimal.NewFromInt(300))},
				{ProductID: uuid.NewString(), Quantity: decimal.NewFromInt(1)},
			},
		}},
	})
	require.Error(t, err)

	assert.Zero(t, countRows(t, ctx, pool, "offers"))
	assert.Zero(t, countRows(t, ctx, pool, "offer_options"))
	assert.Zero(t, countRows(t, ctx, pool, "offer_items"))
}

func ptrDec(d decimal.Decimal) *decimal.Decimal { return &d }

func TestIntegration_CostoPromedioSumaTodasLasBodegas(t *testing.T) {
	ctx := context.Background()
	pool := setupPostgres(t, ctx)
	company, user := seedCompany(t, ctx, pool)
	now := time.Now()

	central := &entity.Warehouse{ID: uuid.NewString(), CompanyID: company.ID, Name: "Central", Type: entity.WarehouseMain, CreatedAt: now, UpdatedAt: now}
	van := &entity.Warehouse{ID: uuid.NewString(), CompanyID: company.ID, Name: "Furgoneta 2", Type: entity.WarehouseVehicle, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, NewWarehouseRepository(pool).Create(ctx, central))
	require.NoError(t, NewWarehouseRepository(pool).Create(ctx, van))
	p := &entity.Product{
		ID: uuid.NewString(), CompanyID: company.ID, SKU: "CAP-35", Name: "Condensador 35uF",
		Category: entity.ProductPart, Price: decimal.NewFromInt(12), TaxRate: decimal.NewFromInt(21),
		Unit: "ud", CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, NewProductRepository(pool).Create(ctx, p))

	uc := inventory.NewRegisterMovementUseCase(NewTxRunner(pool), NewProductRepository(pool), NewWarehouseRepository(pool))
	for _, in := range []struct {
		warehouse string
		qty, cost int64
	}{{central.ID, 100, 10}, {van.ID, 10, 20}} {
		cost := decimal.NewFromInt(in.cost)
		_, err := uc.RegisterMovement(ctx, inventory.MovementInputDTO{
			CompanyID: company.ID, UserID: user.ID, ProductID: p.ID, WarehouseID: in.warehouse,
			Type: entity.MovementTypeIN, Quantity: decimal.NewFromInt(in.qty), UnitCost: &cost,
		})
		require.NoError(t, err)
	}

	got, err := NewProductRepository(pool).GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Cost.Equal(decimal.RequireFromString("10.9091")), got.Cost.String())
}

func TestIntegration_MoverTicketRenumeraColumnas(t *testing.T) {
	ctx := context.Background()
	pool := setupPostgres(t, ctx)
	company, _ := seedCompany(t, ctx, pool)
	repo := NewTicketRepository(pool)
	now := time.Now()

	ids := map[string]string{}
	for i, name := range []string{"A", "B", "C"} {
		tk := &entity.Ticket{
			ID: uuid.NewString(), CompanyID: company.ID, Title: name, Status: entity.TicketOpen,
			Priority: "normal", Position: i, CreatedAt: now.Add(time.Duration(i) * time.Second), UpdatedAt: now,
		}
		require.NoError(t, repo.Create(ctx, tk))
		ids[name] = tk.ID
	}

	require.NoError(t, repo.Move(ctx, ids["C"], entity.TicketOpen, 0))
	positions := func() map[string][2]any {
		out := map[string][2]any{}
		for name, id := range ids {
			tk, err := repo.GetByID(ctx, id)
			require.NoError(t, err)
			out[name] = [2]any{tk.Status, tk.Position}
		}
		return out
	}
	assert.Equal(t, map[string][2]any{
		"A": {entity.TicketOpen, 1}, "B": {entity.TicketOpen, 2}, "C": {entity.TicketOpen, 0},
	}, positions())

	require.NoError(t, repo.Move(ctx, ids["A"], entity.TicketInProgress, 5))
	assert.Equal(t, map[string][2]any{
		"A": {entity.TicketInProgress, 0}, "B": {entity.TicketOpen, 1}, "C": {entity.TicketOpen, 0},
	}, positions())
}
