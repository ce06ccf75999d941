//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/climatiza-api/internal/application/billing"
	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/application/service"
	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

// race lanza fn dos veces a la vez y devuelve los dos errores.
func race(fn func(i int) error) []error {
	errs := make([]error, 2)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = fn(i)
		}(i)
	}
	close(start)
	wg.Wait()
	return errs
}

func assertOneWins(t *testing.T, errs []error) {
	t.Helper()
	var ok, conflict int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrConflict):
			conflict++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflict)
}

func TestIntegration_ConvertirOfertaSoloUnaVez(t *testing.T) {
	ctx := context.Background()
	pool := setupPostgres(t, ctx)
	company, user := seedCompany(t, ctx, pool)
	customer := seedCustomer(t, ctx, pool, company.ID)

	uc := billing.NewOfferUseCase(billing.OfferDeps{
		Tx:        NewTxRunner(pool),
		Offers:    NewOfferRepository(pool),
		Customers: NewCustomerRepository(pool),
		Companies: NewCompanyRepository(pool),
		Products:  NewProductRepository(pool),
	})
	offer, err := uc.Create(ctx, company.ID, user.ID, dto.CreateOfferRequest{
		CustomerID: customer.ID,
		Title:      "Aerotermia vivienda",
		Options: []dto.OfferOptionRequest{{
			Name:  "Equipo 8 kW",
			Items: []dto.LineItemRequest{{Description: "Instalación completa", Quantity: decimal.NewFromInt(1), UnitPrice: ptrDec(decimal.NewFromInt(6500))}},
		}},
	})
	require.NoError(t, err)
	_, err = uc.Send(ctx, company.ID, offer.ID)
	require.NoError(t, err)
	_, err = uc.Accept(ctx, company.ID, offer.ID, offer.Options[0].ID)
	require.NoError(t, err)

	assertOneWins(t, race(func(int) error {
		_, err := uc.Convert(ctx, company.ID, user.ID, offer.ID)
		return err
	}))
	assert.Equal(t, 1, countRows(t, ctx, pool, "service_orders"))
}

func TestIntegration_TecnicoSinDobleReserva(t *testing.T) {
	ctx := context.Background()
	pool := setupPostgres(t, ctx)
	company, user := seedCompany(t, ctx, pool)
	customer := seedCustomer(t, ctx, pool, company.ID)

	uc := service.NewOrderUseCase(service.OrderDeps{
		Tx:         NewTxRunner(pool),
		Orders:     NewServiceOrderRepository(pool),
		Customers:  NewCustomerRepository(pool),
		Devices:    NewDeviceRepository(pool),
		Users:      NewUserRepository(pool),
		Warehouses: NewWarehouseRepository(pool),
	})
	var ids []string
	for _, title := range []string{"Revisión caldera", "Reparación split"} {
		o, err := uc.Create(ctx, company.ID, user.ID, dto.CreateServiceOrderRequest{
			CustomerID: customer.ID, Type: entity.OrderRepair, Title: title,
		})
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	assertOneWins(t, race(func(i int) error {
		_, err := uc.Schedule(ctx, company.ID, ids[i], dto.ScheduleRequest{
			TechnicianID: user.ID,
			Start:        start.Add(time.Duration(i) * 30 * time.Minute),
			End:          start.Add(2 * time.Hour),
		})
		return err
	}))
}
