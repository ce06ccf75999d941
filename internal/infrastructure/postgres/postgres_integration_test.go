//go:build integration

package postgres

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

// setupPostgres levanta PostgreSQL en un contenedor y aplica el esquema embebido.
func setupPostgres(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg, err := pgxpool.ParseConfig(fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port()))
	require.NoError(t, err)
	cfg.MaxConns = 5
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(ctx, pool))
	// El esquema es idempotente.
	require.NoError(t, Migrate(ctx, pool))
	return pool
}

func seedCompany(t *testing.T, ctx context.Context, pool *pgxpool.Pool) (*entity.Company, *entity.User) {
	t.Helper()
	now := time.Now()
	company := &entity.Company{ID: uuid.NewString(), Name: "Frío Norte", TaxID: uuid.NewString()[:12], Status: "active", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, NewCompanyRepository(pool).Create(ctx, company))
	user := &entity.User{
		ID: uuid.NewString(), CompanyID: company.ID, Email: uuid.NewString() + "@test.local",
		PasswordHash: "x", Name: "Ana", Role: entity.RoleCoordinador, Status: "active", CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, NewUserRepository(pool).Create(ctx, user))
	return company, user
}

func TestIntegration_RolesSinDuplicados(t *testing.T) {
	ctx := context.Background()
	pool := setupPostgres(t, ctx)
	_, user := seedCompany(t, ctx, pool)
	users := NewUserRepository(pool)

	require.NoError(t, users.AssignRole(ctx, user.ID, entity.RoleTecnico))
	assert.ErrorIs(t, users.AssignRole(ctx, user.ID, entity.RoleTecnico), domain.ErrDuplicate)

	got, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{entity.RoleCoordinador, entity.RoleTecnico}, got.AllRoles())

	require.NoError(t, users.RevokeRole(ctx, user.ID, entity.RoleTecnico))
	assert.ErrorIs(t, users.RevokeRole(ctx, user.ID, entity.RoleTecnico), domain.ErrNotFound)
}

func TestIntegration_ConsecutivosConcurrentes(t *testing.T) {
	ctx := context.Background()
	pool := setupPostgres(t, ctx)
	company, _ := seedCompany(t, ctx, pool)

	var (
		mu   sync.Mutex
		seen = map[int64]bool{}
		wg   sync.WaitGroup
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := NewServiceOrderRepository(pool).NextNumber(ctx, company.ID)
			require.NoError(t, err)
			mu.Lock()
			seen[n] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 10)
	for n := int64(1); n <= 10; n++ {
		assert.True(t, seen[n], "falta el consecutivo %d", n)
	}
}

func TestIntegration_EnlaceMaxViewsAtomico(t *testing.T) {
	ctx := context.Background()
	pool := setupPostgres(t, ctx)
	company, user := seedCompany(t, ctx, pool)
	links := NewLinkRepository(pool)

	link := &entity.DynamicLink{
		ID: uuid.NewString(), CompanyID: company.ID, Token: uuid.NewString(),
		ResourceType: entity.LinkOffer, ResourceID: uuid.NewString(), MaxViews: 3,
		CreatedBy: user.ID, CreatedAt: time.Now(),
	}
	require.NoError(t, links.Create(ctx, link))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			consumed, err := links.IncrementViews(ctx, link.ID)
			require.NoError(t, err)
			if consumed {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, ok)

	got, err := links.GetByToken(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Views)
	assert.ErrorIs(t, got.CheckUsable(time.Now()), domain.ErrLinkExhausted)
}

func TestIntegration_MovimientoInsuficienteHaceRollback(t *testing.T) {
	ctx := context.Background()
	pool := setupPostgres(t, ctx)
	company, user := seedCompany(t, ctx, pool)
	now := time.Now()

	wh := &entity.Warehouse{ID: uuid.NewString(), CompanyID: company.ID, Name: "Furgoneta 1", Type: entity.WarehouseVehicle, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, NewWarehouseRepository(pool).Create(ctx, wh))
	p := &entity.Product{
		ID: uuid.NewString(), CompanyID: company.ID, SKU: "R32-3KG", Name: "Botella R32 3 kg",
		Category: entity.ProductRefrigerant, Price: decimal.NewFromInt(90), TaxRate: decimal.NewFromInt(21),
		Unit: "ud", CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, NewProductRepository(pool).Create(ctx, p))
	require.NoError(t, NewStockRepository(pool).Upsert(ctx, &entity.Stock{ProductID: p.ID, WarehouseID: wh.ID, Quantity: decimal.NewFromInt(2), UpdatedAt: now}))

	err := NewTxRunner(pool).inTx(ctx, func(tx pgx.Tx) error {
		stock := NewStockRepository(tx)
		s, err := stock.GetForUpdate(ctx, p.ID, wh.ID)
		if err != nil {
			return err
		}
		s.Quantity = s.Quantity.Sub(decimal.NewFromInt(1))
		if err := stock.Upsert(ctx, s); err != nil {
			return err
		}
		if err := NewInventoryMovementRepository(tx).Create(ctx, &entity.InventoryMovement{
			ID: uuid.NewString(), CompanyID: company.ID, TransactionID: uuid.NewString(), ProductID: p.ID,
			WarehouseID: wh.ID, Type: entity.MovementTypeOUT, Quantity: decimal.NewFromInt(-1),
			Date: now, CreatedAt: now, CreatedBy: user.ID,
		}); err != nil {
			return err
		}
		return domain.ErrInsufficientStock
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	s, err := NewStockRepository(pool).Get(ctx, p.ID, wh.ID)
	require.NoError(t, err)
	assert.True(t, s.Quantity.Equal(decimal.NewFromInt(2)))
}

func TestIntegration_NotifyListen(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	pool := setupPostgres(t, ctx)

	got := make(chan entity.Event, 1)
	l := NewListener(pool, broadcastFunc(func(ev entity.Event) {
		select {
		case got <- ev:
		default:
		}
	}), zerolog.Nop())
	listenCtx, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = l.Run(listenCtx)
	}()
	defer func() { stop(); <-done }()

	ev := entity.NewEvent(entity.EventTicketMoved, uuid.NewString(), "ticket", uuid.NewString(), map[string]int{"position": 1})
	// El LISTEN puede tardar en quedar activo: se reintenta la publicación.
	n := NewNotifier(pool)
	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()
	for {
		require.NoError(t, n.Publish(ctx, ev))
		select {
		case recv := <-got:
			assert.Equal(t, ev.EntityID, recv.EntityID)
			assert.Equal(t, ev.CompanyID, recv.CompanyID)
			return
		case <-tick.C:
		case <-ctx.Done():
			t.Fatal("no llegó la notificación")
		}
	}
}

type broadcastFunc func(entity.Event)

func (f broadcastFunc) Broadcast(ev entity.Event) { f(ev) }
