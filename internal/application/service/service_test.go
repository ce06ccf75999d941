package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/application/inventory"
	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/testutil"
)

const company = "c1"

type recorder struct {
	mu     sync.Mutex
	events []entity.Event
}

func (r *recorder) Publish(_ context.Context, ev entity.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func at(h int) *time.Time {
	t := time.Date(2026, 6, 1, h, 0, 0, 0, time.UTC)
	return &t
}

func orderFixture() (*testutil.Store, *OrderUseCase, *recorder) {
	st := testutil.NewStore()
	st.Customers["cu1"] = &entity.Customer{ID: "cu1", CompanyID: company, Name: "Ana"}
	st.Devices["d1"] = &entity.Device{ID: "d1", CompanyID: company, CustomerID: "cu1", Kind: entity.DeviceHeatPump}
	st.Users["t1"] = &entity.User{ID: "t1", CompanyID: company, Role: entity.RoleTecnico}
	st.Users["t9"] = &entity.User{ID: "t9", CompanyID: "c2", Role: entity.RoleTecnico}
	st.Warehouses["van"] = &entity.Warehouse{ID: "van", CompanyID: company, Type: entity.WarehouseVehicle}
	st.Products["p1"] = &entity.Product{ID: "p1", CompanyID: company, SKU: "CAP-35", Name: "Condensador 35uF", Category: entity.ProductPart, Price: decimal.NewFromInt(12)}
	rec := &recorder{}
	inv := inventory.NewRegisterMovementUseCase(testutil.TxRunner{Store: st}, testutil.ProductRepo{Store: st}, testutil.WarehouseRepo{Store: st})
	uc := NewOrderUseCase(OrderDeps{
		Tx:         testutil.TxRunner{Store: st},
		Orders:     testutil.OrderRepo{Store: st},
		Customers:  testutil.CustomerRepo{Store: st},
		Devices:    testutil.DeviceRepo{Store: st},
		Users:      testutil.UserRepo{Store: st},
		Warehouses: testutil.WarehouseRepo{Store: st},
		Stock:      inv,
		Events:     rec,
	})
	return st, uc, rec
}

func TestOrderCreate_NumeracionYEstado(t *testing.T) {
	_, uc, rec := orderFixture()
	ctx := context.Background()

	a, err := uc.Create(ctx, company, "u1", dto.CreateServiceOrderRequest{CustomerID: "cu1", Type: entity.OrderRepair, Title: "No enfría"})
	require.NoError(t, err)
	b, err := uc.Create(ctx, company, "u1", dto.CreateServiceOrderRequest{CustomerID: "cu1", Type: entity.OrderMaintenance, Title: "Revisión", TechnicianID: "t1", ScheduledStart: at(9), ScheduledEnd: at(11)})
	require.NoError(t, err)

	assert.Equal(t, "SO-000001", a.Number)
	assert.Equal(t, entity.OrderStatusNew, a.Status)
	assert.Equal(t, entity.PriorityNormal, a.Priority)
	assert.Equal(t, "SO-000002", b.Number)
	assert.Equal(t, entity.OrderStatusScheduled, b.Status)
	assert.Equal(t, []string{entity.EventOrderCreated, entity.EventOrderCreated}, rec.types())
}

func TestOrderCreate_Validaciones(t *testing.T) {
	_, uc, _ := orderFixture()
	ctx := context.Background()
	cases := []struct {
		name string
		in   dto.CreateServiceOrderRequest
		want error
	}{
		{"tipo desconocido", dto.CreateServiceOrderRequest{CustomerID: "cu1", Type: "otro", Title: "x"}, domain.ErrInvalidInput},
		{"sin título", dto.CreateServiceOrderRequest{CustomerID: "cu1", Type: entity.OrderRepair}, domain.ErrInvalidInput},
		{"cliente ajeno", dto.CreateServiceOrderRequest{CustomerID: "nadie", Type: entity.OrderRepair, Title: "x"}, domain.ErrNotFound},
		{"franja invertida", dto.CreateServiceOrderRequest{CustomerID: "cu1", Type: entity.OrderRepair, Title: "x", ScheduledStart: at(11), ScheduledEnd: at(9)}, domain.ErrInvalidInput},
		{"técnico de otra empresa", dto.CreateServiceOrderRequest{CustomerID: "cu1", Type: entity.OrderRepair, Title: "x", TechnicianID: "t9"}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Create(ctx, company, "u1", tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestOrderSchedule_RechazaDobleReserva(t *testing.T) {
	st, uc, rec := orderFixture()
	ctx := context.Background()
	_, err := uc.Create(ctx, company, "u1", dto.CreateServiceOrderRequest{CustomerID: "cu1", Type: entity.OrderRepair, Title: "A", TechnicianID: "t1", ScheduledStart: at(9), ScheduledEnd: at(11)})
	require.NoError(t, err)
	b, err := uc.Create(ctx, company, "u1", dto.CreateServiceOrderRequest{CustomerID: "cu1", Type: entity.OrderRepair, Title: "B"})
	require.NoError(t, err)

	_, err = uc.Schedule(ctx, company, b.ID, dto.ScheduleRequest{TechnicianID: "t1", Start: *at(10), End: *at(12)})
	assert.ErrorIs(t, err, domain.ErrConflict)

	out, err := uc.Schedule(ctx, company, b.ID, dto.ScheduleRequest{TechnicianID: "t1", Start: *at(11), End: *at(13)})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusScheduled, out.Status)
	assert.Contains(t, rec.types(), entity.EventOrderSchedule)
	// Cada comprobación de solape va precedida del bloqueo del técnico.
	assert.Equal(t, []string{"t1", "t1", "t1"}, st.TechnicianLocks)
}

func TestOrderChangeStatus_MaquinaDeEstadosYEquipo(t *testing.T) {
	st, uc, rec := orderFixture()
	ctx := context.Background()
	o, err := uc.Create(ctx, company, "u1", dto.CreateServiceOrderRequest{CustomerID: "cu1", DeviceID: "d1", Type: entity.OrderMaintenance, Title: "Revisión anual", TechnicianID: "t1", ScheduledStart: at(9), ScheduledEnd: at(10)})
	require.NoError(t, err)

	_, err = uc.ChangeStatus(ctx, company, o.ID, entity.OrderStatusCompleted)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = uc.ChangeStatus(ctx, company, o.ID, entity.OrderStatusInProgress)
	require.NoError(t, err)
	done, err := uc.ChangeStatus(ctx, company, o.ID, entity.OrderStatusCompleted)
	require.NoError(t, err)

	require.NotNil(t, done.CompletedAt)
	d := st.Devices["d1"]
	require.NotNil(t, d.LastServiceAt)
	require.NotNil(t, d.NextServiceAt)
	assert.Equal(t, d.LastServiceAt.AddDate(0, 6, 0), *d.NextServiceAt)

	_, err = uc.ChangeStatus(ctx, company, o.ID, entity.OrderStatusCancelled)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Contains(t, rec.types(), entity.EventOrderStatus)

	_, err = uc.ChangeStatus(ctx, "c2", o.ID, entity.OrderStatusCancelled)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderChangeStatus_DesprogramarLiberaFranja(t *testing.T) {
	_, uc, _ := orderFixture()
	ctx := context.Background()
	o, err := uc.Create(ctx, company, "u1", dto.CreateServiceOrderRequest{CustomerID: "cu1", Type: entity.OrderRepair, Title: "A", TechnicianID: "t1", ScheduledStart: at(9), ScheduledEnd: at(11)})
	require.NoError(t, err)

	out, err := uc.ChangeStatus(ctx, company, o.ID, entity.OrderStatusNew)
	require.NoError(t, err)
	assert.Nil(t, out.ScheduledStart)

	_, err = uc.ChangeStatus(ctx, company, o.ID, entity.OrderStatusScheduled)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOrderAddPart_DescuentaStockDeLaFurgoneta(t *testing.T) {
	st, uc, _ := orderFixture()
	st.SetStock("p1", "van", decimal.NewFromInt(3))
	ctx := context.Background()
	o, err := uc.Create(ctx, company, "u1", dto.CreateServiceOrderRequest{CustomerID: "cu1", Type: entity.OrderRepair, Title: "Cambio condensador"})
	require.NoError(t, err)

	part, err := uc.AddPart(ctx, company, "t1", o.ID, dto.AddPartRequest{ProductID: "p1", WarehouseID: "van", Quantity: decimal.NewFromInt(2)})
	require.NoError(t, err)
	assert.True(t, part.UnitPrice.Equal(decimal.NewFromInt(12)))
	assert.True(t, st.StockOf("p1", "van").Equal(decimal.NewFromInt(1)))
	require.Len(t, st.Movements, 1)
	assert.Equal(t, o.Number, st.Movements[0].Reference)

	_, err = uc.AddPart(ctx, company, "t1", o.ID, dto.AddPartRequest{ProductID: "p1", WarehouseID: "van", Quantity: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	full, err := uc.Get(ctx, company, o.ID)
	require.NoError(t, err)
	assert.Len(t, full.Parts, 1)
}

type analyzerStub struct{}

func (analyzerStub) Analyze(string) dto.AnalysisResult {
	return dto.AnalysisResult{Category: "leak", Priority: entity.PriorityHigh, Suggestions: []string{"Revisar desagüe"}, Source: "keywords"}
}

func TestTicketCreate_SugiereCategoriaYPrioridad(t *testing.T) {
	st := testutil.NewStore()
	rec := &recorder{}
	uc := NewTicketUseCase(testutil.TicketRepo{Store: st}, analyzerStub{}, rec, nil)
	ctx := context.Background()

	a, err := uc.Create(ctx, company, "u1", dto.CreateTicketRequest{Title: "Gotea la split del salón"})
	require.NoError(t, err)
	assert.Equal(t, "leak", a.Category)
	assert.Equal(t, entity.PriorityHigh, a.Priority)
	assert.Equal(t, []string{"Revisar desagüe"}, a.Suggestions)
	assert.Equal(t, 0, a.Position)

	b, err := uc.Create(ctx, company, "u1", dto.CreateTicketRequest{Title: "Otro", Category: "billing", Priority: entity.PriorityLow})
	require.NoError(t, err)
	assert.Equal(t, "billing", b.Category)
	assert.Equal(t, entity.PriorityLow, b.Priority)
	assert.Equal(t, 1, b.Position)

	_, err = uc.Create(ctx, company, "u1", dto.CreateTicketRequest{Title: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, []string{entity.EventTicketCreated, entity.EventTicketCreated}, rec.types())
}

func TestTicketMove_DesplazaColumnas(t *testing.T) {
	st := testutil.NewStore()
	uc := NewTicketUseCase(testutil.TicketRepo{Store: st}, nil, nil, nil)
	ctx := context.Background()
	a, _ := uc.Create(ctx, company, "u1", dto.CreateTicketRequest{Title: "A"})
	b, _ := uc.Create(ctx, company, "u1", dto.CreateTicketRequest{Title: "B"})
	c, _ := uc.Create(ctx, company, "u1", dto.CreateTicketRequest{Title: "C"})

	_, err := uc.Move(ctx, company, c.ID, dto.MoveTicketRequest{Status: entity.TicketOpen, Position: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, st.Tickets[c.ID].Position)
	assert.Equal(t, 1, st.Tickets[a.ID].Position)
	assert.Equal(t, 2, st.Tickets[b.ID].Position)

	// Al salir de la columna se cierra el hueco.
	_, err = uc.Move(ctx, company, a.ID, dto.MoveTicketRequest{Status: entity.TicketInProgress, Position: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, st.Tickets[c.ID].Position)
	assert.Equal(t, 1, st.Tickets[b.ID].Position)
	assert.Equal(t, 0, st.Tickets[a.ID].Position)

	board, err := uc.Board(ctx, company, "")
	require.NoError(t, err)
	require.Len(t, board.Columns[0].Tickets, 2)
	assert.Equal(t, c.ID, board.Columns[0].Tickets[0].ID)
	assert.Equal(t, b.ID, board.Columns[0].Tickets[1].ID)
}

func TestTicketMove_AcotaPosicionYPublica(t *testing.T) {
	st := testutil.NewStore()
	rec := &recorder{}
	uc := NewTicketUseCase(testutil.TicketRepo{Store: st}, nil, rec, nil)
	ctx := context.Background()
	a, _ := uc.Create(ctx, company, "u1", dto.CreateTicketRequest{Title: "A"})
	b, _ := uc.Create(ctx, company, "u1", dto.CreateTicketRequest{Title: "B"})

	moved, err := uc.Move(ctx, company, a.ID, dto.MoveTicketRequest{Status: entity.TicketInProgress, Position: 40})
	require.NoError(t, err)
	assert.Equal(t, 0, moved.Position)
	assert.Equal(t, entity.TicketInProgress, st.Tickets[a.ID].Status)

	_, err = uc.Move(ctx, company, b.ID, dto.MoveTicketRequest{Status: "archivado"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	board, err := uc.Board(ctx, company, "")
	require.NoError(t, err)
	require.Len(t, board.Columns, len(entity.TicketColumns))
	assert.Equal(t, entity.TicketOpen, board.Columns[0].Status)
	assert.Len(t, board.Columns[0].Tickets, 1)
	assert.Len(t, board.Columns[1].Tickets, 1)
	assert.Empty(t, board.Columns[4].Tickets)

	assert.Equal(t, entity.EventTicketMoved, rec.types()[len(rec.types())-1])
}
