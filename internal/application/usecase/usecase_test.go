package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/testutil"
)

var ctx = context.Background()

type analyzerStub struct{}

func (analyzerStub) Analyze(text string) dto.AnalysisResult {
	return dto.AnalysisResult{Category: "leak", Priority: entity.PriorityHigh, Keywords: []string{"fuga"}, Source: ModeKeywords}
}

type llmStub struct {
	out string
	err error
}

func (l llmStub) Complete(context.Context, string, string) (string, error) { return l.out, l.err }
func (llmStub) Name() string                                            { return "stub" }

type recorder struct{ events []entity.Event }

func (r *recorder) Publish(_ context.Context, ev entity.Event) error {
	r.events = append(r.events, ev)
	return nil
}

type providerStub struct{ events []*entity.CalendarEvent }

func (p providerStub) ListEvents(context.Context, time.Time, time.Time) ([]*entity.CalendarEvent, error) {
	return p.events, nil
}

func TestCompany_CIFDuplicado(t *testing.T) {
	st := testutil.NewStore()
	uc := NewCompanyUseCase(testutil.CompanyRepo{Store: st})
	c, err := uc.Create(ctx, dto.CreateCompanyRequest{Name: "Climatiza", TaxID: " b12345678 "})
	require.NoError(t, err)
	assert.Equal(t, "B12345678", c.TaxID)
	_, err = uc.Create(ctx, dto.CreateCompanyRequest{Name: "Otra", TaxID: "B12345678"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = uc.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestModule_ActivarYConsultar(t *testing.T) {
	st := testutil.NewStore()
	st.Companies["c1"] = &entity.Company{ID: "c1"}
	svc := NewModuleService(testutil.ModuleRepo{Store: st}, testutil.CompanyRepo{Store: st})

	_, err := svc.SetModule(ctx, "c1", dto.ActivateModuleRequest{Module: "teleport", Active: true})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.SetModule(ctx, "c9", dto.ActivateModuleRequest{Module: entity.ModuleFleet, Active: true})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.SetModule(ctx, "c1", dto.ActivateModuleRequest{Module: entity.ModuleFleet, Active: true})
	require.NoError(t, err)
	ok, err := svc.HasActiveModule(ctx, "c1", entity.ModuleFleet)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUser_RolPrincipal(t *testing.T) {
	st := testutil.NewStore()
	st.Users["u1"] = &entity.User{ID: "u1", CompanyID: "c1", Email: "a@b.es", Role: entity.RoleTecnico}
	uc := NewUserUseCase(testutil.UserRepo{Store: st})

	_, err := uc.AssignRole(ctx, "c1", "u1", entity.RoleTecnico)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = uc.RevokeRole(ctx, "c1", "u1", entity.RoleTecnico)
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = uc.GetByID(ctx, "c2", "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	out, err := uc.AssignRole(ctx, "c1", "u1", entity.RoleCoordinador)
	require.NoError(t, err)
	assert.Contains(t, out.Roles, entity.RoleCoordinador)
}

func TestAnalyze_LLMConFallback(t *testing.T) {
	ok := NewAIUseCase(analyzerStub{}, llmStub{out: "```json\n{\"category\":\"no_cooling\",\"priority\":\"URGENT\",\"summary\":\"no enfría\"}\n```"}, nil, nil, nil)
	res, err := ok.Analyze(ctx, "el split no enfría", ModeLLM)
	require.NoError(t, err)
	assert.Equal(t, "no_cooling", res.Category)
	assert.Equal(t, entity.PriorityUrgent, res.Priority)
	assert.Equal(t, ModeLLM, res.Source)
	assert.Equal(t, []string{"fuga"}, res.Keywords)

	for _, l := range []llmStub{{err: errors.New("timeout")}, {out: "no sé"}, {out: `{"category":"gas","priority":"máxima"}`}} {
		uc := NewAIUseCase(analyzerStub{}, l, nil, nil, nil)
		res, err := uc.Analyze(ctx, "huele a gas", ModeLLM)
		require.NoError(t, err)
		assert.Equal(t, ModeKeywords, res.Source)
		assert.Equal(t, "leak", res.Category)
	}

	_, err = ok.Analyze(ctx, "   ", ModeKeywords)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProxies_SinProveedor(t *testing.T) {
	uc := NewAIUseCase(analyzerStub{}, nil, nil, nil, nil)
	_, err := uc.Geocode(ctx, "Gran Vía 1, Madrid")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	_, err = uc.Transcribe(ctx, "nota.ogg", strings.NewReader("x"))
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func newFleet() (*testutil.Store, *FleetUseCase, *recorder) {
	st := testutil.NewStore()
	rec := &recorder{}
	uc := NewFleetUseCase(testutil.VehicleRepo{Store: st}, func(w io.Writer, name string, vs []*entity.Vehicle) error {
		_, err := io.WriteString(w, name+":"+vs[0].Plate)
		return err
	}, rec, nil)
	uc.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	return st, uc, rec
}

func TestFleet_MatriculaYPosicion(t *testing.T) {
	_, uc, rec := newFleet()
	v, err := uc.Create(ctx, "c1", dto.VehicleRequest{Plate: " 1234 abc "})
	require.NoError(t, err)
	assert.Equal(t, "1234ABC", v.Plate)
	assert.Equal(t, entity.VehicleActive, v.Status)
	_, err = uc.Create(ctx, "c1", dto.VehicleRequest{Plate: "1234ABC"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	assert.ErrorIs(t, uc.ReportPosition(ctx, "c1", v.ID, dto.PositionRequest{Lat: 91}), domain.ErrInvalidInput)
	assert.ErrorIs(t, uc.ReportPosition(ctx, "c2", v.ID, dto.PositionRequest{Lat: 40.4, Lng: -3.7}), domain.ErrNotFound)
	require.NoError(t, uc.ReportPosition(ctx, "c1", v.ID, dto.PositionRequest{Lat: 40.4, Lng: -3.7}))

	got, err := uc.Get(ctx, "c1", v.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLat)
	assert.Equal(t, 40.4, *got.LastLat)
	require.Len(t, rec.events, 1)
	assert.Equal(t, entity.EventVehicleMoved, rec.events[0].Type)

	var buf bytes.Buffer
	require.NoError(t, uc.ExportKML(ctx, "c1", "Flota", &buf))
	assert.Equal(t, "Flota:1234ABC", buf.String())
}

func TestFleet_Alertas(t *testing.T) {
	_, uc, _ := newFleet()
	past := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	soon := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	far := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err := uc.Create(ctx, "c1", dto.VehicleRequest{Plate: "A1", InspectionDue: &past, InsuranceDue: &far})
	require.NoError(t, err)
	_, err = uc.Create(ctx, "c1", dto.VehicleRequest{Plate: "B2", InsuranceDue: &soon})
	require.NoError(t, err)
	_, err = uc.Create(ctx, "c1", dto.VehicleRequest{Plate: "C3", InspectionDue: &past, Status: entity.VehicleRetired})
	require.NoError(t, err)

	alerts, err := uc.Alerts(ctx, "c1", 0)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "A1", alerts[0].Plate)
	assert.True(t, alerts[0].Overdue)
	assert.Equal(t, entity.AlertInsurance, alerts[1].Kind)
	assert.False(t, alerts[1].Overdue)

	alerts, err = uc.Alerts(ctx, "c1", 365)
	require.NoError(t, err)
	assert.Len(t, alerts, 3)
}

func TestCalendar_RangoUneOrdenes(t *testing.T) {
	st := testutil.NewStore()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	at := func(h int) *time.Time { x := day.Add(time.Duration(h) * time.Hour); return &x }
	st.Orders["o1"] = &entity.ServiceOrder{ID: "o1", CompanyID: "c1", Number: "SO-000001", Title: "Revisión", Status: entity.OrderStatusScheduled, TechnicianID: "t1", ScheduledStart: at(9), ScheduledEnd: at(11)}
	st.Orders["o2"] = &entity.ServiceOrder{ID: "o2", CompanyID: "c1", Number: "SO-000002", Status: entity.OrderStatusCancelled, TechnicianID: "t1", ScheduledStart: at(12), ScheduledEnd: at(13)}
	uc := NewCalendarUseCase(testutil.CalendarRepo{Store: st}, testutil.OrderRepo{Store: st}, nil)

	_, err := uc.Create(ctx, "c1", dto.CreateCalendarEventRequest{Title: "Reunión", Start: *at(8), End: *at(9), TechnicianID: "t1"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, "c1", dto.CreateCalendarEventRequest{Title: "Mal", Start: *at(9), End: *at(8)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err := uc.Range(ctx, "c1", day, day.Add(24*time.Hour), "t1")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, entity.EventMeeting, out[0].Kind)
	assert.Equal(t, entity.EventServiceOrder, out[1].Kind)
	assert.Equal(t, "o1", out[1].ServiceOrderID)

	_, err = uc.Range(ctx, "c1", day, day.Add(100*24*time.Hour), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCalendar_InstalacionDeVariosDias(t *testing.T) {
	st := testutil.NewStore()
	lunes := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	viernes := lunes.Add(4*24*time.Hour + 9*time.Hour)
	st.Orders["o1"] = &entity.ServiceOrder{ID: "o1", CompanyID: "c1", Number: "SO-000001", Title: "Instalación VRV", Status: entity.OrderStatusInProgress, TechnicianID: "t1", ScheduledStart: &lunes, ScheduledEnd: &viernes}
	ayer := lunes.Add(-48 * time.Hour)
	st.Orders["o2"] = &entity.ServiceOrder{ID: "o2", CompanyID: "c1", Number: "SO-000002", Status: entity.OrderStatusCompleted, TechnicianID: "t1", ScheduledStart: &ayer, ScheduledEnd: &lunes}
	uc := NewCalendarUseCase(testutil.CalendarRepo{Store: st}, testutil.OrderRepo{Store: st}, nil)

	// Jueves: la orden empezó tres días antes y sigue en curso.
	jueves := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	out, err := uc.Range(ctx, "c1", jueves, jueves.Add(24*time.Hour), "")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "o1", out[0].ServiceOrderID)
}

func TestCalendar_SyncIdempotente(t *testing.T) {
	st := testutil.NewStore()
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ext := func() []*entity.CalendarEvent {
		return []*entity.CalendarEvent{
			{Title: "Visita comercial", ExternalID: "AAMk1", Start: from.Add(2 * time.Hour), End: from.Add(3 * time.Hour)},
			{Title: "sin id"},
		}
	}
	uc := NewCalendarUseCase(testutil.CalendarRepo{Store: st}, testutil.OrderRepo{Store: st}, nil)
	_, err := uc.Sync(ctx, "c1", from, from.Add(time.Hour))
	assert.ErrorIs(t, err, domain.ErrUnavailable)

	for i := 0; i < 2; i++ {
		uc.provider = providerStub{events: ext()}
		res, err := uc.Sync(ctx, "c1", from, from.Add(7*24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 2, res.Fetched)
		assert.Equal(t, 1, res.Upserted)
	}
	require.Len(t, st.Events, 1)
	for id, ev := range st.Events {
		assert.Equal(t, entity.EventSourceExternal, ev.Source)
		assert.ErrorIs(t, uc.Delete(ctx, "c1", id), domain.ErrConflict)
	}
}
