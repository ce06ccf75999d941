package analytics

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
	"github.com/jhoicas/climatiza-api/internal/testutil"
)

type reportRepo struct {
	testutil.ReportStub
	revenueErr error
	from, to   time.Time
	margins    []repository.SKUMarginResult
	rows       []repository.ServiceOrderReportRow
}

func (r *reportRepo) ServiceOrdersByStatus(context.Context, string) ([]repository.StatusCount, error) {
	return []repository.StatusCount{{Status: entity.OrderStatusNew, Count: 3}, {Status: entity.OrderStatusScheduled, Count: 2}}, nil
}

func (r *reportRepo) Revenue(_ context.Context, _ string, from, to time.Time) (decimal.Decimal, error) {
	r.from, r.to = from, to
	return decimal.RequireFromString("1234.567"), r.revenueErr
}

func (r *reportRepo) LowStockCount(context.Context, string) (int, error) { return 4, nil }

func (r *reportRepo) GetSKUMargins(context.Context, string, time.Time, time.Time, int) ([]repository.SKUMarginResult, error) {
	return r.margins, nil
}

func (r *reportRepo) ServiceOrderReport(_ context.Context, _ string, from, to time.Time) ([]repository.ServiceOrderReportRow, error) {
	r.from, r.to = from, to
	return r.rows, nil
}

func TestDashboard_ResumenEnParalelo(t *testing.T) {
	st := testutil.NewStore()
	due := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	st.Vehicles["v1"] = &entity.Vehicle{ID: "v1", CompanyID: "c1", Plate: "1234ABC", Status: entity.VehicleActive, InspectionDue: &due, InsuranceDue: &due}
	repo := &reportRepo{}
	uc := NewDashboardUseCase(repo, testutil.VehicleRepo{Store: st})
	uc.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }

	out, err := uc.GetSummary(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 3, out.OrdersByStatus[entity.OrderStatusNew])
	assert.True(t, out.RevenueMonth.Equal(decimal.RequireFromString("1234.57")))
	assert.Equal(t, 4, out.LowStock)
	assert.Equal(t, 2, out.FleetAlerts)
	assert.Equal(t, "Marzo 2026", out.DateLabel)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), repo.from)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), repo.to)
}

func TestDashboard_ErrorDeUnaConsulta(t *testing.T) {
	repo := &reportRepo{revenueErr: errors.New("conexión perdida")}
	uc := NewDashboardUseCase(repo, testutil.VehicleRepo{Store: testutil.NewStore()})

	_, err := uc.GetSummary(context.Background(), "c1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "facturación del mes")
}

func TestMargins_Pareto(t *testing.T) {
	d := decimal.RequireFromString
	repo := &reportRepo{margins: []repository.SKUMarginResult{
		{SKU: "SPL-35", GrossRevenue: d("700"), GrossProfit: d("210")},
		{SKU: "R32", GrossRevenue: d("200"), GrossProfit: d("100")},
		{SKU: "CAP", GrossRevenue: d("100"), GrossProfit: d("60")},
	}}
	uc := NewReportUseCase(repo, nil)

	out, err := uc.Margins(context.Background(), "c1", dto.ReportPeriodRequest{StartDate: "2026-01-01", EndDate: "2026-01-31"})
	require.NoError(t, err)
	require.Len(t, out.SKURanking, 3)
	assert.True(t, out.SKURanking[0].MarginPct.Equal(d("30")))
	assert.True(t, out.SKURanking[1].CumulativeRevPct.Equal(d("90")))
	// 70 % < 80 → entra el segundo, que cruza el umbral; el tercero no
	assert.Len(t, out.ParetoSKUs, 2)
	assert.True(t, out.TotalProfit.Equal(d("370")))
}

func TestParsePeriod(t *testing.T) {
	uc := NewReportUseCase(&reportRepo{}, nil)
	uc.now = func() time.Time { return time.Date(2026, 5, 14, 9, 30, 0, 0, time.UTC) }

	from, to, err := uc.parsePeriod("", "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC), to)

	_, _, err = uc.parsePeriod("2026-05-10", "2026-05-01")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, _, err = uc.parsePeriod("10/05/2026", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, _, err = uc.parsePeriod("2024-01-01", "2026-01-01")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

type sheetStub struct{ rows int }

func (s *sheetStub) WriteServiceOrders(w io.Writer, rows []repository.ServiceOrderReportRow) error {
	s.rows = len(rows)
	_, err := w.Write([]byte("PK"))
	return err
}

func TestExportServiceOrders(t *testing.T) {
	repo := &reportRepo{rows: []repository.ServiceOrderReportRow{{Number: "SO-000001"}, {Number: "SO-000002"}}}
	sheet := &sheetStub{}
	uc := NewReportUseCase(repo, sheet)
	var buf bytes.Buffer

	name, err := uc.ExportServiceOrders(context.Background(), "c1", dto.ReportPeriodRequest{StartDate: "2026-02-01", EndDate: "2026-02-28"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, "ordenes_20260201_20260301.xlsx", name)
	assert.Equal(t, 2, sheet.rows)
	assert.Equal(t, "PK", buf.String())
}
