package analytics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
)

const (
	defaultTopN     = 20
	maxTopN         = 200
	paretoThreshold = 80 // el top de artículos que acumula el 80 % de la facturación
	maxReportRange  = 366 * 24 * time.Hour
)

var (
	hundred  = decimal.NewFromInt(100)
	pareto80 = decimal.NewFromInt(paretoThreshold)
)

// ServiceOrderSheetWriter serializa el informe de órdenes (xlsx).
type ServiceOrderSheetWriter interface {
	WriteServiceOrders(w io.Writer, rows []repository.ServiceOrderReportRow) error
}

// ReportUseCase informes por rango de fechas.
type ReportUseCase struct {
	reportRepo repository.ReportRepository
	sheet      ServiceOrderSheetWriter
	now        func() time.Time
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(reportRepo repository.ReportRepository, sheet ServiceOrderSheetWriter) *ReportUseCase {
	return &ReportUseCase{reportRepo: reportRepo, sheet: sheet, now: time.Now}
}

// Workload carga de trabajo por técnico en el periodo.
func (uc *ReportUseCase) Workload(ctx context.Context, companyID string, req dto.ReportPeriodRequest) (*dto.WorkloadReportDTO, error) {
	from, to, err := uc.parsePeriod(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	rows, err := uc.reportRepo.TechnicianWorkload(ctx, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("informe de carga: %w", err)
	}
	out := &dto.WorkloadReportDTO{From: from, To: to, Technicians: make([]dto.TechnicianWorkloadDTO, 0, len(rows))}
	for _, r := range rows {
		out.Technicians = append(out.Technicians, dto.TechnicianWorkloadDTO{
			TechnicianID: r.TechnicianID, TechnicianName: r.TechnicianName,
			Orders: r.Orders, Completed: r.Completed,
			ScheduledHours: r.ScheduledHours.Round(2), LaborHours: r.LaborHours.Round(2),
		})
	}
	return out, nil
}

// ExportServiceOrders escribe el informe de órdenes del periodo en w y devuelve el nombre de archivo sugerido.
func (uc *ReportUseCase) ExportServiceOrders(ctx context.Context, companyID string, req dto.ReportPeriodRequest, w io.Writer) (string, error) {
	from, to, err := uc.parsePeriod(req.StartDate, req.EndDate)
	if err != nil {
		return "", err
	}
	rows, err := uc.reportRepo.ServiceOrderReport(ctx, companyID, from, to)
	if err != nil {
		return "", fmt.Errorf("informe de órdenes: %w", err)
	}
	if err := uc.sheet.WriteServiceOrders(w, rows); err != nil {
		return "", fmt.Errorf("informe de órdenes: xlsx: %w", err)
	}
	return fmt.Sprintf("ordenes_%s_%s.xlsx", from.Format("20060102"), to.Format("20060102")), nil
}

// Margins ranking de artículos facturados por beneficio bruto con análisis Pareto.
func (uc *ReportUseCase) Margins(ctx context.Context, companyID string, req dto.ReportPeriodRequest) (*dto.MarginsReportDTO, error) {
	from, to, err := uc.parsePeriod(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	topN := req.TopN
	if topN <= 0 {
		topN = defaultTopN
	}
	if topN > maxTopN {
		topN = maxTopN
	}
	rows, err := uc.reportRepo.GetSKUMargins(ctx, companyID, from, to, topN)
	if err != nil {
		return nil, fmt.Errorf("informe de márgenes: %w", err)
	}
	ranking := buildSKURanking(rows)
	out := &dto.MarginsReportDTO{
		StartDate: from.Format("2006-01-02"), EndDate: to.Format("2006-01-02"),
		SKURanking: ranking, ParetoSKUs: []dto.SKURankingDTO{},
	}
	for _, r := range ranking {
		out.TotalRevenue = out.TotalRevenue.Add(r.GrossRevenue)
		out.TotalProfit = out.TotalProfit.Add(r.GrossProfit)
		if r.IsTopPareto {
			out.ParetoSKUs = append(out.ParetoSKUs, r)
		}
	}
	return out, nil
}

// buildSKURanking añade a cada fila su posición, % de margen, % de ingreso y acumulado.
// IsTopPareto incluye el artículo que cruza el umbral.
func buildSKURanking(rows []repository.SKUMarginResult) []dto.SKURankingDTO {
	if len(rows) == 0 {
		return []dto.SKURankingDTO{}
	}
	var totalRevenue decimal.Decimal
	for _, r := range rows {
		totalRevenue = totalRevenue.Add(r.GrossRevenue)
	}

	ranking := make([]dto.SKURankingDTO, 0, len(rows))
	var cumulative decimal.Decimal
	for i, r := range rows {
		marginPct := decimal.Zero
		if r.GrossRevenue.IsPositive() {
			marginPct = r.GrossProfit.Div(r.GrossRevenue).Mul(hundred).Round(2)
		}
		revenuePct := decimal.Zero
		if totalRevenue.IsPositive() {
			revenuePct = r.GrossRevenue.Div(totalRevenue).Mul(hundred).Round(2)
		}
		before := cumulative
		cumulative = cumulative.Add(revenuePct)
		ranking = append(ranking, dto.SKURankingDTO{
			Rank:             i + 1,
			ProductID:        r.ProductID,
			SKU:              r.SKU,
			ProductName:      r.ProductName,
			UnitsSold:        r.UnitsSold,
			GrossRevenue:     r.GrossRevenue.Round(2),
			TotalCOGS:        r.TotalCOGS.Round(2),
			GrossProfit:      r.GrossProfit.Round(2),
			MarginPct:        marginPct,
			RevenuePct:       revenuePct,
			CumulativeRevPct: cumulative.Round(2),
			IsTopPareto:      before.LessThan(pareto80),
		})
	}
	return ranking
}

// parsePeriod convierte YYYY-MM-DD a un rango [start, end). Por defecto, el mes en curso.
// end es inclusivo en la entrada: se devuelve el inicio del día siguiente.
func (uc *ReportUseCase) parsePeriod(startStr, endStr string) (start, end time.Time, err error) {
	now := uc.now()
	loc := now.Location()
	if startStr == "" {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	} else if start, err = time.ParseInLocation("2006-01-02", startStr, loc); err != nil {
		return time.Time{}, time.Time{}, errors.Join(domain.ErrInvalidInput, fmt.Errorf("start_date inválido: %w", err))
	}
	if endStr == "" {
		end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	} else {
		if end, err = time.ParseInLocation("2006-01-02", endStr, loc); err != nil {
			return time.Time{}, time.Time{}, errors.Join(domain.ErrInvalidInput, fmt.Errorf("end_date inválido: %w", err))
		}
		end = end.AddDate(0, 0, 1)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, errors.Join(domain.ErrInvalidInput, errors.New("start_date no puede ser posterior a end_date"))
	}
	if end.Sub(start) > maxReportRange {
		return time.Time{}, time.Time{}, errors.Join(domain.ErrInvalidInput, errors.New("el rango máximo es de un año"))
	}
	return start, end, nil
}
