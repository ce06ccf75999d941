// Package analytics dashboard e informes de negocio.
package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
)

// fleetAlertWindow horizonte de alertas de flota contadas en el dashboard.
const fleetAlertWindow = 30 * 24 * time.Hour

// DashboardUseCase resumen operativo de la empresa para la pantalla de inicio.
type DashboardUseCase struct {
	reportRepo  repository.ReportRepository
	vehicleRepo repository.VehicleRepository
	now         func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(reportRepo repository.ReportRepository, vehicleRepo repository.VehicleRepository) *DashboardUseCase {
	return &DashboardUseCase{reportRepo: reportRepo, vehicleRepo: vehicleRepo, now: time.Now}
}

// GetSummary lanza las consultas en paralelo. El primer error cancela el resto.
func (uc *DashboardUseCase) GetSummary(ctx context.Context, companyID string) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	out := &dto.DashboardSummaryDTO{DateLabel: monthLabel(now)}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := uc.reportRepo.ServiceOrdersByStatus(gctx, companyID)
		if err != nil {
			return fmt.Errorf("dashboard: órdenes por estado: %w", err)
		}
		out.OrdersByStatus = toMap(rows)
		return nil
	})
	g.Go(func() error {
		n, err := uc.reportRepo.CompletedOrders(gctx, companyID, monthStart, monthEnd)
		if err != nil {
			return fmt.Errorf("dashboard: órdenes completadas: %w", err)
		}
		out.CompletedMonth = n
		return nil
	})
	g.Go(func() error {
		rev, err := uc.reportRepo.Revenue(gctx, companyID, monthStart, monthEnd)
		if err != nil {
			return fmt.Errorf("dashboard: facturación del mes: %w", err)
		}
		out.RevenueMonth = rev.Round(2)
		return nil
	})
	g.Go(func() error {
		rows, err := uc.reportRepo.TicketsByStatus(gctx, companyID)
		if err != nil {
			return fmt.Errorf("dashboard: tickets por estado: %w", err)
		}
		out.TicketsByStatus = toMap(rows)
		return nil
	})
	g.Go(func() error {
		n, err := uc.reportRepo.LowStockCount(gctx, companyID)
		if err != nil {
			return fmt.Errorf("dashboard: stock bajo: %w", err)
		}
		out.LowStock = n
		return nil
	})
	g.Go(func() error {
		vehicles, err := uc.vehicleRepo.ListByCompany(gctx, companyID)
		if err != nil {
			return fmt.Errorf("dashboard: flota: %w", err)
		}
		n := 0
		for _, v := range vehicles {
			n += len(v.Alerts(now, fleetAlertWindow))
		}
		out.FleetAlerts = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func toMap(rows []repository.StatusCount) map[string]int {
	m := make(map[string]int, len(rows))
	for _, r := range rows {
		m[r.Status] = r.Count
	}
	return m
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
