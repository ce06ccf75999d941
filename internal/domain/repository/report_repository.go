package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StatusCount conteo por estado.
type StatusCount struct {
	Status string
	Count  int
}

// TechnicianWorkload carga de trabajo de un técnico en un rango.
type TechnicianWorkload struct {
	TechnicianID   string
	TechnicianName string
	Orders         int
	Completed      int
	ScheduledHours decimal.Decimal
	LaborHours     decimal.Decimal
}

// ServiceOrderReportRow fila del informe exportable de órdenes.
type ServiceOrderReportRow struct {
	Number         string
	CustomerName   string
	Type           string
	Status         string
	Priority       string
	TechnicianName string
	ScheduledStart *time.Time
	CompletedAt    *time.Time
	LaborHours     decimal.Decimal
	PartsCost      decimal.Decimal
}

// SKUMarginResult márgenes por SKU a partir de líneas de factura.
type SKUMarginResult struct {
	ProductID    string
	SKU          string
	ProductName  string
	UnitsSold    decimal.Decimal
	GrossRevenue decimal.Decimal
	TotalCOGS    decimal.Decimal
	GrossProfit  decimal.Decimal
}

// ReportRepository consultas de solo lectura para dashboard e informes.
type ReportRepository interface {
	ServiceOrdersByStatus(ctx context.Context, companyID string) ([]StatusCount, error)
	CompletedOrders(ctx context.Context, companyID string, from, to time.Time) (int, error)
	// Revenue suma grand_total de facturas emitidas o cobradas en el rango.
	Revenue(ctx context.Context, companyID string, from, to time.Time) (decimal.Decimal, error)
	TicketsByStatus(ctx context.Context, companyID string) ([]StatusCount, error)
	LowStockCount(ctx context.Context, companyID string) (int, error)
	TechnicianWorkload(ctx context.Context, companyID string, from, to time.Time) ([]TechnicianWorkload, error)
	ServiceOrderReport(ctx context.Context, companyID string, from, to time.Time) ([]ServiceOrderReportRow, error)
	GetSKUMargins(ctx context.Context, companyID string, from, to time.Time, limit int) ([]SKUMarginResult, error)
}
