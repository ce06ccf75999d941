package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
type DashboardSummaryDTO struct {
	OrdersByStatus  map[string]int  `json:"orders_by_status"`
	CompletedMonth  int             `json:"completed_month"`
	RevenueMonth    decimal.Decimal `json:"revenue_month"` // facturas emitidas o cobradas
	TicketsByStatus map[string]int  `json:"tickets_by_status"`
	LowStock        int             `json:"low_stock"`
	FleetAlerts     int             `json:"fleet_alerts"`
	DateLabel       string          `json:"date_label"` // ej: "Octubre 2026"
}

// TechnicianWorkloadDTO carga de un técnico en el rango.
type TechnicianWorkloadDTO struct {
	TechnicianID   string          `json:"technician_id"`
	TechnicianName string          `json:"technician_name"`
	Orders         int             `json:"orders"`
	Completed      int             `json:"completed"`
	ScheduledHours decimal.Decimal `json:"scheduled_hours"`
	LaborHours     decimal.Decimal `json:"labor_hours"`
}

// WorkloadReportDTO informe de carga por técnico.
type WorkloadReportDTO struct {
	From        time.Time               `json:"from"`
	To          time.Time               `json:"to"`
	Technicians []TechnicianWorkloadDTO `json:"technicians"`
}

// ReportPeriodRequest rango de fechas en formato YYYY-MM-DD (ambos opcionales).
type ReportPeriodRequest struct {
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
	TopN      int    `query:"top_n"`
}

// SKURankingDTO repuesto o equipo en el ranking de márgenes.
type SKURankingDTO struct {
	Rank             int             `json:"rank"`
	ProductID        string          `json:"product_id"`
	SKU              string          `json:"sku"`
	ProductName      string          `json:"product_name"`
	UnitsSold        decimal.Decimal `json:"units_sold"`
	GrossRevenue     decimal.Decimal `json:"gross_revenue"`
	TotalCOGS        decimal.Decimal `json:"total_cogs"`
	GrossProfit      decimal.Decimal `json:"gross_profit"`
	MarginPct        decimal.Decimal `json:"margin_pct"`
	RevenuePct       decimal.Decimal `json:"revenue_pct"`
	CumulativeRevPct decimal.Decimal `json:"cumulative_revenue_pct"`
	IsTopPareto      bool            `json:"is_top_pareto"`
}

// MarginsReportDTO márgenes por artículo facturado con análisis Pareto.
type MarginsReportDTO struct {
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
	SKURanking   []SKURankingDTO `json:"sku_ranking"`
	ParetoSKUs   []SKURankingDTO `json:"pareto_skus"`
}
