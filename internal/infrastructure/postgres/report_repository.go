package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/climatiza-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para dashboard e informes.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de informes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

func (r *ReportRepo) statusCounts(ctx context.Context, op, query, companyID string) ([]repository.StatusCount, error) {
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("report.%s: %w", op, err)
	}
	defer rows.Close()
	var out []repository.StatusCount
	for rows.Next() {
		var sc repository.StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, fmt.Errorf("report.%s scan: %w", op, err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// ServiceOrdersByStatus conteo de órdenes por estado.
func (r *ReportRepo) ServiceOrdersByStatus(ctx context.Context, companyID string) ([]repository.StatusCount, error) {
	return r.statusCounts(ctx, "ServiceOrdersByStatus",
		`SELECT status, count(*) FROM service_orders WHERE company_id = $1 GROUP BY status ORDER BY status`, companyID)
}

// TicketsByStatus conteo de tickets por columna.
func (r *ReportRepo) TicketsByStatus(ctx context.Context, companyID string) ([]repository.StatusCount, error) {
	return r.statusCounts(ctx, "TicketsByStatus",
		`SELECT status, count(*) FROM tickets WHERE company_id = $1 GROUP BY status ORDER BY status`, companyID)
}

// CompletedOrders órdenes completadas en [from, to).
func (r *ReportRepo) CompletedOrders(ctx context.Context, companyID string, from, to time.Time) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT count(*) FROM service_orders
		WHERE company_id = $1 AND status = 'completed' AND completed_at >= $2 AND completed_at < $3`,
		companyID, from, to).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("report.CompletedOrders: %w", err)
	}
	return n, nil
}

// Revenue facturación (emitidas y cobradas) en [from, to).
func (r *ReportRepo) Revenue(ctx context.Context, companyID string, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(sum(grand_total), 0) FROM invoices
		WHERE company_id = $1 AND status IN ('issued', 'paid') AND date >= $2 AND date < $3`,
		companyID, from, to).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("report.Revenue: %w", err)
	}
	return total, nil
}

// LowStockCount productos por debajo del punto de reorden (stock global).
func (r *ReportRepo) LowStockCount(ctx context.Context, companyID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT count(*) FROM (
		    SELECT p.id FROM products p
		    LEFT JOIN stock s ON s.product_id = p.id
		    WHERE p.company_id = $1 AND p.reorder_point > 0
		    GROUP BY p.id, p.reorder_point
		    HAVING COALESCE(sum(s.quantity), 0) < p.reorder_point
		) low`, companyID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("report.LowStockCount: %w", err)
	}
	return n, nil
}

// TechnicianWorkload órdenes, horas programadas y horas trabajadas por técnico en [from, to).
func (r *ReportRepo) TechnicianWorkload(ctx context.Context, companyID string, from, to time.Time) ([]repository.TechnicianWorkload, error) {
	const query = `
	SELECT
	    u.id,
	    u.name,
	    count(o.id)                                                        AS orders,
	    count(o.id) FILTER (WHERE o.status = 'completed')                  AS completed,
	    COALESCE(sum(EXTRACT(EPOCH FROM (o.scheduled_end - o.scheduled_start)) / 3600)
	             FILTER (WHERE o.status <> 'cancelled'), 0)::numeric(10,2) AS scheduled_hours,
	    COALESCE(sum(o.labor_hours), 0)                                    AS labor_hours
	FROM users u
	LEFT JOIN service_orders o
	       ON o.technician_id = u.id
	      AND o.scheduled_start >= $2 AND o.scheduled_start < $3
	WHERE u.company_id = $1
	  AND (u.role = 'tecnico' OR EXISTS (SELECT 1 FROM user_roles ur WHERE ur.user_id = u.id AND ur.role = 'tecnico'))
	GROUP BY u.id, u.name
	ORDER BY scheduled_hours DESC, u.name`

	rows, err := r.q.Query(ctx, query, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("report.TechnicianWorkload: %w", err)
	}
	defer rows.Close()
	var out []repository.TechnicianWorkload
	for rows.Next() {
		var w repository.TechnicianWorkload
		if err := rows.Scan(&w.TechnicianID, &w.TechnicianName, &w.Orders, &w.Completed, &w.ScheduledHours, &w.LaborHours); err != nil {
			return nil, fmt.Errorf("report.TechnicianWorkload scan: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// ServiceOrderReport filas del informe exportable, con coste de repuestos.
func (r *ReportRepo) ServiceOrderReport(ctx context.Context, companyID string, from, to time.Time) ([]repository.ServiceOrderReportRow, error) {
	const query = `
	SELECT
	    o.number,
	    c.name,
	    o.type,
	    o.status,
	    o.priority,
	    COALESCE(u.name, ''),
	    o.scheduled_start,
	    o.completed_at,
	    o.labor_hours,
	    COALESCE((SELECT sum(p.quantity * p.unit_price) FROM service_order_parts p WHERE p.service_order_id = o.id), 0)
	FROM service_orders o
	JOIN customers c ON c.id = o.customer_id
	LEFT JOIN users u ON u.id = o.technician_id
	WHERE o.company_id = $1
	  AND COALESCE(o.scheduled_start, o.created_at) >= $2
	  AND COALESCE(o.scheduled_start, o.created_at) <  $3
	ORDER BY o.number`

	rows, err := r.q.Query(ctx, query, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("report.ServiceOrderReport: %w", err)
	}
	defer rows.Close()
	var out []repository.ServiceOrderReportRow
	for rows.Next() {
		var row repository.ServiceOrderReportRow
		if err := rows.Scan(&row.Number, &row.CustomerName, &row.Type, &row.Status, &row.Priority,
			&row.TechnicianName, &row.ScheduledStart, &row.CompletedAt, &row.LaborHours, &row.PartsCost); err != nil {
			return nil, fmt.Errorf("report.ServiceOrderReport scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// GetSKUMargins rentabilidad bruta por SKU (precio facturado - costo promedio), mayor beneficio primero.
func (r *ReportRepo) GetSKUMargins(ctx context.Context, companyID string, from, to time.Time, limit int) ([]repository.SKUMarginResult, error) {
	const query = `
	SELECT
	    p.id                                  AS product_id,
	    p.sku,
	    p.name                                AS product_name,
	    SUM(d.quantity)                       AS units_sold,
	    SUM(d.subtotal)                       AS gross_revenue,
	    SUM(d.quantity * p.cost)              AS total_cogs,
	    SUM(d.subtotal - d.quantity * p.cost) AS gross_profit
	FROM invoice_details d
	JOIN invoices i ON i.id = d.invoice_id
	JOIN products p ON p.id = d.product_id
	WHERE i.company_id = $1
	  AND i.date >= $2 AND i.date < $3
	  AND i.status IN ('issued', 'paid')
	GROUP BY p.id, p.sku, p.name
	ORDER BY gross_profit DESC
	LIMIT $4`

	rows, err := r.q.Query(ctx, query, companyID, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("report.GetSKUMargins: %w", err)
	}
	defer rows.Close()
	var out []repository.SKUMarginResult
	for rows.Next() {
		var row repository.SKUMarginResult
		if err := rows.Scan(&row.ProductID, &row.SKU, &row.ProductName, &row.UnitsSold, &row.GrossRevenue,
			&row.TotalCOGS, &row.GrossProfit); err != nil {
			return nil, fmt.Errorf("report.GetSKUMargins scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
