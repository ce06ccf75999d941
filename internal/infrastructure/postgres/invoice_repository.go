package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository sobre PostgreSQL (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, company_id, customer_id, service_order_id, number, date, due_date, net_total,
	tax_total, grand_total, status, notes, issued_at, paid_at, created_by, created_at, updated_at`

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var orderID, createdBy *string
	err := row.Scan(&inv.ID, &inv.CompanyID, &inv.CustomerID, &orderID, &inv.Number, &inv.Date, &inv.DueDate,
		&inv.NetTotal, &inv.TaxTotal, &inv.GrandTotal, &inv.Status, &inv.Notes, &inv.IssuedAt, &inv.PaidAt,
		&createdBy, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	inv.ServiceOrderID, inv.CreatedBy = deref(orderID), deref(createdBy)
	return &inv, nil
}

// NextNumber reserva el siguiente consecutivo FV.
func (r *InvoiceRepo) NextNumber(ctx context.Context, companyID string) (int64, error) {
	return nextSequence(ctx, r.q, companyID, seqInvoice)
}

// Create persiste la cabecera de la factura.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		inv.ID, inv.CompanyID, inv.CustomerID, nullIfEmpty(inv.ServiceOrderID), inv.Number, inv.Date,
		inv.DueDate, inv.NetTotal, inv.TaxTotal, inv.GrandTotal, inv.Status, inv.Notes, inv.IssuedAt,
		inv.PaidAt, nullIfEmpty(inv.CreatedBy), inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr("insert invoice", err)
	}
	return nil
}

// CreateDetail persiste una línea de detalle.
func (r *InvoiceRepo) CreateDetail(ctx context.Context, d *entity.InvoiceDetail) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO invoice_details (id, invoice_id, product_id, warehouse_id, description, quantity, unit_price, tax_rate, subtotal, tax_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		d.ID, d.InvoiceID, nullIfEmpty(d.ProductID), nullIfEmpty(d.WarehouseID), d.Description, d.Quantity,
		d.UnitPrice, d.TaxRate, d.Subtotal, d.TaxAmount,
	)
	if err != nil {
		return mapWriteErr("insert invoice detail", err)
	}
	return nil
}

// GetByID obtiene la cabecera de una factura.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetDetailsByInvoiceID líneas de la factura.
func (r *InvoiceRepo) GetDetailsByInvoiceID(ctx context.Context, invoiceID string) ([]*entity.InvoiceDetail, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, invoice_id, product_id, warehouse_id, description, quantity, unit_price, tax_rate, subtotal, tax_amount
		FROM invoice_details WHERE invoice_id = $1 ORDER BY description`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get invoice details: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceDetail
	for rows.Next() {
		var d entity.InvoiceDetail
		var productID, whID *string
		if err := rows.Scan(&d.ID, &d.InvoiceID, &productID, &whID, &d.Description, &d.Quantity, &d.UnitPrice,
			&d.TaxRate, &d.Subtotal, &d.TaxAmount); err != nil {
			return nil, fmt.Errorf("scan invoice detail: %w", err)
		}
		d.ProductID, d.WarehouseID = deref(productID), deref(whID)
		list = append(list, &d)
	}
	return list, rows.Err()
}

// List facturas del filtro con total.
func (r *InvoiceRepo) List(ctx context.Context, f entity.InvoiceFilter) ([]*entity.Invoice, int, error) {
	preds := []string{"company_id = $1"}
	args := []any{f.CompanyID}
	if f.CustomerID != "" {
		args = append(args, f.CustomerID)
		preds = append(preds, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		preds = append(preds, fmt.Sprintf("status = $%d", len(args)))
	}
	where := strings.Join(preds, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM invoices WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}
	n := len(args)
	rows, err := r.q.Query(ctx, fmt.Sprintf(`SELECT %s FROM invoices WHERE %s ORDER BY date DESC LIMIT $%d OFFSET $%d`,
		invoiceColumns, where, n+1, n+2), append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, total, rows.Err()
}

// UpdateStatus persiste el estado y las fechas de emisión/cobro.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, inv *entity.Invoice) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE invoices SET status = $2, issued_at = $3, paid_at = $4, updated_at = $5 WHERE id = $1`,
		inv.ID, inv.Status, inv.IssuedAt, inv.PaidAt, inv.UpdatedAt)
	if err != nil {
		return mapWriteErr("update invoice status", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
