package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
)

var _ repository.ServiceOrderRepository = (*ServiceOrderRepo)(nil)

// ServiceOrderRepo órdenes de servicio y sus repuestos.
type ServiceOrderRepo struct {
	q Querier
}

// NewServiceOrderRepository construye el adaptador. Pasar pool o tx.
func NewServiceOrderRepository(q Querier) *ServiceOrderRepo {
	return &ServiceOrderRepo{q: q}
}

const orderColumns = `id, company_id, number, customer_id, device_id, type, status, priority, title, description,
	technician_id, vehicle_id, scheduled_start, scheduled_end, completed_at, labor_hours, notes, created_by,
	created_at, updated_at`

func scanOrder(row pgx.Row) (*entity.ServiceOrder, error) {
	var o entity.ServiceOrder
	var deviceID, techID, vehicleID, createdBy *string
	err := row.Scan(&o.ID, &o.CompanyID, &o.Number, &o.CustomerID, &deviceID, &o.Type, &o.Status,
		&o.Priority, &o.Title, &o.Description, &techID, &vehicleID, &o.ScheduledStart, &o.ScheduledEnd,
		&o.CompletedAt, &o.LaborHours, &o.Notes, &createdBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.DeviceID, o.TechnicianID, o.VehicleID, o.CreatedBy = deref(deviceID), deref(techID), deref(vehicleID), deref(createdBy)
	return &o, nil
}

func (r *ServiceOrderRepo) list(ctx context.Context, query string, args ...any) ([]*entity.ServiceOrder, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list service orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.ServiceOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// NextNumber reserva el siguiente consecutivo SO de la empresa.
func (r *ServiceOrderRepo) NextNumber(ctx context.Context, companyID string) (int64, error) {
	return nextSequence(ctx, r.q, companyID, seqServiceOrder)
}

// Create persiste una orden.
func (r *ServiceOrderRepo) Create(ctx context.Context, o *entity.ServiceOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO service_orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		o.ID, o.CompanyID, o.Number, o.CustomerID, nullIfEmpty(o.DeviceID), o.Type, o.Status, o.Priority,
		o.Title, o.Description, nullIfEmpty(o.TechnicianID), nullIfEmpty(o.VehicleID), o.ScheduledStart,
		o.ScheduledEnd, o.CompletedAt, o.LaborHours, o.Notes, nullIfEmpty(o.CreatedBy), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr("insert service order", err)
	}
	return nil
}

// GetByID obtiene una orden por ID.
func (r *ServiceOrderRepo) GetByID(ctx context.Context, id string) (*entity.ServiceOrder, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM service_orders WHERE id = $1`, id)
}

// GetForUpdate obtiene la orden y bloquea la fila.
func (r *ServiceOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.ServiceOrder, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM service_orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *ServiceOrderRepo) get(ctx context.Context, query, id string) (*entity.ServiceOrder, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get service order: %w", err)
	}
	return o, nil
}

// orderWhere traduce el filtro a predicados SQL posicionales.
func orderWhere(f entity.ServiceOrderFilter) (string, []any) {
	preds := []string{"company_id = $1"}
	args := []any{f.CompanyID}
	add := func(pred string, arg any) {
		args = append(args, arg)
		preds = append(preds, fmt.Sprintf(pred, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.TechnicianID != "" {
		add("technician_id = $%d", f.TechnicianID)
	}
	if f.CustomerID != "" {
		add("customer_id = $%d", f.CustomerID)
	}
	if f.From != nil {
		add("scheduled_start >= $%d", *f.From)
	}
	if f.To != nil {
		add("scheduled_start < $%d", *f.To)
	}
	if f.EndAfter != nil {
		add("scheduled_end > $%d", *f.EndAfter)
	}
	return strings.Join(preds, " AND "), args
}

// List devuelve la página y el total del filtro; las más recientes primero.
func (r *ServiceOrderRepo) List(ctx context.Context, f entity.ServiceOrderFilter) ([]*entity.ServiceOrder, int, error) {
	where, args := orderWhere(f)
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM service_orders WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count service orders: %w", err)
	}
	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM service_orders WHERE %s
		ORDER BY COALESCE(scheduled_start, created_at) DESC LIMIT $%d OFFSET $%d`, orderColumns, where, n+1, n+2)
	list, err := r.list(ctx, query, append(args, f.Limit, f.Offset)...)
	return list, total, err
}

// Update persiste todos los campos mutables de la orden.
func (r *ServiceOrderRepo) Update(ctx context.Context, o *entity.ServiceOrder) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE service_orders SET device_id = $2, type = $3, status = $4, priority = $5, title = $6,
		       description = $7, technician_id = $8, vehicle_id = $9, scheduled_start = $10,
		       scheduled_end = $11, completed_at = $12, labor_hours = $13, notes = $14, updated_at = $15
		WHERE id = $1`,
		o.ID, nullIfEmpty(o.DeviceID), o.Type, o.Status, o.Priority, o.Title, o.Description,
		nullIfEmpty(o.TechnicianID), nullIfEmpty(o.VehicleID), o.ScheduledStart, o.ScheduledEnd,
		o.CompletedAt, o.LaborHours, o.Notes, o.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr("update service order", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// LockTechnician toma un advisory lock de transacción por técnico: dos reservas concurrentes
// del mismo técnico esperan a que la primera haga commit antes de buscar solapes.
func (r *ServiceOrderRepo) LockTechnician(ctx context.Context, technicianID string) error {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('technician:' || $1::text))`, technicianID); err != nil {
		return fmt.Errorf("lock technician: %w", err)
	}
	return nil
}

// FindOverlapping órdenes activas del técnico que pisan el intervalo.
func (r *ServiceOrderRepo) FindOverlapping(ctx context.Context, technicianID string, start, end time.Time, excludeID string) ([]*entity.ServiceOrder, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM service_orders
		WHERE technician_id = $1
		  AND status NOT IN ('cancelled', 'completed')
		  AND scheduled_start < $3 AND scheduled_end > $2
		  AND ($4::uuid IS NULL OR id <> $4::uuid)
		ORDER BY scheduled_start`, technicianID, start, end, nullIfEmpty(excludeID))
}

// AddPart registra un repuesto consumido.
func (r *ServiceOrderRepo) AddPart(ctx context.Context, p *entity.ServiceOrderPart) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO service_order_parts (id, service_order_id, product_id, warehouse_id, quantity, unit_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.ServiceOrderID, p.ProductID, p.WarehouseID, p.Quantity, p.UnitPrice, p.CreatedAt,
	)
	if err != nil {
		return mapWriteErr("insert service order part", err)
	}
	return nil
}

// ListParts repuestos de la orden en orden de registro.
func (r *ServiceOrderRepo) ListParts(ctx context.Context, orderID string) ([]*entity.ServiceOrderPart, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, service_order_id, product_id, warehouse_id, quantity, unit_price, created_at
		FROM service_order_parts WHERE service_order_id = $1 ORDER BY created_at`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list service order parts: %w", err)
	}
	defer rows.Close()
	var list []*entity.ServiceOrderPart
	for rows.Next() {
		var p entity.ServiceOrderPart
		if err := rows.Scan(&p.ID, &p.ServiceOrderID, &p.ProductID, &p.WarehouseID, &p.Quantity, &p.UnitPrice, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan service order part: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
