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

var _ repository.TicketRepository = (*TicketRepo)(nil)

// TicketRepo tickets del tablero kanban.
type TicketRepo struct {
	q Querier
}

// NewTicketRepository construye el adaptador de tickets.
func NewTicketRepository(q Querier) *TicketRepo {
	return &TicketRepo{q: q}
}

const ticketColumns = `id, company_id, customer_id, service_order_id, title, description, status, priority,
	category, assignee_id, position, created_by, created_at, updated_at`

func scanTicket(row pgx.Row) (*entity.Ticket, error) {
	var t entity.Ticket
	var customerID, orderID, assigneeID, createdBy *string
	err := row.Scan(&t.ID, &t.CompanyID, &customerID, &orderID, &t.Title, &t.Description, &t.Status,
		&t.Priority, &t.Category, &assigneeID, &t.Position, &createdBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.CustomerID, t.ServiceOrderID, t.AssigneeID, t.CreatedBy = deref(customerID), deref(orderID), deref(assigneeID), deref(createdBy)
	return &t, nil
}

// Create persiste un ticket.
func (r *TicketRepo) Create(ctx context.Context, t *entity.Ticket) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO tickets (`+ticketColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		t.ID, t.CompanyID, nullIfEmpty(t.CustomerID), nullIfEmpty(t.ServiceOrderID), t.Title, t.Description,
		t.Status, t.Priority, t.Category, nullIfEmpty(t.AssigneeID), t.Position, nullIfEmpty(t.CreatedBy),
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr("insert ticket", err)
	}
	return nil
}

// GetByID obtiene un ticket por ID.
func (r *TicketRepo) GetByID(ctx context.Context, id string) (*entity.Ticket, error) {
	t, err := scanTicket(r.q.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return t, nil
}

// List tickets del filtro ordenados por columna y posición.
func (r *TicketRepo) List(ctx context.Context, f entity.TicketFilter) ([]*entity.Ticket, error) {
	preds := []string{"company_id = $1"}
	args := []any{f.CompanyID}
	add := func(pred string, arg any) {
		args = append(args, arg)
		preds = append(preds, fmt.Sprintf(pred, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.AssigneeID != "" {
		add("assignee_id = $%d", f.AssigneeID)
	}
	if f.CustomerID != "" {
		add("customer_id = $%d", f.CustomerID)
	}
	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY status, position, created_at LIMIT $%d OFFSET $%d`,
		ticketColumns, strings.Join(preds, " AND "), n+1, n+2)
	rows, err := r.q.Query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()
	var list []*entity.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// Update persiste los campos editables (no estado ni posición: ver Move).
func (r *TicketRepo) Update(ctx context.Context, t *entity.Ticket) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE tickets SET customer_id = $2, service_order_id = $3, title = $4, description = $5,
		       priority = $6, category = $7, assignee_id = $8, updated_at = $9
		WHERE id = $1`,
		t.ID, nullIfEmpty(t.CustomerID), nullIfEmpty(t.ServiceOrderID), t.Title, t.Description,
		t.Priority, t.Category, nullIfEmpty(t.AssigneeID), t.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr("update ticket", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// moveTicketSQL coloca el ticket en (status, position) y renumera 0..n-1 las columnas de la empresa.
// Los demás tickets conservan su orden relativo (position, created_at); el movido toma la clave
// 2*pos, justo delante del que ocupaba ese hueco (2*rank+1).
const moveTicketSQL = `
	WITH target AS (
		SELECT id, company_id FROM tickets WHERE id = $1 FOR UPDATE
	), others AS (
		SELECT t.id, t.status,
		       row_number() OVER (PARTITION BY t.status ORDER BY t.position, t.created_at, t.id) - 1 AS rnk
		FROM tickets t JOIN target g ON t.company_id = g.company_id
		WHERE t.id <> g.id
	), keyed AS (
		SELECT id, status, rnk * 2 + 1 AS k FROM others
		UNION ALL
		SELECT id, $2::text, $3::int * 2 FROM target
	), renum AS (
		SELECT id, status, row_number() OVER (PARTITION BY status ORDER BY k) - 1 AS pos FROM keyed
	)
	UPDATE tickets t
	SET status = r.status, position = r.pos,
	    updated_at = CASE WHEN t.id = $1 THEN now() ELSE t.updated_at END
	FROM renum r
	WHERE t.id = r.id AND (t.id = $1 OR t.position <> r.pos)`

// Move cambia columna y posición y normaliza las posiciones del tablero en una sola sentencia.
func (r *TicketRepo) Move(ctx context.Context, id, status string, position int) error {
	tag, err := r.q.Exec(ctx, moveTicketSQL, id, status, position)
	if err != nil {
		return mapWriteErr("move ticket", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// NextPosition posición tras el último ticket de la columna.
func (r *TicketRepo) NextPosition(ctx context.Context, companyID, status string) (int, error) {
	var next int
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(max(position) + 1, 0) FROM tickets WHERE company_id = $1 AND status = $2`,
		companyID, status).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next ticket position: %w", err)
	}
	return next, nil
}
