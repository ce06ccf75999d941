package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
)

var _ repository.CalendarRepository = (*CalendarRepo)(nil)

// CalendarRepo eventos de agenda sobre PostgreSQL.
type CalendarRepo struct {
	q Querier
}

// NewCalendarRepository construye el adaptador de agenda.
func NewCalendarRepository(q Querier) *CalendarRepo {
	return &CalendarRepo{q: q}
}

const calendarColumns = `id, company_id, title, description, start_at, end_at, all_day, kind, technician_id,
	service_order_id, source, external_id, created_at, updated_at`

func scanCalendarEvent(row pgx.Row) (*entity.CalendarEvent, error) {
	var e entity.CalendarEvent
	var techID, orderID, externalID *string
	err := row.Scan(&e.ID, &e.CompanyID, &e.Title, &e.Description, &e.Start, &e.End, &e.AllDay, &e.Kind,
		&techID, &orderID, &e.Source, &externalID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.TechnicianID, e.ServiceOrderID, e.ExternalID = deref(techID), deref(orderID), deref(externalID)
	return &e, nil
}

// Create persiste un evento.
func (r *CalendarRepo) Create(ctx context.Context, e *entity.CalendarEvent) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO calendar_events (`+calendarColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		e.ID, e.CompanyID, e.Title, e.Description, e.Start, e.End, e.AllDay, e.Kind,
		nullIfEmpty(e.TechnicianID), nullIfEmpty(e.ServiceOrderID), e.Source, nullIfEmpty(e.ExternalID),
		e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr("insert calendar event", err)
	}
	return nil
}

// GetByID obtiene un evento por ID.
func (r *CalendarRepo) GetByID(ctx context.Context, id string) (*entity.CalendarEvent, error) {
	e, err := scanCalendarEvent(r.q.QueryRow(ctx, `SELECT `+calendarColumns+` FROM calendar_events WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get calendar event: %w", err)
	}
	return e, nil
}

// Delete elimina un evento.
func (r *CalendarRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM calendar_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListRange eventos que intersectan [from, to); technicianID vacío = todos.
func (r *CalendarRepo) ListRange(ctx context.Context, companyID string, from, to time.Time, technicianID string) ([]*entity.CalendarEvent, error) {
	rows, err := r.q.Query(ctx, `SELECT `+calendarColumns+` FROM calendar_events
		WHERE company_id = $1 AND start_at < $3 AND end_at > $2
		  AND ($4::uuid IS NULL OR technician_id = $4::uuid)
		ORDER BY start_at`, companyID, from, to, nullIfEmpty(technicianID))
	if err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}
	defer rows.Close()
	var list []*entity.CalendarEvent
	for rows.Next() {
		e, err := scanCalendarEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan calendar event: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// UpsertExternal inserta o actualiza un evento federado por (company_id, external_id).
func (r *CalendarRepo) UpsertExternal(ctx context.Context, e *entity.CalendarEvent) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO calendar_events (`+calendarColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULL, 'external', $10, $11, $12)
		ON CONFLICT (company_id, external_id)
		DO UPDATE SET title = EXCLUDED.title, description = EXCLUDED.description, start_at = EXCLUDED.start_at,
		              end_at = EXCLUDED.end_at, all_day = EXCLUDED.all_day, updated_at = EXCLUDED.updated_at
		RETURNING id`,
		e.ID, e.CompanyID, e.Title, e.Description, e.Start, e.End, e.AllDay, e.Kind,
		nullIfEmpty(e.TechnicianID), e.ExternalID, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		return mapWriteErr("upsert external calendar event", err)
	}
	e.Source = entity.EventSourceExternal
	return nil
}
