package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
)

var _ repository.LinkRepository = (*LinkRepo)(nil)

// LinkRepo enlaces dinámicos sobre PostgreSQL.
type LinkRepo struct {
	q Querier
}

// NewLinkRepository construye el adaptador de enlaces.
func NewLinkRepository(q Querier) *LinkRepo {
	return &LinkRepo{q: q}
}

const linkColumns = `id, company_id, token, resource_type, resource_id, password_hash, expires_at, max_views,
	views, revoked_at, created_by, created_at`

func scanLink(row pgx.Row) (*entity.DynamicLink, error) {
	var l entity.DynamicLink
	var createdBy *string
	err := row.Scan(&l.ID, &l.CompanyID, &l.Token, &l.ResourceType, &l.ResourceID, &l.PasswordHash,
		&l.ExpiresAt, &l.MaxViews, &l.Views, &l.RevokedAt, &createdBy, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	l.CreatedBy = deref(createdBy)
	return &l, nil
}

func (r *LinkRepo) one(ctx context.Context, query string, arg string) (*entity.DynamicLink, error) {
	l, err := scanLink(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get link: %w", err)
	}
	return l, nil
}

func (r *LinkRepo) many(ctx context.Context, query string, args ...any) ([]*entity.DynamicLink, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()
	var list []*entity.DynamicLink
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// Create persiste un enlace. El token es único.
func (r *LinkRepo) Create(ctx context.Context, l *entity.DynamicLink) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO dynamic_links (`+linkColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		l.ID, l.CompanyID, l.Token, l.ResourceType, l.ResourceID, l.PasswordHash, l.ExpiresAt, l.MaxViews,
		l.Views, l.RevokedAt, nullIfEmpty(l.CreatedBy), l.CreatedAt,
	)
	if err != nil {
		return mapWriteErr("insert link", err)
	}
	return nil
}

// GetByToken busca un enlace por token.
func (r *LinkRepo) GetByToken(ctx context.Context, token string) (*entity.DynamicLink, error) {
	return r.one(ctx, `SELECT `+linkColumns+` FROM dynamic_links WHERE token = $1`, token)
}

// GetByID busca un enlace por ID.
func (r *LinkRepo) GetByID(ctx context.Context, id string) (*entity.DynamicLink, error) {
	return r.one(ctx, `SELECT `+linkColumns+` FROM dynamic_links WHERE id = $1`, id)
}

// ListByResource enlaces emitidos para un documento.
func (r *LinkRepo) ListByResource(ctx context.Context, companyID, resourceType, resourceID string) ([]*entity.DynamicLink, error) {
	return r.many(ctx, `SELECT `+linkColumns+` FROM dynamic_links
		WHERE company_id = $1 AND resource_type = $2 AND resource_id = $3 ORDER BY created_at DESC`,
		companyID, resourceType, resourceID)
}

// ListByCompany enlaces de la empresa, más recientes primero.
func (r *LinkRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.DynamicLink, error) {
	return r.many(ctx, `SELECT `+linkColumns+` FROM dynamic_links
		WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, companyID, limit, offset)
}

// Revoke marca el enlace como revocado (idempotente).
func (r *LinkRepo) Revoke(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE dynamic_links SET revoked_at = COALESCE(revoked_at, now()) WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("revoke link: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IncrementViews consume una visita de forma atómica: las condiciones se evalúan en el mismo UPDATE,
// así dos lecturas concurrentes no superan max_views.
func (r *LinkRepo) IncrementViews(ctx context.Context, id string) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE dynamic_links SET views = views + 1
		WHERE id = $1
		  AND revoked_at IS NULL
		  AND (expires_at IS NULL OR expires_at > now())
		  AND (max_views = 0 OR views < max_views)`, id)
	if err != nil {
		return false, fmt.Errorf("increment link views: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
