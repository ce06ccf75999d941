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

var _ repository.OfferRepository = (*OfferRepo)(nil)

// OfferRepo ofertas, opciones y líneas sobre PostgreSQL.
type OfferRepo struct {
	q Querier
}

// NewOfferRepository construye el adaptador. Pasar pool o tx.
func NewOfferRepository(q Querier) *OfferRepo {
	return &OfferRepo{q: q}
}

const offerColumns = `id, company_id, number, customer_id, title, status, valid_until, notes, selected_option_id,
	service_order_id, created_by, sent_at, decided_at, created_at, updated_at`

func scanOffer(row pgx.Row) (*entity.Offer, error) {
	var o entity.Offer
	var selected, orderID, createdBy *string
	err := row.Scan(&o.ID, &o.CompanyID, &o.Number, &o.CustomerID, &o.Title, &o.Status, &o.ValidUntil,
		&o.Notes, &selected, &orderID, &createdBy, &o.SentAt, &o.DecidedAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.SelectedOptionID, o.ServiceOrderID, o.CreatedBy = deref(selected), deref(orderID), deref(createdBy)
	return &o, nil
}

// NextNumber reserva el siguiente consecutivo OF.
func (r *OfferRepo) NextNumber(ctx context.Context, companyID string) (int64, error) {
	return nextSequence(ctx, r.q, companyID, seqOffer)
}

// Create persiste la cabecera de la oferta.
func (r *OfferRepo) Create(ctx context.Context, o *entity.Offer) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO offers (`+offerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		o.ID, o.CompanyID, o.Number, o.CustomerID, o.Title, o.Status, o.ValidUntil, o.Notes,
		nullIfEmpty(o.SelectedOptionID), nullIfEmpty(o.ServiceOrderID), nullIfEmpty(o.CreatedBy),
		o.SentAt, o.DecidedAt, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr("insert offer", err)
	}
	return nil
}

// CreateOption persiste una opción con sus totales.
func (r *OfferRepo) CreateOption(ctx context.Context, opt *entity.OfferOption) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO offer_options (id, offer_id, name, position, net_total, tax_total, grand_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		opt.ID, opt.OfferID, opt.Name, opt.Position, opt.NetTotal, opt.TaxTotal, opt.GrandTotal,
	)
	if err != nil {
		return mapWriteErr("insert offer option", err)
	}
	return nil
}

// CreateItem persiste una línea de opción.
func (r *OfferRepo) CreateItem(ctx context.Context, it *entity.OfferItem) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO offer_items (id, option_id, product_id, description, quantity, unit_price, tax_rate, subtotal, tax_amount, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		it.ID, it.OptionID, nullIfEmpty(it.ProductID), it.Description, it.Quantity, it.UnitPrice,
		it.TaxRate, it.Subtotal, it.TaxAmount, it.Position,
	)
	if err != nil {
		return mapWriteErr("insert offer item", err)
	}
	return nil
}

// GetByID carga la oferta completa (opciones y líneas ordenadas por posición).
func (r *OfferRepo) GetByID(ctx context.Context, id string) (*entity.Offer, error) {
	o, err := scanOffer(r.q.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get offer: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, offer_id, name, position, net_total, tax_total, grand_total
		FROM offer_options WHERE offer_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("get offer options: %w", err)
	}
	byID := map[string]*entity.OfferOption{}
	for rows.Next() {
		var opt entity.OfferOption
		if err := rows.Scan(&opt.ID, &opt.OfferID, &opt.Name, &opt.Position, &opt.NetTotal, &opt.TaxTotal, &opt.GrandTotal); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan offer option: %w", err)
		}
		o.Options = append(o.Options, &opt)
		byID[opt.ID] = &opt
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get offer options: %w", err)
	}

	rows, err = r.q.Query(ctx, `
		SELECT i.id, i.option_id, i.product_id, i.description, i.quantity, i.unit_price, i.tax_rate,
		       i.subtotal, i.tax_amount, i.position
		FROM offer_items i JOIN offer_options o ON o.id = i.option_id
		WHERE o.offer_id = $1 ORDER BY i.position`, id)
	if err != nil {
		return nil, fmt.Errorf("get offer items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.OfferItem
		var productID *string
		if err := rows.Scan(&it.ID, &it.OptionID, &productID, &it.Description, &it.Quantity, &it.UnitPrice,
			&it.TaxRate, &it.Subtotal, &it.TaxAmount, &it.Position); err != nil {
			return nil, fmt.Errorf("scan offer item: %w", err)
		}
		it.ProductID = deref(productID)
		if opt := byID[it.OptionID]; opt != nil {
			opt.Items = append(opt.Items, &it)
		}
	}
	return o, rows.Err()
}

// List ofertas (solo cabeceras) con total.
func (r *OfferRepo) List(ctx context.Context, f entity.OfferFilter) ([]*entity.Offer, int, error) {
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
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM offers WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count offers: %w", err)
	}
	n := len(args)
	rows, err := r.q.Query(ctx, fmt.Sprintf(`SELECT %s FROM offers WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		offerColumns, where, n+1, n+2), append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list offers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan offer: %w", err)
		}
		list = append(list, o)
	}
	return list, total, rows.Err()
}

// GetForUpdate bloquea la fila de la oferta (SELECT FOR UPDATE) y la carga completa.
// Solo tiene efecto dentro de una transacción (RunOffer).
func (r *OfferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Offer, error) {
	var locked string
	err := r.q.QueryRow(ctx, `SELECT id FROM offers WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock offer: %w", err)
	}
	return r.GetByID(ctx, id)
}

// UpdateStatus persiste estado, opción elegida, orden generada y fechas de decisión.
func (r *OfferRepo) UpdateStatus(ctx context.Context, o *entity.Offer) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE offers SET status = $2, selected_option_id = $3, service_order_id = $4, sent_at = $5,
		       decided_at = $6, updated_at = $7
		WHERE id = $1`,
		o.ID, o.Status, nullIfEmpty(o.SelectedOptionID), nullIfEmpty(o.ServiceOrderID), o.SentAt,
		o.DecidedAt, o.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr("update offer status", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
