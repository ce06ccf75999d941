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

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository sobre PostgreSQL (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador de clientes.
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

const customerColumns = `id, company_id, name, tax_id, email, phone, type, address, city, postal_code,
	latitude, longitude, notes, created_at, updated_at`

func scanCustomer(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	var taxID *string
	err := row.Scan(&c.ID, &c.CompanyID, &c.Name, &taxID, &c.Email, &c.Phone, &c.Type, &c.Address,
		&c.City, &c.PostalCode, &c.Latitude, &c.Longitude, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.TaxID = deref(taxID)
	return &c, nil
}

// customerWhere traduce el filtro a predicados SQL con argumentos posicionales.
// Cada campo informado aporta exactamente un predicado y un argumento.
func customerWhere(f entity.CustomerFilter) (string, []any) {
	preds := []string{"company_id = $1"}
	args := []any{f.CompanyID}
	add := func(pred string, arg any) {
		args = append(args, arg)
		preds = append(preds, fmt.Sprintf(pred, len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		add("(name ILIKE $%[1]d OR email ILIKE $%[1]d OR phone ILIKE $%[1]d OR tax_id ILIKE $%[1]d)", "%"+s+"%")
	}
	if f.Type != "" {
		add("type = $%d", f.Type)
	}
	if c := strings.TrimSpace(f.City); c != "" {
		add("lower(city) = lower($%d)", c)
	}
	return strings.Join(preds, " AND "), args
}

// Create persiste un cliente.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO customers (`+customerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		c.ID, c.CompanyID, c.Name, nullIfEmpty(c.TaxID), c.Email, c.Phone, c.Type, c.Address, c.City,
		c.PostalCode, c.Latitude, c.Longitude, c.Notes, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr("insert customer", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// GetByCompanyAndTaxID busca por identificador fiscal dentro de la empresa.
func (r *CustomerRepo) GetByCompanyAndTaxID(ctx context.Context, companyID, taxID string) (*entity.Customer, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE company_id = $1 AND tax_id = $2`, companyID, taxID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer by tax_id: %w", err)
	}
	return c, nil
}

// List devuelve la página y el total del filtro.
func (r *CustomerRepo) List(ctx context.Context, f entity.CustomerFilter) ([]*entity.Customer, int, error) {
	where, args := customerWhere(f)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM customers WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE %s ORDER BY name LIMIT $%d OFFSET $%d`,
		customerColumns, where, n+1, n+2)
	rows, err := r.q.Query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, c)
	}
	return list, total, rows.Err()
}

// Update actualiza todos los campos editables del cliente.
func (r *CustomerRepo) Update(ctx context.Context, c *entity.Customer) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE customers SET name = $2, tax_id = $3, email = $4, phone = $5, type = $6, address = $7,
		       city = $8, postal_code = $9, latitude = $10, longitude = $11, notes = $12, updated_at = $13
		WHERE id = $1`,
		c.ID, c.Name, nullIfEmpty(c.TaxID), c.Email, c.Phone, c.Type, c.Address, c.City,
		c.PostalCode, c.Latitude, c.Longitude, c.Notes, c.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr("update customer", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un cliente (sus equipos se borran en cascada).
func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		// con órdenes u ofertas asociadas la FK lo impide
		if isFKViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
