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

var _ repository.DeviceRepository = (*DeviceRepo)(nil)

// DeviceRepo equipos instalados en PostgreSQL.
type DeviceRepo struct {
	q Querier
}

// NewDeviceRepository construye el adaptador de equipos.
func NewDeviceRepository(q Querier) *DeviceRepo {
	return &DeviceRepo{q: q}
}

const deviceColumns = `id, company_id, customer_id, kind, brand, model, serial_number, refrigerant, refrigerant_kg,
	installed_at, warranty_until, last_service_at, next_service_at, notes, created_at, updated_at`

func scanDevice(row pgx.Row) (*entity.Device, error) {
	var d entity.Device
	err := row.Scan(&d.ID, &d.CompanyID, &d.CustomerID, &d.Kind, &d.Brand, &d.Model, &d.SerialNumber,
		&d.Refrigerant, &d.RefrigerantKg, &d.InstalledAt, &d.WarrantyUntil, &d.LastServiceAt,
		&d.NextServiceAt, &d.Notes, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DeviceRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Device, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// Create persiste un equipo.
func (r *DeviceRepo) Create(ctx context.Context, d *entity.Device) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO devices (`+deviceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		d.ID, d.CompanyID, d.CustomerID, d.Kind, d.Brand, d.Model, d.SerialNumber, d.Refrigerant,
		d.RefrigerantKg, d.InstalledAt, d.WarrantyUntil, d.LastServiceAt, d.NextServiceAt, d.Notes,
		d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr("insert device", err)
	}
	return nil
}

// GetByID obtiene un equipo por ID.
func (r *DeviceRepo) GetByID(ctx context.Context, id string) (*entity.Device, error) {
	d, err := scanDevice(r.q.QueryRow(ctx, `SELECT `+deviceColumns+` FROM devices WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get device: %w", err)
	}
	return d, nil
}

// ListByCustomer equipos del cliente.
func (r *DeviceRepo) ListByCustomer(ctx context.Context, customerID string) ([]*entity.Device, error) {
	return r.list(ctx, `SELECT `+deviceColumns+` FROM devices WHERE customer_id = $1 ORDER BY created_at`, customerID)
}

// ListDueBefore equipos con mantenimiento pendiente antes de la fecha, más antiguos primero.
func (r *DeviceRepo) ListDueBefore(ctx context.Context, companyID string, before time.Time, limit int) ([]*entity.Device, error) {
	return r.list(ctx, `SELECT `+deviceColumns+` FROM devices
		WHERE company_id = $1 AND next_service_at IS NOT NULL AND next_service_at < $2
		ORDER BY next_service_at LIMIT $3`, companyID, before, limit)
}

// Update actualiza el equipo, incluidas las fechas de servicio.
func (r *DeviceRepo) Update(ctx context.Context, d *entity.Device) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE devices SET kind = $2, brand = $3, model = $4, serial_number = $5, refrigerant = $6,
		       refrigerant_kg = $7, installed_at = $8, warranty_until = $9, last_service_at = $10,
		       next_service_at = $11, notes = $12, updated_at = $13
		WHERE id = $1`,
		d.ID, d.Kind, d.Brand, d.Model, d.SerialNumber, d.Refrigerant, d.RefrigerantKg, d.InstalledAt,
		d.WarrantyUntil, d.LastServiceAt, d.NextServiceAt, d.Notes, d.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr("update device", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un equipo.
func (r *DeviceRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM devices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete device: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
