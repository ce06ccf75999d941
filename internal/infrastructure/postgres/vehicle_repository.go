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

var _ repository.VehicleRepository = (*VehicleRepo)(nil)

// VehicleRepo flota sobre PostgreSQL.
type VehicleRepo struct {
	q Querier
}

// NewVehicleRepository construye el adaptador de flota.
func NewVehicleRepository(q Querier) *VehicleRepo {
	return &VehicleRepo{q: q}
}

const vehicleColumns = `id, company_id, plate, make, model, year, vin, technician_id, warehouse_id, odometer_km,
	inspection_due, insurance_due, status, last_lat, last_lng, last_seen_at, created_at, updated_at`

func scanVehicle(row pgx.Row) (*entity.Vehicle, error) {
	var v entity.Vehicle
	var techID, whID *string
	err := row.Scan(&v.ID, &v.CompanyID, &v.Plate, &v.Make, &v.Model, &v.Year, &v.VIN, &techID, &whID,
		&v.OdometerKm, &v.InspectionDue, &v.InsuranceDue, &v.Status, &v.LastLat, &v.LastLng, &v.LastSeenAt,
		&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	v.TechnicianID, v.WarehouseID = deref(techID), deref(whID)
	return &v, nil
}

// Create persiste un vehículo. La matrícula es única por empresa.
func (r *VehicleRepo) Create(ctx context.Context, v *entity.Vehicle) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO vehicles (`+vehicleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		v.ID, v.CompanyID, v.Plate, v.Make, v.Model, v.Year, v.VIN, nullIfEmpty(v.TechnicianID),
		nullIfEmpty(v.WarehouseID), v.OdometerKm, v.InspectionDue, v.InsuranceDue, v.Status,
		v.LastLat, v.LastLng, v.LastSeenAt, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr("insert vehicle", err)
	}
	return nil
}

// GetByID obtiene un vehículo por ID.
func (r *VehicleRepo) GetByID(ctx context.Context, id string) (*entity.Vehicle, error) {
	v, err := scanVehicle(r.q.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vehicle: %w", err)
	}
	return v, nil
}

// ListByCompany vehículos de la empresa ordenados por matrícula.
func (r *VehicleRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.Vehicle, error) {
	rows, err := r.q.Query(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE company_id = $1 ORDER BY plate`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()
	var list []*entity.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

// Update persiste los datos editables (no la posición).
func (r *VehicleRepo) Update(ctx context.Context, v *entity.Vehicle) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE vehicles SET plate = $2, make = $3, model = $4, year = $5, vin = $6, technician_id = $7,
		       warehouse_id = $8, odometer_km = $9, inspection_due = $10, insurance_due = $11, status = $12,
		       updated_at = $13
		WHERE id = $1`,
		v.ID, v.Plate, v.Make, v.Model, v.Year, v.VIN, nullIfEmpty(v.TechnicianID), nullIfEmpty(v.WarehouseID),
		v.OdometerKm, v.InspectionDue, v.InsuranceDue, v.Status, v.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr("update vehicle", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdatePosition guarda la última posición conocida.
func (r *VehicleRepo) UpdatePosition(ctx context.Context, id string, lat, lng float64, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE vehicles SET last_lat = $2, last_lng = $3, last_seen_at = $4 WHERE id = $1`, id, lat, lng, at)
	if err != nil {
		return fmt.Errorf("update vehicle position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
