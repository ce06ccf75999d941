package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/application/ports"
	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
	"github.com/jhoicas/climatiza-api/pkg/logger"
)

// DefaultAlertDays ventana de alertas documentales por defecto.
const DefaultAlertDays = 30

// FleetExporter serializa las últimas posiciones de la flota (KML).
type FleetExporter func(w io.Writer, name string, vehicles []*entity.Vehicle) error

// FleetUseCase vehículos de los técnicos: datos, posición y vencimientos.
type FleetUseCase struct {
	repo   repository.VehicleRepository
	export FleetExporter
	events ports.EventPublisher
	log    *logger.Logger
	now    func() time.Time
}

// NewFleetUseCase construye el caso de uso. events puede ser nil.
func NewFleetUseCase(repo repository.VehicleRepository, export FleetExporter, events ports.EventPublisher, log *logger.Logger) *FleetUseCase {
	if events == nil {
		events = ports.NopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &FleetUseCase{repo: repo, export: export, events: events, log: log.Component("fleet"), now: time.Now}
}

func applyVehicle(v *entity.Vehicle, in dto.VehicleRequest) error {
	plate := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(in.Plate), " ", ""))
	if plate == "" || in.Year < 0 || in.OdometerKm < 0 {
		return domain.ErrInvalidInput
	}
	status := in.Status
	if status == "" {
		status = entity.VehicleActive
	}
	switch status {
	case entity.VehicleActive, entity.VehicleMaintenance, entity.VehicleRetired:
	default:
		return errors.Join(domain.ErrInvalidInput, errors.New("estado de vehículo desconocido"))
	}
	v.Plate, v.Make, v.Model, v.Year, v.VIN = plate, in.Make, in.Model, in.Year, in.VIN
	v.TechnicianID, v.WarehouseID, v.OdometerKm = in.TechnicianID, in.WarehouseID, in.OdometerKm
	v.InspectionDue, v.InsuranceDue, v.Status = in.InspectionDue, in.InsuranceDue, status
	return nil
}

// Create da de alta un vehículo. La matrícula es única por empresa.
func (uc *FleetUseCase) Create(ctx context.Context, companyID string, in dto.VehicleRequest) (*dto.VehicleResponse, error) {
	now := uc.now()
	v := &entity.Vehicle{ID: uuid.New().String(), CompanyID: companyID, CreatedAt: now, UpdatedAt: now}
	if err := applyVehicle(v, in); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return toVehicleResponse(v), nil
}

func (uc *FleetUseCase) load(ctx context.Context, companyID, id string) (*entity.Vehicle, error) {
	v, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil || v.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

// Get obtiene un vehículo.
func (uc *FleetUseCase) Get(ctx context.Context, companyID, id string) (*dto.VehicleResponse, error) {
	v, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return toVehicleResponse(v), nil
}

// List flota de la empresa.
func (uc *FleetUseCase) List(ctx context.Context, companyID string) ([]dto.VehicleResponse, error) {
	list, err := uc.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VehicleResponse, 0, len(list))
	for _, v := range list {
		out = append(out, *toVehicleResponse(v))
	}
	return out, nil
}

// Update reemplaza los datos del vehículo (no la posición).
func (uc *FleetUseCase) Update(ctx context.Context, companyID, id string, in dto.VehicleRequest) (*dto.VehicleResponse, error) {
	v, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := applyVehicle(v, in); err != nil {
		return nil, err
	}
	v.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return toVehicleResponse(v), nil
}

// ReportPosition guarda la última posición GPS y la emite en tiempo real.
func (uc *FleetUseCase) ReportPosition(ctx context.Context, companyID, id string, in dto.PositionRequest) error {
	if in.Lat < -90 || in.Lat > 90 || in.Lng < -180 || in.Lng > 180 {
		return errors.Join(domain.ErrInvalidInput, errors.New("coordenadas fuera de rango"))
	}
	v, err := uc.load(ctx, companyID, id)
	if err != nil {
		return err
	}
	at := uc.now()
	if in.At != nil {
		at = *in.At
	}
	if err := uc.repo.UpdatePosition(ctx, v.ID, in.Lat, in.Lng, at); err != nil {
		return err
	}
	ev := entity.NewEvent(entity.EventVehicleMoved, companyID, "vehicle", v.ID, map[string]any{
		"plate": v.Plate, "lat": in.Lat, "lng": in.Lng, "at": at,
	})
	if err := uc.events.Publish(ctx, ev); err != nil {
		uc.log.Warn().Err(err).Str("vehicle_id", v.ID).Msg("no se pudo publicar la posición")
	}
	return nil
}

// Alerts vencimientos de ITV y seguro dentro de los próximos days días (los vencidos siempre).
func (uc *FleetUseCase) Alerts(ctx context.Context, companyID string, days int) ([]dto.FleetAlertResponse, error) {
	if days <= 0 {
		days = DefaultAlertDays
	}
	list, err := uc.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	out := []dto.FleetAlertResponse{}
	for _, v := range list {
		for _, a := range v.Alerts(now, time.Duration(days)*24*time.Hour) {
			out = append(out, dto.FleetAlertResponse{VehicleID: a.VehicleID, Plate: a.Plate, Kind: a.Kind, DueDate: a.DueDate, Overdue: a.Overdue})
		}
	}
	return out, nil
}

// ExportKML escribe las últimas posiciones conocidas de la flota.
func (uc *FleetUseCase) ExportKML(ctx context.Context, companyID, name string, w io.Writer) error {
	list, err := uc.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return err
	}
	return uc.export(w, name, list)
}

func toVehicleResponse(v *entity.Vehicle) *dto.VehicleResponse {
	return &dto.VehicleResponse{
		ID: v.ID, Plate: v.Plate, Make: v.Make, Model: v.Model, Year: v.Year, VIN: v.VIN,
		TechnicianID: v.TechnicianID, WarehouseID: v.WarehouseID, OdometerKm: v.OdometerKm,
		InspectionDue: v.InspectionDue, InsuranceDue: v.InsuranceDue, Status: v.Status,
		LastLat: v.LastLat, LastLng: v.LastLng, LastSeenAt: v.LastSeenAt,
		CreatedAt: v.CreatedAt, UpdatedAt: v.UpdatedAt,
	}
}
