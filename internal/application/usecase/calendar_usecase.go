package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/application/ports"
	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
)

const (
	maxCalendarRange  = 93 * 24 * time.Hour
	calendarOrderPage = 500
)

// CalendarUseCase agenda: eventos propios, externos y órdenes programadas.
type CalendarUseCase struct {
	repo      repository.CalendarRepository
	orderRepo repository.ServiceOrderRepository
	provider  ports.CalendarProvider // opcional
	now       func() time.Time
}

// NewCalendarUseCase construye el caso de uso. provider puede ser nil.
func NewCalendarUseCase(repo repository.CalendarRepository, orderRepo repository.ServiceOrderRepository, provider ports.CalendarProvider) *CalendarUseCase {
	return &CalendarUseCase{repo: repo, orderRepo: orderRepo, provider: provider, now: time.Now}
}

func checkRange(from, to time.Time) error {
	if !to.After(from) {
		return errors.Join(domain.ErrInvalidInput, errors.New("el fin del rango debe ser posterior al inicio"))
	}
	if to.Sub(from) > maxCalendarRange {
		return errors.Join(domain.ErrInvalidInput, errors.New("el rango máximo es de 93 días"))
	}
	return nil
}

// Range une los eventos guardados con las órdenes programadas en [from, to), ordenados por inicio.
func (uc *CalendarUseCase) Range(ctx context.Context, companyID string, from, to time.Time, technicianID string) ([]dto.CalendarEventResponse, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	events, err := uc.repo.ListRange(ctx, companyID, from, to, technicianID)
	if err != nil {
		return nil, err
	}
	orders, err := uc.scheduledOrders(ctx, companyID, technicianID, from, to)
	if err != nil {
		return nil, err
	}

	out := make([]dto.CalendarEventResponse, 0, len(events)+len(orders))
	for _, ev := range events {
		out = append(out, toCalendarResponse(ev))
	}
	for _, o := range orders {
		if o.Status == entity.OrderStatusCancelled || o.ScheduledStart == nil || o.ScheduledEnd == nil {
			continue
		}
		if !entity.Overlaps(*o.ScheduledStart, *o.ScheduledEnd, from, to) {
			continue
		}
		out = append(out, dto.CalendarEventResponse{
			ID: o.ID, Title: o.Number + " " + o.Title, Description: o.Description,
			Start: *o.ScheduledStart, End: *o.ScheduledEnd, Kind: entity.EventServiceOrder,
			TechnicianID: o.TechnicianID, ServiceOrderID: o.ID, Source: entity.EventSourceLocal,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// scheduledOrders órdenes cuya franja pisa [from, to), incluidas las de varios días que
// empezaron antes de from. Recorre todas las páginas.
func (uc *CalendarUseCase) scheduledOrders(ctx context.Context, companyID, technicianID string, from, to time.Time) ([]*entity.ServiceOrder, error) {
	f := entity.ServiceOrderFilter{
		CompanyID: companyID, TechnicianID: technicianID, To: &to, EndAfter: &from, Limit: calendarOrderPage,
	}
	var all []*entity.ServiceOrder
	for {
		page, total, err := uc.orderRepo.List(ctx, f)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		f.Offset += len(page)
		if len(page) < f.Limit || f.Offset >= total {
			return all, nil
		}
	}
}

// Create registra un evento local (reunión o ausencia).
func (uc *CalendarUseCase) Create(ctx context.Context, companyID string, in dto.CreateCalendarEventRequest) (*dto.CalendarEventResponse, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, errors.Join(domain.ErrInvalidInput, errors.New("el título es obligatorio"))
	}
	if !in.End.After(in.Start) {
		return nil, errors.Join(domain.ErrInvalidInput, errors.New("el fin debe ser posterior al inicio"))
	}
	if in.Kind == "" {
		in.Kind = entity.EventMeeting
	}
	if in.Kind != entity.EventMeeting && in.Kind != entity.EventAbsence {
		return nil, errors.Join(domain.ErrInvalidInput, errors.New("tipo de evento no permitido"))
	}
	now := uc.now()
	ev := &entity.CalendarEvent{
		ID: uuid.New().String(), CompanyID: companyID, Title: in.Title, Description: in.Description,
		Start: in.Start, End: in.End, AllDay: in.AllDay, Kind: in.Kind, TechnicianID: in.TechnicianID,
		Source: entity.EventSourceLocal, CreatedAt: now, UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, ev); err != nil {
		return nil, err
	}
	out := toCalendarResponse(ev)
	return &out, nil
}

// Delete borra un evento local. Los externos se gestionan en su calendario de origen.
func (uc *CalendarUseCase) Delete(ctx context.Context, companyID, id string) error {
	ev, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ev == nil || ev.CompanyID != companyID {
		return domain.ErrNotFound
	}
	if ev.Source == entity.EventSourceExternal {
		return errors.Join(domain.ErrConflict, errors.New("los eventos externos no se borran desde aquí"))
	}
	return uc.repo.Delete(ctx, id)
}

// Sync trae los eventos del calendario externo en [from, to) y los guarda por external_id.
func (uc *CalendarUseCase) Sync(ctx context.Context, companyID string, from, to time.Time) (*dto.CalendarSyncResult, error) {
	if uc.provider == nil {
		return nil, domain.ErrUnavailable
	}
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	events, err := uc.provider.ListEvents(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("calendario externo: %w", err)
	}
	res := &dto.CalendarSyncResult{Fetched: len(events)}
	now := uc.now()
	for _, ev := range events {
		if ev.ExternalID == "" {
			continue
		}
		ev.ID = uuid.New().String()
		ev.CompanyID, ev.Source, ev.Kind = companyID, entity.EventSourceExternal, entity.EventExternal
		ev.CreatedAt, ev.UpdatedAt = now, now
		if err := uc.repo.UpsertExternal(ctx, ev); err != nil {
			return nil, err
		}
		res.Upserted++
	}
	return res, nil
}

func toCalendarResponse(ev *entity.CalendarEvent) dto.CalendarEventResponse {
	return dto.CalendarEventResponse{
		ID: ev.ID, Title: ev.Title, Description: ev.Description, Start: ev.Start, End: ev.End,
		AllDay: ev.AllDay, Kind: ev.Kind, TechnicianID: ev.TechnicianID, ServiceOrderID: ev.ServiceOrderID,
		Source: ev.Source, ExternalID: ev.ExternalID,
	}
}
