package service

import (
	"context"
	"errors"
	"sort"
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

// boardLimit tickets máximos cargados para pintar el tablero.
const boardLimit = 1000

// TicketUseCase tablero kanban de incidencias.
type TicketUseCase struct {
	repo     repository.TicketRepository
	analyzer ports.TextAnalyzer // opcional
	events   ports.EventPublisher
	log      *logger.Logger
	now      func() time.Time
}

// NewTicketUseCase construye el caso de uso. analyzer y events pueden ser nil.
func NewTicketUseCase(repo repository.TicketRepository, analyzer ports.TextAnalyzer, events ports.EventPublisher, log *logger.Logger) *TicketUseCase {
	if events == nil {
		events = ports.NopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &TicketUseCase{repo: repo, analyzer: analyzer, events: events, log: log.Component("tickets"), now: time.Now}
}

func (uc *TicketUseCase) publish(ctx context.Context, typ string, t *entity.Ticket, payload any) {
	if err := uc.events.Publish(ctx, entity.NewEvent(typ, t.CompanyID, "ticket", t.ID, payload)); err != nil {
		uc.log.Warn().Err(err).Str("event", typ).Str("ticket_id", t.ID).Msg("no se pudo publicar el evento")
	}
}

// Create abre un ticket en la columna "open". Si faltan categoría o prioridad
// se rellenan con la sugerencia del analizador.
func (uc *TicketUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateTicketRequest) (*dto.TicketResponse, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, errors.Join(domain.ErrInvalidInput, errors.New("el título es obligatorio"))
	}
	if in.Priority != "" && !entity.ValidPriority(in.Priority) {
		return nil, domain.ErrInvalidInput
	}
	var suggestions []string
	if uc.analyzer != nil && (in.Category == "" || in.Priority == "") {
		res := uc.analyzer.Analyze(in.Title + "\n" + in.Description)
		if in.Category == "" {
			in.Category = res.Category
		}
		if in.Priority == "" {
			in.Priority = res.Priority
		}
		suggestions = res.Suggestions
	}
	if in.Priority == "" {
		in.Priority = entity.PriorityNormal
	}

	pos, err := uc.repo.NextPosition(ctx, companyID, entity.TicketOpen)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	t := &entity.Ticket{
		ID: uuid.New().String(), CompanyID: companyID, CustomerID: in.CustomerID, ServiceOrderID: in.ServiceOrderID,
		Title: in.Title, Description: in.Description, Status: entity.TicketOpen,
		Priority: in.Priority, Category: in.Category, AssigneeID: in.AssigneeID, Position: pos,
		CreatedBy: userID, CreatedAt: now, UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	uc.publish(ctx, entity.EventTicketCreated, t, map[string]string{"title": t.Title, "priority": t.Priority})
	out := toTicketResponse(t)
	out.Suggestions = suggestions
	return out, nil
}

func (uc *TicketUseCase) load(ctx context.Context, companyID, id string) (*entity.Ticket, error) {
	t, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil || t.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// Get obtiene un ticket.
func (uc *TicketUseCase) Get(ctx context.Context, companyID, id string) (*dto.TicketResponse, error) {
	t, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return toTicketResponse(t), nil
}

// List tickets filtrados.
func (uc *TicketUseCase) List(ctx context.Context, companyID string, f entity.TicketFilter) ([]dto.TicketResponse, error) {
	page := dto.PageRequest{Limit: f.Limit, Offset: f.Offset}
	page.DefaultPage()
	f.CompanyID, f.Limit, f.Offset = companyID, page.Limit, page.Offset
	list, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TicketResponse, 0, len(list))
	for _, t := range list {
		out = append(out, *toTicketResponse(t))
	}
	return out, nil
}

// Board agrupa los tickets por columna en el orden del tablero, cada una ordenada por posición.
func (uc *TicketUseCase) Board(ctx context.Context, companyID, assigneeID string) (*dto.BoardResponse, error) {
	list, err := uc.repo.List(ctx, entity.TicketFilter{CompanyID: companyID, AssigneeID: assigneeID, Limit: boardLimit})
	if err != nil {
		return nil, err
	}
	byStatus := make(map[string][]*entity.Ticket, len(entity.TicketColumns))
	for _, t := range list {
		byStatus[t.Status] = append(byStatus[t.Status], t)
	}
	out := &dto.BoardResponse{Columns: make([]dto.BoardColumn, 0, len(entity.TicketColumns))}
	for _, status := range entity.TicketColumns {
		col := byStatus[status]
		sort.SliceStable(col, func(i, j int) bool { return col[i].Position < col[j].Position })
		bc := dto.BoardColumn{Status: status, Tickets: make([]dto.TicketResponse, 0, len(col))}
		for _, t := range col {
			bc.Tickets = append(bc.Tickets, *toTicketResponse(t))
		}
		out.Columns = append(out.Columns, bc)
	}
	return out, nil
}

// Update modifica los campos presentes.
func (uc *TicketUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateTicketRequest) (*dto.TicketResponse, error) {
	t, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, domain.ErrInvalidInput
		}
		t.Title = title
	}
	if in.Priority != nil {
		if !entity.ValidPriority(*in.Priority) {
			return nil, domain.ErrInvalidInput
		}
		t.Priority = *in.Priority
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Category != nil {
		t.Category = *in.Category
	}
	if in.AssigneeID != nil {
		t.AssigneeID = *in.AssigneeID
	}
	t.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	uc.publish(ctx, entity.EventTicketUpdated, t, nil)
	return toTicketResponse(t), nil
}

// Move cambia columna y posición con una sola actualización.
// La posición se acota a [0, siguiente libre de la columna destino].
func (uc *TicketUseCase) Move(ctx context.Context, companyID, id string, in dto.MoveTicketRequest) (*dto.TicketResponse, error) {
	if !entity.ValidTicketStatus(in.Status) {
		return nil, errors.Join(domain.ErrInvalidInput, errors.New("columna desconocida"))
	}
	t, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	pos := in.Position
	if pos < 0 {
		pos = 0
	}
	next, err := uc.repo.NextPosition(ctx, companyID, in.Status)
	if err != nil {
		return nil, err
	}
	if in.Status == t.Status && next > 0 {
		next-- // el propio ticket ya ocupa un hueco
	}
	if pos > next {
		pos = next
	}
	from := t.Status
	if err := uc.repo.Move(ctx, t.ID, in.Status, pos); err != nil {
		return nil, err
	}
	t.Status, t.Position, t.UpdatedAt = in.Status, pos, uc.now()
	uc.publish(ctx, entity.EventTicketMoved, t, map[string]any{"from": from, "to": in.Status, "position": pos})
	return toTicketResponse(t), nil
}

func toTicketResponse(t *entity.Ticket) *dto.TicketResponse {
	return &dto.TicketResponse{
		ID: t.ID, CustomerID: t.CustomerID, ServiceOrderID: t.ServiceOrderID,
		Title: t.Title, Description: t.Description, Status: t.Status,
		Priority: t.Priority, Category: t.Category, AssigneeID: t.AssigneeID, Position: t.Position,
		CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
	}
}
