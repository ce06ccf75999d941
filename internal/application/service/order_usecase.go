package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/application/inventory"
	"github.com/jhoicas/climatiza-api/internal/application/ports"
	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
	"github.com/jhoicas/climatiza-api/pkg/logger"
)

// OrderNumber formatea el número visible de una orden.
func OrderNumber(n int64) string { return fmt.Sprintf("SO-%06d", n) }

// OrderUseCase ciclo de vida de las órdenes de servicio.
type OrderUseCase struct {
	tx            TxRunner
	orderRepo     repository.ServiceOrderRepository
	customerRepo  repository.CustomerRepository
	deviceRepo    repository.DeviceRepository
	userRepo      repository.UserRepository
	warehouseRepo repository.WarehouseRepository
	stock         StockDeducter
	events        ports.EventPublisher
	log           *logger.Logger
	now           func() time.Time
}

// OrderDeps dependencias del caso de uso de órdenes.
type OrderDeps struct {
	Tx         TxRunner
	Orders     repository.ServiceOrderRepository
	Customers  repository.CustomerRepository
	Devices    repository.DeviceRepository
	Users      repository.UserRepository
	Warehouses repository.WarehouseRepository
	Stock      StockDeducter
	Events     ports.EventPublisher // nil = NopPublisher
	Log        *logger.Logger
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(d OrderDeps) *OrderUseCase {
	if d.Events == nil {
		d.Events = ports.NopPublisher{}
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return &OrderUseCase{
		tx: d.Tx, orderRepo: d.Orders, customerRepo: d.Customers, deviceRepo: d.Devices,
		userRepo: d.Users, warehouseRepo: d.Warehouses, stock: d.Stock,
		events: d.Events, log: d.Log.Component("service_orders"), now: time.Now,
	}
}

// publish emite el evento después del commit. Un fallo no revierte la operación.
func (uc *OrderUseCase) publish(ctx context.Context, typ string, o *entity.ServiceOrder, payload any) {
	if err := uc.events.Publish(ctx, entity.NewEvent(typ, o.CompanyID, "service_order", o.ID, payload)); err != nil {
		uc.log.Warn().Err(err).Str("event", typ).Str("order_id", o.ID).Msg("no se pudo publicar el evento")
	}
}

func (uc *OrderUseCase) checkTechnician(ctx context.Context, companyID, id string) error {
	if id == "" {
		return nil
	}
	u, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil || u.CompanyID != companyID {
		return errors.Join(domain.ErrInvalidInput, errors.New("técnico desconocido"))
	}
	return nil
}

func validSlot(start, end *time.Time) error {
	if (start == nil) != (end == nil) {
		return errors.Join(domain.ErrInvalidInput, errors.New("la franja necesita inicio y fin"))
	}
	if start != nil && !end.After(*start) {
		return errors.Join(domain.ErrInvalidInput, errors.New("el fin debe ser posterior al inicio"))
	}
	return nil
}

// Create abre una orden. Con técnico y franja nace programada.
func (uc *OrderUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateServiceOrderRequest) (*dto.ServiceOrderResponse, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Priority == "" {
		in.Priority = entity.PriorityNormal
	}
	if in.Title == "" || !entity.ValidOrderType(in.Type) || !entity.ValidPriority(in.Priority) {
		return nil, domain.ErrInvalidInput
	}
	if err := validSlot(in.ScheduledStart, in.ScheduledEnd); err != nil {
		return nil, err
	}
	c, err := uc.customerRepo.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if in.DeviceID != "" {
		d, err := uc.deviceRepo.GetByID(ctx, in.DeviceID)
		if err != nil {
			return nil, err
		}
		if d == nil || d.CustomerID != c.ID {
			return nil, errors.Join(domain.ErrInvalidInput, errors.New("el equipo no pertenece al cliente"))
		}
	}
	if err := uc.checkTechnician(ctx, companyID, in.TechnicianID); err != nil {
		return nil, err
	}

	now := uc.now()
	o := &entity.ServiceOrder{
		ID: uuid.New().String(), CompanyID: companyID, CustomerID: c.ID, DeviceID: in.DeviceID,
		Type: in.Type, Status: entity.OrderStatusNew, Priority: in.Priority,
		Title: in.Title, Description: in.Description, TechnicianID: in.TechnicianID, VehicleID: in.VehicleID,
		ScheduledStart: in.ScheduledStart, ScheduledEnd: in.ScheduledEnd, Notes: in.Notes,
		CreatedBy: userID, CreatedAt: now, UpdatedAt: now,
	}
	scheduled := o.TechnicianID != "" && o.ScheduledStart != nil
	if scheduled {
		o.Status = entity.OrderStatusScheduled
	}

	err = uc.tx.RunServiceOrder(ctx, func(orderRepo repository.ServiceOrderRepository, _ repository.DeviceRepository,
		_ repository.InventoryMovementRepository, _ repository.StockRepository, _ repository.ProductRepository) error {
		if scheduled {
			if err := checkOverlap(ctx, orderRepo, o.TechnicianID, *o.ScheduledStart, *o.ScheduledEnd, ""); err != nil {
				return err
			}
		}
		n, err := orderRepo.NextNumber(ctx, companyID)
		if err != nil {
			return err
		}
		o.Number = OrderNumber(n)
		return orderRepo.Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, entity.EventOrderCreated, o, map[string]string{"number": o.Number, "status": o.Status})
	return toOrderResponse(o, nil), nil
}

// checkOverlap debe llamarse dentro de RunServiceOrder: el lock del técnico dura hasta el commit.
func checkOverlap(ctx context.Context, repo repository.ServiceOrderRepository, technicianID string, start, end time.Time, excludeID string) error {
	if err := repo.LockTechnician(ctx, technicianID); err != nil {
		return err
	}
	clash, err := repo.FindOverlapping(ctx, technicianID, start, end, excludeID)
	if err != nil {
		return err
	}
	if len(clash) > 0 {
		return errors.Join(domain.ErrConflict, fmt.Errorf("el técnico ya tiene la orden %s en esa franja", clash[0].Number))
	}
	return nil
}

func (uc *OrderUseCase) load(ctx context.Context, repo repository.ServiceOrderRepository, companyID, id string, forUpdate bool) (*entity.ServiceOrder, error) {
	get := repo.GetByID
	if forUpdate {
		get = repo.GetForUpdate
	}
	o, err := get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil || o.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// Get devuelve la orden con sus repuestos.
func (uc *OrderUseCase) Get(ctx context.Context, companyID, id string) (*dto.ServiceOrderResponse, error) {
	o, err := uc.load(ctx, uc.orderRepo, companyID, id, false)
	if err != nil {
		return nil, err
	}
	parts, err := uc.orderRepo.ListParts(ctx, id)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(o, parts), nil
}

// List órdenes filtradas y paginadas.
func (uc *OrderUseCase) List(ctx context.Context, companyID string, f entity.ServiceOrderFilter) (*dto.ServiceOrderListResponse, error) {
	page := dto.PageRequest{Limit: f.Limit, Offset: f.Offset}
	page.DefaultPage()
	f.CompanyID, f.Limit, f.Offset = companyID, page.Limit, page.Offset
	list, total, err := uc.orderRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := &dto.ServiceOrderListResponse{
		Items: make([]dto.ServiceOrderResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, o := range list {
		out.Items = append(out.Items, *toOrderResponse(o, nil))
	}
	return out, nil
}

// Update modifica campos descriptivos. Las órdenes cerradas no se editan.
func (uc *OrderUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateServiceOrderRequest) (*dto.ServiceOrderResponse, error) {
	o, err := uc.load(ctx, uc.orderRepo, companyID, id, false)
	if err != nil {
		return nil, err
	}
	if o.Closed() {
		return nil, errors.Join(domain.ErrConflict, errors.New("la orden está cerrada"))
	}
	if in.Priority != nil {
		if !entity.ValidPriority(*in.Priority) {
			return nil, domain.ErrInvalidInput
		}
		o.Priority = *in.Priority
	}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			return nil, domain.ErrInvalidInput
		}
		o.Title = t
	}
	if in.LaborHours != nil {
		if in.LaborHours.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		o.LaborHours = *in.LaborHours
	}
	if in.Description != nil {
		o.Description = *in.Description
	}
	if in.VehicleID != nil {
		o.VehicleID = *in.VehicleID
	}
	if in.Notes != nil {
		o.Notes = *in.Notes
	}
	o.UpdatedAt = uc.now()
	if err := uc.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	return toOrderResponse(o, nil), nil
}

// ChangeStatus aplica una transición de la máquina de estados.
// Completar fija CompletedAt y, si procede, actualiza el historial del equipo.
// Volver a "new" libera la franja.
func (uc *OrderUseCase) ChangeStatus(ctx context.Context, companyID, id, status string) (*dto.ServiceOrderResponse, error) {
	var o *entity.ServiceOrder
	var from string
	err := uc.tx.RunServiceOrder(ctx, func(orderRepo repository.ServiceOrderRepository, deviceRepo repository.DeviceRepository,
		_ repository.InventoryMovementRepository, _ repository.StockRepository, _ repository.ProductRepository) error {
		var err error
		o, err = uc.load(ctx, orderRepo, companyID, id, true)
		if err != nil {
			return err
		}
		from = o.Status
		if !entity.CanTransition(o.Status, status) {
			return errors.Join(domain.ErrInvalidTransition, fmt.Errorf("%s → %s", o.Status, status))
		}
		now := uc.now()
		switch status {
		case entity.OrderStatusScheduled:
			if o.TechnicianID == "" || o.ScheduledStart == nil || o.ScheduledEnd == nil {
				return errors.Join(domain.ErrInvalidInput, errors.New("la orden no tiene técnico ni franja"))
			}
			if err := checkOverlap(ctx, orderRepo, o.TechnicianID, *o.ScheduledStart, *o.ScheduledEnd, o.ID); err != nil {
				return err
			}
		case entity.OrderStatusNew:
			o.ScheduledStart, o.ScheduledEnd = nil, nil
		case entity.OrderStatusCompleted:
			o.CompletedAt = &now
			if o.UpdatesDeviceHistory() {
				d, err := deviceRepo.GetByID(ctx, o.DeviceID)
				if err != nil {
					return err
				}
				if d != nil {
					d.RecordService(now)
					d.UpdatedAt = now
					if err := deviceRepo.Update(ctx, d); err != nil {
						return err
					}
				}
			}
		}
		o.Status, o.UpdatedAt = status, now
		return orderRepo.Update(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, entity.EventOrderStatus, o, map[string]string{"from": from, "to": status, "number": o.Number})
	return toOrderResponse(o, nil), nil
}

// Schedule asigna técnico y franja. Rechaza dobles reservas del técnico.
func (uc *OrderUseCase) Schedule(ctx context.Context, companyID, id string, in dto.ScheduleRequest) (*dto.ServiceOrderResponse, error) {
	if err := validSlot(&in.Start, &in.End); err != nil {
		return nil, err
	}
	if err := uc.checkTechnician(ctx, companyID, in.TechnicianID); err != nil {
		return nil, err
	}
	if in.TechnicianID == "" {
		return nil, domain.ErrInvalidInput
	}
	var o *entity.ServiceOrder
	err := uc.tx.RunServiceOrder(ctx, func(orderRepo repository.ServiceOrderRepository, _ repository.DeviceRepository,
		_ repository.InventoryMovementRepository, _ repository.StockRepository, _ repository.ProductRepository) error {
		var err error
		o, err = uc.load(ctx, orderRepo, companyID, id, true)
		if err != nil {
			return err
		}
		if o.Status != entity.OrderStatusNew && o.Status != entity.OrderStatusScheduled {
			return errors.Join(domain.ErrInvalidTransition, fmt.Errorf("no se puede programar una orden %s", o.Status))
		}
		if err := checkOverlap(ctx, orderRepo, in.TechnicianID, in.Start, in.End, o.ID); err != nil {
			return err
		}
		start, end := in.Start, in.End
		o.TechnicianID, o.ScheduledStart, o.ScheduledEnd = in.TechnicianID, &start, &end
		if in.VehicleID != "" {
			o.VehicleID = in.VehicleID
		}
		o.Status, o.UpdatedAt = entity.OrderStatusScheduled, uc.now()
		return orderRepo.Update(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, entity.EventOrderSchedule, o, map[string]any{
		"technician_id": o.TechnicianID, "start": o.ScheduledStart, "end": o.ScheduledEnd,
	})
	return toOrderResponse(o, nil), nil
}

// AddPart consume un repuesto: línea en la orden y salida de inventario en la misma transacción.
func (uc *OrderUseCase) AddPart(ctx context.Context, companyID, userID, id string, in dto.AddPartRequest) (*dto.ServiceOrderPartResponse, error) {
	if !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	w, err := uc.warehouseRepo.GetByID(ctx, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if w == nil || w.CompanyID != companyID {
		return nil, errors.Join(domain.ErrInvalidInput, errors.New("almacén desconocido"))
	}

	var part *entity.ServiceOrderPart
	err = uc.tx.RunServiceOrder(ctx, func(orderRepo repository.ServiceOrderRepository, _ repository.DeviceRepository,
		movRepo repository.InventoryMovementRepository, stockRepo repository.StockRepository, productRepo repository.ProductRepository) error {
		o, err := uc.load(ctx, orderRepo, companyID, id, true)
		if err != nil {
			return err
		}
		if o.Closed() {
			return errors.Join(domain.ErrConflict, errors.New("la orden está cerrada"))
		}
		p, err := productRepo.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if p == nil || p.CompanyID != companyID {
			return errors.Join(domain.ErrInvalidInput, errors.New("producto desconocido"))
		}
		now := uc.now()
		price := p.Price
		if in.UnitPrice != nil {
			price = *in.UnitPrice
		}
		part = &entity.ServiceOrderPart{
			ID: uuid.New().String(), ServiceOrderID: o.ID, ProductID: p.ID, WarehouseID: w.ID,
			Quantity: in.Quantity, UnitPrice: price, CreatedAt: now,
		}
		if p.Stockable() {
			err = uc.stock.RegisterOUTInTx(ctx, movRepo, stockRepo, inventory.OutLine{
				CompanyID: companyID, Product: p, WarehouseID: w.ID, UserID: userID,
				Quantity: in.Quantity, Reference: o.Number, TransactionID: uuid.New().String(), At: now,
			})
			if err != nil {
				return err
			}
		}
		return orderRepo.AddPart(ctx, part)
	})
	if err != nil {
		return nil, err
	}
	return toPartResponse(part), nil
}

func toPartResponse(p *entity.ServiceOrderPart) *dto.ServiceOrderPartResponse {
	return &dto.ServiceOrderPartResponse{
		ID: p.ID, ProductID: p.ProductID, WarehouseID: p.WarehouseID,
		Quantity: p.Quantity, UnitPrice: p.UnitPrice, CreatedAt: p.CreatedAt,
	}
}

// ToOrderResponse expone la conversión para enlaces públicos y calendario.
func ToOrderResponse(o *entity.ServiceOrder) *dto.ServiceOrderResponse { return toOrderResponse(o, nil) }

func toOrderResponse(o *entity.ServiceOrder, parts []*entity.ServiceOrderPart) *dto.ServiceOrderResponse {
	out := &dto.ServiceOrderResponse{
		ID: o.ID, Number: o.Number, CustomerID: o.CustomerID, DeviceID: o.DeviceID,
		Type: o.Type, Status: o.Status, Priority: o.Priority, Title: o.Title, Description: o.Description,
		TechnicianID: o.TechnicianID, VehicleID: o.VehicleID,
		ScheduledStart: o.ScheduledStart, ScheduledEnd: o.ScheduledEnd, CompletedAt: o.CompletedAt,
		LaborHours: o.LaborHours, Notes: o.Notes, CreatedAt: o.CreatedAt, UpdatedAt: o.UpdatedAt,
	}
	for _, p := range parts {
		out.Parts = append(out.Parts, *toPartResponse(p))
	}
	return out
}
