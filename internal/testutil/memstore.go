// Package testutil repositorios en memoria para los tests de casos de uso.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
)

// Store estado compartido por todos los repositorios en memoria.
// Devuelve las mismas entidades que guarda (sin copiar): los tests pueden inspeccionarlas.
type Store struct {
	mu sync.Mutex

	Companies  map[string]*entity.Company
	Modules    map[string]*entity.CompanyModule // company|module
	Users      map[string]*entity.User
	Customers  map[string]*entity.Customer
	Devices    map[string]*entity.Device
	Orders     map[string]*entity.ServiceOrder
	Parts      []*entity.ServiceOrderPart
	Tickets    map[string]*entity.Ticket
	Products   map[string]*entity.Product
	Warehouses map[string]*entity.Warehouse
	Stock      map[string]*entity.Stock // product|warehouse
	Movements  []*entity.InventoryMovement
	Offers     map[string]*entity.Offer
	Invoices   map[string]*entity.Invoice
	Details    []*entity.InvoiceDetail
	Links      map[string]*entity.DynamicLink
	Vehicles   map[string]*entity.Vehicle
	Events     map[string]*entity.CalendarEvent

	// TechnicianLocks técnicos bloqueados con LockTechnician, en orden.
	TechnicianLocks []string

	seq map[string]int64 // tipo|empresa

	// FailOn fuerza un error en la operación nombrada ("invoice.CreateDetail", ...).
	FailOn map[string]error
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		Companies:  map[string]*entity.Company{},
		Modules:    map[string]*entity.CompanyModule{},
		Users:      map[string]*entity.User{},
		Customers:  map[string]*entity.Customer{},
		Devices:    map[string]*entity.Device{},
		Orders:     map[string]*entity.ServiceOrder{},
		Tickets:    map[string]*entity.Ticket{},
		Products:   map[string]*entity.Product{},
		Warehouses: map[string]*entity.Warehouse{},
		Stock:      map[string]*entity.Stock{},
		Offers:     map[string]*entity.Offer{},
		Invoices:   map[string]*entity.Invoice{},
		Links:      map[string]*entity.DynamicLink{},
		Vehicles:   map[string]*entity.Vehicle{},
		Events:     map[string]*entity.CalendarEvent{},
		seq:        map[string]int64{},
		FailOn:     map[string]error{},
	}
}

func (s *Store) fail(op string) error {
	return s.FailOn[op]
}

func (s *Store) next(kind, companyID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[kind+"|"+companyID]++
	return s.seq[kind+"|"+companyID]
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// SetStock fija existencias de un producto en una bodega.
func (s *Store) SetStock(productID, warehouseID string, qty decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Stock[productID+"|"+warehouseID] = &entity.Stock{ProductID: productID, WarehouseID: warehouseID, Quantity: qty}
}

// StockOf devuelve la cantidad actual (cero si no hay fila).
func (s *Store) StockOf(productID, warehouseID string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.Stock[productID+"|"+warehouseID]; ok {
		return st.Quantity
	}
	return decimal.Zero
}

// ── companies & modules ───────────────────────────────────────────────────────

// CompanyRepo implementa repository.CompanyRepository.
type CompanyRepo struct{ *Store }

func (r CompanyRepo) Create(_ context.Context, c *entity.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.Companies {
		if x.TaxID == c.TaxID {
			return domain.ErrDuplicate
		}
	}
	r.Companies[c.ID] = c
	return nil
}
func (r CompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Companies[id], nil
}
func (r CompanyRepo) GetByTaxID(_ context.Context, taxID string) (*entity.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.Companies {
		if c.TaxID == taxID {
			return c, nil
		}
	}
	return nil, nil
}
func (r CompanyRepo) Update(_ context.Context, c *entity.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Companies[c.ID] = c
	return nil
}
func (r CompanyRepo) List(_ context.Context, limit, offset int) ([]*entity.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Company, 0, len(r.Companies))
	for _, c := range r.Companies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

// ModuleRepo implementa repository.ModuleRepository.
type ModuleRepo struct{ *Store }

func (r ModuleRepo) HasActiveModule(_ context.Context, companyID, name string) (bool, error) {
	if err := r.fail("module.HasActiveModule"); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.Modules[companyID+"|"+name]
	if !ok || !m.IsActive {
		return false, nil
	}
	return m.ExpiresAt == nil || m.ExpiresAt.After(time.Now()), nil
}
func (r ModuleRepo) Upsert(_ context.Context, m *entity.CompanyModule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Modules[m.CompanyID+"|"+m.ModuleName] = m
	return nil
}
func (r ModuleRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.CompanyModule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.CompanyModule
	for _, m := range r.Modules {
		if m.CompanyID == companyID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModuleName < out[j].ModuleName })
	return out, nil
}

// ── users ─────────────────────────────────────────────────────────────────────

// UserRepo implementa repository.UserRepository.
type UserRepo struct{ *Store }

func (r UserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.Users {
		if x.Email == u.Email {
			return domain.ErrDuplicate
		}
	}
	r.Users[u.ID] = u
	return nil
}
func (r UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Users[id], nil
}
func (r UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}
func (r UserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Users[u.ID] = u
	return nil
}
func (r UserRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.User
	for _, u := range r.Users {
		if u.CompanyID == companyID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return page(out, limit, offset), nil
}
func (r UserRepo) AssignRole(_ context.Context, userID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, x := range u.Roles {
		if x == role {
			return domain.ErrDuplicate
		}
	}
	u.Roles = append(u.Roles, role)
	return nil
}
func (r UserRepo) RevokeRole(_ context.Context, userID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	for i, x := range u.Roles {
		if x == role {
			u.Roles = append(u.Roles[:i], u.Roles[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// ── customers & devices ───────────────────────────────────────────────────────

// CustomerRepo implementa repository.CustomerRepository.
type CustomerRepo struct{ *Store }

func (r CustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	if err := r.fail("customer.Create"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.TaxID != "" {
		for _, x := range r.Customers {
			if x.CompanyID == c.CompanyID && x.TaxID == c.TaxID {
				return domain.ErrDuplicate
			}
		}
	}
	r.Customers[c.ID] = c
	return nil
}
func (r CustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Customers[id], nil
}
func (r CustomerRepo) GetByCompanyAndTaxID(_ context.Context, companyID, taxID string) (*entity.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.Customers {
		if c.CompanyID == companyID && c.TaxID == taxID {
			return c, nil
		}
	}
	return nil, nil
}
func (r CustomerRepo) List(_ context.Context, f entity.CustomerFilter) ([]*entity.Customer, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Customer
	for _, c := range r.Customers {
		if c.CompanyID != f.CompanyID || (f.Type != "" && c.Type != f.Type) || (f.City != "" && !strings.EqualFold(c.City, f.City)) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(c.Name+c.Email+c.Phone+c.TaxID), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, f.Limit, f.Offset), len(out), nil
}
func (r CustomerRepo) Update(_ context.Context, c *entity.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Customers[c.ID] = c
	return nil
}
func (r CustomerRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.Customers, id)
	return nil
}

// DeviceRepo implementa repository.DeviceRepository.
type DeviceRepo struct{ *Store }

func (r DeviceRepo) Create(_ context.Context, d *entity.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Devices[d.ID] = d
	return nil
}
func (r DeviceRepo) GetByID(_ context.Context, id string) (*entity.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Devices[id], nil
}
func (r DeviceRepo) ListByCustomer(_ context.Context, customerID string) ([]*entity.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Device
	for _, d := range r.Devices {
		if d.CustomerID == customerID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
func (r DeviceRepo) ListDueBefore(_ context.Context, companyID string, before time.Time, limit int) ([]*entity.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Device
	for _, d := range r.Devices {
		if d.CompanyID == companyID && d.NextServiceAt != nil && d.NextServiceAt.Before(before) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextServiceAt.Before(*out[j].NextServiceAt) })
	return page(out, limit, 0), nil
}
func (r DeviceRepo) Update(_ context.Context, d *entity.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Devices[d.ID] = d
	return nil
}
func (r DeviceRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.Devices, id)
	return nil
}

// ── service orders & tickets ──────────────────────────────────────────────────

// OrderRepo implementa repository.ServiceOrderRepository.
type OrderRepo struct{ *Store }

func (r OrderRepo) NextNumber(_ context.Context, companyID string) (int64, error) {
	return r.next("SO", companyID), nil
}
func (r OrderRepo) Create(_ context.Context, o *entity.ServiceOrder) error {
	if err := r.fail("order.Create"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Orders[o.ID] = o
	return nil
}
func (r OrderRepo) GetByID(_ context.Context, id string) (*entity.ServiceOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Orders[id], nil
}
func (r OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.ServiceOrder, error) {
	return r.GetByID(ctx, id)
}
func (r OrderRepo) List(_ context.Context, f entity.ServiceOrderFilter) ([]*entity.ServiceOrder, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ServiceOrder
	for _, o := range r.Orders {
		if o.CompanyID != f.CompanyID || (f.Status != "" && o.Status != f.Status) ||
			(f.TechnicianID != "" && o.TechnicianID != f.TechnicianID) || (f.CustomerID != "" && o.CustomerID != f.CustomerID) {
			continue
		}
		if f.From != nil && (o.ScheduledStart == nil || o.ScheduledStart.Before(*f.From)) {
			continue
		}
		if f.To != nil && (o.ScheduledStart == nil || !o.ScheduledStart.Before(*f.To)) {
			continue
		}
		if f.EndAfter != nil && (o.ScheduledEnd == nil || !o.ScheduledEnd.After(*f.EndAfter)) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return page(out, f.Limit, f.Offset), len(out), nil
}
func (r OrderRepo) Update(_ context.Context, o *entity.ServiceOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Orders[o.ID] = o
	return nil
}
func (r OrderRepo) LockTechnician(_ context.Context, technicianID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.TechnicianLocks = append(r.TechnicianLocks, technicianID)
	return nil
}
func (r OrderRepo) FindOverlapping(_ context.Context, technicianID string, start, end time.Time, excludeID string) ([]*entity.ServiceOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ServiceOrder
	for _, o := range r.Orders {
		if o.ID == excludeID || o.TechnicianID != technicianID || o.Status == entity.OrderStatusCancelled ||
			o.ScheduledStart == nil || o.ScheduledEnd == nil {
			continue
		}
		if entity.Overlaps(start, end, *o.ScheduledStart, *o.ScheduledEnd) {
			out = append(out, o)
		}
	}
	return out, nil
}
func (r OrderRepo) AddPart(_ context.Context, p *entity.ServiceOrderPart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Parts = append(r.Parts, p)
	return nil
}
func (r OrderRepo) ListParts(_ context.Context, orderID string) ([]*entity.ServiceOrderPart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ServiceOrderPart
	for _, p := range r.Parts {
		if p.ServiceOrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

// TicketRepo implementa repository.TicketRepository.
type TicketRepo struct{ *Store }

func (r TicketRepo) Create(_ context.Context, t *entity.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Tickets[t.ID] = t
	return nil
}
func (r TicketRepo) GetByID(_ context.Context, id string) (*entity.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Tickets[id], nil
}
func (r TicketRepo) List(_ context.Context, f entity.TicketFilter) ([]*entity.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Ticket
	for _, t := range r.Tickets {
		if t.CompanyID != f.CompanyID || (f.Status != "" && t.Status != f.Status) ||
			(f.AssigneeID != "" && t.AssigneeID != f.AssigneeID) || (f.CustomerID != "" && t.CustomerID != f.CustomerID) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Status != out[j].Status {
			return out[i].Status < out[j].Status
		}
		return out[i].Position < out[j].Position
	})
	return page(out, f.Limit, f.Offset), nil
}
func (r TicketRepo) Update(_ context.Context, t *entity.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Tickets[t.ID] = t
	return nil
}
func (r TicketRepo) Move(_ context.Context, id, status string, position int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.Tickets[id]
	if !ok {
		return domain.ErrNotFound
	}
	columns := map[string][]*entity.Ticket{}
	for _, o := range r.Tickets {
		if o.CompanyID == t.CompanyID && o.ID != id {
			columns[o.Status] = append(columns[o.Status], o)
		}
	}
	for st, col := range columns {
		sort.SliceStable(col, func(i, j int) bool {
			if col[i].Position != col[j].Position {
				return col[i].Position < col[j].Position
			}
			return col[i].CreatedAt.Before(col[j].CreatedAt)
		})
		if st == status {
			if position > len(col) {
				position = len(col)
			}
			col = append(col[:position], append([]*entity.Ticket{t}, col[position:]...)...)
		}
		columns[st] = col
	}
	if _, ok := columns[status]; !ok {
		columns[status] = []*entity.Ticket{t}
	}
	t.Status = status
	for _, col := range columns {
		for i, o := range col {
			o.Position = i
		}
	}
	return nil
}
func (r TicketRepo) NextPosition(_ context.Context, companyID, status string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.Tickets {
		if t.CompanyID == companyID && t.Status == status && t.Position >= n {
			n = t.Position + 1
		}
	}
	return n, nil
}

// ── inventory ─────────────────────────────────────────────────────────────────

// ProductRepo implementa repository.ProductRepository.
type ProductRepo struct{ *Store }

func (r ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Products[p.ID] = p
	return nil
}
func (r ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Products[id], nil
}
func (r ProductRepo) GetByCompanyAndSKU(_ context.Context, companyID, sku string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.Products {
		if p.CompanyID == companyID && p.SKU == sku {
			return p, nil
		}
	}
	return nil, nil
}
func (r ProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Products[p.ID] = p
	return nil
}
func (r ProductRepo) UpdateCost(_ context.Context, id string, cost decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.Products[id]; ok {
		p.Cost = cost
	}
	return nil
}
func (r ProductRepo) ListByCompany(_ context.Context, companyID, search string, limit, offset int) ([]*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.Products {
		if p.CompanyID == companyID && (search == "" || strings.Contains(strings.ToLower(p.SKU+" "+p.Name), strings.ToLower(search))) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return page(out, limit, offset), nil
}
func (r ProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.Products, id)
	return nil
}

// WarehouseRepo implementa repository.WarehouseRepository.
type WarehouseRepo struct{ *Store }

func (r WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Warehouses[w.ID] = w
	return nil
}
func (r WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Warehouses[id], nil
}
func (r WarehouseRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Warehouse
	for _, w := range r.Warehouses {
		if w.CompanyID == companyID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

// StockRepo implementa repository.StockRepository.
type StockRepo struct{ *Store }

func (r StockRepo) Get(_ context.Context, productID, warehouseID string) (*entity.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.Stock[productID+"|"+warehouseID]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}
func (r StockRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	st, err := r.Get(ctx, productID, warehouseID)
	if st == nil && err == nil {
		st = &entity.Stock{ProductID: productID, WarehouseID: warehouseID, Quantity: decimal.Zero}
	}
	return st, err
}
func (r StockRepo) TotalForUpdate(_ context.Context, productID string) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, st := range r.Stock {
		if st.ProductID == productID {
			total = total.Add(st.Quantity)
		}
	}
	return total, nil
}
func (r StockRepo) Upsert(_ context.Context, st *entity.Stock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *st
	r.Stock[st.ProductID+"|"+st.WarehouseID] = &cp
	return nil
}
func (r StockRepo) levels(match func(*entity.Stock) bool) []*entity.StockLevel {
	var out []*entity.StockLevel
	for _, st := range r.Stock {
		if !match(st) {
			continue
		}
		lvl := &entity.StockLevel{ProductID: st.ProductID, WarehouseID: st.WarehouseID, Quantity: st.Quantity, UpdatedAt: st.UpdatedAt}
		if p, ok := r.Products[st.ProductID]; ok {
			lvl.SKU, lvl.ProductName, lvl.ReorderPoint = p.SKU, p.Name, p.ReorderPoint
		}
		out = append(out, lvl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU+out[i].WarehouseID < out[j].SKU+out[j].WarehouseID })
	return out
}
func (r StockRepo) ListByWarehouse(_ context.Context, warehouseID string, limit, offset int) ([]*entity.StockLevel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return page(r.levels(func(s *entity.Stock) bool { return s.WarehouseID == warehouseID }), limit, offset), nil
}
func (r StockRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockLevel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.levels(func(s *entity.Stock) bool { return s.ProductID == productID }), nil
}
func (r StockRepo) BelowReorderPoint(_ context.Context, companyID, warehouseID string) ([]repository.ReplenishmentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.ReplenishmentItem
	for _, p := range r.Products {
		if p.CompanyID != companyID || !p.ReorderPoint.IsPositive() {
			continue
		}
		qty := decimal.Zero
		for _, st := range r.Stock {
			if st.ProductID == p.ID && (warehouseID == "" || st.WarehouseID == warehouseID) {
				qty = qty.Add(st.Quantity)
			}
		}
		if qty.LessThan(p.ReorderPoint) {
			out = append(out, repository.ReplenishmentItem{
				ProductID: p.ID, SKU: p.SKU, ProductName: p.Name, CurrentStock: qty,
				ReorderPoint: p.ReorderPoint, UnitCost: p.Cost, Price: p.Price,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ReorderPoint.Sub(out[i].CurrentStock).GreaterThan(out[j].ReorderPoint.Sub(out[j].CurrentStock))
	})
	return out, nil
}

// MovementRepo implementa repository.InventoryMovementRepository.
type MovementRepo struct{ *Store }

func (r MovementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Movements = append(r.Movements, m)
	return nil
}
func (r MovementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.InventoryMovement
	for i := len(r.Movements) - 1; i >= 0; i-- {
		if r.Movements[i].ProductID == productID {
			out = append(out, r.Movements[i])
		}
	}
	return page(out, limit, offset), nil
}
func (r MovementRepo) ListByTransaction(_ context.Context, txID string) ([]*entity.InventoryMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.InventoryMovement
	for _, m := range r.Movements {
		if m.TransactionID == txID {
			out = append(out, m)
		}
	}
	return out, nil
}

// ── billing ───────────────────────────────────────────────────────────────────

// OfferRepo implementa repository.OfferRepository.
type OfferRepo struct{ *Store }

func (r OfferRepo) NextNumber(_ context.Context, companyID string) (int64, error) {
	return r.next("OF", companyID), nil
}
func (r OfferRepo) Create(_ context.Context, o *entity.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	cp.Options = nil
	r.Offers[o.ID] = &cp
	return nil
}
func (r OfferRepo) CreateOption(_ context.Context, opt *entity.OfferOption) error {
	if err := r.fail("offer.CreateOption"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.Offers[opt.OfferID]
	if !ok {
		return domain.ErrNotFound
	}
	cp := *opt
	cp.Items = nil
	o.Options = append(o.Options, &cp)
	return nil
}
func (r OfferRepo) CreateItem(_ context.Context, it *entity.OfferItem) error {
	if err := r.fail("offer.CreateItem"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.Offers {
		for _, opt := range o.Options {
			if opt.ID == it.OptionID {
				opt.Items = append(opt.Items, it)
				return nil
			}
		}
	}
	return domain.ErrNotFound
}
func (r OfferRepo) GetByID(_ context.Context, id string) (*entity.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.Offers[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}
func (r OfferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Offer, error) {
	return r.GetByID(ctx, id)
}
func (r OfferRepo) List(_ context.Context, f entity.OfferFilter) ([]*entity.Offer, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Offer
	for _, o := range r.Offers {
		if o.CompanyID == f.CompanyID && (f.Status == "" || o.Status == f.Status) && (f.CustomerID == "" || o.CustomerID == f.CustomerID) {
			cp := *o
			cp.Options = nil
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return page(out, f.Limit, f.Offset), len(out), nil
}
func (r OfferRepo) UpdateStatus(_ context.Context, o *entity.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.Offers[o.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Status, cur.SelectedOptionID, cur.ServiceOrderID = o.Status, o.SelectedOptionID, o.ServiceOrderID
	cur.SentAt, cur.DecidedAt, cur.UpdatedAt = o.SentAt, o.DecidedAt, o.UpdatedAt
	return nil
}

// InvoiceRepo implementa repository.InvoiceRepository.
type InvoiceRepo struct{ *Store }

func (r InvoiceRepo) NextNumber(_ context.Context, companyID string) (int64, error) {
	return r.next("FV", companyID), nil
}
func (r InvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Invoices[inv.ID] = inv
	return nil
}
func (r InvoiceRepo) CreateDetail(_ context.Context, d *entity.InvoiceDetail) error {
	if err := r.fail("invoice.CreateDetail"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Details = append(r.Details, d)
	return nil
}
func (r InvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Invoices[id], nil
}
func (r InvoiceRepo) GetDetailsByInvoiceID(_ context.Context, id string) ([]*entity.InvoiceDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.InvoiceDetail
	for _, d := range r.Details {
		if d.InvoiceID == id {
			out = append(out, d)
		}
	}
	return out, nil
}
func (r InvoiceRepo) List(_ context.Context, f entity.InvoiceFilter) ([]*entity.Invoice, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Invoice
	for _, inv := range r.Invoices {
		if inv.CompanyID == f.CompanyID && (f.Status == "" || inv.Status == f.Status) && (f.CustomerID == "" || inv.CustomerID == f.CustomerID) {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return page(out, f.Limit, f.Offset), len(out), nil
}
func (r InvoiceRepo) UpdateStatus(_ context.Context, inv *entity.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Invoices[inv.ID] = inv
	return nil
}

// LinkRepo implementa repository.LinkRepository.
type LinkRepo struct{ *Store }

func (r LinkRepo) Create(_ context.Context, l *entity.DynamicLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Links[l.ID] = l
	return nil
}
func (r LinkRepo) GetByToken(_ context.Context, token string) (*entity.DynamicLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.Links {
		if l.Token == token {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}
func (r LinkRepo) GetByID(_ context.Context, id string) (*entity.DynamicLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.Links[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}
func (r LinkRepo) ListByResource(_ context.Context, companyID, resourceType, resourceID string) ([]*entity.DynamicLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.DynamicLink
	for _, l := range r.Links {
		if l.CompanyID == companyID && l.ResourceType == resourceType && l.ResourceID == resourceID {
			out = append(out, l)
		}
	}
	return out, nil
}
func (r LinkRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.DynamicLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.DynamicLink
	for _, l := range r.Links {
		if l.CompanyID == companyID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}
func (r LinkRepo) Revoke(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.Links[id]
	if !ok {
		return domain.ErrNotFound
	}
	if l.RevokedAt == nil {
		now := time.Now()
		l.RevokedAt = &now
	}
	return nil
}
func (r LinkRepo) IncrementViews(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.Links[id]
	if !ok || l.CheckUsable(time.Now()) != nil {
		return false, nil
	}
	l.Views++
	return true, nil
}

// ── fleet & calendar ──────────────────────────────────────────────────────────

// VehicleRepo implementa repository.VehicleRepository.
type VehicleRepo struct{ *Store }

func (r VehicleRepo) Create(_ context.Context, v *entity.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.Vehicles {
		if x.CompanyID == v.CompanyID && x.Plate == v.Plate {
			return domain.ErrDuplicate
		}
	}
	r.Vehicles[v.ID] = v
	return nil
}
func (r VehicleRepo) GetByID(_ context.Context, id string) (*entity.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Vehicles[id], nil
}
func (r VehicleRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Vehicle
	for _, v := range r.Vehicles {
		if v.CompanyID == companyID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Plate < out[j].Plate })
	return out, nil
}
func (r VehicleRepo) Update(_ context.Context, v *entity.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Vehicles[v.ID] = v
	return nil
}
func (r VehicleRepo) UpdatePosition(_ context.Context, id string, lat, lng float64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.Vehicles[id]
	if !ok {
		return domain.ErrNotFound
	}
	v.LastLat, v.LastLng, v.LastSeenAt = &lat, &lng, &at
	return nil
}

// CalendarRepo implementa repository.CalendarRepository.
type CalendarRepo struct{ *Store }

func (r CalendarRepo) Create(_ context.Context, ev *entity.CalendarEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events[ev.ID] = ev
	return nil
}
func (r CalendarRepo) GetByID(_ context.Context, id string) (*entity.CalendarEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Events[id], nil
}
func (r CalendarRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.Events, id)
	return nil
}
func (r CalendarRepo) ListRange(_ context.Context, companyID string, from, to time.Time, technicianID string) ([]*entity.CalendarEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.CalendarEvent
	for _, ev := range r.Events {
		if ev.CompanyID == companyID && (technicianID == "" || ev.TechnicianID == technicianID) &&
			entity.Overlaps(ev.Start, ev.End, from, to) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}
func (r CalendarRepo) UpsertExternal(_ context.Context, ev *entity.CalendarEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, x := range r.Events {
		if x.CompanyID == ev.CompanyID && x.ExternalID == ev.ExternalID {
			ev.ID = id
			break
		}
	}
	r.Events[ev.ID] = ev
	return nil
}

// ── transacciones ─────────────────────────────────────────────────────────────

// TxRunner ejecuta los callbacks sobre los mismos repositorios en memoria.
// No hay rollback: los tests de atomicidad viven en las pruebas de integración.
type TxRunner struct{ *Store }

func (t TxRunner) Run(_ context.Context, fn func(repository.InventoryMovementRepository, repository.StockRepository, repository.ProductRepository) error) error {
	return fn(MovementRepo(t), StockRepo(t), ProductRepo(t))
}

func (t TxRunner) RunServiceOrder(_ context.Context, fn func(repository.ServiceOrderRepository, repository.DeviceRepository, repository.InventoryMovementRepository, repository.StockRepository, repository.ProductRepository) error) error {
	return fn(OrderRepo(t), DeviceRepo(t), MovementRepo(t), StockRepo(t), ProductRepo(t))
}

func (t TxRunner) RunBilling(_ context.Context, fn func(repository.InvoiceRepository, repository.InventoryMovementRepository, repository.StockRepository, repository.ProductRepository) error) error {
	return fn(InvoiceRepo(t), MovementRepo(t), StockRepo(t), ProductRepo(t))
}

func (t TxRunner) RunOffer(_ context.Context, fn func(repository.OfferRepository, repository.ServiceOrderRepository) error) error {
	return fn(OfferRepo(t), OrderRepo(t))
}

// ReportStub implementa repository.ReportRepository devolviendo valores vacíos.
// Los tests lo embeben y sobrescriben los métodos que necesitan.
type ReportStub struct{}

func (ReportStub) ServiceOrdersByStatus(context.Context, string) ([]repository.StatusCount, error) {
	return nil, nil
}
func (ReportStub) CompletedOrders(context.Context, string, time.Time, time.Time) (int, error) {
	return 0, nil
}
func (ReportStub) Revenue(context.Context, string, time.Time, time.Time) (decimal.Decimal, error) {
	return decimal.Zero, nil
}
func (ReportStub) TicketsByStatus(context.Context, string) ([]repository.StatusCount, error) {
	return nil, nil
}
func (ReportStub) LowStockCount(context.Context, string) (int, error) { return 0, nil }
func (ReportStub) TechnicianWorkload(context.Context, string, time.Time, time.Time) ([]repository.TechnicianWorkload, error) {
	return nil, nil
}
func (ReportStub) ServiceOrderReport(context.Context, string, time.Time, time.Time) ([]repository.ServiceOrderReportRow, error) {
	return nil, nil
}
func (ReportStub) GetSKUMargins(context.Context, string, time.Time, time.Time, int) ([]repository.SKUMarginResult, error) {
	return nil, nil
}
