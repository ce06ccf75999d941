package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/application/inventory"
	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
)

// InvoiceNumber formatea el número visible de una factura.
func InvoiceNumber(n int64) string { return fmt.Sprintf("FV-%06d", n) }

// InvoiceUseCase facturas con descuento de inventario en la misma transacción.
type InvoiceUseCase struct {
	tx            TxRunner
	stock         StockDeducter
	invoiceRepo   repository.InvoiceRepository
	customerRepo  repository.CustomerRepository
	companyRepo   repository.CompanyRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	orderRepo     repository.ServiceOrderRepository
	pdf           PDFGenerator
	links         ShareURLResolver
	now           func() time.Time
}

// InvoiceDeps dependencias del caso de uso de facturas.
type InvoiceDeps struct {
	Tx         TxRunner
	Stock      StockDeducter
	Invoices   repository.InvoiceRepository
	Customers  repository.CustomerRepository
	Companies  repository.CompanyRepository
	Products   repository.ProductRepository
	Warehouses repository.WarehouseRepository
	Orders     repository.ServiceOrderRepository
	PDF        PDFGenerator
	Links      ShareURLResolver // opcional
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(d InvoiceDeps) *InvoiceUseCase {
	return &InvoiceUseCase{
		tx: d.Tx, stock: d.Stock, invoiceRepo: d.Invoices, customerRepo: d.Customers, companyRepo: d.Companies,
		productRepo: d.Products, warehouseRepo: d.Warehouses, orderRepo: d.Orders,
		pdf: d.PDF, links: d.Links, now: time.Now,
	}
}

// Create crea la factura en borrador. Las líneas de producto con almacén generan una salida
// de inventario referenciada al número de factura; si falta stock no se guarda nada.
func (uc *InvoiceUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	// ── 1. Validaciones de solo lectura ───────────────────────────────────────
	customer, err := uc.customerRepo.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil || customer.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if in.ServiceOrderID != "" {
		o, err := uc.orderRepo.GetByID(ctx, in.ServiceOrderID)
		if err != nil {
			return nil, err
		}
		if o == nil || o.CompanyID != companyID {
			return nil, errors.Join(domain.ErrInvalidInput, errors.New("orden de servicio desconocida"))
		}
	}
	lines, err := resolveLines(ctx, uc.productRepo, companyID, in.Items)
	if err != nil {
		return nil, err
	}
	for i, l := range lines {
		if l.WarehouseID == "" {
			continue
		}
		w, err := uc.warehouseRepo.GetByID(ctx, l.WarehouseID)
		if err != nil {
			return nil, err
		}
		if w == nil || w.CompanyID != companyID {
			return nil, errors.Join(domain.ErrInvalidInput, fmt.Errorf("línea %d: almacén desconocido", i+1))
		}
	}

	// ── 2. Importes ───────────────────────────────────────────────────────────
	now := uc.now()
	inv := &entity.Invoice{
		ID: uuid.New().String(), CompanyID: companyID, CustomerID: customer.ID, ServiceOrderID: in.ServiceOrderID,
		Date: now, DueDate: in.DueDate, Status: entity.InvoiceDraft, Notes: in.Notes,
		NetTotal: decimal.Zero, TaxTotal: decimal.Zero,
		CreatedBy: userID, CreatedAt: now, UpdatedAt: now,
	}
	details := make([]*entity.InvoiceDetail, 0, len(lines))
	for _, l := range lines {
		sub, tax := entity.LineAmounts(l.Quantity, l.UnitPrice, l.TaxRate)
		details = append(details, &entity.InvoiceDetail{
			ID: uuid.New().String(), InvoiceID: inv.ID, ProductID: l.productID(), WarehouseID: l.WarehouseID,
			Description: l.Description, Quantity: l.Quantity, UnitPrice: l.UnitPrice, TaxRate: l.TaxRate,
			Subtotal: sub, TaxAmount: tax,
		})
		inv.NetTotal = inv.NetTotal.Add(sub)
		inv.TaxTotal = inv.TaxTotal.Add(tax)
	}
	inv.GrandTotal = inv.NetTotal.Add(inv.TaxTotal)

	// ── 3. Transacción: número, inventario, cabecera y detalle ───────────────
	err = uc.tx.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		n, err := invoiceRepo.NextNumber(ctx, companyID)
		if err != nil {
			return err
		}
		inv.Number = InvoiceNumber(n)
		for _, l := range lines {
			if l.Product == nil || l.WarehouseID == "" || !l.Product.Stockable() {
				continue
			}
			err := uc.stock.RegisterOUTInTx(ctx, movRepo, stockRepo, inventory.OutLine{
				CompanyID: companyID, Product: l.Product, WarehouseID: l.WarehouseID, UserID: userID,
				Quantity: l.Quantity, Reference: inv.Number, TransactionID: inv.ID, At: now,
			})
			if err != nil {
				return err
			}
		}
		if err := invoiceRepo.Create(ctx, inv); err != nil {
			return err
		}
		for _, d := range details {
			if err := invoiceRepo.CreateDetail(ctx, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := ToInvoiceResponse(inv, details)
	out.CustomerName = customer.Name
	return out, nil
}

func (uc *InvoiceUseCase) load(ctx context.Context, companyID, id string) (*entity.Invoice, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil || inv.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

// Get devuelve la factura con su detalle.
func (uc *InvoiceUseCase) Get(ctx context.Context, companyID, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	details, err := uc.invoiceRepo.GetDetailsByInvoiceID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := ToInvoiceResponse(inv, details)
	if c, err := uc.customerRepo.GetByID(ctx, inv.CustomerID); err == nil && c != nil {
		out.CustomerName = c.Name
	}
	return out, nil
}

// List facturas filtradas, sin detalle.
func (uc *InvoiceUseCase) List(ctx context.Context, companyID string, f entity.InvoiceFilter) (*dto.InvoiceListResponse, error) {
	page := dto.PageRequest{Limit: f.Limit, Offset: f.Offset}
	page.DefaultPage()
	f.CompanyID, f.Limit, f.Offset = companyID, page.Limit, page.Offset
	list, total, err := uc.invoiceRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := &dto.InvoiceListResponse{
		Items: make([]dto.InvoiceResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, inv := range list {
		out.Items = append(out.Items, *ToInvoiceResponse(inv, nil))
	}
	return out, nil
}

// Issue emite la factura (draft → issued).
func (uc *InvoiceUseCase) Issue(ctx context.Context, companyID, id string) (*dto.InvoiceResponse, error) {
	return uc.move(ctx, companyID, id, entity.InvoiceIssued)
}

// MarkPaid registra el cobro (issued → paid).
func (uc *InvoiceUseCase) MarkPaid(ctx context.Context, companyID, id string) (*dto.InvoiceResponse, error) {
	return uc.move(ctx, companyID, id, entity.InvoicePaid)
}

// Void anula una factura no cobrada. El stock descontado no se repone: se ajusta por inventario.
func (uc *InvoiceUseCase) Void(ctx context.Context, companyID, id string) (*dto.InvoiceResponse, error) {
	return uc.move(ctx, companyID, id, entity.InvoiceVoid)
}

func (uc *InvoiceUseCase) move(ctx context.Context, companyID, id, to string) (*dto.InvoiceResponse, error) {
	inv, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if !inv.CanMoveTo(to) {
		return nil, errors.Join(domain.ErrInvalidTransition, fmt.Errorf("%s → %s", inv.Status, to))
	}
	now := uc.now()
	switch to {
	case entity.InvoiceIssued:
		inv.IssuedAt = &now
	case entity.InvoicePaid:
		inv.PaidAt = &now
	}
	inv.Status, inv.UpdatedAt = to, now
	if err := uc.invoiceRepo.UpdateStatus(ctx, inv); err != nil {
		return nil, err
	}
	return ToInvoiceResponse(inv, nil), nil
}

// PDF genera el PDF de la factura. Los borradores también se pueden descargar.
func (uc *InvoiceUseCase) PDF(ctx context.Context, companyID, id string) ([]byte, string, error) {
	inv, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, "", err
	}
	details, err := uc.invoiceRepo.GetDetailsByInvoiceID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener detalle: %w", err)
	}
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener empresa: %w", err)
	}
	customer, err := uc.customerRepo.GetByID(ctx, inv.CustomerID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener cliente: %w", err)
	}
	if company == nil || customer == nil {
		return nil, "", domain.ErrNotFound
	}
	data := InvoicePDFData{Invoice: inv, Company: company, Customer: customer, Details: details}
	if uc.links != nil {
		data.ShareURL = uc.links.ShareURL(ctx, companyID, entity.LinkInvoice, inv.ID)
	}
	b, err := uc.pdf.GenerateInvoicePDF(ctx, data)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generar factura: %w", err)
	}
	return b, inv.Number + ".pdf", nil
}

// ToInvoiceResponse convierte cabecera y detalle.
func ToInvoiceResponse(inv *entity.Invoice, details []*entity.InvoiceDetail) *dto.InvoiceResponse {
	out := &dto.InvoiceResponse{
		ID: inv.ID, Number: inv.Number, CustomerID: inv.CustomerID, ServiceOrderID: inv.ServiceOrderID,
		Date: inv.Date, DueDate: inv.DueDate, NetTotal: inv.NetTotal, TaxTotal: inv.TaxTotal, GrandTotal: inv.GrandTotal,
		Status: inv.Status, Notes: inv.Notes, IssuedAt: inv.IssuedAt, PaidAt: inv.PaidAt,
	}
	for _, d := range details {
		out.Details = append(out.Details, dto.InvoiceDetailResponse{
			ID: d.ID, ProductID: d.ProductID, WarehouseID: d.WarehouseID, Description: d.Description,
			Quantity: d.Quantity, UnitPrice: d.UnitPrice, TaxRate: d.TaxRate, Subtotal: d.Subtotal, TaxAmount: d.TaxAmount,
		})
	}
	return out
}
