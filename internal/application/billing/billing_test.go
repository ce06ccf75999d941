package billing

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/application/inventory"
	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/testutil"
)

const company = "c1"

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

type pdfStub struct {
	invoice InvoicePDFData
	offer   OfferPDFData
}

func (p *pdfStub) GenerateInvoicePDF(_ context.Context, d InvoicePDFData) ([]byte, error) {
	p.invoice = d
	return []byte("%PDF-1.3"), nil
}

func (p *pdfStub) GenerateOfferPDF(_ context.Context, d OfferPDFData) ([]byte, error) {
	p.offer = d
	return []byte("%PDF-1.3"), nil
}

type fixture struct {
	st       *testutil.Store
	offers   *OfferUseCase
	invoices *InvoiceUseCase
	links    *LinkUseCase
	pdf      *pdfStub
}

func newFixture() *fixture {
	st := testutil.NewStore()
	st.Companies[company] = &entity.Company{ID: company, Name: "Clima Norte SL", TaxID: "B12345678"}
	st.Customers["cu1"] = &entity.Customer{ID: "cu1", CompanyID: company, Name: "Ana"}
	st.Customers["cu9"] = &entity.Customer{ID: "cu9", CompanyID: "c2", Name: "Ajeno"}
	st.Products["split"] = &entity.Product{ID: "split", CompanyID: company, SKU: "SPL-35", Name: "Split 3,5 kW", Category: entity.ProductEquipment, Price: dec("650"), TaxRate: dec("21")}
	st.Products["mo"] = &entity.Product{ID: "mo", CompanyID: company, SKU: "MO", Name: "Mano de obra", Category: entity.ProductLabor, Price: dec("40"), TaxRate: dec("21")}
	st.Warehouses["w1"] = &entity.Warehouse{ID: "w1", CompanyID: company, Type: entity.WarehouseMain}

	tx := testutil.TxRunner{Store: st}
	inv := inventory.NewRegisterMovementUseCase(tx, testutil.ProductRepo{Store: st}, testutil.WarehouseRepo{Store: st})
	links := NewLinkUseCase(testutil.LinkRepo{Store: st}, testutil.OfferRepo{Store: st}, testutil.InvoiceRepo{Store: st}, testutil.OrderRepo{Store: st},
		LinkConfig{PublicBaseURL: "https://crm.example.com"})
	pdf := &pdfStub{}
	f := &fixture{st: st, links: links, pdf: pdf}
	f.offers = NewOfferUseCase(OfferDeps{
		Tx: tx, Offers: testutil.OfferRepo{Store: st}, Customers: testutil.CustomerRepo{Store: st},
		Companies: testutil.CompanyRepo{Store: st}, Products: testutil.ProductRepo{Store: st}, PDF: pdf, Links: links,
	})
	f.invoices = NewInvoiceUseCase(InvoiceDeps{
		Tx: tx, Stock: inv, Invoices: testutil.InvoiceRepo{Store: st}, Customers: testutil.CustomerRepo{Store: st},
		Companies: testutil.CompanyRepo{Store: st}, Products: testutil.ProductRepo{Store: st},
		Warehouses: testutil.WarehouseRepo{Store: st}, Orders: testutil.OrderRepo{Store: st}, PDF: pdf, Links: links,
	})
	return f
}

func offerRequest() dto.CreateOfferRequest {
	return dto.CreateOfferRequest{
		CustomerID: "cu1",
		Title:      "Climatización salón",
		Options: []dto.OfferOptionRequest{
			{Name: "Split", Items: []dto.LineItemRequest{
				{ProductID: "split", Quantity: dec("1")},
				{ProductID: "mo", Quantity: dec("3")},
			}},
			{Name: "Split con desplazamiento", Items: []dto.LineItemRequest{
				{ProductID: "split", Quantity: dec("1"), UnitPrice: decPtr("600")},
				{Description: "Desplazamiento", Quantity: dec("1"), UnitPrice: decPtr("30"), TaxRate: decPtr("21")},
			}},
		},
	}
}

func TestOfferCreate_TotalesPorOpcion(t *testing.T) {
	f := newFixture()

	out, err := f.offers.Create(context.Background(), company, "u1", offerRequest())
	require.NoError(t, err)
	assert.Equal(t, "OF-000001", out.Number)
	assert.Equal(t, entity.OfferDraft, out.Status)
	require.NotNil(t, out.ValidUntil)
	require.Len(t, out.Options, 2)
	// 650 + 3×40 = 770; IVA 161,70
	assert.True(t, out.Options[0].NetTotal.Equal(dec("770")))
	assert.True(t, out.Options[0].TaxTotal.Equal(dec("161.7")))
	assert.True(t, out.Options[0].GrandTotal.Equal(dec("931.7")))
	assert.True(t, out.Options[1].NetTotal.Equal(dec("630")))
	assert.Equal(t, "Mano de obra", out.Options[0].Items[1].Description)

	stored := f.st.Offers[out.ID]
	require.Len(t, stored.Options, 2)
	assert.Len(t, stored.Options[1].Items, 2)
}

func TestOfferCreate_Validaciones(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	req := offerRequest()
	req.CustomerID = "cu9"
	_, err := f.offers.Create(ctx, company, "u1", req)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	req = offerRequest()
	req.Options[0].Items[0].TaxRate = decPtr("150")
	_, err = f.offers.Create(ctx, company, "u1", req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	req = offerRequest()
	req.Options = nil
	_, err = f.offers.Create(ctx, company, "u1", req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOffer_CicloAceptarYConvertir(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	o, err := f.offers.Create(ctx, company, "u1", offerRequest())
	require.NoError(t, err)

	_, err = f.offers.Accept(ctx, company, o.ID, o.Options[0].ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "sin enviar")

	_, err = f.offers.Send(ctx, company, o.ID)
	require.NoError(t, err)
	_, err = f.offers.Accept(ctx, company, o.ID, "opcion-de-otra-oferta")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	acc, err := f.offers.Accept(ctx, company, o.ID, o.Options[1].ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OfferAccepted, acc.Status)

	order, err := f.offers.Convert(ctx, company, "u1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderInstallation, order.Type)
	assert.Equal(t, "SO-000001", order.Number)
	assert.Contains(t, order.Description, "Split con desplazamiento")
	assert.Equal(t, order.ID, f.st.Offers[o.ID].ServiceOrderID)

	_, err = f.offers.Convert(ctx, company, "u1", o.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestOfferAccept_CaducadaPasaAExpired(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	o, err := f.offers.Create(ctx, company, "u1", offerRequest())
	require.NoError(t, err)
	_, err = f.offers.Send(ctx, company, o.ID)
	require.NoError(t, err)

	f.offers.now = func() time.Time { return time.Now().Add(DefaultOfferValidity + time.Hour) }
	_, err = f.offers.Accept(ctx, company, o.ID, o.Options[0].ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, entity.OfferExpired, f.st.Offers[o.ID].Status)
}

func TestInvoiceCreate_DescuentaStockSoloEnLineasConAlmacen(t *testing.T) {
	f := newFixture()
	f.st.SetStock("split", "w1", dec("2"))
	ctx := context.Background()

	out, err := f.invoices.Create(ctx, company, "u1", dto.CreateInvoiceRequest{
		CustomerID: "cu1",
		Items: []dto.LineItemRequest{
			{ProductID: "split", WarehouseID: "w1", Quantity: dec("1")},
			{ProductID: "mo", WarehouseID: "w1", Quantity: dec("2")},
			{Description: "Desplazamiento", Quantity: dec("1"), UnitPrice: decPtr("25")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "FV-000001", out.Number)
	assert.Equal(t, entity.InvoiceDraft, out.Status)
	assert.Equal(t, "Ana", out.CustomerName)
	// 650 + 80 + 25 = 755; IVA 21 % de 730 = 153,30; el desplazamiento va sin IVA
	assert.True(t, out.NetTotal.Equal(dec("755")), out.NetTotal.String())
	assert.True(t, out.TaxTotal.Equal(dec("153.3")), out.TaxTotal.String())
	assert.Len(t, out.Details, 3)

	assert.True(t, f.st.StockOf("split", "w1").Equal(dec("1")))
	require.Len(t, f.st.Movements, 1)
	assert.Equal(t, "FV-000001", f.st.Movements[0].Reference)
}

func TestInvoiceCreate_SinStockNoGuarda(t *testing.T) {
	f := newFixture()
	_, err := f.invoices.Create(context.Background(), company, "u1", dto.CreateInvoiceRequest{
		CustomerID: "cu1",
		Items:      []dto.LineItemRequest{{ProductID: "split", WarehouseID: "w1", Quantity: dec("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Empty(t, f.st.Invoices)
}

func TestInvoice_TransicionesYPDF(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	inv, err := f.invoices.Create(ctx, company, "u1", dto.CreateInvoiceRequest{
		CustomerID: "cu1",
		Items:      []dto.LineItemRequest{{ProductID: "mo", Quantity: dec("1")}},
	})
	require.NoError(t, err)

	_, err = f.invoices.MarkPaid(ctx, company, inv.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	issued, err := f.invoices.Issue(ctx, company, inv.ID)
	require.NoError(t, err)
	assert.NotNil(t, issued.IssuedAt)
	paid, err := f.invoices.MarkPaid(ctx, company, inv.ID)
	require.NoError(t, err)
	assert.NotNil(t, paid.PaidAt)
	_, err = f.invoices.Void(ctx, company, inv.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	link, err := f.links.Create(ctx, company, "u1", dto.CreateLinkRequest{ResourceType: entity.LinkInvoice, ResourceID: inv.ID})
	require.NoError(t, err)
	b, name, err := f.invoices.PDF(ctx, company, inv.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, b)
	assert.Equal(t, "FV-000001.pdf", name)
	assert.Equal(t, link.URL, f.pdf.invoice.ShareURL)
	assert.Len(t, f.pdf.invoice.Details, 1)

	_, _, err = f.invoices.PDF(ctx, "c2", inv.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLinkResolve_OrdenDeValidaciones(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	o, err := f.offers.Create(ctx, company, "u1", offerRequest())
	require.NoError(t, err)

	_, err = f.links.Create(ctx, company, "u1", dto.CreateLinkRequest{ResourceType: entity.LinkOffer, ResourceID: "no-existe"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.links.Create(ctx, "c2", "u1", dto.CreateLinkRequest{ResourceType: entity.LinkOffer, ResourceID: o.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	l, err := f.links.Create(ctx, company, "u1", dto.CreateLinkRequest{ResourceType: entity.LinkOffer, ResourceID: o.ID, Password: "s3creto", MaxViews: 1})
	require.NoError(t, err)
	assert.True(t, l.Protected)
	assert.Equal(t, "https://crm.example.com/api/public/links/"+l.Token, l.URL)
	assert.Len(t, l.Token, 43)

	_, err = f.links.Resolve(ctx, l.Token, "mal")
	assert.ErrorIs(t, err, domain.ErrLinkPassword)

	res, err := f.links.Resolve(ctx, l.Token, "s3creto")
	require.NoError(t, err)
	require.NotNil(t, res.Offer)
	assert.Equal(t, o.Number, res.Offer.Number)

	_, err = f.links.Resolve(ctx, l.Token, "s3creto")
	assert.ErrorIs(t, err, domain.ErrLinkExhausted)

	// revocado tiene prioridad sobre agotado
	require.NoError(t, f.links.Revoke(ctx, company, l.ID))
	_, err = f.links.Resolve(ctx, l.Token, "mal")
	assert.ErrorIs(t, err, domain.ErrLinkRevoked)

	_, err = f.links.Resolve(ctx, "desconocido", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLinkResolve_Caducado(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	o, err := f.offers.Create(ctx, company, "u1", offerRequest())
	require.NoError(t, err)
	exp := time.Now().Add(time.Hour)
	l, err := f.links.Create(ctx, company, "u1", dto.CreateLinkRequest{ResourceType: entity.LinkOffer, ResourceID: o.ID, ExpiresAt: &exp})
	require.NoError(t, err)

	f.links.now = func() time.Time { return exp.Add(time.Minute) }
	_, err = f.links.Resolve(ctx, l.Token, "")
	assert.ErrorIs(t, err, domain.ErrLinkExpired)
	assert.Empty(t, f.links.ShareURL(ctx, company, entity.LinkOffer, o.ID))
}
