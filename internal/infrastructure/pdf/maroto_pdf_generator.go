// Package pdf genera los documentos imprimibles (factura y oferta) con Maroto v2.
//
// Layout común A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + CIF       │  Tipo doc + Número + Fecha    │
//	│  EMISOR / CLIENTE                                            │
//	│  TABLA: Cant | Descripción | P.Unit | IVA | Importe          │
//	│  TOTALES: Base / IVA / TOTAL                                 │
//	│  PIE: QR al enlace público (si lo hay) + condiciones         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appbilling "github.com/jhoicas/climatiza-api/internal/application/billing"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 94, Blue: 130}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// MarotoPDFGenerator implementa billing.PDFGenerator.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// lineItem fila común de la tabla de detalle.
type lineItem struct {
	Quantity    decimal.Decimal
	Description string
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
	Subtotal    decimal.Decimal
}

func newMaroto(title, author string) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(author, true).
		Build()
	return maroto.New(cfg)
}

// GenerateInvoicePDF genera la factura y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(_ context.Context, data appbilling.InvoicePDFData) ([]byte, error) {
	inv := data.Invoice
	m := newMaroto("Factura "+inv.Number, data.Company.Name)

	m.AddRows(headerRow(data.Company, "FACTURA", inv.Number, inv.Date.Format("02/01/2006")))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(issuerRow(data.Company))
	m.AddRows(customerRow(data.Customer))
	if inv.DueDate != nil {
		m.AddRows(noteRow("Vencimiento: " + inv.DueDate.Format("02/01/2006")))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	items := make([]lineItem, 0, len(data.Details))
	for _, d := range data.Details {
		items = append(items, lineItem{d.Quantity, d.Description, d.UnitPrice, d.TaxRate, d.Subtotal})
	}
	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(items)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(inv.NetTotal, inv.TaxTotal, inv.GrandTotal))

	if inv.Notes != "" {
		m.AddRows(noteRow(inv.Notes))
	}
	m.AddRows(footerRows(data.ShareURL, "Consulte esta factura en línea escaneando el código.")...)

	return generate(m)
}

// GenerateOfferPDF genera la oferta con una sección por opción.
func (g *MarotoPDFGenerator) GenerateOfferPDF(_ context.Context, data appbilling.OfferPDFData) ([]byte, error) {
	of := data.Offer
	m := newMaroto("Oferta "+of.Number, data.Company.Name)

	m.AddRows(headerRow(data.Company, "OFERTA", of.Number, of.CreatedAt.Format("02/01/2006")))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(issuerRow(data.Company))
	m.AddRows(customerRow(data.Customer))
	m.AddRows(row.New(10).Add(col.New(12).Add(
		text.New(of.Title, props.Text{Style: fontstyle.Bold, Size: 11, Top: 3}),
	)))
	if of.ValidUntil != nil {
		m.AddRows(noteRow("Válida hasta: " + of.ValidUntil.Format("02/01/2006")))
	}

	for i, opt := range of.Options {
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New(fmt.Sprintf("Opción %d: %s", i+1, opt.Name), props.Text{
				Style: fontstyle.Bold, Size: 10, Color: colorPrimary, Top: 2,
			}),
		)))
		items := make([]lineItem, 0, len(opt.Items))
		for _, it := range opt.Items {
			items = append(items, lineItem{it.Quantity, it.Description, it.UnitPrice, it.TaxRate, it.Subtotal})
		}
		m.AddRows(tableHeaderRow())
		m.AddRows(tableRows(items)...)
		m.AddRows(totalsRow(opt.NetTotal, opt.TaxTotal, opt.GrandTotal))
	}

	if of.Notes != "" {
		m.AddRows(noteRow(of.Notes))
	}
	m.AddRows(footerRows(data.ShareURL, "Acepte o rechace la oferta en línea escaneando el código.")...)

	return generate(m)
}

func generate(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(company *entity.Company, kind, number, date string) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("CIF: "+company.TaxID, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(kind, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New(number, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7}),
			text.New("Fecha: "+date, props.Text{Size: 8, Align: align.Right, Top: 14, Color: colorGray}),
		),
	)
}

func issuerRow(company *entity.Company) core.Row {
	return row.New(12).Add(col.New(12).Add(
		text.New("EMISOR", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		text.New(fmt.Sprintf("%s   |   Tel: %s   |   Email: %s",
			nonEmpty(company.Address, "-"), nonEmpty(company.Phone, "-"), nonEmpty(company.Email, "-"),
		), props.Text{Size: 8, Top: 7, Color: colorGray}),
	))
}

func customerRow(c *entity.Customer) core.Row {
	addr := strings.TrimPrefix(c.FullAddress(), ", ")
	return row.New(18).Add(col.New(12).Add(
		text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		text.New(c.Name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
		text.New(fmt.Sprintf("NIF: %s   |   Email: %s   |   Tel: %s",
			nonEmpty(c.TaxID, "-"), nonEmpty(c.Email, "-"), nonEmpty(c.Phone, "-"),
		), props.Text{Size: 8, Top: 11, Color: colorGray}),
		text.New(nonEmpty(addr, "-"), props.Text{Size: 8, Top: 15, Color: colorGray}),
	))
}

func noteRow(s string) core.Row {
	return row.New(8).Add(col.New(12).Add(text.New(s, props.Text{Size: 8, Top: 2, Color: colorGray})))
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 5, align.Left),
		h("Precio", 2, align.Right),
		h("IVA", 1, align.Center),
		h("Importe", 3, align.Right),
	)
}

func tableRows(items []lineItem) []core.Row {
	out := make([]core.Row, 0, len(items))
	for _, it := range items {
		out = append(out, row.New(7).Add(
			col.New(1).Add(text.New(it.Quantity.String(), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(it.Description, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(formatMoney(it.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(it.TaxRate.String()+"%", props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(3).Add(text.New(formatMoney(it.Subtotal), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return out
}

func totalsRow(net, tax, grand decimal.Decimal) core.Row {
	label := func(s string, top float64, bold bool) core.Component {
		p := props.Text{Size: 9, Align: align.Right, Right: 2, Top: top}
		if bold {
			p.Style, p.Color, p.Size = fontstyle.Bold, colorPrimary, 10
		}
		return text.New(s, p)
	}
	return row.New(20).Add(
		col.New(6),
		col.New(3).Add(label("Base imponible:", 1, false), label("IVA:", 7, false), label("TOTAL:", 13, true)),
		col.New(3).Add(label(formatMoney(net), 1, false), label(formatMoney(tax), 7, false), label(formatMoney(grand), 13, true)),
	)
}

func footerRows(shareURL, caption string) []core.Row {
	rows := []core.Row{line.NewRow(3), line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3})}
	if shareURL == "" {
		return rows
	}
	return append(rows, row.New(40).Add(
		col.New(3).Add(code.NewQr(shareURL, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New(caption, props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
			text.New(shareURL, props.Text{Size: 7, Top: 12, Left: 3, Color: colorPrimary}),
		),
	))
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney formatea con miles separados por punto, coma decimal y símbolo de euro.
// Ej: 1234.5 → "1.234,50 €"
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	out := string(buf) + "," + frac + " €"
	if neg {
		out = "-" + out
	}
	return out
}
