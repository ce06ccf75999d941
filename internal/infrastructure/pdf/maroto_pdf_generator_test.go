package pdf

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbilling "github.com/jhoicas/climatiza-api/internal/application/billing"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":        "0,00 €",
		"25":       "25,00 €",
		"1234.5":   "1.234,50 €",
		"1000000":  "1.000.000,00 €",
		"-1499.99": "-1.499,99 €",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatMoney(decimal.RequireFromString(in)), in)
	}
}

func TestGenerateInvoicePDF(t *testing.T) {
	d := decimal.RequireFromString
	data := appbilling.InvoicePDFData{
		Invoice: &entity.Invoice{
			Number: "FV-000001", Date: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			NetTotal: d("100"), TaxTotal: d("21"), GrandTotal: d("121"),
		},
		Company:  &entity.Company{Name: "Climatiza SL", TaxID: "B00000000"},
		Customer: &entity.Customer{Name: "Luis Pérez", Address: "C/ Mayor 1", City: "Valencia"},
		Details: []*entity.InvoiceDetail{{
			Description: "Recarga R32", Quantity: d("1"), UnitPrice: d("100"), TaxRate: d("21"), Subtotal: d("100"),
		}},
		ShareURL: "https://crm.example.com/l/abc",
	}
	out, err := NewMarotoPDFGenerator().GenerateInvoicePDF(context.Background(), data)
	require.NoError(t, err)
	assert.True(t, len(out) > 4 && string(out[:4]) == "%PDF")
}

func TestGenerateOfferPDF(t *testing.T) {
	d := decimal.RequireFromString
	opt := &entity.OfferOption{Name: "Split 3,5 kW", Items: []*entity.OfferItem{
		{Description: "Split inverter", Quantity: d("1"), UnitPrice: d("899"), TaxRate: d("21")},
	}}
	opt.Recalculate()
	data := appbilling.OfferPDFData{
		Offer:    &entity.Offer{Number: "OF-000003", Title: "Climatización salón", Options: []*entity.OfferOption{opt}},
		Company:  &entity.Company{Name: "Climatiza SL"},
		Customer: &entity.Customer{Name: "Ana Gil"},
	}
	out, err := NewMarotoPDFGenerator().GenerateOfferPDF(context.Background(), data)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
