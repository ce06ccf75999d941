package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestOfferOption_Recalculate(t *testing.T) {
	opt := &entity.OfferOption{Items: []*entity.OfferItem{
		{Description: "Split 3,5 kW", Quantity: dec("1"), UnitPrice: dec("899.90"), TaxRate: dec("21")},
		{Description: "Mano de obra", Quantity: dec("3.5"), UnitPrice: dec("45"), TaxRate: dec("21")},
		{Description: "Tubería frigorífica", Quantity: dec("4"), UnitPrice: dec("12.35"), TaxRate: dec("10")},
	}}
	opt.Recalculate()

	assert.True(t, dec("899.90").Equal(opt.Items[0].Subtotal))
	assert.True(t, dec("188.98").Equal(opt.Items[0].TaxAmount), opt.Items[0].TaxAmount.String())
	assert.True(t, dec("157.50").Equal(opt.Items[1].Subtotal))
	assert.True(t, dec("1106.80").Equal(opt.NetTotal), opt.NetTotal.String())
	// 188.98 + 33.08 + 4.94
	assert.True(t, dec("227.00").Equal(opt.TaxTotal), opt.TaxTotal.String())
	assert.True(t, dec("1333.80").Equal(opt.GrandTotal), opt.GrandTotal.String())
}

func TestOffer_ExpiredYOption(t *testing.T) {
	until := time.Date(2026, 6, 30, 23, 59, 0, 0, time.UTC)
	o := &entity.Offer{ValidUntil: &until, Options: []*entity.OfferOption{{ID: "a"}, {ID: "b"}}}

	assert.False(t, o.Expired(until))
	assert.True(t, o.Expired(until.Add(time.Minute)))
	assert.NotNil(t, o.Option("b"))
	assert.Nil(t, o.Option("z"))
	assert.False(t, (&entity.Offer{}).Expired(time.Now()), "sin fecha de validez nunca expira")
}

func TestValidTaxRate(t *testing.T) {
	assert.True(t, entity.ValidTaxRate(dec("0")))
	assert.True(t, entity.ValidTaxRate(dec("100")))
	assert.False(t, entity.ValidTaxRate(dec("-1")))
	assert.False(t, entity.ValidTaxRate(dec("100.01")))
}

func TestInvoice_CanMoveTo(t *testing.T) {
	inv := &entity.Invoice{Status: entity.InvoiceDraft}
	assert.True(t, inv.CanMoveTo(entity.InvoiceIssued))
	assert.False(t, inv.CanMoveTo(entity.InvoicePaid))
	assert.True(t, inv.CanMoveTo(entity.InvoiceVoid))

	inv.Status = entity.InvoicePaid
	assert.False(t, inv.CanMoveTo(entity.InvoiceVoid), "una factura cobrada no se anula")
}
