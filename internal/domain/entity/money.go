package entity

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LineAmounts calcula base imponible e impuesto de una línea (redondeo a 2 decimales).
// taxRate es un porcentaje 0-100.
func LineAmounts(qty, unitPrice, taxRate decimal.Decimal) (subtotal, tax decimal.Decimal) {
	subtotal = qty.Mul(unitPrice).Round(2)
	tax = subtotal.Mul(taxRate).Div(hundred).Round(2)
	return subtotal, tax
}

// ValidTaxRate informa si r es un porcentaje entre 0 y 100.
func ValidTaxRate(r decimal.Decimal) bool {
	return !r.IsNegative() && r.LessThanOrEqual(hundred)
}
