// Package sale contiene el cálculo de totales de una venta (servicio de dominio).
package sale

import (
	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Totals agrupa los montos derivados de las líneas.
type Totals struct {
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	TaxRate   decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// ComputeTotals calcula subtotal, base, impuesto y total.
//
//	base     = subtotal - descuento
//	impuesto = round2(base × tasa / 100)
//	total    = base + impuesto
//
// Devuelve ErrInvalidDiscount si el descuento es negativo o deja la base negativa.
func ComputeTotals(lineSubtotals []decimal.Decimal, discount, taxRate decimal.Decimal) (Totals, error) {
	subtotal := decimal.Zero
	for _, s := range lineSubtotals {
		subtotal = subtotal.Add(s)
	}
	if discount.IsNegative() {
		return Totals{}, domain.ErrInvalidDiscount
	}
	base := subtotal.Sub(discount)
	if base.IsNegative() {
		return Totals{}, domain.ErrInvalidDiscount
	}
	tax := base.Mul(taxRate).Div(hundred).Round(moneyPlaces)
	return Totals{
		Subtotal:  subtotal,
		Discount:  discount,
		TaxRate:   taxRate,
		TaxAmount: tax,
		Total:     base.Add(tax),
	}, nil
}

// Change devuelve el vuelto de un pago en efectivo.
// ErrInsufficientPayment si lo recibido no cubre el total.
func Change(total, tendered decimal.Decimal) (decimal.Decimal, error) {
	if tendered.LessThan(total) {
		return decimal.Zero, domain.ErrInsufficientPayment
	}
	return tendered.Sub(total), nil
}
