package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod es el medio de pago de una venta.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentCard     PaymentMethod = "CARD"
	PaymentTransfer PaymentMethod = "TRANSFER"
)

// Valid reporta si el medio de pago es conocido.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

// Sale es el encabezado de una venta confirmada. Los montos se calculan en el
// servidor; nunca se toman del cliente.
type Sale struct {
	ID             string
	OperatorID     string
	PaymentMethod  PaymentMethod
	Subtotal       decimal.Decimal
	Discount       decimal.Decimal
	TaxRate        decimal.Decimal // porcentaje, ej. 19
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
	AmountTendered decimal.Decimal // cero si no es efectivo
	Change         decimal.Decimal
	CustomerEmail  string
	CreatedAt      time.Time
	Lines          []SaleLine
}

// SaleLine guarda una foto del producto al momento de la venta.
type SaleLine struct {
	ID          string
	SaleID      string
	ProductID   *string
	ProductName string
	ProductCode int64
	Quantity    int64
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// NewSaleLine toma nombre, código y precio del producto tal como están ahora.
func NewSaleLine(id, saleID string, p *Product, qty int64) SaleLine {
	pid := p.ID
	return SaleLine{
		ID:          id,
		SaleID:      saleID,
		ProductID:   &pid,
		ProductName: p.Name,
		ProductCode: p.Code,
		Quantity:    qty,
		UnitPrice:   p.SalePrice,
		Subtotal:    p.SalePrice.Mul(decimal.NewFromInt(qty)),
	}
}

// QuantityOf suma lo vendido de un producto en esta venta.
func (s *Sale) QuantityOf(productID string) int64 {
	var n int64
	for _, l := range s.Lines {
		if l.ProductID != nil && *l.ProductID == productID {
			n += l.Quantity
		}
	}
	return n
}
