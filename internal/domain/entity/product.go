package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un artículo del catálogo.
// Stock es el saldo cacheado; solo lo modifican las operaciones del kardex.
type Product struct {
	ID            string
	Code          int64  // código numérico único
	Name          string
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	Stock         int64 // puede quedar negativo vía kardex
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Sellable indica si el producto puede agregarse a una venta.
func (p *Product) Sellable() bool {
	return p != nil && p.Active
}

// StockValue devuelve stock × precio de venta.
func (p *Product) StockValue() decimal.Decimal {
	return p.SalePrice.Mul(decimal.NewFromInt(p.Stock))
}
