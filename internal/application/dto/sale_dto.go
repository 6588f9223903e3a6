package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutLineRequest un renglón del carrito.
type CheckoutLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
}

// CheckoutRequest carrito enviado por la caja. Los precios los pone el servidor.
type CheckoutRequest struct {
	Items          []CheckoutLineRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod  string                `json:"payment_method" validate:"required,oneof=CASH CARD TRANSFER"`
	Discount       decimal.Decimal       `json:"discount"`
	AmountTendered *decimal.Decimal      `json:"amount_tendered"`
	CustomerEmail  string                `json:"customer_email" validate:"omitempty,email"`
}

// ResendInvoiceRequest destino opcional para reenviar la factura.
type ResendInvoiceRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
}

// SaleLineResponse salida de una línea de venta.
type SaleLineResponse struct {
	ProductID   *string         `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductCode int64           `json:"product_code"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID             string             `json:"id"`
	OperatorID     string             `json:"operator_id"`
	PaymentMethod  string             `json:"payment_method"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	Discount       decimal.Decimal    `json:"discount"`
	TaxRate        decimal.Decimal    `json:"tax_rate"`
	TaxAmount      decimal.Decimal    `json:"tax_amount"`
	Total          decimal.Decimal    `json:"total"`
	AmountTendered decimal.Decimal    `json:"amount_tendered"`
	Change         decimal.Decimal    `json:"change"`
	CustomerEmail  string             `json:"customer_email,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	Lines          []SaleLineResponse `json:"lines,omitempty"`
}

// CheckoutResponse venta confirmada más advertencias de la factura.
type CheckoutResponse struct {
	Sale     SaleResponse `json:"sale"`
	Warnings []string     `json:"warnings"`
}

// SaleListResponse listado de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
