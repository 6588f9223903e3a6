package entity

import (
	"fmt"
	"time"
)

// MovementDirection indica si el movimiento suma o resta al saldo.
type MovementDirection string

const (
	MovementIn  MovementDirection = "IN"  // entrada
	MovementOut MovementDirection = "OUT" // salida
)

// Valid reporta si la dirección es IN u OUT.
func (d MovementDirection) Valid() bool {
	return d == MovementIn || d == MovementOut
}

// Delta devuelve el efecto con signo de qty unidades sobre el saldo.
func (d MovementDirection) Delta(qty int64) int64 {
	if d == MovementOut {
		return -qty
	}
	return qty
}

// StockMovement es una entrada inmutable del kardex.
// ProductID queda nil si el producto se eliminó después.
type StockMovement struct {
	ID        string
	ProductID *string
	Direction MovementDirection
	Quantity  int64
	Reference string
	CreatedAt time.Time
	CreatedBy *string // UserID
}

// Referencias estándar del kardex.
func SaleReference(saleID, productID string) string {
	return fmt.Sprintf("SALE-%s-%s", saleID, productID)
}

func PurchaseOrderReference(orderID string) string {
	return "PO-" + orderID
}

func ReturnReference(saleID, productID string) string {
	return fmt.Sprintf("RETURN-%s-%s", saleID, productID)
}
