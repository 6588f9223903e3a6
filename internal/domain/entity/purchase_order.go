package entity

import (
	"time"

	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus es el estado del ciclo de vida de una orden de compra.
type PurchaseOrderStatus string

const (
	PurchaseOrderPending   PurchaseOrderStatus = "PENDING"
	PurchaseOrderReceived  PurchaseOrderStatus = "RECEIVED"
	PurchaseOrderCancelled PurchaseOrderStatus = "CANCELLED"
)

// Receive devuelve el estado siguiente a una recepción.
func (s PurchaseOrderStatus) Receive() (PurchaseOrderStatus, error) {
	if s != PurchaseOrderPending {
		return s, domain.ErrInvalidState
	}
	return PurchaseOrderReceived, nil
}

// Cancel devuelve el estado siguiente a una cancelación.
func (s PurchaseOrderStatus) Cancel() (PurchaseOrderStatus, error) {
	if s != PurchaseOrderPending {
		return s, domain.ErrInvalidState
	}
	return PurchaseOrderCancelled, nil
}

// PurchaseOrder es una orden de compra a proveedor por un solo producto.
type PurchaseOrder struct {
	ID         string
	SupplierID string
	ProductID  *string
	Quantity   int64
	UnitCost   decimal.Decimal
	Subtotal   decimal.Decimal
	Status     PurchaseOrderStatus
	CreatedAt  time.Time
	ReceivedAt *time.Time
}

// NewPurchaseOrder arma una orden PENDING con subtotal = cantidad × costo unitario.
func NewPurchaseOrder(id, supplierID, productID string, qty int64, unitCost decimal.Decimal, now time.Time) *PurchaseOrder {
	pid := productID
	return &PurchaseOrder{
		ID:         id,
		SupplierID: supplierID,
		ProductID:  &pid,
		Quantity:   qty,
		UnitCost:   unitCost,
		Subtotal:   unitCost.Mul(decimal.NewFromInt(qty)),
		Status:     PurchaseOrderPending,
		CreatedAt:  now,
	}
}

// MarkReceived aplica la transición a RECEIVED y registra la fecha.
func (o *PurchaseOrder) MarkReceived(at time.Time) error {
	next, err := o.Status.Receive()
	if err != nil {
		return err
	}
	o.Status = next
	o.ReceivedAt = &at
	return nil
}

// MarkCancelled aplica la transición a CANCELLED.
func (o *PurchaseOrder) MarkCancelled() error {
	next, err := o.Status.Cancel()
	if err != nil {
		return err
	}
	o.Status = next
	return nil
}
