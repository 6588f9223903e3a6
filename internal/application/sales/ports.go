package sales

import (
	"context"
	"time"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

// ProductLookup resuelve productos del catálogo (solo lectura).
type ProductLookup interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCode(ctx context.Context, code int64) (*entity.Product, error)
	SearchActive(ctx context.Context, query string, limit int) ([]*entity.Product, error)
}

// InvoiceRenderer genera el documento de la factura. Solo formatea; no cambia estado.
type InvoiceRenderer interface {
	RenderSale(ctx context.Context, sale *entity.Sale) ([]byte, error)
}

// InvoiceDispatch es el mensaje a entregar para una venta.
type InvoiceDispatch struct {
	SaleID         string `json:"sale_id"`
	To             string `json:"to"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	Attachment     []byte `json:"attachment,omitempty"`
	AttachmentName string `json:"attachment_name,omitempty"`
}

// NotificationDispatcher entrega la factura (correo directo o cola).
type NotificationDispatcher interface {
	DispatchInvoice(ctx context.Context, msg InvoiceDispatch) error
}

// OperatorDirectory resuelve el correo de la cuenta del operador.
type OperatorDirectory interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

// Metrics recibe mediciones del checkout. Puede ser nil.
type Metrics interface {
	ObserveCheckout(outcome string, elapsed time.Duration)
	IncDispatch(status string)
}
