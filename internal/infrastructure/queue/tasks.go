// Package queue envía facturas en segundo plano con asynq sobre Redis.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/stockmaster-api/internal/application/sales"
	"github.com/jhoicas/stockmaster-api/pkg/logger"
)

const (
	// QueueInvoices cola por defecto para facturas.
	QueueInvoices = "invoices"
	// TaskTypeInvoiceDispatch tipo de tarea para enviar una factura.
	TaskTypeInvoiceDispatch = "invoice:dispatch"
	// MaxRetry reintentos de asynq antes de archivar la tarea.
	MaxRetry = 5
)

// NewInvoiceDispatchTask construye la tarea con el mensaje serializado.
func NewInvoiceDispatchTask(msg sales.InvoiceDispatch) (*asynq.Task, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeInvoiceDispatch, data, asynq.MaxRetry(MaxRetry)), nil
}

// Metrics cuenta los envíos procesados por el worker. Puede ser nil.
type Metrics interface {
	IncDispatch(status string)
}

// InvoiceHandler procesa TaskTypeInvoiceDispatch entregando con el dispatcher final.
type InvoiceHandler struct {
	next    sales.NotificationDispatcher
	log     *logger.Logger
	metrics Metrics
}

// NewInvoiceHandler construye el handler del worker.
func NewInvoiceHandler(next sales.NotificationDispatcher, log *logger.Logger, metrics Metrics) *InvoiceHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &InvoiceHandler{next: next, log: log, metrics: metrics}
}

// ProcessTask implementa asynq.Handler. Un payload inválido no se reintenta.
func (h *InvoiceHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var msg sales.InvoiceDispatch
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		h.log.Error().Err(err).Msg("queue: payload de factura inválido")
		return fmt.Errorf("queue: payload inválido: %v: %w", err, asynq.SkipRetry)
	}
	if msg.To == "" {
		h.log.Error().Str("sale_id", msg.SaleID).Msg("queue: factura sin destinatario")
		return fmt.Errorf("queue: factura %s sin destinatario: %w", msg.SaleID, asynq.SkipRetry)
	}
	if err := h.next.DispatchInvoice(ctx, msg); err != nil {
		h.count("failed")
		h.log.Warn().Err(err).Str("sale_id", msg.SaleID).Msg("queue: envío fallido, se reintentará")
		return err
	}
	h.count("sent")
	h.log.Info().Str("sale_id", msg.SaleID).Str("to", msg.To).Msg("queue: factura enviada")
	return nil
}

func (h *InvoiceHandler) count(status string) {
	if h.metrics != nil {
		h.metrics.IncDispatch(status)
	}
}
