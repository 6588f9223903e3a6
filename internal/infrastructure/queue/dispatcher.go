package queue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/stockmaster-api/internal/application/sales"
)

var _ sales.NotificationDispatcher = (*Dispatcher)(nil)

// Dispatcher encola la factura en lugar de enviarla en la petición de venta.
type Dispatcher struct {
	client *asynq.Client
	queue  string
}

// NewDispatcher construye el cliente asynq.
func NewDispatcher(redisOpts asynq.RedisClientOpt, queue string) *Dispatcher {
	if queue == "" {
		queue = QueueInvoices
	}
	return &Dispatcher{client: asynq.NewClient(redisOpts), queue: queue}
}

// DispatchInvoice encola la tarea. El envío real lo hace el worker.
func (d *Dispatcher) DispatchInvoice(ctx context.Context, msg sales.InvoiceDispatch) error {
	task, err := NewInvoiceDispatchTask(msg)
	if err != nil {
		return err
	}
	if _, err := d.client.EnqueueContext(ctx, task, asynq.Queue(d.queue)); err != nil {
		return fmt.Errorf("queue: encolar factura %s: %w", msg.SaleID, err)
	}
	return nil
}

// Close libera la conexión a Redis.
func (d *Dispatcher) Close() error {
	return d.client.Close()
}
