package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockmaster-api/internal/application/sales"
	"github.com/jhoicas/stockmaster-api/internal/infrastructure/queue"
)

type recorder struct {
	got []sales.InvoiceDispatch
	err error
}

func (r *recorder) DispatchInvoice(_ context.Context, msg sales.InvoiceDispatch) error {
	if r.err != nil {
		return r.err
	}
	r.got = append(r.got, msg)
	return nil
}

type countMetrics map[string]int

func (m countMetrics) IncDispatch(status string) { m[status]++ }

func sample() sales.InvoiceDispatch {
	return sales.InvoiceDispatch{
		SaleID:         "s1",
		To:             "cliente@correo.co",
		Subject:        "Factura de Venta #s1 - Tienda",
		Attachment:     []byte("%PDF"),
		AttachmentName: "Factura_Venta_s1.pdf",
	}
}

func TestDispatcher_EncolaEnRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	d := queue.NewDispatcher(asynq.RedisClientOpt{Addr: mr.Addr()}, "")
	t.Cleanup(func() { _ = d.Close() })

	require.NoError(t, d.DispatchInvoice(context.Background(), sample()))

	pending, err := mr.List("asynq:{" + queue.QueueInvoices + "}:pending")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestInvoiceHandler_EntregaElMensaje(t *testing.T) {
	next := &recorder{}
	metrics := countMetrics{}
	h := queue.NewInvoiceHandler(next, nil, metrics)

	task, err := queue.NewInvoiceDispatchTask(sample())
	require.NoError(t, err)
	require.NoError(t, h.ProcessTask(context.Background(), task))

	require.Len(t, next.got, 1)
	assert.Equal(t, "cliente@correo.co", next.got[0].To)
	assert.Equal(t, []byte("%PDF"), next.got[0].Attachment)
	assert.Equal(t, 1, metrics["sent"])
}

func TestInvoiceHandler_PayloadInvalidoNoSeReintenta(t *testing.T) {
	h := queue.NewInvoiceHandler(&recorder{}, nil, nil)

	err := h.ProcessTask(context.Background(), asynq.NewTask(queue.TaskTypeInvoiceDispatch, []byte("{no-json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	data, _ := json.Marshal(sales.InvoiceDispatch{SaleID: "s1"})
	err = h.ProcessTask(context.Background(), asynq.NewTask(queue.TaskTypeInvoiceDispatch, data))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestInvoiceHandler_FalloSeReintenta(t *testing.T) {
	boom := errors.New("smtp caído")
	metrics := countMetrics{}
	h := queue.NewInvoiceHandler(&recorder{err: boom}, nil, metrics)

	task, err := queue.NewInvoiceDispatchTask(sample())
	require.NoError(t, err)

	err = h.ProcessTask(context.Background(), task)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
	assert.Equal(t, 1, metrics["failed"])
}
