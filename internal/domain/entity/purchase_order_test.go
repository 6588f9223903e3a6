package entity_test

import (
	"testing"
	"time"

	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPurchaseOrder_SubtotalYPendiente(t *testing.T) {
	o := entity.NewPurchaseOrder("po-1", "sup-1", "prod-1", 20, decimal.RequireFromString("2500.50"), time.Now())
	assert.Equal(t, entity.PurchaseOrderPending, o.Status)
	assert.True(t, decimal.RequireFromString("50010").Equal(o.Subtotal))
	assert.Nil(t, o.ReceivedAt)
}

func TestPurchaseOrder_RecibirUnaSolaVez(t *testing.T) {
	o := entity.NewPurchaseOrder("po-1", "sup-1", "prod-1", 5, decimal.NewFromInt(10), time.Now())
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, o.MarkReceived(at))
	assert.Equal(t, entity.PurchaseOrderReceived, o.Status)
	require.NotNil(t, o.ReceivedAt)
	assert.Equal(t, at, *o.ReceivedAt)

	err := o.MarkReceived(at.Add(time.Hour))
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, at, *o.ReceivedAt)
}

func TestPurchaseOrder_Transiciones(t *testing.T) {
	tests := []struct {
		name    string
		from    entity.PurchaseOrderStatus
		cancel  bool
		want    entity.PurchaseOrderStatus
		wantErr bool
	}{
		{"pendiente a recibida", entity.PurchaseOrderPending, false, entity.PurchaseOrderReceived, false},
		{"pendiente a cancelada", entity.PurchaseOrderPending, true, entity.PurchaseOrderCancelled, false},
		{"cancelada no se recibe", entity.PurchaseOrderCancelled, false, entity.PurchaseOrderCancelled, true},
		{"recibida no se cancela", entity.PurchaseOrderReceived, true, entity.PurchaseOrderReceived, true},
		{"cancelada no se cancela", entity.PurchaseOrderCancelled, true, entity.PurchaseOrderCancelled, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				got entity.PurchaseOrderStatus
				err error
			)
			if tt.cancel {
				got, err = tt.from.Cancel()
			} else {
				got, err = tt.from.Receive()
			}
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidState)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
