package purchasing_test

import (
	"context"
	"testing"

	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
	"github.com/jhoicas/stockmaster-api/internal/application/purchasing"
	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
	"github.com/jhoicas/stockmaster-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store     *memory.Store
	orders    *purchasing.PurchaseOrderUseCase
	suppliers *purchasing.SupplierUseCase
	ledger    *inventory.LedgerUseCase
	supplier  *entity.Supplier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	ledger := inventory.NewLedgerUseCase(store, store.Products(), store.Movements(), nil)
	f := &fixture{
		store:     store,
		ledger:    ledger,
		orders:    purchasing.NewPurchaseOrderUseCase(store, ledger, store.PurchaseOrders(), store.Suppliers(), store.Products()),
		suppliers: purchasing.NewSupplierUseCase(store.Suppliers()),
	}
	sup, err := f.suppliers.Create(context.Background(), purchasing.SupplierInput{Name: "Distribuidora Andina", Email: "ventas@andina.co"})
	require.NoError(t, err)
	f.supplier = sup
	require.NoError(t, store.Products().Create(context.Background(), &entity.Product{ID: "p1", Code: 10, Name: "Aceite", Active: true}))
	return f
}

func (f *fixture) stock(t *testing.T) int64 {
	p, err := f.store.Products().GetByID(context.Background(), "p1")
	require.NoError(t, err)
	return p.Stock
}

func TestReceive_SumaStockUnaSolaVez(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.orders.Create(ctx, purchasing.CreatePurchaseOrderInput{
		SupplierID: f.supplier.ID, ProductID: "p1", Quantity: 20, UnitCost: decimal.RequireFromString("4200"),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderPending, order.Status)
	assert.True(t, decimal.RequireFromString("84000").Equal(order.Subtotal))
	assert.Equal(t, int64(0), f.stock(t))

	got, err := f.orders.Receive(ctx, order.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderReceived, got.Status)
	assert.NotNil(t, got.ReceivedAt)
	assert.Equal(t, int64(20), f.stock(t))

	_, err = f.orders.Receive(ctx, order.ID, "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, int64(20), f.stock(t))

	movs, err := f.ledger.ListByProduct(ctx, "p1", repository.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, "PO-"+order.ID, movs[0].Reference)
}

func TestCancel_SinEfectoEnStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.orders.Create(ctx, purchasing.CreatePurchaseOrderInput{
		SupplierID: f.supplier.ID, ProductID: "p1", Quantity: 5, UnitCost: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	got, err := f.orders.Cancel(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderCancelled, got.Status)
	assert.Nil(t, got.ReceivedAt)

	_, err = f.orders.Receive(ctx, order.ID, "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, int64(0), f.stock(t))

	stored, err := f.orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderCancelled, stored.Status)
}

func TestCreate_Validaciones(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.orders.Create(ctx, purchasing.CreatePurchaseOrderInput{SupplierID: f.supplier.ID, ProductID: "p1", Quantity: 0, UnitCost: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.orders.Create(ctx, purchasing.CreatePurchaseOrderInput{SupplierID: f.supplier.ID, ProductID: "p1", Quantity: 1, UnitCost: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.orders.Create(ctx, purchasing.CreatePurchaseOrderInput{SupplierID: "nope", ProductID: "p1", Quantity: 1, UnitCost: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.orders.Create(ctx, purchasing.CreatePurchaseOrderInput{SupplierID: f.supplier.ID, ProductID: "nope", Quantity: 1, UnitCost: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.orders.Receive(ctx, "nope", "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListBySupplier(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		_, err := f.orders.Create(ctx, purchasing.CreatePurchaseOrderInput{SupplierID: f.supplier.ID, ProductID: "p1", Quantity: 1, UnitCost: decimal.NewFromInt(1)})
		require.NoError(t, err)
	}
	list, err := f.orders.ListBySupplier(ctx, f.supplier.ID)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	_, err = f.orders.ListBySupplier(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSupplier_EmailDuplicadoYBorrado(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.suppliers.Create(ctx, purchasing.SupplierInput{Name: "Otro", Email: "VENTAS@andina.co"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = f.suppliers.Create(ctx, purchasing.SupplierInput{Name: "", Email: "x@y.co"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.orders.Create(ctx, purchasing.CreatePurchaseOrderInput{SupplierID: f.supplier.ID, ProductID: "p1", Quantity: 1, UnitCost: decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.ErrorIs(t, f.suppliers.Delete(ctx, f.supplier.ID), domain.ErrInvalidState)

	lone, err := f.suppliers.Create(ctx, purchasing.SupplierInput{Name: "Sin órdenes", Email: "solo@x.co"})
	require.NoError(t, err)
	require.NoError(t, f.suppliers.Delete(ctx, lone.ID))
	_, err = f.suppliers.Get(ctx, lone.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
