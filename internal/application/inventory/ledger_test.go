package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
	"github.com/jhoicas/stockmaster-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(t *testing.T) (*inventory.LedgerUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return inventory.NewLedgerUseCase(store, store.Products(), store.Movements(), nil), store
}

func seedProduct(t *testing.T, store *memory.Store, id string, code int64) {
	t.Helper()
	require.NoError(t, store.Products().Create(context.Background(), &entity.Product{
		ID: id, Code: code, Name: "Producto " + id, SalePrice: decimal.NewFromInt(1000), Active: true,
	}))
}

func stockOf(t *testing.T, store *memory.Store, id string) int64 {
	t.Helper()
	p, err := store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func TestRecord_EntradaYSalidaActualizanSaldo(t *testing.T) {
	ctx := context.Background()
	uc, store := newLedger(t)
	seedProduct(t, store, "p1", 1)

	_, err := uc.Record(ctx, inventory.RecordMovementInput{ProductID: "p1", Direction: entity.MovementIn, Quantity: 10, Reference: "compra"})
	require.NoError(t, err)
	_, err = uc.Record(ctx, inventory.RecordMovementInput{ProductID: "p1", Direction: entity.MovementOut, Quantity: 3, Reference: "merma"})
	require.NoError(t, err)

	assert.Equal(t, int64(7), stockOf(t, store, "p1"))
}

func TestRecord_PermiteSaldoNegativo(t *testing.T) {
	ctx := context.Background()
	uc, store := newLedger(t)
	seedProduct(t, store, "p1", 1)

	_, err := uc.Record(ctx, inventory.RecordMovementInput{ProductID: "p1", Direction: entity.MovementOut, Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(-4), stockOf(t, store, "p1"))
}

func TestRecord_EntradaInvalida(t *testing.T) {
	ctx := context.Background()
	uc, store := newLedger(t)
	seedProduct(t, store, "p1", 1)

	cases := []inventory.RecordMovementInput{
		{ProductID: "p1", Direction: entity.MovementIn, Quantity: 0},
		{ProductID: "p1", Direction: entity.MovementIn, Quantity: -2},
		{ProductID: "p1", Direction: "ADJUST", Quantity: 2},
		{ProductID: "", Direction: entity.MovementIn, Quantity: 2},
	}
	for _, in := range cases {
		_, err := uc.Record(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}

	_, err := uc.Record(ctx, inventory.RecordMovementInput{ProductID: "nope", Direction: entity.MovementIn, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int64(0), stockOf(t, store, "p1"))
}

func TestVoid_RevierteElEfecto(t *testing.T) {
	ctx := context.Background()
	uc, store := newLedger(t)
	seedProduct(t, store, "p1", 1)

	_, err := uc.Record(ctx, inventory.RecordMovementInput{ProductID: "p1", Direction: entity.MovementIn, Quantity: 10})
	require.NoError(t, err)
	out, err := uc.Record(ctx, inventory.RecordMovementInput{ProductID: "p1", Direction: entity.MovementOut, Quantity: 6})
	require.NoError(t, err)

	require.NoError(t, uc.Void(ctx, out.ID))
	assert.Equal(t, int64(10), stockOf(t, store, "p1"))

	movs, err := uc.ListByProduct(ctx, "p1", repository.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementIn, movs[0].Direction)

	err = uc.Void(ctx, out.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVoid_MovimientoDeProductoEliminado(t *testing.T) {
	ctx := context.Background()
	uc, store := newLedger(t)
	seedProduct(t, store, "p1", 1)

	m, err := uc.Record(ctx, inventory.RecordMovementInput{ProductID: "p1", Direction: entity.MovementIn, Quantity: 5})
	require.NoError(t, err)
	require.NoError(t, store.Products().Delete(ctx, "p1"))

	detached, err := store.Movements().GetByID(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, detached)
	assert.Nil(t, detached.ProductID)

	require.NoError(t, uc.Void(ctx, m.ID))
	gone, err := store.Movements().GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestListByProduct_OrdenCronologicoYFiltros(t *testing.T) {
	ctx := context.Background()
	uc, store := newLedger(t)
	seedProduct(t, store, "p1", 1)

	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	for i, qty := range []int64{5, 3, 2} {
		pid := "p1"
		require.NoError(t, store.Movements().Create(ctx, &entity.StockMovement{
			ID: string(rune('c' - i)), ProductID: &pid, Direction: entity.MovementIn,
			Quantity: qty, CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	all, err := uc.ListByProduct(ctx, "p1", repository.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{5, 3, 2}, []int64{all[0].Quantity, all[1].Quantity, all[2].Quantity})

	// Reiniciable: la segunda lectura devuelve lo mismo.
	again, err := uc.ListByProduct(ctx, "p1", repository.MovementFilter{})
	require.NoError(t, err)
	assert.Equal(t, all, again)

	from := base.Add(30 * time.Minute)
	filtered, err := uc.ListByProduct(ctx, "p1", repository.MovementFilter{From: &from})
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	page, err := uc.ListByProduct(ctx, "p1", repository.MovementFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(3), page[0].Quantity)

	_, err = uc.ListByProduct(ctx, "nope", repository.MovementFilter{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReconcile_DetectaDescuadre(t *testing.T) {
	ctx := context.Background()
	uc, store := newLedger(t)
	seedProduct(t, store, "p1", 1)
	seedProduct(t, store, "p2", 2)

	_, err := uc.Record(ctx, inventory.RecordMovementInput{ProductID: "p1", Direction: entity.MovementIn, Quantity: 8})
	require.NoError(t, err)
	_, err = uc.Record(ctx, inventory.RecordMovementInput{ProductID: "p1", Direction: entity.MovementOut, Quantity: 2})
	require.NoError(t, err)

	b, err := uc.Reconcile(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, b.Consistent())
	assert.Equal(t, int64(6), b.LedgerBalance)

	// Se altera el saldo sin movimiento.
	require.NoError(t, store.Run(ctx, func(repos repository.TxRepositories) error {
		_, err := repos.Products.AdjustStock(ctx, "p2", 3)
		return err
	}))

	report, err := uc.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Checked)
	require.Len(t, report.Mismatches, 1)
	assert.Equal(t, "p2", report.Mismatches[0].ProductID)
	assert.Equal(t, int64(3), report.Mismatches[0].CachedStock)
	assert.Equal(t, int64(0), report.Mismatches[0].LedgerBalance)
}

// racingProducts confirma una entrada de otro proceso justo después de la
// primera lectura fuera de transacción.
type racingProducts struct {
	repository.ProductRepository
	once sync.Once
	fire func()
}

func (r *racingProducts) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := r.ProductRepository.GetByID(ctx, id)
	r.once.Do(r.fire)
	return p, err
}

func (r *racingProducts) List(ctx context.Context) ([]*entity.Product, error) {
	ps, err := r.ProductRepository.List(ctx)
	r.once.Do(r.fire)
	return ps, err
}

func TestReconcile_MovimientoConcurrenteNoGeneraFalsoDescuadre(t *testing.T) {
	ctx := context.Background()

	for _, all := range []bool{false, true} {
		store := memory.NewStore()
		seedProduct(t, store, "p1", 1)
		other := inventory.NewLedgerUseCase(store, store.Products(), store.Movements(), nil)
		products := &racingProducts{ProductRepository: store.Products()}
		products.fire = func() {
			_, err := other.Record(ctx, inventory.RecordMovementInput{ProductID: "p1", Direction: entity.MovementIn, Quantity: 5})
			require.NoError(t, err)
		}
		uc := inventory.NewLedgerUseCase(store, products, store.Movements(), nil)

		if all {
			report, err := uc.ReconcileAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, report.Checked)
			assert.Empty(t, report.Mismatches)
		} else {
			products.once.Do(products.fire)
			b, err := uc.Reconcile(ctx, "p1")
			require.NoError(t, err)
			assert.True(t, b.Consistent())
			assert.Equal(t, int64(5), b.CachedStock)
			assert.Equal(t, int64(5), b.LedgerBalance)
		}
		assert.Equal(t, int64(5), stockOf(t, store, "p1"))
	}
}

func TestReconcile_ProductoInexistente(t *testing.T) {
	uc, _ := newLedger(t)
	_, err := uc.Reconcile(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordInTx_RollbackDeshaceTodo(t *testing.T) {
	ctx := context.Background()
	uc, store := newLedger(t)
	seedProduct(t, store, "p1", 1)

	boom := errors.New("falla posterior")
	err := store.Run(ctx, func(repos repository.TxRepositories) error {
		if _, err := uc.RecordInTx(ctx, repos, inventory.RecordMovementInput{ProductID: "p1", Direction: entity.MovementIn, Quantity: 9}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(0), stockOf(t, store, "p1"))

	movs, err := uc.ListByProduct(ctx, "p1", repository.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func seedSale(t *testing.T, store *memory.Store, saleID, productID string, qty int64) {
	t.Helper()
	ctx := context.Background()
	p, err := store.Products().GetByID(ctx, productID)
	require.NoError(t, err)
	require.NoError(t, store.Run(ctx, func(repos repository.TxRepositories) error {
		if err := repos.Sales.Create(ctx, &entity.Sale{ID: saleID, OperatorID: "u1", PaymentMethod: entity.PaymentCard, CreatedAt: time.Now()}); err != nil {
			return err
		}
		line := entity.NewSaleLine(saleID+"-l", saleID, p, qty)
		return repos.Sales.CreateLine(ctx, &line)
	}))
}

func TestRecordReturn_LimitadoALoVendido(t *testing.T) {
	ctx := context.Background()
	uc, store := newLedger(t)
	seedProduct(t, store, "p1", 1)
	seedSale(t, store, "s1", "p1", 3)

	m, err := uc.RecordReturn(ctx, inventory.ReturnInput{SaleID: "s1", ProductID: "p1", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, "RETURN-s1-p1", m.Reference)
	assert.Equal(t, entity.MovementIn, m.Direction)
	assert.Equal(t, int64(2), stockOf(t, store, "p1"))

	_, err = uc.RecordReturn(ctx, inventory.ReturnInput{SaleID: "s1", ProductID: "p1", Quantity: 2})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.RecordReturn(ctx, inventory.ReturnInput{SaleID: "s1", ProductID: "p1", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), stockOf(t, store, "p1"))

	_, err = uc.RecordReturn(ctx, inventory.ReturnInput{SaleID: "nope", ProductID: "p1", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
