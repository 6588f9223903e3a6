package sales_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
	"github.com/jhoicas/stockmaster-api/internal/application/sales"
	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
	"github.com/jhoicas/stockmaster-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct{ err error }

func (f *fakeRenderer) RenderSale(_ context.Context, s *entity.Sale) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-" + s.ID), nil
}

type fakeDispatcher struct {
	mu   sync.Mutex
	err  error
	sent []sales.InvoiceDispatch
}

func (f *fakeDispatcher) DispatchInvoice(_ context.Context, msg sales.InvoiceDispatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type env struct {
	store      *memory.Store
	uc         *sales.CheckoutUseCase
	renderer   *fakeRenderer
	dispatcher *fakeDispatcher
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWithRunner(t, nil)
}

func newEnvWithRunner(t *testing.T, wrap func(inventory.TxRunner) inventory.TxRunner) *env {
	t.Helper()
	store := memory.NewStore()
	var runner inventory.TxRunner = store
	if wrap != nil {
		runner = wrap(store)
	}
	ledger := inventory.NewLedgerUseCase(runner, store.Products(), store.Movements(), nil)
	e := &env{store: store, renderer: &fakeRenderer{}, dispatcher: &fakeDispatcher{}}
	e.uc = sales.NewCheckoutUseCase(runner, ledger, store.Products(), store.Sales(), store.Users(),
		e.renderer, e.dispatcher, nil, nil, sales.Config{TaxRate: decimal.NewFromInt(19)})
	store.AddUser(entity.User{ID: "cajero-1", Email: "cajero@tienda.co", Name: "Cajero", Role: entity.RoleCajero})
	return e
}

func (e *env) product(t *testing.T, id string, code int64, price string, stock int64) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.store.Products().Create(ctx, &entity.Product{
		ID: id, Code: code, Name: "Producto " + id, SalePrice: decimal.RequireFromString(price), Active: true,
	}))
	if stock > 0 {
		require.NoError(t, e.store.Run(ctx, func(repos repository.TxRepositories) error {
			if err := repos.Movements.Create(ctx, &entity.StockMovement{ID: "init-" + id, ProductID: &id, Direction: entity.MovementIn, Quantity: stock}); err != nil {
				return err
			}
			_, err := repos.Products.AdjustStock(ctx, id, stock)
			return err
		}))
	}
}

func (e *env) stock(t *testing.T, id string) int64 {
	t.Helper()
	p, err := e.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func TestCheckout_VentaEnEfectivo(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.product(t, "a", 1, "25", 10)
	e.product(t, "b", 2, "50", 10)

	res, err := e.uc.Checkout(ctx, sales.CheckoutInput{
		OperatorID:     "cajero-1",
		Lines:          []sales.CheckoutLine{{ProductID: "a", Quantity: 2}, {ProductID: "b", Quantity: 1}},
		PaymentMethod:  entity.PaymentCash,
		Discount:       dec("10"),
		AmountTendered: ptr(dec("150")),
	})
	require.NoError(t, err)
	s := res.Sale

	assert.True(t, dec("100").Equal(s.Subtotal))
	assert.True(t, dec("17.10").Equal(s.TaxAmount), s.TaxAmount.String())
	assert.True(t, dec("107.10").Equal(s.Total), s.Total.String())
	assert.True(t, dec("150").Equal(s.AmountTendered))
	assert.True(t, dec("42.90").Equal(s.Change), s.Change.String())
	require.Len(t, s.Lines, 2)
	assert.Equal(t, int64(8), e.stock(t, "a"))
	assert.Equal(t, int64(9), e.stock(t, "b"))
	assert.Empty(t, res.Warnings)

	// Una salida por producto con la referencia de la venta.
	n, err := e.store.Movements().QuantityByReference(ctx, entity.SaleReference(s.ID, "a"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// Sin correo del cliente se usa el del operador.
	require.Len(t, e.dispatcher.sent, 1)
	msg := e.dispatcher.sent[0]
	assert.Equal(t, "cajero@tienda.co", msg.To)
	assert.Equal(t, "Factura_Venta_"+s.ID+".pdf", msg.AttachmentName)
	assert.Contains(t, msg.Subject, s.ID)
}

func TestCheckout_PagoInsuficiente(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.product(t, "a", 1, "25", 10)
	e.product(t, "b", 2, "50", 10)

	_, err := e.uc.Checkout(ctx, sales.CheckoutInput{
		OperatorID:     "cajero-1",
		Lines:          []sales.CheckoutLine{{ProductID: "a", Quantity: 2}, {ProductID: "b", Quantity: 1}},
		PaymentMethod:  entity.PaymentCash,
		Discount:       dec("10"),
		AmountTendered: ptr(dec("100")),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientPayment)
	assert.Equal(t, int64(10), e.stock(t, "a"))

	_, err = e.uc.Checkout(ctx, sales.CheckoutInput{
		OperatorID: "cajero-1", Lines: []sales.CheckoutLine{{ProductID: "a", Quantity: 1}}, PaymentMethod: entity.PaymentCash,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientPayment)
}

func TestCheckout_Rechazos(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.product(t, "a", 1, "25", 3)
	require.NoError(t, e.store.Products().Create(ctx, &entity.Product{ID: "inactivo", Code: 9, Name: "Retirado", SalePrice: dec("1"), Active: false}))

	card := func(lines ...sales.CheckoutLine) sales.CheckoutInput {
		return sales.CheckoutInput{OperatorID: "cajero-1", Lines: lines, PaymentMethod: entity.PaymentCard}
	}
	tests := []struct {
		name string
		in   sales.CheckoutInput
		want error
	}{
		{"carrito vacío", card(), domain.ErrInvalidInput},
		{"cantidad cero", card(sales.CheckoutLine{ProductID: "a", Quantity: 0}), domain.ErrInvalidInput},
		{"producto inexistente", card(sales.CheckoutLine{ProductID: "x", Quantity: 1}), domain.ErrNotFound},
		{"producto inactivo", card(sales.CheckoutLine{ProductID: "inactivo", Quantity: 1}), domain.ErrNotFound},
		{"stock insuficiente", card(sales.CheckoutLine{ProductID: "a", Quantity: 4}), domain.ErrInsufficientStock},
		{"repetido excede stock", card(sales.CheckoutLine{ProductID: "a", Quantity: 2}, sales.CheckoutLine{ProductID: "a", Quantity: 2}), domain.ErrInsufficientStock},
		{"descuento mayor al subtotal", sales.CheckoutInput{OperatorID: "cajero-1", Lines: []sales.CheckoutLine{{ProductID: "a", Quantity: 1}}, PaymentMethod: entity.PaymentCard, Discount: dec("26")}, domain.ErrInvalidDiscount},
		{"descuento con tres decimales", sales.CheckoutInput{OperatorID: "cajero-1", Lines: []sales.CheckoutLine{{ProductID: "a", Quantity: 1}}, PaymentMethod: entity.PaymentCard, Discount: dec("0.005")}, domain.ErrInvalidInput},
		{"recibido con tres decimales", sales.CheckoutInput{OperatorID: "cajero-1", Lines: []sales.CheckoutLine{{ProductID: "a", Quantity: 1}}, PaymentMethod: entity.PaymentCash, AmountTendered: ptr(dec("100.001"))}, domain.ErrInvalidInput},
		{"tasa negativa", sales.CheckoutInput{OperatorID: "cajero-1", Lines: []sales.CheckoutLine{{ProductID: "a", Quantity: 1}}, PaymentMethod: entity.PaymentCard, TaxRate: ptr(dec("-1"))}, domain.ErrInvalidInput},
		{"medio de pago desconocido", sales.CheckoutInput{OperatorID: "cajero-1", Lines: []sales.CheckoutLine{{ProductID: "a", Quantity: 1}}, PaymentMethod: "CHEQUE"}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.uc.Checkout(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, int64(3), e.stock(t, "a"))
		})
	}

	list, err := e.uc.ListSales(ctx, "admin", entity.RoleAdmin, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCheckout_LineasRepetidasSeFusionan(t *testing.T) {
	e := newEnv(t)
	e.product(t, "a", 1, "10", 5)

	res, err := e.uc.Checkout(context.Background(), sales.CheckoutInput{
		OperatorID:    "cajero-1",
		Lines:         []sales.CheckoutLine{{ProductID: "a", Quantity: 2}, {ProductID: "a", Quantity: 1}},
		PaymentMethod: entity.PaymentTransfer,
	})
	require.NoError(t, err)
	require.Len(t, res.Sale.Lines, 1)
	assert.Equal(t, int64(3), res.Sale.Lines[0].Quantity)
	assert.Equal(t, int64(2), e.stock(t, "a"))
}

func TestCheckout_TarjetaGuardaRecibidoYVueltoEnCero(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.product(t, "a", 1, "10", 5)

	for _, method := range []entity.PaymentMethod{entity.PaymentCard, entity.PaymentTransfer} {
		res, err := e.uc.Checkout(ctx, sales.CheckoutInput{
			OperatorID:     "cajero-1",
			Lines:          []sales.CheckoutLine{{ProductID: "a", Quantity: 1}},
			PaymentMethod:  method,
			AmountTendered: ptr(dec("500")), // se ignora fuera de efectivo
		})
		require.NoError(t, err)
		assert.True(t, res.Sale.AmountTendered.IsZero(), res.Sale.AmountTendered.String())
		assert.True(t, res.Sale.Change.IsZero(), res.Sale.Change.String())

		stored, err := e.store.Sales().GetByID(ctx, res.Sale.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.True(t, stored.AmountTendered.IsZero())
		assert.True(t, stored.Change.IsZero())
	}
}

func TestCheckout_TasaDeImpuestoPorVenta(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.product(t, "a", 1, "100", 5)

	res, err := e.uc.Checkout(ctx, sales.CheckoutInput{
		OperatorID: "cajero-1", Lines: []sales.CheckoutLine{{ProductID: "a", Quantity: 1}},
		PaymentMethod: entity.PaymentCard, TaxRate: ptr(dec("5")),
	})
	require.NoError(t, err)
	assert.True(t, dec("5").Equal(res.Sale.TaxRate))
	assert.True(t, dec("5").Equal(res.Sale.TaxAmount), res.Sale.TaxAmount.String())
	assert.True(t, dec("105").Equal(res.Sale.Total), res.Sale.Total.String())

	res, err = e.uc.Checkout(ctx, sales.CheckoutInput{
		OperatorID: "cajero-1", Lines: []sales.CheckoutLine{{ProductID: "a", Quantity: 1}},
		PaymentMethod: entity.PaymentCard,
	})
	require.NoError(t, err)
	assert.True(t, dec("19").Equal(res.Sale.TaxRate))
	assert.True(t, dec("119").Equal(res.Sale.Total), res.Sale.Total.String())
}

func TestCheckout_FotoDelProductoNoCambia(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.product(t, "a", 77, "10", 5)

	res, err := e.uc.Checkout(ctx, sales.CheckoutInput{
		OperatorID: "cajero-1", Lines: []sales.CheckoutLine{{ProductID: "a", Quantity: 1}}, PaymentMethod: entity.PaymentCard,
	})
	require.NoError(t, err)

	p, err := e.store.Products().GetByID(ctx, "a")
	require.NoError(t, err)
	p.Name = "Nombre nuevo"
	p.SalePrice = dec("99")
	require.NoError(t, e.store.Products().Update(ctx, p))

	stored, err := e.uc.GetSale(ctx, res.Sale.ID)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 1)
	assert.Equal(t, "Producto a", stored.Lines[0].ProductName)
	assert.Equal(t, int64(77), stored.Lines[0].ProductCode)
	assert.True(t, dec("10").Equal(stored.Lines[0].UnitPrice))

	// Incluso después de eliminar el producto.
	require.NoError(t, e.store.Products().Delete(ctx, "a"))
	stored, err = e.uc.GetSale(ctx, res.Sale.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Lines[0].ProductID)
	assert.Equal(t, "Producto a", stored.Lines[0].ProductName)
}

func TestCheckout_ConcurrenciaSinSobreventa(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.product(t, "a", 1, "10", 100)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.uc.Checkout(ctx, sales.CheckoutInput{
				OperatorID: "cajero-1", Lines: []sales.CheckoutLine{{ProductID: "a", Quantity: 60}}, PaymentMethod: entity.PaymentCard,
			})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, int64(40), e.stock(t, "a"))
}

// failingMovements falla al insertar el movimiento n-ésimo.
type failingMovements struct {
	repository.StockMovementRepository
	failAt *int
}

func (f failingMovements) Create(ctx context.Context, m *entity.StockMovement) error {
	*f.failAt--
	if *f.failAt == 0 {
		return errors.New("disco lleno")
	}
	return f.StockMovementRepository.Create(ctx, m)
}

type failingRunner struct {
	inner  inventory.TxRunner
	failAt int
}

func (r *failingRunner) Run(ctx context.Context, fn func(repository.TxRepositories) error) error {
	return r.inner.Run(ctx, func(repos repository.TxRepositories) error {
		repos.Movements = failingMovements{StockMovementRepository: repos.Movements, failAt: &r.failAt}
		return fn(repos)
	})
}

func TestCheckout_FallaParcialNoDejaRastro(t *testing.T) {
	ctx := context.Background()
	e := newEnvWithRunner(t, func(inner inventory.TxRunner) inventory.TxRunner {
		return &failingRunner{inner: inner, failAt: 2}
	})
	e.product(t, "a", 1, "10", 5)
	e.product(t, "b", 2, "10", 5)

	_, err := e.uc.Checkout(ctx, sales.CheckoutInput{
		OperatorID:    "cajero-1",
		Lines:         []sales.CheckoutLine{{ProductID: "a", Quantity: 1}, {ProductID: "b", Quantity: 1}},
		PaymentMethod: entity.PaymentCard,
	})
	require.Error(t, err)

	assert.Equal(t, int64(5), e.stock(t, "a"))
	assert.Equal(t, int64(5), e.stock(t, "b"))
	list, err := e.uc.ListSales(ctx, "", entity.RoleAdmin, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, e.dispatcher.sent)
}

func TestCheckout_FallaDeEnvioEsAdvertencia(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.product(t, "a", 1, "10", 5)
	e.dispatcher.err = errors.New("smtp caído")

	res, err := e.uc.Checkout(ctx, sales.CheckoutInput{
		OperatorID: "cajero-1", Lines: []sales.CheckoutLine{{ProductID: "a", Quantity: 1}},
		PaymentMethod: entity.PaymentCard, CustomerEmail: "cliente@correo.co",
	})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "smtp caído")
	assert.Equal(t, int64(4), e.stock(t, "a"))

	e.renderer.err = errors.New("fuente faltante")
	e.dispatcher.err = nil
	res, err = e.uc.Checkout(ctx, sales.CheckoutInput{
		OperatorID: "cajero-1", Lines: []sales.CheckoutLine{{ProductID: "a", Quantity: 1}}, PaymentMethod: entity.PaymentCard,
	})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "fuente faltante")
}

func TestCheckout_SinDestinatario(t *testing.T) {
	e := newEnv(t)
	e.product(t, "a", 1, "10", 5)

	res, err := e.uc.Checkout(context.Background(), sales.CheckoutInput{
		OperatorID: "desconocido", Lines: []sales.CheckoutLine{{ProductID: "a", Quantity: 1}}, PaymentMethod: entity.PaymentCard,
	})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Empty(t, e.dispatcher.sent)

	res, err = e.uc.Checkout(context.Background(), sales.CheckoutInput{
		OperatorID: "desconocido", OperatorEmail: "token@tienda.co",
		Lines: []sales.CheckoutLine{{ProductID: "a", Quantity: 1}}, PaymentMethod: entity.PaymentCard,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	require.Len(t, e.dispatcher.sent, 1)
	assert.Equal(t, "token@tienda.co", e.dispatcher.sent[0].To)
}

func TestListSales_CajeroSoloVeLasPropias(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.product(t, "a", 1, "10", 10)
	for _, op := range []string{"cajero-1", "cajero-2", "cajero-1"} {
		_, err := e.uc.Checkout(ctx, sales.CheckoutInput{
			OperatorID: op, OperatorEmail: "x@y.co", Lines: []sales.CheckoutLine{{ProductID: "a", Quantity: 1}}, PaymentMethod: entity.PaymentCard,
		})
		require.NoError(t, err)
	}
	own, err := e.uc.ListSales(ctx, "cajero-1", entity.RoleCajero, 10, 0)
	require.NoError(t, err)
	assert.Len(t, own, 2)

	all, err := e.uc.ListSales(ctx, "admin", entity.RoleAdmin, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestResendInvoice(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.product(t, "a", 1, "10", 10)
	res, err := e.uc.Checkout(ctx, sales.CheckoutInput{
		OperatorID: "cajero-1", Lines: []sales.CheckoutLine{{ProductID: "a", Quantity: 1}}, PaymentMethod: entity.PaymentCard,
	})
	require.NoError(t, err)

	require.NoError(t, e.uc.ResendInvoice(ctx, res.Sale.ID, "otro@correo.co"))
	require.Len(t, e.dispatcher.sent, 2)
	assert.Equal(t, "otro@correo.co", e.dispatcher.sent[1].To)

	e.dispatcher.err = errors.New("smtp caído")
	assert.Error(t, e.uc.ResendInvoice(ctx, res.Sale.ID, ""))
	assert.ErrorIs(t, e.uc.ResendInvoice(ctx, "nope", ""), domain.ErrNotFound)

	pdf, err := e.uc.RenderInvoice(ctx, res.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-"+res.Sale.ID, string(pdf))
}
