package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
	"github.com/jhoicas/stockmaster-api/internal/domain/sale"
	"github.com/jhoicas/stockmaster-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// Config parámetros del checkout.
type Config struct {
	TaxRate   decimal.Decimal // porcentaje, ej. 19
	StoreName string
}

// CheckoutUseCase confirma ventas: valida el carrito, calcula totales en el
// servidor y en una sola transacción guarda venta, líneas y salidas de kardex.
type CheckoutUseCase struct {
	txRunner   inventory.TxRunner
	ledger     *inventory.LedgerUseCase
	products   ProductLookup
	sales      repository.SaleRepository
	operators  OperatorDirectory
	renderer   InvoiceRenderer
	dispatcher NotificationDispatcher
	metrics    Metrics
	log        *logger.Logger
	cfg        Config
	now        func() time.Time
}

// NewCheckoutUseCase construye el caso de uso. renderer, dispatcher y metrics
// pueden ser nil; sin renderer o dispatcher no se envía la factura.
func NewCheckoutUseCase(
	txRunner inventory.TxRunner,
	ledger *inventory.LedgerUseCase,
	products ProductLookup,
	sales repository.SaleRepository,
	operators OperatorDirectory,
	renderer InvoiceRenderer,
	dispatcher NotificationDispatcher,
	metrics Metrics,
	log *logger.Logger,
	cfg Config,
) *CheckoutUseCase {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.StoreName == "" {
		cfg.StoreName = "Stock Master"
	}
	return &CheckoutUseCase{
		txRunner:   txRunner,
		ledger:     ledger,
		products:   products,
		sales:      sales,
		operators:  operators,
		renderer:   renderer,
		dispatcher: dispatcher,
		metrics:    metrics,
		log:        log,
		cfg:        cfg,
		now:        time.Now,
	}
}

// CheckoutLine un renglón del carrito.
type CheckoutLine struct {
	ProductID string
	Quantity  int64
}

// CheckoutInput carrito y datos de pago. Los precios nunca vienen del cliente.
type CheckoutInput struct {
	OperatorID     string
	OperatorEmail  string // respaldo si el directorio no conoce al operador
	Lines          []CheckoutLine
	PaymentMethod  entity.PaymentMethod
	Discount       decimal.Decimal
	AmountTendered *decimal.Decimal
	TaxRate        *decimal.Decimal // nil usa Config.TaxRate
	CustomerEmail  string
}

var maxTaxRate = decimal.NewFromInt(100)

// validateAmounts exige montos con a lo sumo dos decimales y una tasa entre 0 y 100.
func (in CheckoutInput) validateAmounts() error {
	if !isMoney(in.Discount) {
		return fmt.Errorf("%w: el descuento admite máximo dos decimales", domain.ErrInvalidInput)
	}
	if in.AmountTendered != nil && !isMoney(*in.AmountTendered) {
		return fmt.Errorf("%w: el monto recibido admite máximo dos decimales", domain.ErrInvalidInput)
	}
	if in.TaxRate != nil && (in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(maxTaxRate)) {
		return fmt.Errorf("%w: tasa de impuesto fuera de rango", domain.ErrInvalidInput)
	}
	return nil
}

func isMoney(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// CheckoutResult venta persistida más advertencias de entrega de la factura.
type CheckoutResult struct {
	Sale     *entity.Sale
	Warnings []string
}

// mergeLines valida cantidades y suma productos repetidos conservando el orden.
func mergeLines(lines []CheckoutLine) ([]CheckoutLine, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: el carrito está vacío", domain.ErrInvalidInput)
	}
	idx := make(map[string]int, len(lines))
	out := make([]CheckoutLine, 0, len(lines))
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: cantidad inválida", domain.ErrInvalidInput)
		}
		if i, ok := idx[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		idx[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out, nil
}

func checkSellable(p *entity.Product, id string, qty int64) error {
	if p == nil || !p.Sellable() {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	if qty > p.Stock {
		return fmt.Errorf("%w: %s (disponible %d, solicitado %d)", domain.ErrInsufficientStock, p.Name, p.Stock, qty)
	}
	return nil
}

func (uc *CheckoutUseCase) taxRate(in CheckoutInput) decimal.Decimal {
	if in.TaxRate != nil {
		return *in.TaxRate
	}
	return uc.cfg.TaxRate
}

// priceCart calcula totales y vuelto con los productos dados.
// Para medios distintos de efectivo recibido y vuelto son cero.
func (uc *CheckoutUseCase) priceCart(in CheckoutInput, lines []CheckoutLine, byID map[string]*entity.Product) (totals sale.Totals, tendered, change decimal.Decimal, err error) {
	subtotals := make([]decimal.Decimal, 0, len(lines))
	for _, l := range lines {
		subtotals = append(subtotals, byID[l.ProductID].SalePrice.Mul(decimal.NewFromInt(l.Quantity)))
	}
	totals, err = sale.ComputeTotals(subtotals, in.Discount, uc.taxRate(in))
	if err != nil {
		return sale.Totals{}, decimal.Zero, decimal.Zero, err
	}
	if in.PaymentMethod != entity.PaymentCash {
		return totals, decimal.Zero, decimal.Zero, nil
	}
	if in.AmountTendered == nil {
		return sale.Totals{}, decimal.Zero, decimal.Zero, domain.ErrInsufficientPayment
	}
	change, err = sale.Change(totals.Total, *in.AmountTendered)
	if err != nil {
		return sale.Totals{}, decimal.Zero, decimal.Zero, err
	}
	return totals, *in.AmountTendered, change, nil
}

// Checkout valida, confirma y devuelve la venta. Ante cualquier error no queda
// ningún cambio persistido. Los fallos al generar o enviar la factura solo se
// reportan en Warnings.
func (uc *CheckoutUseCase) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	start := uc.now()
	s, err := uc.commit(ctx, in)
	if uc.metrics != nil {
		uc.metrics.ObserveCheckout(checkoutOutcome(err), uc.now().Sub(start))
	}
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("sale_id", s.ID).Str("operator_id", s.OperatorID).
		Str("total", s.Total.StringFixed(2)).Int("lines", len(s.Lines)).Msg("venta confirmada")

	res := &CheckoutResult{Sale: s, Warnings: []string{}}
	if w := uc.deliverInvoice(ctx, s, in.OperatorEmail); w != "" {
		res.Warnings = append(res.Warnings, w)
	}
	return res, nil
}

func (uc *CheckoutUseCase) commit(ctx context.Context, in CheckoutInput) (*entity.Sale, error) {
	if in.OperatorID == "" || !in.PaymentMethod.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if err := in.validateAmounts(); err != nil {
		return nil, err
	}
	lines, err := mergeLines(in.Lines)
	if err != nil {
		return nil, err
	}

	// Validación previa fuera de la transacción (solo lectura).
	byID := make(map[string]*entity.Product, len(lines))
	for _, l := range lines {
		p, err := uc.products.GetByID(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		if err := checkSellable(p, l.ProductID, l.Quantity); err != nil {
			return nil, err
		}
		byID[l.ProductID] = p
	}
	if _, _, _, err := uc.priceCart(in, lines, byID); err != nil {
		return nil, err
	}

	lockOrder := make([]string, 0, len(lines))
	for _, l := range lines {
		lockOrder = append(lockOrder, l.ProductID)
	}
	sort.Strings(lockOrder)

	var out *entity.Sale
	err = uc.txRunner.Run(ctx, func(repos repository.TxRepositories) error {
		qty := make(map[string]int64, len(lines))
		for _, l := range lines {
			qty[l.ProductID] = l.Quantity
		}
		locked := make(map[string]*entity.Product, len(lines))
		for _, id := range lockOrder {
			p, err := repos.Products.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if err := checkSellable(p, id, qty[id]); err != nil {
				return err
			}
			locked[id] = p
		}
		// Los totales se recalculan con los precios bloqueados.
		totals, tendered, change, err := uc.priceCart(in, lines, locked)
		if err != nil {
			return err
		}

		now := uc.now().UTC()
		s := &entity.Sale{
			ID:             uuid.New().String(),
			OperatorID:     in.OperatorID,
			PaymentMethod:  in.PaymentMethod,
			Subtotal:       totals.Subtotal,
			Discount:       totals.Discount,
			TaxRate:        totals.TaxRate,
			TaxAmount:      totals.TaxAmount,
			Total:          totals.Total,
			AmountTendered: tendered,
			Change:         change,
			CustomerEmail:  in.CustomerEmail,
			CreatedAt:      now,
		}
		if err := repos.Sales.Create(ctx, s); err != nil {
			return err
		}
		for _, l := range lines {
			line := entity.NewSaleLine(uuid.New().String(), s.ID, locked[l.ProductID], l.Quantity)
			if err := repos.Sales.CreateLine(ctx, &line); err != nil {
				return err
			}
			s.Lines = append(s.Lines, line)
		}
		for _, id := range lockOrder {
			if _, err := uc.ledger.RecordInTx(ctx, repos, inventory.RecordMovementInput{
				ProductID: id,
				Direction: entity.MovementOut,
				Quantity:  qty[id],
				Reference: entity.SaleReference(s.ID, id),
				UserID:    in.OperatorID,
			}); err != nil {
				return err
			}
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func checkoutOutcome(err error) string {
	switch {
	case err == nil:
		return "committed"
	case errors.Is(err, domain.ErrTransientConflict):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrInvalidDiscount),
		errors.Is(err, domain.ErrInsufficientPayment):
		return "rejected"
	default:
		return "error"
	}
}
