package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

// ProductBalance compara el saldo cacheado con el saldo del kardex.
type ProductBalance struct {
	ProductID     string
	Code          int64
	Name          string
	CachedStock   int64
	LedgerBalance int64
	TotalIn       int64
	TotalOut      int64
}

// Consistent reporta si ambos saldos coinciden.
func (b ProductBalance) Consistent() bool {
	return b.CachedStock == b.LedgerBalance
}

// ReconciliationReport resultado de revisar todo el catálogo.
type ReconciliationReport struct {
	CheckedAt  time.Time
	Checked    int
	Mismatches []ProductBalance
}

// Reconcile verifica Σ entradas − Σ salidas == stock para un producto. Ambas
// lecturas ocurren con la fila del producto bloqueada, así ningún movimiento
// puede confirmarse entre una y otra.
func (uc *LedgerUseCase) Reconcile(ctx context.Context, productID string) (*ProductBalance, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *ProductBalance
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepositories) error {
		b, err := balanceLocked(ctx, repos, productID)
		if err != nil {
			return err
		}
		if b == nil {
			return domain.ErrNotFound
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReconcileAll revisa todos los productos y devuelve solo los descuadrados.
// Cada producto se compara en su propia transacción.
func (uc *LedgerUseCase) ReconcileAll(ctx context.Context) (*ReconciliationReport, error) {
	products, err := uc.products.List(ctx)
	if err != nil {
		return nil, err
	}
	report := &ReconciliationReport{CheckedAt: uc.now().UTC(), Mismatches: []ProductBalance{}}
	for _, p := range products {
		var b *ProductBalance
		err := uc.txRunner.Run(ctx, func(repos repository.TxRepositories) error {
			var err error
			b, err = balanceLocked(ctx, repos, p.ID)
			return err
		})
		if err != nil {
			return nil, err
		}
		// borrado después del listado
		if b == nil {
			continue
		}
		report.Checked++
		if !b.Consistent() {
			report.Mismatches = append(report.Mismatches, *b)
		}
	}
	return report, nil
}

// balanceLocked devuelve (nil, nil) si el producto no existe.
func balanceLocked(ctx context.Context, repos repository.TxRepositories, productID string) (*ProductBalance, error) {
	p, err := repos.Products.GetForUpdate(ctx, productID)
	if err != nil || p == nil {
		return nil, err
	}
	totals, err := repos.Movements.SumByProduct(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &ProductBalance{
		ProductID:     p.ID,
		Code:          p.Code,
		Name:          p.Name,
		CachedStock:   p.Stock,
		LedgerBalance: totals.Balance(),
		TotalIn:       totals.In,
		TotalOut:      totals.Out,
	}, nil
}
