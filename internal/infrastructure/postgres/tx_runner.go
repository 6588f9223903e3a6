package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
	"github.com/jhoicas/stockmaster-api/pkg/logger"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// RetryMetrics cuenta reintentos de transacción. Puede ser nil.
type RetryMetrics interface {
	IncTxRetry()
}

// TxOptions ajustes del runner.
type TxOptions struct {
	MaxRetries  int           // reintentos ante 40001/40P01/55P03
	LockTimeout time.Duration // SET LOCAL lock_timeout; 0 = sin límite
	Backoff     time.Duration // espera base entre intentos
}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool    *pgxpool.Pool
	opts    TxOptions
	log     *logger.Logger
	metrics RetryMetrics
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool, opts TxOptions, log *logger.Logger, metrics RetryMetrics) *TxRunner {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 25 * time.Millisecond
	}
	if log == nil {
		log = logger.Nop()
	}
	return &TxRunner{pool: pool, opts: opts, log: log, metrics: metrics}
}

// Run ejecuta fn en una transacción; ante conflicto transitorio repite fn
// completa hasta MaxRetries veces y luego devuelve domain.ErrTransientConflict.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.TxRepositories) error) error {
	for attempt := 0; ; attempt++ {
		err := r.runOnce(ctx, fn)
		if err == nil || !isTransientConflict(err) {
			return err
		}
		if attempt >= r.opts.MaxRetries {
			return fmt.Errorf("%w: %v", domain.ErrTransientConflict, err)
		}
		if r.metrics != nil {
			r.metrics.IncTxRetry()
		}
		wait := r.opts.Backoff * time.Duration(attempt+1)
		r.log.Warn().Err(err).Int("attempt", attempt+1).Dur("wait", wait).Msg("conflicto de transacción, reintentando")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(repos repository.TxRepositories) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.opts.LockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.opts.LockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
	}

	if err := fn(TxRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// TxRepositories ata todos los repos transaccionales a q.
func TxRepositories(q Querier) repository.TxRepositories {
	return repository.TxRepositories{
		Products:       NewProductRepository(q),
		Movements:      NewStockMovementRepository(q),
		PurchaseOrders: NewPurchaseOrderRepository(q),
		Sales:          NewSaleRepository(q),
	}
}
