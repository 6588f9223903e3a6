package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

// LedgerUseCase registra y anula movimientos del kardex manteniendo el saldo
// cacheado del producto en la misma transacción.
type LedgerUseCase struct {
	txRunner  TxRunner
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	metrics   Metrics
	now       func() time.Time
}

// NewLedgerUseCase construye el caso de uso. metrics puede ser nil.
func NewLedgerUseCase(
	txRunner TxRunner,
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	metrics Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:  txRunner,
		products:  products,
		movements: movements,
		metrics:   metrics,
		now:       time.Now,
	}
}

// RecordMovementInput entrada para registrar un movimiento manual o interno.
type RecordMovementInput struct {
	ProductID string
	Direction entity.MovementDirection
	Quantity  int64
	Reference string
	UserID    string
}

func (in RecordMovementInput) validate() error {
	if in.ProductID == "" || !in.Direction.Valid() || in.Quantity <= 0 {
		return domain.ErrInvalidInput
	}
	return nil
}

// Record inserta el movimiento y aplica su delta al saldo en una sola transacción.
// No verifica suficiencia: el saldo puede quedar negativo.
func (uc *LedgerUseCase) Record(ctx context.Context, in RecordMovementInput) (*entity.StockMovement, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepositories) error {
		m, err := uc.RecordInTx(ctx, repos, in)
		if err != nil {
			return err
		}
		mov = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// RecordInTx ejecuta Record con los repositorios de la transacción del llamador.
// Bloquea la fila del producto antes de insertar.
func (uc *LedgerUseCase) RecordInTx(ctx context.Context, repos repository.TxRepositories, in RecordMovementInput) (*entity.StockMovement, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	product, err := repos.Products.GetForUpdate(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return uc.appendLocked(ctx, repos, product.ID, in)
}

// appendLocked asume la fila del producto ya bloqueada.
func (uc *LedgerUseCase) appendLocked(ctx context.Context, repos repository.TxRepositories, productID string, in RecordMovementInput) (*entity.StockMovement, error) {
	pid := productID
	mov := &entity.StockMovement{
		ID:        uuid.New().String(),
		ProductID: &pid,
		Direction: in.Direction,
		Quantity:  in.Quantity,
		Reference: in.Reference,
		CreatedAt: uc.now().UTC(),
	}
	if in.UserID != "" {
		uid := in.UserID
		mov.CreatedBy = &uid
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	if _, err := repos.Products.AdjustStock(ctx, productID, in.Direction.Delta(in.Quantity)); err != nil {
		return nil, err
	}
	if uc.metrics != nil {
		uc.metrics.IncMovement(string(in.Direction))
	}
	return mov, nil
}

// Void elimina el movimiento y revierte su efecto sobre el saldo.
// Si el producto ya no existe, el movimiento se elimina sin efecto en saldo.
func (uc *LedgerUseCase) Void(ctx context.Context, movementID string) error {
	if movementID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(repos repository.TxRepositories) error {
		mov, err := repos.Movements.GetForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if mov == nil {
			return domain.ErrNotFound
		}
		if err := repos.Movements.Delete(ctx, mov.ID); err != nil {
			return err
		}
		if mov.ProductID == nil {
			return nil
		}
		product, err := repos.Products.GetForUpdate(ctx, *mov.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return nil
		}
		_, err = repos.Products.AdjustStock(ctx, product.ID, -mov.Direction.Delta(mov.Quantity))
		return err
	})
}

// ListByProduct devuelve el kardex del producto en orden cronológico.
func (uc *LedgerUseCase) ListByProduct(ctx context.Context, productID string, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, domain.ErrInvalidInput
	}
	if f.Limit <= 0 {
		f.Limit = 100
	}
	if f.Limit > 1000 {
		f.Limit = 1000
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return uc.movements.ListByProduct(ctx, productID, f)
}

// ReturnInput entrada para una devolución de cliente.
type ReturnInput struct {
	SaleID    string
	ProductID string
	Quantity  int64
	UserID    string
}

// RecordReturn registra una entrada RETURN-<venta>-<producto>. La cantidad no
// puede superar lo vendido en esa venta menos lo ya devuelto.
func (uc *LedgerUseCase) RecordReturn(ctx context.Context, in ReturnInput) (*entity.StockMovement, error) {
	if in.SaleID == "" || in.ProductID == "" || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepositories) error {
		sale, err := repos.Sales.GetByID(ctx, in.SaleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		sold := sale.QuantityOf(in.ProductID)
		if sold == 0 {
			return fmt.Errorf("%w: el producto no pertenece a la venta", domain.ErrInvalidInput)
		}
		product, err := repos.Products.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		ref := entity.ReturnReference(in.SaleID, in.ProductID)
		returned, err := repos.Movements.QuantityByReference(ctx, ref)
		if err != nil {
			return err
		}
		if returned+in.Quantity > sold {
			return fmt.Errorf("%w: se devolverían %d de %d unidades vendidas", domain.ErrInvalidInput, returned+in.Quantity, sold)
		}
		m, err := uc.appendLocked(ctx, repos, product.ID, RecordMovementInput{
			ProductID: product.ID,
			Direction: entity.MovementIn,
			Quantity:  in.Quantity,
			Reference: ref,
			UserID:    in.UserID,
		})
		if err != nil {
			return err
		}
		mov = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}
