package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

// MovementFilter acota una consulta del kardex.
type MovementFilter struct {
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// MovementTotals suma entradas y salidas de un producto.
type MovementTotals struct {
	In  int64
	Out int64
}

// Balance devuelve Σ entradas − Σ salidas.
func (t MovementTotals) Balance() int64 { return t.In - t.Out }

// StockMovementRepository define el puerto de persistencia del kardex (DIP).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	GetForUpdate(ctx context.Context, id string) (*entity.StockMovement, error)
	// Delete devuelve domain.ErrNotFound si no había fila.
	Delete(ctx context.Context, id string) error
	// ListByProduct ordena por (created_at, id) ascendente.
	ListByProduct(ctx context.Context, productID string, f MovementFilter) ([]*entity.StockMovement, error)
	SumByProduct(ctx context.Context, productID string) (MovementTotals, error)
	// QuantityByReference suma la cantidad de los movimientos con esa referencia.
	QuantityByReference(ctx context.Context, reference string) (int64, error)
}
