package repository

import (
	"context"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los métodos de lectura devuelven (nil, nil) cuando no existe el registro.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCode(ctx context.Context, code int64) (*entity.Product, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// Update modifica datos descriptivos; nunca toca el stock.
	Update(ctx context.Context, product *entity.Product) error
	// AdjustStock suma delta al saldo y devuelve el nuevo saldo.
	AdjustStock(ctx context.Context, id string, delta int64) (int64, error)
	SearchActive(ctx context.Context, query string, limit int) ([]*entity.Product, error)
	List(ctx context.Context) ([]*entity.Product, error)
	ListBelowStock(ctx context.Context, threshold int64) ([]*entity.Product, error)
	Delete(ctx context.Context, id string) error
}
