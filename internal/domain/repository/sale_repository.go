package repository

import (
	"context"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

// SaleFilter acota el listado de ventas. OperatorID vacío lista todas.
type SaleFilter struct {
	OperatorID string
	Limit      int
	Offset     int
}

// SaleRepository define el puerto de persistencia de ventas y sus líneas.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	CreateLine(ctx context.Context, line *entity.SaleLine) error
	// GetByID carga la venta con sus líneas.
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// List devuelve encabezados, más recientes primero.
	List(ctx context.Context, f SaleFilter) ([]*entity.Sale, error)
}
