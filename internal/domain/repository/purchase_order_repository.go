package repository

import (
	"context"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

// PurchaseOrderRepository define el puerto de persistencia para órdenes de compra.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, order *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// UpdateStatus persiste Status y ReceivedAt.
	UpdateStatus(ctx context.Context, order *entity.PurchaseOrder) error
	ListBySupplier(ctx context.Context, supplierID string) ([]*entity.PurchaseOrder, error)
}
