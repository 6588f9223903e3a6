package purchasing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// PurchaseOrderUseCase maneja el ciclo PENDING → RECEIVED | CANCELLED.
type PurchaseOrderUseCase struct {
	txRunner  inventory.TxRunner
	ledger    *inventory.LedgerUseCase
	orders    repository.PurchaseOrderRepository
	suppliers repository.SupplierRepository
	products  repository.ProductRepository
	now       func() time.Time
}

// NewPurchaseOrderUseCase construye el caso de uso.
func NewPurchaseOrderUseCase(
	txRunner inventory.TxRunner,
	ledger *inventory.LedgerUseCase,
	orders repository.PurchaseOrderRepository,
	suppliers repository.SupplierRepository,
	products repository.ProductRepository,
) *PurchaseOrderUseCase {
	return &PurchaseOrderUseCase{
		txRunner:  txRunner,
		ledger:    ledger,
		orders:    orders,
		suppliers: suppliers,
		products:  products,
		now:       time.Now,
	}
}

// CreatePurchaseOrderInput entrada para crear una orden.
type CreatePurchaseOrderInput struct {
	SupplierID string
	ProductID  string
	Quantity   int64
	UnitCost   decimal.Decimal
}

// Create valida y guarda una orden PENDING.
func (uc *PurchaseOrderUseCase) Create(ctx context.Context, in CreatePurchaseOrderInput) (*entity.PurchaseOrder, error) {
	if in.SupplierID == "" || in.ProductID == "" || in.Quantity <= 0 || in.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	sup, err := uc.suppliers.GetByID(ctx, in.SupplierID)
	if err != nil {
		return nil, err
	}
	if sup == nil {
		return nil, domain.ErrNotFound
	}
	p, err := uc.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	order := entity.NewPurchaseOrder(uuid.New().String(), sup.ID, p.ID, in.Quantity, in.UnitCost, uc.now().UTC())
	if err := uc.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Receive registra la entrada PO-<id> y marca la orden RECEIVED en la misma transacción.
// Una segunda recepción devuelve ErrInvalidState sin efecto en stock.
func (uc *PurchaseOrderUseCase) Receive(ctx context.Context, orderID, userID string) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepositories) error {
		order, err := repos.PurchaseOrders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if err := order.MarkReceived(uc.now().UTC()); err != nil {
			return err
		}
		if order.ProductID == nil {
			// el producto fue eliminado después de crear la orden
			return domain.ErrNotFound
		}
		if _, err := uc.ledger.RecordInTx(ctx, repos, inventory.RecordMovementInput{
			ProductID: *order.ProductID,
			Direction: entity.MovementIn,
			Quantity:  order.Quantity,
			Reference: entity.PurchaseOrderReference(order.ID),
			UserID:    userID,
		}); err != nil {
			return err
		}
		if err := repos.PurchaseOrders.UpdateStatus(ctx, order); err != nil {
			return err
		}
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Cancel pasa la orden a CANCELLED sin tocar el kardex.
func (uc *PurchaseOrderUseCase) Cancel(ctx context.Context, orderID string) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepositories) error {
		order, err := repos.PurchaseOrders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if err := order.MarkCancelled(); err != nil {
			return err
		}
		if err := repos.PurchaseOrders.UpdateStatus(ctx, order); err != nil {
			return err
		}
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get devuelve una orden o ErrNotFound.
func (uc *PurchaseOrderUseCase) Get(ctx context.Context, orderID string) (*entity.PurchaseOrder, error) {
	o, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// ListBySupplier lista las órdenes de un proveedor, más recientes primero.
func (uc *PurchaseOrderUseCase) ListBySupplier(ctx context.Context, supplierID string) ([]*entity.PurchaseOrder, error) {
	sup, err := uc.suppliers.GetByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if sup == nil {
		return nil, domain.ErrNotFound
	}
	return uc.orders.ListBySupplier(ctx, supplierID)
}
