package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo implementa repository.PurchaseOrderRepository.
type PurchaseOrderRepo struct {
	s    *Store
	inTx bool
}

func (r *PurchaseOrderRepo) Create(_ context.Context, o *entity.PurchaseOrder) (err error) {
	r.s.locked(r.inTx, func(st *state) {
		if _, ok := st.orders[o.ID]; ok {
			err = domain.ErrDuplicate
			return
		}
		if _, ok := st.suppliers[o.SupplierID]; !ok {
			err = domain.ErrNotFound
			return
		}
		st.orders[o.ID] = *o
	})
	return err
}

func (r *PurchaseOrderRepo) GetByID(_ context.Context, id string) (out *entity.PurchaseOrder, err error) {
	r.s.locked(r.inTx, func(st *state) {
		if o, ok := st.orders[id]; ok {
			out = &o
		}
	})
	return out, nil
}

func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *PurchaseOrderRepo) UpdateStatus(_ context.Context, o *entity.PurchaseOrder) (err error) {
	r.s.locked(r.inTx, func(st *state) {
		cur, ok := st.orders[o.ID]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		cur.Status = o.Status
		cur.ReceivedAt = o.ReceivedAt
		st.orders[o.ID] = cur
	})
	return err
}

func (r *PurchaseOrderRepo) ListBySupplier(_ context.Context, supplierID string) (out []*entity.PurchaseOrder, err error) {
	r.s.locked(r.inTx, func(st *state) {
		for _, o := range st.orders {
			if o.SupplierID == supplierID {
				cp := o
				out = append(out, &cp)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
