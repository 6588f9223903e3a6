package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementa repository.StockMovementRepository.
type StockMovementRepo struct {
	s    *Store
	inTx bool
}

func (r *StockMovementRepo) Create(_ context.Context, m *entity.StockMovement) (err error) {
	r.s.locked(r.inTx, func(st *state) {
		if _, ok := st.movements[m.ID]; ok {
			err = domain.ErrDuplicate
			return
		}
		st.seq++
		st.movements[m.ID] = movementRow{mov: *m, seq: st.seq}
	})
	return err
}

func (r *StockMovementRepo) GetByID(_ context.Context, id string) (out *entity.StockMovement, err error) {
	r.s.locked(r.inTx, func(st *state) {
		if row, ok := st.movements[id]; ok {
			m := row.mov
			out = &m
		}
	})
	return out, nil
}

func (r *StockMovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockMovement, error) {
	return r.GetByID(ctx, id)
}

func (r *StockMovementRepo) Delete(_ context.Context, id string) (err error) {
	r.s.locked(r.inTx, func(st *state) {
		if _, ok := st.movements[id]; !ok {
			err = domain.ErrNotFound
			return
		}
		delete(st.movements, id)
	})
	return err
}

func (r *StockMovementRepo) ListByProduct(_ context.Context, productID string, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var rows []movementRow
	r.s.locked(r.inTx, func(st *state) {
		for _, row := range st.movements {
			if row.mov.ProductID == nil || *row.mov.ProductID != productID {
				continue
			}
			if f.From != nil && row.mov.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && row.mov.CreatedAt.After(*f.To) {
				continue
			}
			rows = append(rows, row)
		}
	})
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].mov.CreatedAt.Equal(rows[j].mov.CreatedAt) {
			return rows[i].mov.CreatedAt.Before(rows[j].mov.CreatedAt)
		}
		return rows[i].seq < rows[j].seq
	})
	if f.Offset > 0 {
		if f.Offset >= len(rows) {
			rows = nil
		} else {
			rows = rows[f.Offset:]
		}
	}
	if f.Limit > 0 && len(rows) > f.Limit {
		rows = rows[:f.Limit]
	}
	out := make([]*entity.StockMovement, 0, len(rows))
	for _, row := range rows {
		m := row.mov
		out = append(out, &m)
	}
	return out, nil
}

func (r *StockMovementRepo) SumByProduct(_ context.Context, productID string) (t repository.MovementTotals, err error) {
	r.s.locked(r.inTx, func(st *state) {
		for _, row := range st.movements {
			if row.mov.ProductID == nil || *row.mov.ProductID != productID {
				continue
			}
			if row.mov.Direction == entity.MovementIn {
				t.In += row.mov.Quantity
			} else {
				t.Out += row.mov.Quantity
			}
		}
	})
	return t, nil
}

func (r *StockMovementRepo) QuantityByReference(_ context.Context, reference string) (n int64, err error) {
	r.s.locked(r.inTx, func(st *state) {
		for _, row := range st.movements {
			if row.mov.Reference == reference {
				n += row.mov.Quantity
			}
		}
	})
	return n, nil
}
