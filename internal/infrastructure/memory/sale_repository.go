package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementa repository.SaleRepository.
type SaleRepo struct {
	s    *Store
	inTx bool
}

// Create guarda el encabezado; las líneas se agregan con CreateLine.
func (r *SaleRepo) Create(_ context.Context, s *entity.Sale) (err error) {
	r.s.locked(r.inTx, func(st *state) {
		if _, ok := st.sales[s.ID]; ok {
			err = domain.ErrDuplicate
			return
		}
		header := *s
		header.Lines = nil
		st.sales[s.ID] = header
	})
	return err
}

func (r *SaleRepo) CreateLine(_ context.Context, l *entity.SaleLine) (err error) {
	r.s.locked(r.inTx, func(st *state) {
		s, ok := st.sales[l.SaleID]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		s.Lines = append(slices.Clip(s.Lines), *l)
		st.sales[l.SaleID] = s
	})
	return err
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (out *entity.Sale, err error) {
	r.s.locked(r.inTx, func(st *state) {
		if s, ok := st.sales[id]; ok {
			s.Lines = slices.Clone(s.Lines)
			out = &s
		}
	})
	return out, nil
}

func (r *SaleRepo) List(_ context.Context, f repository.SaleFilter) (out []*entity.Sale, err error) {
	r.s.locked(r.inTx, func(st *state) {
		for _, s := range st.sales {
			if f.OperatorID != "" && s.OperatorID != f.OperatorID {
				continue
			}
			cp := s
			cp.Lines = nil
			out = append(out, &cp)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}
