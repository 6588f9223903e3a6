package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementa repository.ProductRepository.
type ProductRepo struct {
	s    *Store
	inTx bool
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) (err error) {
	r.s.locked(r.inTx, func(st *state) {
		if _, ok := st.products[p.ID]; ok {
			err = domain.ErrDuplicate
			return
		}
		for _, other := range st.products {
			if other.Code == p.Code {
				err = domain.ErrDuplicate
				return
			}
		}
		st.products[p.ID] = *p
	})
	return err
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (out *entity.Product, err error) {
	r.s.locked(r.inTx, func(st *state) {
		if p, ok := st.products[id]; ok {
			out = &p
		}
	})
	return out, nil
}

func (r *ProductRepo) GetByCode(_ context.Context, code int64) (out *entity.Product, err error) {
	r.s.locked(r.inTx, func(st *state) {
		for _, p := range st.products {
			if p.Code == code {
				cp := p
				out = &cp
				return
			}
		}
	})
	return out, nil
}

// GetForUpdate equivale a GetByID: la transacción ya es exclusiva.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) (err error) {
	r.s.locked(r.inTx, func(st *state) {
		cur, ok := st.products[p.ID]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		for id, other := range st.products {
			if id != p.ID && other.Code == p.Code {
				err = domain.ErrDuplicate
				return
			}
		}
		next := *p
		next.Stock = cur.Stock
		next.CreatedAt = cur.CreatedAt
		st.products[p.ID] = next
	})
	return err
}

func (r *ProductRepo) AdjustStock(_ context.Context, id string, delta int64) (balance int64, err error) {
	r.s.locked(r.inTx, func(st *state) {
		p, ok := st.products[id]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		p.Stock += delta
		p.UpdatedAt = time.Now().UTC()
		st.products[id] = p
		balance = p.Stock
	})
	return balance, err
}

func (r *ProductRepo) SearchActive(_ context.Context, query string, limit int) (out []*entity.Product, err error) {
	q := strings.ToLower(strings.TrimSpace(query))
	code, codeErr := strconv.ParseInt(q, 10, 64)
	r.s.locked(r.inTx, func(st *state) {
		for _, p := range st.products {
			if !p.Active {
				continue
			}
			if q == "" || strings.Contains(strings.ToLower(p.Name), q) || (codeErr == nil && p.Code == code) {
				cp := p
				out = append(out, &cp)
			}
		}
	})
	sortByName(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ProductRepo) List(_ context.Context) (out []*entity.Product, err error) {
	r.s.locked(r.inTx, func(st *state) {
		for _, p := range st.products {
			cp := p
			out = append(out, &cp)
		}
	})
	sortByName(out)
	return out, nil
}

func (r *ProductRepo) ListBelowStock(_ context.Context, threshold int64) (out []*entity.Product, err error) {
	r.s.locked(r.inTx, func(st *state) {
		for _, p := range st.products {
			if p.Stock < threshold {
				cp := p
				out = append(out, &cp)
			}
		}
	})
	sortByName(out)
	return out, nil
}

// Delete elimina el producto y desvincula kardex, líneas y órdenes.
func (r *ProductRepo) Delete(_ context.Context, id string) (err error) {
	r.s.locked(r.inTx, func(st *state) {
		if _, ok := st.products[id]; !ok {
			err = domain.ErrNotFound
			return
		}
		delete(st.products, id)
		for k, row := range st.movements {
			if row.mov.ProductID != nil && *row.mov.ProductID == id {
				row.mov.ProductID = nil
				st.movements[k] = row
			}
		}
		for k, o := range st.orders {
			if o.ProductID != nil && *o.ProductID == id {
				o.ProductID = nil
				st.orders[k] = o
			}
		}
		for k, s := range st.sales {
			lines := make([]entity.SaleLine, len(s.Lines))
			copy(lines, s.Lines)
			for i := range lines {
				if lines[i].ProductID != nil && *lines[i].ProductID == id {
					lines[i].ProductID = nil
				}
			}
			s.Lines = lines
			st.sales[k] = s
		}
	})
	return err
}

func sortByName(ps []*entity.Product) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Name != ps[j].Name {
			return ps[i].Name < ps[j].Name
		}
		return ps[i].ID < ps[j].ID
	})
}
