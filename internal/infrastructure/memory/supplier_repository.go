package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

var (
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
	_ repository.UserRepository     = (*UserRepo)(nil)
)

// SupplierRepo implementa repository.SupplierRepository.
type SupplierRepo struct {
	s *Store
}

func emailTaken(st *state, email, exceptID string) bool {
	for id, other := range st.suppliers {
		if id != exceptID && strings.EqualFold(other.Email, email) {
			return true
		}
	}
	return false
}

func (r *SupplierRepo) Create(_ context.Context, s *entity.Supplier) (err error) {
	r.s.locked(false, func(st *state) {
		if _, ok := st.suppliers[s.ID]; ok || emailTaken(st, s.Email, "") {
			err = domain.ErrDuplicate
			return
		}
		st.suppliers[s.ID] = *s
	})
	return err
}

func (r *SupplierRepo) GetByID(_ context.Context, id string) (out *entity.Supplier, err error) {
	r.s.locked(false, func(st *state) {
		if s, ok := st.suppliers[id]; ok {
			out = &s
		}
	})
	return out, nil
}

func (r *SupplierRepo) Update(_ context.Context, s *entity.Supplier) (err error) {
	r.s.locked(false, func(st *state) {
		cur, ok := st.suppliers[s.ID]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		if emailTaken(st, s.Email, s.ID) {
			err = domain.ErrDuplicate
			return
		}
		next := *s
		next.CreatedAt = cur.CreatedAt
		st.suppliers[s.ID] = next
	})
	return err
}

// Delete rechaza proveedores con órdenes registradas.
func (r *SupplierRepo) Delete(_ context.Context, id string) (err error) {
	r.s.locked(false, func(st *state) {
		if _, ok := st.suppliers[id]; !ok {
			err = domain.ErrNotFound
			return
		}
		for _, o := range st.orders {
			if o.SupplierID == id {
				err = domain.ErrInvalidState
				return
			}
		}
		delete(st.suppliers, id)
	})
	return err
}

func (r *SupplierRepo) List(_ context.Context) (out []*entity.Supplier, err error) {
	r.s.locked(false, func(st *state) {
		for _, s := range st.suppliers {
			cp := s
			out = append(out, &cp)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// UserRepo implementa repository.UserRepository.
type UserRepo struct {
	s *Store
}

func (r *UserRepo) GetByID(_ context.Context, id string) (out *entity.User, err error) {
	r.s.locked(false, func(st *state) {
		if u, ok := st.users[id]; ok {
			out = &u
		}
	})
	return out, nil
}
