// Package memory implementa los repositorios en memoria. Un único mutex
// serializa las transacciones; el rollback restaura una copia del estado.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

type movementRow struct {
	mov entity.StockMovement
	seq int64
}

type state struct {
	products  map[string]entity.Product
	movements map[string]movementRow
	orders    map[string]entity.PurchaseOrder
	sales     map[string]entity.Sale
	suppliers map[string]entity.Supplier
	users     map[string]entity.User
	seq       int64
}

func (s *state) clone() state {
	return state{
		products:  maps.Clone(s.products),
		movements: maps.Clone(s.movements),
		orders:    maps.Clone(s.orders),
		sales:     maps.Clone(s.sales),
		suppliers: maps.Clone(s.suppliers),
		users:     maps.Clone(s.users),
		seq:       s.seq,
	}
}

// Store guarda todas las tablas. Seguro para uso concurrente.
type Store struct {
	mu sync.Mutex
	st state
}

// NewStore crea un Store vacío.
func NewStore() *Store {
	return &Store{st: state{
		products:  map[string]entity.Product{},
		movements: map[string]movementRow{},
		orders:    map[string]entity.PurchaseOrder{},
		sales:     map[string]entity.Sale{},
		suppliers: map[string]entity.Supplier{},
		users:     map[string]entity.User{},
	}}
}

// AddUser registra un operador (no hay alta de usuarios en este servicio).
func (s *Store) AddUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.users[u.ID] = u
}

// Products, Movements, etc. devuelven repositorios fuera de transacción.
func (s *Store) Products() *ProductRepo             { return &ProductRepo{s: s} }
func (s *Store) Movements() *StockMovementRepo      { return &StockMovementRepo{s: s} }
func (s *Store) PurchaseOrders() *PurchaseOrderRepo { return &PurchaseOrderRepo{s: s} }
func (s *Store) Sales() *SaleRepo                   { return &SaleRepo{s: s} }
func (s *Store) Suppliers() *SupplierRepo           { return &SupplierRepo{s: s} }
func (s *Store) Users() *UserRepo                   { return &UserRepo{s: s} }

// Run implementa inventory.TxRunner: mantiene el lock durante fn y restaura
// el estado previo si fn falla.
func (s *Store) Run(ctx context.Context, fn func(repos repository.TxRepositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	repos := repository.TxRepositories{
		Products:       &ProductRepo{s: s, inTx: true},
		Movements:      &StockMovementRepo{s: s, inTx: true},
		PurchaseOrders: &PurchaseOrderRepo{s: s, inTx: true},
		Sales:          &SaleRepo{s: s, inTx: true},
	}
	if err := fn(repos); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// locked ejecuta fn con el mutex tomado, salvo que ya lo tenga la transacción.
func (s *Store) locked(inTx bool, fn func(st *state)) {
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	fn(&s.st)
}
