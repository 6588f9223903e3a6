package purchasing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

// SupplierUseCase administra proveedores.
type SupplierUseCase struct {
	repo repository.SupplierRepository
}

func NewSupplierUseCase(repo repository.SupplierRepository) *SupplierUseCase {
	return &SupplierUseCase{repo: repo}
}

// SupplierInput datos editables de un proveedor.
type SupplierInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

func (in SupplierInput) normalized() (SupplierInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" {
		return in, domain.ErrInvalidInput
	}
	return in, nil
}

// Create guarda el proveedor; email repetido → domain.ErrDuplicate.
func (uc *SupplierUseCase) Create(ctx context.Context, in SupplierInput) (*entity.Supplier, error) {
	in, err := in.normalized()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	s := &entity.Supplier{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (uc *SupplierUseCase) Get(ctx context.Context, id string) (*entity.Supplier, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (uc *SupplierUseCase) Update(ctx context.Context, id string, in SupplierInput) (*entity.Supplier, error) {
	in, err := in.normalized()
	if err != nil {
		return nil, err
	}
	s, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Name, s.Email, s.Phone, s.Address = in.Name, in.Email, in.Phone, in.Address
	s.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Delete falla con ErrInvalidState si el proveedor tiene órdenes.
func (uc *SupplierUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func (uc *SupplierUseCase) List(ctx context.Context) ([]*entity.Supplier, error) {
	return uc.repo.List(ctx)
}
