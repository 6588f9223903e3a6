package repository

import (
	"context"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

// UserRepository resuelve operadores (solo lectura).
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}
