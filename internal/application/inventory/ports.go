package inventory

import (
	"context"

	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit. La implementación puede
// reintentar fn completa ante conflictos transitorios, así que fn no debe tener
// efectos fuera de los repositorios.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.TxRepositories) error) error
}

// Metrics recibe contadores del kardex. Puede ser nil.
type Metrics interface {
	IncMovement(direction string)
}
