package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, product_id, direction, quantity, reference, created_at, created_by`

// StockMovementRepo persiste el kardex en stock_movements.
type StockMovementRepo struct {
	q Querier
}

func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

func scanMovement(row rowScanner) (*entity.StockMovement, error) {
	var (
		m   entity.StockMovement
		dir string
	)
	if err := row.Scan(&m.ID, &m.ProductID, &dir, &m.Quantity, &m.Reference, &m.CreatedAt, &m.CreatedBy); err != nil {
		return nil, err
	}
	m.Direction = entity.MovementDirection(dir)
	return &m, nil
}

func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `INSERT INTO stock_movements (` + movementColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, m.ID, m.ProductID, string(m.Direction), m.Quantity, m.Reference, m.CreatedAt, m.CreatedBy)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

func (r *StockMovementRepo) getOne(ctx context.Context, query, id string) (*entity.StockMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	return r.getOne(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE id = $1`, id)
}

// GetForUpdate bloquea el movimiento para anularlo.
func (r *StockMovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockMovement, error) {
	return r.getOne(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE id = $1 FOR UPDATE`, id)
}

func (r *StockMovementRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM stock_movements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete stock movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByProduct devuelve el kardex en orden (created_at, id). Limit 0 = sin límite.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var limit *int
	if f.Limit > 0 {
		limit = &f.Limit
	}
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE product_id = $1
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY created_at, id
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, productID, f.From, f.To, limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	out := []*entity.StockMovement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *StockMovementRepo) SumByProduct(ctx context.Context, productID string) (repository.MovementTotals, error) {
	var t repository.MovementTotals
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity) FILTER (WHERE direction = 'IN'), 0),
		       COALESCE(SUM(quantity) FILTER (WHERE direction = 'OUT'), 0)
		FROM stock_movements WHERE product_id = $1`, productID).Scan(&t.In, &t.Out)
	if err != nil {
		return t, fmt.Errorf("sum stock movements: %w", err)
	}
	return t, nil
}

func (r *StockMovementRepo) QuantityByReference(ctx context.Context, reference string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM stock_movements WHERE reference = $1`, reference,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sum by reference: %w", err)
	}
	return n, nil
}
