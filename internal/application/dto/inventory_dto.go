package dto

import "time"

// RecordMovementRequest entrada para un movimiento manual del kardex.
type RecordMovementRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Direction string `json:"direction" validate:"required,oneof=IN OUT"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
	Reference string `json:"reference" validate:"max=200"`
}

// ReturnRequest entrada para una devolución de cliente.
type ReturnRequest struct {
	SaleID    string `json:"sale_id" validate:"required"`
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID        string    `json:"id"`
	ProductID *string   `json:"product_id"`
	Direction string    `json:"direction"`
	Quantity  int64     `json:"quantity"`
	Reference string    `json:"reference"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy *string   `json:"created_by,omitempty"`
}

// MovementListResponse página del kardex.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ProductBalanceResponse resultado de conciliar un producto.
type ProductBalanceResponse struct {
	ProductID     string `json:"product_id"`
	Code          int64  `json:"code"`
	Name          string `json:"name"`
	CachedStock   int64  `json:"cached_stock"`
	LedgerBalance int64  `json:"ledger_balance"`
	TotalIn       int64  `json:"total_in"`
	TotalOut      int64  `json:"total_out"`
	Consistent    bool   `json:"consistent"`
}

// ReconciliationResponse resultado de conciliar el catálogo.
type ReconciliationResponse struct {
	CheckedAt  time.Time                `json:"checked_at"`
	Checked    int                      `json:"checked"`
	Mismatches []ProductBalanceResponse `json:"mismatches"`
}
