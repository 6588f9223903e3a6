package dto

import "github.com/shopspring/decimal"

// StockReportItem fila de los reportes de stock.
type StockReportItem struct {
	ProductID string          `json:"product_id"`
	Code      int64           `json:"code"`
	Name      string          `json:"name"`
	Stock     int64           `json:"stock"`
	SalePrice decimal.Decimal `json:"sale_price"`
	Active    bool            `json:"active"`
}

// StockReportResponse reporte de stock (completo o bajo umbral).
type StockReportResponse struct {
	Threshold *int64            `json:"threshold,omitempty"`
	Items     []StockReportItem `json:"items"`
}

// InventoryValueResponse valor del inventario: Σ stock × precio de venta.
type InventoryValueResponse struct {
	Products   int             `json:"products"`
	TotalUnits int64           `json:"total_units"`
	TotalValue decimal.Decimal `json:"total_value"`
}
