package usecase

import (
	"context"

	"github.com/jhoicas/stockmaster-api/internal/application/dto"
	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold umbral del reporte de stock bajo.
const DefaultLowStockThreshold int64 = 10

// ReportUseCase reportes de inventario (solo lectura).
type ReportUseCase struct {
	repo repository.ProductRepository
}

func NewReportUseCase(repo repository.ProductRepository) *ReportUseCase {
	return &ReportUseCase{repo: repo}
}

// Stock lista todos los productos ordenados por nombre.
func (uc *ReportUseCase) Stock(ctx context.Context) (*dto.StockReportResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.StockReportResponse{Items: toStockItems(list)}, nil
}

// LowStock lista productos con stock < threshold.
func (uc *ReportUseCase) LowStock(ctx context.Context, threshold int64) (*dto.StockReportResponse, error) {
	if threshold < 0 {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.repo.ListBelowStock(ctx, threshold)
	if err != nil {
		return nil, err
	}
	return &dto.StockReportResponse{Threshold: &threshold, Items: toStockItems(list)}, nil
}

// InventoryValue suma stock × precio de venta. El stock negativo no resta valor.
func (uc *ReportUseCase) InventoryValue(ctx context.Context) (*dto.InventoryValueResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.InventoryValueResponse{Products: len(list), TotalValue: decimal.Zero}
	for _, p := range list {
		if p.Stock <= 0 {
			continue
		}
		out.TotalUnits += p.Stock
		out.TotalValue = out.TotalValue.Add(p.StockValue())
	}
	return out, nil
}

func toStockItems(list []*entity.Product) []dto.StockReportItem {
	items := make([]dto.StockReportItem, 0, len(list))
	for _, p := range list {
		items = append(items, dto.StockReportItem{
			ProductID: p.ID,
			Code:      p.Code,
			Name:      p.Name,
			Stock:     p.Stock,
			SalePrice: p.SalePrice,
			Active:    p.Active,
		})
	}
	return items
}
