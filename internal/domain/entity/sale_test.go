package entity_test

import (
	"testing"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSaleLine_CapturaFoto(t *testing.T) {
	p := &entity.Product{ID: "p1", Code: 1001, Name: "Arroz 500g", SalePrice: decimal.RequireFromString("3500")}
	line := entity.NewSaleLine("l1", "s1", p, 3)

	p.Name = "Arroz Premium"
	p.SalePrice = decimal.RequireFromString("4000")

	require.NotNil(t, line.ProductID)
	assert.Equal(t, "p1", *line.ProductID)
	assert.Equal(t, "Arroz 500g", line.ProductName)
	assert.Equal(t, int64(1001), line.ProductCode)
	assert.True(t, decimal.RequireFromString("3500").Equal(line.UnitPrice))
	assert.True(t, decimal.RequireFromString("10500").Equal(line.Subtotal))
}

func TestSale_QuantityOf(t *testing.T) {
	a, b := "a", "b"
	s := &entity.Sale{Lines: []entity.SaleLine{
		{ProductID: &a, Quantity: 2},
		{ProductID: &b, Quantity: 1},
		{ProductID: nil, Quantity: 9},
	}}
	assert.Equal(t, int64(2), s.QuantityOf("a"))
	assert.Equal(t, int64(0), s.QuantityOf("c"))
}

func TestMovementDirection_Delta(t *testing.T) {
	assert.Equal(t, int64(5), entity.MovementIn.Delta(5))
	assert.Equal(t, int64(-5), entity.MovementOut.Delta(5))
	assert.False(t, entity.MovementDirection("ADJUST").Valid())
	assert.Equal(t, "SALE-s1-p1", entity.SaleReference("s1", "p1"))
	assert.Equal(t, "PO-o1", entity.PurchaseOrderReference("o1"))
	assert.Equal(t, "RETURN-s1-p1", entity.ReturnReference("s1", "p1"))
}
