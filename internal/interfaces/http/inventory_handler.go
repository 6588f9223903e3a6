package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockmaster-api/internal/application/dto"
	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

// InventoryHandler maneja el kardex: movimientos, anulaciones, devoluciones y conciliación.
type InventoryHandler struct {
	ledger *inventory.LedgerUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// RecordMovement godoc
// @Summary      Registrar movimiento manual del kardex
// @Description  No valida suficiencia: un ajuste OUT puede dejar el saldo negativo.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "product_id, direction (IN|OUT), quantity, reference"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	mov, err := h.ledger.Record(c.UserContext(), inventory.RecordMovementInput{
		ProductID: in.ProductID,
		Direction: entity.MovementDirection(in.Direction),
		Quantity:  in.Quantity,
		Reference: in.Reference,
		UserID:    GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// VoidMovement godoc
// @Summary      Anular movimiento
// @Description  Borra el movimiento y revierte su efecto sobre el saldo en la misma transacción.
// @Tags         inventory
// @Security     Bearer
// @Param        id  path  string  true  "ID del movimiento"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [delete]
func (h *InventoryHandler) VoidMovement(c *fiber.Ctx) error {
	if err := h.ledger.Void(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListByProduct godoc
// @Summary      Kardex de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        from    query  string  false  "Desde (RFC3339)"
// @Param        to      query  string  false  "Hasta (RFC3339)"
// @Param        limit   query  int     false  "Límite"  default(100)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.MovementListResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/movements [get]
func (h *InventoryHandler) ListByProduct(c *fiber.Ctx) error {
	page, err := bindPage(c, 100)
	if err != nil {
		return writeError(c, err)
	}
	f := repository.MovementFilter{Limit: page.Limit, Offset: page.Offset}
	if f.From, err = parseTimeQuery(c, "from"); err != nil {
		return writeError(c, err)
	}
	if f.To, err = parseTimeQuery(c, "to"); err != nil {
		return writeError(c, err)
	}
	list, err := h.ledger.ListByProduct(c.UserContext(), c.Params("id"), f)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.MovementListResponse{Items: make([]dto.MovementResponse, 0, len(list))}
	for _, m := range list {
		out.Items = append(out.Items, toMovementResponse(m))
	}
	out.Page = dto.PageResponse{Limit: f.Limit, Offset: f.Offset}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Conciliar saldo cacheado contra kardex
// @Description  Con product_id revisa un producto; sin él revisa todo el catálogo y devuelve solo descuadres.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "ID del producto"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	if id := c.Query("product_id"); id != "" {
		b, err := h.ledger.Reconcile(c.UserContext(), id)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(toBalanceResponse(*b))
	}
	rep, err := h.ledger.ReconcileAll(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	out := dto.ReconciliationResponse{
		CheckedAt:  rep.CheckedAt,
		Checked:    rep.Checked,
		Mismatches: make([]dto.ProductBalanceResponse, 0, len(rep.Mismatches)),
	}
	for _, b := range rep.Mismatches {
		out.Mismatches = append(out.Mismatches, toBalanceResponse(b))
	}
	return c.JSON(out)
}

// RecordReturn godoc
// @Summary      Registrar devolución de cliente
// @Description  Entrada RETURN-<venta>-<producto>; no puede exceder lo vendido menos lo ya devuelto.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReturnRequest  true  "sale_id, product_id, quantity"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/returns [post]
func (h *InventoryHandler) RecordReturn(c *fiber.Ctx) error {
	var in dto.ReturnRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	mov, err := h.ledger.RecordReturn(c.UserContext(), inventory.ReturnInput{
		SaleID:    in.SaleID,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		UserID:    GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, badRequest("VALIDATION", key+" debe ser RFC3339")
	}
	return &t, nil
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:        m.ID,
		ProductID: m.ProductID,
		Direction: string(m.Direction),
		Quantity:  m.Quantity,
		Reference: m.Reference,
		CreatedAt: m.CreatedAt,
		CreatedBy: m.CreatedBy,
	}
}

func toBalanceResponse(b inventory.ProductBalance) dto.ProductBalanceResponse {
	return dto.ProductBalanceResponse{
		ProductID:     b.ProductID,
		Code:          b.Code,
		Name:          b.Name,
		CachedStock:   b.CachedStock,
		LedgerBalance: b.LedgerBalance,
		TotalIn:       b.TotalIn,
		TotalOut:      b.TotalOut,
		Consistent:    b.Consistent(),
	}
}
