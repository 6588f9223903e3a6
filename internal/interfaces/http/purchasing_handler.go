package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockmaster-api/internal/application/dto"
	"github.com/jhoicas/stockmaster-api/internal/application/purchasing"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

// PurchasingHandler proveedores y órdenes de compra.
type PurchasingHandler struct {
	suppliers *purchasing.SupplierUseCase
	orders    *purchasing.PurchaseOrderUseCase
}

// NewPurchasingHandler construye el handler.
func NewPurchasingHandler(suppliers *purchasing.SupplierUseCase, orders *purchasing.PurchaseOrderUseCase) *PurchasingHandler {
	return &PurchasingHandler{suppliers: suppliers, orders: orders}
}

// CreateSupplier godoc
// @Summary      Crear proveedor
// @Tags         suppliers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SupplierRequest  true  "Datos del proveedor"
// @Success      201   {object}  dto.SupplierResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/suppliers [post]
func (h *PurchasingHandler) CreateSupplier(c *fiber.Ctx) error {
	var in dto.SupplierRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	s, err := h.suppliers.Create(c.UserContext(), supplierInput(in))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSupplierResponse(s))
}

// ListSuppliers godoc
// @Summary      Listar proveedores
// @Tags         suppliers
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.SupplierResponse
// @Router       /api/suppliers [get]
func (h *PurchasingHandler) ListSuppliers(c *fiber.Ctx) error {
	list, err := h.suppliers.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSupplierResponse(s))
	}
	return c.JSON(out)
}

// GetSupplier godoc
// @Summary      Obtener proveedor
// @Tags         suppliers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del proveedor"
// @Success      200  {object}  dto.SupplierResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/suppliers/{id} [get]
func (h *PurchasingHandler) GetSupplier(c *fiber.Ctx) error {
	s, err := h.suppliers.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSupplierResponse(s))
}

// UpdateSupplier godoc
// @Summary      Actualizar proveedor
// @Tags         suppliers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del proveedor"
// @Param        body  body  dto.SupplierRequest  true  "Datos del proveedor"
// @Success      200   {object}  dto.SupplierResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/suppliers/{id} [put]
func (h *PurchasingHandler) UpdateSupplier(c *fiber.Ctx) error {
	var in dto.SupplierRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	s, err := h.suppliers.Update(c.UserContext(), c.Params("id"), supplierInput(in))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSupplierResponse(s))
}

// DeleteSupplier godoc
// @Summary      Eliminar proveedor
// @Description  Falla con 409 si el proveedor tiene órdenes de compra.
// @Tags         suppliers
// @Security     Bearer
// @Param        id  path  string  true  "ID del proveedor"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/suppliers/{id} [delete]
func (h *PurchasingHandler) DeleteSupplier(c *fiber.Ctx) error {
	if err := h.suppliers.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListSupplierOrders godoc
// @Summary      Órdenes de compra de un proveedor
// @Tags         suppliers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del proveedor"
// @Success      200  {array}  dto.PurchaseOrderResponse
// @Router       /api/suppliers/{id}/purchase-orders [get]
func (h *PurchasingHandler) ListSupplierOrders(c *fiber.Ctx) error {
	list, err := h.orders.ListBySupplier(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.PurchaseOrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, toPurchaseOrderResponse(o))
	}
	return c.JSON(out)
}

// CreateOrder godoc
// @Summary      Crear orden de compra (PENDING)
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseOrderRequest  true  "supplier_id, product_id, quantity, unit_cost"
// @Success      201   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [post]
func (h *PurchasingHandler) CreateOrder(c *fiber.Ctx) error {
	var in dto.CreatePurchaseOrderRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	o, err := h.orders.Create(c.UserContext(), purchasing.CreatePurchaseOrderInput{
		SupplierID: in.SupplierID,
		ProductID:  in.ProductID,
		Quantity:   in.Quantity,
		UnitCost:   in.UnitCost,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toPurchaseOrderResponse(o))
}

// GetOrder godoc
// @Summary      Obtener orden de compra
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id} [get]
func (h *PurchasingHandler) GetOrder(c *fiber.Ctx) error {
	o, err := h.orders.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPurchaseOrderResponse(o))
}

// ReceiveOrder godoc
// @Summary      Recibir orden de compra
// @Description  PENDING → RECEIVED y entrada PO-<id> en el kardex, atómicamente.
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/receive [post]
func (h *PurchasingHandler) ReceiveOrder(c *fiber.Ctx) error {
	o, err := h.orders.Receive(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPurchaseOrderResponse(o))
}

// CancelOrder godoc
// @Summary      Cancelar orden de compra
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/cancel [post]
func (h *PurchasingHandler) CancelOrder(c *fiber.Ctx) error {
	o, err := h.orders.Cancel(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPurchaseOrderResponse(o))
}

func supplierInput(in dto.SupplierRequest) purchasing.SupplierInput {
	return purchasing.SupplierInput{Name: in.Name, Email: in.Email, Phone: in.Phone, Address: in.Address}
}

func toSupplierResponse(s *entity.Supplier) dto.SupplierResponse {
	return dto.SupplierResponse{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		Phone:     s.Phone,
		Address:   s.Address,
		CreatedAt: s.CreatedAt,
	}
}

func toPurchaseOrderResponse(o *entity.PurchaseOrder) dto.PurchaseOrderResponse {
	return dto.PurchaseOrderResponse{
		ID:         o.ID,
		SupplierID: o.SupplierID,
		ProductID:  o.ProductID,
		Quantity:   o.Quantity,
		UnitCost:   o.UnitCost,
		Subtotal:   o.Subtotal,
		Status:     string(o.Status),
		CreatedAt:  o.CreatedAt,
		ReceivedAt: o.ReceivedAt,
	}
}
