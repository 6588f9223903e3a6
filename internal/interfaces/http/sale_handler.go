package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockmaster-api/internal/application/dto"
	"github.com/jhoicas/stockmaster-api/internal/application/sales"
	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

// SaleHandler punto de venta: checkout, consultas y factura.
type SaleHandler struct {
	uc *sales.CheckoutUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.CheckoutUseCase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

// Checkout godoc
// @Summary      Confirmar venta
// @Description  Precios, impuestos y vuelto se calculan en el servidor. Si el envío
// @Description  de la factura falla la venta queda confirmada y se informa en warnings.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckoutRequest  true  "Carrito y pago"
// @Success      201   {object}  dto.CheckoutResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Checkout(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	lines := make([]sales.CheckoutLine, 0, len(in.Items))
	for _, it := range in.Items {
		lines = append(lines, sales.CheckoutLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	res, err := h.uc.Checkout(c.UserContext(), sales.CheckoutInput{
		OperatorID:     GetUserID(c),
		OperatorEmail:  GetEmail(c),
		Lines:          lines,
		PaymentMethod:  entity.PaymentMethod(in.PaymentMethod),
		Discount:       in.Discount,
		AmountTendered: in.AmountTendered,
		CustomerEmail:  in.CustomerEmail,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CheckoutResponse{
		Sale:     toSaleResponse(res.Sale, true),
		Warnings: res.Warnings,
	})
}

// List godoc
// @Summary      Listar ventas
// @Description  ADMIN ve todas; CAJERO solo las propias.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(50)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.SaleListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	page, err := bindPage(c, 50)
	if err != nil {
		return writeError(c, err)
	}
	list, err := h.uc.ListSales(c.UserContext(), GetUserID(c), GetRole(c), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.SaleListResponse{Items: make([]dto.SaleResponse, 0, len(list)), Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}
	for _, s := range list {
		out.Items = append(out.Items, toSaleResponse(s, false))
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener venta con sus líneas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) Get(c *fiber.Ctx) error {
	s, err := h.visibleSale(c.UserContext(), c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSaleResponse(s, true))
}

// InvoicePDF godoc
// @Summary      Descargar factura en PDF
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de la venta"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/invoice.pdf [get]
func (h *SaleHandler) InvoicePDF(c *fiber.Ctx) error {
	s, err := h.visibleSale(c.UserContext(), c)
	if err != nil {
		return writeError(c, err)
	}
	pdf, err := h.uc.RenderInvoice(c.UserContext(), s.ID)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="Factura_Venta_%s.pdf"`, s.ID))
	return c.Send(pdf)
}

// ResendInvoice godoc
// @Summary      Reenviar factura por correo
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Param        id    path  string  true  "ID de la venta"
// @Param        body  body  dto.ResendInvoiceRequest  false  "Correo destino (opcional)"
// @Success      202
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/invoice/send [post]
func (h *SaleHandler) ResendInvoice(c *fiber.Ctx) error {
	var in dto.ResendInvoiceRequest
	if len(c.Body()) > 0 {
		if err := bindJSON(c, &in); err != nil {
			return writeError(c, err)
		}
	}
	s, err := h.visibleSale(c.UserContext(), c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.ResendInvoice(c.UserContext(), s.ID, in.Email); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusAccepted)
}

// visibleSale oculta a un cajero las ventas de otros operadores.
func (h *SaleHandler) visibleSale(ctx context.Context, c *fiber.Ctx) (*entity.Sale, error) {
	s, err := h.uc.GetSale(ctx, c.Params("id"))
	if err != nil {
		return nil, err
	}
	if GetRole(c) != entity.RoleAdmin && s.OperatorID != GetUserID(c) {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func toSaleResponse(s *entity.Sale, withLines bool) dto.SaleResponse {
	out := dto.SaleResponse{
		ID:             s.ID,
		OperatorID:     s.OperatorID,
		PaymentMethod:  string(s.PaymentMethod),
		Subtotal:       s.Subtotal,
		Discount:       s.Discount,
		TaxRate:        s.TaxRate,
		TaxAmount:      s.TaxAmount,
		Total:          s.Total,
		AmountTendered: s.AmountTendered,
		Change:         s.Change,
		CustomerEmail:  s.CustomerEmail,
		CreatedAt:      s.CreatedAt,
	}
	if withLines {
		out.Lines = make([]dto.SaleLineResponse, 0, len(s.Lines))
		for _, l := range s.Lines {
			out.Lines = append(out.Lines, dto.SaleLineResponse{
				ProductID:   l.ProductID,
				ProductName: l.ProductName,
				ProductCode: l.ProductCode,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
				Subtotal:    l.Subtotal,
			})
		}
	}
	return out
}
