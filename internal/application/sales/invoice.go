package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

// ErrNoRecipient no hay correo de cliente ni de operador.
var ErrNoRecipient = errors.New("la venta no tiene destinatario para la factura")

// ErrDispatchDisabled el envío de facturas está desactivado.
var ErrDispatchDisabled = errors.New("el envío de facturas está desactivado")

// resolveRecipient: correo del cliente; si no, el de la cuenta del operador.
func (uc *CheckoutUseCase) resolveRecipient(ctx context.Context, s *entity.Sale, fallback string) (string, error) {
	if to := strings.TrimSpace(s.CustomerEmail); to != "" {
		return to, nil
	}
	if uc.operators != nil {
		u, err := uc.operators.GetByID(ctx, s.OperatorID)
		if err != nil {
			return "", err
		}
		if u != nil && u.Email != "" {
			return u.Email, nil
		}
	}
	if to := strings.TrimSpace(fallback); to != "" {
		return to, nil
	}
	return "", ErrNoRecipient
}

func (uc *CheckoutUseCase) buildDispatch(s *entity.Sale, to string, pdf []byte) InvoiceDispatch {
	var b strings.Builder
	fmt.Fprintf(&b, "Gracias por su compra en %s.\n\n", uc.cfg.StoreName)
	fmt.Fprintf(&b, "Venta: %s\nFecha: %s\n", s.ID, s.CreatedAt.Format("2006-01-02 15:04"))
	for _, l := range s.Lines {
		fmt.Fprintf(&b, "  %d x %s  $%s\n", l.Quantity, l.ProductName, l.Subtotal.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nSubtotal: $%s\nDescuento: $%s\nIVA (%s%%): $%s\nTotal: $%s\n",
		s.Subtotal.StringFixed(2), s.Discount.StringFixed(2), s.TaxRate.String(),
		s.TaxAmount.StringFixed(2), s.Total.StringFixed(2))
	b.WriteString("\nAdjuntamos la factura en PDF.\n")

	return InvoiceDispatch{
		SaleID:         s.ID,
		To:             to,
		Subject:        fmt.Sprintf("Factura de Venta #%s - %s", s.ID, uc.cfg.StoreName),
		Body:           b.String(),
		Attachment:     pdf,
		AttachmentName: fmt.Sprintf("Factura_Venta_%s.pdf", s.ID),
	}
}

// sendInvoice genera y entrega la factura de una venta ya confirmada.
func (uc *CheckoutUseCase) sendInvoice(ctx context.Context, s *entity.Sale, fallback string) error {
	if uc.renderer == nil || uc.dispatcher == nil {
		return ErrDispatchDisabled
	}
	to, err := uc.resolveRecipient(ctx, s, fallback)
	if err != nil {
		return err
	}
	pdf, err := uc.renderer.RenderSale(ctx, s)
	if err != nil {
		return fmt.Errorf("generar factura: %w", err)
	}
	if err := uc.dispatcher.DispatchInvoice(ctx, uc.buildDispatch(s, to, pdf)); err != nil {
		return fmt.Errorf("enviar factura: %w", err)
	}
	return nil
}

// deliverInvoice nunca falla la venta: devuelve el texto de advertencia o "".
func (uc *CheckoutUseCase) deliverInvoice(ctx context.Context, s *entity.Sale, fallback string) string {
	err := uc.sendInvoice(ctx, s, fallback)
	if errors.Is(err, ErrDispatchDisabled) {
		return ""
	}
	status := "sent"
	if err != nil {
		status = "failed"
	}
	if uc.metrics != nil {
		uc.metrics.IncDispatch(status)
	}
	if err == nil {
		return ""
	}
	uc.log.Warn().Err(err).Str("sale_id", s.ID).Msg("no se pudo enviar la factura")
	return "factura no enviada: " + err.Error()
}

// ResendInvoice reenvía la factura de una venta existente. Aquí los errores sí se devuelven.
func (uc *CheckoutUseCase) ResendInvoice(ctx context.Context, saleID, to string) error {
	s, err := uc.GetSale(ctx, saleID)
	if err != nil {
		return err
	}
	if to != "" {
		s.CustomerEmail = to
	}
	err = uc.sendInvoice(ctx, s, "")
	if uc.metrics != nil && !errors.Is(err, ErrDispatchDisabled) {
		status := "sent"
		if err != nil {
			status = "failed"
		}
		uc.metrics.IncDispatch(status)
	}
	return err
}

// RenderInvoice devuelve el PDF de una venta.
func (uc *CheckoutUseCase) RenderInvoice(ctx context.Context, saleID string) ([]byte, error) {
	if uc.renderer == nil {
		return nil, ErrDispatchDisabled
	}
	s, err := uc.GetSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return uc.renderer.RenderSale(ctx, s)
}

// GetSale devuelve la venta con sus líneas o ErrNotFound.
func (uc *CheckoutUseCase) GetSale(ctx context.Context, saleID string) (*entity.Sale, error) {
	if saleID == "" {
		return nil, domain.ErrInvalidInput
	}
	s, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// ListSales lista ventas recientes. Un cajero solo ve las propias.
func (uc *CheckoutUseCase) ListSales(ctx context.Context, viewerID, role string, limit, offset int) ([]*entity.Sale, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	f := repository.SaleFilter{Limit: limit, Offset: offset}
	if role != entity.RoleAdmin {
		f.OperatorID = viewerID
	}
	return uc.sales.List(ctx, f)
}
