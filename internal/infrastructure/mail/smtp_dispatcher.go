// Package mail entrega facturas por SMTP.
package mail

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"

	"github.com/jhoicas/stockmaster-api/internal/application/sales"
	"github.com/jhoicas/stockmaster-api/pkg/config"
)

var _ sales.NotificationDispatcher = (*SMTPDispatcher)(nil)

// SMTPDispatcher envía la factura con adjunto PDF usando gomail.
type SMTPDispatcher struct {
	from string
	send func(msgs ...*gomail.Message) error
}

// NewSMTPDispatcher construye el dispatcher contra el servidor configurado.
func NewSMTPDispatcher(cfg config.SMTPConfig) *SMTPDispatcher {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return &SMTPDispatcher{from: cfg.From, send: d.DialAndSend}
}

// NewSMTPDispatcherWithSender permite inyectar el envío (tests, relays propios).
func NewSMTPDispatcherWithSender(from string, s gomail.Sender) *SMTPDispatcher {
	return &SMTPDispatcher{from: from, send: func(msgs ...*gomail.Message) error {
		return gomail.Send(s, msgs...)
	}}
}

// DispatchInvoice arma el mensaje y lo envía.
func (d *SMTPDispatcher) DispatchInvoice(ctx context.Context, msg sales.InvoiceDispatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := d.buildMessage(msg)
	if err != nil {
		return err
	}
	if err := d.send(m); err != nil {
		return fmt.Errorf("mail: enviar factura %s a %s: %w", msg.SaleID, msg.To, err)
	}
	return nil
}

func (d *SMTPDispatcher) buildMessage(msg sales.InvoiceDispatch) (*gomail.Message, error) {
	if msg.To == "" {
		return nil, fmt.Errorf("mail: destinatario vacío")
	}
	m := gomail.NewMessage()
	m.SetHeader("From", d.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	if len(msg.Attachment) > 0 {
		name := msg.AttachmentName
		if name == "" {
			name = "factura.pdf"
		}
		data := msg.Attachment
		m.Attach(name,
			gomail.SetHeader(map[string][]string{"Content-Type": {"application/pdf"}}),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		)
	}
	return m, nil
}
