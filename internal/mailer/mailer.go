// Package mailer sends the receipt email when an order is paid. Delivery is
// best-effort: callers log failures and carry on.
package mailer

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/kudzaim/kiosk-commerce/internal/config"
	"github.com/kudzaim/kiosk-commerce/internal/models"
	"github.com/kudzaim/kiosk-commerce/pkg/logger"
)

// Mailer delivers customer notifications
type Mailer interface {
	SendReceipt(ctx context.Context, order *models.Order) error
}

// SMTPMailer sends receipts through an SMTP relay
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger logger.Logger
}

// NewSMTPMailer creates an SMTPMailer from config
func NewSMTPMailer(cfg config.SMTPConfig, logger logger.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

var _ Mailer = (*SMTPMailer)(nil)

// SendReceipt emails the paid-order receipt to the customer
func (m *SMTPMailer) SendReceipt(ctx context.Context, order *models.Order) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", order.Customer.Email)
	msg.SetHeader("Subject", fmt.Sprintf("Receipt - Order %s", order.OrderID))
	msg.SetBody("text/html", receiptHTML(order))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send receipt for order %s: %w", order.OrderID, err)
	}

	m.logger.Info("Receipt email sent", "orderID", order.OrderID, "to", order.Customer.Email)
	return nil
}

func receiptHTML(order *models.Order) string {
	var rows strings.Builder
	for _, item := range order.Items {
		rows.WriteString(fmt.Sprintf(
			"<tr><td>%s</td><td>%d</td><td>%s %.2f</td></tr>",
			item.Name, item.Quantity, order.Currency, item.Price,
		))
	}

	return fmt.Sprintf(`
		<h2>Payment Successful</h2>
		<p>Thank you for your order, %s</p>
		<p><strong>Order ID:</strong> %s</p>
		<table border="1" cellpadding="8" cellspacing="0">
			<thead><tr><th>Item</th><th>Qty</th><th>Price</th></tr></thead>
			<tbody>%s</tbody>
		</table>
		<p><strong>Total Paid:</strong> %s %.2f</p>`,
		order.Customer.FullName, order.OrderID, rows.String(), order.Currency, order.Total)
}

// NoopMailer discards receipts; used when SMTP is not configured
type NoopMailer struct{}

var _ Mailer = (*NoopMailer)(nil)

// SendReceipt does nothing
func (NoopMailer) SendReceipt(ctx context.Context, order *models.Order) error {
	return nil
}
