package notify

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/vasiliy-maslov/online-shop/internal/order"
	"github.com/vasiliy-maslov/online-shop/internal/user"
)

// MailSender sends plain-text order notifications over SMTP.
type MailSender struct {
	addr string
	auth smtp.Auth
	from string
}

func NewMailSender(host, port, username, password, from string) *MailSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &MailSender{
		addr: host + ":" + port,
		auth: auth,
		from: from,
	}
}

func (m *MailSender) SendStatusChange(u *user.User, o *order.Order, oldStatus, newStatus order.Status) error {
	subject := "Your order status has changed"
	body := fmt.Sprintf(
		"Hello %s,\n\n"+
			"The status of your order has been updated.\n\n"+
			"Order:      %s\n"+
			"Total:      %s\n"+
			"Old status: %s\n"+
			"New status: %s\n"+
			"Updated at: %s\n\n"+
			"%s\n\n"+
			"This message was sent automatically, please do not reply.\n",
		u.Username,
		o.ID,
		o.TotalPrice.StringFixed(2),
		oldStatus,
		newStatus,
		time.Now().Format("2006-01-02 15:04:05"),
		statusMessage(newStatus),
	)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.from, u.Email, subject, body,
	))

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{u.Email}, msg); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}

	return nil
}

func statusMessage(status order.Status) string {
	switch status {
	case order.StatusPaid:
		return "Your payment was received. We will ship your order shortly."
	case order.StatusShipped:
		return "Your order is on its way."
	case order.StatusCompleted:
		return "Your order is complete. Thank you for shopping with us!"
	case order.StatusCancelled:
		return "Your order has been cancelled. Contact support if this is unexpected."
	default:
		return "Your order status has been updated."
	}
}
