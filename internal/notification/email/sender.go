package email

import (
	"context"
	"fmt"
	"net/smtp"

	log "github.com/sirupsen/logrus"

	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
)

// Sender отправляет подтверждение заказа по SMTP. Best-effort: вызывающая
// сторона логирует ошибку и не влияет на судьбу заказа.
type Sender struct {
	host   string
	port   string
	from   string
	logger *log.Entry
}

// NewSender создаёт SMTP-отправитель. Пустой host означает "не сконфигурирован":
// отправка превращается в no-op.
func NewSender(host, port, from string) *Sender {
	return &Sender{
		host:   host,
		port:   port,
		from:   from,
		logger: log.WithField("component", "email-sender"),
	}
}

// SendOrderConfirmation отправляет покупателю письмо с подтверждением заказа.
func (s *Sender) SendOrderConfirmation(_ context.Context, order domain.Order, customer domain.Customer) error {
	if s.host == "" {
		s.logger.WithField("order_number", order.Number).
			Debug("smtp not configured, skipping order confirmation")
		return nil
	}

	to := order.Contact.Email
	if to == "" {
		to = customer.Email
	}
	if to == "" {
		return fmt.Errorf("no recipient email for order %s", order.Number)
	}

	subject := fmt.Sprintf("Order confirmed — %s", order.Number)
	body := buildConfirmationBody(order, customer)

	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body,
	)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send order confirmation: %w", err)
	}

	s.logger.WithFields(log.Fields{
		"order_number": order.Number,
		"to":           to,
	}).Info("order confirmation sent")

	return nil
}

var _ domain.ConfirmationSender = (*Sender)(nil)
