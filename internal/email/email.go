package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/coursedesk/internal/domain"
	"github.com/Domenick1991/coursedesk/internal/kafka"
	"go.uber.org/zap"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers customer emails. Delivery is logged; there is no SMTP relay
// configured for this deployment.
type Sender struct {
	logger *zap.Logger
}

func NewSender(logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{logger: logger}
}

func (s *Sender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("send email %q: empty recipient", msg.Subject)
	}
	s.logger.Info("send email", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

// Compose builds the customer email for event. Only captured payments and
// submitted bookings produce one.
func Compose(event kafka.Event) (Message, bool) {
	switch event.Type {
	case kafka.EventCheckoutCaptured:
		return Message{
			To:      event.Email,
			Subject: "Payment received",
			Body: fmt.Sprintf("Thank you for your purchase of %s.\nAmount: %s %s\nOrder: %s\n",
				event.PackageID, domain.MinorUnits(event.Amount).Decimal(), event.Currency, event.OrderID),
		}, true
	case kafka.EventBookingSubmitted:
		return Message{
			To:      event.Email,
			Subject: "Free lesson request received",
			Body: fmt.Sprintf("We received your request for %s at %s.\nWe will confirm it shortly.\nReference: %s\n",
				event.Date, event.Time, event.BookingID),
		}, true
	}
	return Message{}, false
}
