package notification

import (
	"context"
	"fmt"

	"github.com/Domenick1991/coursedesk/internal/email"
	"github.com/Domenick1991/coursedesk/internal/kafka"
	"go.uber.org/zap"
)

type Ledger interface {
	Record(ctx context.Context, event kafka.Event) (bool, error)
}

type Mailer interface {
	Send(ctx context.Context, msg email.Message) error
}

// NotificationService records every client event and emails the customer for
// the ones that warrant it. A redelivered event is not emailed twice.
type NotificationService struct {
	ledger Ledger
	mailer Mailer
	logger *zap.Logger
}

func NewNotificationService(ledger Ledger, mailer Mailer, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{ledger: ledger, mailer: mailer, logger: logger}
}

// Handle records event and mails its receipt. A ledger failure is returned so
// the consumer redelivers the event instead of committing it.
func (s *NotificationService) Handle(ctx context.Context, event kafka.Event) error {
	fresh, err := s.ledger.Record(ctx, event)
	if err != nil {
		return fmt.Errorf("record event %s: %w", event.ID, err)
	}
	if !fresh {
		s.logger.Debug("duplicate event skipped", zap.String("event_id", event.ID))
		return nil
	}

	msg, ok := email.Compose(event)
	if !ok {
		return nil
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Warn("failed to send email",
			zap.String("event_id", event.ID),
			zap.String("type", event.Type),
			zap.Error(err),
		)
	}
	return nil
}
