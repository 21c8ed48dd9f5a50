package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	gomail "gopkg.in/gomail.v2"
)

// MailerConfig holds SMTP settings for outbound email.
type MailerConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// Mailer delivers queued emails over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	name   string
	logger *slog.Logger
}

// NewMailer constructs a Mailer.
func NewMailer(cfg MailerConfig, logger *slog.Logger) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
		name:   cfg.FromName,
		logger: logger,
	}
}

// HandleSendEmail processes TaskTypeSendEmail tasks. A malformed payload is
// dropped without retry; SMTP failures are returned so Asynq retries them.
func (m *Mailer) HandleSendEmail(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.To == "" {
		return asynq.SkipRetry
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.name)
	msg.SetHeader("To", payload.To)
	msg.SetHeader("Subject", payload.Subject)
	msg.SetBody("text/plain", payload.Body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		if m.logger != nil {
			m.logger.Error("send email",
				slog.String("to", payload.To),
				slog.String("notification_id", payload.NotificationID),
				slog.Any("error", err))
		}
		return err
	}
	if m.logger != nil {
		m.logger.Info("email sent",
			slog.String("to", payload.To),
			slog.String("subject", payload.Subject))
	}
	return nil
}
