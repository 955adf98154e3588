package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/Lucifer12122001/PAL/internal/config"
)

const alertSubject = "!!! P.A.L. SECURITY ALERT !!!"

// EmailNotifier delivers the security alert to the master recipient over
// SMTP.
type EmailNotifier struct {
	cfg config.AlertConfig
}

// NewEmailNotifier creates the SMTP-backed alert channel.
func NewEmailNotifier(cfg config.AlertConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg}
}

// Name implements Notifier.
func (e *EmailNotifier) Name() string { return "email" }

// Notify sends the alert email.
func (e *EmailNotifier) Notify(ctx context.Context, attemptedAt time.Time) error {
	msg := mail.NewMsg()
	if err := msg.From(e.cfg.SenderEmail); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(e.cfg.MasterEmail); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(alertSubject)
	msg.SetBodyString(mail.TypeTextPlain,
		fmt.Sprintf("Unauthorized access attempt to P.A.L. at %s.", attemptedAt.Format(time.RFC1123)))

	client, err := mail.NewClient(e.cfg.SMTPHost,
		mail.WithPort(e.cfg.SMTPPort),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(e.cfg.SenderEmail),
		mail.WithPassword(e.cfg.SenderAppPass),
	)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send alert email: %w", err)
	}
	return nil
}
