package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const smsMessage = "Someone trying to access your AI !!"

// SMSNotifier delivers the security alert to the master phone through an
// HTTP SMS gateway. With no gateway configured the channel runs in
// simulated mode: the alert is logged locally and reported as delivered.
type SMSNotifier struct {
	gatewayURL string
	phone      string
	client     *http.Client
	logger     *slog.Logger
}

// NewSMSNotifier creates the SMS alert channel.
func NewSMSNotifier(gatewayURL, phone string, logger *slog.Logger) *SMSNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMSNotifier{
		gatewayURL: gatewayURL,
		phone:      phone,
		client:     &http.Client{},
		logger:     logger,
	}
}

// Name implements Notifier.
func (s *SMSNotifier) Name() string { return "sms" }

// Notify sends the alert SMS through the gateway.
func (s *SMSNotifier) Notify(ctx context.Context, attemptedAt time.Time) error {
	if s.gatewayURL == "" {
		s.logger.Info("SMS alert (simulated)", "to", s.phone, "message", smsMessage)
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"to":      s.phone,
		"message": smsMessage,
		"at":      attemptedAt.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("encode sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post sms alert: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.logger.Warn("failed to close sms response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}
