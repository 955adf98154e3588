// Package alert implements the security-alert fan-out for failed
// authentication attempts.
package alert

import (
	"context"
	"log/slog"
	"time"

	"github.com/Lucifer12122001/PAL/internal/domain"
)

// Notifier is a single alert channel. Implementations must honor the
// context deadline; a failure to deliver is reported, logged by the
// dispatcher, and then forgotten.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, attemptedAt time.Time) error
}

// Dispatcher fans a security alert out to the channels selected by the
// device class chosen at startup. Every call is independent,
// fire-and-forget: no retry, no queue, and the caller is never blocked
// on delivery.
type Dispatcher struct {
	device  domain.DeviceClass
	email   Notifier
	sms     Notifier
	timeout time.Duration
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher for the given immutable device class.
func NewDispatcher(device domain.DeviceClass, email, sms Notifier, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		device:  device,
		email:   email,
		sms:     sms,
		timeout: timeout,
		logger:  logger,
	}
}

// Dispatch sends the alert asynchronously. The email channel is always
// attempted; the SMS channel is added when the device class is Mobile.
func (d *Dispatcher) Dispatch() {
	attemptedAt := time.Now()

	go d.send(d.email, attemptedAt)

	if d.device == domain.DeviceMobile {
		go d.send(d.sms, attemptedAt)
		d.logger.Info("security alert dispatched", "device", d.device, "channels", "email+sms")
		return
	}
	d.logger.Info("security alert dispatched", "device", d.device, "channels", "email")
}

func (d *Dispatcher) send(n Notifier, attemptedAt time.Time) {
	if n == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := n.Notify(ctx, attemptedAt); err != nil {
		// Channel failures never propagate to the authentication flow.
		d.logger.Warn("alert channel failed", "channel", n.Name(), "error", err)
		return
	}
	d.logger.Info("alert delivered", "channel", n.Name())
}
