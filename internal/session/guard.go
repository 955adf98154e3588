// Package session implements the authentication state machine gating all
// command handling.
package session

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Lucifer12122001/PAL/internal/domain"
)

// Alerter dispatches a security notification on failed authentication.
type Alerter interface {
	Dispatch()
}

// Guard tracks the single operator session: two states, Unauthenticated
// and Authenticated, with the only transitions being a successful
// Authenticate and an expiry/reset back down. All transitions happen
// under one mutex so concurrent Authenticate/CheckValidity calls cannot
// observe a half-updated session.
type Guard struct {
	mu       sync.Mutex
	session  domain.Session
	secret   string
	duration time.Duration

	alerts  Alerter
	onGrant func()
	now     func() time.Time
	logger  *slog.Logger
}

// NewGuard creates a session guard. onGrant runs on every successful
// authentication (the conversation engine hooks its context reset here);
// it may be nil.
func NewGuard(secret string, duration time.Duration, alerts Alerter, onGrant func(), logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		secret:   strings.ToUpper(strings.TrimSpace(secret)),
		duration: duration,
		alerts:   alerts,
		onGrant:  onGrant,
		now:      time.Now,
		logger:   logger,
	}
}

// SetClock overrides the time source. Tests only.
func (g *Guard) SetClock(now func() time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
}

// Authenticate compares the attempt (trimmed, case-insensitive) against
// the configured secret. A match starts a fresh session and resets the
// conversational context; a mismatch leaves state untouched and
// dispatches exactly one alert.
func (g *Guard) Authenticate(attempt string) bool {
	normalized := strings.ToUpper(strings.TrimSpace(attempt))

	g.mu.Lock()
	if normalized != g.secret {
		g.mu.Unlock()
		g.logger.Warn("authentication failed, alerting master")
		g.alerts.Dispatch()
		return false
	}

	g.session = domain.Session{Authenticated: true, StartedAt: g.now()}
	onGrant := g.onGrant
	g.mu.Unlock()

	g.logger.Info("authentication granted, session timer started", "duration", g.duration)
	if onGrant != nil {
		onGrant()
	}
	return true
}

// CheckValidity reports whether the session is live. A session past its
// window is atomically torn down, so a false result is sticky until the
// next successful Authenticate. Idempotent; must run before any command
// reaches the conversation engine.
func (g *Guard) CheckValidity() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.session.Authenticated {
		return false
	}
	if g.session.Expired(g.duration, g.now()) {
		g.session = domain.Session{}
		g.logger.Warn("session expired, system has gone to OFF mode")
		return false
	}
	return true
}

// Reset transitions to Unauthenticated (explicit logout).
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.session = domain.Session{}
}

// Snapshot returns a copy of the current session record.
func (g *Guard) Snapshot() domain.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}
