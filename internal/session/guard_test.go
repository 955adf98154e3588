package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Lucifer12122001/PAL/internal/domain"
)

type spyAlerter struct {
	calls atomic.Int64
}

func (s *spyAlerter) Dispatch() { s.calls.Add(1) }

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestGuard(t *testing.T, onGrant func()) (*Guard, *spyAlerter, *fakeClock) {
	t.Helper()
	alerts := &spyAlerter{}
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	g := NewGuard("CIM", 30*time.Minute, alerts, onGrant, nil)
	g.SetClock(clock.Now)
	return g, alerts, clock
}

func TestAuthenticateWrongSecretAlertsAndKeepsState(t *testing.T) {
	t.Parallel()
	g, alerts, _ := newTestGuard(t, nil)

	for i, attempt := range []string{"WRONG", "cim2", ""} {
		if g.Authenticate(attempt) {
			t.Fatalf("Expected denial for %q", attempt)
		}
		if got := alerts.calls.Load(); got != int64(i+1) {
			t.Errorf("Expected exactly %d alerts, got %d", i+1, got)
		}
		if g.CheckValidity() {
			t.Error("Denied attempt must not create a valid session")
		}
		if snap := g.Snapshot(); snap.Authenticated || !snap.StartedAt.IsZero() {
			t.Errorf("Denied attempt mutated session state: %+v", snap)
		}
	}
}

func TestAuthenticateIsTrimmedAndCaseInsensitive(t *testing.T) {
	t.Parallel()
	g, alerts, _ := newTestGuard(t, nil)

	if !g.Authenticate("  cim \n") {
		t.Fatal("Expected grant for case-insensitive, whitespace-padded secret")
	}
	if !g.CheckValidity() {
		t.Error("Expected valid session immediately after grant")
	}
	if got := alerts.calls.Load(); got != 0 {
		t.Errorf("Grant must not alert, got %d alerts", got)
	}
}

func TestAuthenticateRunsGrantHook(t *testing.T) {
	t.Parallel()
	var hookRuns atomic.Int64
	g, _, _ := newTestGuard(t, func() { hookRuns.Add(1) })

	g.Authenticate("nope")
	if hookRuns.Load() != 0 {
		t.Error("Grant hook must not run on denial")
	}

	g.Authenticate("CIM")
	if hookRuns.Load() != 1 {
		t.Errorf("Expected grant hook to run once, got %d", hookRuns.Load())
	}
}

func TestCheckValidityExpiryBoundary(t *testing.T) {
	t.Parallel()
	g, _, clock := newTestGuard(t, nil)

	if !g.Authenticate("CIM") {
		t.Fatal("Expected grant")
	}

	clock.Advance(29*time.Minute + 59*time.Second)
	if !g.CheckValidity() {
		t.Error("Session should be valid at 29:59")
	}

	clock.Advance(2 * time.Second) // 30:01
	if g.CheckValidity() {
		t.Error("Session should be expired at 30:01")
	}

	// Expiry is sticky until re-authentication.
	if g.CheckValidity() {
		t.Error("Expired session must stay invalid")
	}
	if snap := g.Snapshot(); snap.Authenticated || !snap.StartedAt.IsZero() {
		t.Errorf("Expiry must reset the session record, got %+v", snap)
	}

	if !g.Authenticate("CIM") {
		t.Fatal("Expected re-authentication to succeed")
	}
	if !g.CheckValidity() {
		t.Error("Expected valid session after re-authentication")
	}
}

func TestResetLogsOut(t *testing.T) {
	t.Parallel()
	g, _, _ := newTestGuard(t, nil)

	g.Authenticate("CIM")
	g.Reset()
	if g.CheckValidity() {
		t.Error("Expected invalid session after Reset")
	}
}

func TestConcurrentAuthenticateAndCheck(t *testing.T) {
	t.Parallel()
	g, _, _ := newTestGuard(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			g.Authenticate("CIM")
		}()
		go func() {
			defer wg.Done()
			g.CheckValidity()
		}()
	}
	wg.Wait()

	snap := g.Snapshot()
	if !snap.Authenticated || snap.StartedAt.IsZero() {
		t.Errorf("Expected a consistent authenticated session, got %+v", snap)
	}
	if !g.CheckValidity() {
		t.Error("Expected valid session after concurrent grants")
	}
}

func TestSessionInvariant(t *testing.T) {
	t.Parallel()
	g, _, _ := newTestGuard(t, nil)

	check := func(s domain.Session) {
		t.Helper()
		if s.Authenticated == s.StartedAt.IsZero() {
			t.Errorf("Invariant violated: %+v", s)
		}
	}

	g.Authenticate("CIM")
	check(g.Snapshot())
	g.Reset()
	s := g.Snapshot()
	if s.Authenticated || !s.StartedAt.IsZero() {
		t.Errorf("Invariant violated after reset: %+v", s)
	}
}
