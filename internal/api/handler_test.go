//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Lucifer12122001/PAL/internal/assistant"
	"github.com/Lucifer12122001/PAL/internal/nlu"
	"github.com/Lucifer12122001/PAL/internal/session"
	"github.com/Lucifer12122001/PAL/internal/store"
)

type spyAlerter struct {
	calls atomic.Int64
}

func (s *spyAlerter) Dispatch() { s.calls.Add(1) }

type noopUpdater struct{}

func (noopUpdater) Trigger() error { return nil }

type noopOpener struct{}

func (noopOpener) Open(string) error { return nil }

type gateway struct {
	router http.Handler
	guard  *session.Guard
	alerts *spyAlerter
	clock  *fakeClock
}

type fakeClock struct {
	now atomic.Pointer[time.Time]
}

func (f *fakeClock) Now() time.Time { return *f.now.Load() }

func (f *fakeClock) Advance(d time.Duration) {
	next := f.Now().Add(d)
	f.now.Store(&next)
}

func newGateway(t *testing.T) *gateway {
	t.Helper()

	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "pal_memory.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	alerts := &spyAlerter{}
	engine := assistant.NewEngine(nlu.NewBayesClassifier(), repo, noopUpdater{}, noopOpener{}, nil)
	guard := session.NewGuard("CIM", 30*time.Minute, alerts, engine.ResetContext, nil)

	clock := &fakeClock{}
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock.now.Store(&start)
	guard.SetClock(clock.Now)

	r := chi.NewRouter()
	NewHandler(guard, engine, 30).RegisterRoutes(r)

	return &gateway{router: r, guard: guard, alerts: alerts, clock: clock}
}

func (g *gateway) post(t *testing.T, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	g.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var got map[string]string
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return got
}

func TestAuthWrongSecret(t *testing.T) {
	t.Parallel()
	g := newGateway(t)

	w := g.post(t, "/auth", map[string]string{"secret_name": "WRONG"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", w.Code)
	}
	got := decodeBody(t, w)
	if got["status"] != "Failed" {
		t.Errorf("Expected status Failed, got %q", got["status"])
	}
	if g.alerts.calls.Load() != 1 {
		t.Errorf("Expected exactly one alert dispatch, got %d", g.alerts.calls.Load())
	}
}

func TestAuthGrantThenCommand(t *testing.T) {
	t.Parallel()
	g := newGateway(t)

	w := g.post(t, "/auth", map[string]string{"secret_name": "cim"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	got := decodeBody(t, w)
	if got["status"] != "Success" {
		t.Errorf("Expected status Success, got %q", got["status"])
	}
	if !strings.Contains(got["message"], "30 minutes") {
		t.Errorf("Expected session window in message, got %q", got["message"])
	}

	w = g.post(t, "/command", map[string]string{"query": "hello there"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	got = decodeBody(t, w)
	if got["security_status"] != "Master" {
		t.Errorf("Expected identity tag Master, got %q", got["security_status"])
	}
	if !strings.Contains(got["response"], "P.A.L. 5.3") {
		t.Errorf("Expected greeting response, got %q", got["response"])
	}
}

func TestCommandWithoutSession(t *testing.T) {
	t.Parallel()
	g := newGateway(t)

	w := g.post(t, "/command", map[string]string{"query": "hello there"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403, got %d", w.Code)
	}
	got := decodeBody(t, w)
	if !strings.Contains(got["response"], "re-authenticate") {
		t.Errorf("Expected re-authenticate message, got %q", got["response"])
	}
}

func TestCommandAfterExpiry(t *testing.T) {
	t.Parallel()
	g := newGateway(t)

	g.post(t, "/auth", map[string]string{"secret_name": "CIM"})
	g.clock.Advance(31 * time.Minute)

	w := g.post(t, "/command", map[string]string{"query": "hello there"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 after expiry, got %d", w.Code)
	}
}

func TestPreferenceFallbackFlow(t *testing.T) {
	t.Parallel()
	g := newGateway(t)

	g.post(t, "/auth", map[string]string{"secret_name": "CIM"})

	w := g.post(t, "/command", map[string]string{"query": "my favorite city is paris"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if got := decodeBody(t, w); !strings.Contains(got["response"], "Paris") {
		t.Fatalf("Expected saved city in response, got %q", got["response"])
	}

	// Weather query with no location entity resolves to the stored city.
	w = g.post(t, "/command", map[string]string{"query": "what is the weather"})
	if got := decodeBody(t, w); !strings.Contains(got["response"], "Paris") {
		t.Errorf("Expected weather fallback to Paris, got %q", got["response"])
	}
}

func TestAuthResetsContextMemory(t *testing.T) {
	t.Parallel()
	g := newGateway(t)

	g.post(t, "/auth", map[string]string{"secret_name": "CIM"})
	g.post(t, "/command", map[string]string{"query": "what is the weather in Tokyo"})

	// Re-authentication wipes the short-term context.
	g.post(t, "/auth", map[string]string{"secret_name": "CIM"})

	w := g.post(t, "/command", map[string]string{"query": "how about tomorrow"})
	if got := decodeBody(t, w); !strings.Contains(got["response"], "enough recent context") {
		t.Errorf("Expected context to be reset by re-auth, got %q", got["response"])
	}
}

func TestAuthMalformedBody(t *testing.T) {
	t.Parallel()
	g := newGateway(t)

	req := httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	g.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
	if g.alerts.calls.Load() != 0 {
		t.Errorf("Malformed body is not an auth attempt; expected no alerts, got %d", g.alerts.calls.Load())
	}
}
