// Package assistant implements the conversation engine: intent dispatch,
// short-term context memory, and preference-backed fallback resolution.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Lucifer12122001/PAL/internal/domain"
	"github.com/Lucifer12122001/PAL/internal/nlu"
	"github.com/Lucifer12122001/PAL/internal/store"
)

// openAppURL is the fixed external resource the open_app intent targets.
const openAppURL = "https://www.google.com"

// Updater triggers the background self-update cycle.
type Updater interface {
	Trigger() error
}

// Opener launches an external resource (browser). Glue collaborator.
type Opener interface {
	Open(url string) error
}

// Engine routes a classified command to exactly one handler per call.
// Context memory mutations happen only on handler success paths, under
// the engine mutex.
type Engine struct {
	classifier nlu.Classifier
	prefs      store.Repository
	updater    Updater
	opener     Opener

	mu     sync.Mutex
	memory domain.ContextMemory

	now    func() time.Time
	logger *slog.Logger
}

// NewEngine creates a conversation engine.
func NewEngine(classifier nlu.Classifier, prefs store.Repository, updater Updater, opener Opener, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		classifier: classifier,
		prefs:      prefs,
		updater:    updater,
		opener:     opener,
		now:        time.Now,
		logger:     logger,
	}
}

// SetClock overrides the time source. Tests only.
func (e *Engine) SetClock(now func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = now
}

// ResetContext clears the short-term context memory. Hooked into the
// session guard so every fresh authentication starts without carry-over.
func (e *Engine) ResetContext() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.memory.Reset()
}

// ContextSnapshot returns a copy of the current context memory.
func (e *Engine) ContextSnapshot() domain.ContextMemory {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.memory
}

// Handle classifies rawText and dispatches it to the matching intent
// handler. The caller has already validated the session.
func (e *Engine) Handle(ctx context.Context, rawText string) string {
	intent := e.classifier.Classify(rawText)
	e.logger.Info("command classified", "intent", intent)

	switch intent {
	case domain.IntentUpdateSelf:
		return e.handleUpdateSelf()
	case domain.IntentSetPreference:
		return e.handleSetPreference(ctx, rawText)
	case domain.IntentGreet:
		return e.handleGreet(ctx)
	case domain.IntentGetTime:
		return e.handleGetTime()
	case domain.IntentGetWeather:
		return e.handleGetWeather(ctx, rawText)
	case domain.IntentContextualFollowup:
		return e.handleContextualFollowup()
	case domain.IntentOpenApp:
		return e.handleOpenApp()
	case domain.IntentExit:
		return "Acknowledged, Master. Shutting down systems."
	default:
		return fmt.Sprintf("Command received: '%s'. Executing command, Master.", rawText)
	}
}

func (e *Engine) handleUpdateSelf() string {
	if err := e.updater.Trigger(); err != nil {
		// The reply does not depend on update progress; failure to even
		// start the updater is an operator-log concern.
		e.logger.Error("failed to launch updater", "error", err)
	}
	return "Acknowledged, Master. P.A.L. is initiating self-update and will restart shortly to apply changes."
}

func (e *Engine) handleSetPreference(ctx context.Context, rawText string) string {
	lower := strings.ToLower(rawText)

	var key, value string
	switch {
	case strings.Contains(lower, "city is"):
		key = domain.PrefFavoriteCity
		value = after(lower, "city is")
	case strings.Contains(lower, "my name is"):
		key = domain.PrefUserName
		value = after(lower, "my name is")
	default:
		return "Master, I don't know how to save that preference yet. Try saying 'My favorite city is [City]'."
	}

	value = titleCase(strings.TrimSpace(value))
	if value == "" {
		return "Master, I don't know how to save that preference yet. Try saying 'My favorite city is [City]'."
	}

	if err := e.prefs.SetPreference(ctx, key, value); err != nil {
		e.logger.Error("failed to save preference", "key", key, "error", err)
		return "Master, I encountered a system error while trying to save your preference."
	}
	return fmt.Sprintf("Understood, Master. I have permanently saved your '%s' as '%s'.", key, value)
}

func (e *Engine) handleGreet(ctx context.Context) string {
	if name, ok := e.prefs.GetPreference(ctx, domain.PrefUserName); ok {
		return fmt.Sprintf("Hello again, Master %s! I am P.A.L. 5.3, ready for your command.", name)
	}
	return "Greetings, Master. I am P.A.L. 5.3, standing by for your command."
}

func (e *Engine) handleGetTime() string {
	e.mu.Lock()
	clock := e.now
	e.mu.Unlock()

	now := clock()
	zone, _ := now.Zone()
	return fmt.Sprintf("The current time is **%s** (synced with your device timezone: **%s**), Master.",
		now.Format("03:04:05 PM"), zone)
}

func (e *Engine) handleGetWeather(ctx context.Context, rawText string) string {
	var location string
	if entities := e.classifier.ExtractEntities(rawText, []nlu.EntityType{nlu.EntityLocation}); len(entities) > 0 {
		location = entities[0]
	}
	if location == "" {
		if city, ok := e.prefs.GetPreference(ctx, domain.PrefFavoriteCity); ok {
			location = city
		}
	}
	if location == "" {
		// No resolvable location: prior context stays untouched.
		return "I need a location to check the weather. Where should I check?"
	}

	e.mu.Lock()
	e.memory = domain.ContextMemory{LastIntent: domain.IntentGetWeather, LastEntity: location}
	e.mu.Unlock()

	return fmt.Sprintf("Checking the weather for **%s**. (Simulated: It is 18°C and cloudy.)", location)
}

func (e *Engine) handleContextualFollowup() string {
	e.mu.Lock()
	memory := e.memory
	e.mu.Unlock()

	if memory.HasWeatherContext() {
		return fmt.Sprintf("As you wish, Master. Checking the **forecast for tomorrow** in **%s**.", memory.LastEntity)
	}
	return "I do not have enough recent context, Master."
}

func (e *Engine) handleOpenApp() string {
	if err := e.opener.Open(openAppURL); err != nil {
		e.logger.Warn("failed to open browser", "url", openAppURL, "error", err)
	}
	return "Opening Google now, Master."
}

// after returns the remainder of s following the first occurrence of sep.
func after(s, sep string) string {
	idx := strings.Index(s, sep)
	if idx < 0 {
		return ""
	}
	return s[idx+len(sep):]
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
