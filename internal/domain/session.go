// Package domain contains core domain types for the P.A.L. gateway.
package domain

import (
	"time"
)

// Session holds the authentication state of the single operator.
// Invariant: StartedAt is the zero time iff Authenticated is false.
type Session struct {
	Authenticated bool
	StartedAt     time.Time
}

// Expired reports whether the session window has elapsed as of now.
// An unauthenticated session is never "expired"; it simply is not valid.
func (s Session) Expired(duration time.Duration, now time.Time) bool {
	if !s.Authenticated {
		return false
	}
	return now.Sub(s.StartedAt) >= duration
}

// ContextMemory carries the most recent intent that produced a
// resolvable entity, enabling follow-up questions.
type ContextMemory struct {
	LastIntent Intent
	LastEntity string
}

// Reset clears the short-term context.
func (c *ContextMemory) Reset() {
	c.LastIntent = ""
	c.LastEntity = ""
}

// HasWeatherContext reports whether a follow-up weather question can be
// answered from memory.
func (c ContextMemory) HasWeatherContext() bool {
	return c.LastIntent == IntentGetWeather && c.LastEntity != ""
}
