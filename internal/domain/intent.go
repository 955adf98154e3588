package domain

// Intent is the symbolic label assigned to a raw command string.
type Intent string

const (
	// IntentGreet is a plain greeting.
	IntentGreet Intent = "greet"
	// IntentGetTime asks for the current local time.
	IntentGetTime Intent = "get_time"
	// IntentGetWeather asks for the weather at a location.
	IntentGetWeather Intent = "get_weather"
	// IntentContextualFollowup refers back to the previous weather query.
	IntentContextualFollowup Intent = "contextual_followup"
	// IntentOpenApp asks to open the external browser resource.
	IntentOpenApp Intent = "open_app"
	// IntentUpdateSelf asks the assistant to update and restart itself.
	IntentUpdateSelf Intent = "update_self"
	// IntentSetPreference stores a durable user preference.
	IntentSetPreference Intent = "set_preference"
	// IntentExit asks the assistant to shut down.
	IntentExit Intent = "exit"
	// IntentUnknown is the fallback when classification is not confident.
	IntentUnknown Intent = "unknown"
)

// knownIntents is the closed set of labels the classifier may produce.
var knownIntents = map[Intent]struct{}{
	IntentGreet:              {},
	IntentGetTime:            {},
	IntentGetWeather:         {},
	IntentContextualFollowup: {},
	IntentOpenApp:            {},
	IntentUpdateSelf:         {},
	IntentSetPreference:      {},
	IntentExit:               {},
	IntentUnknown:            {},
}

// ParseIntent maps a label string onto the closed intent set.
// Anything outside the set degrades to IntentUnknown.
func ParseIntent(s string) Intent {
	if _, ok := knownIntents[Intent(s)]; ok {
		return Intent(s)
	}
	return IntentUnknown
}
