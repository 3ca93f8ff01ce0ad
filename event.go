package scxml

import "strings"

// Event is the external/internal event surface of spec.md §3 and §6.2.
type Event struct {
	Name    string
	Payload map[string]any
}

// NullEvent is the eventless sentinel used during the fixpoint (§4.4):
// eventless transitions are selected only when no event is being
// processed, i.e. when the current trigger's name equals NullEvent.
const NullEvent = ""

// MatchesEvent implements the §4.4 matching rule for a transition's
// `event` attribute against a concrete (or null) event name:
//
//	D == E            exact match
//	D == "*"          wildcard, matches any non-null event
//	E == D + "." + *  segment-prefix match
//
// A transition with no `event` attribute (Event == nil) is eventless and
// matches only the null-event sentinel.
func (t *Transition) MatchesEvent(eventName string) bool {
	if t.Event == nil {
		return eventName == NullEvent
	}
	pattern := *t.Event
	if eventName == NullEvent {
		return false
	}
	if pattern == "*" || pattern == eventName {
		return true
	}
	return strings.HasPrefix(eventName, pattern+".")
}
