package park

import "github.com/talgya/mini-park/internal/entropy"

// EventKind identifies the park-wide modifier.
type EventKind uint8

const (
	EventNone EventKind = iota
	EventSunny
	EventFestival
	EventIncident
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventSunny:
		return "sunny"
	case EventFestival:
		return "festival"
	case EventIncident:
		return "incident"
	default:
		return "none"
	}
}

// EventState is the single active global modifier.
type EventState struct {
	Kind              EventKind `json:"kind"`
	Name              string    `json:"name"`
	VisitorMultiplier float64   `json:"visitor_multiplier"`
	SatisfactionDelta float64   `json:"satisfaction_delta"`
	MinutesRemaining  int       `json:"minutes_remaining"`
}

// Active reports whether a non-neutral event is running.
func (e EventState) Active() bool {
	return e.MinutesRemaining > 0
}

// EventTriggerChance is the per-tick probability of an event starting while
// none is active.
const EventTriggerChance = 0.12

// NeutralEvent is the baseline with no modifiers.
func NeutralEvent() EventState {
	return EventState{Kind: EventNone, Name: "Clear skies", VisitorMultiplier: 1}
}

// eventOutcomes are picked uniformly when an event triggers.
var eventOutcomes = [...]EventState{
	{Kind: EventSunny, Name: "Sunny day", VisitorMultiplier: 1.2, SatisfactionDelta: 0.4, MinutesRemaining: 5},
	{Kind: EventFestival, Name: "Festival", VisitorMultiplier: 1.35, SatisfactionDelta: 1.2, MinutesRemaining: 4},
	{Kind: EventIncident, Name: "Incident", VisitorMultiplier: 0.7, SatisfactionDelta: -1.0, MinutesRemaining: 4},
}

// advanceEvent counts down the active event or, if none is active, rolls for
// a new one. Draws: one trigger roll, plus one outcome roll on success.
func (s *State) advanceEvent(rng entropy.Source) {
	if s.Event.Active() {
		s.Event.MinutesRemaining--
		if s.Event.MinutesRemaining == 0 {
			s.addNews("event", "%s is over", s.Event.Name)
			s.Event = NeutralEvent()
		}
		return
	}

	if rng.Float64() >= EventTriggerChance {
		return
	}
	idx := int(rng.Float64() * float64(len(eventOutcomes)))
	idx = clamp(idx, 0, len(eventOutcomes)-1)
	s.Event = eventOutcomes[idx]
	s.addNews("event", "%s started", s.Event.Name)
}
