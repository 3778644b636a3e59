package game

// EventType classifies audit log entries.
type EventType string

const (
	EventBet    EventType = "bet"
	EventAction EventType = "action"
	EventPhase  EventType = "phase"
	EventResult EventType = "result"
)

// Event is one entry in an engine's ordered audit log. The log carries
// enough structured detail for an external logger to persist bets, phase
// changes, and results without re-deriving game logic.
type Event struct {
	Seq    int       `json:"seq"`
	Type   EventType `json:"type"`
	Player string    `json:"player,omitempty"`
	Amount int       `json:"amount,omitempty"`
	Phase  string    `json:"phase,omitempty"`
	Detail string    `json:"detail,omitempty"`
}

// EventLog is an append-only sequence of events. Engines embed it; the zero
// value is ready to use.
type EventLog struct {
	events []Event
}

// Record appends an event, assigning the next sequence number.
func (l *EventLog) Record(e Event) {
	e.Seq = len(l.events) + 1
	l.events = append(l.events, e)
}

// Events returns the log contents in append order.
func (l *EventLog) Events() []Event {
	return l.events
}
