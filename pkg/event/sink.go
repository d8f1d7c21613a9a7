// Package event implements the engine's log-event machinery: the
// required append-only per-transaction sink that actions push
// observations into, and an optional engine-wide broker that fans
// finished transactions' events out to SIEM-style subscribers.
package event

import "time"

// LogEvent is a single structured observation emitted by an action
// (currently only "event") and buffered on the owning transaction.
type LogEvent struct {
	RuleID      string
	Type        string // "Observation"; reserved for future event types
	ActionTag   string // current action code, reserved for extension
	FinalTag    string // final action code, reserved for extension
	Confidence  int    // [0,100]
	Severity    int    // [0,100]
	Message     string
	Data        []byte
	Tags        []string // held by reference to the rule's tag list
	RecordedAt  time.Time
}

// Sink is the append-only per-transaction event buffer. It is not
// safe for concurrent use by design: a transaction is single-threaded
// per the engine's scheduling model, so the sink needs no locking.
type Sink struct {
	events []LogEvent
}

// NewSink returns an empty Sink.
func NewSink() *Sink {
	return &Sink{}
}

// Add appends ev to the buffer. Duplicate detection is explicitly out
// of scope.
func (s *Sink) Add(ev LogEvent) {
	if ev.RecordedAt.IsZero() {
		ev.RecordedAt = time.Now()
	}
	s.events = append(s.events, ev)
}

// Events returns the buffered events in the order they were added.
func (s *Sink) Events() []LogEvent {
	return s.events
}

// Len returns the number of buffered events.
func (s *Sink) Len() int {
	return len(s.events)
}
