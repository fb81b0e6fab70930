package invoice

import (
	"sync"
	"time"
)

// maxEvents bounds the event history kept in memory
const maxEvents = 50

// Event is an immutable record of something that happened
type Event struct {
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// EventLog is a bounded, newest-first ring of the most recent emitted events
type EventLog struct {
	mu     sync.RWMutex
	events []Event
}

// NewEventLog creates a new empty EventLog
func NewEventLog() *EventLog {
	return &EventLog{}
}

// Record prepends an event, evicting the oldest entries past the bound
func (l *EventLog) Record(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append([]Event{event}, l.events...)
	if len(l.events) > maxEvents {
		l.events = l.events[:maxEvents]
	}
}

// List returns a newest-first snapshot of the current event history
func (l *EventLog) List() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	events := make([]Event, len(l.events))
	copy(events, l.events)
	return events
}
