package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tradedesk/godesk/internal/domain"
)

// LogEntry is one retained push event, display-only.
type LogEntry struct {
	ID         string           `json:"id"`
	ReceivedAt time.Time        `json:"received_at"`
	Kind       domain.EventKind `json:"kind"`
	Text       string           `json:"text"`
}

// EventLog is the bounded live-update buffer shown on the dashboard. When
// full, the oldest entry is evicted. It has no influence on snapshot
// correctness.
type EventLog struct {
	mu       sync.Mutex
	capacity int
	entries  []LogEntry
	changed  Notify
}

// NewEventLog creates a log holding at most capacity entries.
func NewEventLog(capacity int, changed Notify) *EventLog {
	if capacity <= 0 {
		capacity = 50
	}
	return &EventLog{
		capacity: capacity,
		entries:  make([]LogEntry, 0, capacity),
		changed:  changed,
	}
}

// Append retains the event, evicting the oldest entry past capacity.
func (l *EventLog) Append(ev domain.PushEvent) {
	entry := LogEntry{
		ID:         uuid.NewString(),
		ReceivedAt: time.Now(),
		Kind:       ev.Kind(),
		Text:       ev.Raw(),
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
	l.mu.Unlock()

	if l.changed != nil {
		l.changed.Emit()
	}
}

// Entries returns a copy, oldest first.
func (l *EventLog) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of retained entries.
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear drops everything. Called on logout.
func (l *EventLog) Clear() {
	l.mu.Lock()
	l.entries = l.entries[:0]
	l.mu.Unlock()

	if l.changed != nil {
		l.changed.Emit()
	}
}
