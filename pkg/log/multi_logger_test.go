package log

import (
	"sync"
	"testing"
)

type countingLogger struct {
	mu     sync.Mutex
	events []Event
}

func (l *countingLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *countingLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

func TestMultiLoggerFansOut(t *testing.T) {
	a := &countingLogger{}
	b := &countingLogger{}
	m := NewMultiLogger(a, nil, b)

	m.Log(Event{CallID: "1"})
	m.Log(Event{CallID: "2"})

	if a.count() != 2 {
		t.Errorf("logger a got %d events, want 2", a.count())
	}
	if b.count() != 2 {
		t.Errorf("logger b got %d events, want 2", b.count())
	}
}

func TestMultiLoggerEmpty(t *testing.T) {
	// Must not panic.
	NewMultiLogger().Log(Event{})
	NewMultiLogger(nil, nil).Log(Event{})
}

func TestNoopLogger(t *testing.T) {
	var l Logger = NoopLogger{}
	l.Log(Event{CallID: "discarded"})
}
