package log

import "testing"

func TestLoggerFunc(t *testing.T) {
	var got []string
	var l Logger = LoggerFunc(func(e Event) {
		got = append(got, e.CallID)
	})

	l.Log(Event{CallID: "a"})
	l.Log(Event{CallID: "b"})

	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("got %v, want [a b]", got)
	}
}

func TestFiltered(t *testing.T) {
	inner := &countingLogger{}
	codec := LayerCodec
	l := Filtered(inner, Filter{Layer: &codec})

	l.Log(Event{Layer: LayerCodec})
	l.Log(Event{Layer: LayerTransport})
	l.Log(Event{Layer: LayerCodec, Category: CategoryError})

	if inner.count() != 2 {
		t.Errorf("got %d events, want 2", inner.count())
	}
}

func TestFilteredNil(t *testing.T) {
	l := Filtered(nil, Filter{})
	if _, ok := l.(NoopLogger); !ok {
		t.Errorf("Filtered(nil) = %T, want NoopLogger", l)
	}
	l.Log(Event{})
}
