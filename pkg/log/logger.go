package log

// Logger receives one Event per codec call or transport frame.
// Implementations must be safe for concurrent use. Log is called inline
// with the codec call, so it should return quickly.
type Logger interface {
	Log(event Event)
}

// LoggerFunc adapts a plain function to the Logger interface.
type LoggerFunc func(Event)

// Log calls f(event).
func (f LoggerFunc) Log(event Event) {
	f(event)
}

// NoopLogger discards all events. The zero value is ready to use.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Filtered returns a Logger that forwards to next only the events matching
// filter. A nil next yields a NoopLogger.
func Filtered(next Logger, filter Filter) Logger {
	if next == nil {
		return NoopLogger{}
	}
	return LoggerFunc(func(event Event) {
		if filter.Matches(event) {
			next.Log(event)
		}
	})
}

var (
	_ Logger = NoopLogger{}
	_ Logger = LoggerFunc(nil)
)
