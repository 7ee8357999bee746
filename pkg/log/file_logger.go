package log

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/fxamacker/cbor/v2"
)

// FileLogger appends events to a file as a stream of CBOR items, readable
// with NewReader. It is safe for concurrent use.
type FileLogger struct {
	mu      sync.Mutex
	file    *os.File
	enc     *cbor.Encoder
	filter  Filter
	closed  bool
	dropped atomic.Uint64
}

// FileOption configures a FileLogger.
type FileOption func(*FileLogger)

// WithFileFilter records only events matching filter.
func WithFileFilter(filter Filter) FileOption {
	return func(l *FileLogger) {
		l.filter = filter
	}
}

// WithErrorsOnly records only error events.
func WithErrorsOnly() FileOption {
	category := CategoryError
	return WithFileFilter(Filter{Category: &category})
}

// NewFileLogger opens path for appending, creating it with mode 0644 if
// needed.
func NewFileLogger(path string, opts ...FileOption) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	l := &FileLogger{
		file: f,
		enc:  NewEncoder(f),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Log appends event to the file. Events logged after Close, or that fail
// to encode or write, are counted by Dropped.
func (l *FileLogger) Log(event Event) {
	if !l.filter.Matches(event) {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		l.dropped.Add(1)
		return
	}
	if err := l.enc.Encode(event); err != nil {
		l.dropped.Add(1)
	}
}

// Dropped returns the number of events that were not written.
func (l *FileLogger) Dropped() uint64 {
	return l.dropped.Load()
}

// Sync flushes written events to stable storage.
func (l *FileLogger) Sync() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	return l.file.Sync()
}

// Close syncs and closes the file. Further calls return nil.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	syncErr := l.file.Sync()
	if err := l.file.Close(); err != nil {
		return err
	}
	return syncErr
}

var _ Logger = (*FileLogger)(nil)
