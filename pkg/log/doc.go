// Package log provides structured event logging for binpack codec calls.
//
// This package defines the Logger interface and Event types for capturing
// what the codec and the stream transport do: values encoded and decoded,
// frames written and read, and the errors they ran into. It is separate
// from operational logging (slog) - the event trace is machine-readable and
// can be stored and filtered later.
//
// # Basic Usage
//
// Codecs and framers accept an optional Logger:
//
//	// For development: log to console via slog
//	codec, _ := binpack.NewCodec(cfg, binpack.WithLogger(log.NewSlogAdapter(slog.Default())))
//
//	// For production: keep only failures in a binary file
//	fileLogger, _ := log.NewFileLogger("/var/log/binpack/codec.blog", log.WithErrorsOnly())
//
//	// Both: use MultiLogger
//	logger := log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Events are captured at two layers:
//   - Codec: one event per Encode/Decode call (CodecEvent)
//   - Transport: one event per frame (FrameEvent)
//
// Failures carry an ErrorEventData with the error code and input offset.
// Filtered wraps any Logger so it only sees events matching a Filter.
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with integer keys. Use
// Reader to iterate over them, optionally through a Filter.
package log
