package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes codec events to an slog.Logger.
// Useful for development when you want to see codec activity in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger. Errors are logged at Warn level,
// everything else at Debug.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("call_id", event.CallID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.StreamID != "" {
		attrs = append(attrs, slog.String("stream_id", event.StreamID))
	}

	if event.Codec != nil {
		attrs = append(attrs,
			slog.String("charset", event.Codec.Charset),
			slog.Int("input_size", event.Codec.InputSize),
			slog.Int("output_size", event.Codec.OutputSize),
			slog.Duration("duration", event.Codec.Duration),
		)
		if event.Codec.Kind != "" {
			attrs = append(attrs, slog.String("kind", event.Codec.Kind))
		}
	}
	if event.Frame != nil {
		attrs = append(attrs,
			slog.Int("frame_size", event.Frame.Size),
			slog.Bool("truncated", event.Frame.Truncated),
		)
		if event.Frame.Compression != "" {
			attrs = append(attrs, slog.String("compression", event.Frame.Compression))
		}
	}

	level := slog.LevelDebug
	if event.Error != nil {
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Code != "" {
			attrs = append(attrs, slog.String("error_code", event.Error.Code))
		}
		if event.Error.Offset != nil {
			attrs = append(attrs, slog.Int("error_offset", *event.Error.Offset))
		}
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), level, "binpack", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
