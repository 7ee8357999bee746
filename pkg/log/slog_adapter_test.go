package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func logToJSON(t *testing.T, event Event) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	NewSlogAdapter(slog.New(handler)).Log(event)

	if buf.Len() == 0 {
		t.Fatal("no output produced")
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	return entry
}

func TestSlogAdapterLogsFrameEvent(t *testing.T) {
	entry := logToJSON(t, Event{
		Timestamp: time.Now(),
		CallID:    "call-123",
		StreamID:  "stream-123",
		Direction: DirectionIn,
		Layer:     LayerTransport,
		Category:  CategoryValue,
		Frame: &FrameEvent{
			Size:        256,
			Data:        []byte{0x01, 0x02},
			Compression: "lz4",
		},
	})

	if entry["stream_id"] != "stream-123" {
		t.Errorf("stream_id: got %v, want %q", entry["stream_id"], "stream-123")
	}
	if entry["direction"] != "IN" {
		t.Errorf("direction: got %v, want %q", entry["direction"], "IN")
	}
	if entry["layer"] != "TRANSPORT" {
		t.Errorf("layer: got %v, want %q", entry["layer"], "TRANSPORT")
	}
	if entry["frame_size"] != float64(256) {
		t.Errorf("frame_size: got %v, want %v", entry["frame_size"], 256)
	}
	if entry["compression"] != "lz4" {
		t.Errorf("compression: got %v, want %q", entry["compression"], "lz4")
	}
	if entry["level"] != "DEBUG" {
		t.Errorf("level: got %v, want DEBUG", entry["level"])
	}
}

func TestSlogAdapterLogsCodecEvent(t *testing.T) {
	entry := logToJSON(t, Event{
		Timestamp: time.Now(),
		CallID:    "call-456",
		Direction: DirectionOut,
		Layer:     LayerCodec,
		Category:  CategoryValue,
		Codec: &CodecEvent{
			Charset:    "GBK",
			OutputSize: 12,
			Kind:       "dict",
		},
	})

	if entry["msg"] != "binpack" {
		t.Errorf("msg: got %v, want %q", entry["msg"], "binpack")
	}
	if entry["call_id"] != "call-456" {
		t.Errorf("call_id: got %v, want %q", entry["call_id"], "call-456")
	}
	if entry["charset"] != "GBK" {
		t.Errorf("charset: got %v, want %q", entry["charset"], "GBK")
	}
	if entry["output_size"] != float64(12) {
		t.Errorf("output_size: got %v, want %v", entry["output_size"], 12)
	}
	if entry["kind"] != "dict" {
		t.Errorf("kind: got %v, want %q", entry["kind"], "dict")
	}
	if _, ok := entry["stream_id"]; ok {
		t.Error("stream_id should be omitted when empty")
	}
}

func TestSlogAdapterLogsErrorAtWarn(t *testing.T) {
	offset := 9
	entry := logToJSON(t, Event{
		Timestamp: time.Now(),
		CallID:    "call-789",
		Direction: DirectionIn,
		Layer:     LayerCodec,
		Category:  CategoryError,
		Codec:     &CodecEvent{Charset: "UTF-8", InputSize: 10, OutputSize: 9},
		Error: &ErrorEventData{
			Layer:   LayerCodec,
			Message: "unknown tag",
			Code:    "unknown_tag",
			Offset:  &offset,
			Context: "decode",
		},
	})

	if entry["level"] != "WARN" {
		t.Errorf("level: got %v, want WARN", entry["level"])
	}
	if entry["category"] != "ERROR" {
		t.Errorf("category: got %v, want ERROR", entry["category"])
	}
	if entry["error_code"] != "unknown_tag" {
		t.Errorf("error_code: got %v, want %q", entry["error_code"], "unknown_tag")
	}
	if entry["error_offset"] != float64(9) {
		t.Errorf("error_offset: got %v, want 9", entry["error_offset"])
	}
	if entry["error_context"] != "decode" {
		t.Errorf("error_context: got %v, want %q", entry["error_context"], "decode")
	}
}

func TestSlogAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	NewSlogAdapter(slog.New(handler)).Log(Event{Layer: LayerCodec, Codec: &CodecEvent{}})

	if buf.Len() != 0 {
		t.Errorf("debug event written at info level: %s", buf.String())
	}
}
