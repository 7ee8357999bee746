package log

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a codec or transport log event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// CallID uniquely identifies the codec call or frame (UUID).
	CallID string `cbor:"2,keyasint"`

	// Direction indicates data flow: In for decode/read, Out for encode/write.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// StreamID identifies the framed stream the event belongs to, if any.
	StreamID string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Codec *CodecEvent     `cbor:"7,keyasint,omitempty"` // Codec layer
	Frame *FrameEvent     `cbor:"8,keyasint,omitempty"` // Transport layer
	Error *ErrorEventData `cbor:"9,keyasint,omitempty"` // Errors at any layer
}

// NewCallID returns a fresh identifier for Event.CallID.
func NewCallID() string {
	return uuid.NewString()
}

// Direction indicates the direction of data flow.
type Direction uint8

const (
	// DirectionIn indicates decoding or reading.
	DirectionIn Direction = 0
	// DirectionOut indicates encoding or writing.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerTransport is the framing layer (raw bytes).
	LayerTransport Layer = 0
	// LayerCodec is the value encoding layer.
	LayerCodec Layer = 1
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerCodec:
		return "CODEC"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryValue indicates a value or frame that was processed.
	CategoryValue Category = 0
	// CategoryError indicates an error event.
	CategoryError Category = 1
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryValue:
		return "VALUE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// CodecEvent captures one Encode or Decode call.
type CodecEvent struct {
	// Charset is the canonical charset name used for text.
	Charset string `cbor:"1,keyasint"`

	// InputSize is the size of the input buffer (decode) or 0 (encode).
	InputSize int `cbor:"2,keyasint"`

	// OutputSize is the encoded size (encode) or bytes consumed (decode).
	OutputSize int `cbor:"3,keyasint"`

	// Kind is the kind of the root value, e.g. "dict".
	Kind string `cbor:"4,keyasint,omitempty"`

	// Duration of the call. Stored as nanoseconds.
	Duration time.Duration `cbor:"5,keyasint"`
}

// FrameEvent captures raw frame data at the transport layer.
type FrameEvent struct {
	// Size is the frame size in bytes (including header).
	Size int `cbor:"1,keyasint"`

	// Data is the frame payload (may be truncated for large frames).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`

	// Compression names the payload compression, e.g. "zstd".
	Compression string `cbor:"4,keyasint,omitempty"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the short error code, e.g. "truncated".
	Code string `cbor:"3,keyasint,omitempty"`

	// Offset is the input offset of the failure (decode only).
	Offset *int `cbor:"4,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"5,keyasint,omitempty"`
}
