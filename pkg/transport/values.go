package transport

import (
	"fmt"
	"io"

	"github.com/binpack-protocol/binpack-go/pkg/binpack"
)

// ValueWriter encodes values with a Codec and writes each one as a frame.
type ValueWriter struct {
	*FrameWriter
	codec *binpack.Codec
}

// NewValueWriter creates a ValueWriter over w.
func NewValueWriter(w io.Writer, codec *binpack.Codec) *ValueWriter {
	return &ValueWriter{FrameWriter: NewFrameWriter(w), codec: codec}
}

// WriteValue encodes v and writes it as one frame.
func (vw *ValueWriter) WriteValue(v binpack.Value) error {
	data, err := vw.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}
	return vw.WriteFrame(data)
}

// WriteNative converts x with binpack.FromNative and writes it.
func (vw *ValueWriter) WriteNative(x any) error {
	return vw.WriteValue(binpack.FromNative(x))
}

// ValueReader reads frames and decodes each one with a Codec.
type ValueReader struct {
	*FrameReader
	codec  *binpack.Codec
	strict bool
}

// NewValueReader creates a ValueReader over r.
func NewValueReader(r io.Reader, codec *binpack.Codec) *ValueReader {
	return &ValueReader{FrameReader: NewFrameReader(r), codec: codec}
}

// SetStrict makes ReadValue reject frames with bytes after the value.
// By default trailing bytes are ignored, as Decode does.
func (vr *ValueReader) SetStrict(strict bool) {
	vr.strict = strict
}

// ReadValue reads the next frame and decodes it. It returns io.EOF when
// the stream ends between frames. A frame that fails to decode is
// consumed, so the next call continues with the following frame.
func (vr *ValueReader) ReadValue() (binpack.Value, error) {
	data, err := vr.ReadFrame()
	if err != nil {
		return nil, err
	}
	v, n, err := vr.codec.DecodePrefix(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode value: %w", err)
	}
	if vr.strict && n != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes after value", ErrCorruptFrame, len(data)-n)
	}
	return v, nil
}
