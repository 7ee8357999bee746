package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/binpack-protocol/binpack-go/pkg/log"
)

// Framing constants.
const (
	// LengthPrefixSize is the size of the length prefix in bytes.
	LengthPrefixSize = 4

	// CompressionTagSize is the size of the compression tag in bytes.
	CompressionTagSize = 1

	// RawSizeFieldSize is the size of the uncompressed-size field present
	// in compressed frames.
	RawSizeFieldSize = 4

	// DefaultMaxMessageSize is the default maximum payload size (1 MB),
	// measured before compression.
	DefaultMaxMessageSize = 1 << 20

	// MaxLogFrameDataSize is the maximum frame data size to include in logs (4 KB).
	// Larger frames are truncated in log events to avoid excessive memory usage.
	MaxLogFrameDataSize = 4096
)

// Framing errors.
var (
	// ErrMessageTooLarge indicates the message exceeds the maximum size.
	ErrMessageTooLarge = errors.New("message too large")

	// ErrMessageEmpty indicates an empty message.
	ErrMessageEmpty = errors.New("message is empty")

	// ErrFrameTruncated indicates the frame was truncated.
	ErrFrameTruncated = errors.New("frame truncated")

	// ErrCorruptFrame indicates a frame whose header or compressed payload
	// is inconsistent.
	ErrCorruptFrame = errors.New("corrupt frame")

	// ErrUnknownCompression indicates an unsupported compression tag or name.
	ErrUnknownCompression = errors.New("unknown compression")
)

// FrameWriter writes length-prefixed frames to an underlying writer.
type FrameWriter struct {
	w              io.Writer
	maxMessageSize uint32
	compression    Compression
	mu             sync.Mutex

	// Logging support (optional)
	logger   log.Logger
	streamID string
}

// NewFrameWriter creates a new frame writer that sends uncompressed frames.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{
		w:              w,
		maxMessageSize: DefaultMaxMessageSize,
	}
}

// NewFrameWriterWithMaxSize creates a frame writer with a custom max size.
func NewFrameWriterWithMaxSize(w io.Writer, maxSize uint32) *FrameWriter {
	return &FrameWriter{
		w:              w,
		maxMessageSize: maxSize,
	}
}

// SetCompression selects the compression for subsequent frames.
func (fw *FrameWriter) SetCompression(c Compression) error {
	if c > CompressionLZ4 {
		return fmt.Errorf("%w: tag %d", ErrUnknownCompression, uint8(c))
	}
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.compression = c
	return nil
}

// SetLogger configures logging for this writer.
// Pass nil to disable logging.
func (fw *FrameWriter) SetLogger(logger log.Logger, streamID string) {
	fw.logger = logger
	fw.streamID = streamID
}

// WriteFrame writes one frame carrying data.
// Thread-safe: can be called from multiple goroutines.
func (fw *FrameWriter) WriteFrame(data []byte) error {
	if len(data) == 0 {
		return ErrMessageEmpty
	}
	if uint64(len(data)) > uint64(fw.maxMessageSize) {
		return fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(data), fw.maxMessageSize)
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	used := CompressionNone
	body := data
	if fw.compression != CompressionNone {
		packed, err := compress(data, fw.compression)
		switch {
		case err == nil:
			used = fw.compression
			body = packed
		case !errors.Is(err, errIncompressible):
			return err
		}
	}

	header := make([]byte, 0, LengthPrefixSize+CompressionTagSize+RawSizeFieldSize)
	rest := CompressionTagSize + len(body)
	if used != CompressionNone {
		rest += RawSizeFieldSize
	}
	header = binary.BigEndian.AppendUint32(header, uint32(rest))
	header = append(header, byte(used))
	if used != CompressionNone {
		header = binary.BigEndian.AppendUint32(header, uint32(len(data)))
	}

	if _, err := fw.w.Write(header); err != nil {
		return fmt.Errorf("failed to write frame header: %w", err)
	}
	if _, err := fw.w.Write(body); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}

	if fw.logger != nil {
		fw.logger.Log(makeFrameEvent(fw.streamID, data, len(header)+len(body), used, log.DirectionOut))
	}

	return nil
}

// makeFrameEvent creates a log event for a frame.
func makeFrameEvent(streamID string, data []byte, frameSize int, c Compression, direction log.Direction) log.Event {
	frameData := data
	truncated := false

	if len(data) > MaxLogFrameDataSize {
		frameData = data[:MaxLogFrameDataSize]
		truncated = true
	}

	event := log.Event{
		Timestamp: time.Now(),
		CallID:    log.NewCallID(),
		StreamID:  streamID,
		Direction: direction,
		Layer:     log.LayerTransport,
		Category:  log.CategoryValue,
		Frame: &log.FrameEvent{
			Size:      frameSize,
			Data:      frameData,
			Truncated: truncated,
		},
	}
	if c != CompressionNone {
		event.Frame.Compression = c.String()
	}
	return event
}

// FrameReader reads length-prefixed frames from an underlying reader.
type FrameReader struct {
	r              io.Reader
	maxMessageSize uint32
	lengthBuf      [LengthPrefixSize]byte

	// Logging support (optional)
	logger   log.Logger
	streamID string
}

// NewFrameReader creates a new frame reader.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{
		r:              r,
		maxMessageSize: DefaultMaxMessageSize,
	}
}

// NewFrameReaderWithMaxSize creates a frame reader with a custom max size.
func NewFrameReaderWithMaxSize(r io.Reader, maxSize uint32) *FrameReader {
	return &FrameReader{
		r:              r,
		maxMessageSize: maxSize,
	}
}

// SetLogger configures logging for this reader.
// Pass nil to disable logging.
func (fr *FrameReader) SetLogger(logger log.Logger, streamID string) {
	fr.logger = logger
	fr.streamID = streamID
}

// ReadFrame reads one frame and returns its payload, decompressed.
// It returns io.EOF only when the stream ends cleanly between frames.
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	if _, err := io.ReadFull(fr.r, fr.lengthBuf[:]); err != nil {
		if err == io.EOF {
			return nil, err
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrFrameTruncated
		}
		return nil, fmt.Errorf("failed to read length prefix: %w", err)
	}

	length := binary.BigEndian.Uint32(fr.lengthBuf[:])

	if length <= CompressionTagSize {
		if length == CompressionTagSize {
			// Consume the tag so the stream stays aligned.
			var tag [CompressionTagSize]byte
			if _, err := io.ReadFull(fr.r, tag[:]); err != nil {
				return nil, ErrFrameTruncated
			}
		}
		return nil, ErrMessageEmpty
	}
	limit := uint64(fr.maxMessageSize) + CompressionTagSize + RawSizeFieldSize
	if uint64(length) > limit {
		return nil, fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, length, limit)
	}

	frame := make([]byte, length)
	if _, err := io.ReadFull(fr.r, frame); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || err == io.EOF {
			return nil, ErrFrameTruncated
		}
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	payload, used, err := fr.unpack(frame)
	if err != nil {
		return nil, err
	}

	if fr.logger != nil {
		fr.logger.Log(makeFrameEvent(fr.streamID, payload, LengthPrefixSize+len(frame), used, log.DirectionIn))
	}

	return payload, nil
}

// unpack strips the compression header and inflates the payload.
func (fr *FrameReader) unpack(frame []byte) ([]byte, Compression, error) {
	c := Compression(frame[0])
	body := frame[CompressionTagSize:]

	if c == CompressionNone {
		if uint64(len(body)) > uint64(fr.maxMessageSize) {
			return nil, c, fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(body), fr.maxMessageSize)
		}
		return body, c, nil
	}
	if c > CompressionLZ4 {
		return nil, c, fmt.Errorf("%w: tag %d", ErrUnknownCompression, uint8(c))
	}
	if len(body) <= RawSizeFieldSize {
		return nil, c, fmt.Errorf("%w: compressed frame too short", ErrCorruptFrame)
	}

	rawSize := binary.BigEndian.Uint32(body[:RawSizeFieldSize])
	if rawSize == 0 {
		return nil, c, ErrMessageEmpty
	}
	if rawSize > fr.maxMessageSize || rawSize > MaxDecompressedSize {
		return nil, c, fmt.Errorf("%w: raw size %d > %d", ErrMessageTooLarge, rawSize, fr.maxMessageSize)
	}

	payload, err := decompress(body[RawSizeFieldSize:], c, int(rawSize))
	if err != nil {
		return nil, c, err
	}
	return payload, c, nil
}

// SetMaxMessageSize updates the maximum message size.
func (fr *FrameReader) SetMaxMessageSize(size uint32) {
	fr.maxMessageSize = size
}

// Framer combines frame reading and writing.
type Framer struct {
	*FrameReader
	*FrameWriter
}

// NewFramer creates a new framer for bidirectional communication.
func NewFramer(rw io.ReadWriter) *Framer {
	return &Framer{
		FrameReader: NewFrameReader(rw),
		FrameWriter: NewFrameWriter(rw),
	}
}

// NewFramerWithMaxSize creates a framer with a custom max message size.
func NewFramerWithMaxSize(rw io.ReadWriter, maxSize uint32) *Framer {
	return &Framer{
		FrameReader: NewFrameReaderWithMaxSize(rw, maxSize),
		FrameWriter: NewFrameWriterWithMaxSize(rw, maxSize),
	}
}

// SetLogger configures logging for both reader and writer.
// Pass nil to disable logging.
func (f *Framer) SetLogger(logger log.Logger, streamID string) {
	f.FrameReader.SetLogger(logger, streamID)
	f.FrameWriter.SetLogger(logger, streamID)
}

// FrameSize returns the total size of an uncompressed frame carrying a
// payload of payloadSize bytes.
func FrameSize(payloadSize int) int {
	return LengthPrefixSize + CompressionTagSize + payloadSize
}
