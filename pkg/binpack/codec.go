package binpack

import (
	"time"

	"github.com/binpack-protocol/binpack-go/pkg/log"
)

// Codec encodes and decodes values with a fixed charset and depth limit.
// It keeps no state between calls and is safe for concurrent use.
type Codec struct {
	charset  *Charset
	maxDepth int
	logger   log.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger makes the Codec report one event per call to logger.
// Pass nil to disable logging.
func WithLogger(logger log.Logger) Option {
	return func(c *Codec) {
		c.logger = logger
	}
}

// NewCodec creates a Codec from cfg.
func NewCodec(cfg Config, opts ...Option) (*Codec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cs, err := LookupCharset(cfg.Charset)
	if err != nil {
		return nil, err
	}
	c := &Codec{
		charset:  cs,
		maxDepth: cfg.maxDepth(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Charset returns the codec's charset.
func (c *Codec) Charset() *Charset {
	return c.charset
}

// Encode encodes v. See the package-level Encode for the rules.
func (c *Codec) Encode(v Value) ([]byte, error) {
	return c.AppendEncode(nil, v)
}

// AppendEncode appends the encoding of v to dst.
func (c *Codec) AppendEncode(dst []byte, v Value) ([]byte, error) {
	start := time.Now()
	e := encoder{charset: c.charset, maxDepth: c.maxDepth}
	before := len(dst)
	out, err := e.append(dst, v, 0)
	if err != nil {
		out = dst
	}
	c.logCall(log.DirectionOut, start, 0, len(out)-before, v, err)
	return out, err
}

// Decode decodes the first value in data. See the package-level Decode for
// the rules.
func (c *Codec) Decode(data []byte) (Value, error) {
	v, _, err := c.DecodePrefix(data)
	return v, err
}

// DecodePrefix decodes the first value in data and returns the number of
// bytes it occupied.
func (c *Codec) DecodePrefix(data []byte) (Value, int, error) {
	start := time.Now()
	d := decoder{buf: data, charset: c.charset, maxDepth: c.maxDepth}
	v, n, err := d.decode()
	c.logCall(log.DirectionIn, start, len(data), n, v, err)
	return v, n, err
}

// Marshal converts x with FromNative and encodes it.
func (c *Codec) Marshal(x any) ([]byte, error) {
	return c.Encode(FromNative(x))
}

// Unmarshal decodes data and converts the result with ToNative.
func (c *Codec) Unmarshal(data []byte) (any, error) {
	v, err := c.Decode(data)
	if err != nil {
		return nil, err
	}
	return ToNative(v), nil
}

func (c *Codec) logCall(dir log.Direction, start time.Time, in, out int, v Value, err error) {
	if c.logger == nil {
		return
	}

	event := log.Event{
		Timestamp: start,
		CallID:    log.NewCallID(),
		Direction: dir,
		Layer:     log.LayerCodec,
		Category:  log.CategoryValue,
		Codec: &log.CodecEvent{
			Charset:    c.charset.Name(),
			InputSize:  in,
			OutputSize: out,
			Duration:   time.Since(start),
		},
	}
	if v != nil && err == nil {
		event.Codec.Kind = v.Kind().String()
	}
	if err != nil {
		event.Category = log.CategoryError
		event.Error = &log.ErrorEventData{
			Layer:   log.LayerCodec,
			Message: err.Error(),
			Code:    ErrorCode(err),
		}
		if offset := errorOffset(err); offset >= 0 {
			event.Error.Offset = &offset
		}
		if dir == log.DirectionIn {
			event.Error.Context = "decode"
		} else {
			event.Error.Context = "encode"
		}
	}
	c.logger.Log(event)
}
