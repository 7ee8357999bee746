package binpack

import (
	"errors"
	"fmt"
)

// Decode and encode errors. Returned errors wrap one of these and are
// matched with errors.Is.
var (
	// ErrTruncated indicates the buffer ended before a tag, continuation
	// chunk or payload was complete.
	ErrTruncated = errors.New("truncated input")

	// ErrMalformedAggregate indicates an end marker where a dict value was
	// expected.
	ErrMalformedAggregate = errors.New("malformed aggregate")

	// ErrInvalidEncoding indicates decoded text bytes that are not valid in
	// the requested charset. Encoding substitutes instead of failing.
	ErrInvalidEncoding = errors.New("invalid text encoding")

	// ErrUnknownTag indicates a tag byte outside the defined set.
	ErrUnknownTag = errors.New("unknown tag")

	// ErrNestingTooDeep indicates lists/dicts nested beyond the depth limit.
	ErrNestingTooDeep = errors.New("nesting too deep")

	// ErrVarintOverflow indicates a length or magnitude that does not fit a
	// 64-bit accumulator, or an integer magnitude outside the range of its
	// declared width.
	ErrVarintOverflow = errors.New("varint overflow")

	// ErrUnknownCharset indicates a charset name that cannot be resolved.
	ErrUnknownCharset = errors.New("unknown charset")
)

// DecodeError records where in the input a decode failure happened.
type DecodeError struct {
	// Offset is the byte offset of the item that failed.
	Offset int

	// Err is, or wraps, one of the package sentinel errors.
	Err error

	// Detail is optional context, e.g. the offending tag.
	Detail string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("binpack: decode at offset %d: %v: %s", e.Offset, e.Err, e.Detail)
	}
	return fmt.Sprintf("binpack: decode at offset %d: %v", e.Offset, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ErrorCode returns a short stable name for the sentinel wrapped by err,
// suitable for logs and metrics. It returns "" for a nil error and "other"
// for errors not produced by this package.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTruncated):
		return "truncated"
	case errors.Is(err, ErrMalformedAggregate):
		return "malformed_aggregate"
	case errors.Is(err, ErrInvalidEncoding):
		return "invalid_encoding"
	case errors.Is(err, ErrUnknownTag):
		return "unknown_tag"
	case errors.Is(err, ErrNestingTooDeep):
		return "nesting_too_deep"
	case errors.Is(err, ErrVarintOverflow):
		return "varint_overflow"
	case errors.Is(err, ErrUnknownCharset):
		return "unknown_charset"
	default:
		return "other"
	}
}

// errorOffset extracts the offset carried by a DecodeError, or -1.
func errorOffset(err error) int {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Offset
	}
	return -1
}
