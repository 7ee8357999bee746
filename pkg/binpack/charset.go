package binpack

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultCharset is used when a charset name is empty.
const DefaultCharset = "UTF-8"

// Charset converts Text values to and from their wire bytes.
// A Charset is immutable and safe for concurrent use.
type Charset struct {
	name string
	enc  encoding.Encoding // nil means UTF-8
}

// UTF8 is the UTF-8 charset.
var UTF8 = &Charset{name: DefaultCharset}

// charsets caches resolved charsets by the name they were requested under.
var charsets sync.Map

// LookupCharset resolves a charset by IANA name or WHATWG label, e.g.
// "UTF-8", "utf8", "GBK", "ISO-8859-1" or "Shift_JIS". Matching is
// case-insensitive. An empty name selects UTF-8.
func LookupCharset(name string) (*Charset, error) {
	if name == "" {
		return UTF8, nil
	}
	if cs, ok := charsets.Load(name); ok {
		return cs.(*Charset), nil
	}

	enc, err := resolveEncoding(name)
	if err != nil {
		return nil, err
	}

	cs := &Charset{name: name, enc: enc}
	if enc == unicode.UTF8 {
		cs.enc = nil
	}
	if canonical, err := ianaindex.IANA.Name(enc); err == nil {
		cs.name = canonical
	}
	actual, _ := charsets.LoadOrStore(name, cs)
	return actual.(*Charset), nil
}

func resolveEncoding(name string) (encoding.Encoding, error) {
	label := strings.TrimSpace(name)
	if enc, err := ianaindex.IANA.Encoding(label); err == nil && enc != nil {
		return enc, nil
	}
	if enc, err := htmlindex.Get(label); err == nil && enc != nil {
		return enc, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
}

// Name returns the canonical name of the charset.
func (c *Charset) Name() string {
	return c.name
}

// IsUTF8 reports whether the charset is UTF-8.
func (c *Charset) IsUTF8() bool {
	return c.enc == nil
}

// appendText appends the wire form of s to dst. It never fails: invalid
// UTF-8 in s becomes U+FFFD, and runes the charset cannot represent become
// the charset's substitute byte (encoding.ASCIISub). This substitution is
// lossy on purpose, like the placeholder for unrecognized values.
func (c *Charset) appendText(dst []byte, s string) []byte {
	s = strings.ToValidUTF8(s, string(utf8.RuneError))
	if c.enc == nil {
		return append(dst, s...)
	}
	b, err := encoding.ReplaceUnsupported(c.enc.NewEncoder()).Bytes([]byte(s))
	if err != nil {
		return c.appendRunes(dst, s)
	}
	return append(dst, b...)
}

// appendRunes encodes s one rune at a time, substituting any rune that
// fails on its own.
func (c *Charset) appendRunes(dst []byte, s string) []byte {
	enc := c.enc.NewEncoder()
	for _, r := range s {
		b, err := enc.Bytes([]byte(string(r)))
		if err != nil {
			dst = append(dst, encoding.ASCIISub)
			continue
		}
		dst = append(dst, b...)
	}
	return dst
}

// encodedText returns the wire form of s.
func (c *Charset) encodedText(s string) []byte {
	return c.appendText(nil, s)
}

// decodeText converts wire bytes to a string, rejecting bytes that are not
// valid in the charset.
func (c *Charset) decodeText(b []byte) (string, error) {
	if c.enc == nil {
		if !utf8.Valid(b) {
			return "", fmt.Errorf("%w: bytes are not valid UTF-8", ErrInvalidEncoding)
		}
		return string(b), nil
	}

	out, err := c.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidEncoding, c.name, err)
	}

	// x/text decoders substitute U+FFFD for invalid input. A replacement
	// character is only legitimate if it encodes back to the same bytes.
	if bytes.ContainsRune(out, utf8.RuneError) {
		back, err := c.enc.NewEncoder().Bytes(out)
		if err != nil || !bytes.Equal(back, b) {
			return "", fmt.Errorf("%w: bytes are not valid %s", ErrInvalidEncoding, c.name)
		}
	}
	return string(out), nil
}
