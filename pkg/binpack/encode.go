package binpack

import (
	"encoding/binary"
	"fmt"
)

// DefaultMaxDepth is the default limit on list/dict nesting.
const DefaultMaxDepth = 512

// unsupportedPrefix starts the placeholder text written for values the
// encoder does not recognize.
const unsupportedPrefix = "unsupported-type-"

// Encode encodes v using the named charset for Text values.
//
// Encoding is total over the Value variants. A Value implementation the
// encoder does not recognize is not an error: it is written as the Text
// "unsupported-type-<type>". Text the charset cannot represent is written
// with substitutes rather than rejected. The only failures are an unknown
// charset name and nesting beyond DefaultMaxDepth (which also catches
// self-referencing lists).
func Encode(v Value, charset string) ([]byte, error) {
	return AppendEncode(nil, v, charset)
}

// AppendEncode appends the encoding of v to dst.
func AppendEncode(dst []byte, v Value, charset string) ([]byte, error) {
	cs, err := LookupCharset(charset)
	if err != nil {
		return dst, err
	}
	e := encoder{charset: cs, maxDepth: DefaultMaxDepth}
	return e.append(dst, v, 0)
}

// encoder carries per-call encode settings. It holds no state between
// calls.
type encoder struct {
	charset  *Charset
	maxDepth int
}

func (e *encoder) append(dst []byte, v Value, depth int) ([]byte, error) {
	switch x := v.(type) {
	case nil, Null:
		return append(dst, TagNull), nil

	case Bool:
		if x {
			return append(dst, TagTrue), nil
		}
		return append(dst, TagFalse), nil

	case Int:
		return appendInt(dst, x), nil

	case Float32:
		dst = append(dst, TagFloat32)
		return binary.LittleEndian.AppendUint32(dst, x.Bits), nil

	case Float64:
		dst = append(dst, TagFloat64)
		return binary.LittleEndian.AppendUint64(dst, x.Bits), nil

	case Blob:
		dst = appendLength(dst, TagBlob, uint64(len(x)))
		return append(dst, x...), nil

	case Text:
		b := e.charset.encodedText(string(x))
		dst = appendLength(dst, TagText, uint64(len(b)))
		return append(dst, b...), nil

	case List:
		if depth >= e.maxDepth {
			return dst, fmt.Errorf("%w: list exceeds depth %d", ErrNestingTooDeep, e.maxDepth)
		}
		dst = append(dst, TagList)
		for _, item := range x {
			var err error
			if dst, err = e.append(dst, item, depth+1); err != nil {
				return dst, err
			}
		}
		return append(dst, TagEnd), nil

	case Dict:
		if depth >= e.maxDepth {
			return dst, fmt.Errorf("%w: dict exceeds depth %d", ErrNestingTooDeep, e.maxDepth)
		}
		dst = append(dst, TagDict)
		for _, entry := range x {
			var err error
			if dst, err = e.append(dst, entry.Key, depth+1); err != nil {
				return dst, err
			}
			if dst, err = e.append(dst, entry.Val, depth+1); err != nil {
				return dst, err
			}
		}
		return append(dst, TagEnd), nil

	default:
		return appendPlaceholder(dst, fmt.Sprintf("%T", v)), nil
	}
}

// appendInt writes an integer tag. The declared width is kept on the wire
// even though the magnitude packing does not depend on it. Invalid widths
// are written as 64-bit.
func appendInt(dst []byte, i Int) []byte {
	width := i.Width
	if !width.Valid() {
		width = Width64
	}
	mag, negative := magnitude(width.narrow(i.V))
	return appendInteger(dst, integerTag(width, negative), mag)
}

// appendPlaceholder writes the lossy stand-in for an unrecognized type. The
// placeholder is always written as UTF-8, whatever the charset.
func appendPlaceholder(dst []byte, typeName string) []byte {
	s := unsupportedPrefix + typeName
	dst = appendLength(dst, TagText, uint64(len(s)))
	return append(dst, s...)
}
