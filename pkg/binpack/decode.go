package binpack

import (
	"encoding/binary"
	"fmt"
)

// Decode decodes the first value in data using the named charset for Text
// values.
//
// Bytes after the first complete value are ignored. A buffer whose first
// item is an end marker decodes to Null. An empty buffer is ErrTruncated.
func Decode(data []byte, charset string) (Value, error) {
	v, _, err := DecodePrefix(data, charset)
	return v, err
}

// DecodePrefix decodes the first value in data and also returns the number
// of bytes it occupied.
func DecodePrefix(data []byte, charset string) (Value, int, error) {
	cs, err := LookupCharset(charset)
	if err != nil {
		return nil, 0, err
	}
	d := decoder{buf: data, charset: cs, maxDepth: DefaultMaxDepth}
	return d.decode()
}

// decoder is a cursor over one input buffer. It never writes to buf.
type decoder struct {
	buf      []byte
	pos      int
	charset  *Charset
	maxDepth int
}

// tagInfo is a parsed tag: the type code and the number carried with it.
type tagInfo struct {
	code   byte
	num    uint64
	offset int
}

func (d *decoder) decode() (Value, int, error) {
	v, end, err := d.next(0)
	if err != nil {
		return nil, d.pos, err
	}
	if end {
		return Null{}, d.pos, nil
	}
	return v, d.pos, nil
}

func (d *decoder) fail(offset int, err error, format string, args ...any) error {
	return &DecodeError{Offset: offset, Err: err, Detail: fmt.Sprintf(format, args...)}
}

// readTag reads continuation chunks up to and including the terminal tag
// byte.
func (d *decoder) readTag() (tagInfo, error) {
	start := d.pos
	var num uint64
	var shift uint
	for {
		if d.pos >= len(d.buf) {
			return tagInfo{}, d.fail(start, ErrTruncated, "tag needs more bytes")
		}
		b := d.buf[d.pos]
		d.pos++

		if b&continuationBit == 0 {
			return d.terminal(start, b, num, shift)
		}

		var ok bool
		if num, ok = placeBits(num, uint64(b&payloadMask), shift); !ok {
			return tagInfo{}, d.fail(start, ErrVarintOverflow, "chunk at shift %d", shift)
		}
		shift += chunkBits
	}
}

// terminal splits the terminal byte b into type code and its share of the
// number, which lands above the continuation chunks.
func (d *decoder) terminal(start int, b byte, num uint64, shift uint) (tagInfo, error) {
	var low byte
	info := tagInfo{offset: start}

	switch {
	case b < fixedTagLimit:
		if shift > 0 {
			return tagInfo{}, d.fail(start, ErrUnknownTag, "tag 0x%02x takes no length", b)
		}
		info.code = b
		return info, nil
	case b < TagInteger:
		info.code = b & lengthTypeMask
		low = b & lengthLowMask
	default:
		info.code = b &^ integerLowMask
		low = b & integerLowMask
	}

	var ok bool
	if info.num, ok = placeBits(num, uint64(low), shift); !ok {
		return tagInfo{}, d.fail(start, ErrVarintOverflow, "terminal bits at shift %d", shift)
	}
	return info, nil
}

// next decodes one item. end is true when the item was an end marker, in
// which case the Value is nil.
func (d *decoder) next(depth int) (Value, bool, error) {
	tag, err := d.readTag()
	if err != nil {
		return nil, false, err
	}

	if tag.code >= TagInteger {
		v, err := d.makeInt(tag)
		return v, false, err
	}

	switch tag.code {
	case TagEnd:
		return nil, true, nil
	case TagNull:
		return Null{}, false, nil
	case TagTrue:
		return Bool(true), false, nil
	case TagFalse:
		return Bool(false), false, nil
	case TagList:
		v, err := d.makeList(tag, depth)
		return v, false, err
	case TagDict:
		v, err := d.makeDict(tag, depth)
		return v, false, err
	case TagBlob:
		b, err := d.take(tag, tag.num, "blob")
		if err != nil {
			return nil, false, err
		}
		return Blob(append([]byte{}, b...)), false, nil
	case TagText:
		b, err := d.take(tag, tag.num, "text")
		if err != nil {
			return nil, false, err
		}
		s, err := d.charset.decodeText(b)
		if err != nil {
			return nil, false, d.fail(tag.offset, err, "%d text bytes", len(b))
		}
		return Text(s), false, nil
	case TagFloat32:
		b, err := d.take(tag, float32Size, "float32")
		if err != nil {
			return nil, false, err
		}
		return Float32{Bits: binary.LittleEndian.Uint32(b)}, false, nil
	case TagFloat64:
		b, err := d.take(tag, float64Size, "float64")
		if err != nil {
			return nil, false, err
		}
		return Float64{Bits: binary.LittleEndian.Uint64(b)}, false, nil
	default:
		return nil, false, d.fail(tag.offset, ErrUnknownTag, "tag 0x%02x", tag.code)
	}
}

// take returns the next n bytes of the buffer without copying.
func (d *decoder) take(tag tagInfo, n uint64, what string) ([]byte, error) {
	remaining := uint64(len(d.buf) - d.pos)
	if n > remaining {
		return nil, d.fail(tag.offset, ErrTruncated, "%s needs %d bytes, %d remain", what, n, remaining)
	}
	b := d.buf[d.pos : d.pos+int(n)]
	d.pos += int(n)
	return b, nil
}

// makeInt rebuilds a signed integer from its magnitude. A magnitude that
// does not fit the declared width is rejected rather than wrapped.
func (d *decoder) makeInt(tag tagInfo) (Value, error) {
	width := IntWidth((tag.code & intWidthMask) >> intWidthShift)
	negative := tag.code&IntegerNegative != 0

	limit := uint64(1) << (width.Bits() - 1)
	if !negative {
		limit--
	}
	if tag.num > limit {
		return nil, d.fail(tag.offset, ErrVarintOverflow, "magnitude %d exceeds %s", tag.num, width)
	}

	v := int64(tag.num)
	if negative {
		v = -v
	}
	return Int{Width: width, V: v}, nil
}

func (d *decoder) makeList(tag tagInfo, depth int) (Value, error) {
	if depth >= d.maxDepth {
		return nil, d.fail(tag.offset, ErrNestingTooDeep, "limit %d", d.maxDepth)
	}
	list := List{}
	for {
		item, end, err := d.next(depth + 1)
		if err != nil {
			return nil, err
		}
		if end {
			return list, nil
		}
		list = append(list, item)
	}
}

// makeDict reads key/value pairs until an end marker in key position. A
// repeated key replaces the earlier value.
func (d *decoder) makeDict(tag tagInfo, depth int) (Value, error) {
	if depth >= d.maxDepth {
		return nil, d.fail(tag.offset, ErrNestingTooDeep, "limit %d", d.maxDepth)
	}
	dict := Dict{}
	index := map[string]int{}
	for {
		key, end, err := d.next(depth + 1)
		if err != nil {
			return nil, err
		}
		if end {
			return dict, nil
		}

		valueOffset := d.pos
		val, end, err := d.next(depth + 1)
		if err != nil {
			return nil, err
		}
		if end {
			return nil, d.fail(valueOffset, ErrMalformedAggregate, "end marker in place of dict value for key %s", key)
		}

		id := d.keyIdentity(key)
		if i, ok := index[id]; ok {
			dict[i].Val = val
			continue
		}
		index[id] = len(dict)
		dict = append(dict, Entry{Key: key, Val: val})
	}
}

// keyIdentity returns a canonical byte form of a decoded key, so that keys
// which are Equal share an identity regardless of how they were encoded.
func (d *decoder) keyIdentity(key Value) string {
	if t, ok := key.(Text); ok {
		return "t" + string(t)
	}
	e := encoder{charset: UTF8, maxDepth: d.maxDepth}
	b, err := e.append([]byte{'v'}, key, 0)
	if err != nil {
		// Unreachable for decoded keys; fall back to the display form.
		return "s" + key.String()
	}
	return string(b)
}
