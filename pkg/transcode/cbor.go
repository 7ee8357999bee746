package transcode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"

	"github.com/binpack-protocol/binpack-go/pkg/binpack"
)

// ErrUnsupportedCBOR indicates CBOR input with no binpack equivalent, such
// as tags, indefinite-length items or integers outside int64.
var ErrUnsupportedCBOR = errors.New("unsupported CBOR item")

// encMode keeps float widths and NaN payloads as they are, so Float32 and
// Float64 survive the trip through CBOR.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.EncOptions{
		ShortestFloat: cbor.ShortestFloatNone,
		NaNConvert:    cbor.NaNConvertNone,
		InfConvert:    cbor.InfConvertNone,
		IndefLength:   cbor.IndefLengthForbidden,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	decMode, err = cbor.DecOptions{
		IndefLength: cbor.IndefLengthForbidden,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// CBOR major types.
const (
	majorUnsigned = 0
	majorNegative = 1
	majorBytes    = 2
	majorText     = 3
	majorArray    = 4
	majorMap      = 5
	majorTag      = 6
	majorSimple   = 7

	indefiniteLength = 31
)

// ToCBOR encodes a value tree as CBOR. Integers lose their declared width
// since CBOR integers have none; floats keep theirs. Dict entries are
// written in their stored order with keys of any kind. Nesting deeper than
// binpack.DefaultMaxDepth fails with binpack.ErrNestingTooDeep.
func ToCBOR(v binpack.Value) ([]byte, error) {
	return appendCBOR(nil, v, 0)
}

func appendCBOR(dst []byte, v binpack.Value, depth int) ([]byte, error) {
	if depth >= binpack.DefaultMaxDepth {
		return dst, binpack.ErrNestingTooDeep
	}
	switch x := v.(type) {
	case nil, binpack.Null:
		return append(dst, 0xf6), nil
	case binpack.Bool:
		return appendScalar(dst, bool(x))
	case binpack.Int:
		return appendScalar(dst, x.V)
	case binpack.Float32:
		return appendScalar(dst, x.Float())
	case binpack.Float64:
		return appendScalar(dst, x.Float())
	case binpack.Blob:
		return appendScalar(dst, []byte(x))
	case binpack.Text:
		return appendScalar(dst, string(x))
	case binpack.List:
		dst = appendHead(dst, majorArray, uint64(len(x)))
		for _, item := range x {
			var err error
			if dst, err = appendCBOR(dst, item, depth+1); err != nil {
				return dst, err
			}
		}
		return dst, nil
	case binpack.Dict:
		dst = appendHead(dst, majorMap, uint64(len(x)))
		for _, e := range x {
			var err error
			if dst, err = appendCBOR(dst, e.Key, depth+1); err != nil {
				return dst, err
			}
			if dst, err = appendCBOR(dst, e.Val, depth+1); err != nil {
				return dst, err
			}
		}
		return dst, nil
	default:
		return appendScalar(dst, unsupportedText(v))
	}
}

// unsupportedText is the placeholder written for Value implementations
// outside the package, the same text Encode produces for them.
func unsupportedText(v binpack.Value) string {
	return fmt.Sprintf("unsupported-type-%T", v)
}

func appendScalar(dst []byte, x any) ([]byte, error) {
	b, err := encMode.Marshal(x)
	if err != nil {
		return dst, fmt.Errorf("failed to encode CBOR: %w", err)
	}
	return append(dst, b...), nil
}

// appendHead writes a CBOR initial byte plus argument.
func appendHead(dst []byte, major byte, n uint64) []byte {
	m := major << 5
	switch {
	case n < 24:
		return append(dst, m|byte(n))
	case n <= math.MaxUint8:
		return append(dst, m|24, byte(n))
	case n <= math.MaxUint16:
		return binary.BigEndian.AppendUint16(append(dst, m|25), uint16(n))
	case n <= math.MaxUint32:
		return binary.BigEndian.AppendUint32(append(dst, m|26), uint32(n))
	default:
		return binary.BigEndian.AppendUint64(append(dst, m|27), n)
	}
}

// FromCBOR decodes the first CBOR item in data into a value tree. Integers
// become 64-bit Ints; half and single precision floats become Float32.
func FromCBOR(data []byte) (binpack.Value, error) {
	v, _, err := fromCBOR(data, 0)
	return v, err
}

func fromCBOR(data []byte, depth int) (binpack.Value, []byte, error) {
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("%w: unexpected end of CBOR input", binpack.ErrTruncated)
	}
	if depth >= binpack.DefaultMaxDepth {
		return nil, nil, binpack.ErrNestingTooDeep
	}

	major := data[0] >> 5
	if major >= majorBytes && major <= majorMap && data[0]&0x1f == indefiniteLength {
		return nil, nil, fmt.Errorf("%w: indefinite-length item", ErrUnsupportedCBOR)
	}

	switch major {
	case majorUnsigned, majorNegative:
		var i int64
		rest, err := decMode.UnmarshalFirst(data, &i)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: integer: %v", ErrUnsupportedCBOR, err)
		}
		return binpack.Int64(i), rest, nil

	case majorBytes:
		var b []byte
		rest, err := decMode.UnmarshalFirst(data, &b)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode CBOR bytes: %w", err)
		}
		return binpack.Blob(b), rest, nil

	case majorText:
		var s string
		rest, err := decMode.UnmarshalFirst(data, &s)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode CBOR text: %w", err)
		}
		return binpack.Text(s), rest, nil

	case majorArray:
		n, rest, err := readHead(data)
		if err != nil {
			return nil, nil, err
		}
		list := make(binpack.List, 0, min(n, uint64(len(rest))))
		for i := uint64(0); i < n; i++ {
			var item binpack.Value
			if item, rest, err = fromCBOR(rest, depth+1); err != nil {
				return nil, nil, err
			}
			list = append(list, item)
		}
		return list, rest, nil

	case majorMap:
		n, rest, err := readHead(data)
		if err != nil {
			return nil, nil, err
		}
		dict := make(binpack.Dict, 0, min(n, uint64(len(rest))))
		for i := uint64(0); i < n; i++ {
			var key, val binpack.Value
			if key, rest, err = fromCBOR(rest, depth+1); err != nil {
				return nil, nil, err
			}
			if val, rest, err = fromCBOR(rest, depth+1); err != nil {
				return nil, nil, err
			}
			dict = append(dict, binpack.Entry{Key: key, Val: val})
		}
		return dict, rest, nil

	case majorSimple:
		return simpleFromCBOR(data)

	default:
		return nil, nil, fmt.Errorf("%w: major type %d", ErrUnsupportedCBOR, major)
	}
}

func simpleFromCBOR(data []byte) (binpack.Value, []byte, error) {
	switch data[0] {
	case 0xf4:
		return binpack.Bool(false), data[1:], nil
	case 0xf5:
		return binpack.Bool(true), data[1:], nil
	case 0xf6, 0xf7:
		return binpack.Null{}, data[1:], nil
	case 0xf9, 0xfa:
		var f float32
		rest, err := decMode.UnmarshalFirst(data, &f)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode CBOR float: %w", err)
		}
		return binpack.F32(f), rest, nil
	case 0xfb:
		var f float64
		rest, err := decMode.UnmarshalFirst(data, &f)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode CBOR float: %w", err)
		}
		return binpack.F64(f), rest, nil
	default:
		return nil, nil, fmt.Errorf("%w: simple value 0x%02x", ErrUnsupportedCBOR, data[0])
	}
}

// readHead parses a definite-length array or map head.
func readHead(data []byte) (uint64, []byte, error) {
	ai := data[0] & 0x1f
	rest := data[1:]
	var size int
	switch {
	case ai < 24:
		return uint64(ai), rest, nil
	case ai == 24:
		size = 1
	case ai == 25:
		size = 2
	case ai == 26:
		size = 4
	case ai == 27:
		size = 8
	default:
		return 0, nil, fmt.Errorf("%w: additional info %d", ErrUnsupportedCBOR, ai)
	}
	if len(rest) < size {
		return 0, nil, fmt.Errorf("%w: CBOR head", binpack.ErrTruncated)
	}
	var n uint64
	for _, b := range rest[:size] {
		n = n<<8 | uint64(b)
	}
	return n, rest[size:], nil
}
