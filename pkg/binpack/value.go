package binpack

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the variant of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat32
	KindFloat64
	KindBlob
	KindText
	KindList
	KindDict
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindBlob:
		return "blob"
	case KindText:
		return "text"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a node of a binpack value tree.
//
// The set of implementations is closed: Null, Bool, Int, Float32, Float64,
// Blob, Text, List and Dict. Values are treated as immutable; Encode and
// Decode never modify a Value they are given.
type Value interface {
	Kind() Kind
	String() string
	isValue()
}

// Null is the null value.
type Null struct{}

// Bool is a boolean value.
type Bool bool

// IntWidth is the declared width of an integer. The numeric values are the
// wire width codes.
type IntWidth uint8

const (
	Width64 IntWidth = 0
	Width8  IntWidth = 1
	Width16 IntWidth = 2
	Width32 IntWidth = 3
)

// Bits returns the width in bits, or 0 for an invalid width.
func (w IntWidth) Bits() int {
	switch w {
	case Width8:
		return 8
	case Width16:
		return 16
	case Width32:
		return 32
	case Width64:
		return 64
	default:
		return 0
	}
}

// Valid reports whether w is one of the four defined widths.
func (w IntWidth) Valid() bool {
	return w <= Width32
}

// String returns the width name, e.g. "int16".
func (w IntWidth) String() string {
	if !w.Valid() {
		return fmt.Sprintf("width(%d)", uint8(w))
	}
	return "int" + strconv.Itoa(w.Bits())
}

// narrow truncates v to the range of w using two's complement.
func (w IntWidth) narrow(v int64) int64 {
	switch w {
	case Width8:
		return int64(int8(v))
	case Width16:
		return int64(int16(v))
	case Width32:
		return int64(int32(v))
	default:
		return v
	}
}

// Int is a signed integer with a declared width. The zero value is a 64-bit
// zero. V is expected to lie within the range of Width; the encoder
// truncates it to that range otherwise.
type Int struct {
	Width IntWidth
	V     int64
}

// Int8 returns an 8-bit Int.
func Int8(v int8) Int { return Int{Width: Width8, V: int64(v)} }

// Int16 returns a 16-bit Int.
func Int16(v int16) Int { return Int{Width: Width16, V: int64(v)} }

// Int32 returns a 32-bit Int.
func Int32(v int32) Int { return Int{Width: Width32, V: int64(v)} }

// Int64 returns a 64-bit Int.
func Int64(v int64) Int { return Int{Width: Width64, V: v} }

// Float32 is a single precision float stored as its IEEE-754 bit pattern.
type Float32 struct {
	Bits uint32
}

// F32 returns the Float32 holding f.
func F32(f float32) Float32 { return Float32{Bits: math.Float32bits(f)} }

// Float returns the float value.
func (f Float32) Float() float32 { return math.Float32frombits(f.Bits) }

// Float64 is a double precision float stored as its IEEE-754 bit pattern.
type Float64 struct {
	Bits uint64
}

// F64 returns the Float64 holding f.
func F64(f float64) Float64 { return Float64{Bits: math.Float64bits(f)} }

// Float returns the float value.
func (f Float64) Float() float64 { return math.Float64frombits(f.Bits) }

// Blob is an opaque byte sequence.
type Blob []byte

// Text is a string. On the wire it is carried in the codec's charset.
type Text string

// List is an ordered sequence of values.
type List []Value

// Entry is a single key/value pair of a Dict.
type Entry struct {
	Key Value
	Val Value
}

// Dict is a mapping of keys to values. Entry order carries no meaning.
// Keys are conventionally Text but may be any Value.
type Dict []Entry

// Get returns the value stored under key.
func (d Dict) Get(key Value) (Value, bool) {
	for _, e := range d {
		if Equal(e.Key, key) {
			return e.Val, true
		}
	}
	return nil, false
}

// Lookup returns the value stored under the Text key name.
func (d Dict) Lookup(name string) (Value, bool) {
	for _, e := range d {
		if t, ok := e.Key.(Text); ok && string(t) == name {
			return e.Val, true
		}
	}
	return nil, false
}

func (Null) Kind() Kind    { return KindNull }
func (Bool) Kind() Kind    { return KindBool }
func (Int) Kind() Kind     { return KindInt }
func (Float32) Kind() Kind { return KindFloat32 }
func (Float64) Kind() Kind { return KindFloat64 }
func (Blob) Kind() Kind    { return KindBlob }
func (Text) Kind() Kind    { return KindText }
func (List) Kind() Kind    { return KindList }
func (Dict) Kind() Kind    { return KindDict }

func (Null) isValue()    {}
func (Bool) isValue()    {}
func (Int) isValue()     {}
func (Float32) isValue() {}
func (Float64) isValue() {}
func (Blob) isValue()    {}
func (Text) isValue()    {}
func (List) isValue()    {}
func (Dict) isValue()    {}

func (Null) String() string { return "null" }

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

func (i Int) String() string { return strconv.FormatInt(i.V, 10) }

func (f Float32) String() string {
	return strconv.FormatFloat(float64(f.Float()), 'g', -1, 32)
}

func (f Float64) String() string {
	return strconv.FormatFloat(f.Float(), 'g', -1, 64)
}

func (b Blob) String() string { return "0x" + hex.EncodeToString(b) }

func (t Text) String() string { return strconv.Quote(string(t)) }

func (l List) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range l {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(show(v))
	}
	sb.WriteByte(']')
	return sb.String()
}

func (d Dict) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, e := range d {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(show(e.Key))
		sb.WriteString(": ")
		sb.WriteString(show(e.Val))
	}
	sb.WriteByte('}')
	return sb.String()
}

func show(v Value) string {
	if v == nil {
		return "null"
	}
	return v.String()
}

// Equal reports whether a and b are the same value tree. Floats compare by
// bit pattern, so NaN equals an identical NaN and -0.0 differs from 0.0.
// Dicts compare without regard to entry order. A nil Value equals Null.
func Equal(a, b Value) bool {
	if a == nil {
		a = Null{}
	}
	if b == nil {
		b = Null{}
	}
	switch x := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Int:
		y, ok := b.(Int)
		return ok && x == y
	case Float32:
		y, ok := b.(Float32)
		return ok && x == y
	case Float64:
		y, ok := b.(Float64)
		return ok && x == y
	case Blob:
		y, ok := b.(Blob)
		return ok && string(x) == string(y)
	case Text:
		y, ok := b.(Text)
		return ok && x == y
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Dict:
		y, ok := b.(Dict)
		if !ok || len(x) != len(y) {
			return false
		}
		for _, e := range x {
			other, found := y.Get(e.Key)
			if !found || !Equal(e.Val, other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
