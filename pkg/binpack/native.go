package binpack

import (
	"fmt"
	"math"
	"reflect"
	"sort"
)

// Ordinaler is implemented by enumeration types that should be encoded as
// their ordinal number.
type Ordinaler interface {
	Ordinal() int
}

var (
	valueType   = reflect.TypeOf((*Value)(nil)).Elem()
	ordinalType = reflect.TypeOf((*Ordinaler)(nil)).Elem()
)

// FromNative converts a Go value to a Value tree.
//
// Supported inputs are nil, bool, the signed integer types, uint8 through
// uint64, float32, float64, []byte, string, Value, Ordinaler, slices,
// arrays, maps and pointers to any of these. int and uint64 map to 64-bit
// Ints and unsigned types are promoted to the next signed width. Anything
// else, including a uint64 above math.MaxInt64, becomes the Text
// "unsupported-type-<type>".
func FromNative(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null{}
	case Null, Bool, Int, Float32, Float64, Blob, Text, List, Dict:
		return t.(Value)
	case bool:
		return Bool(t)
	case int8:
		return Int8(t)
	case int16:
		return Int16(t)
	case int32:
		return Int32(t)
	case int64:
		return Int64(t)
	case int:
		return Int64(int64(t))
	case uint8:
		return Int16(int16(t))
	case uint16:
		return Int32(int32(t))
	case uint32:
		return Int64(int64(t))
	case uint64:
		if t > math.MaxInt64 {
			return placeholder(x)
		}
		return Int64(int64(t))
	case uint:
		if uint64(t) > math.MaxInt64 {
			return placeholder(x)
		}
		return Int64(int64(t))
	case float32:
		return F32(t)
	case float64:
		return F64(t)
	case []byte:
		return Blob(t)
	case string:
		return Text(t)
	case Ordinaler:
		return Int32(int32(t.Ordinal()))
	}
	return fromReflect(reflect.ValueOf(x), 0)
}

func fromReflect(rv reflect.Value, depth int) Value {
	if depth > DefaultMaxDepth {
		return placeholder(rv.Interface())
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null{}
		}
		if rv.Kind() == reflect.Interface || rv.Type().Elem().Implements(valueType) {
			return fromReflect(rv.Elem(), depth+1)
		}
	}

	// Value implementations outside the closed set are kept as they are;
	// the encoder writes them as placeholders.
	if rv.Type().Implements(valueType) {
		return rv.Interface().(Value)
	}
	if rv.Type().Implements(ordinalType) {
		return Int32(int32(rv.Interface().(Ordinaler).Ordinal()))
	}

	switch rv.Kind() {
	case reflect.Pointer:
		return fromReflect(rv.Elem(), depth+1)

	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.Int8:
		return Int8(int8(rv.Int()))
	case reflect.Int16:
		return Int16(int16(rv.Int()))
	case reflect.Int32:
		return Int32(int32(rv.Int()))
	case reflect.Int, reflect.Int64:
		return Int64(rv.Int())
	case reflect.Uint8:
		return Int16(int16(rv.Uint()))
	case reflect.Uint16:
		return Int32(int32(rv.Uint()))
	case reflect.Uint32:
		return Int64(int64(rv.Uint()))
	case reflect.Uint, reflect.Uint64:
		if rv.Uint() > math.MaxInt64 {
			return placeholder(rv.Interface())
		}
		return Int64(int64(rv.Uint()))
	case reflect.Float32:
		return F32(float32(rv.Float()))
	case reflect.Float64:
		return F64(rv.Float())
	case reflect.String:
		return Text(rv.String())

	case reflect.Slice:
		if rv.IsNil() {
			return Null{}
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Blob(rv.Bytes())
		}
		return listFromReflect(rv, depth)
	case reflect.Array:
		return listFromReflect(rv, depth)

	case reflect.Map:
		if rv.IsNil() {
			return Null{}
		}
		keys := rv.MapKeys()
		if rv.Type().Key().Kind() == reflect.String {
			sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		}
		dict := make(Dict, 0, len(keys))
		for _, k := range keys {
			dict = append(dict, Entry{
				Key: fromReflect(k, depth+1),
				Val: fromReflect(rv.MapIndex(k), depth+1),
			})
		}
		return dict
	}

	return placeholder(rv.Interface())
}

func listFromReflect(rv reflect.Value, depth int) Value {
	list := make(List, rv.Len())
	for i := range list {
		list[i] = fromReflect(rv.Index(i), depth+1)
	}
	return list
}

func placeholder(x any) Value {
	return Text(fmt.Sprintf("%s%T", unsupportedPrefix, x))
}

// ToNative converts a Value tree to plain Go values: nil, bool, int8, int16,
// int32, int64, float32, float64, []byte, string, []any and maps.
//
// A Dict whose keys are all Text becomes map[string]any; any other Dict
// becomes map[any]any, with Blob keys turned into strings and List or Dict
// keys into their display form, since those are not comparable in Go.
func ToNative(v Value) any {
	switch x := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(x)
	case Int:
		switch x.Width {
		case Width8:
			return int8(x.V)
		case Width16:
			return int16(x.V)
		case Width32:
			return int32(x.V)
		default:
			return x.V
		}
	case Float32:
		return x.Float()
	case Float64:
		return x.Float()
	case Blob:
		return []byte(x)
	case Text:
		return string(x)
	case List:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = ToNative(item)
		}
		return out
	case Dict:
		return dictToNative(x)
	default:
		return v.String()
	}
}

func dictToNative(d Dict) any {
	allText := true
	for _, e := range d {
		if _, ok := e.Key.(Text); !ok {
			allText = false
			break
		}
	}

	if allText {
		out := make(map[string]any, len(d))
		for _, e := range d {
			out[string(e.Key.(Text))] = ToNative(e.Val)
		}
		return out
	}

	out := make(map[any]any, len(d))
	for _, e := range d {
		out[nativeKey(e.Key)] = ToNative(e.Val)
	}
	return out
}

func nativeKey(k Value) any {
	switch x := k.(type) {
	case Blob:
		return string(x)
	case List, Dict:
		return x.String()
	default:
		return ToNative(k)
	}
}

// Marshal converts x with FromNative and encodes it.
func Marshal(x any, charset string) ([]byte, error) {
	return Encode(FromNative(x), charset)
}

// Unmarshal decodes data and converts the result with ToNative.
func Unmarshal(data []byte, charset string) (any, error) {
	v, err := Decode(data, charset)
	if err != nil {
		return nil, err
	}
	return ToNative(v), nil
}
