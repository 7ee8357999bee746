package binpack

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEmptyBuffer(t *testing.T) {
	_, err := Decode(nil, "")
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = Decode([]byte{}, "")
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeTopLevelEnd(t *testing.T) {
	v, err := Decode([]byte{TagEnd}, "")
	require.NoError(t, err)
	assert.Equal(t, Null{}, v)

	v, n, err := DecodePrefix([]byte{TagEnd, 0x45}, "")
	require.NoError(t, err)
	assert.Equal(t, Null{}, v)
	assert.Equal(t, 1, n)
}

func TestDecodeIgnoresTrailingBytes(t *testing.T) {
	v, n, err := DecodePrefix([]byte{0x45, 0xFF, 0xFF}, "")
	require.NoError(t, err)
	assert.Equal(t, Int64(5), v)
	assert.Equal(t, 1, n)

	v, n, err = DecodePrefix([]byte{0x02, 0x01, 0x45}, "")
	require.NoError(t, err)
	assert.Equal(t, List{}, v)
	assert.Equal(t, 2, n)
}

func TestDecodeUnknownTags(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "zero byte", data: []byte{0x00}},
		{name: "0x08", data: []byte{0x08}},
		{name: "0x0E", data: []byte{0x0E}},
		{name: "0x30 reserved", data: []byte{0x30}},
		{name: "0x3F reserved", data: []byte{0x3F}},
		{name: "continuation before null", data: []byte{0x81, 0x0F}},
		{name: "continuation before end", data: []byte{0x81, 0x01}},
		{name: "continuation before list", data: []byte{0x80, 0x02, 0x01}},
		{name: "nested", data: []byte{0x02, 0x45, 0x0A, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data, "")
			assert.ErrorIs(t, err, ErrUnknownTag)
		})
	}
}

func TestDecodeVarintOverflow(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{
			name: "continuation chunk past 64 bits",
			data: append(bytes.Repeat([]byte{0xFF}, 10), 0x40),
		},
		{
			name: "zero continuation chunks past 64 bits",
			data: append(bytes.Repeat([]byte{0x80}, 10), 0x40),
		},
		{
			name: "long run of zero continuation chunks",
			data: append(bytes.Repeat([]byte{0x80}, 1000), 0x40),
		},
		{
			name: "terminal bits past 64 bits",
			data: append(bytes.Repeat([]byte{0x80}, 9), 0x1F),
		},
		{
			name: "int8 magnitude 128",
			data: []byte{0x80, 0x49},
		},
		{
			name: "int8 magnitude 200",
			data: []byte{0xC8, 0x49},
		},
		{
			name: "int64 magnitude 2^63",
			data: append(bytes.Repeat([]byte{0x80}, 9), 0x41),
		},
		{
			name: "int32 magnitude 2^31",
			data: []byte{0x80, 0x80, 0x80, 0x80, 0x88, 0x58},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data, "")
			assert.ErrorIs(t, err, ErrVarintOverflow)
		})
	}
}

func TestDecodeNonCanonicalVarint(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Value
	}{
		{name: "one zero chunk", data: []byte{0x80, 0x40}, want: Int64(0)},
		{name: "nine zero chunks", data: append(bytes.Repeat([]byte{0x80}, 9), 0x40), want: Int64(0)},
		{name: "padded int8", data: []byte{0x85, 0x80, 0x48}, want: Int8(5)},
		{name: "padded blob length", data: []byte{0x81, 0x10, 0xAA}, want: Blob{0xAA}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.data, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeWidthBoundaries(t *testing.T) {
	tests := []Int{
		Int8(math.MinInt8), Int8(math.MaxInt8),
		Int16(math.MinInt16), Int16(math.MaxInt16),
		Int32(math.MinInt32), Int32(math.MaxInt32),
		Int64(math.MinInt64), Int64(math.MaxInt64),
	}

	for _, want := range tests {
		t.Run(want.Width.String()+" "+want.String(), func(t *testing.T) {
			data, err := Encode(want, "")
			require.NoError(t, err)

			got, err := Decode(data, "")
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestDecodeMalformedDict(t *testing.T) {
	_, err := Decode([]byte{0x03, 0x23, 'a', 'b', 'c', 0x01}, "")
	require.ErrorIs(t, err, ErrMalformedAggregate)

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 5, de.Offset)

	_, err = Decode([]byte{0x02, 0x03, 0x21, 'a', 0x01, 0x01}, "")
	assert.ErrorIs(t, err, ErrMalformedAggregate)
}

func TestDecodeNestingLimit(t *testing.T) {
	ok := append(bytes.Repeat([]byte{TagList}, DefaultMaxDepth), bytes.Repeat([]byte{TagEnd}, DefaultMaxDepth)...)
	_, err := Decode(ok, "")
	assert.NoError(t, err)

	tooDeep := append(bytes.Repeat([]byte{TagList}, DefaultMaxDepth+1), bytes.Repeat([]byte{TagEnd}, DefaultMaxDepth+1)...)
	_, err = Decode(tooDeep, "")
	assert.ErrorIs(t, err, ErrNestingTooDeep)

	// Unterminated, so a recursive decoder without a limit would also fail,
	// but only after exhausting the stack.
	_, err = Decode(bytes.Repeat([]byte{TagDict}, 100000), "")
	assert.ErrorIs(t, err, ErrNestingTooDeep)
}

func TestDecodeDict(t *testing.T) {
	data := []byte{
		0x03,
		0x23, 'a', 'b', 'c', 0xA0, 0x58,
		0x25, 'h', 'e', 'l', 'l', 'o',
		0x90, 0x20, 'Y', 'o', 'u', ' ', 'j', 'u', 'm', 'p', ',', ' ', 'I', ' ', 'j', 'u', 'm', 'p',
		0x01,
	}

	v, err := Decode(data, "")
	require.NoError(t, err)

	dict, ok := v.(Dict)
	require.True(t, ok, "got %T", v)
	require.Len(t, dict, 2)

	abc, ok := dict.Lookup("abc")
	require.True(t, ok)
	assert.Equal(t, Int32(32), abc)

	hello, ok := dict.Lookup("hello")
	require.True(t, ok)
	assert.Equal(t, Text("You jump, I jump"), hello)
}

func TestDecodeDictKeys(t *testing.T) {
	t.Run("duplicate key keeps last value", func(t *testing.T) {
		v, err := Decode([]byte{0x03, 0x21, 'a', 0x41, 0x21, 'b', 0x43, 0x21, 'a', 0x42, 0x01}, "")
		require.NoError(t, err)
		assert.Equal(t, Dict{
			{Key: Text("a"), Val: Int64(2)},
			{Key: Text("b"), Val: Int64(3)},
		}, v)
	})

	t.Run("widths make distinct keys", func(t *testing.T) {
		v, err := Decode([]byte{0x03, 0x49, 0x21, 'a', 0x41, 0x21, 'b', 0x01}, "")
		require.NoError(t, err)
		assert.Len(t, v.(Dict), 2)
	})

	t.Run("non-text keys", func(t *testing.T) {
		v, err := Decode([]byte{0x03, 0x0F, 0x45, 0x02, 0x41, 0x01, 0x04, 0x12, 0x01, 0x02, 0x05, 0x01}, "")
		require.NoError(t, err)

		dict := v.(Dict)
		got, ok := dict.Get(Null{})
		require.True(t, ok)
		assert.Equal(t, Int64(5), got)

		got, ok = dict.Get(List{Int64(1)})
		require.True(t, ok)
		assert.Equal(t, Bool(true), got)

		got, ok = dict.Get(Blob{0x01, 0x02})
		require.True(t, ok)
		assert.Equal(t, Bool(false), got)
	})

	t.Run("duplicate list keys", func(t *testing.T) {
		v, err := Decode([]byte{0x03, 0x02, 0x01, 0x41, 0x02, 0x01, 0x42, 0x01}, "")
		require.NoError(t, err)
		assert.Equal(t, Dict{{Key: List{}, Val: Int64(2)}}, v)
	})
}

func TestDecodeTruncated(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "dangling continuation", data: []byte{0x80}},
		{name: "short blob", data: []byte{0x13, 0x01}},
		{name: "short text", data: []byte{0x23, 'a'}},
		{name: "short float32", data: []byte{0x07, 0x00, 0x00}},
		{name: "short float64", data: []byte{0x06, 0x00, 0x00, 0x00, 0x00}},
		{name: "open list", data: []byte{0x02, 0x45}},
		{name: "open dict", data: []byte{0x03, 0x21, 'k'}},
		{name: "huge blob length", data: []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x1F}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data, "")
			assert.ErrorIs(t, err, ErrTruncated)
		})
	}
}

func TestDecodeEveryPrefixTruncated(t *testing.T) {
	values := []Value{
		List{Int64(1), Text("two"), F64(3), List{Blob{4}}, Null{}},
		Dict{
			{Key: Text("nested"), Val: Dict{{Key: Text("x"), Val: F32(1.5)}}},
			{Key: Int64(-300), Val: Blob(bytes.Repeat([]byte{7}, 40))},
		},
		Int64(math.MinInt64),
		Text("héllo wörld"),
	}

	for _, v := range values {
		data, err := Encode(v, "")
		require.NoError(t, err)

		for k := 0; k < len(data); k++ {
			_, err := Decode(data[:k], "")
			assert.ErrorIs(t, err, ErrTruncated, "%s cut at %d of %d", v, k, len(data))
		}
	}
}

func TestDecodeErrorOffset(t *testing.T) {
	_, err := Decode([]byte{0x02, 0x45, 0x46, 0x0B, 0x01}, "")
	require.ErrorIs(t, err, ErrUnknownTag)

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 3, de.Offset)
	assert.Contains(t, err.Error(), "offset 3")
	assert.Equal(t, "unknown_tag", ErrorCode(err))
}

func TestDecodeDoesNotAliasInput(t *testing.T) {
	data := []byte{0x13, 0x01, 0x02, 0x03}
	orig := append([]byte{}, data...)

	v, err := Decode(data, "")
	require.NoError(t, err)
	assert.Equal(t, orig, data, "input modified")

	data[1] = 0xFF
	assert.Equal(t, Blob{0x01, 0x02, 0x03}, v)
}

func TestDecodeInvalidText(t *testing.T) {
	_, err := Decode([]byte{0x21, 0xFF}, "")
	assert.ErrorIs(t, err, ErrInvalidEncoding)

	// A lone GBK lead byte followed by an ASCII space.
	_, err = Decode([]byte{0x22, 0x81, 0x20}, "GBK")
	assert.ErrorIs(t, err, ErrInvalidEncoding)

	_, err = Decode([]byte{0x45}, "no-such-charset")
	assert.ErrorIs(t, err, ErrUnknownCharset)
}
