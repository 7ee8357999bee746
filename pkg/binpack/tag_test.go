package binpack

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendLength(t *testing.T) {
	tests := []struct {
		name string
		n    uint64
		want []byte
	}{
		{name: "zero", n: 0, want: []byte{0x20}},
		{name: "fits terminal", n: 15, want: []byte{0x2F}},
		{name: "first continuation", n: 16, want: []byte{0x90, 0x20}},
		{name: "127", n: 127, want: []byte{0xFF, 0x20}},
		{name: "128", n: 128, want: []byte{0x80, 0x21}},
		{name: "2047", n: 2047, want: []byte{0xFF, 0x2F}},
		{name: "2048", n: 2048, want: []byte{0x80, 0x90, 0x20}},
		{name: "2^21", n: 1 << 21, want: []byte{0x80, 0x80, 0x80, 0x21}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, appendLength(nil, TagText, tt.n))
		})
	}
}

func TestAppendInteger(t *testing.T) {
	tests := []struct {
		name string
		mag  uint64
		want []byte
	}{
		{name: "zero", mag: 0, want: []byte{0x40}},
		{name: "fits terminal", mag: 7, want: []byte{0x47}},
		{name: "first continuation", mag: 8, want: []byte{0x88, 0x40}},
		{name: "1023", mag: 1023, want: []byte{0xFF, 0x47}},
		{name: "1024", mag: 1024, want: []byte{0x80, 0x88, 0x40}},
		{name: "max uint64", mag: math.MaxUint64, want: []byte{
			0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x41,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, appendInteger(nil, TagInteger, tt.mag))
		})
	}
}

func TestIntegerTag(t *testing.T) {
	assert.Equal(t, byte(0x40), integerTag(Width64, false))
	assert.Equal(t, byte(0x48), integerTag(Width8, false))
	assert.Equal(t, byte(0x70), integerTag(Width16, true))
	assert.Equal(t, byte(0x78), integerTag(Width32, true))
}

func TestPlaceBits(t *testing.T) {
	acc, ok := placeBits(0, 0x7F, 0)
	assert.True(t, ok)
	assert.Equal(t, uint64(0x7F), acc)

	acc, ok = placeBits(acc, 0x01, 63)
	assert.True(t, ok)
	assert.Equal(t, uint64(1<<63|0x7F), acc)

	_, ok = placeBits(0, 0x02, 63)
	assert.False(t, ok, "bit 64 does not fit")

	_, ok = placeBits(0, 0x01, 70)
	assert.False(t, ok, "shift past the accumulator")

	acc, ok = placeBits(5, 0, 63)
	assert.True(t, ok, "zero chunk at the last shift")
	assert.Equal(t, uint64(5), acc)

	_, ok = placeBits(5, 0, 64)
	assert.False(t, ok, "zero chunk past the accumulator")
}

func TestMagnitude(t *testing.T) {
	tests := []struct {
		v        int64
		mag      uint64
		negative bool
	}{
		{0, 0, false},
		{5, 5, false},
		{-5, 5, true},
		{math.MaxInt64, math.MaxInt64, false},
		{math.MinInt64, 1 << 63, true},
	}

	for _, tt := range tests {
		mag, negative := magnitude(tt.v)
		assert.Equal(t, tt.mag, mag, "magnitude(%d)", tt.v)
		assert.Equal(t, tt.negative, negative, "sign of %d", tt.v)
	}
}
