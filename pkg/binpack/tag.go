package binpack

// Tag codes. These are wire constants; changing any of them breaks
// compatibility with existing encoded data.
const (
	TagEnd     byte = 0x01 // 0000 0001
	TagList    byte = 0x02 // 0000 0010
	TagDict    byte = 0x03 // 0000 0011
	TagTrue    byte = 0x04 // 0000 0100
	TagFalse   byte = 0x05 // 0000 0101
	TagFloat64 byte = 0x06 // 0000 0110
	TagFloat32 byte = 0x07 // 0000 0111
	TagNull    byte = 0x0F // 0000 1111
	TagBlob    byte = 0x10 // 0001 xxxx
	TagText    byte = 0x20 // 0010 xxxx
	TagInteger byte = 0x40 // 01sw wxxx

	// IntegerNegative is or-ed into an integer tag for negative values.
	IntegerNegative byte = 0x20
)

// Integer width bits (bits 3-4 of an integer tag).
const (
	intWidthShift      = 3
	intWidthMask  byte = 0x18
)

// Varint layout.
const (
	continuationBit byte = 0x80
	payloadMask     byte = 0x7F
	chunkBits            = 7

	// lengthLowMask is the part of a blob/text terminal byte carrying
	// length bits.
	lengthLowMask byte = 0x0F
	// lengthTypeMask extracts the type code from a blob/text terminal byte.
	lengthTypeMask byte = 0x70
	// integerLowMask is the part of an integer terminal byte carrying
	// magnitude bits.
	integerLowMask byte = 0x07
)

// fixedTagLimit is the first terminal byte value that carries a number.
const fixedTagLimit byte = TagBlob

// Float payload sizes.
const (
	float32Size = 4
	float64Size = 8
)

// appendLength appends a blob/text tag carrying length n. The terminal byte
// holds the four most significant bits.
func appendLength(dst []byte, base byte, n uint64) []byte {
	for n > uint64(lengthLowMask) {
		dst = append(dst, continuationBit|byte(n)&payloadMask)
		n >>= chunkBits
	}
	return append(dst, base|byte(n))
}

// appendInteger appends an integer tag carrying magnitude mag. The terminal
// byte holds the three most significant bits.
func appendInteger(dst []byte, tag byte, mag uint64) []byte {
	for mag > uint64(integerLowMask) {
		dst = append(dst, continuationBit|byte(mag)&payloadMask)
		mag >>= chunkBits
	}
	return append(dst, tag|byte(mag))
}

// integerTag builds the terminal-byte prefix for an integer of width w.
func integerTag(w IntWidth, negative bool) byte {
	tag := TagInteger | byte(w)<<intWidthShift
	if negative {
		tag |= IntegerNegative
	}
	return tag
}

// placeBits ors chunk into acc at shift, reporting false when any bit of
// chunk falls outside the 64-bit accumulator. No chunk is placed at shift 64
// or beyond, even a zero one, so a run of 0x80 bytes ends after ten.
func placeBits(acc, chunk uint64, shift uint) (uint64, bool) {
	if shift >= 64 || chunk>>(64-shift) != 0 {
		return acc, false
	}
	return acc | chunk<<shift, true
}

// magnitude returns |v| as an unsigned value and whether v is negative.
// math.MinInt64 maps to 1<<63.
func magnitude(v int64) (uint64, bool) {
	if v < 0 {
		return uint64(-(v + 1)) + 1, true
	}
	return uint64(v), false
}
