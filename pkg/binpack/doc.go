// Package binpack implements the binpack wire format, a compact
// self-describing binary encoding for dynamically typed value trees.
//
// A value tree is built from Null, Bool, Int (8, 16, 32 or 64 bit), Float32,
// Float64, Blob, Text, List and Dict. No schema is needed to decode: every
// item starts with one or more tag bytes that carry its type and, for sized
// types, its length or magnitude.
//
// # Tag Layout
//
// The first nibble range selects a fixed-shape item:
//
//	0x01  end of list/dict
//	0x02  list open
//	0x03  dict open
//	0x04  true
//	0x05  false
//	0x06  float64 (8 bytes little-endian follow)
//	0x07  float32 (4 bytes little-endian follow)
//	0x0F  null
//
// Sized items put a type code in the high bits of the terminal tag byte:
//
//	0001 xxxx  blob, xxxx = low bits of the length
//	0010 xxxx  text, xxxx = low bits of the byte length
//	01sw wxxx  integer, s = negative, ww = width, xxx = low bits of magnitude
//
// Width codes are 00 (64 bit), 01 (8 bit), 10 (16 bit) and 11 (32 bit).
// Lengths and magnitudes that do not fit the terminal byte are preceded by
// continuation bytes (top bit set), each carrying 7 bits, least significant
// chunk first. The terminal byte's low bits are the most significant chunk.
//
// # Basic Usage
//
//	data, err := binpack.Encode(binpack.Dict{
//	    {Key: binpack.Text("abc"), Val: binpack.Int32(32)},
//	}, "UTF-8")
//
//	v, err := binpack.Decode(data, "UTF-8")
//
// A Codec bundles a charset, a nesting limit and an optional event logger:
//
//	codec, err := binpack.NewCodec(binpack.DefaultConfig(),
//	    binpack.WithLogger(log.NewSlogAdapter(slog.Default())))
//
// # Decoding Rules
//
// Decoding reads exactly one value from the front of the buffer. Trailing
// bytes are ignored. A buffer holding only an end marker decodes to Null.
// All failures are returned as errors matching one of the Err* sentinels.
package binpack
