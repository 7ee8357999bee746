// Package transport carries binpack values over byte streams.
//
// A binpack value is self-delimiting, but a stream reader still needs to
// know how many bytes to pull before it can decode, and a corrupt value
// must not desynchronize the rest of the stream. Each value is therefore
// sent in a length-prefixed frame:
//
//	┌──────────────┬─────────────┬────────────────────┬─────────────┐
//	│ length (4B)  │ compression │ raw size (4B, only │   payload   │
//	│ big-endian   │ tag (1B)    │ when compressed)   │             │
//	└──────────────┴─────────────┴────────────────────┴─────────────┘
//
// The length counts everything after the length prefix.
//
// # Compression
//
// Payloads may be compressed with zstd or LZ4 (block mode). A writer falls
// back to an uncompressed frame when compression would not shrink the
// payload, so readers must accept every tag regardless of what they asked
// for. The raw size bounds decompression; it may not exceed the reader's
// maximum message size.
//
// # Values
//
// ValueWriter and ValueReader pair a Framer with a binpack.Codec:
//
//	w := transport.NewValueWriter(conn, codec)
//	err := w.WriteValue(binpack.List{binpack.Int32(1)})
//
//	r := transport.NewValueReader(conn, codec)
//	v, err := r.ReadValue()
package transport
