// Package transcode converts binpack value trees to and from other
// self-describing formats.
//
// CBOR is the lossless interop target: ToCBOR and FromCBOR keep floats at
// their width, blobs as byte strings and dict keys of any kind. Only the
// declared integer width is lost, and FromCBOR yields 64-bit Ints.
//
// JSON and YAML are for inspection. ToJSON renders a document readable by
// any JSON tool; blobs become base64 strings, non-finite floats become the
// strings "NaN", "+Inf" and "-Inf", and non-Text dict keys are replaced by
// their display form. ToYAML keeps entry order, non-Text keys and blob
// bytes (as !!binary).
package transcode
