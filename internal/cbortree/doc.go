// Package cbortree decodes CBOR into a generic value tree and lets the caller
// interpret application tags while the tree is built.
//
// Framing and scalar decoding are delegated to github.com/fxamacker/cbor/v2.
// This package only walks containers so that every application tag is handed
// to a Hook in byte order, content first:
//
//	v, err := cbortree.Decode(data, hook)
//
// Decoded shapes:
//   - arrays: []any
//   - maps: map[any]any (byte string keys become cbor.ByteString)
//   - unsigned integers: uint64, negative integers: int64
//   - byte strings: []byte, text strings: string
//   - floats: float64, simple values: bool or nil
//
// Tags 0 to 5 are standard CBOR tags and are decoded by the library. Tag
// 55799 (self-described CBOR) is transparent. Every other tag is passed to
// the Hook; with a nil Hook it is kept as a cbor.Tag.
package cbortree
