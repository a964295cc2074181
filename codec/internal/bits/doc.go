// Package bits provides the bit-range primitives shared by all field codecs.
//
// Every operation works on a uint64 and an (offset, length) pair with
// 1 <= length <= 64 and offset+length <= 64. Callers narrow the result to their
// storage width.
//
// # Contents
//
//   - helpers.go: masks, extraction, read-modify-write, two's complement
//
// This package is internal to the codec.
package bits
