// Package types defines the kind discriminator shared by all field codecs.
//
// This package is internal to the codec.
package types
