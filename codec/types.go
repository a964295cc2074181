package codec

import (
	"strconv"

	"github.com/wippyai/bitfield/codec/internal/bits"
	"github.com/wippyai/bitfield/codec/internal/layout"
	"github.com/wippyai/bitfield/codec/internal/types"
)

type Kind = types.Kind

const (
	KindBool   = types.KindBool
	KindUint   = types.KindUint
	KindInt    = types.KindInt
	KindU8     = types.KindU8
	KindU16    = types.KindU16
	KindU32    = types.KindU32
	KindU64    = types.KindU64
	KindS8     = types.KindS8
	KindS16    = types.KindS16
	KindS32    = types.KindS32
	KindS64    = types.KindS64
	KindEnum   = types.KindEnum
	KindStruct = types.KindStruct
)

// Sentinel names one of the four canonical values every type defines.
type Sentinel uint8

const (
	SentinelZeroes Sentinel = iota
	SentinelOnes
	SentinelMin
	SentinelMax
)

func (s Sentinel) String() string {
	switch s {
	case SentinelZeroes:
		return "zeroes"
	case SentinelOnes:
		return "ones"
	case SentinelMin:
		return "min"
	case SentinelMax:
		return "max"
	}
	return "sentinel(" + strconv.Itoa(int(s)) + ")"
}

// Type is the untyped view of a field codec. It is implemented only by the
// codecs in this package: BoolCodec, UintCodec, IntCodec, NativeCodec, *Enum
// and *Layout.
type Type interface {
	Kind() Kind
	// BitLen is the number of bits a value of this type occupies.
	BitLen() int
	String() string

	encodeAny(v any) (uint64, error)
	// decodeAny and validate expect raw already narrowed to BitLen bits.
	decodeAny(raw uint64) (any, error)
	validate(raw uint64) error
	sentinelBits(s Sentinel) uint64
	formatBits(raw uint64) string
	parseBits(s string) (uint64, error)
}

// Codec is a Type bound to the Go type T of its decoded values.
type Codec[T any] interface {
	Type
	// Encode returns the field-local bit pattern of v. It panics if v is not
	// representable.
	Encode(v T) uint64
	TryDecode(raw uint64) (T, bool)
	// Decode panics when TryDecode would report absence.
	Decode(raw uint64) T
	Zeroes() T
	Ones() T
	Min() T
	Max() T
}

// Width is a supported storage width in bits.
type Width uint8

const (
	Width8  Width = 8
	Width16 Width = 16
	Width32 Width = 32
	Width64 Width = 64
)

// Bits returns the width as an int.
func (w Width) Bits() int {
	return int(w)
}

// Mask returns a value with every storage bit set.
func (w Width) Mask() uint64 {
	return bits.Mask(int(w))
}

func (w Width) String() string {
	return "u" + strconv.Itoa(int(w))
}

// StorageWidthFor returns the smallest storage width holding totalBits.
func StorageWidthFor(totalBits int) (Width, error) {
	w, err := layout.StorageWidth(totalBits)
	if err != nil {
		return 0, err
	}
	return Width(w), nil
}

// Format renders the field-local bit pattern raw as a value of t.
func Format(t Type, raw uint64) string {
	return t.formatBits(raw & bits.Mask(t.BitLen()))
}

// Parse reads the textual form of a value of t and returns its bit pattern.
func Parse(t Type, s string) (uint64, error) {
	return t.parseBits(s)
}

// EncodeValue returns the bit pattern of a decoded value of t. v must have the
// Go type t decodes to.
func EncodeValue(t Type, v any) (uint64, error) {
	return t.encodeAny(v)
}

// DecodeValue decodes raw as a value of t, reporting invalid patterns.
func DecodeValue(t Type, raw uint64) (any, error) {
	raw &= bits.Mask(t.BitLen())
	if err := t.validate(raw); err != nil {
		return nil, err
	}
	return t.decodeAny(raw)
}

// SentinelOf returns the bit pattern of one of t's sentinels.
func SentinelOf(t Type, s Sentinel) uint64 {
	return t.sentinelBits(s)
}
