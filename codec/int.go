package codec

import (
	"fmt"
	"strconv"

	"golang.org/x/exp/constraints"

	"github.com/wippyai/bitfield/codec/internal/bits"
	"github.com/wippyai/bitfield/codec/internal/layout"
	"github.com/wippyai/bitfield/errors"
)

// Uint is an unsigned integer of a fixed bit width. Values are created through a
// UintCodec and always fit their width.
type Uint struct {
	v uint64
	w uint8
}

// Get returns the value widened to uint64.
func (u Uint) Get() uint64 { return u.v }

// Width returns the bit width the value was created for.
func (u Uint) Width() int { return int(u.w) }

func (u Uint) String() string { return strconv.FormatUint(u.v, 10) }

// Int is a two's complement signed integer of a fixed bit width.
type Int struct {
	v int64
	w uint8
}

// Get returns the value widened to int64.
func (i Int) Get() int64 { return i.v }

// Width returns the bit width the value was created for.
func (i Int) Width() int { return int(i.w) }

func (i Int) String() string { return strconv.FormatInt(i.v, 10) }

func checkWidth(width int) error {
	if width < 1 || width > layout.MaxBits {
		return errors.New(errors.PhaseSchema, errors.KindInvalidInput).
			Value(width).
			Detail("integer width %d, want 1..%d", width, layout.MaxBits).
			Build()
	}
	return nil
}

// UintCodec encodes unsigned integers of one width.
type UintCodec struct {
	w uint8
}

// NewUintType returns the codec for width-bit unsigned integers.
func NewUintType(width int) (UintCodec, error) {
	if err := checkWidth(width); err != nil {
		return UintCodec{}, err
	}
	return UintCodec{w: uint8(width)}, nil
}

// UintType is like NewUintType but panics on an invalid width.
func UintType(width int) UintCodec {
	c, err := NewUintType(width)
	if err != nil {
		panic(err)
	}
	return c
}

func (c UintCodec) Kind() Kind     { return KindUint }
func (c UintCodec) BitLen() int    { return int(c.w) }
func (c UintCodec) String() string { return "u" + strconv.Itoa(int(c.w)) }

func (c UintCodec) max() uint64 { return bits.Mask(int(c.w)) }

// New panics with a width overflow error when v does not fit.
func (c UintCodec) New(v uint64) Uint {
	u, ok := c.TryNew(v)
	if !ok {
		panic(errors.WidthOverflow(errors.PhaseEncode, nil, v, int(c.w)))
	}
	return u
}

func (c UintCodec) TryNew(v uint64) (Uint, bool) {
	if v > c.max() {
		return Uint{}, false
	}
	return Uint{v: v, w: c.w}, true
}

// Encode panics when u does not fit the codec's width, which can only happen
// for a value created by a wider codec.
func (c UintCodec) Encode(u Uint) uint64 {
	if u.v > c.max() {
		panic(errors.WidthOverflow(errors.PhaseEncode, nil, u.v, int(c.w)))
	}
	return u.v
}

func (c UintCodec) TryDecode(raw uint64) (Uint, bool) {
	return c.Decode(raw), true
}

func (c UintCodec) Decode(raw uint64) Uint {
	return Uint{v: raw & c.max(), w: c.w}
}

func (c UintCodec) Zeroes() Uint { return Uint{w: c.w} }
func (c UintCodec) Ones() Uint   { return Uint{v: c.max(), w: c.w} }
func (c UintCodec) Min() Uint    { return Uint{w: c.w} }
func (c UintCodec) Max() Uint    { return Uint{v: c.max(), w: c.w} }

func (c UintCodec) encodeAny(v any) (uint64, error) {
	var x uint64
	switch t := v.(type) {
	case Uint:
		x = t.v
	case uint64:
		x = t
	default:
		return 0, errors.TypeMismatch(errors.PhaseEncode, nil, typeName(v), c.String())
	}
	if x > c.max() {
		return 0, errors.WidthOverflow(errors.PhaseEncode, nil, x, int(c.w))
	}
	return x, nil
}

func (c UintCodec) decodeAny(raw uint64) (any, error) {
	return c.Decode(raw), nil
}

func (UintCodec) validate(uint64) error {
	return nil
}

func (c UintCodec) sentinelBits(s Sentinel) uint64 {
	if s == SentinelOnes || s == SentinelMax {
		return c.max()
	}
	return 0
}

func (c UintCodec) formatBits(raw uint64) string {
	return strconv.FormatUint(raw&c.max(), 10)
}

func (c UintCodec) parseBits(s string) (uint64, error) {
	x, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, errors.ParseFailed(c.String(), err)
	}
	if x > c.max() {
		return 0, errors.WidthOverflow(errors.PhaseParse, nil, x, int(c.w))
	}
	return x, nil
}

// IntCodec encodes two's complement signed integers of one width.
type IntCodec struct {
	w uint8
}

// NewIntType returns the codec for width-bit signed integers.
func NewIntType(width int) (IntCodec, error) {
	if err := checkWidth(width); err != nil {
		return IntCodec{}, err
	}
	return IntCodec{w: uint8(width)}, nil
}

// IntType is like NewIntType but panics on an invalid width.
func IntType(width int) IntCodec {
	c, err := NewIntType(width)
	if err != nil {
		panic(err)
	}
	return c
}

func (c IntCodec) Kind() Kind     { return KindInt }
func (c IntCodec) BitLen() int    { return int(c.w) }
func (c IntCodec) String() string { return "s" + strconv.Itoa(int(c.w)) }

func (c IntCodec) fits(v int64) bool {
	return v >= bits.MinSigned(int(c.w)) && v <= bits.MaxSigned(int(c.w))
}

// New panics with a width overflow error when v is out of range.
func (c IntCodec) New(v int64) Int {
	i, ok := c.TryNew(v)
	if !ok {
		panic(errors.WidthOverflow(errors.PhaseEncode, nil, v, int(c.w)))
	}
	return i
}

func (c IntCodec) TryNew(v int64) (Int, bool) {
	if !c.fits(v) {
		return Int{}, false
	}
	return Int{v: v, w: c.w}, true
}

func (c IntCodec) Encode(i Int) uint64 {
	if !c.fits(i.v) {
		panic(errors.WidthOverflow(errors.PhaseEncode, nil, i.v, int(c.w)))
	}
	return bits.Truncate(i.v, int(c.w))
}

func (c IntCodec) TryDecode(raw uint64) (Int, bool) {
	return c.Decode(raw), true
}

func (c IntCodec) Decode(raw uint64) Int {
	return Int{v: bits.SignExtend(raw, int(c.w)), w: c.w}
}

func (c IntCodec) Zeroes() Int { return Int{w: c.w} }
func (c IntCodec) Ones() Int   { return Int{v: -1, w: c.w} }
func (c IntCodec) Min() Int    { return Int{v: bits.MinSigned(int(c.w)), w: c.w} }
func (c IntCodec) Max() Int    { return Int{v: bits.MaxSigned(int(c.w)), w: c.w} }

func (c IntCodec) encodeAny(v any) (uint64, error) {
	var x int64
	switch t := v.(type) {
	case Int:
		x = t.v
	case int64:
		x = t
	default:
		return 0, errors.TypeMismatch(errors.PhaseEncode, nil, typeName(v), c.String())
	}
	if !c.fits(x) {
		return 0, errors.WidthOverflow(errors.PhaseEncode, nil, x, int(c.w))
	}
	return bits.Truncate(x, int(c.w)), nil
}

func (c IntCodec) decodeAny(raw uint64) (any, error) {
	return c.Decode(raw), nil
}

func (IntCodec) validate(uint64) error {
	return nil
}

func (c IntCodec) sentinelBits(s Sentinel) uint64 {
	n := int(c.w)
	switch s {
	case SentinelOnes:
		return bits.Mask(n)
	case SentinelMin:
		return bits.Truncate(bits.MinSigned(n), n)
	case SentinelMax:
		return bits.Truncate(bits.MaxSigned(n), n)
	}
	return 0
}

func (c IntCodec) formatBits(raw uint64) string {
	return strconv.FormatInt(bits.SignExtend(raw, int(c.w)), 10)
}

func (c IntCodec) parseBits(s string) (uint64, error) {
	x, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, errors.ParseFailed(c.String(), err)
	}
	if !c.fits(x) {
		return 0, errors.WidthOverflow(errors.PhaseParse, nil, x, int(c.w))
	}
	return bits.Truncate(x, int(c.w)), nil
}

// UintFrom converts any Go integer into a Uint of c's width. It reports false
// for negative values and values that do not fit.
func UintFrom[T constraints.Integer](c UintCodec, v T) (Uint, bool) {
	if v < 0 {
		return Uint{}, false
	}
	return c.TryNew(uint64(v))
}

// IntFrom converts any Go integer into an Int of c's width.
func IntFrom[T constraints.Integer](c IntCodec, v T) (Int, bool) {
	if v > 0 && int64(v) < 0 {
		return Int{}, false
	}
	return c.TryNew(int64(v))
}

func typeName(v any) string {
	switch t := v.(type) {
	case nil:
		return "nil"
	case Struct:
		if t.layout != nil {
			return t.layout.String()
		}
	}
	return fmt.Sprintf("%T", v)
}
