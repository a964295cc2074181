package codec

import (
	"reflect"
	"strconv"

	"golang.org/x/exp/constraints"

	"github.com/wippyai/bitfield/codec/internal/bits"
	"github.com/wippyai/bitfield/errors"
)

// NativeCodec stores a Go integer type using all of its bits. Signed types use
// two's complement.
type NativeCodec[T constraints.Integer] struct {
	w      uint8
	signed bool
}

// Native returns the codec for T. T's size must not exceed 64 bits.
func Native[T constraints.Integer]() NativeCodec[T] {
	rt := reflect.TypeFor[T]()
	var c NativeCodec[T]
	c.w = uint8(rt.Bits())
	switch rt.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		c.signed = true
	}
	return c
}

var (
	U8  = Native[uint8]()
	U16 = Native[uint16]()
	U32 = Native[uint32]()
	U64 = Native[uint64]()
	I8  = Native[int8]()
	I16 = Native[int16]()
	I32 = Native[int32]()
	I64 = Native[int64]()
)

// info lets the zero NativeCodec behave like Native[T]().
func (c NativeCodec[T]) info() (int, bool) {
	if c.w == 0 {
		c = Native[T]()
	}
	return int(c.w), c.signed
}

func (c NativeCodec[T]) Kind() Kind {
	n, signed := c.info()
	switch {
	case n == 8 && signed:
		return KindS8
	case n == 8:
		return KindU8
	case n == 16 && signed:
		return KindS16
	case n == 16:
		return KindU16
	case n == 32 && signed:
		return KindS32
	case n == 32:
		return KindU32
	case signed:
		return KindS64
	}
	return KindU64
}

func (c NativeCodec[T]) BitLen() int {
	n, _ := c.info()
	return n
}

func (c NativeCodec[T]) String() string {
	return c.Kind().String()
}

func (c NativeCodec[T]) Encode(v T) uint64 {
	n, signed := c.info()
	if signed {
		return bits.Truncate(int64(v), n)
	}
	return uint64(v) & bits.Mask(n)
}

func (c NativeCodec[T]) TryDecode(raw uint64) (T, bool) {
	return c.Decode(raw), true
}

func (c NativeCodec[T]) Decode(raw uint64) T {
	n, signed := c.info()
	if signed {
		return T(bits.SignExtend(raw, n))
	}
	return T(raw & bits.Mask(n))
}

func (c NativeCodec[T]) Zeroes() T { return 0 }

// Ones is all bits set: the maximum for unsigned types and -1 for signed ones.
func (c NativeCodec[T]) Ones() T { return ^T(0) }

func (c NativeCodec[T]) Min() T {
	n, signed := c.info()
	if signed {
		return T(bits.MinSigned(n))
	}
	return 0
}

func (c NativeCodec[T]) Max() T {
	n, signed := c.info()
	if signed {
		return T(bits.MaxSigned(n))
	}
	return T(bits.Mask(n))
}

func (c NativeCodec[T]) encodeAny(v any) (uint64, error) {
	x, ok := v.(T)
	if !ok {
		return 0, errors.TypeMismatch(errors.PhaseEncode, nil, typeName(v), c.String())
	}
	return c.Encode(x), nil
}

func (c NativeCodec[T]) decodeAny(raw uint64) (any, error) {
	return c.Decode(raw), nil
}

func (NativeCodec[T]) validate(uint64) error {
	return nil
}

func (c NativeCodec[T]) sentinelBits(s Sentinel) uint64 {
	switch s {
	case SentinelOnes:
		return c.Encode(c.Ones())
	case SentinelMin:
		return c.Encode(c.Min())
	case SentinelMax:
		return c.Encode(c.Max())
	}
	return 0
}

func (c NativeCodec[T]) formatBits(raw uint64) string {
	n, signed := c.info()
	if signed {
		return strconv.FormatInt(bits.SignExtend(raw, n), 10)
	}
	return strconv.FormatUint(raw&bits.Mask(n), 10)
}

func (c NativeCodec[T]) parseBits(s string) (uint64, error) {
	n, signed := c.info()
	if signed {
		x, err := strconv.ParseInt(s, 0, n)
		if err != nil {
			return 0, errors.ParseFailed(c.String(), err)
		}
		return bits.Truncate(x, n), nil
	}
	x, err := strconv.ParseUint(s, 0, n)
	if err != nil {
		return 0, errors.ParseFailed(c.String(), err)
	}
	return x, nil
}
