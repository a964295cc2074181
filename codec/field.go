package codec

import (
	"fmt"

	"github.com/wippyai/bitfield/codec/internal/bits"
	"github.com/wippyai/bitfield/errors"
)

// Field is a typed accessor for one field of a layout. Its methods work on the
// raw bits directly and do not allocate.
type Field[T any] struct {
	layout *Layout
	codec  Codec[T]
	info   FieldInfo
}

// FieldOf returns the accessor for the field called name. T must be the type
// the field's codec decodes to.
func FieldOf[T any](l *Layout, name string) (Field[T], error) {
	info, err := l.lookup(errors.PhaseSchema, name)
	if err != nil {
		return Field[T]{}, err
	}
	c, ok := info.Type.(Codec[T])
	if !ok {
		var zero T
		return Field[T]{}, errors.TypeMismatch(errors.PhaseSchema, []string{name},
			fmt.Sprintf("accessor for %T", zero), info.Type.String())
	}
	return Field[T]{layout: l, codec: c, info: info}, nil
}

// FieldAny returns an accessor for the field called name whose values are
// untyped: the dynamic types are those Struct.Get returns. It serves schemas
// that are only known at run time.
func FieldAny(l *Layout, name string) (Field[any], error) {
	info, err := l.lookup(errors.PhaseSchema, name)
	if err != nil {
		return Field[any]{}, err
	}
	return Field[any]{layout: l, codec: anyCodec{info.Type}, info: info}, nil
}

// anyCodec binds a Type to Codec[any].
type anyCodec struct {
	Type
}

func (c anyCodec) Encode(v any) uint64 {
	raw, err := c.encodeAny(v)
	if err != nil {
		panic(err)
	}
	return raw
}

func (c anyCodec) TryDecode(raw uint64) (any, bool) {
	v, err := c.decodeAny(raw & bits.Mask(c.BitLen()))
	return v, err == nil
}

func (c anyCodec) Decode(raw uint64) any {
	v, err := c.decodeAny(raw & bits.Mask(c.BitLen()))
	if err != nil {
		panic(err)
	}
	return v
}

func (c anyCodec) Zeroes() any { return c.Decode(c.sentinelBits(SentinelZeroes)) }
func (c anyCodec) Ones() any   { return c.Decode(c.sentinelBits(SentinelOnes)) }
func (c anyCodec) Min() any    { return c.Decode(c.sentinelBits(SentinelMin)) }
func (c anyCodec) Max() any    { return c.Decode(c.sentinelBits(SentinelMax)) }

// MustField is like FieldOf but panics on error.
func MustField[T any](l *Layout, name string) Field[T] {
	f, err := FieldOf[T](l, name)
	if err != nil {
		panic(err)
	}
	return f
}

func (f Field[T]) Name() string    { return f.info.Name }
func (f Field[T]) Offset() int     { return f.info.Offset }
func (f Field[T]) Len() int        { return f.info.Len }
func (f Field[T]) Info() FieldInfo { return f.info }
func (f Field[T]) Codec() Codec[T] { return f.codec }
func (f Field[T]) Layout() *Layout { return f.layout }

func (f Field[T]) check(phase errors.Phase, s Struct) {
	if s.layout != f.layout {
		panic(errors.TypeMismatch(phase, []string{f.info.Name}, typeName(s), f.layout.name))
	}
}

// Get decodes the field from s.
func (f Field[T]) Get(s Struct) T {
	f.check(errors.PhaseDecode, s)
	return f.codec.Decode(bits.Extract(s.bits, f.info.Offset, f.info.Len))
}

// GetNoShift returns the field's bits left at their position in s.
func (f Field[T]) GetNoShift(s Struct) uint64 {
	f.check(errors.PhaseDecode, s)
	return bits.ExtractNoShift(s.bits, f.info.Offset, f.info.Len)
}

// Set replaces the field in s, preserving every other bit.
func (f Field[T]) Set(s *Struct, v T) {
	f.check(errors.PhaseEncode, *s)
	s.bits = bits.Modify(s.bits, f.info.Offset, f.info.Len, f.codec.Encode(v))
}

// With returns a copy of s with the field replaced.
func (f Field[T]) With(s Struct, v T) Struct {
	f.Set(&s, v)
	return s
}

// From returns the field's value from fs.
func (f Field[T]) From(fs Fields) (T, bool) {
	if fs.layout != f.layout {
		var zero T
		return zero, false
	}
	v, ok := fs.values[f.info.Index].(T)
	return v, ok
}

// Put stores v in fs. It panics if v cannot be encoded.
func (f Field[T]) Put(fs *Fields, v T) {
	if fs.layout != f.layout {
		panic(errors.TypeMismatch(errors.PhaseEncode, []string{f.info.Name}, "fields of another layout", f.layout.name))
	}
	f.codec.Encode(v)
	fs.values[f.info.Index] = v
}
