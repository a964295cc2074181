package codec

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/bitfield/codec/internal/bits"
	"github.com/wippyai/bitfield/codec/internal/layout"
	"github.com/wippyai/bitfield/errors"
)

// FieldDesc declares one field of a layout.
type FieldDesc struct {
	Name string
	Type Type
}

// FieldInfo is a resolved field: its position in declaration order and the bit
// range it occupies, counted from the least significant bit.
type FieldInfo struct {
	Type   Type
	Name   string
	Index  int
	Offset int
	Len    int
}

// Options configures NewLayout.
type Options struct {
	// Name is used in errors and formatting.
	Name string
	// Bits, when non-zero, is the declared total width. It must equal the sum
	// of the field widths.
	Bits int
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{Name: "struct"}
}

// Layout is a resolved bitfield schema. It is immutable and safe for concurrent
// use. A *Layout is also the Codec of its Struct values, so layouts nest.
//
// Layouts are compared by identity: a Struct, Fields, Field or Cell belongs to
// the *Layout that produced it, and two layouts built from the same field list
// do not accept each other's values. Build a layout once and share it.
type Layout struct {
	index     map[string]int
	name      string
	fields    []FieldInfo
	sentinels [4]uint64
	bits      int
	storage   Width
}

// NewLayout assigns offsets to fields in declaration order, least significant
// bit first, and selects the storage width.
func NewLayout(fields []FieldDesc, opts Options) (*Layout, error) {
	name := opts.Name
	if name == "" {
		name = DefaultOptions().Name
	}

	l := &Layout{
		name:   name,
		fields: make([]FieldInfo, len(fields)),
		index:  make(map[string]int, len(fields)),
	}

	widths := make([]int, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			return nil, errors.New(errors.PhaseSchema, errors.KindInvalidInput).
				Type(name).
				Detail("field %d has no name", i).
				Build()
		}
		if f.Type == nil {
			return nil, errors.New(errors.PhaseSchema, errors.KindInvalidInput).
				Path(f.Name).
				Type(name).
				Detail("field has no type").
				Build()
		}
		if _, dup := l.index[f.Name]; dup {
			return nil, errors.New(errors.PhaseSchema, errors.KindDuplicateField).
				Path(f.Name).
				Type(name).
				Detail("field %q declared more than once", f.Name).
				Build()
		}
		l.index[f.Name] = i
		widths[i] = f.Type.BitLen()
	}

	info, err := layout.Calc(widths)
	if err != nil {
		if e, ok := err.(*errors.Error); ok && e.Type == "" {
			cp := *e
			cp.Type = name
			return nil, &cp
		}
		return nil, err
	}
	if opts.Bits != 0 && opts.Bits != info.Bits {
		return nil, errors.SchemaWidthMismatch([]string{name}, opts.Bits, info.Bits)
	}

	for i, f := range fields {
		l.fields[i] = FieldInfo{
			Name:   f.Name,
			Index:  i,
			Offset: info.Offsets[i],
			Len:    widths[i],
			Type:   f.Type,
		}
	}
	l.bits = info.Bits
	l.storage = Width(info.Storage)

	for s := SentinelZeroes; s <= SentinelMax; s++ {
		var raw uint64
		for _, f := range l.fields {
			raw |= f.Type.sentinelBits(s) << uint(f.Offset)
		}
		l.sentinels[s] = raw
	}

	Logger().Debug("layout resolved",
		zap.String("name", name),
		zap.Int("fields", len(l.fields)),
		zap.Int("bits", l.bits),
		zap.Stringer("storage", l.storage))

	return l, nil
}

// MustLayout is like NewLayout but panics on error.
func MustLayout(fields []FieldDesc, opts Options) *Layout {
	l, err := NewLayout(fields, opts)
	if err != nil {
		panic(err)
	}
	return l
}

func (l *Layout) Kind() Kind     { return KindStruct }
func (l *Layout) BitLen() int    { return l.bits }
func (l *Layout) String() string { return l.name }

// Name returns the layout name.
func (l *Layout) Name() string { return l.name }

// Bits returns the total width of all fields.
func (l *Layout) Bits() int { return l.bits }

// StorageWidth returns the width of the integer the layout is stored in.
func (l *Layout) StorageWidth() Width { return l.storage }

// NumFields returns the number of fields.
func (l *Layout) NumFields() int { return len(l.fields) }

// Fields returns the resolved fields in declaration order.
func (l *Layout) Fields() []FieldInfo {
	out := make([]FieldInfo, len(l.fields))
	copy(out, l.fields)
	return out
}

// Field returns the resolved field called name.
func (l *Layout) Field(name string) (FieldInfo, bool) {
	i, ok := l.index[name]
	if !ok {
		return FieldInfo{}, false
	}
	return l.fields[i], true
}

func (l *Layout) lookup(phase errors.Phase, name string) (FieldInfo, error) {
	i, ok := l.index[name]
	if !ok {
		return FieldInfo{}, errors.FieldUnknown(phase, []string{l.name}, name)
	}
	return l.fields[i], nil
}

// DecodeBits validates every field of raw and reports the first failure with
// the path of the failing field. Bits above Bits() are kept but not inspected.
func (l *Layout) DecodeBits(raw uint64) (Struct, error) {
	raw &= l.storage.Mask()
	if err := l.validate(raw); err != nil {
		return Struct{}, err
	}
	return Struct{layout: l, bits: raw}, nil
}

// TryFromBits reports false when any field of raw is not a valid value.
func (l *Layout) TryFromBits(raw uint64) (Struct, bool) {
	s, err := l.DecodeBits(raw)
	return s, err == nil
}

// FromBits panics with the first failing field's error.
func (l *Layout) FromBits(raw uint64) Struct {
	s, err := l.DecodeBits(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// StrictFromBits is DecodeBits that also rejects set bits above Bits().
func (l *Layout) StrictFromBits(raw uint64) (Struct, error) {
	if raw&^bits.Mask(l.bits) != 0 {
		return Struct{}, errors.New(errors.PhaseDecode, errors.KindWidthOverflow).
			Type(l.name).
			Value(raw).
			Detail("bits set above bit %d", l.bits-1).
			Build()
	}
	return l.DecodeBits(raw)
}

// ToBits returns the raw storage value of s.
func (l *Layout) ToBits(s Struct) uint64 {
	l.check(errors.PhaseEncode, s)
	return s.bits
}

func (l *Layout) check(phase errors.Phase, s Struct) {
	if s.layout != l {
		panic(errors.TypeMismatch(phase, nil, typeName(s), l.name))
	}
}

func (l *Layout) Encode(s Struct) uint64              { return l.ToBits(s) }
func (l *Layout) TryDecode(raw uint64) (Struct, bool) { return l.TryFromBits(raw) }
func (l *Layout) Decode(raw uint64) Struct            { return l.FromBits(raw) }

// Zeroes has every field at its own Zeroes sentinel. For layouts containing
// sparse enums this is not the all-zero bit pattern.
func (l *Layout) Zeroes() Struct { return Struct{layout: l, bits: l.sentinels[SentinelZeroes]} }
func (l *Layout) Ones() Struct   { return Struct{layout: l, bits: l.sentinels[SentinelOnes]} }
func (l *Layout) Min() Struct    { return Struct{layout: l, bits: l.sentinels[SentinelMin]} }
func (l *Layout) Max() Struct    { return Struct{layout: l, bits: l.sentinels[SentinelMax]} }

func (l *Layout) encodeAny(v any) (uint64, error) {
	s, ok := v.(Struct)
	if !ok || s.layout != l {
		return 0, errors.TypeMismatch(errors.PhaseEncode, nil, typeName(v), l.name)
	}
	return s.bits, nil
}

func (l *Layout) decodeAny(raw uint64) (any, error) {
	return l.DecodeBits(raw)
}

func (l *Layout) validate(raw uint64) error {
	for _, f := range l.fields {
		if err := f.Type.validate(bits.Extract(raw, f.Offset, f.Len)); err != nil {
			return withPath(err, f.Name)
		}
	}
	return nil
}

func (l *Layout) sentinelBits(s Sentinel) uint64 {
	return l.sentinels[s]
}

func (l *Layout) formatBits(raw uint64) string {
	var b strings.Builder
	b.WriteString(l.name)
	b.WriteByte('{')
	for i, f := range l.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Type.formatBits(bits.Extract(raw, f.Offset, f.Len)))
	}
	b.WriteByte('}')
	return b.String()
}

// parseBits accepts the raw value of a nested struct as a number.
func (l *Layout) parseBits(s string) (uint64, error) {
	x, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, errors.ParseFailed(l.name, err)
	}
	if x&^bits.Mask(l.bits) != 0 {
		return 0, errors.WidthOverflow(errors.PhaseParse, nil, x, l.bits)
	}
	if err := l.validate(x); err != nil {
		return 0, err
	}
	return x, nil
}

func withPath(err error, path ...string) error {
	if e, ok := err.(*errors.Error); ok {
		return e.WithPath(path...)
	}
	return err
}
