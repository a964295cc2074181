package codec

import (
	"github.com/wippyai/bitfield/codec/internal/bits"
	"github.com/wippyai/bitfield/errors"
)

// Struct is a decoded bitfield value: a layout and the raw bits it reads them
// from. Structs are immutable values and compare equal when their layout and
// bits are equal. The zero Struct has no layout and is not usable.
type Struct struct {
	layout *Layout
	bits   uint64
}

// Layout returns the layout s was decoded with.
func (s Struct) Layout() *Layout { return s.layout }

// Bits returns the raw storage value.
func (s Struct) Bits() uint64 { return s.bits }

// Valid reports whether s was produced by a layout.
func (s Struct) Valid() bool { return s.layout != nil }

func (s Struct) field(phase errors.Phase, name string) (FieldInfo, error) {
	if s.layout == nil {
		return FieldInfo{}, errors.InvalidInput(phase, "struct value has no layout")
	}
	return s.layout.lookup(phase, name)
}

// Get decodes the field called name. The dynamic type of the result is the one
// the field's codec decodes to: bool, Uint, Int, a native integer, the enum's
// value type, or Struct.
func (s Struct) Get(name string) (any, error) {
	f, err := s.field(errors.PhaseDecode, name)
	if err != nil {
		return nil, err
	}
	v, err := f.Type.decodeAny(bits.Extract(s.bits, f.Offset, f.Len))
	if err != nil {
		return nil, withPath(err, f.Name)
	}
	return v, nil
}

// GetNoShift returns the bits of the field called name left at their position
// in the storage value.
func (s Struct) GetNoShift(name string) (uint64, error) {
	f, err := s.field(errors.PhaseDecode, name)
	if err != nil {
		return 0, err
	}
	return bits.ExtractNoShift(s.bits, f.Offset, f.Len), nil
}

// With returns a copy of s with the field called name replaced by v.
func (s Struct) With(name string, v any) (Struct, error) {
	f, err := s.field(errors.PhaseEncode, name)
	if err != nil {
		return Struct{}, err
	}
	raw, err := f.Type.encodeAny(v)
	if err != nil {
		return Struct{}, withPath(err, f.Name)
	}
	s.bits = bits.Modify(s.bits, f.Offset, f.Len, raw)
	return s, nil
}

// Set replaces the field called name in place. All other bits are preserved.
func (s *Struct) Set(name string, v any) error {
	ns, err := s.With(name, v)
	if err != nil {
		return err
	}
	*s = ns
	return nil
}

// ToFields decomposes s into one value per field.
func (s Struct) ToFields() Fields {
	if s.layout == nil {
		return Fields{}
	}
	fs := Fields{layout: s.layout, values: make([]any, len(s.layout.fields))}
	for i, f := range s.layout.fields {
		// s was validated when it was decoded.
		fs.values[i], _ = f.Type.decodeAny(bits.Extract(s.bits, f.Offset, f.Len))
	}
	return fs
}

func (s Struct) String() string {
	if s.layout == nil {
		return "<invalid>"
	}
	return s.layout.formatBits(s.bits)
}
