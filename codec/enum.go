package codec

import (
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/exp/constraints"

	"github.com/wippyai/bitfield/codec/internal/bits"
	"github.com/wippyai/bitfield/codec/internal/layout"
	"github.com/wippyai/bitfield/errors"
)

// EnumCase is one variant of an enumeration.
type EnumCase[T constraints.Integer] struct {
	Name  string
	Value T
}

// EnumOptions configures NewEnum.
type EnumOptions struct {
	// Name is used in errors and formatting.
	Name string
	// Bits fixes the field width. Zero derives it from the largest discriminant.
	Bits int
}

// Enum maps a closed set of discriminants to variants. Discriminants may be
// sparse; bit patterns that match no variant are rejected on decode.
type Enum[T constraints.Integer] struct {
	name  string
	bits  int
	cases []EnumCase[T] // sorted by discriminant
	discs []uint64
}

// NewEnum builds an enumeration from its variants. Variant discriminants must be
// non-negative and distinct.
func NewEnum[T constraints.Integer](cases []EnumCase[T], opts EnumOptions) (*Enum[T], error) {
	name := opts.Name
	if name == "" {
		name = "enum"
	}
	if len(cases) == 0 {
		return nil, errors.New(errors.PhaseSchema, errors.KindInvalidInput).
			Type(name).
			Detail("enum has no variants").
			Build()
	}

	e := &Enum[T]{
		name:  name,
		cases: slices.Clone(cases),
	}
	for _, c := range e.cases {
		if c.Value < 0 {
			return nil, errors.New(errors.PhaseSchema, errors.KindInvalidInput).
				Type(name).
				Value(c.Value).
				Detail("variant %q has negative discriminant", c.Name).
				Build()
		}
	}
	slices.SortStableFunc(e.cases, func(a, b EnumCase[T]) int {
		switch {
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		}
		return 0
	})

	e.discs = make([]uint64, len(e.cases))
	for i, c := range e.cases {
		e.discs[i] = uint64(c.Value)
		if i > 0 && e.discs[i] == e.discs[i-1] {
			return nil, errors.DuplicateDiscriminant(name, e.discs[i])
		}
	}

	required := bits.Required(e.discs[len(e.discs)-1])
	switch {
	case opts.Bits == 0:
		e.bits = required
	case opts.Bits > layout.MaxBits:
		return nil, errors.WidthExceedsStorage([]string{name}, opts.Bits)
	case opts.Bits < required:
		return nil, errors.New(errors.PhaseSchema, errors.KindWidthOverflow).
			Type(name).
			Value(opts.Bits).
			Detail("discriminant %d needs %d bits, declared %d", e.discs[len(e.discs)-1], required, opts.Bits).
			Build()
	default:
		e.bits = opts.Bits
	}

	Logger().Debug("enum resolved",
		zap.String("name", name),
		zap.Int("variants", len(e.cases)),
		zap.Int("bits", e.bits))

	return e, nil
}

// MustEnum is like NewEnum but panics on error.
func MustEnum[T constraints.Integer](cases []EnumCase[T], opts EnumOptions) *Enum[T] {
	e, err := NewEnum(cases, opts)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Enum[T]) Kind() Kind     { return KindEnum }
func (e *Enum[T]) BitLen() int    { return e.bits }
func (e *Enum[T]) String() string { return e.name }

// Cases returns the variants ordered by discriminant.
func (e *Enum[T]) Cases() []EnumCase[T] {
	return slices.Clone(e.cases)
}

// Exhaustive reports whether every bit pattern of the enum's width is a variant.
func (e *Enum[T]) Exhaustive() bool {
	return e.bits < 64 && uint64(len(e.cases)) == uint64(1)<<uint(e.bits)
}

func (e *Enum[T]) lookup(raw uint64) (int, bool) {
	return slices.BinarySearch(e.discs, raw)
}

// Contains reports whether v is a declared discriminant.
func (e *Enum[T]) Contains(v T) bool {
	if v < 0 {
		return false
	}
	_, ok := e.lookup(uint64(v))
	return ok
}

// Name returns the variant name of v, or its number when v is not declared.
func (e *Enum[T]) Name(v T) string {
	if v >= 0 {
		if i, ok := e.lookup(uint64(v)); ok {
			return e.cases[i].Name
		}
	}
	if v < 0 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatUint(uint64(v), 10)
}

// Value returns the discriminant of the variant called name.
func (e *Enum[T]) Value(name string) (T, bool) {
	for _, c := range e.cases {
		if c.Name == name {
			return c.Value, true
		}
	}
	return 0, false
}

// Encode panics when v is not a declared variant.
func (e *Enum[T]) Encode(v T) uint64 {
	if !e.Contains(v) {
		panic(errors.InvalidDiscriminant(errors.PhaseEncode, nil, uint64(v), e.name))
	}
	return uint64(v)
}

// TryDecode looks raw up in the variant table. Patterns with no variant are
// absent regardless of how many bits are in use.
func (e *Enum[T]) TryDecode(raw uint64) (T, bool) {
	i, ok := e.lookup(raw)
	if !ok {
		return 0, false
	}
	return e.cases[i].Value, true
}

func (e *Enum[T]) Decode(raw uint64) T {
	v, ok := e.TryDecode(raw)
	if !ok {
		panic(errors.InvalidDiscriminant(errors.PhaseDecode, nil, raw, e.name))
	}
	return v
}

// Zeroes and Min are the variant with the smallest discriminant.
func (e *Enum[T]) Zeroes() T { return e.cases[0].Value }
func (e *Enum[T]) Min() T    { return e.cases[0].Value }

// Ones and Max are the variant with the largest discriminant.
func (e *Enum[T]) Ones() T { return e.cases[len(e.cases)-1].Value }
func (e *Enum[T]) Max() T  { return e.cases[len(e.cases)-1].Value }

func (e *Enum[T]) encodeAny(v any) (uint64, error) {
	x, ok := v.(T)
	if !ok {
		return 0, errors.TypeMismatch(errors.PhaseEncode, nil, typeName(v), e.name)
	}
	if !e.Contains(x) {
		return 0, errors.InvalidDiscriminant(errors.PhaseEncode, nil, uint64(x), e.name)
	}
	return uint64(x), nil
}

func (e *Enum[T]) decodeAny(raw uint64) (any, error) {
	v, ok := e.TryDecode(raw)
	if !ok {
		return nil, errors.InvalidDiscriminant(errors.PhaseDecode, nil, raw, e.name)
	}
	return v, nil
}

func (e *Enum[T]) validate(raw uint64) error {
	if _, ok := e.lookup(raw); !ok {
		return errors.InvalidDiscriminant(errors.PhaseDecode, nil, raw, e.name)
	}
	return nil
}

func (e *Enum[T]) sentinelBits(s Sentinel) uint64 {
	if s == SentinelOnes || s == SentinelMax {
		return e.discs[len(e.discs)-1]
	}
	return e.discs[0]
}

func (e *Enum[T]) formatBits(raw uint64) string {
	if i, ok := e.lookup(raw); ok {
		return e.cases[i].Name
	}
	return "<invalid " + strconv.FormatUint(raw, 10) + ">"
}

func (e *Enum[T]) parseBits(s string) (uint64, error) {
	if v, ok := e.Value(s); ok {
		return uint64(v), nil
	}
	x, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		names := make([]string, len(e.cases))
		for i, c := range e.cases {
			names[i] = c.Name
		}
		return 0, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Type(e.name).
			Detail("%q is not one of %s", s, strings.Join(names, ", ")).
			Build()
	}
	if _, ok := e.lookup(x); !ok {
		return 0, errors.InvalidDiscriminant(errors.PhaseParse, nil, x, e.name)
	}
	return x, nil
}
