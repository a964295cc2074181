package codec

import (
	"github.com/wippyai/bitfield/codec/internal/bits"
	"github.com/wippyai/bitfield/errors"
)

// Fields holds one decoded value per field of a layout, in declaration order.
// Nested struct fields hold a Struct. Copies of a Fields share their values.
type Fields struct {
	layout *Layout
	values []any
}

// NewFields returns an empty Fields for l. Every field must be set before the
// value is passed to FromFields.
func (l *Layout) NewFields() Fields {
	return Fields{layout: l, values: make([]any, len(l.fields))}
}

// FromFields encodes every field and combines them into one value.
func (l *Layout) FromFields(fs Fields) (Struct, error) {
	if fs.layout != l {
		name := "fields without layout"
		if fs.layout != nil {
			name = "fields of " + fs.layout.name
		}
		return Struct{}, errors.TypeMismatch(errors.PhaseEncode, nil, name, l.name)
	}

	var raw uint64
	for i, f := range l.fields {
		v := fs.values[i]
		if v == nil {
			return Struct{}, errors.FieldMissing(errors.PhaseEncode, []string{l.name}, f.Name)
		}
		enc, err := f.Type.encodeAny(v)
		if err != nil {
			return Struct{}, withPath(err, f.Name)
		}
		raw = bits.Modify(raw, f.Offset, f.Len, enc)
	}
	return Struct{layout: l, bits: raw}, nil
}

// Layout returns the layout the fields belong to.
func (fs Fields) Layout() *Layout { return fs.layout }

// Len returns the number of fields.
func (fs Fields) Len() int { return len(fs.values) }

// At returns the value of the i-th field, or nil when it is unset.
func (fs Fields) At(i int) any { return fs.values[i] }

// Get returns the value of the field called name.
func (fs Fields) Get(name string) (any, bool) {
	if fs.layout == nil {
		return nil, false
	}
	i, ok := fs.layout.index[name]
	if !ok || fs.values[i] == nil {
		return nil, false
	}
	return fs.values[i], true
}

// Set stores v for the field called name after checking that the field's codec
// can encode it.
func (fs *Fields) Set(name string, v any) error {
	if fs.layout == nil {
		return errors.InvalidInput(errors.PhaseEncode, "fields have no layout")
	}
	f, err := fs.layout.lookup(errors.PhaseEncode, name)
	if err != nil {
		return err
	}
	if _, err := f.Type.encodeAny(v); err != nil {
		return withPath(err, f.Name)
	}
	fs.values[f.Index] = v
	return nil
}
