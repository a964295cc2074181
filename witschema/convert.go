package witschema

import (
	"sync"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/bitfield/codec"
	"github.com/wippyai/bitfield/errors"
)

// Converter turns WIT types into bitfield types. Each type definition is
// converted once, so a record used by several fields yields one shared layout.
type Converter struct {
	cache map[*wit.TypeDef]codec.Type
	mu    sync.Mutex
}

// NewConverter creates a converter with an empty cache.
func NewConverter() *Converter {
	return &Converter{cache: make(map[*wit.TypeDef]codec.Type)}
}

// FromType converts t with a fresh converter.
func FromType(t wit.Type) (codec.Type, error) {
	return NewConverter().FromType(t)
}

// Layout converts a record or flags definition with a fresh converter.
func Layout(td *wit.TypeDef) (*codec.Layout, error) {
	return NewConverter().Layout(td)
}

// FromType converts t to a bitfield type.
func (c *Converter) FromType(t wit.Type) (codec.Type, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.convert(t, nil)
}

// Layout converts a record or flags definition to a layout.
func (c *Converter) Layout(td *wit.TypeDef) (*codec.Layout, error) {
	t, err := c.FromType(td)
	if err != nil {
		return nil, err
	}
	l, ok := t.(*codec.Layout)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseLoad, []string{typeDefName(td, "")}, t.String(), "record or flags")
	}
	return l, nil
}

func (c *Converter) convert(t wit.Type, path []string) (codec.Type, error) {
	switch t := t.(type) {
	case wit.Bool:
		return codec.Bool, nil
	case wit.U8:
		return codec.U8, nil
	case wit.S8:
		return codec.I8, nil
	case wit.U16:
		return codec.U16, nil
	case wit.S16:
		return codec.I16, nil
	case wit.U32:
		return codec.U32, nil
	case wit.S32:
		return codec.I32, nil
	case wit.U64:
		return codec.U64, nil
	case wit.S64:
		return codec.I64, nil
	case *wit.TypeDef:
		if cached, ok := c.cache[t]; ok {
			return cached, nil
		}
		ct, err := c.convertTypeDef(t, path)
		if err != nil {
			return nil, err
		}
		c.cache[t] = ct
		return ct, nil
	case nil:
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Path(path...).
			Detail("missing WIT type").
			Build()
	default:
		return nil, errors.New(errors.PhaseLoad, errors.KindUnsupported).
			Path(path...).
			Detail("WIT type %T has no bitfield form", t).
			Build()
	}
}

func (c *Converter) convertTypeDef(td *wit.TypeDef, path []string) (codec.Type, error) {
	switch kind := td.Kind.(type) {
	case *wit.Record:
		name := typeDefName(td, "record")
		fields := make([]codec.FieldDesc, 0, len(kind.Fields))
		for _, f := range kind.Fields {
			ft, err := c.convert(f.Type, append(append([]string{}, path...), f.Name))
			if err != nil {
				return nil, err
			}
			fields = append(fields, codec.FieldDesc{Name: f.Name, Type: ft})
		}
		return c.layout(name, fields, path)

	case *wit.Flags:
		name := typeDefName(td, "flags")
		fields := make([]codec.FieldDesc, len(kind.Flags))
		for i, f := range kind.Flags {
			fields[i] = codec.FieldDesc{Name: f.Name, Type: codec.Bool}
		}
		return c.layout(name, fields, path)

	case *wit.Enum:
		name := typeDefName(td, "enum")
		cases := make([]codec.EnumCase[uint32], len(kind.Cases))
		for i, ec := range kind.Cases {
			cases[i] = codec.EnumCase[uint32]{Name: ec.Name, Value: uint32(i)}
		}
		e, err := codec.NewEnum(cases, codec.EnumOptions{Name: name})
		if err != nil {
			return nil, withPath(err, path)
		}
		Logger().Debug("converted WIT enum", zap.String("name", name), zap.Int("cases", len(cases)))
		return e, nil

	case wit.Type:
		return c.convert(kind, path)

	default:
		return nil, errors.New(errors.PhaseLoad, errors.KindUnsupported).
			Path(path...).
			Type(typeDefName(td, "")).
			Detail("WIT %T has no bitfield form", kind).
			Build()
	}
}

func (c *Converter) layout(name string, fields []codec.FieldDesc, path []string) (codec.Type, error) {
	l, err := codec.NewLayout(fields, codec.Options{Name: name})
	if err != nil {
		return nil, withPath(err, path)
	}
	Logger().Debug("converted WIT type",
		zap.String("name", name),
		zap.Int("fields", len(fields)),
		zap.Int("bits", l.Bits()))
	return l, nil
}

func typeDefName(td *wit.TypeDef, fallback string) string {
	if td != nil && td.Name != nil {
		return *td.Name
	}
	return fallback
}

func withPath(err error, path []string) error {
	if e, ok := err.(*errors.Error); ok && len(path) > 0 {
		return e.WithPath(path...)
	}
	return err
}
