package codec

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/bitfield/codec/internal/bits"
	"github.com/wippyai/bitfield/errors"
)

// TagName is the struct tag read by the Compiler.
const TagName = "bitfield"

var (
	uintType   = reflect.TypeFor[Uint]()
	intType    = reflect.TypeFor[Int]()
	structType = reflect.TypeFor[Struct]()
)

type fieldMode uint8

const (
	modeBool fieldMode = iota
	modeUnsigned
	modeSigned
	modeUint
	modeInt
	modeNested
)

type goField struct {
	typ    Type
	nested *plan
	index  []int
	mode   fieldMode
	offset int
	n      int
}

type plan struct {
	layout *Layout
	fields []goField
}

// Compiler builds layouts from Go struct types and converts between struct
// values and raw bits. Compiled types are cached; a Compiler is safe for
// concurrent use.
//
// Exported fields are laid out in declaration order. Field tags:
//
//	bitfield:"-"                  skip the field
//	bitfield:"bits=3"             integer width, default the Go type's size
//	bitfield:"enum=idle:0|run:10" closed set of values, names optional
//	bitfield:"name=mode"          field name in the layout
//
// A blank field `_ struct{} bitfield:"total=16"` declares the total width.
// Supported field types are bool, Go integers, Uint and Int (bits required)
// and nested structs following the same rules.
type Compiler struct {
	cache sync.Map // reflect.Type -> *plan
}

// NewCompiler creates a compiler with an empty cache.
func NewCompiler() *Compiler {
	return &Compiler{}
}

var defaultCompiler = NewCompiler()

// Marshal encodes a tagged struct with the default compiler.
func Marshal(v any) (uint64, error) {
	return defaultCompiler.Marshal(v)
}

// Unmarshal decodes raw into the tagged struct ptr points to with the default
// compiler.
func Unmarshal(raw uint64, ptr any) error {
	return defaultCompiler.Unmarshal(raw, ptr)
}

// Compile returns the layout of a struct type or pointer to struct type.
func (c *Compiler) Compile(rt reflect.Type) (*Layout, error) {
	p, err := c.plan(rt)
	if err != nil {
		return nil, err
	}
	return p.layout, nil
}

func (c *Compiler) plan(rt reflect.Type) (*plan, error) {
	if rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt == nil || rt.Kind() != reflect.Struct {
		return nil, errors.Unsupported(errors.PhaseCompile, "bitfield schema must be a struct type")
	}
	if cached, ok := c.cache.Load(rt); ok {
		return cached.(*plan), nil
	}

	Logger().Debug("compiling bitfield type", zap.Stringer("type", rt))

	p, err := c.compile(rt)
	if err != nil {
		return nil, err
	}
	actual, _ := c.cache.LoadOrStore(rt, p)
	return actual.(*plan), nil
}

func (c *Compiler) compile(rt reflect.Type) (*plan, error) {
	name := rt.Name()
	if name == "" {
		name = DefaultOptions().Name
	}
	opts := Options{Name: name}

	var (
		descs  []FieldDesc
		fields []goField
	)
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		tag, err := parseTag(sf.Tag.Get(TagName))
		if err != nil {
			return nil, withPath(err, name, sf.Name)
		}
		if sf.Name == "_" {
			if tag.total > 0 {
				opts.Bits = tag.total
			}
			continue
		}
		if tag.skip || !sf.IsExported() {
			continue
		}

		gf, err := c.field(sf, tag)
		if err != nil {
			return nil, withPath(err, name, sf.Name)
		}
		fieldName := sf.Name
		if tag.name != "" {
			fieldName = tag.name
		}
		descs = append(descs, FieldDesc{Name: fieldName, Type: gf.typ})
		fields = append(fields, gf)
	}

	l, err := NewLayout(descs, opts)
	if err != nil {
		return nil, err
	}
	for i, info := range l.fields {
		fields[i].offset = info.Offset
		fields[i].n = info.Len
	}
	return &plan{layout: l, fields: fields}, nil
}

func (c *Compiler) field(sf reflect.StructField, tag fieldTag) (goField, error) {
	gf := goField{index: sf.Index}
	ft := sf.Type

	switch {
	case ft == uintType || ft == intType:
		if tag.bits == 0 {
			return gf, errors.New(errors.PhaseCompile, errors.KindInvalidInput).
				Type(ft.String()).
				Detail("bits tag is required").
				Build()
		}
		if ft == uintType {
			t, err := NewUintType(tag.bits)
			gf.mode, gf.typ = modeUint, t
			return gf, err
		}
		t, err := NewIntType(tag.bits)
		gf.mode, gf.typ = modeInt, t
		return gf, err

	case ft == structType:
		return gf, errors.Unsupported(errors.PhaseCompile, "codec.Struct fields have no static layout; use a tagged struct type")

	case ft.Kind() == reflect.Bool:
		if tag.bits > 1 || tag.enum != nil {
			return gf, errors.InvalidInput(errors.PhaseCompile, "bool fields take no bits or enum tag")
		}
		gf.mode, gf.typ = modeBool, Bool
		return gf, nil

	case ft.Kind() == reflect.Struct:
		nested, err := c.plan(ft)
		if err != nil {
			return gf, err
		}
		gf.mode, gf.typ, gf.nested = modeNested, nested.layout, nested
		return gf, nil
	}

	var signed bool
	switch ft.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		signed = true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
	default:
		return gf, errors.Unsupported(errors.PhaseCompile, "field type "+ft.String())
	}
	gf.mode = modeUnsigned
	if signed {
		gf.mode = modeSigned
	}

	natural := ft.Bits()
	if tag.bits > natural {
		return gf, errors.New(errors.PhaseCompile, errors.KindWidthOverflow).
			Type(ft.String()).
			Value(tag.bits).
			Detail("%d bits do not fit in %s", tag.bits, ft).
			Build()
	}

	if tag.enum != nil {
		if signed {
			return gf, errors.Unsupported(errors.PhaseCompile, "enum tags on signed fields")
		}
		e, err := NewEnum(tag.enum, EnumOptions{Name: ft.Name(), Bits: tag.bits})
		if err != nil {
			return gf, err
		}
		if e.BitLen() > natural {
			return gf, errors.WidthOverflow(errors.PhaseCompile, nil, e.Max(), natural)
		}
		gf.typ = e
		return gf, nil
	}

	n := tag.bits
	if n == 0 {
		n = natural
	}
	var err error
	if signed {
		gf.typ, err = NewIntType(n)
	} else {
		gf.typ, err = NewUintType(n)
	}
	return gf, err
}

// Marshal encodes the tagged struct v, or the struct v points to.
func (c *Compiler) Marshal(v any) (uint64, error) {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return 0, errors.InvalidInput(errors.PhaseEncode, "marshal of nil value")
	}
	p, err := c.plan(rv.Type())
	if err != nil {
		return 0, err
	}
	return p.encode(rv)
}

// Unmarshal validates raw and decodes it into the struct ptr points to.
func (c *Compiler) Unmarshal(raw uint64, ptr any) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.InvalidInput(errors.PhaseDecode, "unmarshal target must be a non-nil pointer")
	}
	p, err := c.plan(rv.Type())
	if err != nil {
		return err
	}
	s, err := p.layout.DecodeBits(raw)
	if err != nil {
		return err
	}
	p.decode(s.bits, rv.Elem())
	return nil
}

func (p *plan) encode(rv reflect.Value) (uint64, error) {
	var raw uint64
	for i, f := range p.fields {
		fv := rv.FieldByIndex(f.index)
		var (
			enc uint64
			err error
		)
		switch f.mode {
		case modeBool:
			enc = Bool.Encode(fv.Bool())
		case modeUnsigned:
			enc, err = f.typ.encodeAny(fv.Uint())
		case modeSigned:
			enc, err = f.typ.encodeAny(fv.Int())
		case modeUint, modeInt:
			enc, err = f.typ.encodeAny(fv.Interface())
		case modeNested:
			enc, err = f.nested.encode(fv)
		}
		if err != nil {
			return 0, withPath(err, p.layout.fields[i].Name)
		}
		raw = bits.Modify(raw, f.offset, f.n, enc)
	}
	return raw, nil
}

// decode expects raw to have been validated against p.layout.
func (p *plan) decode(raw uint64, rv reflect.Value) {
	for _, f := range p.fields {
		field := bits.Extract(raw, f.offset, f.n)
		fv := rv.FieldByIndex(f.index)
		switch f.mode {
		case modeBool:
			fv.SetBool(field != 0)
		case modeUnsigned:
			fv.SetUint(field)
		case modeSigned:
			fv.SetInt(bits.SignExtend(field, f.n))
		case modeUint:
			fv.Set(reflect.ValueOf(f.typ.(UintCodec).Decode(field)))
		case modeInt:
			fv.Set(reflect.ValueOf(f.typ.(IntCodec).Decode(field)))
		case modeNested:
			f.nested.decode(field, fv)
		}
	}
}

type fieldTag struct {
	name  string
	enum  []EnumCase[uint64]
	bits  int
	total int
	skip  bool
}

func parseTag(tag string) (fieldTag, error) {
	var t fieldTag
	if tag == "" {
		return t, nil
	}
	if tag == "-" {
		t.skip = true
		return t, nil
	}

	for _, part := range strings.Split(tag, ",") {
		key, value, _ := strings.Cut(strings.TrimSpace(part), "=")
		switch key {
		case "bits", "total":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return t, errors.New(errors.PhaseCompile, errors.KindInvalidInput).
					Value(value).
					Detail("%s must be a positive integer", key).
					Build()
			}
			if key == "bits" {
				t.bits = n
			} else {
				t.total = n
			}
		case "name":
			t.name = value
		case "enum":
			cases, err := parseEnumCases(value)
			if err != nil {
				return t, err
			}
			t.enum = cases
		default:
			return t, errors.New(errors.PhaseCompile, errors.KindInvalidInput).
				Value(part).
				Detail("unknown tag option %q", key).
				Build()
		}
	}
	return t, nil
}

// parseEnumCases reads "a:1|b:5" or "1|5". Unnamed cases are named after their
// value.
func parseEnumCases(s string) ([]EnumCase[uint64], error) {
	var cases []EnumCase[uint64]
	for _, item := range strings.Split(s, "|") {
		item = strings.TrimSpace(item)
		name, num, named := strings.Cut(item, ":")
		if !named {
			num = item
		}
		v, err := strconv.ParseUint(num, 0, 64)
		if err != nil {
			return nil, errors.ParseFailed("enum case "+strconv.Quote(item), err)
		}
		if !named {
			name = strconv.FormatUint(v, 10)
		}
		cases = append(cases, EnumCase[uint64]{Name: name, Value: v})
	}
	return cases, nil
}
