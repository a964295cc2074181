package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/bitfield/codec"
	"github.com/wippyai/bitfield/errors"
)

// parseSchema reads a textual layout:
//
//	schema := field { "," field }
//	field  := name ":" type
//	type   := "bool" | "u" N | "s" N | "u8" .. "i64" native
//	        | "enum(" case { "|" case } ")" | "{" schema "}"
//	case   := [ name "=" ] N
//
// uN and sN are arbitrary-width integers; the native Go integer types are
// spelled u8n, u16n, u32n, u64n, i8, i16, i32 and i64.
func parseSchema(s, name string, total int) (*codec.Layout, error) {
	p := &schemaParser{src: s}
	l, err := p.layout(name, total)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return l, nil
}

type schemaParser struct {
	src string
	pos int
}

func (p *schemaParser) errorf(format string, args ...any) error {
	return errors.ParseFailed("schema", fmt.Errorf("at offset %d: "+format, append([]any{p.pos}, args...)...))
}

func (p *schemaParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *schemaParser) peek() byte {
	p.skipSpace()
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *schemaParser) expect(c byte) error {
	if p.peek() != c {
		return p.errorf("expected %q", c)
	}
	p.pos++
	return nil
}

func isIdent(c byte) bool {
	return c == '_' || c == '-' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func (p *schemaParser) ident() (string, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && isIdent(p.src[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		return "", p.errorf("expected a name")
	}
	return p.src[start:p.pos], nil
}

func (p *schemaParser) layout(name string, total int) (*codec.Layout, error) {
	var fields []codec.FieldDesc
	for {
		fname, err := p.ident()
		if err != nil {
			return nil, err
		}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		t, err := p.typ(fname)
		if err != nil {
			return nil, err
		}
		fields = append(fields, codec.FieldDesc{Name: fname, Type: t})
		if p.peek() != ',' {
			break
		}
		p.pos++
	}
	return codec.NewLayout(fields, codec.Options{Name: name, Bits: total})
}

func (p *schemaParser) typ(field string) (codec.Type, error) {
	if p.peek() == '{' {
		p.pos++
		l, err := p.layout(field, 0)
		if err != nil {
			return nil, err
		}
		return l, p.expect('}')
	}

	word, err := p.ident()
	if err != nil {
		return nil, err
	}
	switch word {
	case "bool":
		return codec.Bool, nil
	case "u8n":
		return codec.U8, nil
	case "u16n":
		return codec.U16, nil
	case "u32n":
		return codec.U32, nil
	case "u64n":
		return codec.U64, nil
	case "i8":
		return codec.I8, nil
	case "i16":
		return codec.I16, nil
	case "i32":
		return codec.I32, nil
	case "i64":
		return codec.I64, nil
	case "enum":
		return p.enum(field)
	}

	if len(word) > 1 && (word[0] == 'u' || word[0] == 's') {
		n, err := strconv.Atoi(word[1:])
		if err == nil {
			if word[0] == 'u' {
				return codec.NewUintType(n)
			}
			return codec.NewIntType(n)
		}
	}
	return nil, p.errorf("unknown type %q", word)
}

func (p *schemaParser) enum(field string) (codec.Type, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	var cases []codec.EnumCase[uint64]
	for {
		item, err := p.ident()
		if err != nil {
			return nil, err
		}
		name, num := item, item
		if p.peek() == '=' {
			p.pos++
			if num, err = p.ident(); err != nil {
				return nil, err
			}
		}
		v, err := strconv.ParseUint(num, 0, 64)
		if err != nil {
			return nil, p.errorf("enum value %q is not a number", num)
		}
		cases = append(cases, codec.EnumCase[uint64]{Name: name, Value: v})
		if p.peek() != '|' {
			break
		}
		p.pos++
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return codec.NewEnum(cases, codec.EnumOptions{Name: field})
}

// parseAssignment splits "a.b=value" into a field path and a value.
func parseAssignment(s string) ([]string, string, error) {
	path, value, ok := strings.Cut(s, "=")
	if !ok || path == "" {
		return nil, "", errors.ParseFailed("assignment", fmt.Errorf("%q is not name=value", s))
	}
	return strings.Split(strings.TrimSpace(path), "."), strings.TrimSpace(value), nil
}

// assign sets the field at path inside s to the textual value.
func assign(s codec.Struct, path []string, value string) (codec.Struct, error) {
	l := s.Layout()
	f, ok := l.Field(path[0])
	if !ok {
		return codec.Struct{}, errors.FieldUnknown(errors.PhaseParse, []string{l.Name()}, path[0])
	}

	if len(path) > 1 {
		cur, err := s.Get(path[0])
		if err != nil {
			return codec.Struct{}, err
		}
		inner, ok := cur.(codec.Struct)
		if !ok {
			return codec.Struct{}, errors.TypeMismatch(errors.PhaseParse, path[:1], f.Type.String(), "struct")
		}
		inner, err = assign(inner, path[1:], value)
		if err != nil {
			return codec.Struct{}, err
		}
		return s.With(path[0], inner)
	}

	raw, err := codec.Parse(f.Type, value)
	if err != nil {
		return codec.Struct{}, err
	}
	v, err := codec.DecodeValue(f.Type, raw)
	if err != nil {
		return codec.Struct{}, err
	}
	return s.With(path[0], v)
}
