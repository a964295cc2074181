package codec

import (
	"reflect"
	"testing"

	"github.com/wippyai/bitfield/errors"
)

type tagPair struct {
	X uint8 `bitfield:"bits=2"`
	Y uint8 `bitfield:"bits=2"`
}

type tagHeader struct {
	_       struct{} `bitfield:"total=20"`
	Ready   bool
	Delta   int8  `bitfield:"bits=5"`
	Mode    uint8 `bitfield:"enum=idle:0|run:10|halt:50"`
	Pair    tagPair
	Count   Uint `bitfield:"bits=4,name=count"`
	Ignored int  `bitfield:"-"`
	hidden  int
}

func TestCompiler_Layout(t *testing.T) {
	l, err := NewCompiler().Compile(reflect.TypeFor[tagHeader]())
	if err != nil {
		t.Fatal(err)
	}

	if l.Name() != "tagHeader" || l.Bits() != 20 || l.StorageWidth() != Width32 {
		t.Errorf("layout = %s/%d/%s", l.Name(), l.Bits(), l.StorageWidth())
	}

	want := []struct {
		name   string
		kind   Kind
		offset int
	}{
		{"Ready", KindBool, 0},
		{"Delta", KindInt, 1},
		{"Mode", KindEnum, 6},
		{"Pair", KindStruct, 12},
		{"count", KindUint, 16},
	}
	fields := l.Fields()
	if len(fields) != len(want) {
		t.Fatalf("fields = %d, want %d", len(fields), len(want))
	}
	for i, w := range want {
		f := fields[i]
		if f.Name != w.name || f.Type.Kind() != w.kind || f.Offset != w.offset {
			t.Errorf("field %d = %s %s@%d, want %s %s@%d", i, f.Name, f.Type.Kind(), f.Offset, w.name, w.kind, w.offset)
		}
	}
}

func TestCompiler_RoundTrip(t *testing.T) {
	c := NewCompiler()
	in := tagHeader{
		Ready:   true,
		Delta:   -3,
		Mode:    50,
		Pair:    tagPair{X: 3, Y: 1},
		Count:   UintType(4).New(9),
		Ignored: 42,
	}

	raw, err := c.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	want := uint64(1) | uint64(0b11101)<<1 | 50<<6 | 0b0111<<12 | 9<<16
	if raw != want {
		t.Errorf("Marshal = %#b, want %#b", raw, want)
	}

	var out tagHeader
	if err := c.Unmarshal(raw, &out); err != nil {
		t.Fatal(err)
	}
	in.Ignored = 0
	if out != in {
		t.Errorf("Unmarshal = %+v, want %+v", out, in)
	}

	l, _ := c.Compile(reflect.TypeFor[*tagHeader]())
	s := l.FromBits(raw)
	if got := MustField[uint64](l, "Mode").Get(s); got != 50 {
		t.Errorf("Mode via layout = %d", got)
	}
}

func TestCompiler_Errors(t *testing.T) {
	type badMode struct {
		Mode uint8 `bitfield:"enum=0|10"`
	}
	type tooWide struct {
		V uint8 `bitfield:"bits=9"`
	}
	type noBits struct {
		V Uint
	}
	type unsupported struct {
		F float64
	}
	type badTag struct {
		V uint8 `bitfield:"size=3"`
	}
	type mismatch struct {
		_ struct{} `bitfield:"total=8"`
		V uint8    `bitfield:"bits=4"`
	}

	c := NewCompiler()

	if _, err := c.Marshal(badMode{Mode: 3}); errorKind(err) != errors.KindInvalidDiscriminant {
		t.Errorf("undeclared enum value error = %v", err)
	}
	var bm badMode
	if err := c.Unmarshal(3, &bm); errorKind(err) != errors.KindInvalidDiscriminant {
		t.Errorf("Unmarshal of undeclared enum value error = %v", err)
	}
	if _, err := c.Marshal(tooWide{}); errorKind(err) != errors.KindWidthOverflow {
		t.Errorf("tooWide error = %v", err)
	}
	if _, err := c.Marshal(noBits{}); errorKind(err) != errors.KindInvalidInput {
		t.Errorf("noBits error = %v", err)
	}
	if _, err := c.Marshal(unsupported{}); errorKind(err) != errors.KindUnsupported {
		t.Errorf("unsupported error = %v", err)
	}
	if _, err := c.Marshal(badTag{}); errorKind(err) != errors.KindInvalidInput {
		t.Errorf("badTag error = %v", err)
	}
	if _, err := c.Marshal(mismatch{}); errorKind(err) != errors.KindSchemaWidthMismatch {
		t.Errorf("mismatch error = %v", err)
	}
	if _, err := c.Marshal(tagPair{X: 4}); errorKind(err) != errors.KindWidthOverflow {
		t.Errorf("overflowing value error = %v", err)
	}
	if err := c.Unmarshal(0, tagPair{}); errorKind(err) != errors.KindInvalidInput {
		t.Errorf("non-pointer Unmarshal error = %v", err)
	}
	if _, err := c.Marshal(42); errorKind(err) != errors.KindUnsupported {
		t.Errorf("non-struct Marshal error = %v", err)
	}
}

func TestCompiler_Cache(t *testing.T) {
	c := NewCompiler()
	a, err := c.Compile(reflect.TypeFor[tagPair]())
	if err != nil {
		t.Fatal(err)
	}
	b, _ := c.Compile(reflect.TypeFor[*tagPair]())
	if a != b {
		t.Error("Compile did not reuse the cached layout")
	}
}

func TestMarshal_Default(t *testing.T) {
	raw, err := Marshal(&tagPair{X: 2, Y: 3})
	if err != nil {
		t.Fatal(err)
	}
	if raw != 0b11_10 {
		t.Errorf("Marshal = %#b", raw)
	}
	var p tagPair
	if err := Unmarshal(raw, &p); err != nil || p != (tagPair{X: 2, Y: 3}) {
		t.Errorf("Unmarshal = %+v, %v", p, err)
	}
}
