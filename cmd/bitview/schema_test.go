package main

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/bitfield/codec"
	"github.com/wippyai/bitfield/errors"
)

const sampleSchema = "a:u2,b:s3,c:bool,d:enum(0|10|50)"

func TestParseSchema(t *testing.T) {
	tests := []struct {
		name    string
		schema  string
		total   int
		bits    int
		storage codec.Width
		fields  []string
	}{
		{"sample", sampleSchema, 0, 12, codec.Width16, []string{"a", "b", "c", "d"}},
		{"declared total", sampleSchema, 12, 12, codec.Width16, []string{"a", "b", "c", "d"}},
		{"natives", "lo:u8n,hi:i8", 0, 16, codec.Width16, []string{"lo", "hi"}},
		{"named enum", "mode:enum(idle=0|run=2|stop=3)", 0, 2, codec.Width8, []string{"mode"}},
		{"nested", "p:{x:u2,y:u2},flag:bool", 0, 5, codec.Width8, []string{"p", "flag"}},
		{"whitespace", " a : u4 , b : bool ", 0, 5, codec.Width8, []string{"a", "b"}},
		{"full width", "v:u64", 0, 64, codec.Width64, []string{"v"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := parseSchema(tt.schema, "value", tt.total)
			if err != nil {
				t.Fatalf("parseSchema failed: %v", err)
			}
			if l.Bits() != tt.bits {
				t.Errorf("Bits() = %d, want %d", l.Bits(), tt.bits)
			}
			if l.StorageWidth() != tt.storage {
				t.Errorf("StorageWidth() = %v, want %v", l.StorageWidth(), tt.storage)
			}
			var names []string
			for _, f := range l.Fields() {
				names = append(names, f.Name)
			}
			if strings.Join(names, ",") != strings.Join(tt.fields, ",") {
				t.Errorf("fields = %v, want %v", names, tt.fields)
			}
		})
	}
}

func TestParseSchema_Errors(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		total  int
		kind   errors.Kind
	}{
		{"missing type", "a", 0, errors.KindInvalidInput},
		{"unknown type", "a:float", 0, errors.KindInvalidInput},
		{"zero width", "a:u0", 0, errors.KindInvalidInput},
		{"trailing text", "a:u2)", 0, errors.KindInvalidInput},
		{"unclosed nested", "p:{x:u2", 0, errors.KindInvalidInput},
		{"enum value not a number", "e:enum(a=b)", 0, errors.KindInvalidInput},
		{"duplicate discriminant", "e:enum(1|1)", 0, errors.KindDuplicateDiscriminant},
		{"declared total mismatch", sampleSchema, 16, errors.KindSchemaWidthMismatch},
		{"too wide", "a:u64,b:bool", 0, errors.KindWidthExceedsStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSchema(tt.schema, "value", tt.total)
			if err == nil {
				t.Fatal("expected error")
			}
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("error %v is not *errors.Error", err)
			}
			if e.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v (%v)", e.Kind, tt.kind, err)
			}
		})
	}
}

func TestApplyAll(t *testing.T) {
	l, err := parseSchema(sampleSchema, "value", 0)
	if err != nil {
		t.Fatal(err)
	}

	got, err := applyAll(l.Zeroes(), []string{"a=1", "b=-1", "c=true", "d=10"})
	if err != nil {
		t.Fatalf("applyAll failed: %v", err)
	}
	if want := uint64(1 | 7<<2 | 1<<5 | 10<<6); got.Bits() != want {
		t.Errorf("Bits() = %#x, want %#x", got.Bits(), want)
	}

	tests := []struct {
		name string
		set  string
		kind errors.Kind
	}{
		{"not an assignment", "a", errors.KindInvalidInput},
		{"unknown field", "z=1", errors.KindFieldUnknown},
		{"overflow", "a=4", errors.KindWidthOverflow},
		{"signed overflow", "b=4", errors.KindWidthOverflow},
		{"bad discriminant", "d=11", errors.KindInvalidDiscriminant},
		{"bad bool", "c=maybe", errors.KindInvalidInput},
		{"path into scalar", "a.x=1", errors.KindTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := applyAll(l.Zeroes(), []string{tt.set})
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("error %v is not *errors.Error", err)
			}
			if e.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v (%v)", e.Kind, tt.kind, err)
			}
		})
	}
}

func TestApplyAll_Nested(t *testing.T) {
	l, err := parseSchema("head:bool,p:{x:u2,y:u2},tail:u3", "value", 0)
	if err != nil {
		t.Fatal(err)
	}

	got, err := applyAll(l.Ones(), []string{"p.x=1", "p.y=0"})
	if err != nil {
		t.Fatalf("applyAll failed: %v", err)
	}
	// head=1, p.x=1, p.y=0, tail=7
	if want := uint64(1 | 1<<1 | 0<<3 | 7<<5); got.Bits() != want {
		t.Errorf("Bits() = %#b, want %#b", got.Bits(), want)
	}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name string
		opts options
		want uint64
	}{
		{"decode", options{schema: sampleSchema, name: "value", bits: "0x2bd"}, 0x2bd},
		{"set", options{schema: sampleSchema, name: "value", bits: "0", sets: assignments{"d=50", "a=3"}}, 3 | 50<<6},
		{"sentinel", options{schema: sampleSchema, name: "value", sentinel: "max"}, 3 | 3<<2 | 1<<5 | 50<<6},
		{"high bits ignored", options{schema: sampleSchema, name: "value", bits: "0xf2bd"}, 0xf2bd},
		{"in memory", options{schema: sampleSchema, name: "value", bits: "0x2bd", sets: assignments{"b=2"}, useMemory: true}, 1 | 2<<2 | 1<<5 | 10<<6},
		{"in memory nested", options{schema: "head:bool,p:{x:u2,y:u2},tail:u3", name: "value", sentinel: "ones", sets: assignments{"p.x=1", "p.y=0", "head=false"}, useMemory: true}, 1<<1 | 7<<5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(context.Background(), tt.opts)
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if got.Bits() != tt.want {
				t.Errorf("Bits() = %#x, want %#x", got.Bits(), tt.want)
			}
		})
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts options
		kind errors.Kind
	}{
		{"bad bits", options{schema: sampleSchema, bits: "zz"}, errors.KindInvalidInput},
		{"strict high bits", options{schema: sampleSchema, bits: "0xf2bd", strict: true}, errors.KindWidthOverflow},
		{"invalid discriminant", options{schema: sampleSchema, bits: "0x40"}, errors.KindInvalidDiscriminant},
		{"unknown sentinel", options{schema: sampleSchema, sentinel: "half"}, errors.KindInvalidInput},
		{"wit without type", options{witFile: "types.json"}, errors.KindInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.name = "value"
			_, err := run(context.Background(), tt.opts)
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("error %v is not *errors.Error", err)
			}
			if e.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v (%v)", e.Kind, tt.kind, err)
			}
		})
	}
}

func TestPrintValue(t *testing.T) {
	l, err := parseSchema("p:{x:u2,y:u2},mode:enum(idle=0|run=2)", "Packet", 0)
	if err != nil {
		t.Fatal(err)
	}
	v, err := l.DecodeBits(0b10_01_11)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	printValue(&buf, v)
	out := buf.String()

	for _, want := range []string{
		"Packet (6 bits, u8) = 0x27",
		"00100111",
		"p.x",
		"[2:4)",
		"run",
		"p{x: 3, y: 1}",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPrintValue_HexWidth(t *testing.T) {
	tests := []struct {
		schema string
		bits   string
		want   string
	}{
		{"a:u6", "0x27", "value (6 bits, u8) = 0x27\n"},
		{sampleSchema, "0x2bd", "value (12 bits, u16) = 0x02bd\n"},
		{"a:u20", "0x1", "value (20 bits, u32) = 0x00000001\n"},
		{"a:u64", "0xff", "value (64 bits, u64) = 0x00000000000000ff\n"},
	}

	for _, tt := range tests {
		t.Run(tt.schema, func(t *testing.T) {
			v, err := run(context.Background(), options{schema: tt.schema, name: "value", bits: tt.bits})
			if err != nil {
				t.Fatal(err)
			}
			var buf bytes.Buffer
			printValue(&buf, v)
			if !strings.HasPrefix(buf.String(), tt.want) {
				t.Errorf("header = %q, want %q", strings.SplitAfter(buf.String(), "\n")[0], tt.want)
			}
		})
	}
}

func TestSetThroughView(t *testing.T) {
	l, err := parseSchema("head:bool,p:{x:u2,q:{lo:bool,hi:bool}},tail:u3", "value", 0)
	if err != nil {
		t.Fatal(err)
	}
	cell := codec.NewCell(l, l.Zeroes())

	for _, set := range []string{"p.q.hi=true", "tail=5", "p.x=2"} {
		path, v, err := parseAssignment(set)
		if err != nil {
			t.Fatal(err)
		}
		if err := setThroughView(cell, path, v); err != nil {
			t.Fatalf("%s: %v", set, err)
		}
	}

	got, err := cell.Load()
	if err != nil {
		t.Fatal(err)
	}
	// head at 0, p.x at 1-2, p.q.lo at 3, p.q.hi at 4, tail at 5-7.
	if want := uint64(2<<1 | 1<<4 | 5<<5); got.Bits() != want {
		t.Errorf("Bits() = %#b, want %#b", got.Bits(), want)
	}

	tests := []struct {
		name string
		set  string
		kind errors.Kind
	}{
		{"unknown leaf", "p.z=1", errors.KindFieldUnknown},
		{"unknown parent", "r.x=1", errors.KindFieldUnknown},
		{"path into scalar", "tail.x=1", errors.KindTypeMismatch},
		{"overflow", "p.x=4", errors.KindWidthOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, v, err := parseAssignment(tt.set)
			if err != nil {
				t.Fatal(err)
			}
			err = setThroughView(cell, path, v)
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("error %v is not *errors.Error", err)
			}
			if e.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v (%v)", e.Kind, tt.kind, err)
			}
		})
	}

	// Every view was released, failed assignments included.
	if err := cell.Store(l.Zeroes()); err != nil {
		t.Fatal(err)
	}
}

func TestInteractiveModel(t *testing.T) {
	l, err := parseSchema(sampleSchema, "value", 0)
	if err != nil {
		t.Fatal(err)
	}
	m := newInteractiveModel(l.Zeroes())

	if len(m.rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(m.rows))
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != stateEditValue {
		t.Fatalf("state = %v, want edit", m.state)
	}

	m.input.SetValue("9")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.err == nil || m.state != stateEditValue {
		t.Fatalf("out of range value accepted: err=%v state=%v", m.err, m.state)
	}

	m.input.SetValue("-2")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.err != nil {
		t.Fatalf("edit failed: %v", m.err)
	}
	if want := uint64(0b110 << 2); m.value.Bits() != want {
		t.Errorf("Bits() = %#b, want %#b", m.value.Bits(), want)
	}

	m.Update(keyRunes("M"))
	if m.value != l.Max() {
		t.Errorf("value = %v, want Max %v", m.value, l.Max())
	}
	if !strings.Contains(m.View(), "0x0caf") {
		t.Errorf("view does not show the raw value:\n%s", m.View())
	}
	if !strings.Contains(m.View(), "50") {
		t.Errorf("view does not show the max discriminant:\n%s", m.View())
	}

	_, cmd := m.Update(keyRunes("q"))
	if cmd == nil {
		t.Error("q should quit")
	}
}
