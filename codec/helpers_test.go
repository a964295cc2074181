package codec

import (
	"testing"

	"github.com/wippyai/bitfield/errors"
)

func expectPanic(t *testing.T, kind errors.Kind, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic with %s", kind)
		}
		err, ok := r.(*errors.Error)
		if !ok {
			t.Fatalf("panic value %T (%v), want *errors.Error", r, r)
		}
		if err.Kind != kind {
			t.Fatalf("panic kind = %s, want %s (%v)", err.Kind, kind, err)
		}
	}()
	fn()
}

func errorKind(err error) errors.Kind {
	if e, ok := err.(*errors.Error); ok {
		return e.Kind
	}
	return ""
}

// Layouts shared by several tests.
func abcLayout() *Layout {
	return MustLayout([]FieldDesc{
		{Name: "a", Type: UintType(2)},
		{Name: "b", Type: UintType(3)},
		{Name: "c", Type: UintType(3)},
	}, Options{Name: "ABC"})
}

func pairLayout() *Layout {
	return MustLayout([]FieldDesc{
		{Name: "x", Type: UintType(2)},
		{Name: "y", Type: UintType(2)},
	}, Options{Name: "Pair"})
}

func outerLayout(pair *Layout) *Layout {
	return MustLayout([]FieldDesc{
		{Name: "first", Type: pair},
		{Name: "second", Type: pair},
		{Name: "tail", Type: UintType(4)},
	}, Options{Name: "Outer", Bits: 12})
}

func sparseEnum() *Enum[uint8] {
	return MustEnum([]EnumCase[uint8]{
		{Name: "off", Value: 0},
		{Name: "low", Value: 10},
		{Name: "mid", Value: 50},
		{Name: "high", Value: 100},
	}, EnumOptions{Name: "Level"})
}
