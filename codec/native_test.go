package codec

import (
	"math"
	"testing"
)

func TestNative_Kinds(t *testing.T) {
	tests := []struct {
		typ  Type
		kind Kind
		bits int
	}{
		{U8, KindU8, 8},
		{U16, KindU16, 16},
		{U32, KindU32, 32},
		{U64, KindU64, 64},
		{I8, KindS8, 8},
		{I16, KindS16, 16},
		{I32, KindS32, 32},
		{I64, KindS64, 64},
		{NativeCodec[int16]{}, KindS16, 16},
	}

	for _, tt := range tests {
		if tt.typ.Kind() != tt.kind {
			t.Errorf("%s: Kind = %s, want %s", tt.typ, tt.typ.Kind(), tt.kind)
		}
		if tt.typ.BitLen() != tt.bits {
			t.Errorf("%s: BitLen = %d, want %d", tt.typ, tt.typ.BitLen(), tt.bits)
		}
	}
}

func TestNative_Signed(t *testing.T) {
	if got := I8.Encode(-1); got != 0xff {
		t.Errorf("I8.Encode(-1) = %#x", got)
	}
	if got := I8.Decode(0x80); got != math.MinInt8 {
		t.Errorf("I8.Decode(0x80) = %d", got)
	}
	if got := I32.Decode(I32.Encode(math.MinInt32)); got != math.MinInt32 {
		t.Errorf("I32 round trip = %d", got)
	}
	if I16.Ones() != -1 || I16.Min() != math.MinInt16 || I16.Max() != math.MaxInt16 {
		t.Errorf("I16 sentinels = %d %d %d", I16.Ones(), I16.Min(), I16.Max())
	}
}

func TestNative_Unsigned(t *testing.T) {
	if U8.Ones() != math.MaxUint8 || U8.Max() != math.MaxUint8 || U8.Min() != 0 {
		t.Errorf("U8 sentinels = %d %d %d", U8.Ones(), U8.Max(), U8.Min())
	}
	if got := U16.Decode(0x1_2345); got != 0x2345 {
		t.Errorf("U16.Decode masks high bits: got %#x", got)
	}
	if got := U64.Encode(math.MaxUint64); got != math.MaxUint64 {
		t.Errorf("U64.Encode = %#x", got)
	}
}

type level uint8

func TestNative_NamedType(t *testing.T) {
	c := Native[level]()
	if c.Kind() != KindU8 {
		t.Errorf("Kind = %s, want u8", c.Kind())
	}
	if got := c.Decode(c.Encode(level(200))); got != 200 {
		t.Errorf("round trip = %d", got)
	}
}
