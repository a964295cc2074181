package bits

import (
	"math"
	"testing"
)

func TestMask(t *testing.T) {
	tests := []struct {
		n    int
		want uint64
	}{
		{1, 0b1},
		{3, 0b111},
		{8, 0xff},
		{32, math.MaxUint32},
		{63, math.MaxInt64},
		{64, math.MaxUint64},
	}

	for _, tt := range tests {
		if got := Mask(tt.n); got != tt.want {
			t.Errorf("Mask(%d) = %#x, want %#x", tt.n, got, tt.want)
		}
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name        string
		v           uint64
		offset, n   int
		want        uint64
		wantNoShift uint64
	}{
		{"low field", 0b111_010_01, 0, 2, 0b01, 0b01},
		{"middle field", 0b111_010_01, 2, 3, 0b010, 0b010_00},
		{"high field", 0b111_010_01, 5, 3, 0b111, 0b111_00000},
		{"full width", math.MaxUint64, 0, 64, math.MaxUint64, math.MaxUint64},
		{"top bit", 1 << 63, 63, 1, 1, 1 << 63},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(tt.v, tt.offset, tt.n); got != tt.want {
				t.Errorf("Extract = %#b, want %#b", got, tt.want)
			}
			if got := ExtractNoShift(tt.v, tt.offset, tt.n); got != tt.wantNoShift {
				t.Errorf("ExtractNoShift = %#b, want %#b", got, tt.wantNoShift)
			}
		})
	}
}

func TestModify(t *testing.T) {
	tests := []struct {
		name      string
		v         uint64
		offset, n int
		nv        uint64
		want      uint64
	}{
		{"clear middle", 0b111_111_11, 2, 3, 0, 0b111_000_11},
		{"set middle", 0, 2, 3, 0b101, 0b000_101_00},
		{"excess bits dropped", 0, 2, 3, 0xff, 0b000_111_00},
		{"full width", 0x1234, 0, 64, 0xdead, 0xdead},
		{"top bit", 0, 63, 1, 1, 1 << 63},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Modify(tt.v, tt.offset, tt.n, tt.nv); got != tt.want {
				t.Errorf("Modify = %#b, want %#b", got, tt.want)
			}
		})
	}
}

func TestSignExtendTruncate(t *testing.T) {
	tests := []struct {
		n   int
		raw uint64
		v   int64
	}{
		{5, 0b11111, -1},
		{5, 0b10000, -16},
		{5, 0b01111, 15},
		{1, 1, -1},
		{1, 0, 0},
		{8, 0x80, -128},
		{64, math.MaxUint64, -1},
		{64, 1 << 63, math.MinInt64},
	}

	for _, tt := range tests {
		if got := SignExtend(tt.raw, tt.n); got != tt.v {
			t.Errorf("SignExtend(%#b, %d) = %d, want %d", tt.raw, tt.n, got, tt.v)
		}
		if got := Truncate(tt.v, tt.n); got != tt.raw {
			t.Errorf("Truncate(%d, %d) = %#b, want %#b", tt.v, tt.n, got, tt.raw)
		}
	}
}

func TestRequired(t *testing.T) {
	tests := []struct {
		v    uint64
		want int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{100, 7},
		{255, 8},
		{256, 9},
		{math.MaxUint64, 64},
	}

	for _, tt := range tests {
		if got := Required(tt.v); got != tt.want {
			t.Errorf("Required(%d) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestSignedRange(t *testing.T) {
	tests := []struct {
		n        int
		min, max int64
	}{
		{1, -1, 0},
		{5, -16, 15},
		{8, math.MinInt8, math.MaxInt8},
		{64, math.MinInt64, math.MaxInt64},
	}

	for _, tt := range tests {
		if got := MinSigned(tt.n); got != tt.min {
			t.Errorf("MinSigned(%d) = %d, want %d", tt.n, got, tt.min)
		}
		if got := MaxSigned(tt.n); got != tt.max {
			t.Errorf("MaxSigned(%d) = %d, want %d", tt.n, got, tt.max)
		}
	}
}
