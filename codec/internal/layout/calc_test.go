package layout

import (
	"errors"
	"testing"

	bferrors "github.com/wippyai/bitfield/errors"
)

func TestStorageWidth(t *testing.T) {
	tests := []struct {
		bits int
		want int
	}{
		{1, 8},
		{8, 8},
		{9, 16},
		{16, 16},
		{17, 32},
		{32, 32},
		{33, 64},
		{64, 64},
	}

	for _, tt := range tests {
		got, err := StorageWidth(tt.bits)
		if err != nil {
			t.Fatalf("StorageWidth(%d): %v", tt.bits, err)
		}
		if got != tt.want {
			t.Errorf("StorageWidth(%d) = %d, want %d", tt.bits, got, tt.want)
		}
	}
}

func TestStorageWidthErrors(t *testing.T) {
	if _, err := StorageWidth(65); !errors.Is(err, bferrors.ErrWidthExceedsStorage) {
		t.Errorf("StorageWidth(65) err = %v, want width_exceeds_storage", err)
	}
	if _, err := StorageWidth(0); err == nil {
		t.Error("StorageWidth(0) should fail")
	}
}

func TestCalc(t *testing.T) {
	t.Run("three_fields", func(t *testing.T) {
		info, err := Calc([]int{2, 3, 3})
		if err != nil {
			t.Fatal(err)
		}
		want := []int{0, 2, 5}
		for i, off := range want {
			if info.Offsets[i] != off {
				t.Errorf("offset[%d]: got %d, want %d", i, info.Offsets[i], off)
			}
		}
		if info.Bits != 8 || info.Storage != 8 {
			t.Errorf("bits/storage: got %d/%d, want 8/8", info.Bits, info.Storage)
		}
	})

	t.Run("nested_widths", func(t *testing.T) {
		info, err := Calc([]int{4, 4, 4})
		if err != nil {
			t.Fatal(err)
		}
		if info.Bits != 12 || info.Storage != 16 {
			t.Errorf("bits/storage: got %d/%d, want 12/16", info.Bits, info.Storage)
		}
		if info.Offsets[2] != 8 {
			t.Errorf("offset[2]: got %d, want 8", info.Offsets[2])
		}
	})

	t.Run("single_full_width", func(t *testing.T) {
		info, err := Calc([]int{64})
		if err != nil {
			t.Fatal(err)
		}
		if info.Bits != 64 || info.Storage != 64 {
			t.Errorf("bits/storage: got %d/%d, want 64/64", info.Bits, info.Storage)
		}
	})

	t.Run("overflow", func(t *testing.T) {
		_, err := Calc([]int{32, 32, 1})
		if !errors.Is(err, bferrors.ErrWidthExceedsStorage) {
			t.Errorf("err = %v, want width_exceeds_storage", err)
		}
	})

	t.Run("invalid_width", func(t *testing.T) {
		if _, err := Calc([]int{3, 0}); err == nil {
			t.Error("zero width should fail")
		}
		if _, err := Calc([]int{65}); err == nil {
			t.Error("width 65 should fail")
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, err := Calc(nil); err == nil {
			t.Error("empty layout should fail")
		}
	})
}

func TestCalcNonOverlap(t *testing.T) {
	widths := []int{1, 7, 3, 13, 2, 9, 5, 20}
	info, err := Calc(widths)
	if err != nil {
		t.Fatal(err)
	}

	var covered uint64
	for i, w := range widths {
		var m uint64
		if w == 64 {
			m = ^uint64(0)
		} else {
			m = ((uint64(1) << uint(w)) - 1) << uint(info.Offsets[i])
		}
		if covered&m != 0 {
			t.Fatalf("field %d overlaps an earlier field", i)
		}
		covered |= m
	}
	if covered != (uint64(1)<<uint(info.Bits))-1 {
		t.Errorf("fields cover %#x, want exactly the low %d bits", covered, info.Bits)
	}
}
