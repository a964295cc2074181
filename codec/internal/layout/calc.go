package layout

import (
	"fmt"

	"github.com/wippyai/bitfield/errors"
)

// MaxBits is the widest supported storage cell.
const MaxBits = 64

type Info struct {
	Offsets []int
	Bits    int
	Storage int
}

// StorageWidth returns the smallest supported storage width holding bits.
func StorageWidth(bits int) (int, error) {
	switch {
	case bits < 1:
		return 0, errors.InvalidInput(errors.PhaseSchema, fmt.Sprintf("bit length %d must be positive", bits))
	case bits <= 8:
		return 8, nil
	case bits <= 16:
		return 16, nil
	case bits <= 32:
		return 32, nil
	case bits <= MaxBits:
		return 64, nil
	}
	return 0, errors.WidthExceedsStorage(nil, bits)
}

// Calc assigns offsets to the given field widths in order.
func Calc(widths []int) (Info, error) {
	if len(widths) == 0 {
		return Info{}, errors.InvalidInput(errors.PhaseSchema, "layout has no fields")
	}

	offsets := make([]int, len(widths))
	offset := 0

	for i, w := range widths {
		if w < 1 || w > MaxBits {
			return Info{}, errors.New(errors.PhaseSchema, errors.KindInvalidInput).
				Value(w).
				Detail("field %d has width %d, want 1..%d", i, w, MaxBits).
				Build()
		}
		offsets[i] = offset
		offset += w
	}

	storage, err := StorageWidth(offset)
	if err != nil {
		return Info{}, err
	}

	return Info{
		Offsets: offsets,
		Bits:    offset,
		Storage: storage,
	}, nil
}
