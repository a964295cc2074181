// Package layout computes bit offsets and storage widths for bitfield schemas.
//
// # Layout Rules
//
//   - Fields are packed in declaration order, least significant field first.
//   - A field's offset is the sum of the widths of the fields before it.
//   - The total width is the sum of all field widths.
//   - Storage is the smallest of 8, 16, 32 or 64 bits holding the total width.
//
// # Usage
//
//	info, err := layout.Calc([]int{2, 3, 3})
//	// info.Offsets == [0 2 5], info.Bits == 8, info.Storage == 8
//
// This package is internal to the codec.
package layout
