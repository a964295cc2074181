// Package codec implements typed bitfields over a fixed-width storage integer.
//
// A Layout is built at runtime from an ordered list of field descriptors. Fields
// are assigned offsets least significant bit first and the layout is stored in
// the smallest of 8, 16, 32 or 64 bits that holds the sum of the field widths.
//
// # Field Types
//
//	Bool              1 bit
//	UintType(w)       unsigned integer of w bits, values are Uint
//	IntType(w)        two's complement integer of w bits, values are Int
//	U8 ... I64        Go integers using all of their bits
//	NewEnum[T]        closed set of discriminants, dense or sparse
//	*Layout           nested bitfield, values are Struct
//
// Every type defines four sentinels. For integers Zeroes and Min are the
// all-zero pattern and the smallest value, Ones and Max the all-ones pattern
// and the largest value. Enums use their smallest and largest variants, and
// layouts compute each sentinel field by field.
//
// # Values
//
// A Struct is an immutable pair of a layout and its raw bits. Fields are read
// and written through typed accessors:
//
//	delta := codec.MustField[codec.Int](header, "delta")
//	v := delta.Get(h)
//	h = delta.With(h, codec.IntType(5).New(-3))
//
// Struct also offers untyped Get, With and Set by field name, and ToFields /
// FromFields to move between the packed value and one value per field.
//
// # Field Views
//
// A Cell owns a storage location, either a Register or a MemoryStorage over a
// bitfield.Memory. Field.Mut and Sub borrow exclusive bit ranges of a cell; the
// borrows are checked at runtime and conflicting ones panic.
//
// # Struct Tags
//
// Compiler derives layouts from tagged Go structs:
//
//	type Header struct {
//	    Ready bool
//	    Delta int8  `bitfield:"bits=5"`
//	    Mode  uint8 `bitfield:"enum=idle:0|run:10|halt:50"`
//	}
//
//	raw, err := codec.Marshal(Header{Ready: true, Delta: -1, Mode: 10})
package codec
