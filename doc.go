// Package bitfield provides compact, typed bitfields packed into a single
// fixed-width unsigned integer.
//
// A schema is an ordered list of named fields. Each field occupies a contiguous
// run of bits, least significant field first, and the whole structure is stored
// in the smallest of uint8, uint16, uint32 or uint64 that fits it. Every field is
// exposed as its own typed value: a bool, an arbitrary-width signed or unsigned
// integer, a native Go integer, an enumeration, or a nested bitfield.
//
// # Architecture Overview
//
//	bitfield/            Root package with the Memory and Storage interfaces
//	├── codec/           Layouts, field codecs, struct values, field views
//	├── memory/          wazero linear memory adapter
//	├── witschema/       WIT type definitions to bitfield layouts
//	├── errors/          Structured error types
//	└── cmd/bitview/     Command line and interactive inspector
//
// # Quick Start
//
//	mode := codec.MustEnum([]codec.EnumCase[uint8]{
//	    {Name: "idle", Value: 0},
//	    {Name: "run", Value: 10},
//	    {Name: "halt", Value: 50},
//	}, codec.EnumOptions{})
//
//	header := codec.MustLayout([]codec.FieldDesc{
//	    {Name: "ready", Type: codec.Bool},
//	    {Name: "delta", Type: codec.IntType(5)},
//	    {Name: "mode", Type: mode},
//	}, codec.Options{Name: "Header"})
//
//	delta := codec.MustField[codec.Int](header, "delta")
//
//	h := header.FromBits(0b0001010_11111_1)
//	fmt.Println(delta.Get(h).Get()) // -1
//	h = delta.With(h, codec.IntType(5).New(3))
//
// # Strict and Fallible Operations
//
// Strict operations (New, FromBits, Decode) panic with an *errors.Error when the
// input is outside the valid domain. Their fallible counterparts (TryNew,
// TryFromBits, TryDecode) report absence with a boolean instead.
//
// # Field Views
//
// A codec.Cell owns one storage location, either an in-process register or an
// address inside a Memory. Field views borrow a bit range of the cell; leases are
// checked at runtime so two live views never overlap.
package bitfield
