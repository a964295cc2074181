// Package witschema derives bitfield types from WIT type definitions.
//
// Supported WIT types map as follows:
//
//	bool            codec.Bool
//	u8 .. s64       codec.U8 .. codec.I64
//	enum            codec.Enum[uint32], discriminant = case index
//	flags           layout with one bool per flag, first flag in bit 0
//	record          layout with one field per record field
//	type alias      the aliased type
//
// Strings, lists, floats and other variable-size types have no bitfield form
// and are rejected with an unsupported error.
//
//	res, err := wit.LoadJSON("app.wit.json")
//	td, err := witschema.FindType(res, "header")
//	layout, err := witschema.Layout(td)
package witschema
