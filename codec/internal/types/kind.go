package types

type Kind uint8

const (
	KindBool Kind = iota
	KindUint
	KindInt
	KindU8
	KindU16
	KindU32
	KindU64
	KindS8
	KindS16
	KindS32
	KindS64
	KindEnum
	KindStruct
)

var kindNames = [...]string{
	KindBool:   "bool",
	KindUint:   "uint",
	KindInt:    "int",
	KindU8:     "u8",
	KindU16:    "u16",
	KindU32:    "u32",
	KindU64:    "u64",
	KindS8:     "s8",
	KindS16:    "s16",
	KindS32:    "s32",
	KindS64:    "s64",
	KindEnum:   "enum",
	KindStruct: "struct",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsInteger reports whether k is an arbitrary-width or native integer kind.
func (k Kind) IsInteger() bool {
	return k >= KindUint && k <= KindS64
}

// IsSigned reports whether k decodes with sign extension.
func (k Kind) IsSigned() bool {
	switch k {
	case KindInt, KindS8, KindS16, KindS32, KindS64:
		return true
	default:
		return false
	}
}

// IsNative reports whether k is a Go fixed-width integer.
func (k Kind) IsNative() bool {
	return k >= KindU8 && k <= KindS64
}
