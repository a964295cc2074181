package bitfield

// Memory is byte-addressed storage that can hold packed bitfield values, such as
// WASM linear memory. Multi-byte accesses are little-endian.
type Memory interface {
	ReadU8(offset uint32) (uint8, error)
	ReadU16(offset uint32) (uint16, error)
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU8(offset uint32, value uint8) error
	WriteU16(offset uint32, value uint16) error
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// MemorySizer provides the current size of a Memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// Storage is a single storage location holding one raw bitfield value.
// Load returns the value zero-extended to 64 bits; Store truncates to the
// location's storage width.
type Storage interface {
	Load() (uint64, error)
	Store(raw uint64) error
}
