package codec

import (
	"github.com/wippyai/bitfield"
	"github.com/wippyai/bitfield/errors"
)

// Register is an in-process storage location.
type Register struct {
	raw   uint64
	width Width
}

// NewRegister returns a register of the given width holding raw.
func NewRegister(width Width, raw uint64) *Register {
	return &Register{raw: raw & width.Mask(), width: width}
}

func (r *Register) Width() Width { return r.width }

func (r *Register) Load() (uint64, error) {
	return r.raw, nil
}

func (r *Register) Store(raw uint64) error {
	r.raw = raw & r.width.Mask()
	return nil
}

// MemoryStorage is a storage location at a fixed address of a Memory. The value
// is read and written as a little-endian integer of the storage width.
type MemoryStorage struct {
	mem   bitfield.Memory
	addr  uint32
	width Width
}

// NewMemoryStorage returns the storage location of width bits at addr.
func NewMemoryStorage(mem bitfield.Memory, addr uint32, width Width) *MemoryStorage {
	return &MemoryStorage{mem: mem, addr: addr, width: width}
}

func (m *MemoryStorage) Addr() uint32 { return m.addr }
func (m *MemoryStorage) Width() Width { return m.width }

func (m *MemoryStorage) Load() (uint64, error) {
	switch m.width {
	case Width8:
		v, err := m.mem.ReadU8(m.addr)
		return uint64(v), err
	case Width16:
		v, err := m.mem.ReadU16(m.addr)
		return uint64(v), err
	case Width32:
		v, err := m.mem.ReadU32(m.addr)
		return uint64(v), err
	case Width64:
		return m.mem.ReadU64(m.addr)
	}
	return 0, m.badWidth()
}

func (m *MemoryStorage) Store(raw uint64) error {
	switch m.width {
	case Width8:
		return m.mem.WriteU8(m.addr, uint8(raw))
	case Width16:
		return m.mem.WriteU16(m.addr, uint16(raw))
	case Width32:
		return m.mem.WriteU32(m.addr, uint32(raw))
	case Width64:
		return m.mem.WriteU64(m.addr, raw)
	}
	return m.badWidth()
}

func (m *MemoryStorage) badWidth() error {
	return errors.New(errors.PhaseMemory, errors.KindUnsupported).
		Value(m.width).
		Detail("storage width %d", m.width).
		Build()
}
