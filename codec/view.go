package codec

import (
	"sync"

	"github.com/wippyai/bitfield"
	"github.com/wippyai/bitfield/codec/internal/bits"
	"github.com/wippyai/bitfield/errors"
)

// lease is a claim on a bit range of a cell. Child leases are carved out of
// their parent's range and recorded in its held mask until released.
type lease struct {
	parent *lease
	mask   uint64
	held   uint64
	live   bool
}

func (l *lease) acquire(mask uint64, path []string) *lease {
	switch {
	case !l.live:
		panic(errors.ViewConflict(path, "parent view was released"))
	case mask&^l.mask != 0:
		panic(errors.ViewConflict(path, "range is outside the parent view"))
	case mask&l.held != 0:
		panic(errors.ViewConflict(path, "range overlaps a live view"))
	}
	l.held |= mask
	return &lease{parent: l, mask: mask, live: true}
}

func (l *lease) checkWrite(path []string) {
	switch {
	case !l.live:
		panic(errors.ViewConflict(path, "view was released"))
	case l.held != 0:
		panic(errors.ViewConflict(path, "write while a narrower view is live"))
	}
}

// Cell owns one storage location holding a value of a layout. Field views borrow
// disjoint bit ranges of the cell and write through to the storage immediately.
//
// Lease bookkeeping is checked at runtime: acquiring a view that overlaps a live
// one, or writing through the cell or a parent view while a narrower view is
// live, panics with a view_conflict error. A Cell may be used from several
// goroutines.
type Cell struct {
	layout *Layout
	store  bitfield.Storage
	root   *lease
	mu     sync.Mutex
}

// NewCell returns a cell backed by an in-process register holding s.
func NewCell(l *Layout, s Struct) *Cell {
	l.check(errors.PhaseView, s)
	return NewStorageCell(l, NewRegister(l.storage, s.bits))
}

// NewStorageCell returns a cell over an existing storage location.
func NewStorageCell(l *Layout, store bitfield.Storage) *Cell {
	return &Cell{
		layout: l,
		store:  store,
		root:   &lease{mask: bits.Mask(l.bits), live: true},
	}
}

// NewMemoryCell returns a cell over the storage-width integer at addr in mem.
func NewMemoryCell(l *Layout, mem bitfield.Memory, addr uint32) *Cell {
	return NewStorageCell(l, NewMemoryStorage(mem, addr, l.storage))
}

func (c *Cell) Layout() *Layout           { return c.layout }
func (c *Cell) Storage() bitfield.Storage { return c.store }

// Load reads and validates the current value.
func (c *Cell) Load() (Struct, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := c.store.Load()
	if err != nil {
		return Struct{}, err
	}
	return c.layout.DecodeBits(raw)
}

// Store replaces the whole value. It panics while any field view is live.
func (c *Cell) Store(s Struct) error {
	c.layout.check(errors.PhaseEncode, s)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.root.checkWrite([]string{c.layout.name})
	return c.store.Store(s.bits)
}

// View borrows the whole value. Use Sub on the result to reach fields.
func (c *Cell) View() *View[Struct] {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := []string{c.layout.name}
	return &View[Struct]{
		cell:  c,
		lease: c.root.acquire(c.root.mask, path),
		codec: c.layout,
		n:     c.layout.bits,
		path:  path,
	}
}

// Mut borrows the field's bit range of c.
func (f Field[T]) Mut(c *Cell) (*View[T], error) {
	if c.layout != f.layout {
		return nil, errors.TypeMismatch(errors.PhaseView, []string{f.info.Name}, "cell of "+c.layout.name, f.layout.name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	path := []string{f.info.Name}
	return &View[T]{
		cell:   c,
		lease:  c.root.acquire(bits.ShiftedMask(f.info.Offset, f.info.Len), path),
		codec:  f.codec,
		offset: f.info.Offset,
		n:      f.info.Len,
		path:   path,
	}, nil
}

// Sub borrows field f of the nested struct parent points at. The parent may not
// be written through until the returned view is released.
func Sub[T any](parent *View[Struct], f Field[T]) (*View[T], error) {
	if parent.codec != Codec[Struct](f.layout) {
		return nil, errors.TypeMismatch(errors.PhaseView, append(parent.Path(), f.info.Name),
			"view of "+parent.codec.String(), f.layout.name)
	}

	c := parent.cell
	c.mu.Lock()
	defer c.mu.Unlock()

	offset := parent.offset + f.info.Offset
	path := append(parent.Path(), f.info.Name)
	return &View[T]{
		cell:   c,
		lease:  parent.lease.acquire(bits.ShiftedMask(offset, f.info.Len), path),
		codec:  f.codec,
		offset: offset,
		n:      f.info.Len,
		path:   path,
	}, nil
}

// View is an exclusive borrow of a field's bit range inside a Cell.
type View[T any] struct {
	cell   *Cell
	lease  *lease
	codec  Codec[T]
	path   []string
	offset int
	n      int
}

// Offset returns the absolute offset of the view within the cell's storage.
func (v *View[T]) Offset() int { return v.offset }

func (v *View[T]) Len() int { return v.n }

// Path returns the field names leading to the view.
func (v *View[T]) Path() []string {
	return append([]string(nil), v.path...)
}

// Get reads the field from storage.
func (v *View[T]) Get() (T, error) {
	var zero T

	v.cell.mu.Lock()
	defer v.cell.mu.Unlock()

	if !v.lease.live {
		panic(errors.ViewConflict(v.path, "view was released"))
	}
	raw, err := v.cell.store.Load()
	if err != nil {
		return zero, err
	}
	field := bits.Extract(raw, v.offset, v.n)
	if err := v.codec.validate(field); err != nil {
		return zero, withPath(err, v.path...)
	}
	return v.codec.Decode(field), nil
}

// Set writes x into the field's bits, preserving the rest of the storage.
func (v *View[T]) Set(x T) error {
	enc := v.codec.Encode(x)

	v.cell.mu.Lock()
	defer v.cell.mu.Unlock()

	v.lease.checkWrite(v.path)
	raw, err := v.cell.store.Load()
	if err != nil {
		return err
	}
	return v.cell.store.Store(bits.Modify(raw, v.offset, v.n, enc))
}

// Release returns the range to the parent. Releasing twice is a no-op;
// releasing while a narrower view is live panics.
func (v *View[T]) Release() {
	v.cell.mu.Lock()
	defer v.cell.mu.Unlock()

	if !v.lease.live {
		return
	}
	if v.lease.held != 0 {
		panic(errors.ViewConflict(v.path, "release while a narrower view is live"))
	}
	v.lease.live = false
	v.lease.parent.held &^= v.lease.mask
}
