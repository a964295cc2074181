// Package memory connects bitfield storage to WebAssembly linear memory.
//
// # Memory Wrapper
//
// Wraps a wazero api.Memory so packed values can live in a guest's memory:
//
//	mem := memory.Wrap(mod.ExportedMemory("memory"))
//	cell := codec.NewMemoryCell(layout, mem, addr)
//
// Accesses are little-endian, matching WebAssembly's memory order. Accesses
// outside the memory return an out_of_bounds error.
//
// # Scratch Memory
//
// Scratch hosts a module that does nothing but export one linear memory, and
// hands out aligned storage locations in it with a bump allocator:
//
//	s, err := memory.NewScratch(ctx, memory.DefaultConfig())
//	defer s.Close(ctx)
//	cell, addr, err := s.NewCell(layout)
package memory
