package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/bitfield/codec"
	"github.com/wippyai/bitfield/errors"
)

const pageSize = 65536

// Config holds configuration for scratch memory creation
type Config struct {
	// ExportName is the name the memory is exported under.
	ExportName string

	// Pages is the initial memory size in pages (64KB each).
	Pages uint32

	// MemoryLimitPages caps growth. 0 means the wazero default (65536 pages).
	MemoryLimitPages uint32
}

// DefaultConfig returns a one-page memory that may grow to 16 pages.
func DefaultConfig() Config {
	return Config{
		ExportName:       "memory",
		Pages:            1,
		MemoryLimitPages: 16,
	}
}

// Scratch is a linear memory hosted by its own wazero runtime. Alloc hands out
// aligned regions with a bump allocator; regions are never freed.
type Scratch struct {
	runtime wazero.Runtime
	module  api.Module
	mem     *Wrapper
	mu      sync.Mutex
	next    uint32
}

// NewScratch compiles and instantiates a memory-only module.
func NewScratch(ctx context.Context, cfg Config) (*Scratch, error) {
	if cfg.ExportName == "" {
		cfg.ExportName = DefaultConfig().ExportName
	}
	if cfg.Pages == 0 {
		cfg.Pages = 1
	}
	if cfg.MemoryLimitPages > 0 && cfg.MemoryLimitPages < cfg.Pages {
		return nil, errors.InvalidInput(errors.PhaseMemory,
			fmt.Sprintf("memory limit of %d pages is below the initial %d pages", cfg.MemoryLimitPages, cfg.Pages))
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	compiled, err := rt.CompileModule(ctx, memoryModule(cfg.ExportName, cfg.Pages, cfg.MemoryLimitPages))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("compile scratch module: %w", err)
	}
	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName("bitfield-scratch"))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("instantiate scratch module: %w", err)
	}

	Logger().Debug("scratch memory ready",
		zap.Uint32("pages", cfg.Pages),
		zap.Uint32("limit_pages", cfg.MemoryLimitPages))

	return &Scratch{
		runtime: rt,
		module:  mod,
		mem:     Wrap(mod.ExportedMemory(cfg.ExportName)),
	}, nil
}

// Memory returns the scratch memory.
func (s *Scratch) Memory() *Wrapper {
	return s.mem
}

// Alloc reserves size bytes aligned to align, growing the memory when needed.
// align must be a power of two.
func (s *Scratch) Alloc(size, align uint32) (uint32, error) {
	if align == 0 || align&(align-1) != 0 {
		return 0, errors.InvalidInput(errors.PhaseMemory, fmt.Sprintf("alignment %d is not a power of two", align))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	addr := (s.next + align - 1) &^ (align - 1)
	end := uint64(addr) + uint64(size)
	if cur := uint64(s.mem.Size()); end > cur {
		delta := uint32((end - cur + pageSize - 1) / pageSize)
		if _, ok := s.mem.Mem.Grow(delta); !ok {
			return 0, errors.OutOfBounds(errors.PhaseMemory, addr, size)
		}
		Logger().Debug("scratch memory grown", zap.Uint32("pages", delta))
	}
	s.next = uint32(end)
	return addr, nil
}

// NewCell allocates a storage location for l and returns a cell over it,
// initialized to l's Zeroes value.
func (s *Scratch) NewCell(l *codec.Layout) (*codec.Cell, uint32, error) {
	n := uint32(l.StorageWidth().Bits() / 8)
	addr, err := s.Alloc(n, n)
	if err != nil {
		return nil, 0, err
	}
	cell := codec.NewMemoryCell(l, s.mem, addr)
	if err := cell.Store(l.Zeroes()); err != nil {
		return nil, 0, err
	}
	return cell, addr, nil
}

// Close releases the runtime and its memory.
func (s *Scratch) Close(ctx context.Context) error {
	return s.runtime.Close(ctx)
}
