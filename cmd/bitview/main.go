package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/bitfield/codec"
	"github.com/wippyai/bitfield/errors"
	"github.com/wippyai/bitfield/memory"
	"github.com/wippyai/bitfield/witschema"
)

// assignments collects repeated -set flags.
type assignments []string

func (a *assignments) String() string { return strings.Join(*a, ",") }

func (a *assignments) Set(s string) error {
	*a = append(*a, s)
	return nil
}

type options struct {
	schema    string
	name      string
	total     int
	witFile   string
	witType   string
	bits      string
	sentinel  string
	sets      assignments
	strict    bool
	useMemory bool
	list      bool
}

func main() {
	var (
		opts        options
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Debug logging")
	)
	flag.StringVar(&opts.schema, "schema", "", "Field list (a:u2,b:s3,c:bool,d:enum(0|10|50),e:{x:u2,y:u2})")
	flag.StringVar(&opts.name, "name", "value", "Name of the schema layout")
	flag.IntVar(&opts.total, "total", 0, "Declared total width in bits (optional)")
	flag.StringVar(&opts.witFile, "wit", "", "Path to a WIT package in JSON form")
	flag.StringVar(&opts.witType, "type", "", "Record or flags type to load from -wit")
	flag.StringVar(&opts.bits, "bits", "0", "Raw storage value to decode")
	flag.StringVar(&opts.sentinel, "sentinel", "", "Start from a sentinel instead of -bits (zeroes, ones, min, max)")
	flag.Var(&opts.sets, "set", "Field assignment name=value, nested as a.b=value (repeatable)")
	flag.BoolVar(&opts.strict, "strict", false, "Reject bits above the layout width")
	flag.BoolVar(&opts.useMemory, "memory", false, "Write assignments through field views of a cell in wasm linear memory")
	flag.BoolVar(&opts.list, "list", false, "List the types in -wit and exit")
	flag.Parse()

	if opts.schema == "" && opts.witFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: bitview -schema <fields> [-bits 0x..] [-set name=value ...]")
		fmt.Fprintln(os.Stderr, "       bitview -wit <file.json> -type <name> [-bits 0x..]")
		fmt.Fprintln(os.Stderr, "       bitview -wit <file.json> -list")
		fmt.Fprintln(os.Stderr, "       bitview -schema <fields> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = logger.Sync() }()
		codec.SetLogger(logger)
		memory.SetLogger(logger)
		witschema.SetLogger(logger)
	}

	if opts.list {
		if err := listTypes(os.Stdout, opts.witFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	value, err := run(context.Background(), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(value); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printValue(os.Stdout, value)
}

func run(ctx context.Context, opts options) (codec.Struct, error) {
	l, err := loadLayout(opts)
	if err != nil {
		return codec.Struct{}, err
	}

	value, err := initialValue(l, opts)
	if err != nil {
		return codec.Struct{}, err
	}

	if opts.useMemory {
		return applyInMemory(ctx, value, opts.sets)
	}
	return applyAll(value, opts.sets)
}

func loadLayout(opts options) (*codec.Layout, error) {
	if opts.witFile != "" {
		if opts.witType == "" {
			return nil, errors.InvalidInput(errors.PhaseLoad, "-wit needs -type")
		}
		return witschema.Load(opts.witFile, opts.witType)
	}
	return parseSchema(opts.schema, opts.name, opts.total)
}

func initialValue(l *codec.Layout, opts options) (codec.Struct, error) {
	switch strings.ToLower(opts.sentinel) {
	case "":
	case "zeroes", "zeros":
		return l.Zeroes(), nil
	case "ones":
		return l.Ones(), nil
	case "min":
		return l.Min(), nil
	case "max":
		return l.Max(), nil
	default:
		return codec.Struct{}, errors.InvalidInput(errors.PhaseParse, fmt.Sprintf("unknown sentinel %q", opts.sentinel))
	}

	raw, err := strconv.ParseUint(strings.ReplaceAll(opts.bits, "_", ""), 0, 64)
	if err != nil {
		return codec.Struct{}, errors.ParseFailed("bits", err)
	}
	if opts.strict {
		return l.StrictFromBits(raw)
	}
	return l.DecodeBits(raw)
}

func applyAll(value codec.Struct, sets []string) (codec.Struct, error) {
	for _, s := range sets {
		path, v, err := parseAssignment(s)
		if err != nil {
			return codec.Struct{}, err
		}
		if value, err = assign(value, path, v); err != nil {
			return codec.Struct{}, err
		}
	}
	return value, nil
}

// applyInMemory stores value in a scratch wasm memory and writes every
// assignment through a field view of the memory-backed cell.
func applyInMemory(ctx context.Context, value codec.Struct, sets []string) (codec.Struct, error) {
	scratch, err := memory.NewScratch(ctx, memory.DefaultConfig())
	if err != nil {
		return codec.Struct{}, err
	}
	defer func() { _ = scratch.Close(ctx) }()

	cell, addr, err := scratch.NewCell(value.Layout())
	if err != nil {
		return codec.Struct{}, err
	}
	if err := cell.Store(value); err != nil {
		return codec.Struct{}, err
	}

	for _, s := range sets {
		path, v, err := parseAssignment(s)
		if err != nil {
			return codec.Struct{}, err
		}
		if err := setThroughView(cell, path, v); err != nil {
			return codec.Struct{}, err
		}
	}

	memory.Logger().Debug("assignments applied in linear memory",
		zap.Uint32("addr", addr),
		zap.Int("count", len(sets)))
	return cell.Load()
}

// setThroughView borrows the field at path from cell, descending into nested
// structs with codec.Sub, writes the parsed value and releases every view.
func setThroughView(cell *codec.Cell, path []string, value string) error {
	var (
		l      = cell.Layout()
		parent *codec.View[codec.Struct]
		held   []*codec.View[codec.Struct]
	)
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Release()
		}
	}()

	for _, name := range path[:len(path)-1] {
		f, err := codec.FieldOf[codec.Struct](l, name)
		if err != nil {
			return err
		}
		var v *codec.View[codec.Struct]
		if parent == nil {
			v, err = f.Mut(cell)
		} else {
			v, err = codec.Sub(parent, f)
		}
		if err != nil {
			return err
		}
		held = append(held, v)
		parent = v
		l = f.Info().Type.(*codec.Layout)
	}

	leaf, err := codec.FieldAny(l, path[len(path)-1])
	if err != nil {
		return err
	}
	raw, err := codec.Parse(leaf.Info().Type, value)
	if err != nil {
		return err
	}
	x, err := codec.DecodeValue(leaf.Info().Type, raw)
	if err != nil {
		return err
	}

	var view *codec.View[any]
	if parent == nil {
		view, err = leaf.Mut(cell)
	} else {
		view, err = codec.Sub(parent, leaf)
	}
	if err != nil {
		return err
	}
	defer view.Release()
	return view.Set(x)
}

func listTypes(w io.Writer, path string) error {
	res, err := witschema.Resolve(path)
	if err != nil {
		return err
	}
	for _, name := range witschema.Names(res) {
		fmt.Fprintln(w, name)
	}
	return nil
}

func printValue(w io.Writer, s codec.Struct) {
	l := s.Layout()
	width := l.StorageWidth().Bits()
	fmt.Fprintf(w, "%s (%d bits, %s) = %#0*x\n", l.Name(), l.Bits(), l.StorageWidth(), width/4, s.Bits())
	fmt.Fprintf(w, "  %0*b\n\n", width, s.Bits())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tBITS\tTYPE\tVALUE\tRAW")
	writeFields(tw, s, "", 0)
	_ = tw.Flush()
}

func writeFields(w io.Writer, s codec.Struct, prefix string, base int) {
	for _, f := range s.Layout().Fields() {
		noShift, _ := s.GetNoShift(f.Name)
		raw := noShift >> f.Offset
		off := base + f.Offset
		fmt.Fprintf(w, "%s%s\t[%d:%d)\t%s\t%s\t%0*b\n",
			prefix, f.Name, off, off+f.Len, f.Type, codec.Format(f.Type, raw), f.Len, raw)

		if f.Type.Kind() == codec.KindStruct {
			if v, err := s.Get(f.Name); err == nil {
				writeFields(w, v.(codec.Struct), prefix+f.Name+".", off)
			}
		}
	}
}
