package witschema

import (
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/bitfield/codec"
	"github.com/wippyai/bitfield/errors"
)

// FindType returns the named type definition of res. Anonymous definitions are
// never matched.
func FindType(res *wit.Resolve, name string) (*wit.TypeDef, error) {
	for _, td := range res.TypeDefs {
		if td.Name != nil && *td.Name == name {
			return td, nil
		}
	}
	return nil, errors.New(errors.PhaseLoad, errors.KindFieldUnknown).
		Detail("no type named %q", name).
		Build()
}

// Names lists the named definitions of res that convert to a layout.
func Names(res *wit.Resolve) []string {
	var names []string
	for _, td := range res.TypeDefs {
		if td.Name == nil {
			continue
		}
		switch td.Kind.(type) {
		case *wit.Record, *wit.Flags:
			names = append(names, *td.Name)
		}
	}
	return names
}

// Resolve reads a WIT package in the JSON form produced by wasm-tools.
func Resolve(path string) (*wit.Resolve, error) {
	res, err := wit.LoadJSON(path)
	if err != nil {
		return nil, errors.Load("read WIT JSON "+path, err)
	}
	return res, nil
}

// Load reads a WIT JSON document and converts the named record or flags type.
func Load(path, typeName string) (*codec.Layout, error) {
	res, err := Resolve(path)
	if err != nil {
		return nil, err
	}
	td, err := FindType(res, typeName)
	if err != nil {
		return nil, err
	}
	return Layout(td)
}
