package cascade

import (
	"github.com/AnatoleLucet/cascade/internal/hcldef"
)

// LoadHCL builds a model from an HCL file:
//
//	model "Rectangle" {}
//
//	property "width"  { type = number  value = 0 }
//	property "height" { type = number  value = 0 }
//	property "area"   { type = number  value = width * height }
//	property "label"  { type = string  value = "${width}x${height}" }
//
//	constructor { params = [] }
//	constructor { params = ["width", "height"] }
//
// Types are HCL type constraints: number values are float64, strings are
// string, bools are bool, lists, sets and tuples are []any, maps and objects
// are map[string]any. A value referencing other properties is computed from
// them. The model name and constructors of the file apply unless opts
// set their own, in which case the file's constructors are ignored.
func LoadHCL(path string, opts ...Option) (*Model, error) {
	f, err := hcldef.Load(path, newConfig(opts).logger)
	if err != nil {
		return nil, err
	}
	return fromFile(f, opts)
}

// ParseHCL is LoadHCL on in-memory source. filename only appears in errors.
func ParseHCL(src []byte, filename string, opts ...Option) (*Model, error) {
	f, err := hcldef.Parse(src, filename, newConfig(opts).logger)
	if err != nil {
		return nil, err
	}
	return fromFile(f, opts)
}

func fromFile(f *hcldef.File, opts []Option) (*Model, error) {
	var fileOpts []Option
	if f.Name != "" {
		fileOpts = append(fileOpts, WithName(f.Name))
	}
	if len(f.Constructors) > 0 && !newConfig(opts).hasConstructors {
		fileOpts = append(fileOpts, WithConstructors(f.Constructors...))
	}

	return NewModel(Definitions(f.Definitions), append(fileOpts, opts...)...)
}
