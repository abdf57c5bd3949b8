package hcldef

import (
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// functions available to value expressions
var functions = map[string]function.Function{
	"abs":       stdlib.AbsoluteFunc,
	"ceil":      stdlib.CeilFunc,
	"coalesce":  stdlib.CoalesceFunc,
	"concat":    stdlib.ConcatFunc,
	"floor":     stdlib.FloorFunc,
	"format":    stdlib.FormatFunc,
	"join":      stdlib.JoinFunc,
	"length":    stdlib.LengthFunc,
	"lower":     stdlib.LowerFunc,
	"max":       stdlib.MaxFunc,
	"min":       stdlib.MinFunc,
	"strlen":    stdlib.StrlenFunc,
	"trimspace": stdlib.TrimSpaceFunc,
	"upper":     stdlib.UpperFunc,
}
