package scene

import (
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// Describe renders v for logs and dumps. References render as their target
// identity; a deleted value (cty.NilVal) renders as "<deleted>".
func Describe(v cty.Value) string {
	switch {
	case v == cty.NilVal:
		return "<deleted>"
	case !v.IsWhollyKnown():
		return "<unknown>"
	}
	if id, ok := AsRef(v); ok {
		return "ref(" + id.String() + ")"
	}
	plain := mapLeaves(v, func(leaf cty.Value) cty.Value {
		if id, ok := AsRef(leaf); ok {
			return cty.StringVal("ref(" + id.String() + ")")
		}
		return leaf
	})
	return string(hclwrite.TokensForValue(plain).Bytes())
}
