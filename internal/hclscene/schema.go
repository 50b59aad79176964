package hclscene

import (
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Nodes []*nodeBlock `hcl:"node,block"`
	UI    []*uiBlock   `hcl:"ui,block"`
}

type nodeBlock struct {
	Name      string           `hcl:"name,label"`
	Behaviors []*behaviorBlock `hcl:"behavior,block"`
	Nodes     []*nodeBlock     `hcl:"node,block"`
	Remain    hcl.Body         `hcl:",remain"`
	DeclRange hcl.Range        `hcl:",def_range"`
}

type behaviorBlock struct {
	Type      string    `hcl:"type,label"`
	Remain    hcl.Body  `hcl:",remain"`
	DeclRange hcl.Range `hcl:",def_range"`
}

type uiBlock struct {
	Expanded  []string  `hcl:"expanded,optional"`
	Selection []string  `hcl:"selection,optional"`
	DeclRange hcl.Range `hcl:",def_range"`
}

// fieldAttributes returns the attributes left in body after decoding. The
// remaining body still holds the decoded blocks, which JustAttributes rejects,
// so its diagnostics are replaced by one per block of any other type.
func fieldAttributes(body hcl.Body, decoded ...string) (hcl.Attributes, hcl.Diagnostics) {
	attrs, _ := body.JustAttributes()

	var diags hcl.Diagnostics
	if sb, ok := body.(*hclsyntax.Body); ok {
		for _, block := range sb.Blocks {
			if slices.Contains(decoded, block.Type) {
				continue
			}
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  fmt.Sprintf("Unexpected %q block", block.Type),
				Detail:   "Blocks of this type are not allowed here.",
				Subject:  block.TypeRange.Ptr(),
			})
		}
	}
	return attrs, diags
}
