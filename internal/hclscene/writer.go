package hclscene

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/variantify/internal/scene"
	"github.com/specialistvlad/variantify/internal/uistate"
	"github.com/zclconf/go-cty/cty"
)

// writer renders values and blocks of one scene.
type writer struct {
	root  *scene.Node
	index map[scene.ID]scene.Owner
}

func newWriter(root *scene.Node) *writer {
	return &writer{root: root, index: scene.Index(root)}
}

// Render returns the HCL text of the scene under root. The children of root
// become top-level node blocks; ui, when not nil, is written as a ui block
// listing the addresses of the expanded and selected nodes still in the
// scene.
func Render(root *scene.Node, ui *uistate.State) ([]byte, error) {
	w := newWriter(root)
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	for i, child := range root.Children() {
		if i > 0 {
			body.AppendNewline()
		}
		if err := w.writeNode(body, child); err != nil {
			return nil, err
		}
	}
	if ui != nil {
		w.writeUI(body, ui)
	}
	return hclwrite.Format(f.Bytes()), nil
}

// WriteScene writes the HCL text of the scene under root to out.
func WriteScene(out io.Writer, root *scene.Node, ui *uistate.State) error {
	src, err := Render(root, ui)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, bytes.NewReader(src))
	return err
}

// WriteFile writes the scene under root to the file at path.
func WriteFile(path string, root *scene.Node, ui *uistate.State) error {
	src, err := Render(root, ui)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return fmt.Errorf("writing scene %s: %w", path, err)
	}
	return nil
}

// FormatValue renders v as an HCL expression. References are written as
// node_ref and behavior_ref calls with addresses relative to root.
func FormatValue(root *scene.Node, v cty.Value) (string, error) {
	toks, err := newWriter(root).tokens(v)
	if err != nil {
		return "", err
	}
	return string(toks.Bytes()), nil
}

func (w *writer) writeNode(body *hclwrite.Body, n *scene.Node) error {
	block := body.AppendNewBlock("node", []string{n.Name()})
	nb := block.Body()

	if err := w.writeFields(nb, n.Fields()); err != nil {
		return fmt.Errorf("node %q: %w", n.AddressFrom(w.root), err)
	}
	for _, b := range n.Behaviors() {
		if len(nb.Attributes()) > 0 || len(nb.Blocks()) > 0 {
			nb.AppendNewline()
		}
		bb := nb.AppendNewBlock("behavior", []string{string(b.Type())}).Body()
		if err := w.writeFields(bb, b.Fields()); err != nil {
			return fmt.Errorf("node %q behavior %s: %w", n.AddressFrom(w.root), b.Type(), err)
		}
	}
	for _, child := range n.Children() {
		if len(nb.Attributes()) > 0 || len(nb.Blocks()) > 0 {
			nb.AppendNewline()
		}
		if err := w.writeNode(nb, child); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) writeFields(body *hclwrite.Body, fields map[string]cty.Value) error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		toks, err := w.tokens(fields[name])
		if err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		body.SetAttributeRaw(name, toks)
	}
	return nil
}

func (w *writer) writeUI(body *hclwrite.Body, ui *uistate.State) {
	expanded := w.addresses(ui.ExpandedIDs())
	selection := w.addresses(ui.Selection())
	if len(expanded) == 0 && len(selection) == 0 {
		return
	}
	if len(body.Blocks()) > 0 {
		body.AppendNewline()
	}
	ub := body.AppendNewBlock("ui", nil).Body()
	if len(expanded) > 0 {
		ub.SetAttributeValue("expanded", cty.ListVal(expanded))
	}
	if len(selection) > 0 {
		ub.SetAttributeValue("selection", cty.ListVal(selection))
	}
}

// addresses returns the addresses of the nodes among ids that are still in
// the scene.
func (w *writer) addresses(ids []scene.ID) []cty.Value {
	var out []cty.Value
	for _, id := range ids {
		owner, ok := w.index[id]
		if !ok || owner.OwnerType() != scene.NodeOwner || owner.Node() == w.root {
			continue
		}
		out = append(out, cty.StringVal(owner.Node().AddressFrom(w.root).String()))
	}
	return out
}

func (w *writer) tokens(v cty.Value) (hclwrite.Tokens, error) {
	if v == cty.NilVal {
		return hclwrite.TokensForValue(cty.NullVal(cty.DynamicPseudoType)), nil
	}
	if !v.IsWhollyKnown() {
		return nil, fmt.Errorf("value of type %s is not known", v.Type().FriendlyName())
	}
	if id, ok := scene.AsRef(v); ok {
		return w.refTokens(id)
	}
	if len(scene.CollectRefs(v)) == 0 || v.IsNull() {
		return hclwrite.TokensForValue(v), nil
	}

	ty := v.Type()
	switch {
	case ty.IsObjectType(), ty.IsMapType():
		attrs := v.AsValueMap()
		keys := make([]string, 0, len(attrs))
		for k := range attrs {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		items := make([]hclwrite.ObjectAttrTokens, 0, len(keys))
		for _, k := range keys {
			val, err := w.tokens(attrs[k])
			if err != nil {
				return nil, err
			}
			items = append(items, hclwrite.ObjectAttrTokens{Name: keyTokens(k), Value: val})
		}
		return hclwrite.TokensForObject(items), nil
	default:
		elems := v.AsValueSlice()
		items := make([]hclwrite.Tokens, 0, len(elems))
		for _, ev := range elems {
			val, err := w.tokens(ev)
			if err != nil {
				return nil, err
			}
			items = append(items, val)
		}
		return hclwrite.TokensForTuple(items), nil
	}
}

func (w *writer) refTokens(id scene.ID) (hclwrite.Tokens, error) {
	owner, ok := w.index[id]
	if !ok {
		return nil, fmt.Errorf("dangling reference to %s", id)
	}
	n := owner.Node()
	if n == w.root {
		return nil, fmt.Errorf("reference to the scene root %s cannot be written", id)
	}
	addr := hclwrite.TokensForValue(cty.StringVal(n.AddressFrom(w.root).String()))
	if owner.OwnerType() == scene.NodeOwner {
		return hclwrite.TokensForFunctionCall("node_ref", addr), nil
	}
	typ := hclwrite.TokensForValue(cty.StringVal(owner.OwnerType().String()))
	return hclwrite.TokensForFunctionCall("behavior_ref", addr, typ), nil
}

func keyTokens(k string) hclwrite.Tokens {
	if hclsyntax.ValidIdentifier(k) {
		return hclwrite.TokensForIdentifier(k)
	}
	return hclwrite.TokensForValue(cty.StringVal(k))
}
