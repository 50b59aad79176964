package hclscene

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/variantify/internal/ctxlog"
	"github.com/specialistvlad/variantify/internal/fsutil"
	"github.com/specialistvlad/variantify/internal/nodeid"
	"github.com/specialistvlad/variantify/internal/scene"
	"github.com/specialistvlad/variantify/internal/uistate"
	"github.com/zclconf/go-cty/cty"
)

// Extension is the file extension of scene files.
const Extension = ".hcl"

// Scene is a loaded scene: the implicit root holding every top-level node,
// the editor state declared in ui blocks, and the parsed source files.
type Scene struct {
	Root  *scene.Node
	UI    *uistate.State
	Files map[string]*hcl.File

	sources map[scene.ID]hcl.Range
}

// Source returns the range of the block that declared the node or behavior
// with the given identity, or nil if it was not loaded from a file.
func (s *Scene) Source(id scene.ID) *hcl.Range {
	rng, ok := s.sources[id]
	if !ok {
		return nil
	}
	return &rng
}

// Find returns the node at the given address below the scene root.
func (s *Scene) Find(address string) (*scene.Node, error) {
	addr, err := nodeid.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", address, err)
	}
	n, ok := s.Root.Find(addr)
	if !ok {
		return nil, fmt.Errorf("no node at %q", address)
	}
	return n, nil
}

// LoadError reports every problem found while loading a scene. Files holds
// the sources so the diagnostics can be printed with snippets.
type LoadError struct {
	Diags hcl.Diagnostics
	Files map[string]*hcl.File
}

func (e *LoadError) Error() string {
	return e.Diags.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Diags
}

// pendingField is a field whose value still holds unresolved references.
type pendingField struct {
	owner scene.Owner
	name  string
	value cty.Value
	rng   hcl.Range
}

type loader struct {
	scene   *Scene
	evalCtx *hcl.EvalContext
	pending []pendingField
	diags   hcl.Diagnostics
}

// LoadScene parses every scene file found under paths. Directories are
// searched recursively for files ending in Extension. All files share one
// implicit root, so references may cross files.
func LoadScene(ctx context.Context, paths ...string) (*Scene, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Scene loader started.", "path_count", len(paths))

	files, err := fsutil.FindFiles(paths, Extension)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found in %v", Extension, paths)
	}
	logger.Debug("Discovered scene files.", "count", len(files))

	l := &loader{
		scene: &Scene{
			Root:    scene.NewNode(""),
			UI:      uistate.New(),
			sources: make(map[scene.ID]hcl.Range),
		},
		evalCtx: evalContext(),
	}

	parser := hclparse.NewParser()
	var uiBlocks []*uiBlock
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hclFile, diags := parser.ParseHCLFile(file)
		l.diags = append(l.diags, diags...)
		if diags.HasErrors() {
			continue
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		l.diags = append(l.diags, diags...)
		if diags.HasErrors() {
			continue
		}
		for _, nb := range root.Nodes {
			l.buildNode(l.scene.Root, nb)
		}
		uiBlocks = append(uiBlocks, root.UI...)
	}
	l.scene.Files = parser.Files()

	if !l.diags.HasErrors() {
		l.resolveReferences()
		l.applyUI(uiBlocks)
	}
	if l.diags.HasErrors() {
		return nil, &LoadError{Diags: l.diags, Files: l.scene.Files}
	}

	logger.Debug("Scene loading complete.", "files", len(files), "objects", len(l.scene.sources))
	return l.scene, nil
}

// LoadTemplate loads a single template graph. The file set must declare
// exactly one top-level node, which is returned detached from the scene
// root.
func LoadTemplate(ctx context.Context, path string) (*scene.Node, error) {
	s, err := LoadScene(ctx, path)
	if err != nil {
		return nil, err
	}
	if n := s.Root.ChildCount(); n != 1 {
		return nil, fmt.Errorf("template %s must declare exactly one top-level node, found %d", path, n)
	}
	template := s.Root.Child(0)
	template.Detach()
	return template, nil
}

func (l *loader) buildNode(parent *scene.Node, nb *nodeBlock) {
	if !nodeid.ValidName(nb.Name) {
		l.diags = append(l.diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid node name",
			Detail:   fmt.Sprintf("The name %q cannot be used in an address; names must be non-empty, without surrounding spaces and without '.', '[' or ']'.", nb.Name),
			Subject:  nb.DeclRange.Ptr(),
		})
		return
	}

	n := scene.NewNode(nb.Name)
	parent.AddChild(n)
	l.scene.sources[n.ID()] = nb.DeclRange

	fields, diags := fieldAttributes(nb.Remain, "behavior", "node")
	l.diags = append(l.diags, diags...)
	for _, attr := range sortedAttributes(fields) {
		if scene.IsReservedNodeField(attr.Name) {
			l.diags = append(l.diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Reserved field name",
				Detail:   fmt.Sprintf("The field name %q is derived from the scene tree and cannot be set.", attr.Name),
				Subject:  attr.NameRange.Ptr(),
			})
			continue
		}
		if v, ok := l.evaluate(n, attr); ok {
			if err := n.SetField(cty.GetAttrPath(attr.Name), v); err != nil {
				l.fieldError(attr, err)
			}
		}
	}

	for _, bb := range nb.Behaviors {
		l.buildBehavior(n, bb)
	}
	for _, child := range nb.Nodes {
		l.buildNode(n, child)
	}
}

func (l *loader) buildBehavior(n *scene.Node, bb *behaviorBlock) {
	b, err := n.Attach(scene.BehaviorType(bb.Type), nil)
	if err != nil {
		summary := "Invalid behavior"
		if errors.Is(err, scene.ErrDuplicateBehavior) {
			summary = "Duplicate behavior"
		}
		l.diags = append(l.diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  summary,
			Detail:   fmt.Sprintf("Cannot attach behavior %q to node %q: %s.", bb.Type, n.Address(), err),
			Subject:  bb.DeclRange.Ptr(),
		})
		return
	}
	l.scene.sources[b.ID()] = bb.DeclRange

	fields, diags := fieldAttributes(bb.Remain)
	l.diags = append(l.diags, diags...)
	for _, attr := range sortedAttributes(fields) {
		if v, ok := l.evaluate(b, attr); ok {
			if err := b.SetField(cty.GetAttrPath(attr.Name), v); err != nil {
				l.fieldError(attr, err)
			}
		}
	}
}

// evaluate returns the value of attr. Values holding references are parked
// until every node exists and reported as not ready.
func (l *loader) evaluate(owner scene.Owner, attr *hcl.Attribute) (cty.Value, bool) {
	v, diags := attr.Expr.Value(l.evalCtx)
	l.diags = append(l.diags, diags...)
	if diags.HasErrors() {
		return cty.NilVal, false
	}
	if hasPending(v) {
		l.pending = append(l.pending, pendingField{owner: owner, name: attr.Name, value: v, rng: attr.Expr.Range()})
		return cty.NilVal, false
	}
	return v, true
}

func (l *loader) resolveReferences() {
	for _, p := range l.pending {
		v, err := resolvePending(l.scene.Root, p.value)
		if err != nil {
			l.diags = append(l.diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unresolved reference",
				Detail:   fmt.Sprintf("Field %q: %s.", p.name, err),
				Subject:  p.rng.Ptr(),
			})
			continue
		}
		if err := p.owner.SetField(cty.GetAttrPath(p.name), v); err != nil {
			l.diags = append(l.diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid field",
				Detail:   fmt.Sprintf("Field %q: %s.", p.name, err),
				Subject:  p.rng.Ptr(),
			})
		}
	}
	l.pending = nil
}

func (l *loader) applyUI(blocks []*uiBlock) {
	if len(blocks) > 1 {
		l.diags = append(l.diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Duplicate ui block",
			Detail:   fmt.Sprintf("Only one ui block may be declared across the scene; the first is at %s.", blocks[0].DeclRange),
			Subject:  blocks[1].DeclRange.Ptr(),
		})
		return
	}
	if len(blocks) == 0 {
		return
	}
	ui := blocks[0]

	for _, address := range ui.Expanded {
		if n, ok := l.lookup(address, ui.DeclRange); ok {
			l.scene.UI.SetExpanded(n.ID(), true)
		}
	}
	selection := make([]scene.ID, 0, len(ui.Selection))
	for _, address := range ui.Selection {
		if n, ok := l.lookup(address, ui.DeclRange); ok {
			selection = append(selection, n.ID())
		}
	}
	l.scene.UI.Select(selection...)
}

func (l *loader) lookup(address string, rng hcl.Range) (*scene.Node, bool) {
	n, err := l.scene.Find(address)
	if err != nil {
		l.diags = append(l.diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unknown node address",
			Detail:   fmt.Sprintf("The ui block refers to %q: %s.", address, err),
			Subject:  rng.Ptr(),
		})
		return nil, false
	}
	return n, true
}

func (l *loader) fieldError(attr *hcl.Attribute, err error) {
	l.diags = append(l.diags, &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Invalid field",
		Detail:   fmt.Sprintf("Field %q: %s.", attr.Name, err),
		Subject:  attr.Expr.Range().Ptr(),
	})
}

// sortedAttributes returns attrs in source order.
func sortedAttributes(attrs hcl.Attributes) []*hcl.Attribute {
	out := make([]*hcl.Attribute, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b *hcl.Attribute) int {
		return a.Range.Start.Byte - b.Range.Start.Byte
	})
	return out
}
