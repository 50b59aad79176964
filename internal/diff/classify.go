package diff

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/specialistvlad/variantify/internal/ctxlog"
	"github.com/specialistvlad/variantify/internal/registry"
	"github.com/specialistvlad/variantify/internal/scene"
	"github.com/specialistvlad/variantify/internal/walk"
	"github.com/zclconf/go-cty/cty"
)

// UIReader exposes the host's cosmetic editor state.
type UIReader interface {
	Expanded(id scene.ID) bool
	SelectionIndex(id scene.ID) (int, bool)
}

// Options configures Classify.
type Options struct {
	// Ignore suppresses noisy fields. Nil means DefaultIgnore.
	Ignore *IgnoreList
	// UI, when set, is consulted by the cosmetic pass.
	UI UIReader
	// Discoverer, when set, receives every candidate identity.
	Discoverer registry.Discoverer
}

type pass struct {
	name  string
	visit walk.Visitor[*Node]
}

type classifier struct {
	ignore IgnoreList
	opts   Options
}

// Classify computes the divergence of candidate from template. Structural
// mismatches are not errors: they are reported through Tree.Invalid and
// Tree.Err. The returned error is reserved for context cancellation and
// registry failures.
func Classify(ctx context.Context, template, candidate *scene.Node, opts Options) (*Tree, error) {
	logger := ctxlog.FromContext(ctx).With("candidate", label(candidate))

	c := &classifier{ignore: DefaultIgnore(), opts: opts}
	if opts.Ignore != nil {
		c.ignore = *opts.Ignore
	}

	tree := &Tree{siblingIndex: candidate.SiblingIndex()}
	tree.root = buildMirror(nil, nil, template, candidate)

	passes := []pass{
		{name: "structure", visit: c.structurePass},
		{name: "behaviors", visit: c.behaviorPass},
		{name: "fields", visit: c.fieldPass},
		{name: "cosmetic", visit: c.cosmeticPass},
		{name: "discovery", visit: func(m *Node, tmpl, cand *scene.Node) error {
			return c.discoveryPass(ctx, m, cand)
		}},
	}
	for _, p := range passes {
		if tree.Invalid() {
			logger.Debug("Candidate rejected, skipping remaining passes.", "pass", p.name, "reason", tree.Reason())
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := walk.Parallel(tree.root, template, candidate, p.visit); err != nil {
			return nil, fmt.Errorf("%s pass: %w", p.name, err)
		}
	}

	if !tree.Invalid() {
		logger.Debug("Candidate classified.", "identities", len(tree.Identities()), "unchanged", tree.Empty())
	}
	return tree, nil
}

// buildMirror creates the divergence nodes for every template position. A
// candidate with fewer children than its template cannot be walked, so the
// tree is rejected here, before any pass runs.
func buildMirror(root, parent *Node, tmpl, cand *scene.Node) *Node {
	n := newNode(root, parent, tmpl, cand)
	if cand.ChildCount() < tmpl.ChildCount() {
		n.invalidate(tmpl, fmt.Sprintf("candidate has %d children, template expects at least %d",
			cand.ChildCount(), tmpl.ChildCount()))
		return n
	}
	n.children = make([]*Node, tmpl.ChildCount())
	for i := range n.children {
		n.children[i] = buildMirror(n.root, n, tmpl.Child(i), cand.Child(i))
	}
	return n
}

func (c *classifier) structurePass(m *Node, tmpl, cand *scene.Node) error {
	for i := range tmpl.ChildCount() {
		want, got := tmpl.Child(i).Name(), cand.Child(i).Name()
		if want != got {
			m.invalidate(tmpl, fmt.Sprintf("child name mismatch: position %d is %q, template expects %q", i, got, want))
			return walk.SkipAll
		}
	}
	for i := tmpl.ChildCount(); i < cand.ChildCount(); i++ {
		m.addedChildren = append(m.addedChildren, cand.Child(i))
	}
	return nil
}

func (c *classifier) behaviorPass(m *Node, tmpl, cand *scene.Node) error {
	tmplTypes, candTypes := tmpl.BehaviorTypes(), cand.BehaviorTypes()
	for _, t := range candTypes {
		if !slices.Contains(tmplTypes, t) {
			m.addedBehaviors = append(m.addedBehaviors, t)
		}
	}
	for _, t := range tmplTypes {
		if !slices.Contains(candTypes, t) {
			m.removedBehaviors = append(m.removedBehaviors, t)
		}
	}
	return nil
}

func (c *classifier) fieldPass(m *Node, tmpl, cand *scene.Node) error {
	c.compareOwners(m, tmpl, cand)
	for _, tb := range tmpl.Behaviors() {
		if cb, ok := cand.Behavior(tb.Type()); ok {
			c.compareOwners(m, tb, cb)
		}
	}
	return nil
}

func (c *classifier) compareOwners(m *Node, tmpl, cand scene.Owner) {
	c.compareValues(nil, tmpl.State(), cand.State(), func(path cty.Path, value cty.Value) {
		m.modifiedFields = append(m.modifiedFields, ModifiedField{
			Owner:     cand.OwnerType(),
			Path:      path,
			Value:     value,
			Template:  tmpl,
			Candidate: cand,
		})
	})
}

// compareValues recurses jointly through two field states. Containers are
// descended key by key; anything else is compared as a raw value. A key
// present on one side only diverges as a whole at its own path.
func (c *classifier) compareValues(path cty.Path, tv, cv cty.Value, emit func(cty.Path, cty.Value)) {
	if len(path) > 0 && c.ignore.Ignores(path) {
		return
	}
	tc, cc := scene.IsContainer(tv), scene.IsContainer(cv)
	if tc && cc {
		tm, cm := tv.AsValueMap(), cv.AsValueMap()
		for _, key := range unionKeys(tm, cm) {
			tchild, ok := tm[key]
			if !ok {
				tchild = cty.NilVal
			}
			cchild, ok := cm[key]
			if !ok {
				cchild = cty.NilVal
			}
			c.compareValues(scene.AppendStep(path, cv.Type(), key), tchild, cchild, emit)
		}
		return
	}
	if len(path) == 0 {
		return
	}
	if tv == cty.NilVal || cv == cty.NilVal || tc != cc || !tv.RawEquals(cv) {
		emit(path, cv)
	}
}

func unionKeys(a, b map[string]cty.Value) []string {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func (c *classifier) cosmeticPass(m *Node, _, cand *scene.Node) error {
	if c.opts.UI == nil {
		return nil
	}
	m.expanded = c.opts.UI.Expanded(cand.ID())
	if idx, ok := c.opts.UI.SelectionIndex(cand.ID()); ok {
		m.selected = true
		m.selectionIndex = idx
	}
	return nil
}

func (c *classifier) discoveryPass(ctx context.Context, m *Node, cand *scene.Node) error {
	m.identities = append(m.identities, Identity{ID: cand.ID(), Owner: scene.NodeOwner})
	for _, b := range cand.Behaviors() {
		m.identities = append(m.identities, Identity{ID: b.ID(), Owner: b.OwnerType()})
	}
	if c.opts.Discoverer == nil {
		return nil
	}
	for _, id := range m.identities {
		if err := c.opts.Discoverer.Discover(ctx, id.ID); err != nil {
			return fmt.Errorf("discovering %s: %w", id.ID, err)
		}
	}
	return nil
}
