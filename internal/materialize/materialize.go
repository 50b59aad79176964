package materialize

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/variantify/internal/ctxlog"
	"github.com/specialistvlad/variantify/internal/diff"
	"github.com/specialistvlad/variantify/internal/registry"
	"github.com/specialistvlad/variantify/internal/scene"
)

// ErrShapeMismatch is returned when an instantiated copy does not have the
// template's shape.
var ErrShapeMismatch = errors.New("instantiated copy does not match template shape")

// Instantiator produces a structurally identical fresh copy of a template.
type Instantiator interface {
	Instantiate(ctx context.Context, template *scene.Node) (*scene.Node, error)
}

// InstantiatorFunc adapts a function to Instantiator.
type InstantiatorFunc func(ctx context.Context, template *scene.Node) (*scene.Node, error)

// Instantiate calls f.
func (f InstantiatorFunc) Instantiate(ctx context.Context, template *scene.Node) (*scene.Node, error) {
	return f(ctx, template)
}

// CloneInstantiator instantiates templates with scene.Clone.
var CloneInstantiator = InstantiatorFunc(func(_ context.Context, template *scene.Node) (*scene.Node, error) {
	return scene.Clone(template), nil
})

// UIWriter receives the cosmetic state of materialized nodes.
type UIWriter interface {
	SetExpanded(id scene.ID, expanded bool)
}

// Options configures Materialize.
type Options struct {
	// Instantiator defaults to CloneInstantiator.
	Instantiator Instantiator
	// UI is optional.
	UI UIWriter
	// Resolver is optional; without it identities are not recorded.
	Resolver registry.Resolver
}

// Result is the outcome of one materialization.
type Result struct {
	// Root is the materialized copy, placed where the candidate was.
	Root *scene.Node
	// Warnings are non-fatal invariant violations met while patching.
	Warnings hcl.Diagnostics
}

type materializer struct {
	opts     Options
	warnings hcl.Diagnostics

	// Applied only once the whole copy is patched, so a failure leaves the
	// candidate and the registry as they were.
	transplants []transplant
	resolutions []resolution
}

type transplant struct {
	dst      *scene.Node
	children []*scene.Node
}

type resolution struct {
	original, materialized scene.ID
}

// Materialize applies tree to a fresh instance of its template and replaces
// the candidate with it.
func Materialize(ctx context.Context, tree *diff.Tree, opts Options) (*Result, error) {
	candidate := tree.Candidate()
	if tree.Invalid() {
		return nil, fmt.Errorf("materializing %s: %w", candidate.Name(), tree.Err())
	}
	if candidate.Destroyed() {
		return nil, fmt.Errorf("materializing %s: candidate was already destroyed", candidate.Name())
	}
	ctx, logger := ctxlog.With(ctx, "candidate", candidate.String())

	inst := opts.Instantiator
	if inst == nil {
		inst = CloneInstantiator
	}
	instance, err := inst.Instantiate(ctx, tree.Template())
	if err != nil {
		return nil, fmt.Errorf("instantiating template %s: %w", tree.Template().Name(), err)
	}
	if err := checkShape(instance, tree.Root()); err != nil {
		return nil, err
	}

	m := &materializer{opts: opts}
	if err := m.patch(instance, tree.Root()); err != nil {
		return nil, err
	}
	if err := m.commit(ctx); err != nil {
		return nil, err
	}

	if parent := candidate.Parent(); parent != nil {
		parent.InsertChild(candidate.SiblingIndex(), instance)
	}
	candidate.Destroy()

	logger.Info("Candidate materialized.", "materialized", instance.ID(), "warnings", len(m.warnings))
	return &Result{Root: instance, Warnings: m.warnings}, nil
}

// checkShape verifies, before anything is mutated, that every template
// position of the divergence tree exists on the instance.
func checkShape(dst *scene.Node, d *diff.Node) error {
	if dst.ChildCount() < d.ChildCount() {
		return fmt.Errorf("%w: %q has %d children, expected %d",
			ErrShapeMismatch, dst.Name(), dst.ChildCount(), d.ChildCount())
	}
	for i := range d.ChildCount() {
		if err := checkShape(dst.Child(i), d.Child(i)); err != nil {
			return err
		}
	}
	return nil
}

func (m *materializer) patch(dst *scene.Node, d *diff.Node) error {
	for _, t := range d.RemovedBehaviors() {
		dst.RemoveBehavior(t)
	}
	for _, t := range d.AddedBehaviors() {
		src, ok := d.Candidate().Behavior(t)
		if !ok {
			m.warn("Added behavior vanished from candidate",
				fmt.Sprintf("Behavior %s was added on %s but is no longer attached to it.", t, d.Candidate()))
			continue
		}
		if _, err := dst.AttachCopy(src); err != nil {
			return fmt.Errorf("attaching %s to %s: %w", t, dst, err)
		}
	}
	if err := m.writeFields(dst, d); err != nil {
		return err
	}
	// Tail children land after the template's children, so moving them at
	// commit time gives the same order as moving them here.
	if added := d.AddedChildren(); len(added) > 0 {
		m.transplants = append(m.transplants, transplant{dst: dst, children: added})
	}
	if m.opts.UI != nil {
		m.opts.UI.SetExpanded(dst.ID(), d.Expanded())
	}
	m.resolve(dst, d)

	for i := range d.ChildCount() {
		if err := m.patch(dst.Child(i), d.Child(i)); err != nil {
			return err
		}
	}
	return nil
}

// commit resolves the discovered identities and moves the tail children onto
// the copy.
func (m *materializer) commit(ctx context.Context) error {
	if m.opts.Resolver != nil {
		for _, r := range m.resolutions {
			if err := m.opts.Resolver.Resolve(ctx, r.original, r.materialized); err != nil {
				return fmt.Errorf("resolving %s: %w", r.original, err)
			}
		}
	}
	for _, t := range m.transplants {
		for _, c := range t.children {
			t.dst.AddChild(c)
		}
	}
	return nil
}

func (m *materializer) writeFields(dst *scene.Node, d *diff.Node) error {
	for _, f := range d.ModifiedFields() {
		owner, ok := scene.OwnerOf(dst, f.Owner)
		if !ok {
			m.warn("Field owner missing on materialized copy",
				fmt.Sprintf("Cannot write %s: %s has no %s.", f, dst, f.Owner))
			continue
		}
		value, err := f.Current()
		if err != nil {
			return fmt.Errorf("reading %s from candidate: %w", f, err)
		}
		if err := owner.SetField(f.Path, value); err != nil {
			if errors.Is(err, scene.ErrReadOnlyField) {
				m.warn("Read-only field not copied", fmt.Sprintf("%s on %s: %v.", f, dst, err))
				continue
			}
			return fmt.Errorf("writing %s on %s: %w", f, dst, err)
		}
	}
	return nil
}

func (m *materializer) resolve(dst *scene.Node, d *diff.Node) {
	if m.opts.Resolver == nil {
		return
	}
	for _, id := range d.Identities() {
		owner, ok := scene.OwnerOf(dst, id.Owner)
		if !ok {
			m.warn("Behavior missing on materialized copy",
				fmt.Sprintf("No %s on %s to stand in for %s; references to it are left untouched.", id.Owner, dst, id.ID))
			continue
		}
		m.resolutions = append(m.resolutions, resolution{original: id.ID, materialized: owner.ID()})
	}
}

func (m *materializer) warn(summary, detail string) {
	m.warnings = append(m.warnings, &hcl.Diagnostic{
		Severity: hcl.DiagWarning,
		Summary:  summary,
		Detail:   detail,
	})
}
