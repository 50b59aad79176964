package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/variantify/internal/ctxlog"
	"github.com/specialistvlad/variantify/internal/diff"
	"github.com/specialistvlad/variantify/internal/inmemoryregistry"
	"github.com/specialistvlad/variantify/internal/materialize"
	"github.com/specialistvlad/variantify/internal/refscan"
	"github.com/specialistvlad/variantify/internal/rewrite"
	"github.com/specialistvlad/variantify/internal/scene"
	"golang.org/x/sync/errgroup"
)

// ErrNoTemplate is returned when Run is called without a template.
var ErrNoTemplate = errors.New("no template given")

// UI is the host's cosmetic editor state.
type UI interface {
	diff.UIReader
	materialize.UIWriter
	Replace(index int, id scene.ID) bool
}

// Locator finds fields under roots that reference identities of interest.
type Locator interface {
	Locate(ctx context.Context, roots []*scene.Node, interest func(scene.ID) bool) (refscan.References, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context, roots []*scene.Node, interest func(scene.ID) bool) (refscan.References, error)

// Locate calls f.
func (f LocatorFunc) Locate(ctx context.Context, roots []*scene.Node, interest func(scene.ID) bool) (refscan.References, error) {
	return f(ctx, roots, interest)
}

// Host bundles the collaborators a batch needs. Every field is optional.
type Host struct {
	// Instantiator defaults to materialize.CloneInstantiator.
	Instantiator materialize.Instantiator
	// Locator defaults to refscan.Locate.
	Locator Locator
	UI      UI
	// Scope is the part of the model searched for references. It defaults
	// to the roots of the candidates.
	Scope []*scene.Node
	// Source returns where a node was declared, for diagnostics.
	Source func(id scene.ID) *hcl.Range
}

// Options tunes a batch.
type Options struct {
	// Ignore defaults to diff.DefaultIgnore.
	Ignore *diff.IgnoreList
	// Workers bounds concurrent classification. Values below 1 mean 1.
	Workers int
}

// Status is what a batch did with one candidate.
type Status int

const (
	// Skipped candidates could not be rebuilt on their own and were never
	// classified.
	Skipped Status = iota
	// Rejected candidates are structurally incompatible with the template.
	Rejected
	// Materialized candidates were replaced by a rebuilt graph.
	Materialized
	// Failed candidates were valid but could not be rebuilt. They are left
	// in place and references to them are kept.
	Failed
)

func (s Status) String() string {
	switch s {
	case Skipped:
		return "skipped"
	case Rejected:
		return "rejected"
	case Materialized:
		return "materialized"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Outcome records what happened to one candidate.
type Outcome struct {
	Status Status
	// Reason explains a candidate that was not materialized.
	Reason string
	// Copy is the rebuilt graph of a materialized candidate.
	Copy *scene.Node
}

// Result is the outcome of a batch.
type Result struct {
	// Materialized holds the rebuilt graphs, in candidate order.
	Materialized []*scene.Node
	// Outcomes holds one entry per candidate, in candidate order.
	Outcomes []Outcome
	// Trees holds one divergence tree per candidate, in candidate order.
	// It is nil for candidates rejected before classification.
	Trees []*diff.Tree
	// Diagnostics reports candidates that were not materialized and
	// materialization warnings.
	Diagnostics hcl.Diagnostics
	Rewrite     *rewrite.Result
	// Unresolved lists discovered identities that no materialized object
	// replaced.
	Unresolved []scene.ID
}

// Run reconciles candidates against template.
func Run(ctx context.Context, template *scene.Node, candidates []*scene.Node, host Host, opts Options) (*Result, error) {
	if template == nil {
		return nil, ErrNoTemplate
	}
	logger := ctxlog.FromContext(ctx)
	logger.Info("Batch started.", "template", template.Name(), "candidates", len(candidates))

	res := &Result{
		Trees:    make([]*diff.Tree, len(candidates)),
		Outcomes: make([]Outcome, len(candidates)),
	}
	accepted := res.screen(template, candidates, host.Source)

	// Phase 1: references into any candidate subtree.
	interest := identitiesUnder(candidates, accepted)
	locator := host.Locator
	if locator == nil {
		locator = LocatorFunc(refscan.Locate)
	}
	scope := host.Scope
	if len(scope) == 0 {
		scope = rootsOf(candidates, accepted)
	}
	refs, err := locator.Locate(ctx, scope, interest)
	if err != nil {
		return nil, fmt.Errorf("locating references: %w", err)
	}
	logger.Debug("References located.", "count", refs.Count())

	// Phase 2: classification.
	reg := inmemoryregistry.New()
	if err := classifyAll(ctx, template, candidates, accepted, host, opts, reg, res.Trees); err != nil {
		return nil, err
	}

	// Phase 3: materialization, strictly sequential.
	var failed []*diff.Tree
	for i, tree := range res.Trees {
		if tree == nil {
			continue
		}
		if tree.Invalid() {
			res.Outcomes[i] = Outcome{Status: Rejected, Reason: tree.Reason()}
			logger.Warn("Candidate rejected.", "candidate", candidates[i].Address().String(), "reason", tree.Reason())
			res.Diagnostics = append(res.Diagnostics, &hcl.Diagnostic{
				Severity: hcl.DiagWarning,
				Summary:  "Candidate rejected",
				Detail:   tree.Err().Error() + ".",
				Subject:  subject(host.Source, candidates[i]),
			})
			continue
		}
		out, err := materialize.Materialize(ctx, tree, materialize.Options{
			Instantiator: host.Instantiator,
			UI:           host.UI,
			Resolver:     reg,
		})
		if err != nil {
			res.Outcomes[i] = Outcome{Status: Failed, Reason: err.Error()}
			failed = append(failed, tree)
			logger.Error("Candidate not materialized.", "candidate", candidates[i].Address().String(), "error", err)
			res.Diagnostics = append(res.Diagnostics, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Candidate not materialized",
				Detail:   fmt.Sprintf("Candidate %q: %s.", candidates[i].Address().String(), err),
				Subject:  subject(host.Source, candidates[i]),
			})
			continue
		}
		res.Diagnostics = append(res.Diagnostics, out.Warnings...)
		res.Materialized = append(res.Materialized, out.Root)
		res.Outcomes[i] = Outcome{Status: Materialized, Copy: out.Root}
	}

	// Phase 4: nothing resolves after this point.
	reg.Seal(ctx)
	res.Unresolved = reg.Pending(ctx)

	// Phase 5: values copied onto the new graphs may reference candidates.
	copied, err := refscan.Locate(ctx, res.Materialized, interest)
	if err != nil {
		return nil, fmt.Errorf("scanning materialized graphs: %w", err)
	}
	refs.Merge(copied)
	// A failed candidate may have resolved some identities before failing;
	// it is still in the scene, so its references stay.
	for _, tree := range failed {
		for _, id := range tree.Identities() {
			delete(refs, id.ID)
		}
	}

	// Phase 6
	res.Rewrite, err = rewrite.Apply(ctx, refs, reg)
	if err != nil {
		return nil, err
	}

	// Phase 7
	if host.UI != nil {
		for i, o := range res.Outcomes {
			if o.Status != Materialized {
				continue
			}
			if root := res.Trees[i].Root(); root.Selected() {
				host.UI.Replace(root.SelectedIndex(), o.Copy.ID())
			}
		}
	}

	counts := make(map[Status]int)
	for _, o := range res.Outcomes {
		counts[o.Status]++
	}
	logger.Info("Batch finished.",
		"materialized", counts[Materialized],
		"rejected", counts[Rejected],
		"skipped", counts[Skipped],
		"failed", counts[Failed],
		"rewritten", res.Rewrite.Rewritten)
	return res, nil
}

// screen records a diagnostic for every candidate that cannot be rebuilt on
// its own and returns the indexes of the others.
func (res *Result) screen(template *scene.Node, candidates []*scene.Node, source func(scene.ID) *hcl.Range) []int {
	var accepted []int
	for i, c := range candidates {
		reason := ""
		switch {
		case c == nil:
			reason = "candidate is nil"
		case c.Destroyed():
			reason = "candidate was destroyed"
		case related(c, template):
			reason = "candidate overlaps the template"
		default:
			reason = conflict(i, candidates)
		}
		if reason == "" {
			accepted = append(accepted, i)
			continue
		}
		res.Outcomes[i] = Outcome{Status: Skipped, Reason: reason}
		d := &hcl.Diagnostic{
			Severity: hcl.DiagWarning,
			Summary:  "Candidate skipped",
			Detail:   fmt.Sprintf("Candidate %d: %s.", i, reason),
		}
		if c != nil {
			d.Detail = fmt.Sprintf("Candidate %q: %s.", c.Address().String(), reason)
			d.Subject = subject(source, c)
		}
		res.Diagnostics = append(res.Diagnostics, d)
	}
	return accepted
}

// conflict explains why candidate i cannot be rebuilt next to the others,
// or returns "".
func conflict(i int, candidates []*scene.Node) string {
	c := candidates[i]
	for j, other := range candidates {
		switch {
		case j == i || other == nil:
		case other == c:
			if j < i {
				return fmt.Sprintf("candidate repeats candidate %d", j)
			}
		case isAncestor(other, c):
			return fmt.Sprintf("candidate is nested in candidate %d", j)
		}
	}
	return ""
}

func classifyAll(ctx context.Context, template *scene.Node, candidates []*scene.Node, accepted []int,
	host Host, opts Options, reg *inmemoryregistry.Store, trees []*diff.Tree) error {
	workers := max(opts.Workers, 1)
	var dui diff.UIReader
	if host.UI != nil {
		dui = host.UI
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, i := range accepted {
		g.Go(func() error {
			tree, err := diff.Classify(gctx, template, candidates[i], diff.Options{
				Ignore:     opts.Ignore,
				UI:         dui,
				Discoverer: reg,
			})
			if err != nil {
				return fmt.Errorf("classifying candidate %d: %w", i, err)
			}
			// Each goroutine owns its own slot.
			trees[i] = tree
			return nil
		})
	}
	return g.Wait()
}

func subject(source func(scene.ID) *hcl.Range, n *scene.Node) *hcl.Range {
	if source == nil {
		return nil
	}
	return source(n.ID())
}

// related reports whether one of a and b contains the other.
func related(a, b *scene.Node) bool {
	return isAncestor(a, b) || isAncestor(b, a)
}

// isAncestor reports whether a is b or one of b's ancestors.
func isAncestor(a, b *scene.Node) bool {
	for cur := b; cur != nil; cur = cur.Parent() {
		if cur == a {
			return true
		}
	}
	return false
}

// identitiesUnder returns a membership test for every node and behavior
// identity inside the accepted candidates.
func identitiesUnder(candidates []*scene.Node, accepted []int) func(scene.ID) bool {
	ids := make(map[scene.ID]struct{})
	for _, i := range accepted {
		for id := range scene.Index(candidates[i]) {
			ids[id] = struct{}{}
		}
	}
	return func(id scene.ID) bool {
		_, ok := ids[id]
		return ok
	}
}

func rootsOf(candidates []*scene.Node, accepted []int) []*scene.Node {
	var roots []*scene.Node
	seen := make(map[*scene.Node]bool)
	for _, i := range accepted {
		r := candidates[i].Root()
		if !seen[r] {
			seen[r] = true
			roots = append(roots, r)
		}
	}
	return roots
}
