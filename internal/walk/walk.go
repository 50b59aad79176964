// Package walk implements the paired, positional traversal of a template
// tree and a candidate tree that every reconcile pass is built on.
package walk

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/variantify/internal/scene"
)

// ErrShortCandidate is returned when a candidate node has fewer children than
// the template node it is paired with. Callers validate structure before
// walking, so seeing it indicates a bug in the caller.
var ErrShortCandidate = errors.New("candidate has fewer children than template")

// SkipAll, returned by a Visitor, stops the walk without reporting an error.
var SkipAll = errors.New("skip everything and stop the walk")

// Mirror is a tree shaped like the template that travels alongside the walk,
// such as a divergence tree.
type Mirror[M any] interface {
	Child(i int) M
}

// Visitor is invoked once per paired position, parent before children.
type Visitor[M any] func(m M, tmpl, cand *scene.Node) error

// Parallel visits (tmpl, cand) and then recursively every
// (tmpl.Child(i), cand.Child(i)) pair for i in [0, tmpl.ChildCount()),
// handing the visitor the matching node of the mirror. Candidate children
// beyond the template's count are not visited.
func Parallel[M Mirror[M]](m M, tmpl, cand *scene.Node, visit Visitor[M]) error {
	err := parallel(m, tmpl, cand, visit)
	if errors.Is(err, SkipAll) {
		return nil
	}
	return err
}

func parallel[M Mirror[M]](m M, tmpl, cand *scene.Node, visit Visitor[M]) error {
	if err := visit(m, tmpl, cand); err != nil {
		return err
	}
	if cand.ChildCount() < tmpl.ChildCount() {
		return fmt.Errorf("%w: %q has %d, template %q has %d",
			ErrShortCandidate, cand.Name(), cand.ChildCount(), tmpl.Name(), tmpl.ChildCount())
	}
	for i := range tmpl.ChildCount() {
		if err := parallel(m.Child(i), tmpl.Child(i), cand.Child(i), visit); err != nil {
			return err
		}
	}
	return nil
}
