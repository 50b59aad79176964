package diff

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/variantify/internal/scene"
	"github.com/zclconf/go-cty/cty"
)

// ModifiedField is a leaf field whose candidate value differs from the
// template's.
type ModifiedField struct {
	Owner scene.OwnerType
	Path  cty.Path
	// Value is the candidate's value when it was classified. cty.NilVal
	// means the candidate does not have the field.
	Value cty.Value
	// Template and Candidate are the owners the field was compared on.
	Template  scene.Owner
	Candidate scene.Owner
}

// Current re-reads the field from the live candidate owner. A field the
// candidate no longer has reads as cty.NilVal.
func (f ModifiedField) Current() (cty.Value, error) {
	v, err := scene.GetField(f.Candidate.State(), f.Path)
	if errors.Is(err, scene.ErrNoSuchField) {
		return cty.NilVal, nil
	}
	return v, err
}

func (f ModifiedField) String() string {
	return fmt.Sprintf("%s/%s", f.Owner, scene.FormatPath(f.Path))
}

// Identity is a candidate node or behavior identity registered during
// discovery.
type Identity struct {
	ID    scene.ID
	Owner scene.OwnerType
}

// Node is the divergence of one candidate node from the template node at the
// same position.
type Node struct {
	root     *Node
	parent   *Node
	children []*Node

	template  *scene.Node
	candidate *scene.Node

	addedBehaviors   []scene.BehaviorType
	removedBehaviors []scene.BehaviorType
	modifiedFields   []ModifiedField
	addedChildren    []*scene.Node
	identities       []Identity

	expanded       bool
	selected       bool
	selectionIndex int

	// root only
	mismatch *MismatchError
}

func newNode(root, parent *Node, tmpl, cand *scene.Node) *Node {
	n := &Node{root: root, parent: parent, template: tmpl, candidate: cand}
	if root == nil {
		n.root = n
	}
	return n
}

func (n *Node) Root() *Node                  { return n.root }
func (n *Node) Parent() *Node                { return n.parent }
func (n *Node) Template() *scene.Node        { return n.template }
func (n *Node) Candidate() *scene.Node       { return n.candidate }
func (n *Node) ChildCount() int              { return len(n.children) }
func (n *Node) Child(i int) *Node            { return n.children[i] }
func (n *Node) Expanded() bool               { return n.expanded }
func (n *Node) Selected() bool               { return n.selected }
func (n *Node) SelectedIndex() int           { return n.selectionIndex }
func (n *Node) Identities() []Identity       { return n.identities }
func (n *Node) AddedChildren() []*scene.Node { return n.addedChildren }

func (n *Node) AddedBehaviors() []scene.BehaviorType   { return n.addedBehaviors }
func (n *Node) RemovedBehaviors() []scene.BehaviorType { return n.removedBehaviors }

// ModifiedFields returns the field divergences, node fields first and then
// behaviors in template order, each sorted by path.
func (n *Node) ModifiedFields() []ModifiedField { return n.modifiedFields }

// Invalid reports whether the tree this node belongs to was rejected.
func (n *Node) Invalid() bool {
	return n.root.mismatch != nil
}

// Reason returns why the tree was rejected, or "".
func (n *Node) Reason() string {
	if n.root.mismatch == nil {
		return ""
	}
	return n.root.mismatch.Reason
}

// Empty reports whether the candidate node matches its template node.
func (n *Node) Empty() bool {
	return len(n.addedBehaviors) == 0 && len(n.removedBehaviors) == 0 &&
		len(n.modifiedFields) == 0 && len(n.addedChildren) == 0
}

// Walk visits n and its descendants in pre-order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Walk(fn)
	}
}

func (n *Node) invalidate(at *scene.Node, reason string) {
	root := n.root
	if root.mismatch != nil {
		return
	}
	where := root.template.Name()
	if rel := at.AddressFrom(root.template); !rel.IsRoot() {
		where += "." + rel.String()
	}
	root.mismatch = &MismatchError{
		Candidate: label(root.candidate),
		At:        where,
		Reason:    reason,
	}
}

// Tree is the divergence of one candidate from the template. Its shape
// matches the template tree.
type Tree struct {
	root         *Node
	siblingIndex int
}

func (t *Tree) Root() *Node            { return t.root }
func (t *Tree) Template() *scene.Node  { return t.root.template }
func (t *Tree) Candidate() *scene.Node { return t.root.candidate }
func (t *Tree) Invalid() bool          { return t.root.Invalid() }
func (t *Tree) Reason() string         { return t.root.Reason() }

// SiblingIndex is the position the candidate had among its siblings when it
// was classified.
func (t *Tree) SiblingIndex() int { return t.siblingIndex }

// Err returns a *MismatchError when the tree is invalid, nil otherwise.
func (t *Tree) Err() error {
	if t.root.mismatch == nil {
		return nil
	}
	return t.root.mismatch
}

// Identities returns every identity discovered for the candidate, pre-order.
func (t *Tree) Identities() []Identity {
	var ids []Identity
	t.root.Walk(func(n *Node) {
		ids = append(ids, n.identities...)
	})
	return ids
}

// Empty reports whether no node of a valid tree diverges.
func (t *Tree) Empty() bool {
	if t.Invalid() {
		return false
	}
	empty := true
	t.root.Walk(func(n *Node) {
		empty = empty && n.Empty()
	})
	return empty
}

// label names a node by its address, or by its name when it is a root.
func label(n *scene.Node) string {
	if addr := n.Address(); !addr.IsRoot() {
		return addr.String()
	}
	return n.Name()
}
