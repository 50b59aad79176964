package scene

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Owner is anything that stores fields: a node (intrinsic fields) or one of
// its behaviors.
type Owner interface {
	ID() ID
	OwnerType() OwnerType
	Node() *Node
	State() cty.Value
	SetField(path cty.Path, value cty.Value) error
	Destroyed() bool
}

var (
	_ Owner = (*Node)(nil)
	_ Owner = (*Behavior)(nil)
)

// OwnerOf returns the owner of fields of type t on n.
func OwnerOf(n *Node, t OwnerType) (Owner, bool) {
	if t == NodeOwner {
		return n, true
	}
	b, ok := n.Behavior(BehaviorType(t))
	if !ok {
		return nil, false
	}
	return b, true
}

// FieldLocation is a field somewhere in a model.
type FieldLocation struct {
	Owner Owner
	Path  cty.Path
}

// Get reads the current value at the location.
func (l FieldLocation) Get() (cty.Value, error) {
	return GetField(l.Owner.State(), l.Path)
}

// Set writes value at the location.
func (l FieldLocation) Set(value cty.Value) error {
	return l.Owner.SetField(l.Path, value)
}

func (l FieldLocation) String() string {
	owner := "<nil>"
	if l.Owner != nil {
		if n := l.Owner.Node(); n != nil {
			owner = fmt.Sprintf("%s:%s", n.Address(), l.Owner.OwnerType())
		} else {
			owner = fmt.Sprintf("%s:%s", l.Owner.ID(), l.Owner.OwnerType())
		}
	}
	return owner + "/" + FormatPath(l.Path)
}

// Index maps the identity of every node and behavior under root to its owner.
func Index(root *Node) map[ID]Owner {
	idx := make(map[ID]Owner)
	root.Walk(func(n *Node) bool {
		idx[n.id] = n
		for _, b := range n.behaviors {
			idx[b.id] = b
		}
		return true
	})
	return idx
}
