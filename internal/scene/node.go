package scene

import (
	"fmt"
	"maps"
	"slices"

	"github.com/specialistvlad/variantify/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
)

// Book-keeping attributes exposed by Node.State. They are derived from the
// tree and cannot be used as user field names.
const (
	FieldName         = "name"
	FieldSiblingIndex = "sibling_index"
	FieldChildren     = "children"
	FieldBehaviors    = "behaviors"
)

var reservedNodeFields = map[string]struct{}{
	FieldName:         {},
	FieldSiblingIndex: {},
	FieldChildren:     {},
	FieldBehaviors:    {},
}

// IsReservedNodeField reports whether name is a book-keeping attribute of Node.State.
func IsReservedNodeField(name string) bool {
	_, ok := reservedNodeFields[name]
	return ok
}

// Node is a vertex of a scene tree.
type Node struct {
	id        ID
	name      string
	parent    *Node
	children  []*Node
	behaviors []*Behavior
	fields    map[string]cty.Value
	destroyed bool
}

// NewNode creates a detached node with a fresh identity.
func NewNode(name string) *Node {
	return &Node{
		id:     NewID(),
		name:   name,
		fields: make(map[string]cty.Value),
	}
}

func (n *Node) ID() ID              { return n.id }
func (n *Node) Name() string        { return n.name }
func (n *Node) SetName(name string) { n.name = name }
func (n *Node) Parent() *Node       { return n.parent }
func (n *Node) ChildCount() int     { return len(n.children) }
func (n *Node) Destroyed() bool     { return n.destroyed }

// Node returns n; it lets a node act as its own field Owner.
func (n *Node) Node() *Node { return n }

// OwnerType returns NodeOwner.
func (n *Node) OwnerType() OwnerType { return NodeOwner }

// Root returns the topmost ancestor of n.
func (n *Node) Root() *Node {
	cur := n
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// Child returns the i-th child. It panics when i is out of range.
func (n *Node) Child(i int) *Node {
	return n.children[i]
}

// Children returns a snapshot of the ordered children.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// SiblingIndex returns the position of n among its parent's children, or 0
// for a root.
func (n *Node) SiblingIndex() int {
	if n.parent == nil {
		return 0
	}
	return slices.Index(n.parent.children, n)
}

// AddChild appends child, detaching it from its previous parent first.
func (n *Node) AddChild(child *Node) {
	n.InsertChild(len(n.children), child)
}

// InsertChild places child at index i (clamped to the valid range),
// detaching it from its previous parent first. Inserting an ancestor of n is
// a programming error and panics.
func (n *Node) InsertChild(i int, child *Node) {
	for cur := n; cur != nil; cur = cur.parent {
		if cur == child {
			panic(fmt.Sprintf("scene: inserting %q under its own descendant %q", child.name, n.name))
		}
	}
	child.Detach()
	i = max(0, min(i, len(n.children)))
	n.children = slices.Insert(n.children, i, child)
	child.parent = n
}

// Detach removes n from its parent. It is a no-op for roots.
func (n *Node) Detach() {
	if n.parent == nil {
		return
	}
	p := n.parent
	if idx := slices.Index(p.children, n); idx >= 0 {
		p.children = slices.Delete(p.children, idx, idx+1)
	}
	n.parent = nil
}

// Destroy detaches n and marks it and its whole subtree as destroyed.
func (n *Node) Destroy() {
	n.Detach()
	n.Walk(func(d *Node) bool {
		d.destroyed = true
		return true
	})
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range slices.Clone(n.children) {
		c.Walk(fn)
	}
}

// Behaviors returns a snapshot of the attached behaviors in attach order.
func (n *Node) Behaviors() []*Behavior {
	return slices.Clone(n.behaviors)
}

// BehaviorTypes returns the types of the attached behaviors in attach order.
func (n *Node) BehaviorTypes() []BehaviorType {
	types := make([]BehaviorType, len(n.behaviors))
	for i, b := range n.behaviors {
		types[i] = b.typ
	}
	return types
}

// Behavior returns the attached behavior of type t.
func (n *Node) Behavior(t BehaviorType) (*Behavior, bool) {
	for _, b := range n.behaviors {
		if b.typ == t {
			return b, true
		}
	}
	return nil, false
}

// Attach creates and attaches a behavior of type t with the given fields.
func (n *Node) Attach(t BehaviorType, fields map[string]cty.Value) (*Behavior, error) {
	if t == "" {
		return nil, ErrInvalidBehaviorType
	}
	if _, exists := n.Behavior(t); exists {
		return nil, fmt.Errorf("%w: %s on %q", ErrDuplicateBehavior, t, n.name)
	}
	b := &Behavior{
		id:     NewID(),
		typ:    t,
		node:   n,
		fields: make(map[string]cty.Value, len(fields)),
	}
	maps.Copy(b.fields, fields)
	n.behaviors = append(n.behaviors, b)
	return b, nil
}

// AttachCopy attaches a new behavior with the type and current state of src.
func (n *Node) AttachCopy(src *Behavior) (*Behavior, error) {
	return n.Attach(src.typ, src.fields)
}

// RemoveBehavior detaches the behavior of type t and reports whether one was attached.
func (n *Node) RemoveBehavior(t BehaviorType) bool {
	idx := slices.IndexFunc(n.behaviors, func(b *Behavior) bool { return b.typ == t })
	if idx < 0 {
		return false
	}
	n.behaviors[idx].node = nil
	n.behaviors = slices.Delete(n.behaviors, idx, idx+1)
	return true
}

// Fields returns a copy of the user fields.
func (n *Node) Fields() map[string]cty.Value {
	return maps.Clone(n.fields)
}

// Field returns the user field called name.
func (n *Node) Field(name string) (cty.Value, bool) {
	v, ok := n.fields[name]
	return v, ok
}

// State returns the node's serializable state: its user fields plus the
// book-keeping attributes name, sibling_index, children.size and
// behaviors.size.
func (n *Node) State() cty.Value {
	attrs := make(map[string]cty.Value, len(n.fields)+len(reservedNodeFields))
	maps.Copy(attrs, n.fields)
	attrs[FieldName] = cty.StringVal(n.name)
	attrs[FieldSiblingIndex] = cty.NumberIntVal(int64(n.SiblingIndex()))
	attrs[FieldChildren] = cty.ObjectVal(map[string]cty.Value{"size": cty.NumberIntVal(int64(len(n.children)))})
	attrs[FieldBehaviors] = cty.ObjectVal(map[string]cty.Value{"size": cty.NumberIntVal(int64(len(n.behaviors)))})
	return cty.ObjectVal(attrs)
}

// SetField writes value at path. A value of cty.NilVal deletes the field.
// Book-keeping attributes are read-only, except that a string written to
// "name" renames the node.
func (n *Node) SetField(path cty.Path, value cty.Value) error {
	if len(path) == 0 {
		return ErrInvalidPath
	}
	attr, ok := path[0].(cty.GetAttrStep)
	if !ok {
		return fmt.Errorf("%w: first step must be an attribute", ErrInvalidPath)
	}
	if IsReservedNodeField(attr.Name) {
		if attr.Name == FieldName && len(path) == 1 && value != cty.NilVal &&
			value.Type() == cty.String && value.IsKnown() && !value.IsNull() {
			n.name = value.AsString()
			return nil
		}
		return fmt.Errorf("%w: %s", ErrReadOnlyField, FormatPath(path))
	}
	return setInFields(n.fields, path, value)
}

// Address returns the address of n relative to its root.
func (n *Node) Address() *nodeid.Address {
	return n.AddressFrom(nil)
}

// AddressFrom returns the address of n relative to ancestor. A nil ancestor,
// or one that is not above n, means the topmost root.
func (n *Node) AddressFrom(ancestor *Node) *nodeid.Address {
	if n == ancestor || n.parent == nil {
		return nodeid.Root()
	}
	ordinal := 0
	for _, sib := range n.parent.children {
		if sib == n {
			break
		}
		if sib.name == n.name {
			ordinal++
		}
	}
	return n.parent.AddressFrom(ancestor).Child(n.name, ordinal)
}

// Find resolves addr relative to n.
func (n *Node) Find(addr *nodeid.Address) (*Node, bool) {
	cur := n
	if addr == nil {
		return cur, true
	}
	for _, seg := range addr.Path {
		var next *Node
		seen := 0
		for _, c := range cur.children {
			if c.name != seg.Name {
				continue
			}
			if seen == seg.Ordinal() {
				next = c
				break
			}
			seen++
		}
		if next == nil {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func (n *Node) String() string {
	return fmt.Sprintf("%s(%s)", n.name, n.id)
}
