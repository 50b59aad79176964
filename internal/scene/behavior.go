package scene

import (
	"fmt"
	"maps"

	"github.com/zclconf/go-cty/cty"
)

// Behavior is a typed unit of data attached to a node.
type Behavior struct {
	id     ID
	typ    BehaviorType
	node   *Node
	fields map[string]cty.Value
}

func (b *Behavior) ID() ID             { return b.id }
func (b *Behavior) Type() BehaviorType { return b.typ }

// Node returns the node the behavior is attached to, or nil once removed.
func (b *Behavior) Node() *Node { return b.node }

// OwnerType returns the owner type of the behavior's fields.
func (b *Behavior) OwnerType() OwnerType { return b.typ.Owner() }

// Destroyed reports whether the behavior was removed or its node destroyed.
func (b *Behavior) Destroyed() bool {
	return b.node == nil || b.node.destroyed
}

// Fields returns a copy of the behavior's fields.
func (b *Behavior) Fields() map[string]cty.Value {
	return maps.Clone(b.fields)
}

// Field returns the field called name.
func (b *Behavior) Field(name string) (cty.Value, bool) {
	v, ok := b.fields[name]
	return v, ok
}

// State returns the behavior's fields as a cty object.
func (b *Behavior) State() cty.Value {
	return cty.ObjectVal(maps.Clone(b.fields))
}

// SetField writes value at path. A value of cty.NilVal deletes the field.
func (b *Behavior) SetField(path cty.Path, value cty.Value) error {
	return setInFields(b.fields, path, value)
}

func (b *Behavior) String() string {
	return fmt.Sprintf("%s(%s)", b.typ, b.id)
}
