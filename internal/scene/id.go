package scene

import (
	"strconv"
	"sync/atomic"
)

// ID is a process-unique handle for a node or behavior. The zero ID is never
// assigned.
type ID uint64

var lastID atomic.Uint64

// NewID returns a fresh identity.
func NewID() ID {
	return ID(lastID.Add(1))
}

// IsZero reports whether id is the unassigned zero value.
func (id ID) IsZero() bool {
	return id == 0
}

func (id ID) String() string {
	return "#" + strconv.FormatUint(uint64(id), 10)
}

// BehaviorType identifies the kind of a behavior. At most one behavior of a
// given type is attached to a node.
type BehaviorType string

// OwnerType identifies who owns a field: the node itself (NodeOwner) or the
// behavior of the named type.
type OwnerType string

// NodeOwner is the owner type of a node's intrinsic fields.
const NodeOwner OwnerType = ""

// Owner returns the owner type of fields stored on behaviors of type t.
func (t BehaviorType) Owner() OwnerType {
	return OwnerType(t)
}

func (o OwnerType) String() string {
	if o == NodeOwner {
		return "node"
	}
	return string(o)
}
