// internal/nodeid/address.go
package nodeid

import (
	"fmt"
	"slices"
	"strings"
)

// Root returns the address of the scene root.
func Root() *Address {
	return &Address{}
}

// String serializes the Address into its canonical path string representation.
func (a *Address) String() string {
	if a == nil {
		return ""
	}

	var sb strings.Builder
	for i, segment := range a.Path {
		if i > 0 {
			sb.WriteRune('.')
		}
		sb.WriteString(segment.Name)
		if segment.Index > 0 {
			sb.WriteString(fmt.Sprintf("[%d]", segment.Index))
		}
	}

	return sb.String()
}

// Equal checks for equality between two Address pointers. A segment without
// an index and a segment with index 0 address the same node.
func (a *Address) Equal(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	if len(a.Path) != len(other.Path) {
		return false
	}
	for i := range a.Path {
		if a.Path[i].Name != other.Path[i].Name || a.Path[i].Ordinal() != other.Path[i].Ordinal() {
			return false
		}
	}
	return true
}

// IsRoot reports whether the address denotes the scene root.
func (a *Address) IsRoot() bool {
	return a == nil || len(a.Path) == 0
}

// Child returns a new address one level below a.
func (a *Address) Child(name string, ordinal int) *Address {
	seg := NewPathSegment(name)
	if ordinal > 0 {
		seg = NewPathSegmentWithIndex(name, ordinal)
	}
	var path []PathSegment
	if a != nil {
		path = slices.Clone(a.Path)
	}
	return &Address{Path: append(path, seg)}
}

// Parent returns the address one level above a. The parent of the root is the root.
func (a *Address) Parent() *Address {
	if a.IsRoot() {
		return Root()
	}
	return &Address{Path: slices.Clone(a.Path[:len(a.Path)-1])}
}
