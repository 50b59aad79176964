// internal/nodeid/types.go
package nodeid

// PathSegment represents a single component of an address path, e.g., `name[index]`.
type PathSegment struct {
	Name  string
	Index int // -1 indicates no index is present.
}

// NewPathSegment creates a new path segment without an index.
func NewPathSegment(name string) PathSegment {
	return PathSegment{Name: name, Index: -1}
}

// NewPathSegmentWithIndex creates a new path segment that includes an index.
func NewPathSegmentWithIndex(name string, index int) PathSegment {
	return PathSegment{Name: name, Index: index}
}

// HasIndex returns true if the path segment has an explicit index.
func (s PathSegment) HasIndex() bool {
	return s.Index >= 0
}

// Ordinal is the position of the addressed node among its same-named
// siblings. A segment without an index addresses the first one.
func (s PathSegment) Ordinal() int {
	if s.Index < 0 {
		return 0
	}
	return s.Index
}

// Address locates a node relative to a scene root.
type Address struct {
	Path []PathSegment
}
