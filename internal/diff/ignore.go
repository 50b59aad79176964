package diff

import (
	"slices"

	"github.com/specialistvlad/variantify/internal/scene"
	"github.com/zclconf/go-cty/cty"
)

// IgnoreList names fields that are expected to differ without meaning
// anything. Names match the last step of a field path; paths match the whole
// rendered path (for example "children.size").
type IgnoreList struct {
	Names []string
	Paths []string
}

// DefaultIgnore returns the book-keeping fields every node carries.
func DefaultIgnore() IgnoreList {
	return IgnoreList{
		Names: []string{"id", scene.FieldName, scene.FieldSiblingIndex},
		Paths: []string{scene.FieldChildren + ".size", scene.FieldBehaviors + ".size"},
	}
}

// With returns a copy of l extended by extra names and paths.
func (l IgnoreList) With(names, paths []string) IgnoreList {
	return IgnoreList{
		Names: append(slices.Clone(l.Names), names...),
		Paths: append(slices.Clone(l.Paths), paths...),
	}
}

// Ignores reports whether the field at path is suppressed.
func (l IgnoreList) Ignores(path cty.Path) bool {
	return slices.Contains(l.Names, scene.LastName(path)) ||
		slices.Contains(l.Paths, scene.FormatPath(path))
}
