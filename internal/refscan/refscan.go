// Package refscan locates fields that hold references to nodes or behaviors.
package refscan

import (
	"context"
	"sort"

	"github.com/specialistvlad/variantify/internal/scene"
	"github.com/zclconf/go-cty/cty"
)

// References maps a referenced identity to the field locations that point at
// it. A location holding a collection of references is listed under every
// identity the collection mentions.
type References map[scene.ID][]scene.FieldLocation

// Count returns the number of (identity, location) pairs.
func (r References) Count() int {
	n := 0
	for _, locs := range r {
		n += len(locs)
	}
	return n
}

// IDs returns the referenced identities in ascending order.
func (r References) IDs() []scene.ID {
	ids := make([]scene.ID, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Merge adds every location of other to r.
func (r References) Merge(other References) {
	for id, locs := range other {
		r[id] = append(r[id], locs...)
	}
}

// Locate walks every live node and behavior under roots and collects the
// fields holding references whose target satisfies interest. A nil interest
// accepts every target. Book-keeping attributes of nodes are never scanned.
func Locate(ctx context.Context, roots []*scene.Node, interest func(scene.ID) bool) (References, error) {
	refs := make(References)
	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		root.Walk(func(n *scene.Node) bool {
			if n.Destroyed() {
				return false
			}
			scanFields(refs, n, n.Fields(), interest)
			for _, b := range n.Behaviors() {
				scanFields(refs, b, b.Fields(), interest)
			}
			return true
		})
	}
	return refs, nil
}

func scanFields(refs References, owner scene.Owner, fields map[string]cty.Value, interest func(scene.ID) bool) {
	for name, v := range fields {
		scanValue(refs, owner, cty.GetAttrPath(name), v, interest)
	}
}

// scanValue descends addressable containers. Any other value is a leaf: a
// single reference, or a list, set or tuple that may contain several.
func scanValue(refs References, owner scene.Owner, path cty.Path, v cty.Value, interest func(scene.ID) bool) {
	if scene.IsContainer(v) {
		for key, ev := range v.AsValueMap() {
			scanValue(refs, owner, scene.AppendStep(path, v.Type(), key), ev, interest)
		}
		return
	}
	seen := make(map[scene.ID]bool)
	for _, target := range scene.CollectRefs(v) {
		if seen[target] || (interest != nil && !interest(target)) {
			continue
		}
		seen[target] = true
		refs[target] = append(refs[target], scene.FieldLocation{Owner: owner, Path: path})
	}
}
