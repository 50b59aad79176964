package scene

import "github.com/zclconf/go-cty/cty"

// Clone deep-copies the subtree rooted at src. Every node and behavior of the
// copy gets a fresh identity, and references that pointed inside src are
// remapped onto the corresponding objects of the copy. The copy is detached.
func Clone(src *Node) *Node {
	mapping := make(map[ID]ID)
	dst := cloneNode(src, mapping)

	lookup := func(id ID) (ID, bool) {
		next, ok := mapping[id]
		return next, ok
	}
	dst.Walk(func(n *Node) bool {
		remapFields(n.fields, lookup)
		for _, b := range n.behaviors {
			remapFields(b.fields, lookup)
		}
		return true
	})
	return dst
}

func cloneNode(src *Node, mapping map[ID]ID) *Node {
	dst := NewNode(src.name)
	mapping[src.id] = dst.id
	for k, v := range src.fields {
		dst.fields[k] = v
	}
	for _, b := range src.behaviors {
		// Types are unique on src, so attaching cannot fail.
		nb, _ := dst.AttachCopy(b)
		mapping[b.id] = nb.id
	}
	for _, c := range src.children {
		dst.AddChild(cloneNode(c, mapping))
	}
	return dst
}

func remapFields(fields map[string]cty.Value, lookup func(ID) (ID, bool)) {
	for k, v := range fields {
		if next, changed := RemapRefs(v, lookup); changed {
			fields[k] = next
		}
	}
}
