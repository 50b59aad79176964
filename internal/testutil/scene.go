package testutil

import (
	"fmt"

	"github.com/specialistvlad/variantify/internal/nodeid"
	"github.com/specialistvlad/variantify/internal/scene"
	"github.com/zclconf/go-cty/cty"
)

// NodeOption configures a node built by Node.
type NodeOption func(*scene.Node)

// Node builds a scene node for tests. It panics on invalid input, since test
// fixtures are expected to be well-formed.
func Node(name string, opts ...NodeOption) *scene.Node {
	n := scene.NewNode(name)
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Field sets a user field on the node.
func Field(name string, value cty.Value) NodeOption {
	return func(n *scene.Node) {
		if err := n.SetField(cty.GetAttrPath(name), value); err != nil {
			panic(fmt.Sprintf("testutil: setting %s on %s: %v", name, n.Name(), err))
		}
	}
}

// Behavior attaches a behavior with the given fields.
func Behavior(t scene.BehaviorType, fields map[string]cty.Value) NodeOption {
	return func(n *scene.Node) {
		if _, err := n.Attach(t, fields); err != nil {
			panic(fmt.Sprintf("testutil: attaching %s to %s: %v", t, n.Name(), err))
		}
	}
}

// Children appends children in order.
func Children(children ...*scene.Node) NodeOption {
	return func(n *scene.Node) {
		for _, c := range children {
			n.AddChild(c)
		}
	}
}

// Scene returns an implicit scene root holding the given top-level nodes.
func Scene(nodes ...*scene.Node) *scene.Node {
	return Node("", Children(nodes...))
}

// MustFind resolves an address below root or panics.
func MustFind(root *scene.Node, address string) *scene.Node {
	n, ok := root.Find(nodeid.MustParse(address))
	if !ok {
		panic(fmt.Sprintf("testutil: no node at %q", address))
	}
	return n
}
