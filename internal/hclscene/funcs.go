package hclscene

import (
	"reflect"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/variantify/internal/nodeid"
	"github.com/specialistvlad/variantify/internal/scene"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// pendingRef is a reference whose address has not been resolved yet.
type pendingRef struct {
	address  *nodeid.Address
	behavior scene.BehaviorType
}

var pendingRefType = cty.Capsule("unresolved reference", reflect.TypeOf(pendingRef{}))

var nodeRefFunc = function.New(&function.Spec{
	Description: "Returns a reference to the node at the given address.",
	Params: []function.Parameter{
		{Name: "address", Type: cty.String},
	},
	Type: function.StaticReturnType(pendingRefType),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		addr, err := nodeid.Parse(args[0].AsString())
		if err != nil {
			return cty.NilVal, function.NewArgError(0, err)
		}
		return cty.CapsuleVal(pendingRefType, &pendingRef{address: addr}), nil
	},
})

var behaviorRefFunc = function.New(&function.Spec{
	Description: "Returns a reference to the behavior of the given type on the node at the given address.",
	Params: []function.Parameter{
		{Name: "address", Type: cty.String},
		{Name: "type", Type: cty.String},
	},
	Type: function.StaticReturnType(pendingRefType),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		addr, err := nodeid.Parse(args[0].AsString())
		if err != nil {
			return cty.NilVal, function.NewArgError(0, err)
		}
		t := args[1].AsString()
		if t == "" {
			return cty.NilVal, function.NewArgErrorf(1, "behavior type must not be empty")
		}
		return cty.CapsuleVal(pendingRefType, &pendingRef{address: addr, behavior: scene.BehaviorType(t)}), nil
	},
})

func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"node_ref":     nodeRefFunc,
			"behavior_ref": behaviorRefFunc,
		},
	}
}

func hasPending(v cty.Value) bool {
	found := false
	_ = cty.Walk(v, func(_ cty.Path, ev cty.Value) (bool, error) {
		if ev.Type().Equals(pendingRefType) {
			found = true
		}
		return !found, nil
	})
	return found
}

// resolvePending replaces every pending reference inside v with a reference
// to the object its address denotes below root.
func resolvePending(root *scene.Node, v cty.Value) (cty.Value, error) {
	return cty.Transform(v, func(path cty.Path, ev cty.Value) (cty.Value, error) {
		if !ev.Type().Equals(pendingRefType) || ev.IsNull() || !ev.IsKnown() {
			return ev, nil
		}
		p := ev.EncapsulatedValue().(*pendingRef)
		n, ok := root.Find(p.address)
		if !ok {
			return cty.NilVal, path.NewErrorf("no node at %q", p.address)
		}
		if p.behavior == "" {
			return scene.RefVal(n.ID()), nil
		}
		b, ok := n.Behavior(p.behavior)
		if !ok {
			return cty.NilVal, path.NewErrorf("node %q has no behavior %s", p.address, p.behavior)
		}
		return scene.RefVal(b.ID()), nil
	})
}
