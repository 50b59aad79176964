package scene

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/zclconf/go-cty/cty"
)

// Ref is the payload of a reference value.
type Ref struct {
	Target ID
}

// RefType is the cty capsule type of references to nodes and behaviors. Two
// references are equal when they point at the same identity.
var RefType = cty.CapsuleWithOps("reference", reflect.TypeOf(Ref{}), &cty.CapsuleOps{
	GoString: func(v interface{}) string {
		return fmt.Sprintf("scene.RefVal(%d)", v.(*Ref).Target)
	},
	TypeGoString: func(reflect.Type) string {
		return "scene.RefType"
	},
	Equals: func(a, b interface{}) cty.Value {
		return cty.BoolVal(a.(*Ref).Target == b.(*Ref).Target)
	},
	RawEquals: func(a, b interface{}) bool {
		return a.(*Ref).Target == b.(*Ref).Target
	},
	HashKey: func(v interface{}) string {
		return strconv.FormatUint(uint64(v.(*Ref).Target), 10)
	},
})

// RefVal returns a reference value pointing at target.
func RefVal(target ID) cty.Value {
	return cty.CapsuleVal(RefType, &Ref{Target: target})
}

// AsRef extracts the target of a reference value.
func AsRef(v cty.Value) (ID, bool) {
	if v == cty.NilVal || v.IsNull() || !v.IsKnown() || !v.Type().Equals(RefType) {
		return 0, false
	}
	return v.EncapsulatedValue().(*Ref).Target, true
}

// RemapRefs returns v with every reference whose target is known to lookup
// replaced by a reference to the mapped identity. The second result reports
// whether anything changed.
func RemapRefs(v cty.Value, lookup func(ID) (ID, bool)) (cty.Value, bool) {
	changed := false
	out := mapLeaves(v, func(leaf cty.Value) cty.Value {
		target, ok := AsRef(leaf)
		if !ok {
			return leaf
		}
		next, ok := lookup(target)
		if !ok || next == target {
			return leaf
		}
		changed = true
		return RefVal(next)
	})
	return out, changed
}

// mapLeaves rebuilds v bottom-up, applying fn to every non-collection value.
// Unlike field paths, it descends into lists, tuples and sets.
func mapLeaves(v cty.Value, fn func(cty.Value) cty.Value) cty.Value {
	if v == cty.NilVal || v.IsNull() || !v.IsKnown() {
		return v
	}
	ty := v.Type()
	switch {
	case ty.IsObjectType():
		attrs := v.AsValueMap()
		if len(attrs) == 0 {
			return v
		}
		out := make(map[string]cty.Value, len(attrs))
		for k, ev := range attrs {
			out[k] = mapLeaves(ev, fn)
		}
		return cty.ObjectVal(out)
	case ty.IsMapType():
		attrs := v.AsValueMap()
		if len(attrs) == 0 {
			return v
		}
		out := make(map[string]cty.Value, len(attrs))
		for k, ev := range attrs {
			out[k] = mapLeaves(ev, fn)
		}
		return cty.MapVal(out)
	case ty.IsListType(), ty.IsSetType(), ty.IsTupleType():
		elems := v.AsValueSlice()
		if len(elems) == 0 {
			return v
		}
		out := make([]cty.Value, len(elems))
		for i, ev := range elems {
			out[i] = mapLeaves(ev, fn)
		}
		switch {
		case ty.IsListType():
			return cty.ListVal(out)
		case ty.IsSetType():
			return cty.SetVal(out)
		default:
			return cty.TupleVal(out)
		}
	}
	return fn(v)
}

// CollectRefs returns the targets of every reference anywhere inside v.
func CollectRefs(v cty.Value) []ID {
	var ids []ID
	mapLeaves(v, func(leaf cty.Value) cty.Value {
		if id, ok := AsRef(leaf); ok {
			ids = append(ids, id)
		}
		return leaf
	})
	return ids
}
