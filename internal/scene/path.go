package scene

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// IsContainer reports whether v holds sub-fields that are addressed
// individually rather than compared as a whole.
func IsContainer(v cty.Value) bool {
	if v == cty.NilVal || v.IsNull() || !v.IsKnown() {
		return false
	}
	ty := v.Type()
	return ty.IsObjectType() || ty.IsMapType()
}

// FormatPath renders a field path as `a.b["key"]`.
func FormatPath(path cty.Path) string {
	var sb strings.Builder
	for i, step := range path {
		switch s := step.(type) {
		case cty.GetAttrStep:
			if i > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString(s.Name)
		case cty.IndexStep:
			sb.WriteByte('[')
			if s.Key.Type() == cty.String && s.Key.IsKnown() && !s.Key.IsNull() {
				sb.WriteString(strconv.Quote(s.Key.AsString()))
			} else {
				sb.WriteString(s.Key.GoString())
			}
			sb.WriteByte(']')
		}
	}
	return sb.String()
}

// LastName returns the name of the final step of path: the attribute name or
// the map key.
func LastName(path cty.Path) string {
	if len(path) == 0 {
		return ""
	}
	name, _ := stepKey(path[len(path)-1])
	return name
}

// AppendStep returns a copy of path extended by one step addressing key in a
// container of type ty.
func AppendStep(path cty.Path, ty cty.Type, key string) cty.Path {
	out := make(cty.Path, len(path), len(path)+1)
	copy(out, path)
	if ty.IsMapType() {
		return append(out, cty.IndexStep{Key: cty.StringVal(key)})
	}
	return append(out, cty.GetAttrStep{Name: key})
}

// GetField reads the value at path inside state.
func GetField(state cty.Value, path cty.Path) (cty.Value, error) {
	if len(path) == 0 {
		return cty.NilVal, ErrInvalidPath
	}
	cur := state
	for _, step := range path {
		key, err := stepKey(step)
		if err != nil {
			return cty.NilVal, err
		}
		if !IsContainer(cur) {
			return cty.NilVal, fmt.Errorf("%w: %s", ErrNoSuchField, FormatPath(path))
		}
		next, ok := cur.AsValueMap()[key]
		if !ok {
			return cty.NilVal, fmt.Errorf("%w: %s", ErrNoSuchField, FormatPath(path))
		}
		cur = next
	}
	return cur, nil
}

// setAtPath returns v with the value at path replaced by leaf. A leaf of
// cty.NilVal deletes the addressed value; missing intermediate containers are
// created as objects.
func setAtPath(v cty.Value, path cty.Path, leaf cty.Value) (cty.Value, error) {
	if len(path) == 0 {
		return leaf, nil
	}
	key, err := stepKey(path[0])
	if err != nil {
		return cty.NilVal, err
	}
	if v == cty.NilVal || v.IsNull() {
		if leaf == cty.NilVal {
			return v, nil
		}
		v = cty.EmptyObjectVal
	}
	if !IsContainer(v) {
		return cty.NilVal, fmt.Errorf("%w: cannot descend into %s at %q", ErrInvalidPath, v.Type().FriendlyName(), key)
	}

	attrs := v.AsValueMap()
	out := make(map[string]cty.Value, len(attrs)+1)
	for k, ev := range attrs {
		out[k] = ev
	}
	child, ok := out[key]
	if !ok {
		child = cty.NilVal
	}
	next, err := setAtPath(child, path[1:], leaf)
	if err != nil {
		return cty.NilVal, err
	}
	if next == cty.NilVal {
		delete(out, key)
	} else {
		out[key] = next
	}

	if v.Type().IsObjectType() {
		return cty.ObjectVal(out), nil
	}
	elemTy := v.Type().ElementType()
	if len(out) == 0 {
		return cty.MapValEmpty(elemTy), nil
	}
	for k, ev := range out {
		if ev.Type().Equals(elemTy) {
			continue
		}
		conv, err := convert.Convert(ev, elemTy)
		if err != nil {
			return cty.NilVal, fmt.Errorf("%w: map element %q: %v", ErrInvalidPath, k, err)
		}
		out[k] = conv
	}
	return cty.MapVal(out), nil
}

// stepKey returns the attribute name or string key of a path step.
func stepKey(step cty.PathStep) (string, error) {
	switch s := step.(type) {
	case cty.GetAttrStep:
		return s.Name, nil
	case cty.IndexStep:
		if s.Key.Type() == cty.String && s.Key.IsKnown() && !s.Key.IsNull() {
			return s.Key.AsString(), nil
		}
	}
	return "", fmt.Errorf("%w: unsupported step %#v", ErrInvalidPath, step)
}

// setInFields applies a path write to a flat attribute map.
func setInFields(fields map[string]cty.Value, path cty.Path, leaf cty.Value) error {
	if len(path) == 0 {
		return ErrInvalidPath
	}
	attr, ok := path[0].(cty.GetAttrStep)
	if !ok {
		return fmt.Errorf("%w: first step must be an attribute", ErrInvalidPath)
	}
	child, ok := fields[attr.Name]
	if !ok {
		child = cty.NilVal
	}
	next, err := setAtPath(child, path[1:], leaf)
	if err != nil {
		return err
	}
	if next == cty.NilVal {
		delete(fields, attr.Name)
	} else {
		fields[attr.Name] = next
	}
	return nil
}
