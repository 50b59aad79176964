package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestFormatPath(t *testing.T) {
	path := cty.GetAttrPath("transform").GetAttr("position").Index(cty.StringVal("x y"))
	assert.Equal(t, `transform.position["x y"]`, FormatPath(path))
	assert.Equal(t, "x y", LastName(path))
	assert.Equal(t, "", LastName(nil))
}

func TestAppendStep(t *testing.T) {
	base := cty.GetAttrPath("tags")
	mapPath := AppendStep(base, cty.Map(cty.String), "k")
	objPath := AppendStep(base, cty.EmptyObject, "k")

	assert.Equal(t, `tags["k"]`, FormatPath(mapPath))
	assert.Equal(t, "tags.k", FormatPath(objPath))
	assert.Len(t, base, 1, "AppendStep must not mutate its input")
}

func TestSetField_NestedCreateUpdateDelete(t *testing.T) {
	b := &Behavior{id: NewID(), typ: "T", fields: map[string]cty.Value{
		"pos": cty.ObjectVal(map[string]cty.Value{
			"x": cty.NumberIntVal(1),
			"y": cty.NumberIntVal(2),
		}),
		"tags": cty.MapVal(map[string]cty.Value{"a": cty.StringVal("1")}),
	}}

	require.NoError(t, b.SetField(cty.GetAttrPath("pos").GetAttr("x"), cty.NumberIntVal(5)))
	require.NoError(t, b.SetField(cty.GetAttrPath("pos").GetAttr("z"), cty.NumberIntVal(7)))
	require.NoError(t, b.SetField(cty.GetAttrPath("pos").GetAttr("y"), cty.NilVal))
	require.NoError(t, b.SetField(cty.GetAttrPath("tags").Index(cty.StringVal("b")), cty.StringVal("2")))
	require.NoError(t, b.SetField(cty.GetAttrPath("fresh").GetAttr("inner"), cty.True))

	pos, _ := b.Field("pos")
	assert.True(t, pos.RawEquals(cty.ObjectVal(map[string]cty.Value{
		"x": cty.NumberIntVal(5),
		"z": cty.NumberIntVal(7),
	})))
	tags, _ := b.Field("tags")
	assert.True(t, tags.RawEquals(cty.MapVal(map[string]cty.Value{
		"a": cty.StringVal("1"),
		"b": cty.StringVal("2"),
	})))
	fresh, _ := b.Field("fresh")
	assert.True(t, fresh.GetAttr("inner").True())
}

func TestSetField_CannotDescendIntoLeaf(t *testing.T) {
	b := &Behavior{id: NewID(), typ: "T", fields: map[string]cty.Value{"n": cty.NumberIntVal(1)}}

	err := b.SetField(cty.GetAttrPath("n").GetAttr("x"), cty.True)
	require.ErrorIs(t, err, ErrInvalidPath)
}

func TestGetField(t *testing.T) {
	state := cty.ObjectVal(map[string]cty.Value{
		"pos":  cty.ObjectVal(map[string]cty.Value{"x": cty.NumberIntVal(1)}),
		"tags": cty.MapVal(map[string]cty.Value{"a": cty.StringVal("1")}),
	})

	v, err := GetField(state, cty.GetAttrPath("pos").GetAttr("x"))
	require.NoError(t, err)
	assert.True(t, v.RawEquals(cty.NumberIntVal(1)))

	v, err = GetField(state, cty.GetAttrPath("tags").Index(cty.StringVal("a")))
	require.NoError(t, err)
	assert.True(t, v.RawEquals(cty.StringVal("1")))

	_, err = GetField(state, cty.GetAttrPath("pos").GetAttr("missing"))
	require.ErrorIs(t, err, ErrNoSuchField)
}
