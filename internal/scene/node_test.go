package scene

import (
	"testing"

	"github.com/specialistvlad/variantify/internal/nodeid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestNode_ChildrenOrderAndReparent(t *testing.T) {
	root := NewNode("root")
	a, b, c := NewNode("a"), NewNode("b"), NewNode("c")
	root.AddChild(a)
	root.AddChild(c)
	root.InsertChild(1, b)

	require.Equal(t, 3, root.ChildCount())
	assert.Equal(t, []*Node{a, b, c}, root.Children())
	assert.Equal(t, 1, b.SiblingIndex())

	other := NewNode("other")
	other.AddChild(b)
	assert.Equal(t, []*Node{a, c}, root.Children())
	assert.Same(t, other, b.Parent())
	assert.Same(t, other, b.Root())
}

func TestNode_InsertAncestorPanics(t *testing.T) {
	root := NewNode("root")
	child := NewNode("child")
	root.AddChild(child)

	assert.Panics(t, func() { child.AddChild(root) })
}

func TestNode_AttachRejectsDuplicateType(t *testing.T) {
	n := NewNode("n")
	_, err := n.Attach("Rigidbody", nil)
	require.NoError(t, err)

	_, err = n.Attach("Rigidbody", nil)
	require.ErrorIs(t, err, ErrDuplicateBehavior)

	_, err = n.Attach("", nil)
	require.ErrorIs(t, err, ErrInvalidBehaviorType)
}

func TestNode_RemoveBehavior(t *testing.T) {
	n := NewNode("n")
	b, err := n.Attach("Light", nil)
	require.NoError(t, err)

	assert.True(t, n.RemoveBehavior("Light"))
	assert.False(t, n.RemoveBehavior("Light"))
	assert.True(t, b.Destroyed())
	assert.Empty(t, n.Behaviors())
}

func TestNode_StateIncludesBookkeeping(t *testing.T) {
	root := NewNode("root")
	n := NewNode("n")
	root.AddChild(NewNode("first"))
	root.AddChild(n)
	n.AddChild(NewNode("leaf"))
	_, err := n.Attach("Light", nil)
	require.NoError(t, err)
	require.NoError(t, n.SetField(cty.GetAttrPath("health"), cty.NumberIntVal(10)))

	state := n.State()
	assert.True(t, state.GetAttr("health").RawEquals(cty.NumberIntVal(10)))
	assert.True(t, state.GetAttr(FieldName).RawEquals(cty.StringVal("n")))
	assert.True(t, state.GetAttr(FieldSiblingIndex).RawEquals(cty.NumberIntVal(1)))
	assert.True(t, state.GetAttr(FieldChildren).GetAttr("size").RawEquals(cty.NumberIntVal(1)))
	assert.True(t, state.GetAttr(FieldBehaviors).GetAttr("size").RawEquals(cty.NumberIntVal(1)))
}

func TestNode_SetFieldBookkeeping(t *testing.T) {
	n := NewNode("n")

	require.NoError(t, n.SetField(cty.GetAttrPath(FieldName), cty.StringVal("renamed")))
	assert.Equal(t, "renamed", n.Name())

	err := n.SetField(cty.GetAttrPath(FieldChildren).GetAttr("size"), cty.NumberIntVal(3))
	require.ErrorIs(t, err, ErrReadOnlyField)
}

func TestNode_DestroyMarksSubtree(t *testing.T) {
	root := NewNode("root")
	n := NewNode("n")
	leaf := NewNode("leaf")
	root.AddChild(n)
	n.AddChild(leaf)
	b, err := leaf.Attach("Light", nil)
	require.NoError(t, err)

	n.Destroy()

	assert.Equal(t, 0, root.ChildCount())
	assert.True(t, n.Destroyed())
	assert.True(t, leaf.Destroyed())
	assert.True(t, b.Destroyed())
	assert.False(t, root.Destroyed())
}

func TestNode_AddressAndFind(t *testing.T) {
	root := NewNode("scene")
	enemies := NewNode("Enemies")
	root.AddChild(enemies)
	e0, e1 := NewNode("Enemy"), NewNode("Enemy")
	enemies.AddChild(e0)
	enemies.AddChild(NewNode("Spawner"))
	enemies.AddChild(e1)
	weapon := NewNode("Weapon")
	e1.AddChild(weapon)

	assert.Equal(t, "Enemies.Enemy[1].Weapon", weapon.Address().String())
	assert.Equal(t, "Enemies.Enemy", e0.Address().String())
	assert.True(t, root.Address().IsRoot())
	assert.Equal(t, "Enemy[1].Weapon", weapon.AddressFrom(enemies).String())
	assert.True(t, e1.AddressFrom(e1).IsRoot())

	found, ok := root.Find(nodeid.MustParse("Enemies.Enemy[1].Weapon"))
	require.True(t, ok)
	assert.Same(t, weapon, found)

	_, ok = root.Find(nodeid.MustParse("Enemies.Enemy[2]"))
	assert.False(t, ok)

	self, ok := root.Find(nodeid.Root())
	require.True(t, ok)
	assert.Same(t, root, self)
}

func TestOwnerOf(t *testing.T) {
	n := NewNode("n")
	b, err := n.Attach("Light", nil)
	require.NoError(t, err)

	owner, ok := OwnerOf(n, NodeOwner)
	require.True(t, ok)
	assert.Same(t, n, owner)

	owner, ok = OwnerOf(n, "Light")
	require.True(t, ok)
	assert.Same(t, b, owner)

	_, ok = OwnerOf(n, "Camera")
	assert.False(t, ok)
}
