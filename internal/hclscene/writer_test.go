package hclscene

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/variantify/internal/scene"
	"github.com/specialistvlad/variantify/internal/testutil"
	"github.com/specialistvlad/variantify/internal/uistate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestRender_WritesBlocksAndReferences(t *testing.T) {
	// Arrange
	camera := testutil.Node("Camera")
	player := testutil.Node("Player",
		testutil.Field("health", cty.NumberIntVal(100)),
		testutil.Behavior("Rigidbody", map[string]cty.Value{
			"mass":   cty.NumberFloatVal(2.5),
			"follow": scene.RefVal(camera.ID()),
		}),
	)
	root := testutil.Scene(player, camera)
	ui := uistate.New()
	ui.SetExpanded(player.ID(), true)
	ui.Select(camera.ID())

	// Act
	out, err := Render(root, ui)

	// Assert
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, `node "Player" {`)
	assert.Contains(t, text, `health = 100`)
	assert.Contains(t, text, `behavior "Rigidbody" {`)
	assert.Contains(t, text, `follow = node_ref("Camera")`)
	assert.Contains(t, text, `mass   = 2.5`)
	assert.Contains(t, text, `node "Camera" {`)
	assert.Contains(t, text, `expanded  = ["Player"]`)
	assert.Contains(t, text, `selection = ["Camera"]`)
}

func TestRender_RoundTrip(t *testing.T) {
	// Arrange
	first, err := loadString(t, playerScene)
	require.NoError(t, err)
	rendered, err := Render(first.Root, first.UI)
	require.NoError(t, err)

	// Act
	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{"scene.hcl": string(rendered)})
	second, err := LoadScene(context.Background(), dir)
	require.NoError(t, err)
	again, err := Render(second.Root, second.UI)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, string(rendered), string(again))

	weapon := testutil.MustFind(second.Root, "Player.Weapon")
	rb, ok := testutil.MustFind(second.Root, "Player").Behavior("Rigidbody")
	require.True(t, ok)
	owner, _ := weapon.Field("owner")
	id, ok := scene.AsRef(owner)
	require.True(t, ok)
	assert.Equal(t, rb.ID(), id)
}

func TestRender_SkipsUIEntriesOutsideTheScene(t *testing.T) {
	kept := testutil.Node("Kept")
	gone := testutil.Node("Gone")
	root := testutil.Scene(kept, gone)
	ui := uistate.New()
	ui.Select(gone.ID(), kept.ID())
	gone.Destroy()

	out, err := Render(root, ui)

	require.NoError(t, err)
	assert.Contains(t, string(out), `selection = ["Kept"]`)
	assert.NotContains(t, string(out), "expanded")
}

func TestRender_DanglingReference(t *testing.T) {
	elsewhere := testutil.Node("Elsewhere")
	root := testutil.Scene(testutil.Node("A", testutil.Field("target", scene.RefVal(elsewhere.ID()))))

	_, err := Render(root, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `node "A": field "target": dangling reference`)
}

func TestWriteScene_AndWriteFile(t *testing.T) {
	root := testutil.Scene(testutil.Node("A", testutil.Field("speed", cty.NumberIntVal(3))))
	want, err := Render(root, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteScene(&buf, root, nil))
	assert.Equal(t, string(want), buf.String())

	path := filepath.Join(t.TempDir(), "out.hcl")
	require.NoError(t, WriteFile(path, root, nil))
	s, err := LoadScene(context.Background(), path)
	require.NoError(t, err)
	v, ok := testutil.MustFind(s.Root, "A").Field("speed")
	require.True(t, ok)
	assert.True(t, v.RawEquals(cty.NumberIntVal(3)))
}

func TestFormatValue(t *testing.T) {
	gun := testutil.Node("Gun", testutil.Behavior("Trigger", nil))
	tank := testutil.Node("Tank", testutil.Children(gun))
	root := testutil.Scene(tank)
	trigger, _ := gun.Behavior("Trigger")

	testCases := []struct {
		name  string
		value cty.Value
		want  string
	}{
		{name: "number", value: cty.NumberIntVal(7), want: "7"},
		{name: "string", value: cty.StringVal("hi"), want: `"hi"`},
		{name: "null reference", value: cty.NullVal(scene.RefType), want: "null"},
		{name: "node reference", value: scene.RefVal(gun.ID()), want: `node_ref("Tank.Gun")`},
		{name: "behavior reference", value: scene.RefVal(trigger.ID()), want: `behavior_ref("Tank.Gun", "Trigger")`},
		{
			name:  "tuple of references",
			value: cty.TupleVal([]cty.Value{scene.RefVal(tank.ID()), cty.NumberIntVal(1)}),
			want:  `[node_ref("Tank"), 1]`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FormatValue(root, tc.value)

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("object with reference", func(t *testing.T) {
		got, err := FormatValue(root, cty.ObjectVal(map[string]cty.Value{
			"of":      scene.RefVal(tank.ID()),
			"at rest": cty.True,
		}))

		require.NoError(t, err)
		assert.Regexp(t, `of\s+= node_ref\("Tank"\)`, got)
		assert.Regexp(t, `"at rest"\s+= true`, got)
	})
}
