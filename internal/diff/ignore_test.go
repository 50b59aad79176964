package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zclconf/go-cty/cty"
)

func TestIgnoreList_Ignores(t *testing.T) {
	l := DefaultIgnore().With([]string{"seed"}, []string{"stats.cache"})

	testCases := []struct {
		name string
		path cty.Path
		want bool
	}{
		{name: "name anywhere", path: cty.GetAttrPath("name"), want: true},
		{name: "nested name", path: cty.GetAttrPath("meta").GetAttr("id"), want: true},
		{name: "book-keeping path", path: cty.GetAttrPath("children").GetAttr("size"), want: true},
		{name: "size elsewhere", path: cty.GetAttrPath("inventory").GetAttr("size"), want: false},
		{name: "extra name", path: cty.GetAttrPath("seed"), want: true},
		{name: "extra path", path: cty.GetAttrPath("stats").GetAttr("cache"), want: true},
		{name: "map key name", path: cty.GetAttrPath("tags").Index(cty.StringVal("id")), want: true},
		{name: "regular field", path: cty.GetAttrPath("health"), want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, l.Ignores(tc.path))
		})
	}
}

func TestIgnoreList_WithDoesNotAlias(t *testing.T) {
	base := DefaultIgnore()
	_ = base.With([]string{"a"}, nil)
	_ = base.With([]string{"b"}, nil)

	assert.NotContains(t, base.Names, "a")
	assert.NotContains(t, base.Names, "b")
}
