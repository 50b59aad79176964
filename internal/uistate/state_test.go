package uistate

import (
	"testing"

	"github.com/specialistvlad/variantify/internal/scene"
	"github.com/stretchr/testify/assert"
)

func TestState_Expanded(t *testing.T) {
	s := New()
	s.SetExpanded(3, true)
	s.SetExpanded(1, true)
	s.SetExpanded(2, true)
	s.SetExpanded(2, false)

	assert.True(t, s.Expanded(1))
	assert.False(t, s.Expanded(2))
	assert.Equal(t, []scene.ID{1, 3}, s.ExpandedIDs())
}

func TestState_Selection(t *testing.T) {
	s := New()
	s.Select(5, 7, 9)

	idx, ok := s.SelectionIndex(7)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = s.SelectionIndex(8)
	assert.False(t, ok)

	assert.True(t, s.Replace(1, 70))
	assert.False(t, s.Replace(3, 1))
	assert.Equal(t, []scene.ID{5, 70, 9}, s.Selection())
}

func TestState_SelectCopiesInput(t *testing.T) {
	s := New()
	ids := []scene.ID{1, 2}
	s.Select(ids...)
	ids[0] = 99

	assert.Equal(t, []scene.ID{1, 2}, s.Selection())
}
