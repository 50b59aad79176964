// Package uistate holds the cosmetic editor state that survives a rebuild:
// which nodes are expanded in the hierarchy view and the ordered selection.
package uistate

import (
	"slices"
	"sync"

	"github.com/specialistvlad/variantify/internal/scene"
)

// State is a thread-safe, in-memory expand set and selection.
type State struct {
	mu        sync.RWMutex
	expanded  map[scene.ID]struct{}
	selection []scene.ID
}

// New creates an empty state.
func New() *State {
	return &State{expanded: make(map[scene.ID]struct{})}
}

// Expanded reports whether id is expanded.
func (s *State) Expanded(id scene.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.expanded[id]
	return ok
}

// SetExpanded records the expanded state of id.
func (s *State) SetExpanded(id scene.ID, expanded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if expanded {
		s.expanded[id] = struct{}{}
	} else {
		delete(s.expanded, id)
	}
}

// ExpandedIDs returns the expanded identities in ascending order.
func (s *State) ExpandedIDs() []scene.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]scene.ID, 0, len(s.expanded))
	for id := range s.expanded {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Select replaces the selection.
func (s *State) Select(ids ...scene.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = slices.Clone(ids)
}

// Selection returns the ordered selection.
func (s *State) Selection() []scene.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.selection)
}

// SelectionIndex returns the position of id in the selection.
func (s *State) SelectionIndex(id scene.ID) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := slices.Index(s.selection, id)
	return idx, idx >= 0
}

// Replace puts id at position index of the selection. It reports false when
// index is out of range.
func (s *State) Replace(index int, id scene.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.selection) {
		return false
	}
	s.selection[index] = id
	return true
}
