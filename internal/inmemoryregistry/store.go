package inmemoryregistry

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/specialistvlad/variantify/internal/ctxlog"
	"github.com/specialistvlad/variantify/internal/registry"
	"github.com/specialistvlad/variantify/internal/scene"
)

// Store implements registry.Registry using a map and a mutex for safe
// concurrent discovery.
type Store struct {
	mu      sync.RWMutex
	targets map[scene.ID]scene.ID // zero target means discovered but unresolved
	sealed  bool
}

var _ registry.Registry = (*Store)(nil)

// New creates a new, empty registry.
func New() *Store {
	return &Store{
		targets: make(map[scene.ID]scene.ID),
	}
}

// Discover registers original with an unresolved target.
func (s *Store) Discover(ctx context.Context, original scene.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealed {
		return registry.ErrSealed
	}
	if _, exists := s.targets[original]; exists {
		// Discovering the same identity twice is not an error, it's idempotent.
		return nil
	}
	s.targets[original] = 0
	return nil
}

// Resolve records materialized as the replacement of original.
func (s *Store) Resolve(ctx context.Context, original, materialized scene.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealed {
		return registry.ErrSealed
	}
	target, exists := s.targets[original]
	if !exists {
		return fmt.Errorf("%w: %s", registry.ErrUnknownIdentity, original)
	}
	if !target.IsZero() {
		return fmt.Errorf("%w: %s already maps to %s", registry.ErrAlreadyResolved, original, target)
	}
	s.targets[original] = materialized
	ctxlog.FromContext(ctx).Debug("Identity resolved.", "original", original, "materialized", materialized)
	return nil
}

// Lookup returns the target of original, if resolved.
func (s *Store) Lookup(ctx context.Context, original scene.ID) (scene.ID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	target, ok := s.targets[original]
	if !ok || target.IsZero() {
		return 0, false
	}
	return target, true
}

// Pending returns the discovered identities that have no target yet, in
// ascending order.
func (s *Store) Pending(ctx context.Context) []scene.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []scene.ID
	for id, target := range s.targets {
		if target.IsZero() {
			pending = append(pending, id)
		}
	}
	slices.Sort(pending)
	return pending
}

// Seal ends the resolution phase. Sealing twice is harmless.
func (s *Store) Seal(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.sealed {
		ctxlog.FromContext(ctx).Debug("Identity registry sealed.", "identities", len(s.targets))
	}
	s.sealed = true
}

// Resolved returns a snapshot of every resolved pair.
func (s *Store) Resolved(ctx context.Context) (map[scene.ID]scene.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.sealed {
		return nil, registry.ErrNotSealed
	}
	out := maps.Clone(s.targets)
	maps.DeleteFunc(out, func(_ scene.ID, target scene.ID) bool { return target.IsZero() })
	return out, nil
}
