// Package registry defines the identity registry that connects the objects of
// a candidate graph to the objects materialized in its place.
//
// # Why the Registry Exists
//
// Rebuilding a candidate destroys it. Anything else in the model that pointed
// at the candidate's nodes or behaviors must be redirected to the freshly
// materialized objects, and those references can live anywhere, including in
// candidates that are rebuilt later in the same batch. The registry records,
// for every candidate identity, which identity replaced it, so the rewrite
// can run once at the very end against a complete mapping.
//
// # Lifecycle and Phase Contract
//
// One registry is created per batch run and moves through three phases:
//
//  1. **Discovery** (classification): Discover registers a candidate identity
//     with no target yet. Classification of different candidates may run in
//     parallel, so Discover must be safe for concurrent use.
//  2. **Resolution** (materialization): Resolve records the materialized
//     target, once per identity. Materialization runs one candidate at a time.
//  3. **Read** (rewrite): after Seal, the mapping is immutable and Resolved
//     returns it. Reading before Seal is refused with ErrNotSealed.
//
// The Seal call is the phase barrier between materialization and rewrite; no
// lock is held across phases.
package registry

import (
	"context"
	"errors"

	"github.com/specialistvlad/variantify/internal/scene"
)

var (
	// ErrUnknownIdentity is returned when resolving an identity that was never discovered.
	ErrUnknownIdentity = errors.New("identity was not discovered")
	// ErrAlreadyResolved is returned when an identity is resolved a second time.
	ErrAlreadyResolved = errors.New("identity already resolved")
	// ErrSealed is returned when writing to a sealed registry.
	ErrSealed = errors.New("registry is sealed")
	// ErrNotSealed is returned when reading the final mapping before Seal.
	ErrNotSealed = errors.New("registry is not sealed")
)

// Discoverer is the write side used by classification.
type Discoverer interface {
	// Discover registers original with an unresolved target. Discovering the
	// same identity twice is idempotent.
	Discover(ctx context.Context, original scene.ID) error
}

// Resolver is the write side used by materialization.
type Resolver interface {
	// Resolve records materialized as the replacement of original.
	Resolve(ctx context.Context, original, materialized scene.ID) error
}

// Reader is the read side used by the rewrite.
type Reader interface {
	// Resolved returns every resolved original → materialized pair. It
	// returns ErrNotSealed until Seal has been called.
	Resolved(ctx context.Context) (map[scene.ID]scene.ID, error)
}

// Registry is the full batch-scoped identity registry.
type Registry interface {
	Discoverer
	Resolver
	Reader

	// Lookup returns the target of original, if resolved.
	Lookup(ctx context.Context, original scene.ID) (scene.ID, bool)

	// Pending returns the discovered identities that have no target yet.
	Pending(ctx context.Context) []scene.ID

	// Seal ends the resolution phase.
	Seal(ctx context.Context)
}
