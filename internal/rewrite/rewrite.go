// Package rewrite redirects references from rebuilt candidates to the
// objects that replaced them.
package rewrite

import (
	"context"
	"fmt"

	"github.com/specialistvlad/variantify/internal/ctxlog"
	"github.com/specialistvlad/variantify/internal/refscan"
	"github.com/specialistvlad/variantify/internal/registry"
	"github.com/specialistvlad/variantify/internal/scene"
)

// Result counts what Apply did.
type Result struct {
	// Rewritten is the number of fields that were written.
	Rewritten int
	// Skipped is the number of located fields that were left alone because
	// their owner is gone or they no longer point at a resolved identity.
	Skipped int
}

type locationKey struct {
	owner scene.ID
	path  string
}

// Apply rewrites every located field that references a resolved identity so
// that it references the identity's replacement instead. The registry must
// be sealed. Locations of identities the registry does not know are left
// untouched.
func Apply(ctx context.Context, refs refscan.References, reg registry.Reader) (*Result, error) {
	resolved, err := reg.Resolved(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading identity registry: %w", err)
	}
	lookup := func(id scene.ID) (scene.ID, bool) {
		target, ok := resolved[id]
		return target, ok
	}

	logger := ctxlog.FromContext(ctx)
	res := &Result{}
	done := make(map[locationKey]bool)
	for _, id := range refs.IDs() {
		if _, ok := resolved[id]; !ok {
			continue
		}
		for _, loc := range refs[id] {
			key := locationKey{owner: loc.Owner.ID(), path: scene.FormatPath(loc.Path)}
			if done[key] {
				continue
			}
			done[key] = true

			if loc.Owner.Destroyed() {
				res.Skipped++
				continue
			}
			current, err := loc.Get()
			if err != nil {
				res.Skipped++
				continue
			}
			next, changed := scene.RemapRefs(current, lookup)
			if !changed {
				res.Skipped++
				continue
			}
			if err := loc.Set(next); err != nil {
				return nil, fmt.Errorf("rewriting %s: %w", loc, err)
			}
			logger.Debug("Reference rewritten.", "location", loc.String(), "original", id, "materialized", resolved[id])
			res.Rewritten++
		}
	}
	logger.Info("References rewritten.", "rewritten", res.Rewritten, "skipped", res.Skipped)
	return res, nil
}
