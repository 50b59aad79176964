// Package diff classifies how a candidate scene tree diverges from a template
// tree.
//
// Classify produces a divergence tree shaped exactly like the template: one
// Node per template node, children in template order. Each Node records the
// behaviors the candidate added or removed at that position, the leaf fields
// whose values differ, the candidate children appended beyond the template's
// child count, and the cosmetic editor state (expanded, selected) of the
// candidate node.
//
// Classification runs as a sequence of passes over walk.Parallel:
//
//  1. structure: positional child names must agree; tail children are recorded.
//  2. behaviors: type-level set difference.
//  3. fields: leaf comparison of node and shared behavior states.
//  4. cosmetic: expanded and selected state.
//  5. discovery: candidate identities are registered for later resolution.
//
// A structural mismatch invalidates the whole tree and every later pass is
// skipped, so an invalid tree never carries a partial divergence.
//
// The package never mutates either input tree.
package diff
