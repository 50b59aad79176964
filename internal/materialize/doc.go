// Package materialize rebuilds a candidate as a fresh copy of its template
// with the candidate's divergences applied.
//
// For a valid divergence tree, Materialize:
//
//  1. instantiates the template,
//  2. patches the copy pre-order, mirroring classification order: removed
//     behaviors are dropped, added behaviors are copied from the candidate,
//     modified fields are re-read from the live candidate and written, tail
//     children are transplanted, and expanded state is carried over,
//  3. resolves every discovered candidate identity to its counterpart on the
//     copy (behaviors are matched by type),
//  4. puts the copy where the candidate was and destroys the candidate.
//
// Invalid trees are refused with an error wrapping diff.ErrStructuralMismatch.
package materialize
