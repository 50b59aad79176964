// Package reconcile runs a whole batch: every candidate is classified
// against the template, valid candidates are materialized in order, and
// references to rebuilt objects are redirected once the batch is complete.
//
// # Phases
//
//  1. References to any candidate object are located across the host scope.
//  2. Candidates are classified concurrently (bounded by Options.Workers).
//     Classification only reads the scene, and identity discovery is safe for
//     concurrent use.
//  3. Valid candidates are materialized one at a time, in input order.
//     Rejected candidates become warning diagnostics; they never abort the
//     batch.
//  4. The identity registry is sealed.
//  5. The materialized graphs are scanned too, because values carried over
//     from candidates may point at other candidates.
//  6. All located references are rewritten through the sealed registry.
//  7. Selected candidates are replaced by their copies in the selection.
package reconcile
