// Package compare implements the table comparison feature.
//
// It reconciles two tabular datasets row by row and column by column,
// producing row-level classification (matched, left-only, right-only),
// per-column match statistics with numeric tolerances, and a
// human-readable report.
//
// # Pipeline
//
// A comparison runs eagerly in New and caches everything it computes:
//  1. Validation: join columns present on both sides, tolerances
//     non-negative, distinct display names.
//  2. Duplicate detection: duplicate join keys on either side switch the
//     join onto an occurrence-ranked key so row multiplicity survives.
//  3. Merge: a full outer join classifies every row exactly once.
//  4. Column comparison: each shared non-key column gains a boolean match
//     flag on the merged relation and a ColumnStat.
//
// All heavy lifting is expressed against the relation.Relation interface,
// so the same pipeline runs in memory (memrel) or pushed down to SQL
// (sqlrel) without modification.
//
// # Components
//
//   - Comparison: The result object; accessors, predicates and samplers.
//   - Service: Orchestrates comparisons over database tables and uploads
//     HTML reports to storage.
//   - Handler: Exposes the HTTP endpoints for running comparisons and
//     managing stored reports.
//
// # HTTP Endpoints
//
//   - POST /compare : Compare two tables and return the summary report.
//   - GET /reports : List stored HTML reports.
//   - GET /reports/:name : Stream one stored HTML report.
//   - DELETE /reports/:name : Remove a stored report.
package compare
