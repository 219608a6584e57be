// Package memrel is the in-memory engine behind the relation.Relation
// interface.
//
// Derivations build a lazy node tree; the tree is evaluated once, on the
// first action, and the materialized rows are cached on the handle. Null
// handling mirrors SQL: expressions follow three-valued logic, equality
// joins never match null keys, and DISTINCT and window partitions group
// nulls together.
//
// The engine backs the comparison tests and the CSV ingestion path, and
// doubles as a reference for the semantics the SQL engine pushes down.
package memrel
