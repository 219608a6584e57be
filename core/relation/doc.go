// Package relation defines the lazy tabular-relation abstraction the
// comparison engine is written against.
//
// A Relation is an opaque handle on a named or derived table. It exposes an
// ordered schema of (name, type) pairs and composable relational operators
// (select, filter, join, window ordinal, computed columns). Nothing is
// materialized until an action (Count, Collect, MaxFloat) runs, so the
// underlying engine is free to push the whole plan down to a database.
//
// # Engines
//
// Two engines implement the interface:
//   - relation/memrel: an in-memory engine used in tests and for CSV input.
//   - relation/sqlrel: a SQL pushdown engine over a GORM connection.
//
// # Expressions
//
// Computed columns and filters are described with the Expr tree (Col, Lit,
// And, NullSafeEq, Abs, ...). Expressions follow SQL three-valued logic;
// null handling is the engine's responsibility, not the caller's.
//
// # Types
//
// Column types are tagged variants (Type) parsed from dialect type strings,
// including parametrized decimals. Comparison policy over types lives with
// the consumer, not here.
package relation
