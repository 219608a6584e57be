// Package sqlrel is the SQL pushdown engine behind the relation.Relation
// interface.
//
// A handle wraps a SELECT statement plus its placeholder arguments; every
// derivation nests the previous statement as a subquery. Count, Collect and
// MaxFloat are the only operations that reach the database, through the
// GORM connection the handle was resolved with.
//
// Dialect differences are confined to this package: identifier quoting,
// null-safe equality (<=> on MySQL, IS on SQLite, IS NOT DISTINCT FROM
// elsewhere), string casts, and the full outer join emulation used because
// MySQL lacks FULL OUTER JOIN.
package sqlrel
