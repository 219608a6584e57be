package compare

import (
	"fmt"

	"tablediff/core/relation"
)

// Comparable decides whether two column types can be meaningfully
// compared: identical types, two members of the numeric family, or a
// string paired with a date or timestamp. Everything else is incomparable
// and gets reported as always-mismatched rather than skipped.
func Comparable(a, b relation.Type) bool {
	if a.Numeric() && b.Numeric() {
		return true
	}
	if a.Kind == b.Kind {
		if a.Kind == relation.KindOther {
			return a.Name == b.Name
		}
		return true
	}
	pair := func(k1, k2 relation.Kind) bool {
		return (a.Kind == k1 && b.Kind == k2) || (a.Kind == k2 && b.Kind == k1)
	}
	return pair(relation.KindString, relation.KindTimestamp) ||
		pair(relation.KindString, relation.KindDate)
}

// matchExpr builds the boolean match flag for one column pair.
func matchExpr(col1, col2 string, t1, t2 relation.Type, absTol, relTol float64, ignoreSpaces bool) relation.Expr {
	if !Comparable(t1, t2) {
		return relation.Lit(false)
	}

	c1, c2 := relation.Col(col1), relation.Col(col2)

	if t1.Numeric() && t2.Numeric() {
		within := relation.Le(
			relation.Abs(relation.Sub(c1, c2)),
			relation.Add(relation.Lit(absTol), relation.Mul(relation.Lit(relTol), relation.Abs(c2))),
		)
		// The tolerance term is null whenever a side is null; Coalesce
		// absorbs that to false so only the null-safe branch can pass.
		base := relation.Coalesce(relation.Or(relation.NullSafeEq(c1, c2), within), relation.Lit(false))
		// A non-null left against a null right must never pass: with a null
		// right the tolerance bound itself is undefined.
		guard := relation.Not(relation.And(
			relation.Not(relation.IsNull(c1)),
			relation.IsNull(c2),
		))
		return relation.And(base, guard)
	}

	if ignoreSpaces && t1.Kind == relation.KindString && t2.Kind == relation.KindString {
		return relation.NullSafeEq(relation.Trim(c1), relation.Trim(c2))
	}
	return relation.NullSafeEq(c1, c2)
}

// compareColumns walks the shared columns, appends one match flag per
// non-key column to the matched relation and fills in the statistics.
func (c *Comparison) compareColumns() error {
	leftSuffix, rightSuffix := "_"+c.leftName, "_"+c.rightName

	for _, column := range c.IntersectColumns() {
		t1, _ := relation.ColumnType(c.left, column)
		t2, _ := relation.ColumnType(c.right, column)

		stat := ColumnStat{
			Column:          column,
			LeftType:        t1,
			RightType:       t2,
			TypesCompatible: Comparable(t1, t2),
		}

		if containsString(c.joinColumns, column) {
			// Keys are equal on matched rows by construction.
			stat.MatchCount = c.matchedCount
			c.columnStats = append(c.columnStats, stat)
			c.obs.ColumnCompared(stat)
			continue
		}

		col1, err := resolveMergedColumn(c.matched, column, leftSuffix)
		if err != nil {
			return err
		}
		col2, err := resolveMergedColumn(c.matched, column, rightSuffix)
		if err != nil {
			return err
		}

		matchCol := column + "_match"
		c.matched = c.matched.WithColumn(matchCol,
			matchExpr(col1, col2, t1, t2, c.absTol, c.relTol, c.ignoreSpaces))

		matchCount, err := c.matched.
			Filter(relation.Eq(relation.Col(matchCol), relation.Lit(true))).
			Count()
		if err != nil {
			return fmt.Errorf("counting matches for %q: %w", column, err)
		}

		maxDiff, err := maxAbsoluteDiff(c.matched, col1, col2, t1, t2)
		if err != nil {
			return fmt.Errorf("computing max diff for %q: %w", column, err)
		}
		nullDiff, err := nullDiscordance(c.matched, col1, col2)
		if err != nil {
			return fmt.Errorf("computing null discordance for %q: %w", column, err)
		}

		stat.MatchColumn = matchCol
		stat.MatchCount = matchCount
		stat.MismatchCount = c.matchedCount - matchCount
		stat.MaxDiff = maxDiff
		stat.NullDiff = nullDiff
		c.columnStats = append(c.columnStats, stat)
		c.matchColumns = append(c.matchColumns, matchCol)
		c.obs.ColumnCompared(stat)
	}

	return c.countMatchingRows()
}

// countMatchingRows caches the number of matched rows on which every
// compared column matches. With no compared columns the count stays 0.
func (c *Comparison) countMatchingRows() error {
	if len(c.matchColumns) == 0 {
		c.matchingRowCount = 0
		return nil
	}
	var cond relation.Expr
	for _, matchCol := range c.matchColumns {
		eq := relation.Eq(relation.Col(matchCol), relation.Lit(true))
		if cond == nil {
			cond = eq
		} else {
			cond = relation.And(cond, eq)
		}
	}
	n, err := c.matched.Filter(cond).Count()
	if err != nil {
		return fmt.Errorf("counting fully matching rows: %w", err)
	}
	c.matchingRowCount = n
	return nil
}

// maxAbsoluteDiff is the maximum |left - right| over rows where the
// difference is defined. Non-numeric pairs and empty or all-null sets
// yield 0.
func maxAbsoluteDiff(rel relation.Relation, col1, col2 string, t1, t2 relation.Type) (float64, error) {
	if !t1.Numeric() || !t2.Numeric() {
		return 0, nil
	}
	diffCol := tempColumnName(rel)
	withDiff := rel.WithColumn(diffCol,
		relation.Abs(relation.Sub(relation.Col(col1), relation.Col(col2))))
	return withDiff.MaxFloat(diffCol)
}

// nullDiscordance counts rows where exactly one of the two values is null,
// independent of type and tolerance.
func nullDiscordance(rel relation.Relation, col1, col2 string) (int64, error) {
	n1 := relation.IsNull(relation.Col(col1))
	n2 := relation.IsNull(relation.Col(col2))
	xor := relation.Or(
		relation.And(n1, relation.Not(n2)),
		relation.And(relation.Not(n1), n2),
	)
	return rel.Filter(xor).Count()
}

// resolveMergedColumn finds a source column in the joined relation under
// its suffixed name, or its bare name when it did not collide.
func resolveMergedColumn(rel relation.Relation, column, suffix string) (string, error) {
	if relation.HasColumn(rel, column+suffix) {
		return column + suffix, nil
	}
	if relation.HasColumn(rel, column) {
		return column, nil
	}
	return "", fmt.Errorf("%w: %q not found as itself or as %q", ErrSchemaResolution, column, column+suffix)
}
