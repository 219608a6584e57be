package compare

import (
	"fmt"

	"tablediff/core/relation"
)

// SampleMismatch returns up to sampleCount matched rows on which the given
// column does not match, projected to the join keys plus the two side
// values. With forDisplay set, the value columns are relabeled with the
// relation display names.
func (c *Comparison) SampleMismatch(column string, sampleCount int, forDisplay bool) (relation.Relation, error) {
	stat, err := c.columnStat(column)
	if err != nil {
		return nil, err
	}
	if stat.MatchColumn == "" {
		return nil, fmt.Errorf("%w: %q is a join column and matches by construction", ErrValidation, column)
	}

	n := int64(sampleCount)
	if stat.MismatchCount < n {
		n = stat.MismatchCount
	}

	leftSuffix, rightSuffix := "_"+c.leftName, "_"+c.rightName
	col1, err := resolveMergedColumn(c.matched, column, leftSuffix)
	if err != nil {
		return nil, err
	}
	col2, err := resolveMergedColumn(c.matched, column, rightSuffix)
	if err != nil {
		return nil, err
	}

	sample := c.matched.
		Filter(relation.Eq(relation.Col(stat.MatchColumn), relation.Lit(false))).
		Limit(int(n)).
		Select(append(c.JoinColumns(), col1, col2)...)

	if forDisplay {
		sample = sample.
			Rename(col1, fmt.Sprintf("%s (%s)", column, c.leftName)).
			Rename(col2, fmt.Sprintf("%s (%s)", column, c.rightName))
	}
	return sample, nil
}

// AllMismatch returns every matched row on which at least one compared
// column does not match, projected to the join keys plus both side values
// of each compared column. With ignoreMatchingCols set, columns that match
// on every row are left out of the projection and of the any-mismatch
// test.
func (c *Comparison) AllMismatch(ignoreMatchingCols bool) (relation.Relation, error) {
	leftSuffix, rightSuffix := "_"+c.leftName, "_"+c.rightName

	var anyMismatch relation.Expr
	returnCols := c.JoinColumns()
	for _, stat := range c.columnStats {
		if stat.MatchColumn == "" {
			continue
		}
		if ignoreMatchingCols && stat.MismatchCount == 0 {
			continue
		}
		col1, err := resolveMergedColumn(c.matched, stat.Column, leftSuffix)
		if err != nil {
			return nil, err
		}
		col2, err := resolveMergedColumn(c.matched, stat.Column, rightSuffix)
		if err != nil {
			return nil, err
		}
		returnCols = append(returnCols, col1, col2)

		miss := relation.Eq(relation.Col(stat.MatchColumn), relation.Lit(false))
		if anyMismatch == nil {
			anyMismatch = miss
		} else {
			anyMismatch = relation.Or(anyMismatch, miss)
		}
	}

	if anyMismatch == nil {
		// Nothing to compare: the mismatch set is empty by definition.
		anyMismatch = relation.Lit(false)
	}
	return c.matched.Filter(anyMismatch).Select(returnCols...), nil
}

func (c *Comparison) columnStat(column string) (ColumnStat, error) {
	for _, stat := range c.columnStats {
		if stat.Column == column {
			return stat, nil
		}
	}
	return ColumnStat{}, fmt.Errorf("%w: %q is not a shared column", ErrValidation, column)
}
