package compare

import (
	"fmt"

	"tablediff/core/relation"
)

// merge performs the outer alignment: optional duplicate-key ranking, the
// full outer join with per-side presence markers, classification into
// left-only / right-only / matched, and cleanup of the synthetic columns.
func (c *Comparison) merge() error {
	l, r := c.left, c.right
	joinCols := append([]string(nil), c.joinColumns...)

	var ordCol string
	if c.hasDuplicateKeys {
		// Rank duplicate-keyed rows so the Nth occurrence on the left
		// aligns with the Nth on the right instead of cross-producting.
		ordCol = tempColumnName(l, r)
		var err error
		if l, err = withOccurrenceRank(l, c.joinColumns, ordCol); err != nil {
			return err
		}
		if r, err = withOccurrenceRank(r, c.joinColumns, ordCol); err != nil {
			return err
		}
		joinCols = append(joinCols, ordCol)
	}

	// Each side contributes an always-true marker; the join suffixes the
	// shared name per side, and the markers drive classification below.
	marker := tempColumnName(l, r)
	l = l.WithColumn(marker, relation.Lit(true))
	r = r.WithColumn(marker, relation.Lit(true))

	leftSuffix, rightSuffix := "_"+c.leftName, "_"+c.rightName
	outer := l.OuterJoin(r, joinCols, leftSuffix, rightSuffix)

	leftMarker := marker + leftSuffix
	rightMarker := marker + rightSuffix
	leftPresent := relation.Not(relation.IsNull(relation.Col(leftMarker)))
	rightPresent := relation.Not(relation.IsNull(relation.Col(rightMarker)))

	// Rows present on one side only keep that side's own columns and names.
	leftCols, err := mergedColumns(c.left, outer, leftSuffix)
	if err != nil {
		return err
	}
	rightCols, err := mergedColumns(c.right, outer, rightSuffix)
	if err != nil {
		return err
	}

	leftOnly := outer.
		Filter(relation.And(leftPresent, relation.Not(rightPresent))).
		Select(leftCols...)
	c.leftOnly = renameToSource(leftOnly, c.left, leftCols)

	rightOnly := outer.
		Filter(relation.And(relation.Not(leftPresent), rightPresent)).
		Select(rightCols...)
	c.rightOnly = renameToSource(rightOnly, c.right, rightCols)

	matched := outer.Filter(relation.And(leftPresent, rightPresent)).
		Drop(leftMarker, rightMarker)
	if ordCol != "" {
		matched = matched.Drop(ordCol)
	}
	c.matched = matched

	if c.leftOnlyCount, err = c.leftOnly.Count(); err != nil {
		return fmt.Errorf("counting %s-only rows: %w", c.leftName, err)
	}
	if c.rightOnlyCount, err = c.rightOnly.Count(); err != nil {
		return fmt.Errorf("counting %s-only rows: %w", c.rightName, err)
	}
	if c.matchedCount, err = c.matched.Count(); err != nil {
		return fmt.Errorf("counting matched rows: %w", err)
	}
	return nil
}

// withOccurrenceRank appends a zero-based rank within each join-key group,
// ordered by a row-stable sequence number, so duplicate-keyed rows pair up
// positionally. Null key values form their own group: they are replaced by
// a sentinel on a string-cast copy of the keys, which fails fast if the
// sentinel occurs as real data.
func withOccurrenceRank(rel relation.Relation, joinCols []string, rankCol string) (relation.Relation, error) {
	// rankCol is not on rel yet, so the synthetic names must steer clear
	// of it explicitly.
	seqCol := tempColumnNameAvoiding([]string{rankCol}, rel)
	indexed := rel.WithRowNumber(seqCol)

	hasNullKey := false
	for _, col := range joinCols {
		rows, err := indexed.Filter(relation.IsNull(relation.Col(col))).Collect(1)
		if err != nil {
			return nil, fmt.Errorf("checking %q for null keys: %w", col, err)
		}
		if len(rows) > 0 {
			hasNullKey = true
			break
		}
	}

	if !hasNullKey {
		return indexed.WithGroupOrdinal(rankCol, joinCols, seqCol).Drop(seqCol), nil
	}

	for _, col := range joinCols {
		t, _ := relation.ColumnType(rel, col)
		if t.Kind != relation.KindString {
			continue
		}
		rows, err := indexed.Filter(relation.Eq(relation.Col(col), relation.Lit(nullSentinel))).Collect(1)
		if err != nil {
			return nil, fmt.Errorf("checking %q for sentinel collisions: %w", col, err)
		}
		if len(rows) > 0 {
			return nil, fmt.Errorf("%w: %q was found in join column %q", ErrAmbiguousSentinel, nullSentinel, col)
		}
	}

	// Partition over sentinel-filled string casts; the copies exist only
	// for grouping and are dropped right after.
	work := indexed
	partCols := make([]string, len(joinCols))
	for i, col := range joinCols {
		partCol := tempColumnNameAvoiding([]string{rankCol}, work)
		work = work.WithColumn(partCol, relation.Coalesce(
			relation.CastString(relation.Col(col)),
			relation.Lit(nullSentinel),
		))
		partCols[i] = partCol
	}
	ranked := work.WithGroupOrdinal(rankCol, partCols, seqCol)
	return ranked.Drop(append(partCols, seqCol)...), nil
}

// mergedColumns locates every column of a source relation inside the
// joined schema, under its own name when it did not collide and under its
// suffixed name when it did. A column found under neither name means the
// merge dropped it, which is a bug, not a recoverable condition.
func mergedColumns(src, merged relation.Relation, suffix string) ([]string, error) {
	cols := src.Columns()
	out := make([]string, len(cols))
	for i, col := range cols {
		switch {
		case relation.HasColumn(merged, col.Name):
			out[i] = col.Name
		case relation.HasColumn(merged, col.Name+suffix):
			out[i] = col.Name + suffix
		default:
			return nil, fmt.Errorf("%w: %q not found as itself or as %q", ErrSchemaResolution, col.Name, col.Name+suffix)
		}
	}
	return out, nil
}

// renameToSource renames suffixed columns back to the source relation's
// names, so the unique-row relations read like their input.
func renameToSource(rel relation.Relation, src relation.Relation, picked []string) relation.Relation {
	for i, col := range src.Columns() {
		if picked[i] != col.Name {
			rel = rel.Rename(picked[i], col.Name)
		}
	}
	return rel
}
