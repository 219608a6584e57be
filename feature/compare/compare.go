package compare

import (
	"fmt"
	"strings"

	"tablediff/core/relation"
)

// nullSentinel stands in for null join-key values while duplicate-keyed
// rows are ranked. Construction fails if it occurs as real data in a
// string join column.
const nullSentinel = "TABLEDIFF_NULL"

// Options configures a comparison.
type Options struct {
	// JoinColumns are the columns rows are aligned on. Required, non-empty,
	// and present in both relations. Order only affects output column order.
	JoinColumns []string
	// AbsTol and RelTol are the numeric tolerances: two numbers match when
	// |left - right| <= AbsTol + RelTol*|right|. Both must be >= 0.
	AbsTol float64
	RelTol float64
	// IgnoreSpaces strips leading/trailing whitespace (including newlines)
	// from string columns before comparing.
	IgnoreSpaces bool
	// LeftName and RightName label the two sides in results and reports.
	// They default to LEFT and RIGHT and must differ after sanitizing.
	LeftName  string
	RightName string
	// Observer receives diagnostic checkpoints. Defaults to the no-op one.
	Observer Observer
}

// ColumnStat summarizes one shared column over the matched rows.
type ColumnStat struct {
	Column      string
	MatchColumn string // name of the flag column on Matched(); empty for join keys
	LeftType    relation.Type
	RightType   relation.Type
	// MatchCount + MismatchCount always equals the matched row count.
	MatchCount    int64
	MismatchCount int64
	// TypesCompatible is the type oracle's verdict. Incomparable columns
	// report every row as mismatched rather than being hidden.
	TypesCompatible bool
	// MaxDiff is the maximum |left - right| over rows where the difference
	// is defined, 0 for non-numeric columns and empty/all-null sets.
	MaxDiff float64
	// NullDiff counts rows where exactly one side is null.
	NullDiff int64
}

// FullyMatches reports whether the column has compatible types and no
// mismatched rows.
func (s ColumnStat) FullyMatches() bool {
	return s.TypesCompatible && s.MismatchCount == 0
}

// Comparison is the result of aligning and comparing two relations. It is
// constructed eagerly by New and immutable afterwards; all accessors are
// safe to call repeatedly and concurrently.
type Comparison struct {
	left, right         relation.Relation
	leftName, rightName string
	joinColumns         []string
	absTol, relTol      float64
	ignoreSpaces        bool
	obs                 Observer

	hasDuplicateKeys bool

	leftOnly  relation.Relation
	rightOnly relation.Relation
	matched   relation.Relation

	leftCount, rightCount         int64
	leftOnlyCount, rightOnlyCount int64
	matchedCount                  int64
	matchingRowCount              int64

	columnStats  []ColumnStat
	matchColumns []string
}

// New validates the inputs, aligns the rows and compares every shared
// column. All heavy work happens here; the returned Comparison only serves
// cached results and bounded samples.
func New(left, right relation.Relation, opts Options) (*Comparison, error) {
	if left == nil || right == nil {
		return nil, fmt.Errorf("%w: both relations are required", ErrValidation)
	}
	if len(opts.JoinColumns) == 0 {
		return nil, fmt.Errorf("%w: join columns must not be empty", ErrValidation)
	}
	if opts.AbsTol < 0 || opts.RelTol < 0 {
		return nil, fmt.Errorf("%w: tolerances must not be negative", ErrValidation)
	}

	obs := opts.Observer
	if obs == nil {
		obs = NopObserver()
	}
	c := &Comparison{
		left:         left,
		right:        right,
		leftName:     sanitizeName(opts.LeftName, "LEFT"),
		rightName:    sanitizeName(opts.RightName, "RIGHT"),
		joinColumns:  append([]string(nil), opts.JoinColumns...),
		absTol:       opts.AbsTol,
		relTol:       opts.RelTol,
		ignoreSpaces: opts.IgnoreSpaces,
		obs:          obs,
	}
	if c.leftName == c.rightName {
		return nil, fmt.Errorf("%w: relation names must differ (both are %q)", ErrValidation, c.leftName)
	}

	for _, name := range []struct {
		rel  relation.Relation
		side string
	}{{left, c.leftName}, {right, c.rightName}} {
		for _, col := range c.joinColumns {
			if !relation.HasColumn(name.rel, col) {
				return nil, fmt.Errorf("%w: join column %q missing from %s", ErrValidation, col, name.side)
			}
		}
	}

	if err := c.detectDuplicates(); err != nil {
		return nil, err
	}
	obs.ValidationDone(c.leftName, c.rightName, c.hasDuplicateKeys)

	if err := c.merge(); err != nil {
		return nil, err
	}
	obs.JoinComplete(c.matchedCount, c.leftOnlyCount, c.rightOnlyCount)

	if err := c.compareColumns(); err != nil {
		return nil, err
	}
	return c, nil
}

// detectDuplicates counts both relations and flags duplicate join keys on
// either side. Nulls group together here, matching SQL DISTINCT.
func (c *Comparison) detectDuplicates() error {
	var err error
	if c.leftCount, err = c.left.Count(); err != nil {
		return fmt.Errorf("counting %s: %w", c.leftName, err)
	}
	if c.rightCount, err = c.right.Count(); err != nil {
		return fmt.Errorf("counting %s: %w", c.rightName, err)
	}
	for _, side := range []struct {
		rel   relation.Relation
		total int64
	}{{c.left, c.leftCount}, {c.right, c.rightCount}} {
		distinct, err := side.rel.Select(c.joinColumns...).Distinct().Count()
		if err != nil {
			return fmt.Errorf("checking join key uniqueness: %w", err)
		}
		if distinct < side.total {
			c.hasDuplicateKeys = true
		}
	}
	return nil
}

// HasDuplicateKeys reports whether either input holds duplicate rows on
// the join key set.
func (c *Comparison) HasDuplicateKeys() bool { return c.hasDuplicateKeys }

// LeftName returns the sanitized display name of the left relation.
func (c *Comparison) LeftName() string { return c.leftName }

// RightName returns the sanitized display name of the right relation.
func (c *Comparison) RightName() string { return c.rightName }

// JoinColumns returns the join key set.
func (c *Comparison) JoinColumns() []string {
	return append([]string(nil), c.joinColumns...)
}

// LeftOnly returns the rows whose keys occur only in the left relation,
// with the left relation's own column names.
func (c *Comparison) LeftOnly() relation.Relation { return c.leftOnly }

// RightOnly returns the rows whose keys occur only in the right relation.
func (c *Comparison) RightOnly() relation.Relation { return c.rightOnly }

// Matched returns the key-aligned rows. Shared non-key columns carry the
// per-side suffixes plus one boolean match flag column per compared column.
func (c *Comparison) Matched() relation.Relation { return c.matched }

// ColumnStats returns the per-column statistics, ordered like
// IntersectColumns.
func (c *Comparison) ColumnStats() []ColumnStat {
	return append([]ColumnStat(nil), c.columnStats...)
}

// LeftOnlyColumns lists columns present only in the left relation.
func (c *Comparison) LeftOnlyColumns() []string {
	return diffColumns(c.left, c.right)
}

// RightOnlyColumns lists columns present only in the right relation.
func (c *Comparison) RightOnlyColumns() []string {
	return diffColumns(c.right, c.left)
}

// IntersectColumns lists the shared columns, in left schema order.
func (c *Comparison) IntersectColumns() []string {
	var out []string
	for _, col := range c.left.Columns() {
		if relation.HasColumn(c.right, col.Name) {
			out = append(out, col.Name)
		}
	}
	return out
}

// AllColumnsMatch reports whether the two schemas hold exactly the same
// column names.
func (c *Comparison) AllColumnsMatch() bool {
	return len(c.LeftOnlyColumns()) == 0 && len(c.RightOnlyColumns()) == 0
}

// AllRowsOverlap reports whether every row's key occurs on both sides.
func (c *Comparison) AllRowsOverlap() bool {
	return c.leftOnlyCount == 0 && c.rightOnlyCount == 0
}

// CountMatchingRows returns the number of matched rows on which every
// compared column matches. It is 0 when there are no non-key shared
// columns.
func (c *Comparison) CountMatchingRows() int64 { return c.matchingRowCount }

// IntersectRowsMatch reports whether every matched row matches on all
// compared columns.
func (c *Comparison) IntersectRowsMatch() bool {
	return c.matchingRowCount == c.matchedCount
}

// Matches reports whether the two relations are equal: same columns
// (unless ignoreExtraColumns), full row overlap, and every matched row
// equal on all compared columns.
func (c *Comparison) Matches(ignoreExtraColumns bool) bool {
	if !ignoreExtraColumns && !c.AllColumnsMatch() {
		return false
	}
	if !c.AllRowsOverlap() {
		return false
	}
	return c.IntersectRowsMatch()
}

// Subset reports whether the right relation is a subset of the left one:
// its columns are all present on the left, none of its rows are unmatched,
// and the matched rows agree on the shared columns.
func (c *Comparison) Subset() bool {
	if len(c.RightOnlyColumns()) != 0 {
		return false
	}
	if c.rightOnlyCount != 0 {
		return false
	}
	return c.IntersectRowsMatch()
}

func sanitizeName(name, fallback string) string {
	if name == "" {
		name = fallback
	}
	return strings.ToUpper(strings.ReplaceAll(name, ".", "_"))
}

func diffColumns(a, b relation.Relation) []string {
	var out []string
	for _, col := range a.Columns() {
		if !relation.HasColumn(b, col.Name) {
			out = append(out, col.Name)
		}
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// tempColumnName returns a column name unused by any of the given
// relations, of the form _tmp_N.
func tempColumnName(rels ...relation.Relation) string {
	return tempColumnNameAvoiding(nil, rels...)
}

// tempColumnNameAvoiding additionally skips reserved names that are not
// yet present on any of the relations, such as a column about to be added.
func tempColumnNameAvoiding(avoid []string, rels ...relation.Relation) string {
	for i := 0; ; i++ {
		name := fmt.Sprintf("_tmp_%d", i)
		if containsString(avoid, name) {
			continue
		}
		taken := false
		for _, r := range rels {
			if relation.HasColumn(r, name) {
				taken = true
				break
			}
		}
		if !taken {
			return name
		}
	}
}
