package relation

// Column is one column of a relation's schema: a name and a type tag.
type Column struct {
	Name string
	Type Type
}

// Row is a single materialized row. A nil value is SQL NULL. Scalar values
// are normalized to int64, float64, string, bool or time.Time by the
// engines.
type Row = map[string]any

// Relation is an opaque, lazily evaluated handle on a tabular dataset.
//
// Handles are immutable: every derivation returns a fresh handle and never
// mutates its receiver, so a relation can safely feed several derivations.
// No rows are materialized until an action (Count, Collect, MaxFloat) runs.
// Schema errors in a derivation chain (unknown column, bad expression) are
// deferred and surface from the first action on the derived handle.
type Relation interface {
	// Name is a diagnostic label for the relation (table name or derived).
	Name() string

	// Columns returns the ordered schema of the relation.
	Columns() []Column

	// Count evaluates the relation and returns its row count.
	Count() (int64, error)

	// Collect materializes the rows. A negative limit collects everything.
	Collect(limit int) ([]Row, error)

	// MaxFloat evaluates the maximum of a numeric column, skipping null
	// values. The maximum over an empty or all-null column is 0.
	MaxFloat(col string) (float64, error)

	// Select projects the named columns, in the given order.
	Select(cols ...string) Relation

	// Distinct removes duplicate rows. Nulls compare equal for this purpose.
	Distinct() Relation

	// Filter keeps rows for which cond evaluates to true (not false, not null).
	Filter(cond Expr) Relation

	// WithColumn appends a computed column.
	WithColumn(name string, e Expr) Relation

	// WithRowNumber appends an injective integer column that increases
	// monotonically with the relation's underlying row order.
	WithRowNumber(name string) Relation

	// WithGroupOrdinal appends a zero-based rank within each group of rows
	// sharing the partitionBy tuple, ordered by orderBy. Null partition
	// values form their own group rather than being excluded.
	WithGroupOrdinal(name string, partitionBy []string, orderBy string) Relation

	// Rename renames a single column.
	Rename(old, new string) Relation

	// Drop removes the named columns.
	Drop(cols ...string) Relation

	// Limit truncates the relation to at most n rows.
	Limit(n int) Relation

	// OuterJoin computes a full outer equality join on the named columns.
	// Join columns appear once in the output, taken from whichever side is
	// present. Non-join columns occurring on both sides are disambiguated
	// with the per-side suffixes; columns unique to one side keep their
	// name. Null join values never match.
	OuterJoin(right Relation, on []string, leftSuffix, rightSuffix string) Relation
}

// ColumnNames returns the schema's column names in order.
func ColumnNames(r Relation) []string {
	cols := r.Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether the relation's schema contains name.
func HasColumn(r Relation, name string) bool {
	for _, c := range r.Columns() {
		if c.Name == name {
			return true
		}
	}
	return false
}

// ColumnType looks up the type of a column by name.
func ColumnType(r Relation, name string) (Type, bool) {
	for _, c := range r.Columns() {
		if c.Name == name {
			return c.Type, true
		}
	}
	return Type{}, false
}

// InferType computes the static type of an expression against a schema.
// It is used by engines to maintain schemas for derived relations.
func InferType(e Expr, schema []Column) Type {
	switch ex := e.(type) {
	case ColExpr:
		for _, c := range schema {
			if c.Name == ex.Name {
				return c.Type
			}
		}
		return Type{Kind: KindOther}
	case LitExpr:
		switch ex.Value.(type) {
		case nil:
			return Type{Kind: KindOther}
		case bool:
			return TypeOf(KindBool)
		case int, int32, int64:
			return TypeOf(KindBigint)
		case float32, float64:
			return TypeOf(KindDouble)
		case string:
			return TypeOf(KindString)
		default:
			return Type{Kind: KindOther}
		}
	case UnaryExpr:
		switch ex.Op {
		case OpNot, OpIsNull:
			return TypeOf(KindBool)
		case OpAbs:
			return TypeOf(KindDouble)
		case OpTrim, OpCastString:
			return TypeOf(KindString)
		}
	case BinaryExpr:
		switch ex.Op {
		case OpAnd, OpOr, OpEq, OpNullSafeEq, OpLe:
			return TypeOf(KindBool)
		case OpAdd, OpSub, OpMul:
			return TypeOf(KindDouble)
		}
	case CoalesceExpr:
		if len(ex.Args) > 0 {
			return InferType(ex.Args[0], schema)
		}
	}
	return Type{Kind: KindOther}
}
