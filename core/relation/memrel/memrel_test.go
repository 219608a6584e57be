package memrel_test

import (
	"testing"

	"tablediff/core/relation"
	"tablediff/core/relation/memrel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schema(pairs ...any) []relation.Column {
	cols := make([]relation.Column, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		cols = append(cols, relation.Column{
			Name: pairs[i].(string),
			Type: relation.TypeOf(pairs[i+1].(relation.Kind)),
		})
	}
	return cols
}

func TestSelectAndRename(t *testing.T) {
	r := memrel.New("t", schema("a", relation.KindBigint, "b", relation.KindString), []relation.Row{
		{"a": int64(1), "b": "x"},
		{"a": int64(2), "b": "y"},
	})

	sel := r.Select("b").Rename("b", "label")
	assert.Equal(t, []string{"label"}, relation.ColumnNames(sel))

	rows, err := sel.Collect(-1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "x", rows[0]["label"])

	t.Run("UnknownColumn", func(t *testing.T) {
		_, err := r.Select("missing").Count()
		assert.Error(t, err)
	})

	t.Run("RenameCollision", func(t *testing.T) {
		_, err := r.Rename("a", "b").Count()
		assert.Error(t, err)
	})
}

func TestDistinct_NullsEqual(t *testing.T) {
	r := memrel.New("t", schema("a", relation.KindString), []relation.Row{
		{"a": "x"},
		{"a": nil},
		{"a": "x"},
		{"a": nil},
	})
	n, err := r.Distinct().Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestFilter_ThreeValuedLogic(t *testing.T) {
	r := memrel.New("t", schema("a", relation.KindBigint), []relation.Row{
		{"a": int64(1)},
		{"a": nil},
		{"a": int64(2)},
	})

	// A null comparison is neither true nor false; the row is dropped.
	n, err := r.Filter(relation.Eq(relation.Col("a"), relation.Lit(int64(1)))).Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Negating the null comparison still drops the row.
	n, err = r.Filter(relation.Not(relation.Eq(relation.Col("a"), relation.Lit(int64(1))))).Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// The null-safe comparison treats two nulls as equal.
	n, err = r.Filter(relation.NullSafeEq(relation.Col("a"), relation.Lit(nil))).Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestWithRowNumber_Monotonic(t *testing.T) {
	r := memrel.New("t", schema("a", relation.KindString), []relation.Row{
		{"a": "x"}, {"a": "y"}, {"a": "z"},
	})
	rows, err := r.WithRowNumber("seq").Collect(-1)
	require.NoError(t, err)
	for i, row := range rows {
		assert.Equal(t, int64(i), row["seq"])
	}
}

func TestWithGroupOrdinal(t *testing.T) {
	r := memrel.New("t", schema("k", relation.KindString, "seq", relation.KindBigint), []relation.Row{
		{"k": "a", "seq": int64(0)},
		{"k": "b", "seq": int64(1)},
		{"k": "a", "seq": int64(2)},
		{"k": nil, "seq": int64(3)},
		{"k": nil, "seq": int64(4)},
	})

	rows, err := r.WithGroupOrdinal("ord", []string{"k"}, "seq").Collect(-1)
	require.NoError(t, err)
	require.Len(t, rows, 5)

	// Zero-based rank per group, in seq order; null keys form one group.
	assert.Equal(t, int64(0), rows[0]["ord"])
	assert.Equal(t, int64(0), rows[1]["ord"])
	assert.Equal(t, int64(1), rows[2]["ord"])
	assert.Equal(t, int64(0), rows[3]["ord"])
	assert.Equal(t, int64(1), rows[4]["ord"])
}

func TestOuterJoin(t *testing.T) {
	left := memrel.New("l", schema("id", relation.KindBigint, "v", relation.KindString), []relation.Row{
		{"id": int64(1), "v": "one"},
		{"id": int64(2), "v": "two"},
		{"id": nil, "v": "null-key"},
	})
	right := memrel.New("r", schema("id", relation.KindBigint, "v", relation.KindString), []relation.Row{
		{"id": int64(2), "v": "TWO"},
		{"id": int64(3), "v": "THREE"},
		{"id": nil, "v": "NULL-KEY"},
	})

	joined := left.OuterJoin(right, []string{"id"}, "_L", "_R")
	assert.Equal(t, []string{"id", "v_L", "v_R"}, relation.ColumnNames(joined))

	rows, err := joined.Collect(-1)
	require.NoError(t, err)
	// 1 matched + 2 left-only (incl. null key) + 2 right-only.
	require.Len(t, rows, 5)

	var matched, leftOnly, rightOnly int
	for _, row := range rows {
		switch {
		case row["v_L"] != nil && row["v_R"] != nil:
			matched++
			assert.Equal(t, int64(2), row["id"])
		case row["v_L"] != nil:
			leftOnly++
		default:
			rightOnly++
		}
	}
	assert.Equal(t, 1, matched)
	assert.Equal(t, 2, leftOnly)
	assert.Equal(t, 2, rightOnly)
}

func TestOuterJoin_UniqueColumnsKeepNames(t *testing.T) {
	left := memrel.New("l", schema("id", relation.KindBigint, "only_left", relation.KindString), []relation.Row{
		{"id": int64(1), "only_left": "x"},
	})
	right := memrel.New("r", schema("id", relation.KindBigint, "only_right", relation.KindString), []relation.Row{
		{"id": int64(1), "only_right": "y"},
	})

	joined := left.OuterJoin(right, []string{"id"}, "_L", "_R")
	assert.Equal(t, []string{"id", "only_left", "only_right"}, relation.ColumnNames(joined))
}

func TestMaxFloat(t *testing.T) {
	r := memrel.New("t", schema("a", relation.KindDouble), []relation.Row{
		{"a": 1.5}, {"a": nil}, {"a": 3.25}, {"a": 2.0},
	})
	max, err := r.MaxFloat("a")
	require.NoError(t, err)
	assert.Equal(t, 3.25, max)

	t.Run("AllNull", func(t *testing.T) {
		r := memrel.New("t", schema("a", relation.KindDouble), []relation.Row{{"a": nil}})
		max, err := r.MaxFloat("a")
		require.NoError(t, err)
		assert.Zero(t, max)
	})

	t.Run("Empty", func(t *testing.T) {
		r := memrel.New("t", schema("a", relation.KindDouble), nil)
		max, err := r.MaxFloat("a")
		require.NoError(t, err)
		assert.Zero(t, max)
	})
}

func TestWithColumnAndDrop(t *testing.T) {
	r := memrel.New("t", schema("a", relation.KindDouble, "b", relation.KindDouble), []relation.Row{
		{"a": 3.0, "b": 5.0},
	})

	diff := r.WithColumn("diff", relation.Abs(relation.Sub(relation.Col("a"), relation.Col("b"))))
	rows, err := diff.Collect(-1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, rows[0]["diff"])

	dropped := diff.Drop("diff", "never_existed")
	assert.Equal(t, []string{"a", "b"}, relation.ColumnNames(dropped))
}

func TestLimit(t *testing.T) {
	r := memrel.New("t", schema("a", relation.KindBigint), []relation.Row{
		{"a": int64(1)}, {"a": int64(2)}, {"a": int64(3)},
	})
	n, err := r.Limit(2).Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
