package compare_test

import (
	"testing"

	"tablediff/core/relation"
	"tablediff/feature/compare"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare_PartialOverlapScenario(t *testing.T) {
	schema := cols("id", relation.KindBigint, "val", relation.KindDouble)
	left := rel("l", schema, []relation.Row{
		{"id": int64(1), "val": 10.0},
		{"id": int64(2), "val": 20.0},
	})
	right := rel("r", schema, []relation.Row{
		{"id": int64(1), "val": 10.0001},
		{"id": int64(3), "val": 30.0},
	})

	c, err := compare.New(left, right, compare.Options{
		JoinColumns: []string{"id"},
		AbsTol:      0.01,
	})
	require.NoError(t, err)

	leftOnly, err := c.LeftOnly().Collect(-1)
	require.NoError(t, err)
	require.Len(t, leftOnly, 1)
	assert.Equal(t, int64(2), leftOnly[0]["id"])

	rightOnly, err := c.RightOnly().Collect(-1)
	require.NoError(t, err)
	require.Len(t, rightOnly, 1)
	assert.Equal(t, int64(3), rightOnly[0]["id"])

	// The one matched row is within tolerance.
	assert.True(t, statFor(t, c, "val").FullyMatches())
	assert.True(t, c.IntersectRowsMatch())

	// Rows do not fully overlap, so neither matches nor subset holds.
	assert.False(t, c.Matches(false))
	assert.False(t, c.Subset())
}

func mismatchFixture(t *testing.T) *compare.Comparison {
	t.Helper()
	schema := cols(
		"id", relation.KindBigint,
		"amount", relation.KindDouble,
		"note", relation.KindString,
	)
	left := rel("l", schema, []relation.Row{
		{"id": int64(1), "amount": 10.0, "note": "same"},
		{"id": int64(2), "amount": 20.0, "note": "same"},
		{"id": int64(3), "amount": 30.0, "note": "same"},
	})
	right := rel("r", schema, []relation.Row{
		{"id": int64(1), "amount": 10.0, "note": "same"},
		{"id": int64(2), "amount": 99.0, "note": "same"},
		{"id": int64(3), "amount": 88.0, "note": "same"},
	})
	c, err := compare.New(left, right, compare.Options{JoinColumns: []string{"id"}})
	require.NoError(t, err)
	return c
}

func TestSampleMismatch(t *testing.T) {
	c := mismatchFixture(t)

	sample, err := c.SampleMismatch("amount", 10, false)
	require.NoError(t, err)
	rows, err := sample.Collect(-1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"id", "amount_LEFT", "amount_RIGHT"}, relation.ColumnNames(sample))

	t.Run("Bounded", func(t *testing.T) {
		sample, err := c.SampleMismatch("amount", 1, false)
		require.NoError(t, err)
		n, err := sample.Count()
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("ForDisplay", func(t *testing.T) {
		sample, err := c.SampleMismatch("amount", 10, true)
		require.NoError(t, err)
		assert.Equal(t,
			[]string{"id", "amount (LEFT)", "amount (RIGHT)"},
			relation.ColumnNames(sample))
	})

	t.Run("JoinColumnRejected", func(t *testing.T) {
		_, err := c.SampleMismatch("id", 10, false)
		assert.ErrorIs(t, err, compare.ErrValidation)
	})

	t.Run("UnknownColumnRejected", func(t *testing.T) {
		_, err := c.SampleMismatch("nope", 10, false)
		assert.ErrorIs(t, err, compare.ErrValidation)
	})
}

func TestAllMismatch(t *testing.T) {
	c := mismatchFixture(t)

	all, err := c.AllMismatch(false)
	require.NoError(t, err)
	// Both compared columns appear, keys first.
	assert.Equal(t, []string{
		"id",
		"amount_LEFT", "amount_RIGHT",
		"note_LEFT", "note_RIGHT",
	}, relation.ColumnNames(all))

	rows, err := all.Collect(-1)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	t.Run("IgnoreMatchingCols", func(t *testing.T) {
		all, err := c.AllMismatch(true)
		require.NoError(t, err)
		// note matches everywhere and is excluded from the projection.
		assert.Equal(t, []string{"id", "amount_LEFT", "amount_RIGHT"},
			relation.ColumnNames(all))
	})
}

func TestAllMismatch_NothingCompared(t *testing.T) {
	schema := cols("id", relation.KindBigint)
	left := rel("l", schema, []relation.Row{{"id": int64(1)}})
	right := rel("r", schema, []relation.Row{{"id": int64(1)}})

	c, err := compare.New(left, right, compare.Options{JoinColumns: []string{"id"}})
	require.NoError(t, err)

	all, err := c.AllMismatch(false)
	require.NoError(t, err)
	n, err := all.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}
