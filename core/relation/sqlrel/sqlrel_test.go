package sqlrel_test

import (
	"fmt"
	"testing"

	"tablediff/core/database"
	"tablediff/core/relation"
	"tablediff/core/relation/sqlrel"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupSQLite opens a uniquely named shared in-memory database so every
// pooled connection sees the same tables.
func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: dsn})
	require.NoError(t, err)
	return db
}

func seedOrders(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Exec(`CREATE TABLE orders (id BIGINT, amount DOUBLE, note TEXT)`).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO orders (id, amount, note) VALUES (1, 10.5, 'a'), (2, 20.0, NULL), (3, NULL, 'c')`,
	).Error)
}

func TestTable_SQLite(t *testing.T) {
	db := setupSQLite(t)
	seedOrders(t, db)

	rel, err := sqlrel.Table(db, "orders")
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "amount", "note"}, relation.ColumnNames(rel))
	typ, ok := relation.ColumnType(rel, "amount")
	require.True(t, ok)
	assert.True(t, typ.Numeric())

	n, err := rel.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	t.Run("MissingTable", func(t *testing.T) {
		_, err := sqlrel.Table(db, "nope")
		assert.Error(t, err)
	})
}

func TestFilterAndCollect_SQLite(t *testing.T) {
	db := setupSQLite(t)
	seedOrders(t, db)

	rel, err := sqlrel.Table(db, "orders")
	require.NoError(t, err)

	rows, err := rel.
		Filter(relation.Le(relation.Col("amount"), relation.Lit(15.0))).
		Collect(-1)
	require.NoError(t, err)
	// The null amount fails the comparison and the row is dropped.
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0]["id"])
	assert.Equal(t, "a", rows[0]["note"])
}

func TestTrim_SQLite(t *testing.T) {
	db := setupSQLite(t)
	require.NoError(t, db.Exec(`CREATE TABLE notes (id BIGINT, body TEXT)`).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO notes (id, body) VALUES (1, 'x' || char(10)), (2, char(9) || ' x '), (3, 'x')`,
	).Error)

	rel, err := sqlrel.Table(db, "notes")
	require.NoError(t, err)

	// Tabs and newlines are stripped along with spaces, matching the
	// in-memory engine.
	n, err := rel.
		Filter(relation.NullSafeEq(relation.Trim(relation.Col("body")), relation.Lit("x"))).
		Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestWithColumn_SQLite(t *testing.T) {
	db := setupSQLite(t)
	seedOrders(t, db)

	rel, err := sqlrel.Table(db, "orders")
	require.NoError(t, err)

	withDiff := rel.WithColumn("diff",
		relation.Abs(relation.Sub(relation.Col("amount"), relation.Lit(15.0))))
	max, err := withDiff.MaxFloat("diff")
	require.NoError(t, err)
	assert.InDelta(t, 5.0, max, 1e-9)
}

func TestDistinctAndLimit_SQLite(t *testing.T) {
	db := setupSQLite(t)
	require.NoError(t, db.Exec(`CREATE TABLE vals (v TEXT)`).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO vals (v) VALUES ('x'), ('x'), (NULL), (NULL), ('y')`,
	).Error)

	rel, err := sqlrel.Table(db, "vals")
	require.NoError(t, err)

	// SELECT DISTINCT treats nulls as equal.
	n, err := rel.Distinct().Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = rel.Limit(2).Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestWithGroupOrdinal_SQLite(t *testing.T) {
	db := setupSQLite(t)
	require.NoError(t, db.Exec(`CREATE TABLE dup (k TEXT, seq BIGINT)`).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO dup (k, seq) VALUES ('a', 0), ('b', 1), ('a', 2)`,
	).Error)

	rel, err := sqlrel.Table(db, "dup")
	require.NoError(t, err)

	rows, err := rel.WithGroupOrdinal("ord", []string{"k"}, "seq").Collect(-1)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	ords := make(map[string][]int64)
	for _, row := range rows {
		k := row["k"].(string)
		ords[k] = append(ords[k], row["ord"].(int64))
	}
	assert.ElementsMatch(t, []int64{0, 1}, ords["a"])
	assert.ElementsMatch(t, []int64{0}, ords["b"])
}

func TestOuterJoin_SQLite(t *testing.T) {
	db := setupSQLite(t)
	require.NoError(t, db.Exec(`CREATE TABLE l (id BIGINT, v TEXT)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE r (id BIGINT, v TEXT)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO l (id, v) VALUES (1, 'one'), (2, 'two')`).Error)
	require.NoError(t, db.Exec(`INSERT INTO r (id, v) VALUES (2, 'TWO'), (3, 'THREE')`).Error)

	left, err := sqlrel.Table(db, "l")
	require.NoError(t, err)
	right, err := sqlrel.Table(db, "r")
	require.NoError(t, err)

	joined := left.OuterJoin(right, []string{"id"}, "_L", "_R")
	assert.Equal(t, []string{"id", "v_L", "v_R"}, relation.ColumnNames(joined))

	rows, err := joined.Collect(-1)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	byID := make(map[int64]relation.Row)
	for _, row := range rows {
		byID[row["id"].(int64)] = row
	}
	assert.Equal(t, "one", byID[1]["v_L"])
	assert.Nil(t, byID[1]["v_R"])
	assert.Equal(t, "two", byID[2]["v_L"])
	assert.Equal(t, "TWO", byID[2]["v_R"])
	assert.Nil(t, byID[3]["v_L"])
	assert.Equal(t, "THREE", byID[3]["v_R"])
}

func TestDeferredErrors_SQLite(t *testing.T) {
	db := setupSQLite(t)
	seedOrders(t, db)

	rel, err := sqlrel.Table(db, "orders")
	require.NoError(t, err)

	// The bad projection surfaces from the action, not the derivation.
	bad := rel.Select("missing").Filter(relation.IsNull(relation.Col("id")))
	_, err = bad.Count()
	assert.Error(t, err)
}
