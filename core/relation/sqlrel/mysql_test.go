package sqlrel_test

import (
	"testing"

	"tablediff/core/relation"
	"tablediff/core/relation/sqlrel"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func mockOrdersTable(mock sqlmock.Sqlmock) {
	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("id", "bigint", "YES", "", nil, "").
		AddRow("amount", "decimal(10,2)", "YES", "", nil, "")
	mock.ExpectQuery("SHOW COLUMNS FROM `orders`").WillReturnRows(rows)
}

func TestTable_MySQLIntrospection(t *testing.T) {
	db, mock := setupMockDB(t)
	mockOrdersTable(mock)

	rel, err := sqlrel.Table(db, "orders")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "amount"}, relation.ColumnNames(rel))

	typ, _ := relation.ColumnType(rel, "amount")
	assert.Equal(t, relation.KindDecimal, typ.Kind)
	assert.Equal(t, 10, typ.Precision)
	assert.Equal(t, 2, typ.Scale)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCount_MySQLStatement(t *testing.T) {
	db, mock := setupMockDB(t)
	mockOrdersTable(mock)

	rel, err := sqlrel.Table(db, "orders")
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM \(SELECT \x60id\x60, \x60amount\x60 FROM \x60orders\x60\) AS t`).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(42))

	n, err := rel.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilter_MySQLNullSafeEquality(t *testing.T) {
	db, mock := setupMockDB(t)
	mockOrdersTable(mock)

	rel, err := sqlrel.Table(db, "orders")
	require.NoError(t, err)

	// MySQL renders null-safe equality as <=> and threads the literal
	// as a placeholder argument.
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM \(SELECT \* FROM \(.+\) AS t WHERE \(\x60amount\x60 <=> \?\)\) AS t`).
		WithArgs(10.5).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(1))

	n, err := rel.
		Filter(relation.NullSafeEq(relation.Col("amount"), relation.Lit(10.5))).
		Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrim_MySQLStatement(t *testing.T) {
	db, mock := setupMockDB(t)
	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("id", "bigint", "YES", "", nil, "").
		AddRow("note", "varchar(64)", "YES", "", nil, "")
	mock.ExpectQuery("SHOW COLUMNS FROM `notes`").WillReturnRows(rows)

	rel, err := sqlrel.Table(db, "notes")
	require.NoError(t, err)

	// MySQL has no character-set TRIM, so whitespace trimming renders as
	// an anchored REGEXP_REPLACE.
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM \(SELECT \* FROM \(.+\) AS t WHERE \(REGEXP_REPLACE\(\x60note\x60, '\^\[\[:space:\]\]\+\|\[\[:space:\]\]\+\$', ''\) <=> \?\)\) AS t`).
		WithArgs("x").
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(1))

	n, err := rel.
		Filter(relation.NullSafeEq(relation.Trim(relation.Col("note")), relation.Lit("x"))).
		Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
