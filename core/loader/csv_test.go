package loader_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"tablediff/core/database"
	"tablediff/core/loader"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: dsn})
	require.NoError(t, err)
	return db
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	db := setupSQLite(t)
	path := writeCSV(t, "Order ID,Amount,Note\n1,10.5,alpha\n2,20,\n3,,gamma\n")

	table, err := loader.LoadCSV(db, path)
	require.NoError(t, err)
	defer loader.DropTable(db, table)

	cols, err := database.GetTableColumns(db, table)
	require.NoError(t, err)
	require.Len(t, cols, 3)
	// Headers are normalized, types sniffed from the data.
	assert.Equal(t, "order_id", cols[0].Field)
	assert.Equal(t, "bigint", cols[0].Type)
	assert.Equal(t, "amount", cols[1].Field)
	assert.Equal(t, "double precision", cols[1].Type)
	assert.Equal(t, "note", cols[2].Field)
	assert.Equal(t, "text", cols[2].Type)

	var n int64
	require.NoError(t, db.Raw("SELECT COUNT(*) FROM "+table).Row().Scan(&n))
	assert.Equal(t, int64(3), n)

	// Empty cells load as NULL, not as empty strings or zeros.
	var nulls int64
	require.NoError(t, db.Raw(
		"SELECT COUNT(*) FROM "+table+" WHERE amount IS NULL OR note IS NULL",
	).Row().Scan(&nulls))
	assert.Equal(t, int64(2), nulls)
}

func TestLoadCSV_TextFallback(t *testing.T) {
	db := setupSQLite(t)
	path := writeCSV(t, "code\n123\nabc\n")

	table, err := loader.LoadCSV(db, path)
	require.NoError(t, err)
	defer loader.DropTable(db, table)

	cols, err := database.GetTableColumns(db, table)
	require.NoError(t, err)
	require.Len(t, cols, 1)
	// One non-numeric value demotes the whole column to text.
	assert.Equal(t, "text", cols[0].Type)
}

func TestLoadCSV_MissingFile(t *testing.T) {
	db := setupSQLite(t)
	_, err := loader.LoadCSV(db, "/does/not/exist.csv")
	assert.Error(t, err)
}

func TestDropTable(t *testing.T) {
	db := setupSQLite(t)
	path := writeCSV(t, "a\n1\n")

	table, err := loader.LoadCSV(db, path)
	require.NoError(t, err)
	require.NoError(t, loader.DropTable(db, table))

	cols, err := database.GetTableColumns(db, table)
	require.NoError(t, err)
	assert.Empty(t, cols)
}
