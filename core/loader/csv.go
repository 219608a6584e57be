package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// insertBatchSize bounds the number of rows per INSERT statement.
const insertBatchSize = 500

// LoadCSV reads a CSV file with a header row and loads it into a fresh
// table with a unique name. Column types are sniffed over the whole file:
// a column where every non-empty cell parses as an integer becomes BIGINT,
// as a number DOUBLE, anything else TEXT. Empty cells load as NULL.
// The caller owns the table and should drop it with DropTable when done.
func LoadCSV(db *gorm.DB, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return "", fmt.Errorf("reading csv header: %w", err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = sanitizeColumn(h, i)
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("reading csv row: %w", err)
		}
		records = append(records, rec)
	}

	kinds := sniffTypes(len(cols), records)

	table := "csv_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	if err := createTable(db, table, cols, kinds); err != nil {
		return "", err
	}
	if err := insertRows(db, table, cols, kinds, records); err != nil {
		// Best effort cleanup so a failed load leaves nothing behind.
		_ = DropTable(db, table)
		return "", err
	}
	return table, nil
}

// DropTable removes a table created by LoadCSV.
func DropTable(db *gorm.DB, table string) error {
	return db.Exec("DROP TABLE IF EXISTS " + quoteIdent(db, table)).Error
}

type columnKind int

const (
	kindInteger columnKind = iota
	kindDouble
	kindText
)

func (k columnKind) sqlType() string {
	switch k {
	case kindInteger:
		return "BIGINT"
	case kindDouble:
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}

// sniffTypes scans every cell and settles each column on the narrowest
// type that fits all its non-empty values.
func sniffTypes(n int, records [][]string) []columnKind {
	kinds := make([]columnKind, n)
	for _, rec := range records {
		for i := 0; i < n && i < len(rec); i++ {
			cell := strings.TrimSpace(rec[i])
			if cell == "" || kinds[i] == kindText {
				continue
			}
			if _, err := strconv.ParseInt(cell, 10, 64); err == nil {
				continue
			}
			if _, err := strconv.ParseFloat(cell, 64); err == nil {
				if kinds[i] == kindInteger {
					kinds[i] = kindDouble
				}
				continue
			}
			kinds[i] = kindText
		}
	}
	return kinds
}

func createTable(db *gorm.DB, table string, cols []string, kinds []columnKind) error {
	defs := make([]string, len(cols))
	for i, col := range cols {
		defs[i] = quoteIdent(db, col) + " " + kinds[i].sqlType()
	}
	stmt := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(db, table), strings.Join(defs, ", "))
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("creating table %s: %w", table, err)
	}
	return nil
}

func insertRows(db *gorm.DB, table string, cols []string, kinds []columnKind, records [][]string) error {
	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = quoteIdent(db, col)
	}
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ",
		quoteIdent(db, table), strings.Join(quoted, ", "))
	rowTmpl := "(" + strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",") + ")"

	for start := 0; start < len(records); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		placeholders := make([]string, len(batch))
		args := make([]any, 0, len(batch)*len(cols))
		for bi, rec := range batch {
			placeholders[bi] = rowTmpl
			for i := range cols {
				var cell string
				if i < len(rec) {
					cell = strings.TrimSpace(rec[i])
				}
				args = append(args, convertCell(cell, kinds[i]))
			}
		}

		stmt := prefix + strings.Join(placeholders, ", ")
		if err := db.Exec(stmt, args...).Error; err != nil {
			return fmt.Errorf("inserting into %s: %w", table, err)
		}
	}
	return nil
}

// convertCell turns a CSV cell into a typed value for its column. Empty
// cells are NULL regardless of type.
func convertCell(cell string, kind columnKind) any {
	if cell == "" {
		return nil
	}
	switch kind {
	case kindInteger:
		if v, err := strconv.ParseInt(cell, 10, 64); err == nil {
			return v
		}
	case kindDouble:
		if v, err := strconv.ParseFloat(cell, 64); err == nil {
			return v
		}
	}
	return cell
}

// sanitizeColumn normalizes a header cell into a safe column name.
func sanitizeColumn(h string, idx int) string {
	h = strings.TrimSpace(strings.ToLower(h))
	var b strings.Builder
	for _, r := range h {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '.':
			b.WriteRune('_')
		}
	}
	name := b.String()
	if name == "" {
		name = fmt.Sprintf("column_%d", idx)
	}
	return name
}

func quoteIdent(db *gorm.DB, name string) string {
	if db.Dialector != nil && db.Dialector.Name() == "mysql" {
		return "`" + name + "`"
	}
	return `"` + name + `"`
}
