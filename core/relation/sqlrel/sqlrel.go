package sqlrel

import (
	"database/sql"
	"fmt"

	"tablediff/core/database"
	"tablediff/core/relation"

	"gorm.io/gorm"
)

// Relation is the SQL pushdown implementation of relation.Relation. Every
// handle wraps a SELECT statement; derivations nest it as a subquery and
// nothing touches the database until an action runs. Placeholder arguments
// are threaded alongside the statement, never interpolated into it.
type Relation struct {
	db    *gorm.DB
	name  string
	cols  []relation.Column
	query string
	args  []any
	err   error
}

// Table resolves a named table into a relation handle, introspecting its
// schema through the connection. The returned handle is lazy: the table is
// only read when an action runs.
func Table(db *gorm.DB, tableName string) (*Relation, error) {
	info, err := database.GetTableColumns(db, tableName)
	if err != nil {
		return nil, fmt.Errorf("sqlrel: resolving table %q: %w", tableName, err)
	}
	if len(info) == 0 {
		return nil, fmt.Errorf("sqlrel: table %q does not exist or has no columns", tableName)
	}

	d := dialectOf(db)
	cols := make([]relation.Column, len(info))
	names := make([]string, len(info))
	for i, ci := range info {
		cols[i] = relation.Column{Name: ci.Field, Type: relation.ParseType(ci.Type)}
		names[i] = quote(d, ci.Field)
	}

	return &Relation{
		db:    db,
		name:  tableName,
		cols:  cols,
		query: fmt.Sprintf("SELECT %s FROM %s", join(names), quote(d, tableName)),
	}, nil
}

func (r *Relation) derive(cols []relation.Column, query string, args []any) *Relation {
	return &Relation{db: r.db, name: r.name, cols: cols, query: query, args: args, err: r.err}
}

func (r *Relation) failed(err error) *Relation {
	if r.err != nil {
		// Keep the earliest error in the chain.
		err = r.err
	}
	return &Relation{db: r.db, name: r.name, err: err}
}

func (r *Relation) dialect() string { return dialectOf(r.db) }

// Name implements relation.Relation.
func (r *Relation) Name() string { return r.name }

// Columns implements relation.Relation.
func (r *Relation) Columns() []relation.Column {
	out := make([]relation.Column, len(r.cols))
	copy(out, r.cols)
	return out
}

// Count implements relation.Relation.
func (r *Relation) Count() (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	q := fmt.Sprintf("SELECT COUNT(*) FROM (%s) AS t", r.query)
	var n int64
	if err := r.db.Raw(q, r.args...).Row().Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlrel: count over %s: %w", r.name, err)
	}
	return n, nil
}

// Collect implements relation.Relation.
func (r *Relation) Collect(limit int) ([]relation.Row, error) {
	if r.err != nil {
		return nil, r.err
	}
	q := r.query
	if limit >= 0 {
		q = fmt.Sprintf("SELECT * FROM (%s) AS t LIMIT %d", r.query, limit)
	}
	rows, err := r.db.Raw(q, r.args...).Rows()
	if err != nil {
		return nil, fmt.Errorf("sqlrel: collect over %s: %w", r.name, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sqlrel: collect over %s: %w", r.name, err)
	}

	var out []relation.Row
	for rows.Next() {
		ptrs := make([]any, len(names))
		for i := range ptrs {
			ptrs[i] = new(any)
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sqlrel: scanning row from %s: %w", r.name, err)
		}
		row := make(relation.Row, len(names))
		for i, name := range names {
			row[name] = normalize(*(ptrs[i].(*any)))
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlrel: reading rows from %s: %w", r.name, err)
	}
	return out, nil
}

// MaxFloat implements relation.Relation. SQL MAX skips nulls; an empty or
// all-null column yields 0.
func (r *Relation) MaxFloat(col string) (float64, error) {
	if r.err != nil {
		return 0, r.err
	}
	if !relation.HasColumn(r, col) {
		return 0, fmt.Errorf("sqlrel: max over unknown column %q in %s", col, r.name)
	}
	q := fmt.Sprintf("SELECT MAX(%s) FROM (%s) AS t", quote(r.dialect(), col), r.query)
	var max sql.NullFloat64
	if err := r.db.Raw(q, r.args...).Row().Scan(&max); err != nil {
		return 0, fmt.Errorf("sqlrel: max over %s: %w", r.name, err)
	}
	if !max.Valid {
		return 0, nil
	}
	return max.Float64, nil
}

// normalize folds driver-specific scan types into the uniform scalar set:
// []byte becomes string, everything else passes through.
func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
