package sqlrel

import (
	"fmt"

	"tablediff/core/relation"
)

// Select implements relation.Relation.
func (r *Relation) Select(cols ...string) relation.Relation {
	d := r.dialect()
	schema := make([]relation.Column, 0, len(cols))
	quoted := make([]string, 0, len(cols))
	for _, name := range cols {
		t, ok := relation.ColumnType(r, name)
		if !ok {
			return r.failed(fmt.Errorf("sqlrel: select of unknown column %q in %s", name, r.name))
		}
		schema = append(schema, relation.Column{Name: name, Type: t})
		quoted = append(quoted, quote(d, name))
	}
	q := fmt.Sprintf("SELECT %s FROM (%s) AS t", join(quoted), r.query)
	return r.derive(schema, q, r.args)
}

// Distinct implements relation.Relation.
func (r *Relation) Distinct() relation.Relation {
	q := fmt.Sprintf("SELECT DISTINCT * FROM (%s) AS t", r.query)
	return r.derive(r.Columns(), q, r.args)
}

// Filter implements relation.Relation.
func (r *Relation) Filter(cond relation.Expr) relation.Relation {
	condSQL, condArgs, err := renderExpr(r.dialect(), cond)
	if err != nil {
		return r.failed(err)
	}
	q := fmt.Sprintf("SELECT * FROM (%s) AS t WHERE %s", r.query, condSQL)
	// Placeholders appear in text order: subquery first, condition second.
	args := append(append([]any(nil), r.args...), condArgs...)
	return r.derive(r.Columns(), q, args)
}

// WithColumn implements relation.Relation. An existing column of the same
// name is replaced in place, keeping its schema position.
func (r *Relation) WithColumn(name string, e relation.Expr) relation.Relation {
	d := r.dialect()
	exprSQL, exprArgs, err := renderExpr(d, e)
	if err != nil {
		return r.failed(err)
	}
	t := relation.InferType(e, r.cols)

	schema := r.Columns()
	replaced := false
	for i := range schema {
		if schema[i].Name == name {
			schema[i].Type = t
			replaced = true
		}
	}
	if !replaced {
		schema = append(schema, relation.Column{Name: name, Type: t})
	}

	proj := make([]string, 0, len(schema))
	for _, c := range schema {
		if c.Name == name {
			proj = append(proj, fmt.Sprintf("%s AS %s", exprSQL, quote(d, name)))
		} else {
			proj = append(proj, quote(d, c.Name))
		}
	}
	q := fmt.Sprintf("SELECT %s FROM (%s) AS t", join(proj), r.query)
	// The computed column renders before the subquery in the statement.
	args := append(append([]any(nil), exprArgs...), r.args...)
	return r.derive(schema, q, args)
}

// WithRowNumber implements relation.Relation. ROW_NUMBER over the
// unordered input follows the engine's scan order, which is stable for a
// static snapshot.
func (r *Relation) WithRowNumber(name string) relation.Relation {
	d := r.dialect()
	if relation.HasColumn(r, name) {
		return r.failed(fmt.Errorf("sqlrel: row number column %q already exists in %s", name, r.name))
	}
	schema := append(r.Columns(), relation.Column{Name: name, Type: relation.TypeOf(relation.KindBigint)})
	q := fmt.Sprintf("SELECT t.*, ROW_NUMBER() OVER () - 1 AS %s FROM (%s) AS t", quote(d, name), r.query)
	return r.derive(schema, q, r.args)
}

// WithGroupOrdinal implements relation.Relation.
func (r *Relation) WithGroupOrdinal(name string, partitionBy []string, orderBy string) relation.Relation {
	d := r.dialect()
	for _, c := range append(append([]string(nil), partitionBy...), orderBy) {
		if !relation.HasColumn(r, c) {
			return r.failed(fmt.Errorf("sqlrel: window over unknown column %q in %s", c, r.name))
		}
	}
	if relation.HasColumn(r, name) {
		return r.failed(fmt.Errorf("sqlrel: ordinal column %q already exists in %s", name, r.name))
	}
	parts := make([]string, len(partitionBy))
	for i, c := range partitionBy {
		parts[i] = quote(d, c)
	}
	schema := append(r.Columns(), relation.Column{Name: name, Type: relation.TypeOf(relation.KindBigint)})
	q := fmt.Sprintf(
		"SELECT t.*, ROW_NUMBER() OVER (PARTITION BY %s ORDER BY %s) - 1 AS %s FROM (%s) AS t",
		join(parts), quote(d, orderBy), quote(d, name), r.query,
	)
	return r.derive(schema, q, r.args)
}

// Rename implements relation.Relation.
func (r *Relation) Rename(old, new string) relation.Relation {
	d := r.dialect()
	if !relation.HasColumn(r, old) {
		return r.failed(fmt.Errorf("sqlrel: rename of unknown column %q in %s", old, r.name))
	}
	if old != new && relation.HasColumn(r, new) {
		return r.failed(fmt.Errorf("sqlrel: rename target %q already exists in %s", new, r.name))
	}
	schema := r.Columns()
	proj := make([]string, len(schema))
	for i, c := range schema {
		if c.Name == old {
			schema[i].Name = new
			proj[i] = fmt.Sprintf("%s AS %s", quote(d, old), quote(d, new))
		} else {
			proj[i] = quote(d, c.Name)
		}
	}
	q := fmt.Sprintf("SELECT %s FROM (%s) AS t", join(proj), r.query)
	return r.derive(schema, q, r.args)
}

// Drop implements relation.Relation. Unknown columns are ignored.
func (r *Relation) Drop(cols ...string) relation.Relation {
	dropped := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		dropped[c] = struct{}{}
	}
	var keep []string
	for _, c := range r.cols {
		if _, gone := dropped[c.Name]; !gone {
			keep = append(keep, c.Name)
		}
	}
	return r.Select(keep...)
}

// Limit implements relation.Relation.
func (r *Relation) Limit(n int) relation.Relation {
	q := fmt.Sprintf("SELECT * FROM (%s) AS t LIMIT %d", r.query, n)
	return r.derive(r.Columns(), q, r.args)
}
