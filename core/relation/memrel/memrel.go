package memrel

import (
	"fmt"
	"sort"
	"sync"

	"tablediff/core/relation"
	"tablediff/core/utils"
)

// Relation is the in-memory implementation of relation.Relation. Rows are
// held in memory but every derivation is composed lazily: the node tree is
// walked once, on the first action, and the result is cached.
type Relation struct {
	name string
	cols []relation.Column
	eval func() ([]relation.Row, error)

	once sync.Once
	rows []relation.Row
	err  error
}

// New creates a base relation from a schema and a row slice. The rows are
// not copied; callers must treat them as read-only afterwards.
func New(name string, cols []relation.Column, rows []relation.Row) *Relation {
	own := make([]relation.Column, len(cols))
	copy(own, cols)
	return &Relation{
		name: name,
		cols: own,
		eval: func() ([]relation.Row, error) { return rows, nil },
	}
}

func derive(name string, cols []relation.Column, eval func() ([]relation.Row, error)) *Relation {
	return &Relation{name: name, cols: cols, eval: eval}
}

func failed(name string, err error) *Relation {
	return &Relation{name: name, eval: func() ([]relation.Row, error) { return nil, err }}
}

func (r *Relation) materialize() ([]relation.Row, error) {
	r.once.Do(func() { r.rows, r.err = r.eval() })
	return r.rows, r.err
}

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
	rows, err := r.materialize()
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

// Collect implements relation.Relation.
func (r *Relation) Collect(limit int) ([]relation.Row, error) {
	rows, err := r.materialize()
	if err != nil {
		return nil, err
	}
	if limit >= 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	out := make([]relation.Row, len(rows))
	for i, row := range rows {
		cp := make(relation.Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out[i] = cp
	}
	return out, nil
}

// MaxFloat implements relation.Relation. Null values are skipped; the
// maximum over an empty or all-null column is 0.
func (r *Relation) MaxFloat(col string) (float64, error) {
	if !relation.HasColumn(r, col) {
		return 0, fmt.Errorf("memrel: max over unknown column %q in %s", col, r.name)
	}
	rows, err := r.materialize()
	if err != nil {
		return 0, err
	}
	var max float64
	seen := false
	for _, row := range rows {
		v, ok := utils.ToFloat(row[col])
		if !ok {
			continue
		}
		if !seen || v > max {
			max = v
			seen = true
		}
	}
	return max, nil
}

// Select implements relation.Relation.
func (r *Relation) Select(cols ...string) relation.Relation {
	schema := make([]relation.Column, 0, len(cols))
	for _, name := range cols {
		t, ok := relation.ColumnType(r, name)
		if !ok {
			return failed(r.name, fmt.Errorf("memrel: select of unknown column %q in %s", name, r.name))
		}
		schema = append(schema, relation.Column{Name: name, Type: t})
	}
	names := append([]string(nil), cols...)
	return derive(r.name, schema, func() ([]relation.Row, error) {
		rows, err := r.materialize()
		if err != nil {
			return nil, err
		}
		out := make([]relation.Row, len(rows))
		for i, row := range rows {
			picked := make(relation.Row, len(names))
			for _, name := range names {
				picked[name] = row[name]
			}
			out[i] = picked
		}
		return out, nil
	})
}

// Distinct implements relation.Relation. Nulls compare equal, as in SQL
// SELECT DISTINCT.
func (r *Relation) Distinct() relation.Relation {
	names := relation.ColumnNames(r)
	return derive(r.name, r.Columns(), func() ([]relation.Row, error) {
		rows, err := r.materialize()
		if err != nil {
			return nil, err
		}
		seen := make(map[string]struct{}, len(rows))
		var out []relation.Row
		for _, row := range rows {
			key := groupKey(row, names)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, row)
		}
		return out, nil
	})
}

// Filter implements relation.Relation. Rows where cond evaluates to false
// or null are dropped.
func (r *Relation) Filter(cond relation.Expr) relation.Relation {
	return derive(r.name, r.Columns(), func() ([]relation.Row, error) {
		rows, err := r.materialize()
		if err != nil {
			return nil, err
		}
		var out []relation.Row
		for _, row := range rows {
			v, err := evalExpr(cond, row)
			if err != nil {
				return nil, err
			}
			if b, ok := v.(bool); ok && b {
				out = append(out, row)
			}
		}
		return out, nil
	})
}

// WithColumn implements relation.Relation. An existing column of the same
// name is replaced in place, keeping its schema position.
func (r *Relation) WithColumn(name string, e relation.Expr) relation.Relation {
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
	return derive(r.name, schema, func() ([]relation.Row, error) {
		rows, err := r.materialize()
		if err != nil {
			return nil, err
		}
		out := make([]relation.Row, len(rows))
		for i, row := range rows {
			v, err := evalExpr(e, row)
			if err != nil {
				return nil, err
			}
			cp := copyRow(row)
			cp[name] = v
			out[i] = cp
		}
		return out, nil
	})
}

// WithRowNumber implements relation.Relation.
func (r *Relation) WithRowNumber(name string) relation.Relation {
	schema := append(r.Columns(), relation.Column{Name: name, Type: relation.TypeOf(relation.KindBigint)})
	return derive(r.name, schema, func() ([]relation.Row, error) {
		rows, err := r.materialize()
		if err != nil {
			return nil, err
		}
		out := make([]relation.Row, len(rows))
		for i, row := range rows {
			cp := copyRow(row)
			cp[name] = int64(i)
			out[i] = cp
		}
		return out, nil
	})
}

// WithGroupOrdinal implements relation.Relation. Rows are ranked zero-based
// within each partition tuple, in orderBy order; the output keeps the
// relation's own row order.
func (r *Relation) WithGroupOrdinal(name string, partitionBy []string, orderBy string) relation.Relation {
	for _, c := range append(append([]string(nil), partitionBy...), orderBy) {
		if !relation.HasColumn(r, c) {
			return failed(r.name, fmt.Errorf("memrel: window over unknown column %q in %s", c, r.name))
		}
	}
	schema := append(r.Columns(), relation.Column{Name: name, Type: relation.TypeOf(relation.KindBigint)})
	parts := append([]string(nil), partitionBy...)
	return derive(r.name, schema, func() ([]relation.Row, error) {
		rows, err := r.materialize()
		if err != nil {
			return nil, err
		}
		idx := make([]int, len(rows))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return lessValue(rows[idx[a]][orderBy], rows[idx[b]][orderBy])
		})
		ranks := make([]int64, len(rows))
		counters := make(map[string]int64)
		for _, i := range idx {
			key := groupKey(rows[i], parts)
			ranks[i] = counters[key]
			counters[key]++
		}
		out := make([]relation.Row, len(rows))
		for i, row := range rows {
			cp := copyRow(row)
			cp[name] = ranks[i]
			out[i] = cp
		}
		return out, nil
	})
}

// Rename implements relation.Relation.
func (r *Relation) Rename(old, new string) relation.Relation {
	if !relation.HasColumn(r, old) {
		return failed(r.name, fmt.Errorf("memrel: rename of unknown column %q in %s", old, r.name))
	}
	if old != new && relation.HasColumn(r, new) {
		return failed(r.name, fmt.Errorf("memrel: rename target %q already exists in %s", new, r.name))
	}
	schema := r.Columns()
	for i := range schema {
		if schema[i].Name == old {
			schema[i].Name = new
		}
	}
	return derive(r.name, schema, func() ([]relation.Row, error) {
		rows, err := r.materialize()
		if err != nil {
			return nil, err
		}
		out := make([]relation.Row, len(rows))
		for i, row := range rows {
			cp := copyRow(row)
			cp[new] = cp[old]
			if old != new {
				delete(cp, old)
			}
			out[i] = cp
		}
		return out, nil
	})
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
	return derive(r.name, r.Columns(), func() ([]relation.Row, error) {
		rows, err := r.materialize()
		if err != nil {
			return nil, err
		}
		if n >= 0 && n < len(rows) {
			rows = rows[:n]
		}
		return rows, nil
	})
}

func copyRow(row relation.Row) relation.Row {
	cp := make(relation.Row, len(row)+1)
	for k, v := range row {
		cp[k] = v
	}
	return cp
}
