package memrel

import (
	"fmt"

	"tablediff/core/relation"
)

// OuterJoin implements relation.Relation. The join is a hash-based full
// outer equality join: null join values never match, mirroring SQL
// equality-join semantics.
func (r *Relation) OuterJoin(right relation.Relation, on []string, leftSuffix, rightSuffix string) relation.Relation {
	name := r.name + "*" + right.Name()

	for _, c := range on {
		if !relation.HasColumn(r, c) {
			return failed(name, fmt.Errorf("memrel: join column %q missing from %s", c, r.name))
		}
		if !relation.HasColumn(right, c) {
			return failed(name, fmt.Errorf("memrel: join column %q missing from %s", c, right.Name()))
		}
	}

	keys := make(map[string]struct{}, len(on))
	for _, c := range on {
		keys[c] = struct{}{}
	}

	// Output schema: key columns once, then non-key columns from each side,
	// suffixed only where the name occurs on both sides.
	leftNames := make(map[string]struct{})
	for _, c := range r.cols {
		leftNames[c.Name] = struct{}{}
	}
	rightNames := make(map[string]struct{})
	for _, c := range right.Columns() {
		rightNames[c.Name] = struct{}{}
	}
	collides := func(n string) bool {
		_, inL := leftNames[n]
		_, inR := rightNames[n]
		return inL && inR
	}

	var schema []relation.Column
	// source side, source column, output column
	type mapping struct {
		left bool
		src  string
		dst  string
	}
	var mappings []mapping
	for _, c := range on {
		t, _ := relation.ColumnType(r, c)
		schema = append(schema, relation.Column{Name: c, Type: t})
	}
	for _, c := range r.cols {
		if _, key := keys[c.Name]; key {
			continue
		}
		dst := c.Name
		if collides(c.Name) {
			dst = c.Name + leftSuffix
		}
		schema = append(schema, relation.Column{Name: dst, Type: c.Type})
		mappings = append(mappings, mapping{left: true, src: c.Name, dst: dst})
	}
	for _, c := range right.Columns() {
		if _, key := keys[c.Name]; key {
			continue
		}
		dst := c.Name
		if collides(c.Name) {
			dst = c.Name + rightSuffix
		}
		schema = append(schema, relation.Column{Name: dst, Type: c.Type})
		mappings = append(mappings, mapping{left: false, src: c.Name, dst: dst})
	}
	seen := make(map[string]struct{}, len(schema))
	for _, c := range schema {
		if _, dup := seen[c.Name]; dup {
			return failed(name, fmt.Errorf("memrel: ambiguous column %q after join of %s and %s", c.Name, r.name, right.Name()))
		}
		seen[c.Name] = struct{}{}
	}

	onCols := append([]string(nil), on...)
	return derive(name, schema, func() ([]relation.Row, error) {
		leftRows, err := r.materialize()
		if err != nil {
			return nil, err
		}
		rightRows, err := right.Collect(-1)
		if err != nil {
			return nil, err
		}

		index := make(map[string][]int, len(rightRows))
		for i, row := range rightRows {
			if key, ok := matchKey(row, onCols); ok {
				index[key] = append(index[key], i)
			}
		}

		emit := func(lrow, rrow relation.Row) relation.Row {
			out := make(relation.Row, len(schema))
			for _, c := range onCols {
				if lrow != nil {
					out[c] = lrow[c]
				} else {
					out[c] = rrow[c]
				}
			}
			for _, m := range mappings {
				switch {
				case m.left && lrow != nil:
					out[m.dst] = lrow[m.src]
				case !m.left && rrow != nil:
					out[m.dst] = rrow[m.src]
				default:
					out[m.dst] = nil
				}
			}
			return out
		}

		matched := make([]bool, len(rightRows))
		var out []relation.Row
		for _, lrow := range leftRows {
			key, ok := matchKey(lrow, onCols)
			hits := index[key]
			if !ok || len(hits) == 0 {
				out = append(out, emit(lrow, nil))
				continue
			}
			for _, i := range hits {
				matched[i] = true
				out = append(out, emit(lrow, rightRows[i]))
			}
		}
		for i, rrow := range rightRows {
			if !matched[i] {
				out = append(out, emit(nil, rrow))
			}
		}
		return out, nil
	})
}
