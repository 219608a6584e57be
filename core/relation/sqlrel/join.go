package sqlrel

import (
	"fmt"

	"tablediff/core/relation"
)

// OuterJoin implements relation.Relation. Full outer joins are emulated as
// a LEFT JOIN unioned with the right-side anti join, which renders the same
// on every supported dialect (MySQL has no FULL OUTER JOIN). A right row is
// unmatched exactly when the joined left key is null, since null keys never
// satisfy the equality condition.
func (r *Relation) OuterJoin(right relation.Relation, on []string, leftSuffix, rightSuffix string) relation.Relation {
	other, ok := right.(*Relation)
	if !ok {
		return r.failed(fmt.Errorf("sqlrel: cannot join %s with a non-SQL relation %s", r.name, right.Name()))
	}
	if other.err != nil {
		return r.failed(other.err)
	}
	d := r.dialect()

	for _, c := range on {
		if !relation.HasColumn(r, c) {
			return r.failed(fmt.Errorf("sqlrel: join column %q missing from %s", c, r.name))
		}
		if !relation.HasColumn(other, c) {
			return r.failed(fmt.Errorf("sqlrel: join column %q missing from %s", c, other.name))
		}
	}

	keys := make(map[string]struct{}, len(on))
	for _, c := range on {
		keys[c] = struct{}{}
	}
	leftNames := make(map[string]struct{})
	for _, c := range r.cols {
		leftNames[c.Name] = struct{}{}
	}
	rightNames := make(map[string]struct{})
	for _, c := range other.cols {
		rightNames[c.Name] = struct{}{}
	}
	collides := func(n string) bool {
		_, inL := leftNames[n]
		_, inR := rightNames[n]
		return inL && inR
	}

	var schema []relation.Column
	var projLeft, projRight []string // projections for the two union branches

	for _, c := range on {
		t, _ := relation.ColumnType(r, c)
		schema = append(schema, relation.Column{Name: c, Type: t})
		projLeft = append(projLeft, fmt.Sprintf("l.%s AS %s", quote(d, c), quote(d, c)))
		projRight = append(projRight, fmt.Sprintf("r.%s AS %s", quote(d, c), quote(d, c)))
	}
	addSide := func(alias string, cols []relation.Column, suffix string) error {
		for _, c := range cols {
			if _, key := keys[c.Name]; key {
				continue
			}
			dst := c.Name
			if collides(c.Name) {
				dst = c.Name + suffix
			}
			for _, existing := range schema {
				if existing.Name == dst {
					return fmt.Errorf("sqlrel: ambiguous column %q after join of %s and %s", dst, r.name, other.name)
				}
			}
			schema = append(schema, relation.Column{Name: dst, Type: c.Type})
			sel := fmt.Sprintf("%s.%s AS %s", alias, quote(d, c.Name), quote(d, dst))
			projLeft = append(projLeft, sel)
			projRight = append(projRight, sel)
		}
		return nil
	}
	if err := addSide("l", r.cols, leftSuffix); err != nil {
		return r.failed(err)
	}
	if err := addSide("r", other.cols, rightSuffix); err != nil {
		return r.failed(err)
	}

	conds := make([]string, len(on))
	for i, c := range on {
		conds[i] = fmt.Sprintf("l.%s = r.%s", quote(d, c), quote(d, c))
	}
	cond := joinWith(conds, " AND ")

	matchedPart := fmt.Sprintf(
		"SELECT %s FROM (%s) AS l LEFT JOIN (%s) AS r ON %s",
		join(projLeft), r.query, other.query, cond,
	)
	antiPart := fmt.Sprintf(
		"SELECT %s FROM (%s) AS r LEFT JOIN (%s) AS l ON %s WHERE l.%s IS NULL",
		join(projRight), other.query, r.query, cond, quote(d, on[0]),
	)
	q := matchedPart + " UNION ALL " + antiPart

	args := make([]any, 0, 2*(len(r.args)+len(other.args)))
	args = append(args, r.args...)
	args = append(args, other.args...)
	args = append(args, other.args...)
	args = append(args, r.args...)

	joined := r.derive(schema, q, args)
	joined.name = r.name + "*" + other.name
	return joined
}
