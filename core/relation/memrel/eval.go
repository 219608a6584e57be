package memrel

import (
	"fmt"
	"math"
	"strings"
	"time"

	"tablediff/core/relation"
	"tablediff/core/utils"
)

// evalExpr evaluates an expression tree against a single row under SQL
// three-valued logic. Booleans are represented as any(bool); a null result
// is nil.
func evalExpr(e relation.Expr, row relation.Row) (any, error) {
	switch ex := e.(type) {
	case relation.ColExpr:
		v, ok := row[ex.Name]
		if !ok {
			return nil, fmt.Errorf("memrel: unknown column %q in expression", ex.Name)
		}
		return v, nil

	case relation.LitExpr:
		return ex.Value, nil

	case relation.UnaryExpr:
		v, err := evalExpr(ex.Operand, row)
		if err != nil {
			return nil, err
		}
		return evalUnary(ex.Op, v)

	case relation.BinaryExpr:
		l, err := evalExpr(ex.Left, row)
		if err != nil {
			return nil, err
		}
		rv, err := evalExpr(ex.Right, row)
		if err != nil {
			return nil, err
		}
		return evalBinary(ex.Op, l, rv)

	case relation.CoalesceExpr:
		for _, arg := range ex.Args {
			v, err := evalExpr(arg, row)
			if err != nil {
				return nil, err
			}
			if v != nil {
				return v, nil
			}
		}
		return nil, nil

	default:
		return nil, fmt.Errorf("memrel: unsupported expression %T", e)
	}
}

func evalUnary(op relation.UnaryOp, v any) (any, error) {
	switch op {
	case relation.OpIsNull:
		return v == nil, nil
	case relation.OpNot:
		if v == nil {
			return nil, nil
		}
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("memrel: NOT over non-boolean %T", v)
		}
		return !b, nil
	case relation.OpAbs:
		if v == nil {
			return nil, nil
		}
		f, ok := utils.ToFloat(v)
		if !ok {
			return nil, fmt.Errorf("memrel: ABS over non-numeric %T", v)
		}
		return math.Abs(f), nil
	case relation.OpTrim:
		if v == nil {
			return nil, nil
		}
		return strings.TrimSpace(utils.ToString(v)), nil
	case relation.OpCastString:
		if v == nil {
			return nil, nil
		}
		return utils.ToString(v), nil
	default:
		return nil, fmt.Errorf("memrel: unsupported unary op %d", op)
	}
}

func evalBinary(op relation.BinaryOp, l, r any) (any, error) {
	switch op {
	case relation.OpAnd, relation.OpOr:
		return evalLogic(op, l, r)

	case relation.OpNullSafeEq:
		if l == nil && r == nil {
			return true, nil
		}
		if l == nil || r == nil {
			return false, nil
		}
		return valuesEqual(l, r), nil

	case relation.OpEq:
		if l == nil || r == nil {
			return nil, nil
		}
		return valuesEqual(l, r), nil

	case relation.OpLe:
		if l == nil || r == nil {
			return nil, nil
		}
		if lf, ok := utils.ToFloat(l); ok {
			if rf, ok := utils.ToFloat(r); ok {
				return lf <= rf, nil
			}
		}
		return utils.ToString(l) <= utils.ToString(r), nil

	case relation.OpAdd, relation.OpSub, relation.OpMul:
		if l == nil || r == nil {
			return nil, nil
		}
		lf, lok := utils.ToFloat(l)
		rf, rok := utils.ToFloat(r)
		if !lok || !rok {
			return nil, fmt.Errorf("memrel: arithmetic over non-numeric %T and %T", l, r)
		}
		switch op {
		case relation.OpAdd:
			return lf + rf, nil
		case relation.OpSub:
			return lf - rf, nil
		default:
			return lf * rf, nil
		}

	default:
		return nil, fmt.Errorf("memrel: unsupported binary op %d", op)
	}
}

// evalLogic implements three-valued AND/OR: false (resp. true) dominates,
// null is "unknown".
func evalLogic(op relation.BinaryOp, l, r any) (any, error) {
	toBool := func(v any) (bool, bool, error) {
		if v == nil {
			return false, false, nil
		}
		b, ok := v.(bool)
		if !ok {
			return false, false, fmt.Errorf("memrel: logic over non-boolean %T", v)
		}
		return b, true, nil
	}
	lb, lok, err := toBool(l)
	if err != nil {
		return nil, err
	}
	rb, rok, err := toBool(r)
	if err != nil {
		return nil, err
	}
	if op == relation.OpAnd {
		if (lok && !lb) || (rok && !rb) {
			return false, nil
		}
		if lok && rok {
			return true, nil
		}
		return nil, nil
	}
	if (lok && lb) || (rok && rb) {
		return true, nil
	}
	if lok && rok {
		return false, nil
	}
	return nil, nil
}

// valuesEqual compares two non-null scalars. Numerics compare as float64
// regardless of their concrete Go type; times compare with time.Equal;
// everything else compares by string representation.
func valuesEqual(l, r any) bool {
	if lf, ok := utils.ToFloat(l); ok {
		if rf, ok := utils.ToFloat(r); ok {
			return lf == rf
		}
	}
	if lt, ok := l.(time.Time); ok {
		if rt, ok := r.(time.Time); ok {
			return lt.Equal(rt)
		}
	}
	if lb, ok := l.(bool); ok {
		if rb, ok := r.(bool); ok {
			return lb == rb
		}
	}
	return utils.ToString(l) == utils.ToString(r)
}

// lessValue is the ordering used by window ordinals: numeric when both
// sides are numeric, lexicographic otherwise, nulls first.
func lessValue(a, b any) bool {
	if a == nil {
		return b != nil
	}
	if b == nil {
		return false
	}
	if af, ok := utils.ToFloat(a); ok {
		if bf, ok := utils.ToFloat(b); ok {
			return af < bf
		}
	}
	return utils.ToString(a) < utils.ToString(b)
}

// matchKey builds the equality-join key for a row. ok is false when any key
// value is null, because null join values never match.
func matchKey(row relation.Row, cols []string) (string, bool) {
	var sb strings.Builder
	for _, c := range cols {
		v := row[c]
		if v == nil {
			return "", false
		}
		sb.WriteString(keyPart(v))
		sb.WriteByte(0x1f)
	}
	return sb.String(), true
}

// groupKey builds a grouping key in which nulls form their own stable
// group, as in SQL GROUP BY and PARTITION BY.
func groupKey(row relation.Row, cols []string) string {
	var sb strings.Builder
	for _, c := range cols {
		v := row[c]
		if v == nil {
			sb.WriteString("\x00null")
		} else {
			sb.WriteString(keyPart(v))
		}
		sb.WriteByte(0x1f)
	}
	return sb.String()
}

// keyPart canonicalizes a non-null value so that, for example, int64(1) and
// float64(1) land in the same group.
func keyPart(v any) string {
	if f, ok := utils.ToFloat(v); ok {
		if _, isStr := v.(string); !isStr {
			return "n:" + utils.ToString(f)
		}
	}
	if t, ok := v.(time.Time); ok {
		return "t:" + t.UTC().Format(time.RFC3339Nano)
	}
	if b, ok := v.(bool); ok {
		return "b:" + utils.ToString(b)
	}
	return "s:" + utils.ToString(v)
}
