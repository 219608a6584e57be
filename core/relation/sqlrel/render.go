package sqlrel

import (
	"fmt"
	"strings"

	"tablediff/core/relation"

	"gorm.io/gorm"
)

func dialectOf(db *gorm.DB) string {
	return db.Dialector.Name()
}

// quote wraps an identifier in the dialect's quoting characters.
func quote(dialect, ident string) string {
	if dialect == "mysql" {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func join(parts []string) string {
	return strings.Join(parts, ", ")
}

func joinWith(parts []string, sep string) string {
	return strings.Join(parts, sep)
}

// renderExpr renders an expression tree into a SQL fragment plus its
// placeholder arguments, in text order.
func renderExpr(dialect string, e relation.Expr) (string, []any, error) {
	switch ex := e.(type) {
	case relation.ColExpr:
		return quote(dialect, ex.Name), nil, nil

	case relation.LitExpr:
		if ex.Value == nil {
			return "NULL", nil, nil
		}
		return "?", []any{ex.Value}, nil

	case relation.UnaryExpr:
		operand, args, err := renderExpr(dialect, ex.Operand)
		if err != nil {
			return "", nil, err
		}
		switch ex.Op {
		case relation.OpNot:
			return fmt.Sprintf("(NOT %s)", operand), args, nil
		case relation.OpIsNull:
			return fmt.Sprintf("(%s IS NULL)", operand), args, nil
		case relation.OpAbs:
			return fmt.Sprintf("ABS(%s)", operand), args, nil
		case relation.OpTrim:
			// Plain SQL TRIM strips spaces only; trimming all surrounding
			// whitespace, tabs and newlines included, needs per-dialect
			// spelling.
			switch dialect {
			case "mysql":
				return fmt.Sprintf("REGEXP_REPLACE(%s, '^[[:space:]]+|[[:space:]]+$', '')", operand), args, nil
			case "sqlite":
				return fmt.Sprintf("TRIM(%s, ' ' || CHAR(9,10,13))", operand), args, nil
			default:
				return fmt.Sprintf("TRIM(BOTH ' ' || CHR(9) || CHR(10) || CHR(13) FROM %s)", operand), args, nil
			}
		case relation.OpCastString:
			if dialect == "mysql" {
				return fmt.Sprintf("CAST(%s AS CHAR)", operand), args, nil
			}
			return fmt.Sprintf("CAST(%s AS TEXT)", operand), args, nil
		default:
			return "", nil, fmt.Errorf("sqlrel: unsupported unary op %d", ex.Op)
		}

	case relation.BinaryExpr:
		left, largs, err := renderExpr(dialect, ex.Left)
		if err != nil {
			return "", nil, err
		}
		right, rargs, err := renderExpr(dialect, ex.Right)
		if err != nil {
			return "", nil, err
		}
		args := append(largs, rargs...)
		var op string
		switch ex.Op {
		case relation.OpAnd:
			op = "AND"
		case relation.OpOr:
			op = "OR"
		case relation.OpEq:
			op = "="
		case relation.OpNullSafeEq:
			// Null-safe equality differs per dialect.
			switch dialect {
			case "mysql":
				op = "<=>"
			case "sqlite":
				op = "IS"
			default:
				op = "IS NOT DISTINCT FROM"
			}
		case relation.OpLe:
			op = "<="
		case relation.OpAdd:
			op = "+"
		case relation.OpSub:
			op = "-"
		case relation.OpMul:
			op = "*"
		default:
			return "", nil, fmt.Errorf("sqlrel: unsupported binary op %d", ex.Op)
		}
		return fmt.Sprintf("(%s %s %s)", left, op, right), args, nil

	case relation.CoalesceExpr:
		var parts []string
		var args []any
		for _, arg := range ex.Args {
			s, a, err := renderExpr(dialect, arg)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, s)
			args = append(args, a...)
		}
		return fmt.Sprintf("COALESCE(%s)", join(parts)), args, nil

	default:
		return "", nil, fmt.Errorf("sqlrel: unsupported expression %T", e)
	}
}
