package relation

import (
	"strconv"
	"strings"
)

// Kind is the coarse classification of a column type.
type Kind int

const (
	KindOther Kind = iota
	KindTinyint
	KindSmallint
	KindInt
	KindBigint
	KindFloat
	KindDouble
	KindDecimal
	KindString
	KindDate
	KindTimestamp
	KindBool
)

// Type is a tagged representation of a column type. Parametrized types
// (decimal) carry precision and scale; types outside the known set keep
// their raw name under KindOther.
type Type struct {
	Kind      Kind
	Name      string
	Precision int
	Scale     int
}

// Numeric reports whether the type belongs to the numeric family
// (integer, floating and decimal variants).
func (t Type) Numeric() bool {
	switch t.Kind {
	case KindTinyint, KindSmallint, KindInt, KindBigint, KindFloat, KindDouble, KindDecimal:
		return true
	default:
		return false
	}
}

// String returns the canonical lowercase name of the type.
func (t Type) String() string {
	if t.Kind == KindDecimal && t.Precision > 0 {
		return "decimal(" + strconv.Itoa(t.Precision) + "," + strconv.Itoa(t.Scale) + ")"
	}
	return t.Name
}

// kindNames maps normalized SQL type names to kinds. Dialect aliases are
// folded into the same kind (e.g. MySQL "integer" and SQLite "int").
var kindNames = map[string]Kind{
	"tinyint":   KindTinyint,
	"smallint":  KindSmallint,
	"mediumint": KindInt,
	"int":       KindInt,
	"integer":   KindInt,
	"bigint":    KindBigint,
	"float":     KindFloat,
	"real":      KindDouble,
	"double":    KindDouble,
	"numeric":   KindDecimal,
	"char":      KindString,
	"varchar":   KindString,
	"text":      KindString,
	"tinytext":  KindString,
	"longtext":  KindString,
	"string":    KindString,
	"date":      KindDate,
	"datetime":  KindTimestamp,
	"timestamp": KindTimestamp,
	"bool":      KindBool,
	"boolean":   KindBool,
}

// ParseType maps a SQL type string (as reported by SHOW COLUMNS or PRAGMA
// table_info) to a Type. Parametrized decimal types such as "decimal(10,2)"
// are recognized by prefix and keep precision and scale. Unknown types are
// preserved verbatim under KindOther.
func ParseType(sqlType string) Type {
	raw := strings.ToLower(strings.TrimSpace(sqlType))
	if raw == "" {
		return Type{Kind: KindOther, Name: raw}
	}

	if len(raw) >= 7 && strings.HasPrefix(raw, "decimal") {
		t := Type{Kind: KindDecimal, Name: "decimal"}
		if open := strings.IndexByte(raw, '('); open >= 0 {
			if close := strings.IndexByte(raw, ')'); close > open {
				parts := strings.Split(raw[open+1:close], ",")
				if len(parts) >= 1 {
					t.Precision, _ = strconv.Atoi(strings.TrimSpace(parts[0]))
				}
				if len(parts) >= 2 {
					t.Scale, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
				}
			}
		}
		return t
	}

	base := raw
	if open := strings.IndexByte(raw, '('); open >= 0 {
		base = raw[:open]
	}
	// Strip modifiers like "unsigned"
	if idx := strings.IndexByte(base, ' '); idx >= 0 {
		base = base[:idx]
	}

	if kind, ok := kindNames[base]; ok {
		name := base
		switch kind {
		case KindInt:
			name = "int"
		case KindDouble:
			name = "double"
		case KindString:
			name = "string"
		case KindTimestamp:
			name = "timestamp"
		case KindBool:
			name = "bool"
		case KindDecimal:
			name = "decimal"
		}
		return Type{Kind: kind, Name: name}
	}
	return Type{Kind: KindOther, Name: raw}
}

// TypeOf returns the canonical Type for one of the well-known kinds.
func TypeOf(kind Kind) Type {
	switch kind {
	case KindTinyint:
		return Type{Kind: kind, Name: "tinyint"}
	case KindSmallint:
		return Type{Kind: kind, Name: "smallint"}
	case KindInt:
		return Type{Kind: kind, Name: "int"}
	case KindBigint:
		return Type{Kind: kind, Name: "bigint"}
	case KindFloat:
		return Type{Kind: kind, Name: "float"}
	case KindDouble:
		return Type{Kind: kind, Name: "double"}
	case KindDecimal:
		return Type{Kind: kind, Name: "decimal"}
	case KindString:
		return Type{Kind: kind, Name: "string"}
	case KindDate:
		return Type{Kind: kind, Name: "date"}
	case KindTimestamp:
		return Type{Kind: kind, Name: "timestamp"}
	case KindBool:
		return Type{Kind: kind, Name: "bool"}
	default:
		return Type{Kind: KindOther}
	}
}
