package relation

// Expr is a pure expression tree evaluated row-wise over a relation.
// Engines interpret it: the in-memory engine evaluates it directly, the SQL
// engine renders it into the SELECT it pushes down. Expressions follow SQL
// three-valued logic: an operation over a null operand yields null unless
// the operator is explicitly null-aware (IsNull, NullSafeEq, Coalesce).
type Expr interface {
	isExpr()
}

// ColExpr references a column of the relation by name.
type ColExpr struct {
	Name string
}

// LitExpr is a literal constant. A nil value is SQL NULL.
type LitExpr struct {
	Value any
}

// UnaryOp enumerates single-operand operators.
type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpIsNull
	OpAbs
	OpTrim
	OpCastString
)

// UnaryExpr applies a unary operator.
type UnaryExpr struct {
	Op      UnaryOp
	Operand Expr
}

// BinaryOp enumerates two-operand operators.
type BinaryOp int

const (
	OpAnd BinaryOp = iota
	OpOr
	OpEq
	OpNullSafeEq
	OpLe
	OpAdd
	OpSub
	OpMul
)

// BinaryExpr applies a binary operator.
type BinaryExpr struct {
	Op          BinaryOp
	Left, Right Expr
}

// CoalesceExpr yields the first non-null argument, or null.
type CoalesceExpr struct {
	Args []Expr
}

func (ColExpr) isExpr()      {}
func (LitExpr) isExpr()      {}
func (UnaryExpr) isExpr()    {}
func (BinaryExpr) isExpr()   {}
func (CoalesceExpr) isExpr() {}

// Col references a column by name.
func Col(name string) Expr { return ColExpr{Name: name} }

// Lit wraps a constant value. Lit(nil) is SQL NULL.
func Lit(v any) Expr { return LitExpr{Value: v} }

// Not negates a boolean expression (null stays null).
func Not(e Expr) Expr { return UnaryExpr{Op: OpNot, Operand: e} }

// IsNull tests for null; it always yields a non-null boolean.
func IsNull(e Expr) Expr { return UnaryExpr{Op: OpIsNull, Operand: e} }

// Abs is the numeric absolute value.
func Abs(e Expr) Expr { return UnaryExpr{Op: OpAbs, Operand: e} }

// Trim strips leading and trailing whitespace, including newlines.
func Trim(e Expr) Expr { return UnaryExpr{Op: OpTrim, Operand: e} }

// CastString casts any value to its string representation.
func CastString(e Expr) Expr { return UnaryExpr{Op: OpCastString, Operand: e} }

// And is three-valued logical conjunction.
func And(a, b Expr) Expr { return BinaryExpr{Op: OpAnd, Left: a, Right: b} }

// Or is three-valued logical disjunction.
func Or(a, b Expr) Expr { return BinaryExpr{Op: OpOr, Left: a, Right: b} }

// Eq is plain SQL equality: null if either operand is null.
func Eq(a, b Expr) Expr { return BinaryExpr{Op: OpEq, Left: a, Right: b} }

// NullSafeEq is null-safe equality: two nulls compare equal, a null and a
// non-null compare unequal, and the result is never null.
func NullSafeEq(a, b Expr) Expr { return BinaryExpr{Op: OpNullSafeEq, Left: a, Right: b} }

// Le is less-than-or-equal; null if either operand is null.
func Le(a, b Expr) Expr { return BinaryExpr{Op: OpLe, Left: a, Right: b} }

// Add is numeric addition.
func Add(a, b Expr) Expr { return BinaryExpr{Op: OpAdd, Left: a, Right: b} }

// Sub is numeric subtraction.
func Sub(a, b Expr) Expr { return BinaryExpr{Op: OpSub, Left: a, Right: b} }

// Mul is numeric multiplication.
func Mul(a, b Expr) Expr { return BinaryExpr{Op: OpMul, Left: a, Right: b} }

// Coalesce yields the first non-null argument.
func Coalesce(args ...Expr) Expr { return CoalesceExpr{Args: args} }
