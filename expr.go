package polars

import (
	"fmt"
	"math"
	"sort"
)

// Expr represents a declarative element expression evaluated
// vectorized against the elements of one sublist at a time (see
// ListSeries.Eval). Element() selects the elements themselves.
type Expr interface {
	// String returns a string representation of the expression
	String() string

	// Clone creates a deep copy of the expression
	Clone() Expr

	// evalSeries evaluates the expression against a flat Series of
	// sublist elements, returning a new Series.
	evalSeries(s *Series) (*Series, error)
}

// BinaryOp identifies a binary operation
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpGt
	OpLt
	OpEq
	OpNeq
	OpGte
	OpLte
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpGt:
		return ">"
	case OpLt:
		return "<"
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpGte:
		return ">="
	case OpLte:
		return "<="
	}
	return "?"
}

// ============================================================================
// Element Expression
// ============================================================================

// ElementExpr refers to the elements of the sublist under evaluation.
type ElementExpr struct{}

// Element creates an expression selecting the sublist elements.
func Element() *ElementExpr { return &ElementExpr{} }

func (e *ElementExpr) String() string { return "element()" }
func (e *ElementExpr) Clone() Expr    { return &ElementExpr{} }
func (e *ElementExpr) evalSeries(s *Series) (*Series, error) {
	return s, nil
}

// Arithmetic operations
func (e *ElementExpr) Add(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpAdd, Right: other} }
func (e *ElementExpr) Sub(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpSub, Right: other} }
func (e *ElementExpr) Mul(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpMul, Right: other} }
func (e *ElementExpr) Div(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpDiv, Right: other} }

// Comparison operations
func (e *ElementExpr) Gt(other Expr) *BinaryOpExpr  { return &BinaryOpExpr{Left: e, Op: OpGt, Right: other} }
func (e *ElementExpr) Lt(other Expr) *BinaryOpExpr  { return &BinaryOpExpr{Left: e, Op: OpLt, Right: other} }
func (e *ElementExpr) Eq(other Expr) *BinaryOpExpr  { return &BinaryOpExpr{Left: e, Op: OpEq, Right: other} }
func (e *ElementExpr) Neq(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpNeq, Right: other} }
func (e *ElementExpr) Gte(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpGte, Right: other} }
func (e *ElementExpr) Lte(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpLte, Right: other} }

// Rank computes the average rank of each element within the sublist.
func (e *ElementExpr) Rank() *RankExpr { return &RankExpr{Input: e} }

// Abs computes the absolute value of each element.
func (e *ElementExpr) Abs() *AbsExpr { return &AbsExpr{Input: e} }

// First selects the first element of the sublist.
func (e *ElementExpr) First() *FirstExpr { return &FirstExpr{Input: e} }

// ============================================================================
// Literal Expression
// ============================================================================

// LitExpr represents a literal value
type LitExpr struct {
	Value interface{}
}

// Lit creates a literal value expression
func Lit(value interface{}) *LitExpr { return &LitExpr{Value: value} }

func (e *LitExpr) String() string { return fmt.Sprintf("lit(%v)", e.Value) }
func (e *LitExpr) Clone() Expr    { return &LitExpr{Value: e.Value} }
func (e *LitExpr) evalSeries(s *Series) (*Series, error) {
	return seriesFromAnyValues("literal", inferDType(e.Value), []interface{}{e.Value})
}

// exprScalarValue extracts the single value a literal expression
// produces; count_match accepts only single-valued expressions.
func exprScalarValue(expr Expr) (interface{}, error) {
	lit, ok := expr.(*LitExpr)
	if !ok {
		return nil, typeMismatchf("expected a single-valued expression, got %s", expr)
	}
	return lit.Value, nil
}

// ============================================================================
// Binary Operation Expression
// ============================================================================

// BinaryOpExpr applies a binary operation element-wise, broadcasting
// a single-row operand against the other side.
type BinaryOpExpr struct {
	Left  Expr
	Op    BinaryOp
	Right Expr
}

func (e *BinaryOpExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

func (e *BinaryOpExpr) Clone() Expr {
	return &BinaryOpExpr{Left: e.Left.Clone(), Op: e.Op, Right: e.Right.Clone()}
}

func (e *BinaryOpExpr) evalSeries(s *Series) (*Series, error) {
	left, err := e.Left.evalSeries(s)
	if err != nil {
		return nil, err
	}
	right, err := e.Right.evalSeries(s)
	if err != nil {
		return nil, err
	}

	lv, lvalid, err := seriesAsFloat64(left)
	if err != nil {
		return nil, err
	}
	rv, rvalid, err := seriesAsFloat64(right)
	if err != nil {
		return nil, err
	}

	// The element series fixes the result length; a single-row operand
	// broadcasts, including over zero elements.
	n := s.Len()
	if len(lv) != n && len(lv) != 1 {
		return nil, invalidLayoutf("binary op operand lengths %d and %d", len(lv), len(rv))
	}
	if len(rv) != n && len(rv) != 1 {
		return nil, invalidLayoutf("binary op operand lengths %d and %d", len(lv), len(rv))
	}

	pick := func(vals []float64, valid []bool, i int) (float64, bool) {
		idx := i
		if len(vals) == 1 {
			idx = 0
		}
		return vals[idx], valid == nil || valid[idx]
	}

	intResult := left.DType().IsInteger() && right.DType().IsInteger() &&
		e.Op != OpDiv && !e.Op.isComparison()

	switch {
	case e.Op.isComparison():
		out := make([]bool, n)
		valid := make([]bool, n)
		for i := 0; i < n; i++ {
			a, av := pick(lv, lvalid, i)
			b, bv := pick(rv, rvalid, i)
			if !av || !bv {
				continue
			}
			valid[i] = true
			out[i] = e.Op.compare(a, b)
		}
		return NewSeriesBoolWithNulls(s.Name(), out, valid), nil
	case intResult:
		out := make([]int64, n)
		valid := make([]bool, n)
		for i := 0; i < n; i++ {
			a, av := pick(lv, lvalid, i)
			b, bv := pick(rv, rvalid, i)
			if !av || !bv {
				continue
			}
			valid[i] = true
			out[i] = int64(e.Op.arith(a, b))
		}
		return NewSeriesInt64WithNulls(s.Name(), out, valid), nil
	default:
		out := make([]float64, n)
		valid := make([]bool, n)
		for i := 0; i < n; i++ {
			a, av := pick(lv, lvalid, i)
			b, bv := pick(rv, rvalid, i)
			if !av || !bv {
				continue
			}
			valid[i] = true
			out[i] = e.Op.arith(a, b)
		}
		return NewSeriesFloat64WithNulls(s.Name(), out, valid), nil
	}
}

func (op BinaryOp) isComparison() bool {
	switch op {
	case OpGt, OpLt, OpEq, OpNeq, OpGte, OpLte:
		return true
	}
	return false
}

func (op BinaryOp) arith(a, b float64) float64 {
	switch op {
	case OpAdd:
		return a + b
	case OpSub:
		return a - b
	case OpMul:
		return a * b
	case OpDiv:
		return a / b
	}
	return math.NaN()
}

func (op BinaryOp) compare(a, b float64) bool {
	switch op {
	case OpGt:
		return a > b
	case OpLt:
		return a < b
	case OpEq:
		return a == b
	case OpNeq:
		return a != b
	case OpGte:
		return a >= b
	case OpLte:
		return a <= b
	}
	return false
}

// seriesAsFloat64 views a numeric series as float64 values plus a
// per-row validity slice (nil = all valid).
func seriesAsFloat64(s *Series) ([]float64, []bool, error) {
	n := s.Len()
	var valid []bool
	if s.HasNulls() {
		valid = make([]bool, n)
		for i := 0; i < n; i++ {
			valid[i] = s.IsValid(i)
		}
	}
	switch s.DType() {
	case Float64:
		return s.Float64(), valid, nil
	case Int64:
		out := make([]float64, n)
		for i, v := range s.Int64() {
			out[i] = float64(v)
		}
		return out, valid, nil
	case Int32:
		out := make([]float64, n)
		for i, v := range s.Int32() {
			out[i] = float64(v)
		}
		return out, valid, nil
	case UInt32:
		out := make([]float64, n)
		for i, v := range s.UInt32() {
			out[i] = float64(v)
		}
		return out, valid, nil
	}
	return nil, nil, typeMismatchf("expected numeric operand, got %s", s.DType())
}

// ============================================================================
// Rank / Abs / First Expressions
// ============================================================================

// RankExpr assigns each element its average rank within the sublist.
type RankExpr struct {
	Input Expr
}

func (e *RankExpr) String() string { return fmt.Sprintf("%s.rank()", e.Input) }
func (e *RankExpr) Clone() Expr    { return &RankExpr{Input: e.Input.Clone()} }

func (e *RankExpr) evalSeries(s *Series) (*Series, error) {
	in, err := e.Input.evalSeries(s)
	if err != nil {
		return nil, err
	}
	vals, valid, err := seriesAsFloat64(in)
	if err != nil {
		return nil, err
	}
	n := len(vals)
	order := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if valid == nil || valid[i] {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool { return vals[order[a]] < vals[order[b]] })

	out := make([]float64, n)
	outValid := make([]bool, n)
	// Ties share the average of their ordinal ranks.
	for k := 0; k < len(order); {
		j := k
		for j+1 < len(order) && vals[order[j+1]] == vals[order[k]] {
			j++
		}
		avg := float64(k+j+2) / 2 // ranks are 1-based
		for m := k; m <= j; m++ {
			out[order[m]] = avg
			outValid[order[m]] = true
		}
		k = j + 1
	}
	return NewSeriesFloat64WithNulls(in.Name(), out, outValid), nil
}

// AbsExpr computes the absolute value of each element.
type AbsExpr struct {
	Input Expr
}

func (e *AbsExpr) String() string { return fmt.Sprintf("%s.abs()", e.Input) }
func (e *AbsExpr) Clone() Expr    { return &AbsExpr{Input: e.Input.Clone()} }

func (e *AbsExpr) evalSeries(s *Series) (*Series, error) {
	in, err := e.Input.evalSeries(s)
	if err != nil {
		return nil, err
	}
	vals, valid, err := seriesAsFloat64(in)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = math.Abs(v)
	}
	return NewSeriesFloat64WithNulls(in.Name(), out, valid), nil
}

// FirstExpr selects the first element of the sublist.
type FirstExpr struct {
	Input Expr
}

func (e *FirstExpr) String() string { return fmt.Sprintf("%s.first()", e.Input) }
func (e *FirstExpr) Clone() Expr    { return &FirstExpr{Input: e.Input.Clone()} }

func (e *FirstExpr) evalSeries(s *Series) (*Series, error) {
	in, err := e.Input.evalSeries(s)
	if err != nil {
		return nil, err
	}
	if in.Len() == 0 {
		return in, nil
	}
	return in.Slice(0, 1)
}
