package polars

import (
	"errors"
	"testing"
)

func TestBinaryOpIntArithmetic(t *testing.T) {
	s := NewSeriesInt64("x", []int64{1, 2, 3})

	out, err := Element().Add(Lit(int64(10))).evalSeries(s)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if out.DType() != Int64 {
		t.Errorf("DType() = %v, want Int64 for int+int", out.DType())
	}
	if got := out.Get(2); got != int64(13) {
		t.Errorf("Get(2) = %v, want 13", got)
	}
}

func TestBinaryOpDivIsFloat(t *testing.T) {
	s := NewSeriesInt64("x", []int64{7})

	out, err := Element().Div(Lit(int64(2))).evalSeries(s)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if out.DType() != Float64 {
		t.Errorf("DType() = %v, want Float64 for division", out.DType())
	}
	if got := out.Get(0); got != 3.5 {
		t.Errorf("Get(0) = %v, want 3.5", got)
	}
}

func TestBinaryOpComparison(t *testing.T) {
	s := NewSeriesFloat64("x", []float64{1, 5, 3})

	out, err := Element().Gt(Lit(2.0)).evalSeries(s)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if out.DType() != Bool {
		t.Errorf("DType() = %v, want Bool", out.DType())
	}
	if out.Get(0) != false || out.Get(1) != true || out.Get(2) != true {
		t.Errorf("got %v %v %v, want false true true", out.Get(0), out.Get(1), out.Get(2))
	}
}

func TestBinaryOpEmptyInput(t *testing.T) {
	// A literal broadcasts over zero elements to zero rows.
	s := NewSeriesInt64("x", nil)

	out, err := Element().Mul(Lit(int64(2))).evalSeries(s)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("Len() = %d, want 0", out.Len())
	}
	if out.DType() != Int64 {
		t.Errorf("DType() = %v, want Int64", out.DType())
	}

	cmp, err := Element().Gt(Lit(int64(0))).evalSeries(s)
	if err != nil {
		t.Fatalf("comparison eval failed: %v", err)
	}
	if cmp.Len() != 0 {
		t.Errorf("comparison Len() = %d, want 0", cmp.Len())
	}
}

func TestBinaryOpNullPropagation(t *testing.T) {
	s := NewSeriesInt64WithNulls("x", []int64{1, 0}, []bool{true, false})

	out, err := Element().Add(Lit(int64(1))).evalSeries(s)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if got := out.Get(0); got != int64(2) {
		t.Errorf("Get(0) = %v, want 2", got)
	}
	if !out.IsNull(1) {
		t.Error("null operand should propagate to null result")
	}
}

func TestBinaryOpNonNumeric(t *testing.T) {
	s := NewSeriesString("x", []string{"a"})
	if _, err := Element().Add(Lit(int64(1))).evalSeries(s); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("error = %v, want ErrTypeMismatch", err)
	}
}

func TestRankAverageTies(t *testing.T) {
	s := NewSeriesFloat64("x", []float64{10, 20, 10})

	out, err := Element().Rank().evalSeries(s)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	// The two 10s share ranks 1 and 2, averaged to 1.5.
	if got := out.Get(0); got != 1.5 {
		t.Errorf("Get(0) = %v, want 1.5", got)
	}
	if got := out.Get(1); got != 3.0 {
		t.Errorf("Get(1) = %v, want 3.0", got)
	}
	if got := out.Get(2); got != 1.5 {
		t.Errorf("Get(2) = %v, want 1.5", got)
	}
}

func TestAbs(t *testing.T) {
	s := NewSeriesFloat64("x", []float64{-2.5, 3})

	out, err := Element().Abs().evalSeries(s)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if out.Get(0) != 2.5 || out.Get(1) != 3.0 {
		t.Errorf("abs = %v, %v, want 2.5, 3", out.Get(0), out.Get(1))
	}
}

func TestExprString(t *testing.T) {
	e := Element().Add(Lit(int64(5)))
	if got := e.String(); got != "(element() + lit(5))" {
		t.Errorf("String() = %q", got)
	}
}

func TestExprClone(t *testing.T) {
	e := Element().Mul(Lit(2.0))
	c := e.Clone()
	if c.String() != e.String() {
		t.Errorf("clone String() = %q, want %q", c.String(), e.String())
	}
	if c == Expr(e) {
		t.Error("Clone should return a distinct value")
	}
}

func TestExprScalarValue(t *testing.T) {
	v, err := exprScalarValue(Lit(int64(3)))
	if err != nil || v != int64(3) {
		t.Errorf("exprScalarValue(Lit) = %v, %v", v, err)
	}
	if _, err := exprScalarValue(Element().Rank()); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("error = %v, want ErrTypeMismatch", err)
	}
}
