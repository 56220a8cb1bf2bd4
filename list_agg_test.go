package polars

import (
	"errors"
	"testing"
)

func TestListLengths(t *testing.T) {
	ls := NewListSeriesFromSlicesF64("l", [][]float64{{1, 2, 3}, {}, nil})

	lens := ls.ListLengths()
	if lens.DType() != UInt32 {
		t.Errorf("DType() = %v, want UInt32", lens.DType())
	}
	if got := lens.Get(0); got != uint32(3) {
		t.Errorf("Get(0) = %v, want 3", got)
	}
	if got := lens.Get(1); got != uint32(0) {
		t.Errorf("Get(1) = %v, want 0 for empty sublist", got)
	}
	if !lens.IsNull(2) {
		t.Error("null sublist length should be null, not zero")
	}
}

func TestListSum(t *testing.T) {
	ls := NewListSeriesFromSlicesI64("l", [][]int64{{1, 2, 3}, {}, nil, {10}})

	sum, err := ls.ListSum()
	if err != nil {
		t.Fatalf("ListSum failed: %v", err)
	}
	if got := sum.Get(0); got != int64(6) {
		t.Errorf("Get(0) = %v, want 6", got)
	}
	if got := sum.Get(1); got != int64(0) {
		t.Errorf("Get(1) = %v, want 0 for empty sublist", got)
	}
	if !sum.IsNull(2) {
		t.Error("null sublist sum should be null")
	}
	if got := sum.Get(3); got != int64(10) {
		t.Errorf("Get(3) = %v, want 10", got)
	}
}

func TestListSumSkipsNullElements(t *testing.T) {
	values := NewSeriesInt64WithNulls("", []int64{1, 0, 3}, []bool{true, false, true})
	ls, err := NewListSeries("l", []int32{0, 3}, values)
	if err != nil {
		t.Fatalf("NewListSeries failed: %v", err)
	}

	sum, err := ls.ListSum()
	if err != nil {
		t.Fatalf("ListSum failed: %v", err)
	}
	if got := sum.Get(0); got != int64(4) {
		t.Errorf("Get(0) = %v, want 4 (null element skipped)", got)
	}
}

func TestListSumTypeMismatch(t *testing.T) {
	ls := NewListSeriesFromSlicesString("l", [][]string{{"a"}})
	if _, err := ls.ListSum(); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("error = %v, want ErrTypeMismatch", err)
	}
}

func TestListMean(t *testing.T) {
	ls := NewListSeriesFromSlicesI64("l", [][]int64{{1, 2, 3}, {}, nil})

	mean, err := ls.ListMean()
	if err != nil {
		t.Fatalf("ListMean failed: %v", err)
	}
	if mean.DType() != Float64 {
		t.Errorf("DType() = %v, want Float64", mean.DType())
	}
	if got := mean.Get(0); got != 2.0 {
		t.Errorf("Get(0) = %v, want 2.0", got)
	}
	if !mean.IsNull(1) {
		t.Error("mean of empty sublist should be null")
	}
	if !mean.IsNull(2) {
		t.Error("mean of null sublist should be null")
	}
}

func TestListMinMax(t *testing.T) {
	ls := NewListSeriesFromSlicesF64("l", [][]float64{{3, 1, 2}, {}, nil})

	min, err := ls.ListMin()
	if err != nil {
		t.Fatalf("ListMin failed: %v", err)
	}
	max, err := ls.ListMax()
	if err != nil {
		t.Fatalf("ListMax failed: %v", err)
	}

	if got := min.Get(0); got != 1.0 {
		t.Errorf("min Get(0) = %v, want 1.0", got)
	}
	if got := max.Get(0); got != 3.0 {
		t.Errorf("max Get(0) = %v, want 3.0", got)
	}
	if !min.IsNull(1) || !max.IsNull(1) {
		t.Error("min/max of empty sublist should be null")
	}
	if !min.IsNull(2) || !max.IsNull(2) {
		t.Error("min/max of null sublist should be null")
	}
}

func TestListMinMaxStrings(t *testing.T) {
	ls := NewListSeriesFromSlicesString("l", [][]string{{"banana", "apple", "cherry"}})

	min, err := ls.ListMin()
	if err != nil {
		t.Fatalf("ListMin failed: %v", err)
	}
	if got := min.Get(0); got != "apple" {
		t.Errorf("min Get(0) = %v, want apple", got)
	}
}

func TestArgMinArgMax(t *testing.T) {
	ls := NewListSeriesFromSlicesI64("l", [][]int64{{5, 1, 9}, {}, nil})

	argMin, err := ls.ArgMin()
	if err != nil {
		t.Fatalf("ArgMin failed: %v", err)
	}
	argMax, err := ls.ArgMax()
	if err != nil {
		t.Fatalf("ArgMax failed: %v", err)
	}

	if got := argMin.Get(0); got != uint32(1) {
		t.Errorf("argMin Get(0) = %v, want 1", got)
	}
	if got := argMax.Get(0); got != uint32(2) {
		t.Errorf("argMax Get(0) = %v, want 2", got)
	}
	if !argMin.IsNull(1) || !argMin.IsNull(2) {
		t.Error("arg_min of empty/null sublist should be null")
	}
}

func TestContains(t *testing.T) {
	ls := NewListSeriesFromSlicesI64("l", [][]int64{{1, 2}, {3}, nil})

	got, err := ls.Contains(int64(2))
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if got.Get(0) != true {
		t.Error("row 0 should contain 2")
	}
	if got.Get(1) != false {
		t.Error("row 1 should not contain 2")
	}
	if !got.IsNull(2) {
		t.Error("null row contains should be null")
	}
}

func TestContainsNullTarget(t *testing.T) {
	values := NewSeriesInt64WithNulls("", []int64{1, 0, 2}, []bool{true, false, true})
	ls, err := NewListSeries("l", []int32{0, 2, 3}, values)
	if err != nil {
		t.Fatalf("NewListSeries failed: %v", err)
	}

	got, err := ls.Contains(nil)
	if err != nil {
		t.Fatalf("Contains(nil) failed: %v", err)
	}
	if got.Get(0) != true {
		t.Error("row 0 holds a null element; Contains(nil) should be true")
	}
	if got.Get(1) != false {
		t.Error("row 1 holds no null element")
	}
}

func TestCountMatch(t *testing.T) {
	ls := NewListSeriesFromSlicesI64("l", [][]int64{{1, 1, 2}, {2}, nil})

	got, err := ls.CountMatch(int64(1))
	if err != nil {
		t.Fatalf("CountMatch failed: %v", err)
	}
	if got.Get(0) != uint32(2) {
		t.Errorf("Get(0) = %v, want 2", got.Get(0))
	}
	if got.Get(1) != uint32(0) {
		t.Errorf("Get(1) = %v, want 0", got.Get(1))
	}
	if !got.IsNull(2) {
		t.Error("null row count should be null")
	}
}

func TestCountMatchLiteralExpr(t *testing.T) {
	ls := NewListSeriesFromSlicesI64("l", [][]int64{{1, 2, 1}})

	got, err := ls.CountMatch(Lit(int64(1)))
	if err != nil {
		t.Fatalf("CountMatch(Lit) failed: %v", err)
	}
	if got.Get(0) != uint32(2) {
		t.Errorf("Get(0) = %v, want 2", got.Get(0))
	}

	if _, err := ls.CountMatch(Element().Add(Lit(int64(1)))); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("non-literal expression error = %v, want ErrTypeMismatch", err)
	}
}

func TestListAllListAny(t *testing.T) {
	ls := NewListSeriesFromSlicesBool("l", [][]bool{{true, true}, {true, false}, {}, nil})

	all, err := ls.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	anyS, err := ls.ListAny()
	if err != nil {
		t.Fatalf("ListAny failed: %v", err)
	}

	if all.Get(0) != true || all.Get(1) != false {
		t.Errorf("all = %v, %v, want true, false", all.Get(0), all.Get(1))
	}
	if all.Get(2) != true {
		t.Error("all of empty sublist should be true")
	}
	if anyS.Get(0) != true || anyS.Get(1) != true {
		t.Errorf("any = %v, %v, want true, true", anyS.Get(0), anyS.Get(1))
	}
	if anyS.Get(2) != false {
		t.Error("any of empty sublist should be false")
	}
	if !all.IsNull(3) || !anyS.IsNull(3) {
		t.Error("all/any of null sublist should be null")
	}

	ints := NewListSeriesFromSlicesI64("l", [][]int64{{1}})
	if _, err := ints.ListAll(); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("ListAll on Int64 error = %v, want ErrTypeMismatch", err)
	}
}
