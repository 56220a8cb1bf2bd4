package polars

import (
	"errors"
	"testing"
)

func TestSetUnion(t *testing.T) {
	a := NewListSeriesFromSlicesI64("a", [][]int64{{1, 2, 2}, {5}})
	b := NewListSeriesFromSlicesI64("b", [][]int64{{2, 3}, {5, 6}})

	out, err := a.SetUnion(b)
	if err != nil {
		t.Fatalf("SetUnion failed: %v", err)
	}
	row0 := out.GetListBoxed(0)
	want := []int64{1, 2, 3}
	if len(row0) != len(want) {
		t.Fatalf("row 0 = %v, want %v", row0, want)
	}
	for i, w := range want {
		if row0[i] != w {
			t.Errorf("row 0[%d] = %v, want %v (left-first order, duplicates dropped)", i, row0[i], w)
		}
	}
	row1 := out.GetListBoxed(1)
	if len(row1) != 2 || row1[0] != int64(5) || row1[1] != int64(6) {
		t.Errorf("row 1 = %v, want [5 6]", row1)
	}
}

func TestSetIntersection(t *testing.T) {
	a := NewListSeriesFromSlicesI64("a", [][]int64{{3, 1, 2, 1}})
	b := NewListSeriesFromSlicesI64("b", [][]int64{{1, 3, 9}})

	out, err := a.SetIntersection(b)
	if err != nil {
		t.Fatalf("SetIntersection failed: %v", err)
	}
	row := out.GetListBoxed(0)
	if len(row) != 2 || row[0] != int64(3) || row[1] != int64(1) {
		t.Errorf("row 0 = %v, want [3 1] (first-occurrence order of the left operand)", row)
	}
}

func TestSetDifference(t *testing.T) {
	a := NewListSeriesFromSlicesI64("a", [][]int64{{1, 2, 3, 2}})
	b := NewListSeriesFromSlicesI64("b", [][]int64{{2}})

	out, err := a.SetDifference(b)
	if err != nil {
		t.Fatalf("SetDifference failed: %v", err)
	}
	row := out.GetListBoxed(0)
	if len(row) != 2 || row[0] != int64(1) || row[1] != int64(3) {
		t.Errorf("row 0 = %v, want [1 3]", row)
	}
}

func TestSetSymmetricDifference(t *testing.T) {
	a := NewListSeriesFromSlicesI64("a", [][]int64{{1, 2}})
	b := NewListSeriesFromSlicesI64("b", [][]int64{{2, 3}})

	out, err := a.SetSymmetricDifference(b)
	if err != nil {
		t.Fatalf("SetSymmetricDifference failed: %v", err)
	}
	row := out.GetListBoxed(0)
	if len(row) != 2 || row[0] != int64(1) || row[1] != int64(3) {
		t.Errorf("row 0 = %v, want [1 3]", row)
	}
}

func TestSetOpsNullMember(t *testing.T) {
	leftVals := NewSeriesInt64WithNulls("", []int64{1, 0}, []bool{true, false})
	a, err := NewListSeries("a", []int32{0, 2}, leftVals)
	if err != nil {
		t.Fatalf("NewListSeries failed: %v", err)
	}
	b := NewListSeriesFromSlicesI64("b", [][]int64{{1}})

	// Null is a set member: it survives difference against a null-free set.
	diff, err := a.SetDifference(b)
	if err != nil {
		t.Fatalf("SetDifference failed: %v", err)
	}
	row := diff.GetListBoxed(0)
	if len(row) != 1 || row[0] != nil {
		t.Errorf("row 0 = %v, want [null]", row)
	}

	// And intersects with another null.
	rightVals := NewSeriesInt64WithNulls("", []int64{0}, []bool{false})
	c, err := NewListSeries("c", []int32{0, 1}, rightVals)
	if err != nil {
		t.Fatalf("NewListSeries failed: %v", err)
	}
	inter, err := a.SetIntersection(c)
	if err != nil {
		t.Fatalf("SetIntersection failed: %v", err)
	}
	row = inter.GetListBoxed(0)
	if len(row) != 1 || row[0] != nil {
		t.Errorf("intersection row = %v, want [null]", row)
	}
}

func TestSetOpsNullRowPropagates(t *testing.T) {
	a := NewListSeriesFromSlicesI64("a", [][]int64{nil, {1}})
	b := NewListSeriesFromSlicesI64("b", [][]int64{{1}, nil})

	out, err := a.SetUnion(b)
	if err != nil {
		t.Fatalf("SetUnion failed: %v", err)
	}
	if !out.IsNull(0) || !out.IsNull(1) {
		t.Error("a null sublist on either side should yield a null output row")
	}
}

func TestSetOpsErrors(t *testing.T) {
	a := NewListSeriesFromSlicesI64("a", [][]int64{{1}})
	short := NewListSeriesFromSlicesI64("b", [][]int64{{1}, {2}})
	if _, err := a.SetUnion(short); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("length mismatch error = %v, want ErrInvalidLayout", err)
	}

	strs := NewListSeriesFromSlicesString("s", [][]string{{"x"}})
	if _, err := a.SetUnion(strs); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("element type mismatch error = %v, want ErrTypeMismatch", err)
	}
}
