package polars

import (
	"errors"
	"testing"
)

func TestListSort(t *testing.T) {
	ls := NewListSeriesFromSlicesI64("l", [][]int64{{3, 1, 2}, {}, nil})

	asc, err := ls.ListSort(false)
	if err != nil {
		t.Fatalf("ListSort failed: %v", err)
	}
	if got := asc.GetListI64(0); got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("ascending sort = %v, want [1 2 3]", got)
	}
	if asc.GetListLen(1) != 0 {
		t.Error("empty sublist should stay empty")
	}
	if !asc.IsNull(2) {
		t.Error("null sublist should stay null")
	}

	desc, err := ls.ListSort(true)
	if err != nil {
		t.Fatalf("ListSort failed: %v", err)
	}
	if got := desc.GetListI64(0); got[0] != 3 || got[2] != 1 {
		t.Errorf("descending sort = %v, want [3 2 1]", got)
	}
}

func TestListSortNullsLast(t *testing.T) {
	values := NewSeriesInt64WithNulls("", []int64{2, 0, 1}, []bool{true, false, true})
	ls, err := NewListSeries("l", []int32{0, 3}, values)
	if err != nil {
		t.Fatalf("NewListSeries failed: %v", err)
	}

	for _, descending := range []bool{false, true} {
		sorted, err := ls.ListSort(descending)
		if err != nil {
			t.Fatalf("ListSort(%v) failed: %v", descending, err)
		}
		row := sorted.GetListBoxed(0)
		if row[2] != nil {
			t.Errorf("descending=%v: last element = %v, want null last", descending, row[2])
		}
		if row[0] == nil || row[1] == nil {
			t.Errorf("descending=%v: non-null elements must come first: %v", descending, row)
		}
	}
}

func TestListSortIdempotent(t *testing.T) {
	ls := NewListSeriesFromSlicesF64("l", [][]float64{{2.5, 1.5, 2.0}, {9}})

	once, err := ls.ListSort(false)
	if err != nil {
		t.Fatalf("ListSort failed: %v", err)
	}
	twice, err := once.ListSort(false)
	if err != nil {
		t.Fatalf("ListSort failed: %v", err)
	}
	for i := 0; i < ls.Len(); i++ {
		a, b := once.GetListF64(i), twice.GetListF64(i)
		for j := range a {
			if a[j] != b[j] {
				t.Errorf("row %d: sort not idempotent: %v vs %v", i, a, b)
			}
		}
	}
}

func TestListSortBool(t *testing.T) {
	ls := NewListSeriesFromSlicesBool("l", [][]bool{{true, false, true}, nil})

	asc, err := ls.ListSort(false)
	if err != nil {
		t.Fatalf("ListSort failed: %v", err)
	}
	row := asc.GetListBoxed(0)
	if row[0] != false || row[1] != true || row[2] != true {
		t.Errorf("ascending sort = %v, want [false true true]", row)
	}
	if !asc.IsNull(1) {
		t.Error("null sublist should stay null")
	}

	desc, err := ls.ListSort(true)
	if err != nil {
		t.Fatalf("ListSort failed: %v", err)
	}
	row = desc.GetListBoxed(0)
	if row[0] != true || row[1] != true || row[2] != false {
		t.Errorf("descending sort = %v, want [true true false]", row)
	}
}

func TestListSortUnsupported(t *testing.T) {
	inner := NewListSeriesFromSlicesI64("", [][]int64{{1}})
	ls, err := NewNestedListSeries("l", []int32{0, 1}, inner)
	if err != nil {
		t.Fatalf("NewNestedListSeries failed: %v", err)
	}
	if _, err := ls.ListSort(false); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("error = %v, want ErrTypeMismatch", err)
	}
}

func TestListReverse(t *testing.T) {
	ls := NewListSeriesFromSlicesString("l", [][]string{{"a", "b", "c"}, nil})

	rev, err := ls.ListReverse()
	if err != nil {
		t.Fatalf("ListReverse failed: %v", err)
	}
	row := rev.GetListBoxed(0)
	if row[0] != "c" || row[2] != "a" {
		t.Errorf("reversed = %v, want [c b a]", row)
	}
	if !rev.IsNull(1) {
		t.Error("null sublist should stay null")
	}
}

func TestListUnique(t *testing.T) {
	ls := NewListSeriesFromSlicesI64("l", [][]int64{{3, 1, 3, 2, 1}})

	uniq, err := ls.ListUnique()
	if err != nil {
		t.Fatalf("ListUnique failed: %v", err)
	}
	got := uniq.GetListI64(0)
	want := []int64{3, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("unique = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("unique[%d] = %v, want %v (first occurrence order)", i, got[i], want[i])
		}
	}
}

func TestListUniqueKeepsOneNull(t *testing.T) {
	values := NewSeriesInt64WithNulls("", []int64{1, 0, 0, 1}, []bool{true, false, false, true})
	ls, err := NewListSeries("l", []int32{0, 4}, values)
	if err != nil {
		t.Fatalf("NewListSeries failed: %v", err)
	}

	uniq, err := ls.ListUnique()
	if err != nil {
		t.Fatalf("ListUnique failed: %v", err)
	}
	row := uniq.GetListBoxed(0)
	if len(row) != 2 {
		t.Fatalf("unique = %v, want value plus one null", row)
	}
	if row[0] != int64(1) || row[1] != nil {
		t.Errorf("unique = %v, want [1 null]", row)
	}
}

func TestListShift(t *testing.T) {
	ls := NewListSeriesFromSlicesI64("l", [][]int64{{1, 2, 3}})

	right, err := ls.ListShift(1)
	if err != nil {
		t.Fatalf("ListShift failed: %v", err)
	}
	row := right.GetListBoxed(0)
	if row[0] != nil || row[1] != int64(1) || row[2] != int64(2) {
		t.Errorf("shift(1) = %v, want [null 1 2]", row)
	}

	left, err := ls.ListShift(-1)
	if err != nil {
		t.Fatalf("ListShift failed: %v", err)
	}
	row = left.GetListBoxed(0)
	if row[0] != int64(2) || row[1] != int64(3) || row[2] != nil {
		t.Errorf("shift(-1) = %v, want [2 3 null]", row)
	}
}

func TestListDiff(t *testing.T) {
	ls := NewListSeriesFromSlicesI64("l", [][]int64{{1, 3, 6}, {5}})

	ignored, err := ls.ListDiff(1, NullBehaviorIgnore)
	if err != nil {
		t.Fatalf("ListDiff failed: %v", err)
	}
	row := ignored.GetListBoxed(0)
	if row[0] != nil || row[1] != int64(2) || row[2] != int64(3) {
		t.Errorf("diff ignore = %v, want [null 2 3]", row)
	}
	if got := ignored.GetListLen(1); got != 1 {
		t.Errorf("diff ignore keeps length: got %d, want 1", got)
	}

	dropped, err := ls.ListDiff(1, NullBehaviorDrop)
	if err != nil {
		t.Fatalf("ListDiff failed: %v", err)
	}
	got := dropped.GetListI64(0)
	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("diff drop = %v, want [2 3]", got)
	}
	if dropped.GetListLen(1) != 0 {
		t.Errorf("diff drop on single element = %v, want empty", dropped.GetListBoxed(1))
	}

	if _, err := ls.ListDiff(-1, NullBehaviorIgnore); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("negative n error = %v, want ErrInvalidLayout", err)
	}
}

func TestListSlice(t *testing.T) {
	ls := NewListSeriesFromSlicesI64("l", [][]int64{{1, 2, 3, 4}, {5}})

	out, err := ls.ListSlice(1, 2)
	if err != nil {
		t.Fatalf("ListSlice failed: %v", err)
	}
	got := out.GetListI64(0)
	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("slice(1,2) = %v, want [2 3]", got)
	}
	if out.GetListLen(1) != 0 {
		t.Errorf("slice of short sublist = %v, want empty", out.GetListBoxed(1))
	}

	neg, err := ls.ListSlice(-2, -1)
	if err != nil {
		t.Fatalf("ListSlice failed: %v", err)
	}
	got = neg.GetListI64(0)
	if len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Errorf("slice(-2, to end) = %v, want [3 4]", got)
	}
}

func TestListHeadTail(t *testing.T) {
	ls := NewListSeriesFromSlicesI64("l", [][]int64{{1, 2, 3}, {4}})

	head, err := ls.ListHead(2)
	if err != nil {
		t.Fatalf("ListHead failed: %v", err)
	}
	if got := head.GetListI64(0); len(got) != 2 || got[1] != 2 {
		t.Errorf("head(2) = %v, want [1 2]", got)
	}
	if got := head.GetListI64(1); len(got) != 1 {
		t.Errorf("head(2) of short sublist = %v, want [4]", got)
	}

	tail, err := ls.ListTail(2)
	if err != nil {
		t.Fatalf("ListTail failed: %v", err)
	}
	if got := tail.GetListI64(0); len(got) != 2 || got[0] != 2 {
		t.Errorf("tail(2) = %v, want [2 3]", got)
	}
}

func TestListGet(t *testing.T) {
	ls := NewListSeriesFromSlicesI64("l", [][]int64{{1, 2, 3}, {4}, {}, nil})

	first, err := ls.ListGet(0)
	if err != nil {
		t.Fatalf("ListGet failed: %v", err)
	}
	if first.Get(0) != int64(1) || first.Get(1) != int64(4) {
		t.Errorf("get(0) = %v, %v", first.Get(0), first.Get(1))
	}
	if !first.IsNull(2) {
		t.Error("get(0) of empty sublist should be null, not an error")
	}
	if !first.IsNull(3) {
		t.Error("get(0) of null sublist should be null")
	}

	last, err := ls.ListGet(-1)
	if err != nil {
		t.Fatalf("ListGet failed: %v", err)
	}
	if last.Get(0) != int64(3) {
		t.Errorf("get(-1) row 0 = %v, want 3", last.Get(0))
	}

	oob, err := ls.ListGet(7)
	if err != nil {
		t.Fatalf("ListGet failed: %v", err)
	}
	for i := 0; i < oob.Len(); i++ {
		if !oob.IsNull(i) {
			t.Errorf("get(7) row %d = %v, want null", i, oob.Get(i))
		}
	}
}

func TestListGetMinusOneEqualsTailOne(t *testing.T) {
	ls := NewListSeriesFromSlicesI64("l", [][]int64{{1, 2, 3}, {9}, {}})

	last, err := ls.ListGet(-1)
	if err != nil {
		t.Fatalf("ListGet failed: %v", err)
	}
	tail, err := ls.ListTail(1)
	if err != nil {
		t.Fatalf("ListTail failed: %v", err)
	}
	for i := 0; i < ls.Len(); i++ {
		row := tail.GetListBoxed(i)
		var want interface{}
		if len(row) > 0 {
			want = row[0]
		}
		if got := last.Get(i); got != want {
			t.Errorf("row %d: get(-1) = %v, tail(1) = %v", i, got, want)
		}
	}
}

func TestListTake(t *testing.T) {
	ls := NewListSeriesFromSlicesI64("l", [][]int64{{1, 2, 3, 4, 5, 6}, {1, 2, 3}})

	// Default policy: out of bounds fails.
	if _, err := ls.ListTake([]int{0, 2, 5}, false); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("error = %v, want ErrIndexOutOfBounds", err)
	}

	// null_on_oob: the offending element becomes null.
	out, err := ls.ListTake([]int{0, 2, 5}, true)
	if err != nil {
		t.Fatalf("ListTake failed: %v", err)
	}
	row0 := out.GetListBoxed(0)
	if row0[0] != int64(1) || row0[1] != int64(3) || row0[2] != int64(6) {
		t.Errorf("row 0 = %v, want [1 3 6]", row0)
	}
	row1 := out.GetListBoxed(1)
	if row1[0] != int64(1) || row1[1] != int64(3) || row1[2] != nil {
		t.Errorf("row 1 = %v, want [1 3 null]", row1)
	}
}

func TestListTakeByRow(t *testing.T) {
	ls := NewListSeriesFromSlicesI64("l", [][]int64{{1, 2}, {3, 4, 5}})

	out, err := ls.ListTakeByRow([][]int{{1}, {-1, 0}}, false)
	if err != nil {
		t.Fatalf("ListTakeByRow failed: %v", err)
	}
	if got := out.GetListBoxed(0); got[0] != int64(2) {
		t.Errorf("row 0 = %v, want [2]", got)
	}
	if got := out.GetListBoxed(1); got[0] != int64(5) || got[1] != int64(3) {
		t.Errorf("row 1 = %v, want [5 3]", got)
	}

	if _, err := ls.ListTakeByRow([][]int{{0}}, false); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("row count mismatch error = %v, want ErrInvalidLayout", err)
	}
}

func TestListJoin(t *testing.T) {
	ls := NewListSeriesFromSlicesString("l", [][]string{{"a", "b"}, {}, nil})

	out, err := ls.ListJoin("-")
	if err != nil {
		t.Fatalf("ListJoin failed: %v", err)
	}
	if got := out.Get(0); got != "a-b" {
		t.Errorf("Get(0) = %v, want a-b", got)
	}
	if got := out.Get(1); got != "" {
		t.Errorf("Get(1) = %v, want empty string", got)
	}
	if !out.IsNull(2) {
		t.Error("join of null sublist should be null")
	}

	ints := NewListSeriesFromSlicesI64("l", [][]int64{{1}})
	if _, err := ints.ListJoin(","); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("error = %v, want ErrTypeMismatch", err)
	}
}

func TestListJoinNullElementYieldsNullRow(t *testing.T) {
	values := NewSeriesStringWithNulls("", []string{"a", "", "c"}, []bool{true, false, true})
	ls, err := NewListSeries("l", []int32{0, 3}, values)
	if err != nil {
		t.Fatalf("NewListSeries failed: %v", err)
	}

	out, err := ls.ListJoin("-")
	if err != nil {
		t.Fatalf("ListJoin failed: %v", err)
	}
	if !out.IsNull(0) {
		t.Errorf("Get(0) = %v, want null when any element is null", out.Get(0))
	}
}

func TestListConcat(t *testing.T) {
	a := NewListSeriesFromSlicesI64("a", [][]int64{{1, 2}, {3}, nil})
	b := NewListSeriesFromSlicesI64("b", [][]int64{{10}, {}, {20}})

	out, err := a.ListConcat(b)
	if err != nil {
		t.Fatalf("ListConcat failed: %v", err)
	}
	row0 := out.GetListBoxed(0)
	if len(row0) != 3 || row0[2] != int64(10) {
		t.Errorf("row 0 = %v, want [1 2 10]", row0)
	}
	if got := out.GetListBoxed(1); len(got) != 1 || got[0] != int64(3) {
		t.Errorf("row 1 = %v, want [3]", got)
	}
	if !out.IsNull(2) {
		t.Error("null row in any input should yield null output row")
	}

	short := NewListSeriesFromSlicesI64("c", [][]int64{{1}})
	if _, err := a.ListConcat(short); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("length mismatch error = %v, want ErrInvalidLayout", err)
	}

	strs := NewListSeriesFromSlicesString("d", [][]string{{"x"}, {"y"}, {"z"}})
	if _, err := a.ListConcat(strs); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("type mismatch error = %v, want ErrTypeMismatch", err)
	}
}

func TestListKernelsPreserveLength(t *testing.T) {
	ls := NewListSeriesFromSlicesI64("l", [][]int64{{3, 1}, {}, nil, {7, 8, 9}})

	ops := map[string]func() (*ListSeries, error){
		"sort":    func() (*ListSeries, error) { return ls.ListSort(false) },
		"reverse": ls.ListReverse,
		"unique":  ls.ListUnique,
		"shift":   func() (*ListSeries, error) { return ls.ListShift(1) },
		"slice":   func() (*ListSeries, error) { return ls.ListSlice(0, 2) },
	}
	for name, op := range ops {
		out, err := op()
		if err != nil {
			t.Fatalf("%s failed: %v", name, err)
		}
		if out.Len() != ls.Len() {
			t.Errorf("%s: Len() = %d, want %d", name, out.Len(), ls.Len())
		}
		if !out.IsNull(2) {
			t.Errorf("%s: null row must stay null", name)
		}
	}
}
