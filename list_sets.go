package polars

// ============================================================================
// Set Operations
// ============================================================================
//
// Pairwise set algebra between two list columns of equal length. The
// sublists are treated as ordered sets: duplicates are eliminated,
// null is a legal set member, and output order is first occurrence in
// the left operand (then the right, for union and symmetric
// difference). A null sublist on either side makes the output row
// null.

// SetOp identifies a pairwise set operation.
type SetOp int

const (
	SetOpUnion SetOp = iota
	SetOpIntersection
	SetOpDifference
	SetOpSymmetricDifference
)

func (op SetOp) String() string {
	switch op {
	case SetOpUnion:
		return "union"
	case SetOpIntersection:
		return "intersection"
	case SetOpDifference:
		return "difference"
	case SetOpSymmetricDifference:
		return "symmetric_difference"
	}
	return "unknown"
}

// setElems collects the distinct elements of sublist i in first
// occurrence order, with null represented as a nil entry.
func setElems(l *ListSeries, i int) []interface{} {
	start, end := l.bounds(i)
	out := make([]interface{}, 0, end-start)
	seen := make(map[interface{}]struct{}, end-start)
	seenNull := false
	for j := start; j < end; j++ {
		if !l.values.IsValid(j) {
			if !seenNull {
				seenNull = true
				out = append(out, nil)
			}
			continue
		}
		v := l.values.Get(j)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func setContains(elems []interface{}, v interface{}) bool {
	for _, e := range elems {
		if e == v {
			return true
		}
	}
	return false
}

func (l *ListSeries) setOp(other *ListSeries, op SetOp) (*ListSeries, error) {
	if other == nil {
		return nil, invalidLayoutf("set %s: nil operand", op)
	}
	if l.length != other.length {
		return nil, invalidLayoutf("set %s: length mismatch %d vs %d", op, l.length, other.length)
	}
	lt, rt := l.ElementType(), other.ElementType()
	if lt.IsNested() || rt.IsNested() {
		return nil, typeMismatchf("set %s: unsupported element type %s", op, l.listType)
	}
	if lt != rt {
		return nil, typeMismatchf("set %s: element types %s and %s", op, lt, rt)
	}

	rows := make([]interface{}, l.length)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) || !other.IsValid(i) {
			continue
		}
		a := setElems(l, i)
		b := setElems(other, i)
		var out []interface{}
		switch op {
		case SetOpUnion:
			out = append(out, a...)
			for _, v := range b {
				if !setContains(a, v) {
					out = append(out, v)
				}
			}
		case SetOpIntersection:
			for _, v := range a {
				if setContains(b, v) {
					out = append(out, v)
				}
			}
		case SetOpDifference:
			for _, v := range a {
				if !setContains(b, v) {
					out = append(out, v)
				}
			}
		case SetOpSymmetricDifference:
			for _, v := range a {
				if !setContains(b, v) {
					out = append(out, v)
				}
			}
			for _, v := range b {
				if !setContains(a, v) {
					out = append(out, v)
				}
			}
		}
		if out == nil {
			out = []interface{}{}
		}
		rows[i] = out
	}
	return listSeriesFromBoxedRows(l.name, rows)
}

// SetUnion computes the distinct union of each pair of sublists.
func (l *ListSeries) SetUnion(other *ListSeries) (*ListSeries, error) {
	return l.setOp(other, SetOpUnion)
}

// SetIntersection computes the distinct intersection of each pair of
// sublists.
func (l *ListSeries) SetIntersection(other *ListSeries) (*ListSeries, error) {
	return l.setOp(other, SetOpIntersection)
}

// SetDifference computes the distinct elements of each left sublist
// that do not occur in the right sublist.
func (l *ListSeries) SetDifference(other *ListSeries) (*ListSeries, error) {
	return l.setOp(other, SetOpDifference)
}

// SetSymmetricDifference computes the distinct elements occurring in
// exactly one of the two sublists.
func (l *ListSeries) SetSymmetricDifference(other *ListSeries) (*ListSeries, error) {
	return l.setOp(other, SetOpSymmetricDifference)
}
