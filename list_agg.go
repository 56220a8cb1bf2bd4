package polars

import (
	"golang.org/x/exp/constraints"
)

// ============================================================================
// List Reductions
// ============================================================================
//
// Every reduction kernel maps one input sublist to one output value.
// A null sublist propagates to a null output. Null elements inside a
// sublist are skipped.

type number interface {
	constraints.Integer | constraints.Float
}

// ListLengths returns a Series containing the length of each list as
// UInt32. A null sublist yields null, not zero.
func (l *ListSeries) ListLengths() *Series {
	lengths := make([]uint32, l.length)
	valid := make([]bool, l.length)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			continue
		}
		valid[i] = true
		start, end := l.bounds(i)
		lengths[i] = uint32(end - start)
	}
	return NewSeriesUInt32WithNulls(l.name+"_len", lengths, valid)
}

func sumSublists[T number](l *ListSeries, data []T) ([]T, []bool) {
	sums := make([]T, l.length)
	valid := make([]bool, l.length)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			continue
		}
		valid[i] = true
		start, end := l.bounds(i)
		var sum T
		for j := start; j < end; j++ {
			if l.values.IsValid(j) {
				sum += data[j]
			}
		}
		sums[i] = sum
	}
	return sums, valid
}

func meanSublists[T number](l *ListSeries, data []T) ([]float64, []bool) {
	means := make([]float64, l.length)
	valid := make([]bool, l.length)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			continue
		}
		start, end := l.bounds(i)
		var sum float64
		count := 0
		for j := start; j < end; j++ {
			if l.values.IsValid(j) {
				sum += float64(data[j])
				count++
			}
		}
		if count == 0 {
			// Mean of an empty sublist is undefined.
			continue
		}
		valid[i] = true
		means[i] = sum / float64(count)
	}
	return means, valid
}

func minSublists[T constraints.Ordered](l *ListSeries, data []T, descending bool) ([]T, []bool) {
	out := make([]T, l.length)
	valid := make([]bool, l.length)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			continue
		}
		start, end := l.bounds(i)
		found := false
		var best T
		for j := start; j < end; j++ {
			if !l.values.IsValid(j) {
				continue
			}
			v := data[j]
			if !found || (!descending && v < best) || (descending && v > best) {
				best = v
				found = true
			}
		}
		if found {
			valid[i] = true
			out[i] = best
		}
	}
	return out, valid
}

// ListSum returns the sum of elements in each list. Fails with
// ErrTypeMismatch for non-numeric element types.
func (l *ListSeries) ListSum() (*Series, error) {
	switch l.ElementType() {
	case Float64:
		vals, valid := sumSublists(l, l.values.Float64())
		return NewSeriesFloat64WithNulls(l.name+"_sum", vals, valid), nil
	case Int64:
		vals, valid := sumSublists(l, l.values.Int64())
		return NewSeriesInt64WithNulls(l.name+"_sum", vals, valid), nil
	case Int32:
		vals, valid := sumSublists(l, l.values.Int32())
		return NewSeriesInt32WithNulls(l.name+"_sum", vals, valid), nil
	case UInt32:
		vals, valid := sumSublists(l, l.values.UInt32())
		return NewSeriesUInt32WithNulls(l.name+"_sum", vals, valid), nil
	}
	return nil, typeMismatchf("list.sum: unsupported element type %s", l.listType)
}

// ListMean returns the mean of elements in each list as Float64.
// The mean of an empty sublist is null.
func (l *ListSeries) ListMean() (*Series, error) {
	var vals []float64
	var valid []bool
	switch l.ElementType() {
	case Float64:
		vals, valid = meanSublists(l, l.values.Float64())
	case Int64:
		vals, valid = meanSublists(l, l.values.Int64())
	case Int32:
		vals, valid = meanSublists(l, l.values.Int32())
	case UInt32:
		vals, valid = meanSublists(l, l.values.UInt32())
	default:
		return nil, typeMismatchf("list.mean: unsupported element type %s", l.listType)
	}
	return NewSeriesFloat64WithNulls(l.name+"_mean", vals, valid), nil
}

// ListMin returns the minimum element in each list. Empty sublists
// yield null.
func (l *ListSeries) ListMin() (*Series, error) {
	return l.listMinMax(false)
}

// ListMax returns the maximum element in each list. Empty sublists
// yield null.
func (l *ListSeries) ListMax() (*Series, error) {
	return l.listMinMax(true)
}

func (l *ListSeries) listMinMax(descending bool) (*Series, error) {
	suffix := "_min"
	if descending {
		suffix = "_max"
	}
	switch l.ElementType() {
	case Float64:
		vals, valid := minSublists(l, l.values.Float64(), descending)
		return NewSeriesFloat64WithNulls(l.name+suffix, vals, valid), nil
	case Int64:
		vals, valid := minSublists(l, l.values.Int64(), descending)
		return NewSeriesInt64WithNulls(l.name+suffix, vals, valid), nil
	case Int32:
		vals, valid := minSublists(l, l.values.Int32(), descending)
		return NewSeriesInt32WithNulls(l.name+suffix, vals, valid), nil
	case UInt32:
		vals, valid := minSublists(l, l.values.UInt32(), descending)
		return NewSeriesUInt32WithNulls(l.name+suffix, vals, valid), nil
	case String:
		vals, valid := minSublists(l, l.values.Strings(), descending)
		return NewSeriesStringWithNulls(l.name+suffix, vals, valid), nil
	}
	return nil, typeMismatchf("list.min/max: unsupported element type %s", l.listType)
}

// ============================================================================
// Positional Reductions
// ============================================================================

func argBestSublists[T constraints.Ordered](l *ListSeries, data []T, descending bool) ([]uint32, []bool) {
	out := make([]uint32, l.length)
	valid := make([]bool, l.length)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			continue
		}
		start, end := l.bounds(i)
		found := false
		var best T
		var bestIdx int
		for j := start; j < end; j++ {
			if !l.values.IsValid(j) {
				continue
			}
			v := data[j]
			if !found || (!descending && v < best) || (descending && v > best) {
				best = v
				bestIdx = j - start
				found = true
			}
		}
		if found {
			valid[i] = true
			out[i] = uint32(bestIdx)
		}
	}
	return out, valid
}

// ArgMin retrieves the index of the minimal value in every sublist as
// UInt32. Empty and null sublists yield null.
func (l *ListSeries) ArgMin() (*Series, error) {
	return l.argBest(false, "_arg_min")
}

// ArgMax retrieves the index of the maximum value in every sublist as
// UInt32. Empty and null sublists yield null.
func (l *ListSeries) ArgMax() (*Series, error) {
	return l.argBest(true, "_arg_max")
}

func (l *ListSeries) argBest(descending bool, suffix string) (*Series, error) {
	var vals []uint32
	var valid []bool
	switch l.ElementType() {
	case Float64:
		vals, valid = argBestSublists(l, l.values.Float64(), descending)
	case Int64:
		vals, valid = argBestSublists(l, l.values.Int64(), descending)
	case Int32:
		vals, valid = argBestSublists(l, l.values.Int32(), descending)
	case UInt32:
		vals, valid = argBestSublists(l, l.values.UInt32(), descending)
	case String:
		vals, valid = argBestSublists(l, l.values.Strings(), descending)
	default:
		return nil, typeMismatchf("list.arg_min/arg_max: unsupported element type %s", l.listType)
	}
	return NewSeriesUInt32WithNulls(l.name+suffix, vals, valid), nil
}

// ============================================================================
// Membership and Search
// ============================================================================

// elemEquals compares the flat element at index j against a target
// value already coerced to the element dtype. A nil target matches
// exactly the null elements.
func (l *ListSeries) elemEquals(j int, target interface{}) bool {
	if target == nil {
		return !l.values.IsValid(j)
	}
	if !l.values.IsValid(j) {
		return false
	}
	return l.values.Get(j) == target
}

func (l *ListSeries) coerceMatchTarget(item interface{}) (interface{}, error) {
	if item == nil {
		return nil, nil
	}
	if l.ElementType().IsNested() {
		return nil, typeMismatchf("list membership: unsupported element type %s", l.listType)
	}
	target, err := coerceValue(item, l.ElementType())
	if err != nil {
		return nil, typeMismatchf("list membership: %T value %v against %s elements", item, item, l.listType)
	}
	return target, nil
}

// Contains checks if sublists contain the given item, returning a
// Bool Series. A nil item checks for null elements.
func (l *ListSeries) Contains(item interface{}) (*Series, error) {
	target, err := l.coerceMatchTarget(item)
	if err != nil {
		return nil, err
	}
	out := make([]bool, l.length)
	valid := make([]bool, l.length)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			continue
		}
		valid[i] = true
		start, end := l.bounds(i)
		for j := start; j < end; j++ {
			if l.elemEquals(j, target) {
				out[i] = true
				break
			}
		}
	}
	return NewSeriesBoolWithNulls(l.name+"_contains", out, valid), nil
}

// CountMatch counts how often element occurs within each sublist as
// UInt32. Equality uses the element type's equality; a nil element
// counts the null elements.
func (l *ListSeries) CountMatch(element interface{}) (*Series, error) {
	if expr, ok := element.(Expr); ok {
		v, err := exprScalarValue(expr)
		if err != nil {
			return nil, err
		}
		element = v
	}
	target, err := l.coerceMatchTarget(element)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, l.length)
	valid := make([]bool, l.length)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			continue
		}
		valid[i] = true
		start, end := l.bounds(i)
		count := uint32(0)
		for j := start; j < end; j++ {
			if l.elemEquals(j, target) {
				count++
			}
		}
		out[i] = count
	}
	return NewSeriesUInt32WithNulls(l.name+"_count_match", out, valid), nil
}

// ============================================================================
// Boolean Reductions
// ============================================================================

// ListAll evaluates whether all boolean values in each list are true.
// Null elements are skipped; an empty sublist yields true.
func (l *ListSeries) ListAll() (*Series, error) {
	if l.ElementType() != Bool {
		return nil, typeMismatchf("list.all: expected Bool elements, got %s", l.listType)
	}
	data := l.values.Bools()
	out := make([]bool, l.length)
	valid := make([]bool, l.length)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			continue
		}
		valid[i] = true
		start, end := l.bounds(i)
		all := true
		for j := start; j < end; j++ {
			if l.values.IsValid(j) && !data[j] {
				all = false
				break
			}
		}
		out[i] = all
	}
	return NewSeriesBoolWithNulls(l.name+"_all", out, valid), nil
}

// ListAny evaluates whether any boolean value in each list is true.
// Null elements are skipped; an empty sublist yields false.
func (l *ListSeries) ListAny() (*Series, error) {
	if l.ElementType() != Bool {
		return nil, typeMismatchf("list.any: expected Bool elements, got %s", l.listType)
	}
	data := l.values.Bools()
	out := make([]bool, l.length)
	valid := make([]bool, l.length)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			continue
		}
		valid[i] = true
		start, end := l.bounds(i)
		for j := start; j < end; j++ {
			if l.values.IsValid(j) && data[j] {
				out[i] = true
				break
			}
		}
	}
	return NewSeriesBoolWithNulls(l.name+"_any", out, valid), nil
}
