package polars

import (
	"sort"
	"strings"

	"golang.org/x/exp/constraints"
)

// NullBehavior controls how diff handles the undefined leading entries.
type NullBehavior int

const (
	// NullBehaviorIgnore keeps the output length equal to the input
	// length, with leading nulls for undefined differences.
	NullBehaviorIgnore NullBehavior = iota
	// NullBehaviorDrop removes the undefined leading entries,
	// shortening each output sublist by n.
	NullBehaviorDrop
)

// ============================================================================
// Generic Sublist Driver
// ============================================================================

// mapSublists applies a per-sublist transform over typed flat storage
// and reassembles a new ListSeries. A null input sublist propagates to
// a null output sublist without invoking the transform. The valid
// slice passed to fn is nil when every element of the sublist is
// present.
func mapSublists[T any](
	l *ListSeries,
	data []T,
	build func(name string, vals []T, valid []bool) (*Series, error),
	fn func(vals []T, valid []bool) ([]T, []bool, error),
) (*ListSeries, error) {
	var outVals []T
	var outValid []bool
	outHasNull := false
	offsets := make([]int32, l.length+1)
	rowValid := make([]bool, l.length)
	elemNulls := l.values.HasNulls()

	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			offsets[i+1] = offsets[i]
			continue
		}
		rowValid[i] = true
		start, end := l.bounds(i)
		var valid []bool
		if elemNulls {
			valid = make([]bool, end-start)
			for j := start; j < end; j++ {
				valid[j-start] = l.values.IsValid(j)
			}
		}
		vals, vvalid, err := fn(data[start:end], valid)
		if err != nil {
			return nil, err
		}
		outVals = append(outVals, vals...)
		if vvalid == nil {
			vvalid = make([]bool, len(vals))
			for k := range vvalid {
				vvalid[k] = true
			}
		}
		for _, v := range vvalid {
			if !v {
				outHasNull = true
			}
		}
		outValid = append(outValid, vvalid...)
		offsets[i+1] = int32(len(outVals))
	}

	if !outHasNull {
		outValid = nil
	}
	values, err := build("", outVals, outValid)
	if err != nil {
		return nil, err
	}
	if !l.HasNulls() {
		rowValid = nil
	}
	out, err := NewListSeriesWithNulls(l.name, offsets, values, rowValid)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func buildF64(name string, vals []float64, valid []bool) (*Series, error) {
	return NewSeriesFloat64WithNulls(name, vals, valid), nil
}
func buildI64(name string, vals []int64, valid []bool) (*Series, error) {
	return NewSeriesInt64WithNulls(name, vals, valid), nil
}
func buildI32(name string, vals []int32, valid []bool) (*Series, error) {
	return NewSeriesInt32WithNulls(name, vals, valid), nil
}
func buildU32(name string, vals []uint32, valid []bool) (*Series, error) {
	return NewSeriesUInt32WithNulls(name, vals, valid), nil
}
func buildStr(name string, vals []string, valid []bool) (*Series, error) {
	return NewSeriesStringWithNulls(name, vals, valid), nil
}
func buildBool(name string, vals []bool, valid []bool) (*Series, error) {
	return NewSeriesBoolWithNulls(name, vals, valid), nil
}

// buildBoxedFor builds the flat values series for boxed kernels over
// nested or Object element types.
func buildBoxedFor(elem DType) func(name string, vals []interface{}, valid []bool) (*Series, error) {
	return func(name string, vals []interface{}, valid []bool) (*Series, error) {
		if valid != nil {
			for i, v := range valid {
				if !v {
					vals[i] = nil
				}
			}
		}
		return seriesFromAnyValues(name, elem, vals)
	}
}

// boxedFlat materializes the flat values buffer as boxed values.
func (l *ListSeries) boxedFlat() []interface{} {
	out := make([]interface{}, l.values.Len())
	for j := range out {
		out[j] = l.values.Get(j)
	}
	return out
}

func validAt(valid []bool, k int) bool {
	return valid == nil || valid[k]
}

// ============================================================================
// Reordering Kernels
// ============================================================================

func sortSublist[T constraints.Ordered](descending bool) func(vals []T, valid []bool) ([]T, []bool, error) {
	return func(vals []T, valid []bool) ([]T, []bool, error) {
		n := len(vals)
		present := make([]int, 0, n)
		nulls := make([]int, 0)
		for k := 0; k < n; k++ {
			if validAt(valid, k) {
				present = append(present, k)
			} else {
				nulls = append(nulls, k)
			}
		}
		sort.SliceStable(present, func(a, b int) bool {
			if descending {
				return vals[present[a]] > vals[present[b]]
			}
			return vals[present[a]] < vals[present[b]]
		})
		outVals := make([]T, 0, n)
		var outValid []bool
		if valid != nil {
			outValid = make([]bool, 0, n)
		}
		for _, k := range present {
			outVals = append(outVals, vals[k])
			if outValid != nil {
				outValid = append(outValid, true)
			}
		}
		// Nulls sort last regardless of direction.
		for range nulls {
			var zero T
			outVals = append(outVals, zero)
			outValid = append(outValid, false)
		}
		return outVals, outValid, nil
	}
}

func sortBoolSublist(descending bool) func(vals []bool, valid []bool) ([]bool, []bool, error) {
	return func(vals []bool, valid []bool) ([]bool, []bool, error) {
		n := len(vals)
		present := make([]int, 0, n)
		nulls := make([]int, 0)
		for k := 0; k < n; k++ {
			if validAt(valid, k) {
				present = append(present, k)
			} else {
				nulls = append(nulls, k)
			}
		}
		// false orders before true.
		sort.SliceStable(present, func(a, b int) bool {
			if descending {
				return vals[present[a]] && !vals[present[b]]
			}
			return !vals[present[a]] && vals[present[b]]
		})
		outVals := make([]bool, 0, n)
		var outValid []bool
		if valid != nil {
			outValid = make([]bool, 0, n)
		}
		for _, k := range present {
			outVals = append(outVals, vals[k])
			if outValid != nil {
				outValid = append(outValid, true)
			}
		}
		for range nulls {
			outVals = append(outVals, false)
			outValid = append(outValid, false)
		}
		return outVals, outValid, nil
	}
}

// ListSort returns a new ListSeries with each sublist's elements
// stably sorted. Nulls sort last regardless of direction.
func (l *ListSeries) ListSort(descending bool) (*ListSeries, error) {
	switch l.ElementType() {
	case Float64:
		return mapSublists(l, l.values.Float64(), buildF64, sortSublist[float64](descending))
	case Int64:
		return mapSublists(l, l.values.Int64(), buildI64, sortSublist[int64](descending))
	case Int32:
		return mapSublists(l, l.values.Int32(), buildI32, sortSublist[int32](descending))
	case UInt32:
		return mapSublists(l, l.values.UInt32(), buildU32, sortSublist[uint32](descending))
	case String:
		return mapSublists(l, l.values.Strings(), buildStr, sortSublist[string](descending))
	case Bool:
		return mapSublists(l, l.values.Bools(), buildBool, sortBoolSublist(descending))
	}
	return nil, typeMismatchf("list.sort: unsupported element type %s", l.listType)
}

func reverseSublist[T any](vals []T, valid []bool) ([]T, []bool, error) {
	n := len(vals)
	outVals := make([]T, n)
	var outValid []bool
	if valid != nil {
		outValid = make([]bool, n)
	}
	for k := 0; k < n; k++ {
		outVals[k] = vals[n-1-k]
		if outValid != nil {
			outValid[k] = valid[n-1-k]
		}
	}
	return outVals, outValid, nil
}

// ListReverse reverses each sublist.
func (l *ListSeries) ListReverse() (*ListSeries, error) {
	return l.dispatchAny(reverseSublist[float64], reverseSublist[int64], reverseSublist[int32],
		reverseSublist[uint32], reverseSublist[string], reverseSublist[bool], reverseSublist[interface{}])
}

func uniqueSublist[T comparable](vals []T, valid []bool) ([]T, []bool, error) {
	seen := make(map[T]struct{}, len(vals))
	seenNull := false
	outVals := make([]T, 0, len(vals))
	var outValid []bool
	if valid != nil {
		outValid = make([]bool, 0, len(vals))
	}
	for k, v := range vals {
		if !validAt(valid, k) {
			if seenNull {
				continue
			}
			seenNull = true
			var zero T
			outVals = append(outVals, zero)
			outValid = append(outValid, false)
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		outVals = append(outVals, v)
		if outValid != nil {
			outValid = append(outValid, true)
		}
	}
	return outVals, outValid, nil
}

// ListUnique returns the distinct values of each sublist in order of
// first occurrence. Null is a distinct value.
func (l *ListSeries) ListUnique() (*ListSeries, error) {
	switch l.ElementType() {
	case Float64:
		return mapSublists(l, l.values.Float64(), buildF64, uniqueSublist[float64])
	case Int64:
		return mapSublists(l, l.values.Int64(), buildI64, uniqueSublist[int64])
	case Int32:
		return mapSublists(l, l.values.Int32(), buildI32, uniqueSublist[int32])
	case UInt32:
		return mapSublists(l, l.values.UInt32(), buildU32, uniqueSublist[uint32])
	case String:
		return mapSublists(l, l.values.Strings(), buildStr, uniqueSublist[string])
	case Bool:
		return mapSublists(l, l.values.Bools(), buildBool, uniqueSublist[bool])
	}
	return nil, typeMismatchf("list.unique: unsupported element type %s", l.listType)
}

func shiftSublist[T any](periods int) func(vals []T, valid []bool) ([]T, []bool, error) {
	return func(vals []T, valid []bool) ([]T, []bool, error) {
		n := len(vals)
		outVals := make([]T, n)
		outValid := make([]bool, n)
		for k := 0; k < n; k++ {
			src := k - periods
			if src < 0 || src >= n {
				continue
			}
			outVals[k] = vals[src]
			outValid[k] = validAt(valid, src)
		}
		return outVals, outValid, nil
	}
}

// ListShift shifts each sublist's values by the given period. Positive
// periods shift right (nulls at the head); negative shift left. The
// output sublist length equals the input length.
func (l *ListSeries) ListShift(periods int) (*ListSeries, error) {
	return l.dispatchAny(shiftSublist[float64](periods), shiftSublist[int64](periods),
		shiftSublist[int32](periods), shiftSublist[uint32](periods),
		shiftSublist[string](periods), shiftSublist[bool](periods), shiftSublist[interface{}](periods))
}

func diffSublist[T number](n int, behavior NullBehavior) func(vals []T, valid []bool) ([]T, []bool, error) {
	return func(vals []T, valid []bool) ([]T, []bool, error) {
		length := len(vals)
		outVals := make([]T, length)
		outValid := make([]bool, length)
		for k := n; k < length; k++ {
			if validAt(valid, k) && validAt(valid, k-n) {
				outVals[k] = vals[k] - vals[k-n]
				outValid[k] = true
			}
		}
		if behavior == NullBehaviorDrop {
			if n >= length {
				return nil, nil, nil
			}
			return outVals[n:], outValid[n:], nil
		}
		return outVals, outValid, nil
	}
}

// ListDiff calculates the n-th discrete difference of every sublist.
// With NullBehaviorIgnore the output keeps the input length with
// leading nulls; with NullBehaviorDrop the undefined leading entries
// are removed.
func (l *ListSeries) ListDiff(n int, behavior NullBehavior) (*ListSeries, error) {
	if n < 0 {
		return nil, invalidLayoutf("list.diff: negative n %d", n)
	}
	switch l.ElementType() {
	case Float64:
		return mapSublists(l, l.values.Float64(), buildF64, diffSublist[float64](n, behavior))
	case Int64:
		return mapSublists(l, l.values.Int64(), buildI64, diffSublist[int64](n, behavior))
	case Int32:
		return mapSublists(l, l.values.Int32(), buildI32, diffSublist[int32](n, behavior))
	}
	return nil, typeMismatchf("list.diff: unsupported element type %s", l.listType)
}

// ============================================================================
// Slicing Kernels
// ============================================================================

// sliceRange resolves a per-sublist slice request against a sublist
// of the given length. length < 0 means "to the end". Out-of-range
// offsets clamp to an empty range.
func sliceRange(offset, length, n int) (int, int) {
	start := offset
	if start < 0 {
		start = n + start
		if start < 0 {
			start = 0
		}
	}
	if start > n {
		start = n
	}
	end := n
	if length >= 0 {
		end = start + length
		if end > n {
			end = n
		}
	}
	return start, end
}

func sliceSublist[T any](offset, length int) func(vals []T, valid []bool) ([]T, []bool, error) {
	return func(vals []T, valid []bool) ([]T, []bool, error) {
		start, end := sliceRange(offset, length, len(vals))
		var outValid []bool
		if valid != nil {
			outValid = valid[start:end]
		}
		return vals[start:end], outValid, nil
	}
}

// ListSlice slices every sublist. offset may be negative (from the
// end); length < 0 means "to the end". An out-of-range offset yields
// an empty sublist, not an error.
func (l *ListSeries) ListSlice(offset, length int) (*ListSeries, error) {
	return l.dispatchAny(sliceSublist[float64](offset, length), sliceSublist[int64](offset, length),
		sliceSublist[int32](offset, length), sliceSublist[uint32](offset, length),
		sliceSublist[string](offset, length), sliceSublist[bool](offset, length),
		sliceSublist[interface{}](offset, length))
}

// ListHead slices the first n values of every sublist.
func (l *ListSeries) ListHead(n int) (*ListSeries, error) {
	return l.ListSlice(0, n)
}

// ListTail slices the last n values of every sublist.
func (l *ListSeries) ListTail(n int) (*ListSeries, error) {
	return l.ListSlice(-n, n)
}

// dispatchAny routes a structural kernel that works for every element
// type, using the boxed path for nested and Object elements.
func (l *ListSeries) dispatchAny(
	f64 func([]float64, []bool) ([]float64, []bool, error),
	i64 func([]int64, []bool) ([]int64, []bool, error),
	i32 func([]int32, []bool) ([]int32, []bool, error),
	u32 func([]uint32, []bool) ([]uint32, []bool, error),
	str func([]string, []bool) ([]string, []bool, error),
	b func([]bool, []bool) ([]bool, []bool, error),
	boxed func([]interface{}, []bool) ([]interface{}, []bool, error),
) (*ListSeries, error) {
	switch l.ElementType() {
	case Float64:
		return mapSublists(l, l.values.Float64(), buildF64, f64)
	case Int64:
		return mapSublists(l, l.values.Int64(), buildI64, i64)
	case Int32:
		return mapSublists(l, l.values.Int32(), buildI32, i32)
	case UInt32:
		return mapSublists(l, l.values.UInt32(), buildU32, u32)
	case String:
		return mapSublists(l, l.values.Strings(), buildStr, str)
	case Bool:
		return mapSublists(l, l.values.Bools(), buildBool, b)
	case List, Object:
		return mapSublists(l, l.boxedFlat(), buildBoxedFor(l.ElementType()), boxed)
	}
	return nil, typeMismatchf("unsupported element type %s", l.listType)
}

// ============================================================================
// Positional Indexing
// ============================================================================

// ListGet returns the value at index within each sublist. Negative
// indexing is supported (-1 is the last element). An out-of-bounds
// index yields null, never an error.
func (l *ListSeries) ListGet(index int) (*Series, error) {
	vals := make([]interface{}, l.length)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			continue
		}
		start, end := l.bounds(i)
		n := end - start
		idx := index
		if idx < 0 {
			idx = n + idx
		}
		if idx < 0 || idx >= n {
			continue
		}
		vals[i] = l.values.Get(start + idx)
	}
	return seriesFromAnyValues(l.name, l.ElementType(), vals)
}

// ListFirst gets the first value of each sublist.
func (l *ListSeries) ListFirst() (*Series, error) { return l.ListGet(0) }

// ListLast gets the last value of each sublist.
func (l *ListSeries) ListLast() (*Series, error) { return l.ListGet(-1) }

// ListTake takes elements by the given shared indices from every
// sublist. With nullOnOOB=false (the cheaper default) an out-of-bounds
// index fails with ErrIndexOutOfBounds; with nullOnOOB=true the
// offending element becomes null.
func (l *ListSeries) ListTake(indices []int, nullOnOOB bool) (*ListSeries, error) {
	perRow := make([][]int, l.length)
	for i := range perRow {
		perRow[i] = indices
	}
	return l.ListTakeByRow(perRow, nullOnOOB)
}

// ListTakeByRow takes elements using a separate index list per row.
func (l *ListSeries) ListTakeByRow(indices [][]int, nullOnOOB bool) (*ListSeries, error) {
	if len(indices) != l.length {
		return nil, invalidLayoutf("list.take: %d index lists for %d rows", len(indices), l.length)
	}
	rows := make([]interface{}, l.length)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			continue
		}
		start, end := l.bounds(i)
		n := end - start
		row := make([]interface{}, 0, len(indices[i]))
		for _, idx := range indices[i] {
			resolved := idx
			if resolved < 0 {
				resolved = n + resolved
			}
			if resolved < 0 || resolved >= n {
				if !nullOnOOB {
					return nil, indexOOBf("list.take: index %d out of bounds for sublist of length %d at row %d", idx, n, i)
				}
				row = append(row, nil)
				continue
			}
			row = append(row, l.values.Get(start+resolved))
		}
		rows[i] = row
	}
	out, err := listSeriesFromBoxedRows(l.name, rows)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ============================================================================
// Join and Concat
// ============================================================================

// ListJoin joins all string items in each sublist with the separator.
// Fails with ErrTypeMismatch for non-String elements. A sublist
// containing any null element yields null for that row; this exact
// behavior is part of the contract.
func (l *ListSeries) ListJoin(separator string) (*Series, error) {
	if l.ElementType() != String {
		return nil, typeMismatchf("list.join: expected String elements, got %s", l.listType)
	}
	data := l.values.Strings()
	out := make([]string, l.length)
	valid := make([]bool, l.length)
	for i := 0; i < l.length; i++ {
		if !l.IsValid(i) {
			continue
		}
		start, end := l.bounds(i)
		nullElem := false
		for j := start; j < end; j++ {
			if !l.values.IsValid(j) {
				nullElem = true
				break
			}
		}
		if nullElem {
			continue
		}
		valid[i] = true
		out[i] = strings.Join(data[start:end], separator)
	}
	return NewSeriesStringWithNulls(l.name, out, valid), nil
}

// ListConcat appends the sublists of the other list columns to this
// one, row by row. All inputs must have the same length and element
// type; a null row in any input yields a null output row.
func (l *ListSeries) ListConcat(others ...*ListSeries) (*ListSeries, error) {
	inputs := append([]*ListSeries{l}, others...)
	for _, in := range inputs[1:] {
		if in.Len() != l.length {
			return nil, invalidLayoutf("list.concat: length %d != %d", in.Len(), l.length)
		}
		if in.ElementType() != l.ElementType() {
			return nil, typeMismatchf("list.concat: element type %s != %s", in.listType, l.listType)
		}
	}
	rows := make([]interface{}, l.length)
	for i := 0; i < l.length; i++ {
		var row []interface{}
		null := false
		for _, in := range inputs {
			if !in.IsValid(i) {
				null = true
				break
			}
			row = append(row, in.GetListBoxed(i)...)
		}
		if null {
			continue
		}
		if row == nil {
			row = []interface{}{}
		}
		rows[i] = row
	}
	return listSeriesFromBoxedRows(l.name, rows)
}
