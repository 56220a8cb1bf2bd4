package polars

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/bitutil"
)

// ============================================================================
// ListSeries - A series containing list values (variable-length arrays)
// ============================================================================

// ListSeries represents a column of list values where each row contains
// a variable-length list of elements of the same type.
// Uses offset-based storage: sublist i occupies values[offsets[i]:offsets[i+1]].
//
// A sublist can be empty (offsets[i] == offsets[i+1]) which is distinct
// from null (validity bit unset). The offsets and validity buffers are
// exclusively owned; the values buffer may be shared with sibling
// columns produced by zero-copy slicing. A ListSeries is immutable
// after construction: every kernel returns a new column.
type ListSeries struct {
	name     string
	listType *ListType
	offsets  []int32
	values   *Series // flattened values; may itself wrap a ListSeries
	validity []byte  // one bit per sublist, nil = no null sublists
	length   int
}

// NewListSeries creates a new ListSeries from offsets and flattened values.
// offsets must have length numRows+1, start at 0, be monotonically
// non-decreasing, and end at values.Len(). A violation fails with
// ErrInvalidLayout.
func NewListSeries(name string, offsets []int32, values *Series) (*ListSeries, error) {
	return NewListSeriesWithNulls(name, offsets, values, nil)
}

// NewListSeriesWithNulls creates a ListSeries with per-sublist nulls.
// The valid slice (one entry per sublist) marks which sublists are
// present; nil means all present.
func NewListSeriesWithNulls(name string, offsets []int32, values *Series, valid []bool) (*ListSeries, error) {
	if len(offsets) < 1 {
		return nil, invalidLayoutf("offsets must have at least 1 element")
	}
	numRows := len(offsets) - 1
	if offsets[0] != 0 {
		return nil, invalidLayoutf("first offset must be 0, got %d", offsets[0])
	}
	for i := 0; i < numRows; i++ {
		if offsets[i] > offsets[i+1] {
			return nil, invalidLayoutf("offsets decrease at row %d: %d > %d", i, offsets[i], offsets[i+1])
		}
	}
	if int(offsets[numRows]) != values.Len() {
		return nil, invalidLayoutf("last offset %d doesn't match values length %d", offsets[numRows], values.Len())
	}
	if valid != nil && len(valid) != numRows {
		return nil, invalidLayoutf("validity length %d doesn't match row count %d", len(valid), numRows)
	}

	return &ListSeries{
		name:     name,
		listType: listTypeOfValues(values),
		offsets:  offsets,
		values:   values,
		validity: validityFromBools(valid),
		length:   numRows,
	}, nil
}

// NewListSeriesFromLengths builds offsets from per-sublist lengths.
// A negative length marks a null sublist (contributing zero elements).
func NewListSeriesFromLengths(name string, lengths []int, values *Series) (*ListSeries, error) {
	offsets := make([]int32, len(lengths)+1)
	valid := make([]bool, len(lengths))
	hasNull := false
	total := int32(0)
	for i, n := range lengths {
		if n < 0 {
			valid[i] = false
			hasNull = true
		} else {
			valid[i] = true
			total += int32(n)
		}
		offsets[i+1] = total
	}
	if !hasNull {
		valid = nil
	}
	return NewListSeriesWithNulls(name, offsets, values, valid)
}

func listTypeOfValues(values *Series) *ListType {
	if values.DType() == List {
		return NewListTypeNested(List, values.ListValues().ListType())
	}
	return NewListType(values.DType())
}

// NewListSeriesFromSlicesF64 creates a ListSeries from float64 slices.
// A nil row is a null sublist; an empty non-nil row is an empty sublist.
func NewListSeriesFromSlicesF64(name string, data [][]float64) *ListSeries {
	offsets, valid := offsetsFromRows(len(data), func(i int) (int, bool) {
		return len(data[i]), data[i] != nil
	})
	total := int(offsets[len(data)])
	flat := make([]float64, 0, total)
	for _, row := range data {
		flat = append(flat, row...)
	}
	ls, _ := NewListSeriesWithNulls(name, offsets, NewSeriesFloat64("", flat), valid)
	return ls
}

// NewListSeriesFromSlicesI64 creates a ListSeries from int64 slices.
// A nil row is a null sublist.
func NewListSeriesFromSlicesI64(name string, data [][]int64) *ListSeries {
	offsets, valid := offsetsFromRows(len(data), func(i int) (int, bool) {
		return len(data[i]), data[i] != nil
	})
	total := int(offsets[len(data)])
	flat := make([]int64, 0, total)
	for _, row := range data {
		flat = append(flat, row...)
	}
	ls, _ := NewListSeriesWithNulls(name, offsets, NewSeriesInt64("", flat), valid)
	return ls
}

// NewListSeriesFromSlicesString creates a ListSeries from string slices.
// A nil row is a null sublist.
func NewListSeriesFromSlicesString(name string, data [][]string) *ListSeries {
	offsets, valid := offsetsFromRows(len(data), func(i int) (int, bool) {
		return len(data[i]), data[i] != nil
	})
	total := int(offsets[len(data)])
	flat := make([]string, 0, total)
	for _, row := range data {
		flat = append(flat, row...)
	}
	ls, _ := NewListSeriesWithNulls(name, offsets, NewSeriesString("", flat), valid)
	return ls
}

// NewListSeriesFromSlicesBool creates a ListSeries from bool slices.
// A nil row is a null sublist.
func NewListSeriesFromSlicesBool(name string, data [][]bool) *ListSeries {
	offsets, valid := offsetsFromRows(len(data), func(i int) (int, bool) {
		return len(data[i]), data[i] != nil
	})
	total := int(offsets[len(data)])
	flat := make([]bool, 0, total)
	for _, row := range data {
		flat = append(flat, row...)
	}
	ls, _ := NewListSeriesWithNulls(name, offsets, NewSeriesBool("", flat), valid)
	return ls
}

// NewListSeriesFromRows creates a ListSeries from boxed rows, each a
// slice (or nil for a null sublist); element dtype is inferred.
func NewListSeriesFromRows(name string, rows []interface{}) (*ListSeries, error) {
	return listSeriesFromBoxedRows(name, rows)
}

// NewNestedListSeries creates a List<List<T>> column: the flat values
// of the outer list are the sublists of inner.
func NewNestedListSeries(name string, offsets []int32, inner *ListSeries) (*ListSeries, error) {
	return NewListSeries(name, offsets, newListValueSeries(inner))
}

func offsetsFromRows(n int, rowAt func(i int) (length int, present bool)) ([]int32, []bool) {
	offsets := make([]int32, n+1)
	valid := make([]bool, n)
	hasNull := false
	total := int32(0)
	for i := 0; i < n; i++ {
		length, present := rowAt(i)
		valid[i] = present
		if !present {
			hasNull = true
			length = 0
		}
		total += int32(length)
		offsets[i+1] = total
	}
	if !hasNull {
		valid = nil
	}
	return offsets, valid
}

// ============================================================================
// Accessors
// ============================================================================

// Name returns the series name
func (l *ListSeries) Name() string { return l.name }

// DType returns List
func (l *ListSeries) DType() DType { return List }

// Len returns the number of rows
func (l *ListSeries) Len() int { return l.length }

// ListType returns the list type metadata
func (l *ListSeries) ListType() *ListType { return l.listType }

// ElementType returns the type of elements in the list
func (l *ListSeries) ElementType() DType { return l.listType.ElementType }

// Values returns the underlying flattened values Series
func (l *ListSeries) Values() *Series { return l.values }

// Offsets returns the offset array
func (l *ListSeries) Offsets() []int32 { return l.offsets }

// IsValid reports whether the sublist at row i is present.
func (l *ListSeries) IsValid(i int) bool {
	if i < 0 || i >= l.length {
		return false
	}
	if l.validity == nil {
		return true
	}
	return bitutil.BitIsSet(l.validity, i)
}

// IsNull reports whether the sublist at row i is null.
func (l *ListSeries) IsNull(i int) bool {
	return i >= 0 && i < l.length && !l.IsValid(i)
}

// NullCount returns the number of null sublists.
func (l *ListSeries) NullCount() int {
	if l.validity == nil {
		return 0
	}
	return l.length - bitutil.CountSetBits(l.validity, 0, l.length)
}

// HasNulls returns true if any sublist is null.
func (l *ListSeries) HasNulls() bool { return l.NullCount() > 0 }

// bounds returns the [start, end) range of sublist i in the flat
// values buffer. O(1).
func (l *ListSeries) bounds(i int) (int, int) {
	return int(l.offsets[i]), int(l.offsets[i+1])
}

// GetListLen returns the length of the list at row index.
// Null and out-of-range rows report 0; use Lengths for a null-aware column.
func (l *ListSeries) GetListLen(index int) int {
	if index < 0 || index >= l.length || !l.IsValid(index) {
		return 0
	}
	start, end := l.bounds(index)
	return end - start
}

// GetListF64 returns the list at index as []float64, or nil for a
// null row or non-Float64 elements.
func (l *ListSeries) GetListF64(index int) []float64 {
	if index < 0 || index >= l.length || !l.IsValid(index) || l.ElementType() != Float64 {
		return nil
	}
	start, end := l.bounds(index)
	result := make([]float64, end-start)
	copy(result, l.values.Float64()[start:end])
	return result
}

// GetListI64 returns the list at index as []int64, or nil for a null
// row or non-Int64 elements.
func (l *ListSeries) GetListI64(index int) []int64 {
	if index < 0 || index >= l.length || !l.IsValid(index) || l.ElementType() != Int64 {
		return nil
	}
	start, end := l.bounds(index)
	result := make([]int64, end-start)
	copy(result, l.values.Int64()[start:end])
	return result
}

// GetListBoxed returns the sublist at row index as boxed values, with
// nil entries for null elements. Returns nil for a null row.
func (l *ListSeries) GetListBoxed(index int) []interface{} {
	if index < 0 || index >= l.length || !l.IsValid(index) {
		return nil
	}
	start, end := l.bounds(index)
	result := make([]interface{}, end-start)
	for j := start; j < end; j++ {
		result[j-start] = l.values.Get(j)
	}
	return result
}

// GetElement returns a specific element from a list.
// index is the row, elemIndex is the index within that row's list.
func (l *ListSeries) GetElement(index, elemIndex int) interface{} {
	if index < 0 || index >= l.length || !l.IsValid(index) {
		return nil
	}
	start, end := l.bounds(index)
	if elemIndex < 0 || elemIndex >= end-start {
		return nil
	}
	return l.values.Get(start + elemIndex)
}

// sublistValues returns a zero-copy view of sublist i's elements as a
// flat Series.
func (l *ListSeries) sublistValues(i int) (*Series, error) {
	start, end := l.bounds(i)
	return l.values.Slice(start, end-start)
}

// Rename returns a copy with a new name; buffers are shared.
func (l *ListSeries) Rename(name string) *ListSeries {
	out := *l
	out.name = name
	return &out
}

// Slice returns rows [offset, offset+length) as a new ListSeries.
// The values buffer is shared (zero-copy); only the offset window and
// validity are rebuilt.
func (l *ListSeries) Slice(offset, length int) (*ListSeries, error) {
	if offset < 0 || length < 0 || offset+length > l.length {
		return nil, invalidLayoutf("slice [%d:%d] of list series with length %d", offset, offset+length, l.length)
	}
	base := l.offsets[offset]
	offsets := make([]int32, length+1)
	for i := 0; i <= length; i++ {
		offsets[i] = l.offsets[offset+i] - base
	}
	values := l.values
	if base != 0 || int(l.offsets[offset+length]) != values.Len() {
		var err error
		values, err = l.values.Slice(int(base), int(l.offsets[offset+length]-base))
		if err != nil {
			return nil, err
		}
	}
	var valid []bool
	if l.validity != nil {
		valid = make([]bool, length)
		for i := 0; i < length; i++ {
			valid[i] = l.IsValid(offset + i)
		}
	}
	return NewListSeriesWithNulls(l.name, offsets, values, valid)
}

// ============================================================================
// Explode
// ============================================================================

// Explode expands the list series into a flat Series with one row per
// element, plus indices mapping each output row to its source row.
// A null sublist contributes one null output row; an empty sublist
// contributes zero rows. The source offsets remain the key for
// reconstructing the original grouping.
func (l *ListSeries) Explode() (*Series, []int32) {
	if l.length == 0 {
		return l.values.Rename(l.name), nil
	}

	if l.validity == nil {
		// No null sublists: values are already flat, zero-copy.
		totalLen := int(l.offsets[l.length])
		rowIndices := make([]int32, totalLen)
		idx := 0
		for row := 0; row < l.length; row++ {
			start, end := l.bounds(row)
			for j := start; j < end; j++ {
				rowIndices[idx] = int32(row)
				idx++
			}
		}
		return l.values.Rename(l.name), rowIndices
	}

	// Null sublists inject one null row each; gather by flat index
	// with -1 marking the injected nulls.
	var gather []int32
	var rowIndices []int32
	for row := 0; row < l.length; row++ {
		if !l.IsValid(row) {
			gather = append(gather, -1)
			rowIndices = append(rowIndices, int32(row))
			continue
		}
		start, end := l.bounds(row)
		for j := start; j < end; j++ {
			gather = append(gather, int32(j))
			rowIndices = append(rowIndices, int32(row))
		}
	}
	return gatherSeries(l.values, gather).Rename(l.name), rowIndices
}

// gatherSeries builds a new Series by taking values at the given flat
// indices; a negative index produces a null.
func gatherSeries(s *Series, indices []int32) *Series {
	vals := make([]interface{}, len(indices))
	for i, idx := range indices {
		if idx >= 0 {
			vals[i] = s.Get(int(idx))
		}
	}
	dtype := s.DType()
	out, err := seriesFromAnyValues(s.Name(), dtype, vals)
	if err != nil {
		// Values originate from a typed series of the same dtype, so
		// coercion cannot fail; fall back to boxed storage regardless.
		out = NewSeriesObject(s.Name(), vals)
	}
	return out
}

// String returns a string representation
func (l *ListSeries) String() string {
	return fmt.Sprintf("ListSeries('%s', %s, len=%d)", l.name, l.listType, l.length)
}

// ============================================================================
// StructSeries - A series containing struct values (row of named fields)
// ============================================================================

// StructSeries represents a column of struct values where each row has
// the same set of named fields. Internally, it stores each field as a
// separate Series (columnar storage).
type StructSeries struct {
	name       string
	structType *StructType
	fieldNames []string
	fields     map[string]*Series
	length     int
}

// NewStructSeriesFromSeries creates a StructSeries from ordered field
// names and series. All field Series must have the same length.
func NewStructSeriesFromSeries(name string, fieldNames []string, series []*Series) (*StructSeries, error) {
	if len(fieldNames) != len(series) {
		return nil, fmt.Errorf("field names count %d doesn't match series count %d",
			len(fieldNames), len(series))
	}

	length := -1
	structFields := make([]StructField, 0, len(fieldNames))
	fields := make(map[string]*Series, len(fieldNames))
	for i, fname := range fieldNames {
		s := series[i]
		if length == -1 {
			length = s.Len()
		} else if s.Len() != length {
			return nil, fmt.Errorf("field %s has length %d, expected %d", fname, s.Len(), length)
		}
		structFields = append(structFields, StructField{Name: fname, DType: s.DType()})
		fields[fname] = s
	}
	if length == -1 {
		length = 0
	}

	return &StructSeries{
		name:       name,
		structType: NewStructType(structFields),
		fieldNames: append([]string{}, fieldNames...),
		fields:     fields,
		length:     length,
	}, nil
}

// Name returns the series name
func (s *StructSeries) Name() string { return s.name }

// DType returns Struct
func (s *StructSeries) DType() DType { return Struct }

// Len returns the number of rows
func (s *StructSeries) Len() int { return s.length }

// StructType returns the struct type metadata
func (s *StructSeries) StructType() *StructType { return s.structType }

// Field returns a specific field by name
func (s *StructSeries) Field(name string) *Series { return s.fields[name] }

// FieldNames returns the names of all fields in declaration order
func (s *StructSeries) FieldNames() []string {
	return append([]string{}, s.fieldNames...)
}

// GetRow returns all field values at a given row index as a map
func (s *StructSeries) GetRow(index int) map[string]interface{} {
	if index < 0 || index >= s.length {
		return nil
	}
	result := make(map[string]interface{}, len(s.fields))
	for name, series := range s.fields {
		result[name] = series.Get(index)
	}
	return result
}

// Unnest expands the struct into separate columns
func (s *StructSeries) Unnest() map[string]*Series {
	result := make(map[string]*Series, len(s.fields))
	for name, series := range s.fields {
		result[name] = series
	}
	return result
}

// UnnestPrefixed expands the struct with column name prefixes
func (s *StructSeries) UnnestPrefixed() map[string]*Series {
	result := make(map[string]*Series, len(s.fields))
	for name, series := range s.fields {
		prefixedName := s.name + "." + name
		result[prefixedName] = series.Rename(prefixedName)
	}
	return result
}

// String returns a string representation
func (s *StructSeries) String() string {
	return fmt.Sprintf("StructSeries('%s', %s, len=%d)", s.name, s.structType, s.length)
}
