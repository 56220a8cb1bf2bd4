package polars

import (
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow/bitutil"
)

// Series is a named, immutable column of values of a single DType.
// Validity is tracked with an Arrow-style packed bitmap (LSB first,
// bit set = value present); a nil bitmap means no nulls.
//
// A Series with dtype List wraps a ListSeries, which makes nested
// element types (List<List<T>>) representable: the flat values buffer
// of a ListSeries is itself a Series.
type Series struct {
	name  string
	dtype DType

	f64   []float64
	i64   []int64
	i32   []int32
	u32   []uint32
	bools []bool
	strs  []string
	objs  []interface{}
	list  *ListSeries

	validity []byte // nil = all valid
	length   int
}

// ============================================================================
// Constructors
// ============================================================================

// NewSeriesFloat64 creates a Float64 Series from a Go slice.
func NewSeriesFloat64(name string, data []float64) *Series {
	return &Series{name: name, dtype: Float64, f64: data, length: len(data)}
}

// NewSeriesFloat64WithNulls creates a Float64 Series with null values.
// The valid slice indicates which values are valid (true) vs null (false).
func NewSeriesFloat64WithNulls(name string, data []float64, valid []bool) *Series {
	s := NewSeriesFloat64(name, data)
	s.validity = validityFromBools(valid)
	return s
}

// NewSeriesInt64 creates an Int64 Series from a Go slice.
func NewSeriesInt64(name string, data []int64) *Series {
	return &Series{name: name, dtype: Int64, i64: data, length: len(data)}
}

// NewSeriesInt64WithNulls creates an Int64 Series with null values.
func NewSeriesInt64WithNulls(name string, data []int64, valid []bool) *Series {
	s := NewSeriesInt64(name, data)
	s.validity = validityFromBools(valid)
	return s
}

// NewSeriesInt32 creates an Int32 Series from a Go slice.
func NewSeriesInt32(name string, data []int32) *Series {
	return &Series{name: name, dtype: Int32, i32: data, length: len(data)}
}

// NewSeriesInt32WithNulls creates an Int32 Series with null values.
func NewSeriesInt32WithNulls(name string, data []int32, valid []bool) *Series {
	s := NewSeriesInt32(name, data)
	s.validity = validityFromBools(valid)
	return s
}

// NewSeriesUInt32 creates a UInt32 Series from a Go slice.
func NewSeriesUInt32(name string, data []uint32) *Series {
	return &Series{name: name, dtype: UInt32, u32: data, length: len(data)}
}

// NewSeriesUInt32WithNulls creates a UInt32 Series with null values.
func NewSeriesUInt32WithNulls(name string, data []uint32, valid []bool) *Series {
	s := NewSeriesUInt32(name, data)
	s.validity = validityFromBools(valid)
	return s
}

// NewSeriesBool creates a Bool Series from a Go slice.
func NewSeriesBool(name string, data []bool) *Series {
	return &Series{name: name, dtype: Bool, bools: data, length: len(data)}
}

// NewSeriesBoolWithNulls creates a Bool Series with null values.
func NewSeriesBoolWithNulls(name string, data []bool, valid []bool) *Series {
	s := NewSeriesBool(name, data)
	s.validity = validityFromBools(valid)
	return s
}

// NewSeriesString creates a String Series from a Go slice.
func NewSeriesString(name string, data []string) *Series {
	return &Series{name: name, dtype: String, strs: data, length: len(data)}
}

// NewSeriesStringWithNulls creates a String Series with null values.
func NewSeriesStringWithNulls(name string, data []string, valid []bool) *Series {
	s := NewSeriesString(name, data)
	s.validity = validityFromBools(valid)
	return s
}

// NewSeriesObject creates an Object (boxed generic) Series. Nil
// entries are nulls.
func NewSeriesObject(name string, data []interface{}) *Series {
	valid := make([]bool, len(data))
	for i, v := range data {
		valid[i] = v != nil
	}
	return &Series{
		name: name, dtype: Object, objs: data,
		validity: validityFromBools(valid), length: len(data),
	}
}

// newListValueSeries wraps a ListSeries so it can serve as the flat
// values buffer of an outer ListSeries.
func newListValueSeries(l *ListSeries) *Series {
	return &Series{name: l.Name(), dtype: List, list: l, length: l.Len()}
}

// AsSeries wraps the list column as a Series of dtype List, letting
// it live in a DataFrame next to flat columns.
func (l *ListSeries) AsSeries() *Series {
	return newListValueSeries(l)
}

// validityFromBools packs a bool slice into an Arrow LSB-first bitmap.
// Returns nil when every value is valid.
func validityFromBools(valid []bool) []byte {
	if valid == nil {
		return nil
	}
	hasNull := false
	for _, v := range valid {
		if !v {
			hasNull = true
			break
		}
	}
	if !hasNull {
		return nil
	}
	bitmap := make([]byte, bitutil.BytesForBits(int64(len(valid))))
	for i, v := range valid {
		if v {
			bitutil.SetBit(bitmap, i)
		}
	}
	return bitmap
}

// ============================================================================
// Accessors
// ============================================================================

// Name returns the series name.
func (s *Series) Name() string { return s.name }

// DType returns the data type.
func (s *Series) DType() DType { return s.dtype }

// Len returns the number of elements.
func (s *Series) Len() int { return s.length }

// IsValid reports whether the value at index i is present.
func (s *Series) IsValid(i int) bool {
	if i < 0 || i >= s.length {
		return false
	}
	if s.dtype == List {
		return s.list.IsValid(i)
	}
	if s.validity == nil {
		return true
	}
	return bitutil.BitIsSet(s.validity, i)
}

// IsNull reports whether the value at index i is null.
func (s *Series) IsNull(i int) bool {
	return i >= 0 && i < s.length && !s.IsValid(i)
}

// NullCount returns the number of null values.
func (s *Series) NullCount() int {
	if s.dtype == List {
		return s.list.NullCount()
	}
	if s.validity == nil {
		return 0
	}
	return s.length - bitutil.CountSetBits(s.validity, 0, s.length)
}

// HasNulls returns true if the series has any null values.
func (s *Series) HasNulls() bool { return s.NullCount() > 0 }

// Float64 returns the raw float64 storage, or nil for other dtypes.
func (s *Series) Float64() []float64 { return s.f64 }

// Int64 returns the raw int64 storage, or nil for other dtypes.
func (s *Series) Int64() []int64 { return s.i64 }

// Int32 returns the raw int32 storage, or nil for other dtypes.
func (s *Series) Int32() []int32 { return s.i32 }

// UInt32 returns the raw uint32 storage, or nil for other dtypes.
func (s *Series) UInt32() []uint32 { return s.u32 }

// Bools returns the raw bool storage, or nil for other dtypes.
func (s *Series) Bools() []bool { return s.bools }

// Strings returns the raw string storage, or nil for other dtypes.
func (s *Series) Strings() []string { return s.strs }

// Objects returns the boxed storage, or nil for other dtypes.
func (s *Series) Objects() []interface{} { return s.objs }

// ListValues returns the wrapped ListSeries when dtype is List.
func (s *Series) ListValues() *ListSeries { return s.list }

// Get returns the boxed value at index i, or nil when the value is
// null or the index is out of range. List values come back as []interface{}.
func (s *Series) Get(i int) interface{} {
	if i < 0 || i >= s.length || !s.IsValid(i) {
		return nil
	}
	switch s.dtype {
	case Float64:
		return s.f64[i]
	case Int64:
		return s.i64[i]
	case Int32:
		return s.i32[i]
	case UInt32:
		return s.u32[i]
	case Bool:
		return s.bools[i]
	case String:
		return s.strs[i]
	case Object:
		return s.objs[i]
	case List:
		return s.list.GetListBoxed(i)
	}
	return nil
}

// Rename returns a copy of the series with a new name. Buffers are
// shared; a Series is immutable after construction.
func (s *Series) Rename(name string) *Series {
	out := *s
	out.name = name
	return &out
}

// Slice returns s[offset:offset+length]. Value buffers are shared
// with the parent (copy-on-write discipline); the validity bitmap is
// re-packed for the new range.
func (s *Series) Slice(offset, length int) (*Series, error) {
	if offset < 0 || length < 0 || offset+length > s.length {
		return nil, invalidLayoutf("slice [%d:%d] of series with length %d", offset, offset+length, s.length)
	}
	if s.dtype == List {
		inner, err := s.list.Slice(offset, length)
		if err != nil {
			return nil, err
		}
		return newListValueSeries(inner), nil
	}
	out := &Series{name: s.name, dtype: s.dtype, length: length}
	switch s.dtype {
	case Float64:
		out.f64 = s.f64[offset : offset+length]
	case Int64:
		out.i64 = s.i64[offset : offset+length]
	case Int32:
		out.i32 = s.i32[offset : offset+length]
	case UInt32:
		out.u32 = s.u32[offset : offset+length]
	case Bool:
		out.bools = s.bools[offset : offset+length]
	case String:
		out.strs = s.strs[offset : offset+length]
	case Object:
		out.objs = s.objs[offset : offset+length]
	}
	if s.validity != nil {
		valid := make([]bool, length)
		for i := 0; i < length; i++ {
			valid[i] = bitutil.BitIsSet(s.validity, offset+i)
		}
		out.validity = validityFromBools(valid)
	}
	return out, nil
}

// String returns a short description.
func (s *Series) String() string {
	return fmt.Sprintf("Series('%s', %s, len=%d)", s.name, s.dtype, s.length)
}

// ============================================================================
// Boxed Construction and Type Inference
// ============================================================================

// inferDType maps a boxed Go value to the narrowest Series dtype.
func inferDType(v interface{}) DType {
	switch v.(type) {
	case float64, float32:
		return Float64
	case int, int64:
		return Int64
	case int32:
		return Int32
	case uint32:
		return UInt32
	case bool:
		return Bool
	case string:
		return String
	case []interface{}, []float64, []int64, []int32, []string, []bool, *Series, *ListSeries:
		return List
	default:
		return Object
	}
}

// widenDType reports whether values of dtype have a shared numeric
// supertype with target and returns it. Used by result-type
// validation before falling back to Object.
func widenDType(a, b DType) (DType, bool) {
	if a == b {
		return a, true
	}
	if a.IsNumeric() && b.IsNumeric() {
		if a.IsFloat() || b.IsFloat() {
			return Float64, true
		}
		return Int64, true
	}
	return Object, false
}

// coerceValue converts a boxed value to the representation required
// by dtype. Returns an ErrTypeCoercion error when the value cannot be
// represented.
func coerceValue(v interface{}, dtype DType) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch dtype {
	case Float64:
		switch x := v.(type) {
		case float64:
			return x, nil
		case float32:
			return float64(x), nil
		case int:
			return float64(x), nil
		case int64:
			return float64(x), nil
		case int32:
			return float64(x), nil
		case uint32:
			return float64(x), nil
		}
	case Int64:
		switch x := v.(type) {
		case int:
			return int64(x), nil
		case int64:
			return x, nil
		case int32:
			return int64(x), nil
		case uint32:
			return int64(x), nil
		case float64:
			if x == math.Trunc(x) {
				return int64(x), nil
			}
		}
	case Int32:
		switch x := v.(type) {
		case int:
			if x >= math.MinInt32 && x <= math.MaxInt32 {
				return int32(x), nil
			}
		case int64:
			if x >= math.MinInt32 && x <= math.MaxInt32 {
				return int32(x), nil
			}
		case int32:
			return x, nil
		}
	case UInt32:
		switch x := v.(type) {
		case uint32:
			return x, nil
		case int:
			if x >= 0 && int64(x) <= math.MaxUint32 {
				return uint32(x), nil
			}
		case int64:
			if x >= 0 && x <= math.MaxUint32 {
				return uint32(x), nil
			}
		}
	case Bool:
		if x, ok := v.(bool); ok {
			return x, nil
		}
	case String:
		if x, ok := v.(string); ok {
			return x, nil
		}
	case Object:
		return v, nil
	case List:
		return v, nil
	}
	return nil, coercionErrf("cannot represent %T value %v as %s", v, v, dtype)
}

// seriesFromAnyValues materializes boxed per-row values into a typed
// Series of the given dtype. Nil entries become nulls. List results
// are reassembled into a ListSeries-backed column.
func seriesFromAnyValues(name string, dtype DType, vals []interface{}) (*Series, error) {
	n := len(vals)
	valid := make([]bool, n)
	for i, v := range vals {
		valid[i] = v != nil
	}

	switch dtype {
	case Float64:
		data := make([]float64, n)
		for i, v := range vals {
			if v == nil {
				continue
			}
			c, err := coerceValue(v, Float64)
			if err != nil {
				return nil, err
			}
			data[i] = c.(float64)
		}
		return NewSeriesFloat64WithNulls(name, data, valid), nil
	case Int64:
		data := make([]int64, n)
		for i, v := range vals {
			if v == nil {
				continue
			}
			c, err := coerceValue(v, Int64)
			if err != nil {
				return nil, err
			}
			data[i] = c.(int64)
		}
		return NewSeriesInt64WithNulls(name, data, valid), nil
	case Int32:
		data := make([]int32, n)
		for i, v := range vals {
			if v == nil {
				continue
			}
			c, err := coerceValue(v, Int32)
			if err != nil {
				return nil, err
			}
			data[i] = c.(int32)
		}
		return NewSeriesInt32WithNulls(name, data, valid), nil
	case UInt32:
		data := make([]uint32, n)
		for i, v := range vals {
			if v == nil {
				continue
			}
			c, err := coerceValue(v, UInt32)
			if err != nil {
				return nil, err
			}
			data[i] = c.(uint32)
		}
		return NewSeriesUInt32WithNulls(name, data, valid), nil
	case Bool:
		data := make([]bool, n)
		for i, v := range vals {
			if v == nil {
				continue
			}
			c, err := coerceValue(v, Bool)
			if err != nil {
				return nil, err
			}
			data[i] = c.(bool)
		}
		return NewSeriesBoolWithNulls(name, data, valid), nil
	case String:
		data := make([]string, n)
		for i, v := range vals {
			if v == nil {
				continue
			}
			c, err := coerceValue(v, String)
			if err != nil {
				return nil, err
			}
			data[i] = c.(string)
		}
		return NewSeriesStringWithNulls(name, data, valid), nil
	case Object:
		return NewSeriesObject(name, vals), nil
	case List:
		ls, err := listSeriesFromBoxedRows(name, vals)
		if err != nil {
			return nil, err
		}
		return newListValueSeries(ls), nil
	case Null:
		// Zero-row or all-null column; store as Object with no values.
		return NewSeriesObject(name, vals), nil
	}
	return nil, typeMismatchf("cannot build series of dtype %s", dtype)
}

// boxedRowElems normalizes one boxed list row to []interface{}.
// Returns nil (null row) for nil input.
func boxedRowElems(v interface{}) ([]interface{}, error) {
	switch row := v.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		return row, nil
	case []float64:
		out := make([]interface{}, len(row))
		for i, e := range row {
			out[i] = e
		}
		return out, nil
	case []int64:
		out := make([]interface{}, len(row))
		for i, e := range row {
			out[i] = e
		}
		return out, nil
	case []int32:
		out := make([]interface{}, len(row))
		for i, e := range row {
			out[i] = e
		}
		return out, nil
	case []string:
		out := make([]interface{}, len(row))
		for i, e := range row {
			out[i] = e
		}
		return out, nil
	case []bool:
		out := make([]interface{}, len(row))
		for i, e := range row {
			out[i] = e
		}
		return out, nil
	case *Series:
		out := make([]interface{}, row.Len())
		for i := 0; i < row.Len(); i++ {
			out[i] = row.Get(i)
		}
		return out, nil
	case *ListSeries:
		out := make([]interface{}, row.Len())
		for i := 0; i < row.Len(); i++ {
			out[i] = row.GetListBoxed(i)
		}
		return out, nil
	}
	return nil, typeMismatchf("expected a list-like row, got %T", v)
}

// listSeriesFromBoxedRows assembles per-row list values (each a
// slice, Series or nil) into a ListSeries, inferring the element
// dtype the same way Apply infers scalar result types.
func listSeriesFromBoxedRows(name string, rows []interface{}) (*ListSeries, error) {
	flat := make([]interface{}, 0, len(rows))
	offsets := make([]int32, len(rows)+1)
	valid := make([]bool, len(rows))

	for i, r := range rows {
		elems, err := boxedRowElems(r)
		if err != nil {
			return nil, err
		}
		valid[i] = r != nil
		flat = append(flat, elems...)
		offsets[i+1] = int32(len(flat))
	}

	elemType := Null
	for _, v := range flat {
		if v == nil {
			continue
		}
		dt := inferDType(v)
		if elemType == Null {
			elemType = dt
			continue
		}
		if dt != elemType {
			widened, ok := widenDType(elemType, dt)
			if !ok {
				elemType = Object
				break
			}
			elemType = widened
		}
	}
	if elemType == Null {
		elemType = Object
	}

	values, err := seriesFromAnyValues("", elemType, flat)
	if err != nil {
		return nil, err
	}
	return NewListSeriesWithNulls(name, offsets, values, valid)
}
