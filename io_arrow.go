package polars

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ============================================================================
// Arrow Export
// ============================================================================

// ToArrow exports a DataFrame to an Arrow Record.
// The caller is responsible for calling Release() on the returned Record.
func (df *DataFrame) ToArrow(mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	fields := make([]arrow.Field, df.Width())
	for i, col := range df.columns {
		arrowType, err := seriesArrowType(col)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name(), err)
		}
		fields[i] = arrow.Field{Name: col.Name(), Type: arrowType, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	arrays := make([]arrow.Array, df.Width())
	for i, col := range df.columns {
		arr, err := seriesToArrowArray(col, mem)
		if err != nil {
			for j := 0; j < i; j++ {
				arrays[j].Release()
			}
			return nil, fmt.Errorf("column %s: %w", col.Name(), err)
		}
		arrays[i] = arr
	}

	record := array.NewRecord(schema, arrays, int64(df.Height()))

	// Record retains the arrays.
	for _, arr := range arrays {
		arr.Release()
	}
	return record, nil
}

// ToArrow exports the list column as a one-column Arrow Record.
func (l *ListSeries) ToArrow(mem memory.Allocator) (arrow.Record, error) {
	df, err := NewDataFrame(l.AsSeries())
	if err != nil {
		return nil, err
	}
	return df.ToArrow(mem)
}

// seriesArrowType maps a column to its Arrow DataType, descending
// into list element types.
func seriesArrowType(s *Series) (arrow.DataType, error) {
	if s.DType() == List {
		inner, err := seriesArrowType(s.ListValues().Values())
		if err != nil {
			return nil, err
		}
		return arrow.ListOf(inner), nil
	}
	return dtypeToArrowType(s.DType())
}

// dtypeToArrowType converts a flat DType to an Arrow DataType
func dtypeToArrowType(dtype DType) (arrow.DataType, error) {
	switch dtype {
	case Float64:
		return arrow.PrimitiveTypes.Float64, nil
	case Float32:
		return arrow.PrimitiveTypes.Float32, nil
	case Int64:
		return arrow.PrimitiveTypes.Int64, nil
	case Int32:
		return arrow.PrimitiveTypes.Int32, nil
	case UInt64:
		return arrow.PrimitiveTypes.Uint64, nil
	case UInt32:
		return arrow.PrimitiveTypes.Uint32, nil
	case Bool:
		return arrow.FixedWidthTypes.Boolean, nil
	case String:
		return arrow.BinaryTypes.String, nil
	default:
		return nil, typeMismatchf("unsupported dtype for Arrow export: %s", dtype)
	}
}

// seriesToArrowArray converts a Series to an Arrow Array
func seriesToArrowArray(s *Series, mem memory.Allocator) (arrow.Array, error) {
	if s.DType() == List {
		return listSeriesToArrowArray(s.ListValues(), mem)
	}

	switch s.DType() {
	case Float64:
		builder := array.NewFloat64Builder(mem)
		defer builder.Release()
		for i, v := range s.Float64() {
			if s.IsNull(i) {
				builder.AppendNull()
			} else {
				builder.Append(v)
			}
		}
		return builder.NewArray(), nil

	case Int64:
		builder := array.NewInt64Builder(mem)
		defer builder.Release()
		for i, v := range s.Int64() {
			if s.IsNull(i) {
				builder.AppendNull()
			} else {
				builder.Append(v)
			}
		}
		return builder.NewArray(), nil

	case Int32:
		builder := array.NewInt32Builder(mem)
		defer builder.Release()
		for i, v := range s.Int32() {
			if s.IsNull(i) {
				builder.AppendNull()
			} else {
				builder.Append(v)
			}
		}
		return builder.NewArray(), nil

	case UInt32:
		builder := array.NewUint32Builder(mem)
		defer builder.Release()
		for i, v := range s.UInt32() {
			if s.IsNull(i) {
				builder.AppendNull()
			} else {
				builder.Append(v)
			}
		}
		return builder.NewArray(), nil

	case Bool:
		builder := array.NewBooleanBuilder(mem)
		defer builder.Release()
		for i, v := range s.Bools() {
			if s.IsNull(i) {
				builder.AppendNull()
			} else {
				builder.Append(v)
			}
		}
		return builder.NewArray(), nil

	case String:
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		for i, v := range s.Strings() {
			if s.IsNull(i) {
				builder.AppendNull()
			} else {
				builder.Append(v)
			}
		}
		return builder.NewArray(), nil

	default:
		return nil, typeMismatchf("unsupported dtype for Arrow export: %s", s.DType())
	}
}

// listSeriesToArrowArray converts a ListSeries to an Arrow list array,
// preserving the null sublist vs empty sublist distinction.
func listSeriesToArrowArray(l *ListSeries, mem memory.Allocator) (arrow.Array, error) {
	elemType, err := seriesArrowType(l.Values())
	if err != nil {
		return nil, err
	}
	builder := array.NewListBuilder(mem, elemType)
	defer builder.Release()

	values, err := seriesToArrowArray(l.Values(), mem)
	if err != nil {
		return nil, err
	}
	defer values.Release()

	vb := builder.ValueBuilder()
	for i := 0; i < l.Len(); i++ {
		if l.IsNull(i) {
			builder.AppendNull()
			continue
		}
		builder.Append(true)
		start, end := l.bounds(i)
		for j := start; j < end; j++ {
			if err := appendArrowValue(vb, values, j); err != nil {
				return nil, err
			}
		}
	}
	return builder.NewArray(), nil
}

// appendArrowValue copies element j of src into the value builder.
func appendArrowValue(b array.Builder, src arrow.Array, j int) error {
	if src.IsNull(j) {
		b.AppendNull()
		return nil
	}
	switch sb := b.(type) {
	case *array.Float64Builder:
		sb.Append(src.(*array.Float64).Value(j))
	case *array.Int64Builder:
		sb.Append(src.(*array.Int64).Value(j))
	case *array.Int32Builder:
		sb.Append(src.(*array.Int32).Value(j))
	case *array.Uint32Builder:
		sb.Append(src.(*array.Uint32).Value(j))
	case *array.BooleanBuilder:
		sb.Append(src.(*array.Boolean).Value(j))
	case *array.StringBuilder:
		sb.Append(src.(*array.String).Value(j))
	case *array.ListBuilder:
		inner := src.(*array.List)
		sb.Append(true)
		start, end := inner.ValueOffsets(j)
		for k := start; k < end; k++ {
			if err := appendArrowValue(sb.ValueBuilder(), inner.ListValues(), int(k)); err != nil {
				return err
			}
		}
	default:
		return typeMismatchf("unsupported Arrow builder type: %T", b)
	}
	return nil
}

// ============================================================================
// Arrow Import
// ============================================================================

// NewDataFrameFromArrow creates a DataFrame from an Arrow Record.
func NewDataFrameFromArrow(record arrow.Record) (*DataFrame, error) {
	if record == nil {
		return nil, invalidLayoutf("record is nil")
	}

	schema := record.Schema()
	numCols := int(record.NumCols())
	series := make([]*Series, numCols)

	for i := 0; i < numCols; i++ {
		field := schema.Field(i)
		col := record.Column(i)

		s, err := arrowArrayToSeries(field.Name, col)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", field.Name, err)
		}
		series[i] = s
	}

	return NewDataFrame(series...)
}

// NewListSeriesFromArrow creates a ListSeries from an Arrow list array.
func NewListSeriesFromArrow(name string, arr *array.List) (*ListSeries, error) {
	s, err := arrowArrayToSeries(name, arr)
	if err != nil {
		return nil, err
	}
	return s.ListValues(), nil
}

// arrowArrayToSeries converts an Arrow Array to a Series
func arrowArrayToSeries(name string, arr arrow.Array) (*Series, error) {
	n := arr.Len()
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		valid[i] = arr.IsValid(i)
	}

	switch a := arr.(type) {
	case *array.Float64:
		data := make([]float64, n)
		for i := 0; i < n; i++ {
			data[i] = a.Value(i)
		}
		return NewSeriesFloat64WithNulls(name, data, valid), nil

	case *array.Int64:
		data := make([]int64, n)
		for i := 0; i < n; i++ {
			data[i] = a.Value(i)
		}
		return NewSeriesInt64WithNulls(name, data, valid), nil

	case *array.Int32:
		data := make([]int32, n)
		for i := 0; i < n; i++ {
			data[i] = a.Value(i)
		}
		return NewSeriesInt32WithNulls(name, data, valid), nil

	case *array.Uint32:
		data := make([]uint32, n)
		for i := 0; i < n; i++ {
			data[i] = a.Value(i)
		}
		return NewSeriesUInt32WithNulls(name, data, valid), nil

	case *array.Boolean:
		data := make([]bool, n)
		for i := 0; i < n; i++ {
			data[i] = a.Value(i)
		}
		return NewSeriesBoolWithNulls(name, data, valid), nil

	case *array.String:
		data := make([]string, n)
		for i := 0; i < n; i++ {
			data[i] = a.Value(i)
		}
		return NewSeriesStringWithNulls(name, data, valid), nil

	case *array.List:
		values, err := arrowArrayToSeries("", a.ListValues())
		if err != nil {
			return nil, err
		}
		rawOffsets := a.Offsets()
		// The list values may be a shared buffer; rebase offsets to
		// this array's window.
		base := rawOffsets[0]
		offsets := make([]int32, n+1)
		for i := 0; i <= n; i++ {
			offsets[i] = rawOffsets[i] - base
		}
		if base != 0 || int(rawOffsets[n]-base) != values.Len() {
			sliced, err := values.Slice(int(base), int(rawOffsets[n]-base))
			if err != nil {
				return nil, err
			}
			values = sliced
		}
		ls, err := NewListSeriesWithNulls(name, offsets, values, valid)
		if err != nil {
			return nil, err
		}
		return ls.AsSeries(), nil

	default:
		return nil, typeMismatchf("unsupported Arrow array type: %T", arr)
	}
}
