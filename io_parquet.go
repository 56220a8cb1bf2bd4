package polars

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

// ============================================================================
// Parquet IO
// ============================================================================
//
// Flat columns only. List columns round-trip through Arrow or JSON;
// writing one here fails with ErrTypeMismatch.

// ParquetReadOptions configures Parquet reading behavior
type ParquetReadOptions struct {
	Columns []string // Only read these columns (nil = all)
	MaxRows int      // Max rows to read (0 = unlimited)
}

// DefaultParquetReadOptions returns default Parquet reading options
func DefaultParquetReadOptions() ParquetReadOptions {
	return ParquetReadOptions{}
}

// ReadParquet reads a Parquet file into a DataFrame
func ReadParquet(path string, opts ...ParquetReadOptions) (*DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return ReadParquetFromReader(f, stat.Size(), opts...)
}

// ReadParquetFromReader reads Parquet data from an io.ReaderAt into a
// DataFrame, preserving nulls.
func ReadParquetFromReader(r io.ReaderAt, size int64, opts ...ParquetReadOptions) (*DataFrame, error) {
	opt := DefaultParquetReadOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	schema := pf.Schema()

	var colNames []string
	if len(opt.Columns) > 0 {
		colNames = opt.Columns
	} else {
		fields := schema.Fields()
		colNames = make([]string, len(fields))
		for i, f := range fields {
			colNames[i] = f.Name()
		}
	}

	colIndexMap := make(map[string]int)
	for i, col := range schema.Columns() {
		if len(col) > 0 {
			colIndexMap[col[0]] = i
		}
	}

	colIndices := make([]int, len(colNames))
	colTypes := make([]DType, len(colNames))
	for i, name := range colNames {
		idx, ok := colIndexMap[name]
		if !ok {
			return nil, invalidLayoutf("column %q not found in parquet file", name)
		}
		colIndices[i] = idx
		colTypes[i] = parquetFieldToDType(schema, name)
	}

	builders := make([][]interface{}, len(colNames))
	rowCount := 0

	for _, rg := range pf.RowGroups() {
		if opt.MaxRows > 0 && rowCount >= opt.MaxRows {
			break
		}

		rows := rg.Rows()
		rowBuf := make([]parquet.Row, 1000)
		for {
			n, err := rows.ReadRows(rowBuf)
			if err != nil && err != io.EOF {
				rows.Close()
				return nil, fmt.Errorf("failed to read rows: %w", err)
			}
			if n == 0 {
				break
			}

			for _, row := range rowBuf[:n] {
				if opt.MaxRows > 0 && rowCount >= opt.MaxRows {
					break
				}
				for i, colIdx := range colIndices {
					var v interface{}
					if colIdx < len(row) {
						v = fromParquetValue(row[colIdx], colTypes[i])
					}
					builders[i] = append(builders[i], v)
				}
				rowCount++
			}

			if opt.MaxRows > 0 && rowCount >= opt.MaxRows {
				break
			}
		}
		rows.Close()
	}

	columns := make([]*Series, len(colNames))
	for i, name := range colNames {
		col, err := seriesFromAnyValues(name, colTypes[i], builders[i])
		if err != nil {
			return nil, fmt.Errorf("failed to build column '%s': %w", name, err)
		}
		columns[i] = col
	}

	return NewDataFrame(columns...)
}

func parquetFieldToDType(schema *parquet.Schema, name string) DType {
	for _, col := range schema.Fields() {
		if col.Name() != name {
			continue
		}
		t := col.Type()
		if t == nil {
			return String
		}
		switch t.Kind() {
		case parquet.Boolean:
			return Bool
		case parquet.Int32:
			return Int32
		case parquet.Int64:
			return Int64
		case parquet.Double:
			return Float64
		default:
			return String
		}
	}
	return String
}

func fromParquetValue(val parquet.Value, dtype DType) interface{} {
	if val.IsNull() {
		return nil
	}
	switch dtype {
	case Float64:
		return val.Double()
	case Int64:
		return val.Int64()
	case Int32:
		return val.Int32()
	case Bool:
		return val.Boolean()
	default:
		return string(val.ByteArray())
	}
}

// ParquetWriteOptions configures Parquet writing behavior
type ParquetWriteOptions struct {
	Compression  string // "snappy", "gzip", "zstd", "none" (default "snappy")
	RowGroupSize int    // Rows per row group (default 1000000)
}

// DefaultParquetWriteOptions returns default Parquet writing options
func DefaultParquetWriteOptions() ParquetWriteOptions {
	return ParquetWriteOptions{
		Compression:  "snappy",
		RowGroupSize: 1000000,
	}
}

// WriteParquet writes a DataFrame to a Parquet file
func (df *DataFrame) WriteParquet(path string, opts ...ParquetWriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	return df.WriteParquetToWriter(f, opts...)
}

// WriteParquetToWriter writes a DataFrame to an io.Writer. Every
// column is written as an optional leaf so nulls survive the trip.
func (df *DataFrame) WriteParquetToWriter(w io.Writer, opts ...ParquetWriteOptions) error {
	opt := DefaultParquetWriteOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	if df.Width() == 0 || df.Height() == 0 {
		return nil
	}

	group := make(parquet.Group)
	for _, col := range df.columns {
		node, err := dtypeToParquetNode(col.DType())
		if err != nil {
			return fmt.Errorf("column %s: %w", col.Name(), err)
		}
		group[col.Name()] = parquet.Optional(node)
	}
	schema := parquet.NewSchema("dataframe", group)

	writerOpts := []parquet.WriterOption{schema}
	switch opt.Compression {
	case "snappy":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Snappy))
	case "gzip":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Gzip))
	case "zstd":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Zstd))
	}

	pw := parquet.NewWriter(w, writerOpts...)
	defer pw.Close()

	// The schema sorts group fields by name; rows must match.
	ordered := make([]*Series, 0, df.Width())
	for _, field := range schema.Fields() {
		col, err := df.Column(field.Name())
		if err != nil {
			return err
		}
		ordered = append(ordered, col)
	}

	height := df.Height()
	batchSize := 1000
	rows := make([]parquet.Row, 0, batchSize)
	for i := 0; i < height; i++ {
		row := make(parquet.Row, len(ordered))
		for j, col := range ordered {
			v := toParquetValue(col.Get(i), col.DType())
			defLevel := 1
			if v.IsNull() {
				defLevel = 0
			}
			row[j] = v.Level(0, defLevel, j)
		}
		rows = append(rows, row)

		if len(rows) >= batchSize {
			if _, err := pw.WriteRows(rows); err != nil {
				return fmt.Errorf("failed to write rows at %d: %w", i-len(rows)+1, err)
			}
			rows = rows[:0]
		}
	}

	if len(rows) > 0 {
		if _, err := pw.WriteRows(rows); err != nil {
			return fmt.Errorf("failed to write final rows: %w", err)
		}
	}

	return pw.Close()
}

func dtypeToParquetNode(dtype DType) (parquet.Node, error) {
	switch dtype {
	case Float64:
		return parquet.Leaf(parquet.DoubleType), nil
	case Int64:
		return parquet.Leaf(parquet.Int64Type), nil
	case Int32:
		return parquet.Leaf(parquet.Int32Type), nil
	case Bool:
		return parquet.Leaf(parquet.BooleanType), nil
	case String:
		return parquet.Leaf(parquet.ByteArrayType), nil
	default:
		return nil, typeMismatchf("unsupported dtype for parquet: %s", dtype)
	}
}

func toParquetValue(v interface{}, dtype DType) parquet.Value {
	if v == nil {
		return parquet.NullValue()
	}

	switch dtype {
	case Float64:
		if f, ok := v.(float64); ok {
			return parquet.DoubleValue(f)
		}
	case Int64:
		if i, ok := v.(int64); ok {
			return parquet.Int64Value(i)
		}
	case Int32:
		if i, ok := v.(int32); ok {
			return parquet.Int32Value(i)
		}
	case Bool:
		if b, ok := v.(bool); ok {
			return parquet.BooleanValue(b)
		}
	case String:
		if s, ok := v.(string); ok {
			return parquet.ByteArrayValue([]byte(s))
		}
	}

	// Fallback to string representation
	return parquet.ByteArrayValue([]byte(fmt.Sprintf("%v", v)))
}
