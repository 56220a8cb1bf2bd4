package polars

import (
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	json "github.com/goccy/go-json"
)

// JSONFormat specifies the JSON output format
type JSONFormat int

const (
	// JSONRecords outputs as array of row objects: [{"a":[1,2]}, {"a":[3]}]
	JSONRecords JSONFormat = iota
	// JSONColumns outputs as object of column arrays: {"a":[[1,2],[3]]}
	JSONColumns
)

// JSONReadOptions configures JSON reading behavior
type JSONReadOptions struct {
	Format      JSONFormat       // Expected format
	ColumnTypes map[string]DType // Force column types
}

// DefaultJSONReadOptions returns default JSON reading options
func DefaultJSONReadOptions() JSONReadOptions {
	return JSONReadOptions{
		Format: JSONRecords,
	}
}

// ReadJSON reads a JSON file into a DataFrame
func ReadJSON(path string, opts ...JSONReadOptions) (*DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return ReadJSONFromReader(f, opts...)
}

// ReadJSONFromReader reads JSON data from an io.Reader into a DataFrame.
// JSON arrays become list columns, with nested arrays supported.
func ReadJSONFromReader(r io.Reader, opts ...JSONReadOptions) (*DataFrame, error) {
	opt := DefaultJSONReadOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	switch opt.Format {
	case JSONRecords:
		return readJSONRecords(data, opt)
	case JSONColumns:
		return readJSONColumns(data, opt)
	default:
		return nil, fmt.Errorf("unknown JSON format: %d", opt.Format)
	}
}

func readJSONRecords(data []byte, opt JSONReadOptions) (*DataFrame, error) {
	var records []map[string]interface{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	if len(records) == 0 {
		return NewDataFrame()
	}

	// Collect column names in first-seen order
	colNames := make([]string, 0)
	colSet := make(map[string]bool)
	for _, record := range records {
		for key := range record {
			if !colSet[key] {
				colNames = append(colNames, key)
				colSet[key] = true
			}
		}
	}

	columns := make([]*Series, len(colNames))
	for i, name := range colNames {
		vals := make([]interface{}, len(records))
		for j, record := range records {
			vals[j] = normalizeJSONValue(record[name])
		}
		col, err := buildJSONColumn(name, vals, opt)
		if err != nil {
			return nil, fmt.Errorf("failed to build column '%s': %w", name, err)
		}
		columns[i] = col
	}

	return NewDataFrame(columns...)
}

func readJSONColumns(data []byte, opt JSONReadOptions) (*DataFrame, error) {
	var colData map[string][]interface{}
	if err := json.Unmarshal(data, &colData); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	if len(colData) == 0 {
		return NewDataFrame()
	}

	columns := make([]*Series, 0, len(colData))
	for name, values := range colData {
		vals := make([]interface{}, len(values))
		for j, v := range values {
			vals[j] = normalizeJSONValue(v)
		}
		col, err := buildJSONColumn(name, vals, opt)
		if err != nil {
			return nil, fmt.Errorf("failed to build column '%s': %w", name, err)
		}
		columns = append(columns, col)
	}

	return NewDataFrame(columns...)
}

// normalizeJSONValue maps parsed JSON values to Series element
// values: integral float64 becomes int64 and arrays recurse, so type
// inference can distinguish Int64 and Float64 columns.
func normalizeJSONValue(v interface{}) interface{} {
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return int64(x)
		}
		return x
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = normalizeJSONValue(e)
		}
		return out
	}
	return v
}

func buildJSONColumn(name string, vals []interface{}, opt JSONReadOptions) (*Series, error) {
	if dtype, ok := opt.ColumnTypes[name]; ok {
		return seriesFromAnyValues(name, dtype, vals)
	}
	return assembleResults(name, vals, DefaultApplyOptions())
}

// JSONWriteOptions configures JSON writing behavior
type JSONWriteOptions struct {
	Format JSONFormat // Output format
	Indent string     // Indent string (default "", no indent)
}

// DefaultJSONWriteOptions returns default JSON writing options
func DefaultJSONWriteOptions() JSONWriteOptions {
	return JSONWriteOptions{
		Format: JSONRecords,
		Indent: "",
	}
}

// WriteJSON writes a DataFrame to a JSON file
func (df *DataFrame) WriteJSON(path string, opts ...JSONWriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	return df.WriteJSONToWriter(f, opts...)
}

// WriteJSONToWriter writes a DataFrame to an io.Writer. List columns
// serialize as nested arrays; null sublists serialize as null.
func (df *DataFrame) WriteJSONToWriter(w io.Writer, opts ...JSONWriteOptions) error {
	opt := DefaultJSONWriteOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	var data interface{}

	cfg := globalConfig
	height := df.Height()

	switch opt.Format {
	case JSONRecords:
		records := make([]map[string]interface{}, height)

		buildRange := func(startRow, endRow int) {
			for i := startRow; i < endRow; i++ {
				record := make(map[string]interface{})
				for _, col := range df.columns {
					record[col.Name()] = col.Get(i)
				}
				records[i] = record
			}
		}

		if cfg.shouldParallelize(height) {
			var wg sync.WaitGroup
			numWorkers := cfg.numWorkers()
			chunkSize := (height + numWorkers - 1) / numWorkers

			for workerID := 0; workerID < numWorkers; workerID++ {
				start := workerID * chunkSize
				end := start + chunkSize
				if end > height {
					end = height
				}
				if start >= height {
					break
				}
				wg.Add(1)
				go func(s, e int) {
					defer wg.Done()
					buildRange(s, e)
				}(start, end)
			}
			wg.Wait()
		} else {
			buildRange(0, height)
		}
		data = records

	case JSONColumns:
		colData := make(map[string]interface{})
		for _, col := range df.columns {
			vals := make([]interface{}, col.Len())
			for i := 0; i < col.Len(); i++ {
				vals[i] = col.Get(i)
			}
			colData[col.Name()] = vals
		}
		data = colData

	default:
		return fmt.Errorf("unknown JSON format: %d", opt.Format)
	}

	encoder := json.NewEncoder(w)
	if opt.Indent != "" {
		encoder.SetIndent("", opt.Indent)
	}

	return encoder.Encode(data)
}
