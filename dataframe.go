package polars

import (
	"fmt"
	"strings"
)

// ============================================================================
// DataFrame
// ============================================================================

// DataFrame is an ordered collection of equal-length named columns.
type DataFrame struct {
	columns []*Series
}

// NewDataFrame creates a DataFrame from columns. Column names must be
// unique and lengths must agree.
func NewDataFrame(columns ...*Series) (*DataFrame, error) {
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if c == nil {
			return nil, invalidLayoutf("dataframe: nil column")
		}
		if seen[c.Name()] {
			return nil, invalidLayoutf("dataframe: duplicate column %q", c.Name())
		}
		seen[c.Name()] = true
		if c.Len() != columns[0].Len() {
			return nil, invalidLayoutf("dataframe: column %q has length %d, expected %d",
				c.Name(), c.Len(), columns[0].Len())
		}
	}
	return &DataFrame{columns: columns}, nil
}

// Height returns the number of rows.
func (df *DataFrame) Height() int {
	if len(df.columns) == 0 {
		return 0
	}
	return df.columns[0].Len()
}

// Width returns the number of columns.
func (df *DataFrame) Width() int { return len(df.columns) }

// Columns returns the column slice.
func (df *DataFrame) Columns() []*Series { return df.columns }

// ColumnNames returns the column names in order.
func (df *DataFrame) ColumnNames() []string {
	names := make([]string, len(df.columns))
	for i, c := range df.columns {
		names[i] = c.Name()
	}
	return names
}

// Column returns the named column.
func (df *DataFrame) Column(name string) (*Series, error) {
	for _, c := range df.columns {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, invalidLayoutf("dataframe: no column %q", name)
}

// WithColumn returns a new DataFrame with the column appended, or
// replaced when a column of the same name exists.
func (df *DataFrame) WithColumn(col *Series) (*DataFrame, error) {
	if df.Width() > 0 && col.Len() != df.Height() {
		return nil, invalidLayoutf("with_column: column %q has length %d, expected %d",
			col.Name(), col.Len(), df.Height())
	}
	out := make([]*Series, 0, len(df.columns)+1)
	replaced := false
	for _, c := range df.columns {
		if c.Name() == col.Name() {
			out = append(out, col)
			replaced = true
		} else {
			out = append(out, c)
		}
	}
	if !replaced {
		out = append(out, col)
	}
	return &DataFrame{columns: out}, nil
}

// Select returns a new DataFrame with the named columns, in the
// requested order.
func (df *DataFrame) Select(names ...string) (*DataFrame, error) {
	out := make([]*Series, 0, len(names))
	for _, name := range names {
		c, err := df.Column(name)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return NewDataFrame(out...)
}

// GroupBy partitions the frame's rows by the values of the named
// column.
func (df *DataFrame) GroupBy(column string) (*Groups, error) {
	key, err := df.Column(column)
	if err != nil {
		return nil, err
	}
	return key.GroupBy()
}

// String returns a short description.
func (df *DataFrame) String() string {
	return fmt.Sprintf("DataFrame(%dx%d, [%s])", df.Height(), df.Width(),
		strings.Join(df.ColumnNames(), ", "))
}

// ============================================================================
// Row-Wise Application
// ============================================================================

// Row is a fixed-arity tuple of column values for one row. Row-wise
// apply functions must return a Row (not a plain []interface{}) when
// producing multiple output columns.
type Row []interface{}

// Row returns the boxed values of row i across all columns.
func (df *DataFrame) Row(i int) Row {
	out := make(Row, len(df.columns))
	for k, c := range df.columns {
		out[k] = c.Get(i)
	}
	return out
}

// ApplyRows runs f over every row tuple. When f returns Row values
// the results become one output column per tuple position (column_0,
// column_1, ...); scalar results become a single "apply" column.
// Tuple and scalar results cannot be mixed, and a plain []interface{}
// result is rejected: the tuple type carries the fixed arity a row
// result needs.
func (df *DataFrame) ApplyRows(f func(row Row) (interface{}, error), opts ...ApplyOptions) (*DataFrame, error) {
	opt := DefaultApplyOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	n := df.Height()
	results := make([]interface{}, n)
	applyRow := func(i int) error {
		out, err := f(df.Row(i))
		if err != nil {
			return fmt.Errorf("apply row %d: %w", i, err)
		}
		switch out.(type) {
		case Row, nil:
		case []interface{}:
			return typeMismatchf("expected tuple (Row), got %T", out)
		}
		results[i] = out
		return nil
	}
	if n > 0 {
		inspectApplyFunc(f)
	}
	if err := runRows(n, opt.Strategy, applyRow); err != nil {
		return nil, err
	}

	arity := -1
	for _, r := range results {
		if row, ok := r.(Row); ok {
			arity = len(row)
			break
		}
	}
	if arity < 0 {
		// Scalar results: a single output column.
		col, err := assembleResults("apply", results, opt)
		if err != nil {
			return nil, err
		}
		return NewDataFrame(col)
	}

	// Once one result is a tuple, all non-nil results must be.
	for i, r := range results {
		if r == nil {
			continue
		}
		row, ok := r.(Row)
		if !ok {
			return nil, typeMismatchf("apply row %d: expected tuple (Row), got %T", i, r)
		}
		if len(row) != arity {
			return nil, invalidLayoutf("apply row %d returned %d values, expected %d", i, len(row), arity)
		}
	}

	cols := make([]*Series, arity)
	for k := 0; k < arity; k++ {
		vals := make([]interface{}, n)
		for i, r := range results {
			row, ok := r.(Row)
			if !ok {
				continue
			}
			vals[i] = row[k]
		}
		col, err := assembleResults(fmt.Sprintf("column_%d", k), vals, opt)
		if err != nil {
			return nil, err
		}
		cols[k] = col
	}
	return NewDataFrame(cols...)
}
