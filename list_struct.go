package polars

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ============================================================================
// List to Struct Conversion
// ============================================================================

// ToStructStrategy selects how the struct width is determined.
type ToStructStrategy int

const (
	// StrategyFirstNonNull uses the length of the first non-null
	// sublist as the struct width. Cheap, but wrong when later rows
	// are wider.
	StrategyFirstNonNull ToStructStrategy = iota

	// StrategyMaxWidth scans the whole column for the widest sublist.
	StrategyMaxWidth
)

// ToStructOptions configures ListSeries.ToStruct.
type ToStructOptions struct {
	// Strategy determines the number of struct fields.
	Strategy ToStructStrategy

	// Fields overrides the generated field names by position. The
	// struct width still follows Strategy; positions beyond the list
	// fall back to FieldName.
	Fields []string

	// FieldName generates the name for field index i. Defaults to
	// field_0, field_1, ...
	FieldName func(i int) string
}

// DefaultToStructOptions returns the default conversion options.
func DefaultToStructOptions() ToStructOptions {
	return ToStructOptions{
		Strategy:  StrategyFirstNonNull,
		FieldName: func(i int) string { return fmt.Sprintf("field_%d", i) },
	}
}

// ToStruct converts the list column to a struct column with one field
// per list position. Sublists shorter than the width produce null
// fields; longer sublists are truncated.
func (l *ListSeries) ToStruct(opts ...ToStructOptions) (*StructSeries, error) {
	opt := DefaultToStructOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.FieldName == nil {
		opt.FieldName = func(i int) string { return fmt.Sprintf("field_%d", i) }
	}

	width := 0
	switch opt.Strategy {
	case StrategyMaxWidth:
		for i := 0; i < l.length; i++ {
			if l.IsValid(i) && l.GetListLen(i) > width {
				width = l.GetListLen(i)
			}
		}
	default:
		for i := 0; i < l.length; i++ {
			if l.IsValid(i) {
				width = l.GetListLen(i)
				break
			}
		}
	}

	names := make([]string, width)
	for k := 0; k < width; k++ {
		if k < len(opt.Fields) {
			names[k] = opt.Fields[k]
		} else {
			names[k] = opt.FieldName(k)
		}
	}

	fields := make([]*Series, width)
	for k := 0; k < width; k++ {
		vals := make([]interface{}, l.length)
		for i := 0; i < l.length; i++ {
			if !l.IsValid(i) {
				continue
			}
			start, end := l.bounds(i)
			if start+k >= end {
				continue
			}
			if !l.values.IsValid(start + k) {
				continue
			}
			vals[i] = l.values.Get(start + k)
		}
		col, err := seriesFromAnyValues(names[k], l.ElementType(), vals)
		if err != nil {
			return nil, fmt.Errorf("to_struct field %s: %w", names[k], err)
		}
		fields[k] = col
	}
	return NewStructSeriesFromSeries(l.name, names, fields)
}

// ============================================================================
// Expression Evaluation
// ============================================================================

// EvalOptions configures ListSeries.Eval.
type EvalOptions struct {
	// Parallel evaluates sublists across multiple goroutines. Output
	// order is unaffected.
	Parallel bool
}

// DefaultEvalOptions returns the default evaluation options.
func DefaultEvalOptions() EvalOptions {
	return EvalOptions{Parallel: false}
}

// Eval runs an element expression over every sublist, producing a new
// list column of the same length. A null sublist stays null.
func (l *ListSeries) Eval(expr Expr, opts ...EvalOptions) (*ListSeries, error) {
	opt := DefaultEvalOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	rows := make([]interface{}, l.length)
	evalRow := func(i int) error {
		if !l.IsValid(i) {
			return nil
		}
		elems, err := l.sublistValues(i)
		if err != nil {
			return err
		}
		out, err := expr.evalSeries(elems)
		if err != nil {
			return fmt.Errorf("eval row %d: %w", i, err)
		}
		rows[i] = out
		return nil
	}

	if opt.Parallel && l.length > 1 {
		var g errgroup.Group
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i := 0; i < l.length; i++ {
			i := i
			g.Go(func() error { return evalRow(i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := 0; i < l.length; i++ {
			if err := evalRow(i); err != nil {
				return nil, err
			}
		}
	}
	return listSeriesFromBoxedRows(l.name, rows)
}
