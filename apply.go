package polars

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// ============================================================================
// User-Defined Function Application
// ============================================================================
//
// Apply runs an arbitrary Go function over the elements of a column.
// It is the slow path: a kernel in list_agg.go or list_ops.go, or an
// expression via Eval, should be preferred whenever one expresses the
// same computation. An advisory heuristic (advisory.go) warns when a
// passed function looks like it has a kernel equivalent.

// ApplyStrategy selects how the function is scheduled across rows.
type ApplyStrategy int

const (
	// StrategySequential calls the function row by row on the caller
	// goroutine.
	StrategySequential ApplyStrategy = iota

	// StrategyThreading spreads rows across worker goroutines. Only
	// worthwhile when the function itself is expensive; the function
	// must be safe for concurrent use.
	StrategyThreading

	// StrategyThreadLocal is like StrategyThreading, but each worker
	// builds its own function instance from a factory. Use with
	// ApplyGroupsLocal for functions carrying per-worker state.
	StrategyThreadLocal
)

// ApplyFunc is a user function applied to one boxed element. A nil
// input represents a null element (only seen when SkipNulls is false).
type ApplyFunc func(v interface{}) (interface{}, error)

// GroupApplyFunc is a user function applied to one group of rows.
type GroupApplyFunc func(group *Series) (interface{}, error)

// NamedValue carries an element together with its column name, passed
// to the function instead of the bare value when PassName is set.
type NamedValue struct {
	Name  string
	Value interface{}
}

// ApplyOptions configures Apply, ApplyGroups and Map.
type ApplyOptions struct {
	// ReturnDType fixes the output dtype. Results that cannot be
	// coerced to it fail with ErrTypeCoercion. When nil, the dtype is
	// inferred from the first non-null result and widened as further
	// results arrive, falling back to Object when no common type
	// exists.
	ReturnDType *DType

	// SkipNulls skips null elements instead of passing them to the
	// function; a skipped element yields a null result. Default true.
	SkipNulls bool

	// PassName wraps each element in a NamedValue carrying the column
	// name.
	PassName bool

	// Strategy selects the scheduling strategy.
	Strategy ApplyStrategy
}

// DefaultApplyOptions returns the default apply options.
func DefaultApplyOptions() ApplyOptions {
	return ApplyOptions{SkipNulls: true, Strategy: StrategySequential}
}

// ReturnAs is a convenience for setting ApplyOptions.ReturnDType.
func ReturnAs(dtype DType) *DType { return &dtype }

// Apply runs f over every element and assembles the results into a
// new Series. A zero-length series produces a zero-length result
// without ever invoking f.
func (s *Series) Apply(f ApplyFunc, opts ...ApplyOptions) (*Series, error) {
	opt := DefaultApplyOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if s.Len() == 0 {
		return emptyApplyResult(s.name, opt)
	}

	inspectApplyFunc(f)

	results := make([]interface{}, s.Len())
	applyRow := func(i int) error {
		if opt.SkipNulls && s.IsNull(i) {
			return nil
		}
		var in interface{} = s.Get(i)
		if opt.PassName {
			in = NamedValue{Name: s.name, Value: in}
		}
		out, err := f(in)
		if err != nil {
			return fmt.Errorf("apply row %d: %w", i, err)
		}
		results[i] = out
		return nil
	}
	if err := runRows(s.Len(), opt.Strategy, applyRow); err != nil {
		return nil, err
	}
	return assembleResults(s.name, results, opt)
}

// ApplyGroups runs f once per group and assembles the per-group
// results into a Series with one row per group, in group order.
func ApplyGroups(name string, groups []*Series, f GroupApplyFunc, opts ...ApplyOptions) (*Series, error) {
	opt := DefaultApplyOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if len(groups) == 0 {
		return emptyApplyResult(name, opt)
	}

	inspectApplyFunc(f)

	results := make([]interface{}, len(groups))
	applyGroup := func(i int) error {
		out, err := f(groups[i])
		if err != nil {
			return fmt.Errorf("apply group %d: %w", i, err)
		}
		results[i] = out
		return nil
	}
	if err := runRows(len(groups), opt.Strategy, applyGroup); err != nil {
		return nil, err
	}
	return assembleResults(name, results, opt)
}

// ApplyGroupsLocal is ApplyGroups for functions that carry per-worker
// state: every worker goroutine builds its own function instance from
// factory, so the instances never race. Implies StrategyThreadLocal.
func ApplyGroupsLocal(name string, groups []*Series, factory func() GroupApplyFunc, opts ...ApplyOptions) (*Series, error) {
	opt := DefaultApplyOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if len(groups) == 0 {
		return emptyApplyResult(name, opt)
	}

	results := make([]interface{}, len(groups))
	workers := runtime.GOMAXPROCS(0)
	if workers > len(groups) {
		workers = len(groups)
	}

	// Workers pull group indices from a shared counter; an erroring
	// worker just returns, leaving nothing blocked behind it.
	var g errgroup.Group
	var next int64 = -1
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			f := factory()
			for {
				i := int(atomic.AddInt64(&next, 1))
				if i >= len(groups) {
					return nil
				}
				out, err := f(groups[i])
				if err != nil {
					return fmt.Errorf("apply group %d: %w", i, err)
				}
				results[i] = out
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return assembleResults(name, results, opt)
}

// Map runs f over row tuples drawn from multiple equal-length
// columns. With SkipNulls, a row whose inputs are all null yields a
// null result without calling f.
func Map(name string, cols []*Series, f func(vals []interface{}) (interface{}, error), opts ...ApplyOptions) (*Series, error) {
	opt := DefaultApplyOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if len(cols) == 0 {
		return nil, invalidLayoutf("map: no input columns")
	}
	n := cols[0].Len()
	for _, c := range cols[1:] {
		if c.Len() != n {
			return nil, invalidLayoutf("map: column %s has length %d, expected %d", c.Name(), c.Len(), n)
		}
	}
	if n == 0 {
		return emptyApplyResult(name, opt)
	}

	inspectApplyFunc(f)

	results := make([]interface{}, n)
	applyRow := func(i int) error {
		vals := make([]interface{}, len(cols))
		allNull := true
		for k, c := range cols {
			vals[k] = c.Get(i)
			if vals[k] != nil {
				allNull = false
			}
		}
		if opt.SkipNulls && allNull {
			return nil
		}
		out, err := f(vals)
		if err != nil {
			return fmt.Errorf("map row %d: %w", i, err)
		}
		results[i] = out
		return nil
	}
	if err := runRows(n, opt.Strategy, applyRow); err != nil {
		return nil, err
	}
	return assembleResults(name, results, opt)
}

// ============================================================================
// Scheduling and Result Assembly
// ============================================================================

func runRows(n int, strategy ApplyStrategy, fn func(i int) error) error {
	if strategy == StrategySequential || n <= 1 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error { return fn(i) })
	}
	return g.Wait()
}

func emptyApplyResult(name string, opt ApplyOptions) (*Series, error) {
	dtype := Null
	if opt.ReturnDType != nil {
		dtype = *opt.ReturnDType
	}
	return seriesFromAnyValues(name, dtype, nil)
}

// assembleResults turns boxed per-row results into a typed Series.
// With a fixed ReturnDType every result must coerce or the whole
// apply fails; otherwise the dtype is inferred and widened, with
// Object as the terminal fallback.
func assembleResults(name string, results []interface{}, opt ApplyOptions) (*Series, error) {
	if opt.ReturnDType != nil {
		return seriesFromAnyValues(name, *opt.ReturnDType, results)
	}

	dtype := Null
	for _, v := range results {
		if v == nil {
			continue
		}
		dt := inferDType(v)
		if dtype == Null {
			dtype = dt
			continue
		}
		if dt != dtype {
			widened, ok := widenDType(dtype, dt)
			if !ok {
				dtype = Object
				break
			}
			dtype = widened
		}
	}
	return seriesFromAnyValues(name, dtype, results)
}
