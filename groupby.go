package polars

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/zeebo/xxh3"
)

// ============================================================================
// Grouping
// ============================================================================
//
// GroupBy partitions rows by the distinct values of a key column.
// Groups come back in first-occurrence order of their keys, with null
// keys forming their own group. Row hashes are computed in parallel
// and bucketed through the lock-free PartitionedHashIndex; candidate
// rows sharing a hash are verified by value before joining a group.

// Groups is the result of a group-by: per-group row indices plus the
// key value of each group.
type Groups struct {
	indices [][]int
	keys    *Series
}

// NewGroups constructs a Groups from pre-computed row indices and key
// values. keys must have one row per group.
func NewGroups(indices [][]int, keys *Series) (*Groups, error) {
	if keys != nil && keys.Len() != len(indices) {
		return nil, invalidLayoutf("groups: %d index sets but %d keys", len(indices), keys.Len())
	}
	return &Groups{indices: indices, keys: keys}, nil
}

// NumGroups returns the number of groups.
func (g *Groups) NumGroups() int { return len(g.indices) }

// Indices returns the row indices of group i.
func (g *Groups) Indices(i int) []int { return g.indices[i] }

// Keys returns the key column with one row per group.
func (g *Groups) Keys() *Series { return g.keys }

// SubSeries extracts the rows of group i from a value column, in
// group row order.
func (g *Groups) SubSeries(values *Series, i int) (*Series, error) {
	idx := g.indices[i]
	vals := make([]interface{}, len(idx))
	for k, row := range idx {
		if row < 0 || row >= values.Len() {
			return nil, indexOOBf("group %d references row %d of column with length %d", i, row, values.Len())
		}
		vals[k] = values.Get(row)
	}
	return seriesFromAnyValues(values.Name(), values.DType(), vals)
}

// SubSeriesAll extracts every group's rows from a value column.
func (g *Groups) SubSeriesAll(values *Series) ([]*Series, error) {
	out := make([]*Series, g.NumGroups())
	for i := range g.indices {
		sub, err := g.SubSeries(values, i)
		if err != nil {
			return nil, err
		}
		out[i] = sub
	}
	return out, nil
}

// GroupBy partitions the series rows by value.
func (s *Series) GroupBy() (*Groups, error) {
	if s.DType().IsNested() {
		return nil, typeMismatchf("group_by: unsupported key type %s", s.DType())
	}

	hashes := ParallelMap(s.Len(), func(i int) uint64 {
		return hashKey(s, i)
	})

	index := NewPartitionedHashIndex(0)
	index.BuildParallel(hashes)

	assigned := make([]bool, s.Len())
	var indices [][]int
	var keyVals []interface{}
	for i := 0; i < s.Len(); i++ {
		if assigned[i] {
			continue
		}
		key := s.Get(i)
		var group []int
		for _, j := range index.Lookup(hashes[i]) {
			// Hash collisions are resolved by value comparison.
			if !assigned[j] && keyEqual(s.Get(j), key) {
				assigned[j] = true
				group = append(group, j)
			}
		}
		indices = append(indices, group)
		keyVals = append(keyVals, key)
	}

	keys, err := seriesFromAnyValues(s.Name(), s.DType(), keyVals)
	if err != nil {
		return nil, err
	}
	return NewGroups(indices, keys)
}

// keyEqual compares two key values, with NaN equal to itself so NaN
// float keys form one group instead of escaping every group.
func keyEqual(a, b interface{}) bool {
	if af, ok := a.(float64); ok {
		if bf, ok := b.(float64); ok {
			return af == bf || (math.IsNaN(af) && math.IsNaN(bf))
		}
	}
	return a == b
}

// hashKey hashes the key at row i, with a fixed salt for nulls so
// they land in one group.
func hashKey(s *Series, i int) uint64 {
	if s.IsNull(i) {
		return 0x9e3779b97f4a7c15
	}
	var buf [8]byte
	switch s.DType() {
	case String:
		return xxh3.HashString(s.Strings()[i])
	case Float64:
		f := s.Float64()[i]
		bits := math.Float64bits(f)
		if math.IsNaN(f) {
			// One bucket for every NaN payload.
			bits = 0x7ff8000000000000
		}
		binary.LittleEndian.PutUint64(buf[:], bits)
	case Int64:
		binary.LittleEndian.PutUint64(buf[:], uint64(s.Int64()[i]))
	case Int32:
		binary.LittleEndian.PutUint64(buf[:], uint64(s.Int32()[i]))
	case UInt32:
		binary.LittleEndian.PutUint64(buf[:], uint64(s.UInt32()[i]))
	case Bool:
		if s.Bools()[i] {
			buf[0] = 1
		}
	default:
		return xxh3.HashString(fmt.Sprintf("%v", s.Get(i)))
	}
	return xxh3.Hash(buf[:])
}
