package polars

import (
	"sync"
	"sync/atomic"
	"testing"
)

func forceParallel(t *testing.T) {
	t.Helper()
	prev := GetParallelConfig()
	SetParallelConfig(&ParallelConfig{
		MinRowsForParallel: 1,
		MorselSize:         16,
		MaxWorkers:         4,
		Enabled:            true,
	})
	t.Cleanup(func() { SetParallelConfig(prev) })
}

func TestMorselIteratorCoversAllRows(t *testing.T) {
	iter := NewMorselIterator(100, 32)

	covered := make([]bool, 100)
	for {
		m := iter.Next()
		if m == nil {
			break
		}
		for i := m.Start; i < m.End; i++ {
			if covered[i] {
				t.Fatalf("row %d emitted twice", i)
			}
			covered[i] = true
		}
	}
	for i, c := range covered {
		if !c {
			t.Errorf("row %d never emitted", i)
		}
	}
}

func TestMorselIteratorConcurrent(t *testing.T) {
	const rows = 10000
	iter := NewMorselIterator(rows, 64)

	var total int64
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				m := iter.Next()
				if m == nil {
					return
				}
				atomic.AddInt64(&total, int64(m.End-m.Start))
			}
		}()
	}
	wg.Wait()
	if total != rows {
		t.Errorf("total rows = %d, want %d", total, rows)
	}
}

func TestParallelFor(t *testing.T) {
	forceParallel(t)
	const rows = 1000

	hits := make([]int32, rows)
	ParallelFor(rows, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&hits[i], 1)
		}
	})
	for i, h := range hits {
		if h != 1 {
			t.Errorf("row %d visited %d times, want 1", i, h)
		}
	}
}

func TestParallelForBelowThreshold(t *testing.T) {
	// Below MinRowsForParallel the body runs inline in one call.
	calls := 0
	ParallelFor(10, func(start, end int) {
		calls++
		if start != 0 || end != 10 {
			t.Errorf("range = [%d,%d), want [0,10)", start, end)
		}
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestParallelMap(t *testing.T) {
	forceParallel(t)

	out := ParallelMap(500, func(i int) int { return i * i })
	for i, v := range out {
		if v != i*i {
			t.Errorf("out[%d] = %d, want %d", i, v, i*i)
		}
	}
}

func TestNextPowerOf2(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 8: 8, 9: 16}
	for in, want := range cases {
		if got := nextPowerOf2(in); got != want {
			t.Errorf("nextPowerOf2(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestPartitionedHashIndex(t *testing.T) {
	hashes := []uint64{7, 12, 7, 99, 12, 7}
	idx := NewPartitionedHashIndex(4)
	idx.BuildParallel(hashes)

	rows := idx.Lookup(7)
	if len(rows) != 3 {
		t.Fatalf("Lookup(7) = %v, want 3 rows", rows)
	}
	if rows[0] != 0 || rows[1] != 2 || rows[2] != 5 {
		t.Errorf("Lookup(7) = %v, want [0 2 5] in row order", rows)
	}
	if rows := idx.Lookup(99); len(rows) != 1 || rows[0] != 3 {
		t.Errorf("Lookup(99) = %v, want [3]", rows)
	}
	if rows := idx.Lookup(1234); rows != nil {
		t.Errorf("Lookup(1234) = %v, want nil", rows)
	}
}
