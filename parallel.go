package polars

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// ============================================================================
// Parallel Execution Configuration
// ============================================================================

// ParallelConfig controls parallelization behavior
type ParallelConfig struct {
	// MinRowsForParallel is the minimum rows to justify parallel overhead
	MinRowsForParallel int

	// MorselSize is the number of rows per work unit (default 4096)
	MorselSize int

	// MaxWorkers limits the number of worker goroutines (0 = GOMAXPROCS)
	MaxWorkers int

	// Enabled controls whether parallelism is used at all
	Enabled bool
}

// DefaultParallelConfig returns sensible defaults
func DefaultParallelConfig() *ParallelConfig {
	return &ParallelConfig{
		MinRowsForParallel: 8192,
		MorselSize:         4096,
		MaxWorkers:         0,
		Enabled:            true,
	}
}

// globalConfig is the default configuration
var globalConfig = DefaultParallelConfig()

// SetParallelConfig sets the global parallelization configuration
func SetParallelConfig(cfg *ParallelConfig) {
	if cfg != nil {
		globalConfig = cfg
	}
}

// GetParallelConfig returns the current configuration
func GetParallelConfig() *ParallelConfig {
	return globalConfig
}

// numWorkers returns the number of workers to use
func (cfg *ParallelConfig) numWorkers() int {
	if cfg.MaxWorkers > 0 {
		return cfg.MaxWorkers
	}
	return runtime.GOMAXPROCS(0)
}

// shouldParallelize determines if an operation should be parallelized
func (cfg *ParallelConfig) shouldParallelize(rows int) bool {
	return cfg.Enabled && rows >= cfg.MinRowsForParallel
}

// ============================================================================
// Morsel-Based Work Distribution
// ============================================================================

// Morsel represents a range of rows to process
type Morsel struct {
	Start int
	End   int
}

// MorselIterator provides work-stealing morsel distribution
type MorselIterator struct {
	totalRows  int
	morselSize int
	nextStart  int64 // atomic counter for work-stealing
}

// NewMorselIterator creates a new morsel iterator
func NewMorselIterator(totalRows, morselSize int) *MorselIterator {
	if morselSize <= 0 {
		morselSize = globalConfig.MorselSize
	}
	return &MorselIterator{
		totalRows:  totalRows,
		morselSize: morselSize,
	}
}

// Next returns the next morsel, or nil if exhausted
// This is safe for concurrent use (work-stealing)
func (mi *MorselIterator) Next() *Morsel {
	for {
		start := atomic.LoadInt64(&mi.nextStart)
		if int(start) >= mi.totalRows {
			return nil
		}

		end := int(start) + mi.morselSize
		if end > mi.totalRows {
			end = mi.totalRows
		}

		if atomic.CompareAndSwapInt64(&mi.nextStart, start, int64(end)) {
			return &Morsel{Start: int(start), End: end}
		}
		// Another worker claimed it, try again
	}
}

// ============================================================================
// Parallel Execution Helpers
// ============================================================================

// ParallelFor executes fn for each morsel in parallel using work-stealing
func ParallelFor(totalRows int, fn func(start, end int)) {
	cfg := globalConfig
	if !cfg.shouldParallelize(totalRows) {
		fn(0, totalRows)
		return
	}

	numWorkers := cfg.numWorkers()
	morselIter := NewMorselIterator(totalRows, cfg.MorselSize)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				morsel := morselIter.Next()
				if morsel == nil {
					return
				}
				fn(morsel.Start, morsel.End)
			}
		}()
	}
	wg.Wait()
}

// ParallelMap applies fn to each index in parallel
func ParallelMap[T any](n int, fn func(i int) T) []T {
	results := make([]T, n)

	cfg := globalConfig
	if !cfg.shouldParallelize(n) {
		for i := 0; i < n; i++ {
			results[i] = fn(i)
		}
		return results
	}

	ParallelFor(n, func(start, end int) {
		for i := start; i < end; i++ {
			results[i] = fn(i)
		}
	})
	return results
}

// ============================================================================
// Partitioned Hash Table (Lock-Free)
// ============================================================================

// PartitionedHashIndex is a lock-free partitioned hash table used by
// GroupBy. Each partition handles keys where:
// hash % numPartitions == partitionID
type PartitionedHashIndex struct {
	partitions []map[uint64][]int
	numParts   int
}

// NewPartitionedHashIndex creates a new partitioned hash index
func NewPartitionedHashIndex(numPartitions int) *PartitionedHashIndex {
	if numPartitions <= 0 {
		numPartitions = globalConfig.numWorkers()
	}
	// Ensure power of 2 for fast modulo
	numPartitions = nextPowerOf2(numPartitions)

	partitions := make([]map[uint64][]int, numPartitions)
	for i := range partitions {
		partitions[i] = make(map[uint64][]int)
	}
	return &PartitionedHashIndex{
		partitions: partitions,
		numParts:   numPartitions,
	}
}

// nextPowerOf2 returns the next power of 2 >= n
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// partition returns which partition a hash belongs to
func (phi *PartitionedHashIndex) partition(hash uint64) int {
	return int(hash) & (phi.numParts - 1)
}

// BuildParallel builds the hash index from hashes in parallel
// Each partition is built by a separate goroutine (no locks needed)
func (phi *PartitionedHashIndex) BuildParallel(hashes []uint64) {
	var wg sync.WaitGroup
	for p := 0; p < phi.numParts; p++ {
		wg.Add(1)
		go func(partID int) {
			defer wg.Done()
			table := phi.partitions[partID]
			// Each worker scans all hashes but only keeps its partition
			for rowIdx, hash := range hashes {
				if phi.partition(hash) == partID {
					table[hash] = append(table[hash], rowIdx)
				}
			}
		}(p)
	}
	wg.Wait()
}

// Lookup returns all row indices matching the hash
func (phi *PartitionedHashIndex) Lookup(hash uint64) []int {
	partID := phi.partition(hash)
	return phi.partitions[partID][hash]
}
