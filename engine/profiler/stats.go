package profiler

import (
	"runtime"
	"time"
)

// ScopeStat aggregates the recorded runs of one named scope.
type ScopeStat struct {
	Name  string
	Count int
	Total time.Duration
}

// Mean is the average duration of one run.
func (s ScopeStat) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// MemoryUsage returns the bytes of allocated heap objects.
func MemoryUsage() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc
}

// MemoryAllocs returns the cumulative count of heap allocations.
func MemoryAllocs() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Mallocs
}

func NumGoroutine() int {
	return runtime.NumGoroutine()
}

func NumCPU() int {
	return runtime.NumCPU()
}
