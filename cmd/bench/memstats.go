package main

import (
	"encoding/csv"
	"runtime"
	"strconv"
)

// Result is one row of the benchmark CSV: which backend, which scenario,
// how long it took, and how much heap was live afterward.
type Result struct {
	Backend   string
	Scenario  string
	Operation string
	LatencyNs int64
	AllocMB   uint64
	Objects   uint64
}

type memStats struct {
	AllocMB     uint64
	HeapObjects uint64
}

// sampleMem forces a GC pass so the sample reflects live data, not
// garbage awaiting collection.
func sampleMem() memStats {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	return memStats{AllocMB: m.Alloc / 1024 / 1024, HeapObjects: m.HeapObjects}
}

func recordRow(w *csv.Writer, r Result) {
	w.Write([]string{
		r.Backend,
		r.Scenario,
		r.Operation,
		strconv.FormatInt(r.LatencyNs, 10),
		strconv.FormatUint(r.AllocMB, 10),
		strconv.FormatUint(r.Objects, 10),
	})
}
