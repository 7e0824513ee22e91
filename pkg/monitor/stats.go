package monitor

import (
	"sync/atomic"
)

type WorkloadStats struct {
	AddCount    uint64
	DeleteCount uint64
	FindCount   uint64
	HitCount    uint64
}

func NewWorkloadStats() *WorkloadStats {
	return &WorkloadStats{}
}

func (ws *WorkloadStats) RecordAdd() {
	atomic.AddUint64(&ws.AddCount, 1)
}

func (ws *WorkloadStats) RecordDelete() {
	atomic.AddUint64(&ws.DeleteCount, 1)
}

// RecordFind counts a prefix query; found reports whether it returned anything.
func (ws *WorkloadStats) RecordFind(found bool) {
	atomic.AddUint64(&ws.FindCount, 1)
	if found {
		atomic.AddUint64(&ws.HitCount, 1)
	}
}

// Snapshot is a consistent-enough copy of the counters for reporting.
type Snapshot struct {
	Adds    uint64 `json:"adds"`
	Deletes uint64 `json:"deletes"`
	Finds   uint64 `json:"finds"`
	Hits    uint64 `json:"hits"`
}

func (ws *WorkloadStats) Snapshot() Snapshot {
	return Snapshot{
		Adds:    atomic.LoadUint64(&ws.AddCount),
		Deletes: atomic.LoadUint64(&ws.DeleteCount),
		Finds:   atomic.LoadUint64(&ws.FindCount),
		Hits:    atomic.LoadUint64(&ws.HitCount),
	}
}

func (ws *WorkloadStats) GetReadWriteRatio() float64 {
	reads := atomic.LoadUint64(&ws.FindCount)
	writes := atomic.LoadUint64(&ws.AddCount) + atomic.LoadUint64(&ws.DeleteCount)

	if writes == 0 {
		if reads > 0 {
			return 100.0
		}
		return 0.0
	}
	return float64(reads) / float64(writes)
}

func (ws *WorkloadStats) HitRatio() float64 {
	finds := atomic.LoadUint64(&ws.FindCount)
	if finds == 0 {
		return 0.0
	}
	return float64(atomic.LoadUint64(&ws.HitCount)) / float64(finds)
}
