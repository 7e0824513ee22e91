package monitor

import "testing"

func TestWorkloadCounters(t *testing.T) {
	ws := NewWorkloadStats()
	if ws.GetReadWriteRatio() != 0 {
		t.Fatalf("expected ratio 0 on fresh stats")
	}

	ws.RecordFind(true)
	if ws.GetReadWriteRatio() != 100.0 {
		t.Fatalf("expected read-only ratio 100, got %v", ws.GetReadWriteRatio())
	}

	ws.RecordAdd()
	ws.RecordDelete()
	ws.RecordFind(false)

	snap := ws.Snapshot()
	want := Snapshot{Adds: 1, Deletes: 1, Finds: 2, Hits: 1}
	if snap != want {
		t.Fatalf("snapshot: got %+v, want %+v", snap, want)
	}
	if r := ws.GetReadWriteRatio(); r != 1.0 {
		t.Fatalf("rw ratio: got %v", r)
	}
	if r := ws.HitRatio(); r != 0.5 {
		t.Fatalf("hit ratio: got %v", r)
	}
}
