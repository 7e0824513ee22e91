package memory

import (
	"testing"

	"contactdb/pkg/common"
)

func TestArenaAllocGetFree(t *testing.T) {
	a := NewArena(8)
	s1 := a.Alloc(common.Contact{Name: "Zhang San", Phone: "13800000001"})
	s2 := a.Alloc(common.Contact{Name: "Li Si", Phone: "13800000002"})

	if s1.ID == s2.ID {
		t.Fatalf("expected distinct ids, got %d twice", s1.ID)
	}
	if a.Count() != 2 {
		t.Fatalf("expected 2 slots, got %d", a.Count())
	}

	got, ok := a.Get(s2.ID)
	if !ok || got.Contact.Phone != "13800000002" {
		t.Fatalf("Get(%d): ok=%v slot=%+v", s2.ID, ok, got)
	}

	freed, ok := a.Free(s1.ID)
	if !ok || freed != s1 {
		t.Fatalf("Free(%d): ok=%v", s1.ID, ok)
	}
	if _, ok := a.Get(s1.ID); ok {
		t.Fatalf("expected slot %d gone after Free", s1.ID)
	}
	if _, ok := a.Free(s1.ID); ok {
		t.Fatalf("expected second Free to report missing")
	}
	if a.Count() != 1 {
		t.Fatalf("expected 1 slot, got %d", a.Count())
	}
}

func TestArenaResetNeverReusesIDs(t *testing.T) {
	a := NewArena(8)
	old := a.Alloc(common.Contact{Name: "a", Phone: "1"})
	a.Reset()
	if a.Count() != 0 {
		t.Fatalf("expected empty arena after Reset, got %d", a.Count())
	}
	fresh := a.Alloc(common.Contact{Name: "a", Phone: "1"})
	if fresh.ID <= old.ID {
		t.Fatalf("expected id > %d after Reset, got %d", old.ID, fresh.ID)
	}
}
