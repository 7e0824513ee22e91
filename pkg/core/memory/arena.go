package memory

import (
	"contactdb/pkg/common"
	"contactdb/pkg/core/structure"

	"github.com/google/btree"
)

// Slot holds one live record together with its node in the insertion-order
// list, so a delete can unlink it without scanning.
type Slot struct {
	ID      common.ContactID
	Contact common.Contact
	Node    *structure.ListNode[common.ContactID]
}

func (s *Slot) Less(than btree.Item) bool {
	return s.ID < than.(*Slot).ID
}

// Arena is the record slab every other index points into by ContactID.
type Arena struct {
	tree   *btree.BTree
	nextID common.ContactID
}

func NewArena(degree int) *Arena {
	return &Arena{
		tree:   btree.New(degree),
		nextID: 1,
	}
}

// Alloc stores c under a fresh ID and returns its slot.
func (a *Arena) Alloc(c common.Contact) *Slot {
	s := &Slot{ID: a.nextID, Contact: c}
	a.nextID++
	a.tree.ReplaceOrInsert(s)
	return s
}

func (a *Arena) Get(id common.ContactID) (*Slot, bool) {
	res := a.tree.Get(&Slot{ID: id})
	if res == nil {
		return nil, false
	}
	return res.(*Slot), true
}

// Free drops the slot for id and returns it.
func (a *Arena) Free(id common.ContactID) (*Slot, bool) {
	res := a.tree.Delete(&Slot{ID: id})
	if res == nil {
		return nil, false
	}
	return res.(*Slot), true
}

func (a *Arena) Count() int {
	return a.tree.Len()
}

// Reset drops every slot. IDs keep increasing so stale IDs never resolve.
func (a *Arena) Reset() {
	a.tree.Clear(false)
}
