package core

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"contactdb/pkg/common"
	"contactdb/pkg/core/index"
	"contactdb/pkg/core/memory"
	"contactdb/pkg/core/structure"
)

const arenaDegree = 32

// Options fixes which prefix trees a Directory maintains.
type Options struct {
	NamePrefixIndex  bool
	PhonePrefixIndex bool
}

// Stats is the summary returned by Directory.Stats.
type Stats struct {
	TotalContacts     int  `json:"total_contacts"`
	UniqueNames       int  `json:"unique_names"`
	NameIndexEnabled  bool `json:"name_index_enabled"`
	PhoneIndexEnabled bool `json:"phone_index_enabled"`

	// Tree sizes, root included; 0 when the tree is disabled.
	NameTreeNodes  int `json:"name_tree_nodes"`
	PhoneTreeNodes int `json:"phone_tree_nodes"`
}

// Directory keeps the insertion-order list, the exact hash indexes and the
// optional prefix trees consistent. Every structure refers to records by
// ContactID; the arena owns the records themselves.
//
// A Directory is not safe for concurrent use; see Store.
type Directory struct {
	opts      Options
	arena     *memory.Arena
	list      *structure.List[common.ContactID]
	exact     *index.ExactIndex
	nameTrie  *structure.PrefixTree[common.ContactID]
	phoneTrie *structure.PrefixTree[common.ContactID]
}

func NewDirectory(opts Options) *Directory {
	d := &Directory{
		opts:  opts,
		arena: memory.NewArena(arenaDegree),
		list:  structure.NewList[common.ContactID](),
		exact: index.NewExactIndex(),
	}
	if opts.NamePrefixIndex {
		d.nameTrie = structure.NewPrefixTree[common.ContactID]()
	}
	if opts.PhonePrefixIndex {
		d.phoneTrie = structure.NewPrefixTree[common.ContactID]()
	}
	return d
}

// Add creates a record. All checks run before any structure is touched.
func (d *Directory) Add(name, phone, remark string) (common.Contact, error) {
	if name == "" || phone == "" {
		return common.Contact{}, fmt.Errorf("%w: name and phone must not be empty", ErrValidation)
	}
	// The trees walk runes; invalid bytes would all collapse into U+FFFD.
	if !utf8.ValidString(name) || !utf8.ValidString(phone) {
		return common.Contact{}, fmt.Errorf("%w: name and phone must be valid UTF-8", ErrValidation)
	}
	if len(name) > common.MaxNameLen || len(phone) > common.MaxPhoneLen || len(remark) > common.MaxRemarkLen {
		return common.Contact{}, fmt.Errorf("%w: %v", ErrValidation, common.ErrFieldTooLong)
	}
	if _, taken := d.exact.LookupPhone(phone); taken {
		return common.Contact{}, fmt.Errorf("%w: %s", ErrDuplicatePhone, phone)
	}

	c := common.Contact{Name: name, Phone: phone, Remark: remark}
	slot := d.arena.Alloc(c)
	slot.Node = d.list.PushBack(slot.ID)
	d.exact.Insert(slot.ID, c)
	if d.nameTrie != nil {
		d.nameTrie.Insert(name, slot.ID)
	}
	if d.phoneTrie != nil {
		d.phoneTrie.Insert(phone, slot.ID)
	}
	return c, nil
}

// Delete removes the record whose phone equals key, or failing that every
// record whose name equals key. It returns how many records went away.
func (d *Directory) Delete(key string) (int, error) {
	var victims []common.ContactID
	if id, ok := d.exact.LookupPhone(key); ok {
		victims = []common.ContactID{id}
	} else {
		victims = d.exact.LookupName(key)
	}
	if len(victims) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, key)
	}

	n := 0
	for _, id := range victims {
		if d.remove(id) {
			n++
		}
	}
	return n, nil
}

func (d *Directory) remove(id common.ContactID) bool {
	slot, ok := d.arena.Free(id)
	if !ok {
		return false
	}
	c := slot.Contact
	d.list.Remove(slot.Node)
	d.exact.Remove(id, c)
	if d.nameTrie != nil {
		d.nameTrie.Remove(c.Name, id)
	}
	if d.phoneTrie != nil {
		d.phoneTrie.Remove(c.Phone, id)
	}
	return true
}

// FindByNamePrefix returns every record whose name starts with prefix.
// An empty or invalid UTF-8 prefix matches nothing. Order is unspecified.
func (d *Directory) FindByNamePrefix(prefix string) []common.Contact {
	if !validPrefix(prefix) {
		return nil
	}
	if d.nameTrie != nil {
		return d.resolve(d.nameTrie.SearchPrefix(prefix))
	}

	var ids []common.ContactID
	d.exact.EachName(func(name string, bucket []common.ContactID) bool {
		if strings.HasPrefix(name, prefix) {
			ids = append(ids, bucket...)
		}
		return true
	})
	return d.resolve(ids)
}

// FindByPhonePrefix returns every record whose phone starts with prefix.
// Without the phone tree it scans the list, since the phone hash cannot
// answer prefix queries.
func (d *Directory) FindByPhonePrefix(prefix string) []common.Contact {
	if !validPrefix(prefix) {
		return nil
	}
	if d.phoneTrie != nil {
		return d.resolve(d.phoneTrie.SearchPrefix(prefix))
	}

	var out []common.Contact
	d.list.Each(func(id common.ContactID) bool {
		if slot, ok := d.arena.Get(id); ok && strings.HasPrefix(slot.Contact.Phone, prefix) {
			out = append(out, slot.Contact)
		}
		return true
	})
	return out
}

// List returns every record in insertion order.
func (d *Directory) List() []common.Contact {
	out := make([]common.Contact, 0, d.list.Len())
	d.list.Each(func(id common.ContactID) bool {
		if c, ok := d.resolveOne(id); ok {
			out = append(out, c)
		}
		return true
	})
	return out
}

func (d *Directory) Len() int {
	return d.list.Len()
}

func (d *Directory) Stats() Stats {
	st := Stats{
		TotalContacts:     d.list.Len(),
		UniqueNames:       d.exact.NameCount(),
		NameIndexEnabled:  d.opts.NamePrefixIndex,
		PhoneIndexEnabled: d.opts.PhonePrefixIndex,
	}
	if d.nameTrie != nil {
		st.NameTreeNodes = d.nameTrie.NodeCount()
	}
	if d.phoneTrie != nil {
		st.PhoneTreeNodes = d.phoneTrie.NodeCount()
	}
	return st
}

func (d *Directory) Options() Options {
	return d.opts
}

// Reset drops every record, keeping the index options.
func (d *Directory) Reset() {
	d.arena.Reset()
	d.list = structure.NewList[common.ContactID]()
	d.exact.Reset()
	if d.nameTrie != nil {
		d.nameTrie = structure.NewPrefixTree[common.ContactID]()
	}
	if d.phoneTrie != nil {
		d.phoneTrie = structure.NewPrefixTree[common.ContactID]()
	}
}

func validPrefix(prefix string) bool {
	return prefix != "" && utf8.ValidString(prefix)
}

func (d *Directory) resolve(ids []common.ContactID) []common.Contact {
	if len(ids) == 0 {
		return nil
	}
	out := make([]common.Contact, 0, len(ids))
	for _, id := range ids {
		if c, ok := d.resolveOne(id); ok {
			out = append(out, c)
		}
	}
	return out
}

func (d *Directory) resolveOne(id common.ContactID) (common.Contact, bool) {
	slot, ok := d.arena.Get(id)
	if !ok {
		return common.Contact{}, false
	}
	return slot.Contact, true
}
