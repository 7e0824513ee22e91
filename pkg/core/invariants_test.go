package core

import (
	"fmt"

	"contactdb/pkg/common"
)

// checkInvariants verifies that all structures agree.
func (d *Directory) checkInvariants() error {
	n := d.list.Len()
	if d.arena.Count() != n || d.exact.Len() != n {
		return fmt.Errorf("size mismatch: list=%d arena=%d phones=%d", n, d.arena.Count(), d.exact.Len())
	}
	seen := make(map[common.ContactID]bool, n)
	namePrefixes := make(map[string]bool)
	phonePrefixes := make(map[string]bool)
	var err error
	d.list.Each(func(id common.ContactID) bool {
		if seen[id] {
			err = fmt.Errorf("id %d listed twice", id)
			return false
		}
		seen[id] = true
		slot, ok := d.arena.Get(id)
		if !ok {
			err = fmt.Errorf("id %d listed but not in arena", id)
			return false
		}
		if slot.Node == nil || slot.Node.Value != id {
			err = fmt.Errorf("id %d has a stale list node", id)
			return false
		}
		c := slot.Contact
		if pid, ok := d.exact.LookupPhone(c.Phone); !ok || pid != id {
			err = fmt.Errorf("phone %s not indexed to %d", c.Phone, id)
			return false
		}
		hits := 0
		for _, v := range d.exact.LookupName(c.Name) {
			if v == id {
				hits++
			}
		}
		if hits != 1 {
			err = fmt.Errorf("id %d appears %d times in name bucket %q", id, hits, c.Name)
			return false
		}
		addPrefixes(namePrefixes, c.Name)
		addPrefixes(phonePrefixes, c.Phone)
		return true
	})
	if err != nil {
		return err
	}
	if d.nameTrie != nil && d.nameTrie.Len() != n {
		return fmt.Errorf("name tree holds %d entries, want %d", d.nameTrie.Len(), n)
	}
	if d.phoneTrie != nil && d.phoneTrie.Len() != n {
		return fmt.Errorf("phone tree holds %d entries, want %d", d.phoneTrie.Len(), n)
	}
	// Every non-root node lies on the path of a live key, so the node count
	// is exactly the distinct rune prefixes plus the root. A leftover empty
	// node would push it higher.
	if d.nameTrie != nil && d.nameTrie.NodeCount() != len(namePrefixes)+1 {
		return fmt.Errorf("name tree has %d nodes, want %d", d.nameTrie.NodeCount(), len(namePrefixes)+1)
	}
	if d.phoneTrie != nil && d.phoneTrie.NodeCount() != len(phonePrefixes)+1 {
		return fmt.Errorf("phone tree has %d nodes, want %d", d.phoneTrie.NodeCount(), len(phonePrefixes)+1)
	}
	return nil
}

// addPrefixes records every non-empty rune prefix of key.
func addPrefixes(set map[string]bool, key string) {
	for i := range key {
		if i > 0 {
			set[key[:i]] = true
		}
	}
	set[key] = true
}
