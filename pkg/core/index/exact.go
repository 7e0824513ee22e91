package index

import "contactdb/pkg/common"

// ExactIndex answers exact name and phone lookups in O(1) average time.
// Names map to buckets kept in insertion order; phones are unique.
type ExactIndex struct {
	byName  map[string][]common.ContactID
	byPhone map[string]common.ContactID
}

func NewExactIndex() *ExactIndex {
	return &ExactIndex{
		byName:  make(map[string][]common.ContactID),
		byPhone: make(map[string]common.ContactID),
	}
}

// Insert registers id under both keys. The caller checks phone uniqueness first.
func (x *ExactIndex) Insert(id common.ContactID, c common.Contact) {
	x.byName[c.Name] = append(x.byName[c.Name], id)
	x.byPhone[c.Phone] = id
}

// Remove drops id from its name bucket, deleting the bucket once empty,
// and removes the phone entry if it still points at id.
func (x *ExactIndex) Remove(id common.ContactID, c common.Contact) {
	if bucket, ok := x.byName[c.Name]; ok {
		for i, v := range bucket {
			if v == id {
				bucket = append(bucket[:i], bucket[i+1:]...)
				break
			}
		}
		if len(bucket) == 0 {
			delete(x.byName, c.Name)
		} else {
			x.byName[c.Name] = bucket
		}
	}
	if cur, ok := x.byPhone[c.Phone]; ok && cur == id {
		delete(x.byPhone, c.Phone)
	}
}

func (x *ExactIndex) LookupPhone(phone string) (common.ContactID, bool) {
	id, ok := x.byPhone[phone]
	return id, ok
}

// LookupName returns a copy of the bucket for name, nil if absent.
func (x *ExactIndex) LookupName(name string) []common.ContactID {
	bucket := x.byName[name]
	if len(bucket) == 0 {
		return nil
	}
	return append([]common.ContactID(nil), bucket...)
}

// EachName visits every name bucket in unspecified order until fn returns false.
// fn must not retain or modify ids.
func (x *ExactIndex) EachName(fn func(name string, ids []common.ContactID) bool) {
	for name, ids := range x.byName {
		if !fn(name, ids) {
			return
		}
	}
}

// Len is the number of phone entries.
func (x *ExactIndex) Len() int { return len(x.byPhone) }

// NameCount is the number of distinct names.
func (x *ExactIndex) NameCount() int { return len(x.byName) }

func (x *ExactIndex) Reset() {
	x.byName = make(map[string][]common.ContactID)
	x.byPhone = make(map[string]common.ContactID)
}
