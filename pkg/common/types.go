package common

import "fmt"

// ContactID identifies a live record inside the engine. IDs are never reused.
type ContactID uint64

// Contact is one directory entry. Records are never edited in place.
type Contact struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Remark string `json:"remark"`
}

func (c Contact) String() string {
	return fmt.Sprintf("Contact{Name: %q, Phone: %q, Remark: %q}", c.Name, c.Phone, c.Remark)
}
