package common

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// Contacts travel as three length-prefixed strings:
// [NameLen 2B][Name][PhoneLen 2B][Phone][RemarkLen 4B][Remark]

const (
	MaxNameLen   = 0xFFFF
	MaxPhoneLen  = 0xFFFF
	MaxRemarkLen = 1 << 20

	// MaxContactSize bounds one encoded contact.
	MaxContactSize = 2 + MaxNameLen + 2 + MaxPhoneLen + 4 + MaxRemarkLen

	minContactSize = 2 + 2 + 4
)

var ErrFieldTooLong = errors.New("contact field too long")

func WriteContact(w io.Writer, c Contact) error {
	if len(c.Name) > MaxNameLen || len(c.Phone) > MaxPhoneLen || len(c.Remark) > MaxRemarkLen {
		return ErrFieldTooLong
	}
	if err := writeString16(w, c.Name); err != nil {
		return err
	}
	if err := writeString16(w, c.Phone); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(c.Remark))); err != nil {
		return err
	}
	_, err := io.WriteString(w, c.Remark)
	return err
}

func ReadContact(r io.Reader) (Contact, error) {
	name, err := readString16(r)
	if err != nil {
		return Contact{}, err
	}
	phone, err := readString16(r)
	if err != nil {
		return Contact{}, err
	}
	var remarkLen uint32
	if err := binary.Read(r, binary.BigEndian, &remarkLen); err != nil {
		return Contact{}, err
	}
	if remarkLen > MaxRemarkLen {
		return Contact{}, ErrFieldTooLong
	}
	remark := make([]byte, remarkLen)
	if _, err := io.ReadFull(r, remark); err != nil {
		return Contact{}, err
	}
	return Contact{Name: name, Phone: phone, Remark: string(remark)}, nil
}

// EncodeContact returns the binary form of a single contact.
func EncodeContact(c Contact) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := WriteContact(buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeContact(data []byte) (Contact, error) {
	return ReadContact(bytes.NewReader(data))
}

// EncodeContacts writes [Count 4B] followed by each contact.
func EncodeContacts(contacts []Contact) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.BigEndian, uint32(len(contacts))); err != nil {
		return nil, err
	}
	for _, c := range contacts {
		if err := WriteContact(buf, c); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func DecodeContacts(data []byte) ([]Contact, error) {
	r := bytes.NewReader(data)
	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, err
	}
	if int64(count)*minContactSize > int64(r.Len()) {
		return nil, io.ErrUnexpectedEOF
	}
	contacts := make([]Contact, 0, count)
	for i := uint32(0); i < count; i++ {
		c, err := ReadContact(r)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}

func writeString16(w io.Writer, s string) error {
	if err := binary.Write(w, binary.BigEndian, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString16(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}
