package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"contactdb/pkg/common"
)

// JSONBackend keeps the snapshot as a JSON array of
// {"name", "phone", "remark"} objects, the contacts.json layout.
type JSONBackend struct {
	path string
	mu   sync.Mutex
}

func NewJSONBackend(path string) *JSONBackend {
	return &JSONBackend{path: path}
}

// Replace writes to a temp file and renames it over the old snapshot.
func (j *JSONBackend) Replace(contacts []common.Contact) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if contacts == nil {
		contacts = []common.Contact{}
	}
	data, err := json.MarshalIndent(contacts, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(j.path), filepath.Base(j.path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), j.path)
}

// LoadAll returns nothing, without error, when no snapshot exists yet.
func (j *JSONBackend) LoadAll() ([]common.Contact, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := os.ReadFile(j.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var contacts []common.Contact
	if err := json.Unmarshal(data, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (j *JSONBackend) Truncate() error {
	return j.Replace(nil)
}

func (j *JSONBackend) Close() error {
	return nil
}
