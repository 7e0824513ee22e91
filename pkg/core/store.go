package core

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"contactdb/pkg/common"
	"contactdb/pkg/config"
	"contactdb/pkg/monitor"
	"contactdb/pkg/storage"
)

// LoadReport describes how a batch of contacts was applied to the engine.
type LoadReport struct {
	Loaded  int `json:"loaded"`
	Skipped int `json:"skipped"`
}

// Store hosts a Directory for concurrent callers. Every public call holds
// the lock for its whole duration, so the engine sees one operation at a
// time. Mutations are journaled; Save writes a snapshot to the backend
// and clears the journal.
type Store struct {
	mu      sync.RWMutex
	dir     *Directory
	backend storage.Backend
	journal *storage.Journal
	stats   *monitor.WorkloadStats
	conf    *config.Config

	closeCh   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func Open(cfg *config.Config) (*Store, error) {
	if err := os.MkdirAll(cfg.Storage.Path, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	backend, err := openBackend(cfg)
	if err != nil {
		return nil, fmt.Errorf("open backend: %w", err)
	}

	s := &Store{
		dir: NewDirectory(Options{
			NamePrefixIndex:  cfg.Index.NamePrefix,
			PhonePrefixIndex: cfg.Index.PhonePrefix,
		}),
		backend: backend,
		stats:   monitor.NewWorkloadStats(),
		conf:    cfg,
		closeCh: make(chan struct{}),
	}

	if err := s.restoreSnapshot(); err != nil {
		backend.Close()
		return nil, err
	}

	if cfg.Storage.Journal {
		j, err := storage.OpenJournal(filepath.Join(cfg.Storage.Path, "contacts.wal"))
		if err != nil {
			backend.Close()
			return nil, fmt.Errorf("open journal: %w", err)
		}
		s.journal = j
		if err := s.replayJournal(); err != nil {
			s.journal.Close()
			backend.Close()
			return nil, err
		}
		if cfg.Storage.CheckpointBytes > 0 {
			s.wg.Add(1)
			go s.backgroundCheckpoint(cfg.Storage.CheckpointInterval, cfg.Storage.CheckpointBytes)
		}
	}

	return s, nil
}

func openBackend(cfg *config.Config) (storage.Backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendJSON:
		return storage.NewJSONBackend(filepath.Join(cfg.Storage.Path, "contacts.json")), nil
	default:
		return storage.NewSQLiteBackend(filepath.Join(cfg.Storage.Path, "contacts.db"))
	}
}

func (s *Store) restoreSnapshot() error {
	log.Println("[Store] Loading snapshot...")
	contacts, err := s.backend.LoadAll()
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	report := s.apply(contacts)
	log.Printf("[Store] Restored %d contacts from %s backend (%d skipped).", report.Loaded, s.conf.Storage.Backend, report.Skipped)
	return nil
}

func (s *Store) replayJournal() error {
	it, err := s.journal.NewIterator()
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}

	replayed, torn := 0, false
	for {
		e, err := it.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("[Journal] Stopping replay after %d entries: %v", replayed, err)
			torn = true
			break
		}
		switch e.Op {
		case storage.OpAdd:
			_, err = s.dir.Add(e.Contact.Name, e.Contact.Phone, e.Contact.Remark)
		case storage.OpDel:
			_, err = s.dir.Delete(e.Key)
		}
		if err != nil {
			log.Printf("[Journal] Entry %d not applied: %v", replayed, err)
		}
		replayed++
	}
	it.Close()
	log.Printf("[Store] Replayed %d journal entries.", replayed)

	// New entries must not land behind a damaged tail.
	if torn {
		if _, err := s.saveLocked(); err != nil {
			return fmt.Errorf("checkpoint after torn journal: %w", err)
		}
	}
	return nil
}

// apply adds contacts one by one; invalid or duplicate rows are skipped.
func (s *Store) apply(contacts []common.Contact) LoadReport {
	var report LoadReport
	for _, c := range contacts {
		if _, err := s.dir.Add(c.Name, c.Phone, c.Remark); err != nil {
			report.Skipped++
			continue
		}
		report.Loaded++
	}
	return report
}

func (s *Store) Add(name, phone, remark string) (common.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.dir.Add(name, phone, remark)
	if err != nil {
		return c, err
	}
	s.stats.RecordAdd()
	if s.journal != nil {
		if err := s.journal.AppendAdd(c); err != nil {
			log.Printf("[Store] Journal append failed for %s: %v", c.Phone, err)
		}
	}
	return c, nil
}

func (s *Store) Delete(key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.dir.Delete(key)
	if err != nil {
		return n, err
	}
	s.stats.RecordDelete()
	if s.journal != nil {
		if err := s.journal.AppendDelete(key); err != nil {
			log.Printf("[Store] Journal append failed for delete %q: %v", key, err)
		}
	}
	return n, nil
}

func (s *Store) FindByNamePrefix(prefix string) []common.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := s.dir.FindByNamePrefix(prefix)
	s.stats.RecordFind(len(res) > 0)
	return res
}

func (s *Store) FindByPhonePrefix(prefix string) []common.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := s.dir.FindByPhonePrefix(prefix)
	s.stats.RecordFind(len(res) > 0)
	return res
}

func (s *Store) List() []common.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dir.List()
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dir.Stats()
}

func (s *Store) Workload() monitor.Snapshot {
	return s.stats.Snapshot()
}

func (s *Store) ReadWriteRatio() float64 {
	return s.stats.GetReadWriteRatio()
}

// HitRatio is the share of prefix searches that returned at least one contact.
func (s *Store) HitRatio() float64 {
	return s.stats.HitRatio()
}

// JournalSize reports the journal length in bytes, 0 when journaling is off.
func (s *Store) JournalSize() int64 {
	if s.journal == nil {
		return 0
	}
	n, err := s.journal.Size()
	if err != nil {
		return 0
	}
	return n
}

// Save writes the current list to the backend and clears the journal.
// It returns the number of contacts written.
func (s *Store) Save() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() (int, error) {
	contacts := s.dir.List()
	write := func() error { return s.backend.Replace(contacts) }
	if len(contacts) == 0 {
		write = s.backend.Truncate
	}
	if err := write(); err != nil {
		return 0, fmt.Errorf("write snapshot: %w", err)
	}
	if s.journal != nil {
		if err := s.journal.Truncate(); err != nil {
			return len(contacts), fmt.Errorf("truncate journal: %w", err)
		}
	}
	log.Printf("[Store] Saved %d contacts.", len(contacts))
	return len(contacts), nil
}

// Restore replaces every contact with the given list and checkpoints it.
func (s *Store) Restore(contacts []common.Contact) (LoadReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dir.Reset()
	report := s.apply(contacts)
	if _, err := s.saveLocked(); err != nil {
		return report, err
	}
	return report, nil
}

func (s *Store) Close() error {
	s.closeOnce.Do(func() { close(s.closeCh) })
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if s.conf.Storage.SaveOnClose {
		if _, err := s.saveLocked(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.backend.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
