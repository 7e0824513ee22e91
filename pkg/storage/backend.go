package storage

import (
	"database/sql"
	"log"
	"sync"

	"contactdb/pkg/common"

	_ "modernc.org/sqlite"
)

// Backend persists snapshots of the contact list. LoadAll must return
// contacts in the order they were handed to Replace.
type Backend interface {
	Replace(contacts []common.Contact) error
	LoadAll() ([]common.Contact, error)
	Truncate() error
	Close() error
}

type SQLiteBackend struct {
	db *sql.DB
	mu sync.Mutex
}

func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	query := `
	CREATE TABLE IF NOT EXISTS contacts (
		seq    INTEGER PRIMARY KEY AUTOINCREMENT,
		name   TEXT NOT NULL,
		phone  TEXT NOT NULL UNIQUE,
		remark TEXT NOT NULL DEFAULT ''
	);`
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, err
	}

	_, err = db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
	`)
	if err != nil {
		log.Printf("[SQLite] Warning: Failed to set PRAGMA: %v", err)
	}

	return &SQLiteBackend{db: db}, nil
}

// Replace swaps the stored snapshot for contacts inside one transaction.
func (s *SQLiteBackend) Replace(contacts []common.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM contacts"); err != nil {
		tx.Rollback()
		return err
	}

	stmt, err := tx.Prepare("INSERT INTO contacts (name, phone, remark) VALUES (?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, c := range contacts {
		if _, err := stmt.Exec(c.Name, c.Phone, c.Remark); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteBackend) LoadAll() ([]common.Contact, error) {
	rows, err := s.db.Query("SELECT name, phone, remark FROM contacts ORDER BY seq ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []common.Contact
	for rows.Next() {
		var c common.Contact
		if err := rows.Scan(&c.Name, &c.Phone, &c.Remark); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (s *SQLiteBackend) Truncate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("DELETE FROM contacts")
	return err
}

func (s *SQLiteBackend) Close() error {
	return s.db.Close()
}
