package core

import (
	"log"
	"time"
)

// backgroundCheckpoint saves a snapshot whenever the journal has grown past
// limit bytes, checking every interval until the store closes.
func (s *Store) backgroundCheckpoint(interval time.Duration, limit int64) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.checkpointIfLarge(limit)
		case <-s.closeCh:
			return
		}
	}
}

// checkpointIfLarge reports whether a checkpoint was written.
func (s *Store) checkpointIfLarge(limit int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	size, err := s.journal.Size()
	if err != nil || size < limit {
		return false
	}
	log.Printf("[Store] Journal at %d bytes, checkpointing...", size)
	if _, err := s.saveLocked(); err != nil {
		log.Printf("[Store] Checkpoint failed: %v", err)
		return false
	}
	return true
}
