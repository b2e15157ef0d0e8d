package services

import (
	"sync"
	"time"

	"github.com/ad/go-telegram-hotspots/internal/models"
)

// SessionStore keeps one dialogue session per user in memory. A per-user
// mutex serializes events from the same user so a double-send can't race a
// read-modify-write, while different users never share a lock.
type SessionStore struct {
	mu      sync.RWMutex
	entries map[int64]*sessionEntry
}

type sessionEntry struct {
	mu      sync.Mutex
	session *models.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		entries: make(map[int64]*sessionEntry),
	}
}

// Get returns the user's session or nil if no dialogue is active.
func (s *SessionStore) Get(userID int64) *models.Session {
	s.mu.RLock()
	entry, ok := s.entries[userID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.session
}

func (s *SessionStore) Put(session *models.Session) {
	s.WithSession(session.UserID, func(*models.Session) *models.Session {
		return session
	})
}

func (s *SessionStore) Clear(userID int64) {
	s.WithSession(userID, func(*models.Session) *models.Session {
		return nil
	})
}

// WithSession runs fn while holding the user's lock. fn receives the current
// session (nil when absent) and returns the session to keep; returning nil
// removes it. All dialogue processing goes through here so that two events
// from one user are applied strictly in arrival order.
func (s *SessionStore) WithSession(userID int64, fn func(*models.Session) *models.Session) {
	entry := s.entry(userID)
	entry.mu.Lock()
	next := fn(entry.session)
	entry.session = next

	// Map maintenance happens under the entry lock; EvictIdle only TryLocks
	// entries, so taking s.mu here cannot deadlock against the sweep.
	s.mu.Lock()
	if next == nil {
		if s.entries[userID] == entry {
			delete(s.entries, userID)
		}
	} else if s.entries[userID] != entry {
		s.entries[userID] = entry
	}
	s.mu.Unlock()
	entry.mu.Unlock()
}

// EvictIdle drops sessions with no activity since the cutoff and returns how
// many were removed. Bounds memory when users abandon dialogues mid-way.
func (s *SessionStore) EvictIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	evicted := 0

	s.mu.Lock()
	defer s.mu.Unlock()
	for userID, entry := range s.entries {
		if !entry.mu.TryLock() {
			continue
		}
		if entry.session == nil {
			delete(s.entries, userID)
		} else if entry.session.UpdatedAt.Before(cutoff) {
			delete(s.entries, userID)
			evicted++
		}
		entry.mu.Unlock()
	}
	return evicted
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *SessionStore) entry(userID int64) *sessionEntry {
	s.mu.RLock()
	entry, ok := s.entries[userID]
	s.mu.RUnlock()
	if ok {
		return entry
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok = s.entries[userID]; ok {
		return entry
	}
	entry = &sessionEntry{}
	s.entries[userID] = entry
	return entry
}
