package core

import (
	"sync"
	"time"

	"github.com/dkeye/WatchTogether/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	mu      sync.Mutex
	sess    *domain.Session
	removed bool
}

// memoryStore is a threadsafe in-memory session table.
// Lock order is always entry.mu before memoryStore.mu.
type memoryStore struct {
	mu      sync.RWMutex
	entries map[domain.SessionID]*sessionEntry
}

func NewSessionStore() SessionStore {
	return &memoryStore{entries: make(map[domain.SessionID]*sessionEntry)}
}

func (m *memoryStore) Create(s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[s.ID]; ok {
		return domain.ErrSessionExists
	}
	m.entries[s.ID] = &sessionEntry{sess: s}
	log.Info().Str("module", "core.store").Str("session", string(s.ID)).Str("host", string(s.Host)).Msg("session stored")
	return nil
}

func (m *memoryStore) lookup(id domain.SessionID) (*sessionEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	return e, ok
}

func (m *memoryStore) Get(id domain.SessionID) (domain.Session, error) {
	e, ok := m.lookup(id)
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return e.sess.Snapshot(), nil
}

func (m *memoryStore) Update(id domain.SessionID, fn UpdateFunc) error {
	e, ok := m.lookup(id)
	if !ok {
		return domain.ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	// The entry may have been removed between lookup and lock.
	if e.removed {
		return domain.ErrSessionNotFound
	}
	remove, err := fn(e.sess)
	if err != nil {
		return err
	}
	if remove {
		m.removeLocked(e)
	}
	return nil
}

func (m *memoryStore) View(id domain.SessionID, fn func(s *domain.Session)) error {
	return m.Update(id, func(s *domain.Session) (bool, error) {
		fn(s)
		return false, nil
	})
}

// removeLocked expects e.mu to be held.
func (m *memoryStore) removeLocked(e *sessionEntry) {
	e.removed = true
	m.mu.Lock()
	delete(m.entries, e.sess.ID)
	m.mu.Unlock()
	log.Info().Str("module", "core.store").Str("session", string(e.sess.ID)).Msg("session removed")
}

func (m *memoryStore) snapshotEntries() []*sessionEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*sessionEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	return out
}

func (m *memoryStore) RemoveExpired(now time.Time, ttl time.Duration, onRemove func(s *domain.Session)) []domain.Session {
	var removed []domain.Session
	for _, e := range m.snapshotEntries() {
		e.mu.Lock()
		if !e.removed && e.sess.Expired(now, ttl) {
			m.removeLocked(e)
			if onRemove != nil {
				onRemove(e.sess)
			}
			removed = append(removed, e.sess.Snapshot())
		}
		e.mu.Unlock()
	}
	return removed
}

func (m *memoryStore) List() []domain.Session {
	entries := m.snapshotEntries()
	out := make([]domain.Session, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.removed {
			out = append(out, e.sess.Snapshot())
		}
		e.mu.Unlock()
	}
	return out
}

func (m *memoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
