package session

import (
	"sync"
	"time"

	"storefront-admin/catalog"
	"storefront-admin/promotion"

	"github.com/google/uuid"
)

// Session owns one draft for the duration of a single create or edit
// session. The builder is not safe for concurrent use, so handlers lock the
// session around every access.
type Session struct {
	sync.Mutex

	ID     uuid.UUID
	UserID uuid.UUID

	Builder *promotion.Builder
	Catalog *catalog.Loader

	// PromotionID is set when editing an existing promotion; empty for a
	// fresh create.
	PromotionID string

	StartedAt   time.Time
	lastTouched time.Time
}

// Store manages builder sessions in memory.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewStore returns an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[uuid.UUID]*Session)}
}

// Create registers a new session around the given builder and catalog
// loader.
func (s *Store) Create(userID uuid.UUID, b *promotion.Builder, cat *catalog.Loader, promotionID string) *Session {
	s.cleanupStale()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	sess := &Session{
		ID:          uuid.New(),
		UserID:      userID,
		Builder:     b,
		Catalog:     cat,
		PromotionID: promotionID,
		StartedAt:   now,
		lastTouched: now,
	}
	s.sessions[sess.ID] = sess
	return sess
}

// Get retrieves a session by id and marks it as recently used.
func (s *Store) Get(id uuid.UUID) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.sessions[id]
	if exists {
		sess.lastTouched = time.Now()
	}
	return sess, exists
}

// Delete discards a session; the draft it owned is gone with it.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// cleanupStale drops sessions untouched for over an hour. Runs on each
// Create so abandoned drafts do not accumulate.
func (s *Store) cleanupStale() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-1 * time.Hour)
	for id, sess := range s.sessions {
		if sess.lastTouched.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
