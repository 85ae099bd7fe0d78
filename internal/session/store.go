// Package session implements the server-side session store backing cookie
// authentication. Session identifiers are opaque 256-bit random values; the
// security context they carry is a Principal projected from the user record.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"sync"
	"time"
)

// Principal is the authenticated identity attached to a request. It carries
// no password material.
type Principal struct {
	UserID   int64
	Username string
}

type Session struct {
	ID        string
	Principal Principal
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store is an in-memory session repository. All operations take the write
// lock or the read lock for their full duration, so identifier rotation is
// atomic: no reader can observe the old identifier gone and the new one not
// yet present for a session that was rotated.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Store{
		sessions: map[string]Session{},
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create registers a new session with a freshly generated identifier.
func (s *Store) Create(p Principal) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(p)
}

// Rotate discards oldID (if it exists) and registers a new session for p
// under a fresh identifier, in one critical section. Called on every
// successful login so a fixed pre-auth identifier is never valid post-auth.
func (s *Store) Rotate(oldID string, p Principal) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, oldID)
	return s.createLocked(p)
}

func (s *Store) createLocked(p Principal) Session {
	now := s.now()
	sess := Session{
		ID:        newSessionID(),
		Principal: p,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.sessions[sess.ID] = sess
	return sess
}

// Get resolves id to a live session. An unknown or expired identifier maps
// to "unauthenticated".
func (s *Store) Get(id string) (Session, bool) {
	if id == "" {
		return Session{}, false
	}

	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || s.now().After(sess.ExpiresAt) {
		return Session{}, false
	}
	return sess, true
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// PurgeExpired removes sessions past their expiry and reports how many were
// dropped.
func (s *Store) PurgeExpired() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for id, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, id)
			purged++
		}
	}
	return purged
}

// StartSweeper purges expired sessions on a fixed interval until ctx is done.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if purged := s.PurgeExpired(); purged > 0 {
				slog.Info("purged expired sessions", "count", purged)
			}
		}
	}
}

func newSessionID() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
