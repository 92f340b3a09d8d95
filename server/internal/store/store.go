package store

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/innstack/innstack/server/internal/form"
)

// Session is one calculator form reachable over REST.
type Session struct {
	ID string

	mu       sync.Mutex
	form     *form.Form
	lastSeen atomic.Int64 // unix nanos
	now      func() time.Time
}

// Do runs fn with exclusive access to the session's form and marks the
// session as active.
func (s *Session) Do(fn func(f *form.Form)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen.Store(s.now().UnixNano())
	fn(s.form)
}

// LastSeen returns the time of the most recent Do.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Store is a thread-safe in-memory session store. A background goroutine
// (Run) periodically evicts sessions idle for longer than the TTL.
type Store struct {
	mu      sync.RWMutex
	data    map[string]*Session
	ttl     time.Duration
	newForm func() *form.Form
	now     func() time.Time // injectable for deterministic tests
}

// New creates a Store with the given TTL. newForm builds the form behind
// each new session.
func New(ttl time.Duration, newForm func() *form.Form) *Store {
	return &Store{
		data:    make(map[string]*Session),
		ttl:     ttl,
		newForm: newForm,
		now:     time.Now,
	}
}

// Create starts a new session with an empty form.
func (s *Store) Create() *Session {
	sess := &Session{
		ID:   uuid.NewString(),
		form: s.newForm(),
		now:  s.now,
	}
	sess.lastSeen.Store(s.now().UnixNano())

	s.mu.Lock()
	s.data[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the live session for id. Sessions idle past the TTL are
// reported as missing even before eviction.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	sess, ok := s.data[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !sess.LastSeen().After(s.now().Add(-s.ttl)) {
		return nil, false
	}
	return sess, true
}

// Delete removes the session for id and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[id]
	delete(s.data, id)
	return ok
}

// Count returns the number of sessions currently held, including idle ones
// not yet evicted.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Evict removes sessions whose last event is older than now minus TTL.
// It returns the number of sessions removed.
func (s *Store) Evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := now.Add(-s.ttl)
	removed := 0
	for id, sess := range s.data {
		if !sess.LastSeen().After(cutoff) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// Run starts the background eviction loop. It ticks at half the TTL
// (minimum 1 second). Run blocks until ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Evict(now); n > 0 {
				slog.Debug("store: evicted idle sessions", "count", n)
			}
		}
	}
}
