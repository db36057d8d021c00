// Copyright 2025 The SpeechScribe Authors
// Licensed under the EUPL-1.2

package tokenstore

import (
	"context"
	"sync"
	"time"
)

const reaperInterval = time.Minute

type memoryEntry struct {
	email     string
	expiresAt time.Time
}

// MemoryStore is an in-process Store used in tests and for local development
// without a Redis server. Expiry is enforced both lazily on read and by a
// background reaper, so a lapsed TTL is unobservable even before the sweep.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	done    chan struct{}
	closed  sync.Once
}

// NewMemory creates a MemoryStore and starts its reaper goroutine.
func NewMemory() *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		done:    make(chan struct{}),
	}
	go s.reap()
	return s
}

func (s *MemoryStore) reap() {
	ticker := time.NewTicker(reaperInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for key, e := range s.entries {
				if now.After(e.expiresAt) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

// Put stores the token→email association with the given TTL.
func (s *MemoryStore) Put(_ context.Context, token, email string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[hashToken(token)] = memoryEntry{
		email:     email,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Get returns the email for a live token.
func (s *MemoryStore) Get(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := hashToken(token)
	e, ok := s.entries[key]
	if !ok {
		return "", ErrTokenNotFound
	}
	if time.Now().After(e.expiresAt) {
		delete(s.entries, key)
		return "", ErrTokenNotFound
	}
	return e.email, nil
}

// Delete removes a token. Absent tokens are a no-op.
func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, hashToken(token))
	return nil
}

// Consume fetches and deletes the token under a single lock acquisition.
func (s *MemoryStore) Consume(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := hashToken(token)
	e, ok := s.entries[key]
	if !ok {
		return "", ErrTokenNotFound
	}
	delete(s.entries, key)
	if time.Now().After(e.expiresAt) {
		return "", ErrTokenNotFound
	}
	return e.email, nil
}

// Close stops the reaper goroutine. Safe to call more than once.
func (s *MemoryStore) Close() error {
	s.closed.Do(func() { close(s.done) })
	return nil
}
