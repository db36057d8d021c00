// Copyright 2025 The SpeechScribe Authors
// Licensed under the EUPL-1.2

// Package tokenstore persists single-use magic-link tokens with per-key
// expiry. The store owns token lifetime: once the TTL elapses, the token is
// unobservable to Get and Consume whether or not anyone deleted it.
package tokenstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// ErrTokenNotFound is returned when a token is absent, expired, or already
// consumed. Callers must not distinguish between those causes.
var ErrTokenNotFound = errors.New("token not found")

// Store maps magic-link tokens to the email address they were issued for.
type Store interface {
	// Put stores the association, expiring it after ttl.
	Put(ctx context.Context, token, email string, ttl time.Duration) error
	// Get returns the email for a live token, or ErrTokenNotFound.
	Get(ctx context.Context, token string) (string, error)
	// Delete removes a token. Deleting an absent token is a no-op.
	Delete(ctx context.Context, token string) error
	// Consume atomically fetches and deletes a token. Of two concurrent
	// calls for the same token at most one receives the email; the other
	// gets ErrTokenNotFound.
	Consume(ctx context.Context, token string) (string, error)
	// Close releases the underlying client or stops background work.
	Close() error
}

// hashToken computes the SHA-256 hex digest used as the storage key. Tokens
// are never stored in plaintext; a deterministic hash keeps the store keyed
// by token while a leaked dump yields no usable links.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
