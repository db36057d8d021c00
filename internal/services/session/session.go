// Copyright 2025 The SpeechScribe Authors
// Licensed under the EUPL-1.2

// Package session persists the verified identity in a signed cookie. The
// auth core hands over an email address once; everything beyond that point
// is this thin session layer.
package session

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/speechscribe/speechscribe/internal/config"
)

// Manager encodes and decodes the session cookie.
type Manager struct {
	codec  *securecookie.SecureCookie
	name   string
	maxAge int
	secure bool
}

// NewManager creates a session manager from configuration. An empty hash
// key generates an ephemeral one, which invalidates sessions on restart and
// is only acceptable for development.
func NewManager(cfg *config.SessionConfig, secure bool) (*Manager, error) {
	hashKey, err := keyFromHex(cfg.HashKey)
	if err != nil {
		return nil, fmt.Errorf("session hash key: %w", err)
	}
	if hashKey == nil {
		slog.Warn("no session hash key configured, sessions will not survive restarts")
		hashKey = securecookie.GenerateRandomKey(32)
	}

	var blockKey []byte
	if cfg.BlockKey != "" {
		blockKey, err = keyFromHex(cfg.BlockKey)
		if err != nil {
			return nil, fmt.Errorf("session block key: %w", err)
		}
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(cfg.MaxAge)

	return &Manager{
		codec:  codec,
		name:   cfg.CookieName,
		maxAge: cfg.MaxAge,
		secure: secure,
	}, nil
}

func keyFromHex(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, errors.New("key must be 32 bytes of hex")
	}
	return key, nil
}

// Create returns a session cookie carrying the verified email address.
func (m *Manager) Create(email string) (*http.Cookie, error) {
	value, err := m.codec.Encode(m.name, map[string]string{"email": email})
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}

	return &http.Cookie{
		Name:     m.name,
		Value:    value,
		Path:     "/",
		MaxAge:   m.maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Email extracts the verified email from the request's session cookie.
// A missing, expired, or tampered cookie yields ok == false.
func (m *Manager) Email(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(m.name)
	if err != nil {
		return "", false
	}

	values := map[string]string{}
	if err := m.codec.Decode(m.name, cookie.Value, &values); err != nil {
		return "", false
	}

	email, ok := values["email"]
	if !ok || email == "" {
		return "", false
	}
	return email, true
}

// Clear returns a cookie that removes the session.
func (m *Manager) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     m.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
