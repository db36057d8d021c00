// Copyright 2025 The SpeechScribe Authors
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/speechscribe/speechscribe/internal/database"
	"github.com/speechscribe/speechscribe/internal/i18n"
	"github.com/speechscribe/speechscribe/internal/models"
	"github.com/speechscribe/speechscribe/internal/repository"
	"github.com/speechscribe/speechscribe/internal/tokenstore"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
)

// InitI18N loads the message bundles once per test binary.
var InitI18N = sync.OnceValue(func() error {
	return i18n.Init()
})

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, repository.New(db)
}

// NewTokenStore creates an in-memory token store for tests.
func NewTokenStore(t *testing.T) *tokenstore.MemoryStore {
	t.Helper()
	s := tokenstore.NewMemory()
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// NewTestUser creates a pending user in the directory.
func NewTestUser(t *testing.T, repo *repository.Repository, email, name string) *models.User {
	t.Helper()
	user, err := repo.CreateUser(context.Background(), email, name)
	require.NoError(t, err)
	return user
}

// NewApprovedUser creates a user and moves it straight to approved.
func NewApprovedUser(t *testing.T, repo *repository.Repository, email, name string) *models.User {
	t.Helper()
	user := NewTestUser(t, repo, email, name)
	require.NoError(t, user.Approve(time.Now()))
	require.NoError(t, repo.UpdateUser(context.Background(), user))
	return user
}

// SetUserStatus forces a record into a status, bypassing the transition
// table. This stands in for the direct administrative data edits the
// approval flow itself never performs.
func SetUserStatus(t *testing.T, repo *repository.Repository, email string, status models.Status) {
	t.Helper()
	ctx := context.Background()
	user, err := repo.GetUserByEmail(ctx, email)
	require.NoError(t, err)
	user.Status = status
	require.NoError(t, repo.UpdateUser(ctx, user))
}

// SentMessage is one recorded delivery.
type SentMessage struct {
	To      string
	Subject string
	Body    string
}

var tokenPattern = regexp.MustCompile(`token=([A-Za-z0-9_\-%]+)`)

// RecordingSender is an email.Sender that records messages instead of
// delivering them.
type RecordingSender struct {
	mu       sync.Mutex
	Messages []SentMessage
}

// Send records the message.
func (s *RecordingSender) Send(_ context.Context, to, subject, htmlBody string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = append(s.Messages, SentMessage{To: to, Subject: subject, Body: htmlBody})
	return nil
}

// Count returns the number of recorded messages.
func (s *RecordingSender) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Messages)
}

// LastToken extracts the magic-link token from the most recent message.
func (s *RecordingSender) LastToken(t *testing.T) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.Messages, "no messages recorded")
	match := tokenPattern.FindStringSubmatch(s.Messages[len(s.Messages)-1].Body)
	require.Len(t, match, 2, "no token found in message body")
	return match[1]
}

// FailingSender is an email.Sender that always fails with the given error.
type FailingSender struct {
	Err error
}

// Send returns the configured error.
func (s *FailingSender) Send(context.Context, string, string, string) error {
	return s.Err
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}
