// Copyright 2025 The SpeechScribe Authors
// Licensed under the EUPL-1.2

package approval_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/speechscribe/speechscribe/internal/models"
	"github.com/speechscribe/speechscribe/internal/repository"
	"github.com/speechscribe/speechscribe/internal/services/approval"
	"github.com/speechscribe/speechscribe/internal/services/email"
	"github.com/speechscribe/speechscribe/internal/services/magiclink"
	"github.com/speechscribe/speechscribe/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminEmail = "admin@example.com"

func TestMain(m *testing.M) {
	if err := testutil.InitI18N(); err != nil {
		panic(err)
	}
	m.Run()
}

func newService(t *testing.T) (*approval.Service, *repository.Repository, *testutil.RecordingSender) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	tokens := testutil.NewTokenStore(t)
	sender := &testutil.RecordingSender{}
	links := magiclink.NewService(repo, tokens, sender, "https://app.example.com", time.Minute)
	return approval.NewService(repo, links, adminEmail), repo, sender
}

func TestIsAdmin(t *testing.T) {
	svc, _, _ := newService(t)

	assert.True(t, svc.IsAdmin(adminEmail))
	assert.False(t, svc.IsAdmin("alice@example.com"))
	assert.False(t, svc.IsAdmin("Admin@example.com")) // exact match only
	assert.False(t, svc.IsAdmin(""))
}

func TestIsAdmin_UnconfiguredMatchesNobody(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc := approval.NewService(repo, nil, "")

	assert.False(t, svc.IsAdmin(""))
	assert.False(t, svc.IsAdmin("anyone@example.com"))
}

func TestListPending(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	testutil.NewTestUser(t, repo, "alice@example.com", "Alice")
	testutil.NewApprovedUser(t, repo, "carol@example.com", "Carol")

	pending, err := svc.ListPending(ctx)

	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "alice@example.com", pending[0].Email)
	assert.Equal(t, models.StatusPending, pending[0].Status)
}

func TestApprove(t *testing.T) {
	svc, repo, sender := newService(t)
	ctx := context.Background()

	testutil.NewTestUser(t, repo, "alice@example.com", "Alice")

	applied, err := svc.Approve(ctx, "alice@example.com", adminEmail)

	require.NoError(t, err)
	assert.True(t, applied)

	user, err := repo.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, user.Status)
	require.NotNil(t, user.ApprovedAt)
	assert.WithinDuration(t, time.Now(), *user.ApprovedAt, time.Second)

	// Approval sends exactly one sign-in link, to the approved account.
	require.Equal(t, 1, sender.Count())
	assert.Equal(t, "alice@example.com", sender.Messages[0].To)
}

func TestApprove_NonAdminFailsClosed(t *testing.T) {
	svc, repo, sender := newService(t)
	ctx := context.Background()

	testutil.NewTestUser(t, repo, "alice@example.com", "Alice")

	applied, err := svc.Approve(ctx, "alice@example.com", "alice@example.com")

	require.NoError(t, err)
	assert.False(t, applied)
	assert.Zero(t, sender.Count())

	// No mutation happened.
	user, err := repo.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, user.Status)
	assert.Nil(t, user.ApprovedAt)
}

func TestApprove_AbsentTarget(t *testing.T) {
	svc, _, sender := newService(t)

	applied, err := svc.Approve(context.Background(), "ghost@example.com", adminEmail)

	require.NoError(t, err)
	assert.False(t, applied)
	assert.Zero(t, sender.Count())
}

func TestApprove_AlreadyApprovedIsNoop(t *testing.T) {
	svc, repo, sender := newService(t)
	ctx := context.Background()

	user := testutil.NewApprovedUser(t, repo, "alice@example.com", "Alice")
	firstApproval := *user.ApprovedAt

	applied, err := svc.Approve(ctx, "alice@example.com", adminEmail)

	require.NoError(t, err)
	assert.False(t, applied)
	assert.Zero(t, sender.Count())

	got, err := repo.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, firstApproval, *got.ApprovedAt, time.Second)
}

func TestApprove_RejectedIsNoop(t *testing.T) {
	svc, repo, sender := newService(t)
	ctx := context.Background()

	testutil.NewTestUser(t, repo, "mallory@example.com", "Mallory")
	testutil.SetUserStatus(t, repo, "mallory@example.com", models.StatusRejected)

	applied, err := svc.Approve(ctx, "mallory@example.com", adminEmail)

	require.NoError(t, err)
	assert.False(t, applied)
	assert.Zero(t, sender.Count())
}

func TestApprove_DeliveryFailurePropagates(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	tokens := testutil.NewTokenStore(t)
	cause := errors.New("relay unavailable")
	sender := &testutil.FailingSender{Err: &email.DeliveryError{Err: cause}}
	links := magiclink.NewService(repo, tokens, sender, "https://app.example.com", time.Minute)
	svc := approval.NewService(repo, links, adminEmail)
	ctx := context.Background()

	testutil.NewTestUser(t, repo, "alice@example.com", "Alice")

	applied, err := svc.Approve(ctx, "alice@example.com", adminEmail)

	// The approval is persisted, but the delivery failure is not swallowed.
	assert.True(t, applied)
	require.Error(t, err)
	assert.True(t, email.IsDeliveryError(err))

	user, lookupErr := repo.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, lookupErr)
	assert.Equal(t, models.StatusApproved, user.Status)
}

// Full lifecycle: register, list, approve, sign in with the mailed link,
// and confirm the link is single use.
func TestApprovalLifecycle(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	tokens := testutil.NewTokenStore(t)
	sender := &testutil.RecordingSender{}
	links := magiclink.NewService(repo, tokens, sender, "https://app.example.com", time.Minute)
	svc := approval.NewService(repo, links, adminEmail)
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, "a@x.com", "Alice")
	require.NoError(t, err)

	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "a@x.com", pending[0].Email)

	applied, err := svc.Approve(ctx, "a@x.com", adminEmail)
	require.NoError(t, err)
	assert.True(t, applied)
	require.Equal(t, 1, sender.Count())

	got, err := repo.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)

	token := sender.LastToken(t)
	emailAddr, err := links.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", emailAddr)

	_, err = links.Verify(ctx, token)
	assert.ErrorIs(t, err, magiclink.ErrVerificationFailed)
}
