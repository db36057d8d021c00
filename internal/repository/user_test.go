// Copyright 2025 The SpeechScribe Authors
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/speechscribe/speechscribe/internal/models"
	"github.com/speechscribe/speechscribe/internal/repository"
	"github.com/speechscribe/speechscribe/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "alice@example.com", "Alice")

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, models.StatusPending, user.Status)
	assert.WithinDuration(t, time.Now(), user.CreatedAt, time.Second)
	assert.Nil(t, user.ApprovedAt)
	assert.Nil(t, user.LastLogin)
}

func TestCreateUser_AlreadyExists(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, "alice@example.com", "Alice")
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, "alice@example.com", "Imposter")

	assert.ErrorIs(t, err, repository.ErrAlreadyExists)

	// The original record must survive untouched.
	user, err := repo.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetUserByEmail(context.Background(), "ghost@example.com")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetUserByEmail_CaseSensitive(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, "Alice@example.com", "Alice")
	require.NoError(t, err)

	// Emails are identifiers used verbatim; no case folding happens.
	_, err = repo.GetUserByEmail(ctx, "alice@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetUserByEmail(ctx, "Alice@example.com")
	assert.NoError(t, err)
}

func TestUpdateUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "alice@example.com", "Alice")
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, user.Approve(now))
	user.LastLogin = &now

	err = repo.UpdateUser(ctx, user)
	require.NoError(t, err)

	got, err := repo.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
	require.NotNil(t, got.ApprovedAt)
	assert.WithinDuration(t, now, *got.ApprovedAt, time.Second)
	require.NotNil(t, got.LastLogin)
	assert.WithinDuration(t, now, *got.LastLogin, time.Second)
}

func TestUpdateUser_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	err := repo.UpdateUser(context.Background(), &models.User{
		Email:  "ghost@example.com",
		Status: models.StatusApproved,
	})

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListUsersByStatus(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, "alice@example.com", "Alice")
	require.NoError(t, err)
	_, err = repo.CreateUser(ctx, "bob@example.com", "Bob")
	require.NoError(t, err)

	carol, err := repo.CreateUser(ctx, "carol@example.com", "Carol")
	require.NoError(t, err)
	require.NoError(t, carol.Approve(time.Now()))
	require.NoError(t, repo.UpdateUser(ctx, carol))

	pending, err := repo.ListUsersByStatus(ctx, models.StatusPending)
	require.NoError(t, err)

	emails := make([]string, 0, len(pending))
	for _, u := range pending {
		emails = append(emails, u.Email)
	}
	// Order is not part of the contract, so only membership is asserted.
	assert.ElementsMatch(t, []string{"alice@example.com", "bob@example.com"}, emails)

	approved, err := repo.ListUsersByStatus(ctx, models.StatusApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, "carol@example.com", approved[0].Email)
}

func TestCountUsers(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	count, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = repo.CreateUser(ctx, "alice@example.com", "Alice")
	require.NoError(t, err)

	count, err = repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
