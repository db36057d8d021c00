// Copyright 2025 The SpeechScribe Authors
// Licensed under the EUPL-1.2

package models_test

import (
	"testing"
	"time"

	"github.com/speechscribe/speechscribe/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusValid(t *testing.T) {
	assert.True(t, models.StatusPending.Valid())
	assert.True(t, models.StatusApproved.Valid())
	assert.True(t, models.StatusRejected.Valid())
	assert.False(t, models.Status("banned").Valid())
	assert.False(t, models.Status("").Valid())
}

func TestStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    models.Status
		to      models.Status
		allowed bool
	}{
		{"pending to approved", models.StatusPending, models.StatusApproved, true},
		{"pending to rejected", models.StatusPending, models.StatusRejected, false},
		{"approved to pending", models.StatusApproved, models.StatusPending, false},
		{"approved to approved", models.StatusApproved, models.StatusApproved, false},
		{"rejected to approved", models.StatusRejected, models.StatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestUserApprove(t *testing.T) {
	user := &models.User{
		Email:  "alice@example.com",
		Name:   "Alice",
		Status: models.StatusPending,
	}

	now := time.Now()
	err := user.Approve(now)

	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, user.Status)
	require.NotNil(t, user.ApprovedAt)
	assert.Equal(t, now, *user.ApprovedAt)
}

func TestUserApprove_AlreadyApproved(t *testing.T) {
	approvedAt := time.Now().Add(-time.Hour)
	user := &models.User{
		Email:      "alice@example.com",
		Status:     models.StatusApproved,
		ApprovedAt: &approvedAt,
	}

	err := user.Approve(time.Now())

	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	// Original approval time must not move.
	assert.Equal(t, approvedAt, *user.ApprovedAt)
}

// Rejected is a reserved state: nothing in the approval flow reaches it, and
// nothing leads out of it. This pins the known gap rather than inferring an
// unimplemented reject workflow.
func TestUserApprove_Rejected(t *testing.T) {
	user := &models.User{
		Email:  "mallory@example.com",
		Status: models.StatusRejected,
	}

	err := user.Approve(time.Now())

	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	assert.Equal(t, models.StatusRejected, user.Status)
	assert.Nil(t, user.ApprovedAt)
}
