// Copyright 2025 The SpeechScribe Authors
// Licensed under the EUPL-1.2

// Package models defines the persistent records of the auth subsystem.
package models

import (
	"errors"
	"time"
)

// Status is the lifecycle state of a user account.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	// StatusRejected is a reserved value. No operation in the approval flow
	// produces it; it only appears through direct administrative data edits.
	StatusRejected Status = "rejected"
)

// ErrInvalidTransition is returned when a status change is not in the
// transition table.
var ErrInvalidTransition = errors.New("invalid status transition")

// transitions is the closed set of legal status changes. pending→approved is
// the only one; approved and rejected are terminal.
var transitions = map[Status][]Status{
	StatusPending: {StatusApproved},
}

// Valid reports whether s is one of the known status values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether the transition table allows s → next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// User is one account in the directory, keyed by email. The email is
// case-sensitive and used verbatim as the identifier.
type User struct { //nolint:govet // fieldalignment: readability over optimization
	Email      string     `db:"email" json:"email"`
	Name       string     `db:"name" json:"name"`
	Status     Status     `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	ApprovedAt *time.Time `db:"approved_at" json:"approved_at"`
	LastLogin  *time.Time `db:"last_login" json:"last_login"`
}

// Approve moves the user to approved and records the approval time. It
// returns ErrInvalidTransition unless the user is currently pending.
func (u *User) Approve(now time.Time) error {
	if !u.Status.CanTransitionTo(StatusApproved) {
		return ErrInvalidTransition
	}
	u.Status = StatusApproved
	u.ApprovedAt = &now
	return nil
}

// IsApproved reports whether the account may receive and redeem sign-in links.
func (u *User) IsApproved() bool {
	return u.Status == StatusApproved
}
