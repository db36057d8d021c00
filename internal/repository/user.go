// Copyright 2025 The SpeechScribe Authors
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/speechscribe/speechscribe/internal/models"
)

// CreateUser creates a new pending user. It returns ErrAlreadyExists if a
// record for the email is already present; the existing record is never
// overwritten.
func (r *Repository) CreateUser(ctx context.Context, email, name string) (*models.User, error) {
	user := &models.User{
		Email:     email,
		Name:      name,
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, name, status, created_at) VALUES (?, ?, ?, ?)`,
		user.Email, user.Name, user.Status, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email. The email is matched verbatim.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT email, name, status, created_at, approved_at, last_login FROM users WHERE email = ?`,
		email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &user, nil
}

// UpdateUser overwrites the full record for user.Email. Concurrent writers to
// the same record follow last-writer-wins; there is no version check.
func (r *Repository) UpdateUser(ctx context.Context, user *models.User) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET name = ?, status = ?, approved_at = ?, last_login = ? WHERE email = ?`,
		user.Name, user.Status, user.ApprovedAt, user.LastLogin, user.Email)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUsersByStatus returns all users with the given status. Order is not
// part of the contract.
func (r *Repository) ListUsersByStatus(ctx context.Context, status models.Status) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users,
		`SELECT email, name, status, created_at, approved_at, last_login FROM users WHERE status = ?`,
		status)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// CountUsers returns the total number of user records.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}
