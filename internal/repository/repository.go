// Copyright 2025 The SpeechScribe Authors
// Licensed under the EUPL-1.2

// Package repository implements the user directory on top of SQLite.
package repository

import (
	"errors"
	"strings"

	"github.com/vinovest/sqlx"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists is returned when creating a record whose key is taken.
var ErrAlreadyExists = errors.New("record already exists")

// Repository wraps the database connection for directory operations.
type Repository struct {
	db *sqlx.DB
}

// New creates a new Repository instance.
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// isUniqueViolation reports whether err is a SQLite unique-constraint error.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
