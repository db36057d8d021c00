// Copyright 2025 The SpeechScribe Authors
// Licensed under the EUPL-1.2

// Package approval gates account activation behind a single configured
// administrator identity.
package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/speechscribe/speechscribe/internal/models"
	"github.com/speechscribe/speechscribe/internal/repository"
	"github.com/speechscribe/speechscribe/internal/services/magiclink"
)

// Service implements the admin approval workflow.
type Service struct {
	repo       *repository.Repository
	links      *magiclink.Service
	adminEmail string
}

// NewService wires the approval workflow. adminEmail is the single
// privileged identity; there is no role table and no delegation.
func NewService(repo *repository.Repository, links *magiclink.Service, adminEmail string) *Service {
	return &Service{
		repo:       repo,
		links:      links,
		adminEmail: adminEmail,
	}
}

// IsAdmin reports whether email is the configured administrator. The match
// is exact; an unconfigured admin matches nobody.
func (s *Service) IsAdmin(email string) bool {
	return s.adminEmail != "" && email == s.adminEmail
}

// ListPending returns all accounts awaiting review. Order is not guaranteed.
func (s *Service) ListPending(ctx context.Context) ([]models.User, error) {
	return s.repo.ListUsersByStatus(ctx, models.StatusPending)
}

// Approve moves a pending account to approved and mails its first sign-in
// link. The returned bool reports whether the approval was applied.
//
// It fails closed, with no mutation and no explanation, when the acting
// identity is not the administrator, when the target is absent, or when the
// target is not currently pending. A mail delivery failure after the status
// change is persisted is returned as an error alongside applied == true.
func (s *Service) Approve(ctx context.Context, targetEmail, actingEmail string) (bool, error) {
	if !s.IsAdmin(actingEmail) {
		slog.Warn("approval denied", "acting_email", actingEmail, "target_email", targetEmail)
		return false, nil
	}

	user, err := s.repo.GetUserByEmail(ctx, targetEmail)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up user: %w", err)
	}

	if err := user.Approve(time.Now()); err != nil {
		// Already approved or rejected: a no-op, not an error surface.
		return false, nil
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return false, fmt.Errorf("persisting approval: %w", err)
	}

	slog.Info("user approved", "email", user.Email, "approved_by", actingEmail)

	// Approval doubles as "send the first sign-in link".
	if err := s.links.SendLink(ctx, user.Email); err != nil {
		return true, err
	}

	return true, nil
}
