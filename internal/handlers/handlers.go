// Copyright 2025 The SpeechScribe Authors
// Licensed under the EUPL-1.2

// Package handlers contains the HTTP surface. It is thin glue over the auth
// services: no state, no recovery logic beyond mapping errors to pages.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/speechscribe/speechscribe/internal/repository"
	"github.com/speechscribe/speechscribe/internal/services/approval"
	"github.com/speechscribe/speechscribe/internal/services/magiclink"
	"github.com/speechscribe/speechscribe/internal/services/session"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	repo      *repository.Repository
	links     *magiclink.Service
	approvals *approval.Service
	sessions  *session.Manager
}

// New creates a new Handlers instance.
func New(repo *repository.Repository, links *magiclink.Service, approvals *approval.Service, sessions *session.Manager) *Handlers {
	return &Handlers{
		repo:      repo,
		links:     links,
		approvals: approvals,
		sessions:  sessions,
	}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Home renders the landing page for a signed-in user.
func (h *Handlers) Home(c echo.Context) error {
	email := currentEmail(c)

	user, err := h.repo.GetUserByEmail(c.Request().Context(), email)
	if err != nil {
		// Session references an account that no longer exists.
		c.SetCookie(h.sessions.Clear())
		return c.Redirect(http.StatusSeeOther, "/auth/login")
	}

	return renderPage(c, http.StatusOK, "home.html", map[string]any{
		"Name":    user.Name,
		"Email":   user.Email,
		"IsAdmin": h.approvals.IsAdmin(user.Email),
		"CSRF":    csrfToken(c),
	})
}
