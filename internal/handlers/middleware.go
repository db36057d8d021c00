// Copyright 2025 The SpeechScribe Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const emailContextKey = "user_email"

// currentEmail returns the session email installed by RequireAuth.
func currentEmail(c echo.Context) string {
	if email, ok := c.Get(emailContextKey).(string); ok {
		return email
	}
	return ""
}

// RequireAuth redirects requests without a valid session to the sign-in
// page and installs the verified email into the echo context.
func (h *Handlers) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		email, ok := h.sessions.Email(c.Request())
		if !ok {
			return c.Redirect(http.StatusSeeOther, "/auth/login")
		}
		c.Set(emailContextKey, email)
		return next(c)
	}
}

// RequireAdmin rejects sessions that do not belong to the configured
// administrator. Must run after RequireAuth.
func (h *Handlers) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !h.approvals.IsAdmin(currentEmail(c)) {
			return echo.NewHTTPError(http.StatusForbidden)
		}
		return next(c)
	}
}
