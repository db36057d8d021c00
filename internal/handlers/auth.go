// Copyright 2025 The SpeechScribe Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/speechscribe/speechscribe/internal/i18n"
	"github.com/speechscribe/speechscribe/internal/services/magiclink"
)

// LoginPage renders the sign-in form.
func (h *Handlers) LoginPage(c echo.Context) error {
	ctx := c.Request().Context()
	return renderPage(c, http.StatusOK, "login.html", map[string]any{
		"Title": i18n.T(ctx, "signin_title"),
		"CSRF":  csrfToken(c),
	})
}

// Login handles the sign-in form submission.
func (h *Handlers) Login(c echo.Context) error {
	ctx := c.Request().Context()
	emailAddr := c.FormValue("email")
	name := c.FormValue("name")

	if emailAddr == "" {
		return h.message(c, http.StatusBadRequest, "signin_email_required")
	}

	status, err := h.links.RequestSignIn(ctx, emailAddr, name)
	if err != nil {
		if errors.Is(err, magiclink.ErrNameRequired) {
			return h.message(c, http.StatusBadRequest, "signin_name_required")
		}
		// Internal causes (store, mail transport) are logged, never echoed.
		slog.Error("sign-in request failed", "email", emailAddr, "error", err)
		return h.message(c, http.StatusInternalServerError, "verify_invalid_link")
	}

	switch status {
	case magiclink.SignInLinkSent:
		return h.message(c, http.StatusOK, "signin_link_sent")
	case magiclink.SignInRegistrationPending:
		return h.message(c, http.StatusOK, "signin_registration_pending")
	default:
		return h.message(c, http.StatusOK, "signin_awaiting_approval")
	}
}

// Verify redeems a magic-link token and establishes the session.
func (h *Handlers) Verify(c echo.Context) error {
	ctx := c.Request().Context()

	token := c.QueryParam("token")
	if token == "" {
		return h.message(c, http.StatusBadRequest, "verify_invalid_link")
	}

	emailAddr, err := h.links.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, magiclink.ErrVerificationFailed) || errors.Is(err, magiclink.ErrNotApproved) {
			// One generic page for both branches; the distinction exists
			// for callers, not for the person holding the link.
			return h.message(c, http.StatusForbidden, "verify_invalid_link")
		}
		slog.Error("verification failed", "error", err)
		return h.message(c, http.StatusInternalServerError, "verify_invalid_link")
	}

	cookie, err := h.sessions.Create(emailAddr)
	if err != nil {
		slog.Error("session creation failed", "email", emailAddr, "error", err)
		return h.message(c, http.StatusInternalServerError, "verify_invalid_link")
	}
	c.SetCookie(cookie)

	return c.Redirect(http.StatusSeeOther, "/")
}

// Logout clears the session.
func (h *Handlers) Logout(c echo.Context) error {
	c.SetCookie(h.sessions.Clear())
	return c.Redirect(http.StatusSeeOther, "/auth/login")
}

// message renders the generic notice page with a localized message.
func (h *Handlers) message(c echo.Context, status int, messageID string) error {
	ctx := c.Request().Context()
	return renderPage(c, status, "message.html", map[string]any{
		"Title":   i18n.T(ctx, "signin_title"),
		"Message": i18n.T(ctx, messageID),
	})
}
