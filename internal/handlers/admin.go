// Copyright 2025 The SpeechScribe Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/speechscribe/speechscribe/internal/i18n"
)

// AdminPending renders the approval queue.
func (h *Handlers) AdminPending(c echo.Context) error {
	ctx := c.Request().Context()

	pending, err := h.approvals.ListPending(ctx)
	if err != nil {
		slog.Error("listing pending users failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	total, err := h.repo.CountUsers(ctx)
	if err != nil {
		slog.Error("counting users failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	var notice string
	if c.QueryParam("approved") != "" {
		notice = i18n.T(ctx, "admin_approved")
	}

	return renderPage(c, http.StatusOK, "admin.html", map[string]any{
		"Title":  i18n.T(ctx, "admin_pending_title"),
		"Users":  pending,
		"Total":  total,
		"Empty":  i18n.T(ctx, "admin_no_pending"),
		"Notice": notice,
		"CSRF":   csrfToken(c),
	})
}

// AdminApprove approves a pending account. The acting identity comes from
// the session, never from the form.
func (h *Handlers) AdminApprove(c echo.Context) error {
	ctx := c.Request().Context()
	target := c.FormValue("email")
	acting := currentEmail(c)

	applied, err := h.approvals.Approve(ctx, target, acting)
	if err != nil {
		// The approval may already be persisted; the operator retries the
		// link from the admin panel rather than re-approving.
		slog.Error("approval failed", "target_email", target, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
	if !applied {
		return echo.NewHTTPError(http.StatusForbidden)
	}

	return c.Redirect(http.StatusSeeOther, "/admin?approved=1")
}
