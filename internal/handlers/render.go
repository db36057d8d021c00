// Copyright 2025 The SpeechScribe Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// renderPage executes the named page template into the response.
func renderPage(c echo.Context, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	return c.HTML(status, buf.String())
}

// csrfToken returns the CSRF token installed by the middleware, if any.
func csrfToken(c echo.Context) string {
	if token, ok := c.Get("csrf").(string); ok {
		return token
	}
	return ""
}
