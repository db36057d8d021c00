// Copyright 2025 The SpeechScribe Authors
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/speechscribe/speechscribe/internal/config"
	"github.com/speechscribe/speechscribe/internal/database"
	"github.com/speechscribe/speechscribe/internal/handlers"
	"github.com/speechscribe/speechscribe/internal/i18n"
	"github.com/speechscribe/speechscribe/internal/repository"
	"github.com/speechscribe/speechscribe/internal/services/approval"
	"github.com/speechscribe/speechscribe/internal/services/email"
	"github.com/speechscribe/speechscribe/internal/services/magiclink"
	"github.com/speechscribe/speechscribe/internal/services/session"
	"github.com/speechscribe/speechscribe/internal/tokenstore"
	"github.com/urfave/cli/v3"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	// Database
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// i18n
	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	// Token store
	tokens, err := openTokenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open token store: %w", err)
	}
	defer func() {
		if closeErr := tokens.Close(); closeErr != nil {
			slog.Error("failed to close token store", "error", closeErr)
		}
	}()

	// Mail
	sender, err := email.NewSMTPSender(&cfg.SMTP)
	if err != nil {
		return fmt.Errorf("failed to configure mail sender: %w", err)
	}

	// Services
	repo := repository.New(db)
	links := magiclink.NewService(repo, tokens, sender, cfg.Server.BaseURL, cfg.Auth.TokenTTL)
	approvals := approval.NewService(repo, links, cfg.Auth.AdminEmail)

	if cfg.Auth.AdminEmail == "" {
		slog.Warn("no admin email configured, nobody can approve accounts")
	}

	secure := strings.HasPrefix(cfg.Server.BaseURL, "https://")
	sessions, err := session.NewManager(&cfg.Session, secure)
	if err != nil {
		return fmt.Errorf("failed to configure sessions: %w", err)
	}

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	setupMiddleware(e, cfg)
	setupRoutes(e, repo, links, approvals, sessions)

	return startWithGracefulShutdown(e, cfg)
}

// openTokenStore connects to Redis when an address is configured and
// falls back to the in-process store otherwise.
func openTokenStore(ctx context.Context, cfg *config.Config) (tokenstore.Store, error) {
	if cfg.Redis.Addr == "" {
		slog.Warn("no redis address configured, magic-link tokens will not survive restarts")
		return tokenstore.NewMemory(), nil
	}
	return tokenstore.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
}

func setupRoutes(e *echo.Echo, repo *repository.Repository, links *magiclink.Service, approvals *approval.Service, sessions *session.Manager) {
	h := handlers.New(repo, links, approvals, sessions)

	e.GET("/health", h.Health)

	e.GET("/auth/login", h.LoginPage)
	e.POST("/auth/login", h.Login)
	e.GET("/verify", h.Verify)
	e.POST("/auth/logout", h.Logout)

	e.GET("/", h.Home, h.RequireAuth)

	admin := e.Group("/admin", h.RequireAuth, h.RequireAdmin)
	admin.GET("", h.AdminPending)
	admin.POST("/approve", h.AdminApprove)
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	tlsResult, err := SetupTLS(cfg)
	if err != nil {
		return fmt.Errorf("TLS setup failed: %w", err)
	}

	errChan := make(chan error, 2)

	// HTTP redirect server for ACME mode
	var httpServer *http.Server

	switch tlsResult.Mode {
	case TLSModeOff:
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeACME:
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, ":443", tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		// HTTP redirect server on :80, also serves the HTTP-01 challenge
		httpServer = &http.Server{
			Addr:              ":80",
			Handler:           tlsResult.HTTPHandler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			slog.Info("HTTP→HTTPS redirect active", "addr", ":80")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeManual:
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, addr, tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown main server", "error", err)
	}

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown HTTP redirect server", "error", err)
		}
	}

	slog.Info("server stopped")
	return nil
}

// startTLSServer starts the Echo server with a custom TLS configuration.
func startTLSServer(e *echo.Echo, addr string, tlsConfig *tls.Config) error {
	lc := &net.ListenConfig{}
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return err
	}
	e.TLSListener = tls.NewListener(ln, tlsConfig)
	e.TLSServer.TLSConfig = tlsConfig
	return e.Server.Serve(e.TLSListener)
}
