// Copyright 2025 The SpeechScribe Authors
// Licensed under the EUPL-1.2

// Package magiclink issues and verifies single-use, time-bound sign-in
// links. Tokens carry no claims; approval is always looked up fresh from the
// user directory at verification time.
package magiclink

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/speechscribe/speechscribe/internal/repository"
	"github.com/speechscribe/speechscribe/internal/services/email"
	"github.com/speechscribe/speechscribe/internal/tokenstore"
)

// TokenLength is the number of random bytes per token, before URL-safe
// encoding.
const TokenLength = 32

// DefaultTokenTTL is used when no TTL is configured.
const DefaultTokenTTL = 30 * time.Minute

var (
	// ErrVerificationFailed covers absent, expired, and already-consumed
	// tokens alike. Callers get one generic cause so a presented token
	// reveals nothing about which branch failed.
	ErrVerificationFailed = errors.New("invalid or expired link")
	// ErrNotApproved means the token itself was valid but the account is
	// not currently approved.
	ErrNotApproved = errors.New("account is not approved")
	// ErrNameRequired means an unknown email requested sign-in without a
	// display name; no record is created.
	ErrNameRequired = errors.New("name is required for new accounts")
)

// SignInStatus is the outcome of a RequestSignIn call.
type SignInStatus int

const (
	// SignInLinkSent means the account is approved and a link was mailed.
	SignInLinkSent SignInStatus = iota
	// SignInRegistrationPending means a new pending record was created;
	// no link is issued until an admin approves it.
	SignInRegistrationPending
	// SignInAwaitingApproval means the account exists but is not
	// approved. Pending and rejected accounts take this path alike.
	SignInAwaitingApproval
)

// Service implements the magic-link flow.
type Service struct {
	repo    *repository.Repository
	tokens  tokenstore.Store
	sender  email.Sender
	baseURL string
	ttl     time.Duration
}

// NewService wires the magic-link flow. ttl falls back to DefaultTokenTTL
// when zero.
func NewService(repo *repository.Repository, tokens tokenstore.Store, sender email.Sender, baseURL string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Service{
		repo:    repo,
		tokens:  tokens,
		sender:  sender,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		ttl:     ttl,
	}
}

// RequestSignIn handles a sign-in request for an email address.
//
// Unknown emails register a pending account (name required); approved
// accounts get a fresh link mailed; everyone else waits. Unapproved
// accounts never cause a token to be issued or a mail to be sent.
func (s *Service) RequestSignIn(ctx context.Context, emailAddr, name string) (SignInStatus, error) {
	user, err := s.repo.GetUserByEmail(ctx, emailAddr)
	if errors.Is(err, repository.ErrNotFound) {
		if strings.TrimSpace(name) == "" {
			return 0, ErrNameRequired
		}
		if _, err := s.repo.CreateUser(ctx, emailAddr, name); err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				// Lost a create race; the account exists and is pending.
				return SignInAwaitingApproval, nil
			}
			return 0, fmt.Errorf("registering user: %w", err)
		}
		slog.Info("user registered", "email", emailAddr)
		return SignInRegistrationPending, nil
	}
	if err != nil {
		return 0, fmt.Errorf("looking up user: %w", err)
	}

	if !user.IsApproved() {
		return SignInAwaitingApproval, nil
	}

	if err := s.SendLink(ctx, user.Email); err != nil {
		return 0, err
	}
	return SignInLinkSent, nil
}

// SendLink issues a fresh token for an account and mails the verification
// link. A delivery failure propagates; the stored token stays valid for its
// TTL, which bounds the exposure without a compensating delete.
func (s *Service) SendLink(ctx context.Context, emailAddr string) error {
	token, err := generateToken()
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	if err := s.tokens.Put(ctx, token, emailAddr, s.ttl); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}

	verifyURL := fmt.Sprintf("%s/verify?token=%s", s.baseURL, url.QueryEscape(token))
	subject, body := email.MagicLinkMessage(ctx, verifyURL)

	if err := s.sender.Send(ctx, emailAddr, subject, body); err != nil {
		return fmt.Errorf("sending magic link: %w", err)
	}

	slog.Info("magic link sent", "email", emailAddr)
	return nil
}

// Verify consumes a token and returns the authenticated email address.
//
// The token is fetched and deleted atomically, so a second verification of
// the same token fails. Approval status is re-read from the directory: an
// account revoked between issuance and use fails with ErrNotApproved even
// though its token was valid.
func (s *Service) Verify(ctx context.Context, token string) (string, error) {
	emailAddr, err := s.tokens.Consume(ctx, token)
	if errors.Is(err, tokenstore.ErrTokenNotFound) {
		return "", ErrVerificationFailed
	}
	if err != nil {
		return "", fmt.Errorf("consuming token: %w", err)
	}

	user, err := s.repo.GetUserByEmail(ctx, emailAddr)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrNotApproved
	}
	if err != nil {
		return "", fmt.Errorf("looking up user: %w", err)
	}
	if !user.IsApproved() {
		slog.Warn("valid token for unapproved account", "email", emailAddr, "status", user.Status)
		return "", ErrNotApproved
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return "", fmt.Errorf("recording login: %w", err)
	}

	slog.Info("sign-in verified", "email", emailAddr)
	return emailAddr, nil
}

// generateToken returns 32 bytes of cryptographically secure randomness in
// URL-safe encoding.
func generateToken() (string, error) {
	b := make([]byte, TokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
