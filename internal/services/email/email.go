// Copyright 2025 The SpeechScribe Authors
// Licensed under the EUPL-1.2

// Package email delivers notification mail. The core auth flow only ever
// talks to the Sender interface; the SMTP implementation lives behind it.
package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/speechscribe/speechscribe/internal/config"
	"github.com/speechscribe/speechscribe/internal/i18n"
	"github.com/wneessen/go-mail"
)

// DeliveryError reports a transport or authentication failure while sending.
// It must reach the caller of the sign-in or approval operation: a "link
// sent" signal without a real send is a correctness bug.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivering mail: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// IsDeliveryError reports whether err wraps a DeliveryError.
func IsDeliveryError(err error) bool {
	var de *DeliveryError
	return errors.As(err, &de)
}

// Sender delivers a single message to one recipient.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// MagicLinkMessage builds the localized subject and HTML body for a sign-in
// link email.
func MagicLinkMessage(ctx context.Context, verifyURL string) (subject, body string) {
	subject = i18n.T(ctx, "magic_link_subject")
	body = i18n.TData(ctx, "magic_link_body", map[string]any{
		"VerifyURL": verifyURL,
	})
	return subject, body
}

// SMTPSender sends mail through an SMTP relay using go-mail.
type SMTPSender struct {
	cfg *config.SMTPConfig
}

// NewSMTPSender validates the SMTP configuration and returns a sender.
func NewSMTPSender(cfg *config.SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, errors.New("SMTP from address is required")
	}
	return &SMTPSender{cfg: cfg}, nil
}

// Send delivers one HTML message. Any transport failure is returned as a
// *DeliveryError.
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Implicit TLS (SSL) for port 465, STARTTLS for others
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return &DeliveryError{Err: err}
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return &DeliveryError{Err: err}
	}

	return nil
}
