// Copyright 2025 The SpeechScribe Authors
// Licensed under the EUPL-1.2

package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestIsLocalhost(t *testing.T) {
	tests := []struct {
		host     string
		expected bool
	}{
		{"", true},
		{"localhost", true},
		{"127.0.0.1", true},
		{"::1", true},
		{"app.localhost", true},
		{"sub.domain.localhost", true},
		{"example.com", false},
		{"www.example.com", false},
		{"192.168.1.1", false},
		{"localhost.com", false}, // not a real localhost
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsLocalhost(tt.host))
		})
	}
}

func TestShouldUseTLS(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		host     string
		expected bool
	}{
		{"off mode", "off", "example.com", false},
		{"acme mode", "acme", "localhost", true},
		{"manual mode", "manual", "localhost", true},
		{"auto mode with localhost", "auto", "localhost", false},
		{"auto mode with remote host", "auto", "example.com", true},
		{"empty mode with localhost", "", "localhost", false},
		{"empty mode with remote host", "", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shouldUseTLS(tt.mode, tt.host))
		})
	}
}

func TestBuildBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *Config
		expected string
	}{
		{
			name: "localhost HTTP default port",
			cfg: &Config{
				Server: ServerConfig{Host: "localhost", Port: 80},
				TLS:    TLSConfig{Mode: "off"},
			},
			expected: "http://localhost",
		},
		{
			name: "localhost HTTP custom port",
			cfg: &Config{
				Server: ServerConfig{Host: "localhost", Port: 8080},
				TLS:    TLSConfig{Mode: "off"},
			},
			expected: "http://localhost:8080",
		},
		{
			name: "remote host HTTPS default port",
			cfg: &Config{
				Server: ServerConfig{Host: "example.com", Port: 443},
				TLS:    TLSConfig{Mode: "manual"},
			},
			expected: "https://example.com",
		},
		{
			name: "acme mode ignores port",
			cfg: &Config{
				Server: ServerConfig{Host: "example.com", Port: 8443},
				TLS:    TLSConfig{Mode: "acme"},
			},
			expected: "https://example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildBaseURL(tt.cfg))
		})
	}
}

func TestNewFromCLI(t *testing.T) {
	var cfg *Config

	cmd := &cli.Command{
		Flags: Flags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg = NewFromCLI(cmd)
			return nil
		},
	}

	err := cmd.Run(context.Background(), []string{
		"app",
		"--host", "localhost",
		"--port", "9000",
		"--admin-email", "admin@example.com",
		"--token-ttl", "15m",
		"--redis-addr", "localhost:6379",
		"--smtp-host", "smtp.example.com",
		"--smtp-from", "noreply@example.com",
	})

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:9000", cfg.Server.BaseURL)
	assert.Equal(t, "admin@example.com", cfg.Auth.AdminEmail)
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, "SpeechScribe", cfg.SMTP.FromName)
}

func TestNewFromCLI_Defaults(t *testing.T) {
	var cfg *Config

	cmd := &cli.Command{
		Flags: Flags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg = NewFromCLI(cmd)
			return nil
		},
	}

	err := cmd.Run(context.Background(), []string{"app"})

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "_session", cfg.Session.CookieName)
}
