package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func loader(secret string) func() (*config.Config, error) {
	return func() (*config.Config, error) {
		return &config.Config{
			Auth: config.AuthConfig{JWTSecret: secret, TokenLifetimeMinutes: 60},
		}, nil
	}
}

func TestRun_PrintsValidToken(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-subject", "ops-bot", "-lifetime", "5"}, &out, loader(testSecret)))

	svc, err := auth.NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "ops-bot", claims.Subject)
	assert.InDelta(t, 5*60, claims.ExpiresAt.Sub(claims.IssuedAt).Seconds(), 1)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		load    func() (*config.Config, error)
		wantErr string
	}{
		{"missing subject", nil, loader(testSecret), "-subject is required"},
		{"negative lifetime", []string{"-subject", "a", "-lifetime", "-1"}, loader(testSecret), "-lifetime"},
		{"auth disabled", []string{"-subject", "a"}, loader(""), "not configured"},
		{
			"config failure",
			[]string{"-subject", "a"},
			func() (*config.Config, error) { return nil, errors.New("bad config") },
			"bad config",
		},
		{"unknown flag", []string{"-nope"}, loader(testSecret), "flag provided but not defined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := run(tt.args, &out, tt.load)
			assert.ErrorContains(t, err, tt.wantErr)
			assert.Empty(t, out.String())
		})
	}
}
