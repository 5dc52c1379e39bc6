/*
SPDX-FileCopyrightText: 2025 Deutsche Telekom AG

SPDX-License-Identifier: Apache-2.0
*/

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginLogin(t *testing.T) {
	t.Run("persists verifier and navigates to authorize endpoint", func(t *testing.T) {
		flow, storage, nav := newTestFlow()
		cfg := testConfig("https://auth.example.com/")

		require.NoError(t, flow.BeginLogin(context.Background(), cfg))

		verifier, ok, err := flow.Store.LoadVerifier(context.Background())
		require.NoError(t, err)
		require.True(t, ok)
		assert.Len(t, verifier, DefaultVerifierLength)
		assert.Equal(t, 1, storage.writes)

		target := nav.last(t)
		assert.Equal(t, "https", target.Scheme)
		assert.Equal(t, "auth.example.com", target.Host)
		assert.Equal(t, "/oauth2/authorize", target.Path)
		q := target.Query()
		assert.Equal(t, "test-client", q.Get("client_id"))
		assert.Equal(t, "code", q.Get("response_type"))
		assert.Equal(t, "openid email profile", q.Get("scope"))
		assert.Equal(t, cfg.RedirectURI, q.Get("redirect_uri"))
		assert.Equal(t, "S256", q.Get("code_challenge_method"))
		assert.Equal(t, DeriveChallenge(verifier), q.Get("code_challenge"))
		assert.Empty(t, q.Get("state"))
	})

	t.Run("overwrites a previous verifier", func(t *testing.T) {
		flow, _, _ := newTestFlow()
		cfg := testConfig("https://auth.example.com")
		require.NoError(t, flow.Store.SaveVerifier(context.Background(), "stale"))

		require.NoError(t, flow.BeginLogin(context.Background(), cfg))

		verifier, ok, err := flow.Store.LoadVerifier(context.Background())
		require.NoError(t, err)
		require.True(t, ok)
		assert.NotEqual(t, "stale", verifier)
	})

	t.Run("honours configured verifier length", func(t *testing.T) {
		flow, _, _ := newTestFlow()
		flow.VerifierLength = 96
		require.NoError(t, flow.BeginLogin(context.Background(), testConfig("https://auth.example.com")))
		verifier, _, err := flow.Store.LoadVerifier(context.Background())
		require.NoError(t, err)
		assert.Len(t, verifier, 96)
	})

	for _, field := range []string{"cognitoDomain", "clientId", "redirectUri"} {
		t.Run("missing "+field+" fails before any side effect", func(t *testing.T) {
			flow, storage, nav := newTestFlow()
			cfg := testConfig("https://auth.example.com")
			switch field {
			case "cognitoDomain":
				cfg.CognitoDomain = ""
			case "clientId":
				cfg.ClientID = ""
			case "redirectUri":
				cfg.RedirectURI = ""
			}

			err := flow.BeginLogin(context.Background(), cfg)

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, []string{field}, cfgErr.Missing)
			assert.Zero(t, storage.writes)
			assert.Empty(t, nav.targets)
		})
	}
}

func TestCompleteLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip from begin login", func(t *testing.T) {
		var challenge string
		server := newTokenServer(t, nil)
		flow, _, nav := newTestFlow()
		cfg := testConfig(server.URL)

		require.NoError(t, flow.BeginLogin(ctx, cfg))
		challenge = nav.last(t).Query().Get("code_challenge")

		tokens, err := flow.CompleteLogin(ctx, url.Values{"code": {"auth-code"}}, cfg)
		require.NoError(t, err)
		assert.Equal(t, &TokenSet{
			IDToken:      "id-123",
			AccessToken:  "access-123",
			RefreshToken: "refresh-123",
			ExpiresIn:    3600,
			TokenType:    "Bearer",
		}, tokens)

		require.Equal(t, 1, server.hitCount())
		form := server.forms[0]
		assert.Equal(t, "authorization_code", form.Get("grant_type"))
		assert.Equal(t, "test-client", form.Get("client_id"))
		assert.Equal(t, "auth-code", form.Get("code"))
		assert.Equal(t, cfg.RedirectURI, form.Get("redirect_uri"))
		assert.Equal(t, challenge, DeriveChallenge(form.Get("code_verifier")))
		assert.Empty(t, form.Get("client_secret"))

		stored, ok, err := flow.Store.Load(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, tokens, stored)
		assert.True(t, flow.Store.IsAuthenticated(ctx))
	})

	t.Run("provider error", func(t *testing.T) {
		server := newTokenServer(t, nil)
		flow, _, _ := newTestFlow()
		require.NoError(t, flow.Store.SaveVerifier(ctx, "verifier"))

		query, err := url.ParseQuery("error=access_denied&error_description=User+cancelled")
		require.NoError(t, err)
		_, err = flow.CompleteLogin(ctx, query, testConfig(server.URL))

		var authErr *AuthorizationError
		require.True(t, errors.As(err, &authErr))
		assert.Equal(t, "access_denied", authErr.Code)
		assert.Equal(t, "User cancelled", authErr.Description)
		assert.Contains(t, err.Error(), "access_denied")
		assert.Zero(t, server.hitCount())
	})

	t.Run("provider error without description", func(t *testing.T) {
		flow, _, _ := newTestFlow()
		_, err := flow.CompleteLogin(ctx, url.Values{"error": {"server_error"}}, testConfig("https://auth.example.com"))
		assert.EqualError(t, err, "server_error: OAuth error")
	})

	t.Run("missing code", func(t *testing.T) {
		flow, _, _ := newTestFlow()
		_, err := flow.CompleteLogin(ctx, url.Values{}, testConfig("https://auth.example.com"))
		assert.ErrorIs(t, err, ErrMissingCode)
	})

	t.Run("missing verifier makes no network call", func(t *testing.T) {
		server := newTokenServer(t, nil)
		flow, storage, _ := newTestFlow()

		_, err := flow.CompleteLogin(ctx, url.Values{"code": {"abc"}}, testConfig(server.URL))

		assert.ErrorIs(t, err, ErrMissingVerifier)
		assert.Zero(t, server.hitCount())
		assert.False(t, storage.has(TokenKey))
	})

	t.Run("incomplete config", func(t *testing.T) {
		flow, _, _ := newTestFlow()
		cfg := testConfig("https://auth.example.com")
		cfg.ClientID = "PASTE_COGNITO_CLIENT_ID_HERE"

		_, err := flow.CompleteLogin(ctx, url.Values{"code": {"abc"}}, cfg)

		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, []string{"clientId"}, cfgErr.Missing)
	})

	t.Run("rejected exchange carries body verbatim", func(t *testing.T) {
		body := `{"error":"invalid_grant"}`
		server := newTokenServer(t, func(w http.ResponseWriter, _ url.Values) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(body))
		})
		flow, storage, _ := newTestFlow()
		require.NoError(t, flow.Store.SaveVerifier(ctx, "verifier"))

		_, err := flow.CompleteLogin(ctx, url.Values{"code": {"abc"}}, testConfig(server.URL))

		var exchangeErr *TokenExchangeError
		require.True(t, errors.As(err, &exchangeErr))
		assert.Equal(t, http.StatusBadRequest, exchangeErr.StatusCode)
		assert.Equal(t, body, exchangeErr.Body)
		assert.Equal(t, "token exchange failed: "+body, err.Error())
		assert.Equal(t, 1, server.hitCount(), "exchange must not be retried")
		assert.False(t, storage.has(TokenKey))
		assert.True(t, storage.has(VerifierKey), "verifier is kept for a retry")
	})

	t.Run("response without id token is not persisted", func(t *testing.T) {
		server := newTokenServer(t, func(w http.ResponseWriter, _ url.Values) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"access-only","token_type":"Bearer"}`))
		})
		flow, storage, _ := newTestFlow()
		require.NoError(t, flow.Store.SaveVerifier(ctx, "verifier"))

		_, err := flow.CompleteLogin(ctx, url.Values{"code": {"abc"}}, testConfig(server.URL))

		var exchangeErr *TokenExchangeError
		require.True(t, errors.As(err, &exchangeErr))
		assert.ErrorIs(t, err, errMissingIDToken)
		assert.False(t, storage.has(TokenKey))
	})

	t.Run("malformed response is not persisted", func(t *testing.T) {
		server := newTokenServer(t, func(w http.ResponseWriter, _ url.Values) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id_token":`))
		})
		flow, storage, _ := newTestFlow()
		require.NoError(t, flow.Store.SaveVerifier(ctx, "verifier"))

		_, err := flow.CompleteLogin(ctx, url.Values{"code": {"abc"}}, testConfig(server.URL))

		var exchangeErr *TokenExchangeError
		require.True(t, errors.As(err, &exchangeErr))
		assert.False(t, storage.has(TokenKey))
	})

	t.Run("new login overwrites previous tokens", func(t *testing.T) {
		server := newTokenServer(t, nil)
		flow, _, _ := newTestFlow()
		require.NoError(t, flow.Store.Save(ctx, TokenSet{IDToken: "old", AccessToken: "old"}))
		require.NoError(t, flow.Store.SaveVerifier(ctx, "verifier"))

		_, err := flow.CompleteLogin(ctx, url.Values{"code": {"abc"}}, testConfig(server.URL))
		require.NoError(t, err)

		stored, ok, err := flow.Store.Load(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "id-123", stored.IDToken)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("configured provider", func(t *testing.T) {
		flow, storage, nav := newTestFlow()
		require.NoError(t, flow.Store.Save(ctx, TokenSet{IDToken: "x"}))
		require.NoError(t, flow.Store.SaveVerifier(ctx, "v"))

		require.NoError(t, flow.Logout(ctx, testConfig("https://auth.example.com/")))

		assert.False(t, storage.has(TokenKey))
		assert.False(t, storage.has(VerifierKey))
		target := nav.last(t)
		assert.Equal(t, "/logout", target.Path)
		assert.Equal(t, "auth.example.com", target.Host)
		assert.Equal(t, "test-client", target.Query().Get("client_id"))
		assert.Equal(t, "https://app.example.com/", target.Query().Get("logout_uri"))
	})

	t.Run("incomplete config still clears state", func(t *testing.T) {
		flow, storage, nav := newTestFlow()
		require.NoError(t, flow.Store.Save(ctx, TokenSet{IDToken: "x"}))
		require.NoError(t, flow.Store.SaveVerifier(ctx, "v"))

		require.NoError(t, flow.Logout(ctx, Config{}))

		assert.False(t, storage.has(TokenKey))
		assert.False(t, storage.has(VerifierKey))
		assert.Equal(t, []string{"/"}, nav.targets)
	})

	t.Run("custom root url", func(t *testing.T) {
		flow, _, nav := newTestFlow()
		flow.RootURL = "/dashboard"
		require.NoError(t, flow.Logout(ctx, Config{ClientID: "only-client"}))
		assert.Equal(t, []string{"/dashboard"}, nav.targets)
	})
}
