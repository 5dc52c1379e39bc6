/*
SPDX-FileCopyrightText: 2025 Deutsche Telekom AG

SPDX-License-Identifier: Apache-2.0
*/

package auth

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingCode is returned when the callback carries neither a code nor an error.
	ErrMissingCode = errors.New("no code found in callback url")
	// ErrMissingVerifier is returned when no PKCE verifier was persisted before the
	// callback. The user has to start the login again.
	ErrMissingVerifier = errors.New("missing pkce verifier, try logging in again")

	errMissingIDToken = errors.New("token response missing id_token")
)

// ConfigurationError lists every configuration field that is empty or still holds
// a placeholder value.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return "missing config values: " + strings.Join(e.Missing, ", ")
}

// AuthorizationError is returned when the identity provider redirects back with an
// error, for example when the user cancelled the login.
type AuthorizationError struct {
	Code        string
	Description string
}

func (e *AuthorizationError) Error() string {
	desc := e.Description
	if desc == "" {
		desc = "OAuth error"
	}
	return fmt.Sprintf("%s: %s", e.Code, desc)
}

// TokenExchangeError wraps a failed authorization code exchange. Body holds the
// token endpoint response verbatim when the provider answered.
type TokenExchangeError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TokenExchangeError) Error() string {
	if e.Body != "" {
		return "token exchange failed: " + e.Body
	}
	if e.Err != nil {
		return "token exchange failed: " + e.Err.Error()
	}
	return fmt.Sprintf("token exchange failed with status %d", e.StatusCode)
}

func (e *TokenExchangeError) Unwrap() error {
	return e.Err
}
