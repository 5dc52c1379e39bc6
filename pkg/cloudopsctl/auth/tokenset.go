/*
SPDX-FileCopyrightText: 2025 Deutsche Telekom AG

SPDX-License-Identifier: Apache-2.0
*/

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"
)

// TokenSet is the token endpoint response persisted after a successful login.
type TokenSet struct {
	IDToken      string `json:"id_token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
}

// Identity holds display claims read from the ID token without verification.
type Identity struct {
	Email     string    `json:"email,omitempty"`
	Username  string    `json:"username,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// Name returns the most human readable identifier available.
func (i Identity) Name() string {
	switch {
	case i.Email != "":
		return i.Email
	case i.Username != "":
		return i.Username
	default:
		return i.Subject
	}
}

// Identity parses the ID token claims (falling back to the access token). The
// signature is NOT checked; use VerifyIDToken for that.
func (t TokenSet) Identity() (Identity, error) {
	raw := t.IDToken
	if raw == "" {
		raw = t.AccessToken
	}
	if raw == "" {
		return Identity{}, errors.New("token set has no jwt")
	}
	parser := jwt.Parser{}
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return Identity{}, fmt.Errorf("failed to parse token claims: %w", err)
	}
	id := Identity{}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	if username, ok := claims["cognito:username"].(string); ok && username != "" {
		id.Username = username
	} else if username, ok := claims["preferred_username"].(string); ok {
		id.Username = username
	}
	if sub, ok := claims["sub"].(string); ok {
		id.Subject = sub
	}
	if exp, ok := claims["exp"].(float64); ok {
		id.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}
	return id, nil
}

func tokenSetFromOAuth2(tok *oauth2.Token) (*TokenSet, error) {
	if tok == nil || tok.AccessToken == "" {
		return nil, errors.New("token response missing access_token")
	}
	ts := &TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		ExpiresIn:    tok.ExpiresIn,
	}
	if idToken, ok := tok.Extra("id_token").(string); ok {
		ts.IDToken = idToken
	}
	if ts.IDToken == "" {
		return nil, errMissingIDToken
	}
	return ts, nil
}
