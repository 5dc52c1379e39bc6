/*
SPDX-FileCopyrightText: 2025 Deutsche Telekom AG

SPDX-License-Identifier: Apache-2.0
*/

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// CredentialStore keeps the TokenSet and the pending PKCE verifier in a Storage.
// It does not encrypt values and never checks token expiry.
type CredentialStore struct {
	storage Storage
}

func NewCredentialStore(storage Storage) *CredentialStore {
	return &CredentialStore{storage: storage}
}

// Save overwrites any previously stored TokenSet.
func (s *CredentialStore) Save(ctx context.Context, tokens TokenSet) error {
	content, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("failed to marshal token set: %w", err)
	}
	if err := s.storage.Set(ctx, TokenKey, string(content)); err != nil {
		return fmt.Errorf("failed to store token set: %w", err)
	}
	return nil
}

// Load returns the stored TokenSet. A value that cannot be parsed is reported as
// absent, like a missing one.
func (s *CredentialStore) Load(ctx context.Context) (*TokenSet, bool, error) {
	raw, ok, err := s.storage.Get(ctx, TokenKey)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read token set: %w", err)
	}
	if !ok || raw == "" {
		return nil, false, nil
	}
	var tokens TokenSet
	if err := json.Unmarshal([]byte(raw), &tokens); err != nil {
		return nil, false, nil
	}
	return &tokens, true, nil
}

// Clear removes the TokenSet and any leftover verifier.
func (s *CredentialStore) Clear(ctx context.Context) error {
	return errors.Join(
		s.storage.Remove(ctx, TokenKey),
		s.storage.Remove(ctx, VerifierKey),
	)
}

// IsAuthenticated reports whether a TokenSet with an id_token is present. This is
// a presence check only: it says nothing about expiry or signature.
func (s *CredentialStore) IsAuthenticated(ctx context.Context) bool {
	tokens, ok, err := s.Load(ctx)
	if err != nil || !ok {
		return false
	}
	return tokens.IDToken != ""
}

func (s *CredentialStore) SaveVerifier(ctx context.Context, verifier string) error {
	if err := s.storage.Set(ctx, VerifierKey, verifier); err != nil {
		return fmt.Errorf("failed to store pkce verifier: %w", err)
	}
	return nil
}

// LoadVerifier returns the pending verifier, or false if none was stored.
func (s *CredentialStore) LoadVerifier(ctx context.Context) (string, bool, error) {
	verifier, ok, err := s.storage.Get(ctx, VerifierKey)
	if err != nil {
		return "", false, fmt.Errorf("failed to read pkce verifier: %w", err)
	}
	return verifier, ok && verifier != "", nil
}
