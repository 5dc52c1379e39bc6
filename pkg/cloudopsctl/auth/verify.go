/*
SPDX-FileCopyrightText: 2025 Deutsche Telekom AG

SPDX-License-Identifier: Apache-2.0
*/

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// VerifyIDToken checks the signature, issuer, audience and expiry of an ID token
// against the configured issuer's published keys. It is separate from
// CredentialStore.IsAuthenticated, which stays a presence check.
func (f *Flow) VerifyIDToken(ctx context.Context, cfg Config, rawIDToken string) (*oidc.IDToken, error) {
	if cfg.Issuer == "" {
		return nil, errors.New("issuer is required to verify the id token")
	}
	if rawIDToken == "" {
		return nil, errors.New("id token is empty")
	}
	client, err := f.httpClient(cfg)
	if err != nil {
		return nil, err
	}
	ctx = oidc.ClientContext(ctx, client)
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	token, err := provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}).Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("id token verification failed: %w", err)
	}
	return token, nil
}
