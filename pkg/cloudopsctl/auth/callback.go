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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

const tracerName = "github.com/cloudops-dev/cloudops/pkg/cloudopsctl/auth"

// CompleteLogin handles the provider redirect: it exchanges the code for tokens
// with the persisted verifier and stores the result. The exchange is attempted
// once. The verifier stays in the store whatever the outcome.
func (f *Flow) CompleteLogin(ctx context.Context, query url.Values, cfg Config) (*TokenSet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if code := query.Get("error"); code != "" {
		return nil, &AuthorizationError{Code: code, Description: query.Get("error_description")}
	}
	code := query.Get("code")
	if code == "" {
		return nil, ErrMissingCode
	}
	verifier, ok, err := f.Store.LoadVerifier(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrMissingVerifier
	}

	client, err := f.httpClient(cfg)
	if err != nil {
		return nil, err
	}
	tok, err := f.exchange(ctx, cfg, client, code, verifier)
	if err != nil {
		f.Log.Warnw("Token exchange failed", "endpoint", cfg.TokenEndpoint(), "error", err)
		return nil, toTokenExchangeError(err)
	}
	tokens, err := tokenSetFromOAuth2(tok)
	if err != nil {
		return nil, &TokenExchangeError{Err: err}
	}
	if err := f.Store.Save(ctx, *tokens); err != nil {
		return nil, err
	}
	f.Log.Infow("Login completed", "tokenType", tokens.TokenType, "expiresIn", tokens.ExpiresIn)
	return tokens, nil
}

func (f *Flow) exchange(ctx context.Context, cfg Config, client *http.Client, code, verifier string) (*oauth2.Token, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "auth.exchange_code",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("oauth2.token_endpoint", cfg.TokenEndpoint())),
	)
	defer span.End()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, client)
	tok, err := cfg.oauth2Config().Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token exchange failed")
	}
	return tok, err
}

func toTokenExchangeError(err error) *TokenExchangeError {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		exchangeErr := &TokenExchangeError{Body: string(retrieveErr.Body), Err: err}
		if retrieveErr.Response != nil {
			exchangeErr.StatusCode = retrieveErr.Response.StatusCode
		}
		return exchangeErr
	}
	return &TokenExchangeError{Err: err}
}
