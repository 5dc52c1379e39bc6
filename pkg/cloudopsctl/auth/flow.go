/*
SPDX-FileCopyrightText: 2025 Deutsche Telekom AG

SPDX-License-Identifier: Apache-2.0
*/

package auth

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/cloudops-dev/cloudops/pkg/version"
)

// Flow runs the login, callback and logout entry points. The entry points share
// nothing but the verifier persisted in Store, so BeginLogin and CompleteLogin may
// run in different processes.
type Flow struct {
	Store     *CredentialStore
	Navigator Navigator
	Log       *zap.SugaredLogger

	// HTTPClient overrides the client built from Config.CAFile/InsecureSkipTLS.
	HTTPClient *http.Client
	// VerifierLength defaults to DefaultVerifierLength.
	VerifierLength int
	// RootURL is where Logout navigates when the provider is not configured.
	RootURL string
}

func NewFlow(store *CredentialStore, nav Navigator, log *zap.SugaredLogger) *Flow {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Flow{
		Store:     store,
		Navigator: nav,
		Log:       log,
		RootURL:   "/",
	}
}

// BeginLogin persists a fresh verifier and navigates to the authorization
// endpoint. Nothing is written or navigated when the config is incomplete.
func (f *Flow) BeginLogin(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	verifier, err := GenerateVerifier(f.VerifierLength)
	if err != nil {
		return err
	}
	if err := f.Store.SaveVerifier(ctx, verifier); err != nil {
		return err
	}
	authURL := AuthorizationURL(cfg, DeriveChallenge(verifier))
	f.Log.Debugw("Redirecting to authorization endpoint", "endpoint", cfg.AuthorizeEndpoint(), "clientID", cfg.ClientID)
	return f.Navigator.Navigate(ctx, authURL)
}

// AuthorizationURL builds the authorization request for the given challenge.
func AuthorizationURL(cfg Config, challenge string) string {
	return cfg.oauth2Config().AuthCodeURL("",
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		oauth2.SetAuthURLParam("code_challenge", challenge),
	)
}

func (f *Flow) httpClient(cfg Config) (*http.Client, error) {
	if f.HTTPClient != nil {
		return f.HTTPClient, nil
	}
	return NewHTTPClient(cfg)
}

// NewHTTPClient builds the client used to talk to the provider, honouring the
// config's CA file and TLS verification setting. Long-running callers should
// build it once and share it through Flow.HTTPClient.
func NewHTTPClient(cfg Config) (*http.Client, error) {
	return newHTTPClient(cfg.CAFile, cfg.InsecureSkipTLS)
}

func newHTTPClient(caFile string, insecure bool) (*http.Client, error) {
	tlsConfig, err := loadTLSConfig(caFile, insecure)
	if err != nil {
		return nil, err
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig
	return &http.Client{
		Transport: userAgentTransport{base: transport},
		Timeout:   30 * time.Second,
	}, nil
}

type userAgentTransport struct {
	base *http.Transport
}

func (t userAgentTransport) CloseIdleConnections() {
	t.base.CloseIdleConnections()
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", version.UserAgent())
	return t.base.RoundTrip(r)
}

func loadTLSConfig(caFile string, insecure bool) (*tls.Config, error) {
	if caFile == "" && !insecure {
		return &tls.Config{MinVersion: tls.VersionTLS12}, nil
	}
	certPool, err := loadCertPool(caFile)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: insecure, //nolint:gosec // explicit opt-in for test identity providers
		RootCAs:            certPool,
	}, nil
}

func loadCertPool(caFile string) (*x509.CertPool, error) {
	if caFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if ok := pool.AppendCertsFromPEM(data); !ok {
		return nil, errors.New("failed to parse CA file")
	}
	return pool, nil
}
