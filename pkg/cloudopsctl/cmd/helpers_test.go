package cmd

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"

	"github.com/cloudops-dev/cloudops/pkg/cloudopsctl/config"
	"github.com/cloudops-dev/cloudops/pkg/storage"
)

var cloudopsEnv = []string{
	"CLOUDOPS_PROFILE", "CLOUDOPS_OUTPUT", "CLOUDOPS_TOKEN_STORAGE", "CLOUDOPS_VERBOSE",
	"CLOUDOPS_COGNITO_DOMAIN", "CLOUDOPS_CLIENT_ID", "CLOUDOPS_REDIRECT_URI",
	"CLOUDOPS_API_BASE_URL", "CLOUDOPS_ISSUER", EnvAuditKafkaPassword,
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range cloudopsEnv {
		t.Setenv(key, "")
	}
}

type recordingNavigator struct {
	mu      sync.Mutex
	targets []string
	onVisit func(target string)
}

func (n *recordingNavigator) Navigate(_ context.Context, target string) error {
	n.mu.Lock()
	n.targets = append(n.targets, target)
	visit := n.onVisit
	n.mu.Unlock()
	if visit != nil {
		visit(target)
	}
	return nil
}

func (n *recordingNavigator) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.targets...)
}

type testEnv struct {
	t          *testing.T
	configPath string
	store      *storage.Memory
	nav        *recordingNavigator
	provider   *httptest.Server
}

func idToken(t *testing.T, email string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"sub":   "user-1",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

// newTestEnv writes a config with one profile that points at a fake token endpoint.
func newTestEnv(t *testing.T, redirectURI string) *testEnv {
	t.Helper()
	clearEnv(t)
	token := idToken(t, "jane@example.com")
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth2/token" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id_token":"` + token + `","access_token":"access-123","expires_in":3600,"token_type":"Bearer"}`))
	}))
	t.Cleanup(provider.Close)

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := config.DefaultConfig()
	cfg.CurrentProfile = "dev"
	cfg.Profiles = []config.Profile{{
		Name:          "dev",
		CognitoDomain: provider.URL,
		ClientID:      "test-client",
		RedirectURI:   redirectURI,
	}}
	require.NoError(t, config.Save(path, &cfg))

	return &testEnv{
		t:          t,
		configPath: path,
		store:      storage.NewMemory(),
		nav:        &recordingNavigator{},
		provider:   provider,
	}
}

func (e *testEnv) run(args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cfg := Config{
		ConfigPath:   e.configPath,
		TokenPath:    filepath.Join(e.t.TempDir(), "tokens.json"),
		OutputWriter: buf,
		Navigator:    e.nav,
	}
	if e.store != nil {
		cfg.Storage = e.store
	}
	root := NewRootCommand(cfg)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func freeLoopbackPort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}
