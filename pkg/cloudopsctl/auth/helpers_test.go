package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStorage struct {
	mu     sync.Mutex
	values map[string]string
	writes int
}

func newMemStorage() *memStorage {
	return &memStorage{values: map[string]string{}}
}

func (m *memStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.writes++
	return nil
}

func (m *memStorage) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *memStorage) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok
}

type recordingNavigator struct {
	targets []string
}

func (n *recordingNavigator) Navigate(_ context.Context, target string) error {
	n.targets = append(n.targets, target)
	return nil
}

func (n *recordingNavigator) last(t *testing.T) *url.URL {
	t.Helper()
	require.NotEmpty(t, n.targets, "expected a navigation")
	u, err := url.Parse(n.targets[len(n.targets)-1])
	require.NoError(t, err)
	return u
}

func testConfig(domain string) Config {
	return Config{
		CognitoDomain: domain,
		ClientID:      "test-client",
		RedirectURI:   "https://app.example.com/callback",
	}
}

func newTestFlow() (*Flow, *memStorage, *recordingNavigator) {
	storage := newMemStorage()
	nav := &recordingNavigator{}
	return NewFlow(NewCredentialStore(storage), nav, nil), storage, nav
}

func unsignedJWT(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

// tokenServer mimics the provider token endpoint. handler may be nil for the
// default success response.
type tokenServer struct {
	*httptest.Server
	mu    sync.Mutex
	hits  int
	forms []url.Values
}

func newTokenServer(t *testing.T, handler func(w http.ResponseWriter, form url.Values)) *tokenServer {
	t.Helper()
	ts := &tokenServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth2/token" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.NoError(t, r.ParseForm())
		ts.mu.Lock()
		ts.hits++
		ts.forms = append(ts.forms, r.PostForm)
		ts.mu.Unlock()
		if handler != nil {
			handler(w, r.PostForm)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id_token":"id-123","access_token":"access-123","refresh_token":"refresh-123","expires_in":3600,"token_type":"Bearer"}`))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *tokenServer) hitCount() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.hits
}
