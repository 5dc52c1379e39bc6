package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"

	"github.com/cloudops-dev/cloudops/pkg/cloudopsctl/auth"
	"github.com/cloudops-dev/cloudops/pkg/storage"
	"github.com/cloudops-dev/cloudops/pkg/system"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	server   *Server
	sessions *storage.Sessions
	provider *httptest.Server
	hits     *atomic.Int32
}

// newTestEnv starts a fake token endpoint answering with status and body.
// An empty body selects a valid token response for ops@example.com.
func newTestEnv(t *testing.T, status int, body string, opts ...func(*ServerConfig)) *testEnv {
	t.Helper()
	hits := &atomic.Int32{}
	if body == "" {
		idToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":   "user-1",
			"email": "ops@example.com",
			"exp":   time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("test"))
		require.NoError(t, err)
		raw, _ := json.Marshal(map[string]any{
			"id_token":     idToken,
			"access_token": "access-123",
			"expires_in":   3600,
			"token_type":   "Bearer",
		})
		body = string(raw)
	}
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(provider.Close)

	sessions := storage.NewSessions(time.Hour)
	t.Cleanup(sessions.Close)

	cfg := ServerConfig{
		Auth: auth.Config{
			CognitoDomain: provider.URL,
			ClientID:      "web-client",
			RedirectURI:   "http://127.0.0.1:8080/callback",
		},
		Sessions:   sessions,
		Log:        system.NewTestLogger().Desugar(),
		HTTPClient: provider.Client(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	srv := NewServer(cfg)
	t.Cleanup(srv.Close)
	return &testEnv{server: srv, sessions: sessions, provider: provider, hits: hits}
}

// visitor replays the session cookie like a browser would.
type visitor struct {
	env    *testEnv
	cookie *http.Cookie
	accept string
}

func (e *testEnv) visitor() *visitor {
	return &visitor{env: e}
}

func (v *visitor) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "198.51.100.1:5555"
	if v.cookie != nil {
		req.AddCookie(v.cookie)
	}
	if v.accept != "" {
		req.Header.Set("Accept", v.accept)
	}
	w := httptest.NewRecorder()
	v.env.server.Handler().ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			v.cookie = c
		}
	}
	return w
}

func (v *visitor) storage() auth.Storage {
	return v.env.sessions.ForSession(v.cookie.Value)
}

func (v *visitor) session(t *testing.T) SessionResponse {
	t.Helper()
	w := v.get(t, "/api/session")
	require.Equal(t, http.StatusOK, w.Code)
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
