package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLoopbackRedirect(t *testing.T) {
	tests := map[string]bool{
		"http://localhost:8765/callback":   true,
		"http://127.0.0.1:8765/callback":   true,
		"http://[::1]:8765/callback":       true,
		"http://localhost/callback":        false,
		"https://localhost:8765/callback":  false,
		"https://app.example.com/callback": false,
		"http://app.example.com:80/cb":     false,
		"PASTE_APP_URL_HERE/callback":      false,
		"http://10.0.0.1:8765/callback":    false,
	}
	for uri, want := range tests {
		assert.Equal(t, want, IsLoopbackRedirect(uri), uri)
	}
}

func TestCallbackListener(t *testing.T) {
	t.Run("hands the query to complete", func(t *testing.T) {
		cb, err := ListenForCallback("http://127.0.0.1:0/callback")
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		go func() {
			resp, err := http.Get("http://" + cb.Addr() + "/callback?code=abc")
			if err == nil {
				_, _ = io.Copy(io.Discard, resp.Body)
				_ = resp.Body.Close()
			}
		}()

		var got url.Values
		err = cb.Wait(ctx, func(_ context.Context, query url.Values) error {
			got = query
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "abc", got.Get("code"))
	})

	t.Run("returns the completion error", func(t *testing.T) {
		cb, err := ListenForCallback("http://127.0.0.1:0/callback")
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		go func() {
			resp, err := http.Get("http://" + cb.Addr() + "/callback?error=access_denied")
			if err == nil {
				_ = resp.Body.Close()
			}
		}()

		wantErr := errors.New("boom")
		err = cb.Wait(ctx, func(context.Context, url.Values) error { return wantErr })
		assert.ErrorIs(t, err, wantErr)
	})

	t.Run("context cancellation", func(t *testing.T) {
		cb, err := ListenForCallback("http://127.0.0.1:0/callback")
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err = cb.Wait(ctx, func(context.Context, url.Values) error { return nil })
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("rejects non loopback", func(t *testing.T) {
		_, err := ListenForCallback("https://app.example.com/callback")
		require.Error(t, err)
	})
}
