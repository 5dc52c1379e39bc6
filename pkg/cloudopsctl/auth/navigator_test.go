package auth

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserNavigator(t *testing.T) {
	var opened []string
	original := openBrowser
	openBrowser = func(url string) error {
		opened = append(opened, url)
		return nil
	}
	t.Cleanup(func() { openBrowser = original })

	t.Run("prints and opens", func(t *testing.T) {
		buf := &bytes.Buffer{}
		require.NoError(t, BrowserNavigator{Out: buf}.Navigate(context.Background(), "https://auth.example.com/x"))
		assert.Contains(t, buf.String(), "https://auth.example.com/x")
		assert.Equal(t, []string{"https://auth.example.com/x"}, opened)
	})

	t.Run("no browser only prints", func(t *testing.T) {
		opened = nil
		buf := &bytes.Buffer{}
		require.NoError(t, BrowserNavigator{Out: buf, NoBrowser: true}.Navigate(context.Background(), "https://auth.example.com/y"))
		assert.Contains(t, buf.String(), "https://auth.example.com/y")
		assert.Empty(t, opened)
	})

	t.Run("func adapter", func(t *testing.T) {
		var got string
		nav := NavigatorFunc(func(_ context.Context, target string) error {
			got = target
			return nil
		})
		require.NoError(t, nav.Navigate(context.Background(), "/z"))
		assert.Equal(t, "/z", got)
	})
}
