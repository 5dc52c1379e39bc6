package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestKeyringRoundTrip(t *testing.T) {
	keyring.MockInit()
	ctx := context.Background()
	k := NewKeyring("")
	assert.Equal(t, DefaultKeyringService, k.Service)

	_, ok, err := k.Get(ctx, "cloudops_tokens_v1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, k.Set(ctx, "cloudops_tokens_v1", "value"))
	v, ok, err := k.Get(ctx, "cloudops_tokens_v1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "value", v)

	require.NoError(t, k.Remove(ctx, "cloudops_tokens_v1"))
	require.NoError(t, k.Remove(ctx, "cloudops_tokens_v1"))
	_, ok, err = k.Get(ctx, "cloudops_tokens_v1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyringBackendError(t *testing.T) {
	keyring.MockInitWithError(assert.AnError)
	t.Cleanup(keyring.MockInit)

	_, _, err := NewKeyring("svc").Get(context.Background(), "k")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
