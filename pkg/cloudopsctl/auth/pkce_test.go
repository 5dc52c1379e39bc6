package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerifier(t *testing.T) {
	t.Run("exact length from alphabet", func(t *testing.T) {
		for _, length := range []int{1, 2, 43, 64, 128, 257} {
			verifier, err := GenerateVerifier(length)
			require.NoError(t, err)
			assert.Len(t, verifier, length)
			for _, r := range verifier {
				assert.True(t, strings.ContainsRune(VerifierAlphabet, r), "unexpected character %q", r)
			}
		}
	})

	t.Run("non-positive length uses default", func(t *testing.T) {
		verifier, err := GenerateVerifier(0)
		require.NoError(t, err)
		assert.Len(t, verifier, DefaultVerifierLength)

		verifier, err = GenerateVerifier(-3)
		require.NoError(t, err)
		assert.Len(t, verifier, DefaultVerifierLength)
	})

	t.Run("alphabet has 66 characters", func(t *testing.T) {
		assert.Len(t, VerifierAlphabet, 66)
	})

	t.Run("every character is reachable", func(t *testing.T) {
		verifier, err := GenerateVerifier(20000)
		require.NoError(t, err)
		for _, r := range VerifierAlphabet {
			assert.True(t, strings.ContainsRune(verifier, r), "character %q never drawn", r)
		}
	})

	t.Run("successive verifiers differ", func(t *testing.T) {
		a, err := GenerateVerifier(64)
		require.NoError(t, err)
		b, err := GenerateVerifier(64)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

func TestDeriveChallenge(t *testing.T) {
	t.Run("matches RFC 7636 appendix B", func(t *testing.T) {
		assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM",
			DeriveChallenge("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"))
	})

	t.Run("deterministic and url safe", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			verifier, err := GenerateVerifier(64)
			require.NoError(t, err)
			challenge := DeriveChallenge(verifier)
			assert.Equal(t, challenge, DeriveChallenge(verifier))
			assert.Len(t, challenge, 43)
			assert.NotContains(t, challenge, "+")
			assert.NotContains(t, challenge, "/")
			assert.NotContains(t, challenge, "=")
		}
	})
}
