/*
SPDX-FileCopyrightText: 2025 Deutsche Telekom AG

SPDX-License-Identifier: Apache-2.0
*/

package auth

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/oauth2"
)

const (
	// DefaultVerifierLength is the verifier length used when none is configured.
	DefaultVerifierLength = 64
	// VerifierAlphabet holds the unreserved URI characters a verifier is drawn from.
	VerifierAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"
)

// bytes at or above this value are rejected so every alphabet index is equally likely
var verifierByteLimit = byte(256 - 256%len(VerifierAlphabet))

// GenerateVerifier returns a random PKCE verifier of the given length. A length
// of zero or less selects DefaultVerifierLength.
func GenerateVerifier(length int) (string, error) {
	if length <= 0 {
		length = DefaultVerifierLength
	}
	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate pkce verifier: %w", err)
		}
		for _, b := range buf {
			if b >= verifierByteLimit {
				continue
			}
			out = append(out, VerifierAlphabet[int(b)%len(VerifierAlphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}

// DeriveChallenge returns the S256 code challenge for verifier.
func DeriveChallenge(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}
