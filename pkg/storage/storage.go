/*
SPDX-FileCopyrightText: 2025 Deutsche Telekom AG

SPDX-License-Identifier: Apache-2.0
*/

package storage

import (
	"fmt"
	"strings"

	"github.com/cloudops-dev/cloudops/pkg/cloudopsctl/auth"
)

const (
	ModeFile     = "file"
	ModeKeychain = "keychain"
	ModeMemory   = "memory"
)

// Scoped hands out one isolated Storage per visitor session.
type Scoped interface {
	ForSession(sessionID string) auth.Storage
}

// New returns the CLI backend for mode. An empty mode selects the file backend.
func New(mode, path string) (auth.Storage, error) {
	switch strings.ToLower(mode) {
	case "", ModeFile:
		return NewFile(path), nil
	case ModeKeychain, "keyring":
		return NewKeyring(DefaultKeyringService), nil
	case ModeMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported token storage: %s", mode)
	}
}
