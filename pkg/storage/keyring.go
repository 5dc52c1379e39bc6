package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// DefaultKeyringService is the keychain service entries are filed under.
const DefaultKeyringService = "cloudopsctl"

// Keyring stores each key as a separate secret in the OS keychain
// (macOS Keychain, Secret Service, Windows Credential Manager).
type Keyring struct {
	Service string
}

func NewKeyring(service string) *Keyring {
	if service == "" {
		service = DefaultKeyringService
	}
	return &Keyring{Service: service}
}

func (k *Keyring) Get(_ context.Context, key string) (string, bool, error) {
	value, err := keyring.Get(k.Service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read keychain entry %s: %w", key, err)
	}
	return value, true, nil
}

func (k *Keyring) Set(_ context.Context, key, value string) error {
	if err := keyring.Set(k.Service, key, value); err != nil {
		return fmt.Errorf("failed to write keychain entry %s: %w", key, err)
	}
	return nil
}

func (k *Keyring) Remove(_ context.Context, key string) error {
	if err := keyring.Delete(k.Service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete keychain entry %s: %w", key, err)
	}
	return nil
}
