/*
SPDX-FileCopyrightText: 2025 Deutsche Telekom AG

SPDX-License-Identifier: Apache-2.0
*/

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type fileContent struct {
	Entries map[string]string `json:"entries"`
}

// File persists values as JSON in a single file readable only by the owner.
// Every call re-reads the file so separate CLI invocations see each other's writes.
type File struct {
	Path string
	mu   sync.Mutex
}

func NewFile(path string) *File {
	return &File{Path: path}
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := content.Entries[key]
	return v, ok, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, err := f.load()
	if err != nil {
		return err
	}
	content.Entries[key] = value
	return f.save(content)
}

func (f *File) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := content.Entries[key]; !ok {
		return nil
	}
	delete(content.Entries, key)
	return f.save(content)
}

func (f *File) load() (*fileContent, error) {
	if f.Path == "" {
		return nil, errors.New("token file path is required")
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return &fileContent{Entries: map[string]string{}}, nil
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	var content fileContent
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	if content.Entries == nil {
		content.Entries = map[string]string{}
	}
	return &content, nil
}

func (f *File) save(content *fileContent) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create token dir: %w", err)
	}
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token file: %w", err)
	}
	// Replace the file in one step so readers never see a partial write and an
	// existing file with looser permissions ends up owner-only.
	tmp, err := os.CreateTemp(filepath.Dir(f.Path), "."+filepath.Base(f.Path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp token file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("failed to set token file permissions: %w", err)
	}
	if err := os.Rename(tmpName, f.Path); err != nil {
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	return nil
}
