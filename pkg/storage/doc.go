// Package storage provides the key/value backends credentials are persisted in:
// an in-memory map, a 0600 JSON file, the OS keychain, Redis, and per-visitor
// scopes for the dashboard server.
package storage
