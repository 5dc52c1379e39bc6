package auth

import "context"

const (
	// VerifierKey is the storage key of the pending PKCE verifier.
	VerifierKey = "cloudops_pkce_v1"
	// TokenKey is the storage key of the serialized TokenSet.
	TokenKey = "cloudops_tokens_v1"
)

// Storage is the persistent key/value store credentials are kept in. Get reports
// false when the key is absent. Remove of an absent key is not an error.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
