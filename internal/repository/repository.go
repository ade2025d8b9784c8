package repository

import "context"

// IdentityStore is durable client-side key/value storage
type IdentityStore interface {
	// Get returns the stored value and whether the key exists
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

// Repositories groups the stores the client persists to
type Repositories struct {
	Identity IdentityStore
}
