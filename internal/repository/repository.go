// Package repository defines the persistence boundary of the vault.
//
// The vault keeps three whole collections, each serialized as one JSON value
// under a fixed key. Anything that can get, set and clear a string by key can
// back it: see the sqlite, redis and memory subpackages.
package repository

import "context"

// Storage keys. The layout is part of the on-disk format; do not rename.
const (
	KeyUsers       = "users"
	KeyCurrentUser = "currentUser"
	KeyFiles       = "files"
)

// KeyValueStore is a string-keyed persistent store.
//
// Get reports ok=false (and a nil error) when the key is absent.
// Delete of an absent key is not an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
