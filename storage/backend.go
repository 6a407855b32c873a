// Package storage provides the key-value persistence backends that hold the
// session slot and the local account directory for one device profile.
package storage

import "context"

// Backend is a per-profile key-value store. Writes may fail (quota, access
// denied, connection loss); no atomicity is promised across processes.
type Backend interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
