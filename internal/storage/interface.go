package storage

import "errors"

// ErrNotFound is returned by Get when no blob is stored under the key.
var ErrNotFound = errors.New("blob not found")

// BlobStore is a local key-value store of opaque byte blobs. It plays the role
// of browser local storage for the snapshot cache.
type BlobStore interface {
	// Lifecycle
	Init() error
	Close() error

	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Keys() ([]string, error)

	// Utils
	GetConfigPath() string
}
