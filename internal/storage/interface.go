package storage

import "errors"

// ErrKeyNotFound is returned by Get when a key has never been written or was deleted.
var ErrKeyNotFound = errors.New("key not found")

// KV is a durable key-value store holding serialized snapshots. Writes to
// different keys are independent and not jointly transactional.
type KV interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error

	// Utils
	GetConfigPath() string
}
