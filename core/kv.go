package core

import "errors"

// ErrKeyNotFound is returned by KeyValueStore.Get when the key has never
// been written (or has been deleted).
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is the persistence capability the repositories are built on.
// Values are opaque bytes (JSON-serialized collections in practice); there
// are no transactions and no schema, so callers must validate on read.
type KeyValueStore interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}
