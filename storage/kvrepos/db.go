// Package kvrepos implements the domain repositories on top of a
// core.KeyValueStore: each collection is one JSON document under a fixed
// key, read and rewritten whole on every mutation.
package kvrepos

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/compliedu/backend/core"
)

// Collection keys.
const (
	usersKey        = "users"
	institutionsKey = "institutions"
	applicationsKey = "sar_applications"

	instituteFormKeyPrefix = "institute_form_"
)

// DB wraps a KeyValueStore with JSON collection access shared by the
// repositories. The mutex serializes read-modify-write cycles so concurrent
// handlers cannot interleave partial collection rewrites.
type DB struct {
	mu     sync.Mutex
	store  core.KeyValueStore
	logger core.Logger
}

func NewDB(store core.KeyValueStore, logger core.Logger) *DB {
	return &DB{store: store, logger: logger}
}

// readCollection loads the collection at key into dst (a pointer to a
// slice). core.ErrKeyNotFound is returned as is; any other failure is
// wrapped.
func (db *DB) readCollection(key string, dst interface{}) error {
	b, err := db.store.Get(key)
	if err != nil {
		if err == core.ErrKeyNotFound {
			return err
		}
		return errors.Wrapf(err, "reading %s", key)
	}
	if err = json.Unmarshal(b, dst); err != nil {
		return errors.Wrapf(err, "decoding %s", key)
	}
	return nil
}

func (db *DB) writeCollection(key string, src interface{}) error {
	b, err := json.Marshal(src)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", key)
	}
	if err = db.store.Set(key, b); err != nil {
		return errors.Wrapf(err, "writing %s", key)
	}
	return nil
}

// fallback logs a failed collection read. The caller then serves the seed
// dataset instead of failing the request; the stored (possibly corrupt)
// value is left untouched.
func (db *DB) fallback(key string, err error) {
	db.logger.Warn(fmt.Sprintf("%s: falling back to default dataset: %v", key, err))
}
