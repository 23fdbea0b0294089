package file

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/compliedu/backend/core"
)

// Store is a core.KeyValueStore persisting each key as a JSON file under a
// directory. Writes go through a temp file and rename so a crash never
// leaves a half-written value behind.
type Store struct {
	mu  sync.Mutex
	dir string
}

var _ core.KeyValueStore = (*Store)(nil)

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating store directory")
	}
	return &Store{dir: dir}, nil
}

// path maps a key to a file name. Path separators in keys are flattened so a
// key can never escape the store directory.
func (s *Store) path(key string) string {
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(key)
	return filepath.Join(s.dir, name+".json")
}

func (s *Store) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	val, err := ioutil.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrKeyNotFound
		}
		return nil, errors.Wrap(err, "reading key file")
	}
	return val, nil
}

func (s *Store) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := ioutil.TempFile(s.dir, ".tmp-*")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(value); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}
	if err = os.Rename(tmp.Name(), s.path(key)); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}
	return nil
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing key file")
	}
	return nil
}
