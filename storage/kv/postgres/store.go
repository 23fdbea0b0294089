package postgres

import (
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/compliedu/backend/core"
)

// Store is a core.KeyValueStore backed by a single postgres table.
type Store struct {
	db *sqlx.DB
}

var _ core.KeyValueStore = (*Store)(nil)

func open(dbName string, admin bool, conf *core.Config) (*sqlx.DB, error) {
	dbConf := conf.Storage.Database

	user := url.UserPassword(dbConf.User, dbConf.Password)
	if admin && dbConf.AdminUser != "" {
		user = url.UserPassword(dbConf.AdminUser, dbConf.AdminPassword)
	}

	sslMode := "require"
	if dbConf.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   dbConf.Engine,
		User:     user,
		Host:     dbConf.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return sqlx.Open(dbConf.Engine, u.String())
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func createAppUser(db *sqlx.DB, conf *core.Config) error {
	dbConf := conf.Storage.Database
	if dbConf.User == "" {
		return nil
	}

	var exists bool
	rows, err := db.Query(fmt.Sprintf("SELECT true FROM pg_roles WHERE rolname='%s'", dbConf.User))
	if err != nil {
		return errors.Wrap(err, "checking app user")
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		if err = rows.Scan(&exists); err != nil {
			return errors.Wrap(err, "checking app user")
		}
	}
	if err = rows.Err(); err != nil {
		return errors.Wrap(err, "checking app user")
	}

	if !exists {
		q := fmt.Sprintf("CREATE USER %s CREATEDB ENCRYPTED PASSWORD '%s'", dbConf.User, dbConf.Password)
		if _, err = db.Exec(q); err != nil {
			return errors.Wrap(err, "creating app user")
		}
	}
	return nil
}

func createDB(db *sqlx.DB, conf *core.Config) error {
	dbConf := conf.Storage.Database

	var exists bool
	rows, err := db.Query(fmt.Sprintf("SELECT true FROM pg_database WHERE datname='%s'", dbConf.Name))
	if err != nil {
		return errors.Wrap(err, "checking DB")
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		if err = rows.Scan(&exists); err != nil {
			return errors.Wrap(err, "checking DB")
		}
	}
	if err = rows.Err(); err != nil {
		return errors.Wrap(err, "checking DB")
	}

	if !exists {
		if _, err = db.Exec(fmt.Sprintf("CREATE DATABASE %s", dbConf.Name)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// CreateIfNotExist provisions the app user and database, connecting as admin
// first if admin credentials are configured.
func CreateIfNotExist(conf *core.Config) error {
	db, err := open("postgres", true, conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}

	if err = ping(db); err != nil {
		return errors.Wrap(err, "pinging database")
	}

	if err = createAppUser(db, conf); err != nil {
		return errors.Wrap(err, "creating app user")
	}
	defer func() { _ = db.Close() }()

	db, err = open("postgres", false, conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	if err = createDB(db, conf); err != nil {
		return errors.Wrap(err, "creating database")
	}
	defer func() { _ = db.Close() }()
	return nil
}

// NewStore opens the configured database, waits for it to be ready and
// bootstraps the key-value table.
func NewStore(conf *core.Config) (*Store, error) {
	db, err := open(conf.Storage.Database.Name, false, conf)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(db); err != nil {
		return nil, err
	}
	if _, err = db.Exec(`
CREATE TABLE IF NOT EXISTS kv_entries (
	key        text PRIMARY KEY,
	value      jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`); err != nil {
		return nil, errors.Wrap(err, "creating kv table")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Get(key string) ([]byte, error) {
	var val []byte
	err := s.db.Get(&val, "SELECT value FROM kv_entries WHERE key = $1", key)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrKeyNotFound
		}
		return nil, errors.Wrap(err, "getting key")
	}
	return val, nil
}

func (s *Store) Set(key string, value []byte) error {
	_, err := s.db.Exec(`
INSERT INTO kv_entries (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = now()`,
		key, value)
	return errors.Wrap(err, "setting key")
}

func (s *Store) Delete(key string) error {
	_, err := s.db.Exec("DELETE FROM kv_entries WHERE key = $1", key)
	return errors.Wrap(err, "deleting key")
}
