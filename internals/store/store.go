package store

import (
	"context"
	"embed"
	"fmt"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"Friendbook/internals/clock"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store persists users and posts in a single SQLite file.
type Store struct {
	db     *sqlx.DB
	clock  clock.Clock
	bcrypt bool

	// writeMu serializes inserts so concurrent registrations of the same
	// username resolve to one winner instead of SQLITE_BUSY.
	writeMu sync.Mutex
	// schemaMu guards InitSchema; migrate's sqlite driver lock is per instance.
	schemaMu sync.Mutex
}

type Option func(*Store)

// WithClock overrides the time source used for posts.created_at.
func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithBcrypt stores bcrypt hashes instead of verbatim passwords.
func WithBcrypt() Option {
	return func(s *Store) { s.bcrypt = true }
}

// Open connects to the SQLite file at path with foreign keys enforced.
func Open(path string, busyTimeoutMs int, opts ...Option) (*Store, error) {
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=%d", path, busyTimeoutMs)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "opening sqlite database %s", path)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "pinging sqlite database %s", path)
	}

	s := &Store{db: db, clock: clock.NewRealClock()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// InitSchema brings the schema up to date. Calling it on an up-to-date
// database is a no-op.
func (s *Store) InitSchema(ctx context.Context) error {
	s.schemaMu.Lock()
	defer s.schemaMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return errors.Wrap(err, "loading embedded migrations")
	}
	drv, err := migratesqlite.WithInstance(s.db.DB, &migratesqlite.Config{})
	if err != nil {
		return errors.Wrap(err, "creating migration driver")
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", drv)
	if err != nil {
		return errors.Wrap(err, "creating migrator")
	}
	// m.Close would close s.db through the driver, so only the source is released.
	defer src.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "applying migrations")
	}
	return nil
}
