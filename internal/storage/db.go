// Package storage persists clips and the active clip selection in Badger.
package storage

import (
	"path/filepath"

	"github.com/adrg/xdg"
	badger "github.com/dgraph-io/badger/v4"

	"github.com/manav03panchal/keyline/internal/errors"
	"github.com/manav03panchal/keyline/internal/logging"
)

const (
	// AppName is the application name used for data directories.
	AppName = "keyline"
)

// DB wraps a Badger database connection and the process lock guarding it.
type DB struct {
	db   *badger.DB
	path string
	lock *FileLock
}

// Options configures the database connection.
type Options struct {
	// Path is the database directory path. Empty string uses in-memory mode.
	Path string
	// InMemory forces in-memory mode regardless of Path.
	InMemory bool
	// NoLock skips the process lock for on-disk databases.
	NoLock bool
}

// DefaultPath returns the default database path under the XDG data home.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, AppName, "db")
}

// Open opens or creates a database. On-disk databases are locked against
// other keyline processes until Close.
func Open(opts Options) (*DB, error) {
	if opts.InMemory || opts.Path == "" {
		db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
		if err != nil {
			return nil, err
		}
		return &DB{db: db}, nil
	}

	if err := EnsureDirectory(opts.Path); err != nil {
		return nil, err
	}

	var lock *FileLock
	if !opts.NoLock {
		lock = NewFileLock(opts.Path)
		if err := lock.Acquire(); err != nil {
			return nil, errors.NewRecoverableError(err.Error(), err, "Close the other keyline process, or pass --db to use another database")
		}
	}

	db, err := badger.Open(badger.DefaultOptions(opts.Path).WithLoggingLevel(badger.ERROR))
	if err != nil {
		if lock != nil {
			lock.Release()
		}
		if IsDatabaseCorrupted(err) {
			return nil, errors.NewSystemErrorWithOp("open database", err.Error(), errors.ErrDatabaseCorrupted)
		}
		return nil, errors.WithContext(err, "open database")
	}

	logging.DebugLog("database opened", logging.KeyPath, opts.Path)
	return &DB{db: db, path: opts.Path, lock: lock}, nil
}

// OpenWithIntegrityCheck opens the database and fails if a quick scan finds
// unreadable values.
func OpenWithIntegrityCheck(opts Options) (*DB, error) {
	db, err := Open(opts)
	if err != nil {
		return nil, err
	}
	if err := db.CheckIntegrity(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// CheckIntegrity runs CheckDatabaseIntegrity and turns a failed check into
// an ErrDatabaseCorrupted system error.
func (d *DB) CheckIntegrity() error {
	status := CheckDatabaseIntegrity(d)
	if status.Healthy {
		return nil
	}
	msg := "database integrity check failed"
	if len(status.Errors) > 0 {
		msg = status.Errors[0]
	}
	return errors.NewSystemErrorWithOp("check integrity", msg, errors.ErrDatabaseCorrupted)
}

// Close closes the database and releases the lock. Closing twice is a
// no-op.
func (d *DB) Close() error {
	if d.db.IsClosed() {
		return nil
	}
	err := d.db.Close()
	if d.lock != nil {
		if lerr := d.lock.Release(); err == nil {
			err = lerr
		}
		d.lock = nil
	}
	return err
}

// Path returns the on-disk directory, or "" for in-memory databases.
func (d *DB) Path() string {
	return d.path
}

// Badger returns the underlying Badger database for advanced operations.
func (d *DB) Badger() *badger.DB {
	return d.db
}
