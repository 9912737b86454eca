package storage

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/manav03panchal/keyline/internal/errors"
	"github.com/manav03panchal/keyline/internal/logging"
	"github.com/manav03panchal/keyline/internal/model"
)

// maxIntegrityScan bounds how many entries a health check reads.
const maxIntegrityScan = 1000

// RecoveryStatus is the result of a database health check.
type RecoveryStatus struct {
	Healthy     bool      `json:"healthy"`
	Corrupted   bool      `json:"corrupted"`
	LastCheck   time.Time `json:"last_check"`
	Checked     int       `json:"checked"`
	ErrorCount  int       `json:"error_count"`
	Errors      []string  `json:"errors,omitempty"`
	Recoverable bool      `json:"recoverable"`
	BackupPath  string    `json:"backup_path,omitempty"`
	// Locked is set when this process holds the store's lock file.
	Locked bool `json:"locked"`
}

func (s *RecoveryStatus) fail(format string, args ...any) {
	s.Errors = append(s.Errors, fmt.Sprintf(format, args...))
	s.ErrorCount++
}

// CheckDatabaseIntegrity reads stored entries, decodes every clip document
// and checks that it is usable: its name matches its key, its frame rate
// is positive and its length is not negative. Keys outside the clip and
// active-clip namespaces are reported too.
func CheckDatabaseIntegrity(db *DB) *RecoveryStatus {
	status := &RecoveryStatus{LastCheck: time.Now(), Healthy: true}
	if db != nil && db.lock != nil {
		status.Locked = db.lock.Held()
	}

	if db == nil || db.db == nil {
		status.Healthy = false
		status.Corrupted = true
		status.fail("database not initialized")
		return status
	}

	err := db.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = 10
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid() && status.Checked < maxIntegrityScan; it.Next() {
			item := it.Item()
			key := string(item.KeyCopy(nil))
			err := item.Value(func(val []byte) error { return checkEntry(key, val) })
			if err != nil {
				status.fail("corrupted value at key %s: %v", key, err)
			}
			status.Checked++
		}
		return nil
	})
	if err != nil {
		status.fail("iteration error: %v", err)
	}

	if status.ErrorCount > 0 {
		status.Healthy = false
		status.Corrupted = true
		status.Recoverable = status.ErrorCount < 10
	}
	return status
}

func checkEntry(key string, val []byte) error {
	switch {
	case key == model.KeyActiveClip:
		var a model.ActiveClip
		if err := json.Unmarshal(val, &a); err != nil {
			return fmt.Errorf("undecodable active clip: %w", err)
		}
		return nil
	case !strings.HasPrefix(key, model.PrefixClip+":"):
		return fmt.Errorf("unknown key")
	}

	var doc model.ClipDoc
	if err := json.Unmarshal(val, &doc); err != nil {
		return fmt.Errorf("undecodable clip: %w", err)
	}
	switch {
	case model.GenerateClipKey(doc.Name) != key:
		return fmt.Errorf("clip name %q does not match its key", doc.Name)
	case doc.FrameRate <= 0:
		return fmt.Errorf("clip %q has frame rate %v", doc.Name, doc.FrameRate)
	case doc.Length < 0:
		return fmt.Errorf("clip %q has negative length", doc.Name)
	}
	return nil
}

// CreateBackup copies the database directory into a timestamped sibling
// backups directory and returns the copy's path.
func CreateBackup(dbPath string) (string, error) {
	if dbPath == "" {
		return "", fmt.Errorf("database path is empty")
	}

	backupDir := filepath.Join(filepath.Dir(dbPath), "backups")
	if err := EnsureDirectory(backupDir); err != nil {
		return "", err
	}
	backupPath := filepath.Join(backupDir, "db-backup-"+time.Now().Format("20060102-150405"))

	if err := copyDir(dbPath, backupPath); err != nil {
		return "", fmt.Errorf("failed to copy database: %w", err)
	}

	logging.Info("database backup created", logging.KeyOperation, "backup", logging.KeyPath, backupPath)
	return backupPath, nil
}

// copyDir copies the tree under src to dst, leaving out the lock file so
// the backup can be opened on its own.
func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		info, err := d.Info()
		if err != nil {
			return err
		}
		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm())
		case d.Name() == LockFileName:
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, info.Mode().Perm())
	})
}

// ExportSalvageableData writes every readable clip document to exportPath
// as one JSON array and returns how many were written.
func ExportSalvageableData(db *DB, exportPath string) (int, error) {
	if db == nil || db.db == nil {
		return 0, fmt.Errorf("database not available")
	}

	var docs []json.RawMessage
	err := db.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(model.PrefixClip + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				if !json.Valid(val) {
					return fmt.Errorf("invalid json")
				}
				docs = append(docs, json.RawMessage(append([]byte(nil), val...)))
				return nil
			})
			if err != nil {
				logging.Warn("skipping corrupted entry", logging.KeyClip, string(item.Key()), logging.KeyError, err)
			}
		}
		return nil
	})
	if err != nil {
		return len(docs), fmt.Errorf("export iteration error: %w", err)
	}

	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return len(docs), err
	}
	if err := SafeWrite(exportPath, data, 0600); err != nil {
		return len(docs), err
	}

	logging.Info("salvageable clips exported", logging.KeyCount, len(docs), logging.KeyPath, exportPath)
	return len(docs), nil
}

// AttemptRecovery backs up the database at dbPath, reopens it keeping only
// the latest versions and runs value log GC until nothing is left to do.
// The database must not be open.
func AttemptRecovery(dbPath string) (string, error) {
	backupPath, err := CreateBackup(dbPath)
	if err != nil {
		logging.Warn("failed to create backup before recovery", logging.KeyError, err)
	}

	opts := badger.DefaultOptions(dbPath).
		WithLoggingLevel(badger.ERROR).
		WithNumVersionsToKeep(1)
	db, err := badger.Open(opts)
	if err != nil {
		return backupPath, errors.NewSystemErrorWithOp("recover database", "failed to open database for recovery", err)
	}
	defer db.Close()

	for db.RunValueLogGC(0.5) == nil {
	}

	logging.Info("database recovery attempted", logging.KeyPath, backupPath, logging.KeyStatus, "completed")
	return backupPath, nil
}

var corruptionPatterns = []string{
	"checksum mismatch",
	"corrupt",
	"unexpected eof",
	"bad magic",
	"truncated",
}

// IsDatabaseCorrupted reports whether err looks like on-disk corruption.
func IsDatabaseCorrupted(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, errors.ErrDatabaseCorrupted) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range corruptionPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
