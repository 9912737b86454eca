package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/manav03panchal/keyline/internal/model"
)

// ErrKeyNotFound is returned when a key is not stored.
var ErrKeyNotFound = errors.New("key not found")

// IsErrKeyNotFound reports whether err means a missing key, from this
// package or from badger itself.
func IsErrKeyNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound) || errors.Is(err, badger.ErrKeyNotFound)
}

// read runs fn over the value stored at key inside a read transaction.
func (d *DB) read(key string, fn func(val []byte) error) error {
	return d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrKeyNotFound
		}
		if err != nil {
			return err
		}
		if fn == nil {
			return nil
		}
		return item.Value(fn)
	})
}

// Get decodes the value at key into v and stamps v with the key.
func (d *DB) Get(key string, v model.Model) error {
	return d.read(key, func(val []byte) error {
		if err := json.Unmarshal(val, v); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		v.SetKey(key)
		return nil
	})
}

// Exists reports whether key is stored.
func (d *DB) Exists(key string) (bool, error) {
	err := d.read(key, nil)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Set stores each model under its own key. All of them land in one
// transaction or none do.
func (d *DB) Set(vs ...model.Model) error {
	encoded := make([][]byte, len(vs))
	for i, v := range vs {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", v.GetKey(), err)
		}
		encoded[i] = data
	}
	return d.db.Update(func(txn *badger.Txn) error {
		for i, v := range vs {
			if err := txn.Set([]byte(v.GetKey()), encoded[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes keys in one transaction. Missing keys are not an error.
func (d *DB) Delete(keys ...string) error {
	return d.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetAllByPrefix decodes every value under prefix, in key order.
func GetAllByPrefix[T model.Model](d *DB, prefix string, newFunc func() T) ([]T, error) {
	var results []T
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.KeyCopy(nil))
			v := newFunc()
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, v)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", key, err)
			}
			v.SetKey(key)
			results = append(results, v)
		}
		return nil
	})
	return results, err
}
