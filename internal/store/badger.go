// SPDX-License-Identifier: MIT

package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// CompiledStore persists post-transform assets across restarts so a cold
// daemon does not re-walk every chain for assets it already composed.
// Keys are "asset:<skin>:<ruleset>:<kind>:<name>".
type CompiledStore struct {
	db  *badger.DB
	ttl time.Duration
}

// CompiledAsset is a cached chain-resolution result.
type CompiledAsset struct {
	Data []byte
	Tier int
}

// OpenCompiledStore opens (or creates) the badger database at path.
// Entries expire after ttl; a non-positive ttl disables expiry.
func OpenCompiledStore(path string, ttl time.Duration) (*CompiledStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open compiled store: %w", err)
	}
	return &CompiledStore{db: db, ttl: ttl}, nil
}

// Close implements io.Closer.
func (s *CompiledStore) Close() error { return s.db.Close() }

// Put stores a compiled asset.
func (s *CompiledStore) Put(skinSlug, rulesetID, kind, name string, asset CompiledAsset) error {
	key := compiledKey(skinSlug, rulesetID, kind, name)
	// Tier is encoded in a one-byte prefix; tiers beyond 255 do not occur
	// in practice (chains carry a handful of sources).
	tier := asset.Tier
	if tier < 0 || tier > 255 {
		return fmt.Errorf("compiled store: tier %d out of range", tier)
	}
	val := make([]byte, 0, len(asset.Data)+1)
	val = append(val, byte(tier))
	val = append(val, asset.Data...)

	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key, val)
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Get fetches a compiled asset, or ErrNotFound.
func (s *CompiledStore) Get(skinSlug, rulesetID, kind, name string) (CompiledAsset, error) {
	key := compiledKey(skinSlug, rulesetID, kind, name)
	var out CompiledAsset
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) < 1 {
				return fmt.Errorf("compiled store: short value for %q", key)
			}
			out.Tier = int(val[0])
			out.Data = append([]byte(nil), val[1:]...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return CompiledAsset{}, ErrNotFound
	}
	if err != nil {
		return CompiledAsset{}, fmt.Errorf("compiled store get: %w", err)
	}
	return out, nil
}

// DropSkin removes every compiled asset for the given skin, across all
// rulesets. Called when a skin is reinstalled or removed.
func (s *CompiledStore) DropSkin(skinSlug string) error {
	prefix := []byte("asset:" + skinSlug + ":")
	return s.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
		defer it.Close()
		var keys [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func compiledKey(skinSlug, rulesetID, kind, name string) []byte {
	return []byte("asset:" + skinSlug + ":" + rulesetID + ":" + kind + ":" + name)
}
