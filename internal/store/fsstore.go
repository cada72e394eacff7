// SPDX-License-Identifier: MIT

package store

import (
	"errors"
	"fmt"
	"io/fs"
)

// FSStore adapts an fs.FS into a Store. Used for ruleset resource
// bundles and for tests built on fstest.MapFS.
type FSStore struct {
	fsys fs.FS
}

// NewFSStore wraps fsys. The filesystem is assumed immutable.
func NewFSStore(fsys fs.FS) *FSStore {
	return &FSStore{fsys: fsys}
}

// Open implements Store.
func (s *FSStore) Open(name string) ([]byte, error) {
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || !fs.ValidPath(name) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read resource %q: %w", name, err)
	}
	return data, nil
}

// Has implements Store.
func (s *FSStore) Has(name string) bool {
	if !fs.ValidPath(name) {
		return false
	}
	st, err := fs.Stat(s.fsys, name)
	return err == nil && !st.IsDir()
}

// List implements Store.
func (s *FSStore) List() ([]string, error) {
	var names []string
	err := fs.WalkDir(s.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		names = append(names, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list fs store: %w", err)
	}
	return names, nil
}

// Close implements Store.
func (s *FSStore) Close() error { return nil }
