// SPDX-License-Identifier: MIT

package store

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DirStore serves resources from a directory on disk. Lookups are
// confined to the root: traversal outside it is rejected rather than
// resolved.
type DirStore struct {
	root string
}

// NewDirStore opens a directory store rooted at dir. The directory must
// exist.
func NewDirStore(dir string) (*DirStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve store root: %w", err)
	}
	st, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat store root: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("store root %q is not a directory", abs)
	}
	return &DirStore{root: abs}, nil
}

// Root returns the absolute root directory.
func (s *DirStore) Root() string { return s.root }

// Open implements Store.
func (s *DirStore) Open(name string) ([]byte, error) {
	full, ok := s.resolve(name)
	if !ok {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read resource %q: %w", name, err)
	}
	return data, nil
}

// Has implements Store.
func (s *DirStore) Has(name string) bool {
	full, ok := s.resolve(name)
	if !ok {
		return false
	}
	st, err := os.Stat(full)
	return err == nil && st.Mode().IsRegular()
}

// List implements Store.
func (s *DirStore) List() ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list store %q: %w", s.root, err)
	}
	return names, nil
}

// Close implements Store. Directory stores hold no handles.
func (s *DirStore) Close() error { return nil }

// resolve maps a slash-separated resource name onto a path under root.
// Absolute names and names escaping the root are rejected.
func (s *DirStore) resolve(name string) (string, bool) {
	cleaned := path.Clean("/" + name)
	if cleaned == "/" {
		return "", false
	}
	// Clean with a leading slash cannot produce "..", but keep the
	// explicit check in case the join below ever changes.
	if strings.Contains(cleaned, "..") {
		return "", false
	}
	full := filepath.Join(s.root, filepath.FromSlash(cleaned))
	if full != s.root && !strings.HasPrefix(full, s.root+string(os.PathSeparator)) {
		return "", false
	}
	return full, true
}
