// SPDX-License-Identifier: MIT

package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/beatkit/skind/internal/skin"
	"github.com/beatkit/skind/internal/store"
)

// Skin is a manifest-described skin source. Only assets declared in
// skin.yaml are reachable; stray files in the directory are invisible.
type Skin struct {
	info     skin.Info
	textures map[string]string
	samples  map[string]string
	config   map[string]string
	store    *store.DirStore
}

// Load reads a manifest skin from dir, which must contain skin.yaml.
func Load(dir, slug string) (*Skin, error) {
	f, err := os.Open(filepath.Join(dir, "skin.yaml"))
	if err != nil {
		return nil, fmt.Errorf("open skin.yaml: %w", err)
	}
	m, err := Parse(f)
	closeErr := f.Close()
	if err != nil {
		return nil, err
	}
	if closeErr != nil {
		return nil, fmt.Errorf("close skin.yaml: %w", closeErr)
	}

	ds, err := store.NewDirStore(dir)
	if err != nil {
		return nil, err
	}

	s := &Skin{
		info: skin.Info{
			Slug:    slug,
			Name:    m.Name,
			Author:  m.Author,
			Version: m.Version,
		},
		textures: make(map[string]string, len(m.Textures)),
		samples:  make(map[string]string, len(m.Samples)),
		config:   m.Config,
		store:    ds,
	}
	for _, a := range m.Textures {
		s.textures[a.ID] = a.Path
	}
	for _, a := range m.Samples {
		s.samples[a.ID] = a.Path
	}
	return s, nil
}

// Info implements skin.Source.
func (s *Skin) Info() skin.Info { return s.info }

// Texture implements skin.Source.
func (s *Skin) Texture(name string) ([]byte, error) {
	return s.open(s.textures, name)
}

// Sample implements skin.Source.
func (s *Skin) Sample(name string) ([]byte, error) {
	return s.open(s.samples, name)
}

// ConfigValue implements skin.Source.
func (s *Skin) ConfigValue(key string) (string, bool) {
	v, ok := s.config[key]
	return v, ok
}

// Close implements skin.Source.
func (s *Skin) Close() error { return s.store.Close() }

func (s *Skin) open(index map[string]string, name string) ([]byte, error) {
	rel, ok := index[name]
	if !ok {
		return nil, skin.ErrNotFound
	}
	data, err := s.store.Open(rel)
	if errors.Is(err, store.ErrNotFound) {
		// Declared in the manifest but missing on disk.
		return nil, skin.ErrNotFound
	}
	return data, err
}
