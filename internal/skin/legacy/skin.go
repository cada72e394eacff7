// SPDX-License-Identifier: MIT

package legacy

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/beatkit/skind/internal/skin"
)

var textureExts = []string{".png", ".jpg"}

var sampleExts = []string{".wav", ".ogg", ".mp3"}

// Skin is a directory-backed legacy skin. Asset lookup is
// case-insensitive and prefers "@2x" variants of textures, matching how
// legacy skin archives are laid out in the wild.
type Skin struct {
	dir  string
	info skin.Info
	ini  *INI

	// files maps the lower-cased relative path of every regular file in
	// the skin directory to its on-disk path. Built once at load time;
	// a directory change is handled by reloading the whole skin.
	files map[string]string
}

// Load reads a legacy skin from dir. A missing skin.ini is tolerated
// (such archives exist); the directory name then stands in for the skin
// name.
func Load(dir, slug string) (*Skin, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve legacy skin dir: %w", err)
	}

	s := &Skin{
		dir:   abs,
		files: make(map[string]string),
		info: skin.Info{
			Slug:   slug,
			Name:   filepath.Base(abs),
			Legacy: true,
		},
	}

	if err := s.index(); err != nil {
		return nil, err
	}

	if path, ok := s.files["skin.ini"]; ok {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open skin.ini: %w", err)
		}
		ini, err := ParseINI(f)
		closeErr := f.Close()
		if err != nil {
			return nil, err
		}
		if closeErr != nil {
			return nil, fmt.Errorf("close skin.ini: %w", closeErr)
		}
		s.ini = ini

		if name, ok := ini.Get("General", "Name"); ok && name != "" {
			s.info.Name = name
		}
		if author, ok := ini.Get("General", "Author"); ok {
			s.info.Author = author
		}
		if version, ok := ini.Get("General", "Version"); ok {
			s.info.Version = version
		}
	}

	return s, nil
}

// Info implements skin.Source.
func (s *Skin) Info() skin.Info { return s.info }

// Texture implements skin.Source. "name@2x.ext" beats "name.ext" for
// every known texture extension.
func (s *Skin) Texture(name string) ([]byte, error) {
	lower := strings.ToLower(name)
	for _, ext := range textureExts {
		if data, err := s.read(lower + "@2x" + ext); err == nil {
			return data, nil
		}
	}
	for _, ext := range textureExts {
		if data, err := s.read(lower + ext); err == nil {
			return data, nil
		}
	}
	return nil, skin.ErrNotFound
}

// Sample implements skin.Source.
func (s *Skin) Sample(name string) ([]byte, error) {
	lower := strings.ToLower(name)
	for _, ext := range sampleExts {
		if data, err := s.read(lower + ext); err == nil {
			return data, nil
		}
	}
	return nil, skin.ErrNotFound
}

// ConfigValue implements skin.Source. Keys are dotted "Section.Key";
// bare keys hit the General section.
func (s *Skin) ConfigValue(key string) (string, bool) {
	if s.ini == nil {
		return "", false
	}
	return s.ini.Lookup(key)
}

// Close implements skin.Source. Legacy skins hold no handles between
// lookups.
func (s *Skin) Close() error { return nil }

// Colour returns an RGB colour triple from the Colours section, e.g.
// Colour("Combo1") for "Combo1: 255,128,0".
func (s *Skin) Colour(key string) (r, g, b uint8, ok bool) {
	if s.ini == nil {
		return 0, 0, 0, false
	}
	raw, found := s.ini.Get("Colours", key)
	if !found {
		return 0, 0, 0, false
	}
	parts := strings.Split(raw, ",")
	if len(parts) < 3 {
		return 0, 0, 0, false
	}
	vals := make([]uint8, 3)
	for i := 0; i < 3; i++ {
		var v int
		if _, err := fmt.Sscanf(strings.TrimSpace(parts[i]), "%d", &v); err != nil || v < 0 || v > 255 {
			return 0, 0, 0, false
		}
		vals[i] = uint8(v)
	}
	return vals[0], vals[1], vals[2], true
}

func (s *Skin) index() error {
	err := filepath.WalkDir(s.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.dir, p)
		if err != nil {
			return err
		}
		key := strings.ToLower(filepath.ToSlash(rel))
		// First file wins on case collisions; legacy archives with
		// duplicate names behave the same way on case-insensitive
		// filesystems.
		if _, exists := s.files[key]; !exists {
			s.files[key] = p
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("index legacy skin %q: %w", s.dir, err)
	}
	return nil
}

func (s *Skin) read(rel string) ([]byte, error) {
	path, ok := s.files[rel]
	if !ok {
		return nil, skin.ErrNotFound
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, skin.ErrNotFound
		}
		return nil, fmt.Errorf("read legacy asset %q: %w", rel, err)
	}
	return data, nil
}
