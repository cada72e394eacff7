// SPDX-License-Identifier: MIT

package ruleset

import "github.com/beatkit/skind/internal/skin"

// MappedSource reinterprets a legacy skin for one ruleset by renaming
// lookups: a request for a current asset name is served from the legacy
// name the old format used. Unmapped names pass through unchanged, so a
// legacy skin still serves assets whose names never changed.
type MappedSource struct {
	inner    skin.Source
	textures map[string]string
	samples  map[string]string
	config   map[string]string
}

// NewMappedSource wraps src with the given current-name -> legacy-name
// tables. Nil tables are treated as empty.
func NewMappedSource(src skin.Source, textures, samples, config map[string]string) *MappedSource {
	return &MappedSource{
		inner:    src,
		textures: textures,
		samples:  samples,
		config:   config,
	}
}

// Info implements skin.Source. The wrapped identity is preserved so
// chain listings still show the underlying skin.
func (m *MappedSource) Info() skin.Info { return m.inner.Info() }

// Texture implements skin.Source.
func (m *MappedSource) Texture(name string) ([]byte, error) {
	return m.inner.Texture(mapName(m.textures, name))
}

// Sample implements skin.Source.
func (m *MappedSource) Sample(name string) ([]byte, error) {
	return m.inner.Sample(mapName(m.samples, name))
}

// ConfigValue implements skin.Source.
func (m *MappedSource) ConfigValue(key string) (string, bool) {
	return m.inner.ConfigValue(mapName(m.config, key))
}

// Close implements skin.Source. The wrapper does not own the legacy
// skin; disposal stays with whoever supplied it.
func (m *MappedSource) Close() error { return nil }

// Unwrap returns the wrapped source. Test helper.
func (m *MappedSource) Unwrap() skin.Source { return m.inner }

func mapName(table map[string]string, name string) string {
	if mapped, ok := table[name]; ok {
		return mapped
	}
	return name
}
