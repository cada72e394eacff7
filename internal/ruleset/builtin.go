// SPDX-License-Identifier: MIT

package ruleset

import (
	"os"
	"path/filepath"

	"github.com/beatkit/skind/internal/skin"
	"github.com/beatkit/skind/internal/store"
)

// builtin is the shared shape of the bundled rulesets: a static identity,
// optional legacy rename tables and a resource bundle directory.
type builtin struct {
	id           string
	name         string
	resourcesDir string

	legacyTextures map[string]string
	legacySamples  map[string]string
	legacyConfig   map[string]string
}

func (b *builtin) ID() string   { return b.id }
func (b *builtin) Name() string { return b.name }

// TransformLegacy implements Ruleset. Rulesets without rename tables
// declare no transform.
func (b *builtin) TransformLegacy(src skin.Source) skin.Source {
	if b.legacyTextures == nil && b.legacySamples == nil && b.legacyConfig == nil {
		return nil
	}
	return NewMappedSource(src, b.legacyTextures, b.legacySamples, b.legacyConfig)
}

// Resources implements Ruleset. A missing bundle directory means the
// ruleset ships no default assets; that is not an error.
func (b *builtin) Resources() (store.Store, error) {
	if b.resourcesDir == "" {
		return nil, nil
	}
	dir := filepath.Join(b.resourcesDir, b.id)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	ds, err := store.NewDirStore(dir)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// NewClassic builds the classic four-lane ruleset. Legacy skins named
// lane assets by column number; current names are positional.
func NewClassic(resourcesDir string) Ruleset {
	return &builtin{
		id:           "classic",
		name:         "Classic",
		resourcesDir: resourcesDir,
		legacyTextures: map[string]string{
			"lane-note":         "note1",
			"lane-note-hold":    "note1l",
			"lane-receptor":     "key1",
			"lane-receptor-lit": "key1d",
			"stage-left":        "stage-left",
			"stage-hint":        "stage-hint",
		},
		legacySamples: map[string]string{
			"note-hit":  "normal-hitnormal",
			"note-miss": "combobreak",
		},
		legacyConfig: map[string]string{
			"lane-width":   "Keys.ColumnWidth",
			"hit-position": "Keys.HitPosition",
		},
	}
}

// NewDrum builds the drum ruleset. Legacy archives name drum assets
// after the old single-word scheme.
func NewDrum(resourcesDir string) Ruleset {
	return &builtin{
		id:           "drum",
		name:         "Drum",
		resourcesDir: resourcesDir,
		legacyTextures: map[string]string{
			"drum-inner":      "drumhit",
			"drum-rim":        "drumrim",
			"drum-roll-body":  "rollmiddle",
			"drum-roll-end":   "rollend",
			"drum-barrel":     "bigdrum",
			"hit-explosion":   "hitburst",
			"playfield-left":  "barleft",
			"playfield-right": "barright",
		},
		legacySamples: map[string]string{
			"drum-hit-inner": "drum-hitnormal",
			"drum-hit-rim":   "drum-hitclap",
		},
	}
}

// NewCatch builds the catch ruleset. It declares no legacy transform:
// legacy skins are used as-is, exercising the identity-preserving
// fallback.
func NewCatch(resourcesDir string) Ruleset {
	return &builtin{
		id:           "catch",
		name:         "Catch",
		resourcesDir: resourcesDir,
	}
}

// Builtins registers the bundled rulesets against a fresh registry.
func Builtins(resourcesDir string) (*Registry, error) {
	reg := NewRegistry()
	for _, rs := range []Ruleset{
		NewClassic(resourcesDir),
		NewDrum(resourcesDir),
		NewCatch(resourcesDir),
	} {
		if err := reg.Register(rs); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
