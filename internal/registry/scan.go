// SPDX-License-Identifier: MIT

package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	xglog "github.com/beatkit/skind/internal/log"
	"github.com/beatkit/skind/internal/manifest"
	"github.com/beatkit/skind/internal/skin"
	"github.com/beatkit/skind/internal/skin/legacy"
)

// Scan walks the skins directory, registers every skin found and marks
// the rest missing. Each immediate subdirectory is one skin: skin.yaml
// marks the manifest format, anything else is treated as legacy. Skins
// that fail to load are logged and skipped; one broken archive must not
// take down the rescan.
func Scan(ctx context.Context, store *Store, skinsDir string) ([]Skin, error) {
	logger := xglog.WithComponentFromContext(ctx, "registry")

	entries, err := os.ReadDir(skinsDir)
	if err != nil {
		return nil, fmt.Errorf("read skins dir: %w", err)
	}

	var found []Skin
	keep := make(map[string]struct{})
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(skinsDir, entry.Name())

		sk, err := probe(dir)
		if err != nil {
			logger.Warn().Err(err).
				Str("event", "registry.skin_unreadable").
				Str(xglog.FieldPath, dir).
				Msg("skipping unreadable skin")
			continue
		}

		if _, dup := keep[sk.Slug]; dup {
			logger.Warn().
				Str("event", "registry.slug_conflict").
				Str(xglog.FieldSkin, sk.Slug).
				Str(xglog.FieldPath, dir).
				Msg("skin slug already taken by another directory, skipping")
			continue
		}

		if err := store.Upsert(ctx, sk); err != nil {
			return nil, err
		}
		keep[sk.Slug] = struct{}{}
		found = append(found, sk)
	}

	if err := store.MarkMissingExcept(ctx, keep); err != nil {
		return nil, err
	}

	logger.Info().
		Str("event", "registry.scanned").
		Int("skins", len(found)).
		Msg("skins directory scanned")
	return found, nil
}

// probe reads just enough of a skin directory to register it.
func probe(dir string) (Skin, error) {
	if _, err := os.Stat(filepath.Join(dir, "skin.yaml")); err == nil {
		src, err := manifest.Load(dir, "")
		if err != nil {
			return Skin{}, err
		}
		info := src.Info()
		_ = src.Close()
		return Skin{
			Slug:    Slugify(info.Name),
			Name:    info.Name,
			Author:  info.Author,
			Version: info.Version,
			Format:  FormatManifest,
			Path:    dir,
		}, nil
	}

	src, err := legacy.Load(dir, "")
	if err != nil {
		return Skin{}, err
	}
	info := src.Info()
	_ = src.Close()
	return Skin{
		Slug:    Slugify(info.Name),
		Name:    info.Name,
		Author:  info.Author,
		Version: info.Version,
		Format:  FormatLegacy,
		Path:    dir,
	}, nil
}

// OpenSource loads the skin source behind a registry row.
func OpenSource(sk Skin) (skin.Source, error) {
	switch sk.Format {
	case FormatManifest:
		return manifest.Load(sk.Path, sk.Slug)
	case FormatLegacy:
		return legacy.Load(sk.Path, sk.Slug)
	default:
		return nil, fmt.Errorf("registry: unknown skin format %q", sk.Format)
	}
}
