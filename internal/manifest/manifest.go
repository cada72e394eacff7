// SPDX-License-Identifier: MIT

// Package manifest implements the current skin format: a directory with
// a skin.yaml manifest declaring every asset explicitly.
package manifest

import (
	"fmt"
	"io"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest is the parsed skin.yaml document.
//
//	name: Crisp
//	author: someone
//	version: "1.2"
//	textures:
//	  - id: hit-circle
//	    path: gameplay/hitcircle.png
//	samples:
//	  - id: hit-normal
//	    path: sounds/normal.wav
//	config:
//	  combo-colour-1: "255,128,0"
type Manifest struct {
	Name     string            `yaml:"name"`
	Author   string            `yaml:"author,omitempty"`
	Version  string            `yaml:"version,omitempty"`
	Textures []Asset           `yaml:"textures,omitempty"`
	Samples  []Asset           `yaml:"samples,omitempty"`
	Config   map[string]string `yaml:"config,omitempty"`
}

// Asset maps a stable asset ID onto a file path relative to the skin
// directory.
type Asset struct {
	ID   string `yaml:"id"`
	Path string `yaml:"path"`
}

// Parse reads and validates a skin.yaml document.
func Parse(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse skin.yaml: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks required fields, asset ID uniqueness per kind, and
// that no asset path escapes the skin directory.
func (m *Manifest) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("skin.yaml: name is required")
	}
	if err := validateAssets("textures", m.Textures); err != nil {
		return err
	}
	if err := validateAssets("samples", m.Samples); err != nil {
		return err
	}
	return nil
}

func validateAssets(kind string, assets []Asset) error {
	seen := make(map[string]struct{}, len(assets))
	for _, a := range assets {
		if strings.TrimSpace(a.ID) == "" {
			return fmt.Errorf("skin.yaml: %s entry without id", kind)
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("skin.yaml: duplicate %s id %q", kind, a.ID)
		}
		seen[a.ID] = struct{}{}
		if !validAssetPath(a.Path) {
			return fmt.Errorf("skin.yaml: %s %q has invalid path %q", kind, a.ID, a.Path)
		}
	}
	return nil
}

// validAssetPath accepts clean, relative, slash-separated paths only.
func validAssetPath(p string) bool {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return false
	}
	cleaned := path.Clean(p)
	if cleaned != p {
		return false
	}
	return cleaned != ".." && !strings.HasPrefix(cleaned, "../")
}
