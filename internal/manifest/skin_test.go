// SPDX-License-Identifier: MIT

package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/beatkit/skind/internal/skin"
)

func writeSkin(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string][]byte{
		"skin.yaml": []byte(`name: Crisp
textures:
  - id: hit-circle
    path: gameplay/hitcircle.png
  - id: ghost
    path: gameplay/missing.png
samples:
  - id: hit-normal
    path: sounds/normal.wav
config:
  combo-colour-1: "255,128,0"
`),
		"gameplay/hitcircle.png": []byte("png"),
		"sounds/normal.wav":      []byte("wav"),
		"stray.png":              []byte("stray"),
	}
	for name, data := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoad(t *testing.T) {
	s, err := Load(writeSkin(t), "crisp")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	info := s.Info()
	if info.Slug != "crisp" || info.Name != "Crisp" || info.Legacy {
		t.Errorf("Info = %+v", info)
	}

	data, err := s.Texture("hit-circle")
	if err != nil || string(data) != "png" {
		t.Errorf("Texture = %q, %v", data, err)
	}
	data, err = s.Sample("hit-normal")
	if err != nil || string(data) != "wav" {
		t.Errorf("Sample = %q, %v", data, err)
	}
	if v, ok := s.ConfigValue("combo-colour-1"); !ok || v != "255,128,0" {
		t.Errorf("ConfigValue = %q, %v", v, ok)
	}
}

func TestLoadUndeclaredAssetsInvisible(t *testing.T) {
	s, err := Load(writeSkin(t), "crisp")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Texture("stray"); !errors.Is(err, skin.ErrNotFound) {
		t.Errorf("undeclared asset served: %v", err)
	}
}

func TestLoadDeclaredButMissingFile(t *testing.T) {
	s, err := Load(writeSkin(t), "crisp")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Texture("ghost"); !errors.Is(err, skin.ErrNotFound) {
		t.Errorf("missing file err = %v, want ErrNotFound", err)
	}
}

func TestLoadWithoutManifest(t *testing.T) {
	if _, err := Load(t.TempDir(), "x"); err == nil {
		t.Error("Load without skin.yaml succeeded")
	}
}
