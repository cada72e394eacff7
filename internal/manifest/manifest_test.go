// SPDX-License-Identifier: MIT

package manifest

import (
	"strings"
	"testing"
)

const sampleManifest = `
name: Crisp
author: someone
version: "1.2"
textures:
  - id: hit-circle
    path: gameplay/hitcircle.png
  - id: cursor
    path: cursor.png
samples:
  - id: hit-normal
    path: sounds/normal.wav
config:
  combo-colour-1: "255,128,0"
`

func TestParse(t *testing.T) {
	m, err := Parse(strings.NewReader(sampleManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Name != "Crisp" || m.Author != "someone" || m.Version != "1.2" {
		t.Errorf("header = %+v", m)
	}
	if len(m.Textures) != 2 || len(m.Samples) != 1 {
		t.Errorf("assets = %d textures, %d samples", len(m.Textures), len(m.Samples))
	}
	if m.Config["combo-colour-1"] != "255,128,0" {
		t.Errorf("config = %v", m.Config)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	if _, err := Parse(strings.NewReader("name: X\nbogus: 1\n")); err == nil {
		t.Error("unknown field accepted")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing name", "author: x\n"},
		{"blank name", "name: \"  \"\n"},
		{"texture without id", "name: X\ntextures:\n  - path: a.png\n"},
		{"duplicate texture id", "name: X\ntextures:\n  - id: a\n    path: a.png\n  - id: a\n    path: b.png\n"},
		{"absolute path", "name: X\ntextures:\n  - id: a\n    path: /etc/passwd\n"},
		{"traversal path", "name: X\ntextures:\n  - id: a\n    path: ../../escape.png\n"},
		{"unclean path", "name: X\ntextures:\n  - id: a\n    path: a//b.png\n"},
		{"backslash path", "name: X\nsamples:\n  - id: a\n    path: a\\b.wav\n"},
		{"empty path", "name: X\nsamples:\n  - id: a\n    path: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.doc)); err == nil {
				t.Errorf("Parse accepted %s", tt.name)
			}
		})
	}
}
