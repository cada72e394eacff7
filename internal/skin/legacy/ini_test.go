// SPDX-License-Identifier: MIT

package legacy

import (
	"strings"
	"testing"
)

func TestParseINI(t *testing.T) {
	const doc = `
// legacy skin manifest
[General]
Name: Night Owl
Author: someone
Version: 2.5

[Colours]
Combo1: 255,128,0
Combo2 = 0,255,0

[Keys]
ColumnWidth: 30
`
	ini, err := ParseINI(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseINI: %v", err)
	}

	tests := []struct {
		section, key string
		want         string
		ok           bool
	}{
		{"General", "Name", "Night Owl", true},
		{"general", "name", "Night Owl", true}, // case-insensitive
		{"General", "Version", "2.5", true},
		{"Colours", "Combo1", "255,128,0", true},
		{"Colours", "Combo2", "0,255,0", true}, // '=' separator
		{"Keys", "ColumnWidth", "30", true},
		{"General", "Missing", "", false},
		{"NoSection", "Name", "", false},
	}
	for _, tt := range tests {
		got, ok := ini.Get(tt.section, tt.key)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Get(%q, %q) = %q, %v; want %q, %v", tt.section, tt.key, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseINIPermissive(t *testing.T) {
	const doc = `
Name: Headerless
[Broken
just a line without separator
: empty key
; comment
// another comment
[Fonts]
Prefix: default
`
	ini, err := ParseINI(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseINI: %v", err)
	}

	// Keys before the first section land in General.
	if v, ok := ini.Get("General", "Name"); !ok || v != "Headerless" {
		t.Errorf("General.Name = %q, %v", v, ok)
	}
	// "[Broken" is not a section header; it is a malformed line and is
	// skipped without opening a section.
	if v, ok := ini.Get("Fonts", "Prefix"); !ok || v != "default" {
		t.Errorf("Fonts.Prefix = %q, %v", v, ok)
	}
}

func TestINILookupDotted(t *testing.T) {
	ini, err := ParseINI(strings.NewReader("[Colours]\nCombo1: 1,2,3\n[General]\nName: X\n"))
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := ini.Lookup("Colours.Combo1"); !ok || v != "1,2,3" {
		t.Errorf("Lookup(Colours.Combo1) = %q, %v", v, ok)
	}
	if v, ok := ini.Lookup("Name"); !ok || v != "X" {
		t.Errorf("Lookup(Name) = %q, %v", v, ok)
	}
}

func TestSplitKeyValueColonWins(t *testing.T) {
	key, value, ok := splitKeyValue("Formula: a=b")
	if !ok || key != "Formula" || value != "a=b" {
		t.Errorf("splitKeyValue = %q, %q, %v", key, value, ok)
	}
}

func FuzzParseINI(f *testing.F) {
	f.Add("[General]\nName: X\n")
	f.Add("Name = Y\n// comment\n")
	f.Add("[A]\n[B]\nk:v")
	f.Add(":\n=\n[]\n")
	f.Fuzz(func(t *testing.T, doc string) {
		ini, err := ParseINI(strings.NewReader(doc))
		if err != nil {
			return
		}
		if ini == nil {
			t.Fatal("nil INI without error")
		}
		// Lookups on arbitrary parses must not panic.
		ini.Lookup("General.Name")
		ini.Get("", "")
	})
}
