// SPDX-License-Identifier: MIT

// Package legacy implements the legacy skin format: a directory of
// loosely named asset files described by a skin.ini manifest.
package legacy

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// INI holds a parsed skin.ini: section name -> key -> value. Section and
// key lookups are case-insensitive; the canonical form is the spelling
// first seen in the file.
type INI struct {
	sections map[string]map[string]string
}

// ParseINI reads a skin.ini document. The format in the wild is
// permissive: both "Key: Value" and "Key = Value" separators occur,
// comments start with "//" or ";", and malformed lines are skipped
// rather than rejected. Keys before the first section header land in
// the "General" section.
func ParseINI(r io.Reader) (*INI, error) {
	ini := &INI{sections: make(map[string]map[string]string)}
	section := "general"

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			name := strings.TrimSpace(line[1 : len(line)-1])
			if name != "" {
				section = strings.ToLower(name)
			}
			continue
		}

		key, value, ok := splitKeyValue(line)
		if !ok {
			continue
		}
		sec := ini.sections[section]
		if sec == nil {
			sec = make(map[string]string)
			ini.sections[section] = sec
		}
		sec[strings.ToLower(key)] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read skin.ini: %w", err)
	}
	return ini, nil
}

// Get returns the value for key in section.
func (i *INI) Get(section, key string) (string, bool) {
	sec, ok := i.sections[strings.ToLower(section)]
	if !ok {
		return "", false
	}
	v, ok := sec[strings.ToLower(key)]
	return v, ok
}

// Lookup resolves a dotted key of the form "Section.Key"; a bare key is
// looked up in the General section.
func (i *INI) Lookup(key string) (string, bool) {
	section := "general"
	if idx := strings.Index(key, "."); idx >= 0 {
		section, key = key[:idx], key[idx+1:]
	}
	return i.Get(section, key)
}

// Sections returns the number of parsed sections.
func (i *INI) Sections() int { return len(i.sections) }

func splitKeyValue(line string) (key, value string, ok bool) {
	// The colon separator wins when both occur: values such as
	// "SliderBorder: 255,255,255" never contain one, while '=' can
	// legitimately appear inside free-form values.
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		idx = strings.IndexByte(line, '=')
	}
	if idx <= 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	value = strings.TrimSpace(line[idx+1:])
	if key == "" {
		return "", "", false
	}
	return key, value, true
}
