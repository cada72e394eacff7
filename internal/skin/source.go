// SPDX-License-Identifier: MIT

// Package skin defines skin sources and the ordered fallback chains
// gameplay components query for textures, samples and config values.
package skin

import "errors"

// ErrNotFound is returned by lookups when a source does not carry the
// requested asset. Callers fall through to the next source in the chain.
var ErrNotFound = errors.New("skin: asset not found")

// Kind identifies the class of asset being looked up.
type Kind string

const (
	KindTexture Kind = "texture"
	KindSample  Kind = "sample"
	KindConfig  Kind = "config"
)

// Valid reports whether k is a known asset kind.
func (k Kind) Valid() bool {
	switch k {
	case KindTexture, KindSample, KindConfig:
		return true
	}
	return false
}

// Info describes a skin source.
type Info struct {
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	Author  string `json:"author,omitempty"`
	Version string `json:"version,omitempty"`
	Legacy  bool   `json:"legacy"`
}

// Source is a single provider of skin assets. Implementations are safe
// for concurrent readers. Close releases any underlying handles; sources
// owned by external callers must tolerate never being closed by a chain.
type Source interface {
	Info() Info
	Texture(name string) ([]byte, error)
	Sample(name string) ([]byte, error)
	ConfigValue(key string) (string, bool)
	Close() error
}

// Lookup fetches a binary asset of the given kind from src.
// KindConfig is not a binary lookup and reports ErrNotFound.
func Lookup(src Source, kind Kind, name string) ([]byte, error) {
	switch kind {
	case KindTexture:
		return src.Texture(name)
	case KindSample:
		return src.Sample(name)
	default:
		return nil, ErrNotFound
	}
}
