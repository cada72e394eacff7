// SPDX-License-Identifier: MIT

// Package store provides named binary resource stores backing skin
// sources: plain directories, fs.FS bundles and a badger-backed
// compiled-asset cache.
package store

import "errors"

// ErrNotFound is returned when a store does not carry the named resource.
var ErrNotFound = errors.New("store: resource not found")

// Store exposes named binary resources. Names use forward slashes
// regardless of platform. Implementations are safe for concurrent
// readers.
type Store interface {
	// Open returns the full contents of the named resource, or
	// ErrNotFound.
	Open(name string) ([]byte, error)
	// Has reports whether the named resource exists without reading it.
	Has(name string) bool
	// List returns all resource names in unspecified order.
	List() ([]string, error)
	// Close releases underlying handles. Open after Close is undefined.
	Close() error
}
