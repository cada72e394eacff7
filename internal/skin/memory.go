// SPDX-License-Identifier: MIT

package skin

import "sync"

// MemorySource is a map-backed Source. It is used by test harnesses and
// as a carrier for small synthesized skins.
type MemorySource struct {
	mu       sync.RWMutex
	info     Info
	textures map[string][]byte
	samples  map[string][]byte
	config   map[string]string
	closed   bool
}

// NewMemorySource creates an empty in-memory source with the given info.
func NewMemorySource(info Info) *MemorySource {
	return &MemorySource{
		info:     info,
		textures: make(map[string][]byte),
		samples:  make(map[string][]byte),
		config:   make(map[string]string),
	}
}

// PutTexture stores a texture under the given name.
func (s *MemorySource) PutTexture(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.textures[name] = data
}

// PutSample stores a sample under the given name.
func (s *MemorySource) PutSample(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples[name] = data
}

// PutConfig stores a configuration value under the given key.
func (s *MemorySource) PutConfig(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config[key] = value
}

// Info implements Source.
func (s *MemorySource) Info() Info { return s.info }

// Texture implements Source.
func (s *MemorySource) Texture(name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if data, ok := s.textures[name]; ok {
		return data, nil
	}
	return nil, ErrNotFound
}

// Sample implements Source.
func (s *MemorySource) Sample(name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if data, ok := s.samples[name]; ok {
		return data, nil
	}
	return nil, ErrNotFound
}

// ConfigValue implements Source.
func (s *MemorySource) ConfigValue(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.config[key]
	return v, ok
}

// Close implements Source.
func (s *MemorySource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close has been called. Test helper.
func (s *MemorySource) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
