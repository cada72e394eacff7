// SPDX-License-Identifier: MIT

package skin

import (
	"sort"
	"sync"

	xglog "github.com/beatkit/skind/internal/log"
	"github.com/rs/zerolog"
)

// Manager owns the upstream source set: the beatmap skin (when present and
// enabled), the user-selected skin, and the default skin. Every mutation
// notifies subscribers synchronously, in subscription order, so dependent
// chains rebuild exactly once per change.
type Manager struct {
	mu          sync.RWMutex
	defaultSkin Source
	userSkin    Source
	beatmapSkin Source

	// beatmapEnabled gates the beatmap skin without discarding it, so
	// toggling the preference back restores the previous source.
	beatmapEnabled bool

	listenerMu sync.Mutex
	listeners  map[int]func()
	nextID     int

	logger zerolog.Logger
}

// NewManager creates a manager with the given default skin. The default
// skin is always the lowest-priority source; it may be nil in test
// harnesses that substitute their own providers.
func NewManager(defaultSkin Source) *Manager {
	return &Manager{
		defaultSkin:    defaultSkin,
		beatmapEnabled: true,
		listeners:      make(map[int]func()),
		logger:         xglog.WithComponent("skin.manager"),
	}
}

// Default returns the default skin, or nil if none is configured.
func (m *Manager) Default() Source {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultSkin
}

// Sources returns the current upstream source list in priority order:
// beatmap skin (if set and enabled), user skin, default skin. Absent
// entries are simply omitted.
func (m *Manager) Sources() []Source {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Source, 0, 3)
	if m.beatmapEnabled && m.beatmapSkin != nil {
		out = append(out, m.beatmapSkin)
	}
	if m.userSkin != nil {
		out = append(out, m.userSkin)
	}
	if m.defaultSkin != nil {
		out = append(out, m.defaultSkin)
	}
	return out
}

// SetUserSkin replaces the user-selected skin. Passing nil clears it so
// lookups fall through to the default skin.
func (m *Manager) SetUserSkin(src Source) {
	m.mu.Lock()
	m.userSkin = src
	m.mu.Unlock()

	m.logger.Debug().
		Str("event", "skin.user_changed").
		Str(xglog.FieldSkin, infoSlug(src)).
		Msg("user skin changed")
	m.notify()
}

// SetBeatmapSkin replaces the beatmap-provided skin. Passing nil clears it.
func (m *Manager) SetBeatmapSkin(src Source) {
	m.mu.Lock()
	m.beatmapSkin = src
	m.mu.Unlock()

	m.logger.Debug().
		Str("event", "skin.beatmap_changed").
		Str(xglog.FieldSkin, infoSlug(src)).
		Msg("beatmap skin changed")
	m.notify()
}

// SetBeatmapSkinEnabled toggles whether the beatmap skin participates in
// the source list.
func (m *Manager) SetBeatmapSkinEnabled(enabled bool) {
	m.mu.Lock()
	changed := m.beatmapEnabled != enabled
	m.beatmapEnabled = enabled
	m.mu.Unlock()

	if changed {
		m.notify()
	}
}

// SetDefaultSkin replaces the default skin. Intended for wiring and tests.
func (m *Manager) SetDefaultSkin(src Source) {
	m.mu.Lock()
	m.defaultSkin = src
	m.mu.Unlock()
	m.notify()
}

// Refresh re-emits a change notification without mutating the source set.
// Used when sources were reloaded in place (e.g. the skins directory
// changed on disk).
func (m *Manager) Refresh() {
	m.notify()
}

// Subscribe registers fn to run synchronously on every source-set change.
// The returned cancel function removes the subscription; it is safe to
// call more than once.
func (m *Manager) Subscribe(fn func()) (cancel func()) {
	m.listenerMu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.listenerMu.Unlock()

	return func() {
		m.listenerMu.Lock()
		delete(m.listeners, id)
		m.listenerMu.Unlock()
	}
}

func (m *Manager) notify() {
	m.listenerMu.Lock()
	fns := make([]func(), 0, len(m.listeners))
	ids := make([]int, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}
	// Map iteration order is random; deliver in subscription order.
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, m.listeners[id])
	}
	m.listenerMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func infoSlug(src Source) string {
	if src == nil {
		return ""
	}
	return src.Info().Slug
}
