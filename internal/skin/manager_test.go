// SPDX-License-Identifier: MIT

package skin

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func slugs(sources []Source) []string {
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		out = append(out, s.Info().Slug)
	}
	return out
}

func TestManagerSourceOrder(t *testing.T) {
	def := memSource("default")
	user := memSource("user")
	beatmap := memSource("beatmap")

	m := NewManager(def)
	if diff := cmp.Diff([]string{"default"}, slugs(m.Sources())); diff != "" {
		t.Errorf("initial sources mismatch (-want +got):\n%s", diff)
	}

	m.SetUserSkin(user)
	m.SetBeatmapSkin(beatmap)
	if diff := cmp.Diff([]string{"beatmap", "user", "default"}, slugs(m.Sources())); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}
}

func TestManagerBeatmapToggle(t *testing.T) {
	m := NewManager(memSource("default"))
	m.SetBeatmapSkin(memSource("beatmap"))

	m.SetBeatmapSkinEnabled(false)
	if diff := cmp.Diff([]string{"default"}, slugs(m.Sources())); diff != "" {
		t.Errorf("disabled sources mismatch (-want +got):\n%s", diff)
	}

	m.SetBeatmapSkinEnabled(true)
	if diff := cmp.Diff([]string{"beatmap", "default"}, slugs(m.Sources())); diff != "" {
		t.Errorf("re-enabled sources mismatch (-want +got):\n%s", diff)
	}
}

func TestManagerNilDefault(t *testing.T) {
	m := NewManager(nil)
	if len(m.Sources()) != 0 {
		t.Fatalf("Sources = %v, want empty", slugs(m.Sources()))
	}
	if m.Default() != nil {
		t.Error("Default() != nil")
	}
}

func TestManagerNotifications(t *testing.T) {
	m := NewManager(memSource("default"))

	var calls int
	cancel := m.Subscribe(func() { calls++ })

	m.SetUserSkin(memSource("user"))
	m.SetBeatmapSkin(memSource("beatmap"))
	m.Refresh()
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}

	// Toggling to the current value must not notify.
	m.SetBeatmapSkinEnabled(true)
	if calls != 3 {
		t.Errorf("calls after no-op toggle = %d, want 3", calls)
	}

	cancel()
	m.SetUserSkin(nil)
	if calls != 3 {
		t.Errorf("calls after cancel = %d, want 3", calls)
	}
	// Double cancel is harmless.
	cancel()
}

func TestManagerNotificationOrder(t *testing.T) {
	m := NewManager(nil)

	var order []int
	m.Subscribe(func() { order = append(order, 1) })
	m.Subscribe(func() { order = append(order, 2) })
	m.Subscribe(func() { order = append(order, 3) })

	m.Refresh()
	if diff := cmp.Diff([]int{1, 2, 3}, order); diff != "" {
		t.Errorf("notification order mismatch (-want +got):\n%s", diff)
	}
}
