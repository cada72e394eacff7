// SPDX-License-Identifier: MIT

package store

import (
	"errors"
	"testing"
	"time"
)

func openTestStore(t *testing.T, ttl time.Duration) *CompiledStore {
	t.Helper()
	s, err := OpenCompiledStore(t.TempDir(), ttl)
	if err != nil {
		t.Fatalf("OpenCompiledStore: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

func TestCompiledStoreRoundTrip(t *testing.T) {
	s := openTestStore(t, 0)

	asset := CompiledAsset{Data: []byte("pixels"), Tier: 2}
	if err := s.Put("night-owl", "drum", "texture", "drum-inner", asset); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get("night-owl", "drum", "texture", "drum-inner")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got.Data) != "pixels" || got.Tier != 2 {
		t.Errorf("Get = %+v", got)
	}
}

func TestCompiledStoreMiss(t *testing.T) {
	s := openTestStore(t, 0)
	if _, err := s.Get("nope", "drum", "texture", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get miss err = %v, want ErrNotFound", err)
	}
}

func TestCompiledStoreTierRange(t *testing.T) {
	s := openTestStore(t, 0)
	if err := s.Put("s", "r", "texture", "n", CompiledAsset{Tier: -1}); err == nil {
		t.Error("Put with negative tier succeeded")
	}
	if err := s.Put("s", "r", "texture", "n", CompiledAsset{Tier: 256}); err == nil {
		t.Error("Put with oversized tier succeeded")
	}
}

func TestCompiledStoreDropSkin(t *testing.T) {
	s := openTestStore(t, 0)

	put := func(skinSlug, rs, name string) {
		t.Helper()
		if err := s.Put(skinSlug, rs, "texture", name, CompiledAsset{Data: []byte("x")}); err != nil {
			t.Fatal(err)
		}
	}
	put("a", "drum", "one")
	put("a", "classic", "two")
	put("b", "drum", "three")

	if err := s.DropSkin("a"); err != nil {
		t.Fatalf("DropSkin: %v", err)
	}

	if _, err := s.Get("a", "drum", "texture", "one"); !errors.Is(err, ErrNotFound) {
		t.Errorf("dropped asset still present: %v", err)
	}
	if _, err := s.Get("a", "classic", "texture", "two"); !errors.Is(err, ErrNotFound) {
		t.Errorf("dropped asset still present: %v", err)
	}
	if _, err := s.Get("b", "drum", "texture", "three"); err != nil {
		t.Errorf("unrelated skin dropped: %v", err)
	}
}
