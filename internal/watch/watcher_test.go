// SPDX-License-Identifier: MIT

package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcherTriggersOnNewSkin(t *testing.T) {
	dir := t.TempDir()

	var calls atomic.Int32
	w, err := New(dir, 20*time.Millisecond, func(context.Context) {
		calls.Add(1)
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	t.Cleanup(func() {
		cancel()
		<-w.Done()
	})

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "minimal-dark"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "minimal-dark", "skin.yaml"), []byte("name: Minimal Dark\n"), 0o644))

	assert.Eventually(t, func() bool {
		return calls.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	skinDir := filepath.Join(dir, "burst")
	require.NoError(t, os.MkdirAll(skinDir, 0o755))

	var calls atomic.Int32
	w, err := New(dir, 100*time.Millisecond, func(context.Context) {
		calls.Add(1)
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	t.Cleanup(func() {
		cancel()
		<-w.Done()
	})

	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(skinDir, "skin.ini"), []byte("[General]\nName: Burst\n"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool {
		return calls.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)

	// The burst collapses into one or two rescans, never ten.
	time.Sleep(300 * time.Millisecond)
	assert.LessOrEqual(t, calls.Load(), int32(2))
}

func TestWatcherShutsDownCleanly(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	w, err := New(dir, 10*time.Millisecond, func(context.Context) {})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	cancel()

	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not shut down")
	}
}

func TestWatcherMissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent"), time.Millisecond, func(context.Context) {})
	assert.Error(t, err)
}
