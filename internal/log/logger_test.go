// SPDX-License-Identifier: MIT

package log

import (
	"bytes"
	"encoding/json"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a concurrency-safe sink; Configure is once-per-process,
// so every test in this package shares it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) lines() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Split(bytes.TrimSpace(b.buf.Bytes()), []byte("\n"))
}

var logBuf syncBuffer

func TestMain(m *testing.M) {
	Configure(Config{Output: &logBuf, Service: "skind-test", Version: "v0.0.0"})
	os.Exit(m.Run())
}

func lastEntry(t *testing.T) map[string]any {
	t.Helper()

	lines := logBuf.lines()
	require.NotEmpty(t, lines)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestConfigureOnce(t *testing.T) {
	// A second Configure must not reconfigure the sink.
	var other bytes.Buffer
	Configure(Config{Output: &other, Service: "changed"})

	logger := Base()
	logger.Info().Msg("configured")

	assert.Zero(t, other.Len(), "second Configure must be a no-op")

	entry := lastEntry(t)
	assert.Equal(t, "skind-test", entry["service"])
	assert.Equal(t, "v0.0.0", entry["version"])
}

func TestWithComponent(t *testing.T) {
	logger := WithComponent("chain")
	logger.Info().Msg("rebuilt")

	entry := lastEntry(t)
	assert.Equal(t, "chain", entry["component"])
	assert.Equal(t, "rebuilt", entry["message"])
}
