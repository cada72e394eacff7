// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/beatkit/skind/internal/registry"
	"github.com/beatkit/skind/internal/resolve"
	"github.com/beatkit/skind/internal/ruleset"
	"github.com/beatkit/skind/internal/skin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChain struct {
	textures map[string][]byte
	config   map[string]string
}

func (c *fakeChain) Texture(name string) ([]byte, int, error) {
	if data, ok := c.textures[name]; ok {
		return data, 1, nil
	}
	return nil, 0, skin.ErrNotFound
}

func (c *fakeChain) Sample(string) ([]byte, int, error) {
	return nil, 0, skin.ErrNotFound
}

func (c *fakeChain) ConfigValue(key string) (string, int, bool) {
	v, ok := c.config[key]
	return v, 0, ok
}

type testServer struct {
	srv      *Server
	registry *registry.Store
	reloads  int
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	reg, err := registry.NewStore(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })

	require.NoError(t, reg.Upsert(context.Background(), registry.Skin{
		Slug:   "minimal-dark",
		Name:   "Minimal Dark",
		Author: "kit",
		Format: registry.FormatManifest,
		Path:   "/skins/minimal-dark",
	}))

	rulesets := ruleset.NewRegistry()
	require.NoError(t, rulesets.Register(ruleset.NewClassic("")))
	require.NoError(t, rulesets.Register(ruleset.NewDrum("")))

	resolver := resolve.New(resolve.Options{
		Cache:   resolve.NewMemoryCache(0),
		Backend: "memory",
		TTL:     time.Minute,
		Logger:  zerolog.Nop(),
	})
	resolver.Register("classic", &fakeChain{
		textures: map[string][]byte{"lane-note": []byte("png-bytes")},
		config:   map[string]string{"lane-width": "34"},
	})

	ts := &testServer{registry: reg}
	ts.srv = NewServer(Deps{
		Registry: reg,
		Rulesets: rulesets,
		Resolver: resolver,
		Reload: func(context.Context) error {
			ts.reloads++
			return nil
		},
		Version:       "test",
		RatePerMinute: 1000,
	})
	return ts
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	rr := do(t, ts.srv.Router(), http.MethodGet, "/healthz")

	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestReadyzNotReady(t *testing.T) {
	ts := newTestServer(t)
	ts.srv.deps.Ready = func() bool { return false }

	rr := do(t, ts.srv.Router(), http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestListSkins(t *testing.T) {
	ts := newTestServer(t)
	rr := do(t, ts.srv.Router(), http.MethodGet, "/api/skins")

	require.Equal(t, http.StatusOK, rr.Code)

	var skins []registry.Skin
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &skins))
	require.Len(t, skins, 1)
	assert.Equal(t, "minimal-dark", skins[0].Slug)
}

func TestGetSkin(t *testing.T) {
	ts := newTestServer(t)

	rr := do(t, ts.srv.Router(), http.MethodGet, "/api/skins/minimal-dark")
	require.Equal(t, http.StatusOK, rr.Code)

	var sk registry.Skin
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sk))
	assert.Equal(t, "Minimal Dark", sk.Name)

	rr = do(t, ts.srv.Router(), http.MethodGet, "/api/skins/absent")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListRulesets(t *testing.T) {
	ts := newTestServer(t)
	rr := do(t, ts.srv.Router(), http.MethodGet, "/api/rulesets")

	require.Equal(t, http.StatusOK, rr.Code)

	var list []rulesetInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "classic", list[0].ID)
	assert.Equal(t, "drum", list[1].ID)
}

func TestResolveTexture(t *testing.T) {
	ts := newTestServer(t)
	rr := do(t, ts.srv.Router(), http.MethodGet, "/api/resolve/classic/texture/lane-note")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "png-bytes", rr.Body.String())
	assert.Equal(t, "application/octet-stream", rr.Header().Get("Content-Type"))
	assert.Equal(t, "1", rr.Header().Get("X-Skind-Tier"))
	assert.Equal(t, "chain", rr.Header().Get("X-Skind-Origin"))
}

func TestResolveConfig(t *testing.T) {
	ts := newTestServer(t)
	rr := do(t, ts.srv.Router(), http.MethodGet, "/api/resolve/classic/config/lane-width")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "34", rr.Body.String())
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
}

func TestResolveMisses(t *testing.T) {
	ts := newTestServer(t)

	rr := do(t, ts.srv.Router(), http.MethodGet, "/api/resolve/classic/texture/absent")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, ts.srv.Router(), http.MethodGet, "/api/resolve/taiko/texture/lane-note")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, ts.srv.Router(), http.MethodGet, "/api/resolve/classic/font/lane-note")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReload(t *testing.T) {
	ts := newTestServer(t)
	rr := do(t, ts.srv.Router(), http.MethodPost, "/api/reload")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, ts.reloads)
}

func TestReloadRateLimited(t *testing.T) {
	ts := newTestServer(t)
	router := ts.srv.Router()

	var last int
	for i := 0; i < 5; i++ {
		last = do(t, router, http.MethodPost, "/api/reload").Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
	assert.Equal(t, 2, ts.reloads)
}

func TestReloadFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.srv.deps.Reload = func(context.Context) error {
		return errors.New("scan failed")
	}

	rr := do(t, ts.srv.Router(), http.MethodPost, "/api/reload")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestRequestIDHeader(t *testing.T) {
	ts := newTestServer(t)

	rr := do(t, ts.srv.Router(), http.MethodGet, "/healthz")
	assert.NotEmpty(t, rr.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "fixed-id")
	rr = httptest.NewRecorder()
	ts.srv.Router().ServeHTTP(rr, req)
	assert.Equal(t, "fixed-id", rr.Header().Get(HeaderRequestID))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	rr := do(t, ts.srv.Router(), http.MethodGet, "/metrics")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}
