// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/beatkit/skind/internal/registry"
	"github.com/beatkit/skind/internal/resolve"
	"github.com/beatkit/skind/internal/skin"
	"github.com/go-chi/chi/v5"
)

// rulesetInfo is one entry of the rulesets listing.
type rulesetInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.deps.Version,
	})
}

func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	if !s.deps.Ready() {
		writeServiceUnavailable(w, "starting")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleListSkins(w http.ResponseWriter, r *http.Request) {
	skins, err := s.deps.Registry.List(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("list skins failed")
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, skins)
}

func (s *Server) handleGetSkin(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	sk, err := s.deps.Registry.Get(r.Context(), slug)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			writeNotFound(w)
			return
		}
		s.logger.Error().Err(err).Str("skin", slug).Msg("get skin failed")
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, sk)
}

func (s *Server) handleListRulesets(w http.ResponseWriter, _ *http.Request) {
	list := s.deps.Rulesets.List()
	out := make([]rulesetInfo, 0, len(list))
	for _, rs := range list {
		out = append(out, rulesetInfo{ID: rs.ID(), Name: rs.Name()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	rulesetID := chi.URLParam(r, "ruleset")
	kind := skin.Kind(chi.URLParam(r, "kind"))
	name := chi.URLParam(r, "name")

	res, err := s.deps.Resolver.Resolve(r.Context(), rulesetID, kind, name)
	switch {
	case err == nil:
	case errors.Is(err, skin.ErrNotFound), errors.Is(err, resolve.ErrUnknownRuleset):
		writeNotFound(w)
		return
	case !kind.Valid():
		writeError(w, err)
		return
	default:
		s.logger.Error().Err(err).
			Str("ruleset", rulesetID).
			Str("asset", name).
			Msg("resolve failed")
		writeInternalError(w)
		return
	}

	w.Header().Set("X-Skind-Tier", strconv.Itoa(res.Tier))
	w.Header().Set("X-Skind-Origin", res.Origin)

	if kind == skin.KindConfig {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if !s.reloadLimiter.Allow() {
		w.Header().Set("Retry-After", "10")
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate_limit_exceeded"})
		return
	}

	if s.deps.Reload == nil {
		writeServiceUnavailable(w, "reload unavailable")
		return
	}

	if err := s.deps.Reload(r.Context()); err != nil {
		s.logger.Error().Err(err).Str("event", "api.reload_failed").Msg("reload failed")
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}
