// SPDX-License-Identifier: MIT

// Package api exposes the daemon's HTTP surface: skin registry queries,
// asset resolution through the composed chains, and operational probes.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/beatkit/skind/internal/registry"
	"github.com/beatkit/skind/internal/resolve"
	"github.com/beatkit/skind/internal/ruleset"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	xglog "github.com/beatkit/skind/internal/log"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Registry *registry.Store
	Rulesets *ruleset.Registry
	Resolver *resolve.Resolver

	// Reload re-reads configuration and rescans the skins directory.
	Reload func(ctx context.Context) error

	// Ready reports whether startup has completed.
	Ready func() bool

	Version string

	// RatePerMinute bounds general API traffic per client IP.
	RatePerMinute int
}

// Server is the HTTP server for the daemon.
type Server struct {
	deps          Deps
	logger        zerolog.Logger
	reloadLimiter *rate.Limiter
}

// NewServer wires the router and middleware stack.
func NewServer(deps Deps) *Server {
	if deps.Ready == nil {
		deps.Ready = func() bool { return true }
	}
	if deps.RatePerMinute <= 0 {
		deps.RatePerMinute = 600
	}
	return &Server{
		deps:   deps,
		logger: xglog.WithComponent("api"),
		// One reload per 10s with a small burst; reload storms repeat
		// expensive directory scans for no benefit.
		reloadLimiter: rate.NewLimiter(rate.Every(10*time.Second), 2),
	}
}

// Router builds the chi handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(RequestLogger)
	r.Use(OTelHTTP("skind"))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(RateLimit(s.deps.RatePerMinute, time.Minute))

		r.Get("/skins", s.handleListSkins)
		r.Get("/skins/{slug}", s.handleGetSkin)
		r.Get("/rulesets", s.handleListRulesets)
		r.Get("/resolve/{ruleset}/{kind}/{name}", s.handleResolve)
		r.Post("/reload", s.handleReload)
	})

	return r
}

// Serve runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str("event", "api.listening").
			Str("addr", addr).
			Msg("HTTP server started")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.logger.Info().Str("event", "api.stopped").Msg("HTTP server stopped")
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
