// SPDX-License-Identifier: MIT

// Package snapshot exports the composed chains to disk so client-side
// debugging tools can inspect what the daemon is serving.
package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	xglog "github.com/beatkit/skind/internal/log"
	"github.com/beatkit/skind/internal/skin"
	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
)

// SourceEntry describes one source in a composed chain, in lookup order.
type SourceEntry struct {
	Tier   int    `json:"tier"`
	Slug   string `json:"slug"`
	Name   string `json:"name"`
	Legacy bool   `json:"legacy,omitempty"`
}

// ChainSnapshot is the composed chain of one ruleset.
type ChainSnapshot struct {
	Ruleset string        `json:"ruleset"`
	Sources []SourceEntry `json:"sources"`
}

// File is the on-disk document.
type File struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Chains      []ChainSnapshot `json:"chains"`
}

// Writer writes chain snapshots atomically. Concurrent rebuild
// notifications serialize in the caller; Writer itself is stateless.
type Writer struct {
	path   string
	logger zerolog.Logger
}

// NewWriter creates a writer targeting path (usually dataDir/chain.json).
func NewWriter(path string) *Writer {
	return &Writer{
		path:   path,
		logger: xglog.WithComponent("snapshot"),
	}
}

// Capture builds a ChainSnapshot from a composed chain.
func Capture(rulesetID string, chain *skin.Chain) ChainSnapshot {
	snap := ChainSnapshot{Ruleset: rulesetID}
	for tier, src := range chain.Sources() {
		info := src.Info()
		snap.Sources = append(snap.Sources, SourceEntry{
			Tier:   tier,
			Slug:   info.Slug,
			Name:   info.Name,
			Legacy: info.Legacy,
		})
	}
	return snap
}

// Write replaces the snapshot file with the given chains. The write is
// atomic so readers never observe a partial document.
func (w *Writer) Write(chains []ChainSnapshot) error {
	doc := File{
		GeneratedAt: time.Now().UTC(),
		Chains:      chains,
	}

	pending, err := renameio.NewPendingFile(w.path)
	if err != nil {
		return fmt.Errorf("create pending snapshot: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			w.logger.Debug().Err(err).Msg("cleanup pending snapshot")
		}
	}()

	enc := json.NewEncoder(pending)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}

	w.logger.Debug().
		Str("event", "snapshot.written").
		Str(xglog.FieldPath, w.path).
		Int("chains", len(chains)).
		Msg("chain snapshot written")
	return nil
}
