// SPDX-License-Identifier: MIT

// Package registry persists metadata about installed skins in SQLite.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go, no CGO)
)

// ErrNotFound is returned when a skin slug is not registered.
var ErrNotFound = errors.New("registry: skin not found")

// Format identifies the on-disk format of an installed skin.
type Format string

const (
	FormatManifest Format = "manifest"
	FormatLegacy   Format = "legacy"
)

// Skin is one installed skin.
type Skin struct {
	Slug       string    `json:"slug"`
	Name       string    `json:"name"`
	Author     string    `json:"author,omitempty"`
	Version    string    `json:"version,omitempty"`
	Format     Format    `json:"format"`
	Path       string    `json:"path"`
	AddedAt    time.Time `json:"added_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	Missing    bool      `json:"missing"`
}

// Store provides SQLite persistence for the skin registry.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the registry database and runs migrations.
// WAL mode and a busy timeout suit the read-heavy workload.
func NewStore(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open registry database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping registry database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate registry: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS skins (
		slug TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		author TEXT NOT NULL DEFAULT '',
		version TEXT NOT NULL DEFAULT '',
		format TEXT NOT NULL CHECK(format IN ('manifest', 'legacy')),
		path TEXT NOT NULL,
		added_at TEXT NOT NULL,
		last_seen_at TEXT NOT NULL,
		missing INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_skins_format ON skins(format);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Upsert inserts or refreshes a skin row. AddedAt is preserved on
// conflict; LastSeenAt always advances and the missing flag clears.
func (s *Store) Upsert(ctx context.Context, sk Skin) error {
	now := time.Now().UTC()
	if sk.AddedAt.IsZero() {
		sk.AddedAt = now
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO skins (slug, name, author, version, format, path, added_at, last_seen_at, missing)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(slug) DO UPDATE SET
			name = excluded.name,
			author = excluded.author,
			version = excluded.version,
			format = excluded.format,
			path = excluded.path,
			last_seen_at = excluded.last_seen_at,
			missing = 0`,
		sk.Slug, sk.Name, sk.Author, sk.Version, string(sk.Format), sk.Path,
		sk.AddedAt.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert skin %q: %w", sk.Slug, err)
	}
	return nil
}

// Get returns one skin by slug.
func (s *Store) Get(ctx context.Context, slug string) (Skin, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT slug, name, author, version, format, path, added_at, last_seen_at, missing
		FROM skins WHERE slug = ?`, slug)
	sk, err := scanSkin(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Skin{}, ErrNotFound
	}
	if err != nil {
		return Skin{}, fmt.Errorf("get skin %q: %w", slug, err)
	}
	return sk, nil
}

// List returns all registered skins ordered by name.
func (s *Store) List(ctx context.Context) ([]Skin, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT slug, name, author, version, format, path, added_at, last_seen_at, missing
		FROM skins ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("list skins: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Skin
	for rows.Next() {
		sk, err := scanSkin(rows)
		if err != nil {
			return nil, fmt.Errorf("scan skin: %w", err)
		}
		out = append(out, sk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate skins: %w", err)
	}
	return out, nil
}

// MarkMissingExcept flags every skin whose slug is not in keep as
// missing. Called after a rescan with the set of slugs still on disk.
func (s *Store) MarkMissingExcept(ctx context.Context, keep map[string]struct{}) error {
	rows, err := s.db.QueryContext(ctx, `SELECT slug FROM skins WHERE missing = 0`)
	if err != nil {
		return fmt.Errorf("list present skins: %w", err)
	}
	var gone []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan slug: %w", err)
		}
		if _, ok := keep[slug]; !ok {
			gone = append(gone, slug)
		}
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("close rows: %w", err)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate slugs: %w", err)
	}

	for _, slug := range gone {
		if _, err := s.db.ExecContext(ctx, `UPDATE skins SET missing = 1 WHERE slug = ?`, slug); err != nil {
			return fmt.Errorf("mark %q missing: %w", slug, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSkin(row rowScanner) (Skin, error) {
	var sk Skin
	var format, addedAt, lastSeenAt string
	var missing int
	if err := row.Scan(&sk.Slug, &sk.Name, &sk.Author, &sk.Version, &format, &sk.Path, &addedAt, &lastSeenAt, &missing); err != nil {
		return Skin{}, err
	}
	sk.Format = Format(format)
	sk.Missing = missing != 0
	var err error
	if sk.AddedAt, err = time.Parse(time.RFC3339Nano, addedAt); err != nil {
		return Skin{}, fmt.Errorf("parse added_at: %w", err)
	}
	if sk.LastSeenAt, err = time.Parse(time.RFC3339Nano, lastSeenAt); err != nil {
		return Skin{}, fmt.Errorf("parse last_seen_at: %w", err)
	}
	return sk, nil
}
