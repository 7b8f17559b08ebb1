// Package cache keeps the last successful dashboard snapshot in a local
// sqlite file so the dashboard can still render (flagged stale) when the
// lesion list is unreachable. Derived fields stored here are a cache of a
// cache, never authoritative.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	domain "github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/lesions"
)

const schema = `
CREATE TABLE IF NOT EXISTS lesion_summaries (
	id               INTEGER PRIMARY KEY,
	nickname         TEXT NOT NULL,
	body_part        TEXT NOT NULL,
	created_at       TEXT NOT NULL,
	scan_count       INTEGER NOT NULL,
	last_seen_at     TEXT,
	latest_image_url TEXT,
	fetched_at       TEXT NOT NULL
);`

type Cache struct {
	db *sql.DB
}

// Open creates or opens the snapshot database at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dashboard cache: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open dashboard cache: %w", err)
	}
	c := &Cache{db: db}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init dashboard cache: %w", err)
	}
	return c, nil
}

// NewWithDB wraps an existing handle. Used by tests.
func NewWithDB(db *sql.DB) *Cache { return &Cache{db: db} }

func (c *Cache) Close() error { return c.db.Close() }

// PutSummaries replaces the snapshot wholesale. The snapshot is only ever
// written after a fully settled dashboard load.
func (c *Cache) PutSummaries(ctx context.Context, ls []domain.Lesion, fetchedAt time.Time) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM lesion_summaries"); err != nil {
		return err
	}
	for _, l := range ls {
		var lastSeen any
		if l.LastSeenAt != nil {
			lastSeen = l.LastSeenAt.Format(time.RFC3339Nano)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO lesion_summaries (id, nickname, body_part, created_at, scan_count, last_seen_at, latest_image_url, fetched_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			int64(l.ID), l.Nickname, l.BodyPart, l.CreatedAt.Format(time.RFC3339Nano),
			l.ScanCount, lastSeen, l.LatestImage, fetchedAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Summaries returns the stored snapshot and when it was fetched.
func (c *Cache) Summaries(ctx context.Context) ([]domain.Lesion, time.Time, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, nickname, body_part, created_at, scan_count, last_seen_at, latest_image_url, fetched_at
		 FROM lesion_summaries ORDER BY id DESC`)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer rows.Close()

	var (
		out       []domain.Lesion
		fetchedAt time.Time
	)
	for rows.Next() {
		var (
			l          domain.Lesion
			id         int64
			createdAt  string
			lastSeenAt sql.NullString
			fetched    string
		)
		if err := rows.Scan(&id, &l.Nickname, &l.BodyPart, &createdAt, &l.ScanCount, &lastSeenAt, &l.LatestImage, &fetched); err != nil {
			return nil, time.Time{}, err
		}
		l.ID = domain.ID(id)
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			l.CreatedAt = t
		}
		if lastSeenAt.Valid {
			if t, err := time.Parse(time.RFC3339Nano, lastSeenAt.String); err == nil {
				l.LastSeenAt = &t
			}
		}
		if t, err := time.Parse(time.RFC3339Nano, fetched); err == nil {
			fetchedAt = t
		}
		out = append(out, l)
	}
	return out, fetchedAt, rows.Err()
}
