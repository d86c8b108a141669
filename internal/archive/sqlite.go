// Package archive persists normalized posts and drop-audit rows in a local
// sqlite file. The archive is a convenience for incremental workflows and
// audit; every derived entity remains reproducible from raw input without it.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"protestlens/internal/model"
)

// Store wraps the sqlite archive. The caller should Close it when done.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS posts (
	id                  TEXT PRIMARY KEY,
	platform            TEXT NOT NULL,
	author              TEXT NOT NULL,
	author_display_name TEXT NOT NULL DEFAULT '',
	ts                  INTEGER NOT NULL,
	text                TEXT NOT NULL,
	hashtags            TEXT NOT NULL DEFAULT '',
	mentions            TEXT NOT NULL DEFAULT '',
	reply_to            TEXT NOT NULL DEFAULT '',
	reshare_of          TEXT NOT NULL DEFAULT '',
	likes               INTEGER,
	shares              INTEGER,
	comments            INTEGER,
	views               INTEGER,
	source_id           TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_posts_ts ON posts (ts);

CREATE TABLE IF NOT EXISTS dropped_records (
	source_id   TEXT NOT NULL DEFAULT '',
	platform    TEXT NOT NULL,
	field       TEXT NOT NULL,
	reason      TEXT NOT NULL,
	raw         BLOB,
	recorded_at TEXT NOT NULL
);
`

// Open opens (creating if needed) the archive at path and ensures the
// schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init archive schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SavePosts upserts posts keyed by their deterministic IDs, so re-ingesting
// the same raw input leaves the archive unchanged.
func (s *Store) SavePosts(ctx context.Context, posts []model.Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO posts
		(id, platform, author, author_display_name, ts, text, hashtags, mentions, reply_to, reshare_of, likes, shares, comments, views, source_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range posts {
		_, err := stmt.ExecContext(ctx,
			p.ID,
			string(p.Platform),
			p.Author,
			p.AuthorDisplayName,
			p.Timestamp.UTC().UnixNano(),
			p.Text,
			strings.Join(p.Hashtags, " "),
			strings.Join(p.Mentions, " "),
			p.ReplyToHandle,
			p.ReshareOfHandle,
			nullCount(p.Engagement.Likes),
			nullCount(p.Engagement.Shares),
			nullCount(p.Engagement.Comments),
			nullCount(p.Engagement.Views),
			p.SourceID,
		)
		if err != nil {
			return fmt.Errorf("insert post %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// RecordDrop keeps the raw rejected record for audit.
func (s *Store) RecordDrop(ctx context.Context, platform model.Platform, sourceID, field, reason string, raw []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dropped_records (source_id, platform, field, reason, raw, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sourceID, string(platform), field, reason, raw, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record drop: %w", err)
	}
	return nil
}

// LoadPosts returns every archived post ordered by timestamp then ID.
// Timestamps are stored as epoch nanoseconds, so the order is chronological
// down to subsecond precision.
func (s *Store) LoadPosts(ctx context.Context) ([]model.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, platform, author, author_display_name, ts, text, hashtags, mentions, reply_to, reshare_of, likes, shares, comments, views, source_id
		FROM posts
		ORDER BY ts, id`)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var (
			p                             model.Post
			platform, tags, mentions      string
			ts                            int64
			likes, shares, comment, views sql.NullInt64
		)
		err := rows.Scan(&p.ID, &platform, &p.Author, &p.AuthorDisplayName, &ts, &p.Text,
			&tags, &mentions, &p.ReplyToHandle, &p.ReshareOfHandle,
			&likes, &shares, &comment, &views, &p.SourceID)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.Platform = model.Platform(platform)
		p.Timestamp = time.Unix(0, ts).UTC()
		p.Hashtags = splitList(tags)
		p.Mentions = splitList(mentions)
		p.Engagement = model.Engagement{
			Likes:    fromNull(likes),
			Shares:   fromNull(shares),
			Comments: fromNull(comment),
			Views:    fromNull(views),
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

// CountPosts returns the number of archived posts.
func (s *Store) CountPosts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

func nullCount(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func fromNull(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}
