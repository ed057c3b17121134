package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SliteNote is one row of the mirrored Slite note cache.
type SliteNote struct {
	ID                string
	Title             string
	Content           string
	URL               string
	UpstreamUpdatedAt *time.Time
	SyncedAt          time.Time
}

// UpsertSliteNote writes one mirrored note row.
func (s *Store) UpsertSliteNote(ctx context.Context, n *SliteNote) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO slite_notes (id, title, content, url, upstream_updated_at, synced_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title, content = excluded.content,
			url = excluded.url,
			upstream_updated_at = excluded.upstream_updated_at,
			synced_at = datetime('now')`,
		n.ID, n.Title, n.Content, n.URL, optTime(n.UpstreamUpdatedAt))
	return err
}

// ListSliteNotes returns every mirrored note, most recently updated first.
func (s *Store) ListSliteNotes(ctx context.Context) ([]SliteNote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, url, upstream_updated_at, synced_at
		FROM slite_notes ORDER BY upstream_updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list slite notes: %w", err)
	}
	defer rows.Close()

	var out []SliteNote
	for rows.Next() {
		n, err := scanSliteNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// SearchSliteNotes matches notes whose title or content contain the query.
func (s *Store) SearchSliteNotes(ctx context.Context, query string) ([]SliteNote, error) {
	like := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, url, upstream_updated_at, synced_at
		FROM slite_notes WHERE title LIKE ? OR content LIKE ?
		ORDER BY upstream_updated_at DESC`, like, like)
	if err != nil {
		return nil, fmt.Errorf("search slite notes: %w", err)
	}
	defer rows.Close()

	var out []SliteNote
	for rows.Next() {
		n, err := scanSliteNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// GetSliteNote fetches one mirrored note by id.
func (s *Store) GetSliteNote(ctx context.Context, id string) (SliteNote, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, content, url, upstream_updated_at, synced_at
		FROM slite_notes WHERE id = ?`, id)
	var n SliteNote
	var upstream sql.NullString
	var synced string
	err := row.Scan(&n.ID, &n.Title, &n.Content, &n.URL, &upstream, &synced)
	if err == sql.ErrNoRows {
		return SliteNote{}, ErrNotFound
	}
	if err != nil {
		return SliteNote{}, err
	}
	n.UpstreamUpdatedAt = parseOptTime(upstream)
	n.SyncedAt, _ = time.Parse(timeLayout, synced)
	return n, nil
}

func scanSliteNote(rows *sql.Rows) (SliteNote, error) {
	var n SliteNote
	var upstream sql.NullString
	var synced string
	if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.URL, &upstream, &synced); err != nil {
		return SliteNote{}, err
	}
	n.UpstreamUpdatedAt = parseOptTime(upstream)
	n.SyncedAt, _ = time.Parse(timeLayout, synced)
	return n, nil
}
