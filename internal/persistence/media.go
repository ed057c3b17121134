package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Media is one stored media reference (image, clip, attachment).
type Media struct {
	ID        string
	Kind      string
	Title     string
	Location  string // file path or URL
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SaveMedia inserts or updates a media record. A blank ID allocates one.
func (s *Store) SaveMedia(ctx context.Context, m *Media) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO media (id, kind, title, location, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'), datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind, title = excluded.title,
			location = excluded.location, note = excluded.note,
			updated_at = datetime('now')`,
		m.ID, m.Kind, m.Title, m.Location, m.Note)
	return err
}

// GetMedia fetches one media record.
func (s *Store) GetMedia(ctx context.Context, id string) (Media, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, title, location, note, created_at, updated_at
		FROM media WHERE id = ?`, id)
	var m Media
	var created, updated string
	err := row.Scan(&m.ID, &m.Kind, &m.Title, &m.Location, &m.Note, &created, &updated)
	if err == sql.ErrNoRows {
		return Media{}, ErrNotFound
	}
	if err != nil {
		return Media{}, err
	}
	m.CreatedAt, _ = time.Parse(timeLayout, created)
	m.UpdatedAt, _ = time.Parse(timeLayout, updated)
	return m, nil
}

// ListMedia returns all media records, newest first.
func (s *Store) ListMedia(ctx context.Context) ([]Media, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, title, location, note, created_at, updated_at
		FROM media ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	var out []Media
	for rows.Next() {
		var m Media
		var created, updated string
		if err := rows.Scan(&m.ID, &m.Kind, &m.Title, &m.Location, &m.Note, &created, &updated); err != nil {
			return nil, err
		}
		m.CreatedAt, _ = time.Parse(timeLayout, created)
		m.UpdatedAt, _ = time.Parse(timeLayout, updated)
		out = append(out, m)
	}
	return out, rows.Err()
}
