package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JournalEntry is one commit-level journal record.
type JournalEntry struct {
	ID         string
	Repo       string
	CommitHash string
	Title      string
	Content    string
	Tags       string
	EntryDate  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SaveJournalEntry inserts or updates an entry. A blank ID allocates one.
func (s *Store) SaveJournalEntry(ctx context.Context, e *JournalEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.EntryDate.IsZero() {
		e.EntryDate = time.Now().UTC()
	}
	stmt := `
		INSERT INTO journal_entries (id, repo, commit_hash, title, content, tags, entry_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, datetime('now'), datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			repo = excluded.repo,
			commit_hash = excluded.commit_hash,
			title = excluded.title,
			content = excluded.content,
			tags = excluded.tags,
			entry_date = excluded.entry_date,
			updated_at = datetime('now')
	`
	_, err := s.db.ExecContext(ctx, stmt,
		e.ID, e.Repo, e.CommitHash, e.Title, e.Content, e.Tags,
		e.EntryDate.UTC().Format(timeLayout))
	return err
}

// ListJournalEntries returns every entry, newest entry date first. There is
// deliberately no count ceiling here: journal rendering is historically
// complete, unlike the capped listings used elsewhere.
func (s *Store) ListJournalEntries(ctx context.Context) ([]JournalEntry, error) {
	return s.queryJournal(ctx, `
		SELECT id, repo, commit_hash, title, content, tags, entry_date, created_at, updated_at
		FROM journal_entries ORDER BY entry_date DESC`)
}

// ListJournalEntriesByRepo returns entries for one repo, newest first.
func (s *Store) ListJournalEntriesByRepo(ctx context.Context, repo string) ([]JournalEntry, error) {
	return s.queryJournal(ctx, `
		SELECT id, repo, commit_hash, title, content, tags, entry_date, created_at, updated_at
		FROM journal_entries WHERE repo = ? ORDER BY entry_date DESC`, repo)
}

// SearchJournal matches entries whose title, content or tags contain the query.
func (s *Store) SearchJournal(ctx context.Context, query string) ([]JournalEntry, error) {
	like := "%" + query + "%"
	return s.queryJournal(ctx, `
		SELECT id, repo, commit_hash, title, content, tags, entry_date, created_at, updated_at
		FROM journal_entries
		WHERE title LIKE ? OR content LIKE ? OR tags LIKE ?
		ORDER BY entry_date DESC`, like, like, like)
}

// DeleteJournalEntry removes one entry.
func (s *Store) DeleteJournalEntry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) queryJournal(ctx context.Context, stmt string, args ...any) ([]JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var out []JournalEntry
	for rows.Next() {
		var e JournalEntry
		var entryStr, createdStr, updatedStr string
		if err := rows.Scan(&e.ID, &e.Repo, &e.CommitHash, &e.Title, &e.Content, &e.Tags, &entryStr, &createdStr, &updatedStr); err != nil {
			return nil, err
		}
		e.EntryDate, _ = time.Parse(timeLayout, entryStr)
		e.CreatedAt, _ = time.Parse(timeLayout, createdStr)
		e.UpdatedAt, _ = time.Parse(timeLayout, updatedStr)
		out = append(out, e)
	}
	return out, rows.Err()
}
