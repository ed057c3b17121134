package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const timeLayout = "2006-01-02 15:04:05"

// Well-known document types.
const (
	DocTypeWriting        = "writing"
	DocTypeSkill          = "skill"
	DocTypeProjectSummary = "project-summary"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Document is a stored markdown document. Skill definitions are documents
// of type "skill" whose metadata carries the skill config payload.
type Document struct {
	ID          string
	DocType     string
	Title       string
	Description string
	Content     string
	Metadata    string // raw JSON
	WrittenAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SaveDocument inserts or updates a document. A blank ID allocates one.
func (s *Store) SaveDocument(ctx context.Context, d *Document) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Metadata == "" {
		d.Metadata = "{}"
	}
	var written any
	if d.WrittenAt != nil {
		written = d.WrittenAt.UTC().Format(timeLayout)
	}
	stmt := `
		INSERT INTO documents (id, doc_type, title, description, content, metadata, written_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, datetime('now'), datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			doc_type = excluded.doc_type,
			title = excluded.title,
			description = excluded.description,
			content = excluded.content,
			metadata = excluded.metadata,
			written_at = excluded.written_at,
			updated_at = datetime('now')
	`
	_, err := s.db.ExecContext(ctx, stmt, d.ID, d.DocType, d.Title, d.Description, d.Content, d.Metadata, written)
	return err
}

// GetDocument fetches one document by id.
func (s *Store) GetDocument(ctx context.Context, id string) (Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, doc_type, title, description, content, metadata, written_at, created_at, updated_at
		FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

// ListDocumentsByType returns all documents of the given type, newest first.
func (s *Store) ListDocumentsByType(ctx context.Context, docType string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, doc_type, title, description, content, metadata, written_at, created_at, updated_at
		FROM documents WHERE doc_type = ? ORDER BY updated_at DESC`, docType)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		d, err := scanDocumentRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteDocument removes a document by id.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocumentFrom(sc rowScanner) (Document, error) {
	var d Document
	var written sql.NullString
	var createdStr, updatedStr string
	err := sc.Scan(&d.ID, &d.DocType, &d.Title, &d.Description, &d.Content, &d.Metadata, &written, &createdStr, &updatedStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	if written.Valid {
		if t, perr := time.Parse(timeLayout, written.String); perr == nil {
			d.WrittenAt = &t
		}
	}
	d.CreatedAt, _ = time.Parse(timeLayout, createdStr)
	d.UpdatedAt, _ = time.Parse(timeLayout, updatedStr)
	return d, nil
}

func scanDocument(row *sql.Row) (Document, error)      { return scanDocumentFrom(row) }
func scanDocumentRows(rows *sql.Rows) (Document, error) { return scanDocumentFrom(rows) }
