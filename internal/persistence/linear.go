package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// LinearProject is one row of the locally mirrored Linear project cache.
// Upstream deletions are soft here: the mirror only ever upserts, so items
// that disappear upstream stay in the local history buffer.
type LinearProject struct {
	ID                string
	Name              string
	Description       string
	State             string
	Progress          float64
	UpstreamUpdatedAt *time.Time
	SyncedAt          time.Time
}

// LinearIssue is one row of the mirrored issue cache.
type LinearIssue struct {
	ID                string
	Identifier        string
	Title             string
	Description       string
	State             string
	Priority          int
	ProjectID         string
	AssigneeID        string
	UpstreamUpdatedAt *time.Time
	SyncedAt          time.Time
}

// UpsertLinearProject writes one mirrored project row.
func (s *Store) UpsertLinearProject(ctx context.Context, p *LinearProject) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO linear_projects (id, name, description, state, progress, upstream_updated_at, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, description = excluded.description,
			state = excluded.state, progress = excluded.progress,
			upstream_updated_at = excluded.upstream_updated_at,
			synced_at = datetime('now')`,
		p.ID, p.Name, p.Description, p.State, p.Progress, optTime(p.UpstreamUpdatedAt))
	return err
}

// UpsertLinearIssue writes one mirrored issue row.
func (s *Store) UpsertLinearIssue(ctx context.Context, i *LinearIssue) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO linear_issues (id, identifier, title, description, state, priority, project_id, assignee_id, upstream_updated_at, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			identifier = excluded.identifier, title = excluded.title,
			description = excluded.description, state = excluded.state,
			priority = excluded.priority, project_id = excluded.project_id,
			assignee_id = excluded.assignee_id,
			upstream_updated_at = excluded.upstream_updated_at,
			synced_at = datetime('now')`,
		i.ID, i.Identifier, i.Title, i.Description, i.State, i.Priority,
		i.ProjectID, i.AssigneeID, optTime(i.UpstreamUpdatedAt))
	return err
}

// stateFilter builds "state NOT IN (...)" with lowercase matching.
func stateFilter(column string, excluded []string) (string, []any) {
	if len(excluded) == 0 {
		return "1=1", nil
	}
	placeholders := make([]string, len(excluded))
	args := make([]any, len(excluded))
	for i, st := range excluded {
		placeholders[i] = "?"
		args[i] = strings.ToLower(strings.TrimSpace(st))
	}
	return fmt.Sprintf("LOWER(%s) NOT IN (%s)", column, strings.Join(placeholders, ",")), args
}

// ListLinearProjects returns mirrored projects whose state is not excluded.
func (s *Store) ListLinearProjects(ctx context.Context, excludedStates []string) ([]LinearProject, error) {
	cond, args := stateFilter("state", excludedStates)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, state, progress, upstream_updated_at, synced_at
		FROM linear_projects WHERE `+cond+` ORDER BY name ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list linear projects: %w", err)
	}
	defer rows.Close()

	var out []LinearProject
	for rows.Next() {
		var p LinearProject
		var upstream sql.NullString
		var synced string
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.State, &p.Progress, &upstream, &synced); err != nil {
			return nil, err
		}
		p.UpstreamUpdatedAt = parseOptTime(upstream)
		p.SyncedAt, _ = time.Parse(timeLayout, synced)
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListLinearIssues returns mirrored issues, excluding the given states; when
// includeCompleted is false the completedStates are excluded as well.
func (s *Store) ListLinearIssues(ctx context.Context, excludedStates, completedStates []string, includeCompleted bool) ([]LinearIssue, error) {
	excluded := append([]string{}, excludedStates...)
	if !includeCompleted {
		excluded = append(excluded, completedStates...)
	}
	cond, args := stateFilter("state", excluded)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, identifier, title, description, state, priority, project_id, assignee_id, upstream_updated_at, synced_at
		FROM linear_issues WHERE `+cond+` ORDER BY priority DESC, identifier ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list linear issues: %w", err)
	}
	defer rows.Close()

	var out []LinearIssue
	for rows.Next() {
		var i LinearIssue
		var upstream sql.NullString
		var synced string
		if err := rows.Scan(&i.ID, &i.Identifier, &i.Title, &i.Description, &i.State, &i.Priority, &i.ProjectID, &i.AssigneeID, &upstream, &synced); err != nil {
			return nil, err
		}
		i.UpstreamUpdatedAt = parseOptTime(upstream)
		i.SyncedAt, _ = time.Parse(timeLayout, synced)
		out = append(out, i)
	}
	return out, rows.Err()
}

// GetLinearIssue fetches one mirrored issue by id or identifier.
func (s *Store) GetLinearIssue(ctx context.Context, idOrIdentifier string) (LinearIssue, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, identifier, title, description, state, priority, project_id, assignee_id, upstream_updated_at, synced_at
		FROM linear_issues WHERE id = ? OR identifier = ?`, idOrIdentifier, idOrIdentifier)
	var i LinearIssue
	var upstream sql.NullString
	var synced string
	err := row.Scan(&i.ID, &i.Identifier, &i.Title, &i.Description, &i.State, &i.Priority, &i.ProjectID, &i.AssigneeID, &upstream, &synced)
	if err == sql.ErrNoRows {
		return LinearIssue{}, ErrNotFound
	}
	if err != nil {
		return LinearIssue{}, err
	}
	i.UpstreamUpdatedAt = parseOptTime(upstream)
	i.SyncedAt, _ = time.Parse(timeLayout, synced)
	return i, nil
}
