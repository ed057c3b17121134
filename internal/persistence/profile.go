package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PortfolioProject is one portfolio record.
type PortfolioProject struct {
	ID          string
	Name        string
	Description string
	Role        string
	Tech        string
	URL         string
	StartedAt   *time.Time
	EndedAt     *time.Time
}

// Proficiency is one CV skill record (distinct from assistant skills).
type Proficiency struct {
	ID          string
	Name        string
	Category    string
	Proficiency int // 0-100
}

// WorkExperience is one employment record.
type WorkExperience struct {
	ID          string
	Company     string
	Title       string
	Description string
	StartedAt   time.Time
	EndedAt     *time.Time
}

// Education is one education record.
type Education struct {
	ID          string
	Institution string
	Degree      string
	Field       string
	StartedAt   time.Time
	EndedAt     *time.Time
}

func optTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func parseOptTime(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	t, err := time.Parse(timeLayout, v.String)
	if err != nil {
		return nil
	}
	return &t
}

// SavePortfolioProject inserts or updates one portfolio record.
func (s *Store) SavePortfolioProject(ctx context.Context, p *PortfolioProject) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO portfolio_projects (id, name, description, role, tech, url, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, description = excluded.description,
			role = excluded.role, tech = excluded.tech, url = excluded.url,
			started_at = excluded.started_at, ended_at = excluded.ended_at`,
		p.ID, p.Name, p.Description, p.Role, p.Tech, p.URL, optTime(p.StartedAt), optTime(p.EndedAt))
	return err
}

// ListPortfolioProjects returns all portfolio records, most recent start first.
func (s *Store) ListPortfolioProjects(ctx context.Context) ([]PortfolioProject, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, role, tech, url, started_at, ended_at
		FROM portfolio_projects ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list portfolio: %w", err)
	}
	defer rows.Close()

	var out []PortfolioProject
	for rows.Next() {
		var p PortfolioProject
		var started, ended sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Role, &p.Tech, &p.URL, &started, &ended); err != nil {
			return nil, err
		}
		p.StartedAt = parseOptTime(started)
		p.EndedAt = parseOptTime(ended)
		out = append(out, p)
	}
	return out, rows.Err()
}

// SaveProficiency inserts or updates one CV skill record.
func (s *Store) SaveProficiency(ctx context.Context, p *Proficiency) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO proficiencies (id, name, category, proficiency)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, category = excluded.category,
			proficiency = excluded.proficiency`,
		p.ID, p.Name, p.Category, p.Proficiency)
	return err
}

// ListProficiencies returns CV skills grouped by category name, strongest
// first within each category.
func (s *Store) ListProficiencies(ctx context.Context) ([]Proficiency, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, proficiency
		FROM proficiencies ORDER BY category ASC, proficiency DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list proficiencies: %w", err)
	}
	defer rows.Close()

	var out []Proficiency
	for rows.Next() {
		var p Proficiency
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Proficiency); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SaveWorkExperience inserts or updates one employment record.
func (s *Store) SaveWorkExperience(ctx context.Context, w *WorkExperience) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO work_experience (id, company, title, description, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			company = excluded.company, title = excluded.title,
			description = excluded.description,
			started_at = excluded.started_at, ended_at = excluded.ended_at`,
		w.ID, w.Company, w.Title, w.Description, w.StartedAt.UTC().Format(timeLayout), optTime(w.EndedAt))
	return err
}

// ListWorkExperience returns employment records, most recent start first.
func (s *Store) ListWorkExperience(ctx context.Context) ([]WorkExperience, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company, title, description, started_at, ended_at
		FROM work_experience ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list experience: %w", err)
	}
	defer rows.Close()

	var out []WorkExperience
	for rows.Next() {
		var w WorkExperience
		var started string
		var ended sql.NullString
		if err := rows.Scan(&w.ID, &w.Company, &w.Title, &w.Description, &started, &ended); err != nil {
			return nil, err
		}
		w.StartedAt, _ = time.Parse(timeLayout, started)
		w.EndedAt = parseOptTime(ended)
		out = append(out, w)
	}
	return out, rows.Err()
}

// SaveEducation inserts or updates one education record.
func (s *Store) SaveEducation(ctx context.Context, e *Education) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO education (id, institution, degree, field, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			institution = excluded.institution, degree = excluded.degree,
			field = excluded.field,
			started_at = excluded.started_at, ended_at = excluded.ended_at`,
		e.ID, e.Institution, e.Degree, e.Field, e.StartedAt.UTC().Format(timeLayout), optTime(e.EndedAt))
	return err
}

// ListEducation returns education records, most recent start first.
func (s *Store) ListEducation(ctx context.Context) ([]Education, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, institution, degree, field, started_at, ended_at
		FROM education ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list education: %w", err)
	}
	defer rows.Close()

	var out []Education
	for rows.Next() {
		var e Education
		var started string
		var ended sql.NullString
		if err := rows.Scan(&e.ID, &e.Institution, &e.Degree, &e.Field, &started, &ended); err != nil {
			return nil, err
		}
		e.StartedAt, _ = time.Parse(timeLayout, started)
		e.EndedAt = parseOptTime(ended)
		out = append(out, e)
	}
	return out, rows.Err()
}
