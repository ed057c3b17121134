// Package repository renders the stored knowledge base into the repository
// section of the system prompt, one markdown block per enabled category.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/GuiArSt/kronus/internal/persistence"
	"github.com/GuiArSt/kronus/internal/skillset"
	"github.com/GuiArSt/kronus/internal/tokenutil"
)

// Source yields the knowledge categories. *persistence.Store satisfies it;
// tests substitute a fake to exercise per-category failure isolation.
type Source interface {
	ListDocumentsByType(ctx context.Context, docType string) ([]persistence.Document, error)
	ListPortfolioProjects(ctx context.Context) ([]persistence.PortfolioProject, error)
	ListProficiencies(ctx context.Context) ([]persistence.Proficiency, error)
	ListWorkExperience(ctx context.Context) ([]persistence.WorkExperience, error)
	ListEducation(ctx context.Context) ([]persistence.Education, error)
	ListJournalEntries(ctx context.Context) ([]persistence.JournalEntry, error)
	ListLinearProjects(ctx context.Context, excludedStates []string) ([]persistence.LinearProject, error)
	ListLinearIssues(ctx context.Context, excludedStates, completedStates []string, includeCompleted bool) ([]persistence.LinearIssue, error)
	ListSliteNotes(ctx context.Context) ([]persistence.SliteNote, error)
}

// StatePolicy carries the Linear state filters from configuration.
// ExcludedStates are never shown; CompletedStates are hidden unless the
// soul config asks for completed work.
type StatePolicy struct {
	ExcludedStates  []string
	CompletedStates []string
}

// Section is the rendered repository block plus its size estimate.
// TokenEstimate is informational; nothing is truncated against it.
type Section struct {
	Content       string
	TokenEstimate int
}

const (
	sectionDivider = "\n\n---\n\n"
	preamble       = "# Knowledge Repository\n\nThe following sections are loaded from the owner's knowledge base. Treat them as ground truth about the owner's work and history."
)

// Loader assembles the repository section for one chat turn.
type Loader struct {
	source Source
	policy StatePolicy
	logger *slog.Logger
}

func NewLoader(source Source, policy StatePolicy, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{source: source, policy: policy, logger: logger}
}

// Load renders every category the soul config enables. A category that
// fails to load is logged and omitted; the rest of the section survives.
// Failed returns the names of omitted categories.
func (l *Loader) Load(ctx context.Context, cfg skillset.SoulConfig) (Section, []string) {
	type category struct {
		name    string
		enabled bool
		render  func(context.Context) (string, error)
	}
	categories := []category{
		{"writings", cfg.Writings, l.renderWritings},
		{"portfolio_projects", cfg.PortfolioProjects, l.renderPortfolio},
		{"skills", cfg.Skills, l.renderProficiencies},
		{"work_experience", cfg.WorkExperience, l.renderExperience},
		{"education", cfg.Education, l.renderEducation},
		{"journal_entries", cfg.JournalEntries, l.renderJournal},
		{"linear_projects", cfg.LinearProjects, l.renderLinearProjects},
		{"linear_issues", cfg.LinearIssues, func(ctx context.Context) (string, error) {
			return l.renderLinearIssues(ctx, cfg.LinearIncludeCompleted)
		}},
		{"slite_notes", cfg.SliteNotes, l.renderSliteNotes},
	}

	var blocks []string
	var failed []string
	for _, cat := range categories {
		if !cat.enabled {
			continue
		}
		block, err := cat.render(ctx)
		if err != nil {
			failed = append(failed, cat.name)
			l.logger.Warn("repository category unavailable",
				"category", cat.name, "error", err.Error())
			continue
		}
		if block == "" {
			continue
		}
		blocks = append(blocks, block)
	}
	if len(blocks) == 0 {
		return Section{}, failed
	}
	content := preamble + sectionDivider + strings.Join(blocks, sectionDivider)
	return Section{Content: content, TokenEstimate: tokenutil.EstimateTokens(content)}, failed
}

func (l *Loader) renderWritings(ctx context.Context) (string, error) {
	docs, err := l.source.ListDocumentsByType(ctx, persistence.DocTypeWriting)
	if err != nil {
		return "", fmt.Errorf("list writings: %w", err)
	}
	if len(docs) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString("## Writings\n")
	for _, d := range docs {
		fmt.Fprintf(&b, "\n### %s\n", d.Title)
		if d.WrittenAt != nil {
			fmt.Fprintf(&b, "*Written %s*\n", d.WrittenAt.Format("2006-01-02"))
		}
		if !d.CreatedAt.IsZero() {
			fmt.Fprintf(&b, "*Added %s*\n", d.CreatedAt.Format("2006-01-02"))
		}
		if d.UpdatedAt.After(d.CreatedAt) {
			fmt.Fprintf(&b, "*Updated %s*\n", d.UpdatedAt.Format("2006-01-02"))
		}
		if d.Description != "" {
			fmt.Fprintf(&b, "%s\n", d.Description)
		}
		fmt.Fprintf(&b, "\n%s\n", strings.TrimSpace(d.Content))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (l *Loader) renderPortfolio(ctx context.Context) (string, error) {
	projects, err := l.source.ListPortfolioProjects(ctx)
	if err != nil {
		return "", fmt.Errorf("list portfolio projects: %w", err)
	}
	if len(projects) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString("## Portfolio Projects\n")
	for _, p := range projects {
		fmt.Fprintf(&b, "\n### %s\n", p.Name)
		if p.Role != "" {
			fmt.Fprintf(&b, "- Role: %s\n", p.Role)
		}
		if p.Tech != "" {
			fmt.Fprintf(&b, "- Tech: %s\n", p.Tech)
		}
		if p.URL != "" {
			fmt.Fprintf(&b, "- URL: %s\n", p.URL)
		}
		if span := formatSpan(p.StartedAt, p.EndedAt); span != "" {
			fmt.Fprintf(&b, "- Period: %s\n", span)
		}
		if p.Description != "" {
			fmt.Fprintf(&b, "\n%s\n", strings.TrimSpace(p.Description))
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (l *Loader) renderProficiencies(ctx context.Context) (string, error) {
	profs, err := l.source.ListProficiencies(ctx)
	if err != nil {
		return "", fmt.Errorf("list proficiencies: %w", err)
	}
	if len(profs) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString("## Skills\n")
	// Rows arrive grouped by category, strongest first.
	current := ""
	for _, p := range profs {
		if p.Category != current {
			current = p.Category
			fmt.Fprintf(&b, "\n### %s\n", current)
		}
		fmt.Fprintf(&b, "- %s (%d/100)\n", p.Name, p.Proficiency)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (l *Loader) renderExperience(ctx context.Context) (string, error) {
	jobs, err := l.source.ListWorkExperience(ctx)
	if err != nil {
		return "", fmt.Errorf("list work experience: %w", err)
	}
	if len(jobs) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString("## Work Experience\n")
	for _, j := range jobs {
		fmt.Fprintf(&b, "\n### %s at %s\n", j.Title, j.Company)
		fmt.Fprintf(&b, "*%s*\n", formatSpanFrom(j.StartedAt, j.EndedAt))
		if j.Description != "" {
			fmt.Fprintf(&b, "\n%s\n", strings.TrimSpace(j.Description))
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (l *Loader) renderEducation(ctx context.Context) (string, error) {
	records, err := l.source.ListEducation(ctx)
	if err != nil {
		return "", fmt.Errorf("list education: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString("## Education\n")
	for _, e := range records {
		fmt.Fprintf(&b, "\n### %s, %s\n", e.Degree, e.Institution)
		if e.Field != "" {
			fmt.Fprintf(&b, "- Field: %s\n", e.Field)
		}
		fmt.Fprintf(&b, "- Period: %s\n", formatSpanFrom(e.StartedAt, e.EndedAt))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (l *Loader) renderJournal(ctx context.Context) (string, error) {
	entries, err := l.source.ListJournalEntries(ctx)
	if err != nil {
		return "", fmt.Errorf("list journal entries: %w", err)
	}
	if len(entries) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString("## Journal Entries\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "\n### %s (%s)\n", e.Title, e.EntryDate.Format("2006-01-02"))
		if e.Repo != "" {
			fmt.Fprintf(&b, "- Repo: %s", e.Repo)
			if e.CommitHash != "" {
				fmt.Fprintf(&b, " @ %s", shortHash(e.CommitHash))
			}
			b.WriteString("\n")
		}
		if e.Tags != "" {
			fmt.Fprintf(&b, "- Tags: %s\n", e.Tags)
		}
		fmt.Fprintf(&b, "\n%s\n", strings.TrimSpace(e.Content))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (l *Loader) renderLinearProjects(ctx context.Context) (string, error) {
	projects, err := l.source.ListLinearProjects(ctx, l.policy.ExcludedStates)
	if err != nil {
		return "", fmt.Errorf("list linear projects: %w", err)
	}
	if len(projects) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString("## Linear Projects\n")
	for _, p := range projects {
		fmt.Fprintf(&b, "\n### %s [%s, %d%%]\n", p.Name, p.State, int(p.Progress*100))
		if p.Description != "" {
			fmt.Fprintf(&b, "%s\n", strings.TrimSpace(p.Description))
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (l *Loader) renderLinearIssues(ctx context.Context, includeCompleted bool) (string, error) {
	issues, err := l.source.ListLinearIssues(ctx, l.policy.ExcludedStates, l.policy.CompletedStates, includeCompleted)
	if err != nil {
		return "", fmt.Errorf("list linear issues: %w", err)
	}
	if len(issues) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString("## Linear Issues\n")
	for _, is := range issues {
		fmt.Fprintf(&b, "\n### %s: %s [%s]\n", is.Identifier, is.Title, is.State)
		if is.Priority > 0 {
			fmt.Fprintf(&b, "- Priority: %d\n", is.Priority)
		}
		if is.Description != "" {
			fmt.Fprintf(&b, "\n%s\n", strings.TrimSpace(is.Description))
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (l *Loader) renderSliteNotes(ctx context.Context) (string, error) {
	notes, err := l.source.ListSliteNotes(ctx)
	if err != nil {
		return "", fmt.Errorf("list slite notes: %w", err)
	}
	if len(notes) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString("## Slite Notes\n")
	for _, n := range notes {
		fmt.Fprintf(&b, "\n### %s\n", n.Title)
		if n.URL != "" {
			fmt.Fprintf(&b, "- URL: %s\n", n.URL)
		}
		fmt.Fprintf(&b, "\n%s\n", strings.TrimSpace(n.Content))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
