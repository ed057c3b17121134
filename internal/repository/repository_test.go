package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/GuiArSt/kronus/internal/persistence"
	"github.com/GuiArSt/kronus/internal/skillset"
)

type fakeSource struct {
	docs         []persistence.Document
	portfolio    []persistence.PortfolioProject
	profs        []persistence.Proficiency
	jobs         []persistence.WorkExperience
	education    []persistence.Education
	journal      []persistence.JournalEntry
	projects     []persistence.LinearProject
	issues       []persistence.LinearIssue
	notes        []persistence.SliteNote
	failCategory string

	gotExcluded         []string
	gotCompleted        []string
	gotIncludeCompleted bool
}

func (f *fakeSource) fail(name string) error {
	if f.failCategory == name {
		return errors.New("category down")
	}
	return nil
}

func (f *fakeSource) ListDocumentsByType(ctx context.Context, docType string) ([]persistence.Document, error) {
	return f.docs, f.fail("writings")
}
func (f *fakeSource) ListPortfolioProjects(ctx context.Context) ([]persistence.PortfolioProject, error) {
	return f.portfolio, f.fail("portfolio_projects")
}
func (f *fakeSource) ListProficiencies(ctx context.Context) ([]persistence.Proficiency, error) {
	return f.profs, f.fail("skills")
}
func (f *fakeSource) ListWorkExperience(ctx context.Context) ([]persistence.WorkExperience, error) {
	return f.jobs, f.fail("work_experience")
}
func (f *fakeSource) ListEducation(ctx context.Context) ([]persistence.Education, error) {
	return f.education, f.fail("education")
}
func (f *fakeSource) ListJournalEntries(ctx context.Context) ([]persistence.JournalEntry, error) {
	return f.journal, f.fail("journal_entries")
}
func (f *fakeSource) ListLinearProjects(ctx context.Context, excludedStates []string) ([]persistence.LinearProject, error) {
	f.gotExcluded = excludedStates
	return f.projects, f.fail("linear_projects")
}
func (f *fakeSource) ListLinearIssues(ctx context.Context, excludedStates, completedStates []string, includeCompleted bool) ([]persistence.LinearIssue, error) {
	f.gotExcluded = excludedStates
	f.gotCompleted = completedStates
	f.gotIncludeCompleted = includeCompleted
	return f.issues, f.fail("linear_issues")
}
func (f *fakeSource) ListSliteNotes(ctx context.Context) ([]persistence.SliteNote, error) {
	return f.notes, f.fail("slite_notes")
}

func populatedSource() *fakeSource {
	written := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	return &fakeSource{
		docs: []persistence.Document{{
			DocType: persistence.DocTypeWriting, Title: "On Daemons",
			Content: "Long-running processes deserve care.", WrittenAt: &written,
		}},
		profs: []persistence.Proficiency{
			{Name: "Go", Category: "Backend", Proficiency: 90},
			{Name: "Rust", Category: "Backend", Proficiency: 60},
			{Name: "Figma", Category: "Design", Proficiency: 40},
		},
		journal: []persistence.JournalEntry{{
			Title: "Fixed the scheduler", Repo: "kronus", CommitHash: "abcdef1234567890",
			Content: "Cron entries now survive restarts.", EntryDate: written,
		}},
		issues: []persistence.LinearIssue{{
			Identifier: "KRO-12", Title: "Streaming stalls", State: "In Progress", Priority: 2,
		}},
	}
}

func testPolicy() StatePolicy {
	return StatePolicy{
		ExcludedStates:  []string{"canceled", "cancelled", "duplicate"},
		CompletedStates: []string{"completed", "done"},
	}
}

func TestLoadEmptyConfigYieldsEmptySection(t *testing.T) {
	l := NewLoader(populatedSource(), testPolicy(), nil)
	sec, failed := l.Load(context.Background(), skillset.SoulConfig{})
	if sec.Content != "" || sec.TokenEstimate != 0 {
		t.Fatalf("section = %+v, want empty", sec)
	}
	if failed != nil {
		t.Fatalf("failed = %v, want none", failed)
	}
}

func TestLoadRendersOnlyEnabledCategories(t *testing.T) {
	l := NewLoader(populatedSource(), testPolicy(), nil)
	sec, failed := l.Load(context.Background(), skillset.SoulConfig{
		Writings: true, JournalEntries: true,
	})
	if len(failed) != 0 {
		t.Fatalf("failed = %v", failed)
	}
	if !strings.Contains(sec.Content, "## Writings") || !strings.Contains(sec.Content, "On Daemons") {
		t.Fatalf("writings missing:\n%s", sec.Content)
	}
	if !strings.Contains(sec.Content, "## Journal Entries") || !strings.Contains(sec.Content, "abcdef12") {
		t.Fatalf("journal missing:\n%s", sec.Content)
	}
	if strings.Contains(sec.Content, "## Skills") || strings.Contains(sec.Content, "## Linear Issues") {
		t.Fatalf("disabled category rendered:\n%s", sec.Content)
	}
	if sec.TokenEstimate != (len(sec.Content)+3)/4 {
		t.Fatalf("token estimate = %d for %d chars", sec.TokenEstimate, len(sec.Content))
	}
}

func TestLoadRendersWritingDates(t *testing.T) {
	src := populatedSource()
	created := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	src.docs[0].CreatedAt = created
	src.docs[0].UpdatedAt = created.AddDate(0, 1, 2)
	l := NewLoader(src, testPolicy(), nil)
	sec, _ := l.Load(context.Background(), skillset.SoulConfig{Writings: true})
	for _, want := range []string{"*Written 2026-03-14*", "*Added 2026-04-01*", "*Updated 2026-05-03*"} {
		if !strings.Contains(sec.Content, want) {
			t.Errorf("missing %q in:\n%s", want, sec.Content)
		}
	}

	src.docs[0].UpdatedAt = created
	sec, _ = l.Load(context.Background(), skillset.SoulConfig{Writings: true})
	if strings.Contains(sec.Content, "*Updated") {
		t.Errorf("unmodified document rendered an update date:\n%s", sec.Content)
	}
}

func TestLoadSkipsEmptyCategories(t *testing.T) {
	src := populatedSource()
	src.notes = nil
	l := NewLoader(src, testPolicy(), nil)
	sec, failed := l.Load(context.Background(), skillset.SoulConfig{
		Writings: true, SliteNotes: true,
	})
	if len(failed) != 0 {
		t.Fatalf("failed = %v", failed)
	}
	if strings.Contains(sec.Content, "## Slite Notes") {
		t.Fatalf("empty category produced a heading:\n%s", sec.Content)
	}
	if !strings.Contains(sec.Content, "## Writings") {
		t.Fatalf("writings missing:\n%s", sec.Content)
	}
}

func TestLoadIsolatesCategoryFailure(t *testing.T) {
	src := populatedSource()
	src.failCategory = "skills"
	l := NewLoader(src, testPolicy(), nil)
	sec, failed := l.Load(context.Background(), skillset.SoulConfig{
		Writings: true, Skills: true, JournalEntries: true,
	})
	if len(failed) != 1 || failed[0] != "skills" {
		t.Fatalf("failed = %v, want [skills]", failed)
	}
	if !strings.Contains(sec.Content, "## Writings") || !strings.Contains(sec.Content, "## Journal Entries") {
		t.Fatalf("surviving categories missing:\n%s", sec.Content)
	}
	if strings.Contains(sec.Content, "## Skills") {
		t.Fatalf("failed category rendered:\n%s", sec.Content)
	}
}

func TestLoadProficiencyGrouping(t *testing.T) {
	l := NewLoader(populatedSource(), testPolicy(), nil)
	sec, _ := l.Load(context.Background(), skillset.SoulConfig{Skills: true})
	backend := strings.Index(sec.Content, "### Backend")
	design := strings.Index(sec.Content, "### Design")
	if backend < 0 || design < 0 || backend > design {
		t.Fatalf("categories not grouped in order:\n%s", sec.Content)
	}
	if strings.Count(sec.Content, "### Backend") != 1 {
		t.Fatalf("backend heading repeated:\n%s", sec.Content)
	}
}

func TestLoadPassesLinearStatePolicy(t *testing.T) {
	src := populatedSource()
	l := NewLoader(src, testPolicy(), nil)
	l.Load(context.Background(), skillset.SoulConfig{LinearIssues: true})
	if len(src.gotExcluded) != 3 || src.gotExcluded[0] != "canceled" {
		t.Fatalf("excluded states = %v", src.gotExcluded)
	}
	if len(src.gotCompleted) != 2 || src.gotIncludeCompleted {
		t.Fatalf("completed states = %v, includeCompleted = %v", src.gotCompleted, src.gotIncludeCompleted)
	}

	l.Load(context.Background(), skillset.SoulConfig{LinearIssues: true, LinearIncludeCompleted: true})
	if !src.gotIncludeCompleted {
		t.Fatal("includeCompleted flag not forwarded")
	}
}
