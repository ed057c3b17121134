package persistence

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDocumentRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := &Document{
		DocType:     DocTypeWriting,
		Title:       "On commit hygiene",
		Description: "an essay",
		Content:     "# On commit hygiene\n...",
	}
	if err := s.SaveDocument(ctx, d); err != nil {
		t.Fatalf("save: %v", err)
	}
	if d.ID == "" {
		t.Fatal("expected allocated id")
	}

	got, err := s.GetDocument(ctx, d.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != d.Title || got.DocType != DocTypeWriting {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Metadata != "{}" {
		t.Fatalf("expected default metadata, got %q", got.Metadata)
	}

	list, err := s.ListDocumentsByType(ctx, DocTypeWriting)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v (%d)", err, len(list))
	}

	if err := s.DeleteDocument(ctx, d.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetDocument(ctx, d.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteDocument(ctx, d.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestJournalOrderingAndSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := &JournalEntry{Repo: "kronus", Title: "bootstrap", Content: "initial scaffolding", EntryDate: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}
	recent := &JournalEntry{Repo: "kronus", Title: "streaming", Content: "wired SSE chat stream", EntryDate: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)}
	other := &JournalEntry{Repo: "blog", Title: "redesign", Content: "css overhaul", EntryDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	for _, e := range []*JournalEntry{old, recent, other} {
		if err := s.SaveJournalEntry(ctx, e); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	all, err := s.ListJournalEntries(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].Title != "streaming" {
		t.Fatalf("expected newest-first, got %+v", all)
	}

	byRepo, err := s.ListJournalEntriesByRepo(ctx, "kronus")
	if err != nil || len(byRepo) != 2 {
		t.Fatalf("by repo: %v (%d)", err, len(byRepo))
	}

	found, err := s.SearchJournal(ctx, "SSE")
	if err != nil || len(found) != 1 || found[0].Title != "streaming" {
		t.Fatalf("search: %v %+v", err, found)
	}
}

func TestProficiencyGroupingOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, p := range []*Proficiency{
		{Name: "Go", Category: "Languages", Proficiency: 90},
		{Name: "Rust", Category: "Languages", Proficiency: 60},
		{Name: "Postgres", Category: "Data", Proficiency: 80},
	} {
		if err := s.SaveProficiency(ctx, p); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	list, err := s.ListProficiencies(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"Postgres", "Go", "Rust"} // Data before Languages, strongest first
	for i, name := range want {
		if list[i].Name != name {
			t.Fatalf("position %d: got %s, want %s (%+v)", i, list[i].Name, name, list)
		}
	}
}

func TestLinearStateFiltering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	issues := []*LinearIssue{
		{ID: "1", Identifier: "KRO-1", Title: "active", State: "In Progress"},
		{ID: "2", Identifier: "KRO-2", Title: "done", State: "Done"},
		{ID: "3", Identifier: "KRO-3", Title: "dead", State: "Canceled"},
	}
	for _, i := range issues {
		if err := s.UpsertLinearIssue(ctx, i); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	excluded := []string{"canceled", "cancelled", "duplicate"}
	completed := []string{"completed", "done"}

	withCompleted, err := s.ListLinearIssues(ctx, excluded, completed, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(withCompleted) != 2 {
		t.Fatalf("expected 2 issues (canceled always excluded), got %d", len(withCompleted))
	}

	activeOnly, err := s.ListLinearIssues(ctx, excluded, completed, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(activeOnly) != 1 || activeOnly[0].Identifier != "KRO-1" {
		t.Fatalf("expected only the active issue, got %+v", activeOnly)
	}
}

func TestLinearUpsertIsSoft(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := &LinearProject{ID: "p1", Name: "Kronus", State: "started"}
	if err := s.UpsertLinearProject(ctx, p); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	// A second sync that no longer sees p1 does not remove it.
	p2 := &LinearProject{ID: "p2", Name: "Blog", State: "started"}
	if err := s.UpsertLinearProject(ctx, p2); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	list, err := s.ListLinearProjects(ctx, nil)
	if err != nil || len(list) != 2 {
		t.Fatalf("expected both projects retained, got %v (%d)", err, len(list))
	}
}

func TestSliteSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for _, n := range []*SliteNote{
		{ID: "n1", Title: "Architecture notes", Content: "context assembly design", UpstreamUpdatedAt: &now},
		{ID: "n2", Title: "Groceries", Content: "milk"},
	} {
		if err := s.UpsertSliteNote(ctx, n); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	found, err := s.SearchSliteNotes(ctx, "assembly")
	if err != nil || len(found) != 1 || found[0].ID != "n1" {
		t.Fatalf("search: %v %+v", err, found)
	}
}

func TestKVRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if v, err := s.KVGet(ctx, "cursor:linear"); err != nil || v != "" {
		t.Fatalf("missing key: %v %q", err, v)
	}
	if err := s.KVSet(ctx, "cursor:linear", "2026-03-01T00:00:00Z"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.KVSet(ctx, "cursor:linear", "2026-04-01T00:00:00Z"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, err := s.KVGet(ctx, "cursor:linear")
	if err != nil || v != "2026-04-01T00:00:00Z" {
		t.Fatalf("get: %v %q", err, v)
	}
}

func TestMediaRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := &Media{Kind: "image", Title: "whiteboard", Location: "/media/wb.png"}
	if err := s.SaveMedia(ctx, m); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.GetMedia(ctx, m.ID)
	if err != nil || got.Title != "whiteboard" {
		t.Fatalf("get: %v %+v", err, got)
	}
	got.Note = "sketch of the merge flow"
	if err := s.SaveMedia(ctx, &got); err != nil {
		t.Fatalf("update: %v", err)
	}
	list, err := s.ListMedia(ctx)
	if err != nil || len(list) != 1 || list[0].Note != "sketch of the merge flow" {
		t.Fatalf("list: %v %+v", err, list)
	}
}
