package skillset

import (
	"context"
	"testing"
)

func TestSessionActivateDeactivate(t *testing.T) {
	s := NewSession([]string{"Deep Journaling"})
	if got := s.Slugs(); len(got) != 1 || got[0] != "deep-journaling" {
		t.Fatalf("initial slugs = %v", got)
	}
	if !s.Activate("project-manager") {
		t.Fatal("first activation should report newly added")
	}
	if s.Activate("project-manager") {
		t.Fatal("repeat activation should report already active")
	}
	if !s.Deactivate("deep-journaling") {
		t.Fatal("deactivating an active slug should report true")
	}
	if s.Deactivate("deep-journaling") {
		t.Fatal("deactivating twice should report false")
	}
	if got := s.Slugs(); len(got) != 1 || got[0] != "project-manager" {
		t.Fatalf("slugs = %v", got)
	}
}

func TestSessionContextRoundTrip(t *testing.T) {
	if SessionFrom(context.Background()) != nil {
		t.Fatal("empty context should carry no session")
	}
	s := NewSession(nil)
	ctx := WithSession(context.Background(), s)
	if SessionFrom(ctx) != s {
		t.Fatal("session not recovered from context")
	}
}
