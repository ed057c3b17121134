package soul

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetCachesFirstLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "SOUL.md")
	if err := os.WriteFile(path, []byte("You are Kronus.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(path)
	text, err := l.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if text != "You are Kronus." {
		t.Fatalf("unexpected text %q", text)
	}

	// A disk change is invisible until Reload is called.
	if err := os.WriteFile(path, []byte("You are someone else.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	text, err = l.Get()
	if err != nil || text != "You are Kronus." {
		t.Fatalf("cache bypassed: %q %v", text, err)
	}

	if _, err := l.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	text, _ = l.Get()
	if text != "You are someone else." {
		t.Fatalf("reload did not take: %q", text)
	}
}

func TestGetMissingFile(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "absent.md"))
	if _, err := l.Get(); err == nil {
		t.Fatal("expected error for missing soul file")
	}
}

func TestReloadEmptyFileKeepsNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "SOUL.md")
	if err := os.WriteFile(path, []byte("   \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(path)
	if _, err := l.Get(); err == nil {
		t.Fatal("expected error for empty soul file")
	}
}
