package tools

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeExecutor struct {
	gotName string
	gotArgs []string
	gotDir  string
	stdout  string
	stderr  string
	exit    int
	err     error
}

func (f *fakeExecutor) Exec(ctx context.Context, name string, args []string, workDir string) (string, string, int, error) {
	f.gotName = name
	f.gotArgs = args
	f.gotDir = workDir
	return f.stdout, f.stderr, f.exit, f.err
}

func gitRegistry(exec *fakeExecutor) *Registry {
	return &Registry{
		logger:   testLogger(),
		executor: exec,
		gitRepos: map[string]string{"kronus": "/srv/repos/kronus"},
	}
}

func TestRepoPathUnknownRepo(t *testing.T) {
	r := gitRegistry(&fakeExecutor{})
	if _, err := r.repoPath("other"); err == nil || !strings.Contains(err.Error(), "kronus") {
		t.Fatalf("err = %v, want unknown-repo error naming configured repos", err)
	}
	path, err := r.repoPath("kronus")
	if err != nil || path != "/srv/repos/kronus" {
		t.Fatalf("path = %q, err = %v", path, err)
	}
}

func TestGitArgValidation(t *testing.T) {
	for _, bad := range []string{"-rf", "--force", "a b", "x\ny"} {
		if err := gitArg(bad); err == nil {
			t.Errorf("gitArg(%q) accepted", bad)
		}
	}
	for _, ok := range []string{"HEAD", "main", "abc123", "internal/tools"} {
		if err := gitArg(ok); err != nil {
			t.Errorf("gitArg(%q) rejected: %v", ok, err)
		}
	}
}

func TestRunGitRedactsAndTruncates(t *testing.T) {
	exec := &fakeExecutor{stdout: "token sk-ant-REDACTED done"}
	r := gitRegistry(exec)
	out, err := r.runGit(context.Background(), "/srv/repos/kronus", []string{"log"})
	if err != nil {
		t.Fatalf("runGit: %v", err)
	}
	if strings.Contains(out.Output, "secretsecret") {
		t.Fatalf("secret leaked: %q", out.Output)
	}
	if exec.gotName != "git" || exec.gotDir != "/srv/repos/kronus" {
		t.Fatalf("exec called with %q in %q", exec.gotName, exec.gotDir)
	}

	exec.stdout = strings.Repeat("x", maxGitOutput+100)
	out, err = r.runGit(context.Background(), "/srv/repos/kronus", []string{"log"})
	if err != nil {
		t.Fatalf("runGit: %v", err)
	}
	if !out.Truncated || len(out.Output) != maxGitOutput {
		t.Fatalf("truncated = %v, len = %d", out.Truncated, len(out.Output))
	}
}

func TestRunGitNonZeroExit(t *testing.T) {
	exec := &fakeExecutor{stderr: "fatal: bad revision", exit: 128}
	r := gitRegistry(exec)
	if _, err := r.runGit(context.Background(), "/srv/repos/kronus", []string{"show", "nope"}); err == nil || !strings.Contains(err.Error(), "bad revision") {
		t.Fatalf("err = %v, want git failure with stderr", err)
	}
}
