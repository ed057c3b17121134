package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/GuiArSt/kronus/internal/shared"
)

const (
	gitTimeout   = 30 * time.Second
	maxGitOutput = 16 * 1024
)

// Executor runs commands. HostExecutor is the default; tests swap in a fake.
type Executor interface {
	Exec(ctx context.Context, name string, args []string, workDir string) (stdout, stderr string, exitCode int, err error)
}

// HostExecutor runs commands locally without a shell, so tool arguments can
// never smuggle in operators.
type HostExecutor struct{}

func (h *HostExecutor) Exec(ctx context.Context, name string, args []string, workDir string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if workDir != "" {
		cmd.Dir = workDir
	}
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	runErr := cmd.Run()
	exitCode := 0
	var err error
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
			err = runErr
		}
	}
	return outBuf.String(), errBuf.String(), exitCode, err
}

type GitLogInput struct {
	Repo  string `json:"repo"`
	Count int    `json:"count,omitempty"` // default 10, max 50
	Path  string `json:"path,omitempty"`
}

type GitDiffInput struct {
	Repo   string `json:"repo"`
	Commit string `json:"commit,omitempty"` // default HEAD
	Path   string `json:"path,omitempty"`
}

type GitFileInput struct {
	Repo   string `json:"repo"`
	Path   string `json:"path"`
	Commit string `json:"commit,omitempty"` // default HEAD
}

type GitTreeInput struct {
	Repo string `json:"repo"`
	Path string `json:"path,omitempty"`
}

type GitOutput struct {
	Output    string `json:"output"`
	Truncated bool   `json:"truncated,omitempty"`
}

func (r *Registry) repoPath(name string) (string, error) {
	path, ok := r.gitRepos[name]
	if !ok {
		known := make([]string, 0, len(r.gitRepos))
		for n := range r.gitRepos {
			known = append(known, n)
		}
		sort.Strings(known)
		return "", fmt.Errorf("unknown repo %q, configured repos: %s", name, strings.Join(known, ", "))
	}
	return path, nil
}

// gitArg rejects values that could be parsed as flags or refspec tricks.
func gitArg(v string) error {
	if strings.HasPrefix(v, "-") {
		return fmt.Errorf("argument %q must not start with a dash", v)
	}
	if strings.ContainsAny(v, " \t\n") {
		return fmt.Errorf("argument %q must not contain whitespace", v)
	}
	return nil
}

func (r *Registry) runGit(ctx context.Context, repoPath string, args []string) (GitOutput, error) {
	runCtx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()
	stdout, stderr, exitCode, err := r.executor.Exec(runCtx, "git", args, repoPath)
	if err != nil {
		return GitOutput{}, fmt.Errorf("run git: %w", err)
	}
	if exitCode != 0 {
		return GitOutput{}, fmt.Errorf("git exited %d: %s", exitCode, strings.TrimSpace(stderr))
	}
	out := shared.Redact(stdout)
	truncated := false
	if len(out) > maxGitOutput {
		out = out[:maxGitOutput]
		truncated = true
	}
	return GitOutput{Output: out, Truncated: truncated}, nil
}

// registerGitTools exposes read-only history access to the configured repos.
// There is deliberately no arbitrary exec tool.
func registerGitTools(g *genkit.Genkit, r *Registry) []ai.ToolRef {
	gitLog := genkit.DefineTool(g, "git_log",
		"Show recent commits from a configured repo. Useful when drafting journal entries about recent work.",
		func(ctx *ai.ToolContext, input GitLogInput) (GitOutput, error) {
			repoPath, err := r.repoPath(input.Repo)
			if err != nil {
				return GitOutput{}, err
			}
			count := input.Count
			if count <= 0 {
				count = 10
			}
			if count > 50 {
				count = 50
			}
			args := []string{"log", fmt.Sprintf("-%d", count), "--stat", "--date=short",
				"--pretty=format:%h %ad %s"}
			if input.Path != "" {
				if err := gitArg(input.Path); err != nil {
					return GitOutput{}, err
				}
				args = append(args, "--", input.Path)
			}
			return r.runGit(ctx, repoPath, args)
		},
	)

	gitDiff := genkit.DefineTool(g, "git_diff",
		"Show the diff of one commit (default HEAD) in a configured repo.",
		func(ctx *ai.ToolContext, input GitDiffInput) (GitOutput, error) {
			repoPath, err := r.repoPath(input.Repo)
			if err != nil {
				return GitOutput{}, err
			}
			commit := input.Commit
			if commit == "" {
				commit = "HEAD"
			}
			if err := gitArg(commit); err != nil {
				return GitOutput{}, err
			}
			args := []string{"show", "--stat", "--patch", commit}
			if input.Path != "" {
				if err := gitArg(input.Path); err != nil {
					return GitOutput{}, err
				}
				args = append(args, "--", input.Path)
			}
			return r.runGit(ctx, repoPath, args)
		},
	)

	gitFile := genkit.DefineTool(g, "git_file",
		"Read one file from a configured repo at a commit (default HEAD).",
		func(ctx *ai.ToolContext, input GitFileInput) (GitOutput, error) {
			repoPath, err := r.repoPath(input.Repo)
			if err != nil {
				return GitOutput{}, err
			}
			if input.Path == "" {
				return GitOutput{}, fmt.Errorf("path is required")
			}
			if err := gitArg(input.Path); err != nil {
				return GitOutput{}, err
			}
			commit := input.Commit
			if commit == "" {
				commit = "HEAD"
			}
			if err := gitArg(commit); err != nil {
				return GitOutput{}, err
			}
			return r.runGit(ctx, repoPath, []string{"show", commit + ":" + input.Path})
		},
	)

	gitTree := genkit.DefineTool(g, "git_tree",
		"List the tracked files of a configured repo, optionally under one directory.",
		func(ctx *ai.ToolContext, input GitTreeInput) (GitOutput, error) {
			repoPath, err := r.repoPath(input.Repo)
			if err != nil {
				return GitOutput{}, err
			}
			args := []string{"ls-tree", "--name-only", "-r", "HEAD"}
			if input.Path != "" {
				if err := gitArg(input.Path); err != nil {
					return GitOutput{}, err
				}
				args = append(args, "--", input.Path)
			}
			return r.runGit(ctx, repoPath, args)
		},
	)

	return []ai.ToolRef{gitLog, gitDiff, gitFile, gitTree}
}
