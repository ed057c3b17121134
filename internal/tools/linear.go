package tools

import (
	"errors"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/GuiArSt/kronus/internal/persistence"
)

type ListLinearProjectsInput struct{}

type LinearProjectOutput struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	State       string  `json:"state"`
	Progress    float64 `json:"progress"`
	SyncedAt    string  `json:"synced_at"`
}

type LinearProjectListOutput struct {
	Projects []LinearProjectOutput `json:"projects"`
}

type ListLinearIssuesInput struct {
	IncludeCompleted bool `json:"include_completed,omitempty"`
}

type LinearIssueOutput struct {
	Identifier  string `json:"identifier"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	State       string `json:"state"`
	Priority    int    `json:"priority,omitempty"`
	ProjectID   string `json:"project_id,omitempty"`
}

type LinearIssueListOutput struct {
	Issues []LinearIssueOutput `json:"issues"`
}

type GetLinearIssueInput struct {
	Identifier string `json:"identifier"` // issue id or identifier like KRO-12
}

func linearIssueOutput(i persistence.LinearIssue) LinearIssueOutput {
	return LinearIssueOutput{
		Identifier:  i.Identifier,
		Title:       i.Title,
		Description: i.Description,
		State:       i.State,
		Priority:    i.Priority,
		ProjectID:   i.ProjectID,
	}
}

// The Linear tools read the local mirror, not the upstream API. Data is at
// most one sync interval old.
func registerLinearTools(g *genkit.Genkit, r *Registry) []ai.ToolRef {
	listProjects := genkit.DefineTool(g, "list_linear_projects",
		"List mirrored Linear projects. Canceled and duplicate projects are hidden.",
		func(ctx *ai.ToolContext, input ListLinearProjectsInput) (LinearProjectListOutput, error) {
			projects, err := r.store.ListLinearProjects(ctx, r.policy.ExcludedStates)
			if err != nil {
				return LinearProjectListOutput{}, err
			}
			out := LinearProjectListOutput{Projects: make([]LinearProjectOutput, 0, len(projects))}
			for _, p := range projects {
				out.Projects = append(out.Projects, LinearProjectOutput{
					ID:          p.ID,
					Name:        p.Name,
					Description: p.Description,
					State:       p.State,
					Progress:    p.Progress,
					SyncedAt:    p.SyncedAt.Format(time.RFC3339),
				})
			}
			return out, nil
		},
	)

	listIssues := genkit.DefineTool(g, "list_linear_issues",
		"List mirrored Linear issues. Completed issues are hidden unless include_completed is true.",
		func(ctx *ai.ToolContext, input ListLinearIssuesInput) (LinearIssueListOutput, error) {
			issues, err := r.store.ListLinearIssues(ctx, r.policy.ExcludedStates, r.policy.CompletedStates, input.IncludeCompleted)
			if err != nil {
				return LinearIssueListOutput{}, err
			}
			out := LinearIssueListOutput{Issues: make([]LinearIssueOutput, 0, len(issues))}
			for _, i := range issues {
				out.Issues = append(out.Issues, linearIssueOutput(i))
			}
			return out, nil
		},
	)

	getIssue := genkit.DefineTool(g, "get_linear_issue",
		"Fetch one mirrored Linear issue by id or identifier (for example KRO-12).",
		func(ctx *ai.ToolContext, input GetLinearIssueInput) (LinearIssueOutput, error) {
			issue, err := r.store.GetLinearIssue(ctx, input.Identifier)
			if errors.Is(err, persistence.ErrNotFound) {
				return LinearIssueOutput{}, fmt.Errorf("issue %q not found in the local mirror", input.Identifier)
			}
			if err != nil {
				return LinearIssueOutput{}, err
			}
			return linearIssueOutput(issue), nil
		},
	)

	return []ai.ToolRef{listProjects, listIssues, getIssue}
}
