package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/GuiArSt/kronus/internal/persistence"
)

const linearCursorKey = "mirror.linear.cursor"

// LinearSource pulls projects and issues through the Linear GraphQL API.
type LinearSource struct {
	apiKey  string
	teamID  string
	baseURL string
	client  *http.Client
}

func NewLinearSource(apiKey, teamID string) *LinearSource {
	return &LinearSource{
		apiKey:  apiKey,
		teamID:  teamID,
		baseURL: "https://api.linear.app/graphql",
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (l *LinearSource) Name() string { return "linear" }

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type linearProjectsResponse struct {
	Data struct {
		Projects struct {
			Nodes []struct {
				ID          string  `json:"id"`
				Name        string  `json:"name"`
				Description string  `json:"description"`
				State       string  `json:"state"`
				Progress    float64 `json:"progress"`
				UpdatedAt   string  `json:"updatedAt"`
			} `json:"nodes"`
		} `json:"projects"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type linearIssuesResponse struct {
	Data struct {
		Issues struct {
			Nodes []struct {
				ID          string  `json:"id"`
				Identifier  string  `json:"identifier"`
				Title       string  `json:"title"`
				Description string  `json:"description"`
				Priority    float64 `json:"priority"`
				UpdatedAt   string  `json:"updatedAt"`
				State       struct {
					Name string `json:"name"`
				} `json:"state"`
				Project struct {
					ID string `json:"id"`
				} `json:"project"`
				Assignee struct {
					ID string `json:"id"`
				} `json:"assignee"`
			} `json:"nodes"`
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
		} `json:"issues"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

const projectsQuery = `query {
  projects(first: 100) {
    nodes { id name description state progress updatedAt }
  }
}`

const issuesQuery = `query Issues($after: String, $filter: IssueFilter) {
  issues(first: 100, after: $after, filter: $filter) {
    nodes {
      id identifier title description priority updatedAt
      state { name }
      project { id }
      assignee { id }
    }
    pageInfo { hasNextPage endCursor }
  }
}`

// Sync pulls all projects plus issues updated since the stored cursor.
func (l *LinearSource) Sync(ctx context.Context, store *persistence.Store) error {
	if l.apiKey == "" {
		return fmt.Errorf("linear API key not configured")
	}
	if err := l.syncProjects(ctx, store); err != nil {
		return fmt.Errorf("sync projects: %w", err)
	}
	if err := l.syncIssues(ctx, store); err != nil {
		return fmt.Errorf("sync issues: %w", err)
	}
	return store.KVSet(ctx, linearCursorKey, time.Now().UTC().Format(time.RFC3339))
}

func (l *LinearSource) syncProjects(ctx context.Context, store *persistence.Store) error {
	var resp linearProjectsResponse
	if err := l.query(ctx, graphqlRequest{Query: projectsQuery}, &resp); err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		return fmt.Errorf("linear: %s", resp.Errors[0].Message)
	}
	for _, n := range resp.Data.Projects.Nodes {
		p := persistence.LinearProject{
			ID:          n.ID,
			Name:        n.Name,
			Description: n.Description,
			State:       n.State,
			Progress:    n.Progress,
		}
		if t, err := time.Parse(time.RFC3339, n.UpdatedAt); err == nil {
			p.UpstreamUpdatedAt = &t
		}
		if err := store.UpsertLinearProject(ctx, &p); err != nil {
			return err
		}
	}
	return nil
}

func (l *LinearSource) syncIssues(ctx context.Context, store *persistence.Store) error {
	since, _ := store.KVGet(ctx, linearCursorKey)
	filter := map[string]any{}
	if since != "" {
		filter["updatedAt"] = map[string]any{"gt": since}
	}
	if l.teamID != "" {
		filter["team"] = map[string]any{"id": map[string]any{"eq": l.teamID}}
	}

	after := ""
	for {
		vars := map[string]any{}
		if after != "" {
			vars["after"] = after
		}
		if len(filter) > 0 {
			vars["filter"] = filter
		}
		var resp linearIssuesResponse
		if err := l.query(ctx, graphqlRequest{Query: issuesQuery, Variables: vars}, &resp); err != nil {
			return err
		}
		if len(resp.Errors) > 0 {
			return fmt.Errorf("linear: %s", resp.Errors[0].Message)
		}
		for _, n := range resp.Data.Issues.Nodes {
			issue := persistence.LinearIssue{
				ID:          n.ID,
				Identifier:  n.Identifier,
				Title:       n.Title,
				Description: n.Description,
				State:       n.State.Name,
				Priority:    int(n.Priority),
				ProjectID:   n.Project.ID,
				AssigneeID:  n.Assignee.ID,
			}
			if t, err := time.Parse(time.RFC3339, n.UpdatedAt); err == nil {
				issue.UpstreamUpdatedAt = &t
			}
			if err := store.UpsertLinearIssue(ctx, &issue); err != nil {
				return err
			}
		}
		if !resp.Data.Issues.PageInfo.HasNextPage {
			return nil
		}
		after = resp.Data.Issues.PageInfo.EndCursor
	}
}

func (l *LinearSource) query(ctx context.Context, reqBody graphqlRequest, out any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", l.apiKey)

	resp, err := l.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("linear API returned %d: %s", resp.StatusCode, string(data))
	}
	return json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(out)
}
