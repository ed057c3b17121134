package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/GuiArSt/kronus/internal/persistence"
)

// SliteSource pulls notes through the Slite REST API.
type SliteSource struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewSliteSource(apiKey string) *SliteSource {
	return &SliteSource{
		apiKey:  apiKey,
		baseURL: "https://api.slite.com",
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *SliteSource) Name() string { return "slite" }

// SetBaseURL overrides the API endpoint, for proxies and tests.
func (s *SliteSource) SetBaseURL(u string) {
	if u != "" {
		s.baseURL = u
	}
}

type sliteNotesResponse struct {
	Notes []struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Content   string `json:"content"`
		URL       string `json:"url"`
		UpdatedAt string `json:"updatedAt"`
	} `json:"notes"`
	NextCursor string `json:"nextCursor"`
}

// Sync pulls all notes, following cursor pagination to the end.
func (s *SliteSource) Sync(ctx context.Context, store *persistence.Store) error {
	if s.apiKey == "" {
		return fmt.Errorf("slite API key not configured")
	}
	cursor := ""
	for {
		page, err := s.fetchPage(ctx, cursor)
		if err != nil {
			return err
		}
		for _, n := range page.Notes {
			note := persistence.SliteNote{
				ID:      n.ID,
				Title:   n.Title,
				Content: n.Content,
				URL:     n.URL,
			}
			if t, err := time.Parse(time.RFC3339, n.UpdatedAt); err == nil {
				note.UpstreamUpdatedAt = &t
			}
			if err := store.UpsertSliteNote(ctx, &note); err != nil {
				return err
			}
		}
		if page.NextCursor == "" {
			return nil
		}
		cursor = page.NextCursor
	}
}

func (s *SliteSource) fetchPage(ctx context.Context, cursor string) (*sliteNotesResponse, error) {
	endpoint := s.baseURL + "/v1/notes?limit=100"
	if cursor != "" {
		endpoint += "&cursor=" + url.QueryEscape(cursor)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-slite-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("slite API returned %d: %s", resp.StatusCode, string(data))
	}
	var page sliteNotesResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode slite response: %w", err)
	}
	return &page, nil
}
