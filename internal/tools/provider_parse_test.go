package tools

import (
	"context"
	"strings"
	"testing"
)

func TestParseBraveJSON(t *testing.T) {
	data := []byte(`{"web":{"results":[
		{"title":"Go","url":"https://go.dev","description":"The Go programming language"},
		{"title":"Docs","url":"https://go.dev/doc","description":"Documentation"}
	]}}`)
	results, err := parseBraveJSON(data)
	if err != nil {
		t.Fatalf("parseBraveJSON: %v", err)
	}
	if len(results) != 2 || results[0].Title != "Go" || results[0].URL != "https://go.dev" {
		t.Fatalf("results = %+v", results)
	}
}

func TestParsePerplexityResponse(t *testing.T) {
	data := []byte(`{
		"choices":[{"message":{"content":"Go 1.24 was released in February 2025."}}],
		"citations":["https://go.dev/blog/go1.24","https://example.com/go-release"]
	}`)
	results, err := parsePerplexityResponse(data)
	if err != nil {
		t.Fatalf("parsePerplexityResponse: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %+v", results)
	}
	if results[0].URL != "https://go.dev/blog/go1.24" || results[0].Snippet == "" {
		t.Fatalf("first result = %+v", results[0])
	}
	if results[1].Snippet != "" {
		t.Fatalf("only the first citation carries the snippet: %+v", results[1])
	}
}

func TestParsePerplexityResponseNoCitations(t *testing.T) {
	data := []byte(`{"choices":[{"message":{"content":"Plain answer."}}]}`)
	results, err := parsePerplexityResponse(data)
	if err != nil {
		t.Fatalf("parsePerplexityResponse: %v", err)
	}
	if len(results) != 1 || results[0].Snippet != "Plain answer." {
		t.Fatalf("results = %+v", results)
	}
}

func TestParseHTMLResults(t *testing.T) {
	html := `
	<a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2F">The <b>Go</b> Language</a>
	<a class="result__snippet">Build <b>simple</b> software</a>`
	results := parseHTMLResults(html)
	if len(results) != 1 {
		t.Fatalf("results = %+v", results)
	}
	if results[0].URL != "https://go.dev/" {
		t.Errorf("redirect not unwrapped: %q", results[0].URL)
	}
	if results[0].Title != "The Go Language" || results[0].Snippet != "Build simple software" {
		t.Errorf("tags not stripped: %+v", results[0])
	}
}

type stubProvider struct {
	name      string
	available bool
	results   []SearchResult
	err       error
	calls     int
}

func (s *stubProvider) Name() string    { return s.name }
func (s *stubProvider) Available() bool { return s.available }
func (s *stubProvider) Search(ctx context.Context, query string) ([]SearchResult, error) {
	s.calls++
	return s.results, s.err
}

func TestSearchFallsThroughProviders(t *testing.T) {
	broken := &stubProvider{name: "broken", available: true, err: context.DeadlineExceeded}
	missing := &stubProvider{name: "missing", available: false}
	working := &stubProvider{name: "working", available: true, results: []SearchResult{{Title: "hit"}}}
	r := &Registry{providers: []SearchProvider{missing, broken, working}, logger: testLogger()}

	out, err := r.Search(context.Background(), "query")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if out.Provider != "working" || len(out.Results) != 1 {
		t.Fatalf("out = %+v", out)
	}
	if missing.calls != 0 {
		t.Error("unavailable provider was called")
	}
	if broken.calls != 1 {
		t.Error("failing provider was not tried")
	}
}

func TestSearchAllProvidersDown(t *testing.T) {
	r := &Registry{providers: []SearchProvider{&stubProvider{name: "a"}}, logger: testLogger()}
	out, err := r.Search(context.Background(), "query")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(out.Results) != 1 || !strings.Contains(out.Results[0].Title, "unavailable") {
		t.Fatalf("out = %+v", out)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	r := &Registry{logger: testLogger()}
	if _, err := r.Search(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestResearchAllMergesAndDedupes(t *testing.T) {
	first := &stubProvider{name: "brave", available: true, results: []SearchResult{
		{Title: "A", URL: "https://a.example"},
		{Title: "B", URL: "https://b.example"},
	}}
	second := &stubProvider{name: "ddg", available: true, results: []SearchResult{
		{Title: "B again", URL: "https://b.example"},
		{Title: "C", URL: "https://c.example"},
	}}
	broken := &stubProvider{name: "broken", available: true, err: context.DeadlineExceeded}
	r := &Registry{providers: []SearchProvider{first, broken, second}, logger: testLogger()}

	out, err := r.ResearchAll(context.Background(), "query")
	if err != nil {
		t.Fatalf("ResearchAll: %v", err)
	}
	if len(out.Results) != 3 {
		t.Fatalf("results = %d, want 3: %+v", len(out.Results), out.Results)
	}
	if out.Provider != "brave+ddg" {
		t.Errorf("provider = %q", out.Provider)
	}
	if second.calls != 1 || first.calls != 1 {
		t.Error("all available providers should be queried once")
	}
}
