package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

type SearchInput struct {
	Query string `json:"query"`
}

type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

type SearchOutput struct {
	Results  []SearchResult `json:"results"`
	Provider string         `json:"provider,omitempty"`
}

func registerSearch(g *genkit.Genkit, r *Registry) ai.ToolRef {
	return genkit.DefineTool(g, "web_search",
		"Search the web for current information. Returns results with titles, URLs and snippets.",
		func(ctx *ai.ToolContext, input SearchInput) (SearchOutput, error) {
			return r.Search(ctx, input.Query)
		},
	)
}

type AskOutput struct {
	Answer   string         `json:"answer"`
	Sources  []SearchResult `json:"sources,omitempty"`
	Provider string         `json:"provider,omitempty"`
}

// registerAsk wraps the search chain as a direct-answer tool. Perplexity
// returns a synthesized answer as the first result; other providers fall
// back to the top snippet.
func registerAsk(g *genkit.Genkit, r *Registry) ai.ToolRef {
	return genkit.DefineTool(g, "ask",
		"Ask the web a question and get a single synthesized answer with sources. Prefer this over web_search when you need an answer, not a list of pages.",
		func(ctx *ai.ToolContext, input SearchInput) (AskOutput, error) {
			out, err := r.Search(ctx, input.Query)
			if err != nil {
				return AskOutput{}, err
			}
			if len(out.Results) == 0 {
				return AskOutput{Answer: "No answer found.", Provider: out.Provider}, nil
			}
			return AskOutput{
				Answer:   out.Results[0].Snippet,
				Sources:  out.Results[1:],
				Provider: out.Provider,
			}, nil
		},
	)
}

// registerResearch queries every available provider and merges the result
// lists, deduplicated by URL. Slower and broader than web_search.
func registerResearch(g *genkit.Genkit, r *Registry) ai.ToolRef {
	return genkit.DefineTool(g, "research",
		"Research a topic across all configured search providers and return merged results. Use for broad surveys; use web_search for a quick lookup.",
		func(ctx *ai.ToolContext, input SearchInput) (SearchOutput, error) {
			return r.ResearchAll(ctx, input.Query)
		},
	)
}

// ResearchAll fans the query out to every available provider and merges
// results. Provider failures are logged and skipped; only a fully dark
// chain yields the unavailable placeholder.
func (r *Registry) ResearchAll(ctx context.Context, query string) (SearchOutput, error) {
	if query == "" {
		return SearchOutput{}, fmt.Errorf("empty search query")
	}
	seen := make(map[string]bool)
	var merged []SearchResult
	var names []string
	for _, p := range r.providers {
		if !p.Available() {
			continue
		}
		results, err := p.Search(ctx, query)
		if err != nil {
			r.logger.Warn("research provider failed, skipping", "provider", p.Name(), "error", err.Error())
			continue
		}
		names = append(names, p.Name())
		for _, res := range results {
			if res.URL != "" && seen[res.URL] {
				continue
			}
			seen[res.URL] = true
			merged = append(merged, res)
		}
	}
	if len(names) == 0 {
		return SearchOutput{Results: []SearchResult{{
			Title:   "Search unavailable",
			Snippet: fmt.Sprintf("Could not research %q. Set BRAVE_API_KEY or PERPLEXITY_API_KEY to enable a provider.", query),
		}}}, nil
	}
	return SearchOutput{Provider: strings.Join(names, "+"), Results: merged}, nil
}

// Search routes a query through the ordered provider list: skip providers
// without credentials, fall through on error, first success wins.
func (r *Registry) Search(ctx context.Context, query string) (SearchOutput, error) {
	if query == "" {
		return SearchOutput{}, fmt.Errorf("empty search query")
	}
	for _, p := range r.providers {
		if !p.Available() {
			continue
		}
		results, err := p.Search(ctx, query)
		if err != nil {
			r.logger.Warn("search provider failed, trying next", "provider", p.Name(), "error", err.Error())
			continue
		}
		if len(results) == 0 {
			return SearchOutput{Provider: p.Name(), Results: []SearchResult{{
				Title:   "No results found",
				Snippet: fmt.Sprintf("No results found for %q.", query),
			}}}, nil
		}
		return SearchOutput{Provider: p.Name(), Results: results}, nil
	}
	return SearchOutput{Results: []SearchResult{{
		Title:   "Search unavailable",
		Snippet: fmt.Sprintf("Could not search for %q. Set BRAVE_API_KEY or PERPLEXITY_API_KEY to enable a provider.", query),
	}}}, nil
}
