package tools

import "context"

// SearchProvider is the interface every search backend implements.
// Available reports provider-specific readiness, usually whether an API key
// is present.
type SearchProvider interface {
	Name() string
	Available() bool
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// buildProviders returns the provider chain ordered by preference.
// Default order: Brave, Perplexity, DuckDuckGo. A preferred name moves that
// provider to the front.
func buildProviders(braveKey, perplexityKey, preferred string) []SearchProvider {
	providers := []SearchProvider{
		NewBraveProvider(braveKey),
		NewPerplexityProvider(perplexityKey),
		NewDDGProvider(),
	}
	if preferred == "" {
		return providers
	}
	for i, p := range providers {
		if p.Name() == preferred {
			if i == 0 {
				return providers
			}
			reordered := make([]SearchProvider, 0, len(providers))
			reordered = append(reordered, p)
			reordered = append(reordered, providers[:i]...)
			reordered = append(reordered, providers[i+1:]...)
			return reordered
		}
	}
	return providers
}
