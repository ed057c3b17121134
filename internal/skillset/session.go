package skillset

import (
	"context"
	"sort"
	"sync"
)

// Session is the per-conversation set of active skill slugs. Tool handlers
// mutate it mid-turn; the change takes effect when the next turn assembles
// its prompt and tool set.
type Session struct {
	mu     sync.Mutex
	active map[string]bool
}

func NewSession(activeSlugs []string) *Session {
	s := &Session{active: make(map[string]bool, len(activeSlugs))}
	for _, slug := range activeSlugs {
		s.active[Slugify(slug)] = true
	}
	return s
}

// Activate marks a slug active. Reports whether it was newly added.
func (s *Session) Activate(slug string) bool {
	slug = Slugify(slug)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[slug] {
		return false
	}
	s.active[slug] = true
	return true
}

// Deactivate removes a slug. Reports whether it was active.
func (s *Session) Deactivate(slug string) bool {
	slug = Slugify(slug)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active[slug] {
		return false
	}
	delete(s.active, slug)
	return true
}

// Slugs returns the active set sorted for stable round-tripping.
func (s *Session) Slugs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.active))
	for slug := range s.active {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}

type sessionKeyType struct{}

var sessionKey = sessionKeyType{}

// WithSession attaches the session to a turn's context so tool handlers can
// reach it.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFrom returns the attached session, or nil.
func SessionFrom(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey).(*Session)
	return s
}
