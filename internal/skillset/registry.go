package skillset

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/GuiArSt/kronus/internal/persistence"
)

// DocumentSource yields the stored skill documents. *persistence.Store
// satisfies it.
type DocumentSource interface {
	ListDocumentsByType(ctx context.Context, docType string) ([]persistence.Document, error)
}

// Registry loads skill documents from storage and resolves slugs to skills.
// A malformed document is logged and skipped; one bad skill never takes the
// catalogue down.
type Registry struct {
	source DocumentSource
	logger *slog.Logger
}

func NewRegistry(source DocumentSource, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{source: source, logger: logger}
}

// LoadAll returns every well-formed skill, ordered by descending priority
// then title. The second return value counts documents excluded for
// malformed metadata.
func (r *Registry) LoadAll(ctx context.Context) ([]Skill, int, error) {
	docs, err := r.source.ListDocumentsByType(ctx, persistence.DocTypeSkill)
	if err != nil {
		return nil, 0, fmt.Errorf("list skill documents: %w", err)
	}
	skills := make([]Skill, 0, len(docs))
	malformed := 0
	for _, doc := range docs {
		cfg, err := ParseMetadata(doc.Metadata)
		if err != nil {
			malformed++
			r.logger.Warn("skipping malformed skill document",
				"doc_id", doc.ID, "title", doc.Title, "error", err.Error())
			continue
		}
		skills = append(skills, Skill{
			Slug:        Slugify(doc.Title),
			Title:       doc.Title,
			Description: doc.Description,
			Content:     doc.Content,
			Config:      cfg,
		})
	}
	sort.SliceStable(skills, func(i, j int) bool {
		if skills[i].Config.Priority != skills[j].Config.Priority {
			return skills[i].Config.Priority > skills[j].Config.Priority
		}
		return skills[i].Title < skills[j].Title
	})
	return skills, malformed, nil
}

// Resolve maps active slugs onto loaded skills, preserving registry order.
// Unknown slugs are reported back so the caller can tell the client.
func Resolve(all []Skill, activeSlugs []string) (active []Skill, unknown []string) {
	want := make(map[string]bool, len(activeSlugs))
	for _, s := range activeSlugs {
		want[Slugify(s)] = true
	}
	for _, sk := range all {
		if want[sk.Slug] {
			active = append(active, sk)
			delete(want, sk.Slug)
		}
	}
	for slug := range want {
		unknown = append(unknown, slug)
	}
	sort.Strings(unknown)
	return active, unknown
}

// Slugify normalizes a skill title into its addressable slug.
func Slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
