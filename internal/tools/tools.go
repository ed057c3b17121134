// Package tools defines every Genkit tool the assistant can call and the
// per-turn selection that maps a merged tools config onto tool refs.
package tools

import (
	"log/slog"
	"sort"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/GuiArSt/kronus/internal/persistence"
	"github.com/GuiArSt/kronus/internal/skillset"
)

// Registry holds all tool definitions, grouped by the capability flag that
// exposes them. Tools are defined once against the Genkit instance at
// startup; Build picks per turn.
type Registry struct {
	store      *persistence.Store
	logger     *slog.Logger
	providers  []SearchProvider
	executor   Executor
	gitRepos   map[string]string
	skills     *skillset.Registry
	policy     StatePolicy
	imagesPath string

	groups map[string][]ai.ToolRef
	always []ai.ToolRef
}

// StatePolicy mirrors the Linear state filters used by the repository
// loader so listing tools show the same slice of the mirror.
type StatePolicy struct {
	ExcludedStates  []string
	CompletedStates []string
}

// Options configures registry construction.
type Options struct {
	Store           *persistence.Store
	Logger          *slog.Logger
	Skills          *skillset.Registry
	BraveAPIKey     string
	PerplexityKey   string
	PreferredSearch string
	GitRepos        map[string]string
	Executor        Executor
	Policy          StatePolicy
	ImagesDir       string
}

func NewRegistry(opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Executor == nil {
		opts.Executor = &HostExecutor{}
	}
	return &Registry{
		store:      opts.Store,
		logger:     opts.Logger,
		providers:  buildProviders(opts.BraveAPIKey, opts.PerplexityKey, opts.PreferredSearch),
		executor:   opts.Executor,
		gitRepos:   opts.GitRepos,
		skills:     opts.Skills,
		policy:     opts.Policy,
		imagesPath: opts.ImagesDir,
	}
}

// RegisterAll defines every tool against the Genkit instance. Call once at
// startup; Genkit rejects duplicate definitions.
func (r *Registry) RegisterAll(g *genkit.Genkit) {
	r.groups = map[string][]ai.ToolRef{
		"journal":         registerJournalTools(g, r),
		"repository":      registerRepositoryTools(g, r),
		"linear":          registerLinearTools(g, r),
		"slite":           registerSliteTools(g, r),
		"git":             registerGitTools(g, r),
		"media":           registerMediaTools(g, r),
		"imageGeneration": registerImageTools(g, r),
		"webSearch":       {registerSearch(g, r), registerAsk(g, r), registerResearch(g, r)},
	}
	r.always = registerSkillTools(g, r)
}

// Build returns the tool refs for one turn: the groups the merged config
// enables plus the always-on skill management tools.
func (r *Registry) Build(cfg skillset.ToolsConfig) []ai.ToolRef {
	enabled := map[string]bool{
		"journal":         cfg.Journal,
		"repository":      cfg.Repository,
		"linear":          cfg.Linear,
		"slite":           cfg.Slite,
		"git":             cfg.Git,
		"media":           cfg.Media,
		"imageGeneration": cfg.ImageGeneration,
		"webSearch":       cfg.WebSearch,
	}
	names := make([]string, 0, len(enabled))
	for name, on := range enabled {
		if on {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	var out []ai.ToolRef
	for _, name := range names {
		out = append(out, r.groups[name]...)
	}
	out = append(out, r.always...)
	return out
}

// GroupNames lists the selectable groups, for diagnostics.
func (r *Registry) GroupNames() []string {
	names := make([]string, 0, len(r.groups))
	for name := range r.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
