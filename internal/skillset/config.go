// Package skillset implements the skill-based context assembly model:
// capability flag records, the stored skill registry, and the OR-merge
// that folds active skills into one effective configuration per chat turn.
package skillset

// SoulConfig enumerates the knowledge categories that may be rendered into
// the repository section of the system prompt. Adding a category means
// adding one field here plus one loader branch; the record is deliberately
// a closed struct, not an open map.
type SoulConfig struct {
	Writings               bool `json:"writings"`
	PortfolioProjects      bool `json:"portfolioProjects"`
	Skills                 bool `json:"skills"`
	WorkExperience         bool `json:"workExperience"`
	Education              bool `json:"education"`
	JournalEntries         bool `json:"journalEntries"`
	LinearProjects         bool `json:"linearProjects"`
	LinearIssues           bool `json:"linearIssues"`
	LinearIncludeCompleted bool `json:"linearIncludeCompleted"`
	SliteNotes             bool `json:"sliteNotes"`
}

// ToolsConfig enumerates the tool groups that may be exposed to the model.
type ToolsConfig struct {
	Journal         bool `json:"journal"`
	Repository      bool `json:"repository"`
	Linear          bool `json:"linear"`
	Slite           bool `json:"slite"`
	Git             bool `json:"git"`
	Media           bool `json:"media"`
	ImageGeneration bool `json:"imageGeneration"`
	WebSearch       bool `json:"webSearch"`
}

// LeanSoulConfig is the baseline soul config: no knowledge sections.
func LeanSoulConfig() SoulConfig {
	return SoulConfig{}
}

// LeanToolsConfig is the baseline tools config: journal and repository only.
func LeanToolsConfig() ToolsConfig {
	return ToolsConfig{Journal: true, Repository: true}
}

// Or returns the field-wise boolean OR of two soul configs.
func (c SoulConfig) Or(o SoulConfig) SoulConfig {
	return SoulConfig{
		Writings:               c.Writings || o.Writings,
		PortfolioProjects:      c.PortfolioProjects || o.PortfolioProjects,
		Skills:                 c.Skills || o.Skills,
		WorkExperience:         c.WorkExperience || o.WorkExperience,
		Education:              c.Education || o.Education,
		JournalEntries:         c.JournalEntries || o.JournalEntries,
		LinearProjects:         c.LinearProjects || o.LinearProjects,
		LinearIssues:           c.LinearIssues || o.LinearIssues,
		LinearIncludeCompleted: c.LinearIncludeCompleted || o.LinearIncludeCompleted,
		SliteNotes:             c.SliteNotes || o.SliteNotes,
	}
}

// Or returns the field-wise boolean OR of two tools configs.
func (c ToolsConfig) Or(o ToolsConfig) ToolsConfig {
	return ToolsConfig{
		Journal:         c.Journal || o.Journal,
		Repository:      c.Repository || o.Repository,
		Linear:          c.Linear || o.Linear,
		Slite:           c.Slite || o.Slite,
		Git:             c.Git || o.Git,
		Media:           c.Media || o.Media,
		ImageGeneration: c.ImageGeneration || o.ImageGeneration,
		WebSearch:       c.WebSearch || o.WebSearch,
	}
}

// Any reports whether at least one category is enabled.
func (c SoulConfig) Any() bool {
	return c != SoulConfig{}
}
