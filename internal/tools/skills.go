package tools

import (
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/GuiArSt/kronus/internal/skillset"
)

type ActivateSkillInput struct {
	Skill string `json:"skill"` // slug or title
}

type SkillToggleOutput struct {
	Skill        string   `json:"skill"`
	Changed      bool     `json:"changed"`
	ActiveSkills []string `json:"active_skills"`
	Note         string   `json:"note,omitempty"`
}

// registerSkillTools defines activate_skill and deactivate_skill. They are
// part of every tool set, whatever the merged config says, so the model can
// always adjust its own capabilities. A toggle lands on the next turn: the
// current prompt and tool set stay as assembled.
func registerSkillTools(g *genkit.Genkit, r *Registry) []ai.ToolRef {
	activate := genkit.DefineTool(g, "activate_skill",
		"Activate a skill from the Available Skills list by slug. The skill's context and tools become available from the next message on.",
		func(ctx *ai.ToolContext, input ActivateSkillInput) (SkillToggleOutput, error) {
			session := skillset.SessionFrom(ctx)
			if session == nil {
				return SkillToggleOutput{}, fmt.Errorf("no active conversation session")
			}
			slug := skillset.Slugify(input.Skill)
			if slug == "" {
				return SkillToggleOutput{}, fmt.Errorf("skill must be non-empty")
			}
			all, _, err := r.skills.LoadAll(ctx)
			if err != nil {
				return SkillToggleOutput{}, fmt.Errorf("load skill catalogue: %w", err)
			}
			if _, unknown := skillset.Resolve(all, []string{slug}); len(unknown) > 0 {
				return SkillToggleOutput{}, fmt.Errorf("unknown skill %q, available: %s", slug, strings.Join(slugsOf(all), ", "))
			}
			changed := session.Activate(slug)
			note := "active from the next message"
			if !changed {
				note = "already active"
			}
			return SkillToggleOutput{
				Skill: slug, Changed: changed, ActiveSkills: session.Slugs(), Note: note,
			}, nil
		},
	)

	deactivate := genkit.DefineTool(g, "deactivate_skill",
		"Deactivate a previously activated skill by slug.",
		func(ctx *ai.ToolContext, input ActivateSkillInput) (SkillToggleOutput, error) {
			session := skillset.SessionFrom(ctx)
			if session == nil {
				return SkillToggleOutput{}, fmt.Errorf("no active conversation session")
			}
			slug := skillset.Slugify(input.Skill)
			changed := session.Deactivate(slug)
			note := "inactive from the next message"
			if !changed {
				note = "was not active"
			}
			return SkillToggleOutput{
				Skill: slug, Changed: changed, ActiveSkills: session.Slugs(), Note: note,
			}, nil
		},
	)

	return []ai.ToolRef{activate, deactivate}
}

func slugsOf(skills []skillset.Skill) []string {
	out := make([]string, 0, len(skills))
	for _, sk := range skills {
		out = append(out, sk.Slug)
	}
	return out
}
