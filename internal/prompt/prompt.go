// Package prompt assembles the system prompt for a chat turn: soul text,
// current context, the protocol block, active skill injections, the skill
// catalogue and the repository section, in that order.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/GuiArSt/kronus/internal/skillset"
)

// protocolBlock carries the always-on operating rules. It is appended to
// every assembled prompt exactly once, in skill mode and legacy mode alike.
const protocolBlock = `## Operating Protocol

- Before creating, updating or deleting any stored record, state what you are about to write and ask the owner to confirm. Read operations need no confirmation.
- Never fabricate repository content. If a section is missing or a lookup fails, say so.
- Answer in markdown. Keep headings shallow and lists tight.
- When a tool returns an error, report the error plainly instead of retrying silently.`

// Identity names the owner inside external systems so the model can file
// work against the right user and team.
type Identity struct {
	LinearUserID string
	LinearTeamID string
}

// Input is everything one turn contributes to the system prompt.
type Input struct {
	SoulText     string
	Now          time.Time
	Identity     Identity
	ActiveSkills []skillset.Skill
	Catalogue    []skillset.Skill
	Repository   string
}

const divider = "\n\n---\n\n"

// Assemble renders the full system prompt.
func Assemble(in Input) string {
	parts := []string{strings.TrimSpace(in.SoulText)}
	parts = append(parts, currentContext(in.Now, in.Identity))
	parts = append(parts, protocolBlock)
	for _, sk := range in.ActiveSkills {
		parts = append(parts, strings.TrimSpace(sk.Content))
	}
	if cat := catalogue(in.Catalogue, in.ActiveSkills); cat != "" {
		parts = append(parts, cat)
	}
	if in.Repository != "" {
		parts = append(parts, in.Repository)
	}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, divider)
}

func currentContext(now time.Time, id Identity) string {
	var b strings.Builder
	b.WriteString("## Current Context\n\n")
	fmt.Fprintf(&b, "- Today is %s.\n", now.Format("Monday, January 2, 2006"))
	if id.LinearUserID != "" {
		fmt.Fprintf(&b, "- Linear user ID: %s\n", id.LinearUserID)
	}
	if id.LinearTeamID != "" {
		fmt.Fprintf(&b, "- Linear team ID: %s\n", id.LinearTeamID)
	}
	return strings.TrimRight(b.String(), "\n")
}

// catalogue lists every registered skill so the model knows what it can
// activate, marking the ones already active this turn.
func catalogue(all, active []skillset.Skill) string {
	if len(all) == 0 {
		return ""
	}
	activeSlugs := make(map[string]bool, len(active))
	for _, sk := range active {
		activeSlugs[sk.Slug] = true
	}
	var b strings.Builder
	b.WriteString("## Available Skills\n\nActivate a skill with the activate_skill tool when its focus matches the conversation; deactivate it when done.\n")
	for _, sk := range all {
		marker := ""
		if activeSlugs[sk.Slug] {
			marker = " [ACTIVE]"
		}
		desc := sk.Description
		if desc == "" {
			desc = sk.Title
		}
		fmt.Fprintf(&b, "\n- `%s`%s: %s", sk.Slug, marker, desc)
	}
	return b.String()
}
