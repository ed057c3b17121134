package skillset

import (
	"math/rand"
	"testing"
)

func testSkills() []Skill {
	return []Skill{
		{
			Slug: "deep-journaling",
			Config: SkillConfig{
				Soul:  SoulConfig{JournalEntries: true, Writings: true},
				Tools: ToolsConfig{Journal: true},
			},
		},
		{
			Slug: "project-manager",
			Config: SkillConfig{
				Soul:  SoulConfig{LinearProjects: true, LinearIssues: true},
				Tools: ToolsConfig{Linear: true, Slite: true},
			},
		},
		{
			Slug: "researcher",
			Config: SkillConfig{
				Soul:  SoulConfig{SliteNotes: true},
				Tools: ToolsConfig{WebSearch: true},
			},
		},
	}
}

func TestMergeEmptyEqualsLean(t *testing.T) {
	m := Merge(nil)
	if m.Soul != LeanSoulConfig() {
		t.Fatalf("soul = %+v, want lean baseline", m.Soul)
	}
	if m.Tools != LeanToolsConfig() {
		t.Fatalf("tools = %+v, want lean baseline", m.Tools)
	}
	if !m.Tools.Journal || !m.Tools.Repository {
		t.Fatal("lean baseline must keep journal and repository tools on")
	}
}

func TestMergeOrderIndependent(t *testing.T) {
	skills := testSkills()
	want := Merge(skills)
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]Skill(nil), skills...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		if got := Merge(shuffled); got != want {
			t.Fatalf("shuffle %d: merge = %+v, want %+v", i, got, want)
		}
	}
}

func TestMergeIdempotent(t *testing.T) {
	skills := testSkills()
	doubled := append(append([]Skill(nil), skills...), skills...)
	if got, want := Merge(doubled), Merge(skills); got != want {
		t.Fatalf("duplicated activation changed result: %+v vs %+v", got, want)
	}
}

func TestMergeMonotone(t *testing.T) {
	skills := testSkills()
	prev := Merge(nil)
	for i := 1; i <= len(skills); i++ {
		cur := Merge(skills[:i])
		if widened := prev.Soul.Or(cur.Soul); widened != cur.Soul {
			t.Fatalf("adding skill %d narrowed soul: %+v -> %+v", i, prev.Soul, cur.Soul)
		}
		if widened := prev.Tools.Or(cur.Tools); widened != cur.Tools {
			t.Fatalf("adding skill %d narrowed tools: %+v -> %+v", i, prev.Tools, cur.Tools)
		}
		prev = cur
	}
}

func TestMergeJournalingScenario(t *testing.T) {
	m := Merge(testSkills()[:1])
	if !m.Soul.JournalEntries || !m.Soul.Writings {
		t.Fatalf("soul = %+v, want journal entries and writings enabled", m.Soul)
	}
	if m.Soul.LinearProjects || m.Soul.SliteNotes {
		t.Fatalf("soul = %+v, unrelated categories must stay off", m.Soul)
	}
	if !m.Tools.Journal || !m.Tools.Repository {
		t.Fatalf("tools = %+v, want journal and repository", m.Tools)
	}
	if m.Tools.Linear || m.Tools.WebSearch {
		t.Fatalf("tools = %+v, unrelated groups must stay off", m.Tools)
	}
}

func TestMergeProjectManagerScenario(t *testing.T) {
	skills := testSkills()
	m := Merge([]Skill{skills[1], skills[2]})
	if !m.Soul.LinearProjects || !m.Soul.LinearIssues || !m.Soul.SliteNotes {
		t.Fatalf("soul = %+v, want linear and slite categories", m.Soul)
	}
	if !m.Tools.Linear || !m.Tools.Slite || !m.Tools.WebSearch {
		t.Fatalf("tools = %+v, want linear, slite and web search", m.Tools)
	}
	if m.Soul.JournalEntries {
		t.Fatal("journal entries category leaked into project manager merge")
	}
}

func TestWidenLegacyIsAdditive(t *testing.T) {
	base := Merge(testSkills()[:1])
	widened := base.WidenLegacy(SoulConfig{Education: true}, ToolsConfig{Git: true})
	if !widened.Soul.Education || !widened.Tools.Git {
		t.Fatalf("legacy flags not applied: %+v", widened)
	}
	if !widened.Soul.JournalEntries || !widened.Tools.Journal {
		t.Fatalf("legacy widening dropped skill flags: %+v", widened)
	}
	// All-false legacy configs leave the merge untouched.
	if got := base.WidenLegacy(SoulConfig{}, ToolsConfig{}); got != base {
		t.Fatalf("empty legacy configs changed result: %+v vs %+v", got, base)
	}
}
