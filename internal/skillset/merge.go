package skillset

// Merged is the effective per-turn configuration after folding the active
// skills over the lean baseline.
type Merged struct {
	Soul  SoulConfig
	Tools ToolsConfig
}

// Merge folds the active skills' flags over the lean baseline with a pure
// boolean OR. The fold is commutative and idempotent, so activation order
// and duplicates cannot change the result, and adding a skill can only
// widen it.
func Merge(active []Skill) Merged {
	m := Merged{Soul: LeanSoulConfig(), Tools: LeanToolsConfig()}
	for _, sk := range active {
		m.Soul = m.Soul.Or(sk.Config.Soul)
		m.Tools = m.Tools.Or(sk.Config.Tools)
	}
	return m
}

// WidenLegacy applies a legacy-mode request's explicit configs on top of a
// merged result. Legacy configs are additive: they can enable more, never
// switch off what a skill enabled.
func (m Merged) WidenLegacy(soul SoulConfig, tools ToolsConfig) Merged {
	return Merged{Soul: m.Soul.Or(soul), Tools: m.Tools.Or(tools)}
}
