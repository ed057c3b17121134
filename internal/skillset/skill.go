package skillset

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// MetadataType marks a stored skill document's metadata as a skill record.
const MetadataType = "kronus-skill"

// Skill is a stored capability package: a markdown body injected verbatim
// into the system prompt while active, plus the capability flags the skill
// contributes to the merged configuration.
type Skill struct {
	Slug        string
	Title       string
	Description string
	Content     string
	Config      SkillConfig
}

// SkillConfig is the declarative half of a skill document's metadata.
// Soul and Tools are partial records: absent flags default to false and
// contribute nothing to the merge.
type SkillConfig struct {
	Soul     SoulConfig  `json:"soulConfig"`
	Tools    ToolsConfig `json:"toolsConfig"`
	Icon     string      `json:"icon,omitempty"`
	Color    string      `json:"color,omitempty"`
	Priority int         `json:"priority,omitempty"`
}

type skillMetadata struct {
	Type        string      `json:"type"`
	SkillConfig SkillConfig `json:"skillConfig"`
}

// metadataSchema constrains the envelope shape. Flag fields are validated
// structurally by json.Unmarshal; the schema rejects the cases Unmarshal
// would silently accept, such as a non-object skillConfig arriving as null.
const metadataSchema = `{
  "type": "object",
  "required": ["type"],
  "properties": {
    "type": {"const": "kronus-skill"},
    "skillConfig": {
      "type": "object",
      "properties": {
        "soulConfig": {"type": "object"},
        "toolsConfig": {"type": "object"},
        "icon": {"type": "string"},
        "color": {"type": "string"},
        "priority": {"type": "integer"}
      }
    }
  }
}`

var compiledMetadataSchema = mustCompileMetadataSchema()

func mustCompileMetadataSchema() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(metadataSchema))
	if err != nil {
		panic(fmt.Sprintf("unmarshal skill metadata schema: %v", err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("skill-metadata.json", doc); err != nil {
		panic(fmt.Sprintf("add skill metadata schema: %v", err))
	}
	s, err := c.Compile("skill-metadata.json")
	if err != nil {
		panic(fmt.Sprintf("compile skill metadata schema: %v", err))
	}
	return s
}

// ParseMetadata decodes and validates a skill document's metadata blob.
// A document whose metadata fails here is not a skill and must be excluded
// from the registry rather than aborting the whole load.
func ParseMetadata(raw string) (SkillConfig, error) {
	if strings.TrimSpace(raw) == "" {
		return SkillConfig{}, fmt.Errorf("skill metadata is empty")
	}
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
	if err != nil {
		return SkillConfig{}, fmt.Errorf("parse skill metadata: %w", err)
	}
	if err := compiledMetadataSchema.Validate(doc); err != nil {
		return SkillConfig{}, fmt.Errorf("validate skill metadata: %w", err)
	}
	var meta skillMetadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return SkillConfig{}, fmt.Errorf("decode skill metadata: %w", err)
	}
	return meta.SkillConfig, nil
}
