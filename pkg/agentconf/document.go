// Package agentconf reads and writes the per-agent configuration document:
// which skills are assigned, organizational role metadata, and the resolved
// skills configuration consumed by the skill engine. The document is a JSON
// file rewritten with 2-space indentation and a trailing newline on every
// mutation.
package agentconf

import "github.com/orgboard/orgboard/pkg/skills"

// Document is the persisted per-agent configuration.
type Document struct {
	Name         string        `json:"name,omitempty"`
	Organization *Organization `json:"organization,omitempty"`
	Runtime      *Runtime      `json:"runtime,omitempty"`
}

// Organization holds the agent's organizational metadata.
type Organization struct {
	Type string `json:"type,omitempty"`
}

// Runtime nests the runtime configuration sections.
type Runtime struct {
	Skills *SkillsSection `json:"skills,omitempty"`
}

// SkillsSection is the raw skills configuration as persisted. All fields are
// optional; ResolveSkillsConfig applies defaults once at the boundary.
type SkillsSection struct {
	Enabled        *bool          `json:"enabled,omitempty"`
	Assigned       []string       `json:"assigned,omitempty"`
	IncludeManaged *bool          `json:"includeManaged,omitempty"`
	Load           *LoadSection   `json:"load,omitempty"`
	Prompt         *PromptSection `json:"prompt,omitempty"`
}

// LoadSection configures extra skill directories merged after the stores.
type LoadSection struct {
	ExtraDirs []string `json:"extraDirs,omitempty"`
}

// PromptSection overrides the prompt budget.
type PromptSection struct {
	MaxSkills        *int  `json:"maxSkills,omitempty"`
	MaxCharsPerSkill *int  `json:"maxCharsPerSkill,omitempty"`
	MaxTotalChars    *int  `json:"maxTotalChars,omitempty"`
	IncludeContent   *bool `json:"includeContent,omitempty"`
}

// SkillsConfig is the fully resolved skills configuration.
type SkillsConfig struct {
	Enabled        bool
	Assigned       []string
	IncludeManaged bool
	ExtraDirs      []string
	Prompt         skills.PromptBudget
}

const (
	defaultMaxSkills        = 20
	defaultMaxCharsPerSkill = 1000
	defaultMaxTotalChars    = 12000
)

// ResolveSkillsConfig merges the persisted section with defaults. A nil
// document or missing section yields the full default configuration:
// skills enabled, managed store included, no assignment filter, and a
// content-free prompt budget.
func ResolveSkillsConfig(doc *Document) SkillsConfig {
	cfg := SkillsConfig{
		Enabled:        true,
		IncludeManaged: true,
		Prompt: skills.PromptBudget{
			MaxSkills:        defaultMaxSkills,
			MaxCharsPerSkill: defaultMaxCharsPerSkill,
			MaxTotalChars:    defaultMaxTotalChars,
		},
	}

	if doc == nil || doc.Runtime == nil || doc.Runtime.Skills == nil {
		return cfg
	}
	section := doc.Runtime.Skills

	if section.Enabled != nil {
		cfg.Enabled = *section.Enabled
	}
	if section.IncludeManaged != nil {
		cfg.IncludeManaged = *section.IncludeManaged
	}
	cfg.Assigned = append(cfg.Assigned, section.Assigned...)
	if section.Load != nil {
		cfg.ExtraDirs = append(cfg.ExtraDirs, section.Load.ExtraDirs...)
	}
	if section.Prompt != nil {
		if section.Prompt.MaxSkills != nil {
			cfg.Prompt.MaxSkills = *section.Prompt.MaxSkills
		}
		if section.Prompt.MaxCharsPerSkill != nil {
			cfg.Prompt.MaxCharsPerSkill = *section.Prompt.MaxCharsPerSkill
		}
		if section.Prompt.MaxTotalChars != nil {
			cfg.Prompt.MaxTotalChars = *section.Prompt.MaxTotalChars
		}
		if section.Prompt.IncludeContent != nil {
			cfg.Prompt.IncludeContent = *section.Prompt.IncludeContent
		}
	}

	return cfg
}
