// Package skills implements the skill package model: discovery of skill
// directories, frontmatter parsing, precedence merging across scope layers,
// and assembly of a budget-bounded prompt block for model consumption.
// Skills are packaged as directories containing a SKILL.md file with a
// frontmatter header describing the skill's purpose and instructions.
package skills

// DefinitionFileName is the definition file expected inside every skill directory.
const DefinitionFileName = "SKILL.md"

// Source identifies the scope layer a skill record was discovered in.
type Source string

const (
	// SourceManaged marks skills from the global or agent-scoped stores.
	SourceManaged Source = "managed"
	// SourceExtra marks skills from externally configured directories.
	SourceExtra Source = "extra"
)

// Record is a normalized skill as discovered on disk. Records are
// reconstructed on every read and never cached across calls.
type Record struct {
	ID                 string // canonical slug, unique within a merged result
	Name               string // display name
	Description        string
	Source             Source
	Dir                string // owning directory
	DefinitionFilePath string
	Content            string // body text, trimmed
	Frontmatter        Metadata
}

// Metadata is the parsed frontmatter of a skill definition document.
// Boolean fields are tri-state: nil means the key was absent or carried
// a value other than the literal true/false.
type Metadata struct {
	Name                   string `yaml:"name,omitempty"`
	Description            string `yaml:"description,omitempty"`
	Enabled                *bool  `yaml:"enabled,omitempty"`
	UserInvocable          *bool  `yaml:"user-invocable,omitempty"`
	DisableModelInvocation *bool  `yaml:"disable-model-invocation,omitempty"`
}
