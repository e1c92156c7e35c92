package install

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/orgboard/orgboard/pkg/skills"
)

// resolveInline stages caller-provided content, or a generated placeholder
// document when no content was given, into a temporary source directory so
// the install path consumes it exactly like any other resolved source.
func (r *Resolver) resolveInline(source InlineSource) (Resolved, error) {
	document := source.Content
	if document == "" {
		generated, err := GenerateDocument(source.Name, source.Description)
		if err != nil {
			return Resolved{}, err
		}
		document = generated
	}
	if !strings.HasSuffix(document, "\n") {
		document += "\n"
	}

	stagingDir, err := r.mkTemp("orgboard-skill-staging-*")
	if err != nil {
		return Resolved{}, errors.Wrap(err, "failed to create staging directory")
	}
	cleanup := func() error { return r.fs.RemoveDir(stagingDir) }

	if err := r.fs.WriteFile(r.pr.Join(stagingDir, skills.DefinitionFileName), document); err != nil {
		cleanup()
		return Resolved{}, err
	}

	return Resolved{Kind: KindGenerated, Dir: stagingDir, Cleanup: cleanup}, nil
}

// GenerateDocument renders a minimal templated skill definition with a
// frontmatter header and a placeholder body.
func GenerateDocument(name, description string) (string, error) {
	displayName := name
	if displayName == "" {
		displayName = "New Skill"
	}
	if description == "" {
		description = noDescriptionPlaceholder
	}

	meta, err := yaml.Marshal(skills.Metadata{Name: displayName, Description: description})
	if err != nil {
		return "", errors.Wrap(err, "failed to render skill frontmatter")
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(meta)
	sb.WriteString("---\n\n")
	fmt.Fprintf(&sb, "# %s\n\n", displayName)
	sb.WriteString("Describe when this skill applies and the steps an agent should follow.\n")
	return sb.String(), nil
}

const noDescriptionPlaceholder = "No description provided."
