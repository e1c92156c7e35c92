package agentconf

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/orgboard/orgboard/pkg/fsys"
	"github.com/orgboard/orgboard/pkg/logger"
)

// Role skill ids: installing or assigning one of these toggles the agent's
// organization type instead of joining the generic assignment list. Role
// state is tracked by which role skill is physically installed, so the
// reserved ids are always stripped from the assigned list to keep the two
// mechanisms from disagreeing.
const (
	RoleManager = "manager"
	RoleIC      = "ic"
)

var roleSkillTypes = map[string]string{
	"og-board-manager": RoleManager,
	"og-board-ic":      RoleIC,
	// legacy aliases kept for documents written by earlier releases
	"og-manager": RoleManager,
	"og-ic":      RoleIC,
}

// RoleForSkill reports whether id is a reserved role skill and, if so,
// which organization type it represents.
func RoleForSkill(id string) (string, bool) {
	role, ok := roleSkillTypes[id]
	return role, ok
}

// Store persists per-agent configuration documents.
type Store struct {
	fs fsys.FileStore
	pr fsys.PathResolver
}

// NewStore creates a store over the given ports.
func NewStore(fs fsys.FileStore, pr fsys.PathResolver) *Store {
	return &Store{fs: fs, pr: pr}
}

// Load reads the document at path. An absent file is not an error: it
// returns (nil, nil) so assignment operations can degrade to a no-op.
func (s *Store) Load(path string) (*Document, error) {
	if !s.fs.Exists(path) {
		return nil, nil
	}
	raw, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, errors.Wrapf(err, "failed to parse agent config %s", path)
	}
	return &doc, nil
}

// Save rewrites the document with 2-space indentation and a trailing newline.
func (s *Store) Save(path string, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode agent config")
	}
	return s.fs.WriteFile(path, string(data)+"\n")
}

// Assign records skillID on the agent document at path. Reserved role skill
// ids set the organization type and strip every reserved id from the
// assigned list; any other id joins the list if absent. An absent document
// is a silent no-op. The return value reports whether the document changed.
func (s *Store) Assign(ctx context.Context, path, skillID string) (bool, error) {
	doc, err := s.Load(path)
	if err != nil {
		return false, err
	}
	if doc == nil {
		logger.G(ctx).WithField("path", path).Debug("agent config absent, skipping assignment")
		return false, nil
	}

	section := ensureSkillsSection(doc)
	changed := false

	if role, ok := RoleForSkill(skillID); ok {
		if doc.Organization == nil {
			doc.Organization = &Organization{}
		}
		if doc.Organization.Type != role {
			doc.Organization.Type = role
			changed = true
		}
		stripped := stripRoleSkills(section.Assigned)
		if len(stripped) != len(section.Assigned) {
			section.Assigned = stripped
			changed = true
		}
	} else if !contains(section.Assigned, skillID) {
		section.Assigned = dedupe(append(section.Assigned, skillID))
		changed = true
	}

	if !changed {
		return false, nil
	}
	return true, s.Save(path, doc)
}

// Unassign removes skillID from the assigned list, reporting whether
// anything changed. An absent document is a silent no-op.
func (s *Store) Unassign(ctx context.Context, path, skillID string) (bool, error) {
	doc, err := s.Load(path)
	if err != nil {
		return false, err
	}
	if doc == nil || doc.Runtime == nil || doc.Runtime.Skills == nil {
		return false, nil
	}

	section := doc.Runtime.Skills
	filtered := make([]string, 0, len(section.Assigned))
	for _, id := range section.Assigned {
		if id != skillID {
			filtered = append(filtered, id)
		}
	}
	if len(filtered) == len(section.Assigned) {
		return false, nil
	}

	section.Assigned = filtered
	return true, s.Save(path, doc)
}

func ensureSkillsSection(doc *Document) *SkillsSection {
	if doc.Runtime == nil {
		doc.Runtime = &Runtime{}
	}
	if doc.Runtime.Skills == nil {
		doc.Runtime.Skills = &SkillsSection{}
	}
	return doc.Runtime.Skills
}

func stripRoleSkills(assigned []string) []string {
	filtered := make([]string, 0, len(assigned))
	for _, id := range assigned {
		if _, ok := RoleForSkill(id); !ok {
			filtered = append(filtered, id)
		}
	}
	return filtered
}

func contains(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
