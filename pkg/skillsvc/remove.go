package skillsvc

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/orgboard/orgboard/pkg/audit"
	"github.com/orgboard/orgboard/pkg/logger"
	"github.com/orgboard/orgboard/pkg/skills"
	"github.com/orgboard/orgboard/pkg/telemetry"
)

// RemoveResult reports which pieces of state a removal actually touched.
type RemoveResult struct {
	Scope                 Scope
	SkillID               string
	RemovedFromGlobal     bool
	RemovedFromAgentStore bool
	Unassigned            bool
	WorkspacePathsRemoved []string
}

// Remove deletes a skill from the targeted store. For agent scope it also
// drops the assignment and removes workspace mirrors. Absent pieces are
// reported false rather than failing.
func (s *Service) Remove(ctx context.Context, scope Scope, agentID, skillName string) (*RemoveResult, error) {
	var result *RemoveResult
	err := telemetry.WithSpan(ctx, "skills.remove", func(ctx context.Context) error {
		var err error
		result, err = s.remove(ctx, scope, agentID, skillName)
		return err
	}, attribute.String("skill.scope", string(scope)), attribute.String("agent.id", agentID))
	return result, err
}

func (s *Service) remove(ctx context.Context, scope Scope, agentID, skillName string) (*RemoveResult, error) {
	if err := validateScope(scope, agentID); err != nil {
		return nil, err
	}
	skillID := skills.NormalizeID(skillName)
	if skillID == "" {
		return nil, errors.Errorf("invalid skill name %q: must contain at least one alphanumeric character", skillName)
	}

	result := &RemoveResult{Scope: scope, SkillID: skillID}

	if scope == ScopeGlobal {
		globalDir := s.pr.Join(s.layout.GlobalSkillsDir(), skillID)
		if s.fs.Exists(globalDir) {
			if err := s.fs.RemoveDir(globalDir); err != nil {
				return nil, err
			}
			result.RemovedFromGlobal = true
		}
	} else {
		agentDir := s.pr.Join(s.layout.AgentSkillsDir(agentID), skillID)
		if s.fs.Exists(agentDir) {
			if err := s.fs.RemoveDir(agentDir); err != nil {
				return nil, err
			}
			result.RemovedFromAgentStore = true
		}

		unassigned, err := s.conf.Unassign(ctx, s.layout.AgentConfigPath(agentID), skillID)
		if err != nil {
			return nil, err
		}
		result.Unassigned = unassigned

		removed, err := s.sync.Remove(ctx, s.layout.WorkspaceRoot(agentID), skillID, s.workspaceDirs)
		result.WorkspacePathsRemoved = removed
		if err != nil {
			logger.G(ctx).WithError(err).WithField("skill", skillID).Warn("workspace mirror removal incomplete")
		}
	}

	s.record(ctx, audit.Event{
		Operation: audit.OpRemove,
		Scope:     string(scope),
		AgentID:   agentID,
		SkillID:   skillID,
	})

	return result, nil
}

// Unassign removes a skill from an agent's assignment list and deletes its
// workspace mirrors, leaving store copies untouched.
func (s *Service) Unassign(ctx context.Context, agentID, skillName string) (*RemoveResult, error) {
	var result *RemoveResult
	err := telemetry.WithSpan(ctx, "skills.unassign", func(ctx context.Context) error {
		skillID := skills.NormalizeID(skillName)
		if skillID == "" {
			return errors.Errorf("invalid skill name %q: must contain at least one alphanumeric character", skillName)
		}
		if agentID == "" {
			return errors.New("agent id is required")
		}

		result = &RemoveResult{Scope: ScopeAgent, SkillID: skillID}

		unassigned, err := s.conf.Unassign(ctx, s.layout.AgentConfigPath(agentID), skillID)
		if err != nil {
			return err
		}
		result.Unassigned = unassigned

		removed, err := s.sync.Remove(ctx, s.layout.WorkspaceRoot(agentID), skillID, s.workspaceDirs)
		result.WorkspacePathsRemoved = removed
		if err != nil {
			logger.G(ctx).WithError(err).WithField("skill", skillID).Warn("workspace mirror removal incomplete")
		}

		s.record(ctx, audit.Event{
			Operation: audit.OpUnassign,
			Scope:     string(ScopeAgent),
			AgentID:   agentID,
			SkillID:   skillID,
		})
		return nil
	}, attribute.String("agent.id", agentID))
	return result, err
}
