package skillsvc

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/orgboard/orgboard/pkg/audit"
	"github.com/orgboard/orgboard/pkg/install"
	"github.com/orgboard/orgboard/pkg/logger"
	"github.com/orgboard/orgboard/pkg/skills"
	"github.com/orgboard/orgboard/pkg/telemetry"
)

// InstallRequest describes a skill installation. SourcePath and SourceURL
// are mutually exclusive; with neither set and no inline content, the
// request reuses an existing global copy when one exists, or generates a
// templated placeholder.
type InstallRequest struct {
	Scope           Scope
	AgentID         string
	SkillName       string
	SourcePath      string
	SourceURL       string
	Content         string
	Description     string
	SourceSkillName string // hint for remote repository resolution
}

// InstallResult reports what an install actually did.
type InstallResult struct {
	Scope                 Scope
	SkillID               string
	SourceKind            install.Kind
	InstalledPath         string
	WorkspaceInstallPaths []string
	Replaced              bool
}

// Install resolves the request's source, swaps it into the target store,
// and, for agent scope, performs assignment bookkeeping and workspace
// mirroring. Store failures abort before any side effects; mirror failures
// after a successful store write are logged, not rolled back.
func (s *Service) Install(ctx context.Context, req InstallRequest) (*InstallResult, error) {
	var result *InstallResult
	err := telemetry.WithSpan(ctx, "skills.install", func(ctx context.Context) error {
		var err error
		result, err = s.install(ctx, req)
		return err
	}, attribute.String("skill.scope", string(req.Scope)), attribute.String("agent.id", req.AgentID))
	return result, err
}

func (s *Service) install(ctx context.Context, req InstallRequest) (*InstallResult, error) {
	if err := validateScope(req.Scope, req.AgentID); err != nil {
		return nil, err
	}
	if req.SourcePath != "" && req.SourceURL != "" {
		return nil, errors.New("sourcePath and sourceUrl are mutually exclusive")
	}

	skillID := skills.NormalizeID(req.SkillName)
	if skillID == "" {
		return nil, errors.Errorf("invalid skill name %q: must contain at least one alphanumeric character", req.SkillName)
	}

	source := s.chooseSource(req, skillID)

	resolved, err := s.resolver.Resolve(ctx, source)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cleanupErr := resolved.Cleanup(); cleanupErr != nil {
			logger.G(ctx).WithError(cleanupErr).Warn("failed to clean up install source")
		}
	}()

	result := &InstallResult{
		Scope:      req.Scope,
		SkillID:    skillID,
		SourceKind: resolved.Kind,
	}

	mirrorSource := resolved.Dir
	if resolved.Kind == install.KindManaged {
		// Reuse of the global copy: nothing to write into the store.
		result.InstalledPath = s.pr.Join(resolved.Dir, skills.DefinitionFileName)
	} else {
		target := s.storeDir(req.Scope, req.AgentID, skillID)
		result.Replaced = s.fs.Exists(target)

		if err := s.fs.RemoveDir(target); err != nil {
			return nil, err
		}
		if err := s.fs.CopyDir(resolved.Dir, target); err != nil {
			return nil, err
		}
		result.InstalledPath = s.pr.Join(target, skills.DefinitionFileName)
		mirrorSource = target
	}

	if req.Scope == ScopeAgent {
		if _, err := s.conf.Assign(ctx, s.layout.AgentConfigPath(req.AgentID), skillID); err != nil {
			return nil, err
		}

		written, err := s.sync.Sync(ctx, mirrorSource, s.layout.WorkspaceRoot(req.AgentID), skillID, s.workspaceDirs)
		result.WorkspaceInstallPaths = written
		if err != nil {
			// The canonical store write already succeeded; mirrors are
			// best-effort and not rolled back.
			logger.G(ctx).WithError(err).WithField("skill", skillID).Warn("workspace mirroring incomplete")
		}
	}

	s.record(ctx, audit.Event{
		Operation:  audit.OpInstall,
		Scope:      string(req.Scope),
		AgentID:    req.AgentID,
		SkillID:    skillID,
		SourceKind: string(resolved.Kind),
		Replaced:   result.Replaced,
	})

	return result, nil
}

// chooseSource maps the request onto the install source union.
func (s *Service) chooseSource(req InstallRequest, skillID string) install.Source {
	switch {
	case req.SourcePath != "":
		return install.PathSource{Path: req.SourcePath}
	case req.SourceURL != "":
		hint := req.SourceSkillName
		if hint == "" {
			hint = req.SkillName
		}
		return install.URLSource{URL: req.SourceURL, SkillHint: hint}
	case req.Content != "":
		return install.InlineSource{Name: req.SkillName, Description: req.Description, Content: req.Content}
	}

	// No source given: an agent-scoped install of a skill that already
	// exists globally reuses the global copy instead of generating a
	// placeholder.
	if req.Scope == ScopeAgent {
		globalDir := s.pr.Join(s.layout.GlobalSkillsDir(), skillID)
		if s.fs.Exists(s.pr.Join(globalDir, skills.DefinitionFileName)) {
			return install.ManagedSource{Dir: globalDir}
		}
	}
	return install.InlineSource{Name: req.SkillName, Description: req.Description}
}

func (s *Service) storeDir(scope Scope, agentID, skillID string) string {
	if scope == ScopeAgent {
		return s.pr.Join(s.layout.AgentSkillsDir(agentID), skillID)
	}
	return s.pr.Join(s.layout.GlobalSkillsDir(), skillID)
}

func validateScope(scope Scope, agentID string) error {
	switch scope {
	case ScopeGlobal:
		return nil
	case ScopeAgent:
		if agentID == "" {
			return errors.New("agent id is required for agent scope")
		}
		return nil
	default:
		return errors.Errorf("invalid scope %q", scope)
	}
}

// Assign makes an already-installed skill available to an agent: it must
// exist in the agent's store or the global store, is recorded on the
// agent's document (with role reconciliation), and is mirrored into the
// agent's workspace.
func (s *Service) Assign(ctx context.Context, agentID, skillName string) ([]string, error) {
	var written []string
	err := telemetry.WithSpan(ctx, "skills.assign", func(ctx context.Context) error {
		skillID := skills.NormalizeID(skillName)
		if skillID == "" {
			return errors.Errorf("invalid skill name %q: must contain at least one alphanumeric character", skillName)
		}
		if agentID == "" {
			return errors.New("agent id is required")
		}

		sourceDir := s.pr.Join(s.layout.AgentSkillsDir(agentID), skillID)
		if !s.fs.Exists(s.pr.Join(sourceDir, skills.DefinitionFileName)) {
			sourceDir = s.pr.Join(s.layout.GlobalSkillsDir(), skillID)
			if !s.fs.Exists(s.pr.Join(sourceDir, skills.DefinitionFileName)) {
				return errors.Errorf("skill %q is not installed", skillID)
			}
		}

		if _, err := s.conf.Assign(ctx, s.layout.AgentConfigPath(agentID), skillID); err != nil {
			return err
		}

		var err error
		written, err = s.sync.Sync(ctx, sourceDir, s.layout.WorkspaceRoot(agentID), skillID, s.workspaceDirs)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("skill", skillID).Warn("workspace mirroring incomplete")
		}

		s.record(ctx, audit.Event{
			Operation: audit.OpAssign,
			Scope:     string(ScopeAgent),
			AgentID:   agentID,
			SkillID:   skillID,
		})
		return nil
	}, attribute.String("agent.id", agentID))
	return written, err
}
