// Package skillsvc composes the skill engine: discovery, precedence
// merging, prompt assembly, source resolution, workspace mirroring, and
// per-agent assignment bookkeeping behind one service façade.
package skillsvc

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/orgboard/orgboard/pkg/fsys"
)

const agentConfigFileName = "agent.json"

// Layout resolves the on-disk store layout under a single base directory.
type Layout struct {
	BaseDir string
	pr      fsys.PathResolver
}

// NewLayout creates a layout rooted at baseDir.
func NewLayout(baseDir string, pr fsys.PathResolver) Layout {
	return Layout{BaseDir: baseDir, pr: pr}
}

// DefaultBaseDir returns ORGBOARD_BASE_PATH when set, otherwise ~/.orgboard.
func DefaultBaseDir() (string, error) {
	if basePath := os.Getenv("ORGBOARD_BASE_PATH"); basePath != "" {
		return basePath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user home directory")
	}
	return filepath.Join(home, ".orgboard"), nil
}

// GlobalSkillsDir is the shared skill store.
func (l Layout) GlobalSkillsDir() string {
	return l.pr.Join(l.BaseDir, "skills")
}

// AgentDir is the per-agent state directory.
func (l Layout) AgentDir(agentID string) string {
	return l.pr.Join(l.BaseDir, "agents", agentID)
}

// AgentSkillsDir is the agent-scoped skill override store.
func (l Layout) AgentSkillsDir(agentID string) string {
	return l.pr.Join(l.AgentDir(agentID), "skills")
}

// AgentConfigPath is the per-agent configuration document.
func (l Layout) AgentConfigPath(agentID string) string {
	return l.pr.Join(l.AgentDir(agentID), agentConfigFileName)
}

// WorkspaceRoot is the live workspace directory of the agent; skill mirrors
// are placed in configured subdirectories beneath it.
func (l Layout) WorkspaceRoot(agentID string) string {
	return l.pr.Join(l.BaseDir, "workspaces", agentID)
}
