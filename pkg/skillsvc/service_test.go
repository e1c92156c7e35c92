package skillsvc

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgboard/orgboard/pkg/fsys"
	"github.com/orgboard/orgboard/pkg/install"
	"github.com/orgboard/orgboard/pkg/osutil"
	"github.com/orgboard/orgboard/pkg/skills"
)

const baseDir = "/base"

// fakeGit materializes a fixed repository tree into the clone destination so
// remote installs run without a real git binary.
type fakeGit struct {
	fs    fsys.FileStore
	files map[string]string
	calls []osutil.RunSpec
}

func (g *fakeGit) Run(_ context.Context, spec osutil.RunSpec) (osutil.RunResult, error) {
	g.calls = append(g.calls, spec)
	dest := spec.Args[len(spec.Args)-1]
	for rel, content := range g.files {
		if err := g.fs.WriteFile(filepath.Join(dest, filepath.FromSlash(rel)), content); err != nil {
			return osutil.RunResult{}, err
		}
	}
	return osutil.RunResult{Code: 0}, nil
}

func newTestService(t *testing.T, opts ...Option) (*Service, *fsys.Store) {
	t.Helper()
	fs := fsys.NewMemStore()
	pr := fsys.OSPathResolver{}

	counter := 0
	resolver := install.NewResolver(fs, pr, install.WithTempDirFunc(func(pattern string) (string, error) {
		counter++
		dir := fmt.Sprintf("/tmp/%s-%d", pattern, counter)
		return dir, fs.EnsureDir(dir)
	}))

	base := []Option{WithResolver(resolver), WithWorkspaceDirs(".claude/skills")}
	svc := NewService(fs, pr, NewLayout(baseDir, pr), append(base, opts...)...)
	return svc, fs
}

func newRemoteTestService(t *testing.T, files map[string]string) (*Service, *fsys.Store, *fakeGit) {
	t.Helper()
	fs := fsys.NewMemStore()
	pr := fsys.OSPathResolver{}
	git := &fakeGit{fs: fs, files: files}

	counter := 0
	resolver := install.NewResolver(fs, pr,
		install.WithRunner(git),
		install.WithTempDirFunc(func(pattern string) (string, error) {
			counter++
			dir := fmt.Sprintf("/tmp/%s-%d", pattern, counter)
			return dir, fs.EnsureDir(dir)
		}),
	)

	svc := NewService(fs, pr, NewLayout(baseDir, pr), WithResolver(resolver))
	return svc, fs, git
}

func writeStoreSkill(t *testing.T, fs fsys.FileStore, dir, name, description string) {
	t.Helper()
	content := fmt.Sprintf("---\nname: %s\ndescription: %s\n---\n\nInstructions for %s.\n", name, description, name)
	require.NoError(t, fs.WriteFile(filepath.Join(dir, skills.DefinitionFileName), content))
}

func writeAgentConfig(t *testing.T, fs fsys.FileStore, agentID, content string) {
	t.Helper()
	path := filepath.Join(baseDir, "agents", agentID, "agent.json")
	require.NoError(t, fs.WriteFile(path, content))
}

func TestInstallGlobalFromPath(t *testing.T) {
	ctx := context.Background()
	svc, fs := newTestService(t)
	writeStoreSkill(t, fs, "/src/writing", "Writing", "Draft and edit prose")

	result, err := svc.Install(ctx, InstallRequest{
		Scope:      ScopeGlobal,
		SkillName:  "Writing",
		SourcePath: "/src/writing",
	})
	require.NoError(t, err)

	assert.Equal(t, "writing", result.SkillID)
	assert.Equal(t, install.KindSourcePath, result.SourceKind)
	assert.Equal(t, "/base/skills/writing/SKILL.md", result.InstalledPath)
	assert.False(t, result.Replaced)
	assert.Empty(t, result.WorkspaceInstallPaths)

	records, err := svc.ListGlobal(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "writing", records[0].ID)
	assert.Equal(t, "Writing", records[0].Name)
	assert.Equal(t, skills.SourceManaged, records[0].Source)
}

func TestInstallReplacesExisting(t *testing.T) {
	ctx := context.Background()
	svc, fs := newTestService(t)
	writeStoreSkill(t, fs, "/src/writing", "Writing", "v1")

	first, err := svc.Install(ctx, InstallRequest{Scope: ScopeGlobal, SkillName: "writing", SourcePath: "/src/writing"})
	require.NoError(t, err)
	assert.False(t, first.Replaced)

	writeStoreSkill(t, fs, "/src/writing", "Writing", "v2")
	require.NoError(t, fs.WriteFile("/base/skills/writing/stale.md", "orphan\n"))

	second, err := svc.Install(ctx, InstallRequest{Scope: ScopeGlobal, SkillName: "writing", SourcePath: "/src/writing"})
	require.NoError(t, err)
	assert.True(t, second.Replaced)
	assert.False(t, fs.Exists("/base/skills/writing/stale.md"), "replacement installs start from an empty directory")

	records, err := svc.ListGlobal(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "v2", records[0].Description)
}

func TestInstallValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	t.Run("path and url are mutually exclusive", func(t *testing.T) {
		_, err := svc.Install(ctx, InstallRequest{
			Scope:      ScopeGlobal,
			SkillName:  "writing",
			SourcePath: "/src/writing",
			SourceURL:  "https://github.com/acme/skills",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mutually exclusive")
	})

	t.Run("skill name must normalize to a non-empty id", func(t *testing.T) {
		_, err := svc.Install(ctx, InstallRequest{Scope: ScopeGlobal, SkillName: "!!!"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid skill name")
	})

	t.Run("unknown scope rejected", func(t *testing.T) {
		_, err := svc.Install(ctx, InstallRequest{Scope: Scope("tenant"), SkillName: "writing"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid scope")
	})

	t.Run("agent scope requires an agent id", func(t *testing.T) {
		_, err := svc.Install(ctx, InstallRequest{Scope: ScopeAgent, SkillName: "writing"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "agent id is required")
	})
}

func TestInstallInlineContent(t *testing.T) {
	ctx := context.Background()
	svc, fs := newTestService(t)
	content := "---\nname: Notes\ndescription: Keep notes\n---\n\nWrite things down."

	result, err := svc.Install(ctx, InstallRequest{
		Scope:     ScopeGlobal,
		SkillName: "notes",
		Content:   content,
	})
	require.NoError(t, err)
	assert.Equal(t, install.KindGenerated, result.SourceKind)

	got, err := fs.ReadFile(result.InstalledPath)
	require.NoError(t, err)
	assert.Equal(t, content+"\n", got, "inline content is installed verbatim plus a trailing newline")
}

func TestInstallGeneratedTemplate(t *testing.T) {
	ctx := context.Background()
	svc, fs := newTestService(t)

	result, err := svc.Install(ctx, InstallRequest{
		Scope:       ScopeGlobal,
		SkillName:   "Code Review",
		Description: "Review pull requests",
	})
	require.NoError(t, err)
	assert.Equal(t, install.KindGenerated, result.SourceKind)
	assert.Equal(t, "code-review", result.SkillID)

	got, err := fs.ReadFile(result.InstalledPath)
	require.NoError(t, err)
	meta, _ := skills.ParseFrontmatter(got)
	assert.Equal(t, "Code Review", meta.Name)
	assert.Equal(t, "Review pull requests", meta.Description)
}

func TestInstallAgentScope(t *testing.T) {
	ctx := context.Background()
	svc, fs := newTestService(t)
	writeStoreSkill(t, fs, "/src/writing", "Writing", "Draft prose")
	writeAgentConfig(t, fs, "alpha", `{"name": "alpha"}`)

	result, err := svc.Install(ctx, InstallRequest{
		Scope:      ScopeAgent,
		AgentID:    "alpha",
		SkillName:  "writing",
		SourcePath: "/src/writing",
	})
	require.NoError(t, err)

	assert.Equal(t, "/base/agents/alpha/skills/writing/SKILL.md", result.InstalledPath)
	assert.Equal(t, []string{"/base/workspaces/alpha/.claude/skills/writing"}, result.WorkspaceInstallPaths)
	assert.True(t, fs.Exists("/base/workspaces/alpha/.claude/skills/writing/SKILL.md"))

	doc, err := svc.conf.Load("/base/agents/alpha/agent.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"writing"}, doc.Runtime.Skills.Assigned)
}

func TestInstallAgentReusesGlobalCopy(t *testing.T) {
	ctx := context.Background()
	svc, fs := newTestService(t)
	writeStoreSkill(t, fs, "/base/skills/writing", "Writing", "Draft prose")
	writeAgentConfig(t, fs, "alpha", `{"name": "alpha"}`)

	result, err := svc.Install(ctx, InstallRequest{
		Scope:     ScopeAgent,
		AgentID:   "alpha",
		SkillName: "writing",
	})
	require.NoError(t, err)

	assert.Equal(t, install.KindManaged, result.SourceKind)
	assert.Equal(t, "/base/skills/writing/SKILL.md", result.InstalledPath)
	assert.False(t, fs.Exists("/base/agents/alpha/skills/writing"), "reuse must not copy into the agent store")
	assert.True(t, fs.Exists("/base/workspaces/alpha/.claude/skills/writing/SKILL.md"), "workspace mirrors from the global copy")
}

func TestInstallRoleSkillReconciliation(t *testing.T) {
	ctx := context.Background()
	svc, fs := newTestService(t)
	writeAgentConfig(t, fs, "alpha", `{"runtime": {"skills": {"assigned": ["writing", "og-manager"]}}}`)

	result, err := svc.Install(ctx, InstallRequest{
		Scope:     ScopeAgent,
		AgentID:   "alpha",
		SkillName: "og-board-manager",
		Content:   "---\nname: og-board-manager\n---\n\nRun the board.\n",
	})
	require.NoError(t, err)
	assert.Equal(t, "og-board-manager", result.SkillID)

	doc, err := svc.conf.Load("/base/agents/alpha/agent.json")
	require.NoError(t, err)
	require.NotNil(t, doc.Organization)
	assert.Equal(t, "manager", doc.Organization.Type)
	assert.Equal(t, []string{"writing"}, doc.Runtime.Skills.Assigned, "reserved ids are stripped from the assigned list")
}

func TestInstallFromRepositoryURL(t *testing.T) {
	ctx := context.Background()
	svc, fs, git := newRemoteTestService(t, map[string]string{
		"skills/writing/SKILL.md": "---\nname: Writing\ndescription: Draft prose\n---\n\nbody\n",
		"skills/review/SKILL.md":  "---\nname: Review\n---\n\nbody\n",
	})

	result, err := svc.Install(ctx, InstallRequest{
		Scope:     ScopeGlobal,
		SkillName: "writing",
		SourceURL: "https://github.com/acme/skills/tree/main/skills/writing",
	})
	require.NoError(t, err)

	assert.Equal(t, install.KindSourceURL, result.SourceKind)
	assert.Equal(t, "/base/skills/writing/SKILL.md", result.InstalledPath)
	assert.Empty(t, result.WorkspaceInstallPaths, "global installs touch no workspace")
	assert.True(t, fs.Exists("/base/skills/writing/SKILL.md"))
	assert.False(t, fs.Exists("/tmp/orgboard-skill-*-1"), "the clone is cleaned up after install")

	require.Len(t, git.calls, 1)
	assert.Contains(t, git.calls[0].Args, "--branch")
	assert.Contains(t, git.calls[0].Args, "main")
}

func TestInstallAgentWithoutWorkspaceDirs(t *testing.T) {
	ctx := context.Background()
	svc, fs, _ := newRemoteTestService(t, map[string]string{
		"writing/SKILL.md": "---\nname: Writing\n---\n\nbody\n",
	})
	writeAgentConfig(t, fs, "eng", `{"name": "eng"}`)

	result, err := svc.Install(ctx, InstallRequest{
		Scope:     ScopeAgent,
		AgentID:   "eng",
		SkillName: "Writing",
		SourceURL: "https://github.com/acme/skills/tree/main/writing",
	})
	require.NoError(t, err)

	assert.Equal(t, "writing", result.SkillID)
	assert.Empty(t, result.WorkspaceInstallPaths, "no mirrors unless workspace directories are configured")
	assert.True(t, fs.Exists("/base/agents/eng/skills/writing/SKILL.md"))
}

func TestInstallFromURLWithoutRunner(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Install(ctx, InstallRequest{
		Scope:     ScopeGlobal,
		SkillName: "writing",
		SourceURL: "https://github.com/acme/skills",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command runner")
}

func TestListPrecedence(t *testing.T) {
	ctx := context.Background()
	svc, fs := newTestService(t)

	writeStoreSkill(t, fs, "/base/skills/writing", "Writing", "global copy")
	writeStoreSkill(t, fs, "/base/skills/research", "Research", "global only")
	writeStoreSkill(t, fs, "/base/agents/alpha/skills/writing", "Writing", "agent override")
	writeStoreSkill(t, fs, "/extra/planning", "Planning", "extra directory")
	writeAgentConfig(t, fs, "alpha", `{"runtime": {"skills": {"load": {"extraDirs": ["/extra"]}}}}`)

	records, err := svc.List(ctx, "alpha")
	require.NoError(t, err)

	byID := map[string]skills.Record{}
	for _, record := range records {
		byID[record.ID] = record
	}
	require.Len(t, records, 3)
	assert.Equal(t, "agent override", byID["writing"].Description, "agent store shadows the global store")
	assert.Equal(t, "global only", byID["research"].Description)
	assert.Equal(t, skills.SourceExtra, byID["planning"].Source)

	// records come back sorted by id
	assert.Equal(t, "planning", records[0].ID)
	assert.Equal(t, "research", records[1].ID)
	assert.Equal(t, "writing", records[2].ID)
}

func TestListAssignmentFilter(t *testing.T) {
	ctx := context.Background()
	svc, fs := newTestService(t)

	writeStoreSkill(t, fs, "/base/skills/writing", "Writing", "a")
	writeStoreSkill(t, fs, "/base/skills/research", "Research", "b")
	writeAgentConfig(t, fs, "alpha", `{"runtime": {"skills": {"assigned": ["writing"]}}}`)

	records, err := svc.List(ctx, "alpha")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "writing", records[0].ID)
}

func TestListExcludesManagedStoreWhenDisabled(t *testing.T) {
	ctx := context.Background()
	svc, fs := newTestService(t)

	writeStoreSkill(t, fs, "/base/skills/writing", "Writing", "global")
	writeStoreSkill(t, fs, "/base/agents/alpha/skills/research", "Research", "agent")
	writeAgentConfig(t, fs, "alpha", `{"runtime": {"skills": {"includeManaged": false}}}`)

	records, err := svc.List(ctx, "alpha")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "research", records[0].ID)
}

func TestBuildPrompt(t *testing.T) {
	ctx := context.Background()

	t.Run("includes visible skills", func(t *testing.T) {
		svc, fs := newTestService(t)
		writeStoreSkill(t, fs, "/base/skills/writing", "Writing", "Draft prose")

		prompt, err := svc.BuildPrompt(ctx, "alpha")
		require.NoError(t, err)
		require.Len(t, prompt.Included, 1)
		assert.Contains(t, prompt.Text, "<id>writing</id>")
	})

	t.Run("disabled configuration yields sentinel", func(t *testing.T) {
		svc, fs := newTestService(t)
		writeStoreSkill(t, fs, "/base/skills/writing", "Writing", "Draft prose")
		writeAgentConfig(t, fs, "alpha", `{"runtime": {"skills": {"enabled": false}}}`)

		prompt, err := svc.BuildPrompt(ctx, "alpha")
		require.NoError(t, err)
		assert.Empty(t, prompt.Included)
		assert.Contains(t, prompt.Text, "No skills found.")
	})

	t.Run("model-invocation-disabled skills are excluded", func(t *testing.T) {
		svc, fs := newTestService(t)
		writeStoreSkill(t, fs, "/base/skills/writing", "Writing", "Draft prose")
		require.NoError(t, fs.WriteFile("/base/skills/hidden/SKILL.md",
			"---\nname: Hidden\ndisable-model-invocation: true\n---\n\nbody\n"))

		prompt, err := svc.BuildPrompt(ctx, "alpha")
		require.NoError(t, err)
		require.Len(t, prompt.Included, 1)
		assert.Equal(t, "writing", prompt.Included[0].ID)
		assert.NotContains(t, prompt.Text, "Hidden")
	})
}

func TestRemoveGlobal(t *testing.T) {
	ctx := context.Background()
	svc, fs := newTestService(t)
	writeStoreSkill(t, fs, "/base/skills/writing", "Writing", "Draft prose")

	result, err := svc.Remove(ctx, ScopeGlobal, "", "writing")
	require.NoError(t, err)
	assert.True(t, result.RemovedFromGlobal)
	assert.False(t, fs.Exists("/base/skills/writing"))

	again, err := svc.Remove(ctx, ScopeGlobal, "", "writing")
	require.NoError(t, err)
	assert.False(t, again.RemovedFromGlobal, "removing an absent skill reports nothing touched")
}

func TestRemoveAgent(t *testing.T) {
	ctx := context.Background()
	svc, fs := newTestService(t)
	writeStoreSkill(t, fs, "/base/agents/alpha/skills/writing", "Writing", "agent copy")
	require.NoError(t, fs.WriteFile("/base/workspaces/alpha/.claude/skills/writing/SKILL.md", "mirror\n"))
	writeAgentConfig(t, fs, "alpha", `{"runtime": {"skills": {"assigned": ["writing", "review"]}}}`)

	result, err := svc.Remove(ctx, ScopeAgent, "alpha", "writing")
	require.NoError(t, err)

	assert.True(t, result.RemovedFromAgentStore)
	assert.True(t, result.Unassigned)
	assert.Equal(t, []string{"/base/workspaces/alpha/.claude/skills/writing"}, result.WorkspacePathsRemoved)
	assert.False(t, fs.Exists("/base/agents/alpha/skills/writing"))
	assert.False(t, fs.Exists("/base/workspaces/alpha/.claude/skills/writing"))

	doc, err := svc.conf.Load("/base/agents/alpha/agent.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"review"}, doc.Runtime.Skills.Assigned)
}

func TestAssign(t *testing.T) {
	ctx := context.Background()

	t.Run("mirrors an installed global skill", func(t *testing.T) {
		svc, fs := newTestService(t)
		writeStoreSkill(t, fs, "/base/skills/writing", "Writing", "Draft prose")
		writeAgentConfig(t, fs, "alpha", `{"name": "alpha"}`)

		written, err := svc.Assign(ctx, "alpha", "writing")
		require.NoError(t, err)
		assert.Equal(t, []string{"/base/workspaces/alpha/.claude/skills/writing"}, written)

		doc, err := svc.conf.Load("/base/agents/alpha/agent.json")
		require.NoError(t, err)
		assert.Equal(t, []string{"writing"}, doc.Runtime.Skills.Assigned)
	})

	t.Run("agent store copy wins over global", func(t *testing.T) {
		svc, fs := newTestService(t)
		writeStoreSkill(t, fs, "/base/skills/writing", "Writing", "global")
		writeStoreSkill(t, fs, "/base/agents/alpha/skills/writing", "Writing", "agent override")
		writeAgentConfig(t, fs, "alpha", `{"name": "alpha"}`)

		_, err := svc.Assign(ctx, "alpha", "writing")
		require.NoError(t, err)

		mirror, err := fs.ReadFile("/base/workspaces/alpha/.claude/skills/writing/SKILL.md")
		require.NoError(t, err)
		assert.Contains(t, mirror, "agent override")
	})

	t.Run("uninstalled skill is an error", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.Assign(ctx, "alpha", "missing")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `skill "missing" is not installed`)
	})
}

func TestUnassign(t *testing.T) {
	ctx := context.Background()
	svc, fs := newTestService(t)
	writeStoreSkill(t, fs, "/base/skills/writing", "Writing", "Draft prose")
	require.NoError(t, fs.WriteFile("/base/workspaces/alpha/.claude/skills/writing/SKILL.md", "mirror\n"))
	writeAgentConfig(t, fs, "alpha", `{"runtime": {"skills": {"assigned": ["writing"]}}}`)

	result, err := svc.Unassign(ctx, "alpha", "writing")
	require.NoError(t, err)

	assert.True(t, result.Unassigned)
	assert.Equal(t, []string{"/base/workspaces/alpha/.claude/skills/writing"}, result.WorkspacePathsRemoved)
	assert.True(t, fs.Exists("/base/skills/writing/SKILL.md"), "store copies are untouched")
	assert.False(t, fs.Exists("/base/workspaces/alpha/.claude/skills/writing"))
}
