package install

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgboard/orgboard/pkg/fsys"
	"github.com/orgboard/orgboard/pkg/osutil"
)

// fakeGit simulates a git clone by materializing a fixed repository tree
// into the destination directory passed as the final clone argument.
type fakeGit struct {
	fs     fsys.FileStore
	files  map[string]string
	calls  []osutil.RunSpec
	code   int
	stderr string
}

func (g *fakeGit) Run(_ context.Context, spec osutil.RunSpec) (osutil.RunResult, error) {
	g.calls = append(g.calls, spec)
	if g.code != 0 {
		return osutil.RunResult{Code: g.code, Stderr: g.stderr}, nil
	}
	dest := spec.Args[len(spec.Args)-1]
	for rel, content := range g.files {
		if err := g.fs.WriteFile(filepath.Join(dest, filepath.FromSlash(rel)), content); err != nil {
			return osutil.RunResult{}, err
		}
	}
	return osutil.RunResult{Code: 0}, nil
}

func newRemoteResolver(t *testing.T, git *fakeGit) (*Resolver, fsys.FileStore) {
	t.Helper()
	fs := fsys.NewMemStore()
	git.fs = fs

	counter := 0
	resolver := NewResolver(fs, fsys.OSPathResolver{},
		WithRunner(git),
		WithTempDirFunc(func(pattern string) (string, error) {
			counter++
			dir := fmt.Sprintf("/tmp/%s-%d", pattern, counter)
			return dir, fs.EnsureDir(dir)
		}),
	)
	return resolver, fs
}

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		cloneURL string
		ref      string
		pathHint string
		wantErr  bool
	}{
		{
			name:     "plain repository url",
			raw:      "https://github.com/acme/skills",
			cloneURL: "https://github.com/acme/skills",
		},
		{
			name:     "trailing slash stripped",
			raw:      "https://github.com/acme/skills/",
			cloneURL: "https://github.com/acme/skills",
		},
		{
			name:     "tree url with ref and path",
			raw:      "https://github.com/acme/skills/tree/main/skills/writing",
			cloneURL: "https://github.com/acme/skills",
			ref:      "main",
			pathHint: "skills/writing",
		},
		{
			name:     "tree url with ref only",
			raw:      "https://github.com/acme/skills/tree/v1.2.0",
			cloneURL: "https://github.com/acme/skills",
			ref:      "v1.2.0",
		},
		{
			name:     "ssh url passes through",
			raw:      "git@github.com:acme/skills.git",
			cloneURL: "git@github.com:acme/skills.git",
		},
		{
			name:    "empty url",
			raw:     "   ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cloneURL, ref, pathHint, err := ParseRepoURL(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cloneURL, cloneURL)
			assert.Equal(t, tt.ref, ref)
			assert.Equal(t, tt.pathHint, pathHint)
		})
	}
}

func TestResolveRemote(t *testing.T) {
	ctx := context.Background()

	t.Run("single skill repository", func(t *testing.T) {
		git := &fakeGit{files: map[string]string{
			"README.md":         "docs\n",
			"writing/SKILL.md":  "---\nname: Writing\n---\nbody\n",
			"writing/extra.txt": "reference\n",
		}}
		resolver, fs := newRemoteResolver(t, git)

		resolved, err := resolver.Resolve(ctx, URLSource{URL: "https://github.com/acme/skills"})
		require.NoError(t, err)

		assert.Equal(t, KindSourceURL, resolved.Kind)
		assert.Equal(t, "writing", filepath.Base(resolved.Dir))
		assert.True(t, fs.Exists(filepath.Join(resolved.Dir, "SKILL.md")))

		require.NoError(t, resolved.Cleanup())
		assert.False(t, fs.Exists(resolved.Dir), "cleanup must remove the clone")
	})

	t.Run("shallow clone arguments", func(t *testing.T) {
		git := &fakeGit{files: map[string]string{"SKILL.md": "body\n"}}
		resolver, _ := newRemoteResolver(t, git)

		resolved, err := resolver.Resolve(ctx, URLSource{URL: "https://github.com/acme/one-skill"})
		require.NoError(t, err)
		defer resolved.Cleanup()

		require.Len(t, git.calls, 1)
		call := git.calls[0]
		assert.Equal(t, "git", call.Command)
		assert.Equal(t, []string{"clone", "--depth", "1"}, call.Args[:3])
		assert.Equal(t, "https://github.com/acme/one-skill", call.Args[len(call.Args)-2])
	})

	t.Run("tree url clones the named ref and uses the path", func(t *testing.T) {
		git := &fakeGit{files: map[string]string{
			"skills/writing/SKILL.md": "body\n",
			"skills/review/SKILL.md":  "body\n",
		}}
		resolver, _ := newRemoteResolver(t, git)

		resolved, err := resolver.Resolve(ctx, URLSource{
			URL: "https://github.com/acme/skills/tree/main/skills/review",
		})
		require.NoError(t, err)
		defer resolved.Cleanup()

		assert.Equal(t, "review", filepath.Base(resolved.Dir))

		require.Len(t, git.calls, 1)
		assert.Contains(t, git.calls[0].Args, "--branch")
		assert.Contains(t, git.calls[0].Args, "main")
	})

	t.Run("skill hint narrows multi-skill repository", func(t *testing.T) {
		git := &fakeGit{files: map[string]string{
			"skills/writing/SKILL.md":     "body\n",
			"skills/code-review/SKILL.md": "body\n",
			"skills/research/SKILL.md":    "body\n",
		}}
		resolver, _ := newRemoteResolver(t, git)

		resolved, err := resolver.Resolve(ctx, URLSource{
			URL:       "https://github.com/acme/skills",
			SkillHint: "Code Review",
		})
		require.NoError(t, err)
		defer resolved.Cleanup()

		assert.Equal(t, "code-review", filepath.Base(resolved.Dir))
	})

	t.Run("ambiguous repository lists candidates", func(t *testing.T) {
		git := &fakeGit{files: map[string]string{
			"skills/writing/SKILL.md":  "body\n",
			"skills/research/SKILL.md": "body\n",
		}}
		resolver, fs := newRemoteResolver(t, git)

		_, err := resolver.Resolve(ctx, URLSource{URL: "https://github.com/acme/skills"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "multiple skill directories found")
		assert.Contains(t, err.Error(), "skills/research")
		assert.Contains(t, err.Error(), "skills/writing")
		assert.False(t, fs.Exists("/tmp/orgboard-skill-*-1"), "failed resolution must clean up the clone")
	})

	t.Run("no skill directories", func(t *testing.T) {
		git := &fakeGit{files: map[string]string{"README.md": "docs\n"}}
		resolver, _ := newRemoteResolver(t, git)

		_, err := resolver.Resolve(ctx, URLSource{URL: "https://github.com/acme/empty"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no skill directories found in repository")
	})

	t.Run("search depth is bounded", func(t *testing.T) {
		git := &fakeGit{files: map[string]string{
			"a/b/c/d/e/f/g/h/too-deep/SKILL.md": "body\n",
		}}
		resolver, _ := newRemoteResolver(t, git)

		_, err := resolver.Resolve(ctx, URLSource{URL: "https://github.com/acme/deep"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no skill directories found")
	})

	t.Run("clone failure surfaces stderr", func(t *testing.T) {
		git := &fakeGit{code: 128, stderr: "fatal: repository not found"}
		resolver, _ := newRemoteResolver(t, git)

		_, err := resolver.Resolve(ctx, URLSource{URL: "https://github.com/acme/missing"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exit 128")
		assert.Contains(t, err.Error(), "repository not found")
	})

	t.Run("runner required", func(t *testing.T) {
		fs := fsys.NewMemStore()
		resolver := NewResolver(fs, fsys.OSPathResolver{})

		_, err := resolver.Resolve(ctx, URLSource{URL: "https://github.com/acme/skills"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "command runner")
	})
}
