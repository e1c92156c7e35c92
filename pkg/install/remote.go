package install

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/orgboard/orgboard/pkg/osutil"
	"github.com/orgboard/orgboard/pkg/skills"
)

// maxSearchDepth bounds the recursive repository search so resolution
// terminates on arbitrarily deep or malformed trees.
const maxSearchDepth = 7

// maxAmbiguityExamples caps the candidate paths listed in ambiguity errors.
const maxAmbiguityExamples = 10

// conventionalSkillPaths are the repository locations tried for a skill id
// before falling back to a full search.
func conventionalSkillPaths(id string) []string {
	if id == "" {
		return []string{"."}
	}
	return []string{
		".",
		id,
		"skills/" + id,
		".claude/skills/" + id,
		".codex/skills/" + id,
		".agents/skills/" + id,
	}
}

// resolveRemote shallow-clones the repository into an isolated temporary
// directory and locates the target skill inside it. The returned Cleanup
// removes the whole clone and must run whether or not installation succeeds.
func (r *Resolver) resolveRemote(ctx context.Context, source URLSource) (Resolved, error) {
	if r.runner == nil {
		return Resolved{}, errors.New("remote install requires a configured command runner")
	}

	cloneURL, ref, pathHint, err := ParseRepoURL(source.URL)
	if err != nil {
		return Resolved{}, err
	}

	tempRoot, err := r.mkTemp("orgboard-skill-*")
	if err != nil {
		return Resolved{}, errors.Wrap(err, "failed to create temporary clone directory")
	}
	cleanup := func() error { return r.fs.RemoveDir(tempRoot) }

	args := []string{"clone", "--depth", "1"}
	if ref != "" {
		args = append(args, "--branch", ref)
	}
	args = append(args, cloneURL, tempRoot)

	result, err := r.runner.Run(ctx, osutil.RunSpec{Command: "git", Args: args})
	if err != nil {
		cleanup()
		return Resolved{}, errors.Wrapf(err, "failed to clone %s", cloneURL)
	}
	if result.Code != 0 {
		cleanup()
		output := strings.TrimSpace(strings.TrimSpace(result.Stderr) + "\n" + strings.TrimSpace(result.Stdout))
		return Resolved{}, errors.Errorf("failed to clone %s (exit %d): %s", cloneURL, result.Code, output)
	}

	dir, err := r.findSkillDir(tempRoot, pathHint, skills.NormalizeID(source.SkillHint))
	if err != nil {
		cleanup()
		return Resolved{}, err
	}

	return Resolved{Kind: KindSourceURL, Dir: dir, Cleanup: cleanup}, nil
}

// ParseRepoURL normalizes a repository URL into a clonable URL, an optional
// ref, and an optional repo-relative path hint. The "/tree/<ref>/<path>"
// browse form used by code hosts is folded back into its parts; any other
// URL is passed through for the clone command to interpret.
func ParseRepoURL(raw string) (cloneURL, ref, pathHint string, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", "", errors.New("source URL cannot be empty")
	}

	idx := strings.Index(raw, "/tree/")
	if idx == -1 {
		return strings.TrimSuffix(raw, "/"), "", "", nil
	}

	cloneURL = raw[:idx]
	rest := strings.Trim(raw[idx+len("/tree/"):], "/")
	ref, pathHint, _ = strings.Cut(rest, "/")
	return cloneURL, ref, pathHint, nil
}

// findSkillDir locates the target skill directory inside a clone, trying in
// order: the path extracted from the URL, conventional locations for the
// skill id, and finally a bounded recursive search narrowed by the id.
func (r *Resolver) findSkillDir(root, pathHint, id string) (string, error) {
	if pathHint != "" {
		candidate := r.pr.Join(root, filepath.FromSlash(pathHint))
		if r.fs.Exists(r.pr.Join(candidate, skills.DefinitionFileName)) {
			return candidate, nil
		}
	}

	for _, rel := range conventionalSkillPaths(id) {
		candidate := r.pr.Join(root, filepath.FromSlash(rel))
		if r.fs.Exists(r.pr.Join(candidate, skills.DefinitionFileName)) {
			return candidate, nil
		}
	}

	candidates := dedupeSorted(r.searchSkillDirs(root, maxSearchDepth))
	if len(candidates) == 0 {
		return "", errors.New("no skill directories found in repository")
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	if id != "" {
		var matched []string
		for _, candidate := range candidates {
			rel, err := filepath.Rel(root, candidate)
			if err != nil {
				continue
			}
			if skills.NormalizeID(filepath.Base(candidate)) == id || skills.NormalizeID(rel) == id {
				matched = append(matched, candidate)
			}
		}
		if len(matched) == 1 {
			return matched[0], nil
		}
		if len(matched) > 1 {
			return "", r.ambiguityError(root, matched)
		}
	}

	return "", r.ambiguityError(root, candidates)
}

func (r *Resolver) ambiguityError(root string, candidates []string) error {
	examples := make([]string, 0, maxAmbiguityExamples)
	for _, candidate := range candidates {
		if len(examples) == maxAmbiguityExamples {
			break
		}
		rel, err := filepath.Rel(root, candidate)
		if err != nil {
			rel = candidate
		}
		examples = append(examples, filepath.ToSlash(rel))
	}
	return errors.Errorf(
		"multiple skill directories found, specify which one to install: %s",
		strings.Join(examples, ", "),
	)
}

// searchSkillDirs collects every directory holding a definition file, up to
// maxDepth levels below root. It is a pure traversal; dedup and ordering are
// applied by the caller.
func (r *Resolver) searchSkillDirs(root string, maxDepth int) []string {
	if maxDepth < 0 {
		return nil
	}

	var dirs []string
	if r.fs.Exists(r.pr.Join(root, skills.DefinitionFileName)) {
		dirs = append(dirs, root)
	}

	names, err := r.fs.ListDirectories(root)
	if err != nil {
		return dirs
	}
	for _, name := range names {
		if name == ".git" || name == "node_modules" {
			continue
		}
		dirs = append(dirs, r.searchSkillDirs(r.pr.Join(root, name), maxDepth-1)...)
	}
	return dirs
}

func dedupeSorted(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var out []string
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}
