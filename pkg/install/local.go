package install

import (
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/orgboard/orgboard/pkg/skills"
)

// resolveLocal resolves a local path into a skill source directory. The path
// may point directly at a definition file, in which case its parent is the
// source, or at a directory that must contain one.
func (r *Resolver) resolveLocal(source PathSource) (Resolved, error) {
	path, err := r.pr.ExpandHome(source.Path)
	if err != nil {
		return Resolved{}, err
	}

	if filepath.Base(path) == skills.DefinitionFileName && r.fs.Exists(path) {
		return Resolved{Kind: KindSourcePath, Dir: filepath.Dir(path)}, nil
	}

	if r.fs.Exists(r.pr.Join(path, skills.DefinitionFileName)) {
		return Resolved{Kind: KindSourcePath, Dir: path}, nil
	}

	return Resolved{}, errors.Errorf("no %s found at %s", skills.DefinitionFileName, source.Path)
}
