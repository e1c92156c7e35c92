// Package workspace mirrors installed skills into the live workspace
// directories consumed by running agent processes. Mirrors are plain copies
// of the canonical store directory; re-syncing from the same source always
// produces an identical mirror.
package workspace

import (
	"context"

	"github.com/hashicorp/go-multierror"

	"github.com/orgboard/orgboard/pkg/fsys"
	"github.com/orgboard/orgboard/pkg/logger"
)

// Synchronizer copies skill directories into and out of workspace mirrors.
type Synchronizer struct {
	fs fsys.FileStore
	pr fsys.PathResolver
}

// NewSynchronizer creates a synchronizer over the given ports.
func NewSynchronizer(fs fsys.FileStore, pr fsys.PathResolver) *Synchronizer {
	return &Synchronizer{fs: fs, pr: pr}
}

// Sync copies sourceDir into <root>/<relDir>/<skillID> for every configured
// relative skills directory, replacing any pre-existing mirror. It returns
// the mirror paths written. Failures on one directory do not stop the
// others; they are aggregated into the returned error.
func (s *Synchronizer) Sync(ctx context.Context, sourceDir, root, skillID string, relDirs []string) ([]string, error) {
	var written []string
	var errs *multierror.Error

	for _, relDir := range relDirs {
		dir := s.pr.Join(root, relDir)
		target := s.pr.Join(dir, skillID)

		if err := s.fs.EnsureDir(dir); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if err := s.fs.RemoveDir(target); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if err := s.fs.CopyDir(sourceDir, target); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}

		logger.G(ctx).WithField("skill", skillID).WithField("mirror", target).Debug("synced workspace mirror")
		written = append(written, target)
	}

	return written, errs.ErrorOrNil()
}

// Remove deletes the mirror of skillID under every configured relative
// skills directory, returning the paths actually removed. Absent mirrors
// are not an error.
func (s *Synchronizer) Remove(ctx context.Context, root, skillID string, relDirs []string) ([]string, error) {
	var removed []string
	var errs *multierror.Error

	for _, relDir := range relDirs {
		target := s.pr.Join(root, relDir, skillID)
		if !s.fs.Exists(target) {
			continue
		}
		if err := s.fs.RemoveDir(target); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		logger.G(ctx).WithField("skill", skillID).WithField("mirror", target).Debug("removed workspace mirror")
		removed = append(removed, target)
	}

	return removed, errs.ErrorOrNil()
}
