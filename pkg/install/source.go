// Package install resolves a skill installation request into a concrete
// source directory. Three install modes exist: a local path, inline content
// (or a generated placeholder), and a remote repository URL resolved through
// a shallow clone and a bounded search. Remote resolution hands the caller a
// cleanup hook that must run once installation finishes, success or failure.
package install

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/orgboard/orgboard/pkg/fsys"
	"github.com/orgboard/orgboard/pkg/osutil"
)

// Kind names the install mode a source was resolved from.
type Kind string

const (
	// KindSourcePath is an install from a local directory or definition file.
	KindSourcePath Kind = "source-path"
	// KindSourceURL is an install from a cloned remote repository.
	KindSourceURL Kind = "source-url"
	// KindGenerated is an install from inline content or a templated placeholder.
	KindGenerated Kind = "generated"
	// KindManaged reuses an already-installed global copy.
	KindManaged Kind = "managed"
)

// Source is a closed union over the install modes. Exactly one variant is
// constructed per request and resolved once; downstream code consumes the
// uniform Resolved result.
type Source interface {
	isSource()
}

// PathSource installs from a local path, which may point at either a skill
// directory or its definition file.
type PathSource struct {
	Path string
}

// URLSource installs from a remote repository. SkillHint narrows the search
// when the repository holds more than one skill.
type URLSource struct {
	URL       string
	SkillHint string
}

// InlineSource installs from caller-provided content, or generates a
// placeholder document when Content is empty.
type InlineSource struct {
	Name        string
	Description string
	Content     string
}

// ManagedSource reuses the global store copy at Dir.
type ManagedSource struct {
	Dir string
}

func (PathSource) isSource()    {}
func (URLSource) isSource()     {}
func (InlineSource) isSource()  {}
func (ManagedSource) isSource() {}

// Resolved is the canonical outcome of source resolution: the directory to
// copy from and, for sources staged in temporary space, a cleanup hook the
// caller must invoke on both success and failure paths.
type Resolved struct {
	Kind    Kind
	Dir     string
	Cleanup func() error
}

// Resolver turns a Source into a Resolved directory.
type Resolver struct {
	fs     fsys.FileStore
	pr     fsys.PathResolver
	runner osutil.Runner
	mkTemp func(pattern string) (string, error)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRunner provides the command runner used for remote installs.
func WithRunner(runner osutil.Runner) Option {
	return func(r *Resolver) {
		r.runner = runner
	}
}

// WithTempDirFunc overrides temporary directory creation, used by tests to
// stage fake clones.
func WithTempDirFunc(fn func(pattern string) (string, error)) Option {
	return func(r *Resolver) {
		r.mkTemp = fn
	}
}

// NewResolver creates a resolver over the given ports.
func NewResolver(fs fsys.FileStore, pr fsys.PathResolver, opts ...Option) *Resolver {
	r := &Resolver{
		fs: fs,
		pr: pr,
		mkTemp: func(pattern string) (string, error) {
			return os.MkdirTemp("", pattern)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve dispatches on the source variant. The returned Cleanup is always
// non-nil so callers can defer it unconditionally.
func (r *Resolver) Resolve(ctx context.Context, source Source) (Resolved, error) {
	var resolved Resolved
	var err error

	switch s := source.(type) {
	case PathSource:
		resolved, err = r.resolveLocal(s)
	case URLSource:
		resolved, err = r.resolveRemote(ctx, s)
	case InlineSource:
		resolved, err = r.resolveInline(s)
	case ManagedSource:
		resolved = Resolved{Kind: KindManaged, Dir: s.Dir}
	default:
		err = errors.Errorf("unknown install source %T", source)
	}

	if err != nil {
		return Resolved{}, err
	}
	if resolved.Cleanup == nil {
		resolved.Cleanup = func() error { return nil }
	}
	return resolved, nil
}
