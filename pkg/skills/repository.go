package skills

import (
	"context"
	"strings"

	"github.com/orgboard/orgboard/pkg/fsys"
	"github.com/orgboard/orgboard/pkg/logger"
)

// SkipReason explains why a directory under a skill store did not yield a
// record. Skips are informational; discovery never fails over one bad entry.
type SkipReason string

const (
	// SkipNoDefinition marks directories without a SKILL.md file.
	SkipNoDefinition SkipReason = "no-definition-file"
	// SkipUnreadable marks directories whose definition file could not be read.
	SkipUnreadable SkipReason = "definition-unreadable"
	// SkipDisabled marks skills whose frontmatter sets enabled: false.
	SkipDisabled SkipReason = "disabled"
	// SkipEmptyID marks skills whose normalized id is empty.
	SkipEmptyID SkipReason = "empty-id"
)

// Skip records a directory excluded during discovery and why.
type Skip struct {
	Dir    string
	Reason SkipReason
}

// Repository discovers skills inside a store directory.
type Repository struct {
	fs fsys.FileStore
	pr fsys.PathResolver
}

// NewRepository creates a repository over the given file store.
func NewRepository(fs fsys.FileStore, pr fsys.PathResolver) *Repository {
	return &Repository{fs: fs, pr: pr}
}

// Discover lists the immediate child directories of baseDir and parses each
// one holding a definition file into a Record tagged with source. The result
// is unsorted; ordering is imposed by callers. Per-directory failures are
// reported as Skips, never as errors.
func (r *Repository) Discover(ctx context.Context, baseDir string, source Source) ([]Record, []Skip) {
	names, err := r.fs.ListDirectories(baseDir)
	if err != nil {
		logger.G(ctx).WithField("dir", baseDir).Debug("skill directory not readable, skipping")
		return nil, nil
	}

	var records []Record
	var skips []Skip
	for _, name := range names {
		dir := r.pr.Join(baseDir, name)
		record, skip := r.load(dir, name, source)
		if skip != nil {
			logger.G(ctx).WithField("dir", dir).WithField("reason", skip.Reason).Debug("skipping skill directory")
			skips = append(skips, *skip)
			continue
		}
		records = append(records, *record)
	}
	return records, skips
}

func (r *Repository) load(dir, dirName string, source Source) (*Record, *Skip) {
	definitionPath := r.pr.Join(dir, DefinitionFileName)
	if !r.fs.Exists(definitionPath) {
		return nil, &Skip{Dir: dir, Reason: SkipNoDefinition}
	}

	raw, err := r.fs.ReadFile(definitionPath)
	if err != nil {
		return nil, &Skip{Dir: dir, Reason: SkipUnreadable}
	}

	meta, body := ParseFrontmatter(raw)
	if meta.Enabled != nil && !*meta.Enabled {
		return nil, &Skip{Dir: dir, Reason: SkipDisabled}
	}

	id := NormalizeID(meta.Name)
	if id == "" {
		id = NormalizeID(dirName)
	}
	if id == "" {
		return nil, &Skip{Dir: dir, Reason: SkipEmptyID}
	}

	name := meta.Name
	if name == "" {
		name = HumanizeID(dirName)
	}

	content := strings.TrimSpace(body)

	description := meta.Description
	if description == "" {
		description = SummarizeBody(content)
	}

	return &Record{
		ID:                 id,
		Name:               name,
		Description:        description,
		Source:             source,
		Dir:                dir,
		DefinitionFilePath: definitionPath,
		Content:            content,
		Frontmatter:        meta,
	}, nil
}
