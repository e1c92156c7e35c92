package skillsvc

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/orgboard/orgboard/pkg/agentconf"
	"github.com/orgboard/orgboard/pkg/audit"
	"github.com/orgboard/orgboard/pkg/fsys"
	"github.com/orgboard/orgboard/pkg/install"
	"github.com/orgboard/orgboard/pkg/logger"
	"github.com/orgboard/orgboard/pkg/osutil"
	"github.com/orgboard/orgboard/pkg/skills"
	"github.com/orgboard/orgboard/pkg/telemetry"
	"github.com/orgboard/orgboard/pkg/workspace"
)

// Scope selects the storage tier an operation acts on.
type Scope string

const (
	// ScopeGlobal targets the shared store.
	ScopeGlobal Scope = "global"
	// ScopeAgent targets an agent's override store.
	ScopeAgent Scope = "agent"
)

// Service is the public façade over the skill engine. All operations are
// request/response and single-flight per call; concurrent installs of the
// same skill id race on last-writer-wins directory replacement.
type Service struct {
	fs            fsys.FileStore
	pr            fsys.PathResolver
	layout        Layout
	repo          *skills.Repository
	resolver      *install.Resolver
	sync          *workspace.Synchronizer
	conf          *agentconf.Store
	recorder      *audit.Recorder
	workspaceDirs []string
}

// Option configures a Service.
type Option func(*Service)

// WithRunner enables remote installs through the given command runner.
func WithRunner(runner osutil.Runner) Option {
	return func(s *Service) {
		s.resolver = install.NewResolver(s.fs, s.pr, install.WithRunner(runner))
	}
}

// WithResolver replaces the install source resolver, used by tests to stage
// fake clones.
func WithResolver(resolver *install.Resolver) Option {
	return func(s *Service) {
		s.resolver = resolver
	}
}

// WithRecorder enables best-effort audit logging.
func WithRecorder(recorder *audit.Recorder) Option {
	return func(s *Service) {
		s.recorder = recorder
	}
}

// WithWorkspaceDirs sets the relative workspace skills directories mirrored
// under each agent's workspace root. Without this option no mirroring
// happens; install and assign still update the store and assignment list.
func WithWorkspaceDirs(dirs ...string) Option {
	return func(s *Service) {
		s.workspaceDirs = dirs
	}
}

// NewService creates a service over the given ports and store layout.
func NewService(fs fsys.FileStore, pr fsys.PathResolver, layout Layout, opts ...Option) *Service {
	s := &Service{
		fs:       fs,
		pr:       pr,
		layout:   layout,
		repo:     skills.NewRepository(fs, pr),
		resolver: install.NewResolver(fs, pr),
		sync:     workspace.NewSynchronizer(fs, pr),
		conf:     agentconf.NewStore(fs, pr),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the skills visible to an agent: global store, agent-scoped
// store, then configured extra directories, later layers shadowing earlier
// ones by id, filtered by the agent's assignment list and sorted by id.
func (s *Service) List(ctx context.Context, agentID string) ([]skills.Record, error) {
	var records []skills.Record
	err := telemetry.WithSpan(ctx, "skills.list", func(ctx context.Context) error {
		doc, err := s.conf.Load(s.layout.AgentConfigPath(agentID))
		if err != nil {
			return err
		}
		cfg := agentconf.ResolveSkillsConfig(doc)
		records = s.listResolved(ctx, agentID, cfg)
		return nil
	}, attribute.String("agent.id", agentID))
	return records, err
}

func (s *Service) listResolved(ctx context.Context, agentID string, cfg agentconf.SkillsConfig) []skills.Record {
	layers := []skills.Layer{
		{Source: skills.SourceManaged, Dir: s.layout.GlobalSkillsDir(), Enabled: cfg.IncludeManaged},
		{Source: skills.SourceManaged, Dir: s.layout.AgentSkillsDir(agentID), Enabled: true},
	}
	for _, dir := range cfg.ExtraDirs {
		expanded, err := s.pr.ExpandHome(dir)
		if err != nil {
			logger.G(ctx).WithField("dir", dir).WithError(err).Warn("failed to expand extra skill directory")
			continue
		}
		layers = append(layers, skills.Layer{Source: skills.SourceExtra, Dir: expanded, Enabled: true})
	}

	merged := s.repo.Merge(ctx, layers)
	records := skills.SortByID(merged)

	if len(cfg.Assigned) == 0 {
		return records
	}
	assigned := make(map[string]bool, len(cfg.Assigned))
	for _, id := range cfg.Assigned {
		assigned[id] = true
	}
	filtered := records[:0]
	for _, record := range records {
		if assigned[record.ID] {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// ListGlobal returns the skills in the shared store, sorted by id.
func (s *Service) ListGlobal(ctx context.Context) ([]skills.Record, error) {
	var records []skills.Record
	err := telemetry.WithSpan(ctx, "skills.list_global", func(ctx context.Context) error {
		discovered, _ := s.repo.Discover(ctx, s.layout.GlobalSkillsDir(), skills.SourceManaged)
		merged := make(map[string]skills.Record, len(discovered))
		for _, record := range discovered {
			merged[record.ID] = record
		}
		records = skills.SortByID(merged)
		return nil
	})
	return records, err
}

// BuildPrompt assembles the bounded skills block for an agent's model
// context. Skills with disable-model-invocation are excluded, and a
// disabled skills configuration yields the empty-block sentinel.
func (s *Service) BuildPrompt(ctx context.Context, agentID string) (skills.Prompt, error) {
	var prompt skills.Prompt
	err := telemetry.WithSpan(ctx, "skills.build_prompt", func(ctx context.Context) error {
		doc, err := s.conf.Load(s.layout.AgentConfigPath(agentID))
		if err != nil {
			return err
		}
		cfg := agentconf.ResolveSkillsConfig(doc)

		if !cfg.Enabled {
			prompt = skills.AssemblePrompt(nil, cfg.Prompt)
			return nil
		}

		records := s.listResolved(ctx, agentID, cfg)
		eligible := make([]skills.Record, 0, len(records))
		for _, record := range records {
			fm := record.Frontmatter
			if fm.DisableModelInvocation != nil && *fm.DisableModelInvocation {
				continue
			}
			eligible = append(eligible, record)
		}

		prompt = skills.AssemblePrompt(eligible, cfg.Prompt)
		return nil
	}, attribute.String("agent.id", agentID))
	return prompt, err
}

// record writes an audit event when a recorder is configured. Failures are
// logged and swallowed.
func (s *Service) record(ctx context.Context, event audit.Event) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, event); err != nil {
		logger.G(ctx).WithError(err).Warn("failed to record skill event")
	}
}
