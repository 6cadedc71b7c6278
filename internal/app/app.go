package app

import (
	"context"
	"time"

	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/commitminer/internal/agent"
	"github.com/maxbolgarin/commitminer/internal/classifier"
	"github.com/maxbolgarin/commitminer/internal/model"
	"github.com/maxbolgarin/commitminer/internal/model/interfaces"
	"github.com/maxbolgarin/commitminer/internal/provider"
	"github.com/maxbolgarin/commitminer/internal/report"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
)

// Miner runs the pipeline: find repositories, fetch commits, classify them and write tables
type Miner struct {
	fetcher    *provider.Fetcher
	classifier interfaces.Classifier
	writer     *report.Writer

	cfg Config
	log logze.Logger
}

// RunStats describes a finished run
type RunStats struct {
	Found     int
	Processed int
	Skipped   int
	Commits   int
	BugFixes  int
	Fallbacks int
	Elapsed   time.Duration
}

type fallbackCounter interface {
	Stats() (calls, fallbacks int)
}

// New creates the miner from the config, the config is validated first
func New(ctx context.Context, cfg Config) (*Miner, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, errm.Wrap(err, "validate config")
	}

	codeProvider, err := provider.NewProvider(cfg.Provider)
	if err != nil {
		return nil, errm.Wrap(err, "failed to create code provider")
	}

	var analyzer interfaces.CommitAnalyzer
	if cfg.UseAgent() {
		commitAgent, err := agent.New(ctx, cfg.Agent)
		if err != nil {
			return nil, errm.Wrap(err, "failed to create AI agent")
		}
		analyzer = commitAgent
	}

	cl, err := classifier.New(cfg.Classifier, analyzer)
	if err != nil {
		return nil, errm.Wrap(err, "failed to create classifier")
	}

	return NewWithComponents(cfg, codeProvider, cl)
}

// NewWithComponents creates the miner using already constructed provider and classifier
func NewWithComponents(cfg Config, codeProvider interfaces.CodeProvider, cl interfaces.Classifier) (*Miner, error) {
	if err := cfg.Search.PrepareAndValidate(); err != nil {
		return nil, errm.Wrap(err, "validate search config")
	}
	if codeProvider == nil || cl == nil {
		return nil, errm.New("code provider and classifier are required")
	}

	writer, err := report.NewWriter(cfg.Output)
	if err != nil {
		return nil, errm.Wrap(err, "failed to create writer")
	}

	return &Miner{
		fetcher:    provider.NewFetcher(codeProvider),
		classifier: cl,
		writer:     writer,
		cfg:        cfg,
		log:        logze.With("component", "app"),
	}, nil
}

// Run processes repositories one by one. Discovery errors and write errors stop the run,
// a repository that cannot be fetched is skipped.
func (m *Miner) Run(ctx context.Context) (RunStats, error) {
	var (
		timer = abstract.StartTimer()
		stats RunStats
	)

	m.log.Info("starting run",
		"language", m.cfg.Search.Language,
		"min_stars", m.cfg.Search.MinStars,
		"repositories", m.cfg.Search.MaxRepositories,
		"commits", m.cfg.Search.CommitsPerRepository,
		"classifier", m.classifier.Name(),
	)

	repos, err := m.fetcher.FindRepositories(ctx, m.cfg.Search.Query())
	if err != nil {
		return stats, errm.Wrap(err, "failed to find repositories")
	}
	stats.Found = len(repos)
	if len(repos) == 0 {
		m.log.Warn("no repositories found")
	}

	for i, repo := range repos {
		if err := ctx.Err(); err != nil {
			return stats, m.abort(err, "run interrupted")
		}

		log := m.log.WithFields("repository", repo.ID, "stars", repo.Stars, "n", i+1, "total", len(repos))

		commits, err := m.fetcher.FetchCommits(ctx, repo, m.cfg.Search.CommitsPerRepository)
		if err != nil {
			if ctx.Err() != nil {
				return stats, m.abort(ctx.Err(), "run interrupted")
			}
			log.Warn("skipping repository", "error", err)
			stats.Skipped++
			continue
		}

		classified, bugFixes := m.classify(ctx, commits)

		path, err := m.writer.WriteRepository(repo, classified)
		if err != nil {
			return stats, m.abort(err, "failed to write repository results")
		}

		stats.Processed++
		stats.Commits += len(classified)
		stats.BugFixes += bugFixes

		log.Info("repository processed", "commits", len(classified), "bug_fixes", bugFixes, "file", path)
	}

	if err := m.writer.Flush(); err != nil {
		return stats, errm.Wrap(err, "failed to write results")
	}

	if fc, ok := m.classifier.(fallbackCounter); ok {
		_, stats.Fallbacks = fc.Stats()
	}
	stats.Elapsed = timer.ElapsedTime()

	m.log.Info("run completed",
		"processed", stats.Processed,
		"skipped", stats.Skipped,
		"commits", stats.Commits,
		"bug_fixes", stats.BugFixes,
		"fallbacks", stats.Fallbacks,
		"output", m.writer.Dir(),
		"elapsed", stats.Elapsed.String(),
	)

	return stats, nil
}

// Results returns per-repository results written so far
func (m *Miner) Results() []report.RepositoryResult {
	return m.writer.Results()
}

func (m *Miner) classify(ctx context.Context, commits []model.Commit) ([]model.ClassifiedCommit, int) {
	out := make([]model.ClassifiedCommit, 0, len(commits))
	bugFixes := 0
	for _, commit := range commits {
		result := m.classifier.Classify(ctx, commit.Message)
		if result.Category.IsBugFix() {
			bugFixes++
		}
		m.log.DebugIf(result.Source == model.SourceAgent, "commit classified",
			"sha", commit.SHA, "category", result.Category, "confidence", result.Confidence)
		out = append(out, model.NewClassifiedCommit(commit, result))
	}
	return out, bugFixes
}

// abort writes whatever was collected before returning the error
func (m *Miner) abort(cause error, msg string) error {
	if err := m.writer.Flush(); err != nil {
		m.log.Err(err, "failed to flush partial results")
	} else {
		m.log.Warn("partial results flushed", "repositories", len(m.writer.Results()), "output", m.writer.Dir())
	}
	return errm.Wrap(cause, msg)
}
