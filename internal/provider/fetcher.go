package provider

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/maxbolgarin/commitminer/internal/model"
	"github.com/maxbolgarin/commitminer/internal/model/interfaces"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
)

// Fetcher finds repositories and fetches their commits using a code provider.
// It enforces the query contract on top of whatever the provider returns.
type Fetcher struct {
	provider interfaces.CodeProvider
	log      logze.Logger
}

// NewFetcher creates a new fetcher instance
func NewFetcher(provider interfaces.CodeProvider) *Fetcher {
	return &Fetcher{
		provider: provider,
		log:      logze.With("component", "fetcher"),
	}
}

// FindRepositories returns at most query.Limit repositories having at least query.MinStars stars,
// ordered by star count descending
func (f *Fetcher) FindRepositories(ctx context.Context, query model.RepositoryQuery) ([]model.Repository, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}
	log := f.log.WithFields("language", query.Language, "min_stars", query.MinStars, "limit", query.Limit)
	log.Info("searching repositories")

	repos, err := f.provider.SearchRepositories(ctx, query)
	if err != nil {
		return nil, errm.Wrap(err, "failed to search repositories")
	}

	out := make([]model.Repository, 0, min(len(repos), query.Limit))
	for _, repo := range repos {
		if repo.Stars < query.MinStars {
			log.Debug("skipping repository below star threshold", "repository", repo.ID, "stars", repo.Stars)
			continue
		}
		out = append(out, repo)
	}

	slices.SortStableFunc(out, func(a, b model.Repository) int {
		return cmp.Compare(b.Stars, a.Stars)
	})
	if len(out) > query.Limit {
		out = out[:query.Limit]
	}

	log.Info("found repositories", "count", len(out))

	return out, nil
}

// FetchCommits returns up to limit most recent commits of the repository.
// A repository with fewer commits than limit is not an error.
func (f *Fetcher) FetchCommits(ctx context.Context, repo model.Repository, limit int) ([]model.Commit, error) {
	if limit < 1 {
		return nil, errm.Errorf("commit limit must be positive, got %d", limit)
	}

	commits, err := f.provider.ListCommits(ctx, repo.ID, limit)
	if err != nil {
		return nil, errm.Wrap(err, "failed to list commits")
	}
	if len(commits) > limit {
		commits = commits[:limit]
	}

	for i := range commits {
		commits[i].RepositoryID = repo.ID
	}

	f.log.Debug("fetched commits", "repository", repo.ID, "count", len(commits), "limit", limit)

	return commits, nil
}

func validateQuery(query model.RepositoryQuery) error {
	switch {
	case strings.TrimSpace(query.Language) == "":
		return errm.Wrap(model.ErrInvalidRepoQuery, "language is required")
	case query.MinStars < 0:
		return errm.Wrap(model.ErrInvalidRepoQuery, "min stars must not be negative")
	case query.Limit < 1:
		return errm.Wrap(model.ErrInvalidRepoQuery, "limit must be positive")
	}
	return nil
}
