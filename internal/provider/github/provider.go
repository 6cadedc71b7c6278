package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/maxbolgarin/commitminer/internal/model"
	"github.com/maxbolgarin/commitminer/internal/model/interfaces"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	"golang.org/x/oauth2"
)

var _ interfaces.CodeProvider = (*Provider)(nil)

const (
	defaultBaseURL = "https://github.com"

	maxPerPage = 100

	// GitHub search API returns only the first 1000 results for any query
	maxSearchResults = 1000
)

// Provider implements the CodeProvider interface for GitHub
type Provider struct {
	client *github.Client
	config model.ProviderConfig
	logger logze.Logger
}

// New creates a new GitHub provider
func New(config model.ProviderConfig) (*Provider, error) {
	if config.Token == "" {
		return nil, errm.New("GitHub token is required")
	}
	log := logze.With("provider", "github", "component", "provider")

	// Create OAuth2 token source
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: config.Token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	client := github.NewClient(tc)

	// Set base URL if provided (for GitHub Enterprise)
	if config.BaseURL != "" && config.BaseURL != defaultBaseURL {
		var err error
		client, err = client.WithEnterpriseURLs(config.BaseURL, config.BaseURL)
		if err != nil {
			return nil, errm.Wrap(err, "failed to create GitHub Enterprise client")
		}
	}

	return &Provider{
		client: client,
		config: config,
		logger: log,
	}, nil
}

// SearchRepositories searches repositories by language and minimum number of stars, most starred first
func (p *Provider) SearchRepositories(ctx context.Context, query model.RepositoryQuery) ([]model.Repository, error) {
	q := buildSearchQuery(query)
	opts := &github.SearchOptions{
		Sort:  "stars",
		Order: "desc",
		ListOptions: github.ListOptions{
			PerPage: min(query.Limit, maxPerPage),
		},
	}

	if query.Limit > maxSearchResults {
		p.logger.Warn("GitHub search returns at most 1000 results", "limit", query.Limit)
	}

	out := make([]model.Repository, 0, min(query.Limit, maxSearchResults))
	for len(out) < query.Limit {
		result, resp, err := p.client.Search.Repositories(ctx, q, opts)
		if err != nil {
			return nil, convertError(err, "failed to search repositories")
		}
		logRate(p.logger, resp)

		for _, repo := range result.Repositories {
			if len(out) >= query.Limit {
				break
			}
			out = append(out, convertRepository(repo))
		}

		if resp.NextPage == 0 || len(result.Repositories) == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	p.logger.Debug("search completed", "query", q, "count", len(out))

	return out, nil
}

// ListCommits retrieves up to limit most recent commits from the default branch
func (p *Provider) ListCommits(ctx context.Context, repositoryID string, limit int) ([]model.Commit, error) {
	owner, repo, err := model.SplitRepositoryID(repositoryID)
	if err != nil {
		return nil, err
	}

	// Page size stays the same for every request, otherwise page offsets shift
	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: min(limit, maxPerPage)},
	}

	out := make([]model.Commit, 0, min(limit, maxPerPage))
	for len(out) < limit {
		commits, resp, err := p.client.Repositories.ListCommits(ctx, owner, repo, opts)
		if err != nil {
			return nil, convertError(err, "failed to list commits")
		}

		for _, commit := range commits {
			if len(out) >= limit {
				break
			}
			out = append(out, convertCommit(commit, repositoryID))
		}

		if resp.NextPage == 0 || len(commits) == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return out, nil
}

func buildSearchQuery(query model.RepositoryQuery) string {
	language := query.Language
	if strings.ContainsAny(language, " \t") {
		language = `"` + language + `"`
	}
	return fmt.Sprintf("language:%s stars:>=%d", language, query.MinStars)
}

func convertRepository(repo *github.Repository) model.Repository {
	return model.Repository{
		ID:            repo.GetFullName(),
		Stars:         repo.GetStargazersCount(),
		Language:      repo.GetLanguage(),
		DefaultBranch: repo.GetDefaultBranch(),
		URL:           repo.GetHTMLURL(),
		Description:   repo.GetDescription(),
		CreatedAt:     repo.GetCreatedAt().Time,
		UpdatedAt:     repo.GetUpdatedAt().Time,
	}
}

func convertCommit(commit *github.RepositoryCommit, repositoryID string) model.Commit {
	gitCommit := commit.GetCommit()

	author := gitCommit.GetAuthor().GetName()
	if author == "" {
		author = commit.GetAuthor().GetLogin()
	}

	return model.Commit{
		SHA:          commit.GetSHA(),
		Message:      gitCommit.GetMessage(),
		Author:       author,
		Timestamp:    gitCommit.GetAuthor().GetDate().Time,
		URL:          commit.GetHTMLURL(),
		RepositoryID: repositoryID,
	}
}

// convertError maps go-github errors to model errors keeping the original message
func convertError(err error, msg string) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &model.RateLimitError{
			Limit:     rateErr.Rate.Limit,
			Remaining: rateErr.Rate.Remaining,
			Reset:     rateErr.Rate.Reset.Time,
		}
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		out := &model.RateLimitError{}
		if abuseErr.RetryAfter != nil {
			out.Reset = time.Now().Add(*abuseErr.RetryAfter)
		}
		return out
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusUnauthorized:
			return errm.Wrap(model.ErrUnauthorized, respErr.Message)
		case http.StatusNotFound:
			return errm.Wrap(model.ErrNotFound, respErr.Message)
		case http.StatusConflict:
			return errm.Wrap(model.ErrEmptyRepository, respErr.Message)
		case http.StatusForbidden:
			return errm.Wrap(model.ErrForbidden, respErr.Message)
		}
	}

	return errm.Wrap(err, msg)
}

func logRate(log logze.Logger, resp *github.Response) {
	if resp == nil {
		return
	}
	log.Debug("rate limit", "remaining", resp.Rate.Remaining, "limit", resp.Rate.Limit)
}
