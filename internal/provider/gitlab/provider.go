package gitlab

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/maxbolgarin/commitminer/internal/model"
	"github.com/maxbolgarin/commitminer/internal/model/interfaces"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

const (
	defaultBaseURL = "https://gitlab.com"

	maxPerPage = 100
)

var _ interfaces.CodeProvider = (*Provider)(nil)

// Provider implements the CodeProvider interface for GitLab
type Provider struct {
	client *gitlab.Client
	config model.ProviderConfig
	logger logze.Logger
}

// New creates a new GitLab provider
func New(config model.ProviderConfig) (*Provider, error) {
	if config.Token == "" {
		return nil, errm.New("GitLab token is required")
	}
	logger := logze.With("provider", "gitlab", "component", "provider")

	baseURL := lang.Check(config.BaseURL, defaultBaseURL)

	// Rate limit responses must surface to the caller instead of being retried
	client, err := gitlab.NewClient(config.Token, gitlab.WithBaseURL(baseURL), gitlab.WithCustomRetryMax(0))
	if err != nil {
		return nil, errm.Wrap(err, "failed to create GitLab client")
	}

	return &Provider{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

// SearchRepositories lists projects with the programming language ordered by star count.
// GitLab has no server side star filter, so listing stops at the first project below the threshold.
func (p *Provider) SearchRepositories(ctx context.Context, query model.RepositoryQuery) ([]model.Repository, error) {
	opts := &gitlab.ListProjectsOptions{
		ListOptions: gitlab.ListOptions{
			Page:    1,
			PerPage: min(query.Limit, maxPerPage),
		},
		OrderBy:                 gitlab.Ptr("star_count"),
		Sort:                    gitlab.Ptr("desc"),
		WithProgrammingLanguage: gitlab.Ptr(query.Language),
	}

	var out []model.Repository
	for len(out) < query.Limit {
		projects, resp, err := p.client.Projects.ListProjects(opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, convertError(err, "failed to list projects")
		}

		for _, project := range projects {
			if project.StarCount < query.MinStars {
				return out, nil
			}
			if len(out) >= query.Limit {
				break
			}
			out = append(out, convertProject(project, query.Language))
		}

		if resp.NextPage == 0 || len(projects) == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return out, nil
}

// ListCommits retrieves up to limit most recent commits of the project default branch
func (p *Provider) ListCommits(ctx context.Context, repositoryID string, limit int) ([]model.Commit, error) {
	opts := &gitlab.ListCommitsOptions{
		ListOptions: gitlab.ListOptions{
			Page:    1,
			PerPage: min(limit, maxPerPage),
		},
	}

	var out []model.Commit
	for len(out) < limit {
		commits, resp, err := p.client.Commits.ListCommits(repositoryID, opts, gitlab.WithContext(ctx))
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

func convertProject(project *gitlab.Project, language string) model.Repository {
	return model.Repository{
		ID:            project.PathWithNamespace,
		Stars:         project.StarCount,
		Language:      language,
		DefaultBranch: project.DefaultBranch,
		URL:           project.WebURL,
		Description:   project.Description,
		CreatedAt:     lang.Deref(project.CreatedAt),
		UpdatedAt:     lang.Deref(project.LastActivityAt),
	}
}

func convertCommit(commit *gitlab.Commit, repositoryID string) model.Commit {
	timestamp := lang.Deref(commit.AuthoredDate)
	if timestamp.IsZero() {
		timestamp = lang.Deref(commit.CommittedDate)
	}

	return model.Commit{
		SHA:          commit.ID,
		Message:      commit.Message,
		Author:       commit.AuthorName,
		Timestamp:    timestamp,
		URL:          commit.WebURL,
		RepositoryID: repositoryID,
	}
}

func convertError(err error, msg string) error {
	var respErr *gitlab.ErrorResponse
	if !errors.As(err, &respErr) || respErr.Response == nil {
		return errm.Wrap(err, msg)
	}

	switch respErr.Response.StatusCode {
	case http.StatusUnauthorized:
		return errm.Wrap(model.ErrUnauthorized, respErr.Message)
	case http.StatusNotFound:
		return errm.Wrap(model.ErrNotFound, respErr.Message)
	case http.StatusForbidden:
		return errm.Wrap(model.ErrForbidden, respErr.Message)
	case http.StatusTooManyRequests:
		return parseRateLimit(respErr.Response.Header)
	}

	return errm.Wrap(err, msg)
}

func parseRateLimit(header http.Header) *model.RateLimitError {
	out := &model.RateLimitError{}
	out.Limit, _ = strconv.Atoi(header.Get("RateLimit-Limit"))
	out.Remaining, _ = strconv.Atoi(header.Get("RateLimit-Remaining"))
	if reset, err := strconv.ParseInt(header.Get("RateLimit-Reset"), 10, 64); err == nil && reset > 0 {
		out.Reset = time.Unix(reset, 0)
	}
	return out
}
