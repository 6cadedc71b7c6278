package interfaces

import (
	"context"

	"github.com/maxbolgarin/commitminer/internal/model"
)

// CodeProvider defines the interface for different code hosting providers (GitHub, GitLab)
type CodeProvider interface {
	// SearchRepositories returns up to query.Limit repositories ordered by stars descending
	SearchRepositories(ctx context.Context, query model.RepositoryQuery) ([]model.Repository, error)

	// ListCommits returns up to limit most recent commits of the repository, paginating as needed
	ListCommits(ctx context.Context, repositoryID string, limit int) ([]model.Commit, error)
}

// AgentAPI defines the interface for calling LLM AI models
type AgentAPI interface {
	CallAPI(ctx context.Context, req model.APIRequest) (model.APIResponse, error)
}

// CommitAnalyzer asks an external service for a category of a commit message
type CommitAnalyzer interface {
	ClassifyCommit(ctx context.Context, message string) (model.Classification, error)
}

// Classifier assigns exactly one category to a commit message. It never fails:
// implementations degrade to a local result instead of returning an error.
type Classifier interface {
	Classify(ctx context.Context, message string) model.Classification
	Name() string
}
