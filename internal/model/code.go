package model

import (
	"strings"
	"time"
)

// ProviderConfig represents provider-specific configuration
type ProviderConfig struct {
	BaseURL string
	Token   string
}

// Repository represents a repository found by a search across different providers
type Repository struct {
	ID            string // owner/name
	Stars         int
	Language      string
	DefaultBranch string
	URL           string
	Description   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Owner returns the owner (or namespace for nested groups) part of the repository ID
func (r Repository) Owner() string {
	i := strings.LastIndex(r.ID, "/")
	if i < 0 {
		return ""
	}
	return r.ID[:i]
}

// Name returns the name part of the repository ID
func (r Repository) Name() string {
	return r.ID[strings.LastIndex(r.ID, "/")+1:]
}

// RepositoryQuery describes which repositories to look for
type RepositoryQuery struct {
	Language string
	MinStars int
	Limit    int
}
