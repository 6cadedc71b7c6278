package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/maxbolgarin/errm"
)

var (
	ErrUnauthorized     = errm.New("access token is missing or invalid, provide a valid token in PROVIDER_TOKEN or GITHUB_TOKEN")
	ErrRateLimited      = errm.New("API rate limit exceeded")
	ErrNotFound         = errm.New("repository not found or inaccessible")
	ErrEmptyRepository  = errm.New("repository is empty")
	ErrForbidden        = errm.New("access forbidden")
	ErrUnknownCategory  = errm.New("unknown category")
	ErrInvalidRepoID    = errm.New("invalid repository ID, expected 'owner/name'")
	ErrInvalidRepoQuery = errm.New("invalid repository query")
)

// RateLimitError is returned when provider quota is exhausted.
// Zero Limit or Reset means the value was not reported by provider.
type RateLimitError struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

func (e *RateLimitError) Error() string {
	var b strings.Builder
	b.WriteString(ErrRateLimited.Error())
	fmt.Fprintf(&b, ": remaining %d", e.Remaining)
	if e.Limit > 0 {
		fmt.Fprintf(&b, " of %d", e.Limit)
	}
	if !e.Reset.IsZero() {
		fmt.Fprintf(&b, ", resets at %s", e.Reset.UTC().Format(time.RFC3339))
	}
	return b.String()
}

// Unwrap makes errors.Is(err, ErrRateLimited) true
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// SplitRepositoryID splits "owner/name" into parts
func SplitRepositoryID(id string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(id, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", errm.Wrap(ErrInvalidRepoID, id)
	}
	return owner, name, nil
}
