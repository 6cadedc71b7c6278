package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitError(t *testing.T) {
	reset := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	err := error(&RateLimitError{Limit: 30, Remaining: 0, Reset: reset})

	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.Contains(t, err.Error(), "remaining 0 of 30")
	assert.Contains(t, err.Error(), "2024-05-01T12:00:00Z")

	var rl *RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, 30, rl.Limit)

	assert.NotContains(t, (&RateLimitError{}).Error(), "resets at")
}

func TestSplitRepositoryID(t *testing.T) {
	owner, name, err := SplitRepositoryID("torvalds/linux")
	require.NoError(t, err)
	assert.Equal(t, "torvalds", owner)
	assert.Equal(t, "linux", name)

	for _, id := range []string{"", "linux", "/linux", "torvalds/", "a/b/c"} {
		_, _, err := SplitRepositoryID(id)
		assert.ErrorIs(t, err, ErrInvalidRepoID, id)
	}
}

func TestRepositoryOwnerName(t *testing.T) {
	repo := Repository{ID: "group/sub/project"}
	assert.Equal(t, "group/sub", repo.Owner())
	assert.Equal(t, "project", repo.Name())

	repo = Repository{ID: "single"}
	assert.Equal(t, "", repo.Owner())
	assert.Equal(t, "single", repo.Name())
}

func TestCommitSubject(t *testing.T) {
	c := Commit{Message: "\n fix leak in parser \n\nlong body"}
	assert.Equal(t, "fix leak in parser", c.Subject())
}

func TestNewClassifiedCommit(t *testing.T) {
	commit := Commit{SHA: "abc", RepositoryID: "o/r"}
	c := NewClassifiedCommit(commit, Classification{
		Category:   CategoryDeadlock,
		Source:     SourceAgent,
		Confidence: 0.7,
		Reasoning:  "lock order",
	})

	assert.Equal(t, commit, c.Commit)
	assert.Equal(t, CategoryDeadlock, c.Category)
	assert.Equal(t, SourceAgent, c.Source)
	assert.Equal(t, 0.7, c.Confidence)
	assert.Equal(t, "lock order", c.Reasoning)
}
