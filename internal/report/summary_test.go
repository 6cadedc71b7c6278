package report

import (
	"strings"
	"testing"
	"time"

	"github.com/maxbolgarin/commitminer/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSummary(t *testing.T) {
	ts := time.Now()
	results := []RepositoryResult{
		{
			Repository: model.Repository{ID: "a/one", Stars: 12345},
			Commits: []model.ClassifiedCommit{
				classified("a/one", "1", "", model.CategoryMemoryLeak, ts),
				classified("a/one", "2", "", model.CategoryMemoryLeak, ts),
				classified("a/one", "3", "", model.CategoryDeadlock, ts),
				classified("a/one", "4", "", model.CategoryNonBugFix, ts),
			},
		},
		{
			Repository: model.Repository{ID: "b/two", Stars: 1000},
			Commits: []model.ClassifiedCommit{
				classified("b/two", "5", "", model.CategoryNonBugFix, ts),
			},
		},
	}

	s := BuildSummary(results)
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 3, s.BugFixes)
	assert.InDelta(t, 0.6, s.BugFixRatio(), 0.0001)

	require.Len(t, s.Categories, len(model.Taxonomy()))
	assert.Equal(t, CategoryCount{Category: model.CategoryMemoryLeak, Count: 2}, s.Categories[0])
	assert.Equal(t, CategoryCount{Category: model.CategoryNonBugFix, Count: 2}, s.Categories[len(s.Categories)-1])

	require.Len(t, s.Repositories, 2)
	assert.Equal(t, model.CategoryMemoryLeak, s.Repositories[0].Top)
	assert.Equal(t, 3, s.Repositories[0].BugFixes)
	assert.Equal(t, model.CategoryNonBugFix, s.Repositories[1].Top)

	md := s.Markdown()
	assert.Contains(t, md, "- Bug fixes: 3 (60.0%)")
	assert.Contains(t, md, "| Memory Leak | Memory Safety | 2 | 40.0% |")
	assert.Contains(t, md, "| a/one | 12,345 | 4 | 3 | 75.0% | Memory Leak |")
}

func TestEmptySummary(t *testing.T) {
	s := BuildSummary(nil)
	assert.Zero(t, s.BugFixRatio())
	assert.Contains(t, s.Markdown(), "- Commits: 0")
	assert.NotContains(t, s.Markdown(), "## Repositories")
}

func TestWriteCommitsMarkdown(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	long := strings.Repeat("x", 100)

	first := classified("a/one", "0123456789abcdef", "fix use after free\n\nlong body", model.CategoryDanglingPointer, now.Add(-3*24*time.Hour))
	first.URL = "https://github.com/a/one/commit/0123456789abcdef"
	second := classified("a/one", "fedcba", long, model.CategoryNonBugFix, time.Time{})

	results := []RepositoryResult{
		{
			Repository: model.Repository{ID: "a/one", Stars: 12345, URL: "https://github.com/a/one"},
			Commits:    []model.ClassifiedCommit{first, second},
		},
		{Repository: model.Repository{ID: "b/empty", Stars: 10}},
	}

	var sb strings.Builder
	require.NoError(t, writeCommitsMarkdown(&sb, results, now))
	md := sb.String()

	assert.Contains(t, md, "> Generated: 2024-06-10 12:00:00")
	assert.Contains(t, md, "## a/one\n- **URL**: https://github.com/a/one\n- **Stars**: 12,345\n- **Commits**: 2\n")
	assert.Contains(t, md, "| 3 days ago | dev, jr | fix use after free | Dangling Pointer | [0123456](https://github.com/a/one/commit/0123456789abcdef) |")
	assert.Contains(t, md, "| unknown | dev, jr | "+strings.Repeat("x", 77)+"... | Non-Bug Fix | fedcba |")
	assert.Contains(t, md, "## b/empty\n- **Stars**: 10\n- **Commits**: 0\n\n---")
}
