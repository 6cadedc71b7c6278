package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/maxbolgarin/commitminer/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apiPrefix = "/api/v3"

func newTestProvider(t *testing.T, mux *http.ServeMux) (*Provider, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	p, err := New(model.ProviderConfig{Token: "test-token", BaseURL: server.URL})
	require.NoError(t, err)
	return p, server
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func repoItem(name string, stars int) map[string]any {
	return map[string]any{
		"full_name":        name,
		"stargazers_count": stars,
		"language":         "C",
		"default_branch":   "master",
		"html_url":         "https://github.com/" + name,
	}
}

func commitItems(from, count int) []map[string]any {
	out := make([]map[string]any, 0, count)
	for i := from; i < from+count; i++ {
		out = append(out, map[string]any{
			"sha":      fmt.Sprintf("sha%03d", i),
			"html_url": fmt.Sprintf("https://github.com/o/r/commit/sha%03d", i),
			"commit": map[string]any{
				"message": fmt.Sprintf("commit %d", i),
				"author": map[string]any{
					"name": "dev",
					"date": "2024-01-02T03:04:05Z",
				},
			},
		})
	}
	return out
}

func TestNew(t *testing.T) {
	_, err := New(model.ProviderConfig{})
	require.Error(t, err)

	p, err := New(model.ProviderConfig{Token: "token"})
	require.NoError(t, err)
	assert.Equal(t, "https://api.github.com/", p.client.BaseURL.String())
}

func TestSearchRepositories(t *testing.T) {
	var server *httptest.Server
	var requests int

	mux := http.NewServeMux()
	mux.HandleFunc(apiPrefix+"/search/repositories", func(w http.ResponseWriter, r *http.Request) {
		requests++
		q := r.URL.Query()
		assert.Equal(t, "language:C stars:>=10000", q.Get("q"))
		assert.Equal(t, "stars", q.Get("sort"))
		assert.Equal(t, "desc", q.Get("order"))
		assert.Equal(t, "5", q.Get("per_page"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		switch q.Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s%s/search/repositories?page=2>; rel="next"`, server.URL, apiPrefix))
			writeJSON(t, w, map[string]any{
				"total_count": 6,
				"items":       []any{repoItem("a/one", 90000), repoItem("b/two", 50000), repoItem("c/three", 40000)},
			})
		case "2":
			writeJSON(t, w, map[string]any{
				"total_count": 6,
				"items":       []any{repoItem("d/four", 30000), repoItem("e/five", 20000), repoItem("f/six", 10000)},
			})
		default:
			t.Errorf("unexpected page %q", q.Get("page"))
		}
	})

	var p *Provider
	p, server = newTestProvider(t, mux)

	repos, err := p.SearchRepositories(context.Background(), model.RepositoryQuery{Language: "C", MinStars: 10000, Limit: 5})
	require.NoError(t, err)
	require.Len(t, repos, 5)
	assert.Equal(t, 2, requests)

	assert.Equal(t, "a/one", repos[0].ID)
	assert.Equal(t, 90000, repos[0].Stars)
	assert.Equal(t, "C", repos[0].Language)
	assert.Equal(t, "master", repos[0].DefaultBranch)
	assert.Equal(t, "e/five", repos[4].ID)
}

func TestSearchQueryQuotesLanguage(t *testing.T) {
	q := buildSearchQuery(model.RepositoryQuery{Language: "Vim Script", MinStars: 5})
	assert.Equal(t, `language:"Vim Script" stars:>=5`, q)
}

func TestListCommitsFewerThanLimit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(apiPrefix+"/repos/o/r/commits", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		writeJSON(t, w, commitItems(0, 42))
	})
	p, _ := newTestProvider(t, mux)

	commits, err := p.ListCommits(context.Background(), "o/r", 1000)
	require.NoError(t, err)
	require.Len(t, commits, 42)

	first := commits[0]
	assert.Equal(t, "sha000", first.SHA)
	assert.Equal(t, "commit 0", first.Message)
	assert.Equal(t, "dev", first.Author)
	assert.Equal(t, "o/r", first.RepositoryID)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), first.Timestamp.UTC())
}

func TestListCommitsPagination(t *testing.T) {
	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc(apiPrefix+"/repos/o/r/commits", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		page = max(page, 1)
		if page < 3 {
			w.Header().Set("Link", fmt.Sprintf(`<%s%s/repos/o/r/commits?page=%d>; rel="next"`, server.URL, apiPrefix, page+1))
		}
		writeJSON(t, w, commitItems((page-1)*100, 100))
	})

	var p *Provider
	p, server = newTestProvider(t, mux)

	commits, err := p.ListCommits(context.Background(), "o/r", 120)
	require.NoError(t, err)
	require.Len(t, commits, 120)
	assert.Equal(t, "sha000", commits[0].SHA)
	assert.Equal(t, "sha119", commits[119].SHA)
}

func TestListCommitsErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "not found", status: http.StatusNotFound, want: model.ErrNotFound},
		{name: "empty repository", status: http.StatusConflict, want: model.ErrEmptyRepository},
		{name: "unauthorized", status: http.StatusUnauthorized, want: model.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc(apiPrefix+"/repos/o/r/commits", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"message":"failure"}`))
			})
			p, _ := newTestProvider(t, mux)

			_, err := p.ListCommits(context.Background(), "o/r", 10)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), err)
		})
	}
}

func TestListCommitsInvalidID(t *testing.T) {
	p, _ := newTestProvider(t, http.NewServeMux())
	_, err := p.ListCommits(context.Background(), "no-slash", 10)
	assert.ErrorIs(t, err, model.ErrInvalidRepoID)
}

func TestSearchRateLimit(t *testing.T) {
	reset := time.Now().Add(time.Hour).Unix()

	mux := http.NewServeMux()
	mux.HandleFunc(apiPrefix+"/search/repositories", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "30")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset, 10))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"API rate limit exceeded"}`))
	})
	p, _ := newTestProvider(t, mux)

	_, err := p.SearchRepositories(context.Background(), model.RepositoryQuery{Language: "C", Limit: 5})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrRateLimited))

	var rl *model.RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, 30, rl.Limit)
	assert.Equal(t, 0, rl.Remaining)
	assert.Equal(t, reset, rl.Reset.Unix())
}

func TestSearchUnauthorized(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(apiPrefix+"/search/repositories", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
	})
	p, _ := newTestProvider(t, mux)

	_, err := p.SearchRepositories(context.Background(), model.RepositoryQuery{Language: "C", Limit: 5})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrUnauthorized))
}
