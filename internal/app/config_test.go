package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/maxbolgarin/commitminer/internal/agent"
	"github.com/maxbolgarin/commitminer/internal/classifier"
	"github.com/maxbolgarin/commitminer/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PROVIDER_TOKEN", "GITHUB_TOKEN", "AGENT_API_KEY", "CLASSIFIER_MODE", "SEARCH_LANGUAGE", "SEARCH_MIN_STARS"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROVIDER_TOKEN", "token")

	cfg, err := LoadConfig("", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.NoError(t, cfg.PrepareAndValidate())

	assert.Equal(t, "C", cfg.Search.Language)
	assert.Equal(t, 1000, cfg.Search.MinStars)
	assert.Equal(t, 10, cfg.Search.MaxRepositories)
	assert.Equal(t, 100, cfg.Search.CommitsPerRepository)
	assert.Equal(t, "results", cfg.Output.Dir)
	assert.Equal(t, provider.GitHub, cfg.Provider.Type)
	assert.Equal(t, classifier.ModeAuto, cfg.Classifier.Mode)
	assert.False(t, cfg.UseAgent())
}

func TestLoadConfigEnvFileAndLegacyToken(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("GITHUB_TOKEN=legacy\nAGENT_API_KEY=key\nSEARCH_MIN_STARS=5\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("GITHUB_TOKEN")
		_ = os.Unsetenv("AGENT_API_KEY")
		_ = os.Unsetenv("SEARCH_MIN_STARS")
	})

	cfg, err := LoadConfig("", envFile)
	require.NoError(t, err)
	require.NoError(t, cfg.PrepareAndValidate())

	assert.Equal(t, "legacy", cfg.Provider.Token)
	assert.Equal(t, 5, cfg.Search.MinStars)
	assert.True(t, cfg.UseAgent())
	assert.Equal(t, agent.OpenAI, cfg.Agent.Type)
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider:
  type: gitlab
  token: file-token
search:
  language: Rust
  max_repositories: 3
classifier:
  mode: keyword
output:
  dir: out
`), 0o600))

	cfg, err := LoadConfig(path, "")
	require.NoError(t, err)
	require.NoError(t, cfg.PrepareAndValidate())

	assert.Equal(t, provider.GitLab, cfg.Provider.Type)
	assert.Equal(t, "Rust", cfg.Search.Language)
	assert.Equal(t, 3, cfg.Search.MaxRepositories)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.False(t, cfg.UseAgent())
}

func TestPrepareAndValidate(t *testing.T) {
	cfg := Config{Search: SearchConfig{Language: "C", MaxRepositories: 1, CommitsPerRepository: 1}}
	err := cfg.PrepareAndValidate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, provider.ErrMissingToken))

	cfg.Provider.Token = "token"
	require.NoError(t, cfg.PrepareAndValidate())

	cfg.Classifier.Mode = classifier.ModeAgent
	err = cfg.PrepareAndValidate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, agent.ErrMissingAPIKey))

	bad := Config{Provider: provider.Config{Token: "t"}, Search: SearchConfig{Language: "C", MinStars: -1, MaxRepositories: 1, CommitsPerRepository: 1}}
	assert.Error(t, bad.PrepareAndValidate())
}
