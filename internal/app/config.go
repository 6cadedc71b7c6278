package app

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/maxbolgarin/commitminer/internal/agent"
	"github.com/maxbolgarin/commitminer/internal/classifier"
	"github.com/maxbolgarin/commitminer/internal/model"
	"github.com/maxbolgarin/commitminer/internal/provider"
	"github.com/maxbolgarin/commitminer/internal/report"
	"github.com/maxbolgarin/errm"
)

// legacyTokenEnv is accepted when PROVIDER_TOKEN is not set
const legacyTokenEnv = "GITHUB_TOKEN"

// Config represents the main application configuration
type Config struct {
	Provider   provider.Config   `yaml:"provider"`
	Agent      agent.Config      `yaml:"agent"`
	Search     SearchConfig      `yaml:"search"`
	Classifier classifier.Config `yaml:"classifier"`
	Output     report.Config     `yaml:"output"`

	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
}

// SearchConfig holds the four run limits
type SearchConfig struct {
	Language             string `yaml:"language" env:"SEARCH_LANGUAGE" env-default:"C"`
	MinStars             int    `yaml:"min_stars" env:"SEARCH_MIN_STARS" env-default:"1000"`
	MaxRepositories      int    `yaml:"max_repositories" env:"SEARCH_MAX_REPOSITORIES" env-default:"10"`
	CommitsPerRepository int    `yaml:"commits_per_repository" env:"SEARCH_COMMITS_PER_REPOSITORY" env-default:"100"`
}

// Query returns the repository query of the search
func (c SearchConfig) Query() model.RepositoryQuery {
	return model.RepositoryQuery{
		Language: c.Language,
		MinStars: c.MinStars,
		Limit:    c.MaxRepositories,
	}
}

func (c *SearchConfig) PrepareAndValidate() error {
	c.Language = strings.TrimSpace(c.Language)
	switch {
	case c.Language == "":
		return errm.New("language is required")
	case c.MinStars < 0:
		return errm.Errorf("min stars must not be negative, got %d", c.MinStars)
	case c.MaxRepositories < 1:
		return errm.Errorf("max repositories must be positive, got %d", c.MaxRepositories)
	case c.CommitsPerRepository < 1:
		return errm.Errorf("commits per repository must be positive, got %d", c.CommitsPerRepository)
	}
	return nil
}

// LoadConfig reads envFile (if it exists) into the environment without overriding set variables,
// then reads the YAML config at path (if given) and the environment
func LoadConfig(path, envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, errm.Wrap(err, "failed to load env file")
		}
	}

	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, errm.Wrap(err, "failed to read config file")
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, errm.Wrap(err, "failed to read config from environment")
		}
	}

	if cfg.Provider.Token == "" {
		cfg.Provider.Token = os.Getenv(legacyTokenEnv)
	}

	return cfg, nil
}

// PrepareAndValidate fills defaults and checks every part of the config.
// Agent config is checked only when the agent is going to be used.
func (c *Config) PrepareAndValidate() error {
	if err := c.Provider.PrepareAndValidate(); err != nil {
		return errm.Wrap(err, "provider")
	}
	if err := c.Search.PrepareAndValidate(); err != nil {
		return errm.Wrap(err, "search")
	}
	if err := c.Classifier.PrepareAndValidate(); err != nil {
		return errm.Wrap(err, "classifier")
	}
	if err := c.Output.PrepareAndValidate(); err != nil {
		return errm.Wrap(err, "output")
	}

	if c.UseAgent() {
		if err := c.Agent.PrepareAndValidate(); err != nil {
			return errm.Wrap(err, "agent")
		}
	}

	return nil
}

// UseAgent returns true if commits are going to be classified by the agent
func (c Config) UseAgent() bool {
	switch c.Classifier.Mode {
	case classifier.ModeKeyword:
		return false
	case classifier.ModeAgent:
		return true
	default:
		return c.Agent.IsConfigured()
	}
}
