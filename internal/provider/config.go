package provider

import (
	"slices"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
)

type ProviderType string

// SupportedProviderTypes defines the supported code hosting provider types
const (
	GitHub ProviderType = "github"
	GitLab ProviderType = "gitlab"
)

var supportedProviderTypes = []ProviderType{GitHub, GitLab}

// ErrMissingToken is returned before any network call when no access token is configured
var ErrMissingToken = errm.New("provider token is required, set PROVIDER_TOKEN (or GITHUB_TOKEN) in environment or .env file")

// Config represents code hosting provider configuration
type Config struct {
	Type    ProviderType `yaml:"type" env:"PROVIDER_TYPE"`
	BaseURL string       `yaml:"base_url" env:"PROVIDER_BASE_URL"`
	Token   string       `yaml:"token" env:"PROVIDER_TOKEN"`
}

func (c *Config) PrepareAndValidate() error {
	if c.Token == "" {
		return ErrMissingToken
	}

	c.Type = lang.Check(c.Type, GitHub)
	if !slices.Contains(supportedProviderTypes, c.Type) {
		return errm.Errorf("invalid provider type: %s", c.Type)
	}

	return nil
}
