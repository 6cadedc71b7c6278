package provider

import (
	"github.com/maxbolgarin/commitminer/internal/model"
	"github.com/maxbolgarin/commitminer/internal/model/interfaces"
	"github.com/maxbolgarin/commitminer/internal/provider/github"
	"github.com/maxbolgarin/commitminer/internal/provider/gitlab"
	"github.com/maxbolgarin/erro"
)

// NewProvider creates a new code hosting provider based on the configuration
func NewProvider(cfg Config) (interfaces.CodeProvider, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, erro.Wrap(err, "validate config")
	}

	cfgForProvider := model.ProviderConfig{
		BaseURL: cfg.BaseURL,
		Token:   cfg.Token,
	}

	var provider interfaces.CodeProvider
	var err error

	switch cfg.Type {
	case GitHub:
		provider, err = github.New(cfgForProvider)
	case GitLab:
		provider, err = gitlab.New(cfgForProvider)
	default:
		return nil, erro.New("unsupported provider type: %s", cfg.Type)
	}
	if err != nil {
		return nil, erro.Wrap(err, "failed to create provider")
	}

	return provider, nil
}
