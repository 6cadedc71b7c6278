package agent

import (
	"context"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/maxbolgarin/cliex"
	"github.com/maxbolgarin/commitminer/internal/agent/claude"
	"github.com/maxbolgarin/commitminer/internal/agent/gemini"
	"github.com/maxbolgarin/commitminer/internal/agent/openai"
	"github.com/maxbolgarin/commitminer/internal/agent/prompts"
	"github.com/maxbolgarin/commitminer/internal/model"
	"github.com/maxbolgarin/commitminer/internal/model/interfaces"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"
)

var _ interfaces.CommitAnalyzer = (*Agent)(nil)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Agent classifies commit messages using an LLM API
type Agent struct {
	cfg    Config
	logger logze.Logger
	pb     *prompts.Builder
	api    interfaces.AgentAPI
}

// New creates an agent with the API client chosen by cfg.Type
func New(ctx context.Context, cfg Config) (*Agent, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, errm.Wrap(err, "validate config")
	}

	backend := model.BackendConfig{
		APIKey:   cfg.APIKey,
		Model:    cfg.Model,
		BaseURL:  cfg.BaseURL,
		ProxyURL: cfg.ProxyURL,
	}

	var (
		api interfaces.AgentAPI
		err error
	)
	switch cfg.Type {
	case Gemini:
		api, err = gemini.New(ctx, backend)
	case OpenAI:
		var cli *cliex.HTTP
		cli, err = cliex.NewWithConfig(cliex.Config{
			UserAgent:      cfg.UserAgent,
			ProxyAddress:   cfg.ProxyURL,
			RequestTimeout: cfg.Timeout,
		})
		if err != nil {
			return nil, errm.Wrap(err, "failed to create HTTP client")
		}
		api, err = openai.New(cli, backend)
	case Claude:
		api, err = claude.New(backend)
	default:
		return nil, errm.Errorf("unsupported agent type: %s", cfg.Type)
	}
	if err != nil {
		return nil, errm.Wrap(err, "failed to create agent")
	}

	return newAgent(cfg, api), nil
}

// NewWithAPI creates an agent on top of an already constructed API client
func NewWithAPI(cfg Config, api interfaces.AgentAPI) (*Agent, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, errm.Wrap(err, "validate config")
	}
	if api == nil {
		return nil, errm.New("agent API is required")
	}
	return newAgent(cfg, api), nil
}

func newAgent(cfg Config, api interfaces.AgentAPI) *Agent {
	return &Agent{
		cfg:    cfg,
		logger: logze.With("component", "agent", "type", cfg.Type),
		pb:     prompts.NewBuilder(cfg.MaxMessageLength),
		api:    api,
	}
}

// Name returns a type of the underlying API
func (a *Agent) Name() string {
	return string(a.cfg.Type)
}

// ClassifyCommit asks the model for a category of the commit message.
// The answer must name a category from the taxonomy, otherwise an error is returned.
func (a *Agent) ClassifyCommit(ctx context.Context, message string) (model.Classification, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	response, err := a.apiCall(ctx, a.pb.BuildClassificationPrompt(message))
	if err != nil {
		return model.Classification{}, errm.Wrap(err, "failed to call API for commit classification")
	}

	result, err := unmarshal[classificationResponse](response)
	if err != nil {
		a.logger.Debug("cannot parse response", "response", lang.TruncateString(response, 200))
		return model.Classification{}, errm.Wrap(err, "failed to parse classification response")
	}

	category, err := result.category()
	if err != nil {
		return model.Classification{}, err
	}

	return model.Classification{
		Category:   category,
		Source:     model.SourceAgent,
		Confidence: result.Confidence,
		Reasoning:  result.Reasoning,
	}, nil
}

func (a *Agent) apiCall(ctx context.Context, prompt model.Prompt) (string, error) {
	response, err := a.api.CallAPI(ctx, model.APIRequest{
		SystemPrompt: prompt.SystemPrompt,
		Prompt:       prompt.UserPrompt,
		MaxTokens:    a.cfg.MaxTokens,
		Temperature:  a.cfg.Temperature,
		JSON:         true,
	})
	if err != nil {
		return "", errm.Wrap(err, "failed to call API")
	}

	a.logger.Debug("API call completed",
		"model", response.Model,
		"prompt_tokens", response.Usage.Prompt,
		"completion_tokens", response.Usage.Completion,
		"truncated", response.Truncated,
	)

	if response.Truncated {
		return "", ErrTruncatedResponse
	}
	if strings.TrimSpace(response.Content) == "" {
		return "", ErrEmptyResponse
	}

	return response.Content, nil
}

type classificationResponse struct {
	HasBugFix   *bool   `json:"has_bug_fix"`
	BugCategory string  `json:"bug_category"`
	BugType     string  `json:"bug_type"`
	Confidence  float64 `json:"confidence"`
	Reasoning   string  `json:"reasoning"`
}

func (r classificationResponse) category() (model.Category, error) {
	if r.HasBugFix != nil && !*r.HasBugFix {
		return model.CategoryNonBugFix, nil
	}
	if strings.TrimSpace(r.BugType) == "" {
		return "", errm.Wrap(ErrMalformedResponse, "bug_type is empty")
	}
	category, err := model.ParseCategory(r.BugType)
	if err != nil {
		return "", errm.Wrap(ErrOutOfTaxonomy, r.BugType)
	}
	return category, nil
}

func unmarshal[T any](response string) (T, error) {
	var result T

	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimPrefix(response, "json")
	response = strings.TrimSuffix(response, "```")

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end <= start {
		return result, errm.Wrap(ErrMalformedResponse, "no JSON object found")
	}

	if err := json.UnmarshalFromString(response[start:end+1], &result); err != nil {
		return result, errm.Wrap(ErrMalformedResponse, err.Error())
	}

	return result, nil
}
