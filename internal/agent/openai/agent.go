package openai

import (
	"context"
	"strings"

	"github.com/maxbolgarin/cliex"
	"github.com/maxbolgarin/commitminer/internal/model"
	"github.com/maxbolgarin/commitminer/internal/model/interfaces"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
)

const (
	defaultModel = "gpt-3.5-turbo"
	defaultURL   = "https://api.openai.com/v1"

	chatCompletionsPath = "/chat/completions"

	finishReasonLength = "length"
)

var _ interfaces.AgentAPI = (*Agent)(nil)

// Agent sends commit messages to an OpenAI compatible chat completions endpoint
type Agent struct {
	cli      *cliex.HTTP
	model    string
	endpoint string
}

// New creates a new OpenAI agent, cli carries timeout, proxy and user agent settings
func New(cli *cliex.HTTP, cfg model.BackendConfig) (*Agent, error) {
	if cfg.APIKey == "" {
		return nil, errm.New("OpenAI API key is required")
	}
	if cli == nil {
		return nil, errm.New("HTTP client is required")
	}
	cli.C().SetAuthToken(cfg.APIKey)

	return &Agent{
		cli:      cli,
		model:    lang.Check(cfg.Model, defaultModel),
		endpoint: strings.TrimSuffix(lang.Check(cfg.BaseURL, defaultURL), "/") + chatCompletionsPath,
	}, nil
}

// CallAPI posts one chat completion request, JSON mode maps to response_format json_object
func (a *Agent) CallAPI(ctx context.Context, req model.APIRequest) (model.APIResponse, error) {
	body := chatCompletionRequest{
		Model:       a.model,
		Messages:    buildMessages(req),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSON {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var resp chatCompletionResponse
	if _, err := a.cli.Post(ctx, a.endpoint, body, &resp); err != nil {
		return model.APIResponse{}, errm.Wrap(err, "failed to make API request")
	}
	if resp.Error != nil {
		return model.APIResponse{}, errm.Errorf("OpenAI API error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return model.APIResponse{}, errm.New("no choices in response")
	}

	first := resp.Choices[0]
	return model.APIResponse{
		Content:   strings.TrimSpace(first.Message.Content),
		Model:     lang.Check(resp.Model, a.model),
		Truncated: first.FinishReason == finishReasonLength,
		Usage: model.TokenUsage{
			Prompt:     resp.Usage.PromptTokens,
			Completion: resp.Usage.CompletionTokens,
		},
	}, nil
}

func buildMessages(req model.APIRequest) []message {
	messages := make([]message, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, message{Role: "system", Content: req.SystemPrompt})
	}
	return append(messages, message{Role: "user", Content: req.Prompt})
}
