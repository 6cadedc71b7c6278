package claude

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/maxbolgarin/commitminer/internal/model"
	"github.com/maxbolgarin/commitminer/internal/model/interfaces"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
)

const (
	defaultModel     = "claude-3-5-haiku-20241022"
	defaultMaxTokens = 500

	stopReasonMaxTokens = "max_tokens"
)

var _ interfaces.AgentAPI = (*Agent)(nil)

// Agent sends commit messages to the Anthropic messages API
type Agent struct {
	model  string
	client anthropic.Client
}

// New creates a Claude agent. SDK retries are disabled, a failed call falls back to keywords.
func New(cfg model.BackendConfig) (*Agent, error) {
	if cfg.APIKey == "" {
		return nil, errm.New("Claude API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, errm.Wrap(err, "failed to parse proxy URL")
		}
		opts = append(opts, option.WithHTTPClient(&http.Client{
			Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)},
		}))
	}

	return &Agent{
		model:  lang.Check(cfg.Model, defaultModel),
		client: anthropic.NewClient(opts...),
	}, nil
}

// CallAPI sends one message. The API has no JSON mode, the prompt asks for JSON instead.
func (a *Agent) CallAPI(ctx context.Context, req model.APIRequest) (model.APIResponse, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(lang.Check(req.MaxTokens, defaultMaxTokens)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(req.Temperature))
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return model.APIResponse{}, errm.Wrap(err, "failed to make API request")
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return model.APIResponse{}, errm.New("no text content in response")
	}

	return model.APIResponse{
		Content:   strings.TrimSpace(text.String()),
		Model:     lang.Check(string(resp.Model), a.model),
		Truncated: string(resp.StopReason) == stopReasonMaxTokens,
		Usage: model.TokenUsage{
			Prompt:     int(resp.Usage.InputTokens),
			Completion: int(resp.Usage.OutputTokens),
		},
	}, nil
}
