package gemini

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/maxbolgarin/commitminer/internal/model"
	"github.com/maxbolgarin/commitminer/internal/model/interfaces"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/lang"
	"google.golang.org/genai"
)

const (
	defaultModel = "gemini-2.5-flash"

	finishReasonMaxTokens = "MAX_TOKENS"
)

var _ interfaces.AgentAPI = (*Agent)(nil)

// Agent sends commit messages to Google Gemini
type Agent struct {
	client *genai.Client
	model  string
}

// New creates a Gemini agent, no request is made until the first call
func New(ctx context.Context, cfg model.BackendConfig) (*Agent, error) {
	if cfg.APIKey == "" {
		return nil, erro.New("Gemini API key is required")
	}

	httpClient, err := newHTTPClient(cfg.ProxyURL)
	if err != nil {
		return nil, err
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, erro.Wrap(err, "failed to create Gemini client")
	}

	return &Agent{
		client: client,
		model:  lang.Check(cfg.Model, defaultModel),
	}, nil
}

// CallAPI generates one answer, JSON mode sets the application/json response type
func (a *Agent) CallAPI(ctx context.Context, req model.APIRequest) (model.APIResponse, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: lang.If(req.JSON, "application/json", "text/plain"),
		Temperature:      &req.Temperature,
		MaxOutputTokens:  int32(req.MaxTokens),
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	result, err := a.client.Models.GenerateContent(ctx, a.model,
		[]*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)},
		config,
	)
	if err != nil {
		return model.APIResponse{}, convertError(err)
	}

	out := model.APIResponse{
		Content: strings.TrimSpace(result.Text()),
		Model:   a.model,
	}
	if len(result.Candidates) > 0 && result.Candidates[0] != nil {
		out.Truncated = string(result.Candidates[0].FinishReason) == finishReasonMaxTokens
	}
	if usage := result.UsageMetadata; usage != nil {
		out.Usage = model.TokenUsage{
			Prompt:     int(usage.PromptTokenCount),
			Completion: int(usage.CandidatesTokenCount),
		}
	}

	return out, nil
}

func newHTTPClient(proxy string) (*http.Client, error) {
	transport := &http.Transport{}
	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, erro.Wrap(err, "failed to parse proxy URL")
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	return &http.Client{Transport: transport}, nil
}

// convertError names the usual failure by the status code found in the error text
func convertError(err error) error {
	msg := err.Error()

	switch {
	case strings.Contains(msg, "location is not supported"):
		return erro.Wrap(err, "region not supported by Gemini API")
	case strings.Contains(msg, "429"):
		return erro.Wrap(err, "rate limit exceeded")
	case strings.Contains(msg, "401") || strings.Contains(msg, "403"):
		return erro.Wrap(err, "authentication failed")
	case strings.Contains(msg, "503") || strings.Contains(msg, "500") || strings.Contains(msg, "502"):
		return erro.Wrap(err, "Gemini API unavailable")
	default:
		return erro.Wrap(err, "Gemini API error")
	}
}
