package model

// BackendConfig holds connection settings of one LLM backend
type BackendConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the public endpoint (Azure OpenAI, local servers, proxies)
	BaseURL  string
	ProxyURL string
}

// APIRequest is a single completion request, one commit message per request
type APIRequest struct {
	SystemPrompt string
	Prompt       string
	MaxTokens    int
	Temperature  float32
	// JSON asks the backend to answer with one JSON object
	JSON bool
}

// APIResponse is a completion returned by a backend
type APIResponse struct {
	Content string
	Model   string
	// Truncated is set when the answer was cut by the max tokens limit
	Truncated bool
	Usage     TokenUsage
}

// TokenUsage counts tokens spent by a request
type TokenUsage struct {
	Prompt     int
	Completion int
}

// Total returns prompt and completion tokens together
func (u TokenUsage) Total() int {
	return u.Prompt + u.Completion
}

// Prompt is a pair of system and user prompts
type Prompt struct {
	SystemPrompt string
	UserPrompt   string
}
