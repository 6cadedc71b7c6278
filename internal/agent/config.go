package agent

import (
	"slices"
	"time"

	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/lang"
)

const (
	defaultTemperature = 0.3
	defaultMaxTokens   = 500
	defaultTimeout     = 30 * time.Second
	defaultUserAgent   = "commitminer/0.1.0 (https://github.com/maxbolgarin/commitminer)"
)

// AgentType represents the type of AI agent
type AgentType string

// SupportedAgentTypes defines the supported AI agent types
const (
	OpenAI AgentType = "openai"
	Gemini AgentType = "gemini"
	Claude AgentType = "claude"
)

var supportedAgentTypes = []AgentType{OpenAI, Gemini, Claude}

// Config represents AI agent configuration
type Config struct {
	Type        AgentType `yaml:"type" env:"AGENT_TYPE"` // openai, gemini, claude
	APIKey      string    `yaml:"api_key" env:"AGENT_API_KEY"`
	Model       string    `yaml:"model" env:"AGENT_MODEL"`
	// Temperature zero means the default 0.3, set a small positive value for near greedy sampling
	Temperature float32 `yaml:"temperature" env:"AGENT_TEMPERATURE"`
	MaxTokens   int       `yaml:"max_tokens" env:"AGENT_MAX_TOKENS"`

	BaseURL   string        `yaml:"base_url" env:"AGENT_BASE_URL"` // Custom API endpoint (Azure OpenAI, local models, etc.)
	ProxyURL  string        `yaml:"proxy_url" env:"AGENT_PROXY_URL"`
	Timeout   time.Duration `yaml:"timeout" env:"AGENT_TIMEOUT"`
	UserAgent string        `yaml:"user_agent" env:"AGENT_USER_AGENT"`

	// MaxMessageLength limits the commit message length sent in a prompt, zero means no limit
	MaxMessageLength int `yaml:"max_message_length" env:"AGENT_MAX_MESSAGE_LENGTH"`
}

// IsConfigured returns true when the agent has credentials to be used
func (c Config) IsConfigured() bool {
	return c.APIKey != ""
}

func (c *Config) PrepareAndValidate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	c.Type = lang.Check(c.Type, OpenAI)
	if !slices.Contains(supportedAgentTypes, c.Type) {
		return erro.New("invalid agent type: %s", c.Type)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return erro.New("temperature must be in [0, 2], got %v", c.Temperature)
	}
	if c.MaxTokens < 0 {
		return erro.New("max tokens must not be negative, got %d", c.MaxTokens)
	}

	c.Temperature = lang.Check(c.Temperature, defaultTemperature)
	c.MaxTokens = lang.Check(c.MaxTokens, defaultMaxTokens)
	c.Timeout = lang.Check(c.Timeout, defaultTimeout)
	c.UserAgent = lang.Check(c.UserAgent, defaultUserAgent)

	return nil
}
