package agent

import "github.com/maxbolgarin/errm"

var (
	ErrMissingAPIKey     = errm.New("agent api key is required, set AGENT_API_KEY")
	ErrEmptyResponse     = errm.New("empty response from API")
	ErrTruncatedResponse = errm.New("response was cut by the token limit, raise AGENT_MAX_TOKENS")
	ErrMalformedResponse = errm.New("malformed classification response")
	ErrOutOfTaxonomy     = errm.New("category is outside of the taxonomy")
)
