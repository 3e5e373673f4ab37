// Package provider implements chat.Service for the supported model APIs.
package provider

import (
	"fmt"
	"net/http"

	"github.com/petasbytes/gpt/internal/chat"
	"github.com/petasbytes/gpt/internal/config"
)

// New returns the service for agent.Provider using creds.
func New(agent config.Agent, creds config.Credentials, httpClient *http.Client) (chat.Service, error) {
	key, err := creds.KeyFor(agent.Provider)
	if err != nil {
		return nil, err
	}
	switch agent.Provider {
	case config.ProviderOpenAI, "":
		return NewOpenAI(key, creds.OpenAIBaseURL, httpClient), nil
	case config.ProviderAnthropic:
		return NewAnthropic(key, creds.AnthropicBaseURL, httpClient), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", agent.Provider)
	}
}
