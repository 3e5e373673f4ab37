package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

var ErrMissingCredentials = errors.New("missing API key")

// Credentials holds API keys and endpoint overrides. It is loaded once by
// the command and passed to the service constructors.
type Credentials struct {
	OpenAIKey        string
	OpenAIBaseURL    string
	AnthropicKey     string
	AnthropicBaseURL string
}

// LoadCredentials reads envFile (a dotenv file; missing is fine) and the
// process environment. Process variables win over the file. The process
// environment is never modified.
func LoadCredentials(envFile string) (Credentials, error) {
	file := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			file = m
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Credentials{}, fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	lookup := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := os.LookupEnv(k); ok && v != "" {
				return v
			}
			if v := file[k]; v != "" {
				return v
			}
		}
		return ""
	}

	return Credentials{
		OpenAIKey:        lookup("OPENAI_API_KEY", "API_KEY"),
		OpenAIBaseURL:    lookup("OPENAI_BASE_URL"),
		AnthropicKey:     lookup("ANTHROPIC_API_KEY"),
		AnthropicBaseURL: lookup("ANTHROPIC_BASE_URL"),
	}, nil
}

// KeyFor returns the API key for provider.
func (c Credentials) KeyFor(provider string) (string, error) {
	var key, env string
	switch provider {
	case ProviderAnthropic:
		key, env = c.AnthropicKey, "ANTHROPIC_API_KEY"
	default:
		key, env = c.OpenAIKey, "OPENAI_API_KEY or API_KEY"
	}
	if key == "" {
		return "", fmt.Errorf("%w for %s; set %s", ErrMissingCredentials, provider, env)
	}
	return key, nil
}
