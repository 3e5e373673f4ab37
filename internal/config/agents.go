package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/petasbytes/gpt/convo"
)

var ErrUnknownAgent = errors.New("unknown agent")

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	DefaultMaxTokens = 1024
)

// Agent is a named persona: a system message plus the model settings used
// to answer as it.
type Agent struct {
	Name        string  `toml:"-" yaml:"-"`
	SystemMsg   string  `toml:"system_msg" yaml:"system_msg"`
	Model       string  `toml:"model" yaml:"model"`
	MaxTokens   int     `toml:"max_tokens" yaml:"max_tokens"`
	Temperature float64 `toml:"temperature" yaml:"temperature"`
	Provider    string  `toml:"provider" yaml:"provider"`
}

// Agents maps agent names to their settings.
type Agents map[string]Agent

// DefaultAgentsPath returns $GPT_AGENTS, or agents.toml next to the executable.
func DefaultAgentsPath() string {
	if p := os.Getenv("GPT_AGENTS"); p != "" {
		return p
	}
	exe, err := os.Executable()
	if err != nil {
		return "agents.toml"
	}
	return filepath.Join(filepath.Dir(exe), "agents.toml")
}

// LoadAgents reads an agents file. Files ending in .yaml or .yml are YAML;
// everything else is TOML with one table per agent.
func LoadAgents(path string) (Agents, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read agents file: %w", err)
	}

	raw := map[string]Agent{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &raw)
	default:
		_, err = toml.Decode(string(b), &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("parse agents file %s: %w", path, err)
	}

	agents := make(Agents, len(raw))
	for name, a := range raw {
		a.Name = name
		if err := a.normalize(); err != nil {
			return nil, err
		}
		agents[name] = a
	}
	return agents, nil
}

func (a *Agent) normalize() error {
	if a.Name == "" || strings.IndexFunc(a.Name, unicode.IsSpace) >= 0 {
		return fmt.Errorf("agent %q: name must be non-empty without whitespace", a.Name)
	}
	// Replies are stored under the agent's name; these roles mean something else.
	switch a.Name {
	case convo.RoleUser, convo.RoleFunction, convo.RoleFunctionCall:
		return fmt.Errorf("agent %q: name is a reserved role", a.Name)
	}
	if a.MaxTokens <= 0 {
		a.MaxTokens = DefaultMaxTokens
	}
	switch a.Provider {
	case "":
		a.Provider = ProviderOpenAI
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("agent %q: unsupported provider %q", a.Name, a.Provider)
	}
	// The Anthropic backend has a default model.
	if a.Model == "" && a.Provider != ProviderAnthropic {
		return fmt.Errorf("agent %q: model is required", a.Name)
	}
	return nil
}

func (a Agents) Get(name string) (Agent, error) {
	agent, ok := a[name]
	if !ok {
		return Agent{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownAgent, name, strings.Join(a.Names(), " "))
	}
	return agent, nil
}

// Names returns agent names in sorted order.
func (a Agents) Names() []string {
	names := make([]string, 0, len(a))
	for n := range a {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
