// Package agent routes named analysis tasks to configured LLM
// providers with an ordered per-task model fallback.
package agent

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	yaml "gopkg.in/yaml.v2"

	"stock_insight/pkg/core/llm"
)

type Config struct {
	ActiveProvider string                 `yaml:"active_provider"`
	Agents         map[string]AgentConfig `yaml:"agents"`
}

type AgentConfig struct {
	Provider    string   `yaml:"provider"` // Optional override
	Description string   `yaml:"description"`
	Models      []string `yaml:"models"` // Tried in order, first success wins
}

// LoadConfig reads the agent config yaml. A missing file is an error;
// the caller decides whether to fall back to DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read agent config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse agent config %s: %w", path, err)
	}
	if cfg.ActiveProvider == "" {
		cfg.ActiveProvider = "gemini"
	}
	return cfg, nil
}

// DefaultConfig is the built-in fallback when no yaml is present.
func DefaultConfig() Config {
	return Config{
		ActiveProvider: "gemini",
		Agents: map[string]AgentConfig{
			"moat": {
				Description: "Economic moat JSON evaluation",
				Models:      []string{"gemini-2.5-flash-lite", "gemini-2.5-flash"},
			},
			"narrative": {
				Description: "Portfolio analysis narrative",
				Models:      []string{"gemini-2.5-flash-lite", "gemini-2.5-flash", "gemini-1.5-flash"},
			},
		},
	}
}

type Manager struct {
	config    Config
	providers map[string]llm.Provider
	log       zerolog.Logger
}

func NewManager(config Config, log zerolog.Logger) *Manager {
	return &Manager{
		config: config,
		providers: map[string]llm.Provider{
			"gemini":   &llm.GeminiProvider{},
			"deepseek": &llm.DeepSeekProvider{},
			"qwen":     &llm.QwenProvider{},
		},
		log: log.With().Str("component", "agent").Logger(),
	}
}

func (m *Manager) providerFor(agentType string) llm.Provider {
	if agentConfig, ok := m.config.Agents[agentType]; ok && agentConfig.Provider != "" {
		if p, ok := m.providers[agentConfig.Provider]; ok {
			return p
		}
	}
	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p
	}
	return m.providers["gemini"]
}

// Generate runs the named task's prompt through its configured provider,
// walking the task's model list until one answers.
func (m *Manager) Generate(ctx context.Context, agentType, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	provider := m.providerFor(agentType)
	models := m.config.Agents[agentType].Models

	adapted := provider.AdaptInstructions(systemPrompt)
	text, err := llm.GenerateWithFallback(ctx, provider, models, prompt, adapted, options)
	if err != nil {
		m.log.Error().Str("agent", agentType).Err(err).Msg("generation failed")
		return "", err
	}
	return text, nil
}
