package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidLLMProviders lists the provider names the LLM factory understands.
// Used by [Validate] to warn about unrecognised names.
var ValidLLMProviders = []string{
	"openai", "anthropic", "gemini", "ollama", "deepseek", "mistral", "groq", "llamacpp", "llamafile",
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.LLM.Provider != "" && !slices.Contains(ValidLLMProviders, cfg.LLM.Provider) {
		slog.Warn("unrecognised llm.provider; the LLM factory may reject it",
			"provider", cfg.LLM.Provider)
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature %.2f is out of range [0.0, 2.0]", cfg.LLM.Temperature))
	}
	if cfg.LLM.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("llm.max_tokens %d must not be negative", cfg.LLM.MaxTokens))
	}
	for i, fb := range cfg.LLM.Fallbacks {
		if fb.Provider == "" {
			errs = append(errs, fmt.Errorf("llm.fallbacks[%d].provider must not be empty", i))
		} else if !slices.Contains(ValidLLMProviders, fb.Provider) {
			slog.Warn("unrecognised llm fallback provider; the LLM factory may reject it",
				"provider", fb.Provider)
		}
	}

	if cfg.Wait.PollInterval < 0 {
		errs = append(errs, fmt.Errorf("wait.poll_interval %s must not be negative", cfg.Wait.PollInterval))
	}
	if cfg.Wait.MaxWait < 0 {
		errs = append(errs, fmt.Errorf("wait.max_wait %s must not be negative", cfg.Wait.MaxWait))
	}
	if cfg.Wait.PollInterval > 0 && cfg.Wait.MaxWait > 0 && cfg.Wait.PollInterval > cfg.Wait.MaxWait {
		errs = append(errs, fmt.Errorf("wait.poll_interval %s exceeds wait.max_wait %s", cfg.Wait.PollInterval, cfg.Wait.MaxWait))
	}

	if cfg.Notion.Token != "" && cfg.Notion.ParentPageID == "" {
		errs = append(errs, errors.New("notion.parent_page_id is required when notion.token is set"))
	}

	for projectType, url := range cfg.Slack.Webhooks {
		if url == "" {
			errs = append(errs, fmt.Errorf("slack.webhooks[%q] must not be empty", projectType))
		}
	}
	if cfg.Slack.WebhookURL == "" && len(cfg.Slack.Webhooks) > 0 {
		slog.Warn("slack.webhook_url is empty; project types without a dedicated webhook will not be notified")
	}

	if cfg.Recall.APIKey == "" {
		slog.Warn("recall.api_key is empty; recording-bot operations will be unavailable")
	}
	if cfg.Notion.Token == "" && cfg.Slack.WebhookURL == "" && len(cfg.Slack.Webhooks) == 0 {
		slog.Warn("no distribution target configured; minutes will only be written locally")
	}

	return errors.Join(errs...)
}
