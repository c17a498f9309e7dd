// Package config provides the configuration schema and loader for the AIMeet
// minutes automation tool.
package config

import (
	"log/slog"
	"time"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level maps l onto the slog level scale. Unknown values map to Info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Config is the root configuration structure. It is typically loaded from a
// YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Recall  RecallConfig  `yaml:"recall"`
	LLM     LLMConfig     `yaml:"llm"`
	Whisper WhisperConfig `yaml:"whisper"`
	Notion  NotionConfig  `yaml:"notion"`
	Slack   SlackConfig   `yaml:"slack"`
	Google  GoogleConfig  `yaml:"google"`
	Wait    WaitConfig    `yaml:"wait"`
}

// WhisperAPIKey returns the effective transcription API key. An explicit
// whisper key wins; otherwise the LLM key is shared when the LLM provider is
// OpenAI (an empty provider name defaults to "openai").
func (c *Config) WhisperAPIKey() string {
	if c.Whisper.APIKey != "" {
		return c.Whisper.APIKey
	}
	if c.LLM.Provider == "" || c.LLM.Provider == "openai" {
		return c.LLM.APIKey
	}
	return ""
}

// ServerConfig holds logging and observability settings.
type ServerConfig struct {
	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// MetricsAddr is the TCP address serving Prometheus metrics and health
	// probes (e.g., ":9090"). Empty disables the listener.
	MetricsAddr string `yaml:"metrics_addr"`
}

// RecallConfig configures the Recall.ai recording-bot provider.
type RecallConfig struct {
	// APIKey authenticates against the Recall.ai API. Required for any
	// bot-based operation.
	APIKey string `yaml:"api_key"`

	// Region selects the Recall.ai data region (e.g., "us-west-2",
	// "ap-northeast-1"). Empty uses the provider default.
	Region string `yaml:"region"`

	// BotName is the display name bots join meetings with.
	BotName string `yaml:"bot_name"`

	// WebhookURL, when set, is registered on every created bot as a realtime
	// transcript endpoint.
	WebhookURL string `yaml:"webhook_url"`

	// Transcription selects the meeting transcription engine.
	Transcription TranscriptionConfig `yaml:"transcription"`
}

// TranscriptionConfig selects the transcription engine used by recording bots.
type TranscriptionConfig struct {
	// Provider names the transcription engine (e.g., "recallai_streaming").
	// Empty uses the provider default.
	Provider string `yaml:"provider"`

	// Language pins the spoken language as an ISO 639-1 code. Empty means
	// auto-detect.
	Language string `yaml:"language"`

	// Mode tunes the engine, e.g. "prioritize_accuracy" or "prioritize_low_latency".
	Mode string `yaml:"mode"`
}

// LLMConfig selects and configures the minutes-generation model backend.
type LLMConfig struct {
	// Provider selects the backend: "openai", "anthropic", "gemini", "ollama",
	// "deepseek", "mistral", "groq", "llamacpp", "llamafile".
	Provider string `yaml:"provider"`

	// Model is the model identifier (e.g., "gpt-4o", "claude-3-5-sonnet-latest").
	Model string `yaml:"model"`

	// APIKey authenticates against the backend. When empty the backend's
	// conventional environment variable is used.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the backend's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Temperature controls generation randomness in [0.0, 2.0].
	Temperature float64 `yaml:"temperature"`

	// MaxTokens caps completion length. Zero uses the backend default.
	MaxTokens int `yaml:"max_tokens"`

	// Fallbacks are tried in order when the primary backend fails. Each
	// fallback gets its own circuit breaker.
	Fallbacks []LLMBackendConfig `yaml:"fallbacks"`
}

// LLMBackendConfig identifies one fallback model backend.
type LLMBackendConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
}

// WhisperConfig configures the audio-file transcription backend.
type WhisperConfig struct {
	// APIKey authenticates against the transcription API. Falls back to
	// LLM.APIKey when the LLM provider is "openai".
	APIKey string `yaml:"api_key"`

	// Model is the transcription model. Empty uses "whisper-1".
	Model string `yaml:"model"`

	// Language pins transcription to an ISO 639-1 code. Empty auto-detects.
	Language string `yaml:"language"`

	// Prompt biases transcription with domain vocabulary or speaker names.
	Prompt string `yaml:"prompt"`
}

// NotionConfig configures the knowledge-base distribution target.
type NotionConfig struct {
	// Token is the Notion integration token. Empty disables Notion
	// distribution.
	Token string `yaml:"token"`

	// ParentPageID is the page under which minutes pages are created.
	ParentPageID string `yaml:"parent_page_id"`
}

// SlackConfig configures the chat notification target.
type SlackConfig struct {
	// WebhookURL is the default incoming-webhook URL. Empty disables Slack
	// distribution unless a project-type webhook matches.
	WebhookURL string `yaml:"webhook_url"`

	// Webhooks routes specific project types to their own channels, keyed by
	// project type (e.g., "programming", "npo"). Unlisted types use
	// WebhookURL.
	Webhooks map[string]string `yaml:"webhooks"`
}

// GoogleConfig configures access to Google Calendar and the Meet REST API.
type GoogleConfig struct {
	// AccessToken is an OAuth bearer token with calendar and Meet scopes.
	// Empty disables calendar enrichment and conference-record transcripts.
	AccessToken string `yaml:"access_token"`

	// CalendarID is the calendar to read events from. Empty means "primary".
	CalendarID string `yaml:"calendar_id"`
}

// WaitConfig tunes the bot status polling loop.
type WaitConfig struct {
	// PollInterval is the delay between status polls. Zero uses 10s.
	PollInterval time.Duration `yaml:"poll_interval"`

	// MaxWait caps the total wait for a bot to finish. Zero uses 2h.
	MaxWait time.Duration `yaml:"max_wait"`
}
