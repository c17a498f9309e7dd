// Package whisper provides a transcriber backed by the OpenAI Whisper
// transcription API. It implements the transcriber.Provider interface.
//
// Requests use the verbose JSON response format so segment timestamps,
// detected language, and audio duration come back with the text.
package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	oai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	"github.com/aimeet/aimeet/pkg/provider/transcriber"
)

const defaultModel = "whisper-1"

// config holds optional configuration for the provider.
type config struct {
	model      string
	language   string
	prompt     string
	baseURL    string
	httpClient *http.Client
}

// Option is a functional option for configuring the whisper Provider.
type Option func(*config)

// WithModel sets the transcription model (e.g., "whisper-1").
func WithModel(model string) Option {
	return func(c *config) {
		c.model = model
	}
}

// WithLanguage pins the transcription language as an ISO 639-1 code
// (e.g., "ja"). Without it, Whisper auto-detects the language.
func WithLanguage(language string) Option {
	return func(c *config) {
		c.language = language
	}
}

// WithPrompt supplies context text that biases the transcription, typically
// domain vocabulary or speaker names.
func WithPrompt(prompt string) Option {
	return func(c *config) {
		c.prompt = prompt
	}
}

// WithBaseURL overrides the default OpenAI API base URL. Used in tests and
// for OpenAI-compatible servers.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) {
		c.httpClient = hc
	}
}

// Provider implements transcriber.Provider backed by the OpenAI audio API.
type Provider struct {
	client   oai.Client
	model    string
	language string
	prompt   string
}

var _ transcriber.Provider = (*Provider)(nil)

// New creates a new whisper Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("whisper: apiKey must not be empty")
	}
	cfg := &config{model: defaultModel}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(cfg.httpClient))
	}

	return &Provider{
		client:   oai.NewClient(reqOpts...),
		model:    cfg.model,
		language: cfg.language,
		prompt:   cfg.prompt,
	}, nil
}

// TranscribeFile implements transcriber.Provider.
func (p *Provider) TranscribeFile(ctx context.Context, path string) (*transcriber.Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("whisper: open audio: %w", err)
	}
	defer f.Close()

	// The typed New response only carries the plain-JSON fields; decoding the
	// body into TranscriptionVerbose keeps duration and segments.
	var verbose oai.TranscriptionVerbose
	_, err = p.client.Audio.Transcriptions.New(ctx, p.buildParams(f),
		option.WithResponseBodyInto(&verbose))
	if err != nil {
		return nil, fmt.Errorf("whisper: transcribe %s: %w", filepath.Base(path), err)
	}

	t := &transcriber.Transcript{
		Text:     verbose.Text,
		Language: verbose.Language,
		Duration: verbose.Duration,
	}
	for _, s := range verbose.Segments {
		t.Segments = append(t.Segments, transcriber.Segment{
			Start: s.Start,
			End:   s.End,
			Text:  s.Text,
		})
	}
	return t, nil
}

// TranscribeFiles transcribes several consecutive audio files (e.g., a
// recording split into parts) and merges them into one transcript with
// continuous timestamps. Files are processed in the given order.
func (p *Provider) TranscribeFiles(ctx context.Context, paths []string) (*transcriber.Transcript, error) {
	if len(paths) == 0 {
		return nil, errors.New("whisper: no audio files given")
	}
	parts := make([]*transcriber.Transcript, 0, len(paths))
	for _, path := range paths {
		t, err := p.TranscribeFile(ctx, path)
		if err != nil {
			return nil, err
		}
		parts = append(parts, t)
	}
	return transcriber.Concat(parts), nil
}

// buildParams converts the provider settings into SDK transcription params.
func (p *Provider) buildParams(audio io.Reader) oai.AudioTranscriptionNewParams {
	params := oai.AudioTranscriptionNewParams{
		File:           audio,
		Model:          oai.AudioModel(p.model),
		ResponseFormat: oai.AudioResponseFormatVerboseJSON,
	}
	if p.language != "" {
		params.Language = param.NewOpt(p.language)
	}
	if p.prompt != "" {
		params.Prompt = param.NewOpt(p.prompt)
	}
	return params
}
