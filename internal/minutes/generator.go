package minutes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aimeet/aimeet/pkg/provider/llm"
)

// defaultTemperature keeps the JSON output stable across runs.
const defaultTemperature = 0.3

// GenerationError is returned when the model call or the decoding of its
// answer fails. It wraps the underlying cause.
type GenerationError struct {
	Template string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("minutes: generate with template %q: %v", e.Template, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Option is a functional option for the Generator.
type Option func(*Generator)

// WithTemperature overrides the generation temperature.
func WithTemperature(t float64) Option {
	return func(g *Generator) {
		g.temperature = t
	}
}

// WithMaxTokens caps completion length. Zero uses the backend default.
func WithMaxTokens(n int) Option {
	return func(g *Generator) {
		g.maxTokens = n
	}
}

// Generator produces structured minutes from transcripts via an LLM.
// Safe for concurrent use if the underlying provider is.
type Generator struct {
	provider    llm.Provider
	temperature float64
	maxTokens   int
}

// NewGenerator creates a Generator on top of the given provider.
func NewGenerator(provider llm.Provider, opts ...Option) *Generator {
	g := &Generator{
		provider:    provider,
		temperature: defaultTemperature,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate analyses transcript with the named template and returns decoded
// minutes. mctx may be nil. An unknown template name fails before any model
// call is made.
func (g *Generator) Generate(ctx context.Context, transcript, templateName string, mctx *Context) (*Minutes, error) {
	if templateName == "" {
		templateName = "default"
	}
	tpl, ok := Templates[templateName]
	if !ok {
		return nil, &GenerationError{Template: templateName, Err: fmt.Errorf("unknown template")}
	}

	start := time.Now()
	resp, err := g.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: tpl.SystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: tpl.UserPrompt(transcript, mctx)},
		},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
		JSONOnly:    true,
	})
	if err != nil {
		return nil, &GenerationError{Template: templateName, Err: err}
	}
	if resp == nil || resp.Content == "" {
		return nil, &GenerationError{Template: templateName, Err: fmt.Errorf("empty model response")}
	}

	m := &Minutes{}
	if err := json.Unmarshal([]byte(stripFences(resp.Content)), m); err != nil {
		return nil, &GenerationError{Template: templateName, Err: fmt.Errorf("decode model response: %w", err)}
	}
	m.RawTranscript = transcript
	m.GeneratedAt = time.Now()

	slog.Debug("minutes generated",
		"template", templateName,
		"duration", time.Since(start),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)
	return m, nil
}

// GenerateSummary produces a short free-text summary instead of full minutes.
// Cheaper and faster; used when only a notification digest is needed.
func (g *Generator) GenerateSummary(ctx context.Context, transcript string) (string, error) {
	resp, err := g.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: "会議の文字起こしを簡潔に要約してください（3-5文）。",
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: transcript},
		},
		Temperature: g.temperature,
	})
	if err != nil {
		return "", &GenerationError{Template: "summary", Err: err}
	}
	if resp == nil {
		return "", &GenerationError{Template: "summary", Err: fmt.Errorf("empty model response")}
	}
	return resp.Content, nil
}

// ExtractActionItems pulls only the TODO list out of a transcript.
func (g *Generator) ExtractActionItems(ctx context.Context, transcript string) ([]ActionItem, error) {
	resp, err := g.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: "文字起こしからアクションアイテム（TODO）を抽出してください。\n" +
			`JSON形式で出力：{"actionItems": [{"task": "...", "owner": "...", "deadline": "...", "priority": "..."}]}`,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: transcript},
		},
		Temperature: g.temperature,
		JSONOnly:    true,
	})
	if err != nil {
		return nil, &GenerationError{Template: "action-items", Err: err}
	}
	if resp == nil || resp.Content == "" {
		return nil, nil
	}

	var out struct {
		ActionItems []ActionItem `json:"actionItems"`
	}
	if err := json.Unmarshal([]byte(stripFences(resp.Content)), &out); err != nil {
		return nil, &GenerationError{Template: "action-items", Err: fmt.Errorf("decode model response: %w", err)}
	}
	return out.ActionItems, nil
}

// stripFences removes a surrounding markdown code fence if the model wrapped
// its JSON in one despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
