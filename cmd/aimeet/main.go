// Command aimeet records meetings, turns their transcripts into structured
// minutes with an LLM, and distributes the result to Notion and Slack.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aimeet/aimeet/internal/calendar"
	"github.com/aimeet/aimeet/internal/config"
	"github.com/aimeet/aimeet/internal/distribute/notion"
	"github.com/aimeet/aimeet/internal/distribute/slack"
	"github.com/aimeet/aimeet/internal/health"
	"github.com/aimeet/aimeet/internal/meet"
	"github.com/aimeet/aimeet/internal/minutes"
	"github.com/aimeet/aimeet/internal/observe"
	"github.com/aimeet/aimeet/internal/orchestrator"
	"github.com/aimeet/aimeet/internal/realtime"
	"github.com/aimeet/aimeet/internal/report"
	"github.com/aimeet/aimeet/internal/resilience"
	"github.com/aimeet/aimeet/pkg/provider/llm"
	"github.com/aimeet/aimeet/pkg/provider/llm/anyllm"
	openaillm "github.com/aimeet/aimeet/pkg/provider/llm/openai"
	"github.com/aimeet/aimeet/pkg/provider/recorder"
	"github.com/aimeet/aimeet/pkg/provider/recorder/recall"
	"github.com/aimeet/aimeet/pkg/provider/transcriber/whisper"
)

const defaultModel = "gpt-4o"

func main() {
	os.Exit(run())
}

// stringSlice collects repeated flag values.
type stringSlice []string

func (s *stringSlice) String() string { return strings.Join(*s, ",") }

func (s *stringSlice) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	meetURL := flag.String("meet-url", "", "meeting URL to send a recording bot to")
	botID := flag.String("bot", "", "process a previously dispatched bot by id")
	noWait := flag.Bool("no-wait", false, "dispatch the bot and exit without waiting for the meeting to end")
	conference := flag.String("conference", "", "Google Meet conference record name to process")
	eventID := flag.String("event", "", "Google Calendar event id for title and Meet link enrichment")
	recent := flag.Bool("recent", false, "process the most recent conference record of --event")
	batch := flag.String("batch", "", "comma-separated conference record names to process concurrently")
	templateName := flag.String("template", "", "minutes template (default, npo, government, interview)")
	projectType := flag.String("project-type", "", "project type for template selection and Slack routing")
	timestamps := flag.Bool("timestamps", false, "prefix transcript lines with timestamps")
	output := flag.String("output", "", "write the minutes as Markdown to this file")
	listBots := flag.Int("list-bots", 0, "list the N most recent bots and exit")
	deleteBot := flag.String("delete-bot", "", "delete a bot by id and exit")
	metricsAddr := flag.String("metrics-addr", "", "metrics/health listen address (overrides server.metrics_addr)")

	var audioFiles stringSlice
	flag.Var(&audioFiles, "audio", "audio file to transcribe (repeatable)")

	orgName := flag.String("org-name", "", "organisation name passed to the template")
	projectName := flag.String("project-name", "", "project name passed to the template")
	department := flag.String("department", "", "department passed to the template")
	subject := flag.String("subject", "", "meeting subject passed to the template")
	position := flag.String("position", "", "interview position passed to the template")
	background := flag.String("background", "", "meeting background passed to the template")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "aimeet: config file %q not found\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "aimeet: %v\n", err)
		}
		return 1
	}
	if *metricsAddr != "" {
		cfg.Server.MetricsAddr = *metricsAddr
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Server.LogLevel.Level(),
	})))

	slog.Info("aimeet starting", "config", *configPath, "log_level", cfg.Server.LogLevel)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	var metrics *observe.Metrics
	if cfg.Server.MetricsAddr != "" {
		shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "aimeet"})
		if err != nil {
			slog.Error("failed to initialise telemetry", "err", err)
			return 1
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Warn("telemetry shutdown error", "err", err)
			}
		}()
		metrics = observe.DefaultMetrics()
	}

	// ── Providers ─────────────────────────────────────────────────────────────
	o, recallClient, err := buildPipeline(cfg, metrics)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}

	// ── Maintenance modes ─────────────────────────────────────────────────────
	if *listBots > 0 {
		return runListBots(ctx, recallClient, *listBots)
	}
	if *deleteBot != "" {
		return runDeleteBot(ctx, recallClient, *deleteBot)
	}

	// ── Metrics / health / realtime listener ──────────────────────────────────
	if cfg.Server.MetricsAddr != "" {
		srv := newMetricsServer(cfg, metrics, o)
		go func() {
			slog.Info("metrics listener started", "addr", cfg.Server.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics listener error", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// ── Batch mode ────────────────────────────────────────────────────────────
	if *batch != "" {
		names := splitNonEmpty(*batch)
		results := o.ProcessBatch(ctx, names, *templateName)
		failed := 0
		for i, res := range results {
			if len(res.Errors) > 0 {
				failed++
				slog.Warn("batch item finished with errors", "conference", names[i], "errors", res.Errors)
			}
		}
		fmt.Printf("processed %d meetings, %d with errors\n", len(results), failed)
		return 0
	}

	// ── Single-meeting modes ──────────────────────────────────────────────────
	mctx := &minutes.Context{
		OrgName:     *orgName,
		ProjectName: *projectName,
		Department:  *department,
		Subject:     *subject,
		Position:    *position,
		Background:  *background,
	}

	var result *orchestrator.Result
	if *recent {
		if *eventID == "" {
			fmt.Fprintln(os.Stderr, "aimeet: --recent requires --event")
			return 1
		}
		result, err = o.ProcessMostRecentMeeting(ctx, *eventID, *templateName)
	} else {
		result, err = o.ProcessMeeting(ctx, orchestrator.Request{
			MeetingURL:           *meetURL,
			BotID:                *botID,
			NoWait:               *noWait,
			AudioFilePaths:       audioFiles,
			ConferenceRecordName: *conference,
			CalendarEventID:      *eventID,
			TemplateName:         *templateName,
			ProjectType:          *projectType,
			Context:              mctx,
			IncludeTimestamps:    *timestamps,
		})
	}
	if err != nil {
		if errors.Is(err, orchestrator.ErrNoStrategy) {
			fmt.Fprintln(os.Stderr, "aimeet: nothing to process; pass --meet-url, --bot, --audio, or --conference")
		} else {
			slog.Error("processing failed", "err", err)
		}
		return 1
	}

	if *noWait && result.BotID != "" {
		fmt.Printf("bot %s dispatched, run again with --bot %s once the meeting ends\n", result.BotID, result.BotID)
		return 0
	}

	for _, msg := range result.Errors {
		slog.Warn("non-fatal pipeline error", "error", msg)
	}

	fmt.Println(report.Text(result.Title, result.Minutes))
	if result.NotionURL != "" {
		fmt.Printf("Notion: %s\n", result.NotionURL)
	}

	if result.Minutes != nil && result.Minutes.NextMeetingAgenda != nil {
		path, err := report.WriteAgenda("Agenda", result.Minutes.GeneratedAt, result.Minutes.NextMeetingAgenda)
		if err != nil {
			slog.Warn("failed to save agenda file", "err", err)
		} else {
			result.AgendaPath = path
			fmt.Printf("Next meeting agenda saved to: %s\n", path)
		}
	}

	if *output != "" {
		md := report.Markdown(result.Title, result.Minutes)
		if err := os.WriteFile(*output, []byte(md), 0o644); err != nil {
			slog.Error("failed to write output file", "path", *output, "err", err)
			return 1
		}
		slog.Info("minutes written", "path", *output)
	}

	return 0
}

// buildPipeline instantiates every configured provider and assembles the
// orchestrator. The recall client is returned separately for the maintenance
// modes.
func buildPipeline(cfg *config.Config, metrics *observe.Metrics) (*orchestrator.Orchestrator, *recall.Client, error) {
	o := &orchestrator.Orchestrator{Metrics: metrics}

	var recallClient *recall.Client
	if cfg.Recall.APIKey != "" {
		var opts []recall.Option
		if cfg.Recall.Region != "" {
			opts = append(opts, recall.WithRegion(cfg.Recall.Region))
		}
		if cfg.Recall.BotName != "" {
			opts = append(opts, recall.WithBotName(cfg.Recall.BotName))
		}
		if cfg.Recall.WebhookURL != "" {
			opts = append(opts, recall.WithWebhookURL(cfg.Recall.WebhookURL))
		}
		rc, err := recall.New(cfg.Recall.APIKey, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("create recall client: %w", err)
		}
		recallClient = rc
		o.Recorder = rc
		o.Waiter = &recorder.Waiter{
			Client:       rc,
			PollInterval: cfg.Wait.PollInterval,
			MaxWait:      cfg.Wait.MaxWait,
			OnStatusChange: func(sc recorder.StatusChange) {
				slog.Info("bot status changed", "code", sc.Code, "sub_code", sc.SubCode)
			},
		}
		o.BotTranscription = botTranscription(cfg)
		slog.Info("provider created", "kind", "recorder", "name", "recall")
	}

	provider, err := buildLLM(cfg)
	if err != nil {
		return nil, nil, err
	}
	var genOpts []minutes.Option
	if cfg.LLM.Temperature > 0 {
		genOpts = append(genOpts, minutes.WithTemperature(cfg.LLM.Temperature))
	}
	if cfg.LLM.MaxTokens > 0 {
		genOpts = append(genOpts, minutes.WithMaxTokens(cfg.LLM.MaxTokens))
	}
	o.Generator = minutes.NewGenerator(provider, genOpts...)

	if whisperKey := cfg.WhisperAPIKey(); whisperKey != "" {
		var opts []whisper.Option
		if cfg.Whisper.Model != "" {
			opts = append(opts, whisper.WithModel(cfg.Whisper.Model))
		}
		if cfg.Whisper.Language != "" {
			opts = append(opts, whisper.WithLanguage(cfg.Whisper.Language))
		}
		if cfg.Whisper.Prompt != "" {
			opts = append(opts, whisper.WithPrompt(cfg.Whisper.Prompt))
		}
		w, err := whisper.New(whisperKey, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("create whisper client: %w", err)
		}
		o.Transcriber = w
		slog.Info("provider created", "kind", "transcriber", "name", "whisper")
	}

	if cfg.Notion.Token != "" {
		n, err := notion.New(cfg.Notion.Token, cfg.Notion.ParentPageID)
		if err != nil {
			return nil, nil, fmt.Errorf("create notion client: %w", err)
		}
		o.Notion = n
		slog.Info("distribution target configured", "target", "notion")
	}

	if cfg.Slack.WebhookURL != "" || len(cfg.Slack.Webhooks) > 0 {
		var opts []slack.Option
		for projectType, url := range cfg.Slack.Webhooks {
			opts = append(opts, slack.WithProjectWebhook(projectType, url))
		}
		o.Slack = slack.New(cfg.Slack.WebhookURL, opts...)
		slog.Info("distribution target configured", "target", "slack")
	}

	if cfg.Google.AccessToken != "" {
		var calOpts []calendar.Option
		if cfg.Google.CalendarID != "" {
			calOpts = append(calOpts, calendar.WithCalendarID(cfg.Google.CalendarID))
		}
		cal, err := calendar.New(cfg.Google.AccessToken, calOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("create calendar client: %w", err)
		}
		o.Calendar = cal

		mc, err := meet.New(cfg.Google.AccessToken)
		if err != nil {
			return nil, nil, fmt.Errorf("create meet client: %w", err)
		}
		o.Meet = mc
		slog.Info("provider created", "kind", "google", "name", "calendar+meet")
	}

	return o, recallClient, nil
}

// buildLLM constructs the minutes-generation backend. The "openai" provider
// uses the native SDK; everything else goes through the any-llm gateway.
// When fallback backends are configured the primary is wrapped in a
// circuit-breaking failover chain.
func buildLLM(cfg *config.Config) (llm.Provider, error) {
	primary, primaryName, err := buildLLMBackend(config.LLMBackendConfig{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
	})
	if err != nil {
		return nil, err
	}

	if len(cfg.LLM.Fallbacks) == 0 {
		return primary, nil
	}

	chain := resilience.NewLLMFallback(primaryName, primary)
	for _, fb := range cfg.LLM.Fallbacks {
		p, name, err := buildLLMBackend(fb)
		if err != nil {
			return nil, err
		}
		chain.AddFallback(name, p)
	}
	slog.Info("llm failover chain configured", "backends", chain.Backends())
	return chain, nil
}

// buildLLMBackend constructs a single LLM backend from its config entry. The
// returned name identifies the backend in logs and breaker state.
func buildLLMBackend(bc config.LLMBackendConfig) (llm.Provider, string, error) {
	name := bc.Provider
	if name == "" {
		name = "openai"
	}
	model := bc.Model
	if model == "" {
		model = defaultModel
	}

	switch name {
	case "openai":
		var opts []openaillm.Option
		if bc.BaseURL != "" {
			opts = append(opts, openaillm.WithBaseURL(bc.BaseURL))
		}
		p, err := openaillm.New(bc.APIKey, model, opts...)
		if err != nil {
			return nil, "", fmt.Errorf("create llm provider %q: %w", name, err)
		}
		slog.Info("provider created", "kind", "llm", "name", name, "model", model)
		return p, name, nil

	case "ollama":
		var opts []anyllmlib.Option
		if bc.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(bc.BaseURL))
		}
		p, err := anyllm.NewOllama(model, opts...)
		if err != nil {
			return nil, "", fmt.Errorf("create llm provider %q: %w", name, err)
		}
		slog.Info("provider created", "kind", "llm", "name", name, "model", model)
		return p, name, nil

	default:
		var opts []anyllmlib.Option
		if bc.APIKey != "" {
			opts = append(opts, anyllmlib.WithAPIKey(bc.APIKey))
		}
		if bc.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(bc.BaseURL))
		}
		p, err := anyllm.New(name, model, opts...)
		if err != nil {
			return nil, "", fmt.Errorf("create llm provider %q: %w", name, err)
		}
		slog.Info("provider created", "kind", "llm", "name", name, "model", model)
		return p, name, nil
	}
}

// botTranscription derives the bot transcription settings from config,
// defaulting to accurate Japanese streaming transcription.
func botTranscription(cfg *config.Config) recorder.TranscriptionConfig {
	tc := recorder.TranscriptionConfig{
		Provider: cfg.Recall.Transcription.Provider,
		Language: cfg.Recall.Transcription.Language,
		Mode:     cfg.Recall.Transcription.Mode,
	}
	if tc.Language == "" {
		tc.Language = "ja"
	}
	return tc
}

// newMetricsServer assembles the /metrics, health, and realtime endpoints.
func newMetricsServer(cfg *config.Config, metrics *observe.Metrics, o *orchestrator.Orchestrator) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	h := health.New(
		health.CheckFunc("recorder", configuredCheck(o.Recorder != nil)),
		health.CheckFunc("generator", configuredCheck(o.Generator != nil)),
	)
	h.Register(mux)

	rt := realtime.NewServer(func(ev realtime.Event) {
		slog.Debug("live transcript",
			"bot_id", ev.BotID, "speaker", ev.Speaker, "partial", ev.Partial)
	})
	mux.Handle("/realtime", rt)

	return &http.Server{
		Addr:    cfg.Server.MetricsAddr,
		Handler: observe.Middleware(metrics)(mux),
	}
}

func configuredCheck(ok bool) func(context.Context) error {
	return func(context.Context) error {
		if !ok {
			return errors.New("not configured")
		}
		return nil
	}
}

func runListBots(ctx context.Context, rc *recall.Client, limit int) int {
	if rc == nil {
		fmt.Fprintln(os.Stderr, "aimeet: recall is not configured")
		return 1
	}
	bots, err := rc.ListBots(ctx, limit)
	if err != nil {
		slog.Error("failed to list bots", "err", err)
		return 1
	}
	for i := range bots {
		var status recorder.StatusCode
		if sc, ok := recorder.LatestStatus(&bots[i]); ok {
			status = sc.Code
		}
		fmt.Printf("%s\t%s\t%s\n", bots[i].ID, status, bots[i].MeetingURL)
	}
	return 0
}

func runDeleteBot(ctx context.Context, rc *recall.Client, id string) int {
	if rc == nil {
		fmt.Fprintln(os.Stderr, "aimeet: recall is not configured")
		return 1
	}
	if err := rc.DeleteBot(ctx, id); err != nil {
		slog.Error("failed to delete bot", "bot_id", id, "err", err)
		return 1
	}
	fmt.Printf("bot %s deleted\n", id)
	return 0
}

// splitNonEmpty splits a comma-separated list, dropping empty entries.
func splitNonEmpty(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
