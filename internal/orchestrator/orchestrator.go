// Package orchestrator coordinates the whole minutes pipeline: transcript
// acquisition (recording bot, audio files, or Meet conference record),
// optional calendar enrichment, LLM minutes generation, and distribution to
// the knowledge base and chat.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aimeet/aimeet/internal/calendar"
	"github.com/aimeet/aimeet/internal/distribute/notion"
	"github.com/aimeet/aimeet/internal/meet"
	"github.com/aimeet/aimeet/internal/minutes"
	"github.com/aimeet/aimeet/internal/observe"
	"github.com/aimeet/aimeet/pkg/provider/recorder"
	"github.com/aimeet/aimeet/pkg/provider/transcriber"
)

// batchConcurrency caps how many meetings a batch processes at once.
const batchConcurrency = 4

// ErrNoStrategy is returned when a request names no transcript source at all.
var ErrNoStrategy = errors.New("orchestrator: request names no transcript source")

// ErrNotConfigured is wrapped by errors reporting that the component a
// request requires was not set up.
var ErrNotConfigured = errors.New("not configured")

// BotWaiter blocks until a recording bot reaches a terminal status.
// *recorder.Waiter is the production implementation.
type BotWaiter interface {
	Wait(ctx context.Context, botID string) (*recorder.Bot, error)
}

// AudioTranscriber turns audio files into a merged transcript.
// *whisper.Provider is the production implementation.
type AudioTranscriber interface {
	TranscribeFiles(ctx context.Context, paths []string) (*transcriber.Transcript, error)
}

// ConferenceSource reads transcripts of meetings recorded by Meet itself.
type ConferenceSource interface {
	GetFormattedTranscript(ctx context.Context, conferenceName string) (*meet.FormattedTranscript, error)
	ListConferenceRecords(ctx context.Context, limit int) ([]meet.ConferenceRecord, error)
}

// EventSource reads calendar events for meeting titles and links.
type EventSource interface {
	GetEvent(ctx context.Context, eventID string) (*calendar.Event, error)
}

// MinutesGenerator produces structured minutes from a transcript.
type MinutesGenerator interface {
	Generate(ctx context.Context, transcript, templateName string, mctx *minutes.Context) (*minutes.Minutes, error)
}

// KnowledgeBase archives minutes as pages.
type KnowledgeBase interface {
	CreateMinutesPage(ctx context.Context, title string, m *minutes.Minutes, meetLink string) (*notion.Page, error)
}

// Notifier announces minutes in chat.
type Notifier interface {
	PostMinutes(ctx context.Context, title string, m *minutes.Minutes, notionURL, meetLink, projectType string) error
}

// Request selects the transcript source and tunes generation. Exactly one
// source should be set; when several are, the bot source wins over audio,
// and audio over the conference record.
type Request struct {
	// MeetingURL dispatches a new recording bot to a live meeting.
	MeetingURL string

	// BotID processes a previously dispatched bot instead of creating one.
	BotID string

	// NoWait returns right after bot creation instead of blocking until the
	// meeting ends. The returned Result carries only the bot ID.
	NoWait bool

	// AudioFilePaths transcribes recorded audio files in order.
	AudioFilePaths []string

	// ConferenceRecordName reads the transcript of a Meet conference record,
	// e.g. "conferenceRecords/abc-defg".
	ConferenceRecordName string

	// CalendarEventID enriches the minutes with the event title and Meet
	// link. Lookup failures degrade the result, they never abort it.
	CalendarEventID string

	// TemplateName forces a minutes template. Empty selects one from
	// ProjectType.
	TemplateName string

	// ProjectType routes template selection and chat channel routing.
	ProjectType string

	// Context is extra meeting background passed to the template.
	Context *minutes.Context

	// IncludeTimestamps prefixes bot transcript lines with [MM:SS] markers.
	IncludeTimestamps bool
}

// Result is the outcome of processing one meeting.
type Result struct {
	// Minutes is the generated record. For NoWait bot requests it is a
	// placeholder with only GeneratedAt set.
	Minutes *minutes.Minutes

	// Title is the meeting title used for distribution.
	Title string

	// NotionURL is the created page URL, empty when Notion is not configured
	// or the page creation failed.
	NotionURL string

	// SlackPosted reports whether the chat notification went out.
	SlackPosted bool

	// BotID is set when a recording bot was involved.
	BotID string

	// AgendaPath is the standalone follow-up agenda file, written by the CLI
	// when the minutes carry a next-meeting agenda. Empty otherwise.
	AgendaPath string

	// Errors collects non-fatal failures (calendar lookup, distribution).
	Errors []string
}

// Orchestrator wires the pipeline components. Only Generator is mandatory;
// every other component may be nil, and requests needing a missing one fail
// with ErrNotConfigured.
type Orchestrator struct {
	Recorder    recorder.Client
	Waiter      BotWaiter
	Transcriber AudioTranscriber
	Meet        ConferenceSource
	Calendar    EventSource
	Generator   MinutesGenerator
	Notion      KnowledgeBase
	Slack       Notifier

	// BotTranscription is applied to every created bot.
	BotTranscription recorder.TranscriptionConfig

	// Metrics is optional; a nil value disables instrumentation.
	Metrics *observe.Metrics
}

// ProcessMeeting runs the pipeline for one meeting end to end.
func (o *Orchestrator) ProcessMeeting(ctx context.Context, req Request) (_ *Result, err error) {
	defer func() { o.Metrics.RecordMeetingProcessed(ctx, sourceOf(req), err) }()

	result := &Result{}

	transcript, title, projectType, pending, err := o.acquireTranscript(ctx, req, result)
	if err != nil {
		return nil, err
	}
	if pending {
		// NoWait bot dispatch: the caller resumes later with the bot ID.
		result.Minutes = &minutes.Minutes{GeneratedAt: time.Now()}
		return result, nil
	}
	result.Title = title

	// Calendar enrichment is best-effort.
	var meetLink string
	if req.CalendarEventID != "" && o.Calendar != nil {
		event, err := o.Calendar.GetEvent(ctx, req.CalendarEventID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("fetch calendar event: %v", err))
			slog.Warn("calendar lookup failed", "event_id", req.CalendarEventID, "error", err)
		} else {
			result.Title = event.Summary
			meetLink = event.MeetLink
			slog.Info("calendar event resolved", "title", event.Summary)
		}
	}

	templateName := req.TemplateName
	if templateName == "" {
		templateName = minutes.TemplateForProjectType(projectType)
		slog.Info("template auto-selected", "template", templateName, "project_type", projectType)
	}

	start := time.Now()
	m, err := o.Generator.Generate(ctx, transcript, templateName, req.Context)
	o.Metrics.ObserveGeneration(ctx, templateName, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	result.Minutes = m
	slog.Info("minutes generated", "template", templateName, "duration", time.Since(start))

	o.distribute(ctx, result, meetLink, projectType)

	slog.Info("meeting processed", "title", result.Title, "errors", len(result.Errors))
	return result, nil
}

// acquireTranscript resolves the transcript text, a provisional title, and
// the effective project type for req. For NoWait bot requests it stores the
// bot ID on result and reports pending instead.
func (o *Orchestrator) acquireTranscript(ctx context.Context, req Request, result *Result) (transcript, title, projectType string, pending bool, err error) {
	projectType = req.ProjectType

	switch {
	case req.MeetingURL != "" || req.BotID != "":
		if o.Recorder == nil {
			return "", "", "", false, fmt.Errorf("orchestrator: recording bot provider %w", ErrNotConfigured)
		}

		var bot *recorder.Bot
		if req.BotID != "" {
			// An existing bot has already finished (or the transcript fetch
			// below will say it has not): fetch it directly, never wait.
			slog.Info("fetching bot", "bot_id", req.BotID)
			bot, err = o.Recorder.GetBot(ctx, req.BotID)
			o.recordProviderCall(ctx, "recall", "get_bot", err)
			if err != nil {
				return "", "", "", false, err
			}
			if projectType == "" {
				projectType = bot.Metadata["projectType"]
			}
		} else {
			if o.Waiter == nil {
				return "", "", "", false, fmt.Errorf("orchestrator: bot waiter %w", ErrNotConfigured)
			}
			slog.Info("creating bot", "meeting_url", req.MeetingURL)
			createReq := recorder.CreateBotRequest{
				MeetingURL:    req.MeetingURL,
				Transcription: o.BotTranscription,
			}
			if projectType != "" && projectType != "default" {
				createReq.Metadata = map[string]string{"projectType": projectType}
			}
			bot, err = o.Recorder.CreateBot(ctx, createReq)
			o.recordProviderCall(ctx, "recall", "create_bot", err)
			if err != nil {
				return "", "", "", false, err
			}
			if req.NoWait {
				slog.Info("bot dispatched, not waiting", "bot_id", bot.ID)
				result.BotID = bot.ID
				return "", "", projectType, true, nil
			}

			o.Metrics.WaitStarted(ctx)
			bot, err = o.Waiter.Wait(ctx, bot.ID)
			o.Metrics.WaitFinished(ctx)
			if err != nil {
				return "", "", "", false, err
			}
		}
		result.BotID = bot.ID

		tr, err := o.Recorder.GetTranscript(ctx, bot.ID)
		o.recordProviderCall(ctx, "recall", "get_transcript", err)
		if err != nil {
			return "", "", "", false, err
		}
		slog.Info("bot transcript retrieved", "bot_id", bot.ID, "words", len(tr.Words))
		return recorder.FormatTranscriptText(tr, req.IncludeTimestamps), "Recall.ai Recorded Meeting", projectType, false, nil

	case len(req.AudioFilePaths) > 0:
		if o.Transcriber == nil {
			return "", "", "", false, fmt.Errorf("orchestrator: audio transcriber %w", ErrNotConfigured)
		}
		slog.Info("transcribing audio", "files", len(req.AudioFilePaths))
		start := time.Now()
		tr, err := o.Transcriber.TranscribeFiles(ctx, req.AudioFilePaths)
		o.Metrics.ObserveTranscription(ctx, time.Since(start), err)
		o.recordProviderCall(ctx, "transcriber", "transcribe_files", err)
		if err != nil {
			return "", "", "", false, err
		}
		base := filepath.Base(req.AudioFilePaths[0])
		title = strings.TrimSuffix(base, filepath.Ext(base))
		return transcriber.FormatText(tr, req.IncludeTimestamps), title, projectType, false, nil

	case req.ConferenceRecordName != "":
		if o.Meet == nil {
			return "", "", "", false, fmt.Errorf("orchestrator: Meet API client %w", ErrNotConfigured)
		}
		slog.Info("fetching conference transcript", "conference", req.ConferenceRecordName)
		tr, err := o.Meet.GetFormattedTranscript(ctx, req.ConferenceRecordName)
		o.recordProviderCall(ctx, "meet", "get_transcript", err)
		if err != nil {
			return "", "", "", false, err
		}
		return tr.FullText, "Untitled Meeting", projectType, false, nil
	}

	return "", "", "", false, ErrNoStrategy
}

// recordProviderCall counts one upstream provider call on the request and
// error counters. Safe with nil Metrics.
func (o *Orchestrator) recordProviderCall(ctx context.Context, provider, kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		o.Metrics.RecordProviderError(ctx, provider, kind)
	}
	o.Metrics.RecordProviderRequest(ctx, provider, kind, status)
}

// sourceOf labels the transcript source a request selects, for metrics.
func sourceOf(req Request) string {
	switch {
	case req.MeetingURL != "" || req.BotID != "":
		return "bot"
	case len(req.AudioFilePaths) > 0:
		return "audio"
	case req.ConferenceRecordName != "":
		return "conference"
	}
	return "none"
}

// distribute posts the generated minutes to the configured targets. Failures
// are recorded on result, never returned: a generated record must survive a
// broken distribution channel.
func (o *Orchestrator) distribute(ctx context.Context, result *Result, meetLink, projectType string) {
	if o.Notion != nil {
		page, err := o.Notion.CreateMinutesPage(ctx, result.Title, result.Minutes, meetLink)
		o.Metrics.ObserveDistribution(ctx, "notion", err)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("create Notion page: %v", err))
			slog.Error("notion distribution failed", "error", err)
		} else {
			result.NotionURL = page.URL
			slog.Info("notion page created", "url", page.URL)
		}
	}

	if o.Slack != nil {
		err := o.Slack.PostMinutes(ctx, result.Title, result.Minutes, result.NotionURL, meetLink, projectType)
		o.Metrics.ObserveDistribution(ctx, "slack", err)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("post to Slack: %v", err))
			slog.Error("slack distribution failed", "error", err)
		} else {
			result.SlackPosted = true
		}
	}
}

// ProcessMostRecentMeeting resolves the newest conference record for a
// calendar event and processes it. The event must carry a Meet link.
func (o *Orchestrator) ProcessMostRecentMeeting(ctx context.Context, calendarEventID, templateName string) (*Result, error) {
	if o.Calendar == nil {
		return nil, fmt.Errorf("orchestrator: calendar client %w", ErrNotConfigured)
	}
	if o.Meet == nil {
		return nil, fmt.Errorf("orchestrator: Meet API client %w", ErrNotConfigured)
	}

	event, err := o.Calendar.GetEvent(ctx, calendarEventID)
	if err != nil {
		return nil, err
	}
	if event.MeetLink == "" {
		return nil, fmt.Errorf("orchestrator: calendar event %s has no Meet link", calendarEventID)
	}

	records, err := o.Meet.ListConferenceRecords(ctx, 10)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("orchestrator: no conference records found for event %s", calendarEventID)
	}

	return o.ProcessMeeting(ctx, Request{
		ConferenceRecordName: records[0].Name,
		CalendarEventID:      calendarEventID,
		TemplateName:         templateName,
	})
}

// ProcessBatch processes several conference records concurrently. A failed
// meeting yields a Result carrying the error; it never aborts the others.
// Results keep the input order.
func (o *Orchestrator) ProcessBatch(ctx context.Context, conferenceRecordNames []string, templateName string) []*Result {
	results := make([]*Result, len(conferenceRecordNames))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for i, name := range conferenceRecordNames {
		g.Go(func() error {
			result, err := o.ProcessMeeting(gctx, Request{
				ConferenceRecordName: name,
				TemplateName:         templateName,
			})
			if err != nil {
				slog.Error("batch item failed", "conference", name, "error", err)
				result = &Result{
					Minutes: &minutes.Minutes{Summary: "Processing failed", GeneratedAt: time.Now()},
					Errors:  []string{err.Error()},
				}
			}
			results[i] = result
			return nil
		})
	}
	g.Wait()

	return results
}
