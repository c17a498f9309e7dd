// Package recall implements recorder.Client against the Recall.ai REST API.
//
// Recall.ai hosts recording bots that join video calls (Google Meet, Zoom,
// Teams) to record and transcribe them. All endpoints are authenticated with
// an "Authorization: Token <key>" header; transcript content is the one
// exception: it is downloaded from a pre-signed object-storage URL embedded
// in the transcript metadata, fetched without credentials.
//
// API reference: https://docs.recall.ai/
package recall

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/aimeet/aimeet/pkg/provider/recorder"
)

const (
	defaultRegion  = "us-west-2"
	defaultBotName = "AIMeet Recorder"

	// defaultTranscriptionProvider is Recall's own streaming engine; it needs
	// no third-party transcription credentials.
	defaultTranscriptionProvider = "recallai_streaming"

	// maxErrorBody caps how much of a provider error body is kept in errors.
	maxErrorBody = 2048
)

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithRegion selects the Recall.ai region the account lives in
// (e.g. "us-west-2", "us-east-1", "eu-central-1", "ap-northeast-1").
func WithRegion(region string) Option {
	return func(c *Client) {
		c.baseURL = "https://" + region + ".recall.ai/api/v1"
	}
}

// WithBaseURL overrides the API base URL entirely. Used in tests and for
// proxied deployments; WithRegion is the normal way to pick an endpoint.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBotName sets the display name bots join calls with when the per-call
// request leaves it empty.
func WithBotName(name string) Option {
	return func(c *Client) {
		c.botName = name
	}
}

// WithWebhookURL registers a realtime endpoint on every created bot: the
// provider streams transcript data to this URL while the call is live.
func WithWebhookURL(url string) Option {
	return func(c *Client) {
		c.webhookURL = url
	}
}

// Client implements recorder.Client backed by the Recall.ai API.
type Client struct {
	apiKey     string
	baseURL    string
	botName    string
	webhookURL string
	httpClient *http.Client
}

var _ recorder.Client = (*Client)(nil)

// New creates a Recall.ai client. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("recall: apiKey must not be empty")
	}
	c := &Client{
		apiKey:     apiKey,
		baseURL:    "https://" + defaultRegion + ".recall.ai/api/v1",
		botName:    defaultBotName,
		httpClient: &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// ---- wire types ----

type botJSON struct {
	ID            string             `json:"id"`
	MeetingURL    json.RawMessage    `json:"meeting_url"`
	BotName       string             `json:"bot_name"`
	StatusChanges []statusChangeJSON `json:"status_changes"`
	Metadata      map[string]string  `json:"metadata"`
	Recordings    []recordingJSON    `json:"recordings"`
}

type statusChangeJSON struct {
	Code      string    `json:"code"`
	SubCode   string    `json:"sub_code"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type recordingJSON struct {
	ID             string `json:"id"`
	MediaShortcuts struct {
		Transcript *mediaResourceJSON `json:"transcript"`
		Video      *mediaResourceJSON `json:"video"`
	} `json:"media_shortcuts"`
}

type mediaResourceJSON struct {
	ID   string `json:"id"`
	Data struct {
		DownloadURL string `json:"download_url"`
	} `json:"data"`
}

type createBotBody struct {
	MeetingURL      string              `json:"meeting_url"`
	BotName         string              `json:"bot_name"`
	AutomaticLeave  automaticLeaveJSON  `json:"automatic_leave"`
	RecordingConfig recordingConfigJSON `json:"recording_config"`
	Metadata        map[string]string   `json:"metadata,omitempty"`
}

type automaticLeaveJSON struct {
	WaitingRoomTimeout  int `json:"waiting_room_timeout"`
	NooneJoinedTimeout  int `json:"noone_joined_timeout"`
	EveryoneLeftTimeout int `json:"everyone_left_timeout"`
}

type recordingConfigJSON struct {
	OutputVideoCodec  string                    `json:"output_video_codec,omitempty"`
	OutputAudioCodec  string                    `json:"output_audio_codec,omitempty"`
	Transcript        transcriptProviderJSON    `json:"transcript"`
	RealtimeEndpoints []realtimeEndpointJSON    `json:"realtime_endpoints,omitempty"`
}

type transcriptProviderJSON struct {
	Provider map[string]transcriptOptionsJSON `json:"provider"`
}

type transcriptOptionsJSON struct {
	Mode     string `json:"mode,omitempty"`
	Language string `json:"language,omitempty"`
}

type realtimeEndpointJSON struct {
	Type   string   `json:"type"`
	URL    string   `json:"url"`
	Events []string `json:"events"`
}

// downloadEntryJSON is one element of the transcript download payload: a
// participant and their word run.
type downloadEntryJSON struct {
	Participant struct {
		Name string `json:"name"`
	} `json:"participant"`
	Words []struct {
		Text           string `json:"text"`
		StartTimestamp struct {
			Relative float64 `json:"relative"`
		} `json:"start_timestamp"`
		EndTimestamp struct {
			Relative float64 `json:"relative"`
		} `json:"end_timestamp"`
	} `json:"words"`
}

// ---- operations ----

// CreateBot dispatches a bot to req.MeetingURL.
//
// This call is not idempotent: every successful request sends a real bot into
// the meeting. It is never retried here, and callers must not retry it
// blindly either; a retry after an ambiguous failure can double-join a call.
func (c *Client) CreateBot(ctx context.Context, req recorder.CreateBotRequest) (*recorder.Bot, error) {
	if req.MeetingURL == "" {
		return nil, errors.New("recall: create bot: meeting URL must not be empty")
	}

	body := createBotBody{
		MeetingURL: req.MeetingURL,
		BotName:    req.BotName,
		AutomaticLeave: automaticLeaveJSON{
			WaitingRoomTimeout:  req.AutomaticLeave.WaitingRoomTimeout,
			NooneJoinedTimeout:  req.AutomaticLeave.NooneJoinedTimeout,
			EveryoneLeftTimeout: req.AutomaticLeave.EveryoneLeftTimeout,
		},
		Metadata: req.Metadata,
	}
	if body.BotName == "" {
		body.BotName = c.botName
	}
	// 20 minutes in a waiting room or an empty call, 30 seconds after the
	// last participant leaves.
	if body.AutomaticLeave.WaitingRoomTimeout == 0 {
		body.AutomaticLeave.WaitingRoomTimeout = 1200
	}
	if body.AutomaticLeave.NooneJoinedTimeout == 0 {
		body.AutomaticLeave.NooneJoinedTimeout = 1200
	}
	if body.AutomaticLeave.EveryoneLeftTimeout == 0 {
		body.AutomaticLeave.EveryoneLeftTimeout = 30
	}

	provider := req.Transcription.Provider
	if provider == "" {
		provider = defaultTranscriptionProvider
	}
	transcriptOpts := transcriptOptionsJSON{Language: req.Transcription.Language}
	if provider == defaultTranscriptionProvider {
		transcriptOpts.Mode = req.Transcription.Mode
		if transcriptOpts.Mode == "" {
			transcriptOpts.Mode = "prioritize_accuracy"
		}
	}
	body.RecordingConfig = recordingConfigJSON{
		OutputVideoCodec: "av1",
		OutputAudioCodec: "opus",
		Transcript: transcriptProviderJSON{
			Provider: map[string]transcriptOptionsJSON{provider: transcriptOpts},
		},
	}
	if c.webhookURL != "" {
		body.RecordingConfig.RealtimeEndpoints = []realtimeEndpointJSON{{
			Type:   "websocket",
			URL:    c.webhookURL,
			Events: []string{"transcript.data"},
		}}
	}

	var bot botJSON
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/bot/", body, &bot, "create bot"); err != nil {
		return nil, err
	}
	return convertBot(bot), nil
}

// GetBot fetches the current provider-side state of a bot.
func (c *Client) GetBot(ctx context.Context, id string) (*recorder.Bot, error) {
	if id == "" {
		return nil, errors.New("recall: get bot: id must not be empty")
	}
	var bot botJSON
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/bot/"+id+"/", nil, &bot, "get bot"); err != nil {
		return nil, err
	}
	return convertBot(bot), nil
}

// DeleteBot removes a bot and its recordings.
func (c *Client) DeleteBot(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("recall: delete bot: id must not be empty")
	}
	return c.do(ctx, http.MethodDelete, c.baseURL+"/bot/"+id+"/", nil, nil, "delete bot")
}

// ListBots returns up to limit bots, most recent first.
func (c *Client) ListBots(ctx context.Context, limit int) ([]recorder.Bot, error) {
	if limit <= 0 {
		limit = 10
	}
	var page struct {
		Results []botJSON `json:"results"`
	}
	url := c.baseURL + "/bot/?limit=" + strconv.Itoa(limit)
	if err := c.do(ctx, http.MethodGet, url, nil, &page, "list bots"); err != nil {
		return nil, err
	}
	bots := make([]recorder.Bot, 0, len(page.Results))
	for _, b := range page.Results {
		bots = append(bots, *convertBot(b))
	}
	return bots, nil
}

// GetTranscript retrieves and flattens the transcript of a finished bot.
//
// The fetch is deliberately two-hop: GET /transcript/{id} returns metadata
// whose data.download_url points at the raw content on object storage. The
// content URL is pre-signed and often large, so it is fetched directly rather
// than proxied through the authenticated metadata endpoint.
func (c *Client) GetTranscript(ctx context.Context, botID string) (*recorder.Transcript, error) {
	bot, err := c.GetBot(ctx, botID)
	if err != nil {
		return nil, err
	}

	if len(bot.Recordings) == 0 || bot.Recordings[0].MediaShortcuts.Transcript == nil {
		return nil, fmt.Errorf("recall: bot %s: %w", botID, recorder.ErrNoTranscript)
	}
	shortcut := bot.Recordings[0].MediaShortcuts.Transcript
	if shortcut.ID == "" {
		return nil, fmt.Errorf("recall: bot %s: %w", botID, recorder.ErrNoTranscript)
	}

	var meta mediaResourceJSON
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/transcript/"+shortcut.ID, nil, &meta, "get transcript"); err != nil {
		return nil, err
	}

	downloadURL := meta.Data.DownloadURL
	if downloadURL == "" {
		// Older API versions only expose the URL on the recording shortcut.
		downloadURL = shortcut.DownloadURL
	}
	if downloadURL == "" {
		return nil, fmt.Errorf("recall: transcript %s has no download URL: %w", shortcut.ID, recorder.ErrNoTranscript)
	}

	entries, err := c.download(ctx, downloadURL)
	if err != nil {
		return nil, err
	}

	return &recorder.Transcript{
		ID:    shortcut.ID,
		BotID: botID,
		Words: flattenWords(entries),
	}, nil
}

// download fetches the raw transcript payload from its pre-signed URL.
// No Authorization header: the URL itself carries the credential.
func (c *Client) download(ctx context.Context, url string) ([]downloadEntryJSON, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("recall: download transcript: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recall: download transcript: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &recorder.ProviderError{
			Op:     "download transcript",
			Status: resp.StatusCode,
			Body:   readErrorBody(resp.Body),
		}
	}

	var entries []downloadEntryJSON
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("recall: download transcript: decode payload: %w", err)
	}
	return entries, nil
}

// do performs one authenticated API request. out may be nil for calls whose
// response body is irrelevant (delete). Non-2xx statuses become
// *recorder.ProviderError, except 404 which maps to recorder.ErrNotFound.
func (c *Client) do(ctx context.Context, method, url string, in, out any, op string) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("recall: %s: encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("recall: %s: %w", op, err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("recall: %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("recall: %s: %w", op, recorder.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &recorder.ProviderError{
			Op:     op,
			Status: resp.StatusCode,
			Body:   readErrorBody(resp.Body),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("recall: %s: decode response: %w", op, err)
	}
	return nil
}

// readErrorBody drains up to maxErrorBody bytes of an error response.
func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}
	return string(data)
}

// ---- conversion ----

// convertBot maps the wire representation into the recorder domain type.
func convertBot(b botJSON) *recorder.Bot {
	bot := &recorder.Bot{
		ID:         b.ID,
		MeetingURL: meetingURLString(b.MeetingURL),
		Name:       b.BotName,
		Metadata:   b.Metadata,
	}
	for _, sc := range b.StatusChanges {
		bot.StatusChanges = append(bot.StatusChanges, recorder.StatusChange{
			Code:      recorder.StatusCode(sc.Code),
			SubCode:   sc.SubCode,
			Message:   sc.Message,
			CreatedAt: sc.CreatedAt,
		})
	}
	for _, r := range b.Recordings {
		rec := recorder.Recording{ID: r.ID}
		if t := r.MediaShortcuts.Transcript; t != nil {
			rec.MediaShortcuts.Transcript = &recorder.MediaResource{
				ID:          t.ID,
				DownloadURL: t.Data.DownloadURL,
			}
		}
		if v := r.MediaShortcuts.Video; v != nil {
			rec.MediaShortcuts.Video = &recorder.MediaResource{
				ID:          v.ID,
				DownloadURL: v.Data.DownloadURL,
			}
		}
		bot.Recordings = append(bot.Recordings, rec)
	}
	return bot
}

// meetingURLString extracts the meeting URL from the wire field, which the
// API returns either as a plain string or as a structured object with a
// meeting_id. Unknown shapes yield "".
func meetingURLString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		MeetingID string `json:"meeting_id"`
		Platform  string `json:"platform"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.MeetingID != "" {
		return obj.MeetingID
	}
	return ""
}

// flattenWords turns the per-participant download payload into a single word
// sequence, chronological per participant run, with each word attributed to
// its participant. The provider's delivery order is preserved as-is.
func flattenWords(entries []downloadEntryJSON) []recorder.Word {
	var words []recorder.Word
	for _, entry := range entries {
		name := entry.Participant.Name
		if name == "" {
			name = "Unknown"
		}
		for _, w := range entry.Words {
			words = append(words, recorder.Word{
				Text:    w.Text,
				Start:   w.StartTimestamp.Relative,
				End:     w.EndTimestamp.Relative,
				Speaker: name,
			})
		}
	}
	return words
}
