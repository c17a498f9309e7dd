// Package meet retrieves conference records and transcripts from the Google
// Meet REST API. This is the transcript source for meetings recorded by Meet
// itself rather than by a recording bot.
package meet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://meet.googleapis.com/v2"

	// entriesPageSize is the page size for transcript entry listing.
	entriesPageSize = 100

	maxErrorBody = 1024
)

// ErrNoTranscript is returned when a conference record has no transcript.
var ErrNoTranscript = errors.New("meet: conference has no transcript")

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used in tests.
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

// Client reads Meet conference records with an OAuth bearer token.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

// New creates a Meet client. accessToken must be non-empty.
func New(accessToken string, opts ...Option) (*Client, error) {
	if accessToken == "" {
		return nil, errors.New("meet: accessToken must not be empty")
	}
	c := &Client{
		accessToken: accessToken,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// ConferenceRecord identifies one recorded meeting.
type ConferenceRecord struct {
	// Name is the resource name, e.g. "conferenceRecords/abc-defg".
	Name      string `json:"name"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// TranscriptEntry is one utterance of a Meet transcript.
type TranscriptEntry struct {
	Name         string `json:"name"`
	Participant  string `json:"participant"`
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
}

// FormattedTranscript bundles the transcript of one conference with its
// ready-to-use text rendering.
type FormattedTranscript struct {
	Conference ConferenceRecord
	Entries    []TranscriptEntry
	// FullText is the transcript with one "[HH:MM:SS] text" line per entry.
	FullText string
}

// ListConferenceRecords returns up to limit recent conference records,
// newest first.
func (c *Client) ListConferenceRecords(ctx context.Context, limit int) ([]ConferenceRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	var page struct {
		ConferenceRecords []ConferenceRecord `json:"conferenceRecords"`
	}
	u := c.baseURL + "/conferenceRecords?pageSize=" + strconv.Itoa(limit)
	if err := c.get(ctx, u, &page, "list conference records"); err != nil {
		return nil, err
	}
	return page.ConferenceRecords, nil
}

// GetConferenceRecord fetches one conference record by resource name.
func (c *Client) GetConferenceRecord(ctx context.Context, name string) (*ConferenceRecord, error) {
	var record ConferenceRecord
	if err := c.get(ctx, c.baseURL+"/"+name, &record, "get conference record"); err != nil {
		return nil, err
	}
	return &record, nil
}

// listTranscripts returns the transcript resource names of a conference.
func (c *Client) listTranscripts(ctx context.Context, conferenceName string) ([]string, error) {
	var page struct {
		Transcripts []struct {
			Name string `json:"name"`
		} `json:"transcripts"`
	}
	u := c.baseURL + "/" + conferenceName + "/transcripts"
	if err := c.get(ctx, u, &page, "list transcripts"); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(page.Transcripts))
	for _, t := range page.Transcripts {
		names = append(names, t.Name)
	}
	return names, nil
}

// getTranscriptEntries fetches all entries of a transcript, following
// pagination until exhausted.
func (c *Client) getTranscriptEntries(ctx context.Context, transcriptName string) ([]TranscriptEntry, error) {
	var entries []TranscriptEntry
	pageToken := ""
	for {
		q := url.Values{}
		q.Set("pageSize", strconv.Itoa(entriesPageSize))
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}
		u := c.baseURL + "/" + transcriptName + "/entries?" + q.Encode()

		var page struct {
			TranscriptEntries []TranscriptEntry `json:"transcriptEntries"`
			NextPageToken     string            `json:"nextPageToken"`
		}
		if err := c.get(ctx, u, &page, "list transcript entries"); err != nil {
			return nil, err
		}
		entries = append(entries, page.TranscriptEntries...)
		if page.NextPageToken == "" {
			return entries, nil
		}
		pageToken = page.NextPageToken
	}
}

// GetFormattedTranscript fetches the first transcript of a conference and
// renders it as timestamped text. Returns ErrNoTranscript when the
// conference has none.
func (c *Client) GetFormattedTranscript(ctx context.Context, conferenceName string) (*FormattedTranscript, error) {
	conference, err := c.GetConferenceRecord(ctx, conferenceName)
	if err != nil {
		return nil, err
	}

	transcripts, err := c.listTranscripts(ctx, conferenceName)
	if err != nil {
		return nil, err
	}
	if len(transcripts) == 0 {
		return nil, fmt.Errorf("%s: %w", conferenceName, ErrNoTranscript)
	}

	entries, err := c.getTranscriptEntries(ctx, transcripts[0])
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("[%s] %s", entryClock(entry.StartTime), entry.Text))
	}

	return &FormattedTranscript{
		Conference: *conference,
		Entries:    entries,
		FullText:   strings.Join(lines, "\n"),
	}, nil
}

// entryClock renders an RFC 3339 entry timestamp as HH:MM:SS local time.
// Unparseable timestamps pass through unchanged.
func entryClock(startTime string) string {
	t, err := time.Parse(time.RFC3339, startTime)
	if err != nil {
		return startTime
	}
	return t.Local().Format("15:04:05")
}

func (c *Client) get(ctx context.Context, url string, out any, op string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("meet: %s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("meet: %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("meet: %s: API returned %d: %s", op, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("meet: %s: decode response: %w", op, err)
	}
	return nil
}
