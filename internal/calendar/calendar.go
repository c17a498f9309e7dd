// Package calendar reads event details from the Google Calendar REST API.
// Only the lookups the minutes pipeline needs are implemented: fetching a
// single event and searching by text.
package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

const (
	defaultBaseURL    = "https://www.googleapis.com/calendar/v3"
	defaultCalendarID = "primary"

	maxErrorBody = 1024
)

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithCalendarID selects a calendar other than "primary".
func WithCalendarID(id string) Option {
	return func(c *Client) {
		c.calendarID = id
	}
}

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

// Client reads calendar events with an OAuth bearer token.
type Client struct {
	accessToken string
	calendarID  string
	baseURL     string
	httpClient  *http.Client
}

// New creates a calendar client. accessToken must be non-empty.
func New(accessToken string, opts ...Option) (*Client, error) {
	if accessToken == "" {
		return nil, errors.New("calendar: accessToken must not be empty")
	}
	c := &Client{
		accessToken: accessToken,
		calendarID:  defaultCalendarID,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Event is the subset of a calendar event the pipeline uses.
type Event struct {
	ID       string
	Summary  string
	HTMLLink string
	// MeetLink is the video entry point URI, empty when the event has no
	// conference attached.
	MeetLink string
	Start    string
	End      string
}

// eventJSON mirrors the wire shape of a calendar event.
type eventJSON struct {
	ID             string `json:"id"`
	Summary        string `json:"summary"`
	HTMLLink       string `json:"htmlLink"`
	Start          eventTimeJSON `json:"start"`
	End            eventTimeJSON `json:"end"`
	ConferenceData struct {
		EntryPoints []struct {
			EntryPointType string `json:"entryPointType"`
			URI            string `json:"uri"`
		} `json:"entryPoints"`
	} `json:"conferenceData"`
}

type eventTimeJSON struct {
	DateTime string `json:"dateTime"`
	Date     string `json:"date"`
}

func (t eventTimeJSON) value() string {
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

// GetEvent fetches one event by ID.
func (c *Client) GetEvent(ctx context.Context, eventID string) (*Event, error) {
	if eventID == "" {
		return nil, errors.New("calendar: eventID must not be empty")
	}
	u := fmt.Sprintf("%s/calendars/%s/events/%s",
		c.baseURL, url.PathEscape(c.calendarID), url.PathEscape(eventID))

	var ev eventJSON
	if err := c.get(ctx, u, &ev, "get event"); err != nil {
		return nil, err
	}
	return convertEvent(ev), nil
}

// SearchEvents returns up to maxResults events matching the free-text query,
// ordered by start time.
func (c *Client) SearchEvents(ctx context.Context, query string, maxResults int) ([]Event, error) {
	if maxResults <= 0 {
		maxResults = 10
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("maxResults", strconv.Itoa(maxResults))
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")
	u := fmt.Sprintf("%s/calendars/%s/events?%s", c.baseURL, url.PathEscape(c.calendarID), q.Encode())

	var page struct {
		Items []eventJSON `json:"items"`
	}
	if err := c.get(ctx, u, &page, "search events"); err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(page.Items))
	for _, item := range page.Items {
		events = append(events, *convertEvent(item))
	}
	return events, nil
}

func (c *Client) get(ctx context.Context, url string, out any, op string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("calendar: %s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calendar: %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("calendar: %s: API returned %d: %s", op, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("calendar: %s: decode response: %w", op, err)
	}
	return nil
}

func convertEvent(ev eventJSON) *Event {
	out := &Event{
		ID:       ev.ID,
		Summary:  ev.Summary,
		HTMLLink: ev.HTMLLink,
		Start:    ev.Start.value(),
		End:      ev.End.value(),
	}
	if out.Summary == "" {
		out.Summary = "No title"
	}
	for _, ep := range ev.ConferenceData.EntryPoints {
		if ep.EntryPointType == "video" {
			out.MeetLink = ep.URI
			break
		}
	}
	return out
}
