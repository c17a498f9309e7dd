// Package slack posts meeting minutes to Slack channels through incoming
// webhooks, formatted with Block Kit.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aimeet/aimeet/internal/minutes"
)

const maxErrorBody = 512

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithProjectWebhook routes a project type to its own channel webhook.
// Project types without a dedicated webhook use the default URL.
func WithProjectWebhook(projectType, url string) Option {
	return func(c *Client) {
		c.projectWebhooks[projectType] = url
	}
}

// Client posts messages through Slack incoming webhooks.
type Client struct {
	webhookURL      string
	projectWebhooks map[string]string
	httpClient      *http.Client
}

// New creates a Slack client. webhookURL is the default channel; it may be
// empty if every project type used has a dedicated webhook.
func New(webhookURL string, opts ...Option) *Client {
	c := &Client{
		webhookURL:      webhookURL,
		projectWebhooks: make(map[string]string),
		httpClient:      &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// WebhookForProject returns the webhook URL used for the given project type.
// Empty when neither a dedicated nor a default webhook is configured.
func (c *Client) WebhookForProject(projectType string) string {
	if url, ok := c.projectWebhooks[projectType]; ok {
		return url
	}
	return c.webhookURL
}

// message is the webhook payload: fallback text plus Block Kit blocks.
type message struct {
	Text   string  `json:"text"`
	Blocks []block `json:"blocks,omitempty"`
}

// block is a loosely-typed Block Kit block. The webhook API takes arbitrary
// JSON, so a map keeps the builder close to the wire format.
type block map[string]any

func sectionBlock(mrkdwn string) block {
	return block{
		"type": "section",
		"text": map[string]any{"type": "mrkdwn", "text": mrkdwn},
	}
}

// PostMinutes formats the minutes as a Block Kit message and posts it to the
// channel for projectType.
func (c *Client) PostMinutes(ctx context.Context, title string, m *minutes.Minutes, notionURL, meetLink, projectType string) error {
	url := c.WebhookForProject(projectType)
	if url == "" {
		return errors.New("slack: no webhook configured")
	}
	return c.post(ctx, url, formatMinutesMessage(title, m, notionURL, meetLink))
}

// PostMessage posts a plain text message to the default channel.
func (c *Client) PostMessage(ctx context.Context, text string) error {
	if c.webhookURL == "" {
		return errors.New("slack: no webhook configured")
	}
	return c.post(ctx, c.webhookURL, message{Text: text})
}

func (c *Client) post(ctx context.Context, url string, msg message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack: encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("slack: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, body)
	}
	return nil
}

// formatMinutesMessage builds the Block Kit rendering of the minutes:
// header, link buttons, then one section per populated list.
func formatMinutesMessage(title string, m *minutes.Minutes, notionURL, meetLink string) message {
	blocks := []block{
		{
			"type": "header",
			"text": map[string]any{"type": "plain_text", "text": "📋 " + title, "emoji": true},
		},
	}

	var buttons []map[string]any
	if notionURL != "" {
		buttons = append(buttons, map[string]any{
			"type":      "button",
			"text":      map[string]any{"type": "plain_text", "text": "📝 議事録を見る", "emoji": true},
			"url":       notionURL,
			"action_id": "view_notion",
		})
	}
	if meetLink != "" {
		buttons = append(buttons, map[string]any{
			"type":      "button",
			"text":      map[string]any{"type": "plain_text", "text": "🎥 Meet録画", "emoji": true},
			"url":       meetLink,
			"action_id": "view_meet",
		})
	}
	if len(buttons) > 0 {
		blocks = append(blocks, block{"type": "actions", "elements": buttons})
	}

	blocks = append(blocks, block{"type": "divider"})
	blocks = append(blocks, sectionBlock("*📝 概要*\n"+m.Summary))

	if len(m.KeyPoints) > 0 {
		blocks = append(blocks, sectionBlock("*💡 重要なポイント*\n"+bulleted(m.KeyPoints)))
	}
	if len(m.Decisions) > 0 {
		blocks = append(blocks, sectionBlock("*✅ 決定事項*\n"+bulleted(m.Decisions)))
	}
	if len(m.ActionItems) > 0 {
		lines := make([]string, 0, len(m.ActionItems))
		for _, item := range m.ActionItems {
			line := priorityEmoji(item.Priority) + " " + item.Task
			if item.Owner != "" {
				line += " (" + item.Owner + ")"
			}
			if item.Deadline != "" {
				line += " _[期限: " + item.Deadline + "]_"
			}
			lines = append(lines, line)
		}
		blocks = append(blocks, sectionBlock("*🎯 アクションアイテム*\n"+strings.Join(lines, "\n")))
	}
	if len(m.Participants) > 0 {
		blocks = append(blocks, sectionBlock("*👥 参加者*\n"+strings.Join(m.Participants, ", ")))
	}

	blocks = append(blocks, block{
		"type": "context",
		"elements": []map[string]any{
			{"type": "mrkdwn", "text": "🤖 AI生成 | " + m.GeneratedAt.Format("2006/01/02 15:04")},
		},
	})

	return message{Text: "議事録: " + title, Blocks: blocks}
}

func bulleted(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "• " + item
	}
	return strings.Join(lines, "\n")
}

func priorityEmoji(priority string) string {
	switch priority {
	case "high":
		return "🔴"
	case "medium":
		return "🟡"
	default:
		return "🟢"
	}
}
