// Package notion creates meeting-minutes pages in a Notion workspace through
// the Notion REST API.
package notion

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

const (
	defaultBaseURL = "https://api.notion.com/v1"

	// apiVersion is the pinned Notion-Version header value.
	apiVersion = "2022-06-28"

	// maxRichTextLen is Notion's per-rich-text content limit. Longer text
	// (e.g. raw transcripts) is split across paragraphs.
	maxRichTextLen = 2000

	maxErrorBody = 2048
)

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

// Client creates pages through the Notion API.
type Client struct {
	token        string
	parentPageID string
	baseURL      string
	httpClient   *http.Client
}

// New creates a Notion client. token and parentPageID must be non-empty;
// minutes pages are created as children of parentPageID.
func New(token, parentPageID string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, errors.New("notion: token must not be empty")
	}
	if parentPageID == "" {
		return nil, errors.New("notion: parentPageID must not be empty")
	}
	c := &Client{
		token:        token,
		parentPageID: parentPageID,
		baseURL:      defaultBaseURL,
		httpClient:   &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Page identifies a created Notion page.
type Page struct {
	ID  string
	URL string
}

// CreateMinutesPage renders the minutes as Notion blocks and creates a page
// titled title under the configured parent page.
func (c *Client) CreateMinutesPage(ctx context.Context, title string, m *minutes.Minutes, meetLink string) (*Page, error) {
	body := map[string]any{
		"parent": map[string]any{"page_id": c.parentPageID},
		"properties": map[string]any{
			"title": map[string]any{
				"title": []any{textRun(title)},
			},
		},
		"children": minutesBlocks(m, meetLink),
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("notion: encode page: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pages", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("notion: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("notion: create page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("notion: create page: API returned %d: %s", resp.StatusCode, errBody)
	}

	var page struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("notion: decode response: %w", err)
	}
	if page.URL == "" {
		page.URL = "https://notion.so/" + strings.ReplaceAll(page.ID, "-", "")
	}
	return &Page{ID: page.ID, URL: page.URL}, nil
}

// ---- block builders ----

type block map[string]any

func textRun(content string) map[string]any {
	return map[string]any{"type": "text", "text": map[string]any{"content": content}}
}

func calloutBlock(emoji, content string) block {
	return block{
		"object": "block",
		"type":   "callout",
		"callout": map[string]any{
			"icon":      map[string]any{"emoji": emoji},
			"rich_text": []any{textRun(content)},
		},
	}
}

func dividerBlock() block {
	return block{"object": "block", "type": "divider", "divider": map[string]any{}}
}

func headingBlock(content string) block {
	return block{
		"object":    "block",
		"type":      "heading_2",
		"heading_2": map[string]any{"rich_text": []any{textRun(content)}},
	}
}

func paragraphBlock(content string) block {
	return block{
		"object":    "block",
		"type":      "paragraph",
		"paragraph": map[string]any{"rich_text": []any{textRun(content)}},
	}
}

func bulletBlock(content string) block {
	return block{
		"object":             "block",
		"type":               "bulleted_list_item",
		"bulleted_list_item": map[string]any{"rich_text": []any{textRun(content)}},
	}
}

func todoBlock(content string) block {
	return block{
		"object": "block",
		"type":   "to_do",
		"to_do":  map[string]any{"rich_text": []any{textRun(content)}, "checked": false},
	}
}

// minutesBlocks renders the minutes into the page body: info callouts, then
// one heading per populated section, then the raw transcript in a toggle.
func minutesBlocks(m *minutes.Minutes, meetLink string) []block {
	var blocks []block

	if !m.GeneratedAt.IsZero() {
		blocks = append(blocks, calloutBlock("📅", "日付: "+m.GeneratedAt.Format("2006年1月2日 15:04")))
	}
	if len(m.Participants) > 0 {
		blocks = append(blocks, calloutBlock("👥", "参加者: "+strings.Join(m.Participants, ", ")))
	}
	if meetLink != "" {
		blocks = append(blocks, calloutBlock("🎥", "Meet: "+meetLink))
	}
	blocks = append(blocks, dividerBlock())

	blocks = append(blocks, headingBlock("📝 概要"), paragraphBlock(m.Summary))

	if e := m.AIEvaluation; e != nil {
		blocks = append(blocks,
			calloutBlock("🤖", fmt.Sprintf("AI判定: %s (%d/100点)", e.Recommendation, e.OverallScore)),
			paragraphBlock(e.Reasoning),
		)
	}
	if p := m.CandidateProfile; p != nil {
		blocks = append(blocks, headingBlock("👤 候補者プロフィール"),
			bulletBlock("名前: "+p.Name),
			bulletBlock("現在の状況: "+p.CurrentSituation),
			bulletBlock("応募のきっかけ: "+p.WhyNow),
		)
	}

	if len(m.KeyPoints) > 0 {
		blocks = append(blocks, headingBlock("💡 重要なポイント"))
		for _, p := range m.KeyPoints {
			blocks = append(blocks, bulletBlock(p))
		}
	}
	if len(m.Decisions) > 0 {
		blocks = append(blocks, headingBlock("✅ 決定事項"))
		for _, d := range m.Decisions {
			blocks = append(blocks, bulletBlock(d))
		}
	}
	if len(m.ActionItems) > 0 {
		blocks = append(blocks, headingBlock("🎯 アクションアイテム"))
		for _, item := range m.ActionItems {
			line := item.Task
			if item.Owner != "" {
				line += " (" + item.Owner + ")"
			}
			if item.Deadline != "" {
				line += " 期限: " + item.Deadline
			}
			blocks = append(blocks, todoBlock(line))
		}
	}
	if len(m.UnresolvedIssues) > 0 {
		blocks = append(blocks, headingBlock("🔍 未解決の課題"))
		for _, issue := range m.UnresolvedIssues {
			blocks = append(blocks, bulletBlock(issue.Issue+": "+issue.Context))
		}
	}
	if len(m.AISuggestions) > 0 {
		blocks = append(blocks, headingBlock("💭 AIからの提案"))
		for _, s := range m.AISuggestions {
			blocks = append(blocks, bulletBlock(s.Suggestion+" ("+s.Reasoning+")"))
		}
	}
	if len(m.Risks) > 0 {
		blocks = append(blocks, headingBlock("⚠️ 注意点"))
		for _, r := range m.Risks {
			line := fmt.Sprintf("%s (影響: %s / 可能性: %s)", r.Risk, r.Impact, r.Likelihood)
			blocks = append(blocks, bulletBlock(line))
		}
	}
	if len(m.NextSteps) > 0 {
		blocks = append(blocks, headingBlock("👣 次のステップ"))
		for _, s := range m.NextSteps {
			blocks = append(blocks, bulletBlock(s))
		}
	}
	if a := m.NextMeetingAgenda; a != nil {
		blocks = append(blocks, headingBlock("📅 次回ミーティングの提案"))
		if a.SuggestedDate != "" {
			blocks = append(blocks, paragraphBlock("日程案: "+a.SuggestedDate))
		}
		for _, topic := range a.Topics {
			blocks = append(blocks, bulletBlock(fmt.Sprintf("%s (%d分)", topic.Title, topic.EstimatedDuration)))
		}
	}

	if m.RawTranscript != "" {
		var children []block
		for _, chunk := range splitChunks(m.RawTranscript, maxRichTextLen) {
			children = append(children, paragraphBlock(chunk))
		}
		blocks = append(blocks, block{
			"object": "block",
			"type":   "toggle",
			"toggle": map[string]any{
				"rich_text": []any{textRun("📜 文字起こし全文")},
				"children":  children,
			},
		})
	}

	return blocks
}

// splitChunks splits s into rune-safe pieces of at most n bytes each.
func splitChunks(s string, n int) []string {
	var chunks []string
	for len(s) > n {
		cut := n
		for cut > 0 && s[cut]&0xC0 == 0x80 {
			cut--
		}
		chunks = append(chunks, s[:cut])
		s = s[cut:]
	}
	if s != "" {
		chunks = append(chunks, s)
	}
	return chunks
}
