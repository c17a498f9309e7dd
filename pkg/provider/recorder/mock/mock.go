// Package mock provides a test double for the recorder.Client interface.
//
// Use Client in unit tests to script bot lifecycles without a live provider.
// GetBotResponses lets a test replay a status-change sequence: each GetBot
// call consumes the next element, and the final element is repeated once the
// script is exhausted.
package mock

import (
	"context"
	"sync"

	"github.com/aimeet/aimeet/pkg/provider/recorder"
)

// Client is a mock implementation of recorder.Client. Zero-value response
// fields cause methods to return zero values and nil errors; set Err fields
// to inject failures.
type Client struct {
	mu sync.Mutex

	// --- Configurable responses ---

	// CreateBotResponse is returned by CreateBot.
	CreateBotResponse *recorder.Bot
	// CreateBotErr, if non-nil, is returned by CreateBot.
	CreateBotErr error

	// GetBotResponses is the scripted sequence of bots returned by successive
	// GetBot calls. When exhausted, the last element is returned again.
	GetBotResponses []*recorder.Bot
	// GetBotErr, if non-nil, is returned by every GetBot call.
	GetBotErr error

	// GetTranscriptResponse is returned by GetTranscript.
	GetTranscriptResponse *recorder.Transcript
	// GetTranscriptErr, if non-nil, is returned by GetTranscript.
	GetTranscriptErr error

	// ListBotsResponse is returned by ListBots.
	ListBotsResponse []recorder.Bot
	// ListBotsErr, if non-nil, is returned by ListBots.
	ListBotsErr error

	// DeleteBotErr, if non-nil, is returned by DeleteBot.
	DeleteBotErr error

	// --- Call records ---

	CreateBotCalls     []recorder.CreateBotRequest
	GetBotCalls        []string
	GetTranscriptCalls []string
	DeleteBotCalls     []string
	ListBotsCalls      []int
}

var _ recorder.Client = (*Client)(nil)

// CreateBot implements recorder.Client.
func (c *Client) CreateBot(_ context.Context, req recorder.CreateBotRequest) (*recorder.Bot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CreateBotCalls = append(c.CreateBotCalls, req)
	if c.CreateBotErr != nil {
		return nil, c.CreateBotErr
	}
	return c.CreateBotResponse, nil
}

// GetBot implements recorder.Client. It consumes the next scripted response.
func (c *Client) GetBot(_ context.Context, id string) (*recorder.Bot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GetBotCalls = append(c.GetBotCalls, id)
	if c.GetBotErr != nil {
		return nil, c.GetBotErr
	}
	if len(c.GetBotResponses) == 0 {
		return nil, recorder.ErrNotFound
	}
	idx := len(c.GetBotCalls) - 1
	if idx >= len(c.GetBotResponses) {
		idx = len(c.GetBotResponses) - 1
	}
	return c.GetBotResponses[idx], nil
}

// DeleteBot implements recorder.Client.
func (c *Client) DeleteBot(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DeleteBotCalls = append(c.DeleteBotCalls, id)
	return c.DeleteBotErr
}

// ListBots implements recorder.Client.
func (c *Client) ListBots(_ context.Context, limit int) ([]recorder.Bot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ListBotsCalls = append(c.ListBotsCalls, limit)
	if c.ListBotsErr != nil {
		return nil, c.ListBotsErr
	}
	return c.ListBotsResponse, nil
}

// GetTranscript implements recorder.Client.
func (c *Client) GetTranscript(_ context.Context, botID string) (*recorder.Transcript, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GetTranscriptCalls = append(c.GetTranscriptCalls, botID)
	if c.GetTranscriptErr != nil {
		return nil, c.GetTranscriptErr
	}
	return c.GetTranscriptResponse, nil
}
