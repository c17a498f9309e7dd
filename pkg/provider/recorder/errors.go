package recorder

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the provider has no record of the requested bot or
// transcript. Returned wrapped; match with errors.Is.
var ErrNotFound = errors.New("recorder: not found")

// ErrNoTranscript indicates the bot has no recording with a transcript
// resource yet. Transient while a call is still being processed, permanent
// for bots that never recorded.
var ErrNoTranscript = errors.New("recorder: bot has no transcript")

// ErrWaitTimeout indicates a [Waiter] gave up before the bot reached a
// terminal status. The bot keeps running remotely; recovering requires a new
// wait or a new bot, never a retry loop inside the waiter.
var ErrWaitTimeout = errors.New("recorder: wait for bot completion timed out")

// ProviderError is a non-2xx response from the bot provider's API. Status and
// the raw body are preserved for diagnosis, since provider error bodies carry the
// actionable detail.
type ProviderError struct {
	// Op is the operation that failed (e.g. "create bot", "get transcript").
	Op string

	// Status is the HTTP status code.
	Status int

	// Body is the raw response body, possibly truncated.
	Body string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("recorder: %s: provider returned %d: %s", e.Op, e.Status, e.Body)
}

// BotFailedError indicates the bot reached the terminal "fatal" status.
// Non-retriable: a fatal bot never recovers, the caller must create a new one.
type BotFailedError struct {
	// BotID is the failed bot.
	BotID string

	// Message is the provider's explanation, when given.
	Message string

	// SubCode refines the failure for providers that report one.
	SubCode string
}

func (e *BotFailedError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "unknown error"
	}
	if e.SubCode != "" {
		return fmt.Sprintf("recorder: bot %s failed (%s): %s", e.BotID, e.SubCode, msg)
	}
	return fmt.Sprintf("recorder: bot %s failed: %s", e.BotID, msg)
}
