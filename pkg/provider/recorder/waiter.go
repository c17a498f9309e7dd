package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	// DefaultPollInterval is the pause between status polls.
	DefaultPollInterval = 10 * time.Second

	// DefaultMaxWait bounds a single wait. Two hours covers the longest
	// meetings the automatic-leave timeouts allow.
	DefaultMaxWait = 2 * time.Hour
)

// Waiter turns a bot's asynchronous remote lifecycle into a single blocking
// call. It polls the provider at a fixed cadence until the bot reaches a
// terminal status, the wait budget is exhausted, or ctx is cancelled.
//
// A Waiter holds no per-call state and is safe for concurrent use across
// distinct bot ids. Two concurrent waits on the same bot work but double the
// polling load for no benefit.
type Waiter struct {
	// Client fetches bot state. Required.
	Client Client

	// PollInterval is the pause between polls. Zero selects
	// [DefaultPollInterval].
	PollInterval time.Duration

	// MaxWait bounds the total wall-clock time of one Wait call. Zero
	// selects [DefaultMaxWait].
	MaxWait time.Duration

	// OnStatusChange, when non-nil, is invoked exactly once per distinct
	// consecutive status code observed: once per transition, not once per
	// poll tick. It runs on the polling goroutine and should return quickly.
	OnStatusChange func(StatusChange)
}

// Wait polls botID until it reaches a terminal status.
//
// Returns the bot on "done". Returns a [*BotFailedError] on "fatal" and
// [ErrWaitTimeout] (wrapped) when MaxWait elapses first. Both are
// non-retriable here: recovering from either means creating a NEW bot, never
// re-waiting on a dead one. Cancelling ctx aborts the sleep promptly and
// returns ctx.Err().
func (w *Waiter) Wait(ctx context.Context, botID string) (*Bot, error) {
	interval := w.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	maxWait := w.MaxWait
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}

	start := time.Now()
	var lastCode StatusCode
	seen := false

	for {
		bot, err := w.Client.GetBot(ctx, botID)
		if err != nil {
			return nil, fmt.Errorf("wait for bot %s: %w", botID, err)
		}

		// The history is append-only: only the tail is authoritative.
		status, ok := LatestStatus(bot)
		if ok && (!seen || status.Code != lastCode) {
			seen = true
			lastCode = status.Code
			if !knownStatusCode(status.Code) {
				slog.Warn("bot entered unrecognised status code",
					"bot_id", botID, "code", status.Code)
			} else {
				slog.Info("bot status changed",
					"bot_id", botID, "code", status.Code, "message", status.Message)
			}
			if w.OnStatusChange != nil {
				w.OnStatusChange(status)
			}
		}

		if ok {
			switch status.Code {
			case StatusDone:
				return bot, nil
			case StatusFatal:
				return nil, &BotFailedError{
					BotID:   botID,
					Message: status.Message,
					SubCode: status.SubCode,
				}
			}
		}

		if time.Since(start) > maxWait {
			return nil, fmt.Errorf("bot %s after %v: %w", botID, maxWait, ErrWaitTimeout)
		}

		if err := sleep(ctx, interval); err != nil {
			return nil, err
		}
	}
}

// sleep pauses for d or until ctx is cancelled, whichever comes first.
// No timer lingers past cancellation.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// knownStatusCode reports whether c is one of the documented lifecycle codes.
func knownStatusCode(c StatusCode) bool {
	switch c {
	case StatusReady, StatusJoining, StatusInWaitingRoom,
		StatusInCallNotRecording, StatusInCallRecording,
		StatusCallEnded, StatusDone, StatusFatal:
		return true
	}
	return false
}
