// Package recorder defines the abstraction over remote recording-bot
// providers.
//
// A recording-bot provider dispatches an automated participant ("bot") into a
// video call, records it, and produces a transcript once the call ends. The
// bot's lifecycle is driven entirely by the remote provider: after creation
// the local system only observes status changes and, eventually, downloads
// the transcript. The [Waiter] in this package turns that asynchronous
// lifecycle into a single blocking call.
//
// Implementations of [Client] must be safe for concurrent use. All methods
// must propagate context cancellation promptly.
package recorder

import "context"

// Client is the abstraction over a recording-bot provider's API.
//
// CreateBot has a real-world side effect (a bot joins the target meeting)
// and is therefore not idempotent. Callers must never retry a failed
// CreateBot blindly; doing so would send a second bot into the same call.
type Client interface {
	// CreateBot dispatches a new bot to the meeting described by req and
	// returns the provider's record of it. The returned bot usually starts in
	// the "ready" or "joining" state.
	CreateBot(ctx context.Context, req CreateBotRequest) (*Bot, error)

	// GetBot fetches the current state of a bot. Returns an error wrapping
	// [ErrNotFound] when the provider has no bot with that id.
	GetBot(ctx context.Context, id string) (*Bot, error)

	// DeleteBot removes a bot and its recordings from the provider.
	DeleteBot(ctx context.Context, id string) error

	// ListBots returns up to limit bots, most recent first.
	ListBots(ctx context.Context, limit int) ([]Bot, error)

	// GetTranscript retrieves and normalises the transcript of a finished
	// bot. Returns an error wrapping [ErrNoTranscript] when the bot has no
	// recording with a transcript resource yet.
	GetTranscript(ctx context.Context, botID string) (*Transcript, error)
}

// CreateBotRequest describes the bot to dispatch.
type CreateBotRequest struct {
	// MeetingURL is the call to join (e.g. https://meet.google.com/xxx-xxxx-xxx).
	MeetingURL string

	// BotName is the display name the bot joins with. Empty selects the
	// provider default.
	BotName string

	// Transcription selects the transcription engine and its settings.
	Transcription TranscriptionConfig

	// AutomaticLeave configures when the bot gives up or leaves on its own.
	// Zero fields select provider defaults.
	AutomaticLeave AutomaticLeaveConfig

	// Metadata is an opaque key/value bag stored with the bot and returned
	// unchanged on every fetch. May be nil.
	Metadata map[string]string
}

// TranscriptionConfig selects the transcription engine used by the bot.
type TranscriptionConfig struct {
	// Provider names the transcription engine (e.g. "recallai_streaming",
	// "meeting_captions", "deepgram", "assembly_ai").
	Provider string

	// Language is the BCP-47 language code for recognition (e.g. "ja", "en").
	Language string

	// Mode trades accuracy against latency for engines that support it
	// (e.g. "prioritize_accuracy", "prioritize_low_latency").
	Mode string
}

// AutomaticLeaveConfig holds the bot's give-up timeouts, in seconds.
type AutomaticLeaveConfig struct {
	WaitingRoomTimeout  int
	NooneJoinedTimeout  int
	EveryoneLeftTimeout int
}
