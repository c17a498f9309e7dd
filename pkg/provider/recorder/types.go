package recorder

import "time"

// StatusCode is a bot lifecycle status as reported by the provider.
//
// The set below covers every code the provider documents today, but providers
// add codes over time: treat StatusCode as an open enum. Unknown codes must be
// carried through and logged, never rejected.
type StatusCode string

const (
	StatusReady              StatusCode = "ready"
	StatusJoining            StatusCode = "joining"
	StatusInWaitingRoom      StatusCode = "in_waiting_room"
	StatusInCallNotRecording StatusCode = "in_call_not_recording"
	StatusInCallRecording    StatusCode = "in_call_recording"
	StatusCallEnded          StatusCode = "call_ended"
	StatusDone               StatusCode = "done"
	StatusFatal              StatusCode = "fatal"
)

// IsTerminal reports whether no further status changes are meaningful after c.
func (c StatusCode) IsTerminal() bool {
	return c == StatusDone || c == StatusFatal
}

// StatusChange is one entry in a bot's lifecycle history.
type StatusChange struct {
	// Code is the status the bot entered.
	Code StatusCode

	// SubCode refines Code for some providers (e.g. a fatal reason).
	SubCode string

	// Message is an optional human-readable note from the provider.
	Message string

	// CreatedAt is when the provider recorded the change.
	CreatedAt time.Time
}

// Bot is the provider's record of a dispatched recording bot.
//
// StatusChanges is append-only and chronological: the LAST entry is the
// current status. Use [LatestStatus] rather than indexing; reading index 0
// silently yields the creation-time status, a recurring bug.
type Bot struct {
	// ID is the provider-assigned bot identifier.
	ID string

	// MeetingURL is the call the bot was sent to.
	MeetingURL string

	// Name is the display name the bot joined with.
	Name string

	// StatusChanges is the bot's lifecycle history, oldest first.
	StatusChanges []StatusChange

	// Metadata is the opaque key/value bag supplied at creation, returned
	// unchanged by the provider. May be nil.
	Metadata map[string]string

	// Recordings lists the recordings produced by this bot, if any.
	Recordings []Recording
}

// Recording is one recording produced by a bot, with shortcuts to its
// derived media resources.
type Recording struct {
	ID             string
	MediaShortcuts MediaShortcuts
}

// MediaShortcuts points at the media resources derived from a recording.
// A nil field means the resource does not exist (yet).
type MediaShortcuts struct {
	Transcript *MediaResource
	Video      *MediaResource
}

// MediaResource identifies a downloadable media artifact.
type MediaResource struct {
	// ID is the resource identifier used with the provider's media endpoints.
	ID string

	// DownloadURL is a pre-signed, usually time-limited URL for the raw
	// content. Fetched directly, without provider authentication.
	DownloadURL string
}

// LatestStatus returns the bot's current status change, i.e. the last entry
// of the append-only history. ok is false when the history is empty.
func LatestStatus(bot *Bot) (StatusChange, bool) {
	if bot == nil || len(bot.StatusChanges) == 0 {
		return StatusChange{}, false
	}
	return bot.StatusChanges[len(bot.StatusChanges)-1], true
}

// Transcript is the recognised speech content of a recorded meeting.
type Transcript struct {
	// ID is the provider's transcript identifier.
	ID string

	// BotID is the bot that produced this transcript.
	BotID string

	// Words is the word sequence as delivered by the provider, chronological
	// per speaker run. The slice is consumed in given order and never
	// re-sorted, even if the provider delivers out-of-order timestamps.
	Words []Word
}

// Word is a single recognised word with timing and speaker attribution.
type Word struct {
	// Text is the recognised word.
	Text string

	// Start and End are offsets from the recording start, in seconds.
	// End >= Start.
	Start float64
	End   float64

	// Speaker is the participant the word is attributed to. May be empty
	// when the transcription engine does not diarise.
	Speaker string
}
