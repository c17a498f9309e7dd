// Package realtime receives live transcript events from the recording-bot
// provider.
//
// When a bot is created with a realtime endpoint, the provider opens a
// WebSocket connection to this server and pushes transcript events as the
// meeting happens. The [Server] parses these events, keeps a per-bot feed of
// finalised utterances, and forwards every event to an optional handler.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// Provider event names for streaming transcription.
const (
	eventTranscriptData    = "transcript.data"
	eventTranscriptPartial = "transcript.partial_data"
)

// Event is one transcript fragment pushed by the provider.
type Event struct {
	// BotID identifies the bot whose meeting produced this fragment.
	BotID string

	// Speaker is the participant name, "Unknown" when the provider omits it.
	Speaker string

	// Text is the fragment's text with words joined by single spaces.
	Text string

	// Partial marks interim results that a later final fragment supersedes.
	Partial bool

	// ReceivedAt is when this server read the fragment.
	ReceivedAt time.Time
}

// EventHandler is invoked for every parsed event, partial or final. It runs
// on the connection's read goroutine and must not block.
type EventHandler func(Event)

// Server accepts provider WebSocket connections and accumulates per-bot
// transcript feeds. It implements http.Handler and is safe for concurrent
// use across connections.
type Server struct {
	handler EventHandler

	mu    sync.Mutex
	feeds map[string][]string
}

// NewServer creates a Server. handler may be nil when only the accumulated
// feeds are of interest.
func NewServer(handler EventHandler) *Server {
	return &Server{
		handler: handler,
		feeds:   make(map[string][]string),
	}
}

// ServeHTTP upgrades the request to a WebSocket connection and consumes
// transcript events until the provider closes it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The provider is a server-side client, not a browser.
		InsecureSkipVerify: true,
	})
	if err != nil {
		slog.Warn("realtime: websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "closed")

	slog.Info("realtime: provider connected", "remote", r.RemoteAddr)
	s.readLoop(r.Context(), conn)
	conn.Close(websocket.StatusNormalClosure, "")
	slog.Info("realtime: provider disconnected", "remote", r.RemoteAddr)
}

func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, msg, err := conn.Read(ctx)
		if err != nil {
			// Normal close or context cancellation.
			return
		}

		ev, ok := parseMessage(msg)
		if !ok {
			continue
		}

		if !ev.Partial {
			s.appendLine(ev)
		}
		if s.handler != nil {
			s.handler(ev)
		}
	}
}

// appendLine records a finalised utterance on the bot's feed.
func (s *Server) appendLine(ev Event) {
	if ev.BotID == "" || ev.Text == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feeds[ev.BotID] = append(s.feeds[ev.BotID], ev.Speaker+": "+ev.Text)
}

// Transcript returns the accumulated finalised transcript for a bot, one
// "speaker: text" line per utterance. Empty when no events arrived yet.
func (s *Server) Transcript(botID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.feeds[botID], "\n")
}

// Reset discards the accumulated feed of a bot, typically after the meeting
// was processed.
func (s *Server) Reset(botID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.feeds, botID)
}

// messageJSON is the provider's realtime event envelope.
type messageJSON struct {
	Event string `json:"event"`
	Data  struct {
		Bot struct {
			ID string `json:"id"`
		} `json:"bot"`
		Data struct {
			Participant struct {
				Name string `json:"name"`
			} `json:"participant"`
			Words []struct {
				Text string `json:"text"`
			} `json:"words"`
		} `json:"data"`
	} `json:"data"`
}

// parseMessage parses a raw provider message into an Event. Returns
// (zero, false) for unknown event types and malformed payloads.
func parseMessage(data []byte) (Event, bool) {
	var msg messageJSON
	if err := json.Unmarshal(data, &msg); err != nil {
		return Event{}, false
	}
	if msg.Event != eventTranscriptData && msg.Event != eventTranscriptPartial {
		return Event{}, false
	}

	words := make([]string, 0, len(msg.Data.Data.Words))
	for _, w := range msg.Data.Data.Words {
		words = append(words, w.Text)
	}

	speaker := msg.Data.Data.Participant.Name
	if speaker == "" {
		speaker = "Unknown"
	}

	return Event{
		BotID:      msg.Data.Bot.ID,
		Speaker:    speaker,
		Text:       strings.Join(words, " "),
		Partial:    msg.Event == eventTranscriptPartial,
		ReceivedAt: time.Now(),
	}, true
}
