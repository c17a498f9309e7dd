package realtime_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/aimeet/aimeet/internal/realtime"
)

// dial connects a test client to the realtime server.
func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, payload string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, []byte(payload)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func waitEvent(t *testing.T, ch <-chan realtime.Event) realtime.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return realtime.Event{}
	}
}

const finalEvent = `{
	"event": "transcript.data",
	"data": {
		"bot": {"id": "bot-1"},
		"data": {
			"participant": {"name": "Tanaka"},
			"words": [{"text": "おはよう"}, {"text": "ございます"}]
		}
	}
}`

const partialEvent = `{
	"event": "transcript.partial_data",
	"data": {
		"bot": {"id": "bot-1"},
		"data": {
			"participant": {"name": "Tanaka"},
			"words": [{"text": "おは"}]
		}
	}
}`

func TestServerAccumulatesFinalEvents(t *testing.T) {
	ch := make(chan realtime.Event, 16)
	s := realtime.NewServer(func(ev realtime.Event) { ch <- ev })
	srv := httptest.NewServer(s)
	defer srv.Close()

	conn := dial(t, srv)
	send(t, conn, finalEvent)

	ev := waitEvent(t, ch)
	if ev.BotID != "bot-1" {
		t.Errorf("BotID = %q, want bot-1", ev.BotID)
	}
	if ev.Speaker != "Tanaka" {
		t.Errorf("Speaker = %q, want Tanaka", ev.Speaker)
	}
	if ev.Text != "おはよう ございます" {
		t.Errorf("Text = %q", ev.Text)
	}
	if ev.Partial {
		t.Error("Partial = true, want false")
	}

	if got := s.Transcript("bot-1"); got != "Tanaka: おはよう ございます" {
		t.Errorf("Transcript = %q", got)
	}
}

func TestServerPartialEventsAreNotAccumulated(t *testing.T) {
	ch := make(chan realtime.Event, 16)
	s := realtime.NewServer(func(ev realtime.Event) { ch <- ev })
	srv := httptest.NewServer(s)
	defer srv.Close()

	conn := dial(t, srv)
	send(t, conn, partialEvent)

	ev := waitEvent(t, ch)
	if !ev.Partial {
		t.Error("Partial = false, want true")
	}
	if got := s.Transcript("bot-1"); got != "" {
		t.Errorf("Transcript = %q, want empty (partials excluded)", got)
	}
}

func TestServerIgnoresUnknownEvents(t *testing.T) {
	ch := make(chan realtime.Event, 16)
	s := realtime.NewServer(func(ev realtime.Event) { ch <- ev })
	srv := httptest.NewServer(s)
	defer srv.Close()

	conn := dial(t, srv)
	send(t, conn, `{"event": "participant_events.join", "data": {}}`)
	send(t, conn, `not json at all`)
	send(t, conn, finalEvent)

	// Only the transcript event comes through.
	ev := waitEvent(t, ch)
	if ev.Text != "おはよう ございます" {
		t.Errorf("Text = %q", ev.Text)
	}
	select {
	case extra := <-ch:
		t.Errorf("unexpected extra event: %+v", extra)
	default:
	}
}

func TestServerReset(t *testing.T) {
	ch := make(chan realtime.Event, 16)
	s := realtime.NewServer(func(ev realtime.Event) { ch <- ev })
	srv := httptest.NewServer(s)
	defer srv.Close()

	conn := dial(t, srv)
	send(t, conn, finalEvent)
	waitEvent(t, ch)

	s.Reset("bot-1")
	if got := s.Transcript("bot-1"); got != "" {
		t.Errorf("Transcript after Reset = %q, want empty", got)
	}
}

func TestServerDefaultsUnknownSpeaker(t *testing.T) {
	ch := make(chan realtime.Event, 16)
	s := realtime.NewServer(func(ev realtime.Event) { ch <- ev })
	srv := httptest.NewServer(s)
	defer srv.Close()

	conn := dial(t, srv)
	send(t, conn, `{
		"event": "transcript.data",
		"data": {
			"bot": {"id": "bot-2"},
			"data": {"participant": {}, "words": [{"text": "hello"}]}
		}
	}`)

	ev := waitEvent(t, ch)
	if ev.Speaker != "Unknown" {
		t.Errorf("Speaker = %q, want Unknown", ev.Speaker)
	}
}
