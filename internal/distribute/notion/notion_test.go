package notion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/aimeet/aimeet/internal/minutes"
)

func sampleMinutes() *minutes.Minutes {
	return &minutes.Minutes{
		Summary:      "ロードマップを整理した。",
		KeyPoints:    []string{"範囲を絞る"},
		Decisions:    []string{"v2は来季"},
		Participants: []string{"田中", "鈴木"},
		ActionItems: []minutes.ActionItem{
			{Task: "課題の棚卸し", Owner: "鈴木", Deadline: "2026-09-10"},
		},
		RawTranscript: "田中: 始めましょう",
		GeneratedAt:   time.Date(2026, 8, 29, 14, 0, 0, 0, time.UTC),
	}
}

func TestCreateMinutesPage(t *testing.T) {
	t.Parallel()

	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/pages" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer ntn-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Notion-Version"); got == "" {
			t.Error("Notion-Version header missing")
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Write([]byte(`{"id": "page-1", "url": "https://notion.so/page-1"}`))
	}))
	defer srv.Close()

	c, err := New("ntn-token", "parent-1", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	page, err := c.CreateMinutesPage(context.Background(), "定例", sampleMinutes(), "https://meet.google.com/abc")
	if err != nil {
		t.Fatalf("CreateMinutesPage() error = %v", err)
	}
	if page.ID != "page-1" || page.URL != "https://notion.so/page-1" {
		t.Errorf("page = %+v", page)
	}

	parent := payload["parent"].(map[string]any)
	if parent["page_id"] != "parent-1" {
		t.Errorf("parent = %v", parent)
	}
	raw, _ := json.Marshal(payload)
	for _, want := range []string{"定例", "概要", "アクションアイテム", "to_do", "文字起こし全文", "https://meet.google.com/abc"} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("payload missing %q", want)
		}
	}
}

func TestCreateMinutesPageSynthesisesURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "abc-def"}`))
	}))
	defer srv.Close()

	c, err := New("t", "p", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	page, err := c.CreateMinutesPage(context.Background(), "t", sampleMinutes(), "")
	if err != nil {
		t.Fatalf("CreateMinutesPage() error = %v", err)
	}
	if page.URL != "https://notion.so/abcdef" {
		t.Errorf("URL = %q", page.URL)
	}
}

func TestCreateMinutesPageAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "body failed validation"}`))
	}))
	defer srv.Close()

	c, err := New("t", "p", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = c.CreateMinutesPage(context.Background(), "t", sampleMinutes(), "")
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("CreateMinutesPage() error = %v, want 400 mention", err)
	}
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	if _, err := New("", "p"); err == nil {
		t.Error("New with empty token: error = nil")
	}
	if _, err := New("t", ""); err == nil {
		t.Error("New with empty parent page: error = nil")
	}
}

func TestSplitChunksIsRuneSafe(t *testing.T) {
	t.Parallel()

	s := strings.Repeat("あ", 1500) // 4500 bytes of 3-byte runes
	chunks := splitChunks(s, 2000)
	if len(chunks) != 3 {
		t.Fatalf("len(chunks) = %d, want 3", len(chunks))
	}
	var total string
	for _, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Error("chunk splits a rune")
		}
		if len(chunk) > 2000 {
			t.Errorf("chunk length %d exceeds limit", len(chunk))
		}
		total += chunk
	}
	if total != s {
		t.Error("chunks do not reassemble the input")
	}
}
