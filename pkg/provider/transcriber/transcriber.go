// Package transcriber defines the Provider interface for batch speech-to-text
// backends that turn recorded audio files into timestamped transcripts.
//
// This is the offline counterpart to the recorder package: where a recording
// bot delivers a transcript straight from the meeting platform, a transcriber
// processes audio files after the fact.
package transcriber

import (
	"context"
	"fmt"
	"strings"
)

// Segment is one contiguous utterance of a transcript, with timestamps
// relative to the start of the audio in seconds.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// Transcript is the result of transcribing one or more audio files.
type Transcript struct {
	// Text is the full transcript text without timestamps.
	Text string

	// Segments is the ordered utterance list. May be empty if the backend
	// does not provide segment timing.
	Segments []Segment

	// Language is the detected (or requested) language as a lowercase
	// ISO 639-1 code, e.g. "en", "ja". Empty if unknown.
	Language string

	// Duration is the audio length in seconds.
	Duration float64
}

// Provider is the abstraction over any batch speech-to-text backend.
// Implementations must be safe for concurrent use.
type Provider interface {
	// TranscribeFile transcribes a single audio file on disk.
	TranscribeFile(ctx context.Context, path string) (*Transcript, error)
}

// Concat merges transcripts of consecutive audio files into one, as if the
// audio had been a single recording. Segment timestamps of each part are
// shifted by the total duration of the parts before it. Text is joined with
// newlines; the language of the first part that reports one wins.
//
// Concat is pure; the input transcripts are not modified.
func Concat(parts []*Transcript) *Transcript {
	out := &Transcript{}
	var texts []string
	var offset float64
	for _, p := range parts {
		if p == nil {
			continue
		}
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
		for _, s := range p.Segments {
			out.Segments = append(out.Segments, Segment{
				Start: s.Start + offset,
				End:   s.End + offset,
				Text:  s.Text,
			})
		}
		if out.Language == "" {
			out.Language = p.Language
		}
		offset += p.Duration
	}
	out.Text = strings.Join(texts, "\n")
	out.Duration = offset
	return out
}

// FormatText renders the transcript as plain text, one segment per line. With
// timestamps enabled each line is prefixed with the segment start as [MM:SS].
// Falls back to Text when the transcript has no segments.
func FormatText(t *Transcript, includeTimestamps bool) string {
	if t == nil {
		return ""
	}
	if len(t.Segments) == 0 {
		return t.Text
	}
	var b strings.Builder
	for i, s := range t.Segments {
		if i > 0 {
			b.WriteByte('\n')
		}
		if includeTimestamps {
			total := int(s.Start)
			fmt.Fprintf(&b, "[%02d:%02d] ", total/60, total%60)
		}
		b.WriteString(strings.TrimSpace(s.Text))
	}
	return b.String()
}
