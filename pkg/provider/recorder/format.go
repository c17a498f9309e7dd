package recorder

import (
	"fmt"
	"strings"
)

// FormatTranscriptText renders a transcript as plain text, one word per line
// in the form "speaker: text". When includeTimestamps is true each line is
// prefixed with "[mm:ss]" computed from the word's Start offset truncated to
// whole seconds.
//
// The function is pure and deterministic: identical input always produces
// byte-identical output, which makes it suitable for snapshot tests.
func FormatTranscriptText(t *Transcript, includeTimestamps bool) string {
	if t == nil || len(t.Words) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, w := range t.Words {
		if i > 0 {
			sb.WriteByte('\n')
		}
		speaker := w.Speaker
		if speaker == "" {
			speaker = "Unknown"
		}
		if includeTimestamps {
			total := int(w.Start)
			fmt.Fprintf(&sb, "[%02d:%02d] ", total/60, total%60)
		}
		sb.WriteString(speaker)
		sb.WriteString(": ")
		sb.WriteString(w.Text)
	}
	return sb.String()
}
