// Package report renders generated minutes as plain text or Markdown for
// terminal output and file export. The formatting functions are pure and
// deterministic: the same minutes always render to the same string.
// WriteAgenda is the one exception and writes a file.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aimeet/aimeet/internal/minutes"
)

// priorityMarker maps an item priority to its display marker.
func priorityMarker(priority string) string {
	switch priority {
	case "high":
		return "[!]"
	case "medium":
		return "[~]"
	default:
		return "[ ]"
	}
}

// Text renders the minutes as indented plain text for terminal display.
func Text(title string, m *minutes.Minutes) string {
	if m == nil {
		return ""
	}
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n%s\n\n", title, strings.Repeat("=", len([]rune(title))))
	if !m.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "生成日時: %s\n", m.GeneratedAt.Format("2006-01-02 15:04"))
	}
	if len(m.Participants) > 0 {
		fmt.Fprintf(&b, "参加者: %s\n", strings.Join(m.Participants, ", "))
	}

	fmt.Fprintf(&b, "\n概要\n----\n%s\n", m.Summary)

	if len(m.KeyPoints) > 0 {
		b.WriteString("\n重要なポイント\n--------------\n")
		for _, p := range m.KeyPoints {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	if len(m.Decisions) > 0 {
		b.WriteString("\n決定事項\n--------\n")
		for _, d := range m.Decisions {
			fmt.Fprintf(&b, "- %s\n", d)
		}
	}
	if len(m.ActionItems) > 0 {
		b.WriteString("\nアクションアイテム\n------------------\n")
		for _, item := range m.ActionItems {
			fmt.Fprintf(&b, "%s %s%s%s\n",
				priorityMarker(item.Priority), item.Task,
				optional(" (%s)", item.Owner),
				optional(" 期限: %s", item.Deadline))
		}
	}
	if len(m.NextSteps) > 0 {
		b.WriteString("\n次のステップ\n------------\n")
		for _, s := range m.NextSteps {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}
	if m.AIEvaluation != nil {
		fmt.Fprintf(&b, "\nAI判定\n------\n%s (%d/100点)\n%s\n",
			m.AIEvaluation.Recommendation, m.AIEvaluation.OverallScore, m.AIEvaluation.Reasoning)
	}

	return b.String()
}

// Markdown renders the minutes as a Markdown document suitable for export.
func Markdown(title string, m *minutes.Minutes) string {
	if m == nil {
		return ""
	}
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title)
	if !m.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "> 生成日時: %s\n\n", m.GeneratedAt.Format("2006-01-02 15:04"))
	}
	if len(m.Participants) > 0 {
		fmt.Fprintf(&b, "**参加者:** %s\n\n", strings.Join(m.Participants, ", "))
	}

	fmt.Fprintf(&b, "## 概要\n\n%s\n", m.Summary)

	writeList(&b, "重要なポイント", m.KeyPoints)
	writeList(&b, "決定事項", m.Decisions)

	if len(m.ActionItems) > 0 {
		b.WriteString("\n## アクションアイテム\n\n")
		for _, item := range m.ActionItems {
			fmt.Fprintf(&b, "- %s **%s**%s%s\n",
				priorityMarker(item.Priority), item.Task,
				optional(" (%s)", item.Owner),
				optional(" 期限: %s", item.Deadline))
			if item.Description != "" {
				fmt.Fprintf(&b, "  - %s\n", item.Description)
			}
		}
	}

	if len(m.UnresolvedIssues) > 0 {
		b.WriteString("\n## 未解決の課題\n\n")
		for _, issue := range m.UnresolvedIssues {
			fmt.Fprintf(&b, "- **%s** (%s)\n  - %s\n", issue.Issue, issue.Priority, issue.Context)
			if issue.SuggestedAction != "" {
				fmt.Fprintf(&b, "  - 推奨アクション: %s\n", issue.SuggestedAction)
			}
		}
	}

	if len(m.AISuggestions) > 0 {
		b.WriteString("\n## AIからの提案\n\n")
		for _, s := range m.AISuggestions {
			fmt.Fprintf(&b, "- [%s] %s\n  - %s\n", s.Category, s.Suggestion, s.Reasoning)
		}
	}

	if len(m.Timeline) > 0 {
		b.WriteString("\n## タイムライン\n\n")
		b.WriteString("| マイルストーン | 期限 | 状態 |\n|---|---|---|\n")
		for _, entry := range m.Timeline {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", entry.Milestone, entry.Deadline, entry.Status)
		}
	}

	if len(m.Risks) > 0 {
		b.WriteString("\n## 注意点\n\n")
		for _, r := range m.Risks {
			fmt.Fprintf(&b, "- %s (影響: %s / 可能性: %s)\n", r.Risk, r.Impact, r.Likelihood)
			if r.Mitigation != "" {
				fmt.Fprintf(&b, "  - 軽減策: %s\n", r.Mitigation)
			}
		}
	}

	writeList(&b, "次のステップ", m.NextSteps)

	if m.NextMeetingAgenda != nil {
		b.WriteString("\n## 次回ミーティングの提案\n\n")
		b.WriteString(Agenda(m.NextMeetingAgenda))
	}

	if m.AIEvaluation != nil {
		e := m.AIEvaluation
		fmt.Fprintf(&b, "\n## AI判定\n\n**%s (%d/100点)**\n\n%s\n\n", e.Recommendation, e.OverallScore, e.Reasoning)
		b.WriteString("| 評価軸 | スコア | コメント |\n|---|---|---|\n")
		for _, row := range []struct {
			axis  string
			score minutes.CriterionScore
		}{
			{"スキル適合度", e.Criteria.SkillMatch},
			{"カルチャーフィット", e.Criteria.CultureFit},
			{"モチベーション", e.Criteria.Motivation},
			{"コミットメント", e.Criteria.Commitment},
			{"コミュニケーション", e.Criteria.Communication},
		} {
			fmt.Fprintf(&b, "| %s | %d/20 | %s |\n", row.axis, row.score.Score, row.score.Comment)
		}
	}

	return b.String()
}

// Agenda renders a next-meeting proposal as a Markdown fragment.
func Agenda(a *minutes.NextMeetingAgenda) string {
	if a == nil {
		return ""
	}
	var b strings.Builder

	if a.SuggestedDate != "" {
		fmt.Fprintf(&b, "**日程案:** %s", a.SuggestedDate)
		if a.SuggestedDuration > 0 {
			fmt.Fprintf(&b, " (%d分)", a.SuggestedDuration)
		}
		b.WriteString("\n\n")
	}
	if len(a.Objectives) > 0 {
		b.WriteString("**目的:**\n")
		for _, o := range a.Objectives {
			fmt.Fprintf(&b, "- %s\n", o)
		}
		b.WriteByte('\n')
	}
	if len(a.Topics) > 0 {
		b.WriteString("**議題:**\n")
		for _, topic := range a.Topics {
			fmt.Fprintf(&b, "1. %s (%d分)%s\n", topic.Title, topic.EstimatedDuration,
				optional(" 担当: %s", topic.Presenter))
			if topic.Description != "" {
				fmt.Fprintf(&b, "   - %s\n", topic.Description)
			}
		}
		b.WriteByte('\n')
	}
	if len(a.RequiredParticipants) > 0 {
		fmt.Fprintf(&b, "**必須参加者:** %s\n", strings.Join(a.RequiredParticipants, ", "))
	}
	if len(a.OptionalParticipants) > 0 {
		fmt.Fprintf(&b, "**任意参加者:** %s\n", strings.Join(a.OptionalParticipants, ", "))
	}
	if len(a.PreparationItems) > 0 {
		b.WriteString("**事前準備:**\n")
		for _, item := range a.PreparationItems {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}

	return b.String()
}

// WriteAgenda saves a next-meeting proposal as a standalone Markdown file
// under baseDir/YYYY/MM/agenda-<timestamp>.md and returns the written path.
// Does nothing and returns "" when a is nil.
func WriteAgenda(baseDir string, generatedAt time.Time, a *minutes.NextMeetingAgenda) (string, error) {
	if a == nil {
		return "", nil
	}
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	dir := filepath.Join(baseDir, generatedAt.Format("2006"), generatedAt.Format("01"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report: create agenda directory: %w", err)
	}

	path := filepath.Join(dir, "agenda-"+generatedAt.Format("2006-01-02-15-04-05")+".md")
	content := "# 次回会議アジェンダ\n\n" + Agenda(a)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("report: write agenda file: %w", err)
	}
	return path, nil
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

// optional formats value into format when value is non-empty.
func optional(format, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf(format, value)
}
